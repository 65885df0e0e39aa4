package integrator

import (
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/lights"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
	"github.com/df07/go-bvh-pathtracer/pkg/scene"
)

// DirectLighting sums the unoccluded contribution of every scene light at
// the shading point
func DirectLighting(data ShadingData, dir core.Vector, sc *scene.Scene, depth int, settings core.RenderSettings, rayType core.RayType, sampler core.Sampler, stats *core.Stats) Contribution {
	var total Contribution
	v := dir.Negate()

	for _, light := range sc.Lights {
		switch l := light.(type) {
		case *lights.Directional:
			total = total.Add(directional(l, data, v, sc, depth, settings, stats))
		case *lights.Spherical:
			if l.IsPoint() {
				total = total.Add(point(l.Position, l.Intensity(), data, v, sc, depth, settings, stats))
			} else {
				total = total.Add(spherical(l, data, v, sc, depth, settings, rayType, sampler, stats))
			}
		case *lights.Rectangular:
			total = total.Add(rectangular(l, data, v, sc, depth, settings, rayType, sampler, stats))
		}
	}
	return total
}

func directional(light *lights.Directional, data ShadingData, v core.Vector, sc *scene.Scene, depth int, settings core.RenderSettings, stats *core.Stats) Contribution {
	l := light.ToLight()
	if data.Normal.Dot(l) <= 0 {
		return Contribution{}
	}
	if sc.Occluded(offsetOrigin(data.Position, data.Normal), l, core.Infinity, depth+1, settings, stats) {
		return Contribution{}
	}
	return ComputeLighting(data.Material, data.Normal, v, l, 1, light.Intensity())
}

// point lights a surface with inverse square falloff normalized by 4π
func point(position, intensity core.Vector, data ShadingData, v core.Vector, sc *scene.Scene, depth int, settings core.RenderSettings, stats *core.Stats) Contribution {
	toLight := position.Subtract(data.Position)
	distance := toLight.Length()
	if distance == 0 {
		return Contribution{}
	}
	l := toLight.Divide(distance)
	if data.Normal.Dot(l) <= 0 {
		return Contribution{}
	}
	if sc.Occluded(offsetOrigin(data.Position, data.Normal), l, distance, depth+1, settings, stats) {
		return Contribution{}
	}
	return ComputeLighting(data.Material, data.Normal, v, l, 4*core.Pi*distance*distance, intensity)
}

// spherical integrates a sphere light. The diffuse lobe samples the cone the
// sphere subtends. The specular lobe combines cone samples with GGX samples
// using the balance heuristic.
func spherical(light *lights.Spherical, data ShadingData, v core.Vector, sc *scene.Scene, depth int, settings core.RenderSettings, rayType core.RayType, sampler core.Sampler, stats *core.Stats) Contribution {
	_, _, q, inside := light.Cone(data.Position)
	if inside || q >= 1 {
		return point(light.Position, light.Intensity(), data, v, sc, depth, settings, stats)
	}

	n := data.Normal
	mat := data.Material
	alpha := mat.Alpha()
	radiance := light.Radiance()
	origin := offsetOrigin(data.Position, n)
	samples := lightSamples(light.Samples, rayType)

	var result Contribution
	for i := 0; i < samples; i++ {
		u1, u2 := sampler.Get2D()
		l, lightPdf := light.SampleDirection(data.Position, u1, u2)
		nl := n.Dot(l)
		if lightPdf <= 0 || nl <= 0 {
			continue
		}
		t, ok := light.Intersect(origin, l)
		if !ok || sc.Occluded(origin, l, t, depth+1, settings, stats) {
			continue
		}

		brdf, fresnel := material.Specular(n, v, l, mat.Specular, alpha)
		energy := radiance.Multiply(nl / lightPdf)
		weight := core.BalanceHeuristic(1, lightPdf, 1, material.GGXReflectionPDF(n, v, l, alpha))

		result.Diffuse = result.Diffuse.Add(core.Splat(1).Subtract(fresnel).MultiplyVec(energy))
		result.Specular = result.Specular.Add(brdf.MultiplyVec(energy).Multiply(weight))
	}

	result.Specular = result.Specular.Add(sampleSpecularLight(data, v, samples, sampler, func(origin, l core.Vector) (float32, float32, bool) {
		t, ok := light.Intersect(origin, l)
		return t, light.PDF(data.Position, l), ok
	}, radiance, sc, depth, settings, stats))

	return result.Scale(1 / float32(samples))
}

// rectangular integrates a one-sided rectangle light. Points are stratified
// over the rectangle; each sample is tested against the light plane before a
// shadow ray is traced. The specular lobe adds GGX samples weighted by the
// balance heuristic.
func rectangular(light *lights.Rectangular, data ShadingData, v core.Vector, sc *scene.Scene, depth int, settings core.RenderSettings, rayType core.RayType, sampler core.Sampler, stats *core.Stats) Contribution {
	if light.Area() <= 0 {
		return Contribution{}
	}

	n := data.Normal
	mat := data.Material
	alpha := mat.Alpha()
	radiance := light.Intensity()
	origin := offsetOrigin(data.Position, n)
	samples := lightSamples(light.Samples, rayType)
	nx, ny := core.StratumGrid(samples)

	var result Contribution
	for i := 0; i < samples; i++ {
		u1, u2 := sampler.Get2D()
		s1, s2 := core.Stratify(i, nx, ny, u1, u2)
		p, _ := light.SamplePoint(s1, s2)

		toLight := p.Subtract(data.Position)
		if toLight.LengthSquared() == 0 {
			continue
		}
		l := toLight.Normalize()
		nl := n.Dot(l)
		if nl <= 0 {
			continue
		}

		t, _, ok := light.Intersect(origin, l)
		if !ok {
			continue
		}
		lightPdf := light.SolidAnglePDF(l, t)
		if lightPdf <= 0 || sc.Occluded(origin, l, t, depth+1, settings, stats) {
			continue
		}

		brdf, fresnel := material.Specular(n, v, l, mat.Specular, alpha)
		energy := radiance.Multiply(nl / lightPdf)
		weight := core.BalanceHeuristic(1, lightPdf, 1, material.GGXReflectionPDF(n, v, l, alpha))

		result.Diffuse = result.Diffuse.Add(core.Splat(1).Subtract(fresnel).MultiplyVec(energy))
		result.Specular = result.Specular.Add(brdf.MultiplyVec(energy).Multiply(weight))
	}

	result.Specular = result.Specular.Add(sampleSpecularLight(data, v, samples, sampler, func(origin, l core.Vector) (float32, float32, bool) {
		t, _, ok := light.Intersect(origin, l)
		if !ok {
			return 0, 0, false
		}
		return t, light.SolidAnglePDF(l, t), true
	}, radiance, sc, depth, settings, stats))

	return result.Scale(1 / float32(samples))
}

// lightHit intersects a direction with an area light and returns the
// distance and the light's solid angle pdf for that direction
type lightHit func(origin, l core.Vector) (t, pdf float32, ok bool)

// sampleSpecularLight is the GGX half of the specular estimator for an area
// light of constant radiance. It returns the unnormalized sum over samples.
func sampleSpecularLight(data ShadingData, v core.Vector, samples int, sampler core.Sampler, hit lightHit, radiance core.Vector, sc *scene.Scene, depth int, settings core.RenderSettings, stats *core.Stats) core.Vector {
	n := data.Normal
	mat := data.Material
	alpha := mat.Alpha()
	if n.Dot(v) <= 0 {
		return core.Vector{}
	}

	frame := core.TangentFrame(n)
	origin := offsetOrigin(data.Position, n)

	var sum core.Vector
	for i := 0; i < samples; i++ {
		u1, u2 := sampler.Get2D()
		local, _ := core.SampleGGX(u1, u2, alpha)
		h := local.TransformDirection(frame).Normalize()
		l := core.Reflect(v, h).Normalize()
		if n.Dot(l) <= 0 {
			continue
		}

		t, lightPdf, ok := hit(origin, l)
		if !ok || lightPdf <= 0 {
			continue
		}
		if sc.Occluded(origin, l, t, depth+1, settings, stats) {
			continue
		}

		weight := core.BalanceHeuristic(1, material.GGXReflectionPDF(n, v, l, alpha), 1, lightPdf)
		sampled := material.SampledSpecularWeight(n, v, l, h, mat.Specular, alpha)
		sum = sum.Add(sampled.MultiplyVec(radiance).Multiply(weight))
	}
	return sum
}
