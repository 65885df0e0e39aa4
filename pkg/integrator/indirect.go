package integrator

import (
	"math"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
	"github.com/df07/go-bvh-pathtracer/pkg/scene"
)

// IndirectLighting gathers light reflected by other surfaces. It only
// recurses while depth is below settings.MaxRayDepth.
func IndirectLighting(data ShadingData, dir core.Vector, sc *scene.Scene, depth int, settings core.RenderSettings, rayType core.RayType, sampler core.Sampler, stats *core.Stats) Contribution {
	if depth >= settings.MaxRayDepth {
		return Contribution{}
	}

	frame := core.TangentFrame(data.Normal)
	return Contribution{
		Diffuse:  indirectDiffuse(data, frame, sc, depth, settings, sampler, stats),
		Specular: indirectSpecular(data, dir.Negate(), frame, sc, depth, settings, rayType, sampler, stats),
	}
}

// DiffuseSampleCount is the full count at the first hit and its square root
// on deeper bounces
func DiffuseSampleCount(samples, depth int) int {
	if samples <= 0 {
		return 0
	}
	if depth == 0 {
		return samples
	}
	return max(1, int(math.Sqrt(float64(samples))))
}

// SpecularSampleCount is the full count at the first hit and one sample on
// deeper bounces
func SpecularSampleCount(samples, depth int) int {
	if samples <= 0 {
		return 0
	}
	if depth == 0 {
		return samples
	}
	return 1
}

// indirectDiffuse returns the cosine-weighted hemisphere estimate of the
// incoming irradiance, without the albedo/π factor
func indirectDiffuse(data ShadingData, frame core.Matrix, sc *scene.Scene, depth int, settings core.RenderSettings, sampler core.Sampler, stats *core.Stats) core.Vector {
	if !data.Material.HasDiffuse() {
		return core.Vector{}
	}
	samples := DiffuseSampleCount(settings.DiffuseSamples, depth)
	if samples == 0 {
		return core.Vector{}
	}

	n := data.Normal
	origin := offsetOrigin(data.Position, n)

	var sum core.Vector
	for i := 0; i < samples; i++ {
		u1, u2 := sampler.Get2D()
		local, pdf := core.SampleHemisphereCosine(u1, u2)
		if pdf <= 0 {
			continue
		}
		d := local.TransformDirection(frame).Normalize()
		cos := core.Saturate(d.Dot(n))

		incoming := CastRay(origin, d, sc, depth+1, settings, core.DiffuseRay, sampler, stats)
		sum = sum.Add(incoming.Multiply(cos / pdf))
	}
	return sum.Divide(float32(samples))
}

// indirectSpecular importance samples the GGX lobe. Diffuse bounces do not
// spawn specular paths.
func indirectSpecular(data ShadingData, v core.Vector, frame core.Matrix, sc *scene.Scene, depth int, settings core.RenderSettings, rayType core.RayType, sampler core.Sampler, stats *core.Stats) core.Vector {
	if rayType != core.CameraRay && rayType != core.SpecularRay {
		return core.Vector{}
	}
	samples := SpecularSampleCount(settings.SpecularSamples, depth)
	if samples == 0 {
		return core.Vector{}
	}

	n := data.Normal
	if n.Dot(v) <= 0 {
		return core.Vector{}
	}
	mat := data.Material
	alpha := mat.Alpha()
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

		incoming := CastRay(origin, l, sc, depth+1, settings, core.SpecularRay, sampler, stats)
		sum = sum.Add(material.SampledSpecularWeight(n, v, l, h, mat.Specular, alpha).MultiplyVec(incoming))
	}
	return sum.Divide(float32(samples))
}
