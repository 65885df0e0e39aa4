package integrator

import (
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
	"github.com/df07/go-bvh-pathtracer/pkg/scene"
)

// ShadingData is the surface record built for a hit and handed to Shade
type ShadingData struct {
	Position core.Vector
	Normal   core.Vector // interpolated shading normal, unit length
	Material material.Material
}

// Contribution is the radiance split into the lobe that is later scaled by
// albedo/π and the specular lobe that is not
type Contribution struct {
	Diffuse  core.Vector
	Specular core.Vector
}

// Add returns the component-wise sum
func (c Contribution) Add(other Contribution) Contribution {
	return Contribution{
		Diffuse:  c.Diffuse.Add(other.Diffuse),
		Specular: c.Specular.Add(other.Specular),
	}
}

// Scale multiplies both lobes by s
func (c Contribution) Scale(s float32) Contribution {
	return Contribution{
		Diffuse:  c.Diffuse.Multiply(s),
		Specular: c.Specular.Multiply(s),
	}
}

// CastRay returns the radiance arriving at origin from direction dir. Rays
// past settings.MaxRayDepth return black and rays that leave the scene return
// settings.Background.
func CastRay(origin, dir core.Vector, sc *scene.Scene, depth int, settings core.RenderSettings, rayType core.RayType, sampler core.Sampler, stats *core.Stats) core.Vector {
	if depth > settings.MaxRayDepth {
		return core.Vector{}
	}

	hit, ok := sc.Trace(origin, dir, core.Infinity, depth, settings, rayType, stats)
	if !ok {
		return settings.Background
	}

	position, normal := sc.Surface(hit)
	// triangles are two-sided, shade the side the ray arrived on
	if normal.Dot(dir) > 0 {
		normal = normal.Negate()
	}

	data := ShadingData{
		Position: position,
		Normal:   normal,
		Material: sc.Objects[hit.Object].Material,
	}
	return Shade(data, dir, sc, depth, settings, rayType, sampler, stats)
}

// Shade evaluates direct and indirect lighting at a surface point seen along
// dir. The result is HDR radiance.
func Shade(data ShadingData, dir core.Vector, sc *scene.Scene, depth int, settings core.RenderSettings, rayType core.RayType, sampler core.Sampler, stats *core.Stats) core.Vector {
	direct := DirectLighting(data, dir, sc, depth, settings, rayType, sampler, stats)
	indirect := IndirectLighting(data, dir, sc, depth, settings, rayType, sampler, stats)
	return Combine(data.Material, direct.Add(indirect))
}

// Combine applies the material albedo to the diffuse lobe and adds the
// specular lobe: albedo/π·diffuse + specular
func Combine(mat material.Material, c Contribution) core.Vector {
	return mat.Albedo.Multiply(core.InvPi).MultiplyVec(c.Diffuse).Add(c.Specular)
}

// ComputeLighting evaluates the microfacet model for light arriving from the
// unit direction l with the given intensity and falloff. The diffuse lobe
// receives the energy the Fresnel term does not reflect.
func ComputeLighting(mat material.Material, n, v, l core.Vector, falloff float32, intensity core.Vector) Contribution {
	nl := core.Saturate(n.Dot(l))
	if nl == 0 || falloff <= 0 {
		return Contribution{}
	}

	brdf, fresnel := material.Specular(n, v, l, mat.Specular, mat.Alpha())
	energy := intensity.Multiply(nl / falloff)
	return Contribution{
		Diffuse:  core.Splat(1).Subtract(fresnel).MultiplyVec(energy),
		Specular: brdf.MultiplyVec(energy),
	}
}

// offsetOrigin moves p off the surface along n so secondary rays do not
// hit the triangle they start on
func offsetOrigin(p, n core.Vector) core.Vector {
	return p.Add(n.Multiply(core.RayOffset))
}

// lightSamples returns how many samples an area light takes. Only camera
// rays use the full count.
func lightSamples(samples int, rayType core.RayType) int {
	if rayType != core.CameraRay || samples < 1 {
		return 1
	}
	return samples
}
