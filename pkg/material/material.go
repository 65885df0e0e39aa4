package material

import "github.com/df07/go-bvh-pathtracer/pkg/core"

// Material describes a microfacet surface. It is copied by value into every
// scene object and shading record.
type Material struct {
	Albedo       core.Vector // diffuse color
	Specular     core.Vector // specular reflectance at normal incidence (F0)
	Roughness    float32     // perceptual roughness in [0, 1]
	IOR          float32     // index of refraction
	Transmission float32     // fraction of light transmitted, unused by the shader
	Metalness    float32     // 1 disables the diffuse lobe
}

// New creates a material, clamping roughness and metalness to [0, 1]
func New(albedo, specular core.Vector, roughness, ior, transmission, metalness float32) Material {
	return Material{
		Albedo:       albedo,
		Specular:     specular,
		Roughness:    core.Saturate(roughness),
		IOR:          ior,
		Transmission: transmission,
		Metalness:    core.Saturate(metalness),
	}
}

// Dielectric is a plastic-like material with 4% specular reflectance
func Dielectric(albedo core.Vector, roughness float32) Material {
	return New(albedo, core.Splat(0.04), roughness, 1.5, 0, 0)
}

// Metal is a material with no diffuse lobe
func Metal(specular core.Vector, roughness float32) Material {
	return New(core.Splat(0), specular, roughness, 1, 0, 1)
}

// Alpha returns the GGX width parameter for this material
func (m Material) Alpha() float32 {
	return RoughnessToAlpha(m.Roughness)
}

// HasDiffuse reports whether the diffuse lobe contributes
func (m Material) HasDiffuse() bool {
	return m.Metalness < 1
}
