package material

import "github.com/df07/go-bvh-pathtracer/pkg/core"

// minAlpha keeps the GGX lobe finite for perfectly smooth surfaces
const minAlpha = 1e-3

// RoughnessToAlpha maps perceptual roughness to the GGX width alpha = roughness²
func RoughnessToAlpha(roughness float32) float32 {
	return max(roughness*roughness, minAlpha)
}

// GGXDistribution is the GGX/Trowbridge-Reitz normal distribution D(h)
func GGXDistribution(nh, alpha float32) float32 {
	if nh <= 0 {
		return 0
	}
	a2 := alpha * alpha
	d := nh*nh*(a2-1) + 1
	return a2 / (core.Pi * d * d)
}

// smithLambda is the GGX Smith auxiliary function for a direction with
// cosine c to the normal
func smithLambda(c, alpha float32) float32 {
	if c >= 1 {
		return 0
	}
	c2 := c * c
	tan2 := (1 - c2) / c2
	return (-1 + core.Sqrt(1+alpha*alpha*tan2)) / 2
}

// SmithG is the height-correlated Smith masking-shadowing term for GGX
func SmithG(nl, nv, alpha float32) float32 {
	if nl <= 0 || nv <= 0 {
		return 0
	}
	return 1 / (1 + smithLambda(nl, alpha) + smithLambda(nv, alpha))
}

// SchlickFresnel approximates Fresnel reflectance with F0 = f0
func SchlickFresnel(lh float32, f0 core.Vector) core.Vector {
	w := core.Pow5(1 - core.Saturate(lh))
	return f0.Add(core.Splat(1).Subtract(f0).Multiply(w))
}

// Specular evaluates the microfacet specular BRDF F·D·G / (4·n·l·n·v) and
// returns it together with the Fresnel term. Directions are unit vectors
// pointing away from the surface. Grazing configurations return zero.
func Specular(n, v, l core.Vector, f0 core.Vector, alpha float32) (brdf, fresnel core.Vector) {
	h := v.Add(l).Normalize()
	nl := core.Saturate(n.Dot(l))
	nv := core.Abs(n.Dot(v))
	nh := core.Saturate(n.Dot(h))
	lh := core.Saturate(l.Dot(h))

	fresnel = SchlickFresnel(lh, f0)
	denom := 4 * nl * nv
	if denom <= core.Epsilon {
		return core.Vector{}, fresnel
	}

	d := GGXDistribution(nh, alpha)
	g := SmithG(nl, nv, alpha)
	return fresnel.Multiply(d * g / denom), fresnel
}

// GGXReflectionPDF is the solid angle density of a reflected direction l when
// the half vector h is sampled proportional to D(h)·n·h
func GGXReflectionPDF(n, v, l core.Vector, alpha float32) float32 {
	h := v.Add(l).Normalize()
	nh := n.Dot(h)
	vh := core.Abs(v.Dot(h))
	if nh <= 0 || vh <= 0 {
		return 0
	}
	return GGXDistribution(nh, alpha) * nh / (4 * vh)
}

// SampledSpecularWeight returns brdf·cosθl/pdf for a direction generated by
// GGX half-vector sampling, which simplifies to F·G·(v·h)/(n·v·n·h).
// Samples below the surface return zero.
func SampledSpecularWeight(n, v, l, h core.Vector, f0 core.Vector, alpha float32) core.Vector {
	nl := n.Dot(l)
	nv := core.Abs(n.Dot(v))
	nh := n.Dot(h)
	vh := core.Abs(v.Dot(h))
	if nl <= 0 || nv <= core.Epsilon || nh <= core.Epsilon {
		return core.Vector{}
	}

	f := SchlickFresnel(core.Saturate(l.Dot(h)), f0)
	g := SmithG(nl, nv, alpha)
	return f.Multiply(g * vh / (nv * nh))
}
