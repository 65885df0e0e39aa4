package lights

import (
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
)

// Spherical is a point light when Radius is zero and a spherical area light
// otherwise. Its Intensity is the total power term, so a small sphere lights
// a distant surface like a point light of the same intensity.
type Spherical struct {
	Position core.Vector
	Radius   float32
	Samples  int // light samples per shading point for camera rays
	ColorInfo
}

// NewSpherical creates a spherical light. Radius 0 makes it a point light.
func NewSpherical(position core.Vector, brightness float32, color core.Vector, radius float32, samples int) *Spherical {
	return &Spherical{
		Position:  position,
		Radius:    max(radius, 0),
		Samples:   max(samples, 1),
		ColorInfo: ColorInfo{Color: color, Brightness: brightness},
	}
}

// NewPoint creates a point light
func NewPoint(position core.Vector, brightness float32, color core.Vector) *Spherical {
	return NewSpherical(position, brightness, color, 0, 1)
}

func (s *Spherical) Kind() Kind { return KindSpherical }
func (s *Spherical) light()     {}

// IsPoint reports whether the light has no area
func (s *Spherical) IsPoint() bool {
	return s.Radius == 0
}

// Radiance returns the emitted radiance of the sphere surface. For a sphere
// seen from distance d the irradiance is L·π·(r/d)², which equals a point
// light's I/(4π·d²) when L = I/(4π²·r²).
func (s *Spherical) Radiance() core.Vector {
	if s.Radius == 0 {
		return core.Vector{}
	}
	return s.Intensity().Divide(4 * core.Pi * core.Pi * s.Radius * s.Radius)
}

// Cone returns the unit direction from p to the light center, the distance
// and q, the cosine of the cone half angle the sphere subtends from p.
// inside is true when p lies within the sphere.
func (s *Spherical) Cone(p core.Vector) (w core.Vector, distance, q float32, inside bool) {
	toCenter := s.Position.Subtract(p)
	distance = toCenter.Length()
	if distance <= s.Radius {
		return toCenter.Normalize(), distance, 0, true
	}
	w = toCenter.Divide(distance)
	r := s.Radius / distance
	q = core.Sqrt(max(0, 1-r*r))
	return w, distance, q, false
}

// SampleDirection samples a direction from p uniformly inside the cone
// subtended by the sphere. It returns the direction and its solid angle pdf.
func (s *Spherical) SampleDirection(p core.Vector, u1, u2 float32) (core.Vector, float32) {
	w, _, q, inside := s.Cone(p)
	if inside {
		return core.Vector{}, 0
	}
	local := core.SampleSphereSolidAngle(u1, u2, q)
	dir := local.TransformDirection(core.TangentFrame(w)).Normalize()
	return dir, core.SphereSolidAnglePDF(q)
}

// PDF returns the solid angle density SampleDirection assigns to dir from p
func (s *Spherical) PDF(p, dir core.Vector) float32 {
	w, _, q, inside := s.Cone(p)
	if inside || dir.Dot(w) < q {
		return 0
	}
	return core.SphereSolidAnglePDF(q)
}

// Intersect returns the distance along dir from origin to the sphere surface
func (s *Spherical) Intersect(origin, dir core.Vector) (float32, bool) {
	return geometry.IntersectSphere(s.Position, s.Radius, origin, dir)
}
