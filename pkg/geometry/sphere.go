package geometry

import "github.com/df07/go-bvh-pathtracer/pkg/core"

// IntersectSphere returns the nearest non-negative ray parameter where the ray
// meets the sphere. dir must be unit length. A ray starting inside the sphere
// reports the exit point.
func IntersectSphere(center core.Vector, radius float32, origin, dir core.Vector) (float32, bool) {
	l := center.Subtract(origin)
	tca := l.Dot(dir)
	d2 := l.Dot(l) - tca*tca
	r2 := radius * radius
	if d2 > r2 {
		return 0, false
	}

	thc := core.Sqrt(r2 - d2)
	t0 := tca - thc
	t1 := tca + thc
	if t0 < 0 {
		t0 = t1
	}
	if t0 < 0 {
		return 0, false
	}
	return t0, true
}
