package geometry

import "github.com/df07/go-bvh-pathtracer/pkg/core"

// TriangleHit holds the ray parameter and barycentric coordinates of a hit.
// The hit point is (1-U-V)*v0 + U*v1 + V*v2.
type TriangleHit struct {
	T    float32
	U, V float32
}

// IntersectTriangle tests a ray against triangle (v0, v1, v2) using the
// Möller-Trumbore algorithm. The test is two-sided: back faces are hit too.
func IntersectTriangle(origin, dir, v0, v1, v2 core.Vector) (TriangleHit, bool) {
	e1 := v1.Subtract(v0)
	e2 := v2.Subtract(v0)

	p := dir.Cross(e2)
	det := e1.Dot(p)

	// ray is parallel to the triangle plane
	if det > -core.Epsilon && det < core.Epsilon {
		return TriangleHit{}, false
	}
	invDet := 1 / det

	s := origin.Subtract(v0)
	u := s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return TriangleHit{}, false
	}

	q := s.Cross(e1)
	v := dir.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return TriangleHit{}, false
	}

	t := e2.Dot(q) * invDet
	if t < 0 {
		return TriangleHit{}, false
	}

	return TriangleHit{T: t, U: u, V: v}, true
}
