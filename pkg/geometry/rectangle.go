package geometry

import "github.com/df07/go-bvh-pathtracer/pkg/core"

// Rectangle is a parallelogram spanned by two edges from a corner
type Rectangle struct {
	Corner core.Vector
	Edge1  core.Vector
	Edge2  core.Vector
	Normal core.Vector // unit normal, Edge1 x Edge2 direction
}

// NewRectangle creates a rectangle from a corner and two edges
func NewRectangle(corner, edge1, edge2 core.Vector) Rectangle {
	return Rectangle{
		Corner: corner,
		Edge1:  edge1,
		Edge2:  edge2,
		Normal: edge1.Cross(edge2).Normalize(),
	}
}

// Area returns the rectangle area
func (r Rectangle) Area() float32 {
	return r.Edge1.Cross(r.Edge2).Length()
}

// Intersect tests the ray against the rectangle from either side and returns
// the ray parameter and hit point
func (r Rectangle) Intersect(origin, dir core.Vector) (float32, core.Vector, bool) {
	denom := r.Normal.Dot(dir)
	if denom > -core.Epsilon && denom < core.Epsilon {
		return 0, core.Vector{}, false
	}

	t := r.Normal.Dot(r.Corner.Subtract(origin)) / denom
	if t <= 0 {
		return 0, core.Vector{}, false
	}

	hit := origin.Add(dir.Multiply(t))
	local := hit.Subtract(r.Corner)

	d1 := local.Dot(r.Edge1)
	if d1 < 0 || d1 > r.Edge1.Dot(r.Edge1) {
		return 0, core.Vector{}, false
	}
	d2 := local.Dot(r.Edge2)
	if d2 < 0 || d2 > r.Edge2.Dot(r.Edge2) {
		return 0, core.Vector{}, false
	}

	hit[3] = 1
	return t, hit, true
}

// Contains reports whether p lies on the rectangle within eps
func (r Rectangle) Contains(p core.Vector, eps float32) bool {
	local := p.Subtract(r.Corner)
	if core.Abs(local.Dot(r.Normal)) > eps {
		return false
	}
	l1 := r.Edge1.Length()
	l2 := r.Edge2.Length()
	d1 := local.Dot(r.Edge1) / l1
	d2 := local.Dot(r.Edge2) / l2
	return d1 >= -eps && d1 <= l1+eps && d2 >= -eps && d2 <= l2+eps
}
