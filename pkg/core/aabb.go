package core

// BoundingBox is an axis-aligned box stored as its min and max corners.
// Bounds[0] is the min corner and Bounds[1] the max corner so the slab test
// can pick the near/far corner by indexing with the ray's direction sign.
type BoundingBox struct {
	Bounds [2]Vector
}

// EmptyBox returns a box with min=+Inf and max=-Inf, the identity for Union
func EmptyBox() BoundingBox {
	inf := Infinity
	return BoundingBox{Bounds: [2]Vector{
		Point(inf, inf, inf),
		Point(-inf, -inf, -inf),
	}}
}

// NewBoundingBox creates a box from two corners in any order
func NewBoundingBox(a, b Vector) BoundingBox {
	return BoundingBox{Bounds: [2]Vector{
		Point(min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])),
		Point(max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])),
	}}
}

// BoundingBoxFromPoints returns the smallest box containing all points
func BoundingBoxFromPoints(points ...Vector) BoundingBox {
	box := EmptyBox()
	for _, p := range points {
		box = box.UnionPoint(p)
	}
	return box
}

// Min returns the min corner
func (b BoundingBox) Min() Vector { return b.Bounds[0] }

// Max returns the max corner
func (b BoundingBox) Max() Vector { return b.Bounds[1] }

// IsEmpty reports whether the box contains no points
func (b BoundingBox) IsEmpty() bool {
	return b.Bounds[0][0] > b.Bounds[1][0] ||
		b.Bounds[0][1] > b.Bounds[1][1] ||
		b.Bounds[0][2] > b.Bounds[1][2]
}

// Union returns a box bounding both boxes
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	return BoundingBox{Bounds: [2]Vector{
		b.Bounds[0].Min(other.Bounds[0]),
		b.Bounds[1].Max(other.Bounds[1]),
	}}
}

// UnionPoint returns a box grown to contain p
func (b BoundingBox) UnionPoint(p Vector) BoundingBox {
	return BoundingBox{Bounds: [2]Vector{
		b.Bounds[0].Min(p),
		b.Bounds[1].Max(p),
	}}
}

// Diagonal returns max-min
func (b BoundingBox) Diagonal() Vector {
	return b.Bounds[1].Subtract(b.Bounds[0])
}

// Centroid returns the center point
func (b BoundingBox) Centroid() Vector {
	c := b.Bounds[0].Add(b.Bounds[1]).Multiply(0.5)
	c[3] = 1
	return c
}

// SurfaceArea returns the surface area. An empty box has zero area.
func (b BoundingBox) SurfaceArea() float32 {
	if b.IsEmpty() {
		return 0
	}
	d := b.Diagonal()
	return 2 * (d[0]*d[1] + d[0]*d[2] + d[1]*d[2])
}

// MaximumExtent returns the axis (0=X, 1=Y, 2=Z) with the largest span
func (b BoundingBox) MaximumExtent() int {
	d := b.Diagonal()
	if d[0] > d[1] && d[0] > d[2] {
		return 0
	}
	if d[1] > d[2] {
		return 1
	}
	return 2
}

// Offset returns the position of p relative to the box corners, 0 at min and
// 1 at max on each axis. A flat axis reports the raw distance from min.
func (b BoundingBox) Offset(p Vector) Vector {
	o := p.Subtract(b.Bounds[0])
	for axis := 0; axis < 3; axis++ {
		if b.Bounds[1][axis] > b.Bounds[0][axis] {
			o[axis] /= b.Bounds[1][axis] - b.Bounds[0][axis]
		}
	}
	o[3] = 0
	return o
}

// Contains reports whether p lies inside the box, boundary included
func (b BoundingBox) Contains(p Vector) bool {
	return p[0] >= b.Bounds[0][0] && p[0] <= b.Bounds[1][0] &&
		p[1] >= b.Bounds[0][1] && p[1] <= b.Bounds[1][1] &&
		p[2] >= b.Bounds[0][2] && p[2] <= b.Bounds[1][2]
}

// ContainsBox reports whether other lies entirely inside the box
func (b BoundingBox) ContainsBox(other BoundingBox) bool {
	return b.Contains(other.Bounds[0]) && b.Contains(other.Bounds[1])
}

// DirectionSign returns 1 per axis where invDir is negative, 0 otherwise
func DirectionSign(invDir Vector) [3]int {
	var sign [3]int
	for axis := 0; axis < 3; axis++ {
		if invDir[axis] < 0 {
			sign[axis] = 1
		}
	}
	return sign
}

// IntersectP runs the slab test against a ray with precomputed reciprocal
// direction and sign. The sign selects the near corner per axis so no
// per-axis swap is needed. Zero direction components give ±Inf reciprocals.
// An origin lying on a slab plane of such an axis yields 0*Inf = NaN, and a
// NaN bound never replaces a finite one, so rays running along a box face
// still hit it.
func (b BoundingBox) IntersectP(origin, invDir Vector, sign [3]int, tMax float32) bool {
	tMin := (b.Bounds[sign[0]][0] - origin[0]) * invDir[0]
	tFar := (b.Bounds[1-sign[0]][0] - origin[0]) * invDir[0]
	tyMin := (b.Bounds[sign[1]][1] - origin[1]) * invDir[1]
	tyMax := (b.Bounds[1-sign[1]][1] - origin[1]) * invDir[1]

	if tMin > tyMax || tyMin > tFar {
		return false
	}
	if tyMin > tMin || tMin != tMin {
		tMin = tyMin
	}
	if tyMax < tFar || tFar != tFar {
		tFar = tyMax
	}

	tzMin := (b.Bounds[sign[2]][2] - origin[2]) * invDir[2]
	tzMax := (b.Bounds[1-sign[2]][2] - origin[2]) * invDir[2]

	if tMin > tzMax || tzMin > tFar {
		return false
	}
	if tzMin > tMin || tMin != tMin {
		tMin = tzMin
	}
	if tzMax < tFar || tFar != tFar {
		tFar = tzMax
	}

	return tMin < tMax && tFar > 0
}

// Hit runs the slab test for an arbitrary direction
func (b BoundingBox) Hit(origin, dir Vector, tMax float32) bool {
	inv := dir.Reciprocal()
	return b.IntersectP(origin, inv, DirectionSign(inv), tMax)
}
