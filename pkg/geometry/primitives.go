package geometry

import "github.com/df07/go-bvh-pathtracer/pkg/core"

// NewUVSphere tessellates a sphere of the given radius centered on the origin.
// segments divide the longitude and rings the latitude; the poles lie on the y axis.
func NewUVSphere(radius float32, segments, rings int) *Mesh {
	segments = max(segments, 3)
	rings = max(rings, 2)

	vertices := make([]Vertex, 0, (rings+1)*(segments+1))
	for r := 0; r <= rings; r++ {
		theta := core.Pi * float32(r) / float32(rings)
		sinTheta, cosTheta := core.Sin(theta), core.Cos(theta)
		for s := 0; s <= segments; s++ {
			phi := 2 * core.Pi * float32(s) / float32(segments)
			n := core.Vec3(sinTheta*core.Cos(phi), cosTheta, sinTheta*core.Sin(phi))
			p := n.Multiply(radius)
			vertices = append(vertices, Vertex{
				Position: core.Point(p[0], p[1], p[2]),
				Normal:   n,
			})
		}
	}

	indices := make([]uint32, 0, rings*segments*6)
	stride := uint32(segments + 1)
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := uint32(r)*stride + uint32(s)
			b := a + stride
			// the pole rows collapse one triangle of each quad to a point
			if r != 0 {
				indices = append(indices, a, a+1, b)
			}
			if r != rings-1 {
				indices = append(indices, a+1, b+1, b)
			}
		}
	}

	return &Mesh{Vertices: vertices, Indices: indices, NumTris: len(indices) / 3}
}

// NewPlane creates a width x depth plane in the xz plane facing +y, split
// into xDivs x zDivs quads
func NewPlane(width, depth float32, xDivs, zDivs int) *Mesh {
	xDivs = max(xDivs, 1)
	zDivs = max(zDivs, 1)

	normal := core.Vec3(0, 1, 0)
	vertices := make([]Vertex, 0, (xDivs+1)*(zDivs+1))
	for z := 0; z <= zDivs; z++ {
		pz := (float32(z)/float32(zDivs) - 0.5) * depth
		for x := 0; x <= xDivs; x++ {
			px := (float32(x)/float32(xDivs) - 0.5) * width
			vertices = append(vertices, Vertex{Position: core.Point(px, 0, pz), Normal: normal})
		}
	}

	indices := make([]uint32, 0, xDivs*zDivs*6)
	stride := uint32(xDivs + 1)
	for z := 0; z < zDivs; z++ {
		for x := 0; x < xDivs; x++ {
			a := uint32(z)*stride + uint32(x)
			b := a + 1
			c := a + stride
			d := c + 1
			indices = append(indices, a, c, b, b, c, d)
		}
	}

	return &Mesh{Vertices: vertices, Indices: indices, NumTris: len(indices) / 3}
}

// boxFaces lists each face normal with two in-plane axes where u x v = normal
var boxFaces = [6][3]core.Vector{
	{core.Vec3(1, 0, 0), core.Vec3(0, 1, 0), core.Vec3(0, 0, 1)},
	{core.Vec3(-1, 0, 0), core.Vec3(0, 0, 1), core.Vec3(0, 1, 0)},
	{core.Vec3(0, 1, 0), core.Vec3(0, 0, 1), core.Vec3(1, 0, 0)},
	{core.Vec3(0, -1, 0), core.Vec3(1, 0, 0), core.Vec3(0, 0, 1)},
	{core.Vec3(0, 0, 1), core.Vec3(1, 0, 0), core.Vec3(0, 1, 0)},
	{core.Vec3(0, 0, -1), core.Vec3(0, 1, 0), core.Vec3(1, 0, 0)},
}

// NewBox creates a width x height x depth box centered on the origin with
// flat per-face normals
func NewBox(width, height, depth float32) *Mesh {
	half := core.Vec3(width*0.5, height*0.5, depth*0.5)
	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)

	for _, face := range boxFaces {
		n, u, v := face[0], face[1], face[2]
		base := uint32(len(vertices))
		for _, corner := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := n.Add(u.Multiply(corner[0])).Add(v.Multiply(corner[1])).MultiplyVec(half)
			vertices = append(vertices, Vertex{Position: core.Point(p[0], p[1], p[2]), Normal: n})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	return &Mesh{Vertices: vertices, Indices: indices, NumTris: len(indices) / 3}
}
