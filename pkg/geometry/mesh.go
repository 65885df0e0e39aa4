package geometry

import (
	"errors"
	"fmt"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

var (
	// ErrIndexCount is returned when the index list is not 3 per triangle
	ErrIndexCount = errors.New("geometry: index count must be 3 * triangle count")

	// ErrIndexRange is returned when an index points past the vertex list
	ErrIndexRange = errors.New("geometry: vertex index out of range")
)

// Vertex is a mesh vertex with position and shading normal
type Vertex struct {
	Position core.Vector
	Normal   core.Vector
}

// Mesh is an indexed triangle list. Vertices and indices are not modified
// after the scene is built and are shared read-only by all render workers.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32 // 3 per triangle
	NumTris  int
}

// NewMesh validates the index list and returns a mesh
func NewMesh(vertices []Vertex, indices []uint32) (*Mesh, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: got %d indices", ErrIndexCount, len(indices))
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("%w: index %d at %d, %d vertices", ErrIndexRange, idx, i, len(vertices))
		}
	}
	return &Mesh{
		Vertices: vertices,
		Indices:  indices,
		NumTris:  len(indices) / 3,
	}, nil
}

// Triangle returns the three vertices of triangle tri
func (m *Mesh) Triangle(tri int) (Vertex, Vertex, Vertex) {
	base := tri * 3
	return m.Vertices[m.Indices[base]], m.Vertices[m.Indices[base+1]], m.Vertices[m.Indices[base+2]]
}

// BoundingBox returns the box around all vertex positions
func (m *Mesh) BoundingBox() core.BoundingBox {
	box := core.EmptyBox()
	for _, v := range m.Vertices {
		box = box.UnionPoint(v.Position)
	}
	return box
}

// Transform returns a copy of the mesh with positions transformed by world
// and normals by its inverse-transpose
func (m *Mesh) Transform(world core.Matrix) *Mesh {
	normalMatrix := world.NormalMatrix()
	vertices := make([]Vertex, len(m.Vertices))
	for i, v := range m.Vertices {
		vertices[i] = Vertex{
			Position: v.Position.TransformPoint(world),
			Normal:   v.Normal.TransformDirection(normalMatrix).Normalize(),
		}
	}
	return &Mesh{
		Vertices: vertices,
		Indices:  m.Indices,
		NumTris:  m.NumTris,
	}
}

// Intersect tests triangle tri against the ray. Every call counts a triangle
// test and every accepted hit counts an intersection.
func (m *Mesh) Intersect(tri int, origin, dir core.Vector, stats *core.Stats) (TriangleHit, bool) {
	v0, v1, v2 := m.Triangle(tri)
	stats.TriangleTests++
	hit, ok := IntersectTriangle(origin, dir, v0.Position, v1.Position, v2.Position)
	if ok {
		stats.TrianglesIntersected++
	}
	return hit, ok
}

// InterpolateNormal blends the vertex normals of tri with barycentric (u, v).
// The vertex normals are renormalized before blending and the result after.
func (m *Mesh) InterpolateNormal(tri int, u, v float32) core.Vector {
	v0, v1, v2 := m.Triangle(tri)
	w := 1 - u - v
	n := v0.Normal.Normalize().Multiply(w).
		Add(v1.Normal.Normalize().Multiply(u)).
		Add(v2.Normal.Normalize().Multiply(v))
	return n.Normalize()
}

// InterpolatePosition returns the surface point at barycentric (u, v)
func (m *Mesh) InterpolatePosition(tri int, u, v float32) core.Vector {
	v0, v1, v2 := m.Triangle(tri)
	w := 1 - u - v
	p := v0.Position.Multiply(w).Add(v1.Position.Multiply(u)).Add(v2.Position.Multiply(v))
	p[3] = 1
	return p
}

// ComputeVertexNormals replaces every vertex normal with the area weighted
// average of the face normals around it
func (m *Mesh) ComputeVertexNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = core.Vec3(0, 0, 0)
	}
	for tri := 0; tri < m.NumTris; tri++ {
		i0, i1, i2 := m.Indices[tri*3], m.Indices[tri*3+1], m.Indices[tri*3+2]
		p0, p1, p2 := m.Vertices[i0].Position, m.Vertices[i1].Position, m.Vertices[i2].Position
		// unnormalized cross product length is twice the face area
		faceNormal := p1.Subtract(p0).Cross(p2.Subtract(p0))
		m.Vertices[i0].Normal = m.Vertices[i0].Normal.Add(faceNormal)
		m.Vertices[i1].Normal = m.Vertices[i1].Normal.Add(faceNormal)
		m.Vertices[i2].Normal = m.Vertices[i2].Normal.Add(faceNormal)
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}
