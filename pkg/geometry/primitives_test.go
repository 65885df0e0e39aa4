package geometry

import (
	"testing"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

func TestNewUVSphere(t *testing.T) {
	mesh := NewUVSphere(2, 12, 6)

	if len(mesh.Indices) != 3*mesh.NumTris {
		t.Fatalf("%d indices for %d triangles", len(mesh.Indices), mesh.NumTris)
	}
	// two triangles per quad minus one per quad on each pole row
	if want := 12*6*2 - 2*12; mesh.NumTris != want {
		t.Errorf("NumTris %d, expected %d", mesh.NumTris, want)
	}
	for i, v := range mesh.Vertices {
		if !approx(v.Position.Length(), 2) {
			t.Fatalf("vertex %d at radius %f", i, v.Position.Length())
		}
		if !approx(v.Normal.Length(), 1) {
			t.Fatalf("vertex %d normal length %f", i, v.Normal.Length())
		}
	}

	box := mesh.BoundingBox()
	if !vecApprox(box.Max(), core.Vec3(2, 2, 2), 0.3) || !vecApprox(box.Min(), core.Vec3(-2, -2, -2), 0.3) {
		t.Errorf("bounding box %v", box)
	}
}

func TestNewPlane(t *testing.T) {
	mesh := NewPlane(4, 2, 2, 3)
	if mesh.NumTris != 12 {
		t.Errorf("NumTris %d, expected 12", mesh.NumTris)
	}
	if len(mesh.Vertices) != 12 {
		t.Errorf("%d vertices, expected 12", len(mesh.Vertices))
	}
	for tri := 0; tri < mesh.NumTris; tri++ {
		v0, v1, v2 := mesh.Triangle(tri)
		geometric := v1.Position.Subtract(v0.Position).Cross(v2.Position.Subtract(v0.Position))
		if geometric.Y() <= 0 {
			t.Errorf("triangle %d winds away from +y", tri)
		}
	}

	box := mesh.BoundingBox()
	if box.Min() != core.Point(-2, 0, -1) || box.Max() != core.Point(2, 0, 1) {
		t.Errorf("bounding box %v", box)
	}
}

func TestNewBox(t *testing.T) {
	mesh := NewBox(1, 2, 3)
	if mesh.NumTris != 12 || len(mesh.Vertices) != 24 {
		t.Fatalf("got %d triangles, %d vertices", mesh.NumTris, len(mesh.Vertices))
	}
	for tri := 0; tri < mesh.NumTris; tri++ {
		v0, v1, v2 := mesh.Triangle(tri)
		geometric := v1.Position.Subtract(v0.Position).Cross(v2.Position.Subtract(v0.Position)).Normalize()
		if !vecApprox(geometric, v0.Normal, tolerance) {
			t.Errorf("triangle %d winding %v disagrees with normal %v", tri, geometric, v0.Normal)
		}
	}
	box := mesh.BoundingBox()
	if box.Min() != core.Point(-0.5, -1, -1.5) || box.Max() != core.Point(0.5, 1, 1.5) {
		t.Errorf("bounding box %v", box)
	}
}

func TestMesh_TransformUsesInverseTransposeForNormals(t *testing.T) {
	mesh := NewUVSphere(1, 16, 8)
	world := core.Scaling(3, 1, 1).Multiply(core.Translation(0, 2, 0))
	transformed := mesh.Transform(world)

	for tri := 0; tri < transformed.NumTris; tri++ {
		v0, v1, v2 := transformed.Triangle(tri)
		// an ellipsoid normal at p is proportional to (x/9, y-2, z)
		for _, v := range []Vertex{v0, v1, v2} {
			p := v.Position
			want := core.Vec3(p.X()/9, p.Y()-2, p.Z()).Normalize()
			if !vecApprox(v.Normal, want, 1e-3) {
				t.Fatalf("normal %v at %v, expected %v", v.Normal, p, want)
			}
		}
	}
	if !approx(transformed.BoundingBox().Max().X(), 3) {
		t.Errorf("scaled bounding box %v", transformed.BoundingBox())
	}
}

func TestIntersectSphere(t *testing.T) {
	center := core.Point(0, 0, -5)

	tHit, ok := IntersectSphere(center, 1, core.Point(0, 0, 0), core.Vec3(0, 0, -1))
	if !ok || !approx(tHit, 4) {
		t.Errorf("outside hit t=%f ok=%v, expected 4", tHit, ok)
	}

	tHit, ok = IntersectSphere(center, 1, core.Point(0, 0, -5), core.Vec3(0, 0, -1))
	if !ok || !approx(tHit, 1) {
		t.Errorf("inside hit t=%f ok=%v, expected 1", tHit, ok)
	}

	if _, ok := IntersectSphere(center, 1, core.Point(0, 0, 0), core.Vec3(0, 0, 1)); ok {
		t.Error("sphere behind ray should miss")
	}
	if _, ok := IntersectSphere(center, 1, core.Point(2, 0, 0), core.Vec3(0, 0, -1)); ok {
		t.Error("offset ray should miss")
	}
}

func TestRectangle_Intersect(t *testing.T) {
	rect := NewRectangle(core.Point(-1, 2, -1), core.Vec3(2, 0, 0), core.Vec3(0, 0, 2))
	if !approx(rect.Area(), 4) {
		t.Errorf("area %f, expected 4", rect.Area())
	}

	tHit, p, ok := rect.Intersect(core.Point(0.5, 0, 0.5), core.Vec3(0, 1, 0))
	if !ok {
		t.Fatal("expected hit from below")
	}
	if !approx(tHit, 2) || !vecApprox(p, core.Vec3(0.5, 2, 0.5), tolerance) {
		t.Errorf("t=%f p=%v", tHit, p)
	}

	if _, _, ok := rect.Intersect(core.Point(1.5, 0, 0), core.Vec3(0, 1, 0)); ok {
		t.Error("expected miss outside extent")
	}
	if _, _, ok := rect.Intersect(core.Point(0, 0, 0), core.Vec3(1, 0, 0)); ok {
		t.Error("expected miss for parallel ray")
	}
	if _, _, ok := rect.Intersect(core.Point(0, 3, 0), core.Vec3(0, 1, 0)); ok {
		t.Error("expected miss for plane behind ray")
	}

	diagonal := core.Vec3(1, 1, 0).Normalize()
	if _, _, ok := rect.Intersect(core.Point(-1.5, 0, 0), diagonal); !ok {
		t.Error("expected oblique hit")
	}
}
