package scene

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-bvh-pathtracer/pkg/bvh"
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
	"github.com/df07/go-bvh-pathtracer/pkg/lights"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
)

const tolerance = 1e-4

func approx(a, b, tol float32) bool {
	return math.Abs(float64(a-b)) < float64(tol)
}

var white = material.New(core.Splat(1), core.Splat(0.04), 1, 1, 0, 0)

func settings() core.RenderSettings {
	s := core.DefaultRenderSettings()
	s.MaxRayDepth = 2
	return s
}

// unitSphereScene has a unit sphere at the origin lit from above. The
// tessellation keeps the +z apex strictly inside a triangle.
func unitSphereScene(t *testing.T, strategy bvh.Strategy) *Scene {
	t.Helper()
	obj := NewObject(geometry.NewUVSphere(1, 29, 15), white, core.Point(0, 0, 0), core.Splat(1), core.Vec3(0, 0, 0))
	sc, err := New([]Object{obj}, []lights.Light{lights.NewDirectional(core.Vec3(0, -1, 0), 1, core.Splat(1))}, DefaultCamera(), strategy)
	if err != nil {
		t.Fatal(err)
	}
	return sc
}

func TestNew_NoObjectsFails(t *testing.T) {
	_, err := New(nil, nil, DefaultCamera(), bvh.SAH)
	if !errors.Is(err, bvh.ErrNoObjects) {
		t.Fatalf("expected bvh.ErrNoObjects, got %v", err)
	}
}

func TestTrace_SphereApex(t *testing.T) {
	sc := unitSphereScene(t, bvh.SAH)
	if len(sc.BVH.Nodes) != 1 {
		t.Errorf("single object should give a single leaf, got %d nodes", len(sc.BVH.Nodes))
	}

	var stats core.Stats
	origin := core.Point(0, 0, 5)
	dir := core.Vec3(0, 0, -1)
	hit, ok := sc.Trace(origin, dir, core.Infinity, 0, settings(), core.CameraRay, &stats)
	if !ok {
		t.Fatal("ray towards the sphere missed")
	}

	// the flat facet sits slightly inside the true sphere
	if !approx(hit.T, 4, 0.02) {
		t.Errorf("t = %f, expected about 4", hit.T)
	}
	position, normal := sc.Surface(hit)
	if !approx(position.Z(), 1, 0.02) || !approx(position.X(), 0, tolerance) || !approx(position.Y(), 0, tolerance) {
		t.Errorf("hit position %v, expected about (0,0,1)", position)
	}
	if normal.Z() < 0.98 || !approx(normal.Length(), 1, tolerance) {
		t.Errorf("shading normal %v, expected about +z", normal)
	}
	if hitPoint := origin.Add(dir.Multiply(hit.T)); !approx(hitPoint.Z(), position.Z(), tolerance) {
		t.Errorf("ray point %v disagrees with interpolated position %v", hitPoint, position)
	}

	if stats.RaysShot != 1 || stats.TriangleTests != uint64(sc.Triangles()) || stats.TrianglesIntersected < 1 {
		t.Errorf("unexpected stats %+v for %d triangles", stats, sc.Triangles())
	}
}

func TestTrace_OverlappingBoundsDoNotHideHits(t *testing.T) {
	big := NewObject(geometry.NewUVSphere(2, 32, 16), white, core.Point(0, 0, 0), core.Splat(1), core.Vec3(0, 0, 0))
	small := NewObject(geometry.NewUVSphere(0.2, 16, 8), white, core.Point(1.6, 1.6, 1.6), core.Splat(1), core.Vec3(0, 0, 0))
	if !big.Bounds.ContainsBox(small.Bounds) {
		t.Fatal("test setup: small sphere should be inside the big sphere's box")
	}

	for _, strategy := range []bvh.Strategy{bvh.SAH, bvh.Median} {
		sc, err := New([]Object{big, small}, nil, DefaultCamera(), strategy)
		if err != nil {
			t.Fatal(err)
		}

		var stats core.Stats
		hit, ok := sc.Trace(core.Point(1.62, 1.59, 10), core.Vec3(0, 0, -1), core.Infinity, 0, settings(), core.CameraRay, &stats)
		if !ok {
			t.Fatalf("%s: ray missed the small sphere", strategy)
		}
		if hit.Object != 1 {
			t.Errorf("%s: hit object %d, expected the small sphere", strategy, hit.Object)
		}
		if !approx(hit.T, 8.2, 0.02) {
			t.Errorf("%s: t = %f, expected about 8.2", strategy, hit.T)
		}
	}
}

func TestTrace_RayAlongBoundsFace(t *testing.T) {
	tri, err := geometry.NewMesh([]geometry.Vertex{
		{Position: core.Point(0, 0, -1.5), Normal: core.Vec3(0, 0, 1)},
		{Position: core.Point(1, 0, -1.5), Normal: core.Vec3(0, 0, 1)},
		{Position: core.Point(0, 1, -1.5), Normal: core.Vec3(0, 0, 1)},
	}, []uint32{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	obj := NewObject(tri, white, core.Point(0, 0, 0), core.Splat(1), core.Vec3(0, 0, 0))
	sc, err := New([]Object{obj}, nil, DefaultCamera(), bvh.SAH)
	if err != nil {
		t.Fatal(err)
	}

	// the origin lies on the min x plane of the bounds and the ray has no x component
	var stats core.Stats
	hit, ok := sc.Trace(core.Point(0, 0.5, 0), core.Vec3(0, 0, -1), core.Infinity, 0, settings(), core.CameraRay, &stats)
	if !ok {
		t.Fatalf("ray along the bounds face missed, %d triangle tests", stats.TriangleTests)
	}
	if !approx(hit.T, 1.5, tolerance) {
		t.Errorf("t = %f, expected 1.5", hit.T)
	}
}

func TestLightSummary(t *testing.T) {
	list := []lights.Light{
		lights.NewDirectional(core.Vec3(0, -1, 0), 1, core.Splat(1)),
		lights.NewPoint(core.Point(0, 2, 0), 1, core.Splat(1)),
		lights.NewSpherical(core.Point(1, 2, 0), 1, core.Splat(1), 0.5, 4),
	}
	if got := LightSummary(list); got != "1 directional, 2 spherical" {
		t.Errorf("LightSummary = %q", got)
	}
	if got := LightSummary(nil); got != "none" {
		t.Errorf("LightSummary(nil) = %q, expected none", got)
	}
}

func TestTrace_Deterministic(t *testing.T) {
	sc, err := NewSpheres(Options{Strategy: bvh.SAH})
	if err != nil {
		t.Fatal(err)
	}

	origin, dir := sc.Camera.PrimaryRay(120, 90, 0.5, 0.5, 200, 150)
	var stats core.Stats
	first, ok := sc.Trace(origin, dir, core.Infinity, 0, settings(), core.CameraRay, &stats)
	if !ok {
		t.Fatal("expected the primary ray to hit the scene")
	}
	for i := 0; i < 10; i++ {
		again, _ := sc.Trace(origin, dir, core.Infinity, 0, settings(), core.CameraRay, &stats)
		if again != first {
			t.Fatalf("trace %d returned %+v, first returned %+v", i, again, first)
		}
	}
}

func TestTrace_DepthGuard(t *testing.T) {
	sc := unitSphereScene(t, bvh.SAH)
	s := settings()
	origin := core.Point(0, 0, 5)
	dir := core.Vec3(0, 0, -1)

	var stats core.Stats
	if _, ok := sc.Trace(origin, dir, core.Infinity, s.MaxRayDepth+1, s, core.DiffuseRay, &stats); ok {
		t.Error("ray beyond max depth should find nothing")
	}
	if stats.RaysShot != 0 || stats.TriangleTests != 0 {
		t.Errorf("rays beyond max depth should not be counted, got %+v", stats)
	}

	if _, ok := sc.Trace(origin, dir, core.Infinity, s.MaxRayDepth, s, core.SpecularRay, &stats); !ok {
		t.Error("ray at max depth should still trace")
	}
	if !sc.Occluded(origin, dir, 10, s.MaxRayDepth+1, s, &stats) {
		t.Error("shadow rays are exempt from the depth limit")
	}
	if stats.ShadowRays != 1 || stats.RaysShot != 2 {
		t.Errorf("expected 2 rays with 1 shadow ray, got %+v", stats)
	}
}

func TestOccluded_RespectsDistance(t *testing.T) {
	sc := unitSphereScene(t, bvh.SAH)
	var stats core.Stats
	origin := core.Point(0, 0, 5)
	dir := core.Vec3(0, 0, -1)

	if sc.Occluded(origin, dir, 3.5, 0, settings(), &stats) {
		t.Error("sphere at distance 4 should not block a segment of length 3.5")
	}
	if !sc.Occluded(origin, dir, 4.5, 0, settings(), &stats) {
		t.Error("sphere at distance 4 should block a segment of length 4.5")
	}
}

func TestWorldMatrix_ScaleRotateTranslate(t *testing.T) {
	m := WorldMatrix(core.Point(0, 1, 0), core.Splat(2), core.Vec3(0, core.Pi/2, 0))
	// scale to (2,0,0), rotate about y to (0,0,-2), then translate
	p := core.Point(1, 0, 0).TransformPoint(m)
	if !approx(p.X(), 0, tolerance) || !approx(p.Y(), 1, tolerance) || !approx(p.Z(), -2, tolerance) {
		t.Errorf("transformed point %v, expected (0,1,-2)", p)
	}
}

func TestNewObject_TransformsNormalsAndBounds(t *testing.T) {
	plane := geometry.NewPlane(2, 2, 1, 1)
	obj := NewObject(plane, white, core.Point(0, 0, -8), core.Splat(1), core.Vec3(core.Pi/2, 0, 0))

	// a +y plane rotated 90 degrees about x faces +z
	for i, v := range obj.Mesh.Vertices {
		if !approx(v.Normal.Z(), 1, tolerance) {
			t.Errorf("vertex %d normal %v, expected +z", i, v.Normal)
		}
	}
	if !approx(obj.Bounds.Min().Z(), -8, tolerance) || !approx(obj.Bounds.Max().Z(), -8, tolerance) {
		t.Errorf("bounds %v, expected a flat box at z=-8", obj.Bounds)
	}
	if plane.Vertices[0].Normal.Y() != 1 {
		t.Error("source mesh should not be modified")
	}
}

func TestCamera_PrimaryRay(t *testing.T) {
	tests := []struct {
		name     string
		camera   Camera
		expected core.Vector
	}{
		{"default", DefaultCamera(), core.Vec3(0, 0, -1)},
		{"from +z", NewCamera(core.Point(0, 0, 5), core.Point(0, 0, 0), 40), core.Vec3(0, 0, -1)},
		{"from +x", NewCamera(core.Point(5, 0, 0), core.Point(0, 0, 0), 40), core.Vec3(-1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origin, dir := tt.camera.PrimaryRay(1, 1, 0, 0, 2, 2)
			if dir.Subtract(tt.expected).Length() > tolerance {
				t.Errorf("center ray %v, expected %v", dir, tt.expected)
			}
			if origin.Subtract(tt.camera.Position).Length() > tolerance {
				t.Errorf("ray origin %v, expected camera position %v", origin, tt.camera.Position)
			}
		})
	}

	// top left pixel looks up and to the left within the field of view
	_, dir := DefaultCamera().PrimaryRay(0, 0, 0, 0, 100, 100)
	halfFOV := math.Atan2(float64(dir.Y()), float64(-dir.Z())) * 180 / math.Pi
	if dir.X() >= 0 || dir.Y() <= 0 || math.Abs(halfFOV-20) > 0.01 {
		t.Errorf("corner ray %v, vertical half angle %f", dir, halfFOV)
	}
}

func TestBuiltins_Build(t *testing.T) {
	list := Builtins()
	for i := 1; i < len(list); i++ {
		if list[i-1].ID >= list[i].ID {
			t.Fatalf("builtins not sorted: %s before %s", list[i-1].ID, list[i].ID)
		}
	}

	for _, b := range list {
		if b.ID == "ply" {
			continue
		}
		t.Run(b.ID, func(t *testing.T) {
			sc, err := Load(b.ID, Options{Strategy: bvh.SAH})
			if err != nil {
				t.Fatal(err)
			}
			if err := sc.BVH.Validate(len(sc.Objects)); err != nil {
				t.Error(err)
			}
			if stats := sc.BVHStats(); stats.Objects != len(sc.Objects) {
				t.Errorf("bvh covers %d of %d objects", stats.Objects, len(sc.Objects))
			}
		})
	}

	if _, err := Load("nope", Options{}); !errors.Is(err, ErrUnknownScene) {
		t.Error("expected an error for an unknown scene")
	}
}

func TestNewMeshScene(t *testing.T) {
	if _, err := Load("ply", Options{}); err == nil {
		t.Error("ply scene without a mesh file should fail")
	}

	data := strings.Join([]string{
		"ply", "format ascii 1.0",
		"element vertex 4",
		"property float x", "property float y", "property float z",
		"element face 4",
		"property list uchar int vertex_indices",
		"end_header",
		"0 0 0", "4 0 0", "0 4 0", "0 0 4",
		"3 0 2 1", "3 0 1 3", "3 0 3 2", "3 1 2 3",
		"",
	}, "\n")
	path := filepath.Join(t.TempDir(), "tetra.ply")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	sc, err := Load("ply", Options{Strategy: bvh.Median, MeshFile: path})
	if err != nil {
		t.Fatal(err)
	}
	bounds := sc.Objects[0].Bounds
	if !approx(bounds.Min().Y(), -0.5, tolerance) {
		t.Errorf("mesh should rest on the floor, min y = %f", bounds.Min().Y())
	}
	if size := bounds.Diagonal(); !approx(max(size.X(), size.Y(), size.Z()), 1, tolerance) {
		t.Errorf("mesh should be scaled to unit size, got %v", size)
	}
}
