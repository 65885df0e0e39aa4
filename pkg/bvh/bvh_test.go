package bvh

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
)

// randomSpheres returns n non-degenerate sphere bounds scattered in a cube
func randomSpheres(n int, seed int64) ([]core.Vector, []float32, []Object) {
	random := rand.New(rand.NewSource(seed))
	centers := make([]core.Vector, n)
	radii := make([]float32, n)
	objects := make([]Object, n)
	for i := range objects {
		c := core.Point(random.Float32()*40-20, random.Float32()*40-20, random.Float32()*40-20)
		r := 0.2 + random.Float32()*1.5
		centers[i], radii[i] = c, r
		objects[i] = Object{
			Bounds:    core.NewBoundingBox(c.Subtract(core.Vec3(r, r, r)), c.Add(core.Vec3(r, r, r))),
			Triangles: 1 + random.Intn(500),
		}
	}
	return centers, radii, objects
}

func unionOf(objects []Object) core.BoundingBox {
	box := core.EmptyBox()
	for _, o := range objects {
		box = box.Union(o.Bounds)
	}
	return box
}

func TestBuild_EmptyFails(t *testing.T) {
	_, err := Build(nil, SAH)
	if !errors.Is(err, ErrNoObjects) {
		t.Fatalf("expected ErrNoObjects, got %v", err)
	}
}

func TestBuild_SingleObjectIsOneLeaf(t *testing.T) {
	box := core.NewBoundingBox(core.Point(-1, -1, -1), core.Point(1, 1, 1))
	for _, strategy := range []Strategy{SAH, Median} {
		tree, err := Build([]Object{{Bounds: box, Triangles: 10}}, strategy)
		if err != nil {
			t.Fatal(err)
		}
		if len(tree.Nodes) != 1 || !tree.Nodes[0].IsLeaf() || tree.Nodes[0].NumPrims != 1 {
			t.Fatalf("%s: expected a single leaf, got %+v", strategy, tree.Nodes)
		}
		if len(tree.Indices) != 1 || tree.Indices[0] != 0 {
			t.Fatalf("%s: indices %v", strategy, tree.Indices)
		}
	}
}

func TestBuild_CoincidentCentroidsMakeLeaf(t *testing.T) {
	// nested boxes share a centroid so no split can separate them
	objects := []Object{
		{Bounds: core.NewBoundingBox(core.Point(-1, -1, -1), core.Point(1, 1, 1)), Triangles: 1},
		{Bounds: core.NewBoundingBox(core.Point(-2, -2, -2), core.Point(2, 2, 2)), Triangles: 1},
		{Bounds: core.NewBoundingBox(core.Point(-3, -3, -3), core.Point(3, 3, 3)), Triangles: 1},
	}
	tree, err := Build(objects, SAH)
	if err != nil {
		t.Fatal(err)
	}
	if len(tree.Nodes) != 1 || tree.Nodes[0].NumPrims != 3 {
		t.Fatalf("expected one leaf with 3 objects, got %d nodes", len(tree.Nodes))
	}
}

func TestBuild_CoverageAndLayout(t *testing.T) {
	for _, strategy := range []Strategy{SAH, Median} {
		for _, n := range []int{2, 3, 5, 17, 300, 1000} {
			_, _, objects := randomSpheres(n, int64(n))
			tree, err := Build(objects, strategy)
			if err != nil {
				t.Fatal(err)
			}
			if err := tree.Validate(n); err != nil {
				t.Fatalf("%s n=%d: %v", strategy, n, err)
			}

			leafUnion := core.EmptyBox()
			for _, node := range tree.Nodes {
				if node.IsLeaf() {
					leafUnion = leafUnion.Union(node.Bounds)
				}
			}
			if leafUnion != unionOf(objects) {
				t.Errorf("%s n=%d: leaf union %v, object union %v", strategy, n, leafUnion, unionOf(objects))
			}
			if tree.Nodes[0].Bounds != unionOf(objects) {
				t.Errorf("%s n=%d: root bounds differ from object union", strategy, n)
			}
		}
	}
}

func TestBuild_LargeRangeAlwaysSplits(t *testing.T) {
	_, _, objects := randomSpheres(maxLeafObjects*3, 5)
	tree, err := Build(objects, SAH)
	if err != nil {
		t.Fatal(err)
	}
	s := tree.Stats(func(int) int { return 1 })
	if s.MaxLeafObjects > maxLeafObjects {
		t.Errorf("leaf with %d objects, expected at most %d", s.MaxLeafObjects, maxLeafObjects)
	}
	if s.Objects != len(objects) || s.Nodes != len(tree.Nodes) || s.Leaves*2-1 != s.Nodes {
		t.Errorf("inconsistent stats %+v", s)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	_, _, objects := randomSpheres(200, 3)
	a, _ := Build(objects, SAH)
	b, _ := Build(objects, SAH)
	if len(a.Nodes) != len(b.Nodes) {
		t.Fatal("node count differs between builds")
	}
	for i := range a.Indices {
		if a.Indices[i] != b.Indices[i] {
			t.Fatalf("index %d differs between builds", i)
		}
	}
}

func TestBuild_DoesNotModifyInput(t *testing.T) {
	_, _, objects := randomSpheres(50, 8)
	before := append([]Object(nil), objects...)
	if _, err := Build(objects, SAH); err != nil {
		t.Fatal(err)
	}
	for i := range objects {
		if objects[i] != before[i] {
			t.Fatalf("object %d changed", i)
		}
	}
}

func TestIntersect_MatchesBruteForce(t *testing.T) {
	centers, radii, objects := randomSpheres(400, 21)
	random := rand.New(rand.NewSource(99))

	for _, strategy := range []Strategy{SAH, Median} {
		tree, err := Build(objects, strategy)
		if err != nil {
			t.Fatal(err)
		}

		for r := 0; r < 500; r++ {
			origin := core.Point(random.Float32()*60-30, random.Float32()*60-30, random.Float32()*60-30)
			dir := core.Vec3(random.Float32()*2-1, random.Float32()*2-1, random.Float32()*2-1).Normalize()

			// brute force nearest
			expected := core.Infinity
			expectedObj := -1
			for i := range centers {
				if d, ok := geometry.IntersectSphere(centers[i], radii[i], origin, dir); ok && d < expected {
					expected, expectedObj = d, i
				}
			}

			hitObj := -1
			got, hit := tree.Intersect(origin, dir, core.Infinity, func(obj int, closest float32) (float32, bool) {
				d, ok := geometry.IntersectSphere(centers[obj], radii[obj], origin, dir)
				if ok && d < closest {
					hitObj = obj
					return d, true
				}
				return 0, false
			})

			if hit != (expectedObj >= 0) {
				t.Fatalf("%s ray %d: hit=%v, brute force object %d", strategy, r, hit, expectedObj)
			}
			if hit && (hitObj != expectedObj || got != expected) {
				t.Fatalf("%s ray %d: object %d at %f, expected %d at %f", strategy, r, hitObj, got, expectedObj, expected)
			}
		}
	}
}

func TestIntersect_RespectsTMax(t *testing.T) {
	objects := []Object{
		{Bounds: core.NewBoundingBox(core.Point(-1, -1, -6), core.Point(1, 1, -4)), Triangles: 1},
		{Bounds: core.NewBoundingBox(core.Point(-1, -1, -16), core.Point(1, 1, -14)), Triangles: 1},
	}
	tree, _ := Build(objects, SAH)

	calls := 0
	test := func(obj int, closest float32) (float32, bool) {
		calls++
		d := float32(4)
		if obj == 1 {
			d = 14
		}
		return d, d < closest
	}

	if _, hit := tree.Intersect(core.Point(0, 0, 0), core.Vec3(0, 0, -1), 3, test); hit {
		t.Error("hit beyond tMax")
	}
	if calls != 0 {
		t.Errorf("%d object tests for boxes beyond tMax", calls)
	}
	if d, hit := tree.Intersect(core.Point(0, 0, 0), core.Vec3(0, 0, -1), core.Infinity, test); !hit || d != 4 {
		t.Errorf("got %f hit=%v, expected 4", d, hit)
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in       string
		expected Strategy
		err      bool
	}{
		{"sah", SAH, false},
		{"", SAH, false},
		{"MEDIAN", Median, false},
		{"octree", SAH, true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if (err != nil) != tt.err || got != tt.expected {
			t.Errorf("ParseStrategy(%q) = %v, %v", tt.in, got, err)
		}
	}
}
