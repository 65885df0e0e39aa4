package scene

import (
	"fmt"
	"strings"

	"github.com/df07/go-bvh-pathtracer/log"
	"github.com/df07/go-bvh-pathtracer/pkg/bvh"
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
	"github.com/df07/go-bvh-pathtracer/pkg/lights"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
)

// Object is a mesh in world space with its material. Objects are stored in
// one slice and referenced by index from the BVH.
type Object struct {
	Mesh     *geometry.Mesh
	Material material.Material
	Bounds   core.BoundingBox // world space, computed once
}

// WorldMatrix composes scale, rotation about x then y (radians) and
// translation into one row-vector transform
func WorldMatrix(position, scale, rotation core.Vector) core.Matrix {
	return core.Scaling(scale.X(), scale.Y(), scale.Z()).
		Multiply(core.RotationX(rotation.X())).
		Multiply(core.RotationY(rotation.Y())).
		Multiply(core.Translation(position.X(), position.Y(), position.Z()))
}

// NewObject transforms mesh into world space and computes its bounds. The
// source mesh is left untouched so one generated mesh can be placed many
// times.
func NewObject(mesh *geometry.Mesh, mat material.Material, position, scale, rotation core.Vector) Object {
	world := mesh.Transform(WorldMatrix(position, scale, rotation))
	return Object{
		Mesh:     world,
		Material: mat,
		Bounds:   world.BoundingBox(),
	}
}

// Scene is the immutable render input. It is built once and shared
// read-only by all workers.
type Scene struct {
	Objects []Object
	Lights  []lights.Light
	BVH     *bvh.Tree
	Camera  Camera
}

// New builds the BVH over objects and returns the scene
func New(objects []Object, lightList []lights.Light, camera Camera, strategy bvh.Strategy) (*Scene, error) {
	items := make([]bvh.Object, len(objects))
	triangles := 0
	for i, obj := range objects {
		items[i] = bvh.Object{Bounds: obj.Bounds, Triangles: obj.Mesh.NumTris}
		triangles += obj.Mesh.NumTris
	}

	tree, err := bvh.Build(items, strategy)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}

	log.New("scene").Infof("%d objects, %d triangles, lights: %s, %d bvh nodes",
		len(objects), triangles, LightSummary(lightList), len(tree.Nodes))

	return &Scene{
		Objects: objects,
		Lights:  lightList,
		BVH:     tree,
		Camera:  camera,
	}, nil
}

// LightSummary counts the lights per kind, e.g. "1 directional, 2 spherical"
func LightSummary(lightList []lights.Light) string {
	var counts [lights.KindRectangular + 1]int
	for _, l := range lightList {
		counts[l.Kind()]++
	}

	var parts []string
	for kind, n := range counts {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, lights.Kind(kind)))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// Triangles returns the total triangle count
func (s *Scene) Triangles() int {
	total := 0
	for _, obj := range s.Objects {
		total += obj.Mesh.NumTris
	}
	return total
}

// BVHStats returns the tree statistics weighted by object triangle counts
func (s *Scene) BVHStats() bvh.Stats {
	return s.BVH.Stats(func(object int) int {
		return s.Objects[object].Mesh.NumTris
	})
}

// Hit is the nearest intersection found by Trace
type Hit struct {
	T        float32
	U, V     float32 // barycentric coordinates within the triangle
	Triangle int
	Object   int
}

// Trace returns the nearest triangle hit along the ray closer than tMax.
// Rays deeper than settings.MaxRayDepth find nothing and are not counted;
// shadow rays are occlusion queries and are exempt from the depth limit.
func (s *Scene) Trace(origin, dir core.Vector, tMax float32, depth int, settings core.RenderSettings, rayType core.RayType, stats *core.Stats) (Hit, bool) {
	if rayType != core.ShadowRay && depth > settings.MaxRayDepth {
		return Hit{}, false
	}

	stats.RaysShot++
	if rayType == core.ShadowRay {
		stats.ShadowRays++
	}

	var nearest Hit
	_, found := s.BVH.Intersect(origin, dir, tMax, func(object int, closest float32) (float32, bool) {
		mesh := s.Objects[object].Mesh
		best := closest
		hit := false
		for tri := 0; tri < mesh.NumTris; tri++ {
			th, ok := mesh.Intersect(tri, origin, dir, stats)
			if ok && th.T < best {
				best = th.T
				hit = true
				nearest = Hit{T: th.T, U: th.U, V: th.V, Triangle: tri, Object: object}
			}
		}
		return best, hit
	})
	return nearest, found
}

// Occluded reports whether anything blocks the segment from origin along dir
// up to distance
func (s *Scene) Occluded(origin, dir core.Vector, distance float32, depth int, settings core.RenderSettings, stats *core.Stats) bool {
	_, hit := s.Trace(origin, dir, distance, depth, settings, core.ShadowRay, stats)
	return hit
}

// Surface returns the world position and interpolated shading normal of hit
func (s *Scene) Surface(hit Hit) (position, normal core.Vector) {
	mesh := s.Objects[hit.Object].Mesh
	return mesh.InterpolatePosition(hit.Triangle, hit.U, hit.V),
		mesh.InterpolateNormal(hit.Triangle, hit.U, hit.V)
}
