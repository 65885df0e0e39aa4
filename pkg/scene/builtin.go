package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/df07/go-bvh-pathtracer/pkg/bvh"
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
	"github.com/df07/go-bvh-pathtracer/pkg/lights"
	"github.com/df07/go-bvh-pathtracer/pkg/loaders"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
)

// ErrUnknownScene is returned by Load for ids with no builtin scene
var ErrUnknownScene = errors.New("scene: unknown scene")

// Options are the inputs shared by all builtin scenes
type Options struct {
	Strategy bvh.Strategy
	MeshFile string // PLY file for the mesh scene
}

// Builtin describes a scene that can be built by id
type Builtin struct {
	ID          string
	Description string
	Build       func(opts Options) (*Scene, error)
}

var builtins = map[string]Builtin{
	"multi-spheres": {
		ID:          "multi-spheres",
		Description: "row of gold spheres with increasing roughness over a plane",
		Build:       NewMultiSpheres,
	},
	"transmission": {
		ID:          "transmission",
		Description: "sphere and rotated cube on a plane under a directional light",
		Build:       NewTransmission,
	},
	"area-light": {
		ID:          "area-light",
		Description: "sphere between floor and wall lit by a rectangular light",
		Build:       NewAreaLight,
	},
	"furnace": {
		ID:          "furnace",
		Description: "grey sphere with no lights, render with a white background",
		Build:       NewFurnace,
	},
	"spheres": {
		ID:          "spheres",
		Description: "grid of coloured spheres with metal spheres under a rectangular light",
		Build:       NewSpheres,
	},
	"gi": {
		ID:          "gi",
		Description: "cornell style box with two cubes and a ceiling light",
		Build:       NewGI,
	},
	"sphere-light": {
		ID:          "sphere-light",
		Description: "glossy spheres lit by a spherical area light",
		Build:       NewSphereLight,
	},
	"ply": {
		ID:          "ply",
		Description: "PLY mesh from --mesh on a floor under a rectangular light",
		Build:       NewMeshScene,
	},
}

// Builtins returns all builtin scenes sorted by id
func Builtins() []Builtin {
	list := make([]Builtin, 0, len(builtins))
	for _, b := range builtins {
		list = append(list, b)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Lookup returns the builtin scene with the given id
func Lookup(id string) (Builtin, bool) {
	b, ok := builtins[id]
	return b, ok
}

// Load builds the builtin scene with the given id
func Load(id string, opts Options) (*Scene, error) {
	b, ok := builtins[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
	}
	return b.Build(opts)
}

func degrees(d float32) float32 {
	return d * core.Pi / 180
}

var (
	noRotation = core.Vec3(0, 0, 0)
	unitScale  = core.Vec3(1, 1, 1)
	dielectric = core.Splat(0.04)
)

// NewMultiSpheres lines up gold spheres with roughness 0.1 to 0.9
func NewMultiSpheres(opts Options) (*Scene, error) {
	diffuse := core.Splat(0.01)
	gold := core.Vec3(1, 0.782, 0.344)
	sphere := geometry.NewUVSphere(0.15, 40, 20)

	var objects []Object
	for i := 0; i < 9; i++ {
		objects = append(objects, NewObject(
			sphere,
			material.New(diffuse, gold, 0.1*float32(i+1), 1, 0, 0),
			core.Point(-1.6+0.4*float32(i), -0.35, -3),
			unitScale, noRotation,
		))
	}
	objects = append(objects, NewObject(
		geometry.NewPlane(8, 8, 5, 5),
		material.New(core.Splat(0.4), dielectric, 0.1, 1, 0, 0),
		core.Point(0, -0.5, -4), unitScale, noRotation,
	))

	sceneLights := []lights.Light{
		lights.NewDirectional(core.Vec3(0, -0.6, -1), 1, core.Splat(1)),
	}
	return New(objects, sceneLights, DefaultCamera(), opts.Strategy)
}

// NewTransmission places a sphere and a rotated cube on a plane
func NewTransmission(opts Options) (*Scene, error) {
	objects := []Object{
		NewObject(
			geometry.NewPlane(8, 8, 5, 5),
			material.New(core.Splat(0.3), dielectric, 0.1, 1, 0, 0),
			core.Point(0, -0.5, -4), unitScale, noRotation,
		),
		NewObject(
			geometry.NewBox(1, 1, 1),
			material.New(core.Vec3(0.3, 0.3, 0.7), dielectric, 0.7, 1, 0, 0),
			core.Point(0.75, 0, -4), unitScale, core.Vec3(0, degrees(45), 0),
		),
		NewObject(
			geometry.NewUVSphere(0.4, 40, 20),
			material.New(core.Splat(0.6), dielectric, 0.3, 1, 0, 0),
			core.Point(0, -0.1, -2.5), unitScale, noRotation,
		),
	}

	sceneLights := []lights.Light{
		lights.NewDirectional(core.Vec3(-0.4, -0.6, -0.8), 1, core.Splat(1)),
	}
	return New(objects, sceneLights, DefaultCamera(), opts.Strategy)
}

// NewAreaLight lights a small sphere, a floor and a back wall with one
// rectangular light
func NewAreaLight(opts Options) (*Scene, error) {
	objects := []Object{
		NewObject(
			geometry.NewPlane(8, 8, 5, 5),
			material.New(core.Splat(0.8), dielectric, 0.6, 1, 0, 0),
			core.Point(0, -0.5, -4), unitScale, noRotation,
		),
		NewObject(
			geometry.NewPlane(8, 8, 5, 5),
			material.New(core.Splat(0.8), dielectric, 0.1, 1, 0, 0),
			core.Point(0, 0, -8), unitScale, core.Vec3(degrees(90), 0, 0),
		),
		NewObject(
			geometry.NewUVSphere(0.4, 20, 20),
			material.New(core.Splat(0.1), dielectric, 0.1, 1, 0, 0),
			core.Point(0, -0.3, -1.5), core.Splat(0.5), noRotation,
		),
	}

	sceneLights := []lights.Light{
		lights.NewRectangular(core.Point(0, 2, -2), core.Vec3(0, -1, 0), 1.75, 1.5, 10, 12, core.Splat(1)),
	}
	return New(objects, sceneLights, DefaultCamera(), opts.Strategy)
}

// NewFurnace is a single grey sphere and no lights. Under a uniform white
// background every pixel converges to the same value when the shading
// conserves energy.
func NewFurnace(opts Options) (*Scene, error) {
	objects := []Object{
		NewObject(
			geometry.NewUVSphere(1, 40, 20),
			material.New(core.Splat(0.18), dielectric, 0.3, 1, 0, 0),
			core.Point(0, 0, -4), unitScale, noRotation,
		),
	}
	return New(objects, nil, DefaultCamera(), opts.Strategy)
}

// NewSpheres scatters small coloured spheres between a gold and a silver one
func NewSpheres(opts Options) (*Scene, error) {
	colors := []core.Vector{
		core.Vec3(0.82, 0.6, 0.6),
		core.Vec3(0.7, 0.82, 0.69),
		core.Vec3(0.83, 0.53, 0.33),
		core.Splat(0.8),
		core.Vec3(0.30, 0.55, 0.68),
		core.Vec3(0.51, 0.13, 0.68),
	}
	roughness := []float32{1, 0.65, 0.4, 0.6, 0.7, 0.5, 0.7, 0.35, 0.8, 0.37}
	black := core.Splat(0)
	large := geometry.NewUVSphere(0.4, 20, 20)
	small := geometry.NewUVSphere(0.2, 20, 20)

	objects := []Object{
		NewObject(large, material.New(black, core.Vec3(1, 0.782, 0.344), 0.35, 1, 0, 1),
			core.Point(1, -0.3, -2), core.Splat(0.5), noRotation),
		NewObject(large, material.New(black, core.Vec3(0.972, 0.960, 0.915), 0.3, 1, 0, 1),
			core.Point(-1.2, -0.3, -2.4), core.Splat(0.5), noRotation),
		NewObject(large, material.New(core.Vec3(0.4, 0.1, 0.1), dielectric, 0.25, 1, 0, 0),
			core.Point(-1, -0.3, -3), core.Splat(0.5), noRotation),
		NewObject(geometry.NewPlane(8, 8, 2, 2),
			material.New(core.Vec3(0.46, 0.40, 0.25), dielectric, 0.6, 1, 0, 0),
			core.Point(0, -0.5, -4), unitScale, noRotation),
	}
	for i := 0; i < 20; i++ {
		x := float32(i/5) * 0.4
		z := float32(i%4) * 0.5
		objects = append(objects, NewObject(small,
			material.New(colors[i%5], dielectric, roughness[i%9], 1, 0, 0),
			core.Point(x-0.6, -0.4, z-3), core.Splat(0.5), noRotation))
	}

	sceneLights := []lights.Light{
		lights.NewRectangular(core.Point(0, 1.599, -3), core.Vec3(0, -1, 0), 0.75, 0.75, 10, 5, core.Vec3(1, 0.945, 0.878)),
	}
	return New(objects, sceneLights, DefaultCamera(), opts.Strategy)
}

// NewGI builds a closed box with coloured side walls for indirect lighting
func NewGI(opts Options) (*Scene, error) {
	white := core.Splat(0.8)
	red := core.Vec3(0.4, 0.15, 0.15)
	green := core.Vec3(0.15, 0.4, 0.1)
	wall := geometry.NewPlane(8, 8, 2, 2)

	objects := []Object{
		NewObject(geometry.NewBox(0.6, 1, 0.6), material.New(white, dielectric, 0.3, 1, 0, 0),
			core.Point(-0.4, -0.5, -4), unitScale, core.Vec3(0, degrees(30), 0)),
		NewObject(geometry.NewBox(0.5, 0.7, 0.5), material.New(white, dielectric, 0.3, 1, 0, 0),
			core.Point(0.4, -0.71, -3.5), unitScale, core.Vec3(0, degrees(155), 0)),
		NewObject(wall, material.New(white, dielectric, 0.6, 1, 0, 0),
			core.Point(0, 1.1, -4), unitScale, core.Vec3(degrees(180), 0, 0)),
		NewObject(wall, material.New(white, dielectric, 0.3, 1, 0, 0),
			core.Point(0, -1, -4), unitScale, noRotation),
		NewObject(geometry.NewPlane(2, 2, 2, 2), material.New(white, dielectric, 0.6, 1, 0, 0),
			core.Point(0, -0.5, 0.1), core.Vec3(1, 1, -1), core.Vec3(degrees(90), degrees(180), 0)),
		NewObject(wall, material.New(white, dielectric, 0.6, 1, 0, 0),
			core.Point(0, -0.5, -6), unitScale, core.Vec3(degrees(90), 0, 0)),
		NewObject(wall, material.New(green, dielectric, 0.2, 1, 0, 0),
			core.Point(1.2, -1, -4), unitScale, core.Vec3(degrees(90), degrees(270), 0)),
		NewObject(wall, material.New(red, dielectric, 0.2, 1, 0, 0),
			core.Point(-1.2, -1, -4), unitScale, core.Vec3(degrees(90), degrees(90), 0)),
	}

	sceneLights := []lights.Light{
		lights.NewRectangular(core.Point(0, 1.099, -3), core.Vec3(0, -1, 0), 0.75, 0.75, 10, 5, core.Vec3(1, 0.945, 0.878)),
	}
	return New(objects, sceneLights, DefaultCamera(), opts.Strategy)
}

// NewSphereLight shows glossy spheres under a spherical area light, the case
// that exercises light and GGX sampling together
func NewSphereLight(opts Options) (*Scene, error) {
	sphere := geometry.NewUVSphere(0.3, 40, 20)
	objects := []Object{
		NewObject(geometry.NewPlane(8, 8, 5, 5),
			material.New(core.Splat(0.5), dielectric, 0.5, 1, 0, 0),
			core.Point(0, -0.5, -4), unitScale, noRotation),
	}
	for i, r := range []float32{0.1, 0.35, 0.7} {
		objects = append(objects, NewObject(sphere,
			material.New(core.Splat(0.2), core.Vec3(0.95, 0.64, 0.54), r, 1, 0, 1),
			core.Point(-0.8+0.8*float32(i), -0.2, -3), unitScale, noRotation))
	}

	sceneLights := []lights.Light{
		lights.NewSpherical(core.Point(0.3, 1.2, -2.5), 60, core.Vec3(1, 0.945, 0.878), 0.25, 8),
	}
	return New(objects, sceneLights, DefaultCamera(), opts.Strategy)
}

// NewMeshScene loads opts.MeshFile, scales it to fit a unit box and stands
// it on a floor
func NewMeshScene(opts Options) (*Scene, error) {
	if opts.MeshFile == "" {
		return nil, fmt.Errorf("scene: the ply scene needs a mesh file")
	}
	mesh, err := loaders.LoadPLY(opts.MeshFile)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}

	bounds := mesh.BoundingBox()
	extent := bounds.Diagonal()
	size := max(extent.X(), extent.Y(), extent.Z())
	if size <= 0 {
		return nil, fmt.Errorf("scene: mesh %s has no extent", opts.MeshFile)
	}
	scale := 1 / size

	// center on x/z and rest the lowest point on the floor at y=-0.5
	center := bounds.Centroid()
	position := core.Point(-center.X()*scale, -0.5-bounds.Min().Y()*scale, -3-center.Z()*scale)

	objects := []Object{
		NewObject(mesh, material.New(core.Vec3(0.7, 0.7, 0.75), dielectric, 0.4, 1, 0, 0),
			position, core.Splat(scale), noRotation),
		NewObject(geometry.NewPlane(8, 8, 2, 2),
			material.New(core.Splat(0.5), dielectric, 0.6, 1, 0, 0),
			core.Point(0, -0.5, -4), unitScale, noRotation),
	}

	sceneLights := []lights.Light{
		lights.NewRectangular(core.Point(0, 1.5, -2.5), core.Vec3(0, -1, 0), 1, 1, 8, 8, core.Splat(1)),
		lights.NewDirectional(core.Vec3(-0.3, -0.6, -0.8), 0.5, core.Splat(1)),
	}
	return New(objects, sceneLights, DefaultCamera(), opts.Strategy)
}
