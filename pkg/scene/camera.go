package scene

import (
	"math"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// DefaultFOV is the vertical field of view in degrees
const DefaultFOV = 40

// Camera is a pinhole camera looking from Position towards Target
type Camera struct {
	Position core.Vector
	Target   core.Vector
	FOV      float32     // vertical field of view in degrees
	ToWorld  core.Matrix // camera space to world space
}

// NewCamera creates a camera with +y as the up direction
func NewCamera(position, target core.Vector, fov float32) Camera {
	if fov <= 0 || fov >= 180 {
		fov = DefaultFOV
	}
	return Camera{
		Position: position,
		Target:   target,
		FOV:      fov,
		ToWorld:  core.LookAt(position, target, core.Vec3(0, 1, 0)),
	}
}

// DefaultCamera sits at the origin and looks down -z
func DefaultCamera() Camera {
	return NewCamera(core.Point(0, 0, 0), core.Point(0, 0, -1), DefaultFOV)
}

// PrimaryRay returns the world space ray through pixel (x, y) at sub-pixel
// offset (dx, dy) in [0,1)
func (c Camera) PrimaryRay(x, y int, dx, dy float32, width, height int) (origin, dir core.Vector) {
	scale := float32(math.Tan(float64(c.FOV) * math.Pi / 360))
	aspect := float32(width) / float32(height)

	px := (2*(float32(x)+dx)/float32(width) - 1) * aspect * scale
	py := (1 - 2*(float32(y)+dy)/float32(height)) * scale

	dir = core.Vec3(px, py, -1).TransformDirection(c.ToWorld).Normalize()
	origin = core.Point(0, 0, 0).TransformPoint(c.ToWorld)
	return origin, dir
}
