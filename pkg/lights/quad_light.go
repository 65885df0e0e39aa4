package lights

import (
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
)

// Rectangular is a one-sided width x height area light centered on Position
// and emitting along Direction
type Rectangular struct {
	Position  core.Vector
	Direction core.Vector // unit emission direction, the rectangle normal
	Width     float32
	Height    float32
	Samples   int         // stratified samples per shading point for camera rays
	World     core.Matrix // local xy rectangle to world
	Rect      geometry.Rectangle
	ColorInfo
}

// NewRectangular creates a rectangular light
func NewRectangular(position, direction core.Vector, width, height float32, samples int, brightness float32, color core.Vector) *Rectangular {
	dir := direction.Normalize()
	tangent, bitangent := core.OrthonormalBasis(dir)
	world := core.MatrixFromRows(tangent, bitangent, dir, core.Point(position[0], position[1], position[2]))

	corner := position.
		Subtract(tangent.Multiply(width * 0.5)).
		Subtract(bitangent.Multiply(height * 0.5))

	return &Rectangular{
		Position:  position,
		Direction: dir,
		Width:     width,
		Height:    height,
		Samples:   max(samples, 1),
		World:     world,
		Rect:      geometry.NewRectangle(corner, tangent.Multiply(width), bitangent.Multiply(height)),
		ColorInfo: ColorInfo{Color: color, Brightness: brightness},
	}
}

func (r *Rectangular) Kind() Kind { return KindRectangular }
func (r *Rectangular) light()     {}

// Area returns the emitting area
func (r *Rectangular) Area() float32 {
	return r.Rect.Area()
}

// Intensity returns the color intensity spread over the area. It is the
// radiance of the emitting side.
func (r *Rectangular) Intensity() core.Vector {
	area := r.Area()
	if area <= 0 {
		return core.Vector{}
	}
	return r.ColorInfo.Intensity().Divide(area)
}

// SamplePoint maps (u1, u2) to a world space point on the rectangle and
// returns it with its area pdf
func (r *Rectangular) SamplePoint(u1, u2 float32) (core.Vector, float32) {
	local, pdf := core.SampleRectangle(u1, u2, r.Width, r.Height)
	return local.TransformPoint(r.World), pdf
}

// Intersect returns the distance and hit point where the ray from origin
// meets the emitting side of the rectangle
func (r *Rectangular) Intersect(origin, dir core.Vector) (float32, core.Vector, bool) {
	// only the side facing Direction emits
	if dir.Dot(r.Direction) >= 0 {
		return 0, core.Vector{}, false
	}
	return r.Rect.Intersect(origin, dir)
}

// SolidAnglePDF converts the uniform area density to a solid angle density
// at p for a light point at the given distance along unit dir
func (r *Rectangular) SolidAnglePDF(dir core.Vector, distance float32) float32 {
	cosLight := -dir.Dot(r.Direction)
	area := r.Area()
	if cosLight <= 0 || area <= 0 {
		return 0
	}
	return distance * distance / (area * cosLight)
}
