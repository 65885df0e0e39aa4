package lights

import (
	"math"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// Light is one of *Directional, *Spherical or *Rectangular. The set is
// closed: the unexported marker keeps other packages from adding variants, so
// a type switch over the three cases covers every light.
type Light interface {
	// Intensity returns the emitted power term used by the shader
	Intensity() core.Vector
	Kind() Kind
	light()
}

// Kind names a light variant
type Kind int

const (
	KindDirectional Kind = iota
	KindSpherical
	KindRectangular
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindDirectional:
		return "directional"
	case KindSpherical:
		return "spherical"
	case KindRectangular:
		return "rectangular"
	default:
		return "unknown"
	}
}

// ColorInfo holds the user-facing emission controls of a light
type ColorInfo struct {
	Color      core.Vector
	Brightness float32
	Exposure   int // each step doubles the output; values below 1 have no effect
}

// Intensity returns color * brightness * 2^exposure
func (c ColorInfo) Intensity() core.Vector {
	exposure := float32(1)
	if c.Exposure >= 1 {
		exposure = float32(math.Ldexp(1, c.Exposure))
	}
	return c.Color.Multiply(c.Brightness * exposure)
}

// Directional is a light infinitely far away shining along Direction
type Directional struct {
	Direction core.Vector // unit direction the light travels
	ColorInfo
}

// NewDirectional creates a directional light travelling along dir
func NewDirectional(dir core.Vector, brightness float32, color core.Vector) *Directional {
	return &Directional{
		Direction: dir.Normalize(),
		ColorInfo: ColorInfo{Color: color, Brightness: brightness},
	}
}

// ToLight returns the unit direction from a surface towards the light
func (d *Directional) ToLight() core.Vector {
	return d.Direction.Negate()
}

func (d *Directional) Kind() Kind { return KindDirectional }
func (d *Directional) light()     {}
