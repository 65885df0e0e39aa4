package core

import (
	"math"

	"golang.org/x/image/math/f32"
)

// Vector is a 4 component float32 tuple used for points, directions and RGB colors.
// Only the xyz components take part in the geometric operations below; w is
// carried so that points (w=1) and directions (w=0) can share one type.
type Vector f32.Vec4

// Vec3 creates a Vector with w=0
func Vec3(x, y, z float32) Vector {
	return Vector{x, y, z, 0}
}

// Point creates a Vector with w=1
func Point(x, y, z float32) Vector {
	return Vector{x, y, z, 1}
}

// Vec4 creates a Vector from all four components
func Vec4(x, y, z, w float32) Vector {
	return Vector{x, y, z, w}
}

// Splat creates a Vector with the same value in the xyz components
func Splat(s float32) Vector {
	return Vector{s, s, s, 0}
}

// X returns the first component
func (v Vector) X() float32 { return v[0] }

// Y returns the second component
func (v Vector) Y() float32 { return v[1] }

// Z returns the third component
func (v Vector) Z() float32 { return v[2] }

// W returns the fourth component
func (v Vector) W() float32 { return v[3] }

// Add returns the componentwise sum of two vectors
func (v Vector) Add(other Vector) Vector {
	return Vector{v[0] + other[0], v[1] + other[1], v[2] + other[2], v[3] + other[3]}
}

// Subtract returns the componentwise difference of two vectors
func (v Vector) Subtract(other Vector) Vector {
	return Vector{v[0] - other[0], v[1] - other[1], v[2] - other[2], v[3] - other[3]}
}

// Multiply returns the xyz components scaled by a scalar
func (v Vector) Multiply(scalar float32) Vector {
	return Vector{v[0] * scalar, v[1] * scalar, v[2] * scalar, v[3]}
}

// Divide returns the xyz components divided by a scalar
func (v Vector) Divide(scalar float32) Vector {
	inv := 1 / scalar
	return Vector{v[0] * inv, v[1] * inv, v[2] * inv, v[3]}
}

// MultiplyVec returns the componentwise product of the xyz components
func (v Vector) MultiplyVec(other Vector) Vector {
	return Vector{v[0] * other[0], v[1] * other[1], v[2] * other[2], v[3]}
}

// DivideVec returns the componentwise quotient of the xyz components
func (v Vector) DivideVec(other Vector) Vector {
	return Vector{v[0] / other[0], v[1] / other[1], v[2] / other[2], v[3]}
}

// Dot returns the 3 component dot product
func (v Vector) Dot(other Vector) float32 {
	return v[0]*other[0] + v[1]*other[1] + v[2]*other[2]
}

// Cross returns the 3 component cross product
func (v Vector) Cross(other Vector) Vector {
	return Vector{
		v[1]*other[2] - v[2]*other[1],
		v[2]*other[0] - v[0]*other[2],
		v[0]*other[1] - v[1]*other[0],
		0,
	}
}

// LengthSquared returns the squared 3 component length
func (v Vector) LengthSquared() float32 {
	return v.Dot(v)
}

// Length returns the 3 component length
func (v Vector) Length() float32 {
	return Sqrt(v.Dot(v))
}

// Normalize returns a unit vector in the same direction.
// A zero length vector normalizes to the zero vector.
func (v Vector) Normalize() Vector {
	length := v.Length()
	if length == 0 {
		return Vector{0, 0, 0, v[3]}
	}
	return v.Divide(length)
}

// Negate returns the vector with its xyz components negated
func (v Vector) Negate() Vector {
	return Vector{-v[0], -v[1], -v[2], v[3]}
}

// Clamp returns a vector with xyz components clamped to [minVal, maxVal]
func (v Vector) Clamp(minVal, maxVal float32) Vector {
	return Vector{
		Clamp(v[0], minVal, maxVal),
		Clamp(v[1], minVal, maxVal),
		Clamp(v[2], minVal, maxVal),
		v[3],
	}
}

// Min returns the componentwise minimum of the xyz components
func (v Vector) Min(other Vector) Vector {
	return Vector{min(v[0], other[0]), min(v[1], other[1]), min(v[2], other[2]), v[3]}
}

// Max returns the componentwise maximum of the xyz components
func (v Vector) Max(other Vector) Vector {
	return Vector{max(v[0], other[0]), max(v[1], other[1]), max(v[2], other[2]), v[3]}
}

// Axis returns the component for axis 0, 1 or 2
func (v Vector) Axis(axis int) float32 {
	return v[axis]
}

// Reciprocal returns 1/v per xyz component. Zero components become ±Inf.
func (v Vector) Reciprocal() Vector {
	return Vector{1 / v[0], 1 / v[1], 1 / v[2], 0}
}

// IsZero reports whether all xyz components are zero
func (v Vector) IsZero() bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

// HasNaN reports whether any xyz component is NaN or infinite
func (v Vector) HasNaN() bool {
	for i := 0; i < 3; i++ {
		f := float64(v[i])
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return true
		}
	}
	return false
}

// GammaCorrect applies gamma correction to color values
func (v Vector) GammaCorrect(gamma float32) Vector {
	if gamma == 1 || gamma <= 0 {
		return v
	}
	inv := float64(1 / gamma)
	return Vector{
		float32(math.Pow(float64(v[0]), inv)),
		float32(math.Pow(float64(v[1]), inv)),
		float32(math.Pow(float64(v[2]), inv)),
		v[3],
	}
}

// Transform returns v*m using the row-vector convention
func (v Vector) Transform(m Matrix) Vector {
	var out Vector
	for col := 0; col < 4; col++ {
		out[col] = v[0]*m[col] + v[1]*m[4+col] + v[2]*m[8+col] + v[3]*m[12+col]
	}
	return out
}

// TransformPoint transforms the xyz components as a point (w=1)
func (v Vector) TransformPoint(m Matrix) Vector {
	p := Vector{v[0], v[1], v[2], 1}.Transform(m)
	if p[3] != 0 && p[3] != 1 {
		inv := 1 / p[3]
		return Vector{p[0] * inv, p[1] * inv, p[2] * inv, 1}
	}
	return p
}

// TransformDirection transforms the xyz components as a direction (w=0)
func (v Vector) TransformDirection(m Matrix) Vector {
	return Vector{v[0], v[1], v[2], 0}.Transform(m)
}

// OrthonormalBasis builds a tangent and bitangent perpendicular to the unit vector n.
// The reference axis is picked from the larger of |n.x| and |n.y| so the cross
// product never degenerates.
func OrthonormalBasis(n Vector) (tangent, bitangent Vector) {
	if Abs(n[0]) > Abs(n[1]) {
		inv := 1 / Sqrt(n[0]*n[0]+n[2]*n[2])
		tangent = Vec3(n[2]*inv, 0, -n[0]*inv)
	} else {
		inv := 1 / Sqrt(n[1]*n[1]+n[2]*n[2])
		tangent = Vec3(0, -n[2]*inv, n[1]*inv)
	}
	bitangent = n.Cross(tangent)
	return tangent, bitangent
}

// Reflect mirrors v about the unit normal n
func Reflect(v, n Vector) Vector {
	return n.Multiply(2 * v.Dot(n)).Subtract(v)
}
