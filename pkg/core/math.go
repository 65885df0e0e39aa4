package core

import "math"

// Numeric tolerances shared by the intersection and shading code
const (
	// Epsilon is the determinant cutoff for near-parallel ray/triangle tests
	Epsilon float32 = 1e-8

	// RayOffset pushes secondary ray origins off the surface they leave
	RayOffset float32 = 1e-4

	Pi    float32 = math.Pi
	InvPi float32 = 1 / math.Pi
)

// Infinity is +Inf as a float32
var Infinity = float32(math.Inf(1))

// Sqrt returns the float32 square root of x
func Sqrt(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// Abs returns the absolute value of x
func Abs(x float32) float32 {
	return float32(math.Abs(float64(x)))
}

// Clamp restricts x to [lo, hi]
func Clamp(x, lo, hi float32) float32 {
	return max(lo, min(hi, x))
}

// Saturate clamps x to [0, 1]
func Saturate(x float32) float32 {
	return Clamp(x, 0, 1)
}

// Sin returns the sine of x in radians
func Sin(x float32) float32 { return float32(math.Sin(float64(x))) }

// Cos returns the cosine of x in radians
func Cos(x float32) float32 { return float32(math.Cos(float64(x))) }

// Pow5 returns x^5
func Pow5(x float32) float32 {
	x2 := x * x
	return x2 * x2 * x
}
