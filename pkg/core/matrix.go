package core

import (
	"math"

	"golang.org/x/image/math/f32"
)

// Matrix is a row-major 4x4 transform. Vectors are rows and are transformed
// as v*M, so the translation lives in the last row and A.Multiply(B) applies
// A before B.
type Matrix f32.Mat4

// Identity returns the identity matrix
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// MatrixFromRows builds a matrix from four row vectors
func MatrixFromRows(r0, r1, r2, r3 Vector) Matrix {
	return Matrix{
		r0[0], r0[1], r0[2], r0[3],
		r1[0], r1[1], r1[2], r1[3],
		r2[0], r2[1], r2[2], r2[3],
		r3[0], r3[1], r3[2], r3[3],
	}
}

// Translation returns a matrix translating points by (x, y, z)
func Translation(x, y, z float32) Matrix {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

// Scaling returns a non-uniform scale matrix
func Scaling(x, y, z float32) Matrix {
	m := Identity()
	m[0], m[5], m[10] = x, y, z
	return m
}

// RotationX returns a rotation of angle radians about the x axis
func RotationX(angle float32) Matrix {
	s, c := Sin(angle), Cos(angle)
	return Matrix{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotationY returns a rotation of angle radians about the y axis
func RotationY(angle float32) Matrix {
	s, c := Sin(angle), Cos(angle)
	return Matrix{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotationZ returns a rotation of angle radians about the z axis
func RotationZ(angle float32) Matrix {
	s, c := Sin(angle), Cos(angle)
	return Matrix{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// LookAt returns a right-handed camera-to-world matrix. The camera looks down
// its local -z axis from eye towards target.
func LookAt(eye, target, up Vector) Matrix {
	forward := eye.Subtract(target).Normalize()
	right := up.Cross(forward).Normalize()
	if right.IsZero() {
		// up is parallel to the view direction, fall back to any perpendicular axis
		right, _ = OrthonormalBasis(forward)
	}
	trueUp := forward.Cross(right)
	return MatrixFromRows(
		Vec3(right[0], right[1], right[2]),
		Vec3(trueUp[0], trueUp[1], trueUp[2]),
		Vec3(forward[0], forward[1], forward[2]),
		Point(eye[0], eye[1], eye[2]),
	)
}

// Row returns row i
func (m Matrix) Row(i int) Vector {
	return Vector{m[i*4], m[i*4+1], m[i*4+2], m[i*4+3]}
}

// At returns the element at row, col
func (m Matrix) At(row, col int) float32 {
	return m[row*4+col]
}

// Multiply returns m*other
func (m Matrix) Multiply(other Matrix) Matrix {
	var out Matrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[row*4+k] * other[k*4+col]
			}
			out[row*4+col] = sum
		}
	}
	return out
}

// Transpose returns the transposed matrix
func (m Matrix) Transpose() Matrix {
	var out Matrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out[col*4+row] = m[row*4+col]
		}
	}
	return out
}

// Determinant returns the determinant, computed by Gaussian elimination in float64
func (m Matrix) Determinant() float32 {
	var a [4][4]float64
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			a[row][col] = float64(m[row*4+col])
		}
	}

	det := 1.0
	for col := 0; col < 4; col++ {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if a[pivot][col] == 0 {
			return 0
		}
		if pivot != col {
			a[pivot], a[col] = a[col], a[pivot]
			det = -det
		}
		det *= a[col][col]
		for row := col + 1; row < 4; row++ {
			f := a[row][col] / a[col][col]
			for k := col; k < 4; k++ {
				a[row][k] -= f * a[col][k]
			}
		}
	}
	return float32(det)
}

// Inverse returns the inverse matrix using Gauss-Jordan elimination with
// partial pivoting. ok is false when the matrix is singular.
func (m Matrix) Inverse() (inv Matrix, ok bool) {
	var a [4][8]float64
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			a[row][col] = float64(m[row*4+col])
		}
		a[row][4+row] = 1
	}

	for col := 0; col < 4; col++ {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return Matrix{}, false
		}
		a[pivot], a[col] = a[col], a[pivot]

		p := a[col][col]
		for k := 0; k < 8; k++ {
			a[col][k] /= p
		}
		for row := 0; row < 4; row++ {
			if row == col {
				continue
			}
			f := a[row][col]
			if f == 0 {
				continue
			}
			for k := 0; k < 8; k++ {
				a[row][k] -= f * a[col][k]
			}
		}
	}

	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			inv[row*4+col] = float32(a[row][4+col])
		}
	}
	return inv, true
}

// NormalMatrix returns the inverse-transpose used to transform normals.
// A singular matrix falls back to itself.
func (m Matrix) NormalMatrix() Matrix {
	inv, ok := m.Inverse()
	if !ok {
		return m
	}
	return inv.Transpose()
}

// ApproxEqual reports whether every element differs by at most tolerance
func (m Matrix) ApproxEqual(other Matrix, tolerance float32) bool {
	for i := range m {
		if Abs(m[i]-other[i]) > tolerance {
			return false
		}
	}
	return true
}
