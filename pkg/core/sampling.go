package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float32
	Get2D() (float32, float32)
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own source seeded with seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float32 in [0, 1)
func (r *RandomSampler) Get1D() float32 {
	return r.random.Float32()
}

// Get2D returns two random float32 values in [0, 1)
func (r *RandomSampler) Get2D() (float32, float32) {
	return r.random.Float32(), r.random.Float32()
}

// Local sampling frames below are y-up: the returned direction has its
// cosine with the frame axis in the y component. TangentFrame maps them to
// world space around a normal.

// TangentFrame returns the rows (tangent, n, bitangent) as a matrix so that
// local y-up samples transform to world space with TransformDirection
func TangentFrame(n Vector) Matrix {
	t, b := OrthonormalBasis(n)
	return MatrixFromRows(t, n, b, Vec4(0, 0, 0, 1))
}

// SampleHemisphereUniform samples the y-up hemisphere uniformly. pdf = 1/2π.
func SampleHemisphereUniform(u1, u2 float32) (Vector, float32) {
	sinTheta := Sqrt(max(0, 1-u1*u1))
	phi := 2 * Pi * u2
	return Vec3(sinTheta*Cos(phi), u1, sinTheta*Sin(phi)), 1 / (2 * Pi)
}

// SampleHemisphereCosine samples the y-up hemisphere proportional to cosθ.
// pdf = cosθ/π.
func SampleHemisphereCosine(u1, u2 float32) (Vector, float32) {
	sinTheta := Sqrt(u1)
	cosTheta := Sqrt(max(0, 1-u1))
	phi := 2 * Pi * u2
	return Vec3(sinTheta*Cos(phi), cosTheta, sinTheta*Sin(phi)), cosTheta * InvPi
}

// SampleGGX importance samples a GGX half vector around the y axis.
// alpha is the GGX width (roughness squared). The returned pdf is the
// half-vector density D(h)·cosθh.
func SampleGGX(u1, u2, alpha float32) (Vector, float32) {
	a2 := alpha * alpha
	phi := 2 * Pi * u1
	cosTheta := Sqrt(max(0, (1-u2)/((a2-1)*u2+1)))
	sinTheta := Sqrt(max(0, 1-cosTheta*cosTheta))

	d := (a2-1)*cosTheta*cosTheta + 1
	pdf := a2 * cosTheta / (Pi * d * d)
	return Vec3(sinTheta*Cos(phi), cosTheta, sinTheta*Sin(phi)), pdf
}

// SampleSphereSolidAngle samples the cone subtended by a sphere, given
// q = cos of the cone half angle = sqrt(1 - (r/d)²). Directions are around the
// y axis; the density is uniform over the cone.
func SampleSphereSolidAngle(u1, u2, q float32) Vector {
	phi := 2 * Pi * u1
	cosTheta := 1 - u2 + u2*q
	sinTheta := Sqrt(max(0, 1-cosTheta*cosTheta))
	return Vec3(sinTheta*Cos(phi), cosTheta, sinTheta*Sin(phi))
}

// SphereSolidAnglePDF returns the uniform cone density for half angle cosine q
func SphereSolidAnglePDF(q float32) float32 {
	if q >= 1 {
		return Infinity
	}
	return 1 / (2 * Pi * (1 - q))
}

// SampleRectangle maps (u1, u2) to a point on a width x height rectangle
// centered on the origin of the xy plane. pdf = 1/area.
func SampleRectangle(u1, u2, width, height float32) (Vector, float32) {
	p := Point((u1-0.5)*width, (u2-0.5)*height, 0)
	area := width * height
	if area <= 0 {
		return p, 0
	}
	return p, 1 / area
}

// StratumGrid splits n samples into an nx*ny grid with nx*ny == n and nx
// the largest divisor of n not above sqrt(n)
func StratumGrid(n int) (nx, ny int) {
	if n <= 1 {
		return 1, 1
	}
	nx = int(math.Sqrt(float64(n)))
	for n%nx != 0 {
		nx--
	}
	return nx, n / nx
}

// Stratify jitters (u1, u2) into cell i of an nx*ny grid
func Stratify(i, nx, ny int, u1, u2 float32) (float32, float32) {
	cx := i % nx
	cy := i / nx
	return (float32(cx) + u1) / float32(nx), (float32(cy) + u2) / float32(ny)
}

// PowerHeuristic returns the MIS weight for strategy f against g.
// beta=1 is the balance heuristic.
func PowerHeuristic(nf int, fPdf float32, ng int, gPdf float32, beta float32) float32 {
	f := float64(float32(nf) * fPdf)
	g := float64(float32(ng) * gPdf)
	if math.IsInf(f, 1) {
		return 1
	}
	fb := math.Pow(f, float64(beta))
	gb := math.Pow(g, float64(beta))
	if fb+gb == 0 {
		return 0
	}
	return float32(fb / (fb + gb))
}

// BalanceHeuristic is PowerHeuristic with beta=1
func BalanceHeuristic(nf int, fPdf float32, ng int, gPdf float32) float32 {
	return PowerHeuristic(nf, fPdf, ng, gPdf, 1)
}

// AAGrid returns the n*n regular sub-pixel offsets (i+0.5)/n used for
// antialiasing. n < 1 is treated as 1.
func AAGrid(n int) [][2]float32 {
	if n < 1 {
		n = 1
	}
	offsets := make([][2]float32, 0, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			offsets = append(offsets, [2]float32{
				(float32(x) + 0.5) / float32(n),
				(float32(y) + 0.5) / float32(n),
			})
		}
	}
	return offsets
}
