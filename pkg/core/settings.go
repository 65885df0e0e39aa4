package core

// RenderSettings holds the per-render configuration. It is passed by value
// into every ray cast so recursive calls all see the same settings.
type RenderSettings struct {
	Width           int
	Height          int
	MaxRayDepth     int    // rays deeper than this contribute nothing
	DiffuseSamples  int    // indirect diffuse samples at depth 0
	SpecularSamples int    // indirect specular samples at depth 0
	AASamples       int    // antialiasing grid is AASamples x AASamples
	Background      Vector // radiance returned by rays that escape the scene
}

// DefaultRenderSettings returns a small direct-lighting-only configuration
func DefaultRenderSettings() RenderSettings {
	return RenderSettings{
		Width:       400,
		Height:      225,
		MaxRayDepth: 3,
		AASamples:   1,
		Background:  Vec3(0, 0, 0),
	}
}

// RayType tags a ray with the reason it was cast
type RayType int

const (
	CameraRay RayType = iota
	ShadowRay
	SpecularRay
	DiffuseRay
)

// String returns the ray type name
func (r RayType) String() string {
	switch r {
	case CameraRay:
		return "camera"
	case ShadowRay:
		return "shadow"
	case SpecularRay:
		return "specular"
	case DiffuseRay:
		return "diffuse"
	default:
		return "unknown"
	}
}

// Stats counts ray and triangle work. Each rendering goroutine owns one and
// passes it down the call chain; instances are merged after the workers finish.
type Stats struct {
	RaysShot             uint64
	ShadowRays           uint64
	TriangleTests        uint64
	TrianglesIntersected uint64
}

// Merge adds the counters of other into s
func (s *Stats) Merge(other Stats) {
	s.RaysShot += other.RaysShot
	s.ShadowRays += other.ShadowRays
	s.TriangleTests += other.TriangleTests
	s.TrianglesIntersected += other.TrianglesIntersected
}
