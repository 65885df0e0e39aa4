package material

import (
	"math"
	"testing"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

func approx(a, b, tol float32) bool {
	return math.Abs(float64(a-b)) < float64(tol)
}

func TestRoughnessToAlpha(t *testing.T) {
	if a := RoughnessToAlpha(0.5); !approx(a, 0.25, 1e-6) {
		t.Errorf("got %f, expected 0.25", a)
	}
	if a := RoughnessToAlpha(0); a != minAlpha {
		t.Errorf("zero roughness gave alpha %f, expected floor %f", a, minAlpha)
	}
}

func TestNew_ClampsRanges(t *testing.T) {
	m := New(core.Splat(1), core.Splat(0.04), 1.5, 1, 0, -2)
	if m.Roughness != 1 || m.Metalness != 0 {
		t.Errorf("roughness %f metalness %f", m.Roughness, m.Metalness)
	}
	if !m.HasDiffuse() || Metal(core.Splat(1), 0.3).HasDiffuse() {
		t.Error("only metals should drop the diffuse lobe")
	}
}

func TestGGXDistribution_NormalizedProjectedArea(t *testing.T) {
	// integral of D(h)(n.h) over the hemisphere is 1
	sampler := core.NewSeededSampler(11)
	for _, alpha := range []float32{0.4, 0.8} {
		const n = 200000
		var sum float64
		for i := 0; i < n; i++ {
			h, pdf := core.SampleHemisphereUniform(sampler.Get2D())
			sum += float64(GGXDistribution(h.Y(), alpha) * h.Y() / pdf)
		}
		if est := sum / n; math.Abs(est-1) > 0.05 {
			t.Errorf("alpha=%.1f: integral %f, expected 1", alpha, est)
		}
	}
	if d := GGXDistribution(-0.5, 0.5); d != 0 {
		t.Errorf("back facing half vector gave D=%f", d)
	}
}

func TestSmithG_Range(t *testing.T) {
	if g := SmithG(1, 1, 0.5); !approx(g, 1, 1e-6) {
		t.Errorf("normal incidence G=%f, expected 1", g)
	}
	if g := SmithG(0, 1, 0.5); g != 0 {
		t.Errorf("grazing light G=%f, expected 0", g)
	}
	prev := float32(1)
	for _, c := range []float32{0.9, 0.7, 0.5, 0.3, 0.1} {
		g := SmithG(c, c, 0.5)
		if g < 0 || g > prev {
			t.Errorf("G(%f)=%f should decrease towards grazing (prev %f)", c, g, prev)
		}
		prev = g
	}
}

func TestSchlickFresnel(t *testing.T) {
	f0 := core.Vec3(0.04, 0.5, 1)
	if f := SchlickFresnel(1, f0); f != f0 {
		t.Errorf("normal incidence F=%v, expected F0", f)
	}
	if f := SchlickFresnel(0, f0); !approx(f.X(), 1, 1e-6) || !approx(f.Y(), 1, 1e-6) {
		t.Errorf("grazing F=%v, expected 1", f)
	}
}

func TestSpecular_Reciprocity(t *testing.T) {
	n := core.Vec3(0, 1, 0)
	v := core.Vec3(0.3, 0.8, 0.1).Normalize()
	l := core.Vec3(-0.5, 0.6, 0.2).Normalize()
	f0 := core.Splat(0.04)

	a, _ := Specular(n, v, l, f0, 0.3)
	b, _ := Specular(n, l, v, f0, 0.3)
	if !approx(a.X(), b.X(), 1e-5) {
		t.Errorf("brdf(v,l)=%f brdf(l,v)=%f", a.X(), b.X())
	}
}

func TestSpecular_GrazingIsFinite(t *testing.T) {
	n := core.Vec3(0, 1, 0)
	v := core.Vec3(1, 0, 0)
	l := core.Vec3(0, 1, 0)
	brdf, _ := Specular(n, v, l, core.Splat(1), 0.5)
	if brdf.HasNaN() || !brdf.IsZero() {
		t.Errorf("grazing view brdf %v, expected zero", brdf)
	}
}

func TestGGXReflectionPDF_MatchesSampler(t *testing.T) {
	n := core.Vec3(0, 1, 0)
	frame := core.TangentFrame(n)
	v := core.Vec3(0.4, 0.9, -0.1).Normalize()
	alpha := float32(0.3)
	sampler := core.NewSeededSampler(2)

	for i := 0; i < 100; i++ {
		u1, u2 := sampler.Get2D()
		hLocal, hPdf := core.SampleGGX(u1, u2, alpha)
		h := hLocal.TransformDirection(frame).Normalize()
		l := core.Reflect(v, h)
		if n.Dot(l) <= 0 || v.Dot(h) <= 0 {
			continue
		}
		want := hPdf / (4 * core.Abs(v.Dot(h)))
		got := GGXReflectionPDF(n, v, l, alpha)
		if !approx(got, want, want*1e-3+1e-4) {
			t.Fatalf("pdf %f, expected %f", got, want)
		}
	}
}

func TestSampledSpecularWeight_ConservesEnergy(t *testing.T) {
	n := core.Vec3(0, 1, 0)
	frame := core.TangentFrame(n)
	sampler := core.NewSeededSampler(4)

	for _, view := range []core.Vector{core.Vec3(0, 1, 0), core.Vec3(0.6, 0.8, 0)} {
		const samples = 20000
		var sum float64
		for i := 0; i < samples; i++ {
			u1, u2 := sampler.Get2D()
			hLocal, _ := core.SampleGGX(u1, u2, 0.25)
			h := hLocal.TransformDirection(frame).Normalize()
			l := core.Reflect(view, h)
			w := SampledSpecularWeight(n, view, l, h, core.Splat(1), 0.25)
			sum += float64(w.X())
		}
		albedo := sum / samples
		if albedo > 1.01 || albedo < 0.8 {
			t.Errorf("view %v: directional albedo %f, expected in [0.8, 1]", view, albedo)
		}
	}
}
