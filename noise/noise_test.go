package noise

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
)

func TestPerlin2Range(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		x := rng.Float32()*200 - 100
		y := rng.Float32()*200 - 100
		n := Perlin2(x, y)
		if math32.IsNaN(n) || math32.IsInf(n, 0) {
			t.Fatalf("Perlin2(%f,%f) not finite: %f", x, y, n)
		}
		if n < -1.25 || n > 1.25 {
			t.Errorf("Perlin2(%f,%f)=%f exceeds nominal range", x, y, n)
		}
	}
}

func TestPerlin2Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 100; i++ {
		x := rng.Float32() * 50
		y := rng.Float32() * 50
		if Perlin2(x, y) != Perlin2(x, y) {
			t.Fatalf("Perlin2 not deterministic at (%f,%f)", x, y)
		}
	}
}

func TestPerlin2Continuity(t *testing.T) {
	// Noise must vary smoothly: small steps give small value changes.
	const step = 1e-3
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		x := rng.Float32() * 20
		y := rng.Float32() * 20
		d := math32.Abs(Perlin2(x+step, y) - Perlin2(x, y))
		if d > 0.05 {
			t.Errorf("discontinuity at (%f,%f): delta=%f", x, y, d)
		}
	}
}

func TestPerlin2NotConstant(t *testing.T) {
	var minv, maxv float32 = 1, -1
	for i := 0; i < 1000; i++ {
		n := Perlin2(float32(i)*0.137, float32(i)*0.291)
		minv = math32.Min(minv, n)
		maxv = math32.Max(maxv, n)
	}
	if maxv-minv < 0.5 {
		t.Errorf("noise spread too small: [%f,%f]", minv, maxv)
	}
}

func TestFractal2Range(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 2000; i++ {
		x := rng.Float32()*40 - 20
		y := rng.Float32()*40 - 20
		n := Fractal2(x, y, 4, 2, 0.5)
		if n < -1.3 || n > 1.3 || math32.IsNaN(n) {
			t.Errorf("Fractal2(%f,%f)=%f out of range", x, y, n)
		}
	}
}

func TestFractal2SingleOctaveMatchesPerlin(t *testing.T) {
	for i := 0; i < 100; i++ {
		x := float32(i) * 0.13
		y := float32(i) * 0.29
		if got, want := Fractal2(x, y, 1, 2, 0.5), Perlin2(x, y); got != want {
			t.Fatalf("1-octave fractal mismatch at (%f,%f): %f != %f", x, y, got, want)
		}
	}
}

func TestFractal2ZeroOctaves(t *testing.T) {
	if n := Fractal2(1, 2, 0, 2, 0.5); n != 0 {
		t.Errorf("expected 0 for zero octaves, got %f", n)
	}
}
