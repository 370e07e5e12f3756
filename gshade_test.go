package gshade_test

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gshade"
	"github.com/soypat/gshade/glbuild"
	"github.com/soypat/gshade/gleval"
	"github.com/soypat/gshade/noise"
)

func evalMaterial(t *testing.T, s glbuild.ColorShader, frags []gleval.Fragment, tsec float32) []gleval.RGBA {
	t.Helper()
	field, err := gleval.NewCPUColorField(s)
	if err != nil {
		t.Fatal(err)
	}
	colors := make([]gleval.RGBA, len(frags))
	err = field.Evaluate(frags, tsec, colors, nil)
	if err != nil {
		t.Fatal(err)
	}
	return colors
}

func randomFragments(n int, seed int64) []gleval.Fragment {
	rng := rand.New(rand.NewSource(seed))
	frags := make([]gleval.Fragment, n)
	for i := range frags {
		nrm := ms3.Vec{X: rng.Float32() - 0.5, Y: rng.Float32() - 0.5, Z: rng.Float32() - 0.5}
		mag := math32.Sqrt(nrm.X*nrm.X + nrm.Y*nrm.Y + nrm.Z*nrm.Z)
		if mag == 0 {
			nrm, mag = ms3.Vec{X: 1}, 1
		}
		frags[i] = gleval.Fragment{
			Position: ms3.Vec{X: rng.Float32()*4 - 2, Y: rng.Float32()*4 - 2, Z: rng.Float32()*4 - 2},
			Normal:   ms3.Scale(1/mag, nrm),
			UV:       ms2.Vec{X: rng.Float32(), Y: rng.Float32()},
		}
	}
	return frags
}

func TestNoiseSurfaceMatchesNoisePackage(t *testing.T) {
	var bld gshade.Builder
	material := bld.NewNoiseSurface(gshade.DefaultNoiseSurfaceConfig())
	if err := bld.Err(); err != nil {
		t.Fatal(err)
	}
	const tsec = 0.37
	frag := gleval.Fragment{
		Position: ms3.Vec{X: 0.3, Y: -0.2, Z: 0.7},
		Normal:   ms3.Vec{X: 1}, // Default orientation branch, no offset.
	}
	got := evalMaterial(t, material, []gleval.Fragment{frag}, tsec)[0]
	wantR := (noise.Perlin2(0.3, tsec) + 1) * 0.5
	wantG := (noise.Perlin2(-0.2, tsec) + 1) * 0.5
	wantB := (noise.Perlin2(0.7, tsec) + 1) * 0.5
	if got.R != wantR || got.G != wantG || got.B != wantB {
		t.Errorf("channel mismatch: got %+v want (%g, %g, %g)", got, wantR, wantG, wantB)
	}
	if got.A != 1 {
		t.Errorf("alpha not exactly 1: %g", got.A)
	}
	// The noise surface ignores UV entirely.
	uvFrag := frag
	uvFrag.UV = ms2.Vec{X: 0.77, Y: 0.13}
	gotUV := evalMaterial(t, material, []gleval.Fragment{uvFrag}, tsec)[0]
	if gotUV != got {
		t.Errorf("UV changed noise surface output: %+v != %+v", gotUV, got)
	}
}

func TestNoiseSurfaceOrientationBranches(t *testing.T) {
	var bld gshade.Builder
	material := bld.NewNoiseSurface(gshade.DefaultNoiseSurfaceConfig())
	if err := bld.Err(); err != nil {
		t.Fatal(err)
	}
	pos := ms3.Vec{X: 0.45, Y: 1.2, Z: -0.8}
	frags := []gleval.Fragment{
		{Position: pos, Normal: ms3.Vec{Z: 1}},      // Up branch.
		{Position: pos, Normal: ms3.Vec{Y: 1}},      // Side branch.
		{Position: pos, Normal: ms3.Vec{X: 1}},      // Default branch.
		{Position: pos, Normal: ms3.Vec{Z: 0.9999}}, // Nearly up: still default with zero tolerance.
		{Position: pos, Normal: ms3.Vec{Z: -1}},     // Down is not up.
		{Position: pos, Normal: ms3.Vec{Y: -1}},     // -y is not +y.
	}
	colors := evalMaterial(t, material, frags, 0.25)
	up, side, def := colors[0], colors[1], colors[2]
	if up.R != def.R-0.1 || up.G != def.G-0.1 || up.B != def.B-0.1 {
		t.Errorf("up branch offset mismatch: up=%+v default=%+v", up, def)
	}
	if side.R != def.R-0.2 || side.G != def.G-0.2 || side.B != def.B-0.2 {
		t.Errorf("side branch offset mismatch: side=%+v default=%+v", side, def)
	}
	for _, i := range []int{3, 4, 5} {
		if colors[i] != def {
			t.Errorf("fragment %d normal %+v should shade with default branch: got %+v want %+v",
				i, frags[i].Normal, colors[i], def)
		}
	}
}

func TestNoiseSurfaceOrientationTolerance(t *testing.T) {
	var bld gshade.Builder
	cfg := gshade.DefaultNoiseSurfaceConfig()
	cfg.OrientationTolerance = 0.05
	material := bld.NewNoiseSurface(cfg)
	exact := bld.NewNoiseSurface(gshade.DefaultNoiseSurfaceConfig())
	if err := bld.Err(); err != nil {
		t.Fatal(err)
	}
	pos := ms3.Vec{X: -0.3, Y: 0.6, Z: 0.1}
	frags := []gleval.Fragment{
		{Position: pos, Normal: ms3.Vec{X: 0.04, Z: 0.96}},
		{Position: pos, Normal: ms3.Vec{X: 1}},
	}
	got := evalMaterial(t, material, frags, 1.5)
	ref := evalMaterial(t, exact, frags[1:], 1.5)[0]
	if got[0].R != ref.R-0.1 {
		t.Errorf("tolerant classification should reach up branch: got %g want %g", got[0].R, ref.R-0.1)
	}
	if got[1] != ref {
		t.Errorf("axis-off normal took an offset branch: got %+v want %+v", got[1], ref)
	}
}

func TestNoiseSurfaceDeterminismAndAnimation(t *testing.T) {
	var bld gshade.Builder
	material := bld.NewNoiseSurface(gshade.DefaultNoiseSurfaceConfig())
	if err := bld.Err(); err != nil {
		t.Fatal(err)
	}
	frags := randomFragments(256, 1)
	a := evalMaterial(t, material, frags, 0.8)
	b := evalMaterial(t, material, frags, 0.8)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("fragment %d not deterministic: %+v != %+v", i, a[i], b[i])
		}
	}
	c := evalMaterial(t, material, frags, 1.3)
	changed := 0
	for i := range a {
		if a[i] != c[i] {
			changed++
		}
	}
	if changed < len(a)/2 {
		t.Errorf("advancing time changed only %d/%d fragments", changed, len(a))
	}
}

func TestNoiseSurfaceChannelRange(t *testing.T) {
	var bld gshade.Builder
	material := bld.NewNoiseSurface(gshade.DefaultNoiseSurfaceConfig())
	if err := bld.Err(); err != nil {
		t.Fatal(err)
	}
	frags := randomFragments(2048, 2)
	for i := range frags {
		// Force offset branches on a third of fragments.
		switch i % 3 {
		case 0:
			frags[i].Normal = ms3.Vec{Z: 1}
		case 1:
			frags[i].Normal = ms3.Vec{Y: 1}
		}
	}
	colors := evalMaterial(t, material, frags, 0.6)
	for i, c := range colors {
		if c.A != 1 {
			t.Fatalf("fragment %d alpha not exactly 1: %g", i, c.A)
		}
		for _, v := range [3]float32{c.R, c.G, c.B} {
			// Remapped noise stays in [0,1]; offsets shift down by at most 0.2.
			if v < -0.2 || v > 1 {
				t.Fatalf("fragment %d channel %g outside [-0.2,1]", i, v)
			}
		}
	}
}

func TestMix(t *testing.T) {
	var bld gshade.Builder
	a := bld.NewFlat(1, 0, 0)
	b := bld.NewFlat(0, 1, 0)
	mixed := bld.Mix(a, b, 0.25)
	if err := bld.Err(); err != nil {
		t.Fatal(err)
	}
	frag := gleval.Fragment{Normal: ms3.Vec{Z: 1}}
	got := evalMaterial(t, mixed, []gleval.Fragment{frag}, 0)[0]
	want := gleval.RGBA{R: 0.75, G: 0.25, B: 0, A: 1}
	if got != want {
		t.Errorf("mix result %+v, want %+v", got, want)
	}
	pure := evalMaterial(t, bld.Mix(a, b, 0), []gleval.Fragment{frag}, 0)[0]
	if (pure != gleval.RGBA{R: 1, A: 1}) {
		t.Errorf("ratio 0 should yield first material: %+v", pure)
	}
}

func TestGain(t *testing.T) {
	var bld gshade.Builder
	material := bld.Gain(bld.NewFlat(1, 0.5, 0.25), 0.5)
	if err := bld.Err(); err != nil {
		t.Fatal(err)
	}
	got := evalMaterial(t, material, []gleval.Fragment{{}}, 0)[0]
	want := gleval.RGBA{R: 0.5, G: 0.25, B: 0.125, A: 1}
	if got != want {
		t.Errorf("gain result %+v, want %+v", got, want)
	}
}

func TestMixReleasesPooledBuffers(t *testing.T) {
	var bld gshade.Builder
	noisy := bld.NewNoiseSurface(gshade.DefaultNoiseSurfaceConfig())
	material := bld.Mix(noisy, bld.NewUVChecker(4), 0.5)
	material = bld.Mix(material, bld.NewNormalColor(), 0.3)
	if err := bld.Err(); err != nil {
		t.Fatal(err)
	}
	field, err := gleval.NewCPUColorField(material)
	if err != nil {
		t.Fatal(err)
	}
	frags := randomFragments(512, 3)
	colors := make([]gleval.RGBA, len(frags))
	var bp gleval.BufPool
	for i := 0; i < 4; i++ {
		err = field.Evaluate(frags, float32(i), colors, &bp)
		if err != nil {
			t.Fatal(err)
		}
	}
	if err := bp.AssertAllReleased(); err != nil {
		t.Error(err)
	}
	if allocs := bp.TotalAllocations(); allocs > 2 {
		t.Errorf("pooled evaluation allocated %d buffers over 4 passes", allocs)
	}
}

func TestBuilderErrors(t *testing.T) {
	var bld gshade.Builder
	bld.SetFlags(gshade.FlagNoInvalidPanic)
	cfg := gshade.DefaultNoiseSurfaceConfig()
	cfg.Frequency = -1
	_ = bld.NewNoiseSurface(cfg)
	if bld.Err() == nil {
		t.Error("expected accumulated error for negative frequency")
	}
	bld.ClearErrors()
	if bld.Err() != nil {
		t.Error("ClearErrors did not discard accumulated errors")
	}
	cfg = gshade.DefaultNoiseSurfaceConfig()
	cfg.OrientationTolerance = -0.1
	_ = bld.NewNoiseSurface(cfg)
	_ = bld.NewUVChecker(0)
	_ = bld.Mix(bld.NewFlat(0, 0, 0), bld.NewFlat(1, 1, 1), 2)
	if bld.Err() == nil {
		t.Error("expected accumulated errors for invalid arguments")
	}
	bld.SetFlags(0)
	defer func() {
		if recover() == nil {
			t.Error("expected panic on invalid argument without FlagNoInvalidPanic")
		}
	}()
	cfg.Frequency = 0
	_ = bld.NewNoiseSurface(cfg)
}
