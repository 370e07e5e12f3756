package glrender_test

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/gshade/gleval"
	"github.com/soypat/gshade/glrender"
	"github.com/soypat/gshade/scene"
)

// solidField shades every fragment the same color.
type solidField struct {
	c gleval.RGBA
}

func (s solidField) Evaluate(frags []gleval.Fragment, t float32, colors []gleval.RGBA, userData any) error {
	for i := range frags {
		colors[i] = s.c
	}
	return nil
}

// timeField encodes time in the red channel to make frames distinguishable.
type timeField struct{}

func (timeField) Evaluate(frags []gleval.Fragment, t float32, colors []gleval.RGBA, userData any) error {
	for i := range frags {
		colors[i] = gleval.RGBA{R: t, A: 1}
	}
	return nil
}

func TestImageRendererSolid(t *testing.T) {
	ir, err := glrender.NewImageRenderer(4096, nil)
	if err != nil {
		t.Fatal(err)
	}
	pl, err := scene.NewPlane(1)
	if err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	err = ir.Render(solidField{c: gleval.RGBA{R: 0.5, G: 0.25, B: 1, A: 1}}, img, pl, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := color.RGBA{R: 128, G: 64, B: 255, A: 255}
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if got := img.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %+v, want %+v", x, y, got, want)
			}
		}
	}
}

func TestImageRendererBackground(t *testing.T) {
	ir, err := glrender.NewImageRenderer(4096, nil)
	if err != nil {
		t.Fatal(err)
	}
	sph, err := scene.NewSphere(1)
	if err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	err = ir.Render(solidField{c: gleval.RGBA{R: 1, A: 1}}, img, sph, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	bg := color.RGBA{R: 7, G: 31, B: 60, A: 255}
	if got := img.RGBAAt(0, 0); got != bg {
		t.Errorf("corner pixel %+v, want background %+v", got, bg)
	}
	hit := color.RGBA{R: 255, A: 255}
	if got := img.RGBAAt(32, 32); got != hit {
		t.Errorf("center pixel %+v, want %+v", got, hit)
	}
}

func TestImageRendererBufferTooSmall(t *testing.T) {
	_, err := glrender.NewImageRenderer(10, nil)
	if err == nil {
		t.Error("expected error for tiny evaluation buffer")
	}
	ir, err := glrender.NewImageRenderer(128, nil)
	if err != nil {
		t.Fatal(err)
	}
	pl, err := scene.NewPlane(1)
	if err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 256, 4))
	err = ir.Render(solidField{}, img, pl, 0, nil)
	if err == nil {
		t.Error("expected error for image wider than evaluation buffer")
	}
}

func TestDefaultColorConversion(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	if got := glrender.DefaultColorConversion(gleval.RGBA{R: math32.NaN(), A: 1}); got != red {
		t.Errorf("NaN color converted to %+v, want red flag", got)
	}
	if got := glrender.DefaultColorConversion(gleval.RGBA{R: -0.5, G: 2, B: 1, A: 1}); got != (color.RGBA{G: 255, B: 255, A: 255}) {
		t.Errorf("clamped conversion = %+v", got)
	}
}

func TestEncodeGIF(t *testing.T) {
	pl, err := scene.NewPlane(1)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	cfg := glrender.AnimationConfig{
		Width:    16,
		Height:   16,
		Frames:   3,
		TimeStep: 0.25,
	}
	err = glrender.EncodeGIF(&buf, timeField{}, pl, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(anim.Image) != cfg.Frames {
		t.Fatalf("decoded %d frames, want %d", len(anim.Image), cfg.Frames)
	}
	if anim.LoopCount != 0 {
		t.Errorf("loop count %d, want 0 (loop forever)", anim.LoopCount)
	}
	for i, d := range anim.Delay {
		if d != 4 {
			t.Errorf("frame %d delay %d, want default 4", i, d)
		}
	}
	// Frames must differ since the material animates over time.
	if frameEqual(anim.Image[0], anim.Image[2]) {
		t.Error("first and last frames identical, time not advanced")
	}
	cfg.Frames = 0
	err = glrender.EncodeGIF(&buf, timeField{}, pl, cfg, nil)
	if err == nil {
		t.Error("expected error for zero frame count")
	}
}

func frameEqual(a, b *image.Paletted) bool {
	if len(a.Pix) != len(b.Pix) {
		return false
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			return false
		}
	}
	return true
}
