package glrender

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/soypat/gshade/gleval"
	"github.com/soypat/gshade/scene"
)

type setImage = interface {
	image.Image
	Set(x, y int, c color.Color)
}

// ImageRenderer shades a [scene.Surface] with a [gleval.ColorField] into an
// image, one batched evaluation per pixel row.
type ImageRenderer struct {
	conv   func(gleval.RGBA) color.Color
	bg     color.Color
	frags  []gleval.Fragment
	colors []gleval.RGBA
	idx    []int
}

// NewImageRenderer instances a new [ImageRenderer]. A nil color conversion
// function results in channel clamping to [0,1] with NaN or infinite
// channels flagged red. evalBufferSize bounds the widest renderable image.
func NewImageRenderer(evalBufferSize int, conversion func(gleval.RGBA) color.Color) (*ImageRenderer, error) {
	if evalBufferSize <= 64 {
		return nil, errors.New("too small evaluation buffer size")
	}
	if conversion == nil {
		conversion = DefaultColorConversion
	}
	ir := &ImageRenderer{
		conv:   conversion,
		bg:     color.RGBA{R: 7, G: 31, B: 60, A: 255}, // matches the visualizer clear color.
		frags:  make([]gleval.Fragment, evalBufferSize),
		colors: make([]gleval.RGBA, evalBufferSize),
		idx:    make([]int, evalBufferSize),
	}
	return ir, nil
}

// SetBackground replaces the color used where the surface is missed.
func (ir *ImageRenderer) SetBackground(c color.Color) { ir.bg = c }

// Render shades sfc as seen on img at animation time t. It uses userData as
// an argument to all [gleval.ColorField] Evaluate calls.
func (ir *ImageRenderer) Render(field gleval.ColorField, img setImage, sfc scene.Surface, t float32, userData any) error {
	if field == nil || sfc == nil {
		return errors.New("nil field or surface")
	}
	imgBB := img.Bounds()
	dxi := imgBB.Dx()
	dyi := imgBB.Dy()
	if len(ir.frags) < dxi {
		return fmt.Errorf("require evaluation buffer (%d) to be at least of length of image rows (%d)", len(ir.frags), dxi)
	}
	for j := 0; j < dyi; j++ {
		// Flip vertically: image rows grow downward, view y grows upward.
		y := 1 - 2*(float32(j)+0.5)/float32(dyi)
		err := ir.renderRow(field, img, sfc, j, y, imgBB, t, userData)
		if err != nil {
			return err
		}
	}
	return nil
}

func (ir *ImageRenderer) renderRow(field gleval.ColorField, img setImage, sfc scene.Surface, row int, y float32, imgBB image.Rectangle, t float32, userData any) error {
	dxi := imgBB.Dx()
	hits := 0
	for i := 0; i < dxi; i++ {
		x := -1 + 2*(float32(i)+0.5)/float32(dxi)
		frag, ok := sfc.Fragment(x, y)
		if !ok {
			img.Set(i+imgBB.Min.X, row+imgBB.Min.Y, ir.bg)
			continue
		}
		ir.frags[hits] = frag
		ir.idx[hits] = i
		hits++
	}
	if hits == 0 {
		return nil
	}
	err := field.Evaluate(ir.frags[:hits], t, ir.colors[:hits], userData)
	if err != nil {
		return err
	}
	conv := ir.conv
	for k := 0; k < hits; k++ {
		img.Set(ir.idx[k]+imgBB.Min.X, row+imgBB.Min.Y, conv(ir.colors[k]))
	}
	return nil
}

var red = color.RGBA{R: 255, A: 255}

// DefaultColorConversion clamps channels to [0,1] and returns red for
// non-finite colors so numeric degeneracy is visible in renders.
func DefaultColorConversion(c gleval.RGBA) color.Color {
	if !c.Finite() {
		return red
	}
	return color.RGBA{
		R: quantize(c.R),
		G: quantize(c.G),
		B: quantize(c.B),
		A: quantize(c.A),
	}
}

func quantize(v float32) uint8 {
	v = math32.Min(1, math32.Max(0, v))
	return uint8(v*255 + 0.5)
}
