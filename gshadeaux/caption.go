package gshadeaux

import (
	"errors"
	"image"
	"image/draw"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Captioner stamps short text onto rendered frames, typically the animation
// time of the frame.
type Captioner struct {
	ttf  *truetype.Font
	size float64
}

// NewCaptioner parses ttfData as a TrueType font for stamping captions.
// A nil ttfData is valid and selects a built-in fixed 7x13 bitmap face.
func NewCaptioner(ttfData []byte) (*Captioner, error) {
	cpt := &Captioner{size: 14}
	if ttfData != nil {
		f, err := freetype.ParseFont(ttfData)
		if err != nil {
			return nil, err
		}
		cpt.ttf = f
	}
	return cpt, nil
}

// SetSize sets the caption point size. Has no effect on the bitmap face.
func (cpt *Captioner) SetSize(points float64) error {
	if points <= 0 {
		return errors.New("zero or negative caption size")
	}
	cpt.size = points
	return nil
}

// Stamp draws text onto the bottom-left corner of dst.
func (cpt *Captioner) Stamp(dst draw.Image, text string) error {
	if text == "" {
		return errors.New("empty caption")
	}
	const margin = 6
	bb := dst.Bounds()
	if cpt.ttf == nil {
		d := font.Drawer{
			Dst:  dst,
			Src:  image.White,
			Face: basicfont.Face7x13,
			Dot:  fixed.P(bb.Min.X+margin, bb.Max.Y-margin),
		}
		d.DrawString(text)
		return nil
	}
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(cpt.ttf)
	ctx.SetFontSize(cpt.size)
	ctx.SetClip(bb)
	ctx.SetDst(dst)
	ctx.SetSrc(image.White)
	_, err := ctx.DrawString(text, freetype.Pt(bb.Min.X+margin, bb.Max.Y-margin))
	return err
}
