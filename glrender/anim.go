package glrender

import (
	"errors"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"

	"github.com/soypat/gshade/gleval"
	"github.com/soypat/gshade/scene"
)

// AnimationConfig parametrizes [EncodeGIF] frame sequences. Time is advanced
// externally per frame in the same way a host render loop advances a time
// uniform once per frame.
type AnimationConfig struct {
	Width, Height int
	// Frames is the total frame count of the animation.
	Frames int
	// TimeStart is the animation time of the first frame. Zero is a fine start.
	TimeStart float32
	// TimeStep is the animation time advanced between consecutive frames.
	TimeStep float32
	// DelayCS is the GIF inter-frame delay in hundredths of a second.
	// Defaults to 4 (25 frames per second).
	DelayCS int
}

func (cfg *AnimationConfig) validate() error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.New("non-positive animation dimensions")
	} else if cfg.Frames <= 0 {
		return errors.New("non-positive frame count")
	} else if cfg.TimeStep <= 0 {
		return errors.New("non-positive time step")
	}
	return nil
}

// EncodeGIF renders an animated GIF of sfc shaded by field, advancing time by
// cfg.TimeStep each frame. The GIF loops forever.
func EncodeGIF(w io.Writer, field gleval.ColorField, sfc scene.Surface, cfg AnimationConfig, userData any) error {
	err := cfg.validate()
	if err != nil {
		return err
	}
	delay := cfg.DelayCS
	if delay <= 0 {
		delay = 4
	}
	ir, err := NewImageRenderer(max(4096, cfg.Width), nil)
	if err != nil {
		return err
	}
	rect := image.Rect(0, 0, cfg.Width, cfg.Height)
	frame := image.NewRGBA(rect)
	anim := gif.GIF{LoopCount: 0}
	t := cfg.TimeStart
	for i := 0; i < cfg.Frames; i++ {
		err = ir.Render(field, frame, sfc, t, userData)
		if err != nil {
			return err
		}
		paletted := image.NewPaletted(rect, palette.Plan9)
		draw.FloydSteinberg.Draw(paletted, rect, frame, image.Point{})
		anim.Image = append(anim.Image, paletted)
		anim.Delay = append(anim.Delay, delay)
		t += cfg.TimeStep
	}
	return gif.EncodeAll(w, &anim)
}
