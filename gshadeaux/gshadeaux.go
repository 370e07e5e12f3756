// Package gshadeaux contains convenience functions for working with materials
// with sane defaults, for usage in short scripts and example programs.
package gshadeaux

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"time"

	"github.com/soypat/gshade/glbuild"
	"github.com/soypat/gshade/gleval"
	"github.com/soypat/gshade/glrender"
	"github.com/soypat/gshade/scene"
)

// RenderConfig is used to configure rendering of materials via the [Render]
// function.
type RenderConfig struct {
	// PNGOutput receives a single frame shaded at time Time, if non-nil.
	PNGOutput io.Writer
	// GIFOutput receives a looping animation of Frames frames, if non-nil.
	GIFOutput io.Writer
	Width     int
	Height    int
	// Surface under the material. Defaults to an isometric unit cube.
	Surface scene.Surface
	// Time of the PNG frame and of the first GIF frame.
	Time float32
	// Frames is the GIF frame count. Defaults to 32.
	Frames int
	// TimeStep is the animation time advanced between GIF frames.
	// Defaults to 1/16 of a second.
	TimeStep float32
	// UseGPU shades fragments with a GL compute program instead of on CPU.
	UseGPU bool
	// Silent disables status logging.
	Silent bool
	// Caption is stamped onto the PNG frame when non-empty.
	Caption string
	// CaptionTTF optionally holds TrueType font data for the caption.
	// When nil a built-in bitmap face is used. See [Captioner].
	CaptionTTF []byte
}

// Render renders the material s to the outputs configured in cfg.
func Render(s glbuild.ColorShader, cfg RenderConfig) (err error) {
	if s == nil {
		return errors.New("nil material")
	} else if cfg.PNGOutput == nil && cfg.GIFOutput == nil {
		return errors.New("no render output configured")
	} else if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.New("zero or negative render dimensions")
	}
	info := func(args ...any) {
		if !cfg.Silent {
			log.Println(args...)
		}
	}
	sfc := cfg.Surface
	if sfc == nil {
		sfc, err = scene.NewCube(0.5)
		if err != nil {
			return err
		}
	}
	watch := stopwatch()
	field, terminate, err := makeColorField(s, cfg.UseGPU)
	if err != nil {
		return err
	}
	if terminate != nil {
		defer terminate()
	}
	info("instantiated evaluator in", watch().String())

	ir, err := glrender.NewImageRenderer(max(4096, cfg.Width), nil)
	if err != nil {
		return err
	}
	if cfg.PNGOutput != nil {
		watch = stopwatch()
		img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
		err = ir.Render(field, img, sfc, cfg.Time, nil)
		if err != nil {
			return err
		}
		if cfg.Caption != "" {
			cpt, err := NewCaptioner(cfg.CaptionTTF)
			if err != nil {
				return err
			}
			err = cpt.Stamp(img, cfg.Caption)
			if err != nil {
				return err
			}
		}
		err = png.Encode(cfg.PNGOutput, img)
		if err != nil {
			return err
		}
		info("wrote PNG frame in", watch().String())
	}
	if cfg.GIFOutput != nil {
		watch = stopwatch()
		frames := cfg.Frames
		if frames <= 0 {
			frames = 32
		}
		step := cfg.TimeStep
		if step <= 0 {
			step = 1.0 / 16
		}
		err = glrender.EncodeGIF(cfg.GIFOutput, field, sfc, glrender.AnimationConfig{
			Width:     cfg.Width,
			Height:    cfg.Height,
			Frames:    frames,
			TimeStart: cfg.Time,
			TimeStep:  step,
		}, nil)
		if err != nil {
			return err
		}
		info(fmt.Sprintf("wrote %d GIF frames in %s", frames, watch()))
	}
	return nil
}

// makeColorField instantiates the fragment evaluator. The terminate function
// is non-nil for GPU evaluators and releases the GL context.
func makeColorField(s glbuild.ColorShader, useGPU bool) (field gleval.ColorField, terminate func(), err error) {
	if !useGPU {
		field, err = gleval.AssertColorField(s)
		if err != nil {
			return nil, nil, err
		}
		return &gleval.Parallel{Field: field}, nil, nil
	}
	terminate, err = gleval.Init1x1GLFW()
	if err != nil {
		return nil, nil, err
	}
	var source bytes.Buffer
	prog := glbuild.NewDefaultProgrammer()
	_, err = prog.WriteComputeColors(&source, s)
	if err != nil {
		terminate()
		return nil, nil, err
	}
	field, err = gleval.NewComputeGPUColorField(&source)
	if err != nil {
		terminate()
		return nil, nil, err
	}
	return field, terminate, nil
}

// UIConfig configures the interactive material viewer window. See [UI].
type UIConfig struct {
	Width  int
	Height int
	Title  string
}

// UI starts an interactive window that shades an orbiting view of a cube with
// the argument material. Drag to orbit, scroll to zoom. Blocks until the
// window is closed. Requires cgo and desktop OpenGL.
func UI(s glbuild.ColorShader, cfg UIConfig) error {
	if s == nil {
		return errors.New("nil material")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 800, 600
	}
	if cfg.Title == "" {
		cfg.Title = "gshade"
	}
	return ui(s, cfg)
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration { return time.Since(start) }
}
