//go:build !tinygo && cgo

package gleval

import (
	"errors"
	"io"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/v4.6-core/glgl"
)

// Init1x1GLFW starts a 1x1 sized GLFW so that user can start working with GPU.
// It returns a termination function that should be called when user is done
// running loads on GPU.
func Init1x1GLFW() (terminate func(), err error) {
	_, terminate, err = glgl.InitWithCurrentWindow33(glgl.WindowConfig{
		Title:   "compute",
		Version: [2]int{4, 6},
		Width:   1,
		Height:  1,
	})
	return terminate, err
}

// NewComputeGPUColorField instantiates a [ColorField] that runs on the GPU.
// The source must be a compute program as generated by
// glbuild.Programmer.WriteComputeColors.
func NewComputeGPUColorField(glglSourceCode io.Reader) (*ColorFieldCompute, error) {
	combinedSource, err := glgl.ParseCombined(glglSourceCode)
	if err != nil {
		return nil, err
	}
	glprog, err := glgl.CompileProgram(combinedSource)
	if err != nil {
		return nil, errors.New(string(combinedSource.Compute) + "\n" + err.Error())
	}
	field := ColorFieldCompute{
		prog: glprog,
	}
	return &field, nil
}

// ColorFieldCompute evaluates fragment colors with a GL compute program.
type ColorFieldCompute struct {
	prog glgl.Program
	pos  []ms3.Vec
	nrm  []ms3.Vec
	uv   []ms2.Vec
}

// Evaluate implements the [ColorField] interface with GPU compute dispatch.
func (field *ColorFieldCompute) Evaluate(frags []Fragment, t float32, colors []RGBA, userData any) error {
	if len(frags) != len(colors) {
		return errMismatchBufferLength
	} else if len(frags) == 0 {
		return errEmptyBuffers
	}
	field.split(frags)
	field.prog.Bind()
	defer field.prog.Unbind()
	timeLoc, err := field.prog.UniformLocation("uTime\x00")
	if err != nil {
		return err
	}
	gl.Uniform1f(timeLoc, t)

	posCfg := glgl.TextureImgConfig{
		Type:           glgl.Texture2D,
		Width:          len(frags),
		Height:         1,
		Access:         glgl.ReadOnly,
		Format:         gl.RGB,
		MinFilter:      gl.NEAREST,
		MagFilter:      gl.NEAREST,
		Xtype:          gl.FLOAT,
		InternalFormat: gl.RGBA32F,
		ImageUnit:      0,
	}
	_, err = glgl.NewTextureFromImage(posCfg, field.pos)
	if err != nil {
		return err
	}
	nrmCfg := posCfg
	nrmCfg.ImageUnit = 1
	_, err = glgl.NewTextureFromImage(nrmCfg, field.nrm)
	if err != nil {
		return err
	}
	uvCfg := glgl.TextureImgConfig{
		Type:           glgl.Texture2D,
		Width:          len(frags),
		Height:         1,
		Access:         glgl.ReadOnly,
		Format:         gl.RG,
		MinFilter:      gl.NEAREST,
		MagFilter:      gl.NEAREST,
		Xtype:          gl.FLOAT,
		InternalFormat: gl.RG32F,
		ImageUnit:      2,
	}
	_, err = glgl.NewTextureFromImage(uvCfg, field.uv)
	if err != nil {
		return err
	}
	colorCfg := glgl.TextureImgConfig{
		Type:           glgl.Texture2D,
		Width:          len(colors),
		Height:         1,
		Access:         glgl.WriteOnly,
		Format:         gl.RGBA,
		MinFilter:      gl.NEAREST,
		MagFilter:      gl.NEAREST,
		Xtype:          gl.FLOAT,
		InternalFormat: gl.RGBA32F,
		ImageUnit:      3,
	}
	colorTex, err := glgl.NewTextureFromImage(colorCfg, colors)
	if err != nil {
		return err
	}
	err = field.prog.RunCompute(len(frags), 1, 1)
	if err != nil {
		return err
	}
	return glgl.GetImage(colors, colorTex, colorCfg)
}

// split unpacks interleaved fragments to the contiguous attribute buffers the
// GL image bindings expect.
func (field *ColorFieldCompute) split(frags []Fragment) {
	if cap(field.pos) < len(frags) {
		field.pos = make([]ms3.Vec, len(frags))
		field.nrm = make([]ms3.Vec, len(frags))
		field.uv = make([]ms2.Vec, len(frags))
	}
	field.pos = field.pos[:len(frags)]
	field.nrm = field.nrm[:len(frags)]
	field.uv = field.uv[:len(frags)]
	for i, f := range frags {
		field.pos[i] = f.Position
		field.nrm[i] = f.Normal
		field.uv[i] = f.UV
	}
}
