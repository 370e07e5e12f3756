//go:build tinygo || !cgo

package gleval

import (
	"errors"
	"io"
)

var errNoCGO = errors.New("GPU evaluation requires CGo and is not supported on TinyGo")

// NewComputeGPUColorField instantiates a [ColorField] that runs on the GPU.
func NewComputeGPUColorField(glglSourceCode io.Reader) (*ColorFieldCompute, error) {
	return nil, errNoCGO
}

type ColorFieldCompute struct{}

func (field *ColorFieldCompute) Evaluate(frags []Fragment, t float32, colors []RGBA, userData any) error {
	return errNoCGO
}

// Init1x1GLFW starts a 1x1 sized GLFW so that user can start working with GPU.
func Init1x1GLFW() (terminate func(), err error) {
	return nil, errNoCGO
}
