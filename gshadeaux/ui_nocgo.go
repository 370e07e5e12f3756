//go:build tinygo || !cgo

package gshadeaux

import (
	"errors"

	"github.com/soypat/gshade/glbuild"
)

func ui(s glbuild.ColorShader, cfg UIConfig) error {
	return errors.New("interactive viewer requires cgo and desktop OpenGL support")
}
