// Package glsllib holds GLSL function sources shared between materials.
package glsllib

import (
	_ "embed"

	"github.com/soypat/gshade/glbuild"
)

//go:embed perlin2.glsl
var perlin2Src []byte

// Perlin2 is the classic 2D Perlin noise implementation shared by
// noise-driven materials:
//
//	float gshadePerlin2(vec2 P)
func Perlin2() glbuild.ShaderObject {
	obj, _ := glbuild.MakeShaderFunction(perlin2Src)
	return obj
}
