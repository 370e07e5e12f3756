package gshade

import (
	"github.com/soypat/gshade/glbuild"
)

// Mix performs linear interpolation between the colors of two materials.
// ratio 0 yields pure a, ratio 1 pure b.
func (bld *Builder) Mix(a, b glbuild.ColorShader, ratio float32) glbuild.ColorShader {
	if a == nil || b == nil {
		bld.nilmat("Mix")
	}
	if ratio < 0 || ratio > 1 {
		bld.materialErrorf("mix ratio outside [0,1]")
	}
	return &mix2{a: a, b: b, ratio: ratio}
}

type mix2 struct {
	a, b  glbuild.ColorShader
	ratio float32
}

func (m *mix2) ForEachChild(userData any, fn func(userData any, s *glbuild.ColorShader) error) error {
	err := fn(userData, &m.a)
	if err != nil {
		return err
	}
	return fn(userData, &m.b)
}

func (m *mix2) AppendShaderName(b []byte) []byte {
	b = append(b, "mix"...)
	b = glbuild.AppendFloat(b, 'n', 'p', m.ratio)
	b = append(b, '_')
	b = m.a.AppendShaderName(b)
	b = append(b, '_')
	b = m.b.AppendShaderName(b)
	return b
}

func (m *mix2) AppendShaderBody(b []byte) []byte {
	b = glbuild.AppendColorCallDecl(b, "ca", m.a)
	b = glbuild.AppendColorCallDecl(b, "cb", m.b)
	b = append(b, "return mix(ca, cb, "...)
	b = glbuild.AppendFloat(b, '-', '.', m.ratio)
	b = append(b, ");"...)
	return b
}

func (m *mix2) AppendShaderObjects(objs []glbuild.ShaderObject) []glbuild.ShaderObject {
	return objs
}

// Gain scales the RGB channels of a material by k, leaving alpha untouched.
func (bld *Builder) Gain(s glbuild.ColorShader, k float32) glbuild.ColorShader {
	if s == nil {
		bld.nilmat("Gain")
	}
	if k < 0 {
		bld.materialErrorf("negative gain")
	}
	return &gain{s: s, k: k}
}

type gain struct {
	s glbuild.ColorShader
	k float32
}

func (g *gain) ForEachChild(userData any, fn func(userData any, s *glbuild.ColorShader) error) error {
	return fn(userData, &g.s)
}

func (g *gain) AppendShaderName(b []byte) []byte {
	b = append(b, "gain"...)
	b = glbuild.AppendFloat(b, 'n', 'p', g.k)
	b = append(b, '_')
	b = g.s.AppendShaderName(b)
	return b
}

func (g *gain) AppendShaderBody(b []byte) []byte {
	b = glbuild.AppendColorCallDecl(b, "c", g.s)
	b = append(b, "return vec4(c.rgb*"...)
	b = glbuild.AppendFloat(b, '-', '.', g.k)
	b = append(b, ", c.a);"...)
	return b
}

func (g *gain) AppendShaderObjects(objs []glbuild.ShaderObject) []glbuild.ShaderObject {
	return objs
}
