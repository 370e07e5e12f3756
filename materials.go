package gshade

import (
	"github.com/soypat/gshade/glbuild"
	"github.com/soypat/gshade/glbuild/glsllib"
)

// NoiseSurfaceConfig parametrizes the animated noise material created by
// [Builder.NewNoiseSurface].
type NoiseSurfaceConfig struct {
	// Frequency scales world coordinates before noise sampling.
	// Must be positive.
	Frequency float32
	// UpOffset is subtracted from all color channels on fragments whose
	// normal faces up (+z).
	UpOffset float32
	// SideOffset is subtracted from all color channels on fragments whose
	// normal faces +y.
	SideOffset float32
	// OrientationTolerance relaxes the orientation classification from exact
	// floating point equality (tolerance 0) to |n.axis-1| <= tolerance.
	// Interpolated or renormalized normals practically never compare exactly
	// equal to 1 so meshes without axis-aligned face normals need a positive
	// tolerance to reach the offset branches.
	OrientationTolerance float32
}

// DefaultNoiseSurfaceConfig returns the canonical noise surface parameters:
// unit frequency, 0.1 up offset, 0.2 side offset and exact orientation
// comparison.
func DefaultNoiseSurfaceConfig() NoiseSurfaceConfig {
	return NoiseSurfaceConfig{
		Frequency:  1,
		UpOffset:   0.1,
		SideOffset: 0.2,
	}
}

// NewNoiseSurface creates the animated marbled noise material. Each color
// channel samples 2D Perlin noise at one world axis paired with time,
// remapped from [-1,1] to [0,1], then shifted down by an orientation
// dependent offset. Alpha is always exactly 1. Channel values are not
// clamped so offsets can push channels slightly below zero.
func (bld *Builder) NewNoiseSurface(cfg NoiseSurfaceConfig) glbuild.ColorShader {
	if cfg.Frequency <= 0 {
		bld.materialErrorf("zero or negative noise surface frequency")
	}
	if cfg.OrientationTolerance < 0 {
		bld.materialErrorf("negative orientation tolerance")
	}
	return &noiseSurface{
		freq:    cfg.Frequency,
		upOff:   cfg.UpOffset,
		sideOff: cfg.SideOffset,
		tol:     cfg.OrientationTolerance,
	}
}

type noiseSurface struct {
	freq    float32
	upOff   float32
	sideOff float32
	tol     float32
}

func (s *noiseSurface) ForEachChild(userData any, fn func(userData any, s *glbuild.ColorShader) error) error {
	return nil
}

func (s *noiseSurface) AppendShaderName(b []byte) []byte {
	b = append(b, "noisesurf"...)
	b = glbuild.AppendFloats(b, 0, 'n', 'p', s.freq, s.upOff, s.sideOff, s.tol)
	return b
}

func (s *noiseSurface) AppendShaderBody(b []byte) []byte {
	b = glbuild.AppendFloatDecl(b, "f", s.freq)
	b = append(b, "float o=0.0;\n"...)
	if s.tol == 0 {
		// Exact comparison only reaches the offset branches for perfectly
		// axis-aligned normals, e.g. procedural cube or plane faces.
		b = append(b, "if (n.z == 1.0) { o="...)
		b = glbuild.AppendFloat(b, '-', '.', s.upOff)
		b = append(b, "; }\nelse if (n.y == 1.0) { o="...)
		b = glbuild.AppendFloat(b, '-', '.', s.sideOff)
		b = append(b, "; }\n"...)
	} else {
		b = glbuild.AppendFloatDecl(b, "tol", s.tol)
		b = append(b, "if (abs(n.z-1.0) <= tol) { o="...)
		b = glbuild.AppendFloat(b, '-', '.', s.upOff)
		b = append(b, "; }\nelse if (abs(n.y-1.0) <= tol) { o="...)
		b = glbuild.AppendFloat(b, '-', '.', s.sideOff)
		b = append(b, "; }\n"...)
	}
	b = append(b, `float v1 = (gshadePerlin2(vec2(p.x*f, t))+1.0)*0.5;
float v2 = (gshadePerlin2(vec2(p.y*f, t))+1.0)*0.5;
float v3 = (gshadePerlin2(vec2(p.z*f, t))+1.0)*0.5;
return vec4(v1-o, v2-o, v3-o, 1.0);`...)
	return b
}

func (s *noiseSurface) AppendShaderObjects(objs []glbuild.ShaderObject) []glbuild.ShaderObject {
	return append(objs, glsllib.Perlin2())
}

// NewFlat creates a constant color material. Useful as a mixing partner and
// for render pipeline debugging.
func (bld *Builder) NewFlat(r, g, b float32) glbuild.ColorShader {
	return &flat{r: r, g: g, b: b}
}

type flat struct {
	r, g, b float32
}

func (s *flat) ForEachChild(userData any, fn func(userData any, s *glbuild.ColorShader) error) error {
	return nil
}

func (s *flat) AppendShaderName(b []byte) []byte {
	b = append(b, "flat"...)
	b = glbuild.AppendFloats(b, 0, 'n', 'p', s.r, s.g, s.b)
	return b
}

func (s *flat) AppendShaderBody(b []byte) []byte {
	b = append(b, "return vec4("...)
	b = glbuild.AppendFloats(b, ',', '-', '.', s.r, s.g, s.b)
	b = append(b, ",1.0);"...)
	return b
}

func (s *flat) AppendShaderObjects(objs []glbuild.ShaderObject) []glbuild.ShaderObject {
	return objs
}

// NewNormalColor creates the standard normal-visualizing debug material,
// shading n*0.5+0.5.
func (bld *Builder) NewNormalColor() glbuild.ColorShader {
	return &normalColor{}
}

type normalColor struct{}

func (s *normalColor) ForEachChild(userData any, fn func(userData any, s *glbuild.ColorShader) error) error {
	return nil
}

func (s *normalColor) AppendShaderName(b []byte) []byte {
	return append(b, "normalcolor"...)
}

func (s *normalColor) AppendShaderBody(b []byte) []byte {
	return append(b, "return vec4(n*0.5+0.5, 1.0);"...)
}

func (s *normalColor) AppendShaderObjects(objs []glbuild.ShaderObject) []glbuild.ShaderObject {
	return objs
}

// NewUVChecker creates a black/white checkerboard over the fragment UV
// parametrization with cells subdivisions per unit.
func (bld *Builder) NewUVChecker(cells float32) glbuild.ColorShader {
	if cells <= 0 {
		bld.materialErrorf("zero or negative checker cell count")
	}
	return &uvChecker{cells: cells}
}

type uvChecker struct {
	cells float32
}

func (s *uvChecker) ForEachChild(userData any, fn func(userData any, s *glbuild.ColorShader) error) error {
	return nil
}

func (s *uvChecker) AppendShaderName(b []byte) []byte {
	b = append(b, "uvchecker"...)
	b = glbuild.AppendFloat(b, 'n', 'p', s.cells)
	return b
}

func (s *uvChecker) AppendShaderBody(b []byte) []byte {
	b = glbuild.AppendFloatDecl(b, "cells", s.cells)
	b = append(b, `vec2 c = floor(uv*cells);
float k = mod(c.x+c.y, 2.0);
return vec4(k, k, k, 1.0);`...)
	return b
}

func (s *uvChecker) AppendShaderObjects(objs []glbuild.ShaderObject) []glbuild.ShaderObject {
	return objs
}
