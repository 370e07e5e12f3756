package gshade

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gshade/gleval"
	"github.com/soypat/gshade/noise"
)

func (s *noiseSurface) Evaluate(frags []gleval.Fragment, t float32, colors []gleval.RGBA, userData any) error {
	f := s.freq
	for i, fr := range frags {
		o := s.orientationOffset(fr.Normal)
		p := fr.Position
		v1 := (noise.Perlin2(p.X*f, t) + 1) * 0.5
		v2 := (noise.Perlin2(p.Y*f, t) + 1) * 0.5
		v3 := (noise.Perlin2(p.Z*f, t) + 1) * 0.5
		colors[i] = gleval.RGBA{R: v1 - o, G: v2 - o, B: v3 - o, A: 1}
	}
	return nil
}

// orientationOffset classifies the fragment orientation into the up, side or
// default shading branch. With tol == 0 the comparison degenerates to exact
// float equality against 1.
func (s *noiseSurface) orientationOffset(n ms3.Vec) float32 {
	if absf(n.Z-1) <= s.tol {
		return s.upOff
	} else if absf(n.Y-1) <= s.tol {
		return s.sideOff
	}
	return 0
}

func (s *flat) Evaluate(frags []gleval.Fragment, t float32, colors []gleval.RGBA, userData any) error {
	c := gleval.RGBA{R: s.r, G: s.g, B: s.b, A: 1}
	for i := range frags {
		colors[i] = c
	}
	return nil
}

func (s *normalColor) Evaluate(frags []gleval.Fragment, t float32, colors []gleval.RGBA, userData any) error {
	for i, fr := range frags {
		n := fr.Normal
		colors[i] = gleval.RGBA{R: n.X*0.5 + 0.5, G: n.Y*0.5 + 0.5, B: n.Z*0.5 + 0.5, A: 1}
	}
	return nil
}

func (s *uvChecker) Evaluate(frags []gleval.Fragment, t float32, colors []gleval.RGBA, userData any) error {
	cells := s.cells
	for i, fr := range frags {
		cx := math32.Floor(fr.UV.X * cells)
		cy := math32.Floor(fr.UV.Y * cells)
		k := glslMod(cx+cy, 2)
		colors[i] = gleval.RGBA{R: k, G: k, B: k, A: 1}
	}
	return nil
}

func (m *mix2) Evaluate(frags []gleval.Fragment, t float32, colors []gleval.RGBA, userData any) error {
	bp, err := gleval.GetBufPool(userData)
	if err != nil {
		return err
	}
	aux := bp.RGBA.Acquire(len(frags))
	defer bp.RGBA.Release(aux)
	err = evaluateColorShader(m.a, frags, t, colors, userData)
	if err != nil {
		return err
	}
	err = evaluateColorShader(m.b, frags, t, aux, userData)
	if err != nil {
		return err
	}
	r := m.ratio
	for i, cb := range aux {
		ca := colors[i]
		colors[i] = gleval.RGBA{
			R: mixf(ca.R, cb.R, r),
			G: mixf(ca.G, cb.G, r),
			B: mixf(ca.B, cb.B, r),
			A: mixf(ca.A, cb.A, r),
		}
	}
	return nil
}

func (g *gain) Evaluate(frags []gleval.Fragment, t float32, colors []gleval.RGBA, userData any) error {
	err := evaluateColorShader(g.s, frags, t, colors, userData)
	if err != nil {
		return err
	}
	k := g.k
	for i := range colors {
		colors[i].R *= k
		colors[i].G *= k
		colors[i].B *= k
	}
	return nil
}

func evaluateColorShader(obj any, frags []gleval.Fragment, t float32, colors []gleval.RGBA, userData any) error {
	field, err := gleval.AssertColorField(obj)
	if err != nil {
		return err
	}
	return field.Evaluate(frags, t, colors, userData)
}

// glslMod is GLSL mod semantics: x - y*floor(x/y), result sign follows y.
func glslMod(x, y float32) float32 {
	return x - y*math32.Floor(x/y)
}
