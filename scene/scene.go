// Package scene provides procedural test surfaces that supply fragments for
// material evaluation without a full rasterization pipeline. Surfaces are
// sampled by orthographic view coordinates; the cube and plane produce exact
// axis-aligned normals the way procedurally generated geometry does, while
// the sphere produces normalized normals which practically never compare
// exactly equal to an axis.
package scene

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gshade/gleval"
)

// Surface maps normalized view coordinates to a surface fragment. x and y
// span [-1,1] with y pointing up. ok is false where the view misses the
// surface.
type Surface interface {
	Fragment(x, y float32) (frag gleval.Fragment, ok bool)
}

// NewPlane returns a flat surface of half-extent extent on the z=0 plane,
// viewed from straight above. Its normal is exactly (0,0,1) everywhere.
func NewPlane(extent float32) (*Plane, error) {
	if extent <= 0 {
		return nil, errBadDimension
	}
	return &Plane{extent: extent}, nil
}

// Plane is the z=0 plane seen from +z.
type Plane struct {
	extent float32
}

// Fragment implements the [Surface] interface. It always hits.
func (pl *Plane) Fragment(x, y float32) (gleval.Fragment, bool) {
	e := pl.extent
	return gleval.Fragment{
		Position: ms3.Vec{X: x * e, Y: y * e},
		Normal:   ms3.Vec{Z: 1},
		UV:       ms2.Vec{X: x*0.5 + 0.5, Y: y*0.5 + 0.5},
	}, true
}

// NewCube returns a cube of half-extent h centered at the origin under an
// isometric orthographic view that shows its +x, +y and +z faces. Face
// normals are constructed exactly axis-aligned, matching the contract of
// procedural box geometry.
func NewCube(h float32) (*Cube, error) {
	if h <= 0 {
		return nil, errBadDimension
	}
	const inv3 = 0.57735026919 // 1/sqrt(3)
	const inv2 = 0.70710678118 // 1/sqrt(2)
	const inv6 = 0.40824829046 // 1/sqrt(6)
	return &Cube{
		h:     h,
		view:  2.2 * h,
		fwd:   ms3.Vec{X: -inv3, Y: -inv3, Z: -inv3},
		right: ms3.Vec{X: -inv2, Y: inv2},
		up:    ms3.Vec{X: -inv6, Y: -inv6, Z: 2 * inv6},
	}, nil
}

// Cube is an axis-aligned box under an isometric orthographic view.
type Cube struct {
	h     float32
	view  float32 // world units spanned by one view half-axis
	fwd   ms3.Vec
	right ms3.Vec
	up    ms3.Vec
}

// Fragment implements the [Surface] interface by ray casting the box with the
// slab method.
func (c *Cube) Fragment(x, y float32) (gleval.Fragment, bool) {
	const far = 16.0
	ro := ms3.Add(
		ms3.Add(ms3.Scale(x*c.view, c.right), ms3.Scale(y*c.view, c.up)),
		ms3.Scale(-far*c.h, c.fwd),
	)
	rd := c.fwd
	tN := math32.Inf(-1)
	tF := math32.Inf(1)
	axis := -1
	roArr := ro.Array()
	rdArr := rd.Array()
	for i := 0; i < 3; i++ {
		inv := 1 / rdArr[i]
		t1 := (-c.h - roArr[i]) * inv
		t2 := (c.h - roArr[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tN {
			tN = t1
			axis = i
		}
		tF = math32.Min(tF, t2)
	}
	if tN > tF || tF < 0 || axis < 0 {
		return gleval.Fragment{}, false
	}
	p := ms3.Add(ro, ms3.Scale(tN, rd))
	// Entry face normal is exactly axis aligned, sign opposing the ray.
	var n ms3.Vec
	var uv ms2.Vec
	inv2h := 0.5 / c.h
	switch axis {
	case 0:
		n = ms3.Vec{X: -signf(rdArr[0])}
		uv = ms2.Vec{X: p.Y*inv2h + 0.5, Y: p.Z*inv2h + 0.5}
	case 1:
		n = ms3.Vec{Y: -signf(rdArr[1])}
		uv = ms2.Vec{X: p.X*inv2h + 0.5, Y: p.Z*inv2h + 0.5}
	default:
		n = ms3.Vec{Z: -signf(rdArr[2])}
		uv = ms2.Vec{X: p.X*inv2h + 0.5, Y: p.Y*inv2h + 0.5}
	}
	return gleval.Fragment{Position: p, Normal: n, UV: uv}, true
}

// NewSphere returns a sphere of radius r centered at the origin viewed from
// +z. Its normals are renormalized positions: away from the exact pole they
// never compare equal to an axis, so orientation-branching materials shade
// the whole sphere with their default branch.
func NewSphere(r float32) (*Sphere, error) {
	if r <= 0 {
		return nil, errBadDimension
	}
	return &Sphere{r: r}, nil
}

// Sphere is a UV sphere analog under orthographic projection from +z.
type Sphere struct {
	r float32
}

// Fragment implements the [Surface] interface.
func (s *Sphere) Fragment(x, y float32) (gleval.Fragment, bool) {
	px := x * s.r
	py := y * s.r
	d2 := px*px + py*py
	r2 := s.r * s.r
	if d2 > r2 {
		return gleval.Fragment{}, false
	}
	pz := math32.Sqrt(r2 - d2)
	p := ms3.Vec{X: px, Y: py, Z: pz}
	inv := 1 / s.r
	// Longitude/latitude parametrization of the visible hemisphere.
	u := math32.Atan2(py, px)/(2*math32.Pi) + 0.5
	v := math32.Acos(clampf(pz*inv, -1, 1)) / math32.Pi
	return gleval.Fragment{
		Position: p,
		Normal:   ms3.Scale(inv, p),
		UV:       ms2.Vec{X: u, Y: v},
	}, true
}

var errBadDimension = badDimensionError{}

type badDimensionError struct{}

func (badDimensionError) Error() string { return "zero or negative surface dimension" }

func signf(a float32) float32 {
	if a == 0 {
		return 0
	}
	return math32.Copysign(1, a)
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	} else if v > hi {
		return hi
	}
	return v
}
