package gleval

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/dgravesa/go-parallel/parallel"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

// Fragment is one rasterized sample point of a surface for which a color must
// be computed. Each fragment is independent, there is no cross-fragment state.
type Fragment struct {
	// Position is the fragment's world-space position.
	Position ms3.Vec
	// Normal is the surface orientation at the fragment, expected unit length.
	Normal ms3.Vec
	// UV is the 2D surface parametrization of the fragment.
	UV ms2.Vec
}

// RGBA is a shaded fragment color. Channel values are nominally within [0,1]
// though materials may emit values outside that range; no clamping is applied
// until image conversion.
type RGBA struct {
	R, G, B, A float32
}

// Finite reports whether all channels are finite (not NaN nor Inf).
func (c RGBA) Finite() bool {
	for _, v := range [4]float32{c.R, c.G, c.B, c.A} {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ColorField implements fragment shading in vectorized form suitable for
// running on GPU.
type ColorField interface {
	// Evaluate shades the argument fragments at animation time t. frags and
	// colors must be of same length. Resulting colors are stored in colors.
	//
	// userData facilitates getting data to the evaluators for use in
	// processing, such as [BufPool].
	Evaluate(frags []Fragment, t float32, colors []RGBA, userData any) error
}

var (
	errEmptyBuffers         = errors.New("empty buffers")
	errMismatchBufferLength = errors.New("fragment and color buffer length mismatch")
)

// AssertColorField asserts the argument as a [ColorField] with a descriptive
// error on failure.
func AssertColorField(s any) (ColorField, error) {
	evaluator, ok := s.(ColorField)
	if !ok {
		return nil, fmt.Errorf("%T does not implement gleval.ColorField", s)
	}
	return evaluator, nil
}

// NewCPUColorField asserts the argument implements CPU shading and wraps it
// with buffer validation and an owned [BufPool] for evaluations with nil
// userData.
func NewCPUColorField(s any) (*CPUColorField, error) {
	field, err := AssertColorField(s)
	if err != nil {
		return nil, err
	}
	return &CPUColorField{Field: field}, nil
}

// CPUColorField wraps a [ColorField] with buffer validation. It carries its
// own [BufPool] so callers may pass nil userData.
type CPUColorField struct {
	Field ColorField
	bp    BufPool
	evals uint64
}

// Evaluate implements the [ColorField] interface.
func (c *CPUColorField) Evaluate(frags []Fragment, t float32, colors []RGBA, userData any) error {
	if len(frags) != len(colors) {
		return errMismatchBufferLength
	} else if len(frags) == 0 {
		return errEmptyBuffers
	} else if c.Field == nil {
		return errors.New("nil field in CPUColorField")
	}
	if userData == nil {
		userData = &c.bp
	}
	err := c.Field.Evaluate(frags, t, colors, userData)
	if err != nil {
		return err
	}
	c.evals += uint64(len(frags))
	return nil
}

// Evaluations returns total fragments shaded throughout the field's lifetime.
func (c *CPUColorField) Evaluations() uint64 { return c.evals }

// BufPool returns the field's owned buffer pool.
func (c *CPUColorField) BufPool() *BufPool { return &c.bp }

// Parallel distributes fragment shading over goroutine chunks. The wrapped
// field must be safe for concurrent evaluation, which holds for all stateless
// materials. userData is not forwarded to workers since [BufPool] is not
// concurrency safe; each worker goroutine receives its own pool instead.
type Parallel struct {
	Field ColorField
	// MinBatch is the smallest chunk worth spawning work for.
	// Defaults to 512 fragments.
	MinBatch int

	pools []BufPool
}

// Evaluate implements the [ColorField] interface with data-parallel chunking.
func (p *Parallel) Evaluate(frags []Fragment, t float32, colors []RGBA, userData any) error {
	if len(frags) != len(colors) {
		return errMismatchBufferLength
	} else if len(frags) == 0 {
		return errEmptyBuffers
	}
	minBatch := p.MinBatch
	if minBatch <= 0 {
		minBatch = 512
	}
	nchunks := (len(frags) + minBatch - 1) / minBatch
	if nchunks == 1 {
		bp, err := GetBufPool(userData)
		if err != nil {
			bp = p.pool(0)
		}
		return p.Field.Evaluate(frags, t, colors, bp)
	}
	if len(p.pools) < nchunks {
		p.pools = make([]BufPool, nchunks)
	}
	errs := make([]error, nchunks)
	parallel.For(nchunks, func(i, _ int) {
		start := i * minBatch
		end := start + minBatch
		if end > len(frags) {
			end = len(frags)
		}
		errs[i] = p.Field.Evaluate(frags[start:end], t, colors[start:end], p.pool(i))
	})
	return errors.Join(errs...)
}

func (p *Parallel) pool(i int) *BufPool {
	if len(p.pools) <= i {
		p.pools = append(p.pools, make([]BufPool, i+1-len(p.pools))...)
	}
	return &p.pools[i]
}
