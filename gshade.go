// Package gshade generates animated procedural surface materials which can be
// evaluated on CPU or compiled to GL shader source for GPU execution.
//
// A material is a pure function of a fragment's world position, surface
// normal, UV coordinate and an externally advanced time value. Materials are
// stateless: animation comes entirely from the time argument, so a fixed
// (fragment, time) pair always shades to the same color.
package gshade

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

const (
	// epstol is used to check for badly conditioned denominators
	// such as lengths used for normalization.
	epstol = 6e-7
)

// Flags is a bitfield controlling error handling strategies
// of a [Builder].
type Flags uint64

const (
	// FlagNoInvalidPanic makes the Builder accumulate errors on invalid
	// material construction arguments instead of panicking.
	FlagNoInvalidPanic Flags = 1 << iota
)

// Builder wraps all material primitive and operation logic generation.
// Provides error handling strategies with panics or error accumulation
// during material construction.
type Builder struct {
	flags     Flags
	accumErrs []error
}

// Flags returns the current Builder flag values.
func (bld *Builder) Flags() Flags { return bld.flags }

// SetFlags replaces the Builder's flags.
func (bld *Builder) SetFlags(flags Flags) { bld.flags = flags }

// Err returns errors accumulated during material construction, nil if none.
func (bld *Builder) Err() error {
	if len(bld.accumErrs) == 0 {
		return nil
	}
	return errors.Join(bld.accumErrs...)
}

// ClearErrors discards accumulated construction errors.
func (bld *Builder) ClearErrors() {
	bld.accumErrs = nil
}

func (bld *Builder) materialErrorf(msg string, args ...any) {
	if bld.flags&FlagNoInvalidPanic == 0 {
		panic(fmt.Sprintf(msg, args...))
	}
	bld.accumErrs = append(bld.accumErrs, fmt.Errorf(msg, args...))
}

func (*Builder) nilmat(msg string) {
	panic("nil material argument: " + msg)
}

func minf(a, b float32) float32 {
	return math32.Min(a, b)
}

func maxf(a, b float32) float32 {
	return math32.Max(a, b)
}

func absf(a float32) float32 {
	return math32.Abs(a)
}

func clampf(v, Min, Max float32) float32 {
	if v < Min {
		return Min
	} else if v > Max {
		return Max
	}
	return v
}

func mixf(x, y, a float32) float32 {
	return x*(1-a) + y*a
}
