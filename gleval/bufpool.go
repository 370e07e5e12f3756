package gleval

import (
	"errors"
	"fmt"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

// BufPool pools scratch buffers for evaluators so that chained material
// evaluations do not allocate per call. Pass a *BufPool as userData to
// Evaluate, or a type implementing the BufPool() *BufPool method.
//
// BufPool is not safe for concurrent use.
type BufPool struct {
	Float pool[float32]
	V2    pool[ms2.Vec]
	V3    pool[ms3.Vec]
	RGBA  pool[RGBA]
}

// GetBufPool retrieves a [BufPool] from the userData argument to an Evaluate
// call. userData may be the pool itself or a type that provides one.
func GetBufPool(userData any) (*BufPool, error) {
	switch ud := userData.(type) {
	case *BufPool:
		return ud, nil
	case interface{ BufPool() *BufPool }:
		bp := ud.BufPool()
		if bp == nil {
			return nil, fmt.Errorf("%T returned nil BufPool", userData)
		}
		return bp, nil
	}
	return nil, fmt.Errorf("BufPool not found in userData %T", userData)
}

// TotalAllocations returns the grand total of buffers created by the pool
// over its lifetime.
func (bp *BufPool) TotalAllocations() uint64 {
	return bp.Float.allocs + bp.V2.allocs + bp.V3.allocs + bp.RGBA.allocs
}

// AssertAllReleased returns an error if any buffer acquired from the pool has
// not been released back. Evaluators are expected to release all scratch on
// all return paths.
func (bp *BufPool) AssertAllReleased() error {
	if n := bp.Float.inUse + bp.V2.inUse + bp.V3.inUse + bp.RGBA.inUse; n != 0 {
		return fmt.Errorf("%d pooled buffers still in use", n)
	}
	return nil
}

type pool[T any] struct {
	free   [][]T
	inUse  int
	allocs uint64
}

// Acquire returns a zeroed buffer of length n. Call Release when done.
func (p *pool[T]) Acquire(n int) []T {
	p.inUse++
	for i, buf := range p.free {
		if cap(buf) >= n {
			p.free[i] = p.free[len(p.free)-1]
			p.free = p.free[:len(p.free)-1]
			buf = buf[:n]
			var z T
			for j := range buf {
				buf[j] = z
			}
			return buf
		}
	}
	p.allocs++
	return make([]T, n)
}

// Release returns a buffer acquired from this pool.
func (p *pool[T]) Release(buf []T) error {
	if buf == nil {
		return errors.New("release of nil buffer")
	}
	if p.inUse <= 0 {
		return errors.New("release without matching acquire")
	}
	p.inUse--
	p.free = append(p.free, buf[:cap(buf)])
	return nil
}
