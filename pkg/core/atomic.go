package core

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64 is a float64 accumulator supporting concurrent lock-free adds
// via compare-and-swap on the raw bits. Used by the transient film and the
// gradient parameters, which are splatted into from many lanes at once.
type AtomicFloat64 struct {
	bits uint64
}

// Add atomically adds v to the accumulator
func (f *AtomicFloat64) Add(v float64) {
	for {
		old := atomic.LoadUint64(&f.bits)
		new := math.Float64bits(math.Float64frombits(old) + v)
		if atomic.CompareAndSwapUint64(&f.bits, old, new) {
			return
		}
	}
}

// Load returns the current value
func (f *AtomicFloat64) Load() float64 {
	return math.Float64frombits(atomic.LoadUint64(&f.bits))
}

// Store atomically replaces the current value
func (f *AtomicFloat64) Store(v float64) {
	atomic.StoreUint64(&f.bits, math.Float64bits(v))
}
