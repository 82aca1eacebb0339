package persist

import (
	"sync/atomic"
)

// Counters is a dense array of persistence counts indexed by edge offset.
// Increments are atomic so concurrent passes over disjoint vertices may
// share one Counters value.
type Counters struct {
	values  []uint32
	scanned atomic.Uint64
	passes  atomic.Int64
}

// NewCounters allocates n zeroed counters.
func NewCounters(n int) *Counters {
	return &Counters{values: make([]uint32, n)}
}

// Len returns the number of counters (E).
func (c *Counters) Len() int { return len(c.values) }

// Inc atomically adds one to the counter at offset k.
func (c *Counters) Inc(k uint32) {
	atomic.AddUint32(&c.values[k], 1)
}

// Get atomically reads the counter at offset k.
func (c *Counters) Get(k uint32) uint32 {
	return atomic.LoadUint32(&c.values[k])
}

// Values returns a copy of all counters in offset order.
func (c *Counters) Values() []uint32 {
	out := make([]uint32, len(c.values))
	for i := range c.values {
		out[i] = atomic.LoadUint32(&c.values[i])
	}
	return out
}

// Max returns the largest counter value, 0 when empty.
func (c *Counters) Max() uint32 {
	var m uint32
	for i := range c.values {
		m = max(m, atomic.LoadUint32(&c.values[i]))
	}
	return m
}

// Scanned returns the total number of comparison edges examined by all
// applied passes.
func (c *Counters) Scanned() uint64 { return c.scanned.Load() }

// Passes returns the number of passes applied.
func (c *Counters) Passes() int { return int(c.passes.Load()) }
