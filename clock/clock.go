// Package clock provides a logical clock whose ticks can be used as
// contexts of a contextmap.ContextMap.
package clock

import "sync/atomic"

// Clock is a monotonic counter. Every Next returns a value strictly greater
// than any value returned or witnessed before, so inserts stamped with it
// never fail with an outdated context.
//
// Clock is safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// New creates a clock starting at 0.
func New() *Clock {
	return &Clock{}
}

// NewAt creates a clock starting at start, e.g. the greatest context of a
// map being rebuilt.
func NewAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next advances the clock and returns the new tick.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last tick without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// Witness moves the clock forward to seen if it is behind, so that the next
// tick orders after a context produced elsewhere. It returns the current tick.
func (c *Clock) Witness(seen int64) int64 {
	for {
		cur := c.seq.Load()
		if seen <= cur {
			return cur
		}
		if c.seq.CompareAndSwap(cur, seen) {
			return seen
		}
	}
}
