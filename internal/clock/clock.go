// Package clock supplies the logical time (block height) stamped on claim registrations.
// The height never decreases. A Producer advances it at a fixed interval to simulate block
// production.
package clock

import (
	"context"
	"sync/atomic"

	claimsDomain "github.com/allisson/claims/internal/claims/domain"
)

// Clock reads the current logical time.
type Clock interface {
	Now(ctx context.Context) (claimsDomain.LogicalTime, error)
}

// Advancer moves the logical time forward by one block and returns the new height.
type Advancer interface {
	Advance(ctx context.Context) (claimsDomain.LogicalTime, error)
}

// MemoryClock is a process-local clock.
type MemoryClock struct {
	height atomic.Uint64
}

// NewMemoryClock creates a MemoryClock starting at height start.
func NewMemoryClock(start claimsDomain.LogicalTime) *MemoryClock {
	c := &MemoryClock{}
	c.height.Store(uint64(start))
	return c
}

// Now returns the current height.
func (c *MemoryClock) Now(ctx context.Context) (claimsDomain.LogicalTime, error) {
	return claimsDomain.LogicalTime(c.height.Load()), nil
}

// Advance increments the height.
func (c *MemoryClock) Advance(ctx context.Context) (claimsDomain.LogicalTime, error) {
	return claimsDomain.LogicalTime(c.height.Add(1)), nil
}

// Set moves the clock to height if it is ahead of the current one. Lower values are
// ignored so the clock stays monotonic.
func (c *MemoryClock) Set(height claimsDomain.LogicalTime) {
	for {
		current := c.height.Load()
		if uint64(height) <= current {
			return
		}
		if c.height.CompareAndSwap(current, uint64(height)) {
			return
		}
	}
}
