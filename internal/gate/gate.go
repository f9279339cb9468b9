// Package gate bounds the number of generation calls in flight across
// the process.
package gate

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// DefaultMax is used when a non-positive limit is configured.
const DefaultMax = 2

// Gate is an admission-control semaphore. Waiters are admitted in FIFO
// order and there is no wait timeout beyond the caller's context.
type Gate struct {
	sem      *semaphore.Weighted
	max      int64
	inFlight atomic.Int64
	waiting  atomic.Int64
}

// Stats is a point-in-time view of the gate.
type Stats struct {
	Max      int64 `json:"max"`
	InFlight int64 `json:"inFlight"`
	Waiting  int64 `json:"waiting"`
}

func New(max int) *Gate {
	if max <= 0 {
		max = DefaultMax
	}
	return &Gate{sem: semaphore.NewWeighted(int64(max)), max: int64(max)}
}

// Acquire takes a slot, blocking until one is free or ctx is done.
func (g *Gate) Acquire(ctx context.Context) error {
	g.waiting.Add(1)
	err := g.sem.Acquire(ctx, 1)
	g.waiting.Add(-1)
	if err != nil {
		return err
	}
	g.inFlight.Add(1)
	return nil
}

// Release returns a slot taken by Acquire. The in-flight count never
// goes below zero.
func (g *Gate) Release() {
	for {
		n := g.inFlight.Load()
		if n <= 0 {
			return
		}
		if g.inFlight.CompareAndSwap(n, n-1) {
			break
		}
	}
	g.sem.Release(1)
}

// WithLimit runs fn while holding a slot. The slot is released on every
// exit path, including a panic in fn.
func (g *Gate) WithLimit(ctx context.Context, fn func(context.Context) error) error {
	if err := g.Acquire(ctx); err != nil {
		return err
	}
	defer g.Release()
	return fn(ctx)
}

func (g *Gate) Stats() Stats {
	return Stats{
		Max:      g.max,
		InFlight: g.inFlight.Load(),
		Waiting:  g.waiting.Load(),
	}
}
