package gate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLimit_NeverExceedsMax(t *testing.T) {
	const max, n = 3, 20
	g := New(max)

	var running, peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := g.WithLimit(context.Background(), func(context.Context) error {
				cur := running.Add(1)
				for {
					p := peak.Load()
					if cur <= p || peak.CompareAndSwap(p, cur) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				running.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int64(max))
	assert.Equal(t, Stats{Max: max}, g.Stats())
}

func TestAcquire_FIFO(t *testing.T) {
	g := New(1)
	require.NoError(t, g.Acquire(context.Background()))

	const n = 5
	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = g.WithLimit(context.Background(), func(context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}(i)
		// Queue each waiter before starting the next.
		require.Eventually(t, func() bool { return g.Stats().Waiting == int64(i+1) },
			time.Second, time.Millisecond)
		time.Sleep(5 * time.Millisecond)
	}

	g.Release()
	wg.Wait()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestWithLimit_ReleasesOnError(t *testing.T) {
	g := New(1)
	boom := errors.New("boom")

	err := g.WithLimit(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 0, g.Stats().InFlight)

	// The slot is free again.
	require.NoError(t, g.WithLimit(context.Background(), func(context.Context) error { return nil }))
}

func TestWithLimit_ReleasesOnPanic(t *testing.T) {
	g := New(1)
	func() {
		defer func() { _ = recover() }()
		_ = g.WithLimit(context.Background(), func(context.Context) error { panic("boom") })
	}()
	assert.EqualValues(t, 0, g.Stats().InFlight)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, g.Acquire(ctx))
}

func TestRelease_FloorsAtZero(t *testing.T) {
	g := New(2)
	g.Release()
	g.Release()
	assert.EqualValues(t, 0, g.Stats().InFlight)

	// Spurious releases must not widen the gate.
	require.NoError(t, g.Acquire(context.Background()))
	require.NoError(t, g.Acquire(context.Background()))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, g.Acquire(ctx), context.DeadlineExceeded)
}

func TestAcquire_ContextCancelled(t *testing.T) {
	g := New(1)
	require.NoError(t, g.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := g.WithLimit(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
	assert.EqualValues(t, 0, g.Stats().Waiting)
	assert.EqualValues(t, 1, g.Stats().InFlight)
}

func TestNew_DefaultMax(t *testing.T) {
	assert.EqualValues(t, DefaultMax, New(0).Stats().Max)
}
