// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package coalesce

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/dvrguide/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// manualClock hands out one timer that only fires when the test says so.
type manualClock struct {
	mu    sync.Mutex
	timer *manualTimer
}

func (c *manualClock) NewTimer(time.Duration) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timer = &manualTimer{c: make(chan time.Time, 1)}
	return c.timer
}

func (c *manualClock) get() *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer
}

type manualTimer struct {
	mu     sync.Mutex
	c      chan time.Time
	active bool
	resets int
}

func (m *manualTimer) C() <-chan time.Time { return m.c }

func (m *manualTimer) Stop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	was := m.active
	m.active = false
	return was
}

func (m *manualTimer) Reset(time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	was := m.active
	m.active = true
	m.resets++
	return was
}

func (m *manualTimer) armed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func (m *manualTimer) fire() {
	m.mu.Lock()
	m.active = false
	m.mu.Unlock()
	m.c <- time.Now()
}

func waitArmed(t *testing.T, clock *manualClock) *manualTimer {
	t.Helper()
	require.Eventually(t, func() bool {
		tm := clock.get()
		return tm != nil && tm.armed()
	}, time.Second, time.Millisecond)
	return clock.get()
}

func TestBatcherCoalescesAndDedupes(t *testing.T) {
	clock := &manualClock{}
	batches := make(chan []int, 4)
	b := New(context.Background(), Config{Name: "t-coalesce", Clock: clock}, func(_ context.Context, keys []int) error {
		batches <- keys
		return nil
	})
	defer b.Close()

	n, err := b.Add(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = b.Add(2, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, b.Pending())

	waitArmed(t, clock).fire()

	select {
	case got := <-batches:
		assert.Equal(t, []int{1, 2, 3}, got)
	case <-time.After(time.Second):
		t.Fatal("batch was not flushed")
	}
	assert.Equal(t, 0, b.Pending())

	n, err = b.Add(1, 2, 3)
	require.NoError(t, err)
	assert.Zero(t, n, "already requested keys must not be queued again")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.BatchFlushTotal.WithLabelValues("t-coalesce", metrics.ResultSuccess)))
}

func TestBatcherRetriesFailedKeys(t *testing.T) {
	clock := &manualClock{}
	var calls sync.WaitGroup
	calls.Add(1)
	var mu sync.Mutex
	var seen [][]string
	b := New(context.Background(), Config{Name: "t-retry", Clock: clock}, func(_ context.Context, keys []string) error {
		mu.Lock()
		seen = append(seen, keys)
		first := len(seen) == 1
		mu.Unlock()
		if first {
			defer calls.Done()
			return errors.New("upstream down")
		}
		return nil
	})
	defer b.Close()

	_, err := b.Add("logo-1")
	require.NoError(t, err)
	waitArmed(t, clock).fire()
	calls.Wait()

	require.Eventually(t, func() bool {
		n, err := b.Add("logo-1")
		return err == nil && n == 1
	}, time.Second, time.Millisecond)

	waitArmed(t, clock).fire()
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, time.Second, time.Millisecond)

	mu.Lock()
	assert.Equal(t, [][]string{{"logo-1"}, {"logo-1"}}, seen)
	mu.Unlock()
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.BatchFlushTotal.WithLabelValues("t-retry", metrics.ResultError)))
}

func TestBatcherDebounceRestartsTimer(t *testing.T) {
	clock := &manualClock{}
	b := New(context.Background(), Config{Name: "t-debounce", Clock: clock}, func(context.Context, []int) error { return nil })
	defer b.Close()

	_, _ = b.Add(1)
	tm := waitArmed(t, clock)
	_, _ = b.Add(2)

	require.Eventually(t, func() bool {
		tm.mu.Lock()
		defer tm.mu.Unlock()
		return tm.resets == 2
	}, time.Second, time.Millisecond)
}

func TestBatcherClose(t *testing.T) {
	fetched := make(chan struct{}, 1)
	b := New(context.Background(), Config{Name: "t-close", Clock: &manualClock{}}, func(context.Context, []int) error {
		fetched <- struct{}{}
		return nil
	})
	_, err := b.Add(1)
	require.NoError(t, err)

	b.Close()

	_, err = b.Add(2)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Len(t, fetched, 0, "pending keys are dropped on close")
}

func TestBatcherStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := New(ctx, Config{Name: "t-ctx"}, func(context.Context, []int) error { return nil })
	cancel()

	require.Eventually(t, func() bool {
		_, err := b.Add(1)
		return errors.Is(err, ErrClosed)
	}, time.Second, time.Millisecond)
	b.Close()
}

func TestBatcherWithSystemClock(t *testing.T) {
	got := make(chan []int, 1)
	b := New(context.Background(), Config{Name: "t-system", Interval: 5 * time.Millisecond}, func(_ context.Context, keys []int) error {
		got <- keys
		return nil
	})
	defer b.Close()

	_, err := b.Add(7, 8)
	require.NoError(t, err)

	select {
	case keys := <-got:
		assert.Equal(t, []int{7, 8}, keys)
	case <-time.After(2 * time.Second):
		t.Fatal("batch was not flushed")
	}
}
