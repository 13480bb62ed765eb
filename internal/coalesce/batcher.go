// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package coalesce batches individual lookups into one upstream request.
//
// Callers Add keys as they discover them; the batcher waits until no new
// key has arrived for the flush interval and then hands every pending key to
// the fetch function in one call. Keys are only requested once unless the
// fetch fails, in which case they become eligible again.
package coalesce

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ManuGH/dvrguide/internal/log"
	"github.com/ManuGH/dvrguide/internal/metrics"
	"github.com/rs/zerolog"
)

// DefaultInterval is the quiet period before a batch is flushed.
const DefaultInterval = 100 * time.Millisecond

// ErrClosed is returned by Add after Close.
var ErrClosed = errors.New("batcher closed")

// FetchFunc resolves one batch. A non-nil error marks the whole batch as
// failed and its keys retryable.
type FetchFunc[K comparable] func(ctx context.Context, keys []K) error

// Config configures a Batcher.
type Config struct {
	// Name labels logs and metrics.
	Name     string
	Interval time.Duration
	Clock    Clock
}

// Batcher coalesces keys into debounced batches.
type Batcher[K comparable] struct {
	name     string
	fetch    FetchFunc[K]
	interval time.Duration
	clock    Clock
	logger   zerolog.Logger

	mu        sync.Mutex
	pending   []K
	attempted map[K]struct{}
	closed    bool

	kick   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// New starts a batcher bound to ctx. Close (or cancelling ctx) stops it;
// keys still pending at that point are dropped.
func New[K comparable](ctx context.Context, cfg Config, fetch FetchFunc[K]) *Batcher[K] {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.Name == "" {
		cfg.Name = "batch"
	}

	ctx, cancel := context.WithCancel(ctx)
	b := &Batcher[K]{
		name:      cfg.Name,
		fetch:     fetch,
		interval:  cfg.Interval,
		clock:     cfg.Clock,
		logger:    log.WithComponent("coalesce").With().Str("batcher", cfg.Name).Logger(),
		attempted: make(map[K]struct{}),
		kick:      make(chan struct{}, 1),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go b.loop(ctx)
	return b
}

// Add queues keys that have not been requested yet and restarts the quiet
// period. It returns how many keys were newly queued.
func (b *Batcher[K]) Add(keys ...K) (int, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return 0, ErrClosed
	}
	queued := 0
	for _, k := range keys {
		if _, seen := b.attempted[k]; seen {
			continue
		}
		b.attempted[k] = struct{}{}
		b.pending = append(b.pending, k)
		queued++
	}
	b.mu.Unlock()

	if queued > 0 {
		select {
		case b.kick <- struct{}{}:
		default:
		}
	}
	return queued, nil
}

// Pending returns the number of keys waiting for the next flush.
func (b *Batcher[K]) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Forget makes keys eligible for another request.
func (b *Batcher[K]) Forget(keys ...K) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range keys {
		delete(b.attempted, k)
	}
}

// Close stops the flush loop and waits for an in-flight fetch to return.
func (b *Batcher[K]) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.cancel()
	<-b.done
}

func (b *Batcher[K]) loop(ctx context.Context) {
	defer close(b.done)

	timer := b.clock.NewTimer(b.interval)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			b.closed = true
			dropped := len(b.pending)
			b.pending = nil
			b.mu.Unlock()
			if dropped > 0 {
				b.logger.Debug().Int("dropped", dropped).Msg("batcher stopped with pending keys")
			}
			return
		case <-b.kick:
			timer.Reset(b.interval)
		case <-timer.C():
			b.flush(ctx)
		}
	}
}

func (b *Batcher[K]) flush(ctx context.Context) {
	b.mu.Lock()
	batch := b.pending
	b.pending = nil
	b.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	err := b.fetch(ctx, batch)
	if err != nil {
		b.Forget(batch...)
		metrics.RecordBatchFlush(b.name, metrics.ResultError, len(batch))
		b.logger.Warn().Err(err).Int("keys", len(batch)).Msg("batch fetch failed, keys will be retried")
		return
	}
	metrics.RecordBatchFlush(b.name, metrics.ResultSuccess, len(batch))
	b.logger.Debug().Int("keys", len(batch)).Msg("batch flushed")
}
