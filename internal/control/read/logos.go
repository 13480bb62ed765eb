// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package read

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/ManuGH/dvrguide/internal/coalesce"
	"github.com/ManuGH/dvrguide/internal/model"
)

// LogoResolver collects logo requests from many callers and resolves them
// against the logo source in debounced batches.
//
// Each id is looked up at most once unless its batch failed. Ids the
// source does not know are remembered as attempted and never retried.
type LogoResolver struct {
	src     LogoSource
	batcher *coalesce.Batcher[int64]

	mu       sync.RWMutex
	resolved map[int64]model.Logo
}

// LogoResolverConfig tunes the batching.
type LogoResolverConfig struct {
	Interval time.Duration
	Clock    coalesce.Clock
}

// NewLogoResolver starts a resolver bound to ctx.
func NewLogoResolver(ctx context.Context, src LogoSource, cfg LogoResolverConfig) *LogoResolver {
	r := &LogoResolver{
		src:      src,
		resolved: make(map[int64]model.Logo),
	}
	r.batcher = coalesce.New(ctx, coalesce.Config{
		Name:     "logos",
		Interval: cfg.Interval,
		Clock:    cfg.Clock,
	}, r.fetch)
	return r
}

func (r *LogoResolver) fetch(ctx context.Context, ids []int64) error {
	logos, err := r.src.GetLogos(ctx)
	if err != nil {
		return fmt.Errorf("get logos: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if logo, ok := logos[id]; ok {
			r.resolved[id] = logo
		}
	}
	return nil
}

// Request queues ids for resolution and returns how many were new.
func (r *LogoResolver) Request(ids ...int64) (int, error) {
	return r.batcher.Add(ids...)
}

// Pending is the number of ids waiting for the next batch.
func (r *LogoResolver) Pending() int {
	return r.batcher.Pending()
}

// Resolved returns a copy of the resolved logos. With ids, only those are
// returned.
func (r *LogoResolver) Resolved(ids ...int64) map[int64]model.Logo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(ids) == 0 {
		return maps.Clone(r.resolved)
	}
	out := make(map[int64]model.Logo, len(ids))
	for _, id := range ids {
		if logo, ok := r.resolved[id]; ok {
			out[id] = logo
		}
	}
	return out
}

// Invalidate drops resolved logos so their ids can be requested again.
// Call it after the logo collection changed.
func (r *LogoResolver) Invalidate() {
	r.mu.Lock()
	ids := make([]int64, 0, len(r.resolved))
	for id := range r.resolved {
		ids = append(ids, id)
	}
	clear(r.resolved)
	r.mu.Unlock()
	r.batcher.Forget(ids...)
}

// Close stops the batcher.
func (r *LogoResolver) Close() {
	r.batcher.Close()
}
