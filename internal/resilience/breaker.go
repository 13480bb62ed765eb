// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package resilience guards calls to optional remote dependencies.
package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/ManuGH/dvrguide/internal/metrics"
)

// State represents the breaker state.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// ErrOpen is returned by Execute while the breaker rejects calls.
var ErrOpen = errors.New("circuit breaker is open")

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Breaker stops calling a failing dependency for a cooldown after
// threshold consecutive failures. After the cooldown one probe is let
// through; its outcome closes or reopens the breaker.
type Breaker struct {
	mu        sync.Mutex
	name      string
	state     State
	failures  int
	threshold int
	cooldown  time.Duration
	openedAt  time.Time
	probing   bool
	clock     Clock
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(b *Breaker) { b.clock = c }
}

// New creates a closed breaker. Non-positive arguments fall back to 3
// failures and a 30s cooldown.
func New(name string, threshold int, cooldown time.Duration, opts ...Option) *Breaker {
	if threshold <= 0 {
		threshold = 3
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	b := &Breaker{
		name:      name,
		state:     StateClosed,
		threshold: threshold,
		cooldown:  cooldown,
		clock:     realClock{},
	}
	for _, opt := range opts {
		opt(b)
	}
	metrics.SetBreakerState(b.name, string(b.state))
	return b
}

// Execute runs fn unless the breaker is open. Errors of fn count as
// failures; use Ignore to return an error that does not.
func (b *Breaker) Execute(fn func() error) error {
	if !b.allow() {
		return ErrOpen
	}
	err := fn()
	var ignored ignoredError
	switch {
	case err == nil:
		b.recordSuccess()
	case errors.As(err, &ignored):
		b.recordSuccess()
		return ignored.err
	default:
		b.recordFailure()
	}
	return err
}

type ignoredError struct{ err error }

func (e ignoredError) Error() string { return e.err.Error() }
func (e ignoredError) Unwrap() error { return e.err }

// Ignore marks err as an expected outcome that keeps the breaker closed,
// such as a cache miss.
func Ignore(err error) error {
	if err == nil {
		return nil
	}
	return ignoredError{err: err}
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if b.clock.Now().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.transitionTo(StateHalfOpen)
		b.probing = true
		return true
	default:
		// One probe at a time.
		if b.probing {
			return false
		}
		b.probing = true
		return true
	}
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.probing = false
	switch {
	case b.state == StateHalfOpen:
		metrics.RecordBreakerTrip(b.name, "probe_failed")
		b.transitionTo(StateOpen)
	case b.state == StateClosed && b.failures >= b.threshold:
		metrics.RecordBreakerTrip(b.name, "threshold_exceeded")
		b.transitionTo(StateOpen)
	}
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.probing = false
	b.transitionTo(StateClosed)
}

// Caller holds mu.
func (b *Breaker) transitionTo(s State) {
	if b.state == s {
		return
	}
	b.state = s
	if s == StateOpen {
		b.openedAt = b.clock.Now()
	}
	metrics.SetBreakerState(b.name, string(s))
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
