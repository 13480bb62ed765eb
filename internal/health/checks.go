// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuGH/dvrguide/internal/snapshot"
)

// SnapshotSource reports the currently loaded snapshot.
type SnapshotSource interface {
	Current() *snapshot.Data
}

// SnapshotChecker is unhealthy until the first snapshot loaded and
// degraded once the snapshot is older than MaxAge. A zero MaxAge never
// degrades.
type SnapshotChecker struct {
	Source SnapshotSource
	MaxAge time.Duration
	Now    func() time.Time
}

func (SnapshotChecker) Name() string { return "snapshot" }

func (c SnapshotChecker) Check(context.Context) CheckResult {
	data := c.Source.Current()
	if data == nil {
		return CheckResult{Status: StatusUnhealthy, Message: "snapshot not loaded"}
	}
	details := map[string]any{
		"loaded_at":  data.LoadedAt,
		"channels":   len(data.Channels),
		"programs":   len(data.Programs),
		"recordings": len(data.Recordings),
	}
	if c.MaxAge > 0 {
		now := time.Now
		if c.Now != nil {
			now = c.Now
		}
		if age := now().Sub(data.LoadedAt); age > c.MaxAge {
			return CheckResult{
				Status:  StatusDegraded,
				Message: fmt.Sprintf("snapshot is %s old", age.Truncate(time.Second)),
				Details: details,
			}
		}
	}
	return CheckResult{Status: StatusHealthy, Details: details}
}

// Backlog reports queued work.
type Backlog interface {
	Pending() int
}

// BacklogChecker degrades when more than Limit items wait. It never
// reports unhealthy: a backlog slows responses but does not break them.
type BacklogChecker struct {
	Component string
	Queue     Backlog
	Limit     int
}

func (c BacklogChecker) Name() string { return c.Component }

func (c BacklogChecker) Check(context.Context) CheckResult {
	pending := c.Queue.Pending()
	details := map[string]any{"pending": pending}
	if c.Limit > 0 && pending > c.Limit {
		return CheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("%d items pending", pending),
			Details: details,
		}
	}
	return CheckResult{Status: StatusHealthy, Details: details}
}

// Pinger is a remote dependency that answers pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker degrades when an optional dependency stops answering.
type PingChecker struct {
	Component string
	Target    Pinger
	Timeout   time.Duration
}

func (c PingChecker) Name() string { return c.Component }

func (c PingChecker) Check(ctx context.Context) CheckResult {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := c.Target.Ping(ctx); err != nil {
		return CheckResult{Status: StatusDegraded, Message: "ping failed", Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy}
}
