// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package read

import (
	"time"

	"github.com/ManuGH/dvrguide/internal/timeutil"
)

// Clock provides an interface for time-based operations.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using time.Now().
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// viewerNow reads the clock once and converts into the viewer's zone.
func viewerNow(clock Clock, loc *time.Location) time.Time {
	if clock == nil {
		clock = RealClock{}
	}
	return timeutil.In(clock.Now(), loc)
}
