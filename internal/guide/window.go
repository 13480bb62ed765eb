// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package guide

import (
	"time"

	"github.com/ManuGH/dvrguide/internal/timeutil"
)

// Window is the visible [Start, End) range of the timeline.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DefaultWindow spans from lookBack before the current hour to lookAhead
// after it, in now's location.
func DefaultWindow(now time.Time, lookBack, lookAhead time.Duration) Window {
	hour := timeutil.StartOfHour(now)
	return Window{Start: hour.Add(-lookBack), End: hour.Add(lookAhead)}
}

// Contains reports whether t lies inside the window (end inclusive).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Extend widens w to cover the earliest start and latest end of programs.
// The result keeps w's location.
func (w Window) Extend(programs ProgramsByChannel) Window {
	out := w
	for _, list := range programs {
		for _, p := range list {
			if p.Start.Before(out.Start) {
				out.Start = p.Start.In(w.Start.Location())
			}
			if p.End.After(out.End) {
				out.End = p.End.In(w.End.Location())
			}
		}
	}
	return out
}

// Clip returns the programs overlapping the window, preserving order.
func (w Window) Clip(programs []Program) []Program {
	out := make([]Program, 0, len(programs))
	for _, p := range programs {
		if p.Start.Before(w.End) && p.End.After(w.Start) {
			out = append(out, p)
		}
	}
	return out
}
