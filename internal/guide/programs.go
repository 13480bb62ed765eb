// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package guide

import (
	"slices"
	"time"

	"github.com/ManuGH/dvrguide/internal/model"
	"github.com/ManuGH/dvrguide/internal/timeutil"
)

// Program is a guide-ready projection of an EPG program.
type Program struct {
	model.Program

	Start   time.Time `json:"-"`
	End     time.Time `json:"-"`
	StartMs int64     `json:"startMs"`
	EndMs   int64     `json:"endMs"`
	IsLive  bool      `json:"isLive"`
	IsPast  bool      `json:"isPast"`
}

// ProgramsByChannel holds each channel's programs sorted by start.
type ProgramsByChannel map[int64][]Program

// ResolveStats counts what happened to the input programs.
type ResolveStats struct {
	Mapped    int
	Unmatched int
	Malformed int
}

// Project parses a program's timestamps and flags it relative to now.
func Project(p model.Program, now time.Time) (Program, bool) {
	start, ok := timeutil.ParseInstant(p.StartTime)
	if !ok {
		return Program{}, false
	}
	end, ok := timeutil.ParseInstant(p.EndTime)
	if !ok {
		return Program{}, false
	}
	return Program{
		Program: p,
		Start:   start,
		End:     end,
		StartMs: timeutil.Millis(start),
		EndMs:   timeutil.Millis(end),
		IsLive:  !now.Before(start) && now.Before(end),
		IsPast:  !now.Before(end),
	}, true
}

// MapProgramsByChannel assigns every program to each channel sharing its
// tvg_id. Programs without a channel or with unparseable times are dropped.
func MapProgramsByChannel(programs []model.Program, index ChannelIndex, now time.Time) ProgramsByChannel {
	out, _ := MapProgramsByChannelWithStats(programs, index, now)
	return out
}

// MapProgramsByChannelWithStats is MapProgramsByChannel plus drop counters.
func MapProgramsByChannelWithStats(programs []model.Program, index ChannelIndex, now time.Time) (ProgramsByChannel, ResolveStats) {
	var stats ResolveStats
	out := make(ProgramsByChannel)
	if len(programs) == 0 || len(index) == 0 {
		stats.Unmatched = len(programs)
		return out, stats
	}

	for _, p := range programs {
		ids := index.Lookup(p.TVGID)
		if len(ids) == 0 {
			stats.Unmatched++
			continue
		}
		gp, ok := Project(p, now)
		if !ok {
			stats.Malformed++
			continue
		}
		stats.Mapped++
		for _, id := range ids {
			out[id] = append(out[id], gp)
		}
	}

	for _, list := range out {
		slices.SortStableFunc(list, func(a, b Program) int {
			return a.Start.Compare(b.Start)
		})
	}
	return out, stats
}
