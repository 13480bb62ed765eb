// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package guide

import (
	"math"
	"time"

	"github.com/ManuGH/dvrguide/internal/model"
	"github.com/ManuGH/dvrguide/internal/timeutil"
)

// Default layout constants, in pixels and minutes.
const (
	DefaultChannelWidth          = 120
	DefaultHourWidth             = 450
	DefaultMinuteIncrement       = 15
	DefaultProgramHeight         = 90
	DefaultExpandedProgramHeight = 180

	scrollSnapMinutes = 30
	scrollLeadPixels  = 20
)

// Layout holds the fixed geometry of the guide grid.
type Layout struct {
	ChannelWidth          int
	HourWidth             int
	MinuteIncrement       int
	ProgramHeight         int
	ExpandedProgramHeight int
}

// DefaultLayout returns the stock guide geometry.
func DefaultLayout() Layout {
	return Layout{
		ChannelWidth:          DefaultChannelWidth,
		HourWidth:             DefaultHourWidth,
		MinuteIncrement:       DefaultMinuteIncrement,
		ProgramHeight:         DefaultProgramHeight,
		ExpandedProgramHeight: DefaultExpandedProgramHeight,
	}
}

// BlockWidth is the pixel width of one minute increment.
func (l Layout) BlockWidth() float64 {
	return float64(l.HourWidth) / (60 / float64(l.MinuteIncrement))
}

// minutesToPixels converts a minute offset into the quantized pixel scale.
func (l Layout) minutesToPixels(minutes float64) float64 {
	return minutes / float64(l.MinuteIncrement) * l.BlockWidth()
}

// HourMarker is one column header of the timeline.
type HourMarker struct {
	Time     time.Time `json:"time"`
	IsNewDay bool      `json:"isNewDay"`
}

// HourTimeline lists the hour columns between start (inclusive) and end
// (exclusive). The first marker sits on start; later markers sit on hour
// boundaries. IsNewDay flags the first hour of a calendar day in start's
// location.
func (l Layout) HourTimeline(start, end time.Time) []HourMarker {
	if !start.Before(end) {
		return nil
	}
	markers := make([]HourMarker, 0, int(end.Sub(start).Hours())+2)
	var prev time.Time
	for cur := start; cur.Before(end); cur = nextHour(cur) {
		var newDay bool
		if len(markers) == 0 {
			newDay = cur.Equal(timeutil.StartOfDay(cur))
		} else {
			newDay = !timeutil.SameDay(cur, prev)
		}
		markers = append(markers, HourMarker{Time: cur, IsNewDay: newDay})
		prev = cur
	}
	return markers
}

// nextHour returns the next local hour boundary after t.
func nextHour(t time.Time) time.Time {
	return timeutil.StartOfHour(t).Add(time.Hour)
}

// NowOffset returns the horizontal position of the "now" line, or -1 when
// now lies outside [start, end].
func (l Layout) NowOffset(now, start, end time.Time) float64 {
	if now.Before(start) || now.After(end) {
		return -1
	}
	return l.minutesToPixels(timeutil.MinutesBetween(start, now))
}

// InitialScrollOffset positions the viewport so that now, rounded to the
// nearest half hour, sits one block in from the left edge.
func (l Layout) InitialScrollOffset(now, start time.Time) float64 {
	rounded := timeutil.RoundToNearest(now, scrollSnapMinutes)
	offset := l.minutesToPixels(timeutil.MinutesBetween(start, rounded)) - l.BlockWidth()
	return math.Max(offset, 0)
}

// ProgramLeftOffset is the left edge of p relative to the window start.
func (l Layout) ProgramLeftOffset(p Program, start time.Time) float64 {
	return l.minutesToPixels(timeutil.MinutesBetween(start, p.Start))
}

// ProgramWidth is the pixel width of p's duration.
func (l Layout) ProgramWidth(p Program) float64 {
	return math.Max(l.minutesToPixels(timeutil.MinutesBetween(p.Start, p.End)), 0)
}

// TimeFromClick snaps a click at fraction (0..1) across the hour cell that
// starts at hour to the nearest increment. A snap to minute 60 carries into
// the next hour.
func (l Layout) TimeFromClick(fraction float64, hour time.Time) time.Time {
	if math.IsNaN(fraction) {
		fraction = 0
	}
	fraction = math.Min(math.Max(fraction, 0), 1)
	inc := float64(l.MinuteIncrement)
	snapped := int(math.Round(fraction*60/inc) * inc)

	base := timeutil.StartOfHour(hour)
	if snapped >= 60 {
		return base.Add(time.Hour)
	}
	return base.Add(time.Duration(snapped) * time.Minute)
}

// ClickScrollOffset is the scroll position of the instant a click snaps to.
func (l Layout) ClickScrollOffset(fraction float64, hour, start time.Time) float64 {
	return l.minutesToPixels(timeutil.MinutesBetween(start, l.TimeFromClick(fraction, hour)))
}

// DesiredScrollOffset leaves a small lead in front of leftPx.
func DesiredScrollOffset(leftPx float64) float64 {
	return math.Max(0, leftPx-scrollLeadPixels)
}

// ContentWidth is the pixel width of the program area for the window.
func (l Layout) ContentWidth(start, end time.Time) float64 {
	if !start.Before(end) {
		return 0
	}
	return end.Sub(start).Hours() * float64(l.HourWidth)
}

// RowHeights returns one height per channel: expanded when the channel's
// programs contain expandedProgramID, collapsed otherwise.
func (l Layout) RowHeights(channels []model.Channel, programs ProgramsByChannel, expandedProgramID model.Key) []int {
	if len(channels) == 0 {
		return nil
	}
	heights := make([]int, len(channels))
	for i, ch := range channels {
		heights[i] = l.ProgramHeight
		if expandedProgramID.IsZero() {
			continue
		}
		for _, p := range programs[ch.ID] {
			if p.ID == expandedProgramID {
				heights[i] = l.ExpandedProgramHeight
				break
			}
		}
	}
	return heights
}
