// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package timeutil

import "time"

// Viewer display preferences.
const (
	TimeFormat12h = "12h"
	TimeFormat24h = "24h"
	DateFormatMDY = "mdy"
	DateFormatDMY = "dmy"
)

// Formatter renders label text according to viewer preferences. It never
// influences geometry or classification.
type Formatter struct {
	TimeFormat string
	DateFormat string
}

// Clock formats the time of day ("3:04PM" or "15:04").
func (f Formatter) Clock(t time.Time) string {
	if f.TimeFormat == TimeFormat24h {
		return t.Format("15:04")
	}
	return t.Format("3:04PM")
}

// Date formats a short calendar date ("Jan 2" or "2 Jan").
func (f Formatter) Date(t time.Time) string {
	if f.DateFormat == DateFormatDMY {
		return t.Format("2 Jan")
	}
	return t.Format("Jan 2")
}

// DayLabel names the day of t relative to now: Today, Tomorrow, the weekday
// within the coming week, otherwise the short date. t is viewed in now's
// location.
func (f Formatter) DayLabel(t, now time.Time) string {
	t = t.In(now.Location())
	today := StartOfDay(now)
	day := StartOfDay(t)

	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	case day.Before(today.AddDate(0, 0, 7)):
		return t.Format("Monday")
	default:
		return f.Date(t)
	}
}
