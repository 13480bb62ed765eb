// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package timeutil

import (
	"strconv"
	"strings"
	"time"
)

// ParseClock parses a time of day ("HH:MM", "HH:MM:SS", "h:mm AM") into
// minutes after midnight.
func ParseClock(s string) (int, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	meridiem := ""
	if strings.HasSuffix(s, "AM") || strings.HasSuffix(s, "PM") {
		meridiem = s[len(s)-2:]
		s = strings.TrimSpace(s[:len(s)-2])
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	if len(parts) == 3 {
		if sec, err := strconv.Atoi(parts[2]); err != nil || sec < 0 || sec > 59 {
			return 0, false
		}
	}

	switch meridiem {
	case "":
		if h < 0 || h > 23 {
			return 0, false
		}
	default:
		if h < 1 || h > 12 {
			return 0, false
		}
		h %= 12
		if meridiem == "PM" {
			h += 12
		}
	}
	return h*60 + m, true
}

// ParseDate parses a calendar date (YYYY-MM-DD) as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MinuteOfDay returns minutes since local midnight for t.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// InClockWindow reports whether minute-of-day tMins falls into
// [startMins, endMins). Windows that cross midnight (start > end) wrap;
// an empty window (start == end) matches nothing.
func InClockWindow(tMins, startMins, endMins int) bool {
	switch {
	case startMins < endMins:
		return tMins >= startMins && tMins < endMins
	case startMins > endMins:
		return tMins >= startMins || tMins < endMins
	default:
		return false
	}
}
