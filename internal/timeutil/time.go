// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package timeutil contains the time primitives shared by the guide and DVR
// packages. Nothing here reads the wall clock.
package timeutil

import (
	"fmt"
	"math"
	"strings"
	"time"
	_ "time/tzdata" // zone database for hosts without /usr/share/zoneinfo
)

// XMLTVLayout is the XMLTV timestamp format: YYYYMMDDhhmmss ZZZZ.
const XMLTVLayout = "20060102150405 -0700"

var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	XMLTVLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// ParseInstant parses an upstream timestamp. Layouts without an offset are
// read as UTC. Empty or malformed input reports false.
func ParseInstant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Millis returns t as epoch milliseconds.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts epoch milliseconds to a UTC instant.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// LoadLocation resolves an IANA zone name. An empty name means UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", name, err)
	}
	return loc, nil
}

// In converts t into loc; a nil loc leaves t unchanged.
func In(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return t.In(loc)
}

// StartOfDay returns local midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfHour truncates t to the start of its wall clock hour in t's
// location. It stays on t's side of a repeated DST hour.
func StartOfHour(t time.Time) time.Time {
	return t.Add(-(time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())))
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// RoundToNearest rounds t to the nearest multiple of step minutes within
// its hour grid. Ties round up.
func RoundToNearest(t time.Time, stepMinutes int) time.Time {
	if stepMinutes <= 0 {
		return t
	}
	hour := StartOfHour(t)
	minutes := t.Sub(hour).Minutes()
	step := float64(stepMinutes)
	snapped := math.Floor(minutes/step+0.5) * step
	return hour.Add(time.Duration(snapped) * time.Minute)
}

// MinutesBetween returns the signed, fractional number of minutes from
// from to to.
func MinutesBetween(from, to time.Time) float64 {
	return to.Sub(from).Minutes()
}
