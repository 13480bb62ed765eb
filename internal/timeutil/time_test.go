// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func TestParseInstant(t *testing.T) {
	want := mustTime(t, "2025-03-01T20:00:00Z")
	tests := []struct {
		name string
		in   string
		ok   bool
	}{
		{"rfc3339", "2025-03-01T20:00:00Z", true},
		{"rfc3339 offset", "2025-03-01T21:00:00+01:00", true},
		{"rfc3339 nano", "2025-03-01T20:00:00.000Z", true},
		{"xmltv", "20250301200000 +0000", true},
		{"naive", "2025-03-01 20:00:00", true},
		{"empty", "", false},
		{"garbage", "yesterday-ish", false},
		{"partial", "2025-03-01T", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseInstant(tt.in)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.True(t, want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestMillisRoundTrip(t *testing.T) {
	ts := mustTime(t, "2025-03-01T20:00:00Z")
	assert.Equal(t, int64(1740859200000), Millis(ts))
	assert.True(t, ts.Equal(FromMillis(Millis(ts))))
}

func TestStartOfHour(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"utc", mustTime(t, "2025-03-01T20:44:59Z"), "2025-03-01T20:00:00Z"},
		{"first 01:xx of fall back", mustTime(t, "2025-11-02T05:40:00Z").In(ny), "2025-11-02T05:00:00Z"},
		{"second 01:xx of fall back", mustTime(t, "2025-11-02T06:40:00Z").In(ny), "2025-11-02T06:00:00Z"},
		{"half hour offset", mustTime(t, "2025-03-01T20:10:00Z").In(kolkata), "2025-03-01T19:30:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StartOfHour(tt.in)
			assert.True(t, mustTime(t, tt.want).Equal(got), "got %s", got)
			assert.Equal(t, tt.in.Location(), got.Location())
		})
	}
}

func TestRoundToNearest(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-03-01T20:00:00Z", "2025-03-01T20:00:00Z"},
		{"2025-03-01T20:14:59Z", "2025-03-01T20:00:00Z"},
		{"2025-03-01T20:15:00Z", "2025-03-01T20:30:00Z"},
		{"2025-03-01T20:44:00Z", "2025-03-01T20:30:00Z"},
		{"2025-03-01T20:45:00Z", "2025-03-01T21:00:00Z"},
		{"2025-03-01T23:50:00Z", "2025-03-02T00:00:00Z"},
	}
	for _, tt := range tests {
		got := RoundToNearest(mustTime(t, tt.in), 30)
		assert.True(t, mustTime(t, tt.want).Equal(got), "RoundToNearest(%s) = %s", tt.in, got)
	}
}

func TestMinutesBetweenIsSignedAndFractional(t *testing.T) {
	a := mustTime(t, "2025-03-01T20:00:00Z")
	b := a.Add(90 * time.Second)
	assert.InDelta(t, 1.5, MinutesBetween(a, b), 1e-9)
	assert.InDelta(t, -1.5, MinutesBetween(b, a), 1e-9)
}

func TestSameDayUsesFirstLocation(t *testing.T) {
	berlin, err := LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	a := mustTime(t, "2025-03-01T23:30:00Z").In(berlin) // 00:30 on Mar 2 in Berlin
	b := mustTime(t, "2025-03-02T10:00:00Z")
	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(b.In(time.UTC), mustTime(t, "2025-03-01T23:30:00Z")))
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = LoadLocation("Mars/Olympus_Mons")
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"18:30", 18*60 + 30, true},
		{"18:30:00", 18*60 + 30, true},
		{"6:05 PM", 18*60 + 5, true},
		{"12:00 AM", 0, true},
		{"12:15PM", 12*60 + 15, true},
		{"24:00", 0, false},
		{"13:00 PM", 0, false},
		{"18", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseClock(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestInClockWindow(t *testing.T) {
	assert.True(t, InClockWindow(18*60, 18*60, 20*60))
	assert.False(t, InClockWindow(20*60, 18*60, 20*60))
	assert.True(t, InClockWindow(23*60, 22*60, 2*60))
	assert.True(t, InClockWindow(60, 22*60, 2*60))
	assert.False(t, InClockWindow(3*60, 22*60, 2*60))
	assert.False(t, InClockWindow(0, 0, 0))
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2025-03-01", time.UTC)
	require.True(t, ok)
	assert.True(t, mustTime(t, "2025-03-01T00:00:00Z").Equal(d))

	_, ok = ParseDate("03/01/2025", nil)
	assert.False(t, ok)
}

func TestFormatterDayLabel(t *testing.T) {
	now := mustTime(t, "2025-03-05T10:00:00Z") // Wednesday
	f := Formatter{TimeFormat: TimeFormat24h, DateFormat: DateFormatDMY}

	assert.Equal(t, "Today", f.DayLabel(mustTime(t, "2025-03-05T23:00:00Z"), now))
	assert.Equal(t, "Tomorrow", f.DayLabel(mustTime(t, "2025-03-06T01:00:00Z"), now))
	assert.Equal(t, "Saturday", f.DayLabel(mustTime(t, "2025-03-08T12:00:00Z"), now))
	assert.Equal(t, "20 Mar", f.DayLabel(mustTime(t, "2025-03-20T12:00:00Z"), now))

	mdy := Formatter{DateFormat: DateFormatMDY}
	assert.Equal(t, "Mar 20", mdy.DayLabel(mustTime(t, "2025-03-20T12:00:00Z"), now))
}

func TestFormatterClock(t *testing.T) {
	ts := mustTime(t, "2025-03-05T18:05:00Z")
	assert.Equal(t, "18:05", Formatter{TimeFormat: TimeFormat24h}.Clock(ts))
	assert.Equal(t, "6:05PM", Formatter{TimeFormat: TimeFormat12h}.Clock(ts))
}
