// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package guide

import (
	"testing"
	"time"

	"github.com/ManuGH/dvrguide/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWindow(t *testing.T) {
	now := at(t, "2025-03-01T20:47:12Z")
	w := DefaultWindow(now, time.Hour, 6*time.Hour)

	assert.True(t, at(t, "2025-03-01T19:00:00Z").Equal(w.Start))
	assert.True(t, at(t, "2025-03-02T02:00:00Z").Equal(w.End))
	assert.True(t, w.Contains(now))
	assert.True(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.Start.Add(-time.Nanosecond)))
}

func TestWindowExtend(t *testing.T) {
	w := Window{Start: at(t, "2025-03-01T18:00:00Z"), End: at(t, "2025-03-01T22:00:00Z")}
	early, ok := Project(model.Program{StartTime: "2025-03-01T16:30:00Z", EndTime: "2025-03-01T18:30:00Z"}, w.Start)
	require.True(t, ok)
	late, ok := Project(model.Program{StartTime: "2025-03-01T21:00:00Z", EndTime: "2025-03-02T00:15:00Z"}, w.Start)
	require.True(t, ok)

	got := w.Extend(ProgramsByChannel{1: {early}, 2: {late}})
	assert.True(t, early.Start.Equal(got.Start))
	assert.True(t, late.End.Equal(got.End))

	// Programs inside the window leave it untouched.
	inner, ok := Project(model.Program{StartTime: "2025-03-01T19:00:00Z", EndTime: "2025-03-01T20:00:00Z"}, w.Start)
	require.True(t, ok)
	assert.Equal(t, w, w.Extend(ProgramsByChannel{1: {inner}}))
}

func TestWindowClip(t *testing.T) {
	w := Window{Start: at(t, "2025-03-01T18:00:00Z"), End: at(t, "2025-03-01T20:00:00Z")}
	mk := func(id, start, end string) Program {
		p, ok := Project(model.Program{ID: model.Key(id), StartTime: start, EndTime: end}, w.Start)
		require.True(t, ok)
		return p
	}
	programs := []Program{
		mk("before", "2025-03-01T16:00:00Z", "2025-03-01T18:00:00Z"),
		mk("straddle", "2025-03-01T17:30:00Z", "2025-03-01T18:30:00Z"),
		mk("inside", "2025-03-01T18:30:00Z", "2025-03-01T19:30:00Z"),
		mk("after", "2025-03-01T20:00:00Z", "2025-03-01T21:00:00Z"),
	}

	got := w.Clip(programs)
	require.Len(t, got, 2)
	assert.Equal(t, model.Key("straddle"), got[0].ID)
	assert.Equal(t, model.Key("inside"), got[1].ID)
}
