// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package read

import (
	"context"
	"testing"

	"github.com/ManuGH/dvrguide/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryIDs(entries []DvrEntry) []model.Key {
	out := make([]model.Key, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestGetDvr(t *testing.T) {
	view, err := GetDvr(context.Background(), dvrFixture(), FixedClock(testNow), testPrefs())
	require.NoError(t, err)

	assert.Equal(t, []model.Key{"a"}, entryIDs(view.InProgress))
	assert.Equal(t, []model.Key{"b"}, entryIDs(view.Upcoming))
	assert.Equal(t, []model.Key{"d"}, entryIDs(view.Completed))
	assert.Equal(t, 3, view.Upcoming[0].GroupCount)
	assert.Equal(t, map[model.Key]int{"9": 2}, view.RuleOccurrences)

	a := view.InProgress[0]
	assert.Equal(t, "Evening News", a.Title)
	assert.Equal(t, "S01E02", a.EpisodeLabel)
	assert.Equal(t, "/logo.png", a.PosterURL)
	assert.Equal(t, "Today", a.DayLabel)
	assert.Equal(t, "6:00PM - 7:00PM", a.TimeLabel)
	assert.True(t, a.Recurring)

	d := view.Completed[0]
	assert.Equal(t, "/rec/d.ts", d.PlaybackURL)
	assert.False(t, d.Recurring)
}

func TestGetDvrSourceError(t *testing.T) {
	src := dvrFixture()
	src.err = assert.AnError
	_, err := GetDvr(context.Background(), src, FixedClock(testNow), testPrefs())
	require.ErrorIs(t, err, assert.AnError)
}

func TestGetSeriesEpisodes(t *testing.T) {
	series := model.Program{TVGID: "news.1", Title: "EVENING NEWS"}
	episodes, err := GetSeriesEpisodes(context.Background(), dvrFixture(), series, FixedClock(testNow), testPrefs())
	require.NoError(t, err)

	// "e" repeats S01E03 and loses to the first-seen "b"; "a" already started.
	assert.Equal(t, []model.Key{"b", "c"}, entryIDs(episodes))
	assert.Equal(t, "S01E03", episodes[0].EpisodeLabel)
	assert.Equal(t, "Tomorrow", episodes[1].DayLabel)
}

func TestGetRuleOccurrences(t *testing.T) {
	src := dvrFixture()

	occ, err := GetRuleOccurrences(context.Background(), src, "9", FixedClock(testNow), testPrefs())
	require.NoError(t, err)
	assert.Equal(t, []model.Key{"b", "c"}, entryIDs(occ))

	occ, err = GetRuleOccurrences(context.Background(), src, "404", FixedClock(testNow), testPrefs())
	require.NoError(t, err)
	assert.Empty(t, occ)
}

func TestGetRule(t *testing.T) {
	detail, err := GetRule(context.Background(), dvrFixture(), "9", FixedClock(testNow), testPrefs())
	require.NoError(t, err)

	assert.Equal(t, "News on Saturday", detail.Rule.Name)
	assert.True(t, detail.Stale)
	assert.Empty(t, detail.ScheduleError)
	assert.Equal(t, []model.Key{"b", "c"}, entryIDs(detail.Entries))
	require.Len(t, detail.OffSchedule, 1)
	assert.Equal(t, model.Key("c"), detail.OffSchedule[0].ID)
}

func TestGetRuleInvalidSchedule(t *testing.T) {
	detail, err := GetRule(context.Background(), dvrFixture(), "10", FixedClock(testNow), testPrefs())
	require.NoError(t, err)
	assert.NotEmpty(t, detail.ScheduleError)
	assert.False(t, detail.Stale)
	assert.Empty(t, detail.Entries)
}

func TestGetRuleNotFound(t *testing.T) {
	_, err := GetRule(context.Background(), dvrFixture(), "404", FixedClock(testNow), testPrefs())
	require.ErrorIs(t, err, ErrRuleNotFound)

	_, err = GetRule(context.Background(), dvrFixture(), "", FixedClock(testNow), testPrefs())
	require.ErrorIs(t, err, ErrRuleNotFound)
}

func TestGetRuleSourceError(t *testing.T) {
	src := dvrFixture()
	src.err = assert.AnError
	_, err := GetRule(context.Background(), src, "9", FixedClock(testNow), testPrefs())
	require.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, ErrRuleNotFound)
}
