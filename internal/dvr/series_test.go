// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dvr

import (
	"testing"
	"time"

	"github.com/ManuGH/dvrguide/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestEpisodeLabel(t *testing.T) {
	assert.Equal(t, "S01E02", EpisodeLabel("1", "2", "ignored"))
	assert.Equal(t, "S12E103", EpisodeLabel("12", "103", ""))
	assert.Equal(t, "1x02", EpisodeLabel("1", "", "1x02"))
	assert.Empty(t, EpisodeLabel("", "", ""))

	r := newRec("r", 1, now, now.Add(time.Hour),
		programProps(model.ProgramProperties{Season: "3", Episode: "4"}, ""))
	assert.Equal(t, "S03E04", RecordingEpisodeLabel(r))
}

func TestFoldTitleAndSeriesKey(t *testing.T) {
	assert.Equal(t, FoldTitle("Café"), FoldTitle("CAFÉ"))
	assert.True(t, SeriesKey{}.IsZero())
	assert.False(t, SeriesKey{Title: "x"}.IsZero())

	r := newRec("r", 1, now, now.Add(time.Hour), program("p", "news.1", "Evening News"))
	assert.Equal(t, SeriesKey{TVGID: "news.1", Title: "evening news"}, SeriesOf(r))
	assert.True(t, SeriesOfProgram(model.Program{TVGID: "news.1", Title: "EVENING news"}).Matches(r))
}

func TestRecordingsByProgramID(t *testing.T) {
	recs := []model.Recording{
		newRec("a", 1, now, now.Add(time.Hour), program("p1", "t", "T")),
		newRec("b", 1, now, now.Add(time.Hour), program("p1", "t", "T")),
		newRec("c", 1, now, now.Add(time.Hour), program("p2", "t", "T")),
		newRec("d", 1, now, now.Add(time.Hour)),
	}
	got := RecordingsByProgramID(recs)

	assert.Len(t, got, 2)
	assert.Equal(t, model.Key("b"), got["p1"].ID)
	assert.Equal(t, model.Key("c"), got["p2"].ID)
}

func TestSeriesRuleFor(t *testing.T) {
	rules := []model.SeriesRule{
		{TVGID: "news.1", Title: "Morning News", Mode: "all"},
		{TVGID: "news.1", Mode: "new"},
		{TVGID: "docs", Title: "Nature", Mode: "all"},
	}

	r, ok := SeriesRuleFor(rules, model.Program{TVGID: "news.1", Title: "Morning News"})
	assert.True(t, ok)
	assert.Equal(t, "all", r.Mode)

	r, ok = SeriesRuleFor(rules, model.Program{TVGID: "news.1", Title: "Evening News"})
	assert.True(t, ok)
	assert.Equal(t, "new", r.Mode)

	_, ok = SeriesRuleFor(rules, model.Program{TVGID: "docs", Title: "nature"})
	assert.False(t, ok)
}

func TestPlaybackAndPosterURL(t *testing.T) {
	var r model.Recording
	assert.Empty(t, PlaybackURL(r))
	assert.Equal(t, DefaultPosterURL, PosterURL(r))

	r.CustomProperties.OutputFileURL = "/out.ts"
	assert.Equal(t, "/out.ts", PlaybackURL(r))
	r.CustomProperties.FileURL = "/file.mkv"
	assert.Equal(t, "/file.mkv", PlaybackURL(r))

	r.CustomProperties.PosterURL = "https://img.example/p.jpg"
	assert.Equal(t, "https://img.example/p.jpg", PosterURL(r))
	r.CustomProperties.PosterLogoID = ptr(int64(12))
	assert.Equal(t, "/api/channels/logos/12/cache/", PosterURL(r))
}

func TestIsRecurring(t *testing.T) {
	assert.False(t, IsRecurring(model.Recording{}))
	assert.True(t, IsRecurring(newRec("r", 1, now, now, fromRule("1"))))

	r := newRec("r", 1, now, now)
	r.CustomProperties.Rule = &model.RuleRef{ID: "1", Type: "series"}
	assert.False(t, IsRecurring(r))
}
