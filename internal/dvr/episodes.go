// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dvr

import (
	"slices"
	"strings"
	"time"

	"github.com/ManuGH/dvrguide/internal/model"
)

// EpisodeKeyStrategy derives an identity key for a future episode. It
// returns false when the fields it relies on are absent.
type EpisodeKeyStrategy struct {
	Name string
	Key  func(rec model.Recording, start, end time.Time) (string, bool)
}

// EpisodeKeyStrategies is evaluated in order; the first strategy that
// yields a key identifies the episode.
var EpisodeKeyStrategies = []EpisodeKeyStrategy{
	{Name: "season_episode", Key: seasonEpisodeKey},
	{Name: "onscreen", Key: onscreenKey},
	{Name: "subtitle", Key: subtitleKey},
	{Name: "program_id", Key: programIDKey},
	{Name: "slot", Key: episodeSlotKey},
}

// seasonAndEpisode reads series metadata from the recording first and the
// embedded program second.
func seasonAndEpisode(rec model.Recording) (season, episode, onscreen model.Key) {
	cp := rec.CustomProperties
	pp := rec.ProgramOrZero().CustomProperties
	season = firstKey(cp.Season, pp.Season)
	episode = firstKey(cp.Episode, pp.Episode)
	onscreen = firstKey(cp.OnscreenEpisode, pp.OnscreenEpisode)
	return season, episode, onscreen
}

func firstKey(keys ...model.Key) model.Key {
	for _, k := range keys {
		if !k.IsZero() {
			return k
		}
	}
	return ""
}

func seasonEpisodeKey(rec model.Recording, _, _ time.Time) (string, bool) {
	season, episode, _ := seasonAndEpisode(rec)
	if season.IsZero() || episode.IsZero() {
		return "", false
	}
	return "se:" + season.String() + ":" + episode.String(), true
}

func onscreenKey(rec model.Recording, _, _ time.Time) (string, bool) {
	_, _, onscreen := seasonAndEpisode(rec)
	if onscreen.IsZero() {
		return "", false
	}
	return "onscreen:" + strings.ToLower(onscreen.String()), true
}

func subtitleKey(rec model.Recording, _, _ time.Time) (string, bool) {
	sub := rec.ProgramOrZero().SubTitle
	if sub == "" {
		return "", false
	}
	return "sub:" + FoldTitle(sub), true
}

func programIDKey(rec model.Recording, _, _ time.Time) (string, bool) {
	id := rec.ProgramOrZero().ID
	if id.IsZero() {
		return "", false
	}
	return "id:" + id.String(), true
}

func episodeSlotKey(rec model.Recording, start, end time.Time) (string, bool) {
	return slotKey(rec.Channel, start, end, rec.ProgramOrZero().Title), true
}

// EpisodeKey applies strategies in order and returns the first key found.
func EpisodeKey(strategies []EpisodeKeyStrategy, rec model.Recording, start, end time.Time) (string, bool) {
	for _, s := range strategies {
		if k, ok := s.Key(rec, start, end); ok {
			return k, true
		}
	}
	return "", false
}

// UpcomingEpisodes expands a series into its distinct future episodes.
//
// A recording qualifies when its embedded program has series's tvg_id and
// title (case-insensitive) and it starts strictly after now. Duplicates are
// resolved with EpisodeKeyStrategies, first seen wins. The result is sorted
// by start.
func UpcomingEpisodes(series model.Program, all []model.Recording, now time.Time) []model.Recording {
	key := SeriesOfProgram(series)

	seen := make(map[string]struct{})
	var out []timed
	for _, rec := range all {
		if !key.Matches(rec) {
			continue
		}
		t, ok := parseWindow(rec)
		if !ok || !t.start.After(now) {
			continue
		}
		k, ok := EpisodeKey(EpisodeKeyStrategies, t.rec, t.start, t.end)
		if !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}

	slices.SortStableFunc(out, func(a, b timed) int { return a.start.Compare(b.start) })
	return recordingsOf(out)
}

// EpisodesForGroup expands a series-grouped upcoming entry. Entries that do
// not stand for more than one occurrence return nil.
func EpisodesForGroup(rec model.Recording, all []model.Recording, now time.Time) []model.Recording {
	if rec.GroupCount <= 1 {
		return nil
	}
	return UpcomingEpisodes(rec.ProgramOrZero(), all, now)
}
