// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dvr

import (
	"fmt"

	"github.com/ManuGH/dvrguide/internal/model"
)

// DefaultPosterURL is shown when a recording carries no artwork.
const DefaultPosterURL = "/logo.png"

// EpisodeLabel renders "S01E02" when both season and episode are known and
// falls back to the on-screen code otherwise. Empty when nothing is known.
func EpisodeLabel(season, episode, onscreen model.Key) string {
	if !season.IsZero() && !episode.IsZero() {
		return "S" + pad2(season.String()) + "E" + pad2(episode.String())
	}
	return onscreen.String()
}

func pad2(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}

// RecordingEpisodeLabel is EpisodeLabel over a recording's series metadata.
func RecordingEpisodeLabel(rec model.Recording) string {
	return EpisodeLabel(seasonAndEpisode(rec))
}

// RecordingsByProgramID indexes recordings by embedded program id so guide
// cells can show a record marker. Later recordings replace earlier ones.
func RecordingsByProgramID(recordings []model.Recording) map[model.Key]model.Recording {
	out := make(map[model.Key]model.Recording, len(recordings))
	for _, rec := range recordings {
		if id := rec.ProgramOrZero().ID; !id.IsZero() {
			out[id] = rec
		}
	}
	return out
}

// SeriesRuleFor returns the first series rule covering program: same tvg_id
// and either no title restriction or an exact title match.
func SeriesRuleFor(rules []model.SeriesRule, program model.Program) (model.SeriesRule, bool) {
	for _, r := range rules {
		if r.TVGID != program.TVGID {
			continue
		}
		if r.Title == "" || r.Title == program.Title {
			return r, true
		}
	}
	return model.SeriesRule{}, false
}

// PlaybackURL is the file a finished recording can be played from.
func PlaybackURL(rec model.Recording) string {
	if rec.CustomProperties.FileURL != "" {
		return rec.CustomProperties.FileURL
	}
	return rec.CustomProperties.OutputFileURL
}

// PosterURL prefers the cached logo, then the poster url, then the default.
func PosterURL(rec model.Recording) string {
	cp := rec.CustomProperties
	switch {
	case cp.PosterLogoID != nil && *cp.PosterLogoID != 0:
		return fmt.Sprintf("/api/channels/logos/%d/cache/", *cp.PosterLogoID)
	case cp.PosterURL != "":
		return cp.PosterURL
	}
	return DefaultPosterURL
}

// IsRecurring reports whether rec was materialized from a recurring rule.
func IsRecurring(rec model.Recording) bool {
	return rec.CustomProperties.Rule != nil && rec.CustomProperties.Rule.Type == model.RuleTypeRecurring
}
