// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dvr

import (
	"slices"
	"time"

	"github.com/ManuGH/dvrguide/internal/model"
)

// OccurrencesOf returns the recordings the scheduler has materialized for
// ruleID that start strictly after now, sorted by start. It only observes:
// occurrences are never generated here.
func OccurrencesOf(ruleID model.Key, recordings []model.Recording, now time.Time) []model.Recording {
	if ruleID.IsZero() {
		return nil
	}
	var out []timed
	for _, rec := range recordings {
		if rec.RuleID() != ruleID {
			continue
		}
		t, ok := parseWindow(rec)
		if !ok || !t.start.After(now) {
			continue
		}
		out = append(out, t)
	}
	slices.SortStableFunc(out, func(a, b timed) int { return a.start.Compare(b.start) })
	return recordingsOf(out)
}

// OccurrenceCounts counts future occurrences per rule id in one pass.
func OccurrenceCounts(recordings []model.Recording, now time.Time) map[model.Key]int {
	counts := make(map[model.Key]int)
	for _, rec := range recordings {
		id := rec.RuleID()
		if id.IsZero() {
			continue
		}
		t, ok := parseWindow(rec)
		if !ok || !t.start.After(now) {
			continue
		}
		counts[id]++
	}
	return counts
}
