// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dvr

import (
	"strings"

	"github.com/ManuGH/dvrguide/internal/model"
	"golang.org/x/text/unicode/norm"
)

// FoldTitle normalizes a title for case-insensitive comparison. Composed and
// decomposed forms of the same text fold to the same value.
func FoldTitle(title string) string {
	return strings.ToLower(norm.NFC.String(title))
}

// SeriesKey identifies a series: the program's tvg_id plus its folded title.
type SeriesKey struct {
	TVGID model.Key `json:"tvg_id"`
	Title string    `json:"title"`
}

// IsZero reports whether the key carries no identity at all. Such
// recordings never group with each other.
func (k SeriesKey) IsZero() bool {
	return k.TVGID.IsZero() && k.Title == ""
}

// SeriesOfProgram returns the series identity of p.
func SeriesOfProgram(p model.Program) SeriesKey {
	return SeriesKey{TVGID: p.TVGID, Title: FoldTitle(p.Title)}
}

// SeriesOf returns the series identity of the program embedded in rec.
func SeriesOf(rec model.Recording) SeriesKey {
	return SeriesOfProgram(rec.ProgramOrZero())
}

// Matches reports whether rec belongs to the series k.
func (k SeriesKey) Matches(rec model.Recording) bool {
	return SeriesOf(rec) == k
}
