// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dvr

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/dvrguide/internal/model"
	"github.com/ManuGH/dvrguide/internal/timeutil"
)

// Bucket is the display state of a recording relative to now.
type Bucket string

const (
	BucketInProgress Bucket = "in_progress"
	BucketUpcoming   Bucket = "upcoming"
	BucketCompleted  Bucket = "completed"
)

// Buckets is the classified view of a recording list.
type Buckets struct {
	InProgress []model.Recording `json:"inProgress"`
	Upcoming   []model.Recording `json:"upcoming"`
	Completed  []model.Recording `json:"completed"`
}

// Len is the total number of entries across all buckets.
func (b Buckets) Len() int {
	return len(b.InProgress) + len(b.Upcoming) + len(b.Completed)
}

// BucketFor derives the bucket of a single recording.
//
// Priority order:
//  1. interrupted / completed status is final, whatever the window says.
//  2. start <= now < end is in progress.
//  3. now < start is upcoming.
//  4. anything else has ended; a still-pending status is reported as completed.
//
// The second return value is a short reason code for logs.
func BucketFor(now time.Time, status string, start, end time.Time) (Bucket, string) {
	switch status {
	case model.StatusInterrupted:
		return BucketCompleted, "status_interrupted"
	case model.StatusCompleted:
		return BucketCompleted, "status_completed"
	}

	if !now.Before(start) && now.Before(end) {
		return BucketInProgress, "window_active"
	}
	if now.Before(start) {
		return BucketUpcoming, "window_future"
	}
	return BucketCompleted, "window_past_pending"
}

// timed is a recording with its parsed window.
type timed struct {
	rec        model.Recording
	start, end time.Time
}

func parseWindow(rec model.Recording) (timed, bool) {
	start, ok := timeutil.ParseInstant(rec.StartTime)
	if !ok {
		return timed{}, false
	}
	end, ok := timeutil.ParseInstant(rec.EndTime)
	if !ok {
		return timed{}, false
	}
	return timed{rec: rec, start: start, end: end}, true
}

// Classify partitions recordings into in-progress, upcoming and completed
// buckets relative to now.
//
// Repeated recording ids are dropped (first parseable record wins). Recordings whose start or
// end cannot be parsed are left out. In-progress and upcoming entries that
// refer to the same program (or the same channel slot) are collapsed, and
// upcoming entries of one series are folded into their earliest airing with
// GroupCount set. The input is never modified.
func Classify(recordings []model.Recording, now time.Time) Buckets {
	var inProgress, upcoming, completed []timed

	seen := make(map[model.Key]struct{}, len(recordings))
	for _, rec := range recordings {
		if !rec.ID.IsZero() {
			if _, dup := seen[rec.ID]; dup {
				continue
			}
		}

		// An id is claimed only by a record that survives parsing.
		t, ok := parseWindow(rec)
		if !ok {
			continue
		}
		if !rec.ID.IsZero() {
			seen[rec.ID] = struct{}{}
		}
		switch bucket, _ := BucketFor(now, rec.CustomProperties.Status, t.start, t.end); bucket {
		case BucketInProgress:
			inProgress = append(inProgress, t)
		case BucketUpcoming:
			upcoming = append(upcoming, t)
		default:
			completed = append(completed, t)
		}
	}

	inProgress = dedupeByProgramOrSlot(inProgress)
	slices.SortStableFunc(inProgress, func(a, b timed) int { return b.start.Compare(a.start) })

	upcoming = dedupeByProgramOrSlot(upcoming)
	slices.SortStableFunc(upcoming, func(a, b timed) int { return a.start.Compare(b.start) })

	slices.SortStableFunc(completed, func(a, b timed) int { return b.end.Compare(a.end) })

	return Buckets{
		InProgress: recordingsOf(inProgress),
		Upcoming:   groupSeries(upcoming),
		Completed:  recordingsOf(completed),
	}
}

// programOrSlotKey identifies the airing a recording captures: the embedded
// program id when present, else the channel slot.
func programOrSlotKey(t timed) string {
	p := t.rec.ProgramOrZero()
	if !p.ID.IsZero() {
		return "id:" + p.ID.String()
	}
	return slotKey(t.rec.Channel, t.start, t.end, p.Title)
}

func slotKey(channel int64, start, end time.Time, title string) string {
	var b strings.Builder
	b.WriteString("slot:")
	b.WriteString(strconv.FormatInt(channel, 10))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(timeutil.Millis(start), 10))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(timeutil.Millis(end), 10))
	b.WriteByte('|')
	b.WriteString(title)
	return b.String()
}

func dedupeByProgramOrSlot(in []timed) []timed {
	out := make([]timed, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		k := programOrSlotKey(t)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}

// groupSeries folds sorted upcoming entries into one entry per series,
// keeping the earliest and counting the rest.
func groupSeries(sorted []timed) []model.Recording {
	out := make([]model.Recording, 0, len(sorted))
	index := make(map[SeriesKey]int, len(sorted))
	for _, t := range sorted {
		key := SeriesOf(t.rec)
		if key.IsZero() {
			rec := t.rec
			rec.GroupCount = 1
			out = append(out, rec)
			continue
		}
		if i, ok := index[key]; ok {
			out[i].GroupCount++
			continue
		}
		rec := t.rec
		rec.GroupCount = 1
		index[key] = len(out)
		out = append(out, rec)
	}
	return out
}

func recordingsOf(in []timed) []model.Recording {
	out := make([]model.Recording, len(in))
	for i, t := range in {
		out[i] = t.rec
	}
	return out
}
