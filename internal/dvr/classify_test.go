// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dvr

import (
	"slices"
	"testing"
	"time"

	"github.com/ManuGH/dvrguide/internal/model"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

type recOpt func(*model.Recording)

func newRec(id string, channel int64, start, end time.Time, opts ...recOpt) model.Recording {
	r := model.Recording{
		ID:        model.Key(id),
		Channel:   channel,
		StartTime: start.Format(time.RFC3339),
		EndTime:   end.Format(time.RFC3339),
	}
	for _, o := range opts {
		o(&r)
	}
	return r
}

func program(id, tvgID, title string) recOpt {
	return func(r *model.Recording) {
		r.CustomProperties.Program = &model.Program{ID: model.Key(id), TVGID: model.Key(tvgID), Title: title}
	}
}

func status(s string) recOpt {
	return func(r *model.Recording) { r.CustomProperties.Status = s }
}

func ids(recs []model.Recording) []model.Key {
	out := make([]model.Key, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestBucketFor(t *testing.T) {
	start := now
	end := now.Add(time.Hour)

	tests := []struct {
		name       string
		now        time.Time
		status     string
		want       Bucket
		wantReason string
	}{
		{"start equals now is in progress", start, "", BucketInProgress, "window_active"},
		{"inside window", start.Add(30 * time.Minute), model.StatusRecording, BucketInProgress, "window_active"},
		{"end equals now has ended", end, "", BucketCompleted, "window_past_pending"},
		{"before start", start.Add(-time.Nanosecond), "", BucketUpcoming, "window_future"},
		{"completed status in the future", start.Add(-time.Hour), model.StatusCompleted, BucketCompleted, "status_completed"},
		{"interrupted status inside window", start.Add(time.Minute), model.StatusInterrupted, BucketCompleted, "status_interrupted"},
		{"unknown status falls back to window", start.Add(-time.Minute), "weird", BucketUpcoming, "window_future"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := BucketFor(tt.now, tt.status, start, end)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestClassifyBoundaries(t *testing.T) {
	recs := []model.Recording{
		newRec("starts-now", 1, now, now.Add(time.Hour), program("p1", "a", "A")),
		newRec("ends-now", 2, now.Add(-time.Hour), now, program("p2", "b", "B")),
	}
	got := Classify(recs, now)

	assert.Equal(t, []model.Key{"starts-now"}, ids(got.InProgress))
	assert.Empty(t, got.Upcoming)
	assert.Equal(t, []model.Key{"ends-now"}, ids(got.Completed))
}

func TestClassifyStatusOverridesWindow(t *testing.T) {
	recs := []model.Recording{
		newRec("done-early", 1, now.Add(2*time.Hour), now.Add(3*time.Hour),
			program("p1", "a", "A"), status(model.StatusCompleted)),
	}
	got := Classify(recs, now)

	assert.Empty(t, got.Upcoming)
	assert.Equal(t, []model.Key{"done-early"}, ids(got.Completed))
}

func TestClassifyInterruptedRecording(t *testing.T) {
	start := now.Add(-2 * time.Hour)
	end := now.Add(time.Hour)
	recs := []model.Recording{
		newRec("42", 7, start, end, program("prog-1", "movies", "Film"), status(model.StatusInterrupted)),
		// Transient duplicate reported during reconciliation.
		newRec("42", 7, start, end, program("prog-1", "movies", "Film"), status(model.StatusRecording)),
	}
	got := Classify(recs, now)

	assert.Empty(t, got.InProgress)
	assert.Empty(t, got.Upcoming)
	require.Len(t, got.Completed, 1)
	assert.Equal(t, model.StatusInterrupted, got.Completed[0].CustomProperties.Status)
}

func TestClassifyGroupsUpcomingSeries(t *testing.T) {
	recs := []model.Recording{
		newRec("n2", 3, now.Add(26*time.Hour), now.Add(27*time.Hour), program("e2", "news.1", "Evening News")),
		newRec("n1", 3, now.Add(2*time.Hour), now.Add(3*time.Hour), program("e1", "news.1", "Evening News")),
		newRec("n3", 3, now.Add(50*time.Hour), now.Add(51*time.Hour), program("e3", "news.1", "EVENING NEWS")),
		newRec("other", 4, now.Add(time.Hour), now.Add(2*time.Hour), program("x", "docs", "Nature")),
	}
	got := Classify(recs, now)

	require.Len(t, got.Upcoming, 2)
	assert.Equal(t, model.Key("other"), got.Upcoming[0].ID)
	assert.Equal(t, 1, got.Upcoming[0].GroupCount)

	news := got.Upcoming[1]
	assert.Equal(t, model.Key("n1"), news.ID)
	assert.Equal(t, 3, news.GroupCount)
}

func TestClassifyGroupingFoldsUnicodeForms(t *testing.T) {
	recs := []model.Recording{
		newRec("a", 1, now.Add(time.Hour), now.Add(2*time.Hour), program("p1", "cooking", "Café Live")),
		newRec("b", 1, now.Add(3*time.Hour), now.Add(4*time.Hour), program("p2", "cooking", "CAFE\u0301 LIVE")),
	}
	got := Classify(recs, now)

	require.Len(t, got.Upcoming, 1)
	assert.Equal(t, 2, got.Upcoming[0].GroupCount)
}

func TestClassifyNeverGroupsAnonymousRecordings(t *testing.T) {
	recs := []model.Recording{
		newRec("a", 1, now.Add(time.Hour), now.Add(2*time.Hour)),
		newRec("b", 2, now.Add(time.Hour), now.Add(2*time.Hour)),
	}
	got := Classify(recs, now)

	assert.Equal(t, []model.Key{"a", "b"}, ids(got.Upcoming))
	for _, r := range got.Upcoming {
		assert.Equal(t, 1, r.GroupCount)
	}
}

func TestClassifyCollapsesSameProgramAndSlot(t *testing.T) {
	recs := []model.Recording{
		// Same program id recorded twice.
		newRec("a", 1, now.Add(-10*time.Minute), now.Add(time.Hour), program("p1", "a", "A")),
		newRec("b", 2, now.Add(-5*time.Minute), now.Add(time.Hour), program("p1", "a", "A")),
		// Same slot, no program id.
		newRec("c", 5, now.Add(-time.Minute), now.Add(time.Hour), program("", "", "Slot")),
		newRec("d", 5, now.Add(-time.Minute), now.Add(time.Hour), program("", "", "Slot")),
		// Same slot, different title.
		newRec("e", 5, now.Add(-time.Minute), now.Add(time.Hour), program("", "", "Other")),
	}
	got := Classify(recs, now)

	assert.ElementsMatch(t, []model.Key{"a", "c", "e"}, ids(got.InProgress))
}

func TestClassifySortOrder(t *testing.T) {
	recs := []model.Recording{
		newRec("ip-old", 1, now.Add(-2*time.Hour), now.Add(time.Hour), program("1", "t1", "One")),
		newRec("ip-new", 2, now.Add(-time.Hour), now.Add(time.Hour), program("2", "t2", "Two")),
		newRec("up-late", 3, now.Add(5*time.Hour), now.Add(6*time.Hour), program("3", "t3", "Three")),
		newRec("up-soon", 4, now.Add(time.Hour), now.Add(2*time.Hour), program("4", "t4", "Four")),
		newRec("done-old", 5, now.Add(-10*time.Hour), now.Add(-9*time.Hour), program("5", "t5", "Five")),
		newRec("done-new", 6, now.Add(-4*time.Hour), now.Add(-3*time.Hour), program("6", "t6", "Six")),
		newRec("done-flag", 7, now.Add(3*time.Hour), now.Add(4*time.Hour), program("7", "t7", "Seven"), status(model.StatusCompleted)),
	}
	got := Classify(recs, now)

	assert.Equal(t, []model.Key{"ip-new", "ip-old"}, ids(got.InProgress))
	assert.Equal(t, []model.Key{"up-soon", "up-late"}, ids(got.Upcoming))
	assert.Equal(t, []model.Key{"done-flag", "done-new", "done-old"}, ids(got.Completed))
	assert.Equal(t, 7, got.Len())
}

func TestClassifySkipsMalformedWindows(t *testing.T) {
	recs := []model.Recording{
		{ID: "no-times"},
		{ID: "bad-start", StartTime: "yesterday", EndTime: now.Format(time.RFC3339)},
		{ID: "bad-end", StartTime: now.Format(time.RFC3339), EndTime: "later", CustomProperties: model.RecordingProperties{Status: model.StatusCompleted}},
		newRec("ok", 1, now.Add(time.Hour), now.Add(2*time.Hour)),
	}
	got := Classify(recs, now)

	assert.Empty(t, got.InProgress)
	assert.Empty(t, got.Completed)
	assert.Equal(t, []model.Key{"ok"}, ids(got.Upcoming))
}

func TestClassifyMalformedRecordDoesNotClaimID(t *testing.T) {
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)
	recs := []model.Recording{
		{ID: "42", StartTime: "not a time", EndTime: end.Format(time.RFC3339)},
		newRec("42", 7, start, end, program("prog-1", "movies", "Film")),
		newRec("42", 7, start.Add(-time.Hour), start, program("prog-1", "movies", "Film")),
	}
	got := Classify(recs, now)

	require.Len(t, got.InProgress, 1)
	assert.Equal(t, model.Key("42"), got.InProgress[0].ID)
	assert.Equal(t, recs[1].StartTime, got.InProgress[0].StartTime)
	assert.Empty(t, got.Upcoming)
	assert.Empty(t, got.Completed)
}

func TestClassifyIsPureAndIdempotent(t *testing.T) {
	recs := []model.Recording{
		newRec("1", 1, now.Add(-time.Hour), now.Add(time.Hour), program("a", "x", "X")),
		newRec("2", 1, now.Add(time.Hour), now.Add(2*time.Hour), program("b", "news.1", "Evening News")),
		newRec("3", 1, now.Add(3*time.Hour), now.Add(4*time.Hour), program("c", "news.1", "Evening News")),
		newRec("4", 1, now.Add(-3*time.Hour), now.Add(-2*time.Hour), program("d", "y", "Y")),
		newRec("1", 9, now.Add(-time.Hour), now.Add(time.Hour)),
	}
	before := slices.Clone(recs)

	first := Classify(recs, now)
	second := Classify(recs, now)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("classification not idempotent (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(before, recs); diff != "" {
		t.Fatalf("input mutated (-before +after):\n%s", diff)
	}
	assert.Zero(t, recs[1].GroupCount)
}

func TestClassifyEmpty(t *testing.T) {
	got := Classify(nil, now)
	assert.Zero(t, got.Len())
}
