// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dvr

import (
	"testing"
	"time"

	"github.com/ManuGH/dvrguide/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func fromRule(id string) recOpt {
	return func(r *model.Recording) {
		r.CustomProperties.Rule = &model.RuleRef{ID: model.Key(id), Type: model.RuleTypeRecurring}
	}
}

// 2025-03-01 is a Saturday (5 in the Monday-first convention).
func weekendEvenings() model.RecurringRule {
	return model.RecurringRule{
		ID:         "7",
		Channel:    3,
		Name:       "Weekend late show",
		Enabled:    true,
		DaysOfWeek: []int{5, 6},
		StartTime:  "22:00",
		EndTime:    "01:00",
	}
}

func TestOccurrencesOf(t *testing.T) {
	recs := []model.Recording{
		newRec("later", 3, now.Add(28*time.Hour), now.Add(29*time.Hour), fromRule("7")),
		newRec("sooner", 3, now.Add(4*time.Hour), now.Add(5*time.Hour), fromRule("7")),
		newRec("running", 3, now.Add(-time.Minute), now.Add(time.Hour), fromRule("7")),
		newRec("starts-now", 3, now, now.Add(time.Hour), fromRule("7")),
		newRec("other-rule", 3, now.Add(time.Hour), now.Add(2*time.Hour), fromRule("8")),
		newRec("manual", 3, now.Add(time.Hour), now.Add(2*time.Hour)),
	}

	assert.Equal(t, []model.Key{"sooner", "later"}, ids(OccurrencesOf("7", recs, now)))
	assert.Empty(t, OccurrencesOf("99", recs, now))
	assert.Empty(t, OccurrencesOf("", recs, now))
}

func TestOccurrencesOfNumericRuleID(t *testing.T) {
	var ref model.RuleRef
	require.NoError(t, ref.ID.UnmarshalJSON([]byte(`7`)))
	r := newRec("r", 3, now.Add(time.Hour), now.Add(2*time.Hour))
	r.CustomProperties.Rule = &ref

	assert.Len(t, OccurrencesOf("7", []model.Recording{r}, now), 1)
}

func TestOccurrenceCounts(t *testing.T) {
	recs := []model.Recording{
		newRec("a", 3, now.Add(time.Hour), now.Add(2*time.Hour), fromRule("7")),
		newRec("b", 3, now.Add(3*time.Hour), now.Add(4*time.Hour), fromRule("7")),
		newRec("c", 3, now.Add(-3*time.Hour), now.Add(-2*time.Hour), fromRule("7")),
		newRec("d", 3, now.Add(time.Hour), now.Add(2*time.Hour), fromRule("8")),
		newRec("e", 3, now.Add(time.Hour), now.Add(2*time.Hour)),
	}
	assert.Equal(t, map[model.Key]int{"7": 2, "8": 1}, OccurrenceCounts(recs, now))
}

func TestScheduleCovers(t *testing.T) {
	sched, err := ParseSchedule(weekendEvenings(), time.UTC)
	require.NoError(t, err)

	tests := []struct {
		start string
		want  bool
	}{
		{"2025-03-01T22:00:00Z", true},  // Saturday, window start
		{"2025-03-01T21:59:00Z", false}, // before window
		{"2025-03-02T00:30:00Z", true},  // Sunday, after midnight
		{"2025-03-02T01:00:00Z", false}, // window end is exclusive
		{"2025-03-03T00:30:00Z", false}, // Monday
		{"2025-03-07T23:00:00Z", false}, // Friday
		{"2025-03-08T23:00:00Z", true},  // next Saturday
	}
	for _, tt := range tests {
		start, err := time.Parse(time.RFC3339, tt.start)
		require.NoError(t, err)
		assert.Equal(t, tt.want, sched.Covers(start), tt.start)
	}
}

func TestScheduleCoversUsesLocation(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	sched, err := ParseSchedule(weekendEvenings(), berlin)
	require.NoError(t, err)

	// 21:30Z on Saturday is 22:30 in Berlin.
	assert.True(t, sched.Covers(time.Date(2025, 3, 1, 21, 30, 0, 0, time.UTC)))
	assert.False(t, sched.Covers(time.Date(2025, 3, 1, 22, 30, 0, 0, time.UTC).Add(2*time.Hour)))
}

func TestScheduleDateRange(t *testing.T) {
	rule := weekendEvenings()
	rule.StartDate = ptr("2025-03-02")
	rule.EndDate = ptr("2025-03-08")
	sched, err := ParseSchedule(rule, time.UTC)
	require.NoError(t, err)

	assert.False(t, sched.Covers(time.Date(2025, 3, 1, 22, 0, 0, 0, time.UTC)))
	assert.True(t, sched.Covers(time.Date(2025, 3, 2, 0, 30, 0, 0, time.UTC)))
	assert.True(t, sched.Covers(time.Date(2025, 3, 8, 23, 0, 0, 0, time.UTC)))
	assert.False(t, sched.Covers(time.Date(2025, 3, 9, 0, 30, 0, 0, time.UTC)))
}

func TestParseScheduleErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.RecurringRule)
	}{
		{"no days", func(r *model.RecurringRule) { r.DaysOfWeek = nil }},
		{"day out of range", func(r *model.RecurringRule) { r.DaysOfWeek = []int{7} }},
		{"bad start", func(r *model.RecurringRule) { r.StartTime = "25:00" }},
		{"bad end", func(r *model.RecurringRule) { r.EndTime = "" }},
		{"bad date", func(r *model.RecurringRule) { r.StartDate = ptr("03/01/2025") }},
		{"inverted dates", func(r *model.RecurringRule) {
			r.StartDate = ptr("2025-03-10")
			r.EndDate = ptr("2025-03-01")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := weekendEvenings()
			tt.mutate(&rule)
			_, err := ParseSchedule(rule, nil)
			assert.ErrorIs(t, err, ErrInvalidSchedule)
		})
	}
}

func TestInspectRule(t *testing.T) {
	rule := weekendEvenings()
	recs := []model.Recording{
		newRec("sat", 3, now.Add(4*time.Hour), now.Add(5*time.Hour), fromRule("7")),  // Sat 22:00
		newRec("mon", 3, now.Add(52*time.Hour), now.Add(53*time.Hour), fromRule("7")), // Mon 22:00
	}

	view := InspectRule(rule, recs, now, time.UTC)
	assert.False(t, view.Stale)
	assert.Empty(t, view.ScheduleError)
	assert.Equal(t, []model.Key{"sat", "mon"}, ids(view.Occurrences))
	assert.Equal(t, []model.Key{"mon"}, ids(view.OffSchedule))
}

func TestInspectDisabledRuleKeepsStaleOccurrences(t *testing.T) {
	rule := weekendEvenings()
	rule.Enabled = false
	recs := []model.Recording{
		newRec("sat", 3, now.Add(4*time.Hour), now.Add(5*time.Hour), fromRule("7")),
	}

	view := InspectRule(rule, recs, now, time.UTC)
	assert.True(t, view.Stale)
	assert.Len(t, view.Occurrences, 1)

	view = InspectRule(rule, nil, now, time.UTC)
	assert.False(t, view.Stale)
	assert.Empty(t, view.Occurrences)
}

func TestInspectRuleWithInvalidSchedule(t *testing.T) {
	rule := weekendEvenings()
	rule.StartTime = "late"
	recs := []model.Recording{
		newRec("sat", 3, now.Add(4*time.Hour), now.Add(5*time.Hour), fromRule("7")),
	}

	view := InspectRule(rule, recs, now, time.UTC)
	assert.Contains(t, view.ScheduleError, "start time")
	assert.Len(t, view.Occurrences, 1)
	assert.Empty(t, view.OffSchedule)
}
