// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dvr

import (
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/dvrguide/internal/model"
	"github.com/ManuGH/dvrguide/internal/timeutil"
)

// ErrInvalidSchedule is returned for rules whose day, time or date fields
// cannot be interpreted.
var ErrInvalidSchedule = errors.New("invalid rule schedule")

// Schedule is the parsed form of a recurring rule's definition.
type Schedule struct {
	days      [7]bool // 0=Monday
	startMins int
	endMins   int
	from      time.Time // zero when unbounded
	until     time.Time // zero when unbounded; inclusive day
	loc       *time.Location
}

// ParseSchedule interprets rule in loc. Weekday numbers outside 0..6 and
// unparseable times or dates are errors.
func ParseSchedule(rule model.RecurringRule, loc *time.Location) (Schedule, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := Schedule{loc: loc}

	if len(rule.DaysOfWeek) == 0 {
		return Schedule{}, fmt.Errorf("%w: no days selected", ErrInvalidSchedule)
	}
	for _, d := range rule.DaysOfWeek {
		if d < 0 || d > 6 {
			return Schedule{}, fmt.Errorf("%w: day %d out of range", ErrInvalidSchedule, d)
		}
		s.days[d] = true
	}

	var ok bool
	if s.startMins, ok = timeutil.ParseClock(rule.StartTime); !ok {
		return Schedule{}, fmt.Errorf("%w: start time %q", ErrInvalidSchedule, rule.StartTime)
	}
	if s.endMins, ok = timeutil.ParseClock(rule.EndTime); !ok {
		return Schedule{}, fmt.Errorf("%w: end time %q", ErrInvalidSchedule, rule.EndTime)
	}

	if rule.StartDate != nil && *rule.StartDate != "" {
		if s.from, ok = timeutil.ParseDate(*rule.StartDate, loc); !ok {
			return Schedule{}, fmt.Errorf("%w: start date %q", ErrInvalidSchedule, *rule.StartDate)
		}
	}
	if rule.EndDate != nil && *rule.EndDate != "" {
		if s.until, ok = timeutil.ParseDate(*rule.EndDate, loc); !ok {
			return Schedule{}, fmt.Errorf("%w: end date %q", ErrInvalidSchedule, *rule.EndDate)
		}
	}
	if !s.from.IsZero() && !s.until.IsZero() && s.until.Before(s.from) {
		return Schedule{}, fmt.Errorf("%w: end date before start date", ErrInvalidSchedule)
	}
	return s, nil
}

// mondayFirst maps time.Weekday (0=Sunday) to the rule convention (0=Monday).
func mondayFirst(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// Covers reports whether an airing starting at start would be produced by
// the rule: its weekday is selected, its time of day lies in the rule's
// window (which may cross midnight) and its date lies in the optional date
// range.
func (s Schedule) Covers(start time.Time) bool {
	local := start.In(s.loc)
	if !s.days[mondayFirst(local.Weekday())] {
		return false
	}
	if !timeutil.InClockWindow(timeutil.MinuteOfDay(local), s.startMins, s.endMins) {
		return false
	}
	day := timeutil.StartOfDay(local)
	if !s.from.IsZero() && day.Before(s.from) {
		return false
	}
	if !s.until.IsZero() && day.After(s.until) {
		return false
	}
	return true
}

// RuleView is a recurring rule together with what the scheduler has
// materialized for it.
type RuleView struct {
	Rule        model.RecurringRule `json:"rule"`
	Occurrences []model.Recording   `json:"occurrences"`
	// Stale is set for a disabled rule that still has future occurrences.
	Stale bool `json:"stale"`
	// OffSchedule lists occurrences the rule definition would not produce.
	OffSchedule   []model.Recording `json:"offSchedule,omitempty"`
	ScheduleError string            `json:"scheduleError,omitempty"`
}

// InspectRule resolves the rule's future occurrences and flags
// inconsistencies between rule and occurrences. Nothing is filtered out:
// stale and off-schedule occurrences stay in Occurrences so they can be
// reviewed and cancelled.
func InspectRule(rule model.RecurringRule, recordings []model.Recording, now time.Time, loc *time.Location) RuleView {
	view := RuleView{
		Rule:        rule,
		Occurrences: OccurrencesOf(rule.ID, recordings, now),
	}
	view.Stale = !rule.Enabled && len(view.Occurrences) > 0

	sched, err := ParseSchedule(rule, loc)
	if err != nil {
		view.ScheduleError = err.Error()
		return view
	}
	for _, rec := range view.Occurrences {
		start, ok := timeutil.ParseInstant(rec.StartTime)
		if ok && !sched.Covers(start) {
			view.OffSchedule = append(view.OffSchedule, rec)
		}
	}
	return view
}
