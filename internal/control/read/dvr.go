// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package read

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/dvrguide/internal/dvr"
	"github.com/ManuGH/dvrguide/internal/log"
	"github.com/ManuGH/dvrguide/internal/metrics"
	"github.com/ManuGH/dvrguide/internal/model"
	"github.com/ManuGH/dvrguide/internal/telemetry"
	"github.com/ManuGH/dvrguide/internal/timeutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrRuleNotFound is returned when no recurring rule has the requested id.
var ErrRuleNotFound = errors.New("recurring rule not found")

// DvrEntry is a recording with its display fields resolved.
type DvrEntry struct {
	model.Recording
	Title        string `json:"title"`
	EpisodeLabel string `json:"episodeLabel,omitempty"`
	PosterURL    string `json:"posterUrl"`
	PlaybackURL  string `json:"playbackUrl,omitempty"`
	DayLabel     string `json:"dayLabel,omitempty"`
	TimeLabel    string `json:"timeLabel,omitempty"`
	Recurring    bool   `json:"recurring,omitempty"`
}

// DvrView is the classified DVR screen.
type DvrView struct {
	Now        time.Time  `json:"now"`
	InProgress []DvrEntry `json:"inProgress"`
	Upcoming   []DvrEntry `json:"upcoming"`
	Completed  []DvrEntry `json:"completed"`
	// RuleOccurrences counts future occurrences per recurring rule id.
	RuleOccurrences map[model.Key]int `json:"ruleOccurrences"`
}

// RuleDetail is a recurring rule with its decorated occurrences.
type RuleDetail struct {
	dvr.RuleView
	Entries []DvrEntry `json:"entries"`
}

func failSpan(span trace.Span, err error, kind string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, kind)
	span.SetAttributes(telemetry.ErrorAttributes(kind)...)
}

func decorate(recs []model.Recording, now time.Time, prefs Prefs) []DvrEntry {
	loc := prefs.location()
	out := make([]DvrEntry, 0, len(recs))
	for _, rec := range recs {
		e := DvrEntry{
			Recording:    rec,
			Title:        rec.ProgramOrZero().Title,
			EpisodeLabel: dvr.RecordingEpisodeLabel(rec),
			PosterURL:    dvr.PosterURL(rec),
			PlaybackURL:  dvr.PlaybackURL(rec),
			Recurring:    dvr.IsRecurring(rec),
		}
		if start, ok := timeutil.ParseInstant(rec.StartTime); ok {
			start = start.In(loc)
			e.DayLabel = prefs.Formatter.DayLabel(start, now)
			e.TimeLabel = prefs.Formatter.Clock(start)
			if end, ok := timeutil.ParseInstant(rec.EndTime); ok {
				e.TimeLabel += " - " + prefs.Formatter.Clock(end.In(loc))
			}
		}
		out = append(out, e)
	}
	return out
}

// GetDvr classifies every recording relative to the current instant.
func GetDvr(ctx context.Context, src DvrSource, clock Clock, prefs Prefs) (DvrView, error) {
	ctx, span := telemetry.Tracer(tracerName).Start(ctx, "read.GetDvr")
	defer span.End()

	recs, err := src.GetRecordings(ctx)
	if err != nil {
		failSpan(span, err, "source")
		return DvrView{}, fmt.Errorf("get recordings: %w", err)
	}

	now := viewerNow(clock, prefs.location())
	buckets := dvr.Classify(recs, now)

	view := DvrView{
		Now:             now,
		InProgress:      decorate(buckets.InProgress, now, prefs),
		Upcoming:        decorate(buckets.Upcoming, now, prefs),
		Completed:       decorate(buckets.Completed, now, prefs),
		RuleOccurrences: dvr.OccurrenceCounts(recs, now),
	}

	metrics.RecordClassification(len(view.InProgress), len(view.Upcoming), len(view.Completed))
	span.SetAttributes(telemetry.DvrAttributes(len(view.InProgress), len(view.Upcoming), len(view.Completed))...)
	logger := log.WithComponentFromContext(ctx, "read")
	logger.Debug().
		Int("recordings", len(recs)).
		Int(log.FieldInProgress, len(view.InProgress)).
		Int(log.FieldUpcoming, len(view.Upcoming)).
		Int(log.FieldCompleted, len(view.Completed)).
		Msg("dvr classified")

	return view, nil
}

// GetSeriesEpisodes lists the distinct upcoming episodes of the series
// identified by series's tvg_id and title.
func GetSeriesEpisodes(ctx context.Context, src DvrSource, series model.Program, clock Clock, prefs Prefs) ([]DvrEntry, error) {
	ctx, span := telemetry.Tracer(tracerName).Start(ctx, "read.GetSeriesEpisodes")
	defer span.End()

	recs, err := src.GetRecordings(ctx)
	if err != nil {
		failSpan(span, err, "source")
		return nil, fmt.Errorf("get recordings: %w", err)
	}

	now := viewerNow(clock, prefs.location())
	episodes := dvr.UpcomingEpisodes(series, recs, now)
	span.SetAttributes(telemetry.SeriesAttributes(series.TVGID.String(), series.Title, len(episodes))...)
	logger := log.WithComponentFromContext(ctx, "read")
	logger.Debug().
		Str(log.FieldTvgID, series.TVGID.String()).
		Str("title", series.Title).
		Int("episodes", len(episodes)).
		Msg("series episodes resolved")
	return decorate(episodes, now, prefs), nil
}

// GetRuleOccurrences lists the future recordings materialized for ruleID.
// An unknown rule id yields an empty list.
func GetRuleOccurrences(ctx context.Context, src DvrSource, ruleID model.Key, clock Clock, prefs Prefs) ([]DvrEntry, error) {
	ctx, span := telemetry.Tracer(tracerName).Start(ctx, "read.GetRuleOccurrences",
		trace.WithAttributes(attribute.String(telemetry.DvrRuleIDKey, ruleID.String())))
	defer span.End()

	recs, err := src.GetRecordings(ctx)
	if err != nil {
		failSpan(span, err, "source")
		return nil, fmt.Errorf("get recordings: %w", err)
	}

	now := viewerNow(clock, prefs.location())
	return decorate(dvr.OccurrencesOf(ruleID, recs, now), now, prefs), nil
}

// GetRule resolves a recurring rule and inspects its occurrences.
func GetRule(ctx context.Context, src DvrSource, ruleID model.Key, clock Clock, prefs Prefs) (RuleDetail, error) {
	ctx, span := telemetry.Tracer(tracerName).Start(ctx, "read.GetRule",
		trace.WithAttributes(attribute.String(telemetry.DvrRuleIDKey, ruleID.String())))
	defer span.End()

	rules, err := src.GetRecurringRules(ctx)
	if err != nil {
		failSpan(span, err, "source")
		return RuleDetail{}, fmt.Errorf("get recurring rules: %w", err)
	}
	var (
		rule  model.RecurringRule
		found bool
	)
	for _, r := range rules {
		if r.ID == ruleID {
			rule, found = r, true
			break
		}
	}
	if !found || ruleID.IsZero() {
		span.SetStatus(codes.Error, "not_found")
		return RuleDetail{}, fmt.Errorf("%w: %s", ErrRuleNotFound, ruleID)
	}

	recs, err := src.GetRecordings(ctx)
	if err != nil {
		failSpan(span, err, "source")
		return RuleDetail{}, fmt.Errorf("get recordings: %w", err)
	}

	loc := prefs.location()
	now := viewerNow(clock, loc)
	view := dvr.InspectRule(rule, recs, now, loc)

	logger := log.WithComponentFromContext(ctx, "read").With().Str(log.FieldRuleID, ruleID.String()).Logger()
	if view.Stale {
		metrics.AddStaleRuleOccurrences(len(view.Occurrences))
		logger.Warn().Int("occurrences", len(view.Occurrences)).Msg("disabled rule still has future occurrences")
	}
	if view.ScheduleError != "" {
		logger.Warn().Str("error", view.ScheduleError).Msg("recurring rule schedule is invalid")
	}
	if n := len(view.OffSchedule); n > 0 {
		logger.Info().Int("off_schedule", n).Msg("occurrences outside the rule's schedule")
	}

	return RuleDetail{RuleView: view, Entries: decorate(view.Occurrences, now, prefs)}, nil
}
