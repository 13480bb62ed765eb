// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package read

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuGH/dvrguide/internal/dvr"
	"github.com/ManuGH/dvrguide/internal/guide"
	"github.com/ManuGH/dvrguide/internal/log"
	"github.com/ManuGH/dvrguide/internal/metrics"
	"github.com/ManuGH/dvrguide/internal/model"
	"github.com/ManuGH/dvrguide/internal/telemetry"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "dvrguide.read"

// GuideQuery selects the window and rows of a guide.
type GuideQuery struct {
	// Start and End override the default window when both are set.
	Start time.Time
	End   time.Time
	// FitPrograms widens the window to cover every mapped program.
	FitPrograms bool
	Filter      guide.ChannelFilter
	// ExpandedProgramID marks the program whose row renders expanded.
	ExpandedProgramID model.Key
}

// HourLabel is a timeline marker with its display text.
type HourLabel struct {
	guide.HourMarker
	Label    string `json:"label"`
	DayLabel string `json:"dayLabel,omitempty"`
}

// GuideProgram is a program positioned on the timeline.
type GuideProgram struct {
	guide.Program
	Left        float64   `json:"left"`
	Width       float64   `json:"width"`
	TimeLabel   string    `json:"timeLabel"`
	RecordingID model.Key `json:"recordingId,omitempty"`
	SeriesRule  bool      `json:"seriesRule,omitempty"`
}

// GuideRow is one channel and its programs inside the window.
type GuideRow struct {
	Channel  model.Channel  `json:"channel"`
	LogoURL  string         `json:"logoUrl,omitempty"`
	Height   int            `json:"height"`
	Programs []GuideProgram `json:"programs"`
}

// GuideStats counts program resolution outcomes.
type GuideStats struct {
	Mapped    int `json:"mapped"`
	Unmatched int `json:"unmatched"`
	Malformed int `json:"malformed"`
}

// Guide is the computed program guide.
type Guide struct {
	Now           time.Time    `json:"now"`
	Window        guide.Window `json:"window"`
	Timeline      []HourLabel  `json:"timeline"`
	Rows          []GuideRow   `json:"rows"`
	NowOffset     float64      `json:"nowOffset"`
	InitialScroll float64      `json:"initialScroll"`
	ContentWidth  float64      `json:"contentWidth"`
	Stats         GuideStats   `json:"stats"`
}

// LogoIDs returns the distinct logo ids referenced by the guide's rows.
func (g Guide) LogoIDs() []int64 {
	seen := make(map[int64]struct{}, len(g.Rows))
	out := make([]int64, 0, len(g.Rows))
	for _, row := range g.Rows {
		if row.Channel.LogoID == nil {
			continue
		}
		id := *row.Channel.LogoID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

type guideInputs struct {
	channels    []model.Channel
	epgData     map[int64]model.EPGData
	sources     map[int64]model.EPGSource
	programs    []model.Program
	recordings  []model.Recording
	seriesRules []model.SeriesRule
	logos       map[int64]model.Logo
}

func loadGuideInputs(ctx context.Context, src GuideSource) (guideInputs, error) {
	var in guideInputs
	var err error
	if in.channels, err = src.GetChannels(ctx); err != nil {
		return in, fmt.Errorf("get channels: %w", err)
	}
	if in.epgData, err = src.GetEPGData(ctx); err != nil {
		return in, fmt.Errorf("get epg data: %w", err)
	}
	if in.sources, err = src.GetEPGSources(ctx); err != nil {
		return in, fmt.Errorf("get epg sources: %w", err)
	}
	if in.programs, err = src.GetPrograms(ctx); err != nil {
		return in, fmt.Errorf("get programs: %w", err)
	}
	if in.recordings, err = src.GetRecordings(ctx); err != nil {
		return in, fmt.Errorf("get recordings: %w", err)
	}
	if in.seriesRules, err = src.GetSeriesRules(ctx); err != nil {
		return in, fmt.Errorf("get series rules: %w", err)
	}
	if in.logos, err = src.GetLogos(ctx); err != nil {
		return in, fmt.Errorf("get logos: %w", err)
	}
	return in, nil
}

// GetGuide computes the guide for the current instant.
func GetGuide(ctx context.Context, src GuideSource, q GuideQuery, clock Clock, prefs Prefs) (Guide, error) {
	ctx, span := telemetry.Tracer(tracerName).Start(ctx, "read.GetGuide")
	defer span.End()
	logger := log.WithComponentFromContext(ctx, "read")

	in, err := loadGuideInputs(ctx, src)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "source")
		span.SetAttributes(telemetry.ErrorAttributes("source")...)
		return Guide{}, err
	}

	loc := prefs.location()
	now := viewerNow(clock, loc)
	layout := prefs.Layout

	index := guide.BuildChannelIndex(in.channels, in.epgData, in.sources)
	byChannel, stats := guide.MapProgramsByChannelWithStats(in.programs, index, now)

	window := guide.DefaultWindow(now, prefs.LookBack, prefs.LookAhead)
	if !q.Start.IsZero() && !q.End.IsZero() && q.End.After(q.Start) {
		window = guide.Window{Start: q.Start.In(loc), End: q.End.In(loc)}
	}
	if q.FitPrograms {
		window = window.Extend(byChannel)
	}

	channels := guide.FilterChannels(guide.SortChannels(in.channels), q.Filter)
	heights := layout.RowHeights(channels, byChannel, q.ExpandedProgramID)
	recorded := dvr.RecordingsByProgramID(in.recordings)

	out := Guide{
		Now:           now,
		Window:        window,
		Timeline:      labelTimeline(layout.HourTimeline(window.Start, window.End), now, prefs),
		Rows:          make([]GuideRow, 0, len(channels)),
		NowOffset:     layout.NowOffset(now, window.Start, window.End),
		InitialScroll: layout.InitialScrollOffset(now, window.Start),
		ContentWidth:  layout.ContentWidth(window.Start, window.End),
		Stats:         GuideStats(stats),
	}

	shown := 0
	for i, ch := range channels {
		clipped := window.Clip(byChannel[ch.ID])
		row := GuideRow{
			Channel:  ch,
			LogoURL:  channelLogoURL(ch, in.logos),
			Height:   heights[i],
			Programs: make([]GuideProgram, 0, len(clipped)),
		}
		for _, p := range clipped {
			gp := GuideProgram{
				Program:   p,
				Left:      layout.ProgramLeftOffset(p, window.Start),
				Width:     layout.ProgramWidth(p),
				TimeLabel: prefs.Formatter.Clock(p.Start.In(loc)) + " - " + prefs.Formatter.Clock(p.End.In(loc)),
			}
			if !p.ID.IsZero() {
				if rec, ok := recorded[p.ID]; ok {
					gp.RecordingID = rec.ID
				}
			}
			_, gp.SeriesRule = dvr.SeriesRuleFor(in.seriesRules, p.Program)
			row.Programs = append(row.Programs, gp)
		}
		shown += len(row.Programs)
		out.Rows = append(out.Rows, row)
	}

	metrics.RecordGuide(len(out.Rows), stats.Mapped, stats.Unmatched, stats.Malformed)
	span.SetAttributes(telemetry.GuideAttributes(window.Start, window.End, len(out.Rows), shown, stats.Unmatched, stats.Malformed)...)
	logger.Debug().
		Int(log.FieldChannels, len(out.Rows)).
		Int(log.FieldPrograms, shown).
		Int(log.FieldUnmatched, stats.Unmatched).
		Int(log.FieldMalformed, stats.Malformed).
		Time(log.FieldWindowFrom, window.Start).
		Time(log.FieldWindowTo, window.End).
		Str(log.FieldTimeZone, loc.String()).
		Msg("guide computed")

	return out, nil
}

func labelTimeline(markers []guide.HourMarker, now time.Time, prefs Prefs) []HourLabel {
	out := make([]HourLabel, len(markers))
	for i, m := range markers {
		out[i] = HourLabel{HourMarker: m, Label: prefs.Formatter.Clock(m.Time)}
		if m.IsNewDay || i == 0 {
			out[i].DayLabel = prefs.Formatter.DayLabel(m.Time, now)
		}
	}
	return out
}

// channelLogoURL prefers the cached copy of a channel's logo.
func channelLogoURL(ch model.Channel, logos map[int64]model.Logo) string {
	if ch.LogoID == nil {
		return ""
	}
	logo, ok := logos[*ch.LogoID]
	if !ok {
		return ""
	}
	if logo.CacheURL != "" {
		return logo.CacheURL
	}
	return logo.URL
}
