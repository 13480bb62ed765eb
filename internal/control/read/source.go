// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package read computes the guide and DVR views from a snapshot source.
//
// Every entry point reads the clock exactly once, converts into the
// viewer's zone and hands that instant to the pure guide and dvr packages.
package read

import (
	"context"
	"time"

	"github.com/ManuGH/dvrguide/internal/guide"
	"github.com/ManuGH/dvrguide/internal/model"
	"github.com/ManuGH/dvrguide/internal/timeutil"
)

// ChannelSource provides channels and the EPG rows that key them.
type ChannelSource interface {
	GetChannels(ctx context.Context) ([]model.Channel, error)
	GetEPGData(ctx context.Context) (map[int64]model.EPGData, error)
	GetEPGSources(ctx context.Context) (map[int64]model.EPGSource, error)
}

// DvrSource provides recordings and rules.
type DvrSource interface {
	GetRecordings(ctx context.Context) ([]model.Recording, error)
	GetRecurringRules(ctx context.Context) ([]model.RecurringRule, error)
	GetSeriesRules(ctx context.Context) ([]model.SeriesRule, error)
}

// LogoSource provides logos keyed by id.
type LogoSource interface {
	GetLogos(ctx context.Context) (map[int64]model.Logo, error)
}

// GuideSource is everything the guide view needs.
type GuideSource interface {
	ChannelSource
	DvrSource
	LogoSource
	GetPrograms(ctx context.Context) ([]model.Program, error)
}

// Prefs are the viewer's display preferences and guide geometry.
type Prefs struct {
	Location  *time.Location
	Formatter timeutil.Formatter
	Layout    guide.Layout
	LookBack  time.Duration
	LookAhead time.Duration
}

// DefaultPrefs renders in UTC with the stock layout and a one hour look
// back, one day look ahead window.
func DefaultPrefs() Prefs {
	return Prefs{
		Location:  time.UTC,
		Formatter: timeutil.Formatter{TimeFormat: timeutil.TimeFormat12h, DateFormat: timeutil.DateFormatMDY},
		Layout:    guide.DefaultLayout(),
		LookBack:  time.Hour,
		LookAhead: 24 * time.Hour,
	}
}

func (p Prefs) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}
