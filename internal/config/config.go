// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads the service configuration.
//
// Precedence is ENV > YAML file > defaults. The YAML file is parsed
// strictly: unknown keys and multiple documents are rejected.
package config

import (
	"time"

	"github.com/ManuGH/dvrguide/internal/guide"
	"github.com/ManuGH/dvrguide/internal/telemetry"
	"github.com/ManuGH/dvrguide/internal/timeutil"
)

// AppConfig is the complete, validated service configuration.
type AppConfig struct {
	Version  string `yaml:"-"`
	DataDir  string `yaml:"dataDir"`
	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"logLevel"`
	// AllowedOrigins enables CORS for the listed origins. Empty disables CORS.
	AllowedOrigins []string `yaml:"allowedOrigins"`
	Viewer    ViewerConfig    `yaml:"viewer"`
	Guide     GuideConfig     `yaml:"guide"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Logos     LogosConfig     `yaml:"logos"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Cache     CacheConfig     `yaml:"cache"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ViewerConfig holds display preferences. They affect label text only.
type ViewerConfig struct {
	TimeZone   string `yaml:"timeZone"`
	TimeFormat string `yaml:"timeFormat"` // 12h | 24h
	DateFormat string `yaml:"dateFormat"` // mdy | dmy
}

// GuideConfig holds guide geometry and the default visible window.
type GuideConfig struct {
	ChannelWidth          int           `yaml:"channelWidth"`
	HourWidth             int           `yaml:"hourWidth"`
	MinuteIncrement       int           `yaml:"minuteIncrement"`
	ProgramHeight         int           `yaml:"programHeight"`
	ExpandedProgramHeight int           `yaml:"expandedProgramHeight"`
	LookBack              time.Duration `yaml:"lookBack"`
	LookAhead             time.Duration `yaml:"lookAhead"`
}

// SnapshotConfig locates the JSON snapshot directory.
type SnapshotConfig struct {
	Dir      string        `yaml:"dir"`
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`
	// MaxAge degrades readiness once the loaded snapshot is older. Zero disables it.
	MaxAge time.Duration `yaml:"maxAge"`
}

// LogosConfig configures logo request coalescing.
type LogosConfig struct {
	FlushInterval time.Duration `yaml:"flushInterval"`
}

// RateLimitConfig limits API requests per client IP. Zero disables it.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requestsPerMinute"`
}

// CacheConfig enables short-lived caching of rendered views. Cached
// responses carry the clock reading of the request that filled them, so
// keep TTL well under a minute.
type CacheConfig struct {
	TTL           time.Duration `yaml:"ttl"` // zero disables caching
	RedisAddr     string        `yaml:"redisAddr"`
	RedisPassword string        `yaml:"redisPassword"`
	RedisDB       int           `yaml:"redisDB"`
}

// TelemetryConfig configures OpenTelemetry trace export.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"` // grpc | http
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
}

// Layout returns the guide geometry.
func (c AppConfig) Layout() guide.Layout {
	return guide.Layout{
		ChannelWidth:          c.Guide.ChannelWidth,
		HourWidth:             c.Guide.HourWidth,
		MinuteIncrement:       c.Guide.MinuteIncrement,
		ProgramHeight:         c.Guide.ProgramHeight,
		ExpandedProgramHeight: c.Guide.ExpandedProgramHeight,
	}
}

// Formatter returns the label formatter for the viewer's preferences.
func (c AppConfig) Formatter() timeutil.Formatter {
	return timeutil.Formatter{TimeFormat: c.Viewer.TimeFormat, DateFormat: c.Viewer.DateFormat}
}

// Location resolves the viewer's time zone. Validate guarantees it loads.
func (c AppConfig) Location() *time.Location {
	loc, err := timeutil.LoadLocation(c.Viewer.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TracerConfig maps the telemetry section onto the tracer provider config.
func (c AppConfig) TracerConfig() telemetry.Config {
	return telemetry.Config{
		Enabled:        c.Telemetry.Enabled,
		ServiceName:    "dvrguide",
		ServiceVersion: c.Version,
		ExporterType:   c.Telemetry.Exporter,
		Endpoint:       c.Telemetry.Endpoint,
		SamplingRate:   c.Telemetry.SamplingRate,
	}
}
