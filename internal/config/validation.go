// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"

	"github.com/ManuGH/dvrguide/internal/telemetry"
	"github.com/ManuGH/dvrguide/internal/timeutil"
	"github.com/rs/zerolog"
)

// Validate checks cfg and reports every problem found, joined.
func Validate(cfg AppConfig) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if cfg.DataDir == "" {
		fail("dataDir must not be empty")
	}
	if cfg.Listen == "" {
		fail("listen must not be empty")
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		fail("logLevel %q: %v", cfg.LogLevel, err)
	}

	if _, err := timeutil.LoadLocation(cfg.Viewer.TimeZone); err != nil {
		fail("viewer.timeZone: %v", err)
	}
	switch cfg.Viewer.TimeFormat {
	case timeutil.TimeFormat12h, timeutil.TimeFormat24h:
	default:
		fail("viewer.timeFormat must be %q or %q, got %q", timeutil.TimeFormat12h, timeutil.TimeFormat24h, cfg.Viewer.TimeFormat)
	}
	switch cfg.Viewer.DateFormat {
	case timeutil.DateFormatMDY, timeutil.DateFormatDMY:
	default:
		fail("viewer.dateFormat must be %q or %q, got %q", timeutil.DateFormatMDY, timeutil.DateFormatDMY, cfg.Viewer.DateFormat)
	}

	g := cfg.Guide
	if g.ChannelWidth <= 0 || g.HourWidth <= 0 {
		fail("guide widths must be positive")
	}
	if g.MinuteIncrement <= 0 || 60%g.MinuteIncrement != 0 {
		fail("guide.minuteIncrement must divide 60, got %d", g.MinuteIncrement)
	}
	if g.ProgramHeight <= 0 || g.ExpandedProgramHeight < g.ProgramHeight {
		fail("guide heights must be positive and expanded >= collapsed")
	}
	if g.LookBack < 0 || g.LookAhead <= 0 {
		fail("guide.lookBack must be >= 0 and guide.lookAhead > 0")
	}

	if cfg.Snapshot.Dir == "" {
		fail("snapshot.dir must not be empty")
	}
	if cfg.Snapshot.Debounce < 0 {
		fail("snapshot.debounce must be >= 0")
	}
	if cfg.Snapshot.MaxAge < 0 {
		fail("snapshot.maxAge must be >= 0")
	}
	if cfg.Logos.FlushInterval <= 0 {
		fail("logos.flushInterval must be positive")
	}
	if cfg.RateLimit.RequestsPerMinute < 0 {
		fail("rateLimit.requestsPerMinute must be >= 0")
	}

	if cfg.Cache.TTL < 0 {
		fail("cache.ttl must be >= 0")
	}
	if cfg.Cache.RedisDB < 0 {
		fail("cache.redisDB must be >= 0")
	}

	if t := cfg.Telemetry; t.Enabled {
		if t.Exporter != telemetry.ExporterGRPC && t.Exporter != telemetry.ExporterHTTP {
			fail("telemetry.exporter must be %q or %q, got %q", telemetry.ExporterGRPC, telemetry.ExporterHTTP, t.Exporter)
		}
		if t.Endpoint == "" {
			fail("telemetry.endpoint must not be empty when telemetry is enabled")
		}
	}
	if r := cfg.Telemetry.SamplingRate; r < 0 || r > 1 {
		fail("telemetry.samplingRate must be within [0, 1], got %v", r)
	}

	return errors.Join(errs...)
}
