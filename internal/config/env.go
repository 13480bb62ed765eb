// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/dvrguide/internal/log"
	"github.com/rs/zerolog"
)

// Environment variables, all prefixed DVRGUIDE_.
const (
	EnvDataDir         = "DVRGUIDE_DATA_DIR"
	EnvListen          = "DVRGUIDE_LISTEN"
	EnvLogLevel        = "DVRGUIDE_LOG_LEVEL"
	EnvAllowedOrigins  = "DVRGUIDE_ALLOWED_ORIGINS"
	EnvTimeZone        = "DVRGUIDE_TZ"
	EnvTimeFormat      = "DVRGUIDE_TIME_FORMAT"
	EnvDateFormat      = "DVRGUIDE_DATE_FORMAT"
	EnvHourWidth       = "DVRGUIDE_GUIDE_HOUR_WIDTH"
	EnvMinuteIncrement = "DVRGUIDE_GUIDE_MINUTE_INCREMENT"
	EnvLookBack        = "DVRGUIDE_GUIDE_LOOKBACK"
	EnvLookAhead       = "DVRGUIDE_GUIDE_LOOKAHEAD"
	EnvSnapshotDir     = "DVRGUIDE_SNAPSHOT_DIR"
	EnvSnapshotWatch   = "DVRGUIDE_SNAPSHOT_WATCH"
	EnvLogoFlush       = "DVRGUIDE_LOGO_FLUSH_INTERVAL"
	EnvRateLimitRPM    = "DVRGUIDE_RATE_LIMIT_RPM"
	EnvCacheTTL        = "DVRGUIDE_CACHE_TTL"
	EnvCacheRedisAddr  = "DVRGUIDE_CACHE_REDIS_ADDR"
	EnvCacheRedisPass  = "DVRGUIDE_CACHE_REDIS_PASSWORD"
	EnvOTelEnabled     = "DVRGUIDE_OTEL_ENABLED"
	EnvOTelExporter    = "DVRGUIDE_OTEL_EXPORTER"
	EnvOTelEndpoint    = "DVRGUIDE_OTEL_ENDPOINT"
)

func envLogger() zerolog.Logger {
	return log.WithComponent("config")
}

func logDefault(logger zerolog.Logger, key string, empty bool) {
	msg := "using default value"
	if empty {
		msg = "using default value (environment variable is empty)"
	}
	logger.Debug().Str("key", key).Str("source", "default").Msg(msg)
}

// ParseString reads a string from environment variable or returns default value.
// It logs the source (environment or default) for observability.
func ParseString(key, defaultValue string) string {
	logger := envLogger()
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logDefault(logger, key, ok)
		return defaultValue
	}
	shown := v
	if strings.HasSuffix(key, "_PASSWORD") {
		shown = "***"
	}
	logger.Debug().Str("key", key).Str("value", shown).Str("source", "environment").Msg("using environment variable")
	return v
}

// ParseInt reads an integer from environment variable or returns default value.
// It validates the input and falls back to default on parse errors.
func ParseInt(key string, defaultValue int) int {
	logger := envLogger()
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logDefault(logger, key, ok)
		return defaultValue
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Int("default", defaultValue).
			Msg("invalid integer in environment variable, using default")
		return defaultValue
	}
	logger.Debug().Str("key", key).Int("value", i).Str("source", "environment").Msg("using environment variable")
	return i
}

// ParseDuration reads a duration from environment variable in Go duration format (e.g. "5s").
// It falls back to default on parse errors or empty variables and logs the choice.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	logger := envLogger()
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logDefault(logger, key, ok)
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Dur("default", defaultValue).
			Msg("invalid duration in environment variable, using default")
		return defaultValue
	}
	logger.Debug().Str("key", key).Dur("value", d).Str("source", "environment").Msg("using environment variable")
	return d
}

// ParseBool reads a boolean from environment variable or returns default value.
// It accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	logger := envLogger()
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logDefault(logger, key, ok)
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	logger.Warn().
		Str("key", key).
		Str("value", v).
		Bool("default", defaultValue).
		Msg("invalid boolean in environment variable, using default")
	return defaultValue
}
