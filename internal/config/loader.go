// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ManuGH/dvrguide/internal/guide"
	"github.com/ManuGH/dvrguide/internal/telemetry"
	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{} // Mechanical tracking of consumed keys
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() AppConfig {
	return AppConfig{
		DataDir:  "/var/lib/dvrguide",
		Listen:   ":8089",
		LogLevel: "info",
		Viewer: ViewerConfig{
			TimeZone:   "UTC",
			TimeFormat: "12h",
			DateFormat: "mdy",
		},
		Guide: GuideConfig{
			ChannelWidth:          guide.DefaultChannelWidth,
			HourWidth:             guide.DefaultHourWidth,
			MinuteIncrement:       guide.DefaultMinuteIncrement,
			ProgramHeight:         guide.DefaultProgramHeight,
			ExpandedProgramHeight: guide.DefaultExpandedProgramHeight,
			LookBack:              time.Hour,
			LookAhead:             24 * time.Hour,
		},
		Snapshot: SnapshotConfig{
			Watch:    true,
			Debounce: 500 * time.Millisecond,
		},
		Logos: LogosConfig{
			FlushInterval: 100 * time.Millisecond,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 600,
		},
		Telemetry: TelemetryConfig{
			Exporter:     telemetry.ExporterGRPC,
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
	}
}

// Load loads configuration with precedence: ENV > File > Defaults.
// Order: defaults -> strict file parse -> env -> derived paths -> Validate.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnv(&cfg)

	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}
	if cfg.Snapshot.Dir == "" {
		cfg.Snapshot.Dir = filepath.Join(cfg.DataDir, "snapshot")
	}
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes path over cfg. Keys absent from the file keep their
// current value.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "not found in type") {
			return fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	cfg.DataDir = l.envString(EnvDataDir, cfg.DataDir)
	cfg.Listen = l.envString(EnvListen, cfg.Listen)
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	if origins := l.envString(EnvAllowedOrigins, ""); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	cfg.Viewer.TimeZone = l.envString(EnvTimeZone, cfg.Viewer.TimeZone)
	cfg.Viewer.TimeFormat = l.envString(EnvTimeFormat, cfg.Viewer.TimeFormat)
	cfg.Viewer.DateFormat = l.envString(EnvDateFormat, cfg.Viewer.DateFormat)

	cfg.Guide.HourWidth = l.envInt(EnvHourWidth, cfg.Guide.HourWidth)
	cfg.Guide.MinuteIncrement = l.envInt(EnvMinuteIncrement, cfg.Guide.MinuteIncrement)
	cfg.Guide.LookBack = l.envDuration(EnvLookBack, cfg.Guide.LookBack)
	cfg.Guide.LookAhead = l.envDuration(EnvLookAhead, cfg.Guide.LookAhead)

	cfg.Snapshot.Dir = l.envString(EnvSnapshotDir, cfg.Snapshot.Dir)
	cfg.Snapshot.Watch = l.envBool(EnvSnapshotWatch, cfg.Snapshot.Watch)

	cfg.Logos.FlushInterval = l.envDuration(EnvLogoFlush, cfg.Logos.FlushInterval)
	cfg.RateLimit.RequestsPerMinute = l.envInt(EnvRateLimitRPM, cfg.RateLimit.RequestsPerMinute)

	cfg.Cache.TTL = l.envDuration(EnvCacheTTL, cfg.Cache.TTL)
	cfg.Cache.RedisAddr = l.envString(EnvCacheRedisAddr, cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = l.envString(EnvCacheRedisPass, cfg.Cache.RedisPassword)

	cfg.Telemetry.Enabled = l.envBool(EnvOTelEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvOTelExporter, cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvOTelEndpoint, cfg.Telemetry.Endpoint)
}

// splitList splits a comma separated value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
