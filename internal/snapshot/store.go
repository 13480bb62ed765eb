// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package snapshot loads the JSON collections the guide and DVR views are
// computed from.
//
// A snapshot directory holds one file per collection, each a JSON array.
// Missing files are empty collections. Records that do not decode are
// skipped and counted; only a file that is not an array fails the whole
// load, and then the previous snapshot stays current.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ManuGH/dvrguide/internal/log"
	"github.com/ManuGH/dvrguide/internal/metrics"
	"github.com/ManuGH/dvrguide/internal/model"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Snapshot file names.
const (
	FileChannels       = "channels.json"
	FileEPGData        = "epg_data.json"
	FileEPGSources     = "epg_sources.json"
	FilePrograms       = "programs.json"
	FileRecordings     = "recordings.json"
	FileRecurringRules = "recurring_rules.json"
	FileSeriesRules    = "series_rules.json"
	FileLogos          = "logos.json"
)

// Files lists every file a snapshot directory may contain.
var Files = []string{
	FileChannels, FileEPGData, FileEPGSources, FilePrograms,
	FileRecordings, FileRecurringRules, FileSeriesRules, FileLogos,
}

// ErrNotLoaded is returned by readers before the first successful load.
var ErrNotLoaded = errors.New("snapshot not loaded")

// Data is one immutable, fully decoded snapshot. Callers must not mutate it.
type Data struct {
	Channels       []model.Channel
	EPGData        map[int64]model.EPGData
	EPGSources     map[int64]model.EPGSource
	Programs       []model.Program
	Recordings     []model.Recording
	RecurringRules []model.RecurringRule
	SeriesRules    []model.SeriesRule
	Logos          map[int64]model.Logo
	LoadedAt       time.Time
}

// Store holds the current snapshot and reloads it from disk.
type Store struct {
	dir     string
	current atomic.Pointer[Data]
	group   singleflight.Group
	logger  zerolog.Logger
	now     func() time.Time

	hooksMu sync.Mutex
	hooks   []func(*Data)
}

// NewStore returns a store reading from dir. Nothing is read until Reload.
func NewStore(dir string) *Store {
	return &Store{
		dir:    dir,
		logger: log.WithComponent("snapshot").With().Str("dir", dir).Logger(),
		now:    time.Now,
	}
}

// Dir returns the snapshot directory.
func (s *Store) Dir() string { return s.dir }

// OnReload registers fn to run after every successful reload, in
// registration order, on the reloading goroutine.
func (s *Store) OnReload(fn func(*Data)) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Current returns the last loaded snapshot, or nil before the first load.
func (s *Store) Current() *Data {
	return s.current.Load()
}

// Reload reads every snapshot file and swaps the result in. Concurrent
// callers share one disk read.
func (s *Store) Reload(ctx context.Context) (*Data, error) {
	ch := s.group.DoChan("reload", func() (any, error) {
		return s.reload()
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Data), nil
	}
}

func (s *Store) reload() (*Data, error) {
	started := s.now()
	data, skips, err := readDir(s.dir)
	if err != nil {
		metrics.RecordSnapshotReload(err, nil, 0)
		s.logger.Error().Err(err).Str(log.FieldEvent, "snapshot.reload_failed").Msg("failed to load snapshot")
		return nil, err
	}
	data.LoadedAt = s.now()
	s.current.Store(data)

	counts := make(map[string]int, len(skips))
	for file, sk := range skips {
		counts[file] = sk.count
		s.logger.Warn().
			Err(sk.first).
			Str(log.FieldEvent, "snapshot.records_skipped").
			Str("file", file).
			Int("skipped", sk.count).
			Msg("skipped records that did not decode")
	}
	metrics.RecordSnapshotReload(nil, counts, float64(data.LoadedAt.Unix()))

	s.logger.Info().
		Str(log.FieldEvent, "snapshot.reload_success").
		Int("channels", len(data.Channels)).
		Int("programs", len(data.Programs)).
		Int("recordings", len(data.Recordings)).
		Int("recurring_rules", len(data.RecurringRules)).
		Dur("duration", data.LoadedAt.Sub(started)).
		Msg("snapshot loaded")

	s.hooksMu.Lock()
	hooks := slices.Clone(s.hooks)
	s.hooksMu.Unlock()
	for _, fn := range hooks {
		fn(data)
	}
	return data, nil
}

// skipped describes the records of one file that did not decode.
type skipped struct {
	count int
	first error
}

// readDir decodes every collection file. The returned map only holds
// files with skipped records.
func readDir(dir string) (*Data, map[string]skipped, error) {
	data := &Data{}

	var epgData []model.EPGData
	var epgSources []model.EPGSource
	var logos []model.Logo

	targets := []struct {
		name string
		load func(path string) (skipped, error)
	}{
		{FileChannels, into(&data.Channels)},
		{FileEPGData, into(&epgData)},
		{FileEPGSources, into(&epgSources)},
		{FilePrograms, into(&data.Programs)},
		{FileRecordings, into(&data.Recordings)},
		{FileRecurringRules, into(&data.RecurringRules)},
		{FileSeriesRules, into(&data.SeriesRules)},
		{FileLogos, into(&logos)},
	}
	skips := make(map[string]skipped)
	for _, t := range targets {
		sk, err := t.load(filepath.Join(dir, t.name))
		if err != nil {
			return nil, nil, err
		}
		if sk.count > 0 {
			skips[t.name] = sk
		}
	}

	data.EPGData = make(map[int64]model.EPGData, len(epgData))
	for _, d := range epgData {
		data.EPGData[d.ID] = d
	}
	data.EPGSources = make(map[int64]model.EPGSource, len(epgSources))
	for _, src := range epgSources {
		data.EPGSources[src.ID] = src
	}
	data.Logos = make(map[int64]model.Logo, len(logos))
	for _, l := range logos {
		data.Logos[l.ID] = l
	}
	return data, skips, nil
}

func into[T any](dst *[]T) func(string) (skipped, error) {
	return func(path string) (skipped, error) {
		return readCollection(path, dst)
	}
}

// readCollection decodes the JSON array at path into dst one record at a
// time. A missing or empty file leaves dst untouched.
func readCollection[T any](path string, dst *[]T) (skipped, error) {
	name := filepath.Base(path)
	// #nosec G304 -- snapshot paths are built from the operator-configured directory
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return skipped{}, nil
	}
	if err != nil {
		return skipped{}, fmt.Errorf("read %s: %w", name, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return skipped{}, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return skipped{}, fmt.Errorf("decode %s: %w", name, err)
	}
	var sk skipped
	out := make([]T, 0, len(records))
	for i, rec := range records {
		var v T
		if err := json.Unmarshal(rec, &v); err != nil {
			sk.count++
			if sk.first == nil {
				sk.first = fmt.Errorf("record %d: %w", i, err)
			}
			continue
		}
		out = append(out, v)
	}
	*dst = out
	return sk, nil
}

func (s *Store) data() (*Data, error) {
	d := s.current.Load()
	if d == nil {
		return nil, ErrNotLoaded
	}
	return d, nil
}

// GetChannels returns the snapshot's channels.
func (s *Store) GetChannels(_ context.Context) ([]model.Channel, error) {
	d, err := s.data()
	if err != nil {
		return nil, err
	}
	return d.Channels, nil
}

// GetEPGData returns EPG data rows keyed by id.
func (s *Store) GetEPGData(_ context.Context) (map[int64]model.EPGData, error) {
	d, err := s.data()
	if err != nil {
		return nil, err
	}
	return d.EPGData, nil
}

// GetEPGSources returns EPG sources keyed by id.
func (s *Store) GetEPGSources(_ context.Context) (map[int64]model.EPGSource, error) {
	d, err := s.data()
	if err != nil {
		return nil, err
	}
	return d.EPGSources, nil
}

// GetPrograms returns the snapshot's programs.
func (s *Store) GetPrograms(_ context.Context) ([]model.Program, error) {
	d, err := s.data()
	if err != nil {
		return nil, err
	}
	return d.Programs, nil
}

// GetRecordings returns the snapshot's recordings.
func (s *Store) GetRecordings(_ context.Context) ([]model.Recording, error) {
	d, err := s.data()
	if err != nil {
		return nil, err
	}
	return d.Recordings, nil
}

// GetRecurringRules returns the snapshot's recurring rules.
func (s *Store) GetRecurringRules(_ context.Context) ([]model.RecurringRule, error) {
	d, err := s.data()
	if err != nil {
		return nil, err
	}
	return d.RecurringRules, nil
}

// GetSeriesRules returns the snapshot's series rules.
func (s *Store) GetSeriesRules(_ context.Context) ([]model.SeriesRule, error) {
	d, err := s.data()
	if err != nil {
		return nil, err
	}
	return d.SeriesRules, nil
}

// GetLogos returns logos keyed by id.
func (s *Store) GetLogos(_ context.Context) (map[int64]model.Logo, error) {
	d, err := s.data()
	if err != nil {
		return nil, err
	}
	return d.Logos, nil
}
