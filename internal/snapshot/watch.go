// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package snapshot

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/ManuGH/dvrguide/internal/log"
	"github.com/fsnotify/fsnotify"
)

// Watch reloads the store whenever a snapshot file changes, debounced so a
// burst of writes triggers one reload. It blocks until ctx is done.
func (s *Store) Watch(ctx context.Context, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory so atomic rename-into-place writes are seen.
	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("watch snapshot dir: %w", err)
	}

	s.logger.Info().
		Str(log.FieldEvent, "snapshot.watcher_started").
		Dur("debounce", debounce).
		Msg("watching snapshot directory for changes")

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Str(log.FieldEvent, "snapshot.watcher_stopped").Msg("snapshot watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isSnapshotEvent(event) {
				continue
			}
			s.logger.Debug().
				Str(log.FieldEvent, "snapshot.file_changed").
				Str("file", filepath.Base(event.Name)).
				Str("op", event.Op.String()).
				Msg("snapshot file changed")

			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Stop()
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if _, err := s.Reload(ctx); err != nil {
				s.logger.Warn().
					Err(err).
					Str(log.FieldEvent, "snapshot.auto_reload_failed").
					Msg("automatic snapshot reload failed, keeping previous snapshot")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error().
				Err(err).
				Str(log.FieldEvent, "snapshot.watcher_error").
				Msg("snapshot watcher error")
		}
	}
}

func isSnapshotEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	return slices.Contains(Files, filepath.Base(event.Name))
}
