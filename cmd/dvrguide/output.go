// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ManuGH/dvrguide/internal/log"
	"github.com/google/renameio/v2"
)

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeJSONFile replaces path atomically: readers see the old or the new
// file, never a partial one.
func writeJSONFile(path string, v any) error {
	pendingFile, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger := log.WithComponent("cli")
			logger.Debug().Err(err).Str("path", path).Msg("cleanup pending file")
		}
	}()

	if err := encodeJSON(pendingFile, v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", path, err)
	}
	return nil
}
