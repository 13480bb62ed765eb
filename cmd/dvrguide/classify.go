// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"

	"github.com/ManuGH/dvrguide/internal/control/read"
	"github.com/spf13/cobra"
)

func newClassifyCmd(flags *globalFlags) *cobra.Command {
	view := &viewFlags{}
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Print recordings bucketed into in progress, upcoming and completed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			clock, err := view.clock()
			if err != nil {
				return err
			}
			prefs, err := view.prefs(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			store, err := loadSnapshot(ctx, cfg)
			if err != nil {
				return err
			}
			dvrView, err := read.GetDvr(ctx, store, clock, prefs)
			if err != nil {
				return err
			}
			return view.emit(cmd.OutOrStdout(), dvrView)
		},
	}
	view.register(cmd)
	return cmd
}
