// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"

	"github.com/ManuGH/dvrguide/internal/control/read"
	"github.com/ManuGH/dvrguide/internal/timeutil"
	"github.com/spf13/cobra"
)

func newGuideCmd(flags *globalFlags) *cobra.Command {
	view := &viewFlags{}
	var (
		query      string
		start, end string
		fit        bool
	)
	cmd := &cobra.Command{
		Use:   "guide",
		Short: "Print the program guide for the current window",
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
			q := read.GuideQuery{FitPrograms: fit}
			q.Filter.Query = query
			if (start == "") != (end == "") {
				return fmt.Errorf("--start and --end must be given together")
			}
			if start != "" {
				var ok bool
				if q.Start, ok = timeutil.ParseInstant(start); !ok {
					return fmt.Errorf("invalid --start %q", start)
				}
				if q.End, ok = timeutil.ParseInstant(end); !ok {
					return fmt.Errorf("invalid --end %q", end)
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			store, err := loadSnapshot(ctx, cfg)
			if err != nil {
				return err
			}
			g, err := read.GetGuide(ctx, store, q, clock, prefs)
			if err != nil {
				return err
			}
			return view.emit(cmd.OutOrStdout(), g)
		},
	}
	view.register(cmd)
	cmd.Flags().StringVarP(&query, "query", "q", "", "only channels whose name contains this text")
	cmd.Flags().StringVar(&start, "start", "", "window start (RFC 3339), requires --end")
	cmd.Flags().StringVar(&end, "end", "", "window end (RFC 3339), requires --start")
	cmd.Flags().BoolVar(&fit, "fit", false, "widen the window to cover every program")
	return cmd
}
