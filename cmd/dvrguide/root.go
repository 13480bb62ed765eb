// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ManuGH/dvrguide/internal/api"
	"github.com/ManuGH/dvrguide/internal/config"
	"github.com/ManuGH/dvrguide/internal/control/read"
	"github.com/ManuGH/dvrguide/internal/log"
	"github.com/ManuGH/dvrguide/internal/snapshot"
	"github.com/ManuGH/dvrguide/internal/timeutil"
	"github.com/ManuGH/dvrguide/internal/version"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:          "dvrguide",
		Short:        "Program guide and DVR views over channel snapshots",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file (YAML)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(
		newServeCmd(flags),
		newClassifyCmd(flags),
		newGuideCmd(flags),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig reads the config and configures logging from it. Logs go to
// stderr so command output on stdout stays machine readable.
func loadConfig(flags *globalFlags) (config.AppConfig, error) {
	log.Configure(log.Config{Level: "info", Output: os.Stderr, Service: "dvrguide"})

	cfg, err := config.NewLoader(flags.configPath, version.Version).Load()
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	log.Configure(log.Config{Level: level})
	return cfg, nil
}

// loadSnapshot performs one synchronous load of the configured directory.
func loadSnapshot(ctx context.Context, cfg config.AppConfig) (*snapshot.Store, error) {
	store := snapshot.NewStore(cfg.Snapshot.Dir)
	if _, err := store.Reload(ctx); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return store, nil
}

// viewFlags are shared by the one-shot view commands.
type viewFlags struct {
	now string
	tz  string
	out string
}

func (v *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&v.now, "now", "", "evaluate at this instant instead of the wall clock (RFC 3339)")
	cmd.Flags().StringVar(&v.tz, "tz", "", "viewer time zone, overrides the config")
	cmd.Flags().StringVarP(&v.out, "out", "o", "", "write JSON to this file instead of stdout")
}

func (v *viewFlags) clock() (read.Clock, error) {
	if v.now == "" {
		return read.RealClock{}, nil
	}
	t, ok := timeutil.ParseInstant(v.now)
	if !ok {
		return nil, fmt.Errorf("invalid --now %q", v.now)
	}
	return read.FixedClock(t), nil
}

func (v *viewFlags) prefs(cfg config.AppConfig) (read.Prefs, error) {
	prefs := api.PrefsFromConfig(cfg)
	if v.tz != "" {
		loc, err := timeutil.LoadLocation(v.tz)
		if err != nil {
			return prefs, err
		}
		prefs.Location = loc
	}
	return prefs, nil
}

// emit writes v as indented JSON to --out or w.
func (v *viewFlags) emit(w io.Writer, value any) error {
	if v.out == "" {
		return encodeJSON(w, value)
	}
	return writeJSONFile(v.out, value)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "dvrguide %s\n", version.String())
			return err
		},
	}
}

// commandTimeout bounds one-shot commands.
const commandTimeout = 30 * time.Second
