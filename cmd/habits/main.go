// Package main is the entry point for the habits application. Without a
// subcommand it starts the TUI; subcommands script the same engine.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"habits/internal/app"
	"habits/internal/config"
	"habits/internal/engine"
	"habits/internal/habit"
	"habits/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "habits",
		Short: "Daily habit tracker for your terminal",
		Long: `habits tracks daily habits: tick them off, count progress toward a
daily target, keep streaks, and get reminded at a time of day.

Run without a command to open the dashboard.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/habits/config.yaml)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log at debug level to stderr as well as the log file")

	root.AddCommand(
		newAddCmd(opts),
		newListCmd(opts),
		newToggleCmd(opts),
		newProgressCmd(opts),
		newEditCmd(opts),
		newArchiveCmd(opts),
		newRestoreCmd(opts),
		newDeleteCmd(opts),
		newReorderCmd(opts),
		newStatsCmd(opts),
		newRemindersCmd(opts),
		newRemindCmd(opts),
		newShiftCmd(opts),
		newResetCmd(opts),
		newBackupCmd(opts),
		newRestoreBackupCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

// loadConfig reads the --config file, or the default path.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	if opts.configPath != "" {
		return config.LoadFrom(opts.configPath)
	}
	return config.Load()
}

// openApp loads the config and wires the application. Callers must Close
// the result.
func openApp(ctx context.Context, opts *rootOptions, interactive bool) (*app.App, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.debug {
		cfg.Log.Level = "debug"
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return app.New(ctx, cfg, app.Options{
		Version: version,
		Stderr:  opts.debug && !interactive,
	})
}

// withApp opens the application for the duration of fn.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, opts, false)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	a, err := openApp(ctx, opts, true)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.Config
	return ui.Run(a.Engine, ui.NewStyles(cfg), &ui.AppConfig{
		Keys:             &cfg.Keys,
		ConfirmDeletions: cfg.UX.ConfirmDeletions,
		HeatmapDays:      cfg.HeatmapDays(),
	})
}

// resolveHabit finds a habit by id, exact title (case-insensitive), or
// unique id prefix, in that order.
func resolveHabit(eng *engine.Engine, ref string) (habit.Habit, bool, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return habit.Habit{}, false, fmt.Errorf("habit id is required")
	}
	if h, archived, ok := eng.Find(ref); ok {
		return h, archived, nil
	}

	type candidate struct {
		h        habit.Habit
		archived bool
	}
	var byPrefix, byTitle []candidate
	collect := func(list []habit.Habit, archived bool) {
		for _, h := range list {
			if strings.HasPrefix(h.ID, ref) {
				byPrefix = append(byPrefix, candidate{h, archived})
			}
			if strings.EqualFold(h.Title, ref) {
				byTitle = append(byTitle, candidate{h, archived})
			}
		}
	}
	collect(eng.Habits(), false)
	collect(eng.ArchivedHabits(), true)

	for _, matches := range [][]candidate{byTitle, byPrefix} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0].h, matches[0].archived, nil
		default:
			return habit.Habit{}, false, fmt.Errorf("%q matches %d habits, use a longer id", ref, len(matches))
		}
	}
	return habit.Habit{}, false, fmt.Errorf("no habit matches %q", ref)
}

// resolveActive is resolveHabit restricted to active habits.
func resolveActive(eng *engine.Engine, ref string) (habit.Habit, error) {
	h, archived, err := resolveHabit(eng, ref)
	if err != nil {
		return h, err
	}
	if archived {
		return h, fmt.Errorf("%s is archived, restore it first", h.Title)
	}
	return h, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	todoMark = color.New(color.FgYellow).Sprint("○")
	warnMark = color.New(color.FgRed).Sprint("!")
)
