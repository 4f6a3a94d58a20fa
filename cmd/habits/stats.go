package main

import (
	"context"
	"fmt"

	"habits/internal/app"
	"habits/internal/stats"

	"github.com/spf13/cobra"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var format string
	var days int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a progress report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "markdown" && format != "json" {
				return fmt.Errorf("unknown format %q (want markdown or json)", format)
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if !cmd.Flags().Changed("days") {
					days = a.Config.HeatmapDays()
				}
				report := stats.Generate(a.Engine.Habits(), a.Engine.ArchivedHabits(), a.Engine.Now(), days)

				out := cmd.OutOrStdout()
				if format == "json" {
					data, err := stats.FormatJSON(report)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(out, string(data))
					return err
				}
				_, err := fmt.Fprint(out, stats.FormatMarkdown(report))
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "output format: markdown or json")
	cmd.Flags().IntVar(&days, "days", stats.DefaultHeatmapDays, "days covered by the activity heatmap")
	return cmd
}
