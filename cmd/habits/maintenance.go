package main

import (
	"context"
	"fmt"

	"habits/internal/app"

	"github.com/spf13/cobra"
)

func newShiftCmd(opts *rootOptions) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:    "shift",
		Short:  "Move all history by whole days (testing aid)",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days == 0 {
				return fmt.Errorf("--days must not be zero")
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := a.Engine.DebugShiftAllDates(ctx, days); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s History shifted %+d day(s)\n", okMark, days)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", -1, "days to shift by; negative moves history into the past")
	return cmd
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every habit and all history",
		Long:  "Delete every active and archived habit. Take a backup first if you may want them back.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := a.Engine.ResetAll(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s All habits deleted\n", okMark)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")
	return cmd
}
