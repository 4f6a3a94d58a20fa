package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"habits/internal/app"
	"habits/internal/habit"

	"github.com/spf13/cobra"
)

func newRemindersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reminders [ID]",
		Short: "Show upcoming reminders",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				list := a.Engine.Habits()
				if len(args) == 1 {
					h, err := resolveActive(a.Engine, args[0])
					if err != nil {
						return err
					}
					list = []habit.Habit{h}
				}

				out := cmd.OutOrStdout()
				if !a.Config.Notifications.Enabled {
					fmt.Fprintf(out, "%s Notifications are disabled in the config; nothing will be delivered.\n", warnMark)
				}

				now := a.Engine.Now()
				count := 0
				for i := range list {
					h := &list[i]
					for _, n := range a.Scheduler.Plan(h, now) {
						fmt.Fprintf(out, "%s  %s %s\n", n.When.Format("Mon Jan 2 15:04"), h.Icon, h.Title)
						count++
					}
				}
				if count == 0 {
					fmt.Fprintln(out, "No upcoming reminders.")
				}
				return nil
			})
		},
	}
}

func newRemindCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Run in the foreground and deliver reminders",
		Long: `Keep running and deliver desktop notifications at each habit's
reminder time. Changes made from the dashboard or other commands are picked
up on the configured resync interval. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApp(cmd, opts, func(_ context.Context, a *app.App) error {
				if !a.Config.Notifications.Enabled {
					return fmt.Errorf("notifications are disabled; set notifications.enabled: true in the config")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Delivering reminders for %d habits. Press Ctrl+C to stop.\n", len(a.Engine.Habits()))
				return a.RunDaemon(ctx)
			})
		},
	}
}
