package main

import (
	"context"
	"fmt"

	"habits/internal/app"

	"github.com/spf13/cobra"
)

func newBackupCmd(opts *rootOptions) *cobra.Command {
	var list bool
	var prune int
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot all habits, or list and prune snapshots",
		Example: `  habits backup
  habits backup --list
  habits backup --prune 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list && cmd.Flags().Changed("prune") {
				return fmt.Errorf("--list and --prune cannot be combined")
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				out := cmd.OutOrStdout()
				switch {
				case list:
					backups, err := a.Backups.List()
					if err != nil {
						return err
					}
					if len(backups) == 0 {
						fmt.Fprintln(out, "No backups found.")
						return nil
					}
					fmt.Fprintf(out, "Backups in %s:\n", a.Backups.Dir())
					for _, b := range backups {
						fmt.Fprintf(out, "  %s  %d active, %d archived, %d completions\n",
							b.Name, b.Stats["active"], b.Stats["archived"], b.Stats["completions"])
					}
					return nil

				case cmd.Flags().Changed("prune"):
					n, err := a.Backups.Prune(prune)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s Removed %d backup(s)\n", okMark, n)
					return nil
				}

				name, err := a.Backups.Create(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s Backup created: %s\n", okMark, name)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list existing backups")
	cmd.Flags().IntVar(&prune, "prune", 0, "keep only the N most recent backups")
	return cmd
}

func newRestoreBackupCmd(opts *rootOptions) *cobra.Command {
	var latest bool
	cmd := &cobra.Command{
		Use:   "restore-backup [NAME]",
		Short: "Replace all habits with a backup",
		Long:  "Replace all habits with a backup. The current state is snapshotted first.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if latest == (len(args) == 1) {
				return fmt.Errorf("give a backup NAME or --latest")
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				name := ""
				if latest {
					n, err := a.Backups.RestoreLatest(ctx)
					if err != nil {
						return err
					}
					name = n
				} else {
					name = args[0]
					if err := a.Backups.Restore(ctx, name); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Restored %s\n", okMark, name)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "restore the most recent backup")
	return cmd
}
