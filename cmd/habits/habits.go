package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"habits/internal/app"
	"habits/internal/engine"
	"habits/internal/habit"
	"habits/internal/stats"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// draftFlags binds the editable habit fields to command flags.
type draftFlags struct {
	title  string
	icon   string
	goal   int
	target int
	unit   string
	remind string
}

func (f *draftFlags) register(cmd *cobra.Command, withTitle bool) {
	if withTitle {
		cmd.Flags().StringVar(&f.title, "title", "", "new title")
	}
	cmd.Flags().StringVar(&f.icon, "icon", "", "icon, usually an emoji")
	cmd.Flags().IntVar(&f.goal, "goal", 0, "days per week to aim for, 1-7")
	cmd.Flags().IntVar(&f.target, "target", 0, "daily target; 0 for a yes/no habit")
	cmd.Flags().StringVar(&f.unit, "unit", "", "unit of the daily target, e.g. glasses")
	cmd.Flags().StringVar(&f.remind, "remind", "", "daily reminder time HH:MM; empty for none")
}

// apply overlays the flags the user set onto d.
func (f *draftFlags) apply(cmd *cobra.Command, d *engine.Draft) {
	set := cmd.Flags().Changed
	if set("title") {
		d.Title = f.title
	}
	if set("icon") {
		d.Icon = f.icon
	}
	if set("goal") {
		d.GoalDaysPerWeek = f.goal
	}
	if set("target") {
		d.TargetValue = f.target
	}
	if set("unit") {
		d.Unit = f.unit
	}
	if set("remind") {
		d.ReminderTime = f.remind
	}
}

func draftOf(h habit.Habit) engine.Draft {
	return engine.Draft{
		Title:           h.Title,
		Icon:            h.Icon,
		GoalDaysPerWeek: h.GoalDaysPerWeek,
		TargetValue:     h.TargetValue,
		Unit:            h.Unit,
		ReminderTime:    h.ReminderTime,
	}
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	flags := &draftFlags{}
	cmd := &cobra.Command{
		Use:   "add TITLE...",
		Short: "Add a habit",
		Example: `  habits add Read 20 pages --icon 📚 --remind 21:00
  habits add Drink water --target 8 --unit glasses`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				d := engine.Draft{Title: strings.Join(args, " ")}
				flags.apply(cmd, &d)
				h, err := a.Engine.Create(ctx, d)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s %s (%s)\n", okMark, h.Icon, h.Title, shortID(h.ID))
				return nil
			})
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	flags := &draftFlags{}
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a habit's fields",
		Long:  "Change the fields given as flags and keep the rest. Pass --remind \"\" to drop a reminder.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				h, err := resolveActive(a.Engine, args[0])
				if err != nil {
					return err
				}
				d := draftOf(h)
				flags.apply(cmd, &d)
				if err := a.Engine.Update(ctx, h.ID, d); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Saved %s\n", okMark, d.Title)
				return nil
			})
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var archived, asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List habits with today's status",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				list := a.Engine.Habits()
				if archived {
					list = a.Engine.ArchivedHabits()
				}
				out := cmd.OutOrStdout()

				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(list)
				}
				if len(list) == 0 {
					if archived {
						fmt.Fprintln(out, "Nothing archived.")
					} else {
						fmt.Fprintln(out, "No habits yet. Add one with: habits add TITLE")
					}
					return nil
				}
				if archived {
					fmt.Fprintln(out, archivedTable(list))
					return nil
				}
				report := stats.Generate(list, nil, a.Engine.Now(), 1)
				fmt.Fprintln(out, activeTable(report.Habits))
				fmt.Fprintf(out, "Today: %d/%d done (%.0f%%)\n",
					report.Summary.CompletedToday, len(list), a.Engine.OverallProgress()*100)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&archived, "archived", false, "list archived habits instead")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the habits as JSON")
	return cmd
}

func activeTable(rows []stats.HabitStatus) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "HABIT", "TODAY", "WEEK", "STREAK", "REMINDER")
	for _, h := range rows {
		today := "○"
		if h.Done {
			today = "✓"
		}
		if h.Target > 0 {
			today = strings.TrimSpace(fmt.Sprintf("%s %d/%d %s", today, h.Progress, h.Target, h.Unit))
		}
		week := fmt.Sprintf("%d/%d", h.WeekCompleted, h.WeekGoal)
		if h.GoalMet {
			week += " ✓"
		}
		t.Row(shortID(h.ID), h.Icon+" "+h.Title, today, week, strconv.Itoa(h.Streak), h.ReminderTime)
	}
	return t.String()
}

func archivedTable(list []habit.Habit) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "HABIT", "COMPLETIONS")
	for _, h := range list {
		t.Row(shortID(h.ID), h.Icon+" "+h.Title, strconv.Itoa(len(h.CompletedDates)))
	}
	return t.String()
}

func newToggleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "toggle ID",
		Aliases: []string{"done"},
		Short:   "Mark a habit done for today, or undo it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				h, err := resolveActive(a.Engine, args[0])
				if err != nil {
					return err
				}
				if err := a.Engine.Toggle(ctx, h.ID); err != nil {
					return err
				}
				h, _, _ = a.Engine.Find(h.ID)
				if a.Engine.IsCompletedToday(&h) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s done for today (streak %d)\n", okMark, h.Title, h.Streak)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s not done today\n", todoMark, h.Title)
				}
				return nil
			})
		},
	}
}

func newProgressCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "progress ID [DELTA]",
		Short: "Add to today's count of a habit with a target",
		Long:  "Add DELTA (default 1) to today's count. Put -- before a negative DELTA: habits progress water -- -1",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta := 1
			if len(args) == 2 {
				n, err := strconv.Atoi(strings.TrimPrefix(args[1], "+"))
				if err != nil {
					return fmt.Errorf("delta must be a whole number, got %q", args[1])
				}
				delta = n
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				h, err := resolveActive(a.Engine, args[0])
				if err != nil {
					return err
				}
				if !h.IsQuantitative() {
					return fmt.Errorf("%s has no daily target; use toggle", h.Title)
				}
				if err := a.Engine.UpdateProgress(ctx, h.ID, delta); err != nil {
					return err
				}
				h, _, _ = a.Engine.Find(h.ID)
				mark := todoMark
				if a.Engine.IsCompletedToday(&h) {
					mark = okMark
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", mark, h.Title,
					strings.TrimSpace(fmt.Sprintf("%d/%d %s", h.ProgressOn(a.Engine.Now()), h.TargetValue, h.Unit)))
				return nil
			})
		},
	}
}

func newArchiveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "archive ID",
		Short: "Archive a habit, keeping its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				h, err := resolveActive(a.Engine, args[0])
				if err != nil {
					return err
				}
				if err := a.Engine.Archive(ctx, h.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Archived %s\n", okMark, h.Title)
				return nil
			})
		},
	}
}

func newRestoreCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore ID",
		Short: "Bring an archived habit back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				h, archived, err := resolveHabit(a.Engine, args[0])
				if err != nil {
					return err
				}
				if !archived {
					return fmt.Errorf("%s is not archived", h.Title)
				}
				if err := a.Engine.Restore(ctx, h.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Restored %s\n", okMark, h.Title)
				return nil
			})
		},
	}
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an archived habit and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				h, archived, err := resolveHabit(a.Engine, args[0])
				if err != nil {
					return err
				}
				if !archived {
					return fmt.Errorf("%s is active, archive it first", h.Title)
				}
				if err := a.Engine.Delete(ctx, h.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %s\n", okMark, h.Title)
				return nil
			})
		},
	}
}

func newReorderCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder ID...",
		Short: "Set the order of the active habits",
		Long:  "List every active habit in the order you want them shown.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				ids := make([]string, 0, len(args))
				for _, ref := range args {
					h, err := resolveActive(a.Engine, ref)
					if err != nil {
						return err
					}
					ids = append(ids, h.ID)
				}
				if err := a.Engine.Reorder(ctx, ids); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Reordered %d habits\n", okMark, len(ids))
				return nil
			})
		},
	}
}
