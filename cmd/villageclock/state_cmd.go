package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sandeepkv93/villageclock/internal/agenda"
	"github.com/sandeepkv93/villageclock/internal/commands"
	"github.com/sandeepkv93/villageclock/internal/countdown"
	"github.com/sandeepkv93/villageclock/internal/storage"
	"github.com/sandeepkv93/villageclock/internal/views"
	"github.com/spf13/cobra"
)

var agendaCmd = &cobra.Command{
	Use:   "agenda",
	Short: "Print every task finishing inside the horizon",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(_ context.Context, e *env, cmd *cobra.Command, _ []string) error {
		items := e.app.Agenda()
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing due")
			return nil
		}
		rows := make([]views.AgendaRowData, 0, len(items))
		for _, item := range items {
			left := countdown.CompletedText
			if !item.IsCompleted {
				left = countdown.FormatRemaining(item.RemainingMinutes)
			}
			rows = append(rows, views.AgendaRowData{
				Account: item.AccountName,
				Section: item.SectionTitle,
				Label:   item.TaskLabel,
				When:    item.DisplayText,
				Left:    left,
				Done:    item.IsCompleted,
			})
		}
		pending, completed := agenda.Counts(items)
		fmt.Fprintln(cmd.OutOrStdout(), views.RenderAgendaTable(rows))
		fmt.Fprintf(cmd.OutOrStdout(), "%d pending, %d done\n", pending, completed)
		return nil
	}),
}

var tasksCmd = &cobra.Command{
	Use:   "tasks <account>",
	Short: "List an account's tasks with their projected completion",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(_ context.Context, e *env, cmd *cobra.Command, args []string) error {
		tasks, err := e.app.AccountTasks(args[0])
		if err != nil {
			return err
		}
		areas := make([]string, 0, len(tasks))
		rows := make([]views.TaskRowData, 0, len(tasks))
		for _, tv := range tasks {
			label := tv.Task.Label
			if label == "" {
				label = agenda.EmptyLabel
			}
			left := ""
			switch tv.Projection.Status {
			case countdown.StatusPending:
				left = countdown.FormatRemaining(tv.Projection.RemainingMinutes)
			case countdown.StatusCompleted:
				left = countdown.CompletedText
			}
			areas = append(areas, tv.SectionTitle)
			rows = append(rows, views.TaskRowData{
				Worker:     tv.Task.Worker,
				Label:      label,
				Duration:   tv.Task.Duration.String(),
				Completion: tv.Projection.DisplayText,
				Remaining:  left,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), views.RenderTaskTable(args[0], areas, rows))
		return nil
	}),
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Apply today's special task deductions",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, _ []string) error {
		res, err := e.app.CheckDeductions(ctx)
		if err != nil {
			return err
		}
		if !res.Dirty() {
			fmt.Fprintln(cmd.OutOrStdout(), "no deductions due")
			return nil
		}
		for _, entry := range res.Applied {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: -%dm on %s\n", entry.Account, entry.Kind, entry.Minutes, entry.TaskID)
		}
		return nil
	}),
}

var (
	deductionsAccount string
	deductionsLimit   int
)

var deductionsCmd = &cobra.Command{
	Use:   "deductions",
	Short: "Show the deduction journal",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, _ []string) error {
		list, err := e.app.Deductions(ctx, storage.DeductionFilter{Account: deductionsAccount, Limit: deductionsLimit})
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "journal is empty")
			return nil
		}
		for _, d := range list {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s %-16s -%4dm  %s\n", d.Day, d.Account, d.Kind, d.Minutes, d.TaskID)
		}
		return nil
	}),
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write a snapshot of every account (stdout when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			res, err := commands.Run(ctx, e.app, "export "+args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		}
		data, err := e.app.Export(ctx)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}),
}

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Replace all accounts with a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		if args[0] != "-" {
			res, err := commands.Run(ctx, e.app, "import "+args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		}
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		if err := e.app.Import(ctx, data); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "imported snapshot from stdin")
		return nil
	}),
}

var runCmd = &cobra.Command{
	Use:   "run <command...>",
	Short: "Execute one palette command, e.g. run duration main lab 1 1-2-30",
	Args:  cobra.MinimumNArgs(1),
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		res, err := commands.Run(ctx, e.app, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		return nil
	}),
}

func init() {
	deductionsCmd.Flags().StringVar(&deductionsAccount, "account", "", "only show one account")
	deductionsCmd.Flags().IntVar(&deductionsLimit, "limit", 50, "maximum entries")
}
