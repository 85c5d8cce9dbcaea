package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/villageclock/internal/scheduler"
	"github.com/sandeepkv93/villageclock/internal/update"
	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, args []string) error {
	return withEnv(launchTUI)(cmd, args)
}

func launchTUI(_ context.Context, e *env, _ *cobra.Command, _ []string) error {
	engine := scheduler.NewEngine(e.cfg.SchedulerBuffer)
	engine.Start()
	defer engine.Stop()

	model := update.NewModel(e.app, engine, update.Options{
		TickInterval:         e.cfg.TickInterval(),
		DesktopNotifications: e.cfg.DesktopNotifications,
		Notifier:             update.ExecDesktopNotifier{},
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
