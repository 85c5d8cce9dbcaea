package views

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// RenderAgendaTable renders agenda rows as a bordered table for
// non-interactive output.
func RenderAgendaTable(rows []AgendaRowData) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ACCOUNT", "AREA", "TASK", "DONE AT", "LEFT")
	for _, r := range rows {
		t.Row(r.Account, r.Section, r.Label, r.When, r.Left)
	}
	return t.Render()
}

func RenderTaskTable(account string, areas []string, rows []TaskRowData) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("AREA", "WORKER", "TASK", "DURATION", "DONE AT", "LEFT")
	for i, r := range rows {
		t.Row(areas[i], fmt.Sprintf("%d", r.Worker), r.Label, r.Duration, r.Completion, r.Remaining)
	}
	return headerStyle.Render(account) + "\n" + t.Render()
}
