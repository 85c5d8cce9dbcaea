package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/villageclock/internal/agenda"
	"github.com/sandeepkv93/villageclock/internal/countdown"
	"github.com/sandeepkv93/villageclock/internal/views"
)

func (m Model) handleDashboardKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "j", "down":
		if m.AgendaCursor < len(m.Agenda)-1 {
			m.AgendaCursor++
		}
	case "k", "up":
		if m.AgendaCursor > 0 {
			m.AgendaCursor--
		}
	case "enter":
		m.openSelectedAgendaAccount()
	case "x":
		m.deleteSelectedAgendaItem()
	}
	return m
}

// deleteSelectedAgendaItem removes the agenda item's task from its
// account and drops any pending alert for it.
func (m *Model) deleteSelectedAgendaItem() {
	item, ok := m.currentAgendaItem()
	if !ok {
		return
	}
	removed, err := m.App.DeleteTask(m.ctx, item.AccountName, item.TaskID)
	if err != nil {
		m.fail(err)
		return
	}
	if m.Scheduler != nil {
		m.Scheduler.Cancel(item.TaskID)
	}
	if removed {
		m.Status = StatusBar{Text: fmt.Sprintf("deleted %s from %s", labelOrPlaceholder(item.TaskLabel), item.AccountName)}
	}
	m.refresh()
}

func (m Model) currentAgendaItem() (agenda.Item, bool) {
	if len(m.Agenda) == 0 {
		return agenda.Item{}, false
	}
	return m.Agenda[clampCursor(m.AgendaCursor, len(m.Agenda))], true
}

// openSelectedAgendaAccount jumps to the Accounts view with the agenda
// item's task selected.
func (m *Model) openSelectedAgendaAccount() {
	item, ok := m.currentAgendaItem()
	if !ok {
		return
	}
	for i, name := range m.AccountNames {
		if name == item.AccountName {
			m.AccountCursor = i
		}
	}
	m.CurrentView = ViewAccounts
	m.refresh()
	for i, row := range m.Rows {
		if row.Task != nil && row.Task.Task.ID == item.TaskID {
			m.RowCursor = i
			break
		}
	}
}

func (m Model) renderDashboardView() string {
	pending, completed := agenda.Counts(m.Agenda)
	data := views.DashboardPanelData{
		TableView: m.agendaTable.View(),
		Pending:   pending,
		Completed: completed,
	}
	for i, item := range m.Agenda {
		left := countdown.CompletedText
		if !item.IsCompleted {
			left = countdown.FormatRemaining(item.RemainingMinutes)
		}
		data.Items = append(data.Items, views.AgendaRowData{
			Account:  item.AccountName,
			Section:  item.SectionTitle,
			Label:    item.TaskLabel,
			When:     item.DisplayText,
			Left:     left,
			Done:     item.IsCompleted,
			Selected: i == m.AgendaCursor,
		})
	}
	return views.RenderDashboardPanel(data)
}

func (m Model) renderAgendaDetailPane() string {
	item, ok := m.currentAgendaItem()
	if !ok {
		return "details:\n(nothing due inside the horizon)"
	}
	return fmt.Sprintf("details:\naccount: %s\narea: %s\ntask: %s\ndone at: %s\nid: %s\n\n[enter] open in accounts",
		item.AccountName, item.SectionTitle, item.TaskLabel,
		item.CompletionAt.Format("01/02 15:04"), item.TaskID)
}
