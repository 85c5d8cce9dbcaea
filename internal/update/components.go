package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/sandeepkv93/villageclock/internal/countdown"
)

func (m *Model) initBubbleComponents() {
	cols := []table.Column{
		{Title: "Account", Width: 8},
		{Title: "Area", Width: 12},
		{Title: "Task", Width: 16},
		{Title: "Done", Width: 11},
		{Title: "Left", Width: 6},
	}
	m.agendaTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(12))

	m.accountList = list.New([]list.Item{}, list.NewDefaultDelegate(), 56, 8)
	m.accountList.Title = "Accounts"
	m.accountList.SetShowHelp(false)
	m.accountList.SetFilteringEnabled(false)

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.taskProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(24))

	m.liveSpinner = spinner.New()
	m.liveSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.helpViewport = viewport.New(56, 14)
}

// refresh reloads the agenda and the selected account from the app.
func (m *Model) refresh() {
	if m.App == nil {
		return
	}
	m.Agenda = m.App.Agenda()
	m.AgendaCursor = clampCursor(m.AgendaCursor, len(m.Agenda))

	m.AccountCursor = clampCursor(m.AccountCursor, len(m.AccountNames))
	if len(m.AccountNames) > 0 {
		view, err := m.App.AccountView(m.AccountNames[m.AccountCursor])
		if err != nil {
			m.LastError = err
			m.Status = StatusBar{Text: err.Error(), IsError: true}
		} else {
			m.Account = view
		}
	}
	m.Rows = buildRows(m.Account.Sections)
	m.RowCursor = clampCursor(m.RowCursor, len(m.Rows))
	m.syncBubbleData()
}

func (m *Model) syncScheduler() {
	if m.Scheduler == nil || m.App == nil {
		return
	}
	if err := m.Scheduler.Sync(m.App.UpcomingCompletions()); err != nil {
		m.LastError = err
	}
}

func (m *Model) syncBubbleData() {
	rows := make([]table.Row, 0, len(m.Agenda))
	for _, item := range m.Agenda {
		left := countdown.CompletedText
		if !item.IsCompleted {
			left = countdown.FormatRemaining(item.RemainingMinutes)
		}
		rows = append(rows, table.Row{item.AccountName, item.SectionTitle, item.TaskLabel, item.DisplayText, left})
	}
	m.agendaTable.SetRows(rows)
	if len(rows) > 0 {
		m.agendaTable.SetCursor(m.AgendaCursor)
	}

	items := make([]list.Item, 0, len(m.AccountNames))
	for i, name := range m.AccountNames {
		desc := ""
		if i == m.AccountCursor {
			desc = fmt.Sprintf("%d tasks", m.taskCount())
		}
		items = append(items, listItem{title: name, description: desc})
	}
	m.accountList.SetItems(items)
	if len(items) > 0 {
		m.accountList.Select(m.AccountCursor)
	}
}

func (m Model) taskCount() int {
	n := 0
	for _, sec := range m.Account.Sections {
		n += len(sec.Tasks)
	}
	return n
}
