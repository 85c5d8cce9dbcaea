package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/villageclock/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.tickInterval), m.liveSpinner.Tick}
	if m.Scheduler != nil {
		cmds = append(cmds, waitForCompletionCmd(m.Scheduler.C()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.toggleHelp()
				return m, nil
			}
			next := m.handlePaletteKey(typed)
			return next, nil
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active", IsError: false}
			return m, nil
		case m.Keys.Dashboard:
			m.CurrentView = ViewDashboard
			return m, nil
		case m.Keys.Accounts:
			m.CurrentView = ViewAccounts
			return m, nil
		case m.Keys.Help:
			m.toggleHelp()
			return m, nil
		case "c":
			if applied, err := m.runCheck(); err == nil && !applied {
				m.Status = StatusBar{Text: "no deductions due"}
			}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		if m.HelpVisible {
			switch typed.String() {
			case "pgdown", "pgup", "ctrl+d", "ctrl+u":
				var cmd tea.Cmd
				m.helpViewport, cmd = m.helpViewport.Update(typed)
				return m, cmd
			}
		}
		if m.CurrentView == ViewDashboard {
			next := m.handleDashboardKey(typed)
			next.syncBubbleData()
			return next, nil
		}
		if m.CurrentView == ViewAccounts {
			next := m.handleAccountsKey(typed)
			next.syncBubbleData()
			return next, nil
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.liveSpinner, cmd = m.liveSpinner.Update(typed)
		return m, cmd
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.fail(typed.Err)
		return m, nil
	case TickMsg:
		return m.onTick()
	case CompletionDueMsg:
		return m.onCompletionDue(typed.Event)
	}

	return m, nil
}

func (m *Model) toggleHelp() {
	m.HelpVisible = !m.HelpVisible
	if m.HelpVisible {
		m.loadHelpReference()
		m.Status = StatusBar{Text: "help shown", IsError: false}
	} else {
		m.Status = StatusBar{Text: "help hidden", IsError: false}
	}
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	leftPane := ""
	rightPane := ""
	switch m.CurrentView {
	case ViewDashboard:
		leftPane = m.renderDashboardView()
		rightPane = m.renderAgendaDetailPane()
	case ViewAccounts:
		leftPane = m.renderAccountsView()
		rightPane = m.renderTaskDetailPane()
	}
	rightPane = strings.TrimSpace(strings.Join([]string{rightPane, m.renderCommandPalette(), m.renderHelpIfVisible()}, "\n\n"))

	badge := ""
	if m.Scheduler != nil {
		badge = fmt.Sprintf("%s %d alerts armed", m.liveSpinner.View(), m.Scheduler.Pending())
	}
	account := ""
	if m.Account.Name != "" {
		account = fmt.Sprintf(" | account: %s", m.Account.Name)
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("villageclock | view: %s%s", m.CurrentView, account),
		Badge:        badge,
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		Notification: strings.TrimSpace(m.renderNotificationsView()),
		Footer:       fmt.Sprintf("keys: %s dashboard | %s accounts | / cmd | c check | %s help | %s quit", m.Keys.Dashboard, m.Keys.Accounts, m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewDashboard, ViewAccounts:
		return true
	default:
		return false
	}
}
