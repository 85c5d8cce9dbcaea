package update

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/villageclock/internal/agenda"
	"github.com/sandeepkv93/villageclock/internal/scheduler"
	"github.com/sandeepkv93/villageclock/internal/views"
)

func waitForCompletionCmd(ch <-chan scheduler.CompletionEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return CompletionDueMsg{Event: ev}
	}
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return TickMsg{At: t} })
}

func (m Model) onTick() (tea.Model, tea.Cmd) {
	_, _ = m.runCheck()
	return m, tickCmd(m.tickInterval)
}

// runCheck applies due daily deductions and refreshes every projection.
func (m *Model) runCheck() (bool, error) {
	res, err := m.App.CheckDeductions(m.ctx)
	if err != nil {
		m.fail(err)
	} else if res.Dirty() {
		body := fmt.Sprintf("applied %d deductions (%d minutes)", len(res.Applied), res.TotalMinutes())
		m.Status = StatusBar{Text: body}
		m.notify("Deductions", body, "info")
		m.syncScheduler()
	}
	m.refresh()
	return res.Dirty(), err
}

func (m Model) onCompletionDue(ev scheduler.CompletionEvent) (tea.Model, tea.Cmd) {
	label := ev.Label
	if label == "" {
		label = agenda.EmptyLabel
	}
	body := fmt.Sprintf("%s: %s finished in %s", ev.Account, label, ev.SectionTitle)
	m.Status = StatusBar{Text: body}
	m.notify("Task complete", body, "info")
	m.refresh()
	if m.Scheduler != nil {
		return m, waitForCompletionCmd(m.Scheduler.C())
	}
	return m, nil
}

func (m *Model) fail(err error) {
	if err == nil {
		return
	}
	m.LastError = err
	m.Status = StatusBar{Text: err.Error(), IsError: true}
	m.notify("Error", err.Error(), "error")
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Level, n.Title+": "+n.Body)
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	n := Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    m.App.Now(),
	}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
	if m.DesktopEnabled && m.notifier != nil {
		_ = m.notifier.Send(n)
	}
}
