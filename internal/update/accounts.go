package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/villageclock/internal/agenda"
	"github.com/sandeepkv93/villageclock/internal/app"
	"github.com/sandeepkv93/villageclock/internal/countdown"
	"github.com/sandeepkv93/villageclock/internal/model"
	"github.com/sandeepkv93/villageclock/internal/views"
)

func buildRows(sections []app.SectionView) []AccountRow {
	rows := make([]AccountRow, 0)
	for i := range sections {
		rows = append(rows, AccountRow{Section: i})
		if sections[i].Collapsed {
			continue
		}
		for j := range sections[i].Tasks {
			rows = append(rows, AccountRow{Section: i, Task: &sections[i].Tasks[j]})
		}
	}
	return rows
}

func (m Model) currentRow() (AccountRow, bool) {
	if len(m.Rows) == 0 {
		return AccountRow{}, false
	}
	return m.Rows[clampCursor(m.RowCursor, len(m.Rows))], true
}

func (m Model) handleAccountsKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "j", "down":
		if m.RowCursor < len(m.Rows)-1 {
			m.RowCursor++
		}
	case "k", "up":
		if m.RowCursor > 0 {
			m.RowCursor--
		}
	case "tab", "]", "l":
		m.shiftAccount(1)
	case "shift+tab", "[", "h":
		m.shiftAccount(-1)
	case "z":
		m.toggleSelectedSection()
	case "t":
		m.targetSelectedTask()
	case "x":
		m.deleteSelectedTask()
	}
	return m
}

func (m *Model) shiftAccount(delta int) {
	n := len(m.AccountNames)
	if n == 0 {
		return
	}
	m.AccountCursor = (m.AccountCursor + delta + n) % n
	m.RowCursor = 0
	m.refresh()
}

func (m *Model) toggleSelectedSection() {
	row, ok := m.currentRow()
	if !ok {
		return
	}
	sec := m.Account.Sections[row.Section]
	collapsed, err := m.App.ToggleCollapsed(m.ctx, m.Account.Name, sec.Config.ID)
	if err != nil {
		m.fail(err)
		return
	}
	m.refresh()
	for i, r := range m.Rows {
		if r.Task == nil && r.Section == row.Section {
			m.RowCursor = i
			break
		}
	}
	state := "expanded"
	if collapsed {
		state = "collapsed"
	}
	m.Status = StatusBar{Text: fmt.Sprintf("%s %s", sec.Config.Title, state)}
}

// targetSelectedTask points the special task bound to the selected
// task's section at it.
func (m *Model) targetSelectedTask() {
	row, ok := m.currentRow()
	if !ok || row.Task == nil {
		m.Status = StatusBar{Text: "select a task to target", IsError: true}
		return
	}
	var kind model.SpecialKind
	for _, k := range model.SpecialKinds() {
		if k.Section() == row.Task.Task.Section {
			kind = k
		}
	}
	if kind == "" {
		m.Status = StatusBar{Text: fmt.Sprintf("no special task works on %s", row.Task.SectionTitle), IsError: true}
		return
	}
	if err := m.App.SetSpecialTarget(m.ctx, m.Account.Name, kind, row.Task.Task.ID); err != nil {
		m.fail(err)
		return
	}
	m.Status = StatusBar{Text: fmt.Sprintf("%s now targets %s", kind, labelOrPlaceholder(row.Task.Task.Label))}
	m.refresh()
}

func (m *Model) deleteSelectedTask() {
	row, ok := m.currentRow()
	if !ok || row.Task == nil {
		return
	}
	id := row.Task.Task.ID
	if _, err := m.App.DeleteTask(m.ctx, m.Account.Name, id); err != nil {
		m.fail(err)
		return
	}
	if m.Scheduler != nil {
		m.Scheduler.Cancel(id)
	}
	m.Status = StatusBar{Text: fmt.Sprintf("deleted %s", labelOrPlaceholder(row.Task.Task.Label))}
	m.refresh()
}

func (m Model) renderAccountsView() string {
	data := views.AccountPanelData{
		ListView: m.accountList.View(),
		Name:     m.Account.Name,
		Avatar:   m.Account.Avatar,
	}
	for i, sec := range m.Account.Sections {
		sd := views.SectionPanelData{
			Title:     sec.Config.Title,
			Level:     sec.Level,
			Unit:      sec.Config.Unit,
			Workers:   sec.Workers,
			Collapsed: sec.Collapsed,
			Selected:  m.isSelected(i, nil),
		}
		for j := range sec.Tasks {
			tv := &sec.Tasks[j]
			sd.Rows = append(sd.Rows, views.TaskRowData{
				Worker:     tv.Task.Worker,
				Label:      labelOrPlaceholder(tv.Task.Label),
				Duration:   tv.Task.Duration.String(),
				Completion: tv.Projection.DisplayText,
				Remaining:  remainingText(tv.Projection),
				Selected:   m.isSelected(i, tv),
			})
		}
		data.Sections = append(data.Sections, sd)
	}
	for _, sp := range m.Account.Specials {
		data.Specials = append(data.Specials, views.SpecialRowData{
			Kind:   string(sp.Kind),
			Level:  sp.Task.Level,
			Start:  sp.Task.StartTime.String(),
			Target: sp.TargetLabel,
		})
	}
	return views.RenderAccountPanel(data)
}

func (m Model) isSelected(section int, task *app.TaskView) bool {
	row, ok := m.currentRow()
	if !ok || row.Section != section {
		return false
	}
	if task == nil || row.Task == nil {
		return task == nil && row.Task == nil
	}
	return row.Task.Task.ID == task.Task.ID
}

func (m Model) renderTaskDetailPane() string {
	row, ok := m.currentRow()
	if !ok || row.Task == nil {
		return "task:\n(no task selected)"
	}
	tv := row.Task
	entry := ""
	if tv.Task.EntryTimestamp != nil {
		entry = tv.Task.EntryTimestamp.Format("01/02 15:04")
	}
	return views.RenderTaskDetail(views.TaskDetailData{
		ID:           tv.Task.ID,
		Section:      tv.SectionTitle,
		Worker:       tv.Task.Worker,
		Label:        labelOrPlaceholder(tv.Task.Label),
		Duration:     tv.Task.Duration.String(),
		EnteredAt:    entry,
		Deducted:     tv.Task.TotalDeductedMinutes,
		Completion:   tv.Projection.DisplayText,
		ProgressView: m.taskProgress.ViewAs(tv.Progress),
		ProgressPct:  int(tv.Progress * 100),
	})
}

func remainingText(p countdown.Projection) string {
	switch p.Status {
	case countdown.StatusPending:
		return countdown.FormatRemaining(p.RemainingMinutes)
	case countdown.StatusCompleted:
		return countdown.CompletedText
	default:
		return ""
	}
}

func labelOrPlaceholder(label string) string {
	if label == "" {
		return agenda.EmptyLabel
	}
	return label
}
