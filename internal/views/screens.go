package views

import (
	"fmt"
	"strings"
)

type AgendaRowData struct {
	Account  string
	Section  string
	Label    string
	When     string
	Left     string
	Done     bool
	Selected bool
}

type DashboardPanelData struct {
	TableView string
	Items     []AgendaRowData
	Pending   int
	Completed int
}

type TaskRowData struct {
	Worker     int
	Label      string
	Duration   string
	Completion string
	Remaining  string
	Selected   bool
}

type SectionPanelData struct {
	Title     string
	Level     string
	Unit      string
	Workers   int
	Collapsed bool
	Selected  bool
	Rows      []TaskRowData
}

type SpecialRowData struct {
	Kind   string
	Level  int
	Start  string
	Target string
}

type AccountPanelData struct {
	ListView string
	Name     string
	Avatar   string
	Sections []SectionPanelData
	Specials []SpecialRowData
}

type TaskDetailData struct {
	ID           string
	Section      string
	Worker       int
	Label        string
	Duration     string
	EnteredAt    string
	Deducted     int
	Completion   string
	ProgressView string
	ProgressPct  int
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
	Reference   string
}

func RenderDashboardPanel(data DashboardPanelData) string {
	var b strings.Builder
	b.WriteString("dashboard:\n")
	b.WriteString(fmt.Sprintf("pending: %d | done: %d\n", data.Pending, data.Completed))
	b.WriteString("actions: [j/k]move [enter]open [x]delete [c]check [/]command\n")
	if len(data.Items) == 0 {
		b.WriteString("(nothing due inside the horizon)")
		return b.String()
	}
	if strings.TrimSpace(data.TableView) != "" {
		b.WriteString(data.TableView)
		return strings.TrimSpace(b.String())
	}
	for _, item := range data.Items {
		cursor := " "
		if item.Selected {
			cursor = ">"
		}
		when := pendingStyle.Render(item.When)
		if item.Done {
			when = doneStyle.Render(item.When)
		}
		b.WriteString(fmt.Sprintf("%s %s %-10s %-14s %s (%s)\n", cursor, when, item.Account, item.Section, item.Label, item.Left))
	}
	return strings.TrimSpace(b.String())
}

func RenderAccountPanel(data AccountPanelData) string {
	var b strings.Builder
	b.WriteString(data.ListView + "\n")
	b.WriteString(fmt.Sprintf("account: %s", data.Name))
	if data.Avatar != "" {
		b.WriteString(mutedStyle.Render(" (" + data.Avatar + ")"))
	}
	b.WriteString("\nactions: [h/l]account [j/k]move [z]collapse [t]target [x]delete\n")
	for _, sec := range data.Sections {
		cursor := " "
		if sec.Selected {
			cursor = ">"
		}
		fold := "v"
		if sec.Collapsed {
			fold = ">"
		}
		b.WriteString(fmt.Sprintf("\n%s %s %s %s %s | workers: %d\n", cursor, fold, sec.Title, sec.Unit, sec.Level, sec.Workers))
		if sec.Collapsed {
			continue
		}
		if len(sec.Rows) == 0 {
			b.WriteString(mutedStyle.Render("    (idle)") + "\n")
			continue
		}
		for _, row := range sec.Rows {
			rc := " "
			if row.Selected {
				rc = ">"
			}
			b.WriteString(fmt.Sprintf("%s   #%d %-18s %-8s %s", rc, row.Worker, row.Label, row.Duration, row.Completion))
			if row.Remaining != "" && row.Remaining != row.Completion {
				b.WriteString(" " + mutedStyle.Render(row.Remaining))
			}
			b.WriteString("\n")
		}
	}
	if len(data.Specials) > 0 {
		b.WriteString("\nspecial tasks:\n")
		for _, sp := range data.Specials {
			target := sp.Target
			if target == "" {
				target = "(none)"
			}
			b.WriteString(fmt.Sprintf("- %s lv%d after %s -> %s\n", sp.Kind, sp.Level, sp.Start, target))
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderTaskDetail(data TaskDetailData) string {
	entered := data.EnteredAt
	if entered == "" {
		entered = "(not started)"
	}
	return fmt.Sprintf("task:\nid: %s\narea: %s #%d\nlabel: %s\nduration: %s\nentered: %s\ndeducted: %dm\ncompletion: %s\nprogress: %s %d%%",
		data.ID,
		data.Section,
		data.Worker,
		data.Label,
		data.Duration,
		entered,
		data.Deducted,
		data.Completion,
		data.ProgressView,
		data.ProgressPct,
	)
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: %s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	out := fmt.Sprintf("help:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
	if strings.TrimSpace(data.Reference) != "" {
		out += "\n\n" + data.Reference
	}
	return out
}
