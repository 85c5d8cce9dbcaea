package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/villageclock/internal/views"
)

const commandReference = `# Commands

| command | effect |
|---|---|
| ` + "`label <acct> <area> <worker> <text>`" + ` | set or clear a slot's label |
| ` + "`duration <acct> <area> <worker> <D-H-M>`" + ` | set the duration, restarting the countdown |
| ` + "`delete <acct> <task-id>`" + ` | remove a task |
| ` + "`workers <acct> <area> <n>`" + ` | number of worker slots (0-9) |
| ` + "`level <acct> <area> <label>`" + ` | level shown next to the area |
| ` + "`special <acct> apprentice\\|lab level\\|start\\|target <v>`" + ` | configure a special task |
| ` + "`check`" + ` | apply due daily deductions now |
| ` + "`export <file>`" + ` / ` + "`import <file>`" + ` | snapshot all accounts |

Areas: ` + "`home`, `lab`, `pet`, `bb`, `star`" + ` or their full ids.
`

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
		Reference: m.helpViewport.View(),
	})
}

// loadHelpReference renders the command table once into the viewport.
func (m *Model) loadHelpReference() {
	if m.helpViewport.TotalLineCount() > 0 {
		return
	}
	m.helpViewport.SetContent(views.RenderMarkdown(commandReference))
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Dashboard, Action: "switch to Dashboard"},
		{Key: m.Keys.Accounts, Action: "switch to Accounts"},
		{Key: "/", Action: "open command palette"},
		{Key: "c", Action: "run deduction check"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewDashboard:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "enter", Action: "open task in Accounts"},
			{Key: "x", Action: "delete task"},
		}
	case ViewAccounts:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "h/l", Action: "previous/next account"},
			{Key: "z", Action: "collapse/expand area"},
			{Key: "t", Action: "target task with special task"},
			{Key: "x", Action: "delete task"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.viewBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.viewBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
