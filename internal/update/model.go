package update

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/sandeepkv93/villageclock/internal/agenda"
	"github.com/sandeepkv93/villageclock/internal/app"
	"github.com/sandeepkv93/villageclock/internal/scheduler"
)

type View string

const (
	ViewDashboard View = "Dashboard"
	ViewAccounts  View = "Accounts"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Dashboard string
	Accounts  string
	Help      string
	Quit      string
}

type Options struct {
	TickInterval         time.Duration
	DesktopNotifications bool
	Notifier             DesktopNotifier
}

type Model struct {
	CurrentView    View
	App            *app.App
	Scheduler      *scheduler.Engine
	Agenda         []agenda.Item
	AgendaCursor   int
	AccountNames   []string
	AccountCursor  int
	Account        app.AccountView
	Rows           []AccountRow
	RowCursor      int
	Palette        CommandPaletteState
	HelpVisible    bool
	Notifications  []Notification
	DesktopEnabled bool
	notifier       DesktopNotifier
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error
	tickInterval   time.Duration
	ctx            context.Context
	// Bubble components used for rich TUI controls
	agendaTable  table.Model
	accountList  list.Model
	commandInput textinput.Model
	taskProgress progress.Model
	liveSpinner  spinner.Model
	helpModel    help.Model
	helpViewport viewport.Model
}

// AccountRow is one line of the Accounts view: a section header, or a
// task inside an expanded section.
type AccountRow struct {
	Section int
	Task    *app.TaskView
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// TickMsg drives the periodic deduction check and projection refresh.
type TickMsg struct {
	At time.Time
}

type CompletionDueMsg struct {
	Event scheduler.CompletionEvent
}

func NewModel(a *app.App, engine *scheduler.Engine, opts Options) Model {
	m := Model{
		CurrentView:    ViewDashboard,
		App:            a,
		Scheduler:      engine,
		AccountNames:   a.AccountNames(),
		DesktopEnabled: opts.DesktopNotifications,
		notifier:       NoopDesktopNotifier{},
		tickInterval:   opts.TickInterval,
		ctx:            context.Background(),
		Keys: GlobalKeyMap{
			Dashboard: "1",
			Accounts:  "2",
			Help:      "?",
			Quit:      "q",
		},
	}
	if opts.Notifier != nil {
		m.notifier = opts.Notifier
	}
	if m.tickInterval <= 0 {
		m.tickInterval = 30 * time.Second
	}
	m.initBubbleComponents()
	// deductions already due show up before the first tick
	_, _ = m.runCheck()
	m.syncScheduler()
	return m
}
