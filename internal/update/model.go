package update

import (
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/log"
	"github.com/kenta1114/my-todo-app/internal/model"
	"github.com/kenta1114/my-todo-app/internal/notify"
	"github.com/kenta1114/my-todo-app/internal/reminder"
	"github.com/kenta1114/my-todo-app/internal/scheduler"
	"github.com/kenta1114/my-todo-app/internal/store"
)

type View string

const (
	ViewTasks View = "Tasks"
	ViewStats View = "Stats"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Palette    string
	Toggle     string
	Delete     string
	Stats      string
	Permission string
	Help       string
	Quit       string
}

// AlertSource delivers fired reminders back onto the update loop.
// notify.Desktop implements it.
type AlertSource interface {
	Events() <-chan scheduler.AlertEvent
	Deliver(ev scheduler.AlertEvent) bool
}

type Deps struct {
	Store  *store.Store
	Engine *reminder.Engine
	Alerts AlertSource
	Logger *log.Logger
	Now    func() time.Time
}

type Model struct {
	CurrentView View
	Keyword     string
	Palette     CommandPaletteState
	HelpVisible bool
	Status      StatusBar
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error
	LastAlert   string
	Requesting  bool

	store  *store.Store
	engine *reminder.Engine
	alerts AlertSource
	logger *log.Logger
	now    func() time.Time

	visible []model.Task
	// Bubble components used for rich TUI controls
	taskTable     table.Model
	commandInput  textinput.Model
	permSpinner   spinner.Model
	helpModel     help.Model
	statsViewport viewport.Model
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type ReminderDueMsg struct {
	Event scheduler.AlertEvent
}

type PermissionResultMsg struct {
	Granted bool
}

func NewModel(deps Deps) Model {
	if deps.Store == nil {
		deps.Store = store.New()
	}
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Engine == nil {
		deps.Engine = reminder.New(notify.Unsupported{}, deps.Store, reminder.WithClock(deps.Now))
		deps.Engine.Watch(deps.Store)
	}
	m := Model{
		CurrentView: ViewTasks,
		Keys: GlobalKeyMap{
			Palette:    "/",
			Toggle:     " ",
			Delete:     "d",
			Stats:      "s",
			Permission: "p",
			Help:       "?",
			Quit:       "q",
		},
		store:  deps.Store,
		engine: deps.Engine,
		alerts: deps.Alerts,
		logger: deps.Logger,
		now:    deps.Now,
	}
	m.Requesting = m.engine.NeedsPermission()
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

// Engine exposes the reminder engine so the host can tear it down.
func (m Model) Engine() *reminder.Engine { return m.engine }

// Visible returns the rows currently shown, in display order.
func (m Model) Visible() []model.Task { return m.visible }

func (m Model) SelectedTask() (model.Task, bool) {
	if len(m.visible) == 0 {
		return model.Task{}, false
	}
	i := m.taskTable.Cursor()
	if i < 0 || i >= len(m.visible) {
		return model.Task{}, false
	}
	return m.visible[i], true
}
