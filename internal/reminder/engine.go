// Package reminder keeps one deferred alert per eligible task and reconciles
// that set whenever tasks, settings, or notification permission change.
//
// The engine is not safe for concurrent use. The host calls it from the same
// loop that mutates tasks and that delivers fired alerts.
package reminder

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kenta1114/my-todo-app/internal/duedate"
	"github.com/kenta1114/my-todo-app/internal/model"
	"github.com/kenta1114/my-todo-app/internal/notify"
)

type State string

const (
	StateDisabled State = "disabled"
	StateActive   State = "active"
)

// Source is the task collection the engine reads and the single path by
// which it writes back the reminder-sent flag.
type Source interface {
	List() []model.Task
	SetReminderSent(id string) bool
}

type timer struct {
	handle notify.Handle
	fireAt time.Time
	body   string
}

type Engine struct {
	gateway    notify.Gateway
	source     Source
	settings   model.ReminderSettings
	permission bool
	active     map[string]timer
	now        func() time.Time
	logger     *log.Logger

	reconciling bool
	rerun       bool
	latest      []model.Task
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithSettings(s model.ReminderSettings) Option {
	return func(e *Engine) {
		if s.Validate() == nil {
			e.settings = s
		}
	}
}

func New(gateway notify.Gateway, source Source, opts ...Option) *Engine {
	if gateway == nil {
		gateway = notify.Unsupported{}
	}
	e := &Engine{
		gateway:  gateway,
		source:   source,
		settings: model.DefaultReminderSettings(),
		active:   make(map[string]timer),
		now:      time.Now,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Settings() model.ReminderSettings { return e.settings }

func (e *Engine) PermissionGranted() bool { return e.permission }

func (e *Engine) State() State {
	if e.deliveryActive() {
		return StateActive
	}
	return StateDisabled
}

// NeedsPermission reports whether settings ask for delivery but permission
// has not been granted yet.
func (e *Engine) NeedsPermission() bool {
	return e.settings.Enabled && e.settings.Channel.Delivers() && !e.permission
}

func (e *Engine) ActiveCount() int { return len(e.active) }

func (e *Engine) HasTimer(taskID string) bool {
	_, ok := e.active[taskID]
	return ok
}

func (e *Engine) FireTime(taskID string) (time.Time, bool) {
	t, ok := e.active[taskID]
	return t.fireAt, ok
}

// UpdateSettings merges patch into the current settings and reconciles
// against the source's current tasks.
func (e *Engine) UpdateSettings(patch model.SettingsPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	before := e.settings
	e.settings = e.settings.Merge(patch)
	e.logger.Info("reminder settings updated",
		"enabled", e.settings.Enabled,
		"before_minutes", e.settings.BeforeMinutes,
		"channel", e.settings.Channel,
		"was_enabled", before.Enabled,
	)
	e.Refresh()
	return nil
}

// RequestPermission asks the gateway without touching engine state, so it may
// run off the host loop. Feed the answer back through SetPermission.
func (e *Engine) RequestPermission(ctx context.Context) bool {
	return e.gateway.RequestPermission(ctx)
}

func (e *Engine) SetPermission(granted bool) {
	if e.permission != granted {
		e.logger.Info("notification permission changed", "granted", granted)
	}
	e.permission = granted
	e.Refresh()
}

// Refresh reconciles against a fresh snapshot from the source.
func (e *Engine) Refresh() {
	if e.source == nil {
		e.Reconcile(nil)
		return
	}
	e.Reconcile(e.source.List())
}

// Reconcile brings the active timers into agreement with tasks. A call made
// while a pass is running (a fired alert marking its task) is folded into a
// follow-up pass over the newest snapshot.
func (e *Engine) Reconcile(tasks []model.Task) {
	if e.reconciling {
		e.latest = tasks
		e.rerun = true
		return
	}
	e.reconciling = true
	defer func() { e.reconciling = false }()

	e.reconcile(tasks)
	for e.rerun {
		e.rerun = false
		next := e.latest
		e.latest = nil
		e.reconcile(next)
	}
}

func (e *Engine) reconcile(tasks []model.Task) {
	if !e.deliveryActive() {
		if len(e.active) > 0 {
			e.logger.Debug("reminders suspended", "canceled", len(e.active))
		}
		e.ClearAll()
		return
	}

	eligible := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		if t.ReminderEligible() {
			eligible[t.ID] = t
		}
	}

	snapshot := make(map[string]timer, len(e.active))
	for id, t := range e.active {
		snapshot[id] = t
	}
	for id, t := range snapshot {
		task, ok := eligible[id]
		if !ok {
			e.cancel(id, t, "no longer eligible")
			continue
		}
		if fireAt := e.fireTime(task); !fireAt.Equal(t.fireAt) {
			e.cancel(id, t, "fire time changed")
			continue
		}
		if notify.AlertBody(task.Text) != t.body {
			e.cancel(id, t, "text changed")
		}
	}

	now := e.now()
	for _, task := range tasks {
		if _, ok := eligible[task.ID]; !ok {
			continue
		}
		if _, ok := e.active[task.ID]; ok {
			continue
		}
		fireAt := e.fireTime(task)
		if !fireAt.After(now) {
			e.logger.Debug("reminder time already passed", "task", task.ID, "fire_at", fireAt)
			continue
		}
		id := task.ID
		body := notify.AlertBody(task.Text)
		h := e.gateway.ScheduleAt(body, fireAt, func() { e.OnReminderFired(id) })
		if h == notify.NoHandle {
			continue
		}
		e.active[id] = timer{handle: h, fireAt: fireAt, body: body}
		e.logger.Debug("reminder scheduled", "task", id, "fire_at", fireAt)
	}
}

// OnReminderFired is the gateway callback for a delivered alert.
func (e *Engine) OnReminderFired(taskID string) {
	delete(e.active, taskID)
	e.logger.Info("reminder sent", "task", taskID)
	if e.source != nil {
		e.source.SetReminderSent(taskID)
	}
}

// ClearAll cancels every timer. Hosts call it on teardown.
func (e *Engine) ClearAll() {
	for id, t := range e.active {
		e.gateway.Cancel(t.handle)
		delete(e.active, id)
	}
}

func (e *Engine) ClearOne(taskID string) {
	if t, ok := e.active[taskID]; ok {
		e.cancel(taskID, t, "cleared")
	}
}

func (e *Engine) cancel(id string, t timer, reason string) {
	if cur, ok := e.active[id]; !ok || cur.handle != t.handle {
		return
	}
	e.gateway.Cancel(t.handle)
	delete(e.active, id)
	e.logger.Debug("reminder canceled", "task", id, "reason", reason)
}

func (e *Engine) fireTime(t model.Task) time.Time {
	return duedate.ReminderFireTime(*t.DueDate, e.settings.BeforeMinutes)
}

func (e *Engine) deliveryActive() bool {
	return e.settings.Enabled && e.settings.Channel.Delivers() && e.permission
}
