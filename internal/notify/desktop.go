package notify

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/kenta1114/my-todo-app/internal/scheduler"
)

// Desktop defers alerts through a scheduler.Engine and shows them with a
// Sender. Due alerts are not shown from the scheduler goroutine: the host
// reads Events() on its own loop and hands each event back to Deliver, so
// callbacks always run on the loop that owns task state.
type Desktop struct {
	engine  *scheduler.Engine
	sender  Sender
	enabled bool
	now     func() time.Time
	logger  *log.Logger

	mu      sync.Mutex
	granted bool
	pending map[Handle]func()
}

type DesktopOption func(*Desktop)

func WithDesktopClock(now func() time.Time) DesktopOption {
	return func(d *Desktop) {
		if now != nil {
			d.now = now
		}
	}
}

func WithDesktopLogger(logger *log.Logger) DesktopOption {
	return func(d *Desktop) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDesktop builds a gateway. When enabled is false permission is always
// denied, which keeps the reminder engine from scheduling anything.
func NewDesktop(engine *scheduler.Engine, sender Sender, enabled bool, opts ...DesktopOption) *Desktop {
	if sender == nil {
		sender = NoopSender{}
	}
	d := &Desktop{
		engine:  engine,
		sender:  sender,
		enabled: enabled && engine != nil,
		now:     time.Now,
		logger:  log.New(io.Discard),
		pending: make(map[Handle]func()),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Desktop) RequestPermission(ctx context.Context) bool {
	granted := d.senderReady(ctx)
	d.mu.Lock()
	d.granted = granted
	d.mu.Unlock()
	d.logger.Debug("notification permission", "granted", granted)
	return granted
}

func (d *Desktop) senderReady(ctx context.Context) (granted bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("notification availability check failed", "err", r)
			granted = false
		}
	}()
	if !d.enabled || ctx.Err() != nil {
		return false
	}
	return d.sender.Available()
}

func (d *Desktop) FireNow(title, body string) {
	d.mu.Lock()
	granted := d.granted
	d.mu.Unlock()
	if !granted {
		return
	}
	if err := d.sender.Send(title, body); err != nil {
		d.logger.Warn("alert delivery failed", "title", title, "err", err)
	}
}

func (d *Desktop) ScheduleAt(body string, at time.Time, onFired func()) Handle {
	if !at.After(d.now()) {
		d.FireNow(TitleOverdue, body)
		if onFired != nil {
			onFired()
		}
		return NoHandle
	}

	h := Handle(uuid.NewString())
	ev := scheduler.AlertEvent{ID: string(h), Title: TitleDueSoon, Body: body, TriggerAt: at}
	d.mu.Lock()
	d.pending[h] = onFired
	d.mu.Unlock()
	if err := d.engine.Schedule(ev); err != nil {
		d.mu.Lock()
		delete(d.pending, h)
		d.mu.Unlock()
		d.logger.Error("schedule alert", "at", at, "err", err)
		return NoHandle
	}
	return h
}

func (d *Desktop) Cancel(h Handle) {
	if h == NoHandle {
		return
	}
	d.mu.Lock()
	_, live := d.pending[h]
	delete(d.pending, h)
	d.mu.Unlock()
	if live {
		d.engine.Cancel(string(h))
	}
}

// Events yields alerts whose trigger time has passed; nil when no engine is
// attached.
func (d *Desktop) Events() <-chan scheduler.AlertEvent {
	if d.engine == nil {
		return nil
	}
	return d.engine.C()
}

// Deliver shows a due alert and runs its callback. It reports false for an
// alert canceled after the scheduler emitted it, so a canceled timer never
// fires.
func (d *Desktop) Deliver(ev scheduler.AlertEvent) bool {
	h := Handle(ev.ID)
	d.mu.Lock()
	onFired, live := d.pending[h]
	delete(d.pending, h)
	d.mu.Unlock()
	if !live {
		return false
	}
	d.FireNow(ev.Title, ev.Body)
	if onFired != nil {
		onFired()
	}
	return true
}

func (d *Desktop) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
