// Package notify is the boundary to the host's alert capability: a
// permission gate, immediate alerts, and alerts deferred to a point in time
// that can be canceled through an opaque Handle.
package notify

import (
	"context"
	"time"
)

// Handle identifies a deferred alert. NoHandle is returned when nothing was
// deferred because the alert fired immediately.
type Handle string

const NoHandle Handle = ""

const (
	TitleDueSoon = "Task due soon"
	TitleOverdue = "Task overdue"
)

type Gateway interface {
	// RequestPermission never fails; an unsupported host reports false.
	RequestPermission(ctx context.Context) bool
	// FireNow is a no-op unless permission was granted.
	FireNow(title, body string)
	// ScheduleAt fires immediately and returns NoHandle when at is not in
	// the future; otherwise onFired runs once the alert is delivered.
	ScheduleAt(body string, at time.Time, onFired func()) Handle
	// Cancel is idempotent.
	Cancel(h Handle)
}

func AlertBody(taskText string) string {
	return "Task: " + taskText
}

// Unsupported stands in for a host without any alert capability.
type Unsupported struct{}

func (Unsupported) RequestPermission(context.Context) bool { return false }

func (Unsupported) FireNow(string, string) {}

func (Unsupported) ScheduleAt(string, time.Time, func()) Handle { return NoHandle }

func (Unsupported) Cancel(Handle) {}
