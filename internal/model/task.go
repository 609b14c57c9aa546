package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidPriority = errors.New("model: invalid task priority")
	ErrEmptyText       = errors.New("model: task text is required")
)

type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Rank orders priorities for sorting: HIGH(3) > MEDIUM(2) > LOW(1).
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ParsePriority accepts the canonical names plus the short forms used on the
// command line.
func ParsePriority(raw string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high", "h", "3":
		return PriorityHigh, nil
	case "medium", "med", "m", "2":
		return PriorityMedium, nil
	case "low", "l", "1":
		return PriorityLow, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}
}

type Task struct {
	ID           string
	Text         string
	Done         bool
	Priority     Priority
	CreatedAt    time.Time
	DueDate      *time.Time
	ReminderSent bool
}

func (t Task) HasDueDate() bool {
	return t.DueDate != nil && !t.DueDate.IsZero()
}

// ReminderEligible reports whether the task is a candidate for a reminder
// timer: pending, has a deadline, and has not been reminded yet.
func (t Task) ReminderEligible() bool {
	return !t.Done && t.HasDueDate() && !t.ReminderSent
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Text) == "" {
		return ErrEmptyText
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	return nil
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	out := t
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	return out
}

func SameDueDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeEdited   ChangeKind = "edited"
	ChangeToggled  ChangeKind = "toggled"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeReplaced ChangeKind = "replaced"
	ChangeReminded ChangeKind = "reminded"
)

// Change describes one mutation of the task collection.
type Change struct {
	Kind   ChangeKind
	TaskID string
}
