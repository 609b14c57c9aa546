package storage

import "time"

type Task struct {
	ID           string
	Text         string
	Done         bool
	Priority     string
	CreatedAt    time.Time
	DueAt        *time.Time
	ReminderSent bool
}

type TaskListFilter struct {
	Done   *bool
	Limit  int
	Offset int
}
