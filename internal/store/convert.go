package store

import (
	"github.com/kenta1114/my-todo-app/internal/model"
	"github.com/kenta1114/my-todo-app/internal/storage"
)

func toEntity(t model.Task) storage.Task {
	return storage.Task{
		ID:           t.ID,
		Text:         t.Text,
		Done:         t.Done,
		Priority:     string(t.Priority),
		CreatedAt:    t.CreatedAt,
		DueAt:        copyTime(t.DueDate),
		ReminderSent: t.ReminderSent,
	}
}

func fromEntity(row storage.Task) model.Task {
	p := model.Priority(row.Priority)
	if !p.IsValid() {
		p = model.PriorityMedium
	}
	return model.Task{
		ID:           row.ID,
		Text:         row.Text,
		Done:         row.Done,
		Priority:     p,
		CreatedAt:    row.CreatedAt,
		DueDate:      copyTime(row.DueAt),
		ReminderSent: row.ReminderSent,
	}
}
