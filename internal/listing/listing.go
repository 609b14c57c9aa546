// Package listing derives the visible task list from the store contents and
// the current search keyword. Inputs are never mutated.
package listing

import (
	"slices"
	"strings"
	"time"

	"github.com/kenta1114/my-todo-app/internal/duedate"
	"github.com/kenta1114/my-todo-app/internal/model"
)

// Filter keeps tasks whose text contains keyword, ignoring case. An empty
// keyword keeps everything.
func Filter(tasks []model.Task, keyword string) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	if keyword == "" {
		return append(out, tasks...)
	}
	needle := strings.ToLower(keyword)
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Text), needle) {
			out = append(out, t)
		}
	}
	return out
}

// Sort returns a stably sorted copy. Overdue tasks lead only when both sides
// carry a due date; then higher priority; then earlier due date, with dated
// tasks ahead of undated ones.
func Sort(tasks []model.Task, now time.Time) []model.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b model.Task) int {
		return compare(a, b, now)
	})
	return out
}

func Visible(tasks []model.Task, keyword string, now time.Time) []model.Task {
	return Sort(Filter(tasks, keyword), now)
}

func compare(a, b model.Task, now time.Time) int {
	aDue, bDue := a.HasDueDate(), b.HasDueDate()

	if aDue && bDue {
		aOver := duedate.IsOverdue(*a.DueDate, now)
		bOver := duedate.IsOverdue(*b.DueDate, now)
		if aOver != bOver {
			if aOver {
				return -1
			}
			return 1
		}
	}

	if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
		return rb - ra
	}

	switch {
	case aDue && bDue:
		return a.DueDate.Compare(*b.DueDate)
	case aDue:
		return -1
	case bDue:
		return 1
	}
	return 0
}
