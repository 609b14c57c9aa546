// Package stats summarizes the task collection for the statistics view.
package stats

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kenta1114/my-todo-app/internal/duedate"
	"github.com/kenta1114/my-todo-app/internal/model"
)

const listLimit = 5

type PriorityCount struct {
	Total     int
	Completed int
	Pending   int
}

type Summary struct {
	Total          int
	Completed      int
	Pending        int
	CompletionRate float64
	ByPriority     map[model.Priority]PriorityCount

	Overdue  int
	DueToday int
	Upcoming int

	RecentCompleted []model.Task
	Urgent          []model.Task
}

func Compute(tasks []model.Task, now time.Time) Summary {
	s := Summary{
		Total: len(tasks),
		ByPriority: map[model.Priority]PriorityCount{
			model.PriorityHigh:   {},
			model.PriorityMedium: {},
			model.PriorityLow:    {},
		},
	}

	var done, urgent []model.Task
	for _, t := range tasks {
		pc := s.ByPriority[t.Priority]
		pc.Total++
		if t.Done {
			s.Completed++
			pc.Completed++
			done = append(done, t)
		} else {
			pc.Pending++
		}
		if t.Priority.IsValid() {
			s.ByPriority[t.Priority] = pc
		}

		if t.Done || !t.HasDueDate() {
			continue
		}
		switch duedate.StatusOf(*t.DueDate, now) {
		case duedate.StatusOverdue:
			s.Overdue++
			urgent = append(urgent, t)
		case duedate.StatusToday:
			s.DueToday++
			urgent = append(urgent, t)
		default:
			s.Upcoming++
		}
	}
	s.Pending = s.Total - s.Completed
	if s.Total > 0 {
		s.CompletionRate = float64(s.Completed) / float64(s.Total) * 100
	}

	slices.SortStableFunc(done, func(a, b model.Task) int { return b.CreatedAt.Compare(a.CreatedAt) })
	slices.SortStableFunc(urgent, func(a, b model.Task) int { return a.DueDate.Compare(*b.DueDate) })
	s.RecentCompleted = head(done, listLimit)
	s.Urgent = head(urgent, listLimit)
	return s
}

func head(tasks []model.Task, n int) []model.Task {
	if len(tasks) > n {
		tasks = tasks[:n]
	}
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Clone())
	}
	return out
}

// Markdown renders the summary for the glamour viewport.
func (s Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("# Statistics\n\n")
	fmt.Fprintf(&b, "**%d** tasks, **%d** completed, **%d** pending (%.0f%% done)\n\n",
		s.Total, s.Completed, s.Pending, s.CompletionRate)

	b.WriteString("## By priority\n\n")
	b.WriteString("| Priority | Total | Completed | Pending |\n|---|---|---|---|\n")
	for _, p := range []model.Priority{model.PriorityHigh, model.PriorityMedium, model.PriorityLow} {
		pc := s.ByPriority[p]
		fmt.Fprintf(&b, "| %s | %d | %d | %d |\n", p, pc.Total, pc.Completed, pc.Pending)
	}

	b.WriteString("\n## Deadlines\n\n")
	fmt.Fprintf(&b, "- Overdue: %d\n- Due today: %d\n- Upcoming: %d\n", s.Overdue, s.DueToday, s.Upcoming)

	b.WriteString("\n## Urgent\n\n")
	if len(s.Urgent) == 0 {
		b.WriteString("_Nothing urgent._\n")
	}
	for _, t := range s.Urgent {
		fmt.Fprintf(&b, "- %s (%s, due %s)\n", t.Text, t.Priority, duedate.Format(*t.DueDate))
	}

	b.WriteString("\n## Recently completed\n\n")
	if len(s.RecentCompleted) == 0 {
		b.WriteString("_No completed tasks yet._\n")
	}
	for _, t := range s.RecentCompleted {
		fmt.Fprintf(&b, "- ~~%s~~\n", t.Text)
	}
	return b.String()
}
