package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/kenta1114/my-todo-app/internal/duedate"
	"github.com/kenta1114/my-todo-app/internal/listing"
	"github.com/kenta1114/my-todo-app/internal/stats"
	"github.com/kenta1114/my-todo-app/internal/views"
)

func (m *Model) initBubbleComponents() {
	cols := []table.Column{
		{Title: "#", Width: 3},
		{Title: "", Width: 1},
		{Title: "Pri", Width: 4},
		{Title: "Due", Width: 12},
		{Title: "", Width: 4},
		{Title: "Task", Width: 30},
	}
	m.taskTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(14))

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.Placeholder = "add !high @tomorrow pay rent"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 56

	m.permSpinner = spinner.New()
	m.permSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.statsViewport = viewport.New(62, 18)
}

// syncBubbleData recomputes the visible list and pushes it into the table.
func (m *Model) syncBubbleData() {
	now := m.now()
	m.visible = listing.Visible(m.store.List(), m.Keyword, now)

	rows := make([]table.Row, 0, len(m.visible))
	for i, t := range m.visible {
		check := " "
		if t.Done {
			check = "x"
		}
		due, flag := "", ""
		if t.HasDueDate() {
			due = duedate.Format(*t.DueDate)
			if !t.Done {
				flag = statusFlag(duedate.StatusOf(*t.DueDate, now))
			}
		}
		rows = append(rows, table.Row{fmt.Sprintf("%d", i+1), check, priorityLabel(string(t.Priority)), due, flag, t.Text})
	}
	m.taskTable.SetRows(rows)
	if c := m.taskTable.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.taskTable.SetCursor(len(rows) - 1)
	}

	if m.CurrentView == ViewStats {
		summary := stats.Compute(m.store.List(), now)
		m.statsViewport.SetContent(views.RenderMarkdown(summary.Markdown()))
	}
}

func statusFlag(s duedate.Status) string {
	switch s {
	case duedate.StatusOverdue:
		return "LATE"
	case duedate.StatusToday:
		return "TDY"
	case duedate.StatusWarning:
		return "SOON"
	default:
		return ""
	}
}

func priorityLabel(p string) string {
	switch p {
	case "HIGH":
		return "HI"
	case "LOW":
		return "LO"
	default:
		return "MED"
	}
}

func (m Model) renderTaskList() string {
	return views.RenderTaskList(views.TaskListData{
		TableView: m.taskTable.View(),
		Keyword:   m.Keyword,
		Shown:     len(m.visible),
		Total:     m.store.Len(),
	})
}

func (m Model) renderTaskDetail() string {
	t, ok := m.SelectedTask()
	if !ok {
		return views.RenderTaskDetail(views.TaskDetailData{})
	}
	now := m.now()
	data := views.TaskDetailData{
		ID:           t.ID,
		Text:         t.Text,
		Priority:     string(t.Priority),
		Done:         t.Done,
		Created:      duedate.Format(t.CreatedAt),
		ReminderSent: t.ReminderSent,
		HasDue:       t.HasDueDate(),
	}
	if data.HasDue {
		data.Due = duedate.Format(*t.DueDate)
		data.DueStatus = duedate.StatusOf(*t.DueDate, now)
		data.DaysLeft = duedate.DaysUntil(*t.DueDate, now)
	}
	if fireAt, ok := m.engine.FireTime(t.ID); ok {
		data.HasTimer = true
		data.FireAt = duedate.Format(fireAt)
	}
	return views.RenderTaskDetail(data)
}

func (m Model) renderReminderPanel() string {
	s := m.engine.Settings()
	return views.RenderReminderPanel(views.ReminderPanelData{
		State:           string(m.engine.State()),
		Enabled:         s.Enabled,
		BeforeMinutes:   s.BeforeMinutes,
		Channel:         string(s.Channel),
		Permission:      m.engine.PermissionGranted(),
		NeedsPermission: m.engine.NeedsPermission(),
		Requesting:      m.Requesting,
		SpinnerView:     m.permSpinner.View(),
		ActiveTimers:    m.engine.ActiveCount(),
		LastAlert:       m.LastAlert,
	})
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.commandInput.View())
}

func (m Model) header() string {
	parts := []string{"my-todo-app", "view: " + string(m.CurrentView)}
	if m.Keyword != "" {
		parts = append(parts, fmt.Sprintf("filter: %q", m.Keyword))
	}
	parts = append(parts, fmt.Sprintf("reminders: %s (%d)", m.engine.State(), m.engine.ActiveCount()))
	return strings.Join(parts, " | ")
}
