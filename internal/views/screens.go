package views

import (
	"fmt"
	"strings"

	"github.com/kenta1114/my-todo-app/internal/duedate"
)

type TaskListData struct {
	TableView string
	Keyword   string
	Shown     int
	Total     int
}

type TaskDetailData struct {
	ID           string
	Text         string
	Priority     string
	Done         bool
	Created      string
	Due          string
	DueStatus    duedate.Status
	DaysLeft     int
	HasDue       bool
	ReminderSent bool
	HasTimer     bool
	FireAt       string
}

type ReminderPanelData struct {
	State           string
	Enabled         bool
	BeforeMinutes   int
	Channel         string
	Permission      bool
	NeedsPermission bool
	Requesting      bool
	SpinnerView     string
	ActiveTimers    int
	LastAlert       string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderTaskList(data TaskListData) string {
	var b strings.Builder
	if data.Keyword != "" {
		b.WriteString(fmt.Sprintf("tasks: %d of %d matching %q\n", data.Shown, data.Total, data.Keyword))
	} else {
		b.WriteString(fmt.Sprintf("tasks: %d\n", data.Total))
	}
	if data.Shown == 0 {
		if data.Total == 0 {
			b.WriteString("(no tasks yet, press / and type: add buy milk)")
		} else {
			b.WriteString("(nothing matches the filter)")
		}
		return b.String()
	}
	b.WriteString(data.TableView)
	return strings.TrimSpace(b.String())
}

func RenderTaskDetail(data TaskDetailData) string {
	if strings.TrimSpace(data.ID) == "" {
		return "task:\n(no selection)"
	}
	var b strings.Builder
	text := data.Text
	if data.Done {
		text = doneStyle.Render(text)
	}
	b.WriteString("task:\n" + text + "\n\n")
	b.WriteString(fmt.Sprintf("priority: %s\n", data.Priority))
	b.WriteString(fmt.Sprintf("created: %s\n", data.Created))
	if data.HasDue {
		b.WriteString(fmt.Sprintf("due: %s %s\n", DueLabel(data.DueStatus, data.Due), dueHint(data)))
	} else {
		b.WriteString("due: -\n")
	}
	switch {
	case data.ReminderSent:
		b.WriteString("reminder: sent\n")
	case data.HasTimer:
		b.WriteString(fmt.Sprintf("reminder: at %s\n", data.FireAt))
	default:
		b.WriteString("reminder: -\n")
	}
	b.WriteString(fmt.Sprintf("id: %s", data.ID))
	return b.String()
}

func dueHint(data TaskDetailData) string {
	switch data.DueStatus {
	case duedate.StatusOverdue:
		return "(overdue)"
	case duedate.StatusToday:
		return "(today)"
	case duedate.StatusWarning:
		return "(soon)"
	}
	if data.DaysLeft == 1 {
		return "(tomorrow)"
	}
	return fmt.Sprintf("(in %d days)", data.DaysLeft)
}

func RenderReminderPanel(data ReminderPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("reminders: %s\n", strings.ToUpper(data.State)))
	enabled := "off"
	if data.Enabled {
		enabled = "on"
	}
	b.WriteString(fmt.Sprintf("enabled: %s | lead: %s | channel: %s\n", enabled, leadLabel(data.BeforeMinutes), data.Channel))
	switch {
	case data.Requesting:
		b.WriteString(fmt.Sprintf("permission: %s asking\n", data.SpinnerView))
	case data.Permission:
		b.WriteString("permission: granted\n")
	case data.NeedsPermission:
		b.WriteString("permission: needed, press [p]\n")
	default:
		b.WriteString("permission: denied\n")
	}
	b.WriteString(fmt.Sprintf("active timers: %d", data.ActiveTimers))
	if data.LastAlert != "" {
		b.WriteString("\nlast alert: " + data.LastAlert)
	}
	return b.String()
}

func leadLabel(minutes int) string {
	switch {
	case minutes >= 1440 && minutes%1440 == 0:
		return fmt.Sprintf("%dd before", minutes/1440)
	case minutes >= 60 && minutes%60 == 0:
		return fmt.Sprintf("%dh before", minutes/60)
	default:
		return fmt.Sprintf("%dm before", minutes)
	}
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return "command: " + inputView
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help (%s):\n%s\n\n%s\n\ncommands:\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
		strings.Join(paletteUsage, "\n"),
	)
}

var paletteUsage = []string{
	"add [!high|!med|!low] [@date] text",
	"done <n> | delete <n> | edit <n> text",
	"priority <n> high|medium|low",
	"due <n> <date>|none",
	"find [keyword]",
	"remind on|off|5|15|30|60|1440",
	"remind channel browser|email|none",
	"export json|csv [path] | import <path>",
	"clear done|overdue|all | sample",
}
