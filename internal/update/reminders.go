package update

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kenta1114/my-todo-app/internal/reminder"
)

const permissionTimeout = 10 * time.Second

// waitForAlertCmd blocks on the next fired alert. It is re-issued after each
// delivery so alerts are always handled on the update loop.
func waitForAlertCmd(src AlertSource) tea.Cmd {
	if src == nil {
		return nil
	}
	ch := src.Events()
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Event: ev}
	}
}

func requestPermissionCmd(engine *reminder.Engine) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), permissionTimeout)
		defer cancel()
		return PermissionResultMsg{Granted: engine.RequestPermission(ctx)}
	}
}

func (m Model) startPermissionRequest() (Model, tea.Cmd) {
	if m.Requesting {
		return m, nil
	}
	m.Requesting = true
	m.Status = StatusBar{Text: "asking for notification permission"}
	return m, tea.Batch(requestPermissionCmd(m.engine), m.permSpinner.Tick)
}

func (m *Model) applyPermission(granted bool) {
	m.Requesting = false
	m.engine.SetPermission(granted)
	if granted {
		m.Status = StatusBar{Text: "notifications allowed"}
		return
	}
	m.Status = StatusBar{Text: "notifications unavailable, reminders stay off", IsError: true}
}

func (m *Model) handleReminderDue(msg ReminderDueMsg) {
	if m.alerts == nil || !m.alerts.Deliver(msg.Event) {
		m.logger.Debug("stale alert dropped", "id", msg.Event.ID)
		return
	}
	m.LastAlert = fmt.Sprintf("%s %s", m.now().Format("15:04"), msg.Event.Body)
	m.Status = StatusBar{Text: fmt.Sprintf("%s: %s", msg.Event.Title, msg.Event.Body)}
}
