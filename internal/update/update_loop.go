package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kenta1114/my-todo-app/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForAlertCmd(m.alerts)}
	if m.Requesting {
		cmds = append(cmds, requestPermissionCmd(m.engine), m.permSpinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}
		return m.handleKey(typed)
	case tea.WindowSizeMsg:
		if h := typed.Height - 12; h > 4 {
			m.taskTable.SetHeight(h)
			m.statsViewport.Height = h
		}
		m.helpModel.Width = typed.Width
		return m, nil
	case spinner.TickMsg:
		if m.Requesting {
			var cmd tea.Cmd
			m.permSpinner, cmd = m.permSpinner.Update(typed)
			return m, cmd
		}
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.logger.Error("app error", "err", typed.Err)
		}
		return m, nil
	case ReminderDueMsg:
		m.handleReminderDue(typed)
		return m, waitForAlertCmd(m.alerts)
	case PermissionResultMsg:
		m.applyPermission(typed.Granted)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case m.Keys.Palette:
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
		return m, textinput.Blink
	case m.Keys.Toggle:
		if t, ok := m.SelectedTask(); ok {
			m.store.Toggle(t.ID)
			m.Status = StatusBar{Text: toggleMessage(t)}
		}
		return m, nil
	case m.Keys.Delete:
		if t, ok := m.SelectedTask(); ok {
			m.store.Delete(t.ID)
			m.Status = StatusBar{Text: fmt.Sprintf("deleted: %s", t.Text)}
		}
		return m, nil
	case m.Keys.Stats:
		if m.CurrentView == ViewStats {
			m.CurrentView = ViewTasks
		} else {
			m.CurrentView = ViewStats
			m.statsViewport.GotoTop()
		}
		return m, nil
	case m.Keys.Permission:
		return m.startPermissionRequest()
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		if m.HelpVisible {
			m.Status = StatusBar{Text: "help shown"}
		} else {
			m.Status = StatusBar{Text: "help hidden"}
		}
		return m, nil
	case "esc":
		if m.Keyword != "" {
			m.Keyword = ""
			m.Status = StatusBar{Text: "filter cleared"}
		}
		return m, nil
	case "ctrl+c", m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	if m.CurrentView == ViewStats {
		m.statsViewport, cmd = m.statsViewport.Update(msg)
	} else {
		m.taskTable, cmd = m.taskTable.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	var left, right string
	switch m.CurrentView {
	case ViewStats:
		left = "statistics:\n" + m.statsViewport.View()
		right = m.renderReminderPanel()
	default:
		left = m.renderTaskList()
		right = m.renderTaskDetail() + "\n\n" + m.renderReminderPanel()
	}
	if m.HelpVisible {
		right = strings.TrimSpace(right + "\n\n" + m.renderHelpView())
	}

	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	return views.RenderApp(views.AppData{
		Header:        m.header(),
		LeftPane:      left,
		RightPane:     right,
		Palette:       m.renderCommandPalette(),
		StatusLine:    status,
		StatusIsError: m.Status.IsError,
		Footer: fmt.Sprintf("keys: %s cmd | space toggle | %s delete | %s stats | %s permission | %s help | %s quit",
			m.Keys.Palette, m.Keys.Delete, m.Keys.Stats, m.Keys.Permission, m.Keys.Help, m.Keys.Quit),
	})
}
