package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kenta1114/my-todo-app/internal/commands"
	"github.com/kenta1114/my-todo-app/internal/duedate"
	"github.com/kenta1114/my-todo-app/internal/model"
	"github.com/kenta1114/my-todo-app/internal/transfer"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	now := m.now()
	cmd, err := commands.Parse(raw, now)
	if err != nil {
		m = m.closePalette()
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var follow tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			t := m.store.Add(a.Text, a.Priority, a.Due)
			msg := fmt.Sprintf("added: %s", t.Text)
			if t.DueDate != nil {
				msg += fmt.Sprintf(" (due %s)", duedate.Format(*t.DueDate))
			}
			return commands.Result{Message: msg}, nil
		},
		Done: func(a commands.TargetArgs) (commands.Result, error) {
			t, err := m.resolve(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			m.store.Toggle(t.ID)
			return commands.Result{Message: toggleMessage(t)}, nil
		},
		Edit: func(a commands.EditArgs) (commands.Result, error) {
			t, err := m.resolve(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			m.store.EditText(t.ID, a.Text)
			return commands.Result{Message: fmt.Sprintf("edited: %s", a.Text)}, nil
		},
		Priority: func(a commands.PriorityArgs) (commands.Result, error) {
			t, err := m.resolve(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			m.store.SetPriority(t.ID, a.Priority)
			return commands.Result{Message: fmt.Sprintf("priority %s: %s", strings.ToLower(string(a.Priority)), t.Text)}, nil
		},
		Due: func(a commands.DueArgs) (commands.Result, error) {
			t, err := m.resolve(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			m.store.SetDueDate(t.ID, a.Due)
			if a.Due == nil {
				return commands.Result{Message: fmt.Sprintf("due date cleared: %s", t.Text)}, nil
			}
			return commands.Result{Message: fmt.Sprintf("due %s: %s", duedate.Format(*a.Due), t.Text)}, nil
		},
		Delete: func(a commands.TargetArgs) (commands.Result, error) {
			t, err := m.resolve(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			m.store.Delete(t.ID)
			return commands.Result{Message: fmt.Sprintf("deleted: %s", t.Text)}, nil
		},
		Find: func(a commands.FindArgs) (commands.Result, error) {
			m.Keyword = a.Keyword
			m.CurrentView = ViewTasks
			if a.Keyword == "" {
				return commands.Result{Message: "filter cleared"}, nil
			}
			return commands.Result{Message: fmt.Sprintf("filter: %q", a.Keyword)}, nil
		},
		Remind: func(a commands.RemindArgs) (commands.Result, error) {
			if err := m.engine.UpdateSettings(a.Patch); err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			if m.engine.NeedsPermission() && !m.Requesting {
				m, follow = m.startPermissionRequest()
			}
			return commands.Result{Message: remindMessage(m.engine.Settings())}, nil
		},
		Export: func(a commands.ExportArgs) (commands.Result, error) {
			path := a.Path
			if path == "" {
				path = transfer.FileName(a.Format, now)
			}
			tasks := m.store.List()
			if err := transfer.ExportFile(path, a.Format, tasks); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("exported %d task(s) to %s", len(tasks), path)}, nil
		},
		Import: func(a commands.ImportArgs) (commands.Result, error) {
			tasks, err := transfer.ImportFile(a.Path)
			if err != nil {
				return commands.Result{}, err
			}
			m.store.Replace(tasks)
			return commands.Result{Message: fmt.Sprintf("imported %d task(s) from %s", len(tasks), a.Path)}, nil
		},
		Clear: func(a commands.ClearArgs) (commands.Result, error) {
			var n int
			switch a.Scope {
			case commands.ClearDone:
				n = m.store.ClearCompleted()
			case commands.ClearOverdue:
				n = m.store.ClearOverdue(now)
			default:
				n = m.store.ClearAll()
			}
			return commands.Result{Message: fmt.Sprintf("cleared %d %s task(s)", n, a.Scope)}, nil
		},
		Sample: func() (commands.Result, error) {
			n := m.store.AddSamples(now)
			return commands.Result{Message: fmt.Sprintf("added %d sample task(s)", n)}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.logger.Warn("command failed", "input", raw, "err", err)
	} else {
		m.Status = StatusBar{Text: res.Message, IsError: false}
		m.logger.Debug("command executed", "type", cmd.Type)
	}

	m = m.closePalette()
	return m, follow
}

func (m Model) resolve(target string) (model.Task, error) {
	id, err := commands.ResolveTarget(target, m.visible)
	if err != nil {
		return model.Task{}, err
	}
	t, ok := m.store.Get(id)
	if !ok {
		return model.Task{}, &commands.CommandError{Code: commands.ErrCodeNotFound, Message: fmt.Sprintf("no task %q", target)}
	}
	return t, nil
}

func toggleMessage(t model.Task) string {
	if t.Done {
		return fmt.Sprintf("reopened: %s", t.Text)
	}
	return fmt.Sprintf("completed: %s", t.Text)
}

func remindMessage(s model.ReminderSettings) string {
	if !s.Enabled {
		return "reminders off"
	}
	return fmt.Sprintf("reminders on, %d min before via %s", s.BeforeMinutes, s.Channel)
}
