package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/kenta1114/my-todo-app/internal/duedate"
)

type AppData struct {
	Header        string
	LeftPane      string
	RightPane     string
	StatusLine    string
	StatusIsError bool
	Palette       string
	Footer        string
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	doneStyle   = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8"))
)

var dueStyles = map[duedate.Status]lipgloss.Style{
	duedate.StatusOverdue: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	duedate.StatusToday:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	duedate.StatusWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	duedate.StatusNormal:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
}

func RenderApp(data AppData) string {
	left := panelStyle.Width(64).Render(data.LeftPane)
	row := left
	if strings.TrimSpace(data.RightPane) != "" {
		right := panelStyle.Width(44).Render(data.RightPane)
		row = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	lines := []string{
		headerStyle.Render(data.Header),
		row,
	}
	if data.Palette != "" {
		lines = append(lines, panelStyle.Render(data.Palette))
	}
	if data.StatusLine != "" {
		if data.StatusIsError {
			lines = append(lines, errorStyle.Render(data.StatusLine))
		} else {
			lines = append(lines, statusStyle.Render(data.StatusLine))
		}
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

// DueLabel colours a formatted due date by its status.
func DueLabel(status duedate.Status, text string) string {
	style, ok := dueStyles[status]
	if !ok {
		return text
	}
	return style.Render(text)
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
