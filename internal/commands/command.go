package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kenta1114/my-todo-app/internal/duedate"
	"github.com/kenta1114/my-todo-app/internal/model"
	"github.com/kenta1114/my-todo-app/internal/transfer"
)

type Type string

const (
	TypeAdd      Type = "add"
	TypeDone     Type = "done"
	TypeEdit     Type = "edit"
	TypePriority Type = "priority"
	TypeDue      Type = "due"
	TypeDelete   Type = "delete"
	TypeFind     Type = "find"
	TypeRemind   Type = "remind"
	TypeExport   Type = "export"
	TypeImport   Type = "import"
	TypeClear    Type = "clear"
	TypeSample   Type = "sample"
)

var aliases = map[string]Type{
	"a":      TypeAdd,
	"x":      TypeDone,
	"toggle": TypeDone,
	"e":      TypeEdit,
	"p":      TypePriority,
	"rm":     TypeDelete,
	"del":    TypeDelete,
	"search": TypeFind,
}

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
	ErrCodeNotFound        ErrorCode = "not_found"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

type AddArgs struct {
	Text     string
	Priority model.Priority
	Due      *time.Time
}

// TargetArgs names one task by visible row number or id.
type TargetArgs struct {
	Target string
}

type EditArgs struct {
	Target string
	Text   string
}

type PriorityArgs struct {
	Target   string
	Priority model.Priority
}

// DueArgs clears the due date when Due is nil.
type DueArgs struct {
	Target string
	Due    *time.Time
}

type FindArgs struct {
	Keyword string
}

type RemindArgs struct {
	Patch model.SettingsPatch
}

type ExportArgs struct {
	Format transfer.Format
	Path   string
}

type ImportArgs struct {
	Path string
}

type ClearScope string

const (
	ClearDone    ClearScope = "done"
	ClearOverdue ClearScope = "overdue"
	ClearAll     ClearScope = "all"
)

type ClearArgs struct {
	Scope ClearScope
}

type Command struct {
	Type     Type
	Raw      string
	Add      *AddArgs
	Target   *TargetArgs
	Edit     *EditArgs
	Priority *PriorityArgs
	Due      *DueArgs
	Find     *FindArgs
	Remind   *RemindArgs
	Export   *ExportArgs
	Import   *ImportArgs
	Clear    *ClearArgs
}

// Parse reads one palette line. Relative dates resolve against now.
func Parse(input string, now time.Time) (Command, error) {
	raw := strings.TrimSpace(input)
	if strings.HasPrefix(raw, "/") && len(raw) > 1 {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	typ := Type(head)
	if alias, ok := aliases[head]; ok {
		typ = alias
	}

	switch typ {
	case TypeAdd:
		return parseAdd(input, args, now)
	case TypeDone, TypeDelete:
		return parseTarget(input, typ, args)
	case TypeEdit:
		return parseEdit(input, args)
	case TypePriority:
		return parsePriority(input, args)
	case TypeDue:
		return parseDue(input, args, now)
	case TypeFind:
		return Command{Type: TypeFind, Raw: input, Find: &FindArgs{Keyword: strings.Join(args, " ")}}, nil
	case TypeRemind:
		return parseRemind(input, args)
	case TypeExport:
		return parseExport(input, args)
	case TypeImport:
		return parseImport(input, args)
	case TypeClear:
		return parseClear(input, args)
	case TypeSample:
		return Command{Type: TypeSample, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string, now time.Time) (Command, error) {
	out := AddArgs{Priority: model.PriorityMedium}
	words := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "!") && len(arg) > 1:
			p, err := model.ParsePriority(arg[1:])
			if err != nil {
				return Command{}, invalid("unknown priority %q", arg[1:])
			}
			out.Priority = p
		case strings.HasPrefix(arg, "@") && len(arg) > 1:
			due, err := duedate.Parse(arg[1:], now)
			if err != nil {
				return Command{}, invalid("bad due date %q", arg[1:])
			}
			out.Due = &due
		default:
			words = append(words, arg)
		}
	}
	out.Text = strings.TrimSpace(strings.Join(words, " "))
	if out.Text == "" {
		return Command{}, invalid("add requires task text")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

func parseTarget(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("%s requires a task number", typ)
	}
	return Command{Type: typ, Raw: raw, Target: &TargetArgs{Target: args[0]}}, nil
}

func parseEdit(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("edit requires a task number and new text")
	}
	return Command{Type: TypeEdit, Raw: raw, Edit: &EditArgs{Target: args[0], Text: strings.Join(args[1:], " ")}}, nil
}

func parsePriority(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, invalid("priority requires a task number and high|medium|low")
	}
	p, err := model.ParsePriority(args[1])
	if err != nil {
		return Command{}, invalid("unknown priority %q", args[1])
	}
	return Command{Type: TypePriority, Raw: raw, Priority: &PriorityArgs{Target: args[0], Priority: p}}, nil
}

func parseDue(raw string, args []string, now time.Time) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("due requires a task number and a date or none")
	}
	value := strings.Join(args[1:], " ")
	out := DueArgs{Target: args[0]}
	if !strings.EqualFold(value, "none") && !strings.EqualFold(value, "clear") {
		due, err := duedate.Parse(value, now)
		if err != nil {
			return Command{}, invalid("bad due date %q", value)
		}
		out.Due = &due
	}
	return Command{Type: TypeDue, Raw: raw, Due: &out}, nil
}

func parseRemind(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("remind requires on, off, a lead time in minutes, or channel")
	}
	var patch model.SettingsPatch
	switch v := strings.ToLower(args[0]); v {
	case "on", "off":
		enabled := v == "on"
		patch.Enabled = &enabled
	case "channel":
		if len(args) != 2 {
			return Command{}, invalid("remind channel requires browser, email, or none")
		}
		c, err := model.ParseChannel(args[1])
		if err != nil {
			return Command{}, invalid("unknown channel %q", args[1])
		}
		patch.Channel = &c
	default:
		minutes, err := strconv.Atoi(v)
		if err != nil || !model.IsLeadTime(minutes) {
			return Command{}, invalid("lead time must be one of %v minutes", model.LeadTimes)
		}
		patch.BeforeMinutes = &minutes
	}
	return Command{Type: TypeRemind, Raw: raw, Remind: &RemindArgs{Patch: patch}}, nil
}

func parseExport(raw string, args []string) (Command, error) {
	out := ExportArgs{Format: transfer.FormatJSON}
	if len(args) > 0 {
		f, err := transfer.ParseFormat(args[0])
		if err != nil {
			return Command{}, invalid("export format must be json or csv")
		}
		out.Format = f
	}
	if len(args) > 1 {
		out.Path = strings.Join(args[1:], " ")
	}
	return Command{Type: TypeExport, Raw: raw, Export: &out}, nil
}

func parseImport(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("import requires a file path")
	}
	return Command{Type: TypeImport, Raw: raw, Import: &ImportArgs{Path: strings.Join(args, " ")}}, nil
}

func parseClear(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("clear requires done, overdue, or all")
	}
	switch s := ClearScope(strings.ToLower(args[0])); s {
	case ClearDone, ClearOverdue, ClearAll:
		return Command{Type: TypeClear, Raw: raw, Clear: &ClearArgs{Scope: s}}, nil
	case "completed":
		return Command{Type: TypeClear, Raw: raw, Clear: &ClearArgs{Scope: ClearDone}}, nil
	default:
		return Command{}, invalid("clear requires done, overdue, or all")
	}
}

// ResolveTarget maps a row number in visible (1-based) or a task id to a task
// id.
func ResolveTarget(target string, visible []model.Task) (string, error) {
	if n, err := strconv.Atoi(target); err == nil {
		if n < 1 || n > len(visible) {
			return "", &CommandError{Code: ErrCodeNotFound, Message: fmt.Sprintf("no task at row %d", n)}
		}
		return visible[n-1].ID, nil
	}
	for _, t := range visible {
		if t.ID == target || (len(target) >= 4 && strings.HasPrefix(t.ID, target)) {
			return t.ID, nil
		}
	}
	return "", &CommandError{Code: ErrCodeNotFound, Message: fmt.Sprintf("no task %q", target)}
}

// IsNotFound reports whether err is a CommandError for a missing task.
func IsNotFound(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce) && ce.Code == ErrCodeNotFound
}
