// Package transfer exports tasks as JSON or CSV and imports them back from
// JSON.
package transfer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kenta1114/my-todo-app/internal/model"
)

var (
	ErrNotArray      = errors.New("transfer: import payload is not a JSON array")
	ErrUnknownFormat = errors.New("transfer: unknown export format")
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// isoLayout matches the millisecond UTC timestamps other tools emit.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

var csvHeader = []string{"ID", "Task", "Status", "Priority", "CreatedAt", "DueDate"}

type record struct {
	ID           string         `json:"id"`
	Text         string         `json:"text"`
	Done         bool           `json:"done"`
	Priority     model.Priority `json:"priority"`
	CreatedAt    string         `json:"createdAt,omitempty"`
	DueDate      string         `json:"dueDate,omitempty"`
	ReminderSent bool           `json:"reminderSent"`
}

// FileName is the default export file name for the given day.
func FileName(f Format, now time.Time) string {
	return fmt.Sprintf("todos_%s.%s", now.UTC().Format("2006-01-02"), f)
}

func Export(w io.Writer, f Format, tasks []model.Task) error {
	switch f {
	case FormatJSON:
		return ExportJSON(w, tasks)
	case FormatCSV:
		return ExportCSV(w, tasks)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

func ExportJSON(w io.Writer, tasks []model.Task) error {
	out := make([]record, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toRecord(t))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	return nil
}

func ExportCSV(w io.Writer, tasks []model.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range tasks {
		r := toRecord(t)
		status := "Pending"
		if t.Done {
			status = "Done"
		}
		if err := cw.Write([]string{r.ID, r.Text, status, string(r.Priority), r.CreatedAt, r.DueDate}); err != nil {
			return fmt.Errorf("write csv row %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportJSON decodes an exported task array. Missing creation times are left
// zero for the store to fill in.
func ImportJSON(r io.Reader) ([]model.Task, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotArray
	}
	var records []record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("decode import: %w", err)
	}

	out := make([]model.Task, 0, len(records))
	for i, rec := range records {
		t, err := fromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func ExportFile(path string, f Format, tasks []model.Task) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := Export(file, f, tasks); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func ImportFile(path string) ([]model.Task, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer file.Close()
	return ImportJSON(file)
}

func toRecord(t model.Task) record {
	r := record{
		ID:           t.ID,
		Text:         t.Text,
		Done:         t.Done,
		Priority:     t.Priority,
		ReminderSent: t.ReminderSent,
	}
	if !t.CreatedAt.IsZero() {
		r.CreatedAt = t.CreatedAt.UTC().Format(isoLayout)
	}
	if t.HasDueDate() {
		r.DueDate = t.DueDate.UTC().Format(isoLayout)
	}
	return r
}

func fromRecord(r record) (model.Task, error) {
	t := model.Task{
		ID:           r.ID,
		Text:         r.Text,
		Done:         r.Done,
		Priority:     model.Priority(strings.ToUpper(string(r.Priority))),
		ReminderSent: r.ReminderSent,
	}
	if r.CreatedAt != "" {
		created, err := time.Parse(time.RFC3339, r.CreatedAt)
		if err != nil {
			return model.Task{}, fmt.Errorf("createdAt: %w", err)
		}
		t.CreatedAt = created
	}
	if r.DueDate != "" {
		due, err := time.Parse(time.RFC3339, r.DueDate)
		if err != nil {
			return model.Task{}, fmt.Errorf("dueDate: %w", err)
		}
		t.DueDate = &due
	}
	return t, nil
}
