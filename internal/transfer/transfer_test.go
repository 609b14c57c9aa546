package transfer

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kenta1114/my-todo-app/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTasks() []model.Task {
	created := time.Date(2026, 4, 1, 9, 30, 15, 123_000_000, time.UTC)
	due := time.Date(2026, 4, 3, 18, 0, 0, 0, time.FixedZone("JST", 9*60*60))
	return []model.Task{
		{ID: "a1", Text: "write, \"quoted\" report", Priority: model.PriorityHigh, CreatedAt: created, DueDate: &due},
		{ID: "b2", Text: "buy milk", Priority: model.PriorityLow, Done: true, CreatedAt: created, ReminderSent: true},
	}
}

func TestJSONRoundTrip(t *testing.T) {
	in := sampleTasks()
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, in))

	out, err := ImportJSON(&buf)
	require.NoError(t, err)
	require.Len(t, out, len(in))

	for i := range in {
		assert.Equal(t, in[i].ID, out[i].ID)
		assert.Equal(t, in[i].Text, out[i].Text)
		assert.Equal(t, in[i].Priority, out[i].Priority)
		assert.Equal(t, in[i].Done, out[i].Done)
		assert.Equal(t, in[i].ReminderSent, out[i].ReminderSent)
		assert.True(t, in[i].CreatedAt.Equal(out[i].CreatedAt), "createdAt %v != %v", in[i].CreatedAt, out[i].CreatedAt)
		assert.True(t, model.SameDueDate(in[i].DueDate, out[i].DueDate), "dueDate mismatch for %s", in[i].ID)
	}
}

func TestExportJSONUsesCamelCaseKeys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, sampleTasks()))
	body := buf.String()

	for _, key := range []string{`"id"`, `"text"`, `"done"`, `"priority"`, `"createdAt"`, `"dueDate"`, `"reminderSent"`} {
		assert.Contains(t, body, key)
	}
	assert.Contains(t, body, `"dueDate": "2026-04-03T09:00:00.000Z"`)
}

func TestImportRejectsNonArray(t *testing.T) {
	for _, payload := range []string{`{"id":"x"}`, `"tasks"`, ``, `null`} {
		_, err := ImportJSON(strings.NewReader(payload))
		assert.ErrorIs(t, err, ErrNotArray, "payload %q", payload)
	}
}

func TestImportRejectsMalformedDates(t *testing.T) {
	_, err := ImportJSON(strings.NewReader(`[{"id":"x","text":"t","priority":"HIGH","dueDate":"tomorrow"}]`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotArray)
}

func TestImportLeavesMissingFieldsForStore(t *testing.T) {
	out, err := ImportJSON(strings.NewReader(`[{"text":"bare","priority":"low"}]`))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Empty(t, out[0].ID)
	assert.True(t, out[0].CreatedAt.IsZero())
	assert.Equal(t, model.PriorityLow, out[0].Priority)
	assert.Nil(t, out[0].DueDate)
}

func TestExportCSVColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, sampleTasks()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Task", "Status", "Priority", "CreatedAt", "DueDate"}, rows[0])
	assert.Equal(t, []string{"a1", `write, "quoted" report`, "Pending", "HIGH", "2026-04-01T09:30:15.123Z", "2026-04-03T09:00:00.000Z"}, rows[1])
	assert.Equal(t, "Done", rows[2][2])
	assert.Equal(t, "", rows[2][5])
}

func TestFileRoundTripAndName(t *testing.T) {
	now := time.Date(2026, 10, 17, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "todos_2026-10-17.csv", FileName(FormatCSV, now))

	path := filepath.Join(t.TempDir(), FileName(FormatJSON, now))
	require.NoError(t, ExportFile(path, FormatJSON, sampleTasks()))
	out, err := ImportFile(path)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
