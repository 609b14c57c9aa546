package listing

import (
	"testing"
	"time"

	"github.com/kenta1114/my-todo-app/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func task(id string, p model.Priority, due *time.Duration) model.Task {
	t := model.Task{ID: id, Text: "task " + id, Priority: p, CreatedAt: now}
	if due != nil {
		at := now.Add(*due)
		t.DueDate = &at
	}
	return t
}

func in(d time.Duration) *time.Duration { return &d }

func ids(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestSortPriorityDominatesWhenOneSideUndated(t *testing.T) {
	a := task("A", model.PriorityHigh, nil)
	b := task("B", model.PriorityMedium, in(24*time.Hour))
	c := task("C", model.PriorityHigh, in(-24*time.Hour))

	got := Sort([]model.Task{a, b, c}, now)
	assert.Equal(t, []string{"C", "A", "B"}, ids(got))
}

func TestSortOverdueBeatsPriorityAmongDated(t *testing.T) {
	high := task("high", model.PriorityHigh, in(48*time.Hour))
	lowOverdue := task("low", model.PriorityLow, in(-time.Hour))

	got := Sort([]model.Task{high, lowOverdue}, now)
	assert.Equal(t, []string{"low", "high"}, ids(got))
}

func TestSortByDueDateThenDatedFirst(t *testing.T) {
	later := task("later", model.PriorityMedium, in(5*time.Hour))
	undated := task("undated", model.PriorityMedium, nil)
	sooner := task("sooner", model.PriorityMedium, in(time.Hour))

	got := Sort([]model.Task{later, undated, sooner}, now)
	assert.Equal(t, []string{"sooner", "later", "undated"}, ids(got))
}

func TestSortIsStable(t *testing.T) {
	input := []model.Task{
		task("1", model.PriorityLow, nil),
		task("2", model.PriorityLow, nil),
		task("3", model.PriorityLow, nil),
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids(Sort(input, now)))
}

func TestSortDoesNotMutateInput(t *testing.T) {
	input := []model.Task{
		task("low", model.PriorityLow, nil),
		task("high", model.PriorityHigh, nil),
	}
	_ = Sort(input, now)
	assert.Equal(t, []string{"low", "high"}, ids(input))
}

func TestFilterCaseInsensitive(t *testing.T) {
	input := []model.Task{
		{ID: "1", Text: "Buy Milk"},
		{ID: "2", Text: "write report"},
		{ID: "3", Text: "MILKSHAKE"},
	}
	assert.Equal(t, []string{"1", "3"}, ids(Filter(input, "milk")))
	assert.Len(t, Filter(input, ""), 3)
	assert.Empty(t, Filter(input, "coffee"))
}

func TestVisibleFiltersThenSorts(t *testing.T) {
	input := []model.Task{
		{ID: "1", Text: "report draft", Priority: model.PriorityLow},
		{ID: "2", Text: "groceries", Priority: model.PriorityHigh},
		{ID: "3", Text: "final report", Priority: model.PriorityHigh},
	}
	got := Visible(input, "REPORT", now)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"3", "1"}, ids(got))
}
