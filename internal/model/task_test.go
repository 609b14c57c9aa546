package model

import (
	"errors"
	"testing"
	"time"
)

func TestTaskValidateSuccess(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{
		ID:        "task-1",
		Text:      "Reply to email",
		Priority:  PriorityHigh,
		CreatedAt: now,
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
}

func TestTaskValidateRejectsBlankText(t *testing.T) {
	task := Task{
		ID:        "task-1",
		Text:      "   ",
		Priority:  PriorityLow,
		CreatedAt: time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC),
	}
	if err := task.Validate(); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got: %v", err)
	}
}

func TestTaskValidateInvalidPriority(t *testing.T) {
	task := Task{
		ID:        "task-1",
		Text:      "Bad priority",
		Priority:  Priority("URGENT"),
		CreatedAt: time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC),
	}
	err := task.Validate()
	if err == nil || !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got: %v", err)
	}
}

func TestPriorityRankAndParse(t *testing.T) {
	if !(PriorityHigh.Rank() > PriorityMedium.Rank() && PriorityMedium.Rank() > PriorityLow.Rank()) {
		t.Fatalf("unexpected rank order: %d %d %d", PriorityHigh.Rank(), PriorityMedium.Rank(), PriorityLow.Rank())
	}
	cases := map[string]Priority{"high": PriorityHigh, "MED": PriorityMedium, "l": PriorityLow}
	for in, want := range cases {
		got, err := ParsePriority(in)
		if err != nil || got != want {
			t.Fatalf("ParsePriority(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParsePriority("urgent"); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
}

func TestReminderEligible(t *testing.T) {
	due := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	base := Task{ID: "t", Text: "x", Priority: PriorityLow, DueDate: &due}
	if !base.ReminderEligible() {
		t.Fatal("expected pending task with due date to be eligible")
	}

	done := base
	done.Done = true
	sent := base
	sent.ReminderSent = true
	noDue := base
	noDue.DueDate = nil
	for name, task := range map[string]Task{"done": done, "sent": sent, "no-due": noDue} {
		if task.ReminderEligible() {
			t.Fatalf("%s task should not be eligible", name)
		}
	}
}

func TestCloneDetachesDueDate(t *testing.T) {
	due := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	orig := Task{ID: "t", DueDate: &due}
	cp := orig.Clone()
	*cp.DueDate = cp.DueDate.Add(time.Hour)
	if !orig.DueDate.Equal(due) {
		t.Fatalf("clone shares due date pointer: %s", orig.DueDate)
	}
}

func TestSameDueDate(t *testing.T) {
	a := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	b := a.In(time.FixedZone("JST", 9*3600))
	if !SameDueDate(&a, &b) {
		t.Fatal("expected equal instants in different zones to match")
	}
	if SameDueDate(&a, nil) || !SameDueDate(nil, nil) {
		t.Fatal("unexpected nil comparison result")
	}
}
