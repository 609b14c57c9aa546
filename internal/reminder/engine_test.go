package reminder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kenta1114/my-todo-app/internal/model"
	"github.com/kenta1114/my-todo-app/internal/notify"
	"github.com/kenta1114/my-todo-app/internal/notify/notifytest"
	"github.com/kenta1114/my-todo-app/internal/store"
)

var startNow = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

type fixture struct {
	gw     *notifytest.Gateway
	store  *store.Store
	engine *Engine
}

func newFixture(t *testing.T, granted bool) *fixture {
	t.Helper()
	gw := notifytest.New(startNow)
	gw.Permission = granted
	seq := 0
	st := store.New(
		store.WithClock(gw.Now),
		store.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("task-%d", seq)
		}),
	)
	e := New(gw, st, WithClock(gw.Now))
	e.Watch(st)
	e.SetPermission(e.RequestPermission(context.Background()))
	return &fixture{gw: gw, store: st, engine: e}
}

func (f *fixture) add(text string, due time.Duration) model.Task {
	at := f.gw.Now().Add(due)
	return f.store.Add(text, model.PriorityMedium, &at)
}

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

func TestEligibleTasksGetExactlyOneTimer(t *testing.T) {
	f := newFixture(t, true)
	withDue := f.add("due in two hours", 2*time.Hour)
	f.store.Add("no due date", model.PriorityHigh, nil)
	done := f.add("done", 3*time.Hour)
	f.store.Toggle(done.ID)
	tooSoon := f.add("fire time passed", 10*time.Minute)

	if f.engine.ActiveCount() != 1 {
		t.Fatalf("expected exactly one timer, got %d", f.engine.ActiveCount())
	}
	fireAt, ok := f.engine.FireTime(withDue.ID)
	if !ok {
		t.Fatalf("expected timer for %s", withDue.ID)
	}
	if want := withDue.DueDate.Add(-30 * time.Minute); !fireAt.Equal(want) {
		t.Fatalf("fire time = %v, want %v", fireAt, want)
	}
	if f.engine.HasTimer(done.ID) || f.engine.HasTimer(tooSoon.ID) {
		t.Fatalf("ineligible tasks must not hold timers")
	}
	if len(f.gw.Alerts) != 0 {
		t.Fatalf("a passed fire time must be skipped silently, got %+v", f.gw.Alerts)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	f := newFixture(t, true)
	f.add("a", time.Hour)
	f.add("b", 2*time.Hour)

	scheduled, canceled := f.gw.Scheduled, f.gw.Canceled
	f.engine.Refresh()
	f.engine.Reconcile(f.store.List())

	if f.gw.Scheduled != scheduled || f.gw.Canceled != canceled {
		t.Fatalf("repeat reconcile changed timers: scheduled %d->%d canceled %d->%d",
			scheduled, f.gw.Scheduled, canceled, f.gw.Canceled)
	}
	if f.engine.ActiveCount() != 2 {
		t.Fatalf("expected 2 timers, got %d", f.engine.ActiveCount())
	}
}

func TestSettingsToggleCancelsAndRestores(t *testing.T) {
	f := newFixture(t, true)
	a := f.add("a", time.Hour)
	b := f.add("b", 2*time.Hour)

	if err := f.engine.UpdateSettings(model.SettingsPatch{Enabled: boolPtr(false)}); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if f.engine.ActiveCount() != 0 || f.gw.PendingCount() != 0 {
		t.Fatalf("disable must cancel every timer: active=%d pending=%d", f.engine.ActiveCount(), f.gw.PendingCount())
	}
	if f.engine.State() != StateDisabled {
		t.Fatalf("expected disabled state")
	}

	if err := f.engine.UpdateSettings(model.SettingsPatch{Enabled: boolPtr(true)}); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if f.engine.ActiveCount() != 2 || !f.engine.HasTimer(a.ID) || !f.engine.HasTimer(b.ID) {
		t.Fatalf("re-enable must restore the eligible set")
	}
	if f.engine.State() != StateActive {
		t.Fatalf("expected active state")
	}
}

func TestNonDeliveringChannelSuspendsTimers(t *testing.T) {
	f := newFixture(t, true)
	f.add("a", time.Hour)

	email := model.ChannelEmail
	if err := f.engine.UpdateSettings(model.SettingsPatch{Channel: &email}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if f.engine.ActiveCount() != 0 || f.engine.State() != StateDisabled {
		t.Fatalf("email channel must not keep timers")
	}
}

func TestUpdateSettingsRejectsInvalidLeadTime(t *testing.T) {
	f := newFixture(t, true)
	if err := f.engine.UpdateSettings(model.SettingsPatch{BeforeMinutes: intPtr(7)}); err == nil {
		t.Fatalf("expected error for unsupported lead time")
	}
	if f.engine.Settings().BeforeMinutes != 30 {
		t.Fatalf("invalid patch must leave settings untouched")
	}
}

func TestLeadTimeChangeReschedules(t *testing.T) {
	f := newFixture(t, true)
	task := f.add("a", 3*time.Hour)

	if err := f.engine.UpdateSettings(model.SettingsPatch{BeforeMinutes: intPtr(60)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	fireAt, ok := f.engine.FireTime(task.ID)
	if !ok || !fireAt.Equal(task.DueDate.Add(-time.Hour)) {
		t.Fatalf("expected rescheduled fire time, got %v ok=%v", fireAt, ok)
	}
	if f.gw.PendingCount() != 1 || f.gw.Canceled != 1 {
		t.Fatalf("expected old timer canceled: pending=%d canceled=%d", f.gw.PendingCount(), f.gw.Canceled)
	}
}

func TestFiredReminderMarksTaskOnce(t *testing.T) {
	f := newFixture(t, true)
	task := f.add("a", time.Hour)

	f.gw.Advance(31 * time.Minute)

	if len(f.gw.Alerts) != 1 {
		t.Fatalf("expected one alert, got %d", len(f.gw.Alerts))
	}
	if f.gw.Alerts[0].Title != notify.TitleDueSoon || f.gw.Alerts[0].Body != "Task: a" {
		t.Fatalf("unexpected alert: %+v", f.gw.Alerts[0])
	}
	got, _ := f.store.Get(task.ID)
	if !got.ReminderSent {
		t.Fatalf("fired reminder must set reminderSent")
	}
	if f.engine.HasTimer(task.ID) {
		t.Fatalf("fired timer must leave the active set")
	}

	f.engine.Refresh()
	f.gw.Advance(time.Hour)
	if len(f.gw.Alerts) != 1 {
		t.Fatalf("reminder must fire at most once, got %d alerts", len(f.gw.Alerts))
	}
}

func TestDueDateEditRearmsReminder(t *testing.T) {
	f := newFixture(t, true)
	task := f.add("a", time.Hour)
	f.gw.Advance(31 * time.Minute)

	newDue := f.gw.Now().Add(2 * time.Hour)
	f.store.SetDueDate(task.ID, &newDue)

	got, _ := f.store.Get(task.ID)
	if got.ReminderSent {
		t.Fatalf("due date edit must reset reminderSent")
	}
	fireAt, ok := f.engine.FireTime(task.ID)
	if !ok || !fireAt.Equal(newDue.Add(-30*time.Minute)) {
		t.Fatalf("expected new timer at recomputed time, got %v ok=%v", fireAt, ok)
	}
}

func TestDueDateEditBeforeFiringReplacesTimer(t *testing.T) {
	f := newFixture(t, true)
	task := f.add("a", time.Hour)

	later := f.gw.Now().Add(5 * time.Hour)
	f.store.SetDueDate(task.ID, &later)

	fireAt, _ := f.engine.FireTime(task.ID)
	if !fireAt.Equal(later.Add(-30 * time.Minute)) {
		t.Fatalf("expected timer to follow the new due date, got %v", fireAt)
	}
	if f.gw.PendingCount() != 1 {
		t.Fatalf("expected the stale timer canceled, pending=%d", f.gw.PendingCount())
	}

	f.gw.Advance(31 * time.Minute)
	if len(f.gw.Alerts) != 0 {
		t.Fatalf("stale timer fired: %+v", f.gw.Alerts)
	}
}

func TestTextEditBeforeFiringCarriesNewBody(t *testing.T) {
	f := newFixture(t, true)
	task := f.add("draft title", 2*time.Hour)
	before, _ := f.engine.FireTime(task.ID)
	scheduled, canceled := f.gw.Scheduled, f.gw.Canceled

	f.store.EditText(task.ID, "final title")
	if f.gw.Canceled != canceled+1 || f.gw.Scheduled != scheduled+1 {
		t.Fatalf("expected timer replaced, scheduled %d->%d canceled %d->%d",
			scheduled, f.gw.Scheduled, canceled, f.gw.Canceled)
	}
	if after, _ := f.engine.FireTime(task.ID); !after.Equal(before) {
		t.Fatalf("fire time moved on a text edit: %v -> %v", before, after)
	}

	f.store.SetPriority(task.ID, model.PriorityHigh)
	if f.gw.Scheduled != scheduled+1 {
		t.Fatalf("priority change must not reschedule, scheduled=%d", f.gw.Scheduled)
	}

	f.gw.Advance(91 * time.Minute)
	if len(f.gw.Alerts) != 1 {
		t.Fatalf("expected one alert, got %+v", f.gw.Alerts)
	}
	if got := f.gw.Alerts[0].Body; got != "Task: final title" {
		t.Fatalf("alert body = %q, want the edited text", got)
	}
}

func TestPermissionDeniedSchedulesNothing(t *testing.T) {
	f := newFixture(t, false)
	f.add("a", time.Hour)

	if f.engine.ActiveCount() != 0 || f.gw.Scheduled != 0 {
		t.Fatalf("no timers expected without permission")
	}
	if !f.engine.NeedsPermission() {
		t.Fatalf("expected NeedsPermission")
	}

	f.engine.SetPermission(true)
	if f.engine.ActiveCount() != 1 {
		t.Fatalf("granting permission must schedule eligible tasks")
	}
	f.engine.SetPermission(false)
	if f.engine.ActiveCount() != 0 || f.gw.PendingCount() != 0 {
		t.Fatalf("revoking permission must cancel timers")
	}
}

func TestDeleteAndCompleteCancelTimers(t *testing.T) {
	f := newFixture(t, true)
	a := f.add("a", time.Hour)
	b := f.add("b", time.Hour)

	f.store.Delete(a.ID)
	f.store.Toggle(b.ID)

	if f.engine.ActiveCount() != 0 || f.gw.PendingCount() != 0 {
		t.Fatalf("expected all timers canceled: active=%d pending=%d", f.engine.ActiveCount(), f.gw.PendingCount())
	}
	if f.gw.Canceled != 2 {
		t.Fatalf("expected 2 cancels, got %d", f.gw.Canceled)
	}
}

func TestClearAllAndClearOne(t *testing.T) {
	f := newFixture(t, true)
	a := f.add("a", time.Hour)
	f.add("b", time.Hour)

	f.engine.ClearOne(a.ID)
	f.engine.ClearOne(a.ID)
	if f.engine.HasTimer(a.ID) || f.gw.Canceled != 1 {
		t.Fatalf("ClearOne should cancel once, canceled=%d", f.gw.Canceled)
	}

	f.engine.ClearAll()
	if f.engine.ActiveCount() != 0 || f.gw.PendingCount() != 0 {
		t.Fatalf("ClearAll left timers behind")
	}
}

func TestImmediateFireDuringReconcileIsFolded(t *testing.T) {
	gw := notifytest.New(startNow.Add(time.Hour))
	st := store.New(store.WithClock(gw.Now))
	// The engine clock lags the gateway, so the gateway fires inline from
	// ScheduleAt while reconcile is running.
	e := New(gw, st, WithClock(func() time.Time { return startNow }))
	e.Watch(st)
	e.SetPermission(true)

	due := startNow.Add(45 * time.Minute)
	task := st.Add("late", model.PriorityHigh, &due)

	got, _ := st.Get(task.ID)
	if !got.ReminderSent {
		t.Fatalf("inline fire must mark the task")
	}
	if e.HasTimer(task.ID) {
		t.Fatalf("inline fire must not leave an active timer")
	}
	if len(gw.Alerts) != 1 || gw.Alerts[0].Title != notify.TitleOverdue {
		t.Fatalf("expected one overdue alert, got %+v", gw.Alerts)
	}
}

func TestUnsupportedGatewayKeepsEngineDisabled(t *testing.T) {
	st := store.New()
	e := New(nil, st)
	e.Watch(st)
	e.SetPermission(e.RequestPermission(context.Background()))

	due := time.Now().Add(2 * time.Hour)
	st.Add("a", model.PriorityHigh, &due)
	if e.ActiveCount() != 0 || e.State() != StateDisabled {
		t.Fatalf("unsupported gateway must never hold timers")
	}
}
