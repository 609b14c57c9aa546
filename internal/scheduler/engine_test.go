package scheduler

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestEngineEmitsInTriggerOrder(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now()
	if err := engine.Schedule(AlertEvent{ID: "later", TriggerAt: now.Add(80 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule later: %v", err)
	}
	if err := engine.Schedule(AlertEvent{ID: "sooner", TriggerAt: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule sooner: %v", err)
	}

	first := waitEvent(t, engine.C(), time.Second)
	second := waitEvent(t, engine.C(), time.Second)
	if first.ID != "sooner" || second.ID != "later" {
		t.Fatalf("unexpected order: first=%s second=%s", first.ID, second.ID)
	}
}

func TestEngineCancelPreventsEmission(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now()
	if err := engine.Schedule(AlertEvent{ID: "canceled", TriggerAt: now.Add(30 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule canceled: %v", err)
	}
	if err := engine.Schedule(AlertEvent{ID: "kept", TriggerAt: now.Add(60 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule kept: %v", err)
	}
	if !engine.Cancel("canceled") {
		t.Fatal("expected first cancel to succeed")
	}
	if engine.Cancel("canceled") {
		t.Fatal("second cancel must be a no-op")
	}

	got := waitEvent(t, engine.C(), time.Second)
	if got.ID != "kept" {
		t.Fatalf("expected kept event, got %s", got.ID)
	}
	if engine.Pending() != 0 {
		t.Fatalf("expected empty queue, got %d", engine.Pending())
	}
}

func TestEngineCancelAfterEmissionIsNoop(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	defer engine.Stop()

	if err := engine.Schedule(AlertEvent{ID: "fired", TriggerAt: time.Now().Add(10 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	waitEvent(t, engine.C(), time.Second)
	if engine.Cancel("fired") {
		t.Fatal("cancel after emission must report false")
	}
}

func TestEngineSlowConsumerLosesNothing(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	defer engine.Stop()

	now := time.Now().Add(20 * time.Millisecond)
	const total = 25
	for i := 0; i < total; i++ {
		if err := engine.Schedule(AlertEvent{
			ID:        fmt.Sprintf("evt-%d", i),
			TriggerAt: now,
		}); err != nil {
			t.Fatalf("schedule event: %v", err)
		}
	}

	time.Sleep(120 * time.Millisecond)
	seen := make(map[string]bool, total)
	for i := 0; i < total; i++ {
		ev := waitEvent(t, engine.C(), time.Second)
		seen[ev.ID] = true
	}
	if len(seen) != total {
		t.Fatalf("expected %d distinct events, got %d", total, len(seen))
	}
	if engine.Pending() != 0 {
		t.Fatalf("expected empty queue, got %d", engine.Pending())
	}
}

func TestEngineStopUnblocksPendingEmission(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()

	at := time.Now().Add(10 * time.Millisecond)
	for i := 0; i < 3; i++ {
		if err := engine.Schedule(AlertEvent{ID: fmt.Sprintf("evt-%d", i), TriggerAt: at}); err != nil {
			t.Fatalf("schedule event: %v", err)
		}
	}
	time.Sleep(60 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		engine.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop did not return while the loop was waiting on the consumer")
	}
}

func TestScheduleValidation(t *testing.T) {
	engine := NewEngine(1)
	if err := engine.Schedule(AlertEvent{ID: "bad"}); err != ErrInvalidTriggerTime {
		t.Fatalf("expected ErrInvalidTriggerTime, got %v", err)
	}
	at := time.Now().Add(time.Hour)
	if err := engine.Schedule(AlertEvent{TriggerAt: at}); err != ErrMissingID {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
	if err := engine.Schedule(AlertEvent{ID: "dup", TriggerAt: at}); err != nil {
		t.Fatalf("schedule dup: %v", err)
	}
	if err := engine.Schedule(AlertEvent{ID: "dup", TriggerAt: at}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestScheduleAfterStopFails(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	engine.Stop()
	engine.Stop()
	err := engine.Schedule(AlertEvent{ID: "late", TriggerAt: time.Now().Add(time.Minute)})
	if !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func waitEvent(t *testing.T, ch <-chan AlertEvent, timeout time.Duration) AlertEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
		return AlertEvent{}
	}
}
