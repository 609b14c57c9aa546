// Package store holds the authoritative task collection. Mutations are total:
// unknown ids are reported through the boolean result, and persistence
// failures are logged rather than returned.
package store

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/kenta1114/my-todo-app/internal/duedate"
	"github.com/kenta1114/my-todo-app/internal/model"
	"github.com/kenta1114/my-todo-app/internal/storage"
)

type Listener = func(model.Change)

// Persister receives write-through updates. storage.SQLiteRepository
// satisfies it.
type Persister interface {
	CreateTask(ctx context.Context, in storage.Task) error
	UpdateTask(ctx context.Context, in storage.Task) error
	DeleteTask(ctx context.Context, id string) error
	ReplaceTasks(ctx context.Context, in []storage.Task) error
}

type Loader interface {
	ListTasks(ctx context.Context, filter storage.TaskListFilter) ([]storage.Task, error)
}

type Store struct {
	tasks     []model.Task
	index     map[string]int
	listeners []Listener
	persister Persister
	logger    *log.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Store)

func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		index:  make(map[string]int),
		logger: log.New(io.Discard),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collection with the persisted one without
// writing back or notifying listeners.
func (s *Store) Load(ctx context.Context, src Loader) error {
	rows, err := src.ListTasks(ctx, storage.TaskListFilter{})
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	tasks := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, fromEntity(row))
	}
	s.setTasks(tasks)
	s.logger.Debug("tasks loaded", "count", len(tasks))
	return nil
}

func (s *Store) OnChange(fn Listener) {
	if fn != nil {
		s.listeners = append(s.listeners, fn)
	}
}

// List returns a detached copy of every task in insertion order.
func (s *Store) List() []model.Task {
	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	return out
}

func (s *Store) Len() int { return len(s.tasks) }

func (s *Store) Get(id string) (model.Task, bool) {
	i, ok := s.index[id]
	if !ok {
		return model.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// Add appends a new pending task. An unknown priority falls back to MEDIUM.
func (s *Store) Add(text string, priority model.Priority, due *time.Time) model.Task {
	if !priority.IsValid() {
		priority = model.PriorityMedium
	}
	t := model.Task{
		ID:        s.uniqueID(),
		Text:      text,
		Priority:  priority,
		CreatedAt: s.now(),
		DueDate:   copyTime(due),
	}
	s.index[t.ID] = len(s.tasks)
	s.tasks = append(s.tasks, t)
	s.persist("create", t.ID, func(ctx context.Context) error { return s.persister.CreateTask(ctx, toEntity(t)) })
	s.emit(model.ChangeAdded, t.ID)
	return t.Clone()
}

func (s *Store) Toggle(id string) bool {
	return s.mutate(id, model.ChangeToggled, func(t *model.Task) bool {
		t.Done = !t.Done
		return true
	})
}

func (s *Store) EditText(id, text string) bool {
	return s.mutate(id, model.ChangeEdited, func(t *model.Task) bool {
		if t.Text == text {
			return false
		}
		t.Text = text
		return true
	})
}

func (s *Store) SetPriority(id string, p model.Priority) bool {
	if !p.IsValid() {
		return false
	}
	return s.mutate(id, model.ChangeEdited, func(t *model.Task) bool {
		if t.Priority == p {
			return false
		}
		t.Priority = p
		return true
	})
}

// SetDueDate changes or clears the deadline. A different deadline re-arms
// the reminder by clearing ReminderSent.
func (s *Store) SetDueDate(id string, due *time.Time) bool {
	return s.mutate(id, model.ChangeEdited, func(t *model.Task) bool {
		if model.SameDueDate(t.DueDate, due) {
			return false
		}
		t.DueDate = copyTime(due)
		t.ReminderSent = false
		return true
	})
}

// SetReminderSent is the only writer of ReminderSent=true.
func (s *Store) SetReminderSent(id string) bool {
	return s.mutate(id, model.ChangeReminded, func(t *model.Task) bool {
		if t.ReminderSent {
			return false
		}
		t.ReminderSent = true
		return true
	})
}

func (s *Store) Delete(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.reindex()
	s.persist("delete", id, func(ctx context.Context) error { return s.persister.DeleteTask(ctx, id) })
	s.emit(model.ChangeDeleted, id)
	return true
}

func (s *Store) ClearCompleted() int {
	return s.removeWhere(func(t model.Task) bool { return t.Done })
}

// ClearOverdue removes pending tasks whose deadline has passed.
func (s *Store) ClearOverdue(now time.Time) int {
	return s.removeWhere(func(t model.Task) bool {
		return !t.Done && t.HasDueDate() && duedate.IsOverdue(*t.DueDate, now)
	})
}

func (s *Store) ClearAll() int {
	return s.removeWhere(func(model.Task) bool { return true })
}

// Replace swaps in an imported collection. Missing or duplicate ids get fresh
// ones, blank creation times become now, and unknown priorities become MEDIUM.
func (s *Store) Replace(tasks []model.Task) {
	seen := make(map[string]bool, len(tasks))
	next := make([]model.Task, 0, len(tasks))
	for _, in := range tasks {
		t := in.Clone()
		if strings.TrimSpace(t.ID) == "" || seen[t.ID] {
			t.ID = s.newID()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = s.now()
		}
		if !t.Priority.IsValid() {
			t.Priority = model.PriorityMedium
		}
		seen[t.ID] = true
		next = append(next, t)
	}
	s.setTasks(next)
	s.persistAll()
	s.emit(model.ChangeReplaced, "")
}

func (s *Store) mutate(id string, kind model.ChangeKind, fn func(*model.Task) bool) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	if !fn(&s.tasks[i]) {
		return true
	}
	t := s.tasks[i]
	s.persist("update", id, func(ctx context.Context) error { return s.persister.UpdateTask(ctx, toEntity(t)) })
	s.emit(kind, id)
	return true
}

func (s *Store) removeWhere(match func(model.Task) bool) int {
	kept := make([]model.Task, 0, len(s.tasks))
	removed := 0
	for _, t := range s.tasks {
		if match(t) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	if removed == 0 {
		return 0
	}
	s.setTasks(kept)
	s.persistAll()
	s.emit(model.ChangeReplaced, "")
	return removed
}

func (s *Store) setTasks(tasks []model.Task) {
	s.tasks = tasks
	s.reindex()
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.tasks))
	for i, t := range s.tasks {
		s.index[t.ID] = i
	}
}

func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if _, taken := s.index[id]; !taken && id != "" {
			return id
		}
	}
}

func (s *Store) emit(kind model.ChangeKind, id string) {
	ch := model.Change{Kind: kind, TaskID: id}
	for _, fn := range s.listeners {
		fn(ch)
	}
}

func (s *Store) persist(op, id string, fn func(context.Context) error) {
	if s.persister == nil {
		return
	}
	if err := fn(context.Background()); err != nil {
		s.logger.Error("persist task", "op", op, "task", id, "err", err)
	}
}

func (s *Store) persistAll() {
	if s.persister == nil {
		return
	}
	rows := make([]storage.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		rows = append(rows, toEntity(t))
	}
	if err := s.persister.ReplaceTasks(context.Background(), rows); err != nil {
		s.logger.Error("persist task collection", "count", len(rows), "err", err)
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := *t
	return &v
}
