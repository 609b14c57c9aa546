package store

import (
	"time"

	"github.com/kenta1114/my-todo-app/internal/model"
)

// AddSamples appends a small demo set relative to now and returns how many
// tasks were added.
func (s *Store) AddSamples(now time.Time) int {
	inTwoHours := now.Add(2 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	s.Add("Reply to the important email", model.PriorityHigh, &inTwoHours)
	s.Add("Prepare the presentation slides", model.PriorityMedium, &tomorrow)
	s.Add("Buy coffee", model.PriorityLow, nil)

	done := s.Add("Sample completed task", model.PriorityMedium, nil)
	s.Toggle(done.ID)
	return 4
}
