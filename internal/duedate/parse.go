package duedate

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("duedate: invalid date")

var inputLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Parse reads a due date typed by the user, interpreted in now's location.
// A date without a time of day means the end of that day (23:59). The words
// "today" and "tomorrow" are accepted, as is a full RFC 3339 timestamp.
func Parse(raw string, now time.Time) (time.Time, error) {
	s := strings.TrimSpace(raw)
	loc := now.Location()
	switch strings.ToLower(s) {
	case "":
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	case "today":
		return endOfDay(now), nil
	case "tomorrow":
		return endOfDay(now.AddDate(0, 0, 1)), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range inputLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" {
			return endOfDay(t), nil
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 0, 0, t.Location())
}
