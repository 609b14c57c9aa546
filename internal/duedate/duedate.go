// Package duedate derives deadline facts from a task's due date. Every
// function takes "now" explicitly and uses now's location as the local
// calendar.
package duedate

import "time"

type Status string

const (
	StatusNormal  Status = "normal"
	StatusWarning Status = "warning"
	StatusOverdue Status = "overdue"
	StatusToday   Status = "today"
)

func IsOverdue(due, now time.Time) bool {
	return due.Before(now)
}

func IsToday(due, now time.Time) bool {
	y1, m1, d1 := due.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// DaysUntil counts calendar days from now's day to due's day. Negative when
// due lies on an earlier day.
func DaysUntil(due, now time.Time) int {
	dueDay := calendarDay(due.In(now.Location()))
	today := calendarDay(now)
	return int(dueDay.Sub(today) / (24 * time.Hour))
}

// StatusOf classifies a due date. The warning branch can only be reached by a
// due date that is neither overdue nor today yet lies on an earlier calendar
// day, which cannot happen; it is kept so callers can switch over all four
// values.
func StatusOf(due, now time.Time) Status {
	if IsOverdue(due, now) {
		return StatusOverdue
	}
	if IsToday(due, now) {
		return StatusToday
	}
	if DaysUntil(due, now) < 1 {
		return StatusWarning
	}
	return StatusNormal
}

func ReminderFireTime(due time.Time, beforeMinutes int) time.Time {
	return due.Add(-time.Duration(beforeMinutes) * time.Minute)
}

func Format(t time.Time) string {
	return t.Format("Jan 2 15:04")
}

func FormatShort(t time.Time) string {
	return t.Format("Jan 2")
}

// calendarDay maps a local date onto UTC midnight so day arithmetic is not
// skewed by DST transitions.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
