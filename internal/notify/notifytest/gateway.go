// Package notifytest provides an in-memory notify.Gateway driven by a manual
// clock.
package notifytest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kenta1114/my-todo-app/internal/notify"
)

type Alert struct {
	Title string
	Body  string
	At    time.Time
}

type timer struct {
	handle  notify.Handle
	body    string
	at      time.Time
	onFired func()
}

type Gateway struct {
	Permission bool
	Alerts     []Alert
	Scheduled  int
	Canceled   int

	now     time.Time
	seq     int
	pending map[notify.Handle]*timer
}

func New(now time.Time) *Gateway {
	return &Gateway{
		Permission: true,
		now:        now,
		pending:    make(map[notify.Handle]*timer),
	}
}

func (g *Gateway) Now() time.Time { return g.now }

func (g *Gateway) RequestPermission(context.Context) bool { return g.Permission }

func (g *Gateway) FireNow(title, body string) {
	if !g.Permission {
		return
	}
	g.Alerts = append(g.Alerts, Alert{Title: title, Body: body, At: g.now})
}

func (g *Gateway) ScheduleAt(body string, at time.Time, onFired func()) notify.Handle {
	if !at.After(g.now) {
		g.FireNow(notify.TitleOverdue, body)
		if onFired != nil {
			onFired()
		}
		return notify.NoHandle
	}
	g.seq++
	h := notify.Handle(fmt.Sprintf("timer-%d", g.seq))
	g.pending[h] = &timer{handle: h, body: body, at: at, onFired: onFired}
	g.Scheduled++
	return h
}

func (g *Gateway) Cancel(h notify.Handle) {
	if _, ok := g.pending[h]; !ok {
		return
	}
	delete(g.pending, h)
	g.Canceled++
}

// Advance moves the clock forward and fires every timer that came due, in
// trigger order.
func (g *Gateway) Advance(d time.Duration) {
	g.now = g.now.Add(d)
	due := make([]*timer, 0)
	for _, t := range g.pending {
		if !t.at.After(g.now) {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		if _, ok := g.pending[t.handle]; !ok {
			continue
		}
		delete(g.pending, t.handle)
		g.FireNow(notify.TitleDueSoon, t.body)
		if t.onFired != nil {
			t.onFired()
		}
	}
}

func (g *Gateway) PendingCount() int { return len(g.pending) }

func (g *Gateway) FireAt(h notify.Handle) (time.Time, bool) {
	t, ok := g.pending[h]
	if !ok {
		return time.Time{}, false
	}
	return t.at, true
}
