package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidChannel  = errors.New("model: invalid reminder channel")
	ErrInvalidLeadTime = errors.New("model: invalid reminder lead time")
)

type Channel string

const (
	ChannelBrowser Channel = "browser"
	// ChannelEmail is accepted but has no delivery path; it behaves like none.
	ChannelEmail Channel = "email"
	ChannelNone  Channel = "none"
)

func (c Channel) IsValid() bool {
	switch c {
	case ChannelBrowser, ChannelEmail, ChannelNone:
		return true
	default:
		return false
	}
}

// Delivers reports whether alerts sent on this channel reach the user.
func (c Channel) Delivers() bool {
	return c == ChannelBrowser
}

func ParseChannel(raw string) (Channel, error) {
	c := Channel(strings.ToLower(strings.TrimSpace(raw)))
	if c == "desktop" {
		c = ChannelBrowser
	}
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidChannel, raw)
	}
	return c, nil
}

// LeadTimes lists the lead times offered by the settings surface, in minutes.
var LeadTimes = []int{5, 15, 30, 60, 1440}

func IsLeadTime(minutes int) bool {
	for _, v := range LeadTimes {
		if v == minutes {
			return true
		}
	}
	return false
}

type ReminderSettings struct {
	Enabled       bool
	BeforeMinutes int
	Channel       Channel
}

func DefaultReminderSettings() ReminderSettings {
	return ReminderSettings{
		Enabled:       true,
		BeforeMinutes: 30,
		Channel:       ChannelBrowser,
	}
}

func (s ReminderSettings) Validate() error {
	if !IsLeadTime(s.BeforeMinutes) {
		return fmt.Errorf("%w: %d", ErrInvalidLeadTime, s.BeforeMinutes)
	}
	if !s.Channel.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidChannel, s.Channel)
	}
	return nil
}

// SettingsPatch is a partial update; nil fields keep their current value.
type SettingsPatch struct {
	Enabled       *bool
	BeforeMinutes *int
	Channel       *Channel
}

func (p SettingsPatch) Validate() error {
	if p.BeforeMinutes != nil && !IsLeadTime(*p.BeforeMinutes) {
		return fmt.Errorf("%w: %d", ErrInvalidLeadTime, *p.BeforeMinutes)
	}
	if p.Channel != nil && !p.Channel.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidChannel, *p.Channel)
	}
	return nil
}

func (s ReminderSettings) Merge(p SettingsPatch) ReminderSettings {
	out := s
	if p.Enabled != nil {
		out.Enabled = *p.Enabled
	}
	if p.BeforeMinutes != nil {
		out.BeforeMinutes = *p.BeforeMinutes
	}
	if p.Channel != nil {
		out.Channel = *p.Channel
	}
	return out
}
