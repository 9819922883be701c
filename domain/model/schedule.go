package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/teambition/rrule-go"
)

// DefaultIntervalAnchor is used when an interval schedule has no anchor date
// and when an rrule has no DTSTART.
var DefaultIntervalAnchor = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// Schedule describes when a deployment should produce flow runs.
// Exactly one of Cron, Interval or RRule is set.
type Schedule struct {
	Cron       string        `json:"cron,omitempty" yaml:"cron,omitempty"`
	Interval   time.Duration `json:"interval,omitempty" yaml:"interval,omitempty"`
	AnchorDate *time.Time    `json:"anchor_date,omitempty" yaml:"anchor_date,omitempty"`
	RRule      string        `json:"rrule,omitempty" yaml:"rrule,omitempty"`
	Timezone   string        `json:"timezone,omitempty" yaml:"timezone,omitempty"`
}

// Kind reports which schedule type is set ("cron", "interval", "rrule" or "").
func (s *Schedule) Kind() string {
	switch {
	case s == nil:
		return ""
	case s.Cron != "":
		return "cron"
	case s.Interval != 0:
		return "interval"
	case s.RRule != "":
		return "rrule"
	}
	return ""
}

// Validate checks that exactly one schedule type is set and that it parses.
func (s *Schedule) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: schedule is nil", ErrScheduleInvalid)
	}
	n := 0
	for _, set := range []bool{s.Cron != "", s.Interval != 0, s.RRule != ""} {
		if set {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("%w: exactly one of cron, interval or rrule must be set", ErrScheduleInvalid)
	}
	if s.AnchorDate != nil && s.Interval == 0 {
		return fmt.Errorf("%w: an anchor date can only be provided with an interval schedule", ErrScheduleInvalid)
	}
	if s.Interval < 0 {
		return fmt.Errorf("%w: interval must be positive", ErrScheduleInvalid)
	}
	if _, err := s.location(); err != nil {
		return err
	}
	switch {
	case s.Cron != "":
		if _, err := cron.ParseStandard(s.Cron); err != nil {
			return fmt.Errorf("%w: cron %q: %v", ErrScheduleInvalid, s.Cron, err)
		}
	case s.RRule != "":
		if _, err := s.rruleSet(DefaultIntervalAnchor); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schedule) location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrScheduleInvalid, s.Timezone)
	}
	return loc, nil
}

// rruleLines splits the rule into RFC 5545 content lines. A bare rule such as
// "FREQ=DAILY;COUNT=3" is read as an RRULE line.
func (s *Schedule) rruleLines() []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(s.RRule, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > 0 {
		first := strings.ToUpper(lines[0])
		if !strings.HasPrefix(first, "DTSTART") && !strings.HasPrefix(first, "RRULE") &&
			!strings.HasPrefix(first, "RDATE") && !strings.HasPrefix(first, "EXDATE") {
			lines[0] = "RRULE:" + lines[0]
		}
	}
	return lines
}

// rruleSet parses the rule in the schedule timezone. A rule without DTSTART
// starts at anchor.
func (s *Schedule) rruleSet(anchor time.Time) (*rrule.Set, error) {
	loc, err := s.location()
	if err != nil {
		return nil, err
	}
	lines := s.rruleLines()
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: rrule is empty", ErrScheduleInvalid)
	}
	set, err := rrule.StrSliceToRRuleSetInLoc(lines, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: rrule %q: %v", ErrScheduleInvalid, s.RRule, err)
	}
	if set.GetRRule() == nil && len(set.GetRDate()) == 0 {
		return nil, fmt.Errorf("%w: rrule %q has no RRULE or RDATE", ErrScheduleInvalid, s.RRule)
	}
	if set.GetDTStart().IsZero() && !anchor.IsZero() {
		set.DTStart(anchor.In(loc))
	}
	return set, nil
}

// HasStart reports whether an rrule schedule carries its own DTSTART.
func (s *Schedule) HasStart() bool {
	if s.Kind() != "rrule" {
		return false
	}
	set, err := s.rruleSet(time.Time{})
	return err == nil && !set.GetDTStart().IsZero()
}

// PinStart writes a DTSTART line at start into an rrule schedule that has
// none, so its occurrences stay the same on every evaluation.
func (s *Schedule) PinStart(start time.Time) error {
	if s.Kind() != "rrule" || s.HasStart() {
		return nil
	}
	loc, err := s.location()
	if err != nil {
		return err
	}
	start = start.In(loc).Truncate(time.Second)
	var dtstart string
	if loc == time.UTC {
		dtstart = "DTSTART:" + start.Format("20060102T150405Z")
	} else {
		dtstart = "DTSTART;TZID=" + loc.String() + ":" + start.Format("20060102T150405")
	}
	s.RRule = strings.Join(append([]string{dtstart}, s.rruleLines()...), "\n")
	return nil
}

// Next returns up to n occurrences strictly after the given time.
func (s *Schedule) Next(after time.Time, n int) ([]time.Time, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	loc, _ := s.location()
	out := make([]time.Time, 0, n)
	switch s.Kind() {
	case "cron":
		sched, _ := cron.ParseStandard(s.Cron)
		t := after.In(loc)
		for len(out) < n {
			t = sched.Next(t)
			if t.IsZero() {
				break
			}
			out = append(out, t.UTC())
		}
	case "interval":
		anchor := DefaultIntervalAnchor
		if s.AnchorDate != nil {
			anchor = *s.AnchorDate
		}
		anchor = anchor.In(loc)
		var t time.Time
		if after.Before(anchor) {
			t = anchor
		} else {
			k := after.Sub(anchor)/s.Interval + 1
			t = anchor.Add(k * s.Interval)
		}
		for len(out) < n {
			out = append(out, t.UTC())
			t = t.Add(s.Interval)
		}
	case "rrule":
		set, err := s.rruleSet(DefaultIntervalAnchor)
		if err != nil {
			return nil, err
		}
		t := after
		for len(out) < n {
			t = set.After(t, false)
			if t.IsZero() {
				break
			}
			out = append(out, t.UTC())
		}
	}
	return out, nil
}

// String renders a short human readable description.
func (s *Schedule) String() string {
	if s == nil {
		return ""
	}
	tz := ""
	if s.Timezone != "" {
		tz = " (" + s.Timezone + ")"
	}
	switch s.Kind() {
	case "cron":
		return "cron " + s.Cron + tz
	case "interval":
		return "every " + s.Interval.String() + tz
	case "rrule":
		return "rrule " + strings.ReplaceAll(s.RRule, "\n", " ") + tz
	}
	return ""
}
