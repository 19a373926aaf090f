// Package trigger schedules time-based profile activation.
package trigger

import (
	"fmt"
	"strings"
	"time"
)

// Weekdays is a 7-bit day mask. Monday is the high bit (64) and Sunday the low bit (1).
type Weekdays uint8

// AllDays has every weekday set.
const AllDays Weekdays = 0x7f

var dayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// Bit returns the mask bit for d.
func Bit(d time.Weekday) Weekdays {
	return 64 >> ((int(d) + 6) % 7)
}

// Has reports whether d is set.
func (w Weekdays) Has(d time.Weekday) bool {
	return w&Bit(d) != 0
}

// Valid reports whether at least one day is set and no bits beyond the week are.
func (w Weekdays) Valid() bool {
	return w != 0 && w <= AllDays
}

// Count returns the number of days set.
func (w Weekdays) Count() int {
	n := 0
	for _, d := range dayOrder {
		if w.Has(d) {
			n++
		}
	}
	return n
}

func (w Weekdays) String() string {
	var names []string
	for _, d := range dayOrder {
		if w.Has(d) {
			names = append(names, d.String()[:3])
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// ParseWeekdays reads a comma-separated day list such as "mon,wed,fri" or "all".
func ParseWeekdays(raw string) (Weekdays, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "all" || raw == "daily" {
		return AllDays, nil
	}

	var w Weekdays
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		found := false
		for _, d := range dayOrder {
			if strings.HasPrefix(strings.ToLower(d.String()), part) && len(part) >= 2 {
				w |= Bit(d)
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown weekday %q", part)
		}
	}
	if !w.Valid() {
		return 0, fmt.Errorf("no weekdays selected")
	}
	return w, nil
}

// Next returns the earliest instant strictly after from that falls on a set day at
// hour:minute. The mask is treated as circular, so the answer is at most seven days out.
func (w Weekdays) Next(hour, minute int, from time.Time) time.Time {
	for offset := 0; offset <= 7; offset++ {
		candidate := time.Date(from.Year(), from.Month(), from.Day()+offset, hour, minute, 0, 0, from.Location())
		if offset == 0 && !from.Before(candidate) {
			continue
		}
		if w.Has(candidate.Weekday()) {
			return candidate
		}
	}
	return time.Time{}
}

// Previous returns the latest instant at or before at that falls on a set day at
// hour:minute.
func (w Weekdays) Previous(hour, minute int, at time.Time) time.Time {
	for offset := 0; offset <= 7; offset++ {
		candidate := time.Date(at.Year(), at.Month(), at.Day()-offset, hour, minute, 0, 0, at.Location())
		if offset == 0 && candidate.After(at) {
			continue
		}
		if w.Has(candidate.Weekday()) {
			return candidate
		}
	}
	return time.Time{}
}
