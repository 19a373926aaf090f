package trigger

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"
)

// ErrUnknownProfile means no trigger exists for the profile.
var ErrUnknownProfile = errors.New("no trigger for profile")

// ErrDuplicateWindow means another trigger with the same days overlaps the candidate.
var ErrDuplicateWindow = errors.New("trigger overlaps an existing trigger on the same days")

// Candidate is the next scheduled activation.
type Candidate struct {
	Profile   string
	At        time.Time
	Duration  int
	Immediate bool
	// Remaining is the unexpired part of the window when Immediate is set.
	Remaining time.Duration
}

// Schedule maps profile names to trigger records. At most one record per profile.
type Schedule struct {
	records map[string]Record
}

// NewSchedule returns an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{records: make(map[string]Record)}
}

// Len returns the number of triggers.
func (s *Schedule) Len() int { return len(s.records) }

// Names returns profile names with triggers in sorted order.
func (s *Schedule) Names() []string {
	return slices.Sorted(maps.Keys(s.records))
}

// Get returns the record for profile.
func (s *Schedule) Get(profile string) (Record, bool) {
	r, ok := s.records[profile]
	return r, ok
}

// Set stores r for profile after checking validity and overlap with other triggers.
func (s *Schedule) Set(profile string, r Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if s.DuplicateWindow(profile, r.Days, r.Hour(), r.Minute(), r.Duration) {
		return fmt.Errorf("%w: %s %02d:%02d", ErrDuplicateWindow, r.Days, r.Hour(), r.Minute())
	}
	s.records[profile] = r
	return nil
}

// Delete removes the trigger for profile.
func (s *Schedule) Delete(profile string) error {
	if _, ok := s.records[profile]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
	}
	delete(s.records, profile)
	return nil
}

// Rename moves a trigger to a new profile name. Missing triggers are ignored.
func (s *Schedule) Rename(oldName, newName string) {
	r, ok := s.records[oldName]
	if !ok {
		return
	}
	delete(s.records, oldName)
	s.records[newName] = r
}

// Purge drops triggers whose profile no longer exists and returns their names.
func (s *Schedule) Purge(exists func(string) bool) []string {
	var purged []string
	for _, name := range s.Names() {
		if !exists(name) {
			delete(s.records, name)
			purged = append(purged, name)
		}
	}
	return purged
}

// Next finds the earliest activation relative to now. Records whose start has passed
// are moved to their next occurrence; when now still falls inside the latest window
// the candidate is immediate.
func (s *Schedule) Next(now time.Time) (Candidate, bool) {
	var best Candidate
	found := false

	for _, name := range s.Names() {
		r := s.records[name]
		candidate := Candidate{Profile: name, At: r.Start, Duration: r.Duration}

		if !r.Start.After(now) {
			if prev, active := r.ActiveAt(now); active && !prev.Before(r.Start) {
				candidate.At = prev
				candidate.Immediate = true
				candidate.Remaining = prev.Add(r.Window()).Sub(now)
			}
			r = r.NextOccurrence(now)
			s.records[name] = r
			if !candidate.Immediate {
				candidate.At = r.Start
			}
		}

		if !found || earlier(candidate, best) {
			best = candidate
			found = true
		}
	}
	return best, found
}

// Advance moves the profile's record past now once its activation has been handled.
func (s *Schedule) Advance(profile string, now time.Time) {
	r, ok := s.records[profile]
	if !ok || r.Start.After(now) {
		return
	}
	s.records[profile] = r.NextOccurrence(now)
}

func earlier(a, b Candidate) bool {
	if a.Immediate != b.Immediate {
		return a.Immediate
	}
	return a.At.Before(b.At)
}

// DuplicateWindow reports whether a trigger other than exclude has the same day mask
// and a window overlapping [start, start+duration). Identical starts always collide.
func (s *Schedule) DuplicateWindow(exclude string, days Weekdays, hour, minute, duration int) bool {
	start := hour*60 + minute
	end := start + duration
	for name, r := range s.records {
		if name == exclude || r.Days != days {
			continue
		}
		otherStart := r.StartMinute()
		otherEnd := otherStart + r.Duration
		if start == otherStart || (start < otherEnd && otherStart < end) {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the records.
func (s *Schedule) Snapshot() map[string]Record {
	return maps.Clone(s.records)
}
