package trigger

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRecord reports a trigger that cannot be scheduled.
var ErrInvalidRecord = errors.New("invalid trigger")

// MaxDuration caps a trigger window in minutes.
const MaxDuration = 24 * 60

// Record is one profile's trigger: the day mask, the next concrete start, and the
// window length in minutes. Zero duration switches without returning.
type Record struct {
	Days     Weekdays
	Start    time.Time
	Duration int
}

// NewRecord schedules the first occurrence of days at hour:minute after from.
func NewRecord(days Weekdays, hour, minute, duration int, from time.Time) (Record, error) {
	r := Record{Days: days, Start: time.Date(2000, 1, 1, hour, minute, 0, 0, from.Location()), Duration: duration}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r.NextOccurrence(from), nil
}

// Validate checks mask, time of day, and duration bounds.
func (r Record) Validate() error {
	switch {
	case !r.Days.Valid():
		return fmt.Errorf("%w: day mask %d", ErrInvalidRecord, r.Days)
	case r.Duration < 0 || r.Duration > MaxDuration:
		return fmt.Errorf("%w: duration %d outside 0-%d minutes", ErrInvalidRecord, r.Duration, MaxDuration)
	}
	return nil
}

// Hour and Minute give the recurring time of day.
func (r Record) Hour() int   { return r.Start.Hour() }
func (r Record) Minute() int { return r.Start.Minute() }

// Window is the trigger's duration.
func (r Record) Window() time.Duration {
	return time.Duration(r.Duration) * time.Minute
}

// StartMinute is the minute of day at which the trigger begins.
func (r Record) StartMinute() int {
	return r.Hour()*60 + r.Minute()
}

// NextOccurrence returns r moved to the first matching instant strictly after from.
// Applying it again from the returned start advances by exactly one recurrence.
func (r Record) NextOccurrence(from time.Time) Record {
	r.Start = r.Days.Next(r.Hour(), r.Minute(), from)
	return r
}

// ActiveAt reports whether at falls inside the window of the latest occurrence at
// or before at, and returns that occurrence.
func (r Record) ActiveAt(at time.Time) (time.Time, bool) {
	if r.Duration == 0 {
		return time.Time{}, false
	}
	prev := r.Days.Previous(r.Hour(), r.Minute(), at)
	if prev.IsZero() {
		return time.Time{}, false
	}
	return prev, at.Before(prev.Add(r.Window()))
}

// Values encodes r as the seven-number persisted form:
// day mask, year, month, day, hour, minute, duration.
func (r Record) Values() []float64 {
	return []float64{
		float64(r.Days),
		float64(r.Start.Year()),
		float64(r.Start.Month()),
		float64(r.Start.Day()),
		float64(r.Start.Hour()),
		float64(r.Start.Minute()),
		float64(r.Duration),
	}
}

// RecordFromValues decodes the seven-number persisted form in loc.
func RecordFromValues(values []float64, loc *time.Location) (Record, error) {
	if len(values) != 7 {
		return Record{}, fmt.Errorf("%w: %d fields, want 7", ErrInvalidRecord, len(values))
	}
	ints := make([]int, len(values))
	for i, v := range values {
		if v != float64(int(v)) {
			return Record{}, fmt.Errorf("%w: field %d is not an integer", ErrInvalidRecord, i)
		}
		ints[i] = int(v)
	}
	if ints[2] < 1 || ints[2] > 12 || ints[3] < 1 || ints[3] > 31 || ints[4] < 0 || ints[4] > 23 || ints[5] < 0 || ints[5] > 59 {
		return Record{}, fmt.Errorf("%w: bad date %v", ErrInvalidRecord, ints[1:6])
	}
	if ints[0] < 0 || ints[0] > int(AllDays) {
		return Record{}, fmt.Errorf("%w: day mask %d", ErrInvalidRecord, ints[0])
	}

	r := Record{
		Days:     Weekdays(ints[0]),
		Start:    time.Date(ints[1], time.Month(ints[2]), ints[3], ints[4], ints[5], 0, 0, loc),
		Duration: ints[6],
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}
