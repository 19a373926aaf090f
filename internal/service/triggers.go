package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rbright/splconfig/internal/pool"
	"github.com/rbright/splconfig/internal/trigger"
)

// TriggerInfo pairs a profile with its trigger.
type TriggerInfo struct {
	Profile string
	Record  trigger.Record
}

// Triggers lists triggers by profile name.
func (s *Service) Triggers() []TriggerInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	schedule := s.coord.Scheduler().Schedule()
	out := make([]TriggerInfo, 0, schedule.Len())
	for _, name := range schedule.Names() {
		r, _ := schedule.Get(name)
		out = append(out, TriggerInfo{Profile: name, Record: r})
	}
	return out
}

// SetTrigger schedules a broadcast profile on days at hour:minute for duration
// minutes, replacing its previous trigger. Overlapping windows on the same days
// are rejected.
func (s *Service) SetTrigger(ctx context.Context, name string, days trigger.Weekdays, hour, minute, duration int) (trigger.Record, error) {
	var record trigger.Record
	err := s.locked(func() error {
		index, err := s.pool.IndexByName(name)
		if err != nil {
			return err
		}
		if index == 0 {
			return pool.ErrBaseProfile
		}
		r, err := trigger.NewRecord(days, hour, minute, duration, s.clock.Now())
		if err != nil {
			return err
		}
		if err := s.coord.Scheduler().Schedule().Set(name, r); err != nil {
			return err
		}
		record = r
		s.log(slog.LevelInfo, "trigger set", "profile", name, "days", days.String(), "start", r.Start.Format("2006-01-02 15:04"), "duration", duration)
		if s.started {
			return s.coord.StartTriggers(ctx, true)
		}
		return nil
	})
	return record, err
}

// ClearTrigger removes a profile's trigger.
func (s *Service) ClearTrigger(ctx context.Context, name string) error {
	return s.locked(func() error {
		if err := s.coord.Scheduler().Schedule().Delete(name); err != nil {
			return err
		}
		s.log(slog.LevelInfo, "trigger cleared", "profile", name)
		if s.started {
			return s.coord.StartTriggers(ctx, true)
		}
		return nil
	})
}

// NextTrigger returns the next activation.
func (s *Service) NextTrigger() (trigger.Candidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coord.NextTrigger()
}

// Now returns the service clock's time.
func (s *Service) Now() time.Time { return s.clock.Now() }
