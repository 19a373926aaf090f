package trigger

import (
	"context"
	"log/slog"
	"time"

	"github.com/rbright/splconfig/internal/clock"
)

// Lookahead bounds how far ahead an activation timer is armed. Later triggers wait
// for the next periodic recheck.
const Lookahead = time.Hour

// Scheduler arms a one-shot timer for the next activation in a Schedule.
// It must be driven from the owner's serialized context; fire is delivered there too.
type Scheduler struct {
	schedule *Schedule
	clock    clock.Clock
	timer    *clock.OneShot
	fire     func(Candidate)
	logger   *slog.Logger

	pending    Candidate
	hasPending bool
}

// NewScheduler builds a Scheduler. dispatch serializes timer callbacks with the owner.
func NewScheduler(schedule *Schedule, c clock.Clock, dispatch func(func()), fire func(Candidate), logger *slog.Logger) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		clock:    c,
		timer:    clock.NewOneShot(c, dispatch),
		fire:     fire,
		logger:   logger,
	}
}

// Schedule returns the trigger map being driven.
func (s *Scheduler) Schedule() *Schedule { return s.schedule }

// Start computes the next activation. An immediate candidate is returned for the
// caller to act on; otherwise a timer is armed when the activation is within
// Lookahead. Without restart an already armed timer is kept.
func (s *Scheduler) Start(restart bool) (Candidate, bool) {
	if s.timer.Armed() && !restart {
		return Candidate{}, false
	}
	s.Stop()

	now := s.clock.Now()
	next, ok := s.schedule.Next(now)
	if !ok {
		s.log(slog.LevelDebug, "no profile triggers scheduled")
		return Candidate{}, false
	}
	if next.Immediate {
		s.log(slog.LevelInfo, "trigger window already open", "profile", next.Profile, "remaining_ms", next.Remaining.Milliseconds())
		return next, true
	}

	delay := next.At.Sub(now)
	if delay > Lookahead {
		s.log(slog.LevelDebug, "next trigger beyond lookahead", "profile", next.Profile, "at", next.At.Format(time.RFC3339))
		return Candidate{}, false
	}

	s.pending = next
	s.hasPending = true
	s.timer.Arm(delay, func() {
		s.hasPending = false
		s.fire(next)
	})
	s.log(slog.LevelInfo, "trigger timer armed", "profile", next.Profile, "delay_ms", delay.Milliseconds())
	return Candidate{}, false
}

// Stop cancels the armed activation timer.
func (s *Scheduler) Stop() {
	if s.timer.Stop() {
		s.log(slog.LevelDebug, "trigger timer stopped", "profile", s.pending.Profile)
	}
	s.hasPending = false
}

// Pending returns the candidate the armed timer will fire.
func (s *Scheduler) Pending() (Candidate, bool) {
	if !s.timer.Armed() || !s.hasPending {
		return Candidate{}, false
	}
	return s.pending, true
}

func (s *Scheduler) log(level slog.Level, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Log(context.Background(), level, msg, args...)
}
