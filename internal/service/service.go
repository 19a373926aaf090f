// Package service owns the configuration state of one session: the profile
// pool, the active view, the trigger schedule, the change cache and the track
// comments. Every method is serialized on one lock, timer callbacks included.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/splconfig/internal/cache"
	"github.com/rbright/splconfig/internal/clock"
	"github.com/rbright/splconfig/internal/comments"
	"github.com/rbright/splconfig/internal/config"
	"github.com/rbright/splconfig/internal/host"
	"github.com/rbright/splconfig/internal/indicator"
	"github.com/rbright/splconfig/internal/ipc"
	"github.com/rbright/splconfig/internal/pool"
	"github.com/rbright/splconfig/internal/profile"
	"github.com/rbright/splconfig/internal/session"
	"github.com/rbright/splconfig/internal/trigger"
	"github.com/rbright/splconfig/internal/view"
)

var (
	// ErrClosed means the service was closed.
	ErrClosed = errors.New("configuration service is closed")
	// ErrStudioNotRunning means an alarm change was refused because the studio is not running.
	ErrStudioNotRunning = errors.New("studio is not running")
	// ErrNotAlarm means a field outside the alarm settings was passed to SetAlarm.
	ErrNotAlarm = errors.New("not an alarm setting")
)

// AlarmFields are the settings the alarm dialog edits.
var AlarmFields = []profile.Field{
	profile.SayEndOfTrack,
	profile.EndOfTrackTime,
	profile.SaySongRamp,
	profile.SongRampTime,
	profile.MicAlarm,
	profile.MicAlarmInterval,
}

// FocusedFileProperty is the focused-element property holding a track's file name.
const FocusedFileProperty = "Filename"

// Options wires a Service. Zero values fall back to the real clock, a silent
// output, no running studio and time.Local.
type Options struct {
	Paths    config.Resolved
	Clock    clock.Clock
	Location *time.Location
	Output   indicator.Output
	Messages indicator.Messages
	Host     host.Inputs
	Logger   *slog.Logger
}

// Service is the configuration service.
type Service struct {
	mu sync.Mutex

	paths    config.Resolved
	clock    clock.Clock
	out      indicator.Output
	msgs     indicator.Messages
	host     host.Inputs
	logger   *slog.Logger
	store    *profile.Store
	pool     *pool.Pool
	cache    *cache.Cache
	triggers *trigger.Store
	comments *comments.Map
	coord    *session.Coordinator

	report   *profile.Report
	warnings []string
	started  bool
	closed   bool
}

// silent discards every output call.
type silent struct{}

func (silent) Speak(context.Context, string)                          {}
func (silent) Braille(context.Context, string)                        {}
func (silent) Tone(context.Context, float64, time.Duration)           {}
func (silent) ShowMessage(context.Context, string, string, ...string) {}

// Open loads every store and builds the active view on the base profile.
// Load anomalies are shown once as a single message; dangling instant switch
// and trigger references are dropped with a warning.
func Open(ctx context.Context, opts Options) (*Service, error) {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Output == nil {
		opts.Output = silent{}
	}
	if opts.Host == nil {
		opts.Host = host.Static{}
	}

	s := &Service{
		paths:  opts.Paths,
		clock:  opts.Clock,
		out:    opts.Output,
		msgs:   opts.Messages,
		host:   opts.Host,
		logger: opts.Logger,
		store:  profile.NewStore(opts.Logger),
		cache:  cache.New(),
	}

	p, report, err := pool.InitializeAll(s.store, opts.Paths.BaseProfile, opts.Paths.ProfilesDir, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	s.pool = p
	s.report = report
	for _, prof := range p.Profiles() {
		s.cache.Snapshot(prof)
	}

	base := p.Base()
	if base.InstantProfile != "" {
		if _, err := p.IndexByName(base.InstantProfile); err != nil {
			s.log(slog.LevelWarn, "instant switch profile missing; designation cleared", "profile", base.InstantProfile)
			base.InstantProfile = ""
			s.warnings = append(s.warnings, s.msgs.InstantMissing)
		}
	}

	s.triggers = trigger.NewStore(opts.Paths.TriggersFile, opts.Location, opts.Logger)
	schedule, err := s.triggers.Load()
	if err != nil {
		return nil, fmt.Errorf("load triggers: %w", err)
	}
	if purged := schedule.Purge(s.exists); len(purged) > 0 {
		s.log(slog.LevelWarn, "triggers for missing profiles removed", "profiles", strings.Join(purged, ","))
		s.warnings = append(s.warnings, fmt.Sprintf(s.msgs.PurgedFormat, strings.Join(purged, ", ")))
	}

	s.comments, err = comments.Load(opts.Paths.CommentsFile, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}

	v, err := view.Merge(p, 0)
	if err != nil {
		return nil, err
	}
	s.coord = session.New(session.Options{
		Pool:     p,
		View:     v,
		Schedule: schedule,
		Clock:    opts.Clock,
		Dispatch: s.dispatch,
		Output:   opts.Output,
		Messages: opts.Messages,
		Logger:   opts.Logger,
	})

	if !report.Empty() {
		s.log(slog.LevelWarn, "profile load issues", "count", len(report.Entries()))
		s.out.ShowMessage(ctx, s.msgs.LoadIssuesTitle, report.String(), "OK")
	}
	for _, warning := range s.warnings {
		s.out.Speak(ctx, warning)
	}
	s.log(slog.LevelInfo, "configuration opened", "profiles", p.Len(), "triggers", schedule.Len(), "comments", s.comments.Len())
	return s, nil
}

// Report returns the aggregated load anomalies.
func (s *Service) Report() *profile.Report { return s.report }

// Warnings returns the reference problems found while opening.
func (s *Service) Warnings() []string { return append([]string(nil), s.warnings...) }

// Paths returns the on-disk locations in use.
func (s *Service) Paths() config.Resolved { return s.paths }

// Handle serves IPC requests for a resident session.
func (s *Service) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ipc.Failure(ErrClosed)
	}
	if req.Command == ipc.CommandSave {
		if err := s.save(); err != nil {
			return ipc.Failure(err)
		}
		return ipc.Response{OK: true, State: string(s.coord.State()), Profile: s.coord.View().ActiveName, Message: "saved"}
	}
	return s.coord.Handle(ctx, req)
}

// StartTriggers runs the trigger scheduler. restart discards an armed timer.
func (s *Service) StartTriggers(ctx context.Context, restart bool) error {
	return s.locked(func() error {
		s.started = true
		return s.coord.StartTriggers(ctx, restart)
	})
}

// Select makes the named profile active.
func (s *Service) Select(ctx context.Context, name string) error {
	return s.locked(func() error { return s.coord.Select(ctx, name) })
}

// InstantSwitch toggles the instant switch profile.
func (s *Service) InstantSwitch(ctx context.Context) error {
	return s.locked(func() error { return s.coord.InstantToggle(ctx) })
}

// Save writes back the active view and persists every changed profile, the
// trigger schedule and the comment map.
func (s *Service) Save() error {
	return s.locked(s.save)
}

// Close stops timers and saves.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.coord.Close()
	err := s.save()
	s.closed = true
	s.log(slog.LevelInfo, "configuration closed")
	return err
}

func (s *Service) save() error {
	if err := s.coord.Commit(); err != nil {
		return err
	}

	var errs []error
	written := 0
	for _, prof := range s.pool.Profiles() {
		if !s.cache.ShouldSave(prof) {
			continue
		}
		if err := s.store.Save(prof); err != nil {
			errs = append(errs, err)
			continue
		}
		s.cache.Snapshot(prof)
		written++
	}

	if _, err := s.triggers.Save(s.coord.Scheduler().Schedule()); err != nil {
		errs = append(errs, err)
	}
	if err := s.comments.Flush(); err != nil {
		errs = append(errs, err)
	}
	s.log(slog.LevelDebug, "configuration saved", "profiles_written", written)
	return errors.Join(errs...)
}

// dispatch runs timer callbacks under the service lock.
func (s *Service) dispatch(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	fn()
}

func (s *Service) locked(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return fn()
}

func (s *Service) exists(name string) bool {
	_, err := s.pool.IndexByName(name)
	return err == nil
}

func (s *Service) log(level slog.Level, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Log(context.Background(), level, msg, args...)
}
