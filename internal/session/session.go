// Package session coordinates profile activation: manual selection, instant
// switching, time-based triggers and the dialog guard.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rbright/splconfig/internal/clock"
	"github.com/rbright/splconfig/internal/fsm"
	"github.com/rbright/splconfig/internal/indicator"
	"github.com/rbright/splconfig/internal/pool"
	"github.com/rbright/splconfig/internal/profile"
	"github.com/rbright/splconfig/internal/trigger"
	"github.com/rbright/splconfig/internal/view"
)

var (
	// ErrBusy means a configuration dialog is open.
	ErrBusy = errors.New("configuration dialog is open")
	// ErrNoInstantProfile means no instant switch profile is designated or it no longer exists.
	ErrNoInstantProfile = errors.New("no instant switch profile")
	// ErrAlreadyInstant means the instant switch profile is already active.
	ErrAlreadyInstant = errors.New("already in the instant switch profile")
	// ErrTriggerActive means a time-based profile is active.
	ErrTriggerActive = errors.New("time-based profile is active")
	// ErrInconsistentState marks coordinator state that only a bug can produce.
	ErrInconsistentState = errors.New("inconsistent switch state")
)

// metadataSlots names the MetadataEnabled entries in order.
var metadataSlots = [profile.MetadataSlots]string{"DSP encoder", "URL 1", "URL 2", "URL 3", "URL 4"}

// noopOutput preserves coordinator flow when no output is wired.
type noopOutput struct{}

func (noopOutput) Speak(context.Context, string)                          {}
func (noopOutput) Braille(context.Context, string)                        {}
func (noopOutput) Tone(context.Context, float64, time.Duration)           {}
func (noopOutput) ShowMessage(context.Context, string, string, ...string) {}

// Options wires a Coordinator.
type Options struct {
	Pool     *pool.Pool
	View     *view.View
	Schedule *trigger.Schedule
	Clock    clock.Clock
	// Dispatch serializes timer callbacks with every other coordinator call.
	Dispatch func(func())
	Output   indicator.Output
	Messages indicator.Messages
	Logger   *slog.Logger
}

// Coordinator owns the active View and the switch state machine. It is not safe
// for concurrent use; callers serialize every call, and timer callbacks arrive
// through Options.Dispatch.
type Coordinator struct {
	pool      *pool.Pool
	view      *view.View
	scheduler *trigger.Scheduler
	clock     clock.Clock
	ret       *clock.OneShot
	out       indicator.Output
	msgs      indicator.Messages
	logger    *slog.Logger

	state          fsm.State
	prevIndex      int
	triggerProfile string

	dialog    *Dialog
	dialogSeq uint64
	deferred  *trigger.Candidate

	// headsUp is the activation last announced ahead of time.
	headsUp trigger.Candidate
}

// New builds a Coordinator in the Normal state on opts.View.
func New(opts Options) *Coordinator {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Output == nil {
		opts.Output = noopOutput{}
	}
	if opts.Schedule == nil {
		opts.Schedule = trigger.NewSchedule()
	}

	c := &Coordinator{
		pool:      opts.Pool,
		view:      opts.View,
		clock:     opts.Clock,
		ret:       clock.NewOneShot(opts.Clock, opts.Dispatch),
		out:       opts.Output,
		msgs:      opts.Messages,
		logger:    opts.Logger,
		state:     fsm.StateNormal,
		prevIndex: -1,
	}
	c.scheduler = trigger.NewScheduler(opts.Schedule, opts.Clock, opts.Dispatch, c.onTrigger, opts.Logger)
	return c
}

// State returns the current activation state.
func (c *Coordinator) State() fsm.State { return c.state }

// View returns the active configuration view.
func (c *Coordinator) View() *view.View { return c.view }

// Scheduler returns the trigger scheduler driven by this coordinator.
func (c *Coordinator) Scheduler() *trigger.Scheduler { return c.scheduler }

// TriggerProfile returns the name of the active time-based profile.
func (c *Coordinator) TriggerProfile() string { return c.triggerProfile }

// PreviousName returns the profile a return transition will restore.
func (c *Coordinator) PreviousName() string {
	if c.prevIndex < 0 {
		return ""
	}
	p, err := c.pool.At(c.prevIndex)
	if err != nil {
		return ""
	}
	return p.Name
}

// ReturnDeadline reports when an active time-based profile ends.
func (c *Coordinator) ReturnDeadline() (time.Time, bool) { return c.ret.Deadline() }

// Select makes the named profile active. Manual selection leaves any switched state.
func (c *Coordinator) Select(ctx context.Context, name string) error {
	if err := c.checkDialog(ctx); err != nil {
		return err
	}
	index, err := c.pool.IndexByName(name)
	if err != nil {
		return err
	}
	if err := c.transition(fsm.EventSelect); err != nil {
		return err
	}
	c.ret.Stop()
	c.prevIndex = -1
	c.triggerProfile = ""
	if index == c.view.ActiveIndex {
		return nil
	}
	if err := c.switchTo(index); err != nil {
		return err
	}
	c.out.Braille(ctx, c.view.ActiveName)
	return nil
}

// InstantSwitch enters the instant switch profile. Calling it while that profile
// is already active changes nothing.
func (c *Coordinator) InstantSwitch(ctx context.Context) error {
	if err := c.checkDialog(ctx); err != nil {
		return err
	}
	index, err := c.instantIndex(ctx)
	if err != nil {
		return err
	}
	if c.state == fsm.StateTriggerActive {
		c.out.Speak(ctx, c.msgs.TriggerActive)
		return ErrTriggerActive
	}
	if index == c.view.ActiveIndex {
		c.out.Speak(ctx, c.msgs.AlreadyInstant)
		return ErrAlreadyInstant
	}

	prev := c.view.ActiveIndex
	if c.state == fsm.StateInstantSwitched {
		prev = c.prevIndex
	} else if err := c.transition(fsm.EventInstant); err != nil {
		return err
	}
	if err := c.switchTo(index); err != nil {
		return err
	}
	c.prevIndex = prev
	c.log(slog.LevelInfo, "instant switch", "profile", c.view.ActiveName, "previous", c.PreviousName())
	c.out.Speak(ctx, c.msgs.Switching)
	c.out.Tone(ctx, indicator.BeepSwitch.FrequencyHz, indicator.BeepSwitch.Duration)
	c.remindMetadata(ctx)
	return nil
}

// InstantToggle returns from the instant switch profile, or enters it from Normal.
func (c *Coordinator) InstantToggle(ctx context.Context) error {
	if c.state != fsm.StateInstantSwitched {
		return c.InstantSwitch(ctx)
	}
	if err := c.checkDialog(ctx); err != nil {
		return err
	}
	if c.prevIndex < 0 {
		c.log(slog.LevelError, "instant switch active without previous profile")
		return fmt.Errorf("%w: instant switch without previous profile", ErrInconsistentState)
	}
	if err := c.transition(fsm.EventInstant); err != nil {
		return err
	}
	if err := c.switchTo(c.prevIndex); err != nil {
		return err
	}
	c.prevIndex = -1
	c.log(slog.LevelInfo, "instant switch return", "profile", c.view.ActiveName)
	c.out.Speak(ctx, c.msgs.Returning)
	c.out.Tone(ctx, indicator.BeepReturn.FrequencyHz, indicator.BeepReturn.Duration)
	return nil
}

// StartTriggers runs the scheduler. An already open window switches right away.
func (c *Coordinator) StartTriggers(ctx context.Context, restart bool) error {
	next, immediate := c.scheduler.Start(restart)
	if immediate {
		return c.TriggerSwitch(ctx, next)
	}
	c.announceHeadsUp(ctx)
	return nil
}

// TriggerSwitch activates the candidate's profile. A positive duration enters
// the time-based state and arms the return timer; zero duration only switches.
func (c *Coordinator) TriggerSwitch(ctx context.Context, next trigger.Candidate) error {
	if c.state == fsm.StateTriggerActive && c.triggerProfile == "" {
		c.log(slog.LevelError, "time-based state without trigger profile", "candidate", next.Profile)
		return fmt.Errorf("%w: trigger active without profile", ErrInconsistentState)
	}
	if c.dialog != nil {
		deferred := next
		c.deferred = &deferred
		c.log(slog.LevelInfo, "trigger deferred while dialog open", "profile", next.Profile)
		return ErrBusy
	}

	index, err := c.pool.IndexByName(next.Profile)
	if err != nil {
		_ = c.scheduler.Schedule().Delete(next.Profile)
		c.log(slog.LevelWarn, "trigger profile missing; trigger removed", "profile", next.Profile)
		c.out.Speak(ctx, fmt.Sprintf(c.msgs.PurgedFormat, next.Profile))
		if restartErr := c.StartTriggers(ctx, true); restartErr != nil {
			return restartErr
		}
		return err
	}

	if next.Duration == 0 {
		if err := c.transition(fsm.EventSelect); err != nil {
			return err
		}
		c.ret.Stop()
		c.prevIndex = -1
		c.triggerProfile = ""
		if err := c.switchTo(index); err != nil {
			return err
		}
		c.scheduler.Schedule().Advance(next.Profile, c.clock.Now())
		c.log(slog.LevelInfo, "trigger switch", "profile", next.Profile, "return_ms", 0)
		c.announceTrigger(ctx, next.Profile)
		return c.StartTriggers(ctx, true)
	}

	prev := c.view.ActiveIndex
	if c.state.Switched() && c.prevIndex >= 0 {
		prev = c.prevIndex
	}
	if err := c.transition(fsm.EventTrigger); err != nil {
		return err
	}
	if err := c.switchTo(index); err != nil {
		return err
	}
	c.prevIndex = prev
	c.triggerProfile = next.Profile
	c.scheduler.Schedule().Advance(next.Profile, c.clock.Now())

	window := time.Duration(next.Duration) * time.Minute
	if next.Immediate {
		window = next.Remaining
	}
	c.ret.Arm(window, func() {
		if err := c.triggerReturn(context.Background()); err != nil {
			c.log(slog.LevelError, "trigger return failed", "error", err.Error())
		}
	})
	c.log(slog.LevelInfo, "trigger switch", "profile", next.Profile, "return_ms", window.Milliseconds(), "immediate", next.Immediate)
	c.announceTrigger(ctx, next.Profile)
	c.remindMetadata(ctx)
	return c.StartTriggers(ctx, true)
}

// triggerReturn restores the profile active before the time-based switch.
func (c *Coordinator) triggerReturn(ctx context.Context) error {
	if c.state != fsm.StateTriggerActive || c.triggerProfile == "" || c.prevIndex < 0 {
		c.log(slog.LevelError, "trigger return without active trigger", "state", string(c.state), "profile", c.triggerProfile)
		return fmt.Errorf("%w: return from state %s", ErrInconsistentState, c.state)
	}
	if c.dialog != nil {
		// The dialog holds the view; retry once it closes.
		c.log(slog.LevelInfo, "trigger return deferred while dialog open", "profile", c.triggerProfile)
		c.ret.Arm(time.Minute, func() {
			if err := c.triggerReturn(context.Background()); err != nil {
				c.log(slog.LevelError, "trigger return failed", "error", err.Error())
			}
		})
		return nil
	}
	if err := c.transition(fsm.EventTriggerEnd); err != nil {
		return err
	}
	ended := c.triggerProfile
	if err := c.switchTo(c.prevIndex); err != nil {
		return err
	}
	c.prevIndex = -1
	c.triggerProfile = ""
	c.log(slog.LevelInfo, "trigger return", "ended", ended, "profile", c.view.ActiveName)
	c.out.Speak(ctx, c.msgs.TriggerReturn)
	c.out.Tone(ctx, indicator.BeepReturn.FrequencyHz, indicator.BeepReturn.Duration)
	return c.StartTriggers(ctx, true)
}

// ProfileRenamed keeps the coordinator's names in step with a pool rename.
func (c *Coordinator) ProfileRenamed(oldName, newName string) {
	if c.view.ActiveName == oldName {
		c.view.ActiveName = newName
	}
	if c.triggerProfile == oldName {
		c.triggerProfile = newName
	}
	if c.deferred != nil && c.deferred.Profile == oldName {
		c.deferred.Profile = newName
	}
	c.scheduler.Schedule().Rename(oldName, newName)
}

// ProfileRemoving prepares for removal of the profile at index: the base profile
// becomes active when the removed profile is involved in the current state.
// Indexes above index shift down by one once the pool drops it.
func (c *Coordinator) ProfileRemoving(ctx context.Context, index int) error {
	involved := index == c.view.ActiveIndex || index == c.prevIndex
	if involved {
		if err := c.transition(fsm.EventSelect); err != nil {
			return err
		}
		c.ret.Stop()
		c.prevIndex = -1
		c.triggerProfile = ""
		if c.view.ActiveIndex != 0 {
			if err := c.switchTo(0); err != nil {
				return err
			}
			c.out.Braille(ctx, c.view.ActiveName)
		}
	}
	if c.view.ActiveIndex > index {
		c.view.ActiveIndex--
	}
	if c.prevIndex > index {
		c.prevIndex--
	}
	return nil
}

// Reload rebuilds the view from the active profile, dropping unsaved view edits.
func (c *Coordinator) Reload() error {
	v, err := view.Merge(c.pool, c.view.ActiveIndex)
	if err != nil {
		return err
	}
	*c.view = *v
	return nil
}

// Commit writes the view back into the pool.
func (c *Coordinator) Commit() error {
	return c.view.ApplyBack(c.pool, c.view.ActiveIndex, view.All())
}

// Close stops both timers.
func (c *Coordinator) Close() {
	c.scheduler.Stop()
	c.ret.Stop()
}

// switchTo commits the current view and merges the target profile into it.
func (c *Coordinator) switchTo(index int) error {
	if err := c.Commit(); err != nil {
		return err
	}
	from := c.view.ActiveName
	v, err := view.Merge(c.pool, index)
	if err != nil {
		return err
	}
	*c.view = *v
	c.log(slog.LevelDebug, "profile activated", "from", from, "profile", v.ActiveName, "index", index, "state", string(c.state))
	return nil
}

func (c *Coordinator) transition(event fsm.Event) error {
	next, err := fsm.Transition(c.state, event)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// instantIndex resolves the designated instant switch profile. A designation
// naming a missing profile is cleared.
func (c *Coordinator) instantIndex(ctx context.Context) (int, error) {
	base := c.pool.Base()
	if base.InstantProfile == "" {
		c.out.Speak(ctx, c.msgs.NoInstantProfile)
		return -1, ErrNoInstantProfile
	}
	index, err := c.pool.IndexByName(base.InstantProfile)
	if err != nil {
		c.log(slog.LevelWarn, "instant switch profile missing; designation cleared", "profile", base.InstantProfile)
		base.InstantProfile = ""
		c.out.Speak(ctx, c.msgs.InstantMissing)
		return -1, fmt.Errorf("%w: %w", ErrNoInstantProfile, err)
	}
	return index, nil
}

func (c *Coordinator) announceTrigger(ctx context.Context, name string) {
	c.out.Speak(ctx, fmt.Sprintf(c.msgs.TriggerSwitchFormat, name))
	c.out.Tone(ctx, indicator.BeepSwitch.FrequencyHz, indicator.BeepSwitch.Duration)
}

// announceHeadsUp tells the user about an armed trigger closer than the
// configured threshold.
func (c *Coordinator) announceHeadsUp(ctx context.Context) {
	pending, ok := c.scheduler.Pending()
	if !ok {
		return
	}
	now := c.clock.Now()
	threshold := time.Duration(c.pool.Base().Settings.Advanced.ProfileTriggerThreshold) * time.Minute
	if pending.At.Sub(now) > threshold {
		return
	}
	if pending.Profile == c.headsUp.Profile && pending.At.Equal(c.headsUp.At) {
		return
	}
	c.headsUp = pending
	c.out.Speak(ctx, fmt.Sprintf(c.msgs.NextTriggerFormat, pending.Profile, humanize.RelTime(pending.At, now, "ago", "from now")))
}

// remindMetadata announces streaming slots on entering a switched state when
// the reminder is set to instant.
func (c *Coordinator) remindMetadata(ctx context.Context) {
	if c.view.Settings.General.MetadataReminder != "instant" {
		return
	}
	c.out.Speak(ctx, MetadataSummary(c.msgs, c.view.Settings.MetadataStreaming.MetadataEnabled))
}

// MetadataSummary renders which streaming slots are enabled.
func MetadataSummary(msgs indicator.Messages, enabled []bool) string {
	var on []string
	for i, e := range enabled {
		if e && i < len(metadataSlots) {
			on = append(on, metadataSlots[i])
		}
	}
	if len(on) == 0 {
		return msgs.MetadataOff
	}
	return fmt.Sprintf(msgs.MetadataOnFormat, strings.Join(on, ", "))
}

func (c *Coordinator) log(level slog.Level, msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Log(context.Background(), level, msg, args...)
}
