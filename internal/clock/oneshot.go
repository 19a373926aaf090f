package clock

import "time"

// OneShot owns at most one armed timer. Arming always stops the previous timer, and
// a callback that was already in flight when it was stopped or re-armed is dropped.
//
// Callbacks are delivered through dispatch, which serializes them with the owner's
// other work. OneShot itself must only be used from within that serialization.
type OneShot struct {
	clock    Clock
	dispatch func(func())
	timer    Timer
	gen      uint64
	deadline time.Time
}

// NewOneShot builds a OneShot. A nil dispatch runs callbacks directly.
func NewOneShot(c Clock, dispatch func(func())) *OneShot {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &OneShot{clock: c, dispatch: dispatch}
}

// Arm schedules fn after d, replacing any armed timer.
func (o *OneShot) Arm(d time.Duration, fn func()) {
	o.Stop()
	o.gen++
	gen := o.gen
	o.deadline = o.clock.Now().Add(d)
	o.timer = o.clock.AfterFunc(d, func() {
		o.dispatch(func() {
			if o.gen != gen || o.timer == nil {
				return
			}
			o.timer = nil
			fn()
		})
	})
}

// Stop cancels the armed timer and reports whether one was armed.
func (o *OneShot) Stop() bool {
	if o.timer == nil {
		return false
	}
	o.timer.Stop()
	o.timer = nil
	o.gen++
	return true
}

// Armed reports whether a timer is pending.
func (o *OneShot) Armed() bool {
	return o.timer != nil
}

// Deadline returns when the armed timer fires.
func (o *OneShot) Deadline() (time.Time, bool) {
	if o.timer == nil {
		return time.Time{}, false
	}
	return o.deadline, true
}
