package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rbright/splconfig/internal/trigger"
)

// DialogKind distinguishes the modal dialogs that block switching.
type DialogKind int

const (
	DialogSettings DialogKind = iota + 1
	DialogAlarm
)

func (k DialogKind) String() string {
	switch k {
	case DialogSettings:
		return "settings"
	case DialogAlarm:
		return "alarm"
	default:
		return "unknown"
	}
}

// Dialog is the handle for the one open dialog.
type Dialog struct {
	id   uint64
	Kind DialogKind
}

// Dialog returns the open dialog, or nil.
func (c *Coordinator) Dialog() *Dialog { return c.dialog }

// OpenDialog claims the dialog slot. A second dialog fails with ErrBusy.
func (c *Coordinator) OpenDialog(ctx context.Context, kind DialogKind) (*Dialog, error) {
	if c.dialog != nil {
		msg := c.msgs.DialogOpen
		if c.dialog.Kind == DialogAlarm {
			msg = c.msgs.AlarmDialogOpen
		}
		c.out.Speak(ctx, msg)
		return nil, fmt.Errorf("%w: %s dialog", ErrBusy, c.dialog.Kind)
	}
	c.dialogSeq++
	c.dialog = &Dialog{id: c.dialogSeq, Kind: kind}
	c.log(slog.LevelDebug, "dialog opened", "kind", kind.String())
	return c.dialog, nil
}

// CloseDialog releases the slot held by d. A trigger that fired while the dialog
// was open is re-evaluated; one without a window has no later chance to match
// and is replayed as is.
func (c *Coordinator) CloseDialog(ctx context.Context, d *Dialog) error {
	if d == nil || c.dialog == nil || c.dialog.id != d.id {
		return fmt.Errorf("%w: dialog handle is not open", ErrInconsistentState)
	}
	c.dialog = nil
	c.log(slog.LevelDebug, "dialog closed", "kind", d.Kind.String())

	deferred := c.deferred
	if deferred == nil {
		return nil
	}
	c.deferred = nil
	if deferred.Duration == 0 {
		return c.TriggerSwitch(ctx, *deferred)
	}
	return c.StartTriggers(ctx, true)
}

// checkDialog refuses switching while a dialog is open.
func (c *Coordinator) checkDialog(ctx context.Context) error {
	if c.dialog == nil {
		return nil
	}
	msg := c.msgs.DialogOpen
	if c.dialog.Kind == DialogAlarm {
		msg = c.msgs.AlarmDialogOpen
	}
	c.out.Speak(ctx, msg)
	return ErrBusy
}

// onTrigger receives scheduler expiries.
func (c *Coordinator) onTrigger(next trigger.Candidate) {
	if err := c.TriggerSwitch(context.Background(), next); err != nil {
		c.log(slog.LevelWarn, "trigger switch failed", "profile", next.Profile, "error", err.Error())
	}
}
