package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rbright/splconfig/internal/ipc"
	"github.com/rbright/splconfig/internal/trigger"
)

// Handle serves resident-session IPC commands. Callers serialize it with
// every other coordinator call.
func (c *Coordinator) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case ipc.CommandStatus:
		return c.status("")
	case ipc.CommandInstantSwitch:
		if err := c.InstantToggle(ctx); err != nil {
			return c.failure(err)
		}
		return c.status("switched")
	case ipc.CommandSelect:
		if strings.TrimSpace(req.Profile) == "" {
			return ipc.Response{OK: false, State: string(c.state), Error: "select requires a profile"}
		}
		if err := c.Select(ctx, req.Profile); err != nil {
			return c.failure(err)
		}
		return c.status("selected")
	case ipc.CommandNextTrigger:
		resp := c.status("")
		next, ok := c.NextTrigger()
		if !ok {
			resp.Message = c.msgs.NoTriggers
			return resp
		}
		resp.Next = next.Profile
		resp.Message = fmt.Sprintf(c.msgs.NextTriggerFormat, next.Profile, humanize.RelTime(next.At, c.clock.Now(), "ago", "from now"))
		return resp
	case ipc.CommandDialogOpen:
		kind := DialogSettings
		if req.Dialog == DialogAlarm.String() {
			kind = DialogAlarm
		}
		if _, err := c.OpenDialog(ctx, kind); err != nil {
			return c.failure(err)
		}
		return c.status(kind.String() + " dialog open")
	case ipc.CommandDialogClose:
		if c.dialog == nil {
			return ipc.Response{OK: true, State: string(c.state), Message: "no dialog open"}
		}
		if err := c.CloseDialog(ctx, c.dialog); err != nil {
			return c.failure(err)
		}
		return c.status("dialog closed")
	default:
		return ipc.Response{OK: false, State: string(c.state), Error: fmt.Sprintf("unknown command %q", req.Command)}
	}
}

// NextTrigger reports the armed activation, or the earliest one in the
// schedule when nothing is armed yet.
func (c *Coordinator) NextTrigger() (next trigger.Candidate, ok bool) {
	if pending, armed := c.scheduler.Pending(); armed {
		return pending, true
	}
	now := c.clock.Now()
	for name, r := range c.scheduler.Schedule().Snapshot() {
		at := r.Start
		if !at.After(now) {
			at = r.NextOccurrence(now).Start
		}
		if !ok || at.Before(next.At) || (at.Equal(next.At) && name < next.Profile) {
			next = trigger.Candidate{Profile: name, At: at, Duration: r.Duration}
			ok = true
		}
	}
	return next, ok
}

func (c *Coordinator) status(message string) ipc.Response {
	return ipc.Response{
		OK:       true,
		State:    string(c.state),
		Profile:  c.view.ActiveName,
		Previous: c.PreviousName(),
		Message:  message,
	}
}

func (c *Coordinator) failure(err error) ipc.Response {
	resp := ipc.Response{OK: false, State: string(c.state), Profile: c.view.ActiveName, Error: err.Error()}
	if errors.Is(err, ErrAlreadyInstant) {
		resp.Message = c.msgs.AlreadyInstant
	}
	return resp
}
