package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rbright/splconfig/internal/audio"
	"github.com/rbright/splconfig/internal/cli"
	"github.com/rbright/splconfig/internal/doctor"
	"github.com/rbright/splconfig/internal/ipc"
	"github.com/rbright/splconfig/internal/profile"
	"github.com/rbright/splconfig/internal/service"
	"github.com/rbright/splconfig/internal/trigger"
)

// readOnly commands may run beside a resident session.
var readOnly = []cli.Command{
	cli.CommandProfiles,
	cli.CommandTriggers,
	cli.CommandSettings,
	cli.CommandSettingGet,
	cli.CommandCommentGet,
	cli.CommandCommentFocused,
}

func (r Runner) openService(ctx context.Context, e env) (*service.Service, error) {
	return service.Open(ctx, service.Options{
		Paths:    e.loaded.Paths,
		Output:   e.announcer,
		Messages: e.msgs,
		Host:     e.inputs,
		Logger:   e.logger,
	})
}

// commandLocal runs a one-shot command against the profiles on disk. Changes
// are saved when the service closes.
func (r Runner) commandLocal(ctx context.Context, e env, parsed cli.Parsed) int {
	if !slices.Contains(readOnly, parsed.Command) && sessionRunning(ctx) {
		return r.fail(e, parsed.Command, ErrSessionRunning)
	}

	svc, err := r.openService(ctx, e)
	if err != nil {
		return r.fail(e, parsed.Command, err)
	}

	runErr := r.dispatchLocal(ctx, svc, parsed)
	closeErr := svc.Close()
	if err := errors.Join(runErr, closeErr); err != nil {
		return r.fail(e, parsed.Command, err)
	}
	return 0
}

func (r Runner) dispatchLocal(ctx context.Context, svc *service.Service, parsed cli.Parsed) error {
	switch parsed.Command {
	case cli.CommandProfiles:
		r.printProfiles(svc)
		return nil
	case cli.CommandProfileNew:
		name, err := svc.NewProfile(parsed.Arg(0), parsed.CopyFrom)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.Stdout, "created %q\n", name)
		return nil
	case cli.CommandProfileRename:
		name, err := svc.RenameProfile(parsed.Arg(0), parsed.Arg(1))
		if err != nil {
			return err
		}
		fmt.Fprintf(r.Stdout, "renamed %q to %q\n", parsed.Arg(0), name)
		return nil
	case cli.CommandProfileDelete:
		if err := svc.DeleteProfile(ctx, parsed.Arg(0)); err != nil {
			return err
		}
		fmt.Fprintf(r.Stdout, "deleted %q\n", parsed.Arg(0))
		return nil
	case cli.CommandProfileReset:
		if err := svc.ResetProfile(ctx, parsed.Arg(0)); err != nil {
			return err
		}
		fmt.Fprintf(r.Stdout, "reset %q to defaults\n", parsed.Arg(0))
		return nil
	case cli.CommandInstantSet:
		if err := svc.SetInstantProfile(parsed.Arg(0)); err != nil {
			return err
		}
		fmt.Fprintf(r.Stdout, "instant switch profile: %s\n", parsed.Arg(0))
		return nil
	case cli.CommandInstantClear:
		if svc.ClearInstantProfile() {
			fmt.Fprintln(r.Stdout, "instant switch profile cleared")
		} else {
			fmt.Fprintln(r.Stdout, "no instant switch profile was set")
		}
		return nil
	case cli.CommandTriggers:
		r.printTriggers(svc)
		return nil
	case cli.CommandTriggerSet:
		record, err := svc.SetTrigger(ctx, parsed.Arg(0), parsed.Days, parsed.Hour, parsed.Minute, parsed.Duration)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.Stdout, "%s: %s\n", parsed.Arg(0), describeTrigger(record, svc))
		return nil
	case cli.CommandTriggerClear:
		if err := svc.ClearTrigger(ctx, parsed.Arg(0)); err != nil {
			return err
		}
		fmt.Fprintf(r.Stdout, "trigger cleared for %q\n", parsed.Arg(0))
		return nil
	case cli.CommandSettings:
		name, settings := svc.Settings()
		fmt.Fprintf(r.Stdout, "profile: %s\n", name)
		for _, f := range profile.Fields() {
			fmt.Fprintf(r.Stdout, "%s = %s\n", f, profile.FormatValue(settings.Get(f)))
		}
		return nil
	case cli.CommandSettingGet:
		fmt.Fprintln(r.Stdout, profile.FormatValue(svc.Setting(parsed.Field)))
		return nil
	case cli.CommandSettingSet:
		value, err := profile.ParseValue(parsed.Field, parsed.Value)
		if err != nil {
			return err
		}
		if slices.Contains(service.AlarmFields, parsed.Field) {
			err = svc.SetAlarm(ctx, parsed.Field, value)
		} else {
			err = svc.SetSetting(parsed.Field, value)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(r.Stdout, "%s = %s\n", parsed.Field, profile.FormatValue(svc.Setting(parsed.Field)))
		return nil
	case cli.CommandAlarms:
		return svc.EditAlarms(ctx, func(current profile.Settings) (map[profile.Field]any, error) {
			return runAlarmForm(current, r.Stdin, r.Stdout)
		})
	case cli.CommandCommentGet:
		text, ok := svc.Comment(parsed.Arg(0))
		if !ok {
			return fmt.Errorf("no comment for %q", parsed.Arg(0))
		}
		fmt.Fprintln(r.Stdout, text)
		return nil
	case cli.CommandCommentSet:
		return svc.SetComment(parsed.Arg(0), parsed.Arg(1))
	case cli.CommandCommentClear:
		removed, err := svc.ClearComment(parsed.Arg(0))
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintf(r.Stdout, "no comment for %q\n", parsed.Arg(0))
		}
		return nil
	case cli.CommandCommentFocused:
		filename, text, ok := svc.FocusedComment(ctx)
		switch {
		case filename == "":
			return errors.New("no focused track")
		case !ok:
			fmt.Fprintf(r.Stdout, "%s: no comment\n", filename)
		default:
			fmt.Fprintf(r.Stdout, "%s: %s\n", filename, text)
		}
		return nil
	default:
		return fmt.Errorf("unsupported command %q", parsed.Command)
	}
}

func (r Runner) printProfiles(svc *service.Service) {
	for _, info := range svc.Profiles() {
		mark := " "
		if info.Active {
			mark = "*"
		}
		var tags []string
		if info.Base {
			tags = append(tags, "base")
		}
		if info.Instant {
			tags = append(tags, "instant")
		}
		if info.HasTrigger {
			tags = append(tags, "trigger")
		}
		if info.Unsaved {
			tags = append(tags, "unsaved")
		}
		line := mark + " " + info.Name
		if len(tags) > 0 {
			line += " [" + strings.Join(tags, ", ") + "]"
		}
		fmt.Fprintln(r.Stdout, line)
	}
}

func (r Runner) printTriggers(svc *service.Service) {
	triggers := svc.Triggers()
	if len(triggers) == 0 {
		fmt.Fprintln(r.Stdout, "no triggers scheduled")
		return
	}
	for _, info := range triggers {
		fmt.Fprintf(r.Stdout, "%s: %s\n", info.Profile, describeTrigger(info.Record, svc))
	}
}

func describeTrigger(record trigger.Record, svc *service.Service) string {
	window := "stays until changed"
	if record.Duration > 0 {
		window = fmt.Sprintf("for %d minutes", record.Duration)
	}
	return fmt.Sprintf("%s at %02d:%02d %s; next %s",
		record.Days, record.Hour(), record.Minute(), window,
		humanize.RelTime(record.Start, svc.Now(), "ago", "from now"))
}

func (r Runner) commandNextTrigger(ctx context.Context, e env) int {
	if socketPath, err := ipc.RuntimeSocketPath(); err == nil {
		resp, handled, err := tryForward(ctx, socketPath, ipc.Request{Command: ipc.CommandNextTrigger})
		if handled {
			if err != nil {
				return r.fail(e, cli.CommandTriggerNext, err)
			}
			fmt.Fprintln(r.Stdout, resp.Message)
			return 0
		}
	}

	svc, err := r.openService(ctx, e)
	if err != nil {
		return r.fail(e, cli.CommandTriggerNext, err)
	}
	defer func() { _ = svc.Close() }()

	next, ok := svc.NextTrigger()
	if !ok {
		fmt.Fprintln(r.Stdout, e.msgs.NoTriggers)
		return 0
	}
	fmt.Fprintf(r.Stdout, e.msgs.NextTriggerFormat+"\n", next.Profile, humanize.RelTime(next.At, svc.Now(), "ago", "from now"))
	return 0
}

func (r Runner) commandDoctor(ctx context.Context, e env) int {
	var state doctor.State
	svc, err := r.openService(ctx, e)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: open profiles: %v\n", err)
		e.logger.Error("open profiles failed", "error", err.Error())
	} else {
		state = svc
		defer func() { _ = svc.Close() }()
	}

	report := doctor.Run(ctx, e.loaded, state, e.inputs)
	fmt.Fprintln(r.Stdout, report.String())
	if report.OK() && err == nil {
		return 0
	}
	return 1
}

func (r Runner) commandSinks(ctx context.Context) int {
	devices, err := audio.ListSinks(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio output devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			availability,
			muted,
		)
	}

	return 0
}

func (r Runner) fail(e env, command cli.Command, err error) int {
	fmt.Fprintf(r.Stderr, "error: %v\n", err)
	e.logger.Log(context.Background(), slog.LevelError, "command failed", "command", command, "error", err.Error())
	return 1
}
