// Package app executes parsed splconfig invocations.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rbright/splconfig/internal/cli"
	"github.com/rbright/splconfig/internal/config"
	"github.com/rbright/splconfig/internal/host"
	"github.com/rbright/splconfig/internal/indicator"
	"github.com/rbright/splconfig/internal/ipc"
	"github.com/rbright/splconfig/internal/logging"
	"github.com/rbright/splconfig/internal/version"
)

const forwardTimeout = 220 * time.Millisecond

// ErrSessionRunning refuses local edits while a resident session owns the profiles.
var ErrSessionRunning = errors.New("a splconfig session is running; stop it before changing profiles")

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Logger *slog.Logger
	// Host replaces the desktop lookups (hyprctl, pgrep) when set.
	Host host.Inputs
}

// env is what a command needs once config and logging are up.
type env struct {
	loaded    config.Loaded
	logger    *slog.Logger
	announcer *indicator.Announcer
	msgs      indicator.Messages
	inputs    host.Inputs
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr, Stdin: os.Stdin}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("splconfig"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, parsed.Help)
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	level, _ := config.ParseLevel(cfgLoaded.Config.Log.Level)

	logRuntime, err := logging.New(logging.Options{
		Level:   level,
		File:    cfgLoaded.Config.Log.File,
		Command: string(parsed.Command),
	})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"data_dir", cfgLoaded.Paths.DataDir,
		"log", logRuntime.Path,
	)

	e := r.newEnv(cfgLoaded, logger, parsed.Command == cli.CommandRun)
	defer e.announcer.Wait()

	switch parsed.Command {
	case cli.CommandRun:
		return r.commandRun(ctx, e)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandSwitch:
		return r.forwardOrFail(ctx, ipc.Request{Command: ipc.CommandInstantSwitch})
	case cli.CommandSelect:
		return r.forwardOrFail(ctx, ipc.Request{Command: ipc.CommandSelect, Profile: parsed.Arg(0)})
	case cli.CommandDoctor:
		return r.commandDoctor(ctx, e)
	case cli.CommandSinks:
		return r.commandSinks(ctx)
	case cli.CommandTriggerNext:
		return r.commandNextTrigger(ctx, e)
	default:
		return r.commandLocal(ctx, e, parsed)
	}
}

func (r Runner) newEnv(loaded config.Loaded, logger *slog.Logger, resident bool) env {
	out := r.Stderr
	if resident {
		out = r.Stdout
	}
	inputs := r.Host
	if inputs == nil {
		inputs = host.Desktop{ProcessName: loaded.Config.Studio.ProcessName}
	}
	return env{
		loaded:    loaded,
		logger:    logger,
		announcer: indicator.NewAnnouncer(loaded.Config.Indicator, out, logger),
		msgs:      indicator.MessagesFromEnv(),
		inputs:    inputs,
	}
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "no active session")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, ipc.Request{Command: ipc.CommandStatus})
	if !handled {
		fmt.Fprintln(r.Stdout, "no active session")
		return 0
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	r.printStatus(resp)
	return 0
}

func (r Runner) printStatus(resp ipc.Response) {
	fmt.Fprintf(r.Stdout, "state: %s\n", resp.State)
	fmt.Fprintf(r.Stdout, "profile: %s\n", resp.Profile)
	if resp.Previous != "" {
		fmt.Fprintf(r.Stdout, "previous: %s\n", resp.Previous)
	}
}

func (r Runner) forwardOrFail(ctx context.Context, req ipc.Request) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, req)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: no active splconfig session\n")
		return 1
	}
	if err != nil {
		if resp.Message != "" {
			fmt.Fprintln(r.Stderr, resp.Message)
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	if resp.Profile != "" {
		fmt.Fprintf(r.Stdout, "profile: %s\n", resp.Profile)
	}
	return 0
}

// sessionRunning reports whether a resident session answers on the socket.
func sessionRunning(ctx context.Context) bool {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		return false
	}
	alive, _ := ipc.Client{Path: socketPath, Timeout: forwardTimeout}.Alive(ctx)
	return alive
}

// tryForward hands req to a resident session. handled is false when no session
// is listening, so the caller can fall back or report it.
func tryForward(ctx context.Context, socketPath string, req ipc.Request) (resp ipc.Response, handled bool, err error) {
	resp, err = ipc.Client{Path: socketPath, Timeout: forwardTimeout}.Do(ctx, req)
	switch {
	case err == nil:
		return resp, true, resp.Err()
	case ipc.Unreachable(err):
		return ipc.Response{}, false, nil
	default:
		return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", req.Command, err)
	}
}
