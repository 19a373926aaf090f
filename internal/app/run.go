package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rbright/splconfig/internal/audio"
	"github.com/rbright/splconfig/internal/ipc"
)

// triggerRecheck re-arms the trigger timer so long waits track wall-clock changes.
const triggerRecheck = 30 * time.Minute

// commandRun owns the session socket, serves IPC requests, and keeps triggers
// armed until ctx ends. Profiles are saved on the way out.
func (r Runner) commandRun(ctx context.Context, e env) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		return r.fail(e, "run", err)
	}

	listener, err := ipc.Claim(ctx, socketPath, ipc.DefaultClaimOptions)
	if err != nil {
		return r.fail(e, "run", err)
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	r.selectToneSink(ctx, e)

	svc, err := r.openService(ctx, e)
	if err != nil {
		return r.fail(e, "run", err)
	}
	if err := svc.StartTriggers(ctx, false); err != nil {
		e.announcer.ShowMessage(ctx, e.msgs.InternalErrorTitle, err.Error())
		e.logger.Error("trigger start failed", "error", err.Error())
	}

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	e.logger.Info("session started", "socket", socketPath)
	fmt.Fprintf(r.Stdout, "session running on %s\n", socketPath)

	server := ipc.Server{Handler: svc, Logger: e.logger, ReadTimeout: 2 * time.Second}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Serve(serverCtx, listener)
	}()

	ticker := time.NewTicker(triggerRecheck)
	defer ticker.Stop()

	var serverErr error
	serverDone := false
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case serverErr = <-serverErrCh:
			serverDone = true
			break loop
		case <-ticker.C:
			if err := svc.StartTriggers(ctx, false); err != nil {
				e.logger.Warn("trigger recheck failed", "error", err.Error())
			}
		}
	}

	serverCancel()
	if !serverDone {
		serverErr = <-serverErrCh
	}

	closeErr := svc.Close()
	if closeErr != nil {
		e.announcer.ShowMessage(context.Background(), e.msgs.InternalErrorTitle, closeErr.Error())
	}
	e.logger.Info("session stopped")

	if err := errors.Join(serverErr, closeErr); err != nil {
		return r.fail(e, "run", err)
	}
	return 0
}

// selectToneSink routes tones to indicator.sound_device. Failures keep the
// server default sink.
func (r Runner) selectToneSink(ctx context.Context, e env) {
	cfg := e.loaded.Config.Indicator
	if !cfg.SoundEnable || cfg.SoundDevice == "" || cfg.SoundDevice == "default" {
		return
	}
	selection, err := audio.SelectSink(ctx, cfg.SoundDevice)
	if err != nil {
		fmt.Fprintf(r.Stderr, "warning: %v\n", err)
		e.logger.Warn("tone sink selection failed", "error", err.Error())
		return
	}
	if selection.Warning != "" {
		fmt.Fprintf(r.Stderr, "warning: %s\n", selection.Warning)
		e.logger.Warn("tone sink fallback", "message", selection.Warning)
	}
	e.announcer.UseSink(selection.Device.ID)
	e.logger.Info("tone sink selected", "sink", selection.Device.ID)
}
