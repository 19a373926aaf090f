// Package indicator emits spoken, braille, tone, and modal output for the configuration core.
package indicator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rbright/splconfig/internal/config"
)

// Output is the fire-and-forget announcement surface.
type Output interface {
	Speak(ctx context.Context, text string)
	Braille(ctx context.Context, text string)
	Tone(ctx context.Context, frequencyHz float64, duration time.Duration)
	ShowMessage(ctx context.Context, title, body string, buttons ...string)
}

// Announcer speaks through speech-dispatcher, mirrors text to a terminal writer,
// plays tones over PulseAudio, and optionally raises desktop notifications.
type Announcer struct {
	cfg    config.IndicatorConfig
	out    io.Writer
	logger *slog.Logger

	mu                    sync.Mutex
	sink                  string
	desktopNotificationID uint32
	soundMu               sync.Mutex
	tones                 sync.WaitGroup
}

// NewAnnouncer creates an Announcer writing terminal output to out.
func NewAnnouncer(cfg config.IndicatorConfig, out io.Writer, logger *slog.Logger) *Announcer {
	if out == nil {
		out = io.Discard
	}
	return &Announcer{cfg: cfg, out: out, logger: logger}
}

// UseSink routes tones to the named Pulse sink; empty means the server default.
func (a *Announcer) UseSink(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sink = id
}

// Speak voices text and echoes it to the terminal.
func (a *Announcer) Speak(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	a.write(renderSpeech(text))
	a.run(ctx, func(ctx context.Context) error {
		return exec.CommandContext(ctx, "spd-say", "--wait", "--", text).Run()
	})
	if a.cfg.DesktopNotify {
		a.run(ctx, func(ctx context.Context) error {
			return a.notifyDesktop(ctx, notification{summary: text, urgency: urgencyLow, timeoutMS: 3000})
		})
	}
}

// Braille shows text on the terminal braille line.
func (a *Announcer) Braille(_ context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	a.write(renderBraille(text))
}

// Tone plays a sine tone asynchronously.
func (a *Announcer) Tone(_ context.Context, frequencyHz float64, duration time.Duration) {
	if !a.cfg.SoundEnable {
		return
	}
	samples := synthesizeTone(toneSpec{frequencyHz: frequencyHz, duration: duration, volume: toneVolume})
	if len(samples) == 0 {
		return
	}
	a.mu.Lock()
	sink := a.sink
	a.mu.Unlock()
	a.tones.Add(1)
	go func() {
		defer a.tones.Done()
		a.soundMu.Lock()
		defer a.soundMu.Unlock()
		if err := playSynthTone(samples, sink); err != nil {
			a.log("indicator tone failed", err)
		}
	}()
}

// ShowMessage renders a modal-style message box.
func (a *Announcer) ShowMessage(ctx context.Context, title, body string, buttons ...string) {
	if len(buttons) == 0 {
		buttons = []string{"OK"}
	}
	a.write(renderMessage(title, body, buttons))
	if a.cfg.DesktopNotify {
		a.run(ctx, func(ctx context.Context) error {
			return a.notifyDesktop(ctx, notification{summary: title, body: body, urgency: urgencyHigh})
		})
	}
}

// Wait blocks until queued tones finish playing.
func (a *Announcer) Wait() {
	a.tones.Wait()
}

func (a *Announcer) write(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintln(a.out, text)
}

// notifyDesktop sends n, replacing the previous notification, and stores its ID.
func (a *Announcer) notifyDesktop(ctx context.Context, n notification) error {
	a.mu.Lock()
	n.replaceID = a.desktopNotificationID
	a.mu.Unlock()

	n.appName = strings.TrimSpace(a.cfg.DesktopAppName)
	if n.appName == "" {
		n.appName = "splconfig"
	}

	id, err := desktopNotify(ctx, n)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.desktopNotificationID = id
	a.mu.Unlock()
	return nil
}

// Dismiss closes the current desktop notification, if any.
func (a *Announcer) Dismiss(ctx context.Context) {
	a.mu.Lock()
	id := a.desktopNotificationID
	a.desktopNotificationID = 0
	a.mu.Unlock()

	if id == 0 {
		return
	}
	a.run(ctx, func(ctx context.Context) error { return desktopDismiss(ctx, id) })
}

// run executes an external output command with a bounded timeout.
func (a *Announcer) run(ctx context.Context, fn func(context.Context) error) {
	runCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := fn(runCtx); err != nil {
		a.log("indicator dispatch failed", err)
	}
}

// log emits debug-only indicator failures to the runtime logger.
func (a *Announcer) log(message string, err error) {
	if a.logger == nil || err == nil {
		return
	}
	a.logger.Debug(message, "error", err.Error())
}
