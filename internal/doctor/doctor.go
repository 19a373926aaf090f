// Package doctor runs readiness diagnostics for config, profile data, tools, and audio.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rbright/splconfig/internal/audio"
	"github.com/rbright/splconfig/internal/config"
	"github.com/rbright/splconfig/internal/host"
	"github.com/rbright/splconfig/internal/profile"
	"github.com/rbright/splconfig/internal/service"
)

// Check is one doctor assertion result. Informational checks never fail the report.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// State is the loaded profile data doctor inspects.
type State interface {
	Profiles() []service.ProfileInfo
	Sorted() bool
	Report() *profile.Report
	Warnings() []string
	Triggers() []service.TriggerInfo
}

var selectSink = audio.SelectSink

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/data checks. state is nil when the profile
// data could not be opened.
func Run(ctx context.Context, cfg config.Loaded, state State, inputs host.Inputs) Report {
	checks := []Check{{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	}}
	for _, w := range cfg.Warnings {
		checks = append(checks, Check{Name: "config.warning", Pass: true, Message: w.Message})
	}

	checks = append(checks, checkWritable(cfg.Paths.DataDir))
	if state != nil {
		checks = append(checks, checkProfiles(state)...)
	}
	if inputs != nil {
		message := fmt.Sprintf("%q is not running; alarm settings are read-only", cfg.Config.Studio.ProcessName)
		if inputs.StudioRunning(ctx) {
			message = fmt.Sprintf("%q is running", cfg.Config.Studio.ProcessName)
		}
		checks = append(checks, Check{Name: "studio", Pass: true, Message: message})
	}

	checks = append(checks, checkEnv("XDG_RUNTIME_DIR", func(v string) bool {
		return strings.TrimSpace(v) != ""
	}, "session socket directory available", "XDG_RUNTIME_DIR is empty; the resident session cannot open its socket"))

	checks = append(checks, checkBinary("spd-say", "speech output"))
	checks = append(checks, checkBinary("pgrep", "studio detection"))
	checks = append(checks, checkBinary("hyprctl", "focused track lookup"))

	if cfg.Config.Indicator.SoundEnable {
		checks = append(checks, checkAudioSink(ctx, cfg.Config.Indicator))
	}

	return Report{Checks: checks}
}

func checkProfiles(state State) []Check {
	profiles := state.Profiles()
	checks := make([]Check, 0, 5)

	if report := state.Report(); report != nil && !report.Empty() {
		checks = append(checks, Check{Name: "profiles", Pass: false, Message: strings.ReplaceAll(report.String(), "\n", "; ")})
	} else {
		checks = append(checks, Check{Name: "profiles", Pass: true, Message: fmt.Sprintf("%s loaded cleanly", plural(len(profiles), "profile"))})
	}

	order := "broadcast profiles are in alphabetical order"
	if !state.Sorted() {
		order = "broadcast profiles are not in alphabetical order"
	}
	checks = append(checks, Check{Name: "profiles.sorted", Pass: true, Message: order})

	for _, w := range state.Warnings() {
		checks = append(checks, Check{Name: "references", Pass: false, Message: w})
	}

	checks = append(checks, Check{Name: "triggers", Pass: true, Message: fmt.Sprintf("%s scheduled", plural(len(state.Triggers()), "trigger"))})
	return checks
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}

// checkWritable verifies profiles can be saved under dir.
func checkWritable(dir string) Check {
	const name = "data_dir"
	if strings.TrimSpace(dir) == "" {
		return Check{Name: name, Pass: false, Message: "data directory is empty"}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("create %s: %v", dir, err)}
	}
	marker, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("%s is not writable: %v", dir, err)}
	}
	marker.Close()
	_ = os.Remove(marker.Name())
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("%s is writable", filepath.Clean(dir))}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkAudioSink runs live sink selection to surface selection/fallback issues.
func checkAudioSink(ctx context.Context, cfg config.IndicatorConfig) Check {
	selection, err := selectSink(ctx, cfg.SoundDevice)
	if err != nil {
		return Check{Name: "audio.sink", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.sink", Pass: true, Message: message}
}
