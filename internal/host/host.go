// Package host provides the collaborator inputs the configuration core consumes:
// properties of the focused UI element and whether the studio process is running.
package host

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Inputs is what the core reads from its surroundings.
type Inputs interface {
	FocusedProperty(ctx context.Context, name string) (string, bool)
	StudioRunning(ctx context.Context) bool
}

// Desktop reads the focused window from hyprctl and checks processes with pgrep.
type Desktop struct {
	ProcessName string
}

// FocusedProperty returns a top-level field of the active window description.
func (d Desktop) FocusedProperty(ctx context.Context, name string) (string, bool) {
	window, err := queryActiveWindow(ctx)
	if err != nil {
		return "", false
	}
	value, ok := window[name]
	if !ok || value == nil {
		return "", false
	}
	text := strings.TrimSpace(fmt.Sprint(value))
	return text, text != ""
}

// StudioRunning reports whether a process named ProcessName exists.
func (d Desktop) StudioRunning(ctx context.Context) bool {
	name := strings.TrimSpace(d.ProcessName)
	if name == "" {
		return false
	}
	return exec.CommandContext(ctx, "pgrep", "-x", name).Run() == nil
}

// Static serves fixed inputs. It stands in when no desktop session is available.
type Static struct {
	Properties map[string]string
	Running    bool
}

func (s Static) FocusedProperty(_ context.Context, name string) (string, bool) {
	value, ok := s.Properties[name]
	return value, ok
}

func (s Static) StudioRunning(context.Context) bool {
	return s.Running
}
