package host

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// queryActiveWindow decodes `hyprctl -j activewindow` into a generic field map.
func queryActiveWindow(ctx context.Context) (map[string]any, error) {
	output, err := runHyprctlOutput(ctx, "-j", "activewindow")
	if err != nil {
		return nil, err
	}

	var window map[string]any
	if err := json.Unmarshal(output, &window); err != nil {
		return nil, fmt.Errorf("decode hyprctl activewindow json: %w", err)
	}
	if len(window) == 0 {
		return nil, fmt.Errorf("hyprctl activewindow returned no window")
	}
	return window, nil
}

func runHyprctlOutput(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "hyprctl", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(out))
		if trimmed == "" {
			return nil, fmt.Errorf("hyprctl %v failed: %w", args, err)
		}
		return nil, fmt.Errorf("hyprctl %v failed: %w (%s)", args, err, trimmed)
	}
	return out, nil
}
