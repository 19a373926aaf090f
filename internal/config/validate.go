package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.Paths.DataDir) == "" {
		return nil, fmt.Errorf("paths.data_dir must not be empty")
	}
	for name, value := range map[string]string{
		"paths.base_profile":  cfg.Paths.BaseProfile,
		"paths.profiles_dir":  cfg.Paths.ProfilesDir,
		"paths.triggers_file": cfg.Paths.TriggersFile,
		"paths.comments_file": cfg.Paths.CommentsFile,
	} {
		if strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("%s must not be empty", name)
		}
	}
	if !strings.EqualFold(filepath.Ext(cfg.Paths.BaseProfile), ".ini") {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("paths.base_profile %q does not use the .ini extension", cfg.Paths.BaseProfile)})
	}
	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Studio.ProcessName) == "" {
		return nil, fmt.Errorf("studio.process_name must not be empty")
	}
	if cfg.Indicator.DesktopNotify && strings.TrimSpace(cfg.Indicator.DesktopAppName) == "" {
		return nil, fmt.Errorf("indicator.desktop_app_name must not be empty when indicator.desktop_notify=true")
	}

	return warnings, nil
}

// ParseLevel maps log.level onto a slog level.
func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}
}
