package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath applies CLI/XDG/home fallback rules for config.toml location.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}

	root, err := configRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "config.toml"), nil
}

// DefaultDataDir is where profiles and stores live unless paths.data_dir overrides it.
func DefaultDataDir() (string, error) {
	root, err := configRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "data"), nil
}

// configRoot selects $XDG_CONFIG_HOME/splconfig, otherwise ~/.config/splconfig.
func configRoot() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "splconfig"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for config fallback")
	}
	return filepath.Join(home, ".config", "splconfig"), nil
}

// Resolved holds absolute locations for every on-disk artifact.
type Resolved struct {
	DataDir      string
	BaseProfile  string
	ProfilesDir  string
	TriggersFile string
	CommentsFile string
}

// Resolve anchors relative path entries under the data directory.
func (p PathsConfig) Resolve() Resolved {
	anchor := func(path string) string {
		path = expandUserPath(path)
		if filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(p.DataDir, path)
	}

	return Resolved{
		DataDir:      p.DataDir,
		BaseProfile:  anchor(p.BaseProfile),
		ProfilesDir:  anchor(p.ProfilesDir),
		TriggersFile: anchor(p.TriggersFile),
		CommentsFile: anchor(p.CommentsFile),
	}
}

func expandUserPath(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw != "~" && !strings.HasPrefix(raw, "~/") {
		return raw
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return raw
	}
	return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(raw, "~"), "/"))
}
