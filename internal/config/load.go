package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Loaded captures resolved config path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Paths    Resolved
	Warnings []Warning
	Exists   bool
}

// Load resolves, reads, decodes, and validates the runtime configuration.
func Load(explicitPath string) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	cfg := Default()
	var warnings []Warning
	exists := true

	content, err := os.ReadFile(resolvedPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		exists = false
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("config file %q not found; using defaults", resolvedPath),
		})
	case err != nil:
		return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
	default:
		decodeWarnings, err := Parse(string(content), &cfg)
		if err != nil {
			return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
		}
		warnings = append(warnings, decodeWarnings...)
	}

	applyEnvOverrides(&cfg)
	cfg.applyDefaults()

	if strings.TrimSpace(cfg.Paths.DataDir) == "" {
		dataDir, err := DefaultDataDir()
		if err != nil {
			return Loaded{}, err
		}
		cfg.Paths.DataDir = dataDir
	}
	cfg.Paths.DataDir = expandUserPath(cfg.Paths.DataDir)
	cfg.Log.File = expandUserPath(cfg.Log.File)

	validateWarnings, err := Validate(cfg)
	if err != nil {
		return Loaded{}, fmt.Errorf("validate config %q: %w", resolvedPath, err)
	}
	warnings = append(warnings, validateWarnings...)

	return Loaded{
		Path:     resolvedPath,
		Config:   cfg,
		Paths:    cfg.Paths.Resolve(),
		Warnings: warnings,
		Exists:   exists,
	}, nil
}

// Parse decodes TOML content over cfg. Unknown keys become warnings.
func Parse(content string, cfg *Config) ([]Warning, error) {
	meta, err := toml.Decode(content, cfg)
	if err != nil {
		var perr toml.ParseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("line %d: %s", perr.Position.Line, perr.Message)
		}
		return nil, err
	}

	var warnings []Warning
	for _, key := range meta.Undecoded() {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("unknown key %q ignored", key.String())})
	}
	return warnings, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("SPLCONFIG_DATA_DIR")); v != "" {
		cfg.Paths.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("SPLCONFIG_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("SPLCONFIG_SOUND")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Indicator.SoundEnable = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("SPLCONFIG_STUDIO_PROCESS")); v != "" {
		cfg.Studio.ProcessName = v
	}
}
