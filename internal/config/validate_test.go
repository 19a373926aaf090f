package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Default()
	cfg.Paths.DataDir = "/tmp/splconfig"
	return cfg
}

func TestValidateRejectsInvalidCoreFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "empty data dir", mutate: func(c *Config) { c.Paths.DataDir = "" }, wantErr: "paths.data_dir"},
		{name: "blank profiles dir", mutate: func(c *Config) { c.Paths.ProfilesDir = "  " }, wantErr: "paths.profiles_dir"},
		{name: "empty triggers file", mutate: func(c *Config) { c.Paths.TriggersFile = "" }, wantErr: "paths.triggers_file"},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantErr: "log.level"},
		{name: "empty process", mutate: func(c *Config) { c.Studio.ProcessName = "" }, wantErr: "studio.process_name"},
		{name: "notify without app name", mutate: func(c *Config) {
			c.Indicator.DesktopNotify = true
			c.Indicator.DesktopAppName = ""
		}, wantErr: "desktop_app_name"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateWarnsOnNonINIBaseProfile(t *testing.T) {
	cfg := validConfig()
	cfg.Paths.BaseProfile = "splstudio.conf"

	warnings, err := Validate(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, ".ini")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want slog.Level
	}{
		{raw: "debug", want: slog.LevelDebug},
		{raw: "", want: slog.LevelInfo},
		{raw: "INFO", want: slog.LevelInfo},
		{raw: "warning", want: slog.LevelWarn},
		{raw: "error", want: slog.LevelError},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.raw)
		require.NoError(t, err)
		require.Equal(t, tc.want, got)
	}
}
