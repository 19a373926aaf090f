package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePathPrecedence(t *testing.T) {
	explicit := "/tmp/custom.toml"
	resolved, err := ResolvePath(explicit)
	require.NoError(t, err)
	require.Equal(t, explicit, resolved)

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(xdg, "splconfig", "config.toml"), resolved)

	t.Setenv("XDG_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "splconfig", "config.toml"), resolved)
}

func TestLoadMissingConfigUsesDefaultsWithWarning(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	path := filepath.Join(t.TempDir(), "missing.toml")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, loaded.Path)
	require.False(t, loaded.Exists)
	require.NotEmpty(t, loaded.Warnings)
	require.Contains(t, loaded.Warnings[0].Message, "not found")

	dataDir := filepath.Join(xdg, "splconfig", "data")
	require.Equal(t, dataDir, loaded.Config.Paths.DataDir)
	require.Equal(t, filepath.Join(dataDir, "splstudio.ini"), loaded.Paths.BaseProfile)
	require.Equal(t, filepath.Join(dataDir, "profiles"), loaded.Paths.ProfilesDir)
	require.Equal(t, filepath.Join(dataDir, "spltriggers.pb"), loaded.Paths.TriggersFile)
	require.Equal(t, filepath.Join(dataDir, "splcomments.pb"), loaded.Paths.CommentsFile)
	require.True(t, loaded.Config.Indicator.SoundEnable)
	require.Equal(t, "default", loaded.Config.Indicator.SoundDevice)
}

func TestLoadExistingTOMLParsesAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[paths]
data_dir = "` + filepath.ToSlash(dir) + `"
profiles_dir = "/srv/broadcast/profiles"

[indicator]
sound_enable = false
desktop_notify = true

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Empty(t, loaded.Warnings)
	require.False(t, loaded.Config.Indicator.SoundEnable)
	require.True(t, loaded.Config.Indicator.DesktopNotify)
	require.Equal(t, "splconfig", loaded.Config.Indicator.DesktopAppName)
	require.Equal(t, "debug", loaded.Config.Log.Level)
	require.Equal(t, "/srv/broadcast/profiles", loaded.Paths.ProfilesDir)
	require.Equal(t, filepath.Join(dir, "splstudio.ini"), loaded.Paths.BaseProfile)
}

func TestLoadExpandsLogFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := t.TempDir()
	t.Setenv("SPLCONFIG_DATA_DIR", dir)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nfile = \"~/logs/splconfig.jsonl\"\n"), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "logs", "splconfig.jsonl"), loaded.Config.Log.File)
}

func TestLoadUnknownKeyProducesWarning(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := "[studio]\nprocess_name = \"studio\"\nwindow_title = \"x\"\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	t.Setenv("SPLCONFIG_DATA_DIR", dir)

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Warnings, 1)
	require.Contains(t, loaded.Warnings[0].Message, "studio.window_title")
	require.Equal(t, "studio", loaded.Config.Studio.ProcessName)
}

func TestLoadParseErrorReportsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 2")
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SPLCONFIG_DATA_DIR", dir)
	t.Setenv("SPLCONFIG_LOG_LEVEL", "warn")
	t.Setenv("SPLCONFIG_SOUND", "false")
	t.Setenv("SPLCONFIG_STUDIO_PROCESS", "studio64")

	loaded, err := Load(filepath.Join(dir, "absent.toml"))
	require.NoError(t, err)
	require.Equal(t, dir, loaded.Config.Paths.DataDir)
	require.Equal(t, "warn", loaded.Config.Log.Level)
	require.False(t, loaded.Config.Indicator.SoundEnable)
	require.Equal(t, "studio64", loaded.Config.Studio.ProcessName)
}

func TestLoadInvalidLevelFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"loud\"\n"), 0o600))
	t.Setenv("SPLCONFIG_DATA_DIR", dir)

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "log.level")
}
