// Package config resolves, loads, validates, and defaults splconfig runtime settings.
//
// These are the tool's own settings (where profiles live, logging, audio cues). Broadcast
// profiles themselves are handled by the profile package.
package config

// Config is the fully materialized runtime configuration used by splconfig.
type Config struct {
	Paths     PathsConfig     `toml:"paths"`
	Indicator IndicatorConfig `toml:"indicator"`
	Studio    StudioConfig    `toml:"studio"`
	Log       LogConfig       `toml:"log"`
}

// PathsConfig locates the base profile, broadcast profiles, and the opaque stores.
// Relative entries resolve under DataDir.
type PathsConfig struct {
	DataDir      string `toml:"data_dir"`
	BaseProfile  string `toml:"base_profile"`
	ProfilesDir  string `toml:"profiles_dir"`
	TriggersFile string `toml:"triggers_file"`
	CommentsFile string `toml:"comments_file"`
}

// IndicatorConfig controls tone playback and desktop notifications.
type IndicatorConfig struct {
	SoundEnable    bool   `toml:"sound_enable"`
	SoundDevice    string `toml:"sound_device"`
	DesktopNotify  bool   `toml:"desktop_notify"`
	DesktopAppName string `toml:"desktop_app_name"`
}

// StudioConfig identifies the broadcast automation process.
type StudioConfig struct {
	ProcessName string `toml:"process_name"`
}

// LogConfig holds logging settings. An empty File logs under $XDG_STATE_HOME.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Warning is a non-fatal load/validation message.
type Warning struct {
	Line    int
	Message string
}
