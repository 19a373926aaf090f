package config

const (
	baseProfileFile  = "splstudio.ini"
	profilesDirName  = "profiles"
	triggersFileName = "spltriggers.pb"
	commentsFileName = "splcomments.pb"
)

// Default returns the canonical runtime configuration used when no file is present.
// DataDir is left empty and resolved by Load.
func Default() Config {
	return Config{
		Paths: PathsConfig{
			BaseProfile:  baseProfileFile,
			ProfilesDir:  profilesDirName,
			TriggersFile: triggersFileName,
			CommentsFile: commentsFileName,
		},
		Indicator: IndicatorConfig{
			SoundEnable:    true,
			SoundDevice:    "default",
			DesktopNotify:  false,
			DesktopAppName: "splconfig",
		},
		Studio: StudioConfig{
			ProcessName: "splstudio",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// applyDefaults fills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	d := Default()

	if c.Paths.BaseProfile == "" {
		c.Paths.BaseProfile = d.Paths.BaseProfile
	}
	if c.Paths.ProfilesDir == "" {
		c.Paths.ProfilesDir = d.Paths.ProfilesDir
	}
	if c.Paths.TriggersFile == "" {
		c.Paths.TriggersFile = d.Paths.TriggersFile
	}
	if c.Paths.CommentsFile == "" {
		c.Paths.CommentsFile = d.Paths.CommentsFile
	}
	if c.Indicator.SoundDevice == "" {
		c.Indicator.SoundDevice = d.Indicator.SoundDevice
	}
	if c.Indicator.DesktopAppName == "" {
		c.Indicator.DesktopAppName = d.Indicator.DesktopAppName
	}
	if c.Studio.ProcessName == "" {
		c.Studio.ProcessName = d.Studio.ProcessName
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
