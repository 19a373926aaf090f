package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName(name))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingBaseCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splstudio.ini")
	store := NewStore(nil)

	p, anomaly, err := store.Load(path, BaseName, true)
	require.NoError(t, err)
	require.Zero(t, anomaly)
	require.Equal(t, Defaults(), p.Settings)
	require.FileExists(t, path)
}

func TestLoadMissingBroadcastProfileIsNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Morning.ini")

	p, anomaly, err := NewStore(nil).Load(path, "Morning", false)
	require.NoError(t, err)
	require.Zero(t, anomaly)
	require.True(t, p.New)
	require.NoFileExists(t, path)
}

func TestLoadAnomalies(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Anomaly
		check   func(*testing.T, *Profile)
	}{
		{
			name:    "clean",
			content: "[IntroOutroAlarms]\r\nEndOfTrackTime = 20\r\n",
			want:    0,
			check: func(t *testing.T, p *Profile) {
				require.Equal(t, 20, p.Settings.IntroOutroAlarms.EndOfTrackTime)
			},
		},
		{
			name:    "unparseable",
			content: "[IntroOutroAlarms\nEndOfTrackTime = \n",
			want:    FileReset,
			check: func(t *testing.T, p *Profile) {
				require.Equal(t, Defaults(), p.Settings)
				content, err := os.ReadFile(p.Path)
				require.NoError(t, err)
				require.Empty(t, content)
			},
		},
		{
			name: "every value invalid",
			content: "[IntroOutroAlarms]\nSayEndOfTrack = \"x\"\nEndOfTrackTime = 99\nSaySongRamp = \"maybe\"\nSongRampTime = 30\n" +
				"[MicrophoneAlarm]\nMicAlarm = -1\nMicAlarmInterval = 99\n" +
				"[MetadataStreaming]\nMetadataEnabled = \"x\"\n" +
				"[ColumnAnnouncement]\nUseScreenColumnOrder = 1\nColumnOrder = 5\nIncludedColumns = 5\nIncludeColumnHeaders = \"x\"\n",
			want: CompleteReset,
			check: func(t *testing.T, p *Profile) {
				require.Equal(t, Defaults(), p.Settings)
			},
		},
		{
			name:    "only key invalid",
			content: "[IntroOutroAlarms]\nEndOfTrackTime = 99\n",
			want:    PartialReset,
			check: func(t *testing.T, p *Profile) {
				require.Equal(t, 5, p.Settings.IntroOutroAlarms.EndOfTrackTime)
			},
		},
		{
			name:    "some values invalid",
			content: "[IntroOutroAlarms]\nEndOfTrackTime = 99\nSongRampTime = 3\n",
			want:    PartialReset,
			check: func(t *testing.T, p *Profile) {
				require.Equal(t, 5, p.Settings.IntroOutroAlarms.EndOfTrackTime)
				require.Equal(t, 3, p.Settings.IntroOutroAlarms.SongRampTime)
			},
		},
		{
			name: "short column order",
			content: "[ColumnAnnouncement]\nColumnOrder = [\"Artist\", \"Title\", \"Duration\", \"Intro\", \"Outro\", " +
				"\"Category\", \"Year\", \"Album\", \"Genre\", \"Mood\"]\n",
			want: ColumnOrderReset,
			check: func(t *testing.T, p *Profile) {
				require.Equal(t, Columns, p.Settings.ColumnAnnouncement.ColumnOrder)
			},
		},
		{
			name: "partial and column order",
			content: "[IntroOutroAlarms]\nSongRampTime = 30\nEndOfTrackTime = 10\n" +
				"[ColumnAnnouncement]\nColumnOrder = [\"Artist\", \"Title\"]\n",
			want: PartialReset | ColumnOrderReset,
			check: func(t *testing.T, p *Profile) {
				require.Equal(t, 10, p.Settings.IntroOutroAlarms.EndOfTrackTime)
			},
		},
		{
			name:    "metadata vector length",
			content: "[MetadataStreaming]\nMetadataEnabled = [true, false]\n",
			want:    MetadataReset,
			check: func(t *testing.T, p *Profile) {
				require.Equal(t, make([]bool, MetadataSlots), p.Settings.MetadataStreaming.MetadataEnabled)
			},
		},
		{
			name:    "included columns without title",
			content: "[ColumnAnnouncement]\nIncludedColumns = [\"Artist\"]\nIncludeColumnHeaders = false\n",
			want:    PartialReset,
			check: func(t *testing.T, p *Profile) {
				require.Equal(t, Columns, p.Settings.ColumnAnnouncement.IncludedColumns)
				require.False(t, p.Settings.ColumnAnnouncement.IncludeColumnHeaders)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeProfile(t, t.TempDir(), "Show", tc.content)
			p, anomaly, err := NewStore(nil).Load(path, "Show", false)
			require.NoError(t, err)
			require.Equal(t, tc.want, anomaly)
			tc.check(t, p)
		})
	}
}

func TestRepairIsWrittenBack(t *testing.T) {
	path := writeProfile(t, t.TempDir(), "Show", "[IntroOutroAlarms]\nEndOfTrackTime = 99\nSongRampTime = 3\n")
	store := NewStore(nil)

	_, anomaly, err := store.Load(path, "Show", false)
	require.NoError(t, err)
	require.Equal(t, PartialReset, anomaly)

	p, anomaly, err := store.Load(path, "Show", false)
	require.NoError(t, err)
	require.Zero(t, anomaly)
	require.Equal(t, 3, p.Settings.IntroOutroAlarms.SongRampTime)
}

func TestBroadcastProfileIgnoresGlobalSections(t *testing.T) {
	path := writeProfile(t, t.TempDir(), "Show", "InstantProfile = \"x\"\n[General]\nBeepAnnounce = true\n")

	p, anomaly, err := NewStore(nil).Load(path, "Show", false)
	require.NoError(t, err)
	require.Zero(t, anomaly)
	require.False(t, p.Settings.General.BeepAnnounce)
	require.Empty(t, p.InstantProfile)
}

func TestBaseProfileReadsInstantProfileAndLegacyKeys(t *testing.T) {
	path := writeProfile(t, t.TempDir(), "splstudio", "InstantProfile = \"Morning\"\nSayEndOfTrack = false\n[General]\nBeepAnnounce = true\n")

	p, anomaly, err := NewStore(nil).Load(path, BaseName, true)
	require.NoError(t, err)
	require.Zero(t, anomaly)
	require.Equal(t, "Morning", p.InstantProfile)
	require.True(t, p.Settings.General.BeepAnnounce)
	require.Equal(t, map[string]any{"SayEndOfTrack": false}, p.Legacy)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(nil)

	base := New(BaseName, filepath.Join(dir, "splstudio.ini"), true)
	base.InstantProfile = "Late night"
	require.NoError(t, base.Settings.Set(AlarmAnnounce, "both"))
	require.NoError(t, base.Settings.Set(MicAlarm, 120))
	require.NoError(t, base.Settings.Set(IncludedColumns, []string{"Title", "Artist", "Year"}))
	require.NoError(t, base.Settings.Set(MetadataEnabled, []bool{true, false, true, false, false}))
	require.NoError(t, store.Save(base))
	require.False(t, base.New)

	loaded, anomaly, err := store.Load(base.Path, BaseName, true)
	require.NoError(t, err)
	require.Zero(t, anomaly)
	require.Equal(t, base.Settings, loaded.Settings)
	require.Equal(t, "Late night", loaded.InstantProfile)
}

func TestEncodePrunesBroadcastProfiles(t *testing.T) {
	p := New("Show", "/unused/Show.ini", false)
	require.NoError(t, p.Settings.Set(EndOfTrackTime, 12))
	require.NoError(t, p.Settings.Set(BeepAnnounce, true))

	content, err := Encode(p)
	require.NoError(t, err)
	text := string(content)

	require.Contains(t, text, "[IntroOutroAlarms]\r\n")
	require.Contains(t, text, "EndOfTrackTime = 12\r\n")
	require.NotContains(t, text, "SongRampTime")
	require.NotContains(t, text, "General")
	require.NotContains(t, text, "MicrophoneAlarm")
	require.NotContains(t, strings.ReplaceAll(text, "\r\n", ""), "\n")
}

func TestEncodeBaseWritesEverySection(t *testing.T) {
	p := New(BaseName, "/unused/splstudio.ini", true)

	content, err := Encode(p)
	require.NoError(t, err)
	for _, section := range Sections {
		require.Contains(t, string(content), "["+string(section)+"]")
	}
	require.NotContains(t, string(content), InstantProfileKey)
}

func TestRenameAndRemove(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(nil)
	p := New("Show", PathIn(dir, "Show"), false)
	require.NoError(t, store.Save(p))

	newPath := PathIn(dir, "Late show")
	require.NoError(t, store.Rename(p, "Late show", newPath))
	require.Equal(t, "Late show", p.Name)
	require.FileExists(t, newPath)
	require.NoFileExists(t, filepath.Join(dir, "Show.ini"))

	require.NoError(t, store.Remove(p))
	require.NoFileExists(t, newPath)
	require.NoError(t, store.Remove(p))
}
