package profile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultsMatchSchema(t *testing.T) {
	s := Defaults()
	require.False(t, s.General.BeepAnnounce)
	require.Equal(t, "beginner", s.General.MessageVerbosity)
	require.Equal(t, "off", s.General.MetadataReminder)
	require.Equal(t, 5, s.IntroOutroAlarms.EndOfTrackTime)
	require.Equal(t, 15, s.Advanced.ProfileTriggerThreshold)
	require.Equal(t, make([]bool, MetadataSlots), s.MetadataStreaming.MetadataEnabled)
	require.Equal(t, Columns, s.ColumnAnnouncement.ColumnOrder)
	require.Equal(t, Columns, s.ColumnAnnouncement.IncludedColumns)
}

func TestDefaultsDoNotShareSlices(t *testing.T) {
	a := Defaults()
	b := Defaults()
	a.ColumnAnnouncement.ColumnOrder[0] = "Title"
	a.MetadataStreaming.MetadataEnabled[0] = true
	require.Equal(t, "Artist", b.ColumnAnnouncement.ColumnOrder[0])
	require.False(t, b.MetadataStreaming.MetadataEnabled[0])
	require.Equal(t, "Artist", Columns[0])
}

func TestSetValidates(t *testing.T) {
	tests := []struct {
		name    string
		field   Field
		value   any
		wantErr bool
	}{
		{name: "bool", field: BeepAnnounce, value: true},
		{name: "bool wrong type", field: BeepAnnounce, value: "yes", wantErr: true},
		{name: "int in range", field: EndOfTrackTime, value: 59},
		{name: "int64 in range", field: MicAlarm, value: int64(7200)},
		{name: "int above max", field: EndOfTrackTime, value: 60, wantErr: true},
		{name: "int below min", field: SongRampTime, value: 0, wantErr: true},
		{name: "option", field: AlarmAnnounce, value: "message"},
		{name: "option case folded", field: CompatibilityLayer, value: "JFW"},
		{name: "option unknown", field: AlarmAnnounce, value: "shout", wantErr: true},
		{name: "columns missing title", field: IncludedColumns, value: []string{"Artist", "Album"}, wantErr: true},
		{name: "columns subset", field: IncludedColumns, value: []string{"Artist", "Title", "Album"}},
		{name: "column order short", field: ColumnOrder, value: []string{"Artist", "Title"}, wantErr: true},
		{name: "column unknown", field: IncludedColumns, value: []string{"Artist", "Title", "Lyrics"}, wantErr: true},
		{name: "metadata length", field: MetadataEnabled, value: []bool{true}, wantErr: true},
		{name: "metadata", field: MetadataEnabled, value: []bool{true, false, false, false, true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := Defaults()
			before := s.Clone()
			err := s.Set(tc.field, tc.value)
			if tc.wantErr {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrInvalidValue))
				require.Equal(t, before, s)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSetNormalizesOptionCase(t *testing.T) {
	s := Defaults()
	require.NoError(t, s.Set(CompatibilityLayer, "WinEyes"))
	require.Equal(t, "wineyes", s.Advanced.CompatibilityLayer)
}

func TestCopySectionAndField(t *testing.T) {
	src := Defaults()
	require.NoError(t, src.Set(EndOfTrackTime, 20))
	require.NoError(t, src.Set(SongRampTime, 9))
	require.NoError(t, src.Set(MicAlarm, 30))

	dst := Defaults()
	dst.CopyField(&src, EndOfTrackTime)
	require.Equal(t, 20, dst.IntroOutroAlarms.EndOfTrackTime)
	require.Equal(t, 5, dst.IntroOutroAlarms.SongRampTime)

	dst.CopySection(&src, SectionIntroOutroAlarms)
	require.Equal(t, 9, dst.IntroOutroAlarms.SongRampTime)
	require.Equal(t, 0, dst.MicrophoneAlarm.MicAlarm)
}

func TestEqualScopesToSections(t *testing.T) {
	a := Defaults()
	b := Defaults()
	require.NoError(t, b.Set(BeepAnnounce, true))

	require.True(t, a.Equal(&b, MutableSections))
	require.False(t, a.Equal(&b, Sections))
}

func TestParseField(t *testing.T) {
	f, err := ParseField("introoutroalarms/endoftracktime")
	require.NoError(t, err)
	require.Equal(t, EndOfTrackTime, f)
	require.Equal(t, "IntroOutroAlarms/EndOfTrackTime", f.String())

	_, err = ParseField("EndOfTrackTime")
	require.Error(t, err)
	_, err = ParseField("General/Nope")
	require.Error(t, err)
}

func TestParseValueFeedsSet(t *testing.T) {
	s := Defaults()

	v, err := ParseValue(EndOfTrackTime, " 12 ")
	require.NoError(t, err)
	require.NoError(t, s.Set(EndOfTrackTime, v))
	require.Equal(t, 12, s.IntroOutroAlarms.EndOfTrackTime)

	v, err = ParseValue(SayEndOfTrack, "false")
	require.NoError(t, err)
	require.NoError(t, s.Set(SayEndOfTrack, v))
	require.False(t, s.IntroOutroAlarms.SayEndOfTrack)

	v, err = ParseValue(MetadataEnabled, "true, false,true,false,false")
	require.NoError(t, err)
	require.NoError(t, s.Set(MetadataEnabled, v))
	require.Equal(t, "true,false,true,false,false", FormatValue(s.Get(MetadataEnabled)))

	_, err = ParseValue(EndOfTrackTime, "soon")
	require.ErrorIs(t, err, ErrInvalidValue)
	_, err = ParseValue(MetadataEnabled, "yes,maybe")
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestEveryFieldDefaultValidates(t *testing.T) {
	for _, f := range Fields() {
		s := Defaults()
		require.NoError(t, s.Set(f, f.Default()), f.String())
	}
}

func TestSanitizeName(t *testing.T) {
	require.Equal(t, "Morning show", SanitizeName(" Morning/ show? "))
	require.Equal(t, "ab", SanitizeName(`a<>:"|*\b`))

	name, ok := NameFromFile("/x/Late night.INI")
	require.True(t, ok)
	require.Equal(t, "Late night", name)
	_, ok = NameFromFile("/x/notes.txt")
	require.False(t, ok)
}
