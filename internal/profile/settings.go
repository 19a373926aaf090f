package profile

import "slices"

// Settings is the typed content of a profile.
type Settings struct {
	General            General
	IntroOutroAlarms   IntroOutroAlarms
	MicrophoneAlarm    MicrophoneAlarm
	MetadataStreaming  MetadataStreaming
	ColumnAnnouncement ColumnAnnouncement
	SayStatus          SayStatus
	Advanced           Advanced
	Update             Update
	Startup            Startup
}

// General holds announcement and verbosity preferences.
type General struct {
	BeepAnnounce         bool
	MessageVerbosity     string
	BrailleTimer         string
	AlarmAnnounce        string
	TrackCommentAnnounce string
	LibraryScanAnnounce  string
	TrackDial            bool
	CategorySounds       bool
	TopBottomAnnounce    bool
	MetadataReminder     string
	TimeHourAnnounce     bool
}

// IntroOutroAlarms controls end-of-track and song ramp warnings.
type IntroOutroAlarms struct {
	SayEndOfTrack  bool
	EndOfTrackTime int
	SaySongRamp    bool
	SongRampTime   int
}

// MicrophoneAlarm controls the "microphone still active" warning, in seconds.
type MicrophoneAlarm struct {
	MicAlarm         int
	MicAlarmInterval int
}

// MetadataStreaming holds one toggle per streaming slot.
type MetadataStreaming struct {
	MetadataEnabled []bool
}

// ColumnAnnouncement selects which track columns are announced and in what order.
type ColumnAnnouncement struct {
	UseScreenColumnOrder bool
	ColumnOrder          []string
	IncludedColumns      []string
	IncludeColumnHeaders bool
}

type SayStatus struct {
	SayScheduledFor         bool
	SayListenerCount        bool
	SayPlayingCartName      bool
	SayStudioPlayerPosition bool
}

type Advanced struct {
	SPLConPassthrough       bool
	CompatibilityLayer      string
	ProfileTriggerThreshold int
}

type Update struct {
	AutoUpdateCheck bool
	UpdateInterval  int
}

type Startup struct {
	AudioDuckingReminder bool
	WelcomeDialog        bool
}

// Defaults returns schema defaults for every setting.
func Defaults() Settings {
	var s Settings
	for _, f := range Fields() {
		f.reset(&s)
	}
	return s
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	out := s
	out.MetadataStreaming.MetadataEnabled = slices.Clone(s.MetadataStreaming.MetadataEnabled)
	out.ColumnAnnouncement.ColumnOrder = slices.Clone(s.ColumnAnnouncement.ColumnOrder)
	out.ColumnAnnouncement.IncludedColumns = slices.Clone(s.ColumnAnnouncement.IncludedColumns)
	return out
}

// Get returns the current value of field.
func (s *Settings) Get(f Field) any {
	return f.spec().get(s)
}

// Set validates value and assigns it to field. Invalid values leave s unchanged and
// return an error wrapping ErrInvalidValue.
func (s *Settings) Set(f Field, value any) error {
	spec := f.spec()
	coerced, err := spec.coerce(value)
	if err != nil {
		return err
	}
	if spec.shape != nil {
		if err := spec.shape(coerced); err != nil {
			return err
		}
	}
	spec.set(s, coerced)
	return nil
}

// CopySection copies every field of section from src into s.
func (s *Settings) CopySection(src *Settings, section Section) {
	for _, f := range SectionFields(section) {
		f.copy(s, src)
	}
}

// CopyField copies a single field from src into s.
func (s *Settings) CopyField(src *Settings, f Field) {
	f.copy(s, src)
}

// Equal reports whether every field in the given sections matches.
func (s *Settings) Equal(other *Settings, sections []Section) bool {
	for _, section := range sections {
		for _, f := range SectionFields(section) {
			if !valuesEqual(s.Get(f), other.Get(f)) {
				return false
			}
		}
	}
	return true
}

// FieldEqual reports whether f holds the same value in s and other.
func (s *Settings) FieldEqual(other *Settings, f Field) bool {
	return valuesEqual(s.Get(f), other.Get(f))
}

func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case []string:
		bv, ok := b.([]string)
		return ok && slices.Equal(av, bv)
	case []bool:
		bv, ok := b.([]bool)
		return ok && slices.Equal(av, bv)
	default:
		return a == b
	}
}
