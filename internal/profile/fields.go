package profile

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidValue reports a value that fails bounds, option, or shape checks.
var ErrInvalidValue = errors.New("invalid value")

// Field identifies one typed setting.
type Field int

const (
	BeepAnnounce Field = iota
	MessageVerbosity
	BrailleTimer
	AlarmAnnounce
	TrackCommentAnnounce
	LibraryScanAnnounce
	TrackDial
	CategorySounds
	TopBottomAnnounce
	MetadataReminder
	TimeHourAnnounce
	SayEndOfTrack
	EndOfTrackTime
	SaySongRamp
	SongRampTime
	MicAlarm
	MicAlarmInterval
	MetadataEnabled
	UseScreenColumnOrder
	ColumnOrder
	IncludedColumns
	IncludeColumnHeaders
	SayScheduledFor
	SayListenerCount
	SayPlayingCartName
	SayStudioPlayerPosition
	SPLConPassthrough
	CompatibilityLayer
	ProfileTriggerThreshold
	AutoUpdateCheck
	UpdateInterval
	AudioDuckingReminder
	WelcomeDialog

	fieldCount
)

type fieldSpec struct {
	section  Section
	name     string
	kind     Kind
	min, max int
	options  []string
	def      any
	check    func(any) error
	shape    func(any) error
	ref      func(*Settings) any
}

var fieldTable = [fieldCount]fieldSpec{
	BeepAnnounce:         boolSpec(SectionGeneral, "BeepAnnounce", false, func(s *Settings) any { return &s.General.BeepAnnounce }),
	MessageVerbosity:     optionSpec(SectionGeneral, "MessageVerbosity", []string{"beginner", "advanced"}, func(s *Settings) any { return &s.General.MessageVerbosity }),
	BrailleTimer:         optionSpec(SectionGeneral, "BrailleTimer", []string{"off", "intro", "outro", "both"}, func(s *Settings) any { return &s.General.BrailleTimer }),
	AlarmAnnounce:        optionSpec(SectionGeneral, "AlarmAnnounce", []string{"beep", "message", "both"}, func(s *Settings) any { return &s.General.AlarmAnnounce }),
	TrackCommentAnnounce: optionSpec(SectionGeneral, "TrackCommentAnnounce", []string{"off", "beep", "message", "both"}, func(s *Settings) any { return &s.General.TrackCommentAnnounce }),
	LibraryScanAnnounce:  optionSpec(SectionGeneral, "LibraryScanAnnounce", []string{"off", "ending", "progress", "numbers"}, func(s *Settings) any { return &s.General.LibraryScanAnnounce }),
	TrackDial:            boolSpec(SectionGeneral, "TrackDial", false, func(s *Settings) any { return &s.General.TrackDial }),
	CategorySounds:       boolSpec(SectionGeneral, "CategorySounds", false, func(s *Settings) any { return &s.General.CategorySounds }),
	TopBottomAnnounce:    boolSpec(SectionGeneral, "TopBottomAnnounce", true, func(s *Settings) any { return &s.General.TopBottomAnnounce }),
	MetadataReminder:     optionSpec(SectionGeneral, "MetadataReminder", []string{"off", "startup", "instant"}, func(s *Settings) any { return &s.General.MetadataReminder }),
	TimeHourAnnounce:     boolSpec(SectionGeneral, "TimeHourAnnounce", true, func(s *Settings) any { return &s.General.TimeHourAnnounce }),

	SayEndOfTrack:  boolSpec(SectionIntroOutroAlarms, "SayEndOfTrack", true, func(s *Settings) any { return &s.IntroOutroAlarms.SayEndOfTrack }),
	EndOfTrackTime: intSpec(SectionIntroOutroAlarms, "EndOfTrackTime", 1, 59, 5, func(s *Settings) any { return &s.IntroOutroAlarms.EndOfTrackTime }),
	SaySongRamp:    boolSpec(SectionIntroOutroAlarms, "SaySongRamp", true, func(s *Settings) any { return &s.IntroOutroAlarms.SaySongRamp }),
	SongRampTime:   intSpec(SectionIntroOutroAlarms, "SongRampTime", 1, 9, 5, func(s *Settings) any { return &s.IntroOutroAlarms.SongRampTime }),

	MicAlarm:         intSpec(SectionMicrophoneAlarm, "MicAlarm", 0, 7200, 0, func(s *Settings) any { return &s.MicrophoneAlarm.MicAlarm }),
	MicAlarmInterval: intSpec(SectionMicrophoneAlarm, "MicAlarmInterval", 0, 60, 0, func(s *Settings) any { return &s.MicrophoneAlarm.MicAlarmInterval }),

	MetadataEnabled: {
		section: SectionMetadataStreaming,
		name:    "MetadataEnabled",
		kind:    KindBoolList,
		def:     make([]bool, MetadataSlots),
		shape:   checkMetadataShape,
		ref:     func(s *Settings) any { return &s.MetadataStreaming.MetadataEnabled },
	},

	UseScreenColumnOrder: boolSpec(SectionColumnAnnouncement, "UseScreenColumnOrder", true, func(s *Settings) any { return &s.ColumnAnnouncement.UseScreenColumnOrder }),
	ColumnOrder: {
		section: SectionColumnAnnouncement,
		name:    "ColumnOrder",
		kind:    KindStringList,
		def:     Columns,
		check:   checkColumns,
		shape:   checkColumnOrderShape,
		ref:     func(s *Settings) any { return &s.ColumnAnnouncement.ColumnOrder },
	},
	IncludedColumns: {
		section: SectionColumnAnnouncement,
		name:    "IncludedColumns",
		kind:    KindStringList,
		def:     Columns,
		check:   checkIncludedColumns,
		ref:     func(s *Settings) any { return &s.ColumnAnnouncement.IncludedColumns },
	},
	IncludeColumnHeaders: boolSpec(SectionColumnAnnouncement, "IncludeColumnHeaders", true, func(s *Settings) any { return &s.ColumnAnnouncement.IncludeColumnHeaders }),

	SayScheduledFor:         boolSpec(SectionSayStatus, "SayScheduledFor", true, func(s *Settings) any { return &s.SayStatus.SayScheduledFor }),
	SayListenerCount:        boolSpec(SectionSayStatus, "SayListenerCount", true, func(s *Settings) any { return &s.SayStatus.SayListenerCount }),
	SayPlayingCartName:      boolSpec(SectionSayStatus, "SayPlayingCartName", true, func(s *Settings) any { return &s.SayStatus.SayPlayingCartName }),
	SayStudioPlayerPosition: boolSpec(SectionSayStatus, "SayStudioPlayerPosition", false, func(s *Settings) any { return &s.SayStatus.SayStudioPlayerPosition }),

	SPLConPassthrough:       boolSpec(SectionAdvanced, "SPLConPassthrough", false, func(s *Settings) any { return &s.Advanced.SPLConPassthrough }),
	CompatibilityLayer:      optionSpec(SectionAdvanced, "CompatibilityLayer", []string{"off", "jfw", "wineyes"}, func(s *Settings) any { return &s.Advanced.CompatibilityLayer }),
	ProfileTriggerThreshold: intSpec(SectionAdvanced, "ProfileTriggerThreshold", 5, 60, 15, func(s *Settings) any { return &s.Advanced.ProfileTriggerThreshold }),

	AutoUpdateCheck: boolSpec(SectionUpdate, "AutoUpdateCheck", true, func(s *Settings) any { return &s.Update.AutoUpdateCheck }),
	UpdateInterval:  intSpec(SectionUpdate, "UpdateInterval", 1, 30, 7, func(s *Settings) any { return &s.Update.UpdateInterval }),

	AudioDuckingReminder: boolSpec(SectionStartup, "AudioDuckingReminder", true, func(s *Settings) any { return &s.Startup.AudioDuckingReminder }),
	WelcomeDialog:        boolSpec(SectionStartup, "WelcomeDialog", true, func(s *Settings) any { return &s.Startup.WelcomeDialog }),
}

func boolSpec(section Section, name string, def bool, ref func(*Settings) any) fieldSpec {
	return fieldSpec{section: section, name: name, kind: KindBool, def: def, ref: ref}
}

func intSpec(section Section, name string, min, max, def int, ref func(*Settings) any) fieldSpec {
	return fieldSpec{section: section, name: name, kind: KindInt, min: min, max: max, def: def, ref: ref}
}

// optionSpec defaults to the first option.
func optionSpec(section Section, name string, options []string, ref func(*Settings) any) fieldSpec {
	return fieldSpec{section: section, name: name, kind: KindOption, options: options, def: options[0], ref: ref}
}

// Fields returns every field in schema order.
func Fields() []Field {
	out := make([]Field, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		out = append(out, f)
	}
	return out
}

// SectionFields returns the fields of one section in schema order.
func SectionFields(section Section) []Field {
	var out []Field
	for _, f := range Fields() {
		if fieldTable[f].section == section {
			out = append(out, f)
		}
	}
	return out
}

// FieldByName resolves a section/name pair.
func FieldByName(section Section, name string) (Field, bool) {
	for _, f := range Fields() {
		if fieldTable[f].section == section && strings.EqualFold(fieldTable[f].name, name) {
			return f, true
		}
	}
	return 0, false
}

// ParseField resolves "Section/Name" notation as used on the command line.
func ParseField(raw string) (Field, error) {
	section, name, ok := strings.Cut(raw, "/")
	if !ok {
		return 0, fmt.Errorf("field %q must be written as Section/Name", raw)
	}
	for _, s := range Sections {
		if strings.EqualFold(string(s), section) {
			if f, ok := FieldByName(s, name); ok {
				return f, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown field %q", raw)
}

// ParseValue converts command-line text into a value Set accepts for f. Lists
// are comma separated.
func ParseValue(f Field, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch f.Kind() {
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %q is not a boolean", ErrInvalidValue, f, raw)
		}
		return b, nil
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %q is not an integer", ErrInvalidValue, f, raw)
		}
		return n, nil
	case KindStringList:
		if raw == "" {
			return []string{}, nil
		}
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	case KindBoolList:
		parts := strings.Split(raw, ",")
		out := make([]bool, 0, len(parts))
		for _, part := range parts {
			b, err := strconv.ParseBool(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %q is not a boolean", ErrInvalidValue, f, part)
			}
			out = append(out, b)
		}
		return out, nil
	default:
		return raw, nil
	}
}

// FormatValue renders a setting value the way ParseValue reads it.
func FormatValue(v any) string {
	switch v := v.(type) {
	case []string:
		return strings.Join(v, ",")
	case []bool:
		parts := make([]string, len(v))
		for i, b := range v {
			parts[i] = strconv.FormatBool(b)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

func (f Field) spec() *fieldSpec {
	if f < 0 || f >= fieldCount {
		panic(fmt.Sprintf("profile: unknown field %d", int(f)))
	}
	return &fieldTable[f]
}

func (f Field) Section() Section { return f.spec().section }
func (f Field) Name() string     { return f.spec().name }
func (f Field) Kind() Kind       { return f.spec().kind }
func (f Field) Options() []string {
	return slices.Clone(f.spec().options)
}

// Bounds returns the inclusive integer range of a KindInt field.
func (f Field) Bounds() (int, int) {
	spec := f.spec()
	return spec.min, spec.max
}

// Default returns a fresh copy of the schema default.
func (f Field) Default() any {
	return cloneValue(f.spec().def)
}

func (f Field) String() string {
	spec := f.spec()
	return string(spec.section) + "/" + spec.name
}

func (f Field) reset(s *Settings) {
	spec := f.spec()
	spec.set(s, cloneValue(spec.def))
}

func (f Field) copy(dst, src *Settings) {
	spec := f.spec()
	spec.set(dst, cloneValue(spec.get(src)))
}

func (spec *fieldSpec) get(s *Settings) any {
	switch p := spec.ref(s).(type) {
	case *bool:
		return *p
	case *int:
		return *p
	case *string:
		return *p
	case *[]string:
		return *p
	case *[]bool:
		return *p
	default:
		panic(fmt.Sprintf("profile: unsupported field storage %T", p))
	}
}

func (spec *fieldSpec) set(s *Settings, value any) {
	switch p := spec.ref(s).(type) {
	case *bool:
		*p = value.(bool)
	case *int:
		*p = value.(int)
	case *string:
		*p = value.(string)
	case *[]string:
		*p = value.([]string)
	case *[]bool:
		*p = value.([]bool)
	default:
		panic(fmt.Sprintf("profile: unsupported field storage %T", p))
	}
}

// coerce converts a decoded or user-supplied value into the field's Go type and
// validates it. TOML integers arrive as int64 and arrays as []any.
func (spec *fieldSpec) coerce(value any) (any, error) {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s/%s: %s", ErrInvalidValue, spec.section, spec.name, fmt.Sprintf(format, args...))
	}

	var out any
	switch spec.kind {
	case KindBool:
		b, ok := value.(bool)
		if !ok {
			return nil, invalid("expected boolean, got %T", value)
		}
		out = b
	case KindInt:
		var n int
		switch v := value.(type) {
		case int:
			n = v
		case int64:
			n = int(v)
		default:
			return nil, invalid("expected integer, got %T", value)
		}
		if n < spec.min || n > spec.max {
			return nil, invalid("%d is outside %d-%d", n, spec.min, spec.max)
		}
		out = n
	case KindOption:
		raw, ok := value.(string)
		if !ok {
			return nil, invalid("expected one of %s", strings.Join(spec.options, ", "))
		}
		idx := slices.IndexFunc(spec.options, func(o string) bool { return strings.EqualFold(o, strings.TrimSpace(raw)) })
		if idx < 0 {
			return nil, invalid("%q is not one of %s", raw, strings.Join(spec.options, ", "))
		}
		out = spec.options[idx]
	case KindStringList:
		list, err := toStrings(value)
		if err != nil {
			return nil, invalid("%v", err)
		}
		out = list
	case KindBoolList:
		list, err := toBools(value)
		if err != nil {
			return nil, invalid("%v", err)
		}
		out = list
	}

	if spec.check != nil {
		if err := spec.check(out); err != nil {
			return nil, invalid("%v", err)
		}
	}
	return out, nil
}

func toStrings(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return slices.Clone(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string list element, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected string list, got %T", value)
	}
}

func toBools(value any) ([]bool, error) {
	switch v := value.(type) {
	case []bool:
		return slices.Clone(v), nil
	case []any:
		out := make([]bool, 0, len(v))
		for _, item := range v {
			b, ok := item.(bool)
			if !ok {
				return nil, fmt.Errorf("expected boolean list element, got %T", item)
			}
			out = append(out, b)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected boolean list, got %T", value)
	}
}

func checkColumns(value any) error {
	seen := make(map[string]bool)
	for _, column := range value.([]string) {
		if !slices.Contains(Columns, column) {
			return fmt.Errorf("unknown column %q", column)
		}
		if seen[column] {
			return fmt.Errorf("duplicate column %q", column)
		}
		seen[column] = true
	}
	return nil
}

func checkIncludedColumns(value any) error {
	if err := checkColumns(value); err != nil {
		return err
	}
	for _, required := range MandatoryColumns {
		if !slices.Contains(value.([]string), required) {
			return fmt.Errorf("column %q must be included", required)
		}
	}
	return nil
}

func checkColumnOrderShape(value any) error {
	if got := len(value.([]string)); got != len(Columns) {
		return fmt.Errorf("%w: column order lists %d of %d columns", ErrInvalidValue, got, len(Columns))
	}
	return nil
}

func checkMetadataShape(value any) error {
	if got := len(value.([]bool)); got != MetadataSlots {
		return fmt.Errorf("%w: metadata streaming has %d slots, want %d", ErrInvalidValue, got, MetadataSlots)
	}
	return nil
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []string:
		return slices.Clone(t)
	case []bool:
		return slices.Clone(t)
	default:
		return v
	}
}
