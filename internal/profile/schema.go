// Package profile defines the broadcast profile schema and reads/writes profile files.
//
// A profile is a set of typed settings grouped into sections. Global sections are only
// meaningful in the base profile; mutable sections are carried by every profile. Profile
// files are TOML documents with [Section] headers, native arrays, and CRLF line endings.
package profile

import "slices"

// BaseName is the reserved display name of the always-present base profile.
const BaseName = "Normal profile"

// Ext is the file extension of every profile file.
const Ext = ".ini"

// Section names a group of settings in a profile file.
type Section string

const (
	SectionGeneral            Section = "General"
	SectionIntroOutroAlarms   Section = "IntroOutroAlarms"
	SectionMicrophoneAlarm    Section = "MicrophoneAlarm"
	SectionMetadataStreaming  Section = "MetadataStreaming"
	SectionColumnAnnouncement Section = "ColumnAnnouncement"
	SectionSayStatus          Section = "SayStatus"
	SectionAdvanced           Section = "Advanced"
	SectionUpdate             Section = "Update"
	SectionStartup            Section = "Startup"
)

// Sections lists every section in file order.
var Sections = []Section{
	SectionGeneral,
	SectionIntroOutroAlarms,
	SectionMicrophoneAlarm,
	SectionMetadataStreaming,
	SectionColumnAnnouncement,
	SectionSayStatus,
	SectionAdvanced,
	SectionUpdate,
	SectionStartup,
}

// MutableSections are carried by every profile.
var MutableSections = []Section{
	SectionIntroOutroAlarms,
	SectionMicrophoneAlarm,
	SectionMetadataStreaming,
	SectionColumnAnnouncement,
}

// Mutable reports whether the section is profile-specific.
func (s Section) Mutable() bool {
	return slices.Contains(MutableSections, s)
}

// SectionsFor returns the sections a profile of the given kind carries.
func SectionsFor(base bool) []Section {
	if base {
		return Sections
	}
	return MutableSections
}

// Columns is the fixed universe of track attributes in default announcement order.
var Columns = []string{
	"Artist", "Title", "Duration", "Intro", "Outro", "Category", "Year", "Album", "Genre",
	"Mood", "Energy", "Tempo", "BPM", "Gender", "Rating", "Filename", "Time Scheduled",
}

// MandatoryColumns must always be part of the included column set.
var MandatoryColumns = []string{"Artist", "Title"}

// MetadataSlots is the length of the metadata streaming toggle vector
// (DSP encoder plus four stream URLs).
const MetadataSlots = 5

// Kind is the value type of a setting.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindOption
	KindStringList
	KindBoolList
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindOption:
		return "option"
	case KindStringList:
		return "string list"
	case KindBoolList:
		return "boolean list"
	default:
		return "unknown"
	}
}
