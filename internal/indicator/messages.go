package indicator

import (
	"os"
	"strings"
)

type locale string

const (
	localeEnglish locale = "en"
)

// Messages is the user-facing text catalog. Fields ending in Format take fmt arguments.
type Messages struct {
	DialogOpen          string
	AlarmDialogOpen     string
	NoInstantProfile    string
	AlreadyInstant      string
	TriggerActive       string
	Switching           string
	Returning           string
	TriggerSwitchFormat string
	TriggerReturn       string
	ResetApplied        string
	MetadataOnFormat    string
	MetadataOff         string
	NextTriggerFormat   string
	NoTriggers          string
	PurgedFormat        string
	InstantMissing      string
	StudioNotRunning    string
	LoadIssuesTitle     string
	InternalErrorTitle  string
}

// MessagesFromEnv selects the catalog for $LANG.
func MessagesFromEnv() Messages {
	return catalog(resolveLocale(os.Getenv("LANG")))
}

func resolveLocale(raw string) locale {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(raw, "en") {
		return localeEnglish
	}
	return localeEnglish
}

func catalog(tag locale) Messages {
	switch tag {
	case localeEnglish:
		fallthrough
	default:
		return Messages{
			DialogOpen:          "Add-on settings dialog is open, cannot switch profiles",
			AlarmDialogOpen:     "An alarm dialog is already opened. Please close the alarm dialog first.",
			NoInstantProfile:    "No instant switch profile is defined",
			AlreadyInstant:      "You are already in the instant switch profile",
			TriggerActive:       "A time-based profile is active, cannot use instant switch",
			Switching:           "Switching profiles",
			Returning:           "Returning to previous profile",
			TriggerSwitchFormat: "Switching to time-based profile %s",
			TriggerReturn:       "Time-based profile ended, returning to previous profile",
			ResetApplied:        "Successfully applied default add-on settings.",
			MetadataOnFormat:    "Metadata streaming enabled for %s",
			MetadataOff:         "Metadata streaming is off",
			NextTriggerFormat:   "Next time-based profile %s %s",
			NoTriggers:          "No time-based profiles are scheduled",
			PurgedFormat:        "Removed time-based profile entries for missing profiles: %s",
			InstantMissing:      "Instant switch profile no longer exists and has been cleared",
			StudioNotRunning:    "Studio is not running, alarm settings were not changed",
			LoadIssuesTitle:     "Broadcast profile errors",
			InternalErrorTitle:  "Internal error",
		}
	}
}
