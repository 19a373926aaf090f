package indicator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveLocaleDefaultsToEnglish(t *testing.T) {
	require.Equal(t, localeEnglish, resolveLocale("en_US.UTF-8"))
	require.Equal(t, localeEnglish, resolveLocale("fr_FR.UTF-8"))
}

func TestMessagesEnglish(t *testing.T) {
	msg := catalog(localeEnglish)
	require.Equal(t, "No instant switch profile is defined", msg.NoInstantProfile)
	require.Equal(t, "You are already in the instant switch profile", msg.AlreadyInstant)
	require.Equal(t, "Successfully applied default add-on settings.", msg.ResetApplied)
	require.Contains(t, msg.TriggerSwitchFormat, "%s")
}
