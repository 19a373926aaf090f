package cache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/splconfig/internal/profile"
)

func loadedProfile(name string, base bool) *profile.Profile {
	p := profile.New(name, "/unused/"+name+".ini", base)
	p.New = false
	return p
}

func TestShouldSaveFalseRightAfterSnapshot(t *testing.T) {
	c := New()
	p := loadedProfile("Show", false)
	c.Snapshot(p)
	require.False(t, c.ShouldSave(p))
	require.Empty(t, c.Diff(p))
}

func TestShouldSaveAfterSingleMutation(t *testing.T) {
	for _, f := range profile.Fields() {
		if !f.Section().Mutable() {
			continue
		}
		c := New()
		p := loadedProfile("Show", false)
		c.Snapshot(p)

		switch f.Kind() {
		case profile.KindBool:
			require.NoError(t, p.Settings.Set(f, !p.Settings.Get(f).(bool)))
		case profile.KindInt:
			lo, hi := f.Bounds()
			next := lo
			if p.Settings.Get(f).(int) == lo {
				next = hi
			}
			require.NoError(t, p.Settings.Set(f, next))
		case profile.KindStringList:
			cols := append([]string(nil), p.Settings.Get(f).([]string)...)
			cols[0], cols[1] = cols[1], cols[0]
			require.NoError(t, p.Settings.Set(f, cols))
		case profile.KindBoolList:
			vec := append([]bool(nil), p.Settings.Get(f).([]bool)...)
			vec[2] = !vec[2]
			require.NoError(t, p.Settings.Set(f, vec))
		}

		require.True(t, c.ShouldSave(p), f.String())
		require.Equal(t, []profile.Field{f}, c.Diff(p), f.String())
	}
}

func TestShouldSaveNewProfile(t *testing.T) {
	c := New()
	p := profile.New("Show", "/unused/Show.ini", false)
	require.True(t, c.ShouldSave(p))
}

func TestShouldSaveWithoutSnapshot(t *testing.T) {
	c := New()
	p := loadedProfile("Show", false)
	require.True(t, c.ShouldSave(p))
	require.NotEmpty(t, c.Diff(p))
}

func TestSnapshotMigratesLegacyKeys(t *testing.T) {
	c := New()
	p := loadedProfile(profile.BaseName, true)
	p.Legacy = map[string]any{"BeepAnnounce": true}

	c.Snapshot(p)
	require.Nil(t, p.Legacy)
	require.True(t, c.ShouldSave(p))

	c.Snapshot(p)
	require.False(t, c.ShouldSave(p))
}

func TestInstantProfileChangeTriggersSave(t *testing.T) {
	c := New()
	p := loadedProfile(profile.BaseName, true)
	c.Snapshot(p)

	p.InstantProfile = "Show"
	require.True(t, c.ShouldSave(p))
}

func TestRenameAndForget(t *testing.T) {
	c := New()
	p := loadedProfile("Show", false)
	c.Snapshot(p)

	c.Rename("Show", "Late show")
	p.Name = "Late show"
	require.False(t, c.ShouldSave(p))

	c.Forget("Late show")
	require.True(t, c.ShouldSave(p))
}
