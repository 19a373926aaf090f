// Package cache remembers the last persisted state of each profile so unchanged
// profiles are not rewritten.
package cache

import (
	"github.com/mitchellh/hashstructure/v2"

	"github.com/rbright/splconfig/internal/profile"
)

type snapshot struct {
	hash      uint64
	settings  profile.Settings
	instant   string
	forceSave bool
}

type hashInput struct {
	Settings       profile.Settings
	InstantProfile string
}

// Cache holds one snapshot per profile name.
type Cache struct {
	entries map[string]snapshot
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]snapshot)}
}

// Snapshot records p as persisted. Section-less legacy keys are dropped from p and
// the profile is flagged so the next ShouldSave forces a rewrite.
func (c *Cache) Snapshot(p *profile.Profile) {
	forceSave := len(p.Legacy) > 0
	p.Legacy = nil

	hash, _ := hashOf(p)
	c.entries[p.Name] = snapshot{
		hash:      hash,
		settings:  p.Settings.Clone(),
		instant:   p.InstantProfile,
		forceSave: forceSave,
	}
}

// ShouldSave reports whether p differs from its snapshot or must be written anyway.
func (c *Cache) ShouldSave(p *profile.Profile) bool {
	if p.New || len(p.Legacy) > 0 {
		return true
	}
	snap, ok := c.entries[p.Name]
	if !ok || snap.forceSave {
		return true
	}
	if hash, ok := hashOf(p); ok && hash == snap.hash {
		return false
	}
	return snap.instant != p.InstantProfile || len(c.Diff(p)) > 0
}

// Diff lists the fields of p whose values differ from the snapshot. Profiles without
// a snapshot report every field they carry.
func (c *Cache) Diff(p *profile.Profile) []profile.Field {
	snap, ok := c.entries[p.Name]
	var changed []profile.Field
	for _, section := range p.Sections() {
		for _, f := range profile.SectionFields(section) {
			if !ok || !p.Settings.FieldEqual(&snap.settings, f) {
				changed = append(changed, f)
			}
		}
	}
	return changed
}

// Rename moves a snapshot to a new profile name.
func (c *Cache) Rename(oldName, newName string) {
	snap, ok := c.entries[oldName]
	if !ok {
		return
	}
	delete(c.entries, oldName)
	c.entries[newName] = snap
}

// Forget drops the snapshot for name.
func (c *Cache) Forget(name string) {
	delete(c.entries, name)
}

// hashOf reports false when hashing fails; callers then compare field by field.
func hashOf(p *profile.Profile) (uint64, bool) {
	hash, err := hashstructure.Hash(hashInput{Settings: p.Settings, InstantProfile: p.InstantProfile}, hashstructure.FormatV2, nil)
	if err != nil {
		return 0, false
	}
	return hash, true
}
