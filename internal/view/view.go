// Package view holds the merged working copy of the active configuration.
package view

import (
	"github.com/rbright/splconfig/internal/pool"
	"github.com/rbright/splconfig/internal/profile"
)

// View is the base profile's global sections overlaid with the active profile's
// mutable sections. It holds a copy; changes reach the pool only through ApplyBack.
type View struct {
	Settings    profile.Settings
	ActiveIndex int
	ActiveName  string
}

// Merge builds a View for the profile at index.
func Merge(p *pool.Pool, index int) (*View, error) {
	active, err := p.At(index)
	if err != nil {
		return nil, err
	}

	settings := p.Base().Settings.Clone()
	for _, section := range profile.MutableSections {
		settings.CopySection(&active.Settings, section)
	}
	return &View{Settings: settings, ActiveIndex: index, ActiveName: active.Name}, nil
}

type scope int

const (
	scopeAll scope = iota
	scopeSection
	scopeField
)

// Selector limits what ApplyBack writes.
type Selector struct {
	scope   scope
	section profile.Section
	field   profile.Field
}

// All selects every setting.
func All() Selector { return Selector{scope: scopeAll} }

// Section selects every setting of one section.
func Section(s profile.Section) Selector { return Selector{scope: scopeSection, section: s} }

// Field selects a single setting.
func Field(f profile.Field) Selector {
	return Selector{scope: scopeField, field: f, section: f.Section()}
}

// ApplyBack writes the view's values into the pool. Mutable settings go to the
// profile at index; global settings always go to the base profile.
func (v *View) ApplyBack(p *pool.Pool, index int, sel Selector) error {
	target, err := p.At(index)
	if err != nil {
		return err
	}
	base := p.Base()

	owner := func(section profile.Section) *profile.Profile {
		if section.Mutable() {
			return target
		}
		return base
	}

	switch sel.scope {
	case scopeField:
		owner(sel.section).Settings.CopyField(&v.Settings, sel.field)
	case scopeSection:
		owner(sel.section).Settings.CopySection(&v.Settings, sel.section)
	default:
		for _, section := range profile.Sections {
			owner(section).Settings.CopySection(&v.Settings, section)
		}
	}
	return nil
}
