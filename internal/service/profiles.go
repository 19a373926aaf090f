package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rbright/splconfig/internal/pool"
	"github.com/rbright/splconfig/internal/profile"
	"github.com/rbright/splconfig/internal/trigger"
)

// ProfileInfo describes one profile for listings.
type ProfileInfo struct {
	Name       string
	Base       bool
	Active     bool
	Instant    bool
	HasTrigger bool
	Unsaved    bool
}

// Status is a snapshot of the switch state.
type Status struct {
	State          string
	Active         string
	Previous       string
	TriggerProfile string
	Instant        string
}

// Profiles lists profiles in pool order, base first.
func (s *Service) Profiles() []ProfileInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.coord.View().ActiveIndex
	instant := s.pool.Base().InstantProfile
	schedule := s.coord.Scheduler().Schedule()

	out := make([]ProfileInfo, 0, s.pool.Len())
	for i, prof := range s.pool.Profiles() {
		_, scheduled := schedule.Get(prof.Name)
		out = append(out, ProfileInfo{
			Name:       prof.Name,
			Base:       prof.Base,
			Active:     i == active,
			Instant:    !prof.Base && prof.Name == instant,
			HasTrigger: scheduled,
			Unsaved:    s.cache.ShouldSave(prof),
		})
	}
	return out
}

// Sorted reports whether broadcast profiles are in alphabetical order.
func (s *Service) Sorted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Sorted()
}

// Status returns the current switch state.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:          string(s.coord.State()),
		Active:         s.coord.View().ActiveName,
		Previous:       s.coord.PreviousName(),
		TriggerProfile: s.coord.TriggerProfile(),
		Instant:        s.pool.Base().InstantProfile,
	}
}

// NewProfile adds a broadcast profile. copyFrom names the profile whose
// mutable settings are copied; empty means defaults. The stored name is returned.
func (s *Service) NewProfile(name, copyFrom string) (string, error) {
	var created string
	err := s.locked(func() error {
		from := -1
		if copyFrom != "" {
			index, err := s.pool.IndexByName(copyFrom)
			if err != nil {
				return err
			}
			// Unsaved edits to the active profile are part of what gets copied.
			if err := s.coord.Commit(); err != nil {
				return err
			}
			from = index
		}
		index, err := s.pool.Add(name, from)
		if err != nil {
			return err
		}
		prof, err := s.pool.At(index)
		if err != nil {
			return err
		}
		created = prof.Name
		return nil
	})
	return created, err
}

// RenameProfile renames a broadcast profile, carrying its instant switch
// designation, trigger and cache snapshot along.
func (s *Service) RenameProfile(oldName, newName string) (string, error) {
	var renamed string
	err := s.locked(func() error {
		index, err := s.pool.IndexByName(oldName)
		if err != nil {
			return err
		}
		if err := s.pool.Rename(index, newName); err != nil {
			return err
		}
		prof, err := s.pool.At(index)
		if err != nil {
			return err
		}
		renamed = prof.Name
		if renamed == oldName {
			return nil
		}

		s.cache.Rename(oldName, renamed)
		s.coord.ProfileRenamed(oldName, renamed)
		base := s.pool.Base()
		if base.InstantProfile == oldName {
			base.InstantProfile = renamed
		}
		s.log(slog.LevelInfo, "profile renamed", "from", oldName, "profile", renamed)
		return nil
	})
	return renamed, err
}

// DeleteProfile removes a broadcast profile with its file, trigger and instant
// switch designation. When it is in use the base profile becomes active.
func (s *Service) DeleteProfile(ctx context.Context, name string) error {
	return s.locked(func() error {
		index, err := s.pool.IndexByName(name)
		if err != nil {
			return err
		}
		if index == 0 {
			return pool.ErrBaseProfile
		}
		if err := s.coord.ProfileRemoving(ctx, index); err != nil {
			return err
		}
		if err := s.pool.Remove(index); err != nil {
			return err
		}

		s.cache.Forget(name)
		schedule := s.coord.Scheduler().Schedule()
		if err := schedule.Delete(name); err == nil && s.started {
			if err := s.coord.StartTriggers(ctx, true); err != nil {
				return err
			}
		} else if err != nil && !errors.Is(err, trigger.ErrUnknownProfile) {
			return err
		}
		base := s.pool.Base()
		if base.InstantProfile == name {
			base.InstantProfile = ""
		}
		s.log(slog.LevelInfo, "profile deleted", "profile", name)
		return nil
	})
}

// ResetProfile restores defaults. The base profile resets every section; a
// broadcast profile resets its own sections only.
func (s *Service) ResetProfile(ctx context.Context, name string) error {
	return s.locked(func() error {
		index, err := s.pool.IndexByName(name)
		if err != nil {
			return err
		}
		if err := s.coord.Commit(); err != nil {
			return err
		}
		prof, err := s.pool.At(index)
		if err != nil {
			return err
		}

		defaults := profile.Defaults()
		for _, section := range prof.Sections() {
			prof.Settings.CopySection(&defaults, section)
		}
		if err := s.coord.Reload(); err != nil {
			return err
		}
		s.log(slog.LevelInfo, "profile reset to defaults", "profile", prof.Name)
		s.out.Speak(ctx, s.msgs.ResetApplied)
		return nil
	})
}

// SetInstantProfile designates the instant switch profile.
func (s *Service) SetInstantProfile(name string) error {
	return s.locked(func() error {
		index, err := s.pool.IndexByName(name)
		if err != nil {
			return err
		}
		if index == 0 {
			return pool.ErrBaseProfile
		}
		s.pool.Base().InstantProfile = name
		return nil
	})
}

// ClearInstantProfile removes the designation and reports whether one existed.
func (s *Service) ClearInstantProfile() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := s.pool.Base()
	had := base.InstantProfile != ""
	base.InstantProfile = ""
	return had
}
