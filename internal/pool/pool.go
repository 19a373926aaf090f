// Package pool owns the ordered set of loaded profiles. Index 0 is always the base profile.
package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/rbright/splconfig/internal/profile"
)

var (
	// ErrNotFound means no profile carries the requested name or index.
	ErrNotFound = errors.New("profile not found")
	// ErrExists means a profile with the same name (ignoring case) is already loaded.
	ErrExists = errors.New("profile already exists")
	// ErrInvalidName means the name is empty after filtering or reserved.
	ErrInvalidName = errors.New("invalid profile name")
	// ErrBaseProfile means the operation is not allowed on the base profile.
	ErrBaseProfile = errors.New("operation not allowed on the base profile")
)

// Pool is the ordered profile collection.
type Pool struct {
	store    *profile.Store
	dir      string
	profiles []*profile.Profile
	logger   *slog.Logger
}

// InitializeAll loads the base profile, then every profile file in profilesDir in
// directory order. Anomalies are accumulated into the returned report.
func InitializeAll(store *profile.Store, basePath, profilesDir string, logger *slog.Logger) (*Pool, *profile.Report, error) {
	p := &Pool{store: store, dir: profilesDir, logger: logger}
	report := &profile.Report{}

	base, anomaly, err := store.Load(basePath, profile.BaseName, true)
	if err != nil {
		return nil, nil, err
	}
	report.Add(profile.BaseName, anomaly)
	p.profiles = append(p.profiles, base)

	entries, err := os.ReadDir(profilesDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("read profiles dir %q: %w", profilesDir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := profile.NameFromFile(entry.Name())
		if !ok {
			continue
		}
		if p.nameTaken(name) {
			p.log(slog.LevelWarn, "duplicate profile skipped", "profile", name, "file", entry.Name())
			continue
		}

		loaded, anomaly, err := store.Load(profile.PathIn(profilesDir, name), name, false)
		if err != nil {
			p.log(slog.LevelError, "profile load failed", "profile", name, "error", err.Error())
			continue
		}
		report.Add(name, anomaly)
		p.profiles = append(p.profiles, loaded)
	}

	p.log(slog.LevelInfo, "profiles loaded", "count", len(p.profiles), "issues", len(report.Entries()))
	return p, report, nil
}

// Store returns the store backing the pool.
func (p *Pool) Store() *profile.Store { return p.store }

// Dir returns the broadcast profile directory.
func (p *Pool) Dir() string { return p.dir }

// Len returns the number of loaded profiles, base included.
func (p *Pool) Len() int { return len(p.profiles) }

// Base returns the base profile.
func (p *Pool) Base() *profile.Profile { return p.profiles[0] }

// At returns the profile at index.
func (p *Pool) At(index int) (*profile.Profile, error) {
	if index < 0 || index >= len(p.profiles) {
		return nil, fmt.Errorf("%w: index %d", ErrNotFound, index)
	}
	return p.profiles[index], nil
}

// Profiles returns the loaded profiles in pool order.
func (p *Pool) Profiles() []*profile.Profile {
	return slices.Clone(p.profiles)
}

// Names returns profile names in pool order.
func (p *Pool) Names() []string {
	names := make([]string, 0, len(p.profiles))
	for _, prof := range p.profiles {
		names = append(names, prof.Name)
	}
	return names
}

// IndexByName resolves an exact profile name. The base display name always maps to 0.
func (p *Pool) IndexByName(name string) (int, error) {
	if name == profile.BaseName {
		return 0, nil
	}
	for i, prof := range p.profiles {
		if i > 0 && prof.Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Add creates a new unsaved broadcast profile. When copyFrom is a valid index the
// mutable sections are copied from that profile; otherwise defaults are used.
func (p *Pool) Add(name string, copyFrom int) (int, error) {
	name, err := p.checkName(name)
	if err != nil {
		return -1, err
	}

	created := profile.New(name, profile.PathIn(p.dir, name), false)
	if copyFrom >= 0 {
		src, err := p.At(copyFrom)
		if err != nil {
			return -1, err
		}
		for _, section := range profile.MutableSections {
			created.Settings.CopySection(&src.Settings, section)
		}
	}

	p.profiles = append(p.profiles, created)
	p.log(slog.LevelInfo, "profile added", "profile", name, "copy_from", copyFrom)
	return len(p.profiles) - 1, nil
}

// Rename renames the broadcast profile at index and moves its file.
func (p *Pool) Rename(index int, newName string) error {
	prof, err := p.broadcast(index)
	if err != nil {
		return err
	}
	name := profile.SanitizeName(newName)
	switch {
	case name == prof.Name:
		return nil
	case !strings.EqualFold(name, prof.Name):
		if name, err = p.checkName(newName); err != nil {
			return err
		}
	}
	return p.store.Rename(prof, name, profile.PathIn(p.dir, name))
}

// Remove deletes the broadcast profile at index and its file.
func (p *Pool) Remove(index int) error {
	prof, err := p.broadcast(index)
	if err != nil {
		return err
	}
	if err := p.store.Remove(prof); err != nil {
		return err
	}
	p.profiles = slices.Delete(p.profiles, index, index+1)
	return nil
}

// Sorted reports whether broadcast profiles are in case-insensitive alphabetical order.
func (p *Pool) Sorted() bool {
	return slices.IsSortedFunc(p.profiles[1:], func(a, b *profile.Profile) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
}

func (p *Pool) broadcast(index int) (*profile.Profile, error) {
	if index == 0 {
		return nil, ErrBaseProfile
	}
	return p.At(index)
}

func (p *Pool) checkName(raw string) (string, error) {
	name := profile.SanitizeName(raw)
	if name == "" || strings.EqualFold(name, profile.BaseName) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, raw)
	}
	if p.nameTaken(name) {
		return "", fmt.Errorf("%w: %q", ErrExists, name)
	}
	return name, nil
}

func (p *Pool) nameTaken(name string) bool {
	if strings.EqualFold(name, profile.BaseName) {
		return true
	}
	for i, prof := range p.profiles {
		if i > 0 && strings.EqualFold(prof.Name, name) {
			return true
		}
	}
	return false
}

func (p *Pool) log(level slog.Level, msg string, args ...any) {
	if p.logger == nil {
		return
	}
	p.logger.Log(context.Background(), level, msg, args...)
}
