package profile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// InstantProfileKey is the top-level base profile key naming the instant-switch target.
const InstantProfileKey = "InstantProfile"

// Profile is one loaded profile file.
type Profile struct {
	Name     string
	Path     string
	Base     bool
	Settings Settings

	// InstantProfile is only carried by the base profile.
	InstantProfile string

	// Legacy holds section-less keys from older files until the cache migrates them away.
	Legacy map[string]any

	// New marks a profile that has never been written.
	New bool
}

// New returns a default-valued profile that has not been written yet.
func New(name, path string, base bool) *Profile {
	return &Profile{Name: name, Path: path, Base: base, Settings: Defaults(), New: true}
}

// Sections returns the sections this profile carries.
func (p *Profile) Sections() []Section {
	return SectionsFor(p.Base)
}

// Store reads and writes profile files.
type Store struct {
	logger *slog.Logger
}

// NewStore builds a Store. A nil logger disables logging.
func NewStore(logger *slog.Logger) *Store {
	return &Store{logger: logger}
}

// Load parses the profile at path. Malformed content is repaired and reported through
// the returned Anomaly; only I/O failures are returned as errors. A missing base file
// is created with defaults.
func (s *Store) Load(path, name string, base bool) (*Profile, Anomaly, error) {
	p := New(name, path, base)

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if base {
			if err := s.Save(p); err != nil {
				return nil, 0, err
			}
			s.log(slog.LevelInfo, "base profile created", "profile", name, "path", path)
		}
		return p, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read profile %q: %w", path, err)
	}
	p.New = false

	var raw map[string]any
	if _, err := toml.Decode(string(content), &raw); err != nil {
		s.log(slog.LevelWarn, "profile unreadable, resetting file", "profile", name, "path", path, "error", err.Error())
		if werr := os.WriteFile(path, nil, 0o644); werr != nil {
			s.log(slog.LevelError, "profile reset write failed", "profile", name, "error", werr.Error())
		}
		return p, FileReset, nil
	}

	anomaly := p.apply(raw)
	if anomaly != 0 {
		s.log(slog.LevelWarn, "profile repaired", "profile", name, "anomaly", anomaly.String())
		if err := s.Save(p); err != nil {
			s.log(slog.LevelError, "profile repair write failed", "profile", name, "error", err.Error())
		}
	}
	return p, anomaly, nil
}

// apply validates a decoded document into p, defaulting every failing value.
// Absent keys take their default and count as valid, so a complete reset needs
// every field the profile's schema expects to fail.
func (p *Profile) apply(raw map[string]any) Anomaly {
	var expected, failed int
	var anomaly Anomaly
	if p.Base {
		expected++
	}

	for key, value := range raw {
		if _, isTable := value.(map[string]any); isTable {
			continue
		}
		if key == InstantProfileKey {
			if !p.Base {
				continue
			}
			name, ok := value.(string)
			if !ok {
				failed++
				continue
			}
			p.InstantProfile = name
			continue
		}
		if p.Legacy == nil {
			p.Legacy = make(map[string]any)
		}
		p.Legacy[key] = value
	}

	for _, section := range p.Sections() {
		fields := SectionFields(section)
		expected += len(fields)
		table, ok := raw[string(section)].(map[string]any)
		if !ok {
			if _, exists := raw[string(section)]; exists {
				failed += len(fields)
			}
			continue
		}
		for _, f := range fields {
			value, exists := table[f.Name()]
			if !exists {
				continue
			}
			spec := f.spec()
			coerced, err := spec.coerce(value)
			if err != nil {
				failed++
				continue
			}
			spec.set(&p.Settings, coerced)
		}
	}

	switch {
	case failed > 0 && failed >= expected:
		p.Settings = Defaults()
		p.InstantProfile = ""
		return CompleteReset
	case failed > 0:
		anomaly |= PartialReset
	}

	if err := checkColumnOrderShape(p.Settings.ColumnAnnouncement.ColumnOrder); err != nil {
		ColumnOrder.reset(&p.Settings)
		anomaly |= ColumnOrderReset
	}
	if err := checkMetadataShape(p.Settings.MetadataStreaming.MetadataEnabled); err != nil {
		MetadataEnabled.reset(&p.Settings)
		anomaly |= MetadataReset
	}
	return anomaly
}

// Save writes p unconditionally. Non-base profiles drop global sections and keys that
// equal their default.
func (s *Store) Save(p *Profile) error {
	content, err := Encode(p)
	if err != nil {
		return fmt.Errorf("encode profile %q: %w", p.Name, err)
	}
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	if err := os.WriteFile(p.Path, content, 0o644); err != nil {
		return fmt.Errorf("write profile %q: %w", p.Path, err)
	}
	p.New = false
	s.log(slog.LevelDebug, "profile saved", "profile", p.Name, "path", p.Path)
	return nil
}

// Remove deletes the profile file. A missing file is not an error.
func (s *Store) Remove(p *Profile) error {
	if err := os.Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove profile %q: %w", p.Path, err)
	}
	s.log(slog.LevelInfo, "profile removed", "profile", p.Name)
	return nil
}

// Rename moves the profile file to newPath and updates p.
func (s *Store) Rename(p *Profile, newName, newPath string) error {
	if !p.New {
		if err := os.Rename(p.Path, newPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("rename profile %q: %w", p.Path, err)
		}
	}
	s.log(slog.LevelInfo, "profile renamed", "from", p.Name, "to", newName)
	p.Name = newName
	p.Path = newPath
	return nil
}

// Encode renders p as CRLF-terminated TOML.
func Encode(p *Profile) ([]byte, error) {
	doc := make(map[string]any)
	for key, value := range p.Legacy {
		doc[key] = value
	}
	if p.Base && p.InstantProfile != "" {
		doc[InstantProfileKey] = p.InstantProfile
	}

	for _, section := range p.Sections() {
		table := make(map[string]any)
		for _, f := range SectionFields(section) {
			value := p.Settings.Get(f)
			if !p.Base && valuesEqual(value, f.spec().def) {
				continue
			}
			table[f.Name()] = value
		}
		if len(table) > 0 {
			doc[string(section)] = table
		}
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return crlf(buf.Bytes()), nil
}

func crlf(in []byte) []byte {
	normalized := bytes.ReplaceAll(in, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(normalized, []byte("\n"), []byte("\r\n"))
}

func (s *Store) log(level slog.Level, msg string, args ...any) {
	if s == nil || s.logger == nil {
		return
	}
	s.logger.Log(context.Background(), level, msg, args...)
}
