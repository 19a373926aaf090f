package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/hashstructure/v2"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Store persists a Schedule as a protobuf Struct blob (profile name to a list of
// seven numbers). Writes are skipped while the schedule matches what was loaded.
type Store struct {
	path     string
	location *time.Location
	logger   *slog.Logger
	loaded   uint64
}

// NewStore builds a Store for path. Records are interpreted in loc (time.Local when nil).
func NewStore(path string, loc *time.Location, logger *slog.Logger) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{path: path, location: loc, logger: logger}
}

// Load reads the schedule. A missing file yields an empty schedule; an unreadable
// blob is logged and treated as empty. Malformed entries are dropped.
func (s *Store) Load() (*Schedule, error) {
	schedule := NewSchedule()

	content, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.loaded = fingerprint(schedule)
		return schedule, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read triggers %q: %w", s.path, err)
	}

	var blob structpb.Struct
	if err := proto.Unmarshal(content, &blob); err != nil {
		s.log(slog.LevelWarn, "trigger store unreadable, starting empty", "path", s.path, "error", err.Error())
		s.loaded = fingerprint(schedule)
		return schedule, nil
	}

	for name, value := range blob.GetFields() {
		list := value.GetListValue()
		if list == nil {
			s.log(slog.LevelWarn, "trigger entry dropped", "profile", name, "error", "not a list")
			continue
		}
		values := make([]float64, 0, len(list.GetValues()))
		for _, v := range list.GetValues() {
			values = append(values, v.GetNumberValue())
		}
		r, err := RecordFromValues(values, s.location)
		if err != nil {
			s.log(slog.LevelWarn, "trigger entry dropped", "profile", name, "error", err.Error())
			continue
		}
		schedule.records[name] = r
	}

	s.loaded = fingerprint(schedule)
	return schedule, nil
}

// Save writes the schedule unless it is unchanged since Load or the last Save.
// It reports whether a write happened.
func (s *Store) Save(schedule *Schedule) (bool, error) {
	fp := fingerprint(schedule)
	if fp != 0 && fp == s.loaded {
		s.log(slog.LevelDebug, "trigger store unchanged, skipping write", "path", s.path)
		return false, nil
	}

	fields := make(map[string]any, schedule.Len())
	for _, name := range schedule.Names() {
		values := schedule.records[name].Values()
		list := make([]any, len(values))
		for i, v := range values {
			list[i] = v
		}
		fields[name] = list
	}
	blob, err := structpb.NewStruct(fields)
	if err != nil {
		return false, fmt.Errorf("encode triggers: %w", err)
	}
	content, err := proto.MarshalOptions{Deterministic: true}.Marshal(blob)
	if err != nil {
		return false, fmt.Errorf("encode triggers: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return false, fmt.Errorf("create trigger dir: %w", err)
	}
	if err := os.WriteFile(s.path, content, 0o644); err != nil {
		return false, fmt.Errorf("write triggers %q: %w", s.path, err)
	}

	s.loaded = fp
	s.log(slog.LevelDebug, "trigger store saved", "path", s.path, "count", schedule.Len())
	return true, nil
}

// fingerprint hashes the persisted form. Zero means hashing failed.
func fingerprint(schedule *Schedule) uint64 {
	persisted := make(map[string][]float64, schedule.Len())
	for name, r := range schedule.records {
		persisted[name] = r.Values()
	}
	hash, err := hashstructure.Hash(persisted, hashstructure.FormatV2, nil)
	if err != nil {
		return 0
	}
	return hash
}

func (s *Store) log(level slog.Level, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Log(context.Background(), level, msg, args...)
}
