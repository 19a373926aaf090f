// Package comments keeps free-text track annotations independent of profiles.
package comments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrInvalidText rejects comments the store cannot encode.
var ErrInvalidText = errors.New("comment is not valid UTF-8")

var trackNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("splconfig:track"))

// TrackID derives a stable identifier from a track's file name. Names compare
// case-insensitively and with either slash style.
func TrackID(filename string) string {
	normalized := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(filename, `\`, "/")))
	return uuid.NewSHA1(trackNamespace, []byte(normalized)).String()
}

// Map is the track comment store.
type Map struct {
	path     string
	comments map[string]string
	dirty    bool
	logger   *slog.Logger
}

// Load reads the comment blob at path. A missing file yields an empty map; an
// unreadable blob is logged and treated as empty.
func Load(path string, logger *slog.Logger) (*Map, error) {
	m := &Map{path: path, comments: make(map[string]string), logger: logger}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read comments %q: %w", path, err)
	}

	var blob structpb.Struct
	if err := proto.Unmarshal(content, &blob); err != nil {
		m.log(slog.LevelWarn, "comment store unreadable, starting empty", "path", path, "error", err.Error())
		return m, nil
	}
	for id, value := range blob.GetFields() {
		if text, ok := value.GetKind().(*structpb.Value_StringValue); ok {
			m.comments[id] = text.StringValue
		}
	}
	return m, nil
}

// Get returns the comment for a track file.
func (m *Map) Get(filename string) (string, bool) {
	text, ok := m.comments[TrackID(filename)]
	return text, ok
}

// Set stores a comment. An empty comment deletes the entry.
func (m *Map) Set(filename, text string) error {
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: %q", ErrInvalidText, filename)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		m.Delete(filename)
		return nil
	}
	id := TrackID(filename)
	if m.comments[id] == text {
		return nil
	}
	m.comments[id] = text
	m.dirty = true
	return nil
}

// Delete removes a comment and reports whether one existed.
func (m *Map) Delete(filename string) bool {
	id := TrackID(filename)
	if _, ok := m.comments[id]; !ok {
		return false
	}
	delete(m.comments, id)
	m.dirty = true
	return true
}

// Len returns the number of stored comments.
func (m *Map) Len() int { return len(m.comments) }

// IDs returns stored track identifiers in sorted order.
func (m *Map) IDs() []string {
	return slices.Sorted(maps.Keys(m.comments))
}

// Flush writes the map if it changed since load.
func (m *Map) Flush() error {
	if !m.dirty {
		return nil
	}

	fields := make(map[string]any, len(m.comments))
	for id, text := range m.comments {
		fields[id] = text
	}
	blob, err := structpb.NewStruct(fields)
	if err != nil {
		return fmt.Errorf("encode comments: %w", err)
	}
	content, err := proto.MarshalOptions{Deterministic: true}.Marshal(blob)
	if err != nil {
		return fmt.Errorf("encode comments: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create comments dir: %w", err)
	}
	if err := os.WriteFile(m.path, content, 0o644); err != nil {
		return fmt.Errorf("write comments %q: %w", m.path, err)
	}
	m.dirty = false
	m.log(slog.LevelDebug, "comment store saved", "path", m.path, "count", len(m.comments))
	return nil
}

func (m *Map) log(level slog.Level, msg string, args ...any) {
	if m.logger == nil {
		return
	}
	m.logger.Log(context.Background(), level, msg, args...)
}
