package service

import (
	"context"
	"strings"
)

// Comment returns the comment for a track file.
func (s *Service) Comment(filename string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.comments.Get(filename)
}

// SetComment stores a comment for a track file; empty text removes it.
func (s *Service) SetComment(filename, text string) error {
	return s.locked(func() error { return s.comments.Set(filename, text) })
}

// ClearComment removes a track comment and reports whether one existed.
func (s *Service) ClearComment(filename string) (bool, error) {
	var removed bool
	err := s.locked(func() error {
		removed = s.comments.Delete(filename)
		return nil
	})
	return removed, err
}

// FocusedComment resolves the focused track's file name and returns its comment.
func (s *Service) FocusedComment(ctx context.Context) (filename, text string, ok bool) {
	filename, found := s.host.FocusedProperty(ctx, FocusedFileProperty)
	filename = strings.TrimSpace(filename)
	if !found || filename == "" {
		return "", "", false
	}
	text, ok = s.Comment(filename)
	return filename, text, ok
}
