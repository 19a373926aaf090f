package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/rbright/splconfig/internal/profile"
	"github.com/rbright/splconfig/internal/session"
	"github.com/rbright/splconfig/internal/view"
)

// Setting reads a value from the active view.
func (s *Service) Setting(f profile.Field) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coord.View().Settings.Get(f)
}

// Settings returns a copy of the active view.
func (s *Service) Settings() (string, profile.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.coord.View()
	return v.ActiveName, v.Settings.Clone()
}

// SetSetting updates one field in the active view and writes it back to the
// profile that owns it.
func (s *Service) SetSetting(f profile.Field, value any) error {
	return s.locked(func() error { return s.setField(f, value) })
}

// SetAlarm updates one alarm setting. Alarms are only changed while the studio
// is running.
func (s *Service) SetAlarm(ctx context.Context, f profile.Field, value any) error {
	if !slices.Contains(AlarmFields, f) {
		return fmt.Errorf("%w: %s", ErrNotAlarm, f)
	}
	if !s.host.StudioRunning(ctx) {
		s.out.Speak(ctx, s.msgs.StudioNotRunning)
		return ErrStudioNotRunning
	}
	return s.locked(func() error { return s.setField(f, value) })
}

// EditAlarms runs edit while holding the alarm dialog. Values edit returns are
// applied field by field; a failed value leaves the others applied.
func (s *Service) EditAlarms(ctx context.Context, edit func(current profile.Settings) (map[profile.Field]any, error)) error {
	if !s.host.StudioRunning(ctx) {
		s.out.Speak(ctx, s.msgs.StudioNotRunning)
		return ErrStudioNotRunning
	}

	var dialog *session.Dialog
	var current profile.Settings
	err := s.locked(func() error {
		d, err := s.coord.OpenDialog(ctx, session.DialogAlarm)
		if err != nil {
			return err
		}
		dialog = d
		current = s.coord.View().Settings.Clone()
		return nil
	})
	if err != nil {
		return err
	}

	changes, editErr := edit(current)

	return s.locked(func() error {
		defer func() {
			if err := s.coord.CloseDialog(ctx, dialog); err != nil {
				s.log(slog.LevelError, "alarm dialog close failed", "error", err.Error())
			}
		}()
		if editErr != nil {
			return editErr
		}
		for _, f := range AlarmFields {
			value, ok := changes[f]
			if !ok {
				continue
			}
			if err := s.setField(f, value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) setField(f profile.Field, value any) error {
	v := s.coord.View()
	if err := v.Settings.Set(f, value); err != nil {
		return err
	}
	if err := v.ApplyBack(s.pool, v.ActiveIndex, view.Field(f)); err != nil {
		return err
	}
	s.log(slog.LevelDebug, "setting changed", "field", f.String(), "profile", v.ActiveName)
	return nil
}
