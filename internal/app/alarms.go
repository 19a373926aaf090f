package app

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rbright/splconfig/internal/profile"
	"github.com/rbright/splconfig/internal/service"
)

// runAlarmForm asks for each alarm setting, starting from current, and returns
// the values the operator confirmed.
func runAlarmForm(current profile.Settings, in io.Reader, out io.Writer) (map[profile.Field]any, error) {
	bools := map[profile.Field]*bool{}
	texts := map[profile.Field]*string{}
	fields := make([]huh.Field, 0, len(service.AlarmFields))

	for _, f := range service.AlarmFields {
		switch f.Kind() {
		case profile.KindBool:
			value, _ := current.Get(f).(bool)
			bools[f] = &value
			fields = append(fields, huh.NewConfirm().
				Title(f.Name()).
				Affirmative("On").
				Negative("Off").
				Value(bools[f]))
		case profile.KindInt:
			n, _ := current.Get(f).(int)
			text := strconv.Itoa(n)
			texts[f] = &text
			lo, hi := f.Bounds()
			fields = append(fields, huh.NewInput().
				Title(f.Name()).
				Description(fmt.Sprintf("%d to %d", lo, hi)).
				Value(texts[f]).
				Validate(boundedInt(lo, hi)))
		}
	}

	form := huh.NewForm(huh.NewGroup(fields...).Title("Alarms"))
	if in != nil {
		form = form.WithInput(in)
	}
	if out != nil {
		form = form.WithOutput(out)
	}
	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("alarm editing cancelled: %w", err)
	}

	changes := make(map[profile.Field]any, len(service.AlarmFields))
	for f, v := range bools {
		changes[f] = *v
	}
	for f, v := range texts {
		n, err := strconv.Atoi(strings.TrimSpace(*v))
		if err != nil {
			return nil, err
		}
		changes[f] = n
	}
	return changes, nil
}

func boundedInt(lo, hi int) func(string) error {
	return func(raw string) error {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("enter a whole number")
		}
		if n < lo || n > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}
