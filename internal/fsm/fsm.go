// Package fsm defines profile activation states and their legal transitions.
package fsm

import "fmt"

type State string

type Event string

const (
	StateNormal          State = "normal"
	StateInstantSwitched State = "instant_switched"
	StateTriggerActive   State = "trigger_active"
)

const (
	// EventInstant toggles the instant-switch profile.
	EventInstant Event = "instant"
	// EventTrigger activates a time-based profile.
	EventTrigger Event = "trigger"
	// EventTriggerEnd returns from a time-based profile.
	EventTriggerEnd Event = "trigger_end"
	// EventSelect is a manual profile selection; it clears any switched state.
	EventSelect Event = "select"
)

func Transition(current State, event Event) (State, error) {
	if event == EventSelect {
		return StateNormal, nil
	}

	switch current {
	case StateNormal:
		switch event {
		case EventInstant:
			return StateInstantSwitched, nil
		case EventTrigger:
			return StateTriggerActive, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateInstantSwitched:
		switch event {
		case EventInstant:
			return StateNormal, nil
		case EventTrigger:
			return StateTriggerActive, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateTriggerActive:
		switch event {
		case EventTrigger:
			return StateTriggerActive, nil
		case EventTriggerEnd:
			return StateNormal, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

// Switched reports whether s holds a previous profile to return to.
func (s State) Switched() bool {
	return s == StateInstantSwitched || s == StateTriggerActive
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
