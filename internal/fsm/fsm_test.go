package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionInstantToggle(t *testing.T) {
	next, err := Transition(StateNormal, EventInstant)
	require.NoError(t, err)
	require.Equal(t, StateInstantSwitched, next)
	require.True(t, next.Switched())

	next, err = Transition(next, EventInstant)
	require.NoError(t, err)
	require.Equal(t, StateNormal, next)
	require.False(t, next.Switched())
}

func TestTransitionTriggerRoundTrip(t *testing.T) {
	next, err := Transition(StateNormal, EventTrigger)
	require.NoError(t, err)
	require.Equal(t, StateTriggerActive, next)

	next, err = Transition(next, EventTriggerEnd)
	require.NoError(t, err)
	require.Equal(t, StateNormal, next)
}

func TestTransitionSelectFromAnyStateGoesNormal(t *testing.T) {
	states := []State{StateNormal, StateInstantSwitched, StateTriggerActive}
	for _, state := range states {
		next, err := Transition(state, EventSelect)
		require.NoError(t, err)
		require.Equal(t, StateNormal, next)
	}
}

func TestTransitionMatrixInvalidTransitions(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		event   Event
		want    State
		wantErr bool
	}{
		{name: "normal trigger end invalid", state: StateNormal, event: EventTriggerEnd, want: StateNormal, wantErr: true},
		{name: "instant trigger end invalid", state: StateInstantSwitched, event: EventTriggerEnd, want: StateInstantSwitched, wantErr: true},
		{name: "instant trigger valid", state: StateInstantSwitched, event: EventTrigger, want: StateTriggerActive},
		{name: "trigger instant invalid", state: StateTriggerActive, event: EventInstant, want: StateTriggerActive, wantErr: true},
		{name: "trigger retrigger valid", state: StateTriggerActive, event: EventTrigger, want: StateTriggerActive},
		{name: "unknown state", state: State("bogus"), event: EventInstant, want: State("bogus"), wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.state, tc.event)
			require.Equal(t, tc.want, next)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
