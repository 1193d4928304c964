package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionHappyPath(t *testing.T) {
	s := StateIdle

	next, err := Transition(s, EventConnect)
	require.NoError(t, err)
	require.Equal(t, StateStreaming, next)

	next, err = Transition(next, EventDisconnect)
	require.NoError(t, err)
	require.Equal(t, StateIdle, next)
}

func TestTransitionMatrixInvalidTransitions(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		event   Event
		want    State
		wantErr bool
	}{
		{name: "idle connect valid", state: StateIdle, event: EventConnect, want: StateStreaming},
		{name: "idle disconnect invalid", state: StateIdle, event: EventDisconnect, want: StateIdle, wantErr: true},
		{name: "streaming connect invalid", state: StateStreaming, event: EventConnect, want: StateStreaming, wantErr: true},
		{name: "streaming disconnect valid", state: StateStreaming, event: EventDisconnect, want: StateIdle},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.state, tc.event)
			require.Equal(t, tc.want, next)
			if tc.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), "invalid transition")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTransitionUnknownState(t *testing.T) {
	next, err := Transition(State("mystery"), EventConnect)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown state")
	require.Equal(t, State("mystery"), next)
}

func TestEventForAndChanges(t *testing.T) {
	require.Equal(t, EventDisconnect, EventFor(0))
	require.Equal(t, EventConnect, EventFor(1))
	require.Equal(t, EventConnect, EventFor(3))

	require.True(t, Changes(StateIdle, EventConnect))
	require.False(t, Changes(StateIdle, EventDisconnect))
	require.False(t, Changes(StateStreaming, EventConnect))
	require.True(t, Changes(StateStreaming, EventDisconnect))
}
