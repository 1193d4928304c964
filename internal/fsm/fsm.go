package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle      State = "Idle"
	StateStreaming State = "Streaming"
)

const (
	// EventConnect fires when the observer reports at least one established peer.
	EventConnect Event = "connect"
	// EventDisconnect fires when the observer reports no established peer.
	EventDisconnect Event = "disconnect"
)

func Transition(current State, event Event) (State, error) {
	switch current {
	case StateIdle:
		switch event {
		case EventConnect:
			return StateStreaming, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateStreaming:
		switch event {
		case EventDisconnect:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

// EventFor maps an observed connection count to the event it represents.
func EventFor(connections int) Event {
	if connections > 0 {
		return EventConnect
	}
	return EventDisconnect
}

// Changes reports whether event moves current to a different state.
func Changes(current State, event Event) bool {
	next, err := Transition(current, event)
	return err == nil && next != current
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
