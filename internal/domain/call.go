package domain

import "fmt"

// CallState is the position of a phone call in the voice dialogue.
type CallState int

const (
	CallStarted CallState = iota
	CallAwaitingSpeech
	CallProcessingTurn
	CallEnded
)

func (s CallState) String() string {
	switch s {
	case CallStarted:
		return "started"
	case CallAwaitingSpeech:
		return "awaiting_speech"
	case CallProcessingTurn:
		return "processing_turn"
	case CallEnded:
		return "ended"
	default:
		return fmt.Sprintf("call_state(%d)", int(s))
	}
}

// CallEvent is a webhook-derived input to the call state machine.
type CallEvent int

const (
	EventCallStarted CallEvent = iota
	EventSpeechEmpty
	EventSpeechReceived
	EventTurnFinished
	EventCallTerminated
)

func (e CallEvent) String() string {
	switch e {
	case EventCallStarted:
		return "call_started"
	case EventSpeechEmpty:
		return "speech_empty"
	case EventSpeechReceived:
		return "speech_received"
	case EventTurnFinished:
		return "turn_finished"
	case EventCallTerminated:
		return "call_terminated"
	default:
		return fmt.Sprintf("call_event(%d)", int(e))
	}
}

// NextCallState applies ev to from. Providers deliver callbacks at least
// once, so repeated events are accepted: a duplicate start or empty speech
// result leaves the call where it is, and a duplicate speech result while a
// turn is in flight is processed as another turn.
func NextCallState(from CallState, ev CallEvent) (CallState, error) {
	if ev == EventCallTerminated {
		return CallEnded, nil
	}
	if from == CallEnded {
		return from, fmt.Errorf("%w: %s after %s", ErrInvalidTransition, ev, from)
	}

	switch ev {
	case EventCallStarted:
		if from == CallStarted {
			return CallAwaitingSpeech, nil
		}
		return from, nil
	case EventSpeechEmpty:
		if from == CallProcessingTurn {
			return from, nil
		}
		return CallAwaitingSpeech, nil
	case EventSpeechReceived:
		return CallProcessingTurn, nil
	case EventTurnFinished:
		if from == CallStarted {
			return from, fmt.Errorf("%w: %s before any speech", ErrInvalidTransition, ev)
		}
		return CallAwaitingSpeech, nil
	}
	return from, fmt.Errorf("%w: unknown event %s", ErrInvalidTransition, ev)
}

// TerminalCallStatus reports whether a provider call status ends the call.
func TerminalCallStatus(status string) bool {
	switch status {
	case "completed", "failed", "busy", "no-answer":
		return true
	}
	return false
}
