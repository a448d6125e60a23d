// Package event defines the physical/synthesized event stream that
// flows through the handler pipeline, and the bounded queue that
// carries it along with each event's per-handler consumption status.
package event

import "github.com/keyplexfw/keyplex/keycode"

// Kind tags an Event's variant.
type Kind uint8

const (
	KeyPress Kind = iota
	KeyRelease
	TimeOut
)

func (k Kind) String() string {
	switch k {
	case KeyPress:
		return "KeyPress"
	case KeyRelease:
		return "KeyRelease"
	case TimeOut:
		return "TimeOut"
	default:
		return "Unknown"
	}
}

// Event is a single queued occurrence: a key press, a key release, or
// the passage of time. Code is meaningless for TimeOut.
type Event struct {
	Kind        Kind
	Code        keycode.KeyCode
	MsSinceLast uint16
}

// NewKeyPress builds a KeyPress event.
func NewKeyPress(code keycode.KeyCode, msSinceLast uint16) Event {
	return Event{Kind: KeyPress, Code: code, MsSinceLast: msSinceLast}
}

// NewKeyRelease builds a KeyRelease event.
func NewKeyRelease(code keycode.KeyCode, msSinceLast uint16) Event {
	return Event{Kind: KeyRelease, Code: code, MsSinceLast: msSinceLast}
}

// NewTimeOut builds a TimeOut event.
func NewTimeOut(msSinceLast uint16) Event {
	return Event{Kind: TimeOut, MsSinceLast: msSinceLast}
}

// Status records whether a given handler has observed an event yet.
type Status uint8

const (
	Ignored Status = iota
	Handled
)

// Outcome is what a handler decides to do with an event it has just
// inspected.
type Outcome uint8

const (
	// OutcomeIgnore leaves the event for later handlers, unmarked.
	OutcomeIgnore Outcome = iota
	// OutcomeHandle marks the event Handled for this handler only;
	// later handlers in the same pass may still observe it.
	OutcomeHandle
	// OutcomeDelete removes the event outright, as if it never
	// arrived (used when a handler fully absorbs it, e.g. a consumed
	// trigger press).
	OutcomeDelete
)
