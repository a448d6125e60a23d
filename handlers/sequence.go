package handlers

import (
	"github.com/keyplexfw/keyplex/event"
	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
)

var backspaceCode = keycode.HID(keycode.UsageBackspace)

// Sequence implements spec §4.9's burst form: the trigger press emits a
// run of backspaces followed by a payload string — a correction
// macro's shape. The payload is handed to a SendString injector rather
// than pushed all at once, so a long payload doesn't spike queue
// occupancy (the same chunking used for any other SendString caller).
type Sequence struct {
	indexed
	named

	trigger    keycode.KeyCode
	backspaces int
	payload    string
	sender     *SendString
}

// NewSequence builds a Sequence handler. sender must not be nil; wire
// it to a SendString handler placed later in the pipeline, so the first
// chunk of the payload is drained in the same pass as the trigger.
func NewSequence(name string, trigger keycode.KeyCode, backspaces int, payload string, sender *SendString) *Sequence {
	return &Sequence{
		named:      named{name: name},
		trigger:    trigger,
		backspaces: backspaces,
		payload:    payload,
		sender:     sender,
	}
}

func (s *Sequence) ProcessEvents(q *event.Queue, out output.Port, clock *event.Clock) error {
	for _, ref := range q.Pending(s.index) {
		ev, ok := q.Event(ref)
		if !ok {
			continue
		}
		if ev.Code != s.trigger {
			q.Mark(ref, s.index, event.OutcomeHandle)
			continue
		}
		q.Mark(ref, s.index, event.OutcomeDelete)
		if ev.Kind != event.KeyPress {
			continue
		}
		for i := 0; i < s.backspaces; i++ {
			_ = q.Push(event.NewKeyPress(backspaceCode, 0))
			_ = q.Push(event.NewKeyRelease(backspaceCode, 0))
		}
		if s.sender != nil {
			s.sender.Enqueue(s.payload)
		}
	}
	return nil
}
