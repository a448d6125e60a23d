package handlers

import (
	"github.com/keyplexfw/keyplex/event"
	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
)

type spaceCadetState uint8

const (
	scIdle spaceCadetState = iota
	scPending
	scHeld
)

// SpaceCadet implements spec §4.7: tapped alone, the trigger emits
// tapCode; held, or interrupted by another key before the tap timeout,
// it commits to holdCode as a modifier instead. Once committed there is
// no replay of the tap — a key that arrives first always wins the
// commit decision.
type SpaceCadet struct {
	indexed
	named

	trigger       keycode.KeyCode
	tapCode       keycode.KeyCode
	holdCode      keycode.KeyCode
	tapTimeoutMs  uint64

	state    spaceCadetState
	deadline uint64
}

// NewSpaceCadet builds a SpaceCadet handler.
func NewSpaceCadet(name string, trigger, tapCode, holdCode keycode.KeyCode, tapTimeoutMs uint64) *SpaceCadet {
	return &SpaceCadet{
		named:        named{name: name},
		trigger:      trigger,
		tapCode:      tapCode,
		holdCode:     holdCode,
		tapTimeoutMs: tapTimeoutMs,
	}
}

func (s *SpaceCadet) ProcessEvents(q *event.Queue, out output.Port, clock *event.Clock) error {
	for _, ref := range q.Pending(s.index) {
		ev, ok := q.Event(ref)
		if !ok {
			continue
		}
		switch s.state {
		case scIdle:
			s.handleIdle(q, clock, ref, ev)
		case scPending:
			s.handlePending(q, clock, ref, ev)
		case scHeld:
			s.handleHeld(q, ref, ev)
		}
	}
	return nil
}

func (s *SpaceCadet) handleIdle(q *event.Queue, clock *event.Clock, ref event.Ref, ev event.Event) {
	if ev.Kind == event.KeyPress && ev.Code == s.trigger {
		q.Mark(ref, s.index, event.OutcomeDelete)
		s.state = scPending
		s.deadline = clock.Now() + s.tapTimeoutMs
		return
	}
	q.Mark(ref, s.index, event.OutcomeHandle)
}

func (s *SpaceCadet) handlePending(q *event.Queue, clock *event.Clock, ref event.Ref, ev event.Event) {
	switch {
	case ev.Kind == event.KeyRelease && ev.Code == s.trigger:
		q.Mark(ref, s.index, event.OutcomeDelete)
		if clock.Now() <= s.deadline {
			_ = q.Push(event.NewKeyPress(s.tapCode, 0))
			_ = q.Push(event.NewKeyRelease(s.tapCode, 0))
		} else {
			_ = q.Push(event.NewKeyPress(s.holdCode, 0))
			_ = q.Push(event.NewKeyRelease(s.holdCode, 0))
		}
		s.state = scIdle
	case ev.Kind == event.TimeOut:
		q.Mark(ref, s.index, event.OutcomeHandle)
		if clock.Now() > s.deadline {
			_ = q.Push(event.NewKeyPress(s.holdCode, 0))
			s.state = scHeld
		}
	case ev.Kind == event.KeyPress:
		// Another key arrived first: commit to the modifier now so it
		// covers this key, and let the key itself through unmodified.
		q.Mark(ref, s.index, event.OutcomeHandle)
		_ = q.Push(event.NewKeyPress(s.holdCode, 0))
		s.state = scHeld
	default:
		q.Mark(ref, s.index, event.OutcomeHandle)
	}
}

func (s *SpaceCadet) handleHeld(q *event.Queue, ref event.Ref, ev event.Event) {
	if ev.Kind == event.KeyRelease && ev.Code == s.trigger {
		q.Mark(ref, s.index, event.OutcomeDelete)
		_ = q.Push(event.NewKeyRelease(s.holdCode, 0))
		s.state = scIdle
		return
	}
	q.Mark(ref, s.index, event.OutcomeHandle)
}
