package handlers

import (
	"github.com/keyplexfw/keyplex/event"
	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
)

type tapLongTapState uint8

const (
	tltIdle tapLongTapState = iota
	tltPending
	tltLongFired
)

// TapAndLongTap implements spec §4.8: releasing the trigger before
// timeoutMs emits tapCode as a press/release pair; still being held at
// timeoutMs instead emits longCode as its own press/release pair, at
// the moment the threshold is crossed — both branches are discrete
// actions, not a held modifier, matching spec.md §4.8's distinction
// from SpaceCadet. The remaining physical hold is then just absorbed
// until the trigger is actually released.
type TapAndLongTap struct {
	indexed
	named

	trigger   keycode.KeyCode
	tapCode   keycode.KeyCode
	longCode  keycode.KeyCode
	timeoutMs uint64

	state    tapLongTapState
	deadline uint64
}

// NewTapAndLongTap builds a TapAndLongTap handler.
func NewTapAndLongTap(name string, trigger, tapCode, longCode keycode.KeyCode, timeoutMs uint64) *TapAndLongTap {
	return &TapAndLongTap{
		named:     named{name: name},
		trigger:   trigger,
		tapCode:   tapCode,
		longCode:  longCode,
		timeoutMs: timeoutMs,
	}
}

func (t *TapAndLongTap) ProcessEvents(q *event.Queue, out output.Port, clock *event.Clock) error {
	for _, ref := range q.Pending(t.index) {
		ev, ok := q.Event(ref)
		if !ok {
			continue
		}
		switch t.state {
		case tltIdle:
			t.handleIdle(q, clock, ref, ev)
		case tltPending:
			t.handlePending(q, clock, ref, ev)
		case tltLongFired:
			t.handleLongFired(q, ref, ev)
		}
	}
	return nil
}

func (t *TapAndLongTap) handleIdle(q *event.Queue, clock *event.Clock, ref event.Ref, ev event.Event) {
	if ev.Kind == event.KeyPress && ev.Code == t.trigger {
		q.Mark(ref, t.index, event.OutcomeDelete)
		t.state = tltPending
		t.deadline = clock.Now() + t.timeoutMs
		return
	}
	q.Mark(ref, t.index, event.OutcomeHandle)
}

func (t *TapAndLongTap) handlePending(q *event.Queue, clock *event.Clock, ref event.Ref, ev event.Event) {
	switch {
	case ev.Kind == event.KeyRelease && ev.Code == t.trigger:
		q.Mark(ref, t.index, event.OutcomeDelete)
		code := t.tapCode
		if clock.Now() > t.deadline {
			code = t.longCode
		}
		_ = q.Push(event.NewKeyPress(code, 0))
		_ = q.Push(event.NewKeyRelease(code, 0))
		t.state = tltIdle
	case ev.Kind == event.TimeOut:
		q.Mark(ref, t.index, event.OutcomeHandle)
		if clock.Now() > t.deadline {
			_ = q.Push(event.NewKeyPress(t.longCode, 0))
			_ = q.Push(event.NewKeyRelease(t.longCode, 0))
			t.state = tltLongFired
		}
	default:
		q.Mark(ref, t.index, event.OutcomeHandle)
	}
}

// handleLongFired absorbs the remainder of the physical hold once the
// long action has already fired: the trigger's eventual release is
// swallowed silently instead of producing further output.
func (t *TapAndLongTap) handleLongFired(q *event.Queue, ref event.Ref, ev event.Event) {
	if ev.Kind == event.KeyRelease && ev.Code == t.trigger {
		q.Mark(ref, t.index, event.OutcomeDelete)
		t.state = tltIdle
		return
	}
	q.Mark(ref, t.index, event.OutcomeHandle)
}
