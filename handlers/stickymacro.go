package handlers

import (
	"github.com/keyplexfw/keyplex/event"
	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
)

// StickyMacro implements spec §4.6: each tap of the trigger toggles a
// target code between held down and released — the odd tap presses it,
// the even tap releases it — rather than the target following the
// trigger's own press/release pairing.
type StickyMacro struct {
	indexed
	named

	trigger keycode.KeyCode
	target  keycode.KeyCode
	active  bool
}

// NewStickyMacro builds a StickyMacro handler.
func NewStickyMacro(name string, trigger, target keycode.KeyCode) *StickyMacro {
	return &StickyMacro{named: named{name: name}, trigger: trigger, target: target}
}

// Active reports whether the target code is currently held down.
func (s *StickyMacro) Active() bool { return s.active }

func (s *StickyMacro) ProcessEvents(q *event.Queue, out output.Port, clock *event.Clock) error {
	for _, ref := range q.Pending(s.index) {
		ev, ok := q.Event(ref)
		if !ok {
			continue
		}
		if ev.Code != s.trigger {
			q.Mark(ref, s.index, event.OutcomeHandle)
			continue
		}
		if ev.Kind == event.KeyRelease {
			// The trigger's own release carries no meaning for a toggle.
			q.Mark(ref, s.index, event.OutcomeDelete)
			continue
		}
		q.Mark(ref, s.index, event.OutcomeDelete)
		s.active = !s.active
		if s.active {
			_ = q.Push(event.NewKeyPress(s.target, 0))
		} else {
			_ = q.Push(event.NewKeyRelease(s.target, 0))
		}
	}
	return nil
}
