package handlers

import (
	"github.com/keyplexfw/keyplex/event"
	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
)

// PressReleaseMacro implements spec §4.9's callback-pair form: the
// trigger's press and release each invoke a distinct user callback
// instead of emitting a code directly, for side effects outside the
// HID surface (layer bookkeeping, host API calls, and similar).
type PressReleaseMacro struct {
	indexed
	named

	trigger   keycode.KeyCode
	onPress   func()
	onRelease func()
}

// NewPressReleaseMacro builds a PressReleaseMacro. Either callback may
// be nil.
func NewPressReleaseMacro(name string, trigger keycode.KeyCode, onPress, onRelease func()) *PressReleaseMacro {
	return &PressReleaseMacro{named: named{name: name}, trigger: trigger, onPress: onPress, onRelease: onRelease}
}

func (p *PressReleaseMacro) ProcessEvents(q *event.Queue, out output.Port, clock *event.Clock) error {
	for _, ref := range q.Pending(p.index) {
		ev, ok := q.Event(ref)
		if !ok {
			continue
		}
		if ev.Code != p.trigger {
			q.Mark(ref, p.index, event.OutcomeHandle)
			continue
		}
		q.Mark(ref, p.index, event.OutcomeDelete)
		switch ev.Kind {
		case event.KeyPress:
			if p.onPress != nil {
				p.onPress()
			}
		case event.KeyRelease:
			if p.onRelease != nil {
				p.onRelease()
			}
		}
	}
	return nil
}
