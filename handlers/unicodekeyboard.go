package handlers

import (
	"errors"

	"github.com/keyplexfw/keyplex/event"
	"github.com/keyplexfw/keyplex/output"
)

// UnicodeKeyboard implements spec §4.10: it sits ahead of USBKeyboard
// and routes a bare unicode code-point press to the output port's
// OS-specific SendUnicode method, since USBKeyboard itself only knows
// how to assemble USB HID reports and has no concept of Unicode entry.
// A release of the same code point is absorbed without further action
// — entry happens synchronously on press. A port with no entry method
// (output.ErrUnsupported, e.g. usbhid.AOA2Port on Android) is reported
// as output.ErrUnroutedUnicode, the same counter USBKeyboard raises for
// a stray unicode code that reached it unrouted.
type UnicodeKeyboard struct {
	indexed
	named
}

// NewUnicodeKeyboard builds a UnicodeKeyboard handler.
func NewUnicodeKeyboard(name string) *UnicodeKeyboard {
	return &UnicodeKeyboard{named: named{name: name}}
}

func (u *UnicodeKeyboard) ProcessEvents(q *event.Queue, out output.Port, clock *event.Clock) error {
	var firstErr error
	for _, ref := range q.Pending(u.index) {
		ev, ok := q.Event(ref)
		if !ok {
			continue
		}
		if !ev.Code.IsUnicode() {
			q.Mark(ref, u.index, event.OutcomeHandle)
			continue
		}
		if ev.Kind == event.KeyRelease {
			q.Mark(ref, u.index, event.OutcomeDelete)
			continue
		}
		if ev.Kind != event.KeyPress {
			q.Mark(ref, u.index, event.OutcomeHandle)
			continue
		}

		q.Mark(ref, u.index, event.OutcomeDelete)
		if err := out.SendUnicode(rune(ev.Code)); err != nil && firstErr == nil {
			if errors.Is(err, output.ErrUnsupported) {
				firstErr = output.ErrUnroutedUnicode
			} else {
				firstErr = err
			}
		}
	}
	return firstErr
}
