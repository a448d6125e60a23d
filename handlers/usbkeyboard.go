package handlers

import (
	"github.com/keyplexfw/keyplex/event"
	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
)

const maxRolloverKeys = 6

// USBKeyboard is the terminal handler from spec §4.11: it assembles
// the modifier bitmap and active-key set accumulated over a dispatch
// pass into USB HID reports and sends at most one keyboard report and
// one consumer report per pass — never one per individual event. A
// unicode code point that reaches this handler unrouted (no
// UnicodeKeyboard ahead of it, or one that declined it) is reported as
// output.ErrUnroutedUnicode rather than silently dropped.
type USBKeyboard struct {
	indexed
	named

	mods           keycode.Modifiers
	activeKeys     []keycode.KeyCode
	consumerActive keycode.KeyCode

	// lastSent* mirrors the last report the port actually accepted. A
	// pass recomputes changed-ness against these, not against this
	// pass's own event deltas, so a send that fails with
	// output.ErrBusy leaves them stale and is retried on the very next
	// pass — even one with no new events for this handler — rather
	// than the update being silently lost.
	lastSentMods     keycode.Modifiers
	lastSentKeys     []keycode.KeyCode
	lastSentConsumer keycode.KeyCode
}

// NewUSBKeyboard builds a USBKeyboard handler. It should be the last
// handler in the pipeline.
func NewUSBKeyboard(name string) *USBKeyboard {
	return &USBKeyboard{named: named{name: name}}
}

func (u *USBKeyboard) ProcessEvents(q *event.Queue, out output.Port, clock *event.Clock) error {
	sawUnrouted := false

	for _, ref := range q.Pending(u.index) {
		ev, ok := q.Event(ref)
		if !ok {
			continue
		}
		q.Mark(ref, u.index, event.OutcomeHandle)

		switch {
		case isModifier(ev.Code):
			bit, _ := keycode.ModifierBit(ev.Code)
			if ev.Kind == event.KeyPress {
				u.mods = u.mods.Set(bit)
			} else if ev.Kind == event.KeyRelease {
				u.mods = u.mods.Clear(bit)
			}
		case ev.Code.IsHIDUsage():
			if ev.Kind == event.KeyPress {
				u.addKey(ev.Code)
			} else if ev.Kind == event.KeyRelease {
				u.removeKey(ev.Code)
			}
		case ev.Code.IsConsumerUsage():
			if ev.Kind == event.KeyPress {
				u.consumerActive = ev.Code
			} else if ev.Kind == event.KeyRelease && u.consumerActive == ev.Code {
				u.consumerActive = 0
			}
		case ev.Code.IsUnicode():
			sawUnrouted = true
		}
	}

	// Recompute against the last report the port actually accepted,
	// every pass, regardless of what (if anything) changed u.mods /
	// u.activeKeys this time — so an output.ErrBusy from a prior pass
	// leaves the state "dirty" and it gets retried here with no new
	// physical event required.
	if u.mods != u.lastSentMods || !sameKeys(u.activeKeys, u.lastSentKeys) {
		if err := out.SendKeys(u.mods, u.activeKeys); err != nil {
			return err
		}
		u.lastSentMods = u.mods
		u.lastSentKeys = append(u.lastSentKeys[:0], u.activeKeys...)
	}
	if u.consumerActive != u.lastSentConsumer {
		if err := out.SendConsumer(u.consumerActive); err != nil {
			return err
		}
		u.lastSentConsumer = u.consumerActive
	}
	if sawUnrouted {
		return output.ErrUnroutedUnicode
	}
	return nil
}

// sameKeys reports whether two active-key lists hold the same codes in
// the same order. The comparison is order-sensitive; addKey/removeKey
// keep slot order stable for a given press order.
func sameKeys(a, b []keycode.KeyCode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isModifier(c keycode.KeyCode) bool {
	_, ok := keycode.ModifierBit(c)
	return ok
}

// addKey inserts code into the rollover set if absent, reporting
// whether the set changed. A press past maxRolloverKeys is dropped —
// the HID boot report has no room to represent it, the same limit real
// keyboard firmware runs into.
func (u *USBKeyboard) addKey(code keycode.KeyCode) bool {
	for _, k := range u.activeKeys {
		if k == code {
			return false
		}
	}
	if len(u.activeKeys) >= maxRolloverKeys {
		return false
	}
	u.activeKeys = append(u.activeKeys, code)
	return true
}

func (u *USBKeyboard) removeKey(code keycode.KeyCode) bool {
	for i, k := range u.activeKeys {
		if k == code {
			u.activeKeys = append(u.activeKeys[:i], u.activeKeys[i+1:]...)
			return true
		}
	}
	return false
}
