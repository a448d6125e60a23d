package handlers

import (
	"github.com/keyplexfw/keyplex/event"
	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
)

// shiftCode is the modifier keycode used to wrap HID-mappable runes
// that require the shifted variant. Left shift is used unconditionally
// rather than consulting physically-held modifier state, so the
// encoded sequence is self-contained and deterministic regardless of
// what else the typist is doing.
var shiftCode = keycode.HID(keycode.UsageLShift)

// EncodeString converts a string into the press/release events needed
// to type it: one press/release pair per code point, HID-mapped where
// possible (wrapped in a shift press/release when the shifted variant
// is needed) and emitted as raw unicode code points otherwise, for
// UnicodeKeyboard further down the pipeline to pick up. Code points are
// encoded in input order; apart from the wrapping shift press, each
// code point yields exactly one keypress.
func EncodeString(s string) []event.Event {
	var out []event.Event
	for _, r := range s {
		if usage, shifted, ok := keycode.ASCIIToHID(r); ok {
			code := keycode.HID(usage)
			if shifted {
				out = append(out, event.NewKeyPress(shiftCode, 0))
			}
			out = append(out, event.NewKeyPress(code, 0))
			out = append(out, event.NewKeyRelease(code, 0))
			if shifted {
				out = append(out, event.NewKeyRelease(shiftCode, 0))
			}
			continue
		}
		cp := keycode.KeyCode(uint32(r))
		out = append(out, event.NewKeyPress(cp, 0))
		out = append(out, event.NewKeyRelease(cp, 0))
	}
	return out
}

// SendString is a streaming injector: callers Enqueue strings and it
// drains the encoded events onto the queue a bounded number at a time
// per dispatch pass, rather than flooding the queue all at once. This
// resolves spec §9's open question about RAM pressure from long
// strings (clipboard pastes, leader-key corrections) — chunkSize
// trades latency for peak queue occupancy.
type SendString struct {
	indexed
	named

	chunkSize int
	cursor    []event.Event
}

// NewSendString builds a chunked string injector. chunkSize must be at
// least 1; values below that are clamped to 1.
func NewSendString(name string, chunkSize int) *SendString {
	if chunkSize < 1 {
		chunkSize = 1
	}
	return &SendString{named: named{name: name}, chunkSize: chunkSize}
}

// Enqueue appends a string's encoded events to the drain cursor. Safe
// to call from other handlers' ProcessEvents (the driver is
// single-threaded, spec §5).
func (s *SendString) Enqueue(str string) {
	s.cursor = append(s.cursor, EncodeString(str)...)
}

// Pending reports how many encoded events remain to be drained.
func (s *SendString) Pending() int { return len(s.cursor) }

func (s *SendString) ProcessEvents(q *event.Queue, _ output.Port, _ *event.Clock) error {
	for _, ref := range q.Pending(s.index) {
		q.Mark(ref, s.index, event.OutcomeHandle)
	}
	n := s.chunkSize
	if n > len(s.cursor) {
		n = len(s.cursor)
	}
	pushed := 0
	for pushed < n {
		if err := q.Push(s.cursor[pushed]); err != nil {
			s.cursor = s.cursor[pushed:]
			return err
		}
		pushed++
	}
	s.cursor = s.cursor[pushed:]
	return nil
}
