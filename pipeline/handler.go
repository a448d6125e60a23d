// Package pipeline implements the ordered handler pipeline, its
// per-pass dispatch algorithm, and the driver loop that feeds external
// events into it and runs it to quiescence (spec §4.1, §4.2).
package pipeline

import (
	"github.com/keyplexfw/keyplex/event"
	"github.com/keyplexfw/keyplex/output"
)

// Handler is the single operation every pipeline stage implements.
// ProcessEvents inspects the events it has not yet observed (via
// q.Pending), marks each with a decision (q.Mark/q.Replace), may call
// out to send HID reports or unicode sequences, and may read clock for
// absolute-time decisions. It must never block.
//
// Concrete variants are enumerated in the handlers package: Layers,
// RewriteLayers, LayerToggle, OneShot, StickyMacro, SpaceCadet,
// TapAndLongTap, PressReleaseMacro, Sequence, UnicodeKeyboard, and the
// terminal USBKeyboard assembler.
type Handler interface {
	ProcessEvents(q *event.Queue, out output.Port, clock *event.Clock) error
}

// Named is implemented by handlers that want a human-readable name
// surfaced in logs and the status API, beyond their pipeline index.
// Implementing it is optional; handlers that don't are identified by
// their index and Go type name instead (see Pipeline.Label).
type Named interface {
	Name() string
}
