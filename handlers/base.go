// Package handlers implements the catalogue of concrete pipeline
// stages described in spec §4.3-§4.11: Layers, RewriteLayers,
// LayerToggle, OneShot, StickyMacro, SpaceCadet, TapAndLongTap,
// PressReleaseMacro, Sequence, SendString, UnicodeKeyboard, and the
// terminal USBKeyboard assembler.
package handlers

// indexed is embedded by every handler that needs its own pipeline
// position to call event.Queue's index-keyed methods (Pending/Mark/
// Replace). pipeline.New assigns it once at construction via the
// IndexAware interface.
type indexed struct {
	index int
}

func (b *indexed) SetIndex(i int) { b.index = i }

// named is embedded by handlers that want a configured, human-readable
// name (surfaced in logs and the status API) instead of their bare Go
// type.
type named struct {
	name string
}

func (b named) Name() string { return b.name }
