package handlers

import (
	"github.com/keyplexfw/keyplex/event"
	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
)

// Toggleable is satisfied by Layers and RewriteLayers, the two handlers
// LayerToggle drives.
type Toggleable interface {
	Enable()
	Disable()
	Toggle()
	Enabled() bool
}

type layerBinding struct {
	target Toggleable
	op     keycode.LayerOp
}

// LayerToggle is the pseudo-handler from spec §4.13: it owns no output
// of its own, only interprets action codes and flips the Enabled state
// of the Layers/RewriteLayers handlers it's bound to. It must precede
// every handler it controls in the pipeline, so a toggle takes effect
// before that layer processes the rest of the same pass.
type LayerToggle struct {
	indexed
	named

	bindings map[keycode.KeyCode]layerBinding
}

// NewLayerToggle builds an empty LayerToggle; bind triggers with Bind.
func NewLayerToggle(name string) *LayerToggle {
	return &LayerToggle{named: named{name: name}, bindings: make(map[keycode.KeyCode]layerBinding)}
}

// Bind associates a trigger action code (built with keycode.LayerToggleCode)
// with the layer it controls and the operation to perform.
func (t *LayerToggle) Bind(trigger keycode.KeyCode, target Toggleable, op keycode.LayerOp) {
	t.bindings[trigger] = layerBinding{target: target, op: op}
}

func (t *LayerToggle) ProcessEvents(q *event.Queue, out output.Port, clock *event.Clock) error {
	for _, ref := range q.Pending(t.index) {
		ev, ok := q.Event(ref)
		if !ok {
			continue
		}
		b, bound := t.bindings[ev.Code]
		if !bound {
			q.Mark(ref, t.index, event.OutcomeHandle)
			continue
		}

		switch ev.Kind {
		case event.KeyPress:
			q.Mark(ref, t.index, event.OutcomeDelete)
			switch b.op {
			case keycode.LayerEnable:
				b.target.Enable()
			case keycode.LayerDisable:
				b.target.Disable()
			case keycode.LayerToggleState:
				b.target.Toggle()
			case keycode.LayerMomentary:
				b.target.Enable()
			}
		case event.KeyRelease:
			q.Mark(ref, t.index, event.OutcomeDelete)
			if b.op == keycode.LayerMomentary {
				b.target.Disable()
			}
		default:
			q.Mark(ref, t.index, event.OutcomeHandle)
		}
	}
	return nil
}
