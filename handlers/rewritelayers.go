package handlers

import (
	"github.com/keyplexfw/keyplex/event"
	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
)

// RewriteLayers implements spec §4.4: the static-remap-only sibling of
// Layers, without shift-variant, string, or callback entries. Carries
// the same press/release rewrite-tracking invariant: a release follows
// whatever code its matching press emitted, even if the layer is
// disabled in between.
type RewriteLayers struct {
	indexed
	named

	enabled bool
	remap   map[keycode.KeyCode]keycode.KeyCode
	held    map[keycode.KeyCode]keycode.KeyCode
}

// NewRewriteLayers builds a RewriteLayers handler over a plain
// code-to-code remap table.
func NewRewriteLayers(name string, remap map[keycode.KeyCode]keycode.KeyCode, enabled bool) *RewriteLayers {
	return &RewriteLayers{
		named:   named{name: name},
		enabled: enabled,
		remap:   remap,
		held:    make(map[keycode.KeyCode]keycode.KeyCode),
	}
}

func (r *RewriteLayers) Enable()         { r.enabled = true }
func (r *RewriteLayers) Disable()        { r.enabled = false }
func (r *RewriteLayers) Toggle()         { r.enabled = !r.enabled }
func (r *RewriteLayers) Enabled() bool   { return r.enabled }

func (r *RewriteLayers) ProcessEvents(q *event.Queue, out output.Port, clock *event.Clock) error {
	for _, ref := range q.Pending(r.index) {
		ev, ok := q.Event(ref)
		if !ok {
			continue
		}
		switch ev.Kind {
		case event.KeyPress:
			r.handlePress(q, ref, ev)
		case event.KeyRelease:
			r.handleRelease(q, ref, ev)
		default:
			q.Mark(ref, r.index, event.OutcomeHandle)
		}
	}
	return nil
}

func (r *RewriteLayers) handlePress(q *event.Queue, ref event.Ref, ev event.Event) {
	if !r.enabled {
		q.Mark(ref, r.index, event.OutcomeHandle)
		return
	}
	target, has := r.remap[ev.Code]
	if !has {
		q.Mark(ref, r.index, event.OutcomeHandle)
		return
	}
	r.held[ev.Code] = target
	_ = q.Replace(ref, r.index, event.NewKeyPress(target, ev.MsSinceLast))
}

func (r *RewriteLayers) handleRelease(q *event.Queue, ref event.Ref, ev event.Event) {
	if target, wasHeld := r.held[ev.Code]; wasHeld {
		delete(r.held, ev.Code)
		_ = q.Replace(ref, r.index, event.NewKeyRelease(target, ev.MsSinceLast))
		return
	}
	q.Mark(ref, r.index, event.OutcomeHandle)
}
