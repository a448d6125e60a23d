package handlers

import (
	"github.com/keyplexfw/keyplex/event"
	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
)

// LayerActionKind selects how a Layers entry rewrites a physical key.
type LayerActionKind uint8

const (
	// ActionRemap emits a fixed replacement KeyCode.
	ActionRemap LayerActionKind = iota
	// ActionShiftedVariant emits Unshifted or Shifted depending on
	// whether shift is currently held.
	ActionShiftedVariant
	// ActionString emits a literal string on press, via EncodeString.
	ActionString
	// ActionCallback invokes a user callback instead of emitting a
	// key; used for layer-bound side effects (e.g. triggering a
	// PressReleaseMacro-style action from inside a layer table).
	ActionCallback
)

// LayerAction is one entry in a Layers remap table.
type LayerAction struct {
	Kind      LayerActionKind
	Code      keycode.KeyCode // ActionRemap
	Unshifted keycode.KeyCode // ActionShiftedVariant
	Shifted   keycode.KeyCode // ActionShiftedVariant
	String    string          // ActionString
	Callback  func(pressed bool, physical keycode.KeyCode)
}

// Layers implements spec §4.3: a togglable remap table supporting
// static remaps, shift-aware variants, string expansion, and callback
// side effects, with a release guaranteed to follow whatever the
// matching press emitted even if the layer toggles off in between.
type Layers struct {
	indexed
	named

	enabled bool
	remap   map[keycode.KeyCode]LayerAction
	held    map[keycode.KeyCode]keycode.KeyCode // physical -> emitted, for in-flight presses
	shift   keycode.Modifiers
}

// NewLayers builds a Layers handler over the given remap table, enabled
// or disabled at construction.
func NewLayers(name string, remap map[keycode.KeyCode]LayerAction, enabled bool) *Layers {
	return &Layers{
		named:   named{name: name},
		enabled: enabled,
		remap:   remap,
		held:    make(map[keycode.KeyCode]keycode.KeyCode),
	}
}

// Enable turns the layer on.
func (l *Layers) Enable() { l.enabled = true }

// Disable turns the layer off. Keys already rewritten while it was
// enabled still release through the same rewrite (l.held survives a
// Disable).
func (l *Layers) Disable() { l.enabled = false }

// Toggle flips the enabled flag.
func (l *Layers) Toggle() { l.enabled = !l.enabled }

// Enabled reports the current state.
func (l *Layers) Enabled() bool { return l.enabled }

func (l *Layers) ProcessEvents(q *event.Queue, out output.Port, clock *event.Clock) error {
	for _, ref := range q.Pending(l.index) {
		ev, ok := q.Event(ref)
		if !ok {
			continue
		}
		l.trackShift(ev)

		switch ev.Kind {
		case event.KeyPress:
			l.handlePress(q, ref, ev)
		case event.KeyRelease:
			l.handleRelease(q, ref, ev)
		default:
			q.Mark(ref, l.index, event.OutcomeHandle)
		}
	}
	return nil
}

func (l *Layers) trackShift(ev event.Event) {
	bit, ok := keycode.ModifierBit(ev.Code)
	if !ok || (bit != keycode.ModLShift && bit != keycode.ModRShift) {
		return
	}
	if ev.Kind == event.KeyPress {
		l.shift = l.shift.Set(bit)
	} else if ev.Kind == event.KeyRelease {
		l.shift = l.shift.Clear(bit)
	}
}

func (l *Layers) handlePress(q *event.Queue, ref event.Ref, ev event.Event) {
	if !l.enabled {
		q.Mark(ref, l.index, event.OutcomeHandle)
		return
	}
	action, has := l.remap[ev.Code]
	if !has {
		q.Mark(ref, l.index, event.OutcomeHandle)
		return
	}

	switch action.Kind {
	case ActionRemap:
		l.held[ev.Code] = action.Code
		_ = q.Replace(ref, l.index, event.NewKeyPress(action.Code, ev.MsSinceLast))
	case ActionShiftedVariant:
		emitted := action.Unshifted
		if l.shift.AnyShift() {
			emitted = action.Shifted
		}
		l.held[ev.Code] = emitted
		_ = q.Replace(ref, l.index, event.NewKeyPress(emitted, ev.MsSinceLast))
	case ActionString:
		q.Mark(ref, l.index, event.OutcomeDelete)
		for _, synth := range EncodeString(action.String) {
			_ = q.Push(synth)
		}
	case ActionCallback:
		q.Mark(ref, l.index, event.OutcomeDelete)
		if action.Callback != nil {
			action.Callback(true, ev.Code)
		}
	default:
		q.Mark(ref, l.index, event.OutcomeHandle)
	}
}

func (l *Layers) handleRelease(q *event.Queue, ref event.Ref, ev event.Event) {
	if emitted, wasHeld := l.held[ev.Code]; wasHeld {
		delete(l.held, ev.Code)
		_ = q.Replace(ref, l.index, event.NewKeyRelease(emitted, ev.MsSinceLast))
		return
	}

	if !l.enabled {
		q.Mark(ref, l.index, event.OutcomeHandle)
		return
	}
	action, has := l.remap[ev.Code]
	if !has {
		q.Mark(ref, l.index, event.OutcomeHandle)
		return
	}
	switch action.Kind {
	case ActionString:
		q.Mark(ref, l.index, event.OutcomeDelete)
	case ActionCallback:
		q.Mark(ref, l.index, event.OutcomeDelete)
		if action.Callback != nil {
			action.Callback(false, ev.Code)
		}
	default:
		q.Mark(ref, l.index, event.OutcomeHandle)
	}
}
