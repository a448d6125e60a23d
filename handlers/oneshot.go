package handlers

import (
	"github.com/keyplexfw/keyplex/event"
	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
)

type oneShotState uint8

const (
	osIdle oneShotState = iota
	osPrimed
	osArmed
	osHeld
)

// OneShot implements spec §4.5: a modifier/layer-enable action that
// stays active through exactly one subsequent key, or for as long as
// its trigger is physically held.
//
// Must be placed before the layer/USB handlers whose state the action
// affects (spec §4.5's ordering invariant), since the action keypress
// it emits needs to be visible to them.
type OneShot struct {
	indexed
	named

	trigger          keycode.KeyCode
	action           keycode.KeyCode
	holdTimeoutMs    uint64
	releaseTimeoutMs uint64

	state          oneShotState
	primedDeadline uint64
	armedDeadline  uint64

	// hasPendingConsumer/pendingConsumer implement the two-pass
	// resolution needed so the consuming key's own report (action
	// still active) and the action-release report are two separate
	// HID reports rather than one coalesced report: the consumer press
	// is let through unmodified on first sight (Outcome Ignore, so
	// OneShot sees it again next pass) and only finalized — action
	// released, event marked Handled — on the second sighting.
	hasPendingConsumer bool
	pendingConsumer    event.Ref
}

// NewOneShot builds a OneShot handler. trigger is the action code that
// primes it; action is the KeyCode emitted while primed/armed/held
// (typically a modifier HID usage or a layer-enable action code).
func NewOneShot(name string, trigger, action keycode.KeyCode, holdTimeoutMs, releaseTimeoutMs uint64) *OneShot {
	return &OneShot{
		named:            named{name: name},
		trigger:          trigger,
		action:           action,
		holdTimeoutMs:    holdTimeoutMs,
		releaseTimeoutMs: releaseTimeoutMs,
	}
}

func (o *OneShot) ProcessEvents(q *event.Queue, out output.Port, clock *event.Clock) error {
	return o.process(q, clock)
}

func (o *OneShot) process(q *event.Queue, clock *event.Clock) error {
	for _, ref := range q.Pending(o.index) {
		ev, ok := q.Event(ref)
		if !ok {
			continue
		}
		switch o.state {
		case osIdle:
			o.handleIdle(q, clock, ref, ev)
		case osPrimed:
			o.handlePrimed(q, clock, ref, ev)
		case osArmed:
			o.handleArmed(q, clock, ref, ev)
		case osHeld:
			o.handleHeld(q, ref, ev)
		}
	}
	return nil
}

func (o *OneShot) handleIdle(q *event.Queue, clock *event.Clock, ref event.Ref, ev event.Event) {
	if ev.Kind == event.KeyPress && ev.Code == o.trigger {
		q.Mark(ref, o.index, event.OutcomeDelete)
		_ = q.Push(event.NewKeyPress(o.action, 0))
		o.state = osPrimed
		o.primedDeadline = clock.Now() + o.holdTimeoutMs
		return
	}
	q.Mark(ref, o.index, event.OutcomeHandle)
}

func (o *OneShot) handlePrimed(q *event.Queue, clock *event.Clock, ref event.Ref, ev event.Event) {
	switch {
	case ev.Kind == event.KeyRelease && ev.Code == o.trigger:
		q.Mark(ref, o.index, event.OutcomeDelete)
		if clock.Now() <= o.primedDeadline {
			o.state = osArmed
			o.armedDeadline = clock.Now() + o.releaseTimeoutMs
		} else {
			_ = q.Push(event.NewKeyRelease(o.action, 0))
			o.state = osIdle
		}
	case ev.Kind == event.TimeOut:
		q.Mark(ref, o.index, event.OutcomeHandle)
		if clock.Now() > o.primedDeadline {
			o.state = osHeld
		}
	default:
		q.Mark(ref, o.index, event.OutcomeHandle)
	}
}

func (o *OneShot) handleHeld(q *event.Queue, ref event.Ref, ev event.Event) {
	if ev.Kind == event.KeyRelease && ev.Code == o.trigger {
		q.Mark(ref, o.index, event.OutcomeDelete)
		_ = q.Push(event.NewKeyRelease(o.action, 0))
		o.state = osIdle
		return
	}
	q.Mark(ref, o.index, event.OutcomeHandle)
}

func (o *OneShot) handleArmed(q *event.Queue, clock *event.Clock, ref event.Ref, ev event.Event) {
	switch {
	case ev.Kind == event.TimeOut:
		q.Mark(ref, o.index, event.OutcomeHandle)
		if !o.hasPendingConsumer && clock.Now() > o.armedDeadline {
			_ = q.Push(event.NewKeyRelease(o.action, 0))
			o.state = osIdle
		}
	case ev.Code == o.trigger:
		// Re-press of the trigger while armed isn't specified; pass
		// it through untouched rather than guess new behavior.
		q.Mark(ref, o.index, event.OutcomeHandle)
	case ev.Kind == event.KeyPress:
		if o.hasPendingConsumer && ref == o.pendingConsumer {
			q.Mark(ref, o.index, event.OutcomeHandle)
			_ = q.Push(event.NewKeyRelease(o.action, 0))
			o.state = osIdle
			o.hasPendingConsumer = false
			return
		}
		if o.hasPendingConsumer {
			// Already waiting to finalize an earlier press; this is
			// unrelated, let it through.
			q.Mark(ref, o.index, event.OutcomeHandle)
			return
		}
		// First sighting: let it reach later handlers (and a report)
		// with the action still active, and resolve on the next pass.
		q.Mark(ref, o.index, event.OutcomeIgnore)
		o.pendingConsumer = ref
		o.hasPendingConsumer = true
	default:
		q.Mark(ref, o.index, event.OutcomeHandle)
	}
}
