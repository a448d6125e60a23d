package event

import "errors"

// ErrQueueFull is returned by Push when the queue is already at
// capacity. The caller (the driver) must drop the incoming event and
// count it; this is non-fatal per the dispatch contract.
var ErrQueueFull = errors.New("event: queue full")

// Ref is an opaque, stable handle to a queued event, returned by
// Pending and consumed by Mark/Replace. It stays valid even if other
// entries are deleted or reordered underneath it.
type Ref struct {
	id uint64
}

type entry struct {
	id      uint64
	ev      Event
	status  []Status
	deleted bool
}

// Queue is the bounded, ordered buffer of (Event, per-handler status)
// pairs described in spec §4.1. Capacity and handler count are fixed
// at construction.
type Queue struct {
	entries     []entry
	capacity    int
	numHandlers int
	nextID      uint64
	generation  uint64
}

// NewQueue creates a queue with the given capacity, sized for
// numHandlers pipeline stages.
func NewQueue(capacity, numHandlers int) *Queue {
	return &Queue{
		entries:     make([]entry, 0, capacity),
		capacity:    capacity,
		numHandlers: numHandlers,
	}
}

// Len returns the number of events currently queued.
func (q *Queue) Len() int { return len(q.entries) }

// Generation returns a counter that increases every time the queue's
// observable content changes (push, mark, delete). The dispatch loop
// compares it across a pass to detect quiescence.
func (q *Queue) Generation() uint64 { return q.generation }

// Clear empties the queue, used when DispatchDiverged is raised.
func (q *Queue) Clear() {
	q.entries = q.entries[:0]
	q.generation++
}

// Push appends a new event with all status bits clear. Used both by
// the driver for externally-arriving events and by handlers injecting
// synthesized events.
func (q *Queue) Push(ev Event) error {
	if len(q.entries) >= q.capacity {
		return ErrQueueFull
	}
	q.nextID++
	q.entries = append(q.entries, entry{
		id:     q.nextID,
		ev:     ev,
		status: make([]Status, q.numHandlers),
	})
	q.generation++
	return nil
}

// Pending returns a snapshot of the events handlerIndex has not yet
// observed, in arrival order. Events injected by this same handler
// during its own ProcessEvents call are not included — they are
// appended after this snapshot is taken and so are only visible to
// later handlers in this pass (or to everyone, next pass).
func (q *Queue) Pending(handlerIndex int) []Ref {
	var refs []Ref
	for i := range q.entries {
		e := &q.entries[i]
		if e.deleted {
			continue
		}
		if e.status[handlerIndex] == Ignored {
			refs = append(refs, Ref{id: e.id})
		}
	}
	return refs
}

// Event resolves a Ref to its current Event value. Returns false if the
// referenced event has since been deleted or dropped.
func (q *Queue) Event(ref Ref) (Event, bool) {
	idx := q.indexOf(ref.id)
	if idx < 0 || q.entries[idx].deleted {
		return Event{}, false
	}
	return q.entries[idx].ev, true
}

// Mark records handlerIndex's decision about ref: ignore (no-op, event
// stays pending for this handler), handle (event becomes invisible to
// this handler for the rest of the run), or delete (event is removed
// from the queue outright, regardless of other handlers' status).
func (q *Queue) Mark(ref Ref, handlerIndex int, outcome Outcome) {
	idx := q.indexOf(ref.id)
	if idx < 0 {
		return
	}
	switch outcome {
	case OutcomeHandle:
		q.entries[idx].status[handlerIndex] = Handled
		q.generation++
	case OutcomeDelete:
		q.entries[idx].deleted = true
		q.generation++
	case OutcomeIgnore:
		// no state change
	}
}

// Replace deletes ref and appends the given events in its place, as a
// single atomic step. Equivalent to Mark(ref, handlerIndex,
// OutcomeDelete) followed by Push for each replacement event.
func (q *Queue) Replace(ref Ref, handlerIndex int, events ...Event) error {
	q.Mark(ref, handlerIndex, OutcomeDelete)
	for _, ev := range events {
		if err := q.Push(ev); err != nil {
			return err
		}
	}
	return nil
}

// DropHandled removes every event that is deleted, or that every
// handler in the pipeline has marked Handled, preserving the relative
// order of what remains.
func (q *Queue) DropHandled() {
	kept := q.entries[:0]
	for _, e := range q.entries {
		if e.deleted || e.allHandled() {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) != len(q.entries) {
		q.generation++
	}
	q.entries = kept
}

func (e entry) allHandled() bool {
	for _, s := range e.status {
		if s != Handled {
			return false
		}
	}
	return true
}

func (q *Queue) indexOf(id uint64) int {
	for i := range q.entries {
		if q.entries[i].id == id {
			return i
		}
	}
	return -1
}

// Snapshot returns every currently-queued event in order, for
// diagnostics/tests. It does not reflect per-handler status.
func (q *Queue) Snapshot() []Event {
	out := make([]Event, 0, len(q.entries))
	for _, e := range q.entries {
		if !e.deleted {
			out = append(out, e.ev)
		}
	}
	return out
}
