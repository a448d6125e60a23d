package event

import (
	"testing"

	"github.com/keyplexfw/keyplex/keycode"
)

func TestPushAndPendingSeesUnobservedOnly(t *testing.T) {
	q := NewQueue(8, 2)
	ev := NewKeyPress(keycode.HID(0x04), 0)
	if err := q.Push(ev); err != nil {
		t.Fatalf("Push: %v", err)
	}

	refs := q.Pending(0)
	if len(refs) != 1 {
		t.Fatalf("Pending(0) = %d refs, want 1", len(refs))
	}

	q.Mark(refs[0], 0, OutcomeHandle)
	if refs2 := q.Pending(0); len(refs2) != 0 {
		t.Fatalf("Pending(0) after Handle = %d refs, want 0", len(refs2))
	}
	if refs2 := q.Pending(1); len(refs2) != 1 {
		t.Fatalf("Pending(1) after handler 0's Handle = %d refs, want 1 (per-handler status is independent)", len(refs2))
	}
}

func TestPushRespectsCapacity(t *testing.T) {
	q := NewQueue(2, 1)
	if err := q.Push(NewTimeOut(1)); err != nil {
		t.Fatalf("Push 1: %v", err)
	}
	if err := q.Push(NewTimeOut(1)); err != nil {
		t.Fatalf("Push 2: %v", err)
	}
	if err := q.Push(NewTimeOut(1)); err != ErrQueueFull {
		t.Fatalf("Push 3 = %v, want ErrQueueFull", err)
	}
}

func TestMarkDeleteRemovesFromAllHandlers(t *testing.T) {
	q := NewQueue(4, 3)
	q.Push(NewKeyPress(keycode.HID(0x05), 0))
	ref := q.Pending(0)[0]

	q.Mark(ref, 1, OutcomeDelete)

	for h := 0; h < 3; h++ {
		if refs := q.Pending(h); len(refs) != 0 {
			t.Errorf("Pending(%d) after delete = %d refs, want 0", h, len(refs))
		}
	}
	if _, ok := q.Event(ref); ok {
		t.Errorf("Event(ref) resolved after delete, want not-ok")
	}
}

func TestReplaceSubstitutesEvents(t *testing.T) {
	q := NewQueue(4, 1)
	q.Push(NewKeyPress(keycode.HID(0x05), 0))
	ref := q.Pending(0)[0]

	a := NewKeyPress(keycode.HID(0x06), 0)
	b := NewKeyRelease(keycode.HID(0x06), 0)
	if err := q.Replace(ref, 0, a, b); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	snap := q.Snapshot()
	if len(snap) != 2 || snap[0].Code != a.Code || snap[1].Kind != KeyRelease {
		t.Fatalf("Snapshot after Replace = %+v, want [a-press, b-release]", snap)
	}
}

func TestDropHandledKeepsPartiallyHandled(t *testing.T) {
	q := NewQueue(4, 2)
	q.Push(NewKeyPress(keycode.HID(0x07), 0))
	ref := q.Pending(0)[0]
	q.Mark(ref, 0, OutcomeHandle)

	q.DropHandled()
	if q.Len() != 1 {
		t.Fatalf("DropHandled removed an event only handled by one of two handlers: len=%d", q.Len())
	}

	q.Mark(ref, 1, OutcomeHandle)
	q.DropHandled()
	if q.Len() != 0 {
		t.Fatalf("DropHandled kept an event handled by every handler: len=%d", q.Len())
	}
}

func TestGenerationIncreasesOnMutation(t *testing.T) {
	q := NewQueue(4, 1)
	g0 := q.Generation()
	q.Push(NewTimeOut(1))
	if q.Generation() == g0 {
		t.Errorf("Generation unchanged after Push")
	}
}
