package handlers

import (
	"testing"

	"github.com/keyplexfw/keyplex/event"
	"github.com/keyplexfw/keyplex/keycode"
)

func TestEncodeStringLowercaseIsOneShotPerRune(t *testing.T) {
	evs := EncodeString("hi")
	if len(evs) != 4 {
		t.Fatalf("EncodeString(%q) produced %d events, want 4 (press/release per rune)", "hi", len(evs))
	}
	hUsage, _, _ := keycode.ASCIIToHID('h')
	iUsage, _, _ := keycode.ASCIIToHID('i')
	h := keycode.HID(hUsage)
	i := keycode.HID(iUsage)
	want := []event.Event{
		event.NewKeyPress(h, 0), event.NewKeyRelease(h, 0),
		event.NewKeyPress(i, 0), event.NewKeyRelease(i, 0),
	}
	for idx, w := range want {
		if evs[idx].Kind != w.Kind || evs[idx].Code != w.Code {
			t.Errorf("event[%d] = %+v, want %+v", idx, evs[idx], w)
		}
	}
}

func TestEncodeStringUppercaseWrapsInShift(t *testing.T) {
	evs := EncodeString("Hi")
	if len(evs) != 6 {
		t.Fatalf("EncodeString(%q) produced %d events, want 6 (shift press/release wrapping H, plus i)", "Hi", len(evs))
	}
	if evs[0].Kind != event.KeyPress || evs[0].Code != shiftCode {
		t.Errorf("event[0] = %+v, want shift press", evs[0])
	}
	if evs[3].Kind != event.KeyRelease || evs[3].Code != shiftCode {
		t.Errorf("event[3] = %+v, want shift release", evs[3])
	}
}

func TestEncodeStringFallsBackToUnicodeForUnmappedRunes(t *testing.T) {
	evs := EncodeString("é")
	if len(evs) != 2 {
		t.Fatalf("EncodeString(%q) produced %d events, want 2 (press/release of the raw code point)", "é", len(evs))
	}
	if evs[0].Code != keycode.KeyCode('é') || !evs[0].Code.IsUnicode() {
		t.Errorf("event[0] = %+v, want a unicode press of 'é'", evs[0])
	}
}

func TestSendStringDrainsInChunks(t *testing.T) {
	s := NewSendString("str", 2)
	s.Enqueue("ab")

	q := event.NewQueue(16, 1)
	if err := s.ProcessEvents(q, nil, nil); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if q.Len() != 2 {
		t.Fatalf("after one drain of chunkSize 2, queue len = %d, want 2", q.Len())
	}
	if s.Pending() != 2 {
		t.Fatalf("Pending() = %d, want 2 (4 events total, 2 drained)", s.Pending())
	}

	if err := s.ProcessEvents(q, nil, nil); err != nil {
		t.Fatalf("ProcessEvents second drain: %v", err)
	}
	if s.Pending() != 0 {
		t.Fatalf("Pending() after draining everything = %d, want 0", s.Pending())
	}
}

func TestNewSendStringClampsChunkSize(t *testing.T) {
	s := NewSendString("str", 0)
	s.Enqueue("a")
	q := event.NewQueue(16, 1)
	if err := s.ProcessEvents(q, nil, nil); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if q.Len() != 1 {
		t.Fatalf("a chunkSize of 0 should clamp to 1, drained %d events in one call, want 1", q.Len())
	}
}
