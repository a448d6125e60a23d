package handlers

import (
	"testing"

	"github.com/keyplexfw/keyplex/event"
	"github.com/keyplexfw/keyplex/keycode"
)

func TestPressReleaseMacroInvokesDistinctCallbacks(t *testing.T) {
	trigger := keycode.PressReleaseCode(1)
	var pressed, released int
	m := NewPressReleaseMacro("m", trigger,
		func() { pressed++ },
		func() { released++ },
	)
	m.SetIndex(0)
	q := event.NewQueue(8, 1)

	q.Push(event.NewKeyPress(trigger, 0))
	if err := m.ProcessEvents(q, nil, nil); err != nil {
		t.Fatalf("ProcessEvents press: %v", err)
	}
	if pressed != 1 || released != 0 {
		t.Fatalf("after press: pressed=%d released=%d, want 1,0", pressed, released)
	}

	q.Push(event.NewKeyRelease(trigger, 0))
	if err := m.ProcessEvents(q, nil, nil); err != nil {
		t.Fatalf("ProcessEvents release: %v", err)
	}
	if pressed != 1 || released != 1 {
		t.Fatalf("after release: pressed=%d released=%d, want 1,1", pressed, released)
	}
}

func TestPressReleaseMacroToleratesNilCallbacks(t *testing.T) {
	trigger := keycode.PressReleaseCode(1)
	m := NewPressReleaseMacro("m", trigger, nil, nil)
	m.SetIndex(0)
	q := event.NewQueue(8, 1)
	q.Push(event.NewKeyPress(trigger, 0))
	if err := m.ProcessEvents(q, nil, nil); err != nil {
		t.Fatalf("ProcessEvents with nil callbacks: %v", err)
	}
}

func TestPressReleaseMacroPassesThroughOtherCodes(t *testing.T) {
	trigger := keycode.PressReleaseCode(1)
	other := keycode.HID(keycode.UsageA)
	var fired bool
	m := NewPressReleaseMacro("m", trigger, func() { fired = true }, nil)
	m.SetIndex(0)
	q := event.NewQueue(8, 1)
	q.Push(event.NewKeyPress(other, 0))
	if err := m.ProcessEvents(q, nil, nil); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if fired {
		t.Errorf("callback fired for an unrelated code")
	}
}
