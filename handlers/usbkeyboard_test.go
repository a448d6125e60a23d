package handlers

import (
	"errors"
	"testing"

	"github.com/keyplexfw/keyplex/event"
	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
)

func TestUSBKeyboardCoalescesPressAndReleaseIntoOneCallPerPass(t *testing.T) {
	u := NewUSBKeyboard("usb")
	u.SetIndex(0)
	port := newRecordingPort()
	q := event.NewQueue(8, 1)

	a := keycode.HID(keycode.UsageA)
	b := keycode.HID(keycode.UsageB)
	q.Push(event.NewKeyPress(a, 0))
	q.Push(event.NewKeyPress(b, 0))
	q.Push(event.NewKeyRelease(a, 0))

	if err := u.ProcessEvents(q, port, &event.Clock{}); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if port.keyboardCalls != 1 {
		t.Fatalf("SendKeys called %d times for one pass, want 1", port.keyboardCalls)
	}
	if len(port.lastKeys) != 1 || port.lastKeys[0] != b {
		t.Fatalf("final keys = %+v, want [%v] ('a' pressed then released within the same pass)", port.lastKeys, b)
	}
}

func TestUSBKeyboardDropsPressPastRollover(t *testing.T) {
	u := NewUSBKeyboard("usb")
	u.SetIndex(0)
	port := newRecordingPort()
	q := event.NewQueue(16, 1)

	for i := 0; i < maxRolloverKeys+1; i++ {
		q.Push(event.NewKeyPress(keycode.HID(keycode.UsageA+uint16(i)), 0))
	}
	if err := u.ProcessEvents(q, port, &event.Clock{}); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if len(port.lastKeys) != maxRolloverKeys {
		t.Fatalf("len(keys) = %d, want the %d-key rollover cap", len(port.lastKeys), maxRolloverKeys)
	}
}

func TestUSBKeyboardTracksModifiersSeparatelyFromKeys(t *testing.T) {
	u := NewUSBKeyboard("usb")
	u.SetIndex(0)
	port := newRecordingPort()
	q := event.NewQueue(8, 1)

	shift := keycode.HID(keycode.UsageLShift)
	q.Push(event.NewKeyPress(shift, 0))
	if err := u.ProcessEvents(q, port, &event.Clock{}); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if !port.lastMods.Has(keycode.ModLShift) {
		t.Fatalf("mods = %08b, want ModLShift set", port.lastMods)
	}
	if len(port.lastKeys) != 0 {
		t.Fatalf("keys = %+v, want empty (a modifier isn't a rollover key)", port.lastKeys)
	}
}

func TestUSBKeyboardSendsConsumerReportsSeparately(t *testing.T) {
	u := NewUSBKeyboard("usb")
	u.SetIndex(0)
	port := newRecordingPort()
	q := event.NewQueue(8, 1)

	vol := keycode.Consumer(keycode.ConsumerVolumeUp)
	q.Push(event.NewKeyPress(vol, 0))
	if err := u.ProcessEvents(q, port, &event.Clock{}); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if port.keyboardCalls != 0 {
		t.Errorf("SendKeys called for a consumer usage, want 0 calls")
	}
	if port.consumerCalls != 1 || port.lastConsumer != vol {
		t.Errorf("consumer report = %v (%d calls), want %v once", port.lastConsumer, port.consumerCalls, vol)
	}
}

func TestUSBKeyboardReportsUnroutedUnicode(t *testing.T) {
	u := NewUSBKeyboard("usb")
	u.SetIndex(0)
	port := newRecordingPort()
	q := event.NewQueue(8, 1)

	q.Push(event.NewKeyPress(keycode.KeyCode('x'), 0))
	err := u.ProcessEvents(q, port, &event.Clock{})
	if !errors.Is(err, output.ErrUnroutedUnicode) {
		t.Fatalf("ProcessEvents err = %v, want output.ErrUnroutedUnicode", err)
	}
}

func TestUSBKeyboardRetriesAfterOutputBusyWithNoNewEvents(t *testing.T) {
	u := NewUSBKeyboard("usb")
	u.SetIndex(0)
	port := newRecordingPort()
	q := event.NewQueue(8, 1)

	a := keycode.HID(keycode.UsageA)
	q.Push(event.NewKeyPress(a, 0))

	port.keyboardErr = output.ErrBusy
	if err := u.ProcessEvents(q, port, &event.Clock{}); !errors.Is(err, output.ErrBusy) {
		t.Fatalf("ProcessEvents err = %v, want output.ErrBusy", err)
	}
	if port.keyboardCalls != 1 {
		t.Fatalf("SendKeys called %d times, want 1 (the failed attempt)", port.keyboardCalls)
	}

	// No new event reaches this handler on the next pass, but the press
	// is still unsent — lastSent must still disagree with current state
	// so the resend happens unconditionally.
	port.keyboardErr = nil
	if err := u.ProcessEvents(q, port, &event.Clock{}); err != nil {
		t.Fatalf("ProcessEvents (retry pass): %v", err)
	}
	if port.keyboardCalls != 2 {
		t.Fatalf("SendKeys called %d times across both passes, want 2 (busy, then retried)", port.keyboardCalls)
	}
	if len(port.lastKeys) != 1 || port.lastKeys[0] != a {
		t.Fatalf("final keys = %+v, want [%v] sent on retry", port.lastKeys, a)
	}

	// With nothing new and nothing left to retry, a third pass must not
	// resend.
	if err := u.ProcessEvents(q, port, &event.Clock{}); err != nil {
		t.Fatalf("ProcessEvents (idle pass): %v", err)
	}
	if port.keyboardCalls != 2 {
		t.Fatalf("SendKeys called %d times after an idle pass, want still 2 (nothing changed)", port.keyboardCalls)
	}
}

// recordingPort is a minimal output.Port that counts calls instead of
// just recording the final state, for assertions usbhid.MemPort can't
// make (it only keeps the cumulative report history, not a call tally
// distinguishing keyboard vs. consumer sends).
type recordingPort struct {
	keyboardCalls int
	consumerCalls int
	lastMods      keycode.Modifiers
	lastKeys      []keycode.KeyCode
	lastConsumer  keycode.KeyCode
	keyboardErr   error
}

func newRecordingPort() *recordingPort { return &recordingPort{} }

func (p *recordingPort) SendKeys(mods keycode.Modifiers, keys []keycode.KeyCode) error {
	p.keyboardCalls++
	if p.keyboardErr != nil {
		return p.keyboardErr
	}
	p.lastMods = mods
	p.lastKeys = append([]keycode.KeyCode(nil), keys...)
	return nil
}

func (p *recordingPort) SendConsumer(usage keycode.KeyCode) error {
	p.consumerCalls++
	p.lastConsumer = usage
	return nil
}

func (p *recordingPort) SendUnicode(rune) error { return nil }
func (p *recordingPort) BootKeyboardOnly() bool { return false }
func (p *recordingPort) GetOS() output.OS       { return output.OSLinux }
