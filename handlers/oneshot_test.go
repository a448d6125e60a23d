package handlers

import (
	"testing"

	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
	"github.com/keyplexfw/keyplex/pipeline"
	"github.com/keyplexfw/keyplex/usbhid"
)

// TestOneShotShiftThenAProducesTwoReports covers spec §4.5's one-shot
// modifier: a tap of the trigger primes a shift, and the very next key
// consumes it. The consuming key's own report (shift still active) and
// the shift's release must land as two separate keyboard reports
// rather than one coalesced report, since handleArmed resolves the
// consuming press over two dispatch passes.
func TestOneShotShiftThenAProducesTwoReports(t *testing.T) {
	trigger := keycode.OneShotCode(1)
	action := keycode.HID(keycode.UsageLShift)
	a := keycode.HID(keycode.UsageA)

	o := NewOneShot("osft", trigger, action, 200, 200)
	port := usbhid.NewMemPort(output.OSLinux)
	d := pipeline.NewDriver(pipeline.New(o, NewUSBKeyboard("usb")), 16, port)

	if err := d.HandleKeyPress(trigger, 0); err != nil {
		t.Fatalf("trigger press: %v", err)
	}
	if err := d.HandleKeyRelease(trigger, 0); err != nil {
		t.Fatalf("trigger release: %v", err)
	}
	if err := d.HandleKeyPress(a, 0); err != nil {
		t.Fatalf("a press: %v", err)
	}

	if len(port.KeyboardReports) < 2 {
		t.Fatalf("got %d keyboard reports, want at least 2 (consuming press, then action release)", len(port.KeyboardReports))
	}

	first := port.KeyboardReports[len(port.KeyboardReports)-2]
	if !first.Mods.Has(keycode.ModLShift) {
		t.Errorf("first report mods = %08b, want ModLShift set while the action is still active", first.Mods)
	}
	foundA := false
	for _, k := range first.Keys {
		if k == a {
			foundA = true
		}
	}
	if !foundA {
		t.Errorf("first report keys = %+v, want %v", first.Keys, a)
	}

	last, _ := port.LastKeyboardReport()
	if last.Mods.Has(keycode.ModLShift) {
		t.Errorf("last report mods = %08b, want ModLShift cleared after resolution", last.Mods)
	}
}

// TestOneShotHeldActsLikeOrdinaryModifier covers the trigger held past
// holdTimeoutMs: the action stays active for as long as the trigger is
// physically down, with no one-shot consumption semantics.
func TestOneShotHeldActsLikeOrdinaryModifier(t *testing.T) {
	trigger := keycode.OneShotCode(1)
	action := keycode.HID(keycode.UsageLShift)

	o := NewOneShot("osft", trigger, action, 10, 200)
	port := usbhid.NewMemPort(output.OSLinux)
	d := pipeline.NewDriver(pipeline.New(o, NewUSBKeyboard("usb")), 16, port)

	if err := d.HandleKeyPress(trigger, 0); err != nil {
		t.Fatalf("trigger press: %v", err)
	}
	if err := d.AddTimeout(20); err != nil {
		t.Fatalf("timeout: %v", err)
	}
	if err := d.HandleKeyRelease(trigger, 0); err != nil {
		t.Fatalf("trigger release: %v", err)
	}
	last, ok := port.LastKeyboardReport()
	if !ok || last.Mods.Has(keycode.ModLShift) {
		t.Fatalf("report after a held-past-timeout release = %+v, want ModLShift cleared", last)
	}
}
