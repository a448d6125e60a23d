package handlers

import (
	"testing"

	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
	"github.com/keyplexfw/keyplex/pipeline"
	"github.com/keyplexfw/keyplex/usbhid"
)

func TestSpaceCadetShortTapEmitsTapCode(t *testing.T) {
	trigger := keycode.SpaceCadetCode(1)
	tapCode := keycode.HID(keycode.UsageSpace)
	holdCode := keycode.HID(keycode.UsageLShift)

	s := NewSpaceCadet("sc", trigger, tapCode, holdCode, 200)
	port := usbhid.NewMemPort(output.OSLinux)
	d := pipeline.NewDriver(pipeline.New(s, NewUSBKeyboard("usb")), 16, port)

	if err := d.HandleKeyPress(trigger, 0); err != nil {
		t.Fatalf("press: %v", err)
	}
	if err := d.HandleKeyRelease(trigger, 10); err != nil {
		t.Fatalf("release: %v", err)
	}

	if d.QueueLen() != 0 {
		t.Fatalf("QueueLen() = %d, want 0 (tap should resolve fully)", d.QueueLen())
	}
	// The tap's press and release land in the same dispatch pass, so
	// they net to zero change against USBKeyboard's last-sent state —
	// it may never call SendKeys at all, or if it does, the report must
	// show zero keys and no hold modifier left active.
	if last, ok := port.LastKeyboardReport(); ok && (len(last.Keys) != 0 || last.Mods.Has(keycode.ModLShift)) {
		t.Errorf("after a short tap, last report = %+v, want zero keys and no hold modifier left active", last)
	}
}

func TestSpaceCadetHoldCommitsToModifier(t *testing.T) {
	trigger := keycode.SpaceCadetCode(1)
	tapCode := keycode.HID(keycode.UsageSpace)
	holdCode := keycode.HID(keycode.UsageLShift)

	s := NewSpaceCadet("sc", trigger, tapCode, holdCode, 50)
	port := usbhid.NewMemPort(output.OSLinux)
	d := pipeline.NewDriver(pipeline.New(s, NewUSBKeyboard("usb")), 16, port)

	if err := d.HandleKeyPress(trigger, 0); err != nil {
		t.Fatalf("press: %v", err)
	}
	if err := d.AddTimeout(60); err != nil {
		t.Fatalf("timeout: %v", err)
	}
	last, ok := port.LastKeyboardReport()
	if !ok || !last.Mods.Has(keycode.ModLShift) {
		t.Fatalf("report after a hold past timeout = %+v, want ModLShift set", last)
	}

	if err := d.HandleKeyRelease(trigger, 0); err != nil {
		t.Fatalf("release: %v", err)
	}
	last, ok = port.LastKeyboardReport()
	if !ok || last.Mods.Has(keycode.ModLShift) {
		t.Fatalf("report after releasing a held trigger = %+v, want ModLShift cleared", last)
	}
}

func TestSpaceCadetInterruptedByAnotherKeyCommitsToHold(t *testing.T) {
	// A key arriving before the tap timeout commits SpaceCadet to the
	// hold modifier immediately, covering the interrupted-by-another-key
	// half of spec §4.7 (no replay of the trigger's own tap).
	trigger := keycode.SpaceCadetCode(1)
	tapCode := keycode.HID(keycode.UsageSpace)
	holdCode := keycode.HID(keycode.UsageLShift)
	other := keycode.HID(keycode.UsageA)

	s := NewSpaceCadet("sc", trigger, tapCode, holdCode, 200)
	port := usbhid.NewMemPort(output.OSLinux)
	d := pipeline.NewDriver(pipeline.New(s, NewUSBKeyboard("usb")), 16, port)

	if err := d.HandleKeyPress(trigger, 0); err != nil {
		t.Fatalf("trigger press: %v", err)
	}
	if err := d.HandleKeyPress(other, 0); err != nil {
		t.Fatalf("other key press: %v", err)
	}
	last, ok := port.LastKeyboardReport()
	if !ok || !last.Mods.Has(keycode.ModLShift) {
		t.Fatalf("report after interrupting key = %+v, want ModLShift committed", last)
	}
}
