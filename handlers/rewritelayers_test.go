package handlers

import (
	"testing"

	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
	"github.com/keyplexfw/keyplex/pipeline"
	"github.com/keyplexfw/keyplex/usbhid"
)

func TestRewriteLayersRemapPressAndRelease(t *testing.T) {
	physical := keycode.HID(keycode.UsageF1)
	target := keycode.HID(keycode.UsageEscape)

	r := NewRewriteLayers("nav", map[keycode.KeyCode]keycode.KeyCode{physical: target}, true)
	port := usbhid.NewMemPort(output.OSLinux)
	d := pipeline.NewDriver(pipeline.New(r, NewUSBKeyboard("usb")), 16, port)

	if err := d.HandleKeyPress(physical, 0); err != nil {
		t.Fatalf("press: %v", err)
	}
	rep, ok := port.LastKeyboardReport()
	if !ok || len(rep.Keys) != 1 || rep.Keys[0] != target {
		t.Fatalf("report = %+v, want one key %v", rep, target)
	}

	if err := d.HandleKeyRelease(physical, 0); err != nil {
		t.Fatalf("release: %v", err)
	}
	if rep, ok := port.LastKeyboardReport(); !ok || len(rep.Keys) != 0 {
		t.Fatalf("report after release = %+v, want zero keys", rep)
	}
}

func TestRewriteLayersReleaseSurvivesDisable(t *testing.T) {
	physical := keycode.HID(keycode.UsageF1)
	target := keycode.HID(keycode.UsageEscape)

	r := NewRewriteLayers("nav", map[keycode.KeyCode]keycode.KeyCode{physical: target}, true)
	port := usbhid.NewMemPort(output.OSLinux)
	d := pipeline.NewDriver(pipeline.New(r, NewUSBKeyboard("usb")), 16, port)

	if err := d.HandleKeyPress(physical, 0); err != nil {
		t.Fatalf("press: %v", err)
	}
	r.Disable()
	if err := d.HandleKeyRelease(physical, 0); err != nil {
		t.Fatalf("release: %v", err)
	}
	if rep, ok := port.LastKeyboardReport(); !ok || len(rep.Keys) != 0 {
		t.Fatalf("report after disabled-mid-press release = %+v, want the rewritten key cleared", rep)
	}
}

func TestRewriteLayersDisabledPassesThroughUnmapped(t *testing.T) {
	physical := keycode.HID(keycode.UsageF1)
	target := keycode.HID(keycode.UsageEscape)

	r := NewRewriteLayers("nav", map[keycode.KeyCode]keycode.KeyCode{physical: target}, false)
	port := usbhid.NewMemPort(output.OSLinux)
	d := pipeline.NewDriver(pipeline.New(r, NewUSBKeyboard("usb")), 16, port)

	if err := d.HandleKeyPress(physical, 0); err != nil {
		t.Fatalf("press: %v", err)
	}
	rep, ok := port.LastKeyboardReport()
	if !ok || len(rep.Keys) != 1 || rep.Keys[0] != physical {
		t.Fatalf("report with layer disabled = %+v, want unmapped key %v", rep, physical)
	}
}
