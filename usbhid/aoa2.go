// Package usbhid implements output.Port over a real HID transport
// (AOA2, adapted from the teacher's Android accessory link) and an
// in-memory test double.
package usbhid

import (
	"fmt"

	"github.com/keyplexfw/keyplex/aoa"
	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
)

// AOA2Port implements output.Port over an Android Open Accessory 2.0
// HID link, adapted from aoa.Device: instead of the teacher's fixed
// PTT/touch descriptors, it registers the keyboard and consumer-control
// descriptors this library actually drives, and packs USBKeyboard's
// coalesced state into the reports AOA2 expects.
type AOA2Port struct {
	dev          *aoa.Device
	keyboardID   uint16
	consumerID   uint16
}

// OpenAOA2 opens a connection to the first accessory-mode device
// matching serial (empty matches any) and registers the keyboard and
// consumer-control HID descriptors on it.
func OpenAOA2(serial string) (*AOA2Port, error) {
	dev, err := aoa.Open(serial)
	if err != nil {
		return nil, err
	}

	kbID, err := dev.RegisterDescriptor(aoa.DescKeyboard)
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("usbhid: register keyboard descriptor: %w", err)
	}
	ccID, err := dev.RegisterDescriptor(aoa.DescConsumerControl)
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("usbhid: register consumer descriptor: %w", err)
	}

	return &AOA2Port{dev: dev, keyboardID: kbID, consumerID: ccID}, nil
}

// SendKeys packs mods and up to 6 active keys into the 8-byte boot
// keyboard report [mods, reserved, k0..k5] and sends it.
func (p *AOA2Port) SendKeys(mods keycode.Modifiers, keys []keycode.KeyCode) error {
	report := [8]byte{byte(mods), 0}
	for i := 0; i < 6 && i < len(keys); i++ {
		report[2+i] = byte(keys[i].HIDUsage())
	}
	if err := p.dev.SendReportTo(p.keyboardID, report[:]); err != nil {
		return fmt.Errorf("%w: %v", output.ErrIO, err)
	}
	return nil
}

// SendConsumer packs usage into the 2-byte little-endian consumer
// control report. A zero KeyCode sends the all-zero "no key" report.
func (p *AOA2Port) SendConsumer(usage keycode.KeyCode) error {
	var u uint16
	if usage != 0 {
		u = usage.ConsumerUsage()
	}
	report := []byte{byte(u & 0xFF), byte(u >> 8)}
	if err := p.dev.SendReportTo(p.consumerID, report); err != nil {
		return fmt.Errorf("%w: %v", output.ErrIO, err)
	}
	return nil
}

// SendUnicode always fails: Android has no universal accessory-mode
// text-entry method AOA2 can drive the way IBus/Alt-codes work on
// desktop OSes, so unicode entry is not a capability of this port.
func (p *AOA2Port) SendUnicode(_ rune) error {
	return output.ErrUnsupported
}

// BootKeyboardOnly reports true: the registered descriptor is the
// fixed 8-byte boot report, not a report-ID-multiplexed descriptor.
func (p *AOA2Port) BootKeyboardOnly() bool { return true }

// GetOS always reports OSAndroid for an AOA2 link.
func (p *AOA2Port) GetOS() output.OS { return output.OSAndroid }

// Ping reports whether the underlying USB connection is still alive,
// for runtime.Supervisor's health check loop.
func (p *AOA2Port) Ping() error { return p.dev.Ping() }

// Close releases the underlying USB device.
func (p *AOA2Port) Close() { p.dev.Close() }
