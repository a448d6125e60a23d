// Package output defines the capability the pipeline's terminal
// handlers (USBKeyboard, UnicodeKeyboard) use to deliver HID reports
// and OS-specific unicode-entry sequences, and the external collaborator
// contract a host environment must satisfy to drive this library
// against real hardware.
package output

import (
	"errors"

	"github.com/keyplexfw/keyplex/keycode"
)

// OS identifies the host operating system a unicode-entry sequence
// must be shaped for.
type OS uint8

const (
	OSLinux OS = iota
	OSWindows
	OSMac
	OSAndroid
	OSOther
)

func (os OS) String() string {
	switch os {
	case OSLinux:
		return "linux"
	case OSWindows:
		return "windows"
	case OSMac:
		return "mac"
	case OSAndroid:
		return "android"
	default:
		return "other"
	}
}

// Port is the output capability provided by the host environment. All
// operations are fallible: ErrBusy signals a transient condition the
// caller should retry next pass without losing state; ErrIO signals a
// persistent failure the caller surfaces and logs but does not treat
// as fatal to the device; ErrUnsupported signals the port has no way
// to perform the requested operation at all (e.g. unicode entry on a
// port with no such mechanism).
type Port interface {
	// SendKeys transmits a keyboard HID report: the current modifier
	// byte plus up to six currently-active non-modifier usage codes.
	SendKeys(mods keycode.Modifiers, keys []keycode.KeyCode) error

	// SendConsumer transmits a consumer-control HID report for a single
	// active usage, or clears it when usage is zero.
	SendConsumer(usage keycode.KeyCode) error

	// SendUnicode performs an OS-specific unicode entry sequence for a
	// single code point (e.g. Linux Ctrl+Shift+U, Windows Alt-numpad).
	SendUnicode(codepoint rune) error

	// BootKeyboardOnly reports whether the sink only understands the
	// 8-byte USB boot-protocol keyboard report (no consumer page, no
	// N-key rollover). Handlers that build richer reports consult this
	// to decide whether to degrade gracefully.
	BootKeyboardOnly() bool

	// GetOS reports which unicode-entry convention SendUnicode should
	// use.
	GetOS() OS
}

var (
	// ErrBusy is returned when the sink cannot accept a report right
	// now; the caller must retain its state and retry next pass.
	ErrBusy = errors.New("output: busy")
	// ErrIO is returned on a persistent transport failure.
	ErrIO = errors.New("output: io error")
	// ErrUnsupported is returned when the port has no mechanism for the
	// requested operation.
	ErrUnsupported = errors.New("output: unsupported operation")
)
