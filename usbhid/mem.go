package usbhid

import (
	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
)

// KeyboardReport is one recorded call to MemPort.SendKeys.
type KeyboardReport struct {
	Mods keycode.Modifiers
	Keys []keycode.KeyCode
}

// MemPort is an in-memory output.Port recording every report it's
// asked to send, for tests that assert on exact HID report sequences
// (spec §8's "expect reports" scenarios) without any real transport.
type MemPort struct {
	OS       output.OS
	BootOnly bool

	KeyboardReports []KeyboardReport
	ConsumerReports []keycode.KeyCode
	UnicodeSent     []rune

	// UnicodeErr, if set, is returned by every SendUnicode call instead
	// of recording it — used to simulate a port with no unicode-entry
	// capability (output.ErrUnsupported).
	UnicodeErr error
}

// NewMemPort builds a MemPort reporting the given OS.
func NewMemPort(os output.OS) *MemPort {
	return &MemPort{OS: os}
}

func (m *MemPort) SendKeys(mods keycode.Modifiers, keys []keycode.KeyCode) error {
	cp := make([]keycode.KeyCode, len(keys))
	copy(cp, keys)
	m.KeyboardReports = append(m.KeyboardReports, KeyboardReport{Mods: mods, Keys: cp})
	return nil
}

func (m *MemPort) SendConsumer(usage keycode.KeyCode) error {
	m.ConsumerReports = append(m.ConsumerReports, usage)
	return nil
}

func (m *MemPort) SendUnicode(codepoint rune) error {
	if m.UnicodeErr != nil {
		return m.UnicodeErr
	}
	m.UnicodeSent = append(m.UnicodeSent, codepoint)
	return nil
}

func (m *MemPort) BootKeyboardOnly() bool { return m.BootOnly }
func (m *MemPort) GetOS() output.OS       { return m.OS }

// LastKeyboardReport returns the most recently recorded keyboard
// report, if any.
func (m *MemPort) LastKeyboardReport() (KeyboardReport, bool) {
	if len(m.KeyboardReports) == 0 {
		return KeyboardReport{}, false
	}
	return m.KeyboardReports[len(m.KeyboardReports)-1], true
}
