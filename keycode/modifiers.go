package keycode

// Modifiers is a bitmap over the eight USB HID keyboard modifier bits,
// in the same left-to-right order the HID keyboard report's modifier
// byte uses (bit 0 = LCtrl .. bit 7 = RGui).
type Modifiers uint8

const (
	ModLCtrl Modifiers = 1 << iota
	ModLShift
	ModLAlt
	ModLGui
	ModRCtrl
	ModRShift
	ModRAlt
	ModRGui
)

// Modifier HID usage IDs (Keyboard/Keypad page, 0xE0-0xE7), matching
// the teacher's keyboardDescriptor modifier-byte layout.
const (
	UsageLCtrl  uint16 = 0xE0
	UsageLShift uint16 = 0xE1
	UsageLAlt   uint16 = 0xE2
	UsageLGui   uint16 = 0xE3
	UsageRCtrl  uint16 = 0xE4
	UsageRShift uint16 = 0xE5
	UsageRAlt   uint16 = 0xE6
	UsageRGui   uint16 = 0xE7
)

var modifierByHIDUsage = map[uint16]Modifiers{
	UsageLCtrl:  ModLCtrl,
	UsageLShift: ModLShift,
	UsageLAlt:   ModLAlt,
	UsageLGui:   ModLGui,
	UsageRCtrl:  ModRCtrl,
	UsageRShift: ModRShift,
	UsageRAlt:   ModRAlt,
	UsageRGui:   ModRGui,
}

// ModifierBit returns the Modifiers bit for code if code is a modifier
// HID usage, and ok=false otherwise.
func ModifierBit(code KeyCode) (bit Modifiers, ok bool) {
	if !code.IsHIDUsage() {
		return 0, false
	}
	bit, ok = modifierByHIDUsage[code.HIDUsage()]
	return bit, ok
}

// Has reports whether all bits in other are set in m.
func (m Modifiers) Has(other Modifiers) bool { return m&other == other }

// Set returns m with bit set.
func (m Modifiers) Set(bit Modifiers) Modifiers { return m | bit }

// Clear returns m with bit cleared.
func (m Modifiers) Clear(bit Modifiers) Modifiers { return m &^ bit }

// AnyShift reports whether either shift bit is set — handlers that
// decide between shifted/unshifted variants only care about this.
func (m Modifiers) AnyShift() bool {
	return m.Has(ModLShift) || m.Has(ModRShift)
}
