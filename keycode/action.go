package keycode

// Action code sub-ranges within the action-code half of private-use
// area A (see IsAction). Each handler that owns a sub-range allocates
// its own codes from it via the *Code constructors below; the ranges
// themselves are part of the stable ABI.
const (
	actionLayerToggleBase   uint16 = 0x0000 // 0x0000-0x0FFF: layer enable/disable/toggle
	actionOneShotBase       uint16 = 0x1000 // 0x1000-0x1FFF: one-shot triggers
	actionStickyBase        uint16 = 0x2000 // 0x2000-0x2FFF: sticky-macro triggers
	actionSpaceCadetBase    uint16 = 0x3000 // 0x3000-0x3FFF: space-cadet triggers
	actionTapLongTapBase    uint16 = 0x4000 // 0x4000-0x4FFF: tap/long-tap triggers
	actionSequenceBase      uint16 = 0x5000 // 0x5000-0x5FFF: sequence triggers
	actionPressReleaseBase  uint16 = 0x6000 // 0x6000-0x6FFF: press/release macro triggers
)

// LayerToggleCode builds the action code LayerToggle uses to identify
// layer n's toggle key. op distinguishes enable/disable/toggle/momentary
// so a single layer can expose more than one trigger if desired.
func LayerToggleCode(layer uint16, op LayerOp) KeyCode {
	return Action(actionLayerToggleBase + layer*4 + uint16(op))
}

// LayerOp enumerates the operations a LayerToggle trigger can perform.
type LayerOp uint16

const (
	LayerEnable LayerOp = iota
	LayerDisable
	LayerToggleState
	LayerMomentary
)

// OneShotCode builds a distinct action code for the n-th configured
// OneShot handler's trigger.
func OneShotCode(n uint16) KeyCode { return Action(actionOneShotBase + n) }

// StickyCode builds a distinct action code for the n-th configured
// StickyMacro handler's trigger.
func StickyCode(n uint16) KeyCode { return Action(actionStickyBase + n) }

// SpaceCadetCode builds a distinct action code for the n-th configured
// SpaceCadet handler's trigger.
func SpaceCadetCode(n uint16) KeyCode { return Action(actionSpaceCadetBase + n) }

// TapLongTapCode builds a distinct action code for the n-th configured
// TapAndLongTap handler's trigger.
func TapLongTapCode(n uint16) KeyCode { return Action(actionTapLongTapBase + n) }

// SequenceCode builds a distinct action code for the n-th configured
// Sequence handler's trigger.
func SequenceCode(n uint16) KeyCode { return Action(actionSequenceBase + n) }

// PressReleaseCode builds a distinct action code for the n-th
// configured PressReleaseMacro handler's trigger.
func PressReleaseCode(n uint16) KeyCode { return Action(actionPressReleaseBase + n) }
