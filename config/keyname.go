package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/keyplexfw/keyplex/keycode"
)

// hidUsageByName covers the common keys a keymap author writes by
// hand; anything else can be written as a raw "hid:0xNN" usage literal.
var hidUsageByName = map[string]uint16{
	"enter": keycode.UsageEnter, "escape": keycode.UsageEscape, "esc": keycode.UsageEscape,
	"backspace": keycode.UsageBackspace, "tab": keycode.UsageTab, "space": keycode.UsageSpace,
	"minus": keycode.UsageMinus, "equal": keycode.UsageEqual,
	"lbracket": keycode.UsageLBracket, "rbracket": keycode.UsageRBracket,
	"backslash": keycode.UsageBackslash, "semicolon": keycode.UsageSemicolon,
	"quote": keycode.UsageQuote, "grave": keycode.UsageGrave,
	"comma": keycode.UsageComma, "period": keycode.UsagePeriod, "slash": keycode.UsageSlash,
	"capslock": keycode.UsageCapsLock,
	"left":     keycode.UsageLeft, "right": keycode.UsageRight,
	"up": keycode.UsageUp, "down": keycode.UsageDown,
}

var modUsageByName = map[string]uint16{
	"lctrl": keycode.UsageLCtrl, "lshift": keycode.UsageLShift,
	"lalt": keycode.UsageLAlt, "lgui": keycode.UsageLGui,
	"rctrl": keycode.UsageRCtrl, "rshift": keycode.UsageRShift,
	"ralt": keycode.UsageRAlt, "rgui": keycode.UsageRGui,
}

var consumerUsageByName = map[string]uint16{
	"volumeup": keycode.ConsumerVolumeUp, "volumedown": keycode.ConsumerVolumeDown,
	"mute": keycode.ConsumerMute, "playpause": keycode.ConsumerPlayPause,
	"stop": keycode.ConsumerStop, "voiceassist": keycode.ConsumerVoiceAssist,
}

func hidUsageForSingleChar(s string) (uint16, bool) {
	if len(s) != 1 {
		return 0, false
	}
	r := rune(s[0])
	switch {
	case r >= 'a' && r <= 'z':
		return keycode.UsageA + uint16(r-'a'), true
	case r >= 'A' && r <= 'Z':
		return keycode.UsageA + uint16(r-'A'), true
	case r == '0':
		return keycode.Usage0, true
	case r >= '1' && r <= '9':
		return keycode.Usage1 + uint16(r-'1'), true
	}
	return 0, false
}

func hidUsageForFKey(s string) (uint16, bool) {
	if len(s) < 2 || (s[0] != 'f' && s[0] != 'F') {
		return 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 1 || n > 24 {
		return 0, false
	}
	switch {
	case n <= 12:
		return keycode.UsageF1 + uint16(n-1), true
	case n <= 20:
		return keycode.UsageF13 + uint16(n-13), true
	default:
		return keycode.UsageF20 + uint16(n-20), true
	}
}

// resolveCode parses one keymap-entry token into a KeyCode. Grammar:
//
//	a letter/digit/named key   -> HID keyboard-page usage  ("a", "enter", "f5")
//	mod:<name>                 -> HID modifier usage        ("mod:lshift")
//	consumer:<name>             -> HID consumer-page usage   ("consumer:mute")
//	hid:0x<hex>                 -> raw HID keyboard-page usage ("hid:0x46")
//	action:oneshot:<n>          -> OneShot n's trigger/action code
//	action:sticky:<n>
//	action:spacecadet:<n>
//	action:taplongtap:<n>
//	action:sequence:<n>
//	action:pressrelease:<n>
//	action:layertoggle:<layer>:<op>  op one of enable/disable/toggle/momentary
//	user:<n>                    -> private-use-area-B user code
//	unicode:U+<hex>             -> raw unicode code point
// ResolveCode exports the keymap token grammar for callers outside this
// package that need to turn the same key-name strings into KeyCodes —
// cmd/keyplex-sim's simulated-scanner bindings file, notably — without
// duplicating the grammar.
func ResolveCode(s string) (keycode.KeyCode, error) {
	return resolveCode(s)
}

func resolveCode(s string) (keycode.KeyCode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("config: empty key token")
	}

	if u, ok := modUsageByName[strings.ToLower(s)]; ok {
		return keycode.HID(u), nil
	}
	if strings.HasPrefix(s, "mod:") {
		name := strings.ToLower(strings.TrimPrefix(s, "mod:"))
		if u, ok := modUsageByName[name]; ok {
			return keycode.HID(u), nil
		}
		return 0, fmt.Errorf("config: unknown modifier %q", name)
	}
	if strings.HasPrefix(s, "consumer:") {
		name := strings.ToLower(strings.TrimPrefix(s, "consumer:"))
		if u, ok := consumerUsageByName[name]; ok {
			return keycode.Consumer(u), nil
		}
		return 0, fmt.Errorf("config: unknown consumer key %q", name)
	}
	if strings.HasPrefix(s, "user:") {
		n, err := strconv.ParseUint(strings.TrimPrefix(s, "user:"), 10, 32)
		if err != nil {
			return 0, fmt.Errorf("config: bad user code %q: %w", s, err)
		}
		return keycode.UserCode(uint32(n)), nil
	}
	if strings.HasPrefix(s, "unicode:U+") {
		n, err := strconv.ParseUint(strings.TrimPrefix(s, "unicode:U+"), 16, 32)
		if err != nil {
			return 0, fmt.Errorf("config: bad unicode token %q: %w", s, err)
		}
		return keycode.KeyCode(n), nil
	}
	if strings.HasPrefix(s, "hid:") {
		n, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimPrefix(s, "hid:"), "0x"), 16, 16)
		if err != nil {
			return 0, fmt.Errorf("config: bad hid token %q: %w", s, err)
		}
		return keycode.HID(uint16(n)), nil
	}
	if strings.HasPrefix(s, "action:") {
		return resolveActionCode(strings.TrimPrefix(s, "action:"))
	}

	lower := strings.ToLower(s)
	if u, ok := hidUsageByName[lower]; ok {
		return keycode.HID(u), nil
	}
	if u, ok := hidUsageForFKey(s); ok {
		return keycode.HID(u), nil
	}
	if u, ok := hidUsageForSingleChar(s); ok {
		return keycode.HID(u), nil
	}
	return 0, fmt.Errorf("config: unrecognized key token %q", s)
}

func resolveActionCode(rest string) (keycode.KeyCode, error) {
	parts := strings.Split(rest, ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("config: malformed action token %q", rest)
	}
	kind := parts[0]
	switch kind {
	case "oneshot", "sticky", "spacecadet", "taplongtap", "sequence", "pressrelease":
		n, err := strconv.ParseUint(parts[1], 10, 16)
		if err != nil {
			return 0, fmt.Errorf("config: bad index in action token %q: %w", rest, err)
		}
		switch kind {
		case "oneshot":
			return keycode.OneShotCode(uint16(n)), nil
		case "sticky":
			return keycode.StickyCode(uint16(n)), nil
		case "spacecadet":
			return keycode.SpaceCadetCode(uint16(n)), nil
		case "taplongtap":
			return keycode.TapLongTapCode(uint16(n)), nil
		case "sequence":
			return keycode.SequenceCode(uint16(n)), nil
		case "pressrelease":
			return keycode.PressReleaseCode(uint16(n)), nil
		}
	case "layertoggle":
		if len(parts) != 3 {
			return 0, fmt.Errorf("config: layertoggle action needs layer:op, got %q", rest)
		}
		layer, err := strconv.ParseUint(parts[1], 10, 16)
		if err != nil {
			return 0, fmt.Errorf("config: bad layer index in %q: %w", rest, err)
		}
		op, err := parseLayerOp(parts[2])
		if err != nil {
			return 0, err
		}
		return keycode.LayerToggleCode(uint16(layer), op), nil
	}
	return 0, fmt.Errorf("config: unknown action kind %q", kind)
}

func parseLayerOp(s string) (keycode.LayerOp, error) {
	switch strings.ToLower(s) {
	case "enable":
		return keycode.LayerEnable, nil
	case "disable":
		return keycode.LayerDisable, nil
	case "toggle":
		return keycode.LayerToggleState, nil
	case "momentary":
		return keycode.LayerMomentary, nil
	}
	return 0, fmt.Errorf("config: unknown layer op %q", s)
}
