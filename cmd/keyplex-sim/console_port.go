package main

import (
	"log"
	goruntime "runtime"

	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
)

// consolePort is the simulator's output.Port: there's no real USB HID
// link to drive, so every report is logged instead, the way a
// developer watching this simulator wants to see what the configured
// keymap would have sent to a real device. Grounded on usbhid.MemPort's
// shape (same method surface, same OS/BootOnly fields) but logs
// instead of recording, since the point here is a human reading live
// output rather than a test asserting on it afterward.
type consolePort struct {
	os       output.OS
	bootOnly bool
}

func newConsolePort() *consolePort {
	os := output.OSOther
	switch goruntime.GOOS {
	case "linux":
		os = output.OSLinux
	case "windows":
		os = output.OSWindows
	case "darwin":
		os = output.OSMac
	}
	return &consolePort{os: os}
}

func (c *consolePort) SendKeys(mods keycode.Modifiers, keys []keycode.KeyCode) error {
	log.Printf("[keyplex-sim] keyboard report: mods=%v keys=%v", mods, keys)
	return nil
}

func (c *consolePort) SendConsumer(usage keycode.KeyCode) error {
	log.Printf("[keyplex-sim] consumer report: usage=%v", usage)
	return nil
}

func (c *consolePort) SendUnicode(codepoint rune) error {
	log.Printf("[keyplex-sim] unicode: %s (U+%04X)", string(codepoint), codepoint)
	return nil
}

func (c *consolePort) BootKeyboardOnly() bool { return c.bootOnly }
func (c *consolePort) GetOS() output.OS       { return c.os }
