// keyplex-inspect pretty-prints a keymap YAML file as a human-readable
// stage table, extending internal/config/config.go's HotkeyConfig.String()
// — which formatted a single hotkey binding as "Ctrl+Alt+R" — into a
// full per-stage, per-binding table covering every stage kind this
// library builds.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/keyplexfw/keyplex/config"
)

func main() {
	path := flag.String("keymap", "keymap.yaml", "path to the keymap YAML file")
	flag.Parse()

	data, err := os.ReadFile(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keyplex-inspect: %v\n", err)
		os.Exit(1)
	}
	km, err := config.ParseKeymap(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keyplex-inspect: %v\n", err)
		os.Exit(1)
	}

	if _, err := config.Build(km); err != nil {
		fmt.Fprintf(os.Stderr, "keyplex-inspect: warning: keymap does not build: %v\n", err)
	}

	printStageTable(km)
}

// row is one printed line's columns, before alignment.
type row struct {
	pos, kind, name, detail string
}

func printStageTable(km *config.Keymap) {
	rows := make([]row, 0, len(km.Stages))
	for i, st := range km.Stages {
		rows = append(rows, row{
			pos:    fmt.Sprintf("%d", i),
			kind:   st.Type,
			name:   st.Name,
			detail: describeStage(st),
		})
	}

	widths := [4]int{len("#"), len("type"), len("name"), len("detail")}
	for _, r := range rows {
		widths[0] = maxWidth(widths[0], r.pos)
		widths[1] = maxWidth(widths[1], r.kind)
		widths[2] = maxWidth(widths[2], r.name)
		widths[3] = maxWidth(widths[3], r.detail)
	}

	printRow(widths, "#", "type", "name", "detail")
	printRow(widths, strings.Repeat("-", widths[0]), strings.Repeat("-", widths[1]),
		strings.Repeat("-", widths[2]), strings.Repeat("-", widths[3]))
	for _, r := range rows {
		printRow(widths, r.pos, r.kind, r.name, r.detail)
	}
}

func describeStage(st config.StageSpec) string {
	switch st.Type {
	case "layers", "rewrite_layers":
		return fmt.Sprintf("enabled=%v remap_entries=%d", st.Enabled, len(st.Remap))
	case "layer_toggle":
		parts := make([]string, 0, len(st.Bindings))
		for _, b := range st.Bindings {
			parts = append(parts, fmt.Sprintf("%s->%s:%s", b.Trigger, b.Layer, b.Op))
		}
		return strings.Join(parts, ", ")
	case "one_shot":
		return fmt.Sprintf("trigger=%s action=%s hold=%dms release=%dms",
			st.Trigger, st.Action, st.HoldTimeoutMs, st.ReleaseTimeoutMs)
	case "sticky_macro":
		return fmt.Sprintf("trigger=%s target=%s", st.Trigger, st.Target)
	case "space_cadet":
		return fmt.Sprintf("trigger=%s tap=%s hold=%s timeout=%dms",
			st.Trigger, st.TapCode, st.HoldCode, st.TimeoutMs)
	case "tap_long_tap":
		return fmt.Sprintf("trigger=%s tap=%s long=%s timeout=%dms",
			st.Trigger, st.TapCode, st.LongCode, st.TimeoutMs)
	case "sequence":
		return fmt.Sprintf("trigger=%s backspaces=%d payload=%q sender=%s",
			st.Trigger, st.Backspaces, st.Payload, st.SenderName)
	case "press_release_macro":
		return fmt.Sprintf("trigger=%s action=%s", st.Trigger, st.Action)
	case "send_string":
		return fmt.Sprintf("chunk_size=%d", st.ChunkSize)
	case "unicode_keyboard", "usb_keyboard":
		return "(terminal stage)"
	default:
		return "(unknown stage type)"
	}
}

// stringWidth sums RuneWidth across a string — go-runewidth's own
// StringWidth helper isn't part of the version the teacher pack pins
// (only RuneWidth is used anywhere in it), so this builds the same
// thing from the one function that's actually grounded.
func stringWidth(s string) int {
	w := 0
	for _, r := range s {
		w += runewidth.RuneWidth(r)
	}
	return w
}

func maxWidth(cur int, s string) int {
	if w := stringWidth(s); w > cur {
		return w
	}
	return cur
}

// padRight right-pads s with spaces until it reaches display width w,
// accounting for double-width runes (e.g. in macro payload strings)
// rather than assuming one rune is one column.
func padRight(s string, w int) string {
	pad := w - stringWidth(s)
	if pad <= 0 {
		return s
	}
	return s + strings.Repeat(" ", pad)
}

func printRow(widths [4]int, a, b, c, d string) {
	fmt.Printf("%s  %s  %s  %s\n",
		padRight(a, widths[0]),
		padRight(b, widths[1]),
		padRight(c, widths[2]),
		padRight(d, widths[3]),
	)
}
