package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/keyplexfw/keyplex/config"
	"github.com/keyplexfw/keyplex/keycode"
)

// bindingsFile is the simulator's stand-in for a matrix scanner: since
// there's no physical board to scan, each entry maps one OS-global
// hotkey combination to the KeyCode that a real scanner would report
// for that physical key position, using the same key-token grammar the
// keymap file uses (config.ResolveCode) so a binding's Physical field
// can name a plain key ("a"), a raw HID token ("f5"), or anything else
// resolveCode accepts.
type bindingsFile struct {
	Bindings []bindingSpec `yaml:"bindings"`
}

type bindingSpec struct {
	Hotkey   []string `yaml:"hotkey"`
	Physical string   `yaml:"physical"`
}

// resolvedBinding is a bindingSpec after its strings have been turned
// into the concrete types the hotkey package and the pipeline need.
type resolvedBinding struct {
	mods     []string
	key      string
	physical keycode.KeyCode
	label    string
}

func loadBindings(path string) ([]resolvedBinding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bindings %s: %w", path, err)
	}
	var bf bindingsFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("parse bindings %s: %w", path, err)
	}
	if len(bf.Bindings) == 0 {
		return nil, fmt.Errorf("bindings %s: no bindings declared", path)
	}

	out := make([]resolvedBinding, 0, len(bf.Bindings))
	for i, b := range bf.Bindings {
		if len(b.Hotkey) == 0 {
			return nil, fmt.Errorf("binding %d: hotkey must name at least one key", i)
		}
		code, err := config.ResolveCode(b.Physical)
		if err != nil {
			return nil, fmt.Errorf("binding %d: %w", i, err)
		}
		mods := b.Hotkey[:len(b.Hotkey)-1]
		key := b.Hotkey[len(b.Hotkey)-1]
		out = append(out, resolvedBinding{
			mods:     mods,
			key:      key,
			physical: code,
			label:    fmt.Sprintf("%v -> %s", b.Hotkey, b.Physical),
		})
	}
	return out, nil
}

// defaultBindingsYAML is written to disk the first time the simulator
// runs without a bindings file, so there's something to edit rather
// than a cryptic "file not found".
const defaultBindingsYAML = `# keyplex-sim bindings: each entry fires one simulated physical key
# when its OS-global hotkey combination is pressed.
bindings:
  - hotkey: ["ctrl", "alt", "q"]
    physical: "a"
  - hotkey: ["ctrl", "alt", "w"]
    physical: "mod:lshift"
  - hotkey: ["ctrl", "alt", "e"]
    physical: "action:oneshot:0"
`
