// Package config loads the YAML-described pipeline layout (Keymap)
// into a frozen pipeline.Pipeline, and persists the small JSON
// Settings blob the daemon needs across restarts, following the
// teacher's config package almost exactly for the latter.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Keymap is the YAML-decoded declarative description of a pipeline: a
// single ordered list of stages. Document order is pipeline order
// (spec.md §6: "built once... then frozen"), which matters for layer
// stages specifically — a LayerToggle stage must be written before
// every layer stage it can enable/disable/toggle, since a rewrite that
// already happened earlier in the same pass can't un-happen (§4.13 of
// this library's extended design).
type Keymap struct {
	Stages []StageSpec `yaml:"stages"`
}

// StageSpec describes one pipeline stage: either a named layer table
// (Type "layers" or "rewrite_layers") or a handler (any other Type).
// Only the fields relevant to Type are populated; the rest are left at
// zero value by the YAML decoder.
type StageSpec struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`

	// layers / rewrite_layers
	Enabled bool         `yaml:"enabled,omitempty"`
	Remap   []RemapEntry `yaml:"remap,omitempty"`

	// layer_toggle
	Bindings []ToggleBinding `yaml:"bindings,omitempty"`

	// one_shot
	Trigger          string `yaml:"trigger,omitempty"`
	Action           string `yaml:"action_key,omitempty"`
	HoldTimeoutMs    uint64 `yaml:"hold_timeout_ms,omitempty"`
	ReleaseTimeoutMs uint64 `yaml:"release_timeout_ms,omitempty"`

	// sticky_macro
	Target string `yaml:"target,omitempty"`

	// space_cadet / tap_long_tap
	TapCode   string `yaml:"tap_code,omitempty"`
	HoldCode  string `yaml:"hold_code,omitempty"`
	LongCode  string `yaml:"long_code,omitempty"`
	TimeoutMs uint64 `yaml:"timeout_ms,omitempty"`

	// sequence
	Backspaces int    `yaml:"backspaces,omitempty"`
	Payload    string `yaml:"payload,omitempty"`
	SenderName string `yaml:"sender,omitempty"`

	// send_string
	ChunkSize int `yaml:"chunk_size,omitempty"`
}

// RemapEntry describes one physical-code -> action mapping within a
// layer. Action is one of "remap", "shifted_variant", "string"; String
// entries ignore Unshifted/Shifted, and rewrite_layers entries ignore
// Action entirely (they're always a plain remap).
type RemapEntry struct {
	From      string `yaml:"from"`
	Action    string `yaml:"action,omitempty"`
	To        string `yaml:"to,omitempty"`
	Unshifted string `yaml:"unshifted,omitempty"`
	Shifted   string `yaml:"shifted,omitempty"`
	String    string `yaml:"string,omitempty"`
}

// ToggleBinding is one trigger->layer-operation binding inside a
// layer_toggle stage.
type ToggleBinding struct {
	Trigger string `yaml:"trigger"`
	Layer   string `yaml:"layer"`
	Op      string `yaml:"op"` // "enable", "disable", "toggle", "momentary"
}

// ParseKeymap decodes a YAML document into a Keymap.
func ParseKeymap(data []byte) (*Keymap, error) {
	var km Keymap
	if err := yaml.Unmarshal(data, &km); err != nil {
		return nil, fmt.Errorf("config: parse keymap: %w", err)
	}
	return &km, nil
}

// Marshal encodes the Keymap back to YAML.
func (km *Keymap) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(km)
	if err != nil {
		return nil, fmt.Errorf("config: marshal keymap: %w", err)
	}
	return data, nil
}
