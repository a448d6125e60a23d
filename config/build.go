package config

import (
	"fmt"

	"github.com/keyplexfw/keyplex/handlers"
	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/pipeline"
)

// Build constructs the frozen pipeline.Pipeline a Keymap describes, in
// document order.
//
// Layer stages (layers/rewrite_layers) and send_string stages are
// instantiated in a first pass, by name, before any other stage is
// built — a layer_toggle stage is free to bind a layer, and a sequence
// stage a sender, declared anywhere in the document.
// What Build does enforce, in a second pass, is the ordering
// invariant that actually matters to dispatch: a layer_toggle stage
// must sit earlier in pipeline order than every layer it can
// enable/disable/toggle, so a toggle decided this pass is visible to
// that layer's own ProcessEvents call in the same pass rather than
// only from the next one (§4.13 of this library's extended design).
func Build(km *Keymap) (*pipeline.Pipeline, error) {
	layerPos := make(map[string]int)
	layersByName := make(map[string]handlers.Toggleable)
	sendersByName := make(map[string]*handlers.SendString)

	built := make([]pipeline.Handler, len(km.Stages))

	for i, st := range km.Stages {
		switch st.Type {
		case "rewrite_layers":
			h, err := buildRewriteLayers(st)
			if err != nil {
				return nil, fmt.Errorf("config: stage #%d %q: %w", i, st.Name, err)
			}
			built[i] = h
			if st.Name != "" {
				layerPos[st.Name] = i
				layersByName[st.Name] = h
			}
		case "layers":
			h, err := buildLayers(st)
			if err != nil {
				return nil, fmt.Errorf("config: stage #%d %q: %w", i, st.Name, err)
			}
			built[i] = h
			if st.Name != "" {
				layerPos[st.Name] = i
				layersByName[st.Name] = h
			}
		case "send_string":
			h := handlers.NewSendString(st.Name, st.ChunkSize)
			built[i] = h
			if st.Name != "" {
				sendersByName[st.Name] = h
			}
		}
	}

	stages := make([]pipeline.Handler, len(km.Stages))
	for i, st := range km.Stages {
		if built[i] != nil {
			stages[i] = built[i]
			continue
		}

		h, err := buildHandlerStage(i, st, layerPos, layersByName, sendersByName)
		if err != nil {
			return nil, fmt.Errorf("config: stage #%d %q (%s): %w", i, st.Name, st.Type, err)
		}
		if ss, ok := h.(*handlers.SendString); ok && st.Name != "" {
			sendersByName[st.Name] = ss
		}
		stages[i] = h
	}

	for i, h := range stages {
		if h == nil {
			return nil, fmt.Errorf("config: stage #%d %q: unknown stage type %q", i, km.Stages[i].Name, km.Stages[i].Type)
		}
	}

	if len(stages) == 0 {
		return nil, fmt.Errorf("config: keymap has no stages")
	}
	return pipeline.New(stages...), nil
}

func buildRewriteLayers(st StageSpec) (*handlers.RewriteLayers, error) {
	remap := make(map[keycode.KeyCode]keycode.KeyCode, len(st.Remap))
	for _, e := range st.Remap {
		from, err := resolveCode(e.From)
		if err != nil {
			return nil, err
		}
		to, err := resolveCode(e.To)
		if err != nil {
			return nil, err
		}
		remap[from] = to
	}
	return handlers.NewRewriteLayers(st.Name, remap, st.Enabled), nil
}

func buildLayers(st StageSpec) (*handlers.Layers, error) {
	remap := make(map[keycode.KeyCode]handlers.LayerAction, len(st.Remap))
	for _, e := range st.Remap {
		from, err := resolveCode(e.From)
		if err != nil {
			return nil, err
		}
		action, err := buildLayerAction(e)
		if err != nil {
			return nil, err
		}
		remap[from] = action
	}
	return handlers.NewLayers(st.Name, remap, st.Enabled), nil
}

func buildLayerAction(e RemapEntry) (handlers.LayerAction, error) {
	switch e.Action {
	case "", "remap":
		to, err := resolveCode(e.To)
		if err != nil {
			return handlers.LayerAction{}, err
		}
		return handlers.LayerAction{Kind: handlers.ActionRemap, Code: to}, nil
	case "shifted_variant":
		unshifted, err := resolveCode(e.Unshifted)
		if err != nil {
			return handlers.LayerAction{}, err
		}
		shifted, err := resolveCode(e.Shifted)
		if err != nil {
			return handlers.LayerAction{}, err
		}
		return handlers.LayerAction{Kind: handlers.ActionShiftedVariant, Unshifted: unshifted, Shifted: shifted}, nil
	case "string":
		return handlers.LayerAction{Kind: handlers.ActionString, String: e.String}, nil
	default:
		return handlers.LayerAction{}, fmt.Errorf("unknown remap action %q", e.Action)
	}
}

func buildHandlerStage(pos int, st StageSpec, layerPos map[string]int, layersByName map[string]handlers.Toggleable, sendersByName map[string]*handlers.SendString) (pipeline.Handler, error) {
	switch st.Type {
	case "layer_toggle":
		lt := handlers.NewLayerToggle(st.Name)
		for _, b := range st.Bindings {
			trigger, err := resolveCode(b.Trigger)
			if err != nil {
				return nil, err
			}
			target, ok := layersByName[b.Layer]
			if !ok {
				return nil, fmt.Errorf("binding refers to unknown layer %q", b.Layer)
			}
			if layerPos[b.Layer] <= pos {
				return nil, fmt.Errorf("binding to layer %q must precede that layer in pipeline order, not follow it", b.Layer)
			}
			op, err := parseLayerOp(b.Op)
			if err != nil {
				return nil, err
			}
			lt.Bind(trigger, target, op)
		}
		return lt, nil

	case "one_shot":
		trigger, err := resolveCode(st.Trigger)
		if err != nil {
			return nil, err
		}
		action, err := resolveCode(st.Action)
		if err != nil {
			return nil, err
		}
		return handlers.NewOneShot(st.Name, trigger, action, st.HoldTimeoutMs, st.ReleaseTimeoutMs), nil

	case "sticky_macro":
		trigger, err := resolveCode(st.Trigger)
		if err != nil {
			return nil, err
		}
		target, err := resolveCode(st.Target)
		if err != nil {
			return nil, err
		}
		return handlers.NewStickyMacro(st.Name, trigger, target), nil

	case "space_cadet":
		trigger, err := resolveCode(st.Trigger)
		if err != nil {
			return nil, err
		}
		tap, err := resolveCode(st.TapCode)
		if err != nil {
			return nil, err
		}
		hold, err := resolveCode(st.HoldCode)
		if err != nil {
			return nil, err
		}
		return handlers.NewSpaceCadet(st.Name, trigger, tap, hold, st.TimeoutMs), nil

	case "tap_long_tap":
		trigger, err := resolveCode(st.Trigger)
		if err != nil {
			return nil, err
		}
		tap, err := resolveCode(st.TapCode)
		if err != nil {
			return nil, err
		}
		long, err := resolveCode(st.LongCode)
		if err != nil {
			return nil, err
		}
		return handlers.NewTapAndLongTap(st.Name, trigger, tap, long, st.TimeoutMs), nil

	case "send_string":
		return handlers.NewSendString(st.Name, st.ChunkSize), nil

	case "sequence":
		trigger, err := resolveCode(st.Trigger)
		if err != nil {
			return nil, err
		}
		sender, ok := sendersByName[st.SenderName]
		if !ok {
			return nil, fmt.Errorf("refers to unknown send_string sender %q", st.SenderName)
		}
		return handlers.NewSequence(st.Name, trigger, st.Backspaces, st.Payload, sender), nil

	case "press_release_macro":
		trigger, err := resolveCode(st.Trigger)
		if err != nil {
			return nil, err
		}
		return handlers.NewPressReleaseMacro(st.Name, trigger, nil, nil), nil

	case "unicode_keyboard":
		return handlers.NewUnicodeKeyboard(st.Name), nil

	case "usb_keyboard":
		return handlers.NewUSBKeyboard(st.Name), nil

	default:
		return nil, nil
	}
}
