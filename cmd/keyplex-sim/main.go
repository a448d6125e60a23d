// keyplex-sim is an interactive desktop simulator for a keymap: with
// no physical board attached, it registers one OS-global hotkey per
// entry in a bindings file and feeds each press/release into a
// running Driver exactly as a matrix scanner would, logging the HID
// reports the keymap would have produced to the console and showing
// live layer state in a system tray icon. Adapted from
// internal/hotkey and internal/tray, which did the equivalent for one
// fixed push-to-talk hotkey against a real R1 connection.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/keyplexfw/keyplex/config"
	"github.com/keyplexfw/keyplex/pipeline"
)

func main() {
	keymapPath := flag.String("keymap", "keymap.yaml", "path to the keymap YAML file")
	bindingsPath := flag.String("bindings", "sim-bindings.yaml", "path to the simulator bindings YAML file")
	flag.Parse()

	km, err := loadKeymap(*keymapPath)
	if err != nil {
		log.Fatalf("[keyplex-sim] keymap: %v", err)
	}
	p, err := config.Build(km)
	if err != nil {
		log.Fatalf("[keyplex-sim] build pipeline: %v", err)
	}

	if _, err := os.Stat(*bindingsPath); os.IsNotExist(err) {
		if err := os.WriteFile(*bindingsPath, []byte(defaultBindingsYAML), 0o644); err != nil {
			log.Fatalf("[keyplex-sim] write default bindings: %v", err)
		}
		log.Printf("[keyplex-sim] wrote a starter bindings file to %s — edit it and restart", *bindingsPath)
	}
	bindings, err := loadBindings(*bindingsPath)
	if err != nil {
		log.Fatalf("[keyplex-sim] bindings: %v", err)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("[keyplex-sim] settings: %v", err)
	}

	driver := pipeline.NewDriver(p, settings.QueueCapacity, newConsolePort(),
		pipeline.WithMaxPasses(settings.MaxPasses),
	)

	sc := newScanner(driver)
	if err := sc.register(bindings); err != nil {
		log.Fatalf("[keyplex-sim] register hotkeys: %v", err)
	}

	log.Printf("[keyplex-sim] %d hotkey binding(s) active, watching %s", len(bindings), *keymapPath)

	// systray.Run blocks the calling goroutine; it must run on the
	// process's main thread on some platforms, matching why
	// cmd/tray/main.go calls tray.Run directly from main rather than
	// spawning it in a goroutine.
	runTray(p, func() {
		sc.stop()
	})
}

func loadKeymap(path string) (*config.Keymap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return config.ParseKeymap(data)
}
