// keyplexd is the headless daemon that wires a configured keymap into
// a running pipeline against a real USB HID output port, and serves
// the localhost status API. It deliberately owns no matrix scanner —
// that stage is an external collaborator per this library's scope
// (spec.md §6) — so the Driver it builds is fed key events by
// whatever board-specific scanner embeds this daemon's wiring.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/keyplexfw/keyplex/config"
	"github.com/keyplexfw/keyplex/internal/autostart"
	"github.com/keyplexfw/keyplex/output"
	"github.com/keyplexfw/keyplex/pipeline"
	"github.com/keyplexfw/keyplex/runtime"
	"github.com/keyplexfw/keyplex/statusapi"
	"github.com/keyplexfw/keyplex/usbhid"
)

var version = "dev"

func main() {
	autostartFlag := flag.String("autostart", "", `set to "enable" or "disable" to register/unregister launch-on-login and exit`)
	flag.Parse()

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("[keyplexd] settings: %v", err)
	}

	if *autostartFlag != "" {
		runAutostartCommand(*autostartFlag, settings)
		return
	}

	structured := runtime.NewStructuredLogger(nil, "keyplexd")

	sup := runtime.NewSupervisor(
		func() (runtime.Connector, error) { return usbhid.OpenAOA2(settings.USBSerial) },
		runtime.WithLogger(structured),
		runtime.WithConnectionChange(func(connected bool) {
			structured.Printf("output connection changed: connected=%v", connected)
		}),
	)

	driver, err := buildDriver(settings, sup.Port(), structured)
	if err != nil {
		log.Fatalf("[keyplexd] keymap: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go sup.Run(ctx)

	// reload validates that a candidate keymap builds cleanly; once it
	// returns nil, the status server persists the path as the active
	// keymap for the next restart. It does not hot-swap the running
	// Driver: runtime reconfiguration beyond
	// what handlers themselves expose is out of scope (spec.md §1).
	reload := func(path string) error {
		km, err := loadKeymap(path)
		if err != nil {
			return err
		}
		if _, err := config.Build(km); err != nil {
			return fmt.Errorf("keymap does not build: %w", err)
		}
		return nil
	}

	srv := statusapi.New(driver, sup, settings, version, reload)
	if _, err := srv.Start(settings.StatusAddr); err != nil {
		log.Fatalf("[keyplexd] status server: %v", err)
	}

	structured.Printf("keyplexd ready (version %s, keymap %s)", version, settings.GetKeymapPath())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	structured.Printf("shutting down")
	cancel()
	srv.Stop()
}

// runAutostartCommand handles the one-shot --autostart=enable|disable
// flag, adapted from cmd/tray/main.go's OnAutoStart tray-click
// callback: keyplexd has no tray to click, so the equivalent toggle is
// a flag that registers/unregisters launch-on-login and exits rather
// than starting the daemon loop.
func runAutostartCommand(mode string, settings *config.Settings) {
	switch mode {
	case "enable":
		if err := autostart.Enable(); err != nil {
			log.Fatalf("[keyplexd] enable autostart: %v", err)
		}
	case "disable":
		if err := autostart.Disable(); err != nil {
			log.Fatalf("[keyplexd] disable autostart: %v", err)
		}
	default:
		log.Fatalf("[keyplexd] --autostart must be \"enable\" or \"disable\", got %q", mode)
	}
	if err := settings.SetAutoStart(mode == "enable"); err != nil {
		log.Fatalf("[keyplexd] persist autostart setting: %v", err)
	}
	log.Printf("[keyplexd] autostart: %s", mode)
}

func loadKeymap(path string) (*config.Keymap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keymap %s: %w", path, err)
	}
	return config.ParseKeymap(data)
}

func buildDriver(settings *config.Settings, out output.Port, log *runtime.StructuredLogger) (*pipeline.Driver, error) {
	km, err := loadKeymap(settings.GetKeymapPath())
	if err != nil {
		return nil, err
	}
	p, err := config.Build(km)
	if err != nil {
		return nil, err
	}
	return pipeline.NewDriver(p, settings.QueueCapacity, out,
		pipeline.WithMaxPasses(settings.MaxPasses),
		pipeline.WithLogger(log),
	), nil
}
