package main

import (
	"time"

	"fyne.io/systray"

	"github.com/keyplexfw/keyplex/handlers"
	"github.com/keyplexfw/keyplex/pipeline"
)

// runTray starts the system tray, adapted from internal/tray/tray.go:
// the teacher's tray showed R1 connection state (Disconnected/
// Connected/PTTActive) with three icons; this simulator has no device
// connection to show, so the tray instead lists every Toggleable
// (Layers/RewriteLayers) stage in the running pipeline with a live
// checkbox mirroring its Enabled() state, refreshed on a timer, plus
// the usual Quit item. onQuit is called once, when the user picks
// Quit or closes the tray.
func runTray(p *pipeline.Pipeline, onQuit func()) {
	systray.Run(func() {
		systray.SetIcon(iconIdle)
		systray.SetTitle("")
		systray.SetTooltip("keyplex-sim")

		mTitle := systray.AddMenuItem("keyplex simulator", "")
		mTitle.Disable()
		systray.AddSeparator()

		var layerItems []*systray.MenuItem
		var layerIdx []int
		for i := 0; i < p.Len(); i++ {
			if _, ok := p.At(i).(handlers.Toggleable); ok {
				item := systray.AddMenuItemCheckbox(p.Label(i), "layer state (read-only)", false)
				item.Disable()
				layerItems = append(layerItems, item)
				layerIdx = append(layerIdx, i)
			}
		}

		systray.AddSeparator()
		mQuit := systray.AddMenuItem("Quit", "Stop the simulator")

		refresh := func() {
			for j, idx := range layerIdx {
				t := p.At(idx).(handlers.Toggleable)
				if t.Enabled() {
					layerItems[j].Check()
				} else {
					layerItems[j].Uncheck()
				}
			}
		}
		refresh()

		go pollLayerState(layerIdx, p, refresh)

		go func() {
			<-mQuit.ClickedCh
			if onQuit != nil {
				onQuit()
			}
			systray.Quit()
		}()
	}, func() {})
}

var iconIdle = placeholderIcon()

// pollLayerState refreshes the tray's layer checkboxes periodically;
// systray has no push-based state-change notification for menu items
// from outside its own click channels, so this polls the way the
// teacher's settings server polls device.Manager's state for its own
// JSON endpoint.
func pollLayerState(idx []int, p *pipeline.Pipeline, refresh func()) {
	tick := time.NewTicker(250 * time.Millisecond)
	defer tick.Stop()
	for range tick.C {
		refresh()
	}
}
