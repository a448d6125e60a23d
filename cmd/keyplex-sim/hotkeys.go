package main

import (
	"context"
	"fmt"
	"log"
	goruntime "runtime"
	"sync"
	"time"

	"golang.design/x/hotkey"

	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/pipeline"
)

// scanner registers one golang.design/x/hotkey.Hotkey per binding and
// turns its down/up events into Driver.HandleKeyPress/Release calls,
// standing in for the matrix scanner a real board would have. Adapted
// from internal/hotkey.Manager's single fixed push-to-talk hotkey: that
// Manager only ever tracked one combination with onDown/onUp
// callbacks, so here each binding gets its own registration and its
// own debounce state instead of one shared pair of callbacks.
type scanner struct {
	mu         sync.Mutex
	dispatchMu sync.Mutex // serializes Driver calls from listener goroutines and debounce timers
	driver     *pipeline.Driver
	lastTick   time.Time
	active     []*activeHotkey
	cancel     context.CancelFunc
}

type activeHotkey struct {
	hk       *hotkey.Hotkey
	label    string
	physical keycode.KeyCode
}

func newScanner(driver *pipeline.Driver) *scanner {
	return &scanner{driver: driver, lastTick: time.Now()}
}

// register installs one hotkey per binding and starts listening.
// Unlike the teacher's Manager.Register, which unregisters any prior
// hotkey first (it only ever held one), this accumulates bindings:
// the simulator's whole bindings file is registered once at startup.
func (s *scanner) register(bindings []resolvedBinding) error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for _, b := range bindings {
		mods, err := parseModifiers(b.mods)
		if err != nil {
			return fmt.Errorf("binding %s: %w", b.label, err)
		}
		key, err := parseHotkeyName(b.key)
		if err != nil {
			return fmt.Errorf("binding %s: %w", b.label, err)
		}

		hk := hotkey.New(mods, key)
		if err := hk.Register(); err != nil {
			return fmt.Errorf("binding %s: register: %w", b.label, err)
		}

		ah := &activeHotkey{hk: hk, label: b.label, physical: b.physical}
		s.active = append(s.active, ah)

		log.Printf("[keyplex-sim] registered %s", b.label)
		go s.listen(ctx, ah)
	}
	return nil
}

// listen mirrors internal/hotkey.Manager.listen's Linux auto-repeat
// debounce: X11 generates spurious keyup/keydown pairs under hold, so
// a keyup is held for 50ms and cancelled if a keydown arrives within
// that window, rather than forwarded as a real release.
func (s *scanner) listen(ctx context.Context, ah *activeHotkey) {
	isLinux := goruntime.GOOS == "linux"
	var debounceTimer *time.Timer
	var mu sync.Mutex

	for {
		select {
		case <-ctx.Done():
			return
		case <-ah.hk.Keydown():
			mu.Lock()
			if isLinux && debounceTimer != nil {
				debounceTimer.Stop()
				debounceTimer = nil
				mu.Unlock()
				continue
			}
			mu.Unlock()
			s.dispatchPress(ah.physical)
		case <-ah.hk.Keyup():
			if isLinux {
				mu.Lock()
				debounceTimer = time.AfterFunc(50*time.Millisecond, func() {
					s.dispatchRelease(ah.physical)
					mu.Lock()
					debounceTimer = nil
					mu.Unlock()
				})
				mu.Unlock()
			} else {
				s.dispatchRelease(ah.physical)
			}
		}
	}
}

func (s *scanner) dispatchPress(code keycode.KeyCode) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	if err := s.driver.HandleKeyPress(code, s.sinceLast()); err != nil {
		log.Printf("[keyplex-sim] press %v: %v", code, err)
	}
}

func (s *scanner) dispatchRelease(code keycode.KeyCode) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	if err := s.driver.HandleKeyRelease(code, s.sinceLast()); err != nil {
		log.Printf("[keyplex-sim] release %v: %v", code, err)
	}
}

// sinceLast returns the elapsed time since the previous dispatched
// event, clamped to uint16, mirroring the msSinceLast contract a real
// scanner would compute from its own scan clock.
func (s *scanner) sinceLast() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	elapsed := now.Sub(s.lastTick)
	s.lastTick = now
	ms := elapsed.Milliseconds()
	if ms > 65535 {
		ms = 65535
	}
	return uint16(ms)
}

// stop unregisters every hotkey.
func (s *scanner) stop() {
	if s.cancel != nil {
		s.cancel()
	}
	for _, ah := range s.active {
		ah.hk.Unregister()
	}
}
