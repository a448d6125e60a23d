// Package runtime generalizes the teacher's device-lifecycle manager
// (connect, reconnect-on-poll, health-check-on-interval) from one
// fixed R1 USB link to any output.Port whose transport can be opened,
// pinged, and closed, and provides a pipeline.Logger that emits
// structured JSON instead of plain text.
package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
)

// Connector is an output.Port whose transport can be health-checked
// and closed — usbhid.AOA2Port satisfies this directly.
type Connector interface {
	output.Port
	Ping() error
	Close()
}

// Opener attempts to establish a new Connector, returning an error
// (never panicking) if the transport isn't present right now.
type Opener func() (Connector, error)

// SupervisedPort is the output.Port the pipeline.Driver is actually
// constructed with: it forwards every call to whatever Connector the
// Supervisor currently has open, and returns output.ErrIO when none is
// connected, so the driver never needs to know about reconnects.
type SupervisedPort struct {
	mu     sync.RWMutex
	active Connector
}

func (p *SupervisedPort) get() (Connector, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.active == nil {
		return nil, output.ErrIO
	}
	return p.active, nil
}

func (p *SupervisedPort) set(c Connector) {
	p.mu.Lock()
	p.active = c
	p.mu.Unlock()
}

// Connected reports whether a transport is currently attached.
func (p *SupervisedPort) Connected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active != nil
}

func (p *SupervisedPort) SendKeys(mods keycode.Modifiers, keys []keycode.KeyCode) error {
	c, err := p.get()
	if err != nil {
		return err
	}
	return c.SendKeys(mods, keys)
}

func (p *SupervisedPort) SendConsumer(usage keycode.KeyCode) error {
	c, err := p.get()
	if err != nil {
		return err
	}
	return c.SendConsumer(usage)
}

func (p *SupervisedPort) SendUnicode(codepoint rune) error {
	c, err := p.get()
	if err != nil {
		return err
	}
	return c.SendUnicode(codepoint)
}

func (p *SupervisedPort) BootKeyboardOnly() bool {
	c, err := p.get()
	if err != nil {
		return true
	}
	return c.BootKeyboardOnly()
}

func (p *SupervisedPort) GetOS() output.OS {
	c, err := p.get()
	if err != nil {
		return output.OSOther
	}
	return c.GetOS()
}

// Supervisor owns the connect/reconnect/health-check polling loop,
// generalized from the teacher's device.Manager.Run/tryConnect/
// healthCheck. It never touches the pipeline or event queue directly
// — it only swaps the Connector behind a SupervisedPort, which the
// Driver was constructed with once at startup.
type Supervisor struct {
	open   Opener
	port   *SupervisedPort
	log    Logger
	onConn func(connected bool)

	pollInterval   time.Duration
	healthInterval time.Duration
}

// Logger is the minimal logging capability Supervisor needs; both the
// stdlib *log.Logger and StructuredLogger satisfy it.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Option configures a Supervisor at construction.
type Option func(*Supervisor)

// WithPollInterval overrides the default 2-second reconnect-attempt
// interval (matching the teacher's pollTicker).
func WithPollInterval(d time.Duration) Option {
	return func(s *Supervisor) { s.pollInterval = d }
}

// WithHealthInterval overrides the default 5-second ping interval.
func WithHealthInterval(d time.Duration) Option {
	return func(s *Supervisor) { s.healthInterval = d }
}

// WithLogger overrides the default stdlib logger.
func WithLogger(l Logger) Option {
	return func(s *Supervisor) { s.log = l }
}

// WithConnectionChange registers a callback invoked whenever the
// transport connects or disconnects, for status-API / tray state.
func WithConnectionChange(f func(connected bool)) Option {
	return func(s *Supervisor) { s.onConn = f }
}

// NewSupervisor builds a Supervisor and the SupervisedPort it manages.
// Pass Port() to pipeline.NewDriver as the output.Port.
func NewSupervisor(open Opener, opts ...Option) *Supervisor {
	s := &Supervisor{
		open:           open,
		port:           &SupervisedPort{},
		log:            defaultLogger,
		pollInterval:   2 * time.Second,
		healthInterval: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Port returns the output.Port backing this supervisor.
func (s *Supervisor) Port() *SupervisedPort { return s.port }

// Run blocks, polling for a connection when disconnected and
// health-checking when connected, until ctx is cancelled. It should
// run in its own goroutine — it never calls into the pipeline driver.
func (s *Supervisor) Run(ctx context.Context) {
	pollTicker := time.NewTicker(s.pollInterval)
	defer pollTicker.Stop()
	healthTicker := time.NewTicker(s.healthInterval)
	defer healthTicker.Stop()

	s.tryConnect()

	for {
		select {
		case <-ctx.Done():
			s.disconnect()
			return
		case <-pollTicker.C:
			if !s.port.Connected() {
				s.tryConnect()
			}
		case <-healthTicker.C:
			if s.port.Connected() {
				s.healthCheck()
			}
		}
	}
}

func (s *Supervisor) tryConnect() {
	c, err := s.open()
	if err != nil {
		return // transport not present yet, will retry next poll
	}
	s.port.set(c)
	s.log.Printf("[runtime] output port connected")
	if s.onConn != nil {
		s.onConn(true)
	}
}

func (s *Supervisor) healthCheck() {
	c, err := s.port.get()
	if err != nil {
		return
	}
	if err := c.Ping(); err != nil {
		s.log.Printf("[runtime] output port lost: %v", err)
		s.disconnect()
	}
}

func (s *Supervisor) disconnect() {
	s.port.mu.Lock()
	c := s.port.active
	s.port.active = nil
	s.port.mu.Unlock()

	if c == nil {
		return
	}
	c.Close()
	if s.onConn != nil {
		s.onConn(false)
	}
}
