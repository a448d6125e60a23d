// Package statusapi serves a localhost HTTP status/counters/keymap
// endpoint for the running daemon, generalized from the teacher's
// settings server: instead of R1 hotkey/autostart/keep-awake settings,
// it exposes pipeline counters, connection state, and a keymap reload
// hook.
package statusapi

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/keyplexfw/keyplex/config"
	"github.com/keyplexfw/keyplex/pipeline"
	"github.com/keyplexfw/keyplex/runtime"
)

// Server serves the status API on localhost.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	driver     *pipeline.Driver
	supervisor *runtime.Supervisor
	settings   *config.Settings
	version    string

	reload func(path string) error
}

// New creates a status server. reload is called by POST /keymap/reload
// with the keymap path to load; it may be nil to disable the endpoint.
func New(driver *pipeline.Driver, supervisor *runtime.Supervisor, settings *config.Settings, version string, reload func(path string) error) *Server {
	return &Server{
		driver:     driver,
		supervisor: supervisor,
		settings:   settings,
		version:    version,
		reload:     reload,
	}
}

// Start begins serving on addr (e.g. "127.0.0.1:8422"). Returns the
// URL to reach it at.
func (s *Server) Start(addr string) (string, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/counters", s.handleCounters)
	mux.HandleFunc("/keymap/reload", s.handleKeymapReload)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("statusapi: listen: %w", err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("[statusapi] error: %v", err)
		}
	}()

	url := fmt.Sprintf("http://%s", ln.Addr().String())
	log.Printf("[statusapi] status available at %s", url)
	return url, nil
}

// Stop shuts down the HTTP server.
func (s *Server) Stop() {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// URL returns the server's URL, or empty string if not started.
func (s *Server) URL() string {
	if s.listener == nil {
		return ""
	}
	return fmt.Sprintf("http://%s", s.listener.Addr().String())
}
