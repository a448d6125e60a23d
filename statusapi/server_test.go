package statusapi

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/keyplexfw/keyplex/config"
	"github.com/keyplexfw/keyplex/handlers"
	"github.com/keyplexfw/keyplex/output"
	"github.com/keyplexfw/keyplex/pipeline"
	"github.com/keyplexfw/keyplex/runtime"
	"github.com/keyplexfw/keyplex/usbhid"
)

func newTestServer(t *testing.T, reload func(string) error) *Server {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	p := pipeline.New(handlers.NewUSBKeyboard("usb"))
	port := usbhid.NewMemPort(output.OSLinux)
	driver := pipeline.NewDriver(p, 16, port)

	sup := runtime.NewSupervisor(func() (runtime.Connector, error) { return nil, nil })

	settings, err := config.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}

	return New(driver, sup, settings, "test-version", reload)
}

func TestHandleStatusReportsDisconnectedByDefault(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/status", nil)
	w := httptest.NewRecorder()
	s.handleStatus(w, req)

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp statusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Connected {
		t.Errorf("Connected = true, want false (no transport opened)")
	}
	if resp.Version != "test-version" {
		t.Errorf("Version = %q, want %q", resp.Version, "test-version")
	}
	if resp.KeymapPath == "" {
		t.Errorf("KeymapPath is empty, want the default keymap path")
	}
}

func TestHandleStatusRejectsNonGet(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest("POST", "/status", nil)
	w := httptest.NewRecorder()
	s.handleStatus(w, req)
	if w.Code != 405 {
		t.Fatalf("status = %d, want 405", w.Code)
	}
}

func TestHandleCountersReturnsSnapshot(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest("GET", "/counters", nil)
	w := httptest.NewRecorder()
	s.handleCounters(w, req)
	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", w.Header().Get("Content-Type"))
	}
}

func TestHandleKeymapReloadDisabledWithoutCallback(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest("POST", "/keymap/reload", bytes.NewBufferString(`{"path":"x.yaml"}`))
	w := httptest.NewRecorder()
	s.handleKeymapReload(w, req)

	var resp keymapReloadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error == "" {
		t.Fatalf("expected an error response when reload is nil, got %+v", resp)
	}
}

func TestHandleKeymapReloadRejectsEmptyPath(t *testing.T) {
	s := newTestServer(t, func(string) error { return nil })
	req := httptest.NewRequest("POST", "/keymap/reload", bytes.NewBufferString(`{"path":""}`))
	w := httptest.NewRecorder()
	s.handleKeymapReload(w, req)

	var resp keymapReloadResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error == "" {
		t.Fatalf("expected an error for an empty path, got %+v", resp)
	}
}

func TestHandleKeymapReloadSucceedsAndPersistsPath(t *testing.T) {
	var gotPath string
	s := newTestServer(t, func(path string) error { gotPath = path; return nil })

	req := httptest.NewRequest("POST", "/keymap/reload", bytes.NewBufferString(`{"path":"/tmp/new.yaml"}`))
	w := httptest.NewRecorder()
	s.handleKeymapReload(w, req)

	if gotPath != "/tmp/new.yaml" {
		t.Fatalf("reload callback got path %q, want /tmp/new.yaml", gotPath)
	}
	var resp keymapReloadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "" {
		t.Fatalf("unexpected error in response: %+v", resp)
	}
	if resp.KeymapPath != "/tmp/new.yaml" {
		t.Fatalf("KeymapPath = %q, want /tmp/new.yaml", resp.KeymapPath)
	}
	if s.settings.GetKeymapPath() != "/tmp/new.yaml" {
		t.Errorf("settings not persisted: GetKeymapPath() = %q", s.settings.GetKeymapPath())
	}
}

func TestHandleKeymapReloadSurfacesCallbackError(t *testing.T) {
	s := newTestServer(t, func(path string) error { return errBadKeymap })

	req := httptest.NewRequest("POST", "/keymap/reload", bytes.NewBufferString(`{"path":"bad.yaml"}`))
	w := httptest.NewRecorder()
	s.handleKeymapReload(w, req)

	var resp keymapReloadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error == "" {
		t.Fatalf("expected the callback's error to surface, got %+v", resp)
	}
}

func TestHandleKeymapReloadRejectsMalformedJSON(t *testing.T) {
	s := newTestServer(t, func(string) error { return nil })
	req := httptest.NewRequest("POST", "/keymap/reload", bytes.NewBufferString(`not json`))
	w := httptest.NewRecorder()
	s.handleKeymapReload(w, req)

	var resp keymapReloadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error == "" {
		t.Fatalf("expected an error for malformed JSON body, got %+v", resp)
	}
}

func TestHandleIndexServesHTMLOnRootOnly(t *testing.T) {
	s := newTestServer(t, nil)

	w := httptest.NewRecorder()
	s.handleIndex(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != 200 {
		t.Fatalf("GET / = %d, want 200", w.Code)
	}

	w2 := httptest.NewRecorder()
	s.handleIndex(w2, httptest.NewRequest("GET", "/nope", nil))
	if w2.Code != 404 {
		t.Fatalf("GET /nope = %d, want 404", w2.Code)
	}
}

var errBadKeymap = &reloadError{"malformed keymap"}

type reloadError struct{ msg string }

func (e *reloadError) Error() string { return e.msg }
