package statusapi

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
)

// indexPage is a minimal embedded status page. The teacher's settings
// UI lives in an internal/web package of static assets that was never
// part of this retrieval, so this is written fresh for the pipeline
// status/counters this domain actually exposes, rather than
// reconstructing a page that was never seen.
const indexPage = `<!DOCTYPE html>
<html>
<head><title>keyplex status</title></head>
<body>
<h1>keyplex</h1>
<p>See <a href="/status">/status</a> and <a href="/counters">/counters</a> for JSON.</p>
</body>
</html>
`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, indexPage)
}

// statusResponse is the JSON response for GET /status.
type statusResponse struct {
	Version    string `json:"version"`
	Connected  bool   `json:"connected"`
	KeymapPath string `json:"keymap_path"`
	QueueLen   int    `json:"queue_len"`
	ClockMs    uint64 `json:"clock_ms"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := statusResponse{
		Version:    s.version,
		Connected:  s.supervisor.Port().Connected(),
		KeymapPath: s.settings.GetKeymapPath(),
		QueueLen:   s.driver.QueueLen(),
		ClockMs:    s.driver.Now(),
	}
	writeJSON(w, resp)
}

func (s *Server) handleCounters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.driver.Counters())
}

// keymapReloadRequest is the JSON body for POST /keymap/reload.
type keymapReloadRequest struct {
	Path string `json:"path"`
}

// keymapReloadResponse is the JSON response for POST /keymap/reload.
type keymapReloadResponse struct {
	KeymapPath string `json:"keymap_path,omitempty"`
	Error      string `json:"error,omitempty"`
}

// handleKeymapReload passes a new keymap file path to the process's
// reload callback (cmd/keyplexd's checks that the keymap builds) and,
// if that succeeds, persists the path as the active keymap. It does
// not hot-patch or rebuild the live Driver: the new keymap takes
// effect the next time the process starts.
func (s *Server) handleKeymapReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.reload == nil {
		writeJSON(w, keymapReloadResponse{Error: "reload not supported by this process"})
		return
	}

	var req keymapReloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, keymapReloadResponse{Error: "invalid JSON"})
		return
	}
	if req.Path == "" {
		writeJSON(w, keymapReloadResponse{Error: "path is required"})
		return
	}

	if err := s.reload(req.Path); err != nil {
		log.Printf("[statusapi] keymap reload failed: %v", err)
		writeJSON(w, keymapReloadResponse{Error: err.Error()})
		return
	}
	if err := s.settings.SetKeymapPath(req.Path); err != nil {
		log.Printf("[statusapi] persist keymap path failed: %v", err)
		writeJSON(w, keymapReloadResponse{Error: "reloaded but failed to persist path"})
		return
	}

	log.Printf("[statusapi] keymap reloaded from %s", req.Path)
	writeJSON(w, keymapReloadResponse{KeymapPath: req.Path})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
