package runtime

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"
)

var defaultLogger Logger = log.New(log.Writer(), "[runtime] ", log.LstdFlags)

// logEntry is one structured JSON log line, shaped after the
// teacher-pack's glog.StructuredLogger entry format.
type logEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Component string    `json:"component"`
	Message   string    `json:"message"`
}

// StructuredLogger emits one JSON object per line instead of the
// stdlib logger's plain-text format, for deployments that feed logs
// into something that parses JSON (journald, a log shipper). It
// satisfies both runtime.Logger and pipeline.Logger, so it can back
// the driver's dispatch log and the supervisor's connection log with
// a single sink.
type StructuredLogger struct {
	component string
	out       *log.Logger
}

// NewStructuredLogger builds a StructuredLogger writing to w (os.Stdout
// if nil), tagging every entry with component.
func NewStructuredLogger(w *os.File, component string) *StructuredLogger {
	if w == nil {
		w = os.Stdout
	}
	return &StructuredLogger{component: component, out: log.New(w, "", 0)}
}

// Printf formats the message with fmt.Sprintf semantics and emits it
// as one JSON log line.
func (l *StructuredLogger) Printf(format string, v ...interface{}) {
	entry := logEntry{
		Timestamp: time.Now(),
		Component: l.component,
		Message:   fmt.Sprintf(format, v...),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		l.out.Printf("%s: %s", l.component, entry.Message)
		return
	}
	l.out.Println(string(data))
}
