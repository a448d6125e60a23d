package pipeline

import "log"

// Logger is the minimal logging capability the driver needs. The
// stdlib *log.Logger satisfies it directly, matching every ambient
// logging call elsewhere in this module; runtime.StructuredLogger
// (built on the gordp-style JSON log-line shape) also satisfies it for
// deployments that want structured output instead.
type Logger interface {
	Printf(format string, v ...interface{})
}

var defaultLogger Logger = log.New(log.Writer(), "[pipeline] ", log.LstdFlags)
