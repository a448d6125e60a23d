package pipeline

import "sync/atomic"

// Counters accumulates the error kinds spec §7 says must be observable
// rather than fatal. All fields are updated via atomic ops so the
// status server can read them from another goroutine while the driver
// loop keeps running.
type Counters struct {
	queueFull        uint64
	dispatchDiverged uint64
	unroutedUnicode  uint64
	outputBusy       uint64
	outputErrors     uint64
	handlerPanics    uint64
}

func (c *Counters) incQueueFull()        { atomic.AddUint64(&c.queueFull, 1) }
func (c *Counters) incDispatchDiverged() { atomic.AddUint64(&c.dispatchDiverged, 1) }
func (c *Counters) incUnroutedUnicode()  { atomic.AddUint64(&c.unroutedUnicode, 1) }
func (c *Counters) incOutputBusy()       { atomic.AddUint64(&c.outputBusy, 1) }
func (c *Counters) incOutputErrors()     { atomic.AddUint64(&c.outputErrors, 1) }
func (c *Counters) incHandlerPanics()    { atomic.AddUint64(&c.handlerPanics, 1) }

// Snapshot is a point-in-time copy of Counters suitable for JSON
// serialization (the status server's /counters endpoint).
type Snapshot struct {
	QueueFull        uint64 `json:"queue_full"`
	DispatchDiverged uint64 `json:"dispatch_diverged"`
	UnroutedUnicode  uint64 `json:"unrouted_unicode"`
	OutputBusy       uint64 `json:"output_busy"`
	OutputErrors     uint64 `json:"output_errors"`
	HandlerPanics    uint64 `json:"handler_panics"`
}

// Snapshot returns a consistent-enough copy of the current counters.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		QueueFull:        atomic.LoadUint64(&c.queueFull),
		DispatchDiverged: atomic.LoadUint64(&c.dispatchDiverged),
		UnroutedUnicode:  atomic.LoadUint64(&c.unroutedUnicode),
		OutputBusy:       atomic.LoadUint64(&c.outputBusy),
		OutputErrors:     atomic.LoadUint64(&c.outputErrors),
		HandlerPanics:    atomic.LoadUint64(&c.handlerPanics),
	}
}
