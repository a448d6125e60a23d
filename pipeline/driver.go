package pipeline

import (
	"github.com/keyplexfw/keyplex/event"
	"github.com/keyplexfw/keyplex/keycode"
	"github.com/keyplexfw/keyplex/output"
)

// Driver is the single-threaded executor described in spec §5: it
// owns the EventQueue and the Output port exclusively, accepts events
// from the (external) scanner, and runs the pipeline to quiescence
// after every one. Nothing outside the goroutine that calls Driver's
// methods may touch the queue or port concurrently.
type Driver struct {
	pipeline  *Pipeline
	queue     *event.Queue
	out       output.Port
	clock     event.Clock
	counters  Counters
	maxPasses int
	log       Logger
}

// Option configures a Driver at construction.
type Option func(*Driver)

// WithMaxPasses overrides DefaultMaxPasses.
func WithMaxPasses(n int) Option {
	return func(d *Driver) { d.maxPasses = n }
}

// WithLogger overrides the default stdlib logger.
func WithLogger(l Logger) Option {
	return func(d *Driver) { d.log = l }
}

// NewDriver builds a Driver for the given frozen pipeline, queue
// capacity, and output port.
func NewDriver(p *Pipeline, queueCapacity int, out output.Port, opts ...Option) *Driver {
	d := &Driver{
		pipeline:  p,
		queue:     event.NewQueue(queueCapacity, p.Len()),
		out:       out,
		maxPasses: DefaultMaxPasses,
		log:       defaultLogger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// HandleKeyPress is the scanner-facing entry point for a key-down
// event: advance the clock, enqueue, and dispatch to quiescence.
func (d *Driver) HandleKeyPress(code keycode.KeyCode, msSinceLast uint16) error {
	return d.handle(event.NewKeyPress(code, msSinceLast))
}

// HandleKeyRelease is the scanner-facing entry point for a key-up
// event.
func (d *Driver) HandleKeyRelease(code keycode.KeyCode, msSinceLast uint16) error {
	return d.handle(event.NewKeyRelease(code, msSinceLast))
}

// AddTimeout feeds the passage of time into the pipeline without an
// associated key. The scanner/clock source must call this at least
// once per the shortest configured handler threshold (spec §5
// recommends every 1-10ms).
func (d *Driver) AddTimeout(msSinceLast uint16) error {
	return d.handle(event.NewTimeOut(msSinceLast))
}

func (d *Driver) handle(ev event.Event) error {
	d.clock.Advance(ev.MsSinceLast)

	if err := d.queue.Push(ev); err != nil {
		d.counters.incQueueFull()
		return err
	}

	return runToQuiescence(d.pipeline, d.queue, d.out, &d.clock, &d.counters, d.log, d.maxPasses)
}

// Counters returns a point-in-time snapshot of the error counters.
func (d *Driver) Counters() Snapshot { return d.counters.Snapshot() }

// QueueLen returns the number of currently queued (not-yet-dropped)
// events, mostly useful for tests and the status API.
func (d *Driver) QueueLen() int { return d.queue.Len() }

// Now returns the driver's accumulated absolute-time clock in
// milliseconds.
func (d *Driver) Now() uint64 { return d.clock.Now() }
