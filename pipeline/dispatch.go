package pipeline

import (
	"errors"

	"github.com/keyplexfw/keyplex/event"
	"github.com/keyplexfw/keyplex/output"
)

// DefaultMaxPasses is the compile-time bound on dispatch passes per
// external event before DispatchDiverged is raised (spec §4.1).
const DefaultMaxPasses = 10

// ErrDispatchDiverged is returned when a single external event caused
// more than MaxPasses dispatch passes without quiescing. The queue has
// already been cleared by the time this is returned.
var ErrDispatchDiverged = errors.New("pipeline: dispatch diverged")

// dispatchPass walks every handler once in order, feeding it the
// shared queue and output port, and returns whether the pass changed
// anything (any status bit flipped, any event injected or deleted).
// Handler panics are contained: the pass continues and the panic is
// counted and logged rather than propagated.
func dispatchPass(p *Pipeline, q *event.Queue, out output.Port, clock *event.Clock, counters *Counters, log Logger) (changed bool) {
	genBefore := q.Generation()

	for i := 0; i < p.Len(); i++ {
		runHandler(p, i, q, out, clock, counters, log)
	}

	q.DropHandled()
	return q.Generation() != genBefore
}

// runHandler invokes a single handler with panic containment, isolated
// into its own function so the deferred recover only covers this call.
func runHandler(p *Pipeline, i int, q *event.Queue, out output.Port, clock *event.Clock, counters *Counters, log Logger) {
	defer func() {
		if r := recover(); r != nil {
			counters.incHandlerPanics()
			log.Printf("handler %s panicked: %v", p.Label(i), r)
		}
	}()

	if err := p.At(i).ProcessEvents(q, out, clock); err != nil {
		switch {
		case errors.Is(err, output.ErrBusy):
			counters.incOutputBusy()
		case errors.Is(err, output.ErrIO):
			counters.incOutputErrors()
			log.Printf("handler %s output error: %v", p.Label(i), err)
		case errors.Is(err, output.ErrUnroutedUnicode):
			counters.incUnroutedUnicode()
		default:
			log.Printf("handler %s error: %v", p.Label(i), err)
		}
	}
}

// runToQuiescence repeats dispatch passes until the queue is empty or a
// pass produces no change, bounded by maxPasses. Exceeding the bound
// clears the queue and returns ErrDispatchDiverged.
func runToQuiescence(p *Pipeline, q *event.Queue, out output.Port, clock *event.Clock, counters *Counters, log Logger, maxPasses int) error {
	passes := 0
	for {
		changed := dispatchPass(p, q, out, clock, counters, log)
		passes++

		if q.Len() == 0 {
			return nil
		}
		if !changed {
			return nil
		}
		if passes >= maxPasses {
			counters.incDispatchDiverged()
			q.Clear()
			return ErrDispatchDiverged
		}
	}
}
