package pipeline

import "fmt"

// Pipeline is the frozen, ordered list of handlers a Driver dispatches
// through on every pass. Built once at startup (by the config package)
// and never mutated afterward — handlers themselves may still carry
// mutable state (layer enabled flags, OneShot state machines, etc.).
type Pipeline struct {
	handlers []Handler
}

// New builds a pipeline from an ordered handler list. Order is
// significant: see each handler's ordering invariant (OneShot and
// LayerToggle before the layers/USBKeyboard they feed, spec §4.5).
func New(handlers ...Handler) *Pipeline {
	cp := make([]Handler, len(handlers))
	copy(cp, handlers)
	for i, h := range cp {
		if ia, ok := h.(IndexAware); ok {
			ia.SetIndex(i)
		}
	}
	return &Pipeline{handlers: cp}
}

// IndexAware is implemented by handlers that need to know their own
// position in the pipeline (to call q.Pending/q.Mark/q.Replace, which
// key on handler index). New assigns each handler's index once, at
// construction, matching the "frozen at startup" contract in spec §6.
type IndexAware interface {
	SetIndex(i int)
}

// Len returns the number of handlers in the pipeline.
func (p *Pipeline) Len() int { return len(p.handlers) }

// At returns the handler at index i.
func (p *Pipeline) At(i int) Handler { return p.handlers[i] }

// Label returns a human-readable identifier for handler i: its Name()
// if it implements Named, otherwise its index and Go type.
func (p *Pipeline) Label(i int) string {
	h := p.handlers[i]
	if n, ok := h.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("#%d(%T)", i, h)
}
