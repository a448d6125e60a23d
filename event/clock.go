package event

// Clock accumulates the relative ms_since_last carried on every event
// into a monotonic millisecond counter, so handlers that need to
// reason about elapsed time across arbitrary interleavings (OneShot,
// SpaceCadet, TapAndLongTap) can record absolute deadlines instead of
// re-deriving them from a chain of relative deltas.
//
// This resolves the open question in the source design notes about
// whether handlers should see absolute timestamps: they may, via this
// read-only accessor, without the wire format itself changing.
type Clock struct {
	nowMs uint64
}

// Advance accounts for msSinceLast having elapsed and returns the new
// absolute time in milliseconds.
func (c *Clock) Advance(msSinceLast uint16) uint64 {
	c.nowMs += uint64(msSinceLast)
	return c.nowMs
}

// Now returns the current absolute time in milliseconds, as of the
// last Advance call.
func (c *Clock) Now() uint64 { return c.nowMs }
