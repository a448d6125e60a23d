package output

import "errors"

// ErrUnroutedUnicode is the sentinel a terminal handler (USBKeyboard)
// returns when it encounters an event carrying a plain unicode code
// point this late in the pipeline — UnicodeKeyboard should have
// consumed it already. It is never fatal: the driver counts it and
// the event is dropped.
var ErrUnroutedUnicode = errors.New("output: unrouted unicode code point reached assembler")
