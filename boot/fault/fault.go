// Package fault implements the terminal handler for unrecoverable runtime
// conditions: allocation failure with no caller fallback, contract
// violations, explicit aborts, and panics captured at the user-entry
// boundary.
//
// The handler must not allocate (the heap may be inconsistent when it runs)
// and must not return. Diagnostics are formatted into a fixed buffer and
// emitted through a low-level writer before control transfers to the
// firmware halt.
package fault

import (
	"errors"
	"io"
	"runtime"
	"sync/atomic"
)

// MsgBufSize is the capacity of the fixed diagnostic buffer. Longer
// messages are truncated rather than allocated for.
const MsgBufSize = 256

// ErrHalted is the value the default halt panics with. It stands in for the
// firmware's terminal halt/reset state when no halt function is installed,
// which is the usual arrangement in host-side simulation.
var ErrHalted = errors.New("fault: halted")

// Handler is the process-wide fault hook. It is constructed once during
// cold boot and installed on the runtime context; it has no teardown.
type Handler struct {
	w    io.Writer // allocation-free output channel; may be nil
	halt func()    // firmware halt/reset; must not return

	entered atomic.Bool
	buf     [MsgBufSize]byte
}

// New builds a handler writing diagnostics to w before transferring to
// halt. Both may be nil: a nil w suppresses diagnostics, a nil halt falls
// back to panicking with ErrHalted.
func New(w io.Writer, halt func()) *Handler {
	return &Handler{w: w, halt: halt}
}

// Fatal enters the terminal path with the caller's location. It never
// returns.
func (h *Handler) Fatal(msg string) {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file, line = "???", 0
	}
	h.FatalAt(msg, file, line)
}

// FatalAt enters the terminal path with an explicit location, for callers
// that captured the fault elsewhere (the user-entry panic boundary). It
// never returns.
func (h *Handler) FatalAt(msg, file string, line int) {
	if !h.entered.CompareAndSwap(false, true) {
		// Fault during fault: skip diagnostics, go straight down.
		h.stop()
	}
	n := h.format(msg, file, line)
	if h.w != nil {
		h.w.Write(h.buf[:n]) //nolint:errcheck // nothing left to do on a failed write
	}
	h.stop()
}

func (h *Handler) stop() {
	if h.halt != nil {
		h.halt()
	}
	panic(ErrHalted)
}

// format renders "fault: <msg> at <file>:<line>\n" into the fixed buffer
// without allocating, truncating as needed. Returns the byte count.
func (h *Handler) format(msg, file string, line int) int {
	b := h.buf[:0]
	b = appendTrunc(b, "fault: ")
	b = appendTrunc(b, msg)
	b = appendTrunc(b, " at ")
	b = appendTrunc(b, file)
	b = appendTrunc(b, ":")
	b = appendLine(b, line)
	if len(b) < MsgBufSize {
		b = append(b, '\n')
	}
	return len(b)
}

// appendTrunc appends s to b, stopping at the buffer capacity.
func appendTrunc(b []byte, s string) []byte {
	room := cap(b) - len(b)
	if room <= 0 {
		return b
	}
	if len(s) > room {
		s = s[:room]
	}
	return append(b, s...)
}

// appendLine appends a non-negative line number in decimal.
func appendLine(b []byte, line int) []byte {
	if line < 0 {
		line = 0
	}
	var tmp [10]byte
	i := len(tmp)
	for {
		i--
		tmp[i] = byte('0' + line%10)
		line /= 10
		if line == 0 {
			break
		}
	}
	for ; i < len(tmp); i++ {
		if len(b) == cap(b) {
			break
		}
		b = append(b, tmp[i])
	}
	return b
}
