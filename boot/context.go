package boot

import (
	"errors"
	"sync/atomic"

	"github.com/joshmaas/bootkit/boot/alloc"
	"github.com/joshmaas/bootkit/boot/fault"
	"github.com/joshmaas/bootkit/boot/intr"
	"github.com/joshmaas/bootkit/internal/layout"
)

// ErrNotBooted indicates Current was called before cold boot completed.
var ErrNotBooted = errors.New("boot: runtime context not constructed yet")

// Context is the process-wide runtime context: the allocator, the
// critical-section controller, and the fault hook, bound together during
// cold boot before any user code runs.
//
// It is constructed exactly once per power cycle and never destructed; the
// only teardown is the power cycle itself, which re-enters cold boot from
// scratch. Everything is reached through accessors so the ownership story
// stays auditable: no package-level mutable state beyond the single
// installed pointer.
type Context struct {
	mem  *Memory
	lay  *layout.Layout
	heap *alloc.Allocator
	ints *intr.Controller
	hook *fault.Handler
	sp   uint32
}

// Memory returns the modeled address space.
func (c *Context) Memory() *Memory { return c.mem }

// Layout returns the resolved memory layout.
func (c *Context) Layout() *layout.Layout { return c.lay }

// Heap returns the process allocator, the only dynamic-memory source.
func (c *Context) Heap() *alloc.Allocator { return c.heap }

// Intr returns the critical-section controller guarding all shared state.
func (c *Context) Intr() *intr.Controller { return c.ints }

// Hook returns the fault handler for unrecoverable conditions.
func (c *Context) Hook() *fault.Handler { return c.hook }

// SP returns the initial stack pointer established at startup: the top of
// the stack region, since the stack grows downward.
func (c *Context) SP() uint32 { return c.sp }

// current is the installed process context. A fresh Boot (a power cycle in
// the simulation) replaces it atomically.
var current atomic.Pointer[Context]

// Current returns the runtime context, or ErrNotBooted before cold boot
// has constructed one.
func Current() (*Context, error) {
	c := current.Load()
	if c == nil {
		return nil, ErrNotBooted
	}
	return c, nil
}

func install(c *Context) { current.Store(c) }
