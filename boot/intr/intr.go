// Package intr implements the critical-section lock primitive: exclusive,
// machine-wide mutual exclusion modeled as an interrupt-enable state rather
// than a per-resource lock.
//
// The execution model matches the controller: one logical execution context
// plus asynchronous interrupt-style callbacks delivered by the firmware.
// Acquiring a critical section disables delivery; callbacks raised while
// disabled are queued and delivered, in order, when the outermost section
// releases or at the next idle tick. Handlers run with delivery disabled,
// so a handler that acquires its own critical section exercises the nested
// restore path.
//
// Critical sections must be held for bookkeeping only, never I/O: hold time
// bounds worst-case interrupt latency for the control loops.
package intr

import (
	"sync"
	"sync/atomic"
)

// Callback is an interrupt-style callback delivered by the firmware (timer
// tick, mode-change notification).
type Callback func()

// Token records the delivery-enable state captured at acquire time. Release
// restores exactly this state, so an inner acquire/release pair never
// re-enables delivery that an outer section had disabled.
type Token struct {
	enabled bool
}

// Controller owns the machine-wide interrupt-enable state and the queue of
// callbacks awaiting delivery. One controller exists per runtime context.
//
// Acquire, Release, With, and Tick belong to the single logical execution
// context. Raise may be called from any goroutine.
type Controller struct {
	depth atomic.Int32 // 0 = delivery enabled

	mu      sync.Mutex // guards pending
	pending []Callback

	dispatching bool // owning context only; breaks dispatch recursion
}

// NewController returns a controller with delivery enabled and nothing
// pending.
func NewController() *Controller {
	return &Controller{}
}

// Acquire disables callback delivery and returns the token for the matching
// Release. Nesting is unbounded; only the outermost acquire changes state.
func (c *Controller) Acquire() Token {
	prev := c.depth.Load()
	c.depth.Store(prev + 1)
	return Token{enabled: prev == 0}
}

// Release restores the state captured by the matching Acquire. When that
// state was "enabled", delivery resumes and queued callbacks run before
// Release returns. Tokens must be released in LIFO order; the scoped With
// wrapper guarantees this by construction.
func (c *Controller) Release(t Token) {
	d := c.depth.Load()
	if d == 0 {
		// Unbalanced release. Prevented by construction via With; ignoring
		// it here keeps Release total rather than introducing a failure
		// mode no caller can handle.
		return
	}
	c.depth.Store(d - 1)
	if t.enabled {
		c.dispatch()
	}
}

// With runs fn inside a critical section, releasing on every exit path
// including panic.
func (c *Controller) With(fn func()) {
	t := c.Acquire()
	defer c.Release(t)
	fn()
}

// Enabled reports whether callback delivery is currently enabled.
func (c *Controller) Enabled() bool {
	return c.depth.Load() == 0
}

// Raise queues an interrupt-style callback for delivery. Safe from any
// goroutine; the callback itself always runs on the owning context, at the
// outermost Release or the next Tick, with delivery disabled for its
// duration.
func (c *Controller) Raise(cb Callback) {
	c.mu.Lock()
	c.pending = append(c.pending, cb)
	c.mu.Unlock()
}

// Tick is the idle-point delivery hook, called by the startup sequencer's
// idle loop at the firmware's background-processing cadence. It is a no-op
// while delivery is disabled.
func (c *Controller) Tick() {
	if c.depth.Load() == 0 {
		c.dispatch()
	}
}

// Pending reports how many callbacks await delivery.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// dispatch drains the queue, running each callback inside its own critical
// section. Callbacks raised during dispatch are delivered in the same
// drain, preserving order.
func (c *Controller) dispatch() {
	if c.dispatching {
		return
	}
	c.dispatching = true
	defer func() { c.dispatching = false }()

	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.mu.Unlock()
			return
		}
		cb := c.pending[0]
		c.pending = c.pending[1:]
		c.mu.Unlock()

		c.With(cb)
	}
}
