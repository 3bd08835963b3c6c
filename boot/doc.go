// Package boot is the cold-boot substrate for the controller runtime: the
// modeled address space, the cold-header sentinel the uploader keys hot
// relinks off, the startup sequencer that turns a flashed image into a
// runnable process, and the runtime context binding the allocator, the
// critical-section controller, and the fault hook together.
//
// # Boot sequence
//
// The reset path constructs a Sequencer from the memory and its resolved
// layout, then calls Boot. Boot validates the cold header, zeroes every
// reserved region, applies thread-local fix-ups, establishes the stack
// pointer and heap bounds, installs the critical-section backing and the
// allocator over it, and only then transfers control to the user entry
// point. A validation failure is a BootFault: the sequencer stops before
// any user code runs.
//
//	mem, _ := boot.NewMemory(pm)
//	lay, _ := layout.Resolve(pm, sizes)
//	boot.InstallColdHeader(mem, lay, boot.DefaultColdHeader)
//	seq, _ := boot.NewSequencer(mem, lay, boot.Options{Entry: run})
//	ctx, err := seq.Boot()
//
// # Lifecycle
//
// One user program per power cycle. The context Boot installs lives until
// the next power cycle, which re-enters cold boot from scratch; there is
// no partial teardown.
//
// # Related packages
//
//   - github.com/joshmaas/bootkit/internal/layout: region table and symbols
//   - github.com/joshmaas/bootkit/boot/alloc: the heap allocator
//   - github.com/joshmaas/bootkit/boot/intr: the critical-section primitive
//   - github.com/joshmaas/bootkit/boot/fault: the terminal fault hook
package boot
