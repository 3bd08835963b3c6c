package boot

import (
	"fmt"
	"io"

	"github.com/joshmaas/bootkit/boot/fault"
	"github.com/joshmaas/bootkit/boot/intr"
	"github.com/joshmaas/bootkit/internal/layout"
)

// UserEntry is the user program's entry point, handed the runtime context
// the sequencer constructed.
type UserEntry func(*Context)

// Options configures a cold boot. Zero values give a headless boot: no
// user entry, no console, default halt behavior.
type Options struct {
	// Entry is the user program. Boot returns after it does.
	Entry UserEntry

	// Console receives the startup banner and fault diagnostics. May be
	// nil.
	Console io.Writer

	// Halt is the firmware's terminal halt/reset, installed on the fault
	// hook. Must not return. Nil falls back to the fault package default.
	Halt func()

	// Exit is the vendor-defined idle/reload behavior entered when the
	// user entry returns. May be nil.
	Exit func()

	// NoBanner suppresses the startup banner.
	NoBanner bool
}

const banner = "bootkit: cold boot ok, running user code\n"

// Sequencer drives the cold-boot startup sequence over one memory image.
// It is the first code on the reset path; nothing it relies on exists yet,
// so construction takes only the two things the linker guarantees: the
// memory and its resolved layout.
type Sequencer struct {
	mem  *Memory
	lay  *layout.Layout
	opts Options
}

// NewSequencer validates that the layout fits the memory image and returns
// a sequencer ready to boot.
func NewSequencer(mem *Memory, lay *layout.Layout, opts Options) (*Sequencer, error) {
	if lay.Platform.RAMBase != mem.Base() || lay.Platform.RAMSize != mem.Size() {
		return nil, fmt.Errorf("boot: layout platform [0x%X, +0x%X) does not match memory [0x%X, +0x%X)",
			lay.Platform.RAMBase, lay.Platform.RAMSize, mem.Base(), mem.Size())
	}
	return &Sequencer{mem: mem, lay: lay, opts: opts}, nil
}

// Boot runs the cold-boot sequence:
//
//  1. validate the cold header (BootFault halts here, before user code)
//  2. zero every reserved region byte-for-byte
//  3. apply thread-local data fix-ups
//  4. establish the stack pointer at the top of the stack region
//  5. record heap bounds from the layout
//  6. install the critical-section backing, then the allocator over it
//  7. transfer control to the user entry point
//  8. on return, enter the vendor idle/reload behavior
//
// A captured user panic routes to the fault hook and is terminal. On a
// successful boot the constructed context is installed process-wide and
// returned.
func (s *Sequencer) Boot() (*Context, error) {
	// Step 1: the sentinel. A fresh boot that cannot prove its image is
	// intact must not run user code.
	cold, _ := s.lay.Extent(layout.SectionCold)
	hdrBytes, err := s.mem.Slice(cold.Start, cold.End)
	if err != nil {
		return nil, err
	}
	hdr, err := ParseColdHeader(hdrBytes)
	if err != nil {
		return nil, err
	}
	if err := hdr.Validate(); err != nil {
		return nil, err
	}

	// Step 2: reserved regions carry no image content; whatever the RAM
	// held before reset is garbage and must read zero before first use.
	for _, e := range s.lay.ZeroExtents() {
		b, err := s.mem.Slice(e.Start, e.End)
		if err != nil {
			return nil, err
		}
		for i := range b {
			b[i] = 0
		}
	}

	// Step 3: rebase thread-local initialized data.
	if err := s.applyFixups(); err != nil {
		return nil, err
	}

	// Step 4: stack pointer before anything that needs a call stack.
	sp := s.lay.StackTop()

	// Step 5: the only heap input the allocator may trust.
	heapStart, heapEnd := s.lay.HeapBounds()

	// Step 6: critical-section backing first; the allocator's first call
	// must already see it ready.
	cs := intr.NewController()
	heap, err := newHeapAllocator(s.mem, heapStart, heapEnd, cs)
	if err != nil {
		return nil, err
	}

	hook := fault.New(s.opts.Console, s.opts.Halt)
	heap.SetFatal(hook.Fatal)

	ctx := &Context{
		mem:  s.mem,
		lay:  s.lay,
		heap: heap,
		ints: cs,
		hook: hook,
		sp:   sp,
	}
	install(ctx)

	if s.opts.Console != nil && !s.opts.NoBanner {
		io.WriteString(s.opts.Console, banner) //nolint:errcheck // console writes are best-effort
	}

	// Step 7: user code.
	if s.opts.Entry != nil {
		s.runEntry(ctx)
	}

	// Step 8: never fall through to undefined execution. Flush pending
	// callbacks, then hand off to the vendor idle/reload behavior.
	ctx.ints.Tick()
	if s.opts.Exit != nil {
		s.opts.Exit()
	}
	return ctx, nil
}

// runEntry invokes the user entry point, routing any escaped panic to the
// fault hook. The hook is terminal, so a panicking user program never
// reaches step 8's idle path.
func (s *Sequencer) runEntry(ctx *Context) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if err, ok := r.(error); ok && err == fault.ErrHalted {
			// Already went through the hook (MustAlloc escalation or an
			// explicit abort); keep unwinding.
			panic(r)
		}
		ctx.hook.FatalAt(panicMessage(r), "user entry", 0)
	}()
	s.opts.Entry(ctx)
}

// panicMessage renders a recovered value without fmt: the fault path must
// stay allocation-light even before the hook takes over.
func panicMessage(r any) string {
	switch v := r.(type) {
	case string:
		return v
	case error:
		return v.Error()
	default:
		return "panic in user entry"
	}
}

// applyFixups walks the fix-up table: each entry names a word inside the
// thread-local initialized data region that holds an image-relative
// address, and gets rebased to the RAM base. An entry pointing outside
// .tdata means the table and the image disagree, which is a boot fault.
func (s *Sequencer) applyFixups() error {
	fix, _ := s.lay.Extent(layout.SectionFixup)
	if fix.Len() == 0 {
		return nil
	}
	table, err := s.mem.Slice(fix.Start, fix.End)
	if err != nil {
		return err
	}
	td, _ := s.lay.Extent(layout.SectionTData)

	for off := 0; off+layout.FixupEntrySize <= len(table); off += layout.FixupEntrySize {
		site := layout.ReadU32(table, off)
		if site == 0 {
			continue // unused tail of an 8-byte-rounded table
		}
		if site < td.Start || site+layout.WordSize > td.End {
			return fmt.Errorf("%w: fixup site 0x%X outside %s [0x%X, 0x%X)",
				ErrBootFault, site, layout.SectionTData, td.Start, td.End)
		}
		w, err := s.mem.Slice(site, site+layout.WordSize)
		if err != nil {
			return err
		}
		layout.PutU32(w, 0, layout.ReadU32(w, 0)+s.mem.Base())
	}
	return nil
}
