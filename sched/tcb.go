// Package sched implements the preemptive, single-priority-class
// round-robin thread scheduler. A thread has no heap-allocated control
// block: its TCB is the first few dozen bytes of a page-aligned kernel
// frame, and its kernel stack occupies the rest of that same page. The
// scheduler therefore never needs a dedicated per-CPU "current thread"
// register: masking the stack pointer down to its page boundary recovers
// the TCB of whichever thread is running.
package sched

import (
	"unsafe"

	"kernel386/list"
)

// State is a thread's position in the scheduling state machine.
type State uint32

const (
	StateUninitialized State = iota
	StateRunning
	StateReady
	StateBlocked
)

const (
	// nameLen bounds the debug name copied into each TCB.
	nameLen = 16

	// tcbMagic marks a live TCB; corruption of the canary (a stray write
	// past the end of the kernel stack growing down onto the TCB) is
	// detected by checking it against this constant.
	tcbMagic uint32 = 0xDEADDEAD

	// framePageMask recovers the page-aligned base address of whatever
	// frame the current stack pointer falls inside.
	framePageMask = ^uintptr(0xFFF)
)

// TCB is the thread control block. It always sits at the lowest address of
// the page-aligned frame backing a thread's kernel stack.
type TCB struct {
	savedSP  uintptr
	tid      uint32
	state    State
	basePrio uint32
	prio     uint32
	name     [nameLen]byte

	// queueNode links this TCB into exactly one queue at a time: the
	// ready queue while READY, or some semaphore/lock/bounded-buffer wait
	// queue while BLOCKED. A thread is never on both, so one node
	// suffices -- this is also why allocating a wait node per Down() call
	// would be both wasteful and wrong.
	queueNode *list.Node[TCB]
	allNode   *list.Node[TCB]

	// entryFn/entryArg are read by runEntryThread the first time this
	// thread is dispatched. They live here, not in the raw context frame
	// contextSwitch restores, because a Go func value is a two-word
	// closure, not a single bare code pointer, and the TCB (unlike a
	// stack slot popped by the asm trampoline) is a stable, Go-visible
	// location for the runtime to keep it alive.
	entryFn  ThreadFunc
	entryArg unsafe.Pointer

	magic uint32
}

// QueueNode exposes the TCB's single intrusive queue link so the
// synchronization primitives in package sync can park a blocked thread on
// a wait queue without allocating.
func (t *TCB) QueueNode() *list.Node[TCB] {
	return t.queueNode
}

func (t *TCB) IsRunning() bool { return t.state == StateRunning }
func (t *TCB) IsReady() bool   { return t.state == StateReady }
func (t *TCB) IsBlocked() bool { return t.state == StateBlocked }

func (t *TCB) State() State     { return t.state }
func (t *TCB) TID() uint32      { return t.tid }
func (t *TCB) Priority() uint32 { return t.prio }

// Name returns the thread's debug name as a string, trimmed at the first
// NUL byte.
func (t *TCB) Name() string {
	for i, b := range t.name {
		if b == 0 {
			return string(t.name[:i])
		}
	}
	return string(t.name[:])
}

func (t *TCB) setName(name string) {
	n := copy(t.name[:nameLen-1], name)
	t.name[n] = 0
}

// decPriority decrements the remaining time-slice and returns the new
// value.
func (t *TCB) decPriority() uint32 {
	t.prio--
	return t.prio
}

func (t *TCB) resetPriority() {
	t.prio = t.basePrio
}

// magicIntact reports whether the TCB canary is still in place; a false
// return means something has overrun the kernel stack into its own TCB.
func (t *TCB) magicIntact() bool {
	return t.magic == tcbMagic
}

// tcbAt overlays a *TCB onto the page-aligned frame starting at addr.
func tcbAt(addr uintptr) *TCB {
	return (*TCB)(unsafe.Pointer(addr))
}

// frameBase masks a stack pointer down to the start of the page that
// holds it -- the address at which that thread's TCB lives.
func frameBase(sp uintptr) uintptr {
	return sp & framePageMask
}
