package sched

import (
	"reflect"

	kernel "kernel386"
	"kernel386/cpu"
)

// funcAddr returns the entry address of a bodyless, assembly-backed
// function -- the linker still resolves it to a real symbol, so reflect
// can report its address even though Go never generates a call frame for
// it.
func funcAddr(fn func()) uintptr {
	return reflect.ValueOf(fn).Pointer()
}

// runEntryThread is invoked by threadTrampoline the first time a newly
// spawned thread runs. It recovers the thread's entry function and
// argument from its own TCB -- not from the raw context frame
// contextSwitch restores, since a Go func value is a two-word closure that
// can't safely be smuggled through a single bare stack slot -- then turns
// interrupts back on (every context switch happens with them disabled,
// since the scheduler's queues are protected by interrupt-masking) before
// calling it.
func runEntryThread() {
	cur := CurrentThread()
	cpu.EnableInterrupts()
	cur.entryFn(cur.entryArg)

	// entryFn returned; entry functions must never return, so this is
	// reported as an assertion failure. Nothing reschedules a thread that
	// falls off the end of its entry function, so it then parks here
	// forever.
	kernel.Assert(false, "sched: thread entry function returned")
	for {
		cpu.Halt()
	}
}
