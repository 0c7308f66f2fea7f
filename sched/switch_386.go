// +build 386

package sched

// contextSwitch saves the callee-saved registers on the outgoing stack,
// records the resulting stack pointer at *oldSPSlot, loads *newSPSlot into
// esp, and pops the incoming thread's callee-saved registers. Returning
// from contextSwitch therefore "returns into" whatever address is on top
// of the incoming stack -- for a freshly spawned thread, the trampoline
// installed by Spawn.
func contextSwitch(oldSPSlot, newSPSlot *uintptr)
