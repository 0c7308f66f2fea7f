// +build 386

package sched

// threadTrampoline is the fixed entry point contextSwitch lands on the
// very first time a freshly spawned thread is dispatched. Its only job is
// to call runEntryThread with the platform calling convention; out of
// scope for Go, like the rest of the arch trampoline.
func threadTrampoline()

// threadTrampolineAddr returns the address contextFrame.trampolineRet
// should point at.
func threadTrampolineAddr() uintptr {
	return funcAddr(threadTrampoline)
}
