package irq

import "kernel386/cpu"

var (
	// The following functions are mocked by tests and are automatically
	// inlined by the compiler.
	defaultEnabledFn  = cpu.InterruptsEnabled
	defaultEnableFn   = cpu.EnableInterrupts
	defaultDisableFn  = cpu.DisableInterrupts
	enabledFn         = defaultEnabledFn
	enableFn          = defaultEnableFn
	disableFn         = defaultDisableFn
)

// Guard is an RAII-style interrupt-enable guard: it captures eflags.IF at
// construction, forces the requested state, and Release restores whatever
// state was captured regardless of what happened in between. This is the
// only sanctioned way to create a short critical section in kernel code
// that is not already running inside an ISR.
type Guard struct {
	prevEnabled bool
	released    bool
}

// Disable captures the current interrupt-enable state and disables
// interrupts. The typical use is:
//
//	g := irq.Disable()
//	defer g.Release()
func Disable() *Guard {
	return newGuard(false)
}

// Enable captures the current interrupt-enable state and enables
// interrupts.
func Enable() *Guard {
	return newGuard(true)
}

func newGuard(enable bool) *Guard {
	prev := enabledFn()
	if enable {
		enableFn()
	} else {
		disableFn()
	}
	return &Guard{prevEnabled: prev}
}

// Release restores the interrupt-enable state captured at construction.
// Calling Release more than once is a no-op.
func (g *Guard) Release() {
	if g.released {
		return
	}
	g.released = true

	if g.prevEnabled {
		enableFn()
	} else {
		disableFn()
	}
}
