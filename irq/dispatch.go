package irq

import (
	kernel "kernel386"
	"kernel386/kfmt/early"
)

// Handler is invoked by Dispatch for a given vector.
type Handler func(v Vector)

var handlers [NumVectors]Handler

var (
	// panicFn is mocked by tests and is automatically inlined by the compiler.
	panicFn = kernel.Panic
)

// Register installs fn as the handler for vector, replacing any handler
// previously registered for it. The table is written under an interrupt
// guard since Dispatch may run concurrently from an ISR.
func Register(vector Vector, fn Handler) {
	g := Disable()
	defer g.Release()

	handlers[vector] = fn
}

// Dispatch is called by the per-vector assembly stub with the vector number
// that fired. If no handler is registered for a CPU exception, the kernel
// prints a labelled diagnostic and panics; an unregistered device IRQ is
// silently ignored (the PIC end-of-interrupt is still sent, by the calling
// stub, regardless of whether a handler ran).
func Dispatch(vectorNum uint8) {
	v := Vector(vectorNum)

	if fn := handlers[v]; fn != nil {
		fn(v)
		return
	}

	if !v.IsException() {
		return
	}

	early.Printf("\nunhandled CPU exception %#x: %s\n", uint8(v), v.Name())
	panicFn(&kernel.Error{Module: "irq", Message: "unhandled CPU exception: " + v.Name()})
}
