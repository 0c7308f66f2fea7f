// Package kmain holds the single entry point the rt0 assembly trampoline
// jumps to once it has set up a GDT and a minimal stack.
package kmain

import (
	"unsafe"

	kernel "kernel386"
	"kernel386/driver/keyboard"
	"kernel386/driver/tty"
	"kernel386/irq"
	"kernel386/kfmt"
	"kernel386/kfmt/early"
	"kernel386/mem/vmm"
	"kernel386/sched"
)

// Kmain is the only Go symbol visible to the rt0 trampoline. kernelStart and
// kernelEnd are the physical bounds of the loaded kernel image, as reported
// by the loader. Kmain does not pass them on: vmm.Init takes no arguments
// and carves up memory from the E820 map alone.
//
// Kmain is not expected to return. If it does, the rt0 code halts the CPU.
//
//go:noinline
func Kmain(kernelStart, kernelEnd uintptr) {
	tty.Init()
	kernel.SetPanicConsole(tty.Console())
	tty.Active.Clear()

	early.Printf("booting...\n")

	vmm.Init()
	kfmt.SetOutputSink(tty.Active)

	irq.Init()
	sched.Init()
	sched.SetFrameAllocator(func() (uintptr, bool) {
		return vmm.Alloc(vmm.Kernel, 1)
	})

	keyboard.Init()

	_, ok := sched.Spawn(consoleShell, nil, "shell", 1)
	kernel.Assert(ok, "kmain: failed to spawn the console shell thread")

	irq.EnableIRQ(irq.IRQKeyboard)
	irq.InitPIT(irq.DefaultTimerHz)

	// The boot thread becomes the idle thread once the scheduler is live:
	// it has nothing left to do but yield to whatever runs next.
	for {
		sched.Yield()
	}
}

// consoleShell echoes decoded keystrokes back to the active terminal. It is
// the first user-visible thread spawned at boot, proof that the scheduler,
// the keyboard driver and the bounded buffer between them all work end to
// end.
func consoleShell(_ unsafe.Pointer) {
	for {
		ch := keyboard.ReadByte()
		kfmt.Printf("%s", string(ch))
	}
}
