package tty

import "kernel386/driver/video/console"

// Active is the terminal used for kernel diagnostics and the early
// allocation-free printf implementation. It is wired up during boot, before
// the virtual memory manager is available, so its backing console must use a
// fixed, identity-mapped address.
var Active = &Vt{}

// textCons is the default physical console backing Active.
var textCons = &console.Text{}

// Init wires Active to the fixed-address text console. Must be called once,
// early in the boot sequence, before any diagnostic output is emitted.
func Init() {
	textCons.Init()
	Active.AttachTo(textCons)
}

// Console returns the physical console backing Active, so callers that need
// direct access to it (kernel.SetPanicConsole, in particular) don't have to
// keep their own reference around.
func Console() console.Console {
	return textCons
}
