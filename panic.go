package kernel

import (
	"runtime"

	"kernel386/cpu"
	"kernel386/driver/video/console"
	"kernel386/kfmt/early"
)

var (
	// cpuHaltFn is mocked by tests and is automatically inlined by the compiler.
	cpuHaltFn = cpu.Halt

	// paintScreenFn is mocked by tests; in production it flashes the active
	// console red so a panic is visible even if serial/video output scrolls
	// past before anyone is looking at the screen.
	paintScreenFn = paintScreenRed

	errRuntimePanic = &Error{Module: "rt", Message: "unknown cause"}
)

// panicConsole is the console painted red by Panic. It is wired up during
// boot, separately from the tty package, so Panic can still flash the
// screen even if the terminal's own state is corrupted.
var panicConsole console.Console

// SetPanicConsole registers the console that Panic paints red. Must be
// called once, early in the boot sequence.
func SetPanicConsole(cons console.Console) {
	panicConsole = cons
}

func paintScreenRed() {
	if panicConsole == nil {
		return
	}
	w, h := panicConsole.Dimensions()
	panicConsole.Clear(0, 0, w, h)
	panicConsole.Scroll(console.Up, 0)
	attr := (console.Red << 4) | console.White
	for y := uint16(0); y < h; y++ {
		for x := uint16(0); x < w; x++ {
			panicConsole.Write(' ', attr, x, y)
		}
	}
}

// Panic outputs the supplied error (if not nil) to the console, paints the
// screen red and halts the CPU. Calls to Panic never return. Panic also
// works as a redirection target for calls to panic() (resolved via
// runtime.gopanic)
//go:redirect-from runtime.gopanic
func Panic(e interface{}) {
	var err *Error

	switch t := e.(type) {
	case *Error:
		err = t
	case string:
		errRuntimePanic.Message = t
		err = errRuntimePanic
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	}

	cpu.DisableInterrupts()
	paintScreenFn()

	early.Printf("\n-----------------------------------\n")
	if err != nil {
		early.Printf("[%s] unrecoverable error: %s\n", err.Module, err.Message)
	}
	early.Printf("*** kernel panic: system halted ***")
	early.Printf("\n-----------------------------------\n")

	cpuHaltFn()
}

// Assert panics with a formatted message naming the calling file and line
// if cond is false. Assert is used throughout the kernel to guard
// programmer invariants (e.g. "interrupts must be disabled here") that, if
// violated, indicate a bug rather than a recoverable condition.
func Assert(cond bool, msg string) {
	if cond {
		return
	}

	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file, line = "???", 0
	}

	Panic(&Error{
		Module:  "assert",
		Message: msg + " (" + file + ":" + itoa(line) + ")",
	})
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	var buf [20]byte
	i := len(buf)
	neg := n < 0
	if neg {
		n = -n
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
