package keyboard

import (
	"kernel386/cpu"
	"kernel386/irq"
	"kernel386/sync"
)

const dataPort = 0x60

var (
	mods modifier

	// inBFn is mocked by tests.
	inBFn = cpu.InB

	// buffer hands decoded scan codes from the ISR to whatever thread
	// calls ReadByte. It is exported indirectly via ReadByte so callers
	// never need to reach into driver internals.
	buffer = sync.NewBoundedBuffer()
)

// Init registers the ISR for IRQ 0x21. The PIC line itself is unmasked
// separately, once the scheduler is up and a consumer thread exists to
// drain the buffer.
func Init() {
	irq.Register(irq.IRQKeyboard, handleIRQ)
}

// handleIRQ reads the scan code that caused the interrupt, folds it into
// the modifier state, and -- unless it was itself a modifier key --
// decodes it and hands it to the bounded buffer for a consumer thread.
func handleIRQ(v irq.Vector) {
	raw := inBFn(dataPort)
	if mods.update(raw) {
		return
	}

	sc := ScanCode{raw: raw, mod: mods}
	if ch := sc.ToChar(); ch != 0 {
		buffer.Put(ch)
	}
}

// ReadByte blocks until a decoded character is available and returns it.
// Intended to be called from a dedicated consumer thread, never from
// interrupt context.
func ReadByte() byte {
	return buffer.Get()
}
