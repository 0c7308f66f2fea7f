package irq

import (
	"unsafe"

	"kernel386/cpu"
)

const (
	kernelCodeSelector = 0x08
	gateTypeInterrupt  = 0x8E // present, DPL 0, 32-bit interrupt gate
)

// gate is a 32-bit protected-mode interrupt-gate descriptor.
type gate struct {
	offsetLow  uint16
	selector   uint16
	zero       uint8
	typeAttr   uint8
	offsetHigh uint16
}

func newGate(handlerAddr uintptr) gate {
	return gate{
		offsetLow:  uint16(handlerAddr),
		selector:   kernelCodeSelector,
		zero:       0,
		typeAttr:   gateTypeInterrupt,
		offsetHigh: uint16(handlerAddr >> 16),
	}
}

var idt [NumVectors]gate

var (
	// loadIDTFn is mocked by tests and is automatically inlined by the
	// compiler.
	loadIDTFn = cpu.LoadIDT
)

// Init programs the PIC, fills the 48-entry IDT with interrupt gates
// pointing at the per-vector assembly stubs and loads the IDT register.
// Must run once, before interrupts are unmasked.
func Init() {
	initPIC()

	stubs := vectorStubTable()
	for i := range idt {
		idt[i] = newGate(stubs[i])
	}

	loadIDTFn(uintptr(unsafe.Pointer(&idt[0])), uint16(len(idt)*gateSize)-1)
}

const gateSize = 8
