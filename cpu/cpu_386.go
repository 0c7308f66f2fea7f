// +build 386

// Package cpu declares the arch-specific primitives that the kernel core
// relies on but cannot express in Go. Each function below has no body; its
// implementation lives in the per-vector/per-primitive assembly stubs that
// the external bootloader/build toolchain links against (out of scope for
// this repository, same as the rt0 trampoline).
package cpu

// EnableInterrupts sets eflags.IF, allowing maskable interrupts to fire.
func EnableInterrupts()

// DisableInterrupts clears eflags.IF.
func DisableInterrupts()

// InterruptsEnabled reports whether eflags.IF is currently set.
func InterruptsEnabled() bool

// Halt stops instruction execution until the next interrupt.
func Halt()

// FlushTLBEntry flushes the TLB entry for a particular virtual address.
func FlushTLBEntry(virtAddr uintptr)

// SwitchPDT loads cr3 with the physical address of a page directory and
// implicitly flushes the entire TLB.
func SwitchPDT(pdtPhysAddr uintptr)

// ActivePDT returns the physical address currently loaded in cr3.
func ActivePDT() uintptr

// ReadCR2 returns the faulting linear address recorded by the last page
// fault.
func ReadCR2() uintptr

// StackPointer returns the current value of esp.
func StackPointer() uintptr

// InB reads a single byte from the given I/O port.
func InB(port uint16) uint8

// OutB writes a single byte to the given I/O port.
func OutB(port uint16, value uint8)

// InW reads a 16-bit word from the given I/O port.
func InW(port uint16) uint16

// OutW writes a 16-bit word to the given I/O port.
func OutW(port uint16, value uint16)

// LoadIDT executes lidt, pointing the CPU at a descriptor table of size
// (limit+1) bytes starting at base.
func LoadIDT(base uintptr, limit uint16)
