// Package bootinfo parses the E820-style physical memory map that the
// external loader deposits at a fixed low-memory address before handing
// control to the kernel.
package bootinfo

import (
	"reflect"
	"unsafe"
)

// defaultMapAddr is the fixed physical (and, since the low 1 MiB is
// identity mapped, kernel-virtual) address where the loader writes the
// memory map: a uint32 entry count followed immediately by that many
// 20-byte entries. The same physical page is later reclaimed by vmm.Init
// as kernel-phys pool bitmap storage, so the memory map must be consumed
// before paging setup proceeds past that point.
const defaultMapAddr = 0x0800

// mapAddr is the address VisitEntries reads from. It defaults to the
// loader's fixed location but can be redirected by SetMapAddr, which tests
// use to point at an in-process fake buffer.
var mapAddr uintptr = defaultMapAddr

// SetMapAddr overrides the address the memory map is read from. Must be
// called before any other function in this package during normal boot
// (where it is a no-op, since mapAddr already defaults correctly); it
// exists chiefly so tests can supply a fake buffer.
func SetMapAddr(addr uintptr) {
	mapAddr = addr
}

// EntryType classifies a memory-map entry.
type EntryType uint32

// Usable marks a region the kernel may hand out through its page pools.
const Usable EntryType = 1

// Entry describes one contiguous physical range as reported by the loader's
// BIOS E820 call. It is the decoded form of a rawEntry, not the in-memory
// wire format itself.
type Entry struct {
	Address uintptr
	Length  uint64
	Type    EntryType
}

// rawEntry mirrors the loader's packed on-disk layout exactly: a uint64
// base, a uint64 length and a uint32 type, 20 bytes in all. The 64-bit
// fields are held as little-endian uint32 halves so the struct stays 20
// bytes with 4-byte alignment on every architecture.
type rawEntry struct {
	baseLo, baseHi     uint32
	lengthLo, lengthHi uint32
	typ                uint32
}

// VisitFn is called once per memory-map entry by VisitEntries. Returning
// false stops the iteration early.
type VisitFn func(*Entry) bool

// count overlays the uint32 entry count the loader wrote at mapAddr.
func count() uint32 {
	return *(*uint32)(unsafe.Pointer(mapAddr))
}

// entries overlays the loader-supplied entry table as a Go slice.
func entries() []rawEntry {
	n := count()
	return *(*[]rawEntry)(unsafe.Pointer(&reflect.SliceHeader{
		Data: mapAddr + 4,
		Len:  int(n),
		Cap:  int(n),
	}))
}

// VisitEntries calls fn once for every memory-map entry reported by the
// loader, stopping early if fn returns false.
func VisitEntries(fn VisitFn) {
	for _, raw := range entries() {
		entry := Entry{
			Address: uintptr(uint64(raw.baseHi)<<32 | uint64(raw.baseLo)),
			Length:  uint64(raw.lengthHi)<<32 | uint64(raw.lengthLo),
			Type:    EntryType(raw.typ),
		}
		if !fn(&entry) {
			return
		}
	}
}

// LargestUsable returns the largest Usable-typed region in the memory map,
// or a zero Entry and false if there is none.
func LargestUsable() (Entry, bool) {
	var best Entry
	var found bool

	VisitEntries(func(e *Entry) bool {
		if e.Type == Usable && e.Length > best.Length {
			best = *e
			found = true
		}
		return true
	})

	return best, found
}
