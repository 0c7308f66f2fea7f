package vmm

import "unsafe"

// The last page directory entry (index 1023) is set up by the loader to
// point at the page directory itself. That single self-reference is what
// lets the two formulas below compute the *virtual* address of any PDE or
// PTE for any virtual address, without ever touching a physical address
// directly -- CR3 is loaded once, at boot, and never consulted again.
const (
	pdeTableVA uintptr = 0xFFFFF000
	pteTableVA uintptr = 0xFFC00000
)

// pdeVA returns the virtual address of the page-directory entry that maps
// the 4 MiB region containing va.
func pdeVA(va uintptr) uintptr {
	return pdeTableVA + (va>>22)*4
}

// pteVA returns the virtual address of the page-table entry that maps va,
// reached through the same recursive self-reference.
func pteVA(va uintptr) uintptr {
	return pteTableVA + ((va & 0xFFC00000) >> 10) + ((va & 0x003FF000) >> 10)
}

func readEntryAt(va uintptr) entry {
	return *(*entry)(unsafe.Pointer(va))
}

func writeEntryAt(va uintptr, e entry) {
	*(*entry)(unsafe.Pointer(va)) = e
}

// readEntryFn / writeEntryFn are mocked by tests: the recursive-mapping
// addresses they otherwise dereference only mean something once paging
// and the self-referential PDE are live, which a hosted test binary never
// has.
var (
	readEntryFn  = readEntryAt
	writeEntryFn = writeEntryAt
)
