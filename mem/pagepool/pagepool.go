// Package pagepool implements the frame/virtual-address pool abstraction
// shared by the kernel and user physical and virtual memory ranges: a
// bitmap-backed allocator over a fixed-size, page-granular address range.
package pagepool

import (
	kernel "kernel386"
	"kernel386/mem"
	"kernel386/mem/bitmap"
)

// Pool reserves and releases contiguous runs of 4 KiB pages from a fixed
// address range, tracked by a bitmap. The same type backs all four of the
// kernel's pools (K_PHYS, K_VIRT, U_PHYS, U_VIRT); only the base address and
// backing buffer differ.
type Pool struct {
	bmp       bitmap.Bitmap
	base      uintptr
	freePages uint32
}

// Reset attaches buf as the pool's bitmap backing storage and configures
// the pool to manage spaceSize bytes of page-granular address space
// starting at base. Bits beyond the number of pages spaceSize actually
// covers are permanently marked allocated so the pool never hands them out.
func (p *Pool) Reset(buf []uint32, base uintptr, spaceSize mem.Size) {
	p.bmp.Init(buf)
	p.base = base

	freePages := uint32(spaceSize / mem.PageSize)
	bitCount := p.bmp.BitSize()
	if freePages > bitCount {
		freePages = bitCount
	}
	p.freePages = freePages

	// Bits at/after freePages cannot be represented by the caller's
	// region; permanently flag them allocated so alloc() never returns
	// them, then shrink the live range to match.
	p.bmp.SetRange(freePages, bitCount-freePages, true)
	p.bmp.SetLimit(freePages)
}

// PageCount returns the total number of pages the pool manages.
func (p *Pool) PageCount() uint32 {
	return p.bmp.Limit()
}

// FreePageCount returns the number of currently unallocated pages.
func (p *Pool) FreePageCount() uint32 {
	return p.freePages
}

// UsedPageCount returns the number of currently allocated pages.
func (p *Pool) UsedPageCount() uint32 {
	return p.bmp.Limit() - p.freePages
}

// Alloc reserves the lowest available run of n contiguous pages and returns
// the address of the first page. It returns (0, false) without scanning the
// bitmap if fewer than n pages are free, and (0, false) if no run of that
// length exists despite enough free pages (fragmentation).
func (p *Pool) Alloc(n uint32) (uintptr, bool) {
	if n == 0 || n > p.freePages {
		return 0, false
	}

	idx, ok := p.bmp.FindRun(0, p.bmp.Limit(), false, n)
	if !ok {
		return 0, false
	}

	p.bmp.SetRange(idx, n, true)
	p.freePages -= n
	return p.base + uintptr(idx)*uintptr(mem.PageSize), true
}

// Free releases the n-page run starting at addr. addr must be page-aligned
// and fall within the pool, and the run must currently be fully allocated;
// violating either is a programmer error.
func (p *Pool) Free(addr uintptr, n uint32) {
	if addr < p.base || addr >= p.base+uintptr(p.bmp.Limit())*uintptr(mem.PageSize) {
		return
	}

	kernel.Assert(addr%uintptr(mem.PageSize) == 0, "pagepool: address is not page-aligned")

	idx := uint32((addr - p.base) / uintptr(mem.PageSize))

	runIdx, ok := p.bmp.FindRun(idx, idx+n, true, n)
	kernel.Assert(ok && runIdx == idx, "pagepool: freeing an address range that is not fully allocated")

	p.bmp.SetRange(idx, n, false)
	p.freePages += n
}

// Base returns the pool's base address.
func (p *Pool) Base() uintptr {
	return p.base
}
