// Package vmm is the virtual memory manager: it owns the four page pools
// (kernel/user x physical/virtual), the recursive page-table mapping
// helpers, and the lock that serializes every mutation of the paging
// structures.
//
// The coarse lock here is interrupt-masking (package irq's Guard), not the
// semaphore-backed recursive lock in package sync: vmm.Init runs before
// the scheduler exists, and a lock built on a semaphore needs a current
// thread to block a waiter against. Interrupt masking has no such
// bootstrap dependency, which is also how the original C++ this was
// ported from protects its page manager (a plain disable/restore guard,
// not its thread-aware mutex).
package vmm

import (
	"reflect"
	"unsafe"

	kernel "kernel386"
	"kernel386/hal/bootinfo"
	"kernel386/irq"
	"kernel386/mem"
	"kernel386/mem/pagepool"
)

// Kind selects which pair of pools an allocation draws from.
type Kind int

const (
	Kernel Kind = iota
	User
)

// Fixed backing-store addresses for the four pool bitmaps, per the boot
// memory layout. Overridable via SetBitmapAddrs so tests can point them at
// ordinary heap buffers instead of literal low-memory addresses that only
// mean something on the booted kernel.
var (
	kPhysBitmapAddr uintptr = 0x0800
	kVirtBitmapAddr uintptr = 0x1800
	uPhysBitmapAddr uintptr = 0x2800
	uVirtBitmapAddr uintptr = 0x3800
)

// SetBitmapAddrs overrides the four pool bitmaps' backing-store addresses.
// Production boot code never calls this; it exists for tests.
func SetBitmapAddrs(kPhys, kVirt, uPhys, uVirt uintptr) {
	kPhysBitmapAddr, kVirtBitmapAddr, uPhysBitmapAddr, uVirtBitmapAddr = kPhys, kVirt, uPhys, uVirt
}

const (
	// bitmapWords is the size of each fixed backing buffer: one 4 KiB
	// page of uint32 words, good for 32768 pages (128 MiB) per pool.
	bitmapWords = 1024

	// kernelVirtBase is where the kernel's own code/data/heap live,
	// identity-mapped onto the same physical range at boot.
	kernelVirtBase uintptr = 0xC0000000

	// userVirtBase is the fixed start of the user virtual range.
	userVirtBase uintptr = 0x01000000

	kernelVirtSpace = mem.Size(0x40000000)               // 1 GiB address-space budget
	userVirtSpace   = mem.Size(kernelVirtBase - userVirtBase) // up to the kernel split

	// identityPages covers the loader's low 1 MiB identity mapping, which
	// Init must never hand back out as free physical memory.
	identityPages = uint32(0x100000 / uint64(mem.PageSize))

	pageTableEntries = 1024
)

var (
	kPhys, kVirt pagepool.Pool
	uPhys, uVirt pagepool.Pool

	initialized bool
)

// bufferAt overlays a []uint32 of the given word count on top of a fixed
// physical/low-memory address.
func bufferAt(addr uintptr, words int) []uint32 {
	return *(*[]uint32)(unsafe.Pointer(&reflect.SliceHeader{
		Data: addr,
		Len:  words,
		Cap:  words,
	}))
}

// Init reads the loader's memory map, carves the largest usable region in
// half between the kernel and user physical pools, and reserves the
// bootstrap identity mapping and the kernel virtual base page so neither
// is ever handed out by Alloc.
func Init() {
	guard := irq.Disable()
	defer guard.Release()

	if initialized {
		return
	}

	largest, ok := bootinfo.LargestUsable()
	kernel.Assert(ok, "vmm: no usable region in the boot memory map")

	half := mem.Size(largest.Length / 2)
	rest := mem.Size(largest.Length) - half

	kPhys.Reset(bufferAt(kPhysBitmapAddr, bitmapWords), largest.Address, half)
	uPhys.Reset(bufferAt(uPhysBitmapAddr, bitmapWords), largest.Address+uintptr(half), rest)
	kVirt.Reset(bufferAt(kVirtBitmapAddr, bitmapWords), kernelVirtBase, kernelVirtSpace)
	uVirt.Reset(bufferAt(uVirtBitmapAddr, bitmapWords), userVirtBase, userVirtSpace)

	_, ok = kPhys.Alloc(identityPages)
	kernel.Assert(ok, "vmm: failed to reserve the identity-mapped low memory range")

	_, ok = kVirt.Alloc(1)
	kernel.Assert(ok, "vmm: failed to reserve the kernel virtual base page")

	initialized = true
}

func poolsFor(kind Kind) (virt, dataPhys *pagepool.Pool) {
	if kind == User {
		return &uVirt, &uPhys
	}
	return &kVirt, &kPhys
}

// countMissingTables returns how many of the PDEs spanning [va, va+n*4KiB)
// are not yet present.
func countMissingTables(va uintptr, n uint32) uint32 {
	var missing uint32
	var lastPDI uintptr = ^uintptr(0)

	for i := uint32(0); i < n; i++ {
		pageVA := va + uintptr(i)*uintptr(mem.PageSize)
		pdi := pageVA >> 22
		if pdi == lastPDI {
			continue
		}
		lastPDI = pdi
		if !readEntryFn(pdeVA(pageVA)).present() {
			missing++
		}
	}
	return missing
}

// tableStartVA returns the virtual address of the first of the 1024 PTEs
// belonging to the page table that maps va -- i.e. the whole table, for
// zeroing, not just va's own entry.
func tableStartVA(va uintptr) uintptr {
	return pteTableVA + ((va & 0xFFC00000) >> 10)
}

// mapPage installs a (va, pa) mapping, allocating and zeroing a fresh page
// table from the kernel physical pool if the covering PDE isn't present
// yet. tableFrames supplies pre-reserved table frames in order.
func mapPage(va, pa uintptr, writable, user bool, tableFrames *uintptr) {
	pdAddr := pdeVA(va)
	if !readEntryFn(pdAddr).present() {
		frame := *tableFrames
		*tableFrames += uintptr(mem.PageSize)

		writeEntryFn(pdAddr, newEntry(frame, true, user))
		memsetFn(tableStartVA(va), 0, mem.Size(pageTableEntries*4))
	}
	writeEntryFn(pteVA(va), newEntry(pa, writable, user))
}

// memsetFn is mocked by tests for the same reason as readEntryFn/
// writeEntryFn: it zeroes a freshly mapped page table through its
// recursive-mapping address, which only exists once paging is live.
var memsetFn = mem.Memset

// Alloc reserves n virtual pages from kind's virtual pool, installs
// mappings for them backed by fresh physical frames, and returns the
// virtual base address. Page-table frames always come from the kernel
// physical pool, even for User allocations, since the kernel owns the
// paging structures. On any shortage, everything already reserved is
// rolled back and Alloc returns (0, false).
func Alloc(kind Kind, n uint32) (uintptr, bool) {
	guard := irq.Disable()
	defer guard.Release()

	if n == 0 {
		return 0, false
	}

	virtPool, dataPhys := poolsFor(kind)

	va, ok := virtPool.Alloc(n)
	if !ok {
		return 0, false
	}

	missing := countMissingTables(va, n)

	pa, ok := dataPhys.Alloc(n)
	if !ok {
		virtPool.Free(va, n)
		return 0, false
	}

	var tableBase uintptr
	if missing > 0 {
		tableBase, ok = kPhys.Alloc(missing)
		if !ok {
			dataPhys.Free(pa, n)
			virtPool.Free(va, n)
			return 0, false
		}
	}

	writable := true
	user := kind == User
	tableCursor := tableBase
	for i := uint32(0); i < n; i++ {
		pageVA := va + uintptr(i)*uintptr(mem.PageSize)
		pagePA := pa + uintptr(i)*uintptr(mem.PageSize)
		mapPage(pageVA, pagePA, writable, user, &tableCursor)
	}

	return va, true
}

// AllocPhys reserves n physical frames from kind's physical pool without
// installing any mapping for them; used for frames the caller will manage
// directly (e.g. DMA buffers already addressable through an existing
// identity mapping).
func AllocPhys(kind Kind, n uint32) (uintptr, bool) {
	guard := irq.Disable()
	defer guard.Release()

	_, dataPhys := poolsFor(kind)
	return dataPhys.Alloc(n)
}
