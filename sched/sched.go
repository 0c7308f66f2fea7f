package sched

import (
	"unsafe"

	kernel "kernel386"
	"kernel386/cpu"
	"kernel386/irq"
	"kernel386/list"
	"kernel386/mem"
)

// ThreadFunc is a schedulable thread's entry point.
type ThreadFunc func(arg unsafe.Pointer)

// FrameAllocator is satisfied by the virtual memory manager; sched depends
// on it only through this seam so tests can supply a fake backing store
// without pulling in the paging structures.
type FrameAllocator func() (uintptr, bool)

// allocKernelFrame is wired to vmm's kernel allocator during kmain's boot
// sequence; it defaults to a stub that always fails so an unwired scheduler
// cannot silently hand out garbage memory.
var allocKernelFrame FrameAllocator = func() (uintptr, bool) { return 0, false }

// SetFrameAllocator installs the allocator Spawn uses to obtain a fresh
// kernel frame for a thread's TCB + stack.
func SetFrameAllocator(fn FrameAllocator) {
	allocKernelFrame = fn
}

var (
	readyQueue list.Queue[TCB]
	allQueue   list.Queue[TCB]

	nextTID uint32 = 1

	initialized bool
)

// contextFrame is the register-save area contextSwitch expects to find on
// a suspended thread's stack: four callee-saved registers followed by the
// return address contextSwitch's own epilogue lands on. For a thread that
// has run before, that address is somewhere inside Yield/reschedule's own
// call stack; for a freshly spawned thread, Spawn points it at
// threadTrampolineAddr instead, so the first dispatch "returns" straight
// into thread startup.
type contextFrame struct {
	ebx, esi, edi, ebp uint32
	trampolineRet      uintptr
}

// interruptFrame reserves the space a per-vector asm stub pushes before
// calling into Go: general-purpose registers, vector/error code, and the
// CPU-pushed eip/cs/eflags triple. Its layout is never read from Go; only
// its size matters for laying out a freshly spawned stack.
type interruptFrame struct {
	edi, esi, ebp, espDummy, ebx, edx, ecx, eax uint32
	vector, errorCode                           uint32
	eip, cs, eflags                             uint32
}

// stackPointerFn is mocked by tests so scheduler bookkeeping can be
// exercised without a real 386 stack to introspect.
var stackPointerFn = cpu.StackPointer

// SetStackPointerFn overrides the function CurrentThread/Init use to
// locate the running thread's frame. Exists for tests in other packages
// (e.g. sync) that exercise code paths reaching CurrentThread indirectly;
// production code never calls this.
func SetStackPointerFn(fn func() uintptr) {
	stackPointerFn = fn
}

// Init converts the currently executing kernel stack into the scheduler's
// "main" thread and registers the timer ISR. Must run before the PIT is
// unmasked.
func Init() {
	if initialized {
		return
	}

	base := frameBase(stackPointerFn())
	main := tcbAt(base)
	mem.Memset(base, 0, mem.PageSize)

	main.setName("main")
	main.state = StateRunning
	main.tid = nextTID
	nextTID++
	main.basePrio = 1
	main.prio = 1
	main.magic = tcbMagic
	main.queueNode = list.NewNode(main)
	main.allNode = list.NewNode(main)

	allQueue.PushBack(main.allNode)

	irq.Register(irq.IRQTimer, timerISR)

	initialized = true
}

// CurrentThread returns the TCB of the thread that is running right now.
func CurrentThread() *TCB {
	return tcbAt(frameBase(stackPointerFn()))
}

// Spawn allocates one kernel frame, lays out a trampoline context on it and
// enqueues the new thread as READY. priority also serves as the thread's
// time-slice length, in ticks.
func Spawn(fn ThreadFunc, arg unsafe.Pointer, name string, priority uint32) (*TCB, bool) {
	if fn == nil {
		return nil, false
	}

	frame, ok := allocKernelFrame()
	if !ok {
		return nil, false
	}
	mem.Memset(frame, 0, mem.PageSize)

	t := tcbAt(frame)
	t.setName(name)
	t.tid = nextTID
	nextTID++
	t.state = StateReady
	t.basePrio = priority
	t.prio = priority
	t.magic = tcbMagic
	t.queueNode = list.NewNode(t)
	t.allNode = list.NewNode(t)
	t.entryFn = fn
	t.entryArg = arg

	top := frame + uintptr(mem.PageSize)
	top -= unsafe.Sizeof(interruptFrame{})
	top -= unsafe.Sizeof(contextFrame{})

	ctx := (*contextFrame)(unsafe.Pointer(top))
	ctx.trampolineRet = threadTrampolineAddr()

	t.savedSP = top

	readyQueue.PushBack(t.queueNode)
	allQueue.PushBack(t.allNode)

	return t, true
}

// timerISR is the single registered handler for IRQTimer: it decrements
// the running thread's remaining slice and, once it hits zero, performs a
// round-robin reschedule.
func timerISR(v irq.Vector) {
	cur := CurrentThread()
	kernel.Assert(cur.magicIntact(), "scheduler: TCB canary corrupted")

	if cur.decPriority() > 0 {
		return
	}
	cur.resetPriority()
	reschedule()
}

// reschedule moves the running thread to the back of the ready queue (if
// it is still runnable) and dispatches the head of the ready queue. It is
// the only caller of contextSwitch; Yield, BlockCurrent and timerISR all
// switch threads through it.
func reschedule() {
	cur := CurrentThread()

	if readyQueue.Empty() {
		return
	}

	if cur.state == StateRunning {
		cur.state = StateReady
		readyQueue.PushBack(cur.queueNode)
	}

	next := readyQueue.PopFront().Owner()
	next.state = StateRunning

	contextSwitch(&cur.savedSP, &next.savedSP)
}

// Yield voluntarily gives up the remainder of the current time-slice.
func Yield() {
	guard := irq.Disable()
	defer guard.Release()

	reschedule()
}

// BlockCurrent marks the running thread BLOCKED and immediately invokes
// the scheduler body to pick a replacement. Interrupts must already be
// disabled by the caller (e.g. a semaphore's guard); BlockCurrent does not
// restore them -- that happens when this thread is next dispatched and its
// own caller's guard unwinds.
func BlockCurrent() {
	kernel.Assert(!cpu.InterruptsEnabled(), "sched: BlockCurrent called with interrupts enabled")

	cur := CurrentThread()
	cur.state = StateBlocked
	reschedule()
}

// Unblock moves a BLOCKED thread back onto the ready queue.
func Unblock(t *TCB) {
	guard := irq.Disable()
	defer guard.Release()

	kernel.Assert(t.state == StateBlocked, "sched: Unblock called on a non-blocked thread")

	t.state = StateReady
	readyQueue.PushBack(t.queueNode)
}
