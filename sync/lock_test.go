package sync

import (
	"testing"
	"unsafe"

	"kernel386/cpu"
	"kernel386/mem"
	"kernel386/sched"
)

// fakeCurrentThread installs a TCB backed by an ordinary Go buffer and
// points sched.CurrentThread at it, so Lock/Semaphore code exercising
// "who's running" doesn't need a real 386 stack.
func fakeCurrentThread(t *testing.T) *sched.TCB {
	t.Helper()
	buf := make([]byte, mem.PageSize*2)
	addr := uintptr(unsafe.Pointer(&buf[0]))
	aligned := (addr + uintptr(mem.PageSize) - 1) &^ uintptr(mem.PageSize-1)

	sched.SetStackPointerFn(func() uintptr { return aligned })
	t.Cleanup(func() { sched.SetStackPointerFn(cpu.StackPointer) })

	return sched.CurrentThread()
}

func TestAcquireIsRecursive(t *testing.T) {
	fakeCurrentThread(t)
	l := NewLock()

	l.Acquire()
	l.Acquire()

	if l.depth != 2 {
		t.Fatalf("expected recursion depth 2; got %d", l.depth)
	}

	l.Release()
	if l.holder == nil {
		t.Fatalf("expected the lock to still be held after one Release")
	}

	l.Release()
	if l.holder != nil {
		t.Fatalf("expected the lock to be free after matching Releases")
	}
}
