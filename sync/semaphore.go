// Package sync provides the kernel's thread-context synchronization
// primitives: a counting semaphore, a recursive mutex built on top of it,
// and a single-producer/single-consumer bounded buffer. None of these are
// safe to use from interrupt context; BlockCurrent only makes sense for a
// thread that has somewhere else to go.
package sync

import (
	"kernel386/irq"
	"kernel386/list"
	"kernel386/sched"
)

// Semaphore is a classic counting semaphore. Down blocks while the count
// is zero; Up increments it and wakes the longest-waiting blocked thread,
// if any.
type Semaphore struct {
	count uint32
	waitQ list.Queue[sched.TCB]
}

// NewSemaphore returns a semaphore initialized to val. Zero is a legal
// initial count: it means the first Down call blocks until some other
// thread calls Up.
func NewSemaphore(val uint32) *Semaphore {
	return &Semaphore{count: val}
}

// Down waits until the semaphore's count is non-zero, then decrements it.
// The wait loop re-checks the count after waking (Mesa-style): a woken
// thread re-competes for the resource and may lose to a racing Down.
func (s *Semaphore) Down() {
	g := irq.Disable()
	defer g.Release()

	for s.count == 0 {
		cur := sched.CurrentThread()
		s.waitQ.PushBack(cur.QueueNode())
		sched.BlockCurrent()
	}
	s.count--
}

// Up increments the semaphore's count and, if a thread is waiting, wakes
// the longest-waiting one (FIFO).
func (s *Semaphore) Up() {
	g := irq.Disable()
	defer g.Release()

	if node := s.waitQ.PopFront(); node != nil {
		sched.Unblock(node.Owner())
	}
	s.count++
}
