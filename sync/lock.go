package sync

import "kernel386/sched"

// Lock is a recursive mutex: the owning thread may re-acquire it without
// deadlocking itself, at the cost of having to release it exactly as many
// times as it acquired it. It is a thread-context primitive only --
// holding it across an ISR is undefined, since an ISR has no thread
// identity to compare against the owner.
type Lock struct {
	holder *sched.TCB
	depth  uint32
	sema   *Semaphore
}

// NewLock returns an unheld recursive lock.
func NewLock() *Lock {
	return &Lock{sema: NewSemaphore(1)}
}

// Acquire takes the lock. If the calling thread already holds it, this
// only bumps the recursion depth.
func (l *Lock) Acquire() {
	cur := sched.CurrentThread()
	if l.holder != cur {
		l.sema.Down()
		l.holder = cur
		l.depth = 1
	} else {
		l.depth++
	}
}

// Release gives up one level of recursion. Once depth reaches zero the
// lock is handed to the next waiter, if any.
func (l *Lock) Release() {
	if l.depth > 1 {
		l.depth--
		return
	}
	l.holder = nil
	l.depth = 0
	l.sema.Up()
}
