package sync

import (
	kernel "kernel386"
	"kernel386/sched"
)

// boundedBufferSize matches the scan-code ring the keyboard ISR feeds.
const boundedBufferSize = 128

// BoundedBuffer is a single-producer/single-consumer ring buffer. Put and
// Get each block while the buffer is full or empty, respectively. Only one
// producer and one consumer may ever be waiting at a time -- a second
// concurrent waiter on the same side is a usage error, not a condition to
// recover from, so it is reported via assertion.
type BoundedBuffer struct {
	lock *Lock

	buf        [boundedBufferSize]byte
	head, tail int32

	producer *sched.TCB
	consumer *sched.TCB
}

// NewBoundedBuffer returns an empty bounded buffer.
func NewBoundedBuffer() *BoundedBuffer {
	return &BoundedBuffer{lock: NewLock()}
}

func (b *BoundedBuffer) next(pos int32) int32 {
	return (pos + 1) % boundedBufferSize
}

func (b *BoundedBuffer) full() bool {
	return b.next(b.head) == b.tail
}

func (b *BoundedBuffer) empty() bool {
	return b.head == b.tail
}

// Put appends a byte, blocking while the buffer is full.
func (b *BoundedBuffer) Put(item byte) {
	b.lock.Acquire()
	for b.full() {
		b.waitAsProducer()
		b.lock.Acquire()
	}

	b.buf[b.head] = item
	b.head = b.next(b.head)

	if b.consumer != nil {
		b.signalConsumer()
	}
	b.lock.Release()
}

// Get removes and returns the oldest byte, blocking while the buffer is
// empty.
func (b *BoundedBuffer) Get() byte {
	b.lock.Acquire()
	for b.empty() {
		b.waitAsConsumer()
		b.lock.Acquire()
	}

	item := b.buf[b.tail]
	b.tail = b.next(b.tail)

	if b.producer != nil {
		b.signalProducer()
	}
	b.lock.Release()
	return item
}

// waitAsProducer registers the calling thread as the waiting producer,
// releases the lock and only then blocks -- in that order, so a thread
// holding b.lock is never the one put to sleep. Releasing first is what
// lets signalProducer (called from inside a later Get, under its own
// Acquire) ever run at all.
func (b *BoundedBuffer) waitAsProducer() {
	kernel.Assert(b.producer == nil, "boundedbuffer: a second producer tried to wait")
	b.producer = sched.CurrentThread()
	b.lock.Release()
	sched.BlockCurrent()
}

// waitAsConsumer mirrors waitAsProducer for the consumer side.
func (b *BoundedBuffer) waitAsConsumer() {
	kernel.Assert(b.consumer == nil, "boundedbuffer: a second consumer tried to wait")
	b.consumer = sched.CurrentThread()
	b.lock.Release()
	sched.BlockCurrent()
}

func (b *BoundedBuffer) signalProducer() {
	th := b.producer
	b.producer = nil
	kernel.Assert(th != nil, "boundedbuffer: signalProducer with no waiting producer")
	sched.Unblock(th)
}

func (b *BoundedBuffer) signalConsumer() {
	th := b.consumer
	b.consumer = nil
	kernel.Assert(th != nil, "boundedbuffer: signalConsumer with no waiting consumer")
	sched.Unblock(th)
}
