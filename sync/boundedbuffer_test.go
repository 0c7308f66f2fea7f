package sync

import "testing"

func TestPutGetRoundTrip(t *testing.T) {
	fakeCurrentThread(t)
	bb := NewBoundedBuffer()

	bb.Put('a')
	bb.Put('b')

	if got := bb.Get(); got != 'a' {
		t.Fatalf("expected 'a'; got %q", got)
	}
	if got := bb.Get(); got != 'b' {
		t.Fatalf("expected 'b'; got %q", got)
	}
	if !bb.empty() {
		t.Fatalf("expected buffer to be empty after draining")
	}
}

func TestNextWrapsAtBufferSize(t *testing.T) {
	bb := NewBoundedBuffer()
	if got := bb.next(boundedBufferSize - 1); got != 0 {
		t.Fatalf("expected next() to wrap to 0; got %d", got)
	}
}

func TestFullOneSlotBeforeWrap(t *testing.T) {
	fakeCurrentThread(t)
	bb := NewBoundedBuffer()

	for i := 0; i < boundedBufferSize-1; i++ {
		bb.Put(byte(i))
	}
	if !bb.full() {
		t.Fatalf("expected buffer to report full with %d items queued", boundedBufferSize-1)
	}
}
