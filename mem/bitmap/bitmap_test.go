package bitmap

import "testing"

func TestSetAndTest(t *testing.T) {
	var b Bitmap
	b.Init(make([]uint32, 2))

	b.Set(0, true)
	b.Set(33, true)

	if !b.Test(0, true) {
		t.Fatal("expected bit 0 to be set")
	}
	if !b.Test(33, true) {
		t.Fatal("expected bit 33 to be set")
	}
	if !b.Test(1, false) {
		t.Fatal("expected bit 1 to be unset")
	}

	b.Set(0, false)
	if !b.Test(0, false) {
		t.Fatal("expected bit 0 to be cleared")
	}
}

func TestSetRange(t *testing.T) {
	var b Bitmap
	b.Init(make([]uint32, 3))

	b.SetRange(10, 50, true)

	for i := uint32(0); i < 10; i++ {
		if b.Test(i, true) {
			t.Fatalf("expected bit %d to remain unset", i)
		}
	}
	for i := uint32(10); i < 60; i++ {
		if !b.Test(i, true) {
			t.Fatalf("expected bit %d to be set", i)
		}
	}
	for i := uint32(60); i < 96; i++ {
		if b.Test(i, true) {
			t.Fatalf("expected bit %d to remain unset", i)
		}
	}
}

func TestSetRangeClampsToBitSize(t *testing.T) {
	var b Bitmap
	b.Init(make([]uint32, 1))

	b.SetRange(28, 20, true)

	for i := uint32(28); i < 32; i++ {
		if !b.Test(i, true) {
			t.Fatalf("expected bit %d to be set", i)
		}
	}
}

func TestCount(t *testing.T) {
	var b Bitmap
	b.Init(make([]uint32, 2))
	b.SetLimit(50)

	b.SetRange(0, 40, true)

	if got := b.Count(true); got != 40 {
		t.Fatalf("expected 40 set bits; got %d", got)
	}
	if got := b.Count(false); got != 10 {
		t.Fatalf("expected 10 unset bits; got %d", got)
	}
}

func TestFindRun(t *testing.T) {
	var b Bitmap
	b.Init(make([]uint32, 2))

	b.SetRange(0, 64, false)
	b.SetRange(5, 3, true)

	idx, ok := b.FindRun(0, 64, true, 3)
	if !ok || idx != 5 {
		t.Fatalf("expected run at index 5; got idx=%d ok=%v", idx, ok)
	}
}

func TestFindRunAcrossWordBoundary(t *testing.T) {
	var b Bitmap
	b.Init(make([]uint32, 2))

	b.SetRange(30, 6, true)

	idx, ok := b.FindRun(0, 64, true, 6)
	if !ok || idx != 30 {
		t.Fatalf("expected run at index 30; got idx=%d ok=%v", idx, ok)
	}
}

func TestFindRunNoMatch(t *testing.T) {
	var b Bitmap
	b.Init(make([]uint32, 1))
	b.SetRange(0, 32, true)

	idx, ok := b.FindRun(0, 32, false, 1)
	if ok {
		t.Fatalf("expected no run to be found; got idx=%d", idx)
	}
	if idx != InvalidIndex {
		t.Fatalf("expected InvalidIndex sentinel; got %d", idx)
	}
}

func TestFindRunRespectsLimit(t *testing.T) {
	var b Bitmap
	b.Init(make([]uint32, 1))
	b.SetLimit(10)
	b.SetRange(0, 10, false)

	// bits 10-31 are beyond the live limit and should never be returned,
	// even though they default to zero (unallocated) in the backing words.
	idx, ok := b.FindRun(0, 32, false, 5)
	if !ok || idx >= 10 {
		t.Fatalf("expected run within the live limit; got idx=%d ok=%v", idx, ok)
	}
}

// Test(i) for i beyond BitSize() is a fatal assertion (kernel.Assert halts
// the CPU), so it is a programmer error rather than something exercised
// here; see mem/bitmap.Bitmap.Test.
