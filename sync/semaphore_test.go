package sync

import "testing"

func TestNewSemaphoreAllowsZero(t *testing.T) {
	s := NewSemaphore(0)
	if s.count != 0 {
		t.Fatalf("expected a zero initial value to be kept as 0; got %d", s.count)
	}
}

func TestDownDecrementsAvailableCount(t *testing.T) {
	s := NewSemaphore(2)
	s.Down()
	if s.count != 1 {
		t.Fatalf("expected count 1 after one Down; got %d", s.count)
	}
}

func TestUpIncrementsCount(t *testing.T) {
	s := NewSemaphore(1)
	s.Down()
	s.Up()
	if s.count != 1 {
		t.Fatalf("expected count 1 after Down then Up; got %d", s.count)
	}
}

func TestUpWithNoWaitersJustIncrements(t *testing.T) {
	s := NewSemaphore(3)
	s.Up()
	if s.count != 4 {
		t.Fatalf("expected count 4; got %d", s.count)
	}
	if !s.waitQ.Empty() {
		t.Fatalf("expected no waiters to have been touched")
	}
}
