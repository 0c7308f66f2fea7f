package irq

import "testing"

func TestGuardRestoresPreviousState(t *testing.T) {
	defer func() {
		enabledFn = defaultEnabledFn
		enableFn = defaultEnableFn
		disableFn = defaultDisableFn
	}()

	var enabled bool
	enabledFn = func() bool { return enabled }
	enableFn = func() { enabled = true }
	disableFn = func() { enabled = false }

	enabled = true
	g := Disable()
	if enabled {
		t.Fatal("expected Disable() to clear the interrupt flag")
	}
	g.Release()
	if !enabled {
		t.Fatal("expected Release() to restore the previously-enabled state")
	}
}

func TestGuardReleaseIsIdempotent(t *testing.T) {
	defer func() {
		enabledFn = defaultEnabledFn
		enableFn = defaultEnableFn
		disableFn = defaultDisableFn
	}()

	var calls int
	enabled := false
	enabledFn = func() bool { return enabled }
	enableFn = func() { enabled = true }
	disableFn = func() { calls++; enabled = false }

	g := Enable()
	g.Release()
	g.Release()

	if calls != 1 {
		t.Fatalf("expected exactly one restore call; got %d", calls)
	}
}
