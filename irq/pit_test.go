package irq

import "testing"

func TestInitPITWritesCommandThenDivisorBytes(t *testing.T) {
	var log []struct {
		port  uint16
		value uint8
	}
	origOutB, origInB := outBFn, inBFn
	outBFn = func(port uint16, value uint8) {
		log = append(log, struct {
			port  uint16
			value uint8
		}{port, value})
	}
	inBFn = func(uint16) uint8 { return 0 }
	t.Cleanup(func() {
		outBFn = origOutB
		inBFn = origInB
	})

	InitPIT(1000)

	if len(log) < 3 {
		t.Fatalf("expected at least 3 port writes (command, lo, hi); got %d", len(log))
	}
	if log[0].port != pitCommandPort {
		t.Fatalf("expected first write to command port %#x; got %#x", pitCommandPort, log[0].port)
	}

	divisor := uint16(pitBaseFrequency / 1000)
	if log[1].port != pitDataPort || log[1].value != uint8(divisor) {
		t.Fatalf("expected low byte %#x on data port; got port=%#x value=%#x", uint8(divisor), log[1].port, log[1].value)
	}
	if log[2].port != pitDataPort || log[2].value != uint8(divisor>>8) {
		t.Fatalf("expected high byte %#x on data port; got port=%#x value=%#x", uint8(divisor>>8), log[2].port, log[2].value)
	}
}

func TestInitPITUnmasksTimerIRQ(t *testing.T) {
	get, _ := withFakePorts(t)
	initPIC()

	InitPIT(1000)

	if got := get(picMasterData); got&(1<<(IRQTimer-IRQBase)) != 0 {
		t.Fatalf("expected timer line to be unmasked; mask=%#x", got)
	}
}
