package irq

import (
	"testing"

	"kernel386/cpu"
)

func withFakePorts(t *testing.T) (get func(uint16) uint8, writes *[]struct {
	port  uint16
	value uint8
}) {
	t.Helper()

	ports := map[uint16]uint8{}
	var log []struct {
		port  uint16
		value uint8
	}

	outBFn = func(port uint16, value uint8) {
		ports[port] = value
		log = append(log, struct {
			port  uint16
			value uint8
		}{port, value})
	}
	inBFn = func(port uint16) uint8 {
		return ports[port]
	}

	t.Cleanup(func() {
		outBFn = cpu.OutB
		inBFn = cpu.InB
	})

	return func(p uint16) uint8 { return ports[p] }, &log
}

func TestInitPICMasksAllLines(t *testing.T) {
	get, _ := withFakePorts(t)

	initPIC()

	if got := get(picMasterData); got != 0xFF {
		t.Fatalf("expected master mask to be 0xFF after init; got %#x", got)
	}
	if got := get(picSlaveData); got != 0xFF {
		t.Fatalf("expected slave mask to be 0xFF after init; got %#x", got)
	}
}

func TestEnableDisableIRQ(t *testing.T) {
	get, _ := withFakePorts(t)
	initPIC()

	EnableIRQ(IRQKeyboard) // line 1 on master

	if got := get(picMasterData); got&(1<<1) != 0 {
		t.Fatalf("expected keyboard line to be unmasked; mask=%#x", got)
	}

	DisableIRQ(IRQKeyboard)
	if got := get(picMasterData); got&(1<<1) == 0 {
		t.Fatalf("expected keyboard line to be masked again; mask=%#x", got)
	}
}

func TestEnableIRQOnSlave(t *testing.T) {
	get, _ := withFakePorts(t)
	initPIC()

	EnableIRQ(IRQMouse) // 0x2C - 0x20 = 12, slave line 4

	if got := get(picSlaveData); got&(1<<4) != 0 {
		t.Fatalf("expected mouse line to be unmasked on the slave PIC; mask=%#x", got)
	}
}
