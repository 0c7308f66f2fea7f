package irq

import "kernel386/cpu"

// Legacy cascaded 8259A port map.
const (
	picMasterCmd  = 0x20
	picMasterData = 0x21
	picSlaveCmd   = 0xA0
	picSlaveData  = 0xA1
)

const (
	icw1Init      = 0x11 // ICW4 needed, cascade mode, edge triggered
	icw4_8086Mode = 0x01
)

var (
	// The following functions are mocked by tests and are automatically
	// inlined by the compiler.
	outBFn = cpu.OutB
	inBFn  = cpu.InB
)

// initPIC reprograms the master/slave 8259A pair so that master IRQs land
// on vectors 0x20-0x27 and slave IRQs on 0x28-0x2F, then masks every line.
// It must run before the IDT is loaded and interrupts are enabled.
func initPIC() {
	outBFn(picMasterCmd, icw1Init)
	outBFn(picSlaveCmd, icw1Init)

	outBFn(picMasterData, uint8(IRQBase))      // ICW2: master vector offset
	outBFn(picSlaveData, uint8(IRQBase)+8)     // ICW2: slave vector offset

	outBFn(picMasterData, 0x04) // ICW3: slave attached to IR2
	outBFn(picSlaveData, 0x02)  // ICW3: slave's cascade identity

	outBFn(picMasterData, icw4_8086Mode)
	outBFn(picSlaveData, icw4_8086Mode)

	outBFn(picMasterData, 0xFF) // OCW1: mask all lines
	outBFn(picSlaveData, 0xFF)
}

// EnableIRQ unmasks the PIC line carrying vector. vector must be a hardware
// IRQ vector (0x20-0x2F); exception vectors are ignored.
func EnableIRQ(vector Vector) {
	setMask(vector, false)
}

// DisableIRQ masks the PIC line carrying vector.
func DisableIRQ(vector Vector) {
	setMask(vector, true)
}

func setMask(vector Vector, masked bool) {
	if vector < IRQBase {
		return
	}

	line := uint8(vector - IRQBase)
	port := uint16(picMasterData)
	if line >= 8 {
		port = picSlaveData
		line -= 8
	}

	cur := inBFn(port)
	if masked {
		cur |= 1 << line
	} else {
		cur &^= 1 << line
	}
	outBFn(port, cur)
}
