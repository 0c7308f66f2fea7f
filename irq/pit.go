package irq

// PIT channel 0 ports and the base oscillator frequency used to compute
// the programmable divisor.
const (
	pitDataPort    = 0x40
	pitCommandPort = 0x43

	pitBaseFrequency = 1193181

	pitChannel0   = 0x00 << 6
	pitAccessBoth = 0x03 << 4 // low byte, then high byte
	pitModeRate   = 0x02 << 1 // mode 2: rate generator
)

// DefaultTimerHz is the scheduler's quantum granularity: the timer fires
// 4000 times a second by default.
const DefaultTimerHz = 4000

// InitPIT programs PIT channel 0 to fire at hz interrupts per second and
// unmasks the timer IRQ line. A handler for IRQTimer must already be
// registered via Register before calling this, or ticks will be silently
// dropped.
func InitPIT(hz uint32) {
	divisor := uint16(pitBaseFrequency / hz)

	outBFn(pitCommandPort, pitChannel0|pitAccessBoth|pitModeRate)
	outBFn(pitDataPort, uint8(divisor))
	outBFn(pitDataPort, uint8(divisor>>8))

	EnableIRQ(IRQTimer)
}
