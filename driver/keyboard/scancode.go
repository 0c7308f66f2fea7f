// Package keyboard decodes PS/2 scan codes into ASCII and hands them to a
// consumer thread via a bounded buffer. It is the IRQ 0x21 handler.
package keyboard

// modifier tracks the shift/ctrl/alt/caps-lock/extended-code state derived
// from the scan-code stream. It is not safe for concurrent use, but is
// only ever touched from the keyboard ISR, which cannot re-enter itself.
type modifier struct {
	state uint8
}

const (
	modLAlt uint8 = 0x01 << iota
	modRAlt
	modLCtrl
	modRCtrl
	modLShift
	modRShift
	modCapsLock
	modExtCode
)

const (
	scAlt      = 0x38
	scCtrl     = 0x1D
	scLShift   = 0x2A
	scRShift   = 0x36
	scCapsLock = 0x3A
	scExtCode  = 0xE0

	maskMakeCode = 0x7F
	maskKeyUp    = 0x80
)

func bitSet(v *uint8, mask uint8, on bool) {
	if on {
		*v |= mask
	} else {
		*v &^= mask
	}
}

func bitTest(v uint8, mask uint8) bool {
	return v&mask != 0
}

// update folds one raw scan code into the modifier state. It reports
// whether the code was itself a modifier key (and thus should not also be
// treated as a printable/control key).
func (m *modifier) update(raw uint8) bool {
	if raw == scExtCode {
		bitSet(&m.state, modExtCode, true)
		return true
	}

	keyDown := !bitTest(raw, maskKeyUp)
	handled := true

	switch raw & maskMakeCode {
	case scAlt:
		mask := modLAlt
		if m.hasExtCode() {
			mask = modRAlt
		}
		bitSet(&m.state, mask, keyDown)
	case scCtrl:
		mask := modLCtrl
		if m.hasExtCode() {
			mask = modRCtrl
		}
		bitSet(&m.state, mask, keyDown)
	case scLShift:
		bitSet(&m.state, modLShift, keyDown)
	case scRShift:
		bitSet(&m.state, modRShift, keyDown)
	case scCapsLock:
		if keyDown {
			m.state ^= modCapsLock
		}
	default:
		handled = false
	}

	if handled && m.hasExtCode() {
		bitSet(&m.state, modExtCode, false)
	}
	return handled
}

func (m *modifier) isShiftDown() bool    { return bitTest(m.state, modLShift) || bitTest(m.state, modRShift) }
func (m *modifier) isCtrlDown() bool     { return bitTest(m.state, modLCtrl) || bitTest(m.state, modRCtrl) }
func (m *modifier) isAltDown() bool      { return bitTest(m.state, modLAlt) || bitTest(m.state, modRAlt) }
func (m *modifier) isCapsLockOn() bool   { return bitTest(m.state, modCapsLock) }
func (m *modifier) hasExtCode() bool     { return bitTest(m.state, modExtCode) }

// ScanCode is a decoded key event: the raw make/break code plus the
// modifier state in effect when it arrived.
type ScanCode struct {
	raw uint8
	mod modifier
}

const (
	scKeySpace = 0x39
	scKeyEnter = 0x1C
)

// MakeCode strips the key-up bit, leaving the physical key identifier.
func (s ScanCode) MakeCode() uint8 { return s.raw & maskMakeCode }

// IsKeyDown reports whether this is a make (press) code rather than a
// break (release) code.
func (s ScanCode) IsKeyDown() bool { return !bitTest(s.raw, maskKeyUp) }

func (s ScanCode) isAlphabet() bool {
	c := s.MakeCode()
	return (c >= 0x10 && c <= 0x19) || (c >= 0x1e && c <= 0x26) || (c >= 0x2c && c <= 0x32)
}

func (s ScanCode) isShapeshifter() bool {
	c := s.MakeCode()
	return (c >= 0x02 && c <= 0x0e) ||
		(c >= 0x33 && c <= 0x35) ||
		(c >= 0x27 && c <= 0x28) ||
		(c >= 0x1a && c <= 0x1b) ||
		c == 0x29
}

// ToChar maps a key-down alphabetic or punctuation scan code to its ASCII
// rune, honoring shift/caps-lock. Non-printable codes return 0.
func (s ScanCode) ToChar() byte {
	if !s.IsKeyDown() {
		return 0
	}

	code := s.MakeCode()
	if code == scKeySpace {
		return ' '
	}
	if code == scKeyEnter {
		return '\n'
	}

	upper := s.mod.isShiftDown() != s.mod.isCapsLockOn()
	if s.isAlphabet() {
		if ch, ok := alphaKeymap[code]; ok {
			if upper {
				return ch - ('a' - 'A')
			}
			return ch
		}
	}
	if s.isShapeshifter() {
		if pair, ok := shiftKeymap[code]; ok {
			if s.mod.isShiftDown() {
				return pair[1]
			}
			return pair[0]
		}
	}
	return 0
}

var alphaKeymap = map[uint8]byte{
	0x10: 'q', 0x11: 'w', 0x12: 'e', 0x13: 'r', 0x14: 't', 0x15: 'y', 0x16: 'u',
	0x17: 'i', 0x18: 'o', 0x19: 'p',
	0x1e: 'a', 0x1f: 's', 0x20: 'd', 0x21: 'f', 0x22: 'g', 0x23: 'h', 0x24: 'j',
	0x25: 'k', 0x26: 'l',
	0x2c: 'z', 0x2d: 'x', 0x2e: 'c', 0x2f: 'v', 0x30: 'b', 0x31: 'n', 0x32: 'm',
}

// shiftKeymap maps a "shapeshifter" make code to its {unshifted, shifted}
// ASCII pair.
var shiftKeymap = map[uint8][2]byte{
	0x02: {'1', '!'}, 0x03: {'2', '@'}, 0x04: {'3', '#'}, 0x05: {'4', '$'},
	0x06: {'5', '%'}, 0x07: {'6', '^'}, 0x08: {'7', '&'}, 0x09: {'8', '*'},
	0x0a: {'9', '('}, 0x0b: {'0', ')'}, 0x0c: {'-', '_'}, 0x0d: {'=', '+'},
	0x33: {',', '<'}, 0x34: {'.', '>'}, 0x35: {'/', '?'},
	0x27: {';', ':'}, 0x28: {'\'', '"'},
	0x1a: {'[', '{'}, 0x1b: {']', '}'},
	0x29: {'`', '~'},
}
