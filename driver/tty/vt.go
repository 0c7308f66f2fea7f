// Package tty implements a terminal abstraction on top of a physical
// console, handling cursor tracking, control characters and scrolling.
package tty

import (
	"kernel386/cpu"
	"kernel386/driver/video/console"
)

const (
	crtcIndexPort = 0x3D4
	crtcDataPort  = 0x3D5

	crtcCursorHigh = 0x0E
	crtcCursorLow  = 0x0F
)

// Vt wraps a physical console and implements terminal semantics: control
// character handling, line wrapping, scrolling and hardware cursor updates.
type Vt struct {
	cons console.Console

	width, height uint16
	curX, curY    uint16
	curAttr       console.Attr
}

// AttachTo binds the terminal to a physical console and clears it.
func (vt *Vt) AttachTo(cons console.Console) {
	vt.cons = cons
	vt.width, vt.height = cons.Dimensions()
	vt.curX, vt.curY = 0, 0
	vt.curAttr = vt.makeAttr(console.LightGrey, console.Black)
	vt.Clear()
}

// Clear blanks the entire terminal and homes the cursor.
func (vt *Vt) Clear() {
	vt.cons.Clear(0, 0, vt.width, vt.height)
	vt.curX, vt.curY = 0, 0
	vt.updateHwCursor()
}

// Position returns the current cursor location.
func (vt *Vt) Position() (uint16, uint16) {
	return vt.curX, vt.curY
}

// SetPosition moves the cursor to an absolute location, clamped to the
// terminal dimensions.
func (vt *Vt) SetPosition(x, y uint16) {
	if x >= vt.width {
		x = vt.width - 1
	}
	if y >= vt.height {
		y = vt.height - 1
	}

	vt.curX, vt.curY = x, y
	vt.updateHwCursor()
}

// WriteByte writes a single byte, interpreting \r, \n, \b and \t.
func (vt *Vt) WriteByte(b byte) {
	switch b {
	case '\r':
		vt.cr()
	case '\n':
		vt.cr()
		vt.lf()
	case '\b':
		if vt.curX > 0 {
			vt.curX--
		}
	case '\t':
		next := (vt.curX + 8) &^ 7
		if next >= vt.width {
			next = vt.width - 1
		}
		vt.curX = next
	default:
		vt.cons.Write(b, vt.curAttr, vt.curX, vt.curY)
		vt.curX++
		if vt.curX >= vt.width {
			vt.cr()
			vt.lf()
		}
	}

	vt.updateHwCursor()
}

// Write implements io.Writer by emitting each byte of p.
func (vt *Vt) Write(p []byte) (int, error) {
	for _, b := range p {
		vt.WriteByte(b)
	}
	return len(p), nil
}

func (vt *Vt) cr() {
	vt.curX = 0
}

func (vt *Vt) lf() {
	if vt.curY+1 >= vt.height {
		vt.cons.Scroll(console.Up, 1)
		vt.cons.Clear(0, vt.height-1, vt.width, 1)
		return
	}
	vt.curY++
}

func (vt *Vt) makeAttr(fg, bg console.Attr) console.Attr {
	return (bg << 4) | fg
}

// updateHwCursor programs the CRTC cursor location registers so the blinking
// hardware cursor tracks the terminal's logical cursor.
func (vt *Vt) updateHwCursor() {
	pos := uint16(vt.curY)*vt.width + vt.curX

	cpu.OutB(crtcIndexPort, crtcCursorHigh)
	cpu.OutB(crtcDataPort, uint8(pos>>8))
	cpu.OutB(crtcIndexPort, crtcCursorLow)
	cpu.OutB(crtcDataPort, uint8(pos&0xFF))
}
