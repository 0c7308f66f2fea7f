package console

import (
	"reflect"
	"unsafe"
)

// textFbVirtAddr is the kernel-virtual address of the VGA text-mode
// framebuffer once paging is enabled (physical 0x000B8000, identity-mapped
// into the kernel's virtual range at boot).
const textFbVirtAddr = 0xC00B8000

const (
	clearColor = Black
	clearChar  = byte(' ')
)

// Text implements an 80x25 VGA text-mode console. Each cell is a 16-bit
// {char, attribute} word, matching the fixed hardware layout described at
// physical address 0x000B8000.
type Text struct {
	width  uint16
	height uint16

	fb []uint16
}

// Init sets up the console to address the framebuffer at its fixed,
// identity-mapped kernel-virtual address.
func (cons *Text) Init() {
	cons.width = 80
	cons.height = 25

	if cons.fb != nil {
		return
	}

	cons.fb = *(*[]uint16)(unsafe.Pointer(&reflect.SliceHeader{
		Len:  int(cons.width) * int(cons.height),
		Cap:  int(cons.width) * int(cons.height),
		Data: textFbVirtAddr,
	}))
}

// Clear clears the specified rectangular region.
func (cons *Text) Clear(x, y, width, height uint16) {
	var (
		attr                 = uint16(clearColor<<4) | uint16(clearColor)
		clr                  = attr | uint16(clearChar)
		rowOffset, colOffset uint16
	)

	if x >= cons.width {
		x = cons.width
	}
	if y >= cons.height {
		y = cons.height
	}
	if x+width > cons.width {
		width = cons.width - x
	}
	if y+height > cons.height {
		height = cons.height - y
	}

	rowOffset = (y * cons.width) + x
	for ; height > 0; height, rowOffset = height-1, rowOffset+cons.width {
		for colOffset = rowOffset; colOffset < rowOffset+width; colOffset++ {
			cons.fb[colOffset] = clr
		}
	}
}

// Dimensions returns the console width and height in characters.
func (cons *Text) Dimensions() (uint16, uint16) {
	return cons.width, cons.height
}

// Scroll moves a number of lines in the specified direction.
func (cons *Text) Scroll(dir ScrollDir, lines uint16) {
	if lines == 0 || lines > cons.height {
		return
	}

	var i uint16
	offset := lines * cons.width

	switch dir {
	case Up:
		for ; i < (cons.height-lines)*cons.width; i++ {
			cons.fb[i] = cons.fb[i+offset]
		}
	case Down:
		for i = cons.height*cons.width - 1; i >= lines*cons.width; i-- {
			cons.fb[i] = cons.fb[i-offset]
		}
	}
}

// Write places a char at the specified location.
func (cons *Text) Write(ch byte, attr Attr, x, y uint16) {
	if x >= cons.width || y >= cons.height {
		return
	}

	cons.fb[(y*cons.width)+x] = (uint16(attr) << 8) | uint16(ch)
}

// PaintAll fills every cell with the same char/attribute pair, regardless of
// the current cursor position. kernel.Panic does not call it: it paints
// through the Console interface, cell by cell.
func (cons *Text) PaintAll(ch byte, attr Attr) {
	word := (uint16(attr) << 8) | uint16(ch)
	for i := range cons.fb {
		cons.fb[i] = word
	}
}
