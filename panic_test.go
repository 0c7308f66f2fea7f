package kernel

import (
	"bytes"
	"strings"
	"testing"

	"kernel386/cpu"
	"kernel386/driver/tty"
	"kernel386/driver/video/console"
)

// fakeConsole is a software-backed console.Console used to exercise Panic
// and Assert without touching real hardware addresses.
type fakeConsole struct {
	w, h  uint16
	cells []byte
	attrs []console.Attr
}

func newFakeConsole(w, h uint16) *fakeConsole {
	return &fakeConsole{w: w, h: h, cells: make([]byte, int(w)*int(h)), attrs: make([]console.Attr, int(w)*int(h))}
}

func (f *fakeConsole) Dimensions() (uint16, uint16) { return f.w, f.h }

func (f *fakeConsole) Clear(x, y, width, height uint16) {
	for row := y; row < y+height && row < f.h; row++ {
		for col := x; col < x+width && col < f.w; col++ {
			f.cells[int(row)*int(f.w)+int(col)] = ' '
		}
	}
}

func (f *fakeConsole) Scroll(dir console.ScrollDir, lines uint16) {}

func (f *fakeConsole) Write(ch byte, attr console.Attr, x, y uint16) {
	if x >= f.w || y >= f.h {
		return
	}
	f.cells[int(y)*int(f.w)+int(x)] = ch
	f.attrs[int(y)*int(f.w)+int(x)] = attr
}

func mockTTY() *fakeConsole {
	cons := newFakeConsole(80, 25)
	tty.Active.AttachTo(cons)
	return cons
}

func TestPanic(t *testing.T) {
	defer func() {
		cpuHaltFn = cpu.Halt
		paintScreenFn = paintScreenRed
	}()

	var cpuHaltCalled, paintCalled bool
	cpuHaltFn = func() {
		cpuHaltCalled = true
	}
	paintScreenFn = func() {
		paintCalled = true
	}

	t.Run("with error", func(t *testing.T) {
		cpuHaltCalled, paintCalled = false, false
		mockTTY()
		err := &Error{Module: "test", Message: "panic test"}

		Panic(err)

		if !cpuHaltCalled {
			t.Fatal("expected cpu.Halt() to be called by Panic")
		}
		if !paintCalled {
			t.Fatal("expected the screen-paint function to be called by Panic")
		}
	})

	t.Run("without error", func(t *testing.T) {
		cpuHaltCalled, paintCalled = false, false
		mockTTY()

		Panic(nil)

		if !cpuHaltCalled {
			t.Fatal("expected cpu.Halt() to be called by Panic")
		}
	})

	t.Run("string argument", func(t *testing.T) {
		cpuHaltCalled = false
		mockTTY()

		Panic("boom")

		if !cpuHaltCalled {
			t.Fatal("expected cpu.Halt() to be called by Panic")
		}
		if errRuntimePanic.Message != "boom" {
			t.Fatalf("expected errRuntimePanic.Message to be updated; got %q", errRuntimePanic.Message)
		}
	})
}

func TestAssert(t *testing.T) {
	defer func() {
		cpuHaltFn = cpu.Halt
		paintScreenFn = paintScreenRed
	}()

	paintScreenFn = func() {}

	t.Run("condition true is a no-op", func(t *testing.T) {
		panicked := false
		cpuHaltFn = func() { panicked = true }
		Assert(true, "should never fire")
		if panicked {
			t.Fatal("expected Assert(true, ...) not to panic")
		}
	})

	t.Run("condition false panics with file/line", func(t *testing.T) {
		cpuHaltFn = func() {}
		cons := mockTTY()

		Assert(false, "invariant violated")

		got := readCells(cons)
		if !strings.Contains(got, "invariant violated") {
			t.Fatalf("expected panic message to contain the assertion text; got %q", got)
		}
		if !strings.Contains(got, "panic_test.go") {
			t.Fatalf("expected panic message to contain the caller's file name; got %q", got)
		}
	})
}

// readCells flattens a fakeConsole's cell buffer into a string for
// substring assertions against printed diagnostic output.
func readCells(f *fakeConsole) string {
	var buf bytes.Buffer
	for _, ch := range f.cells {
		if ch == 0 {
			ch = ' '
		}
		buf.WriteByte(ch)
	}
	return buf.String()
}

func TestPaintScreenRed(t *testing.T) {
	cons := newFakeConsole(4, 2)
	SetPanicConsole(cons)
	defer SetPanicConsole(nil)

	paintScreenRed()

	wantAttr := (console.Red << 4) | console.White
	for i, a := range cons.attrs {
		if a != wantAttr {
			t.Fatalf("cell %d: expected attr %v, got %v", i, wantAttr, a)
		}
	}
}
