// Package kfmt provides a minimal, non-allocating Printf implementation for
// use once the kernel has an io.Writer worth writing to (a tty, a serial
// port, a log ring). Before that sink is installed, output is captured in
// an in-package ring buffer and replayed into the sink the moment one is
// set. For output needed before even that -- straight out of the boot
// trampoline -- see package kfmt/early, which writes straight to the
// active console with no sink indirection at all.
package kfmt

import (
	"io"
	"unsafe"
)

// maxBufSize bounds the scratch buffer used to format integers; base-8
// is the widest expansion an int64 can produce (22 octal digits plus a
// possible sign), so 32 bytes leaves headroom.
const maxBufSize = 32

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	numFmtBuf = []byte("012345678901234567890123456789012")

	// singleByte is a shared one-byte buffer for feeding doWrite a byte at
	// a time, the only way to avoid a string-to-[]byte conversion (which
	// allocates) on every call.
	singleByte = []byte(" ")

	// earlyPrintBuffer holds Printf output produced before SetOutputSink
	// has been called.
	earlyPrintBuffer ringBuffer

	// outputSink is where Printf sends its output. nil routes to
	// earlyPrintBuffer instead.
	outputSink io.Writer
)

// SetOutputSink installs w as the target for future Printf calls and
// replays anything accumulated in earlyPrintBuffer into it.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		io.Copy(w, &earlyPrintBuffer)
	}
}

// Printf is a minimal, non-allocating Printf supporting a subset of verbs:
//
// Strings:
//	%s the uninterpreted bytes of the string or byte slice
//
// Integers:
//	%o base 8
//	%d base 10
//	%x base 16, lower-case a-f
//
// Booleans:
//	%t "true" or "false"
//
// An optional decimal width may precede the verb. Strings and base-10
// integers are left-padded with spaces; base-8 and base-16 integers are
// left-padded with zeroes. Pointers (%p) are not supported: that requires
// importing package reflect, which defeats the point of an allocation-free
// formatter used in interrupt context.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves like Printf but writes to w instead of the installed
// sink. Passing nil routes to the early ring buffer, same as Printf does
// before SetOutputSink is called.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var (
		nextCh                       byte
		nextArgIndex                 int
		blockStart, blockEnd, padLen int
		fmtLen                       = len(format)
	)

	for blockEnd < fmtLen {
		nextCh = format[blockEnd]
		if nextCh != '%' {
			blockEnd++
			continue
		}

		if blockStart < blockEnd {
			for i := blockStart; i < blockEnd; i++ {
				singleByte[0] = format[i]
				doWrite(w, singleByte)
			}
		}

		padLen = 0
		blockEnd++
	parseFmt:
		for ; blockEnd < fmtLen; blockEnd++ {
			nextCh = format[blockEnd]
			switch {
			case nextCh == '%':
				singleByte[0] = '%'
				doWrite(w, singleByte)
				break parseFmt
			case nextCh >= '0' && nextCh <= '9':
				padLen = (padLen * 10) + int(nextCh-'0')
				continue
			case nextCh == 'd' || nextCh == 'x' || nextCh == 'o' || nextCh == 's' || nextCh == 't':
				if nextArgIndex >= len(args) {
					doWrite(w, errMissingArg)
					break parseFmt
				}

				switch nextCh {
				case 'o':
					fmtInt(w, args[nextArgIndex], 8, padLen)
				case 'd':
					fmtInt(w, args[nextArgIndex], 10, padLen)
				case 'x':
					fmtInt(w, args[nextArgIndex], 16, padLen)
				case 's':
					fmtString(w, args[nextArgIndex], padLen)
				case 't':
					fmtBool(w, args[nextArgIndex])
				}

				nextArgIndex++
				break parseFmt
			}

			doWrite(w, errNoVerb)
		}
		blockStart, blockEnd = blockEnd+1, blockEnd+1
	}

	if blockStart != blockEnd {
		for i := blockStart; i < blockEnd; i++ {
			singleByte[0] = format[i]
			doWrite(w, singleByte)
		}
	}

	for ; nextArgIndex < len(args); nextArgIndex++ {
		doWrite(w, errExtraArg)
	}
}

func fmtBool(w io.Writer, v interface{}) {
	switch bVal := v.(type) {
	case bool:
		if bVal {
			doWrite(w, trueValue)
		} else {
			doWrite(w, falseValue)
		}
	default:
		doWrite(w, errWrongArgType)
	}
}

func fmtString(w io.Writer, v interface{}, padLen int) {
	switch castedVal := v.(type) {
	case string:
		fmtRepeat(w, ' ', padLen-len(castedVal))
		for i := 0; i < len(castedVal); i++ {
			singleByte[0] = castedVal[i]
			doWrite(w, singleByte)
		}
	case []byte:
		fmtRepeat(w, ' ', padLen-len(castedVal))
		doWrite(w, castedVal)
	default:
		doWrite(w, errWrongArgType)
	}
}

func fmtRepeat(w io.Writer, ch byte, count int) {
	singleByte[0] = ch
	for i := 0; i < count; i++ {
		doWrite(w, singleByte)
	}
}

// fmtInt formats v, one of the built-in signed or unsigned integer types,
// in the given base with the given left padding.
func fmtInt(w io.Writer, v interface{}, base, padLen int) {
	var (
		sval             int64
		uval             uint64
		divider          uint64
		remainder        uint64
		padCh            byte
		left, right, end int
	)

	if padLen >= maxBufSize {
		padLen = maxBufSize - 1
	}

	switch base {
	case 8:
		divider = 8
		padCh = '0'
	case 10:
		divider = 10
		padCh = ' '
	case 16:
		divider = 16
		padCh = '0'
	}

	switch tv := v.(type) {
	case uint8:
		uval = uint64(tv)
	case uint16:
		uval = uint64(tv)
	case uint32:
		uval = uint64(tv)
	case uint64:
		uval = tv
	case uintptr:
		uval = uint64(tv)
	case int8:
		sval = int64(tv)
	case int16:
		sval = int64(tv)
	case int32:
		sval = int64(tv)
	case int64:
		sval = tv
	case int:
		sval = int64(tv)
	default:
		doWrite(w, errWrongArgType)
		return
	}

	if sval < 0 {
		uval = uint64(-sval)
	} else if sval > 0 {
		uval = uint64(sval)
	}

	for right < maxBufSize {
		remainder = uval % divider
		if remainder < 10 {
			numFmtBuf[right] = byte(remainder) + '0'
		} else {
			numFmtBuf[right] = byte(remainder-10) + 'a'
		}

		right++

		uval /= divider
		if uval == 0 {
			break
		}
	}

	for ; right-left < padLen; right++ {
		numFmtBuf[right] = padCh
	}

	if sval < 0 {
		for end = right - 1; numFmtBuf[end] == ' '; end-- {
		}

		if end == right-1 {
			right++
		}

		numFmtBuf[end+1] = '-'
	}

	end = right
	for right = right - 1; left < right; left, right = left+1, right-1 {
		numFmtBuf[left], numFmtBuf[right] = numFmtBuf[right], numFmtBuf[left]
	}

	doWrite(w, numFmtBuf[0:end])
}

// doWrite hides p from escape analysis via noEscape. Without it, the
// compiler can't prove p doesn't escape through the not-yet-concrete
// io.Writer call and flags it as escaping, which routes every Printf call
// through runtime.convT2E/newobject -- a problem in the interrupt handlers
// that call Printf for diagnostics, since an allocation there could
// deadlock against whatever lock the interrupted code held on the
// allocator.
func doWrite(w io.Writer, p []byte) {
	doRealWrite(w, noEscape(unsafe.Pointer(&p)))
}

func doRealWrite(w io.Writer, bufPtr unsafe.Pointer) {
	p := *(*[]byte)(bufPtr)
	if w != nil {
		w.Write(p)
	} else {
		earlyPrintBuffer.Write(p)
	}
}

//go:nosplit
func noEscape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
