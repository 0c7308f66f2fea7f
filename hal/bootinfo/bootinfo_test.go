package bootinfo

import (
	"encoding/binary"
	"testing"
	"unsafe"
)

// buildFakeMap encodes a count-prefixed table of raw 20-byte entries,
// matching the loader's on-disk layout exactly.
func buildFakeMap(entries []Entry) []byte {
	buf := make([]byte, 4+len(entries)*20)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(entries)))

	for i, e := range entries {
		off := 4 + i*20
		binary.LittleEndian.PutUint64(buf[off:off+8], uint64(e.Address))
		binary.LittleEndian.PutUint64(buf[off+8:off+16], e.Length)
		binary.LittleEndian.PutUint32(buf[off+16:off+20], uint32(e.Type))
	}

	return buf
}

func withFakeMap(t *testing.T, entries []Entry, fn func()) {
	t.Helper()
	buf := buildFakeMap(entries)

	orig := mapAddr
	defer SetMapAddr(orig)
	SetMapAddr(uintptr(unsafe.Pointer(&buf[0])))

	fn()
}

func TestVisitEntries(t *testing.T) {
	want := []Entry{
		{Address: 0x0, Length: 0x9FC00, Type: Usable},
		{Address: 0x100000, Length: 0x1FF00000, Type: Usable},
		{Address: 0xFFFC0000, Length: 0x40000, Type: EntryType(2)},
	}

	withFakeMap(t, want, func() {
		var got []Entry
		VisitEntries(func(e *Entry) bool {
			got = append(got, *e)
			return true
		})

		if len(got) != len(want) {
			t.Fatalf("expected %d entries; got %d", len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("entry %d: expected %+v; got %+v", i, want[i], got[i])
			}
		}
	})
}

func TestVisitEntriesStopsEarly(t *testing.T) {
	entries := []Entry{
		{Address: 0, Length: 1, Type: Usable},
		{Address: 1, Length: 1, Type: Usable},
		{Address: 2, Length: 1, Type: Usable},
	}

	withFakeMap(t, entries, func() {
		var visited int
		VisitEntries(func(e *Entry) bool {
			visited++
			return visited < 2
		})

		if visited != 2 {
			t.Fatalf("expected iteration to stop after 2 entries; visited %d", visited)
		}
	})
}

func TestLargestUsable(t *testing.T) {
	entries := []Entry{
		{Address: 0x0, Length: 0x1000, Type: Usable},
		{Address: 0x100000, Length: 0x2000000, Type: Usable},
		{Address: 0xF0000000, Length: 0x10000000, Type: EntryType(2)},
	}

	withFakeMap(t, entries, func() {
		best, ok := LargestUsable()
		if !ok {
			t.Fatal("expected a usable region to be found")
		}
		if best.Address != 0x100000 || best.Length != 0x2000000 {
			t.Fatalf("expected the largest usable region; got %+v", best)
		}
	})
}

func TestLargestUsableNoneFound(t *testing.T) {
	entries := []Entry{
		{Address: 0, Length: 0x1000, Type: EntryType(2)},
	}

	withFakeMap(t, entries, func() {
		if _, ok := LargestUsable(); ok {
			t.Fatal("expected no usable region to be found")
		}
	})
}
