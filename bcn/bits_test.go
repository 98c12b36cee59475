package bcn

import "testing"

func TestBlockWriterReaderRoundTrip(t *testing.T) {
	fields := []struct {
		v     uint32
		count int
	}{
		{0x1, 1}, {0x3, 2}, {0x15, 5}, {0xFF, 8}, {0x1234, 13},
		{0x7FFFFFFF, 31}, {0xDEADBEEF, 32}, {0x0, 4}, {0x3F, 6},
		{0x1F, 5}, {0xAAAA, 16}, {0x1, 1}, {0x2, 2}, {0x1, 1},
	}
	total := 0
	for _, f := range fields {
		total += f.count
	}
	if total != 127 {
		t.Fatalf("bad test vector: %d bits", total)
	}

	w := newBlockWriter(16)
	for _, f := range fields {
		w.writeBits(f.v, f.count)
	}
	w.writeBit(1)

	var blk [16]byte
	w.store(blk[:])

	r := newBlockReader(blk[:])
	for i, f := range fields {
		got := r.readBits(f.count)
		want := f.v & (1<<uint(f.count) - 1)
		if got != want {
			t.Fatalf("field %d: got %#x, want %#x", i, got, want)
		}
	}
	if r.readBit() != 1 {
		t.Fatalf("final bit lost")
	}
}

func TestBlockWriterBitPositions(t *testing.T) {
	// LSB-first: the first written bit must land in bit 0 of byte 0.
	w := newBlockWriter(8)
	w.writeBit(1)
	w.writeBits(0, 7)
	w.writeBits(0xFF, 8)

	var blk [8]byte
	w.store(blk[:])
	if blk[0] != 0x01 || blk[1] != 0xFF {
		t.Fatalf("unexpected layout: % x", blk)
	}
}

func TestBlockWriterCrossWordBoundary(t *testing.T) {
	w := newBlockWriter(16)
	w.writeBits(0, 32)
	w.writeBits(0, 28)
	w.writeBits(0xFF, 8) // straddles the 64-bit boundary

	var blk [16]byte
	w.store(blk[:])

	r := newBlockReader(blk[:])
	r.readBits(32)
	r.readBits(28)
	if got := r.readBits(8); got != 0xFF {
		t.Fatalf("cross-boundary field: got %#x", got)
	}
}

func TestBlockWriterOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on overflow")
		}
	}()
	w := newBlockWriter(8)
	w.writeBits(0, 32)
	w.writeBits(0, 32)
	w.writeBits(0, 1)
}

func TestBlockReaderOverrunPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on overrun")
		}
	}()
	var blk [8]byte
	r := newBlockReader(blk[:])
	r.readBits(32)
	r.readBits(32)
	r.readBit()
}
