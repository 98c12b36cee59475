package bcn

import "encoding/binary"

// BCn blocks are at most 128 bits, so the packers keep the whole block in a
// lo/hi pair of uint64 registers and only touch bytes at the boundaries.
// Bit order is LSB first within a little-endian byte stream: bit i of the
// block lives in byte i/8 at position i%8.

// blockWriter appends sub-word fields to a fixed-size block.
//
// Writing past the block's bit capacity is a caller bug and panics; block
// sizes are format constants, so an overflow can never be a data error.
type blockWriter struct {
	lo, hi uint64
	pos    int
	nbits  int
}

func newBlockWriter(sizeBytes int) blockWriter {
	return blockWriter{nbits: sizeBytes * 8}
}

// writeBits appends the low count bits of v. count must be <= 32.
func (w *blockWriter) writeBits(v uint32, count int) {
	if count < 0 || count > 32 {
		panic("bcn: writeBits: invalid bit count")
	}
	if w.pos+count > w.nbits {
		panic("bcn: writeBits: block overflow")
	}
	val := uint64(v) & (1<<uint(count) - 1)
	if w.pos < 64 {
		w.lo |= val << uint(w.pos)
		if w.pos+count > 64 {
			w.hi |= val >> uint(64-w.pos)
		}
	} else {
		w.hi |= val << uint(w.pos-64)
	}
	w.pos += count
}

// writeBit appends a single bit.
func (w *blockWriter) writeBit(v uint32) {
	w.writeBits(v&1, 1)
}

// store serializes the block into dst, which must hold the full block.
func (w *blockWriter) store(dst []byte) {
	switch w.nbits {
	case 64:
		binary.LittleEndian.PutUint64(dst[0:8], w.lo)
	case 128:
		binary.LittleEndian.PutUint64(dst[0:8], w.lo)
		binary.LittleEndian.PutUint64(dst[8:16], w.hi)
	default:
		panic("bcn: store: unsupported block size")
	}
}

// blockReader is the inverse of blockWriter.
type blockReader struct {
	lo, hi uint64
	pos    int
	nbits  int
}

func newBlockReader(src []byte) blockReader {
	switch len(src) {
	case 8:
		return blockReader{
			lo:    binary.LittleEndian.Uint64(src[0:8]),
			nbits: 64,
		}
	case 16:
		return blockReader{
			lo:    binary.LittleEndian.Uint64(src[0:8]),
			hi:    binary.LittleEndian.Uint64(src[8:16]),
			nbits: 128,
		}
	default:
		panic("bcn: newBlockReader: unsupported block size")
	}
}

// readBits consumes and returns the next count bits. count must be <= 32.
func (r *blockReader) readBits(count int) uint32 {
	if count < 0 || count > 32 {
		panic("bcn: readBits: invalid bit count")
	}
	if r.pos+count > r.nbits {
		panic("bcn: readBits: block overrun")
	}
	var val uint64
	if r.pos < 64 {
		val = r.lo >> uint(r.pos)
		if r.pos+count > 64 {
			val |= r.hi << uint(64-r.pos)
		}
	} else {
		val = r.hi >> uint(r.pos-64)
	}
	r.pos += count
	return uint32(val & (1<<uint(count) - 1))
}

// readBit consumes a single bit.
func (r *blockReader) readBit() uint32 {
	return r.readBits(1)
}
