package bcn

// BC4 scalar block codec: two 8-bit endpoints and 16 3-bit ramp indices.
// BC3 reuses it for the alpha half, BC5 packs two of them.

// decodeBC4Block expands one 8-byte scalar block into 16 values.
func decodeBC4Block(src []byte, out *[blockTexels]uint8) {
	var ramp [8]uint8
	bc4Ramp(src[0], src[1], &ramp)

	r := newBlockReader(src[:8])
	r.readBits(16) // endpoints
	for t := 0; t < blockTexels; t++ {
		out[t] = ramp[r.readBits(3)]
	}
}

// encodeBC4Block compresses 16 scalar values into one 8-byte block.
//
// Both endpoint orderings are tried: the 8-value interpolated ramp and the
// 6-value ramp whose two spare indices decode to explicit 0 and 255.
func encodeBC4Block(vals *[blockTexels]uint8, dst []byte) {
	lo, hi := vals[0], vals[0]
	for t := 1; t < blockTexels; t++ {
		if vals[t] < lo {
			lo = vals[t]
		}
		if vals[t] > hi {
			hi = vals[t]
		}
	}

	var idx8, idx6 [blockTexels]uint8
	err8 := fitBC4(vals, hi, lo, &idx8)
	err6 := fitBC4(vals, lo, hi, &idx6)

	w := newBlockWriter(8)
	if err8 <= err6 {
		w.writeBits(uint32(hi), 8)
		w.writeBits(uint32(lo), 8)
		for t := 0; t < blockTexels; t++ {
			w.writeBits(uint32(idx8[t]), 3)
		}
	} else {
		w.writeBits(uint32(lo), 8)
		w.writeBits(uint32(hi), 8)
		for t := 0; t < blockTexels; t++ {
			w.writeBits(uint32(idx6[t]), 3)
		}
	}
	w.store(dst)
}

func fitBC4(vals *[blockTexels]uint8, a0, a1 uint8, idx *[blockTexels]uint8) uint32 {
	var ramp [8]uint8
	bc4Ramp(a0, a1, &ramp)

	var total uint32
	for t := 0; t < blockTexels; t++ {
		best := uint32(1 << 31)
		bestI := uint8(0)
		for i := 0; i < 8; i++ {
			e := sqDiff(vals[t], ramp[i])
			if e < best {
				best = e
				bestI = uint8(i)
			}
		}
		idx[t] = bestI
		total += best
	}
	return total
}
