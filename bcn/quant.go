package bcn

// pack565 quantizes an RGB8 color to the nearest representable RGB565 value.
func pack565(r, g, b uint8) uint16 {
	r5 := (uint16(r)*31 + 127) / 255
	g6 := (uint16(g)*63 + 127) / 255
	b5 := (uint16(b)*31 + 127) / 255
	return r5<<11 | g6<<5 | b5
}

// unpack565 expands an RGB565 value to RGB8 with bit replication, which is
// the fixed point of pack565 (unpack(pack(unpack(c))) == unpack(c)).
func unpack565(c uint16) (r, g, b uint8) {
	r5 := uint8(c >> 11)
	g6 := uint8(c>>5) & 0x3F
	b5 := uint8(c) & 0x1F
	r = r5<<3 | r5>>2
	g = g6<<2 | g6>>4
	b = b5<<3 | b5>>2
	return r, g, b
}

// quantizeUN8 quantizes an 8-bit value to prec bits, rounding to nearest.
func quantizeUN8(v uint8, prec int) uint32 {
	if prec >= 8 {
		return uint32(v)
	}
	top := uint32(1<<uint(prec)) - 1
	return (uint32(v)*top + 127) / 255
}

// expandUN8 expands a prec-bit value to 8 bits with bit replication. The
// source bits repeat until all 8 bits are filled, so the maximum input maps
// to 255 at every precision.
func expandUN8(v uint32, prec int) uint8 {
	if prec >= 8 {
		return uint8(v)
	}
	v <<= uint(8 - prec)
	out := v
	for shift := prec; shift < 8; shift += prec {
		out |= v >> uint(shift)
	}
	return uint8(out)
}

// sqDiff returns the squared difference of two unsigned 8-bit channels.
func sqDiff(a, b uint8) uint32 {
	d := int32(a) - int32(b)
	return uint32(d * d)
}
