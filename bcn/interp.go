package bcn

// Interpolation weight tables. These are fixed by the formats: every
// conforming codec must reproduce the same rounding, so the ramps are
// integer tables rather than floating-point blends.

// weights2, weights3 and weights4 are the BPTC (BC6H/BC7) interpolation
// weights for 2-, 3- and 4-bit indices. Interpolation is
// ((64-w)*e0 + w*e1 + 32) >> 6.
var weights2 = [4]uint32{0, 21, 43, 64}

var weights3 = [8]uint32{0, 9, 18, 27, 37, 46, 55, 64}

var weights4 = [16]uint32{0, 4, 9, 13, 17, 21, 26, 30, 34, 38, 43, 47, 51, 55, 60, 64}

func weightTable(indexBits int) []uint32 {
	switch indexBits {
	case 2:
		return weights2[:]
	case 3:
		return weights3[:]
	case 4:
		return weights4[:]
	default:
		panic("bcn: weightTable: invalid index width")
	}
}

// bptcInterp blends two endpoint channels with a BPTC weight.
func bptcInterp(e0, e1 int32, w uint32) int32 {
	return (e0*int32(64-w) + e1*int32(w) + 32) >> 6
}

// bc1Palette expands the 4-entry color ramp for a BC1-family color block.
//
// When c0 > c1 the ramp has two interpolated thirds. Otherwise the block is
// in color-key mode: one midpoint plus transparent black at index 3.
// BC2/BC3 color blocks pass opaque=true and always use the 4-color ramp.
func bc1Palette(c0, c1 uint16, opaque bool, pal *[4][4]uint8) {
	r0, g0, b0 := unpack565(c0)
	r1, g1, b1 := unpack565(c1)

	pal[0] = [4]uint8{r0, g0, b0, 255}
	pal[1] = [4]uint8{r1, g1, b1, 255}

	if c0 > c1 || opaque {
		pal[2] = [4]uint8{third(r0, r1), third(g0, g1), third(b0, b1), 255}
		pal[3] = [4]uint8{third(r1, r0), third(g1, g0), third(b1, b0), 255}
		return
	}
	pal[2] = [4]uint8{half(r0, r1), half(g0, g1), half(b0, b1), 255}
	pal[3] = [4]uint8{0, 0, 0, 0}
}

func third(a, b uint8) uint8 {
	return uint8((2*uint32(a) + uint32(b) + 1) / 3)
}

func half(a, b uint8) uint8 {
	return uint8((uint32(a) + uint32(b) + 1) / 2)
}

// bc4Ramp expands the 8-entry scalar ramp used by BC3 alpha, BC4 and BC5.
//
// a0 > a1 selects the fully interpolated 8-value ramp; otherwise 6 values
// are interpolated and indices 6 and 7 decode to the explicit extremes.
func bc4Ramp(a0, a1 uint8, ramp *[8]uint8) {
	ramp[0] = a0
	ramp[1] = a1
	if a0 > a1 {
		for i := 1; i < 7; i++ {
			ramp[i+1] = uint8(((7-uint32(i))*uint32(a0) + uint32(i)*uint32(a1) + 3) / 7)
		}
		return
	}
	for i := 1; i < 5; i++ {
		ramp[i+1] = uint8(((5-uint32(i))*uint32(a0) + uint32(i)*uint32(a1) + 2) / 5)
	}
	ramp[6] = 0
	ramp[7] = 255
}
