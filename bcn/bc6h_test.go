package bcn

import "testing"

func bc6hTestTuning() *bc6hTuning {
	return &bc6hTuning{partitionLimit: 16, refine: 2}
}

func solidBlockF16(r, g, b uint16) []uint16 {
	texels := make([]uint16, blockTexels*4)
	for t := 0; t < blockTexels; t++ {
		texels[t*4+0] = r
		texels[t*4+1] = g
		texels[t*4+2] = b
		texels[t*4+3] = halfOne
	}
	return texels
}

func absDiffU16(a, b uint16) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestBC6HModeLayoutBits(t *testing.T) {
	// Every mode's header, layout runs and index bits must cover the block
	// exactly.
	for mi := range bc6hModes {
		m := &bc6hModes[mi]
		total := m.headerBits
		for _, run := range m.layout {
			total += int(run.count)
		}
		indexBits := blockTexels*4 - 1
		if m.ns == 2 {
			indexBits = blockTexels*3 - 2
		}
		total += indexBits
		if total != 128 {
			t.Fatalf("mode %d: %d bits", mi+1, total)
		}
		if got := m.fieldBits(bc6hFieldRW); got != m.wBits {
			t.Fatalf("mode %d: RW spans %d bits, wBits %d", mi+1, got, m.wBits)
		}
	}
}

func TestBC6HSolidUnsigned(t *testing.T) {
	texels := solidBlockF16(halfOne, 0x4000, 0x3800) // 1.0, 2.0, 0.5

	var blk [16]byte
	encodeBC6HBlock(texels, false, bc6hTestTuning(), blk[:])

	out := make([]uint16, blockTexels*4)
	decodeBC6HBlock(blk[:], false, out)

	for t2 := 0; t2 < blockTexels; t2++ {
		for ch := 0; ch < 3; ch++ {
			if absDiffU16(out[t2*4+ch], texels[t2*4+ch]) > 64 {
				t.Fatalf("texel %d channel %d: got %#04x, want near %#04x",
					t2, ch, out[t2*4+ch], texels[t2*4+ch])
			}
		}
		if out[t2*4+3] != halfOne {
			t.Fatalf("texel %d: alpha %#04x", t2, out[t2*4+3])
		}
	}
}

func TestBC6HSolidSigned(t *testing.T) {
	texels := solidBlockF16(0xBC00, 0x3C00, 0xC000) // -1.0, 1.0, -2.0

	var blk [16]byte
	encodeBC6HBlock(texels, true, bc6hTestTuning(), blk[:])

	out := make([]uint16, blockTexels*4)
	decodeBC6HBlock(blk[:], true, out)

	for t2 := 0; t2 < blockTexels; t2++ {
		for ch := 0; ch < 3; ch++ {
			want := texels[t2*4+ch]
			got := out[t2*4+ch]
			if got&0x8000 != want&0x8000 {
				t.Fatalf("texel %d channel %d: sign flipped, got %#04x want %#04x", t2, ch, got, want)
			}
			if absDiffU16(got&0x7FFF, want&0x7FFF) > 64 {
				t.Fatalf("texel %d channel %d: got %#04x, want near %#04x", t2, ch, got, want)
			}
		}
	}
}

func TestBC6HUnsignedSanitizes(t *testing.T) {
	// NaN encodes as zero; negatives clamp to zero in the unsigned profile.
	texels := solidBlockF16(0x7E01, 0xBC00, 0xFC00) // NaN, -1.0, -inf

	var blk [16]byte
	encodeBC6HBlock(texels, false, bc6hTestTuning(), blk[:])

	out := make([]uint16, blockTexels*4)
	decodeBC6HBlock(blk[:], false, out)

	for t2 := 0; t2 < blockTexels; t2++ {
		for ch := 0; ch < 3; ch++ {
			if out[t2*4+ch] != 0 {
				t.Fatalf("texel %d channel %d: got %#04x, want 0", t2, ch, out[t2*4+ch])
			}
		}
	}
}

func TestBC6HInfinityClamps(t *testing.T) {
	texels := solidBlockF16(0x7C00, 0x3C00, 0x3C00) // +inf, 1.0, 1.0

	var blk [16]byte
	encodeBC6HBlock(texels, false, bc6hTestTuning(), blk[:])

	out := make([]uint16, blockTexels*4)
	decodeBC6HBlock(blk[:], false, out)

	// +inf clamps to the largest finite half.
	for t2 := 0; t2 < blockTexels; t2++ {
		if out[t2*4+0] >= halfExpAll {
			t.Fatalf("texel %d: non-finite output %#04x", t2, out[t2*4+0])
		}
		if absDiffU16(out[t2*4+0], halfMax) > 64 {
			t.Fatalf("texel %d: got %#04x, want near %#04x", t2, out[t2*4+0], uint16(halfMax))
		}
	}
}

func TestBC6HReservedModeDecodesToBlack(t *testing.T) {
	// Header value 19 is one of the four reserved 5-bit patterns.
	blk := [16]byte{0x13}
	out := make([]uint16, blockTexels*4)
	for i := range out {
		out[i] = 0xDEAD
	}
	decodeBC6HBlock(blk[:], false, out)

	for t2 := 0; t2 < blockTexels; t2++ {
		if out[t2*4+0] != 0 || out[t2*4+1] != 0 || out[t2*4+2] != 0 {
			t.Fatalf("texel %d: rgb (%#04x,%#04x,%#04x)", t2, out[t2*4], out[t2*4+1], out[t2*4+2])
		}
		if out[t2*4+3] != halfOne {
			t.Fatalf("texel %d: alpha %#04x", t2, out[t2*4+3])
		}
	}
}

func TestBC6HGradient(t *testing.T) {
	// The ramp stays inside the [4,8) exponent band. Half floats are spaced
	// evenly there, so the palette steps map to a uniform float tolerance;
	// a ramp crossing exponent bands would not have one.
	texels := make([]uint16, blockTexels*4)
	for t2 := 0; t2 < blockTexels; t2++ {
		texels[t2*4+0] = float32ToHalf(4.0 + float32(t2)*0.25)
		texels[t2*4+1] = halfOne
		texels[t2*4+2] = float32ToHalf(4.0)
		texels[t2*4+3] = halfOne
	}

	var blk [16]byte
	encodeBC6HBlock(texels, false, bc6hTestTuning(), blk[:])

	out := make([]uint16, blockTexels*4)
	decodeBC6HBlock(blk[:], false, out)

	for t2 := 0; t2 < blockTexels; t2++ {
		for ch := 0; ch < 3; ch++ {
			want := halfToFloat32(texels[t2*4+ch])
			got := halfToFloat32(out[t2*4+ch])
			d := got - want
			if d < 0 {
				d = -d
			}
			if d > 0.5 {
				t.Fatalf("texel %d channel %d: got %f, want near %f", t2, ch, got, want)
			}
		}
	}
}

func TestBC6HEncodeDeterministic(t *testing.T) {
	texels := make([]uint16, blockTexels*4)
	for t2 := 0; t2 < blockTexels; t2++ {
		texels[t2*4+0] = float32ToHalf(float32(t2%5) * 1.3)
		texels[t2*4+1] = float32ToHalf(float32(t2) * 0.21)
		texels[t2*4+2] = float32ToHalf(7.5 - float32(t2)*0.4)
		texels[t2*4+3] = halfOne
	}

	var a, b [16]byte
	encodeBC6HBlock(texels, false, bc6hTestTuning(), a[:])
	encodeBC6HBlock(texels, false, bc6hTestTuning(), b[:])
	if a != b {
		t.Fatalf("re-encode differs:\n% x\n% x", a, b)
	}
}
