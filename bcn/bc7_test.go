package bcn

import "testing"

func bc7TestTuning() *bc7Tuning {
	return &bc7Tuning{
		partitionLimit:      32,
		partitionCandidates: 4,
		refine:              2,
		fastSkip:            true,
	}
}

func TestBC7SolidOpaque(t *testing.T) {
	texels := solidBlockRGBA8(128, 64, 200, 255)

	var blk [16]byte
	encodeBC7Block(texels, bc7TestTuning(), blk[:])

	out := make([]byte, blockTexels*4)
	decodeBC7Block(blk[:], out)

	for t2 := 0; t2 < blockTexels; t2++ {
		for c := 0; c < 3; c++ {
			if absDiffU8(out[t2*4+c], texels[t2*4+c]) > 2 {
				t.Fatalf("texel %d channel %d: got %d, want %d", t2, c, out[t2*4+c], texels[t2*4+c])
			}
		}
		if out[t2*4+3] != 255 {
			t.Fatalf("texel %d: alpha %d", t2, out[t2*4+3])
		}
	}
}

func TestBC7SolidTranslucent(t *testing.T) {
	texels := solidBlockRGBA8(50, 100, 150, 128)

	var blk [16]byte
	encodeBC7Block(texels, bc7TestTuning(), blk[:])

	out := make([]byte, blockTexels*4)
	decodeBC7Block(blk[:], out)

	for t2 := 0; t2 < blockTexels; t2++ {
		for c := 0; c < 4; c++ {
			if absDiffU8(out[t2*4+c], texels[t2*4+c]) > 2 {
				t.Fatalf("texel %d channel %d: got %d, want %d", t2, c, out[t2*4+c], texels[t2*4+c])
			}
		}
	}
}

func TestBC7ColorGradient(t *testing.T) {
	texels := make([]byte, blockTexels*4)
	for t2 := 0; t2 < blockTexels; t2++ {
		texels[t2*4+0] = uint8(t2 * 16)
		texels[t2*4+1] = uint8(255 - t2*16)
		texels[t2*4+2] = 128
		texels[t2*4+3] = 255
	}

	var blk [16]byte
	encodeBC7Block(texels, bc7TestTuning(), blk[:])

	out := make([]byte, blockTexels*4)
	decodeBC7Block(blk[:], out)

	for t2 := 0; t2 < blockTexels; t2++ {
		for c := 0; c < 4; c++ {
			if absDiffU8(out[t2*4+c], texels[t2*4+c]) > 24 {
				t.Fatalf("texel %d channel %d: got %d, want near %d", t2, c, out[t2*4+c], texels[t2*4+c])
			}
		}
	}
}

func TestBC7AlphaGradient(t *testing.T) {
	texels := make([]byte, blockTexels*4)
	for t2 := 0; t2 < blockTexels; t2++ {
		texels[t2*4+0] = 200
		texels[t2*4+1] = 100
		texels[t2*4+2] = 50
		texels[t2*4+3] = uint8(t2 * 16)
	}

	var blk [16]byte
	encodeBC7Block(texels, bc7TestTuning(), blk[:])

	out := make([]byte, blockTexels*4)
	decodeBC7Block(blk[:], out)

	for t2 := 0; t2 < blockTexels; t2++ {
		for c := 0; c < 4; c++ {
			if absDiffU8(out[t2*4+c], texels[t2*4+c]) > 24 {
				t.Fatalf("texel %d channel %d: got %d, want near %d", t2, c, out[t2*4+c], texels[t2*4+c])
			}
		}
	}
}

func TestBC7EncodeDeterministic(t *testing.T) {
	texels := make([]byte, blockTexels*4)
	for t2 := 0; t2 < blockTexels; t2++ {
		texels[t2*4+0] = uint8(t2*31 + 7)
		texels[t2*4+1] = uint8(t2 * t2)
		texels[t2*4+2] = uint8(200 - t2*9)
		texels[t2*4+3] = uint8(255 - t2*4)
	}

	var a, b [16]byte
	encodeBC7Block(texels, bc7TestTuning(), a[:])
	encodeBC7Block(texels, bc7TestTuning(), b[:])
	if a != b {
		t.Fatalf("re-encode differs:\n% x\n% x", a, b)
	}
}

func TestBC7ReservedModeDecodesToZero(t *testing.T) {
	// Byte 0 with no set bit is the reserved encoding.
	var blk [16]byte
	out := make([]byte, blockTexels*4)
	for i := range out {
		out[i] = 0xAB
	}
	decodeBC7Block(blk[:], out)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("byte %d: got %d, want 0", i, v)
		}
	}
}

func TestBC7DecodeAnyLeadingByte(t *testing.T) {
	// Every mode byte, including all reserved and garbage patterns, must
	// decode without panicking and without reading past the block.
	out := make([]byte, blockTexels*4)
	for b0 := 0; b0 < 256; b0++ {
		blk := [16]byte{uint8(b0), 0x5A, 0xC3, 0x99, 0x11, 0x22, 0x33, 0x44,
			0x55, 0x66, 0x77, 0x88, 0x00, 0xFF, 0xAA, 0x0F}
		decodeBC7Block(blk[:], out)
	}
}

func TestBC7IndexAnchorsDecodable(t *testing.T) {
	// Encode, decode, re-encode the decoded output: byte-identical blocks
	// prove the anchor MSB constraint held on the first pass.
	texels := make([]byte, blockTexels*4)
	for t2 := 0; t2 < blockTexels; t2++ {
		texels[t2*4+0] = uint8(t2 * 13)
		texels[t2*4+1] = uint8(t2 * 5)
		texels[t2*4+2] = uint8(255 - t2*11)
		texels[t2*4+3] = 255
	}

	var blk [16]byte
	encodeBC7Block(texels, bc7TestTuning(), blk[:])

	out := make([]byte, blockTexels*4)
	decodeBC7Block(blk[:], out)

	var blk2 [16]byte
	encodeBC7Block(out, bc7TestTuning(), blk2[:])

	out2 := make([]byte, blockTexels*4)
	decodeBC7Block(blk2[:], out2)

	// Re-compressing an already compressed block must not drift far.
	for i := range out {
		if absDiffU8(out2[i], out[i]) > 16 {
			t.Fatalf("byte %d: drift %d -> %d", i, out[i], out2[i])
		}
	}
}
