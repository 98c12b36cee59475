package bcn

import "testing"

func TestBC2AlphaExactSteps(t *testing.T) {
	// Alphas that are multiples of 17 hit the 4-bit grid exactly.
	texels := make([]byte, blockTexels*4)
	for t2 := 0; t2 < blockTexels; t2++ {
		texels[t2*4+0] = 80
		texels[t2*4+1] = 80
		texels[t2*4+2] = 80
		texels[t2*4+3] = uint8(t2 * 17)
	}

	var blk [16]byte
	encodeBC2Block(texels, 2, blk[:])

	out := make([]byte, blockTexels*4)
	decodeBC2Block(blk[:], out)

	for t2 := 0; t2 < blockTexels; t2++ {
		if out[t2*4+3] != texels[t2*4+3] {
			t.Fatalf("texel %d: alpha %d, want %d", t2, out[t2*4+3], texels[t2*4+3])
		}
	}
}

func TestBC2AlphaQuantization(t *testing.T) {
	texels := make([]byte, blockTexels*4)
	for t2 := 0; t2 < blockTexels; t2++ {
		texels[t2*4+3] = uint8(t2 * 16)
	}

	var blk [16]byte
	encodeBC2Block(texels, 0, blk[:])

	out := make([]byte, blockTexels*4)
	decodeBC2Block(blk[:], out)

	// 4-bit explicit alpha: worst case is half a 17-wide step.
	for t2 := 0; t2 < blockTexels; t2++ {
		if absDiffU8(out[t2*4+3], texels[t2*4+3]) > 9 {
			t.Fatalf("texel %d: alpha %d, want near %d", t2, out[t2*4+3], texels[t2*4+3])
		}
	}
}

func TestBC2ColorNeverTransparent(t *testing.T) {
	// The color half always decodes the 4-color ramp; low alpha must not
	// flip the color block into color-key mode.
	texels := make([]byte, blockTexels*4)
	for t2 := 0; t2 < blockTexels; t2++ {
		texels[t2*4+0] = 200
		texels[t2*4+1] = 10
		texels[t2*4+2] = 10
		texels[t2*4+3] = 0
	}

	var blk [16]byte
	encodeBC2Block(texels, 2, blk[:])

	out := make([]byte, blockTexels*4)
	decodeBC2Block(blk[:], out)

	for t2 := 0; t2 < blockTexels; t2++ {
		if absDiffU8(out[t2*4+0], 200) > 4 {
			t.Fatalf("texel %d: red %d lost to color-key mode", t2, out[t2*4+0])
		}
		if out[t2*4+3] != 0 {
			t.Fatalf("texel %d: alpha %d", t2, out[t2*4+3])
		}
	}
}
