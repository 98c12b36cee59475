package bcn

import "testing"

func solidBlockRGBA8(r, g, b, a uint8) []byte {
	texels := make([]byte, blockTexels*4)
	for t := 0; t < blockTexels; t++ {
		texels[t*4+0] = r
		texels[t*4+1] = g
		texels[t*4+2] = b
		texels[t*4+3] = a
	}
	return texels
}

func absDiffU8(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestBC1SolidColor(t *testing.T) {
	texels := solidBlockRGBA8(128, 64, 200, 255)

	var blk [8]byte
	encodeBC1Block(texels, 2, blk[:])

	out := make([]byte, blockTexels*4)
	decodeBC1Block(blk[:], false, out)

	// Solid colors survive 565 quantization within the replication step.
	for t2 := 0; t2 < blockTexels; t2++ {
		for c := 0; c < 3; c++ {
			if absDiffU8(out[t2*4+c], texels[t2*4+c]) > 4 {
				t.Fatalf("texel %d channel %d: got %d, want near %d", t2, c, out[t2*4+c], texels[t2*4+c])
			}
		}
		if out[t2*4+3] != 255 {
			t.Fatalf("texel %d: alpha %d", t2, out[t2*4+3])
		}
	}
}

func TestBC1OpposingGradient(t *testing.T) {
	// Red rises while green falls, so the principal axis has mixed channel
	// signs. The fit must follow that axis; a fit that collapses to the
	// mean leaves errors over a hundred per channel.
	texels := make([]byte, blockTexels*4)
	for t2 := 0; t2 < blockTexels; t2++ {
		texels[t2*4+0] = uint8(t2 * 16)
		texels[t2*4+1] = uint8(240 - t2*16)
		texels[t2*4+2] = 128
		texels[t2*4+3] = 255
	}

	var blk [8]byte
	encodeBC1Block(texels, 2, blk[:])

	out := make([]byte, blockTexels*4)
	decodeBC1Block(blk[:], false, out)

	// 4 palette entries over a 240-wide ramp leave at most half a palette
	// step of index error plus 565 quantization.
	for t2 := 0; t2 < blockTexels; t2++ {
		for c := 0; c < 3; c++ {
			if absDiffU8(out[t2*4+c], texels[t2*4+c]) > 48 {
				t.Fatalf("texel %d channel %d: got %d, want near %d", t2, c, out[t2*4+c], texels[t2*4+c])
			}
		}
	}
}

func TestBC1FullyTransparent(t *testing.T) {
	texels := solidBlockRGBA8(90, 120, 30, 0)

	var blk [8]byte
	encodeBC1Block(texels, 2, blk[:])

	out := make([]byte, blockTexels*4)
	decodeBC1Block(blk[:], false, out)

	// Color-key mode decodes every texel as transparent black.
	for i, v := range out {
		if v != 0 {
			t.Fatalf("byte %d: got %d, want 0", i, v)
		}
	}
}

func TestBC1MixedTransparency(t *testing.T) {
	texels := make([]byte, blockTexels*4)
	for t2 := 0; t2 < blockTexels; t2++ {
		if t2%2 == 0 {
			texels[t2*4+0] = 255
			texels[t2*4+3] = 255
		}
		// Odd texels stay RGBA(0,0,0,0).
	}

	var blk [8]byte
	encodeBC1Block(texels, 2, blk[:])

	out := make([]byte, blockTexels*4)
	decodeBC1Block(blk[:], false, out)

	for t2 := 0; t2 < blockTexels; t2++ {
		if t2%2 == 0 {
			if out[t2*4+0] != 255 || out[t2*4+3] != 255 {
				t.Fatalf("opaque texel %d: got (%d,%d,%d,%d)",
					t2, out[t2*4], out[t2*4+1], out[t2*4+2], out[t2*4+3])
			}
		} else if out[t2*4+3] != 0 {
			t.Fatalf("transparent texel %d: alpha %d", t2, out[t2*4+3])
		}
	}
}

func TestBC1TwoColorExact(t *testing.T) {
	// Black and white are exactly representable 565 endpoints, so a
	// two-color block must round-trip losslessly.
	texels := make([]byte, blockTexels*4)
	for t2 := 0; t2 < blockTexels; t2++ {
		v := uint8(0)
		if t2 >= 8 {
			v = 255
		}
		texels[t2*4+0] = v
		texels[t2*4+1] = v
		texels[t2*4+2] = v
		texels[t2*4+3] = 255
	}

	var blk [8]byte
	encodeBC1Block(texels, 2, blk[:])

	out := make([]byte, blockTexels*4)
	decodeBC1Block(blk[:], false, out)

	for i := range texels {
		if out[i] != texels[i] {
			t.Fatalf("byte %d: got %d, want %d", i, out[i], texels[i])
		}
	}
}

func TestBC1EncodeDeterministic(t *testing.T) {
	texels := make([]byte, blockTexels*4)
	for t2 := 0; t2 < blockTexels; t2++ {
		texels[t2*4+0] = uint8(t2 * 16)
		texels[t2*4+1] = uint8(255 - t2*16)
		texels[t2*4+2] = uint8(t2 * 8)
		texels[t2*4+3] = 255
	}

	var a, b [8]byte
	encodeBC1Block(texels, 3, a[:])
	encodeBC1Block(texels, 3, b[:])
	if a != b {
		t.Fatalf("re-encode differs: % x vs % x", a, b)
	}
}

func TestBC1OpaqueRampIgnoresEndpointOrder(t *testing.T) {
	// BC2/BC3 color halves always decode the 4-color ramp, even with
	// c0 <= c1.
	var blk [8]byte
	w := newBlockWriter(8)
	w.writeBits(uint32(pack565(0, 0, 0)), 16)
	w.writeBits(uint32(pack565(255, 255, 255)), 16)
	for t2 := 0; t2 < blockTexels; t2++ {
		w.writeBits(3, 2)
	}
	w.store(blk[:])

	out := make([]byte, blockTexels*4)
	decodeBC1Block(blk[:], true, out)
	for t2 := 0; t2 < blockTexels; t2++ {
		if out[t2*4+3] != 255 {
			t.Fatalf("texel %d: alpha %d in forced opaque mode", t2, out[t2*4+3])
		}
	}
}
