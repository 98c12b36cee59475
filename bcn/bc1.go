package bcn

import "encoding/binary"

// BC1 block codec. A block is two RGB565 endpoints followed by 16 2-bit
// palette indices. c0 > c1 selects the opaque 4-color ramp; c0 <= c1
// selects color-key mode, where index 3 decodes to transparent black.

// bc1AlphaThreshold is the source alpha below which a texel is treated as
// transparent when BC1 selects color-key mode.
const bc1AlphaThreshold = 128

// bc1LSWeights approximates the ramp positions of the 4-color palette for
// the least-squares refinement step (0..64 scale toward c1).
var bc1LSWeights = [4]uint32{0, 64, 21, 43}

// bc1KeyLSWeights is the 3-color equivalent; index 3 never participates.
var bc1KeyLSWeights = [4]uint32{0, 64, 32, 32}

// decodeBC1Block expands one 8-byte BC1 block into 16 RGBA8 texels.
//
// opaqueRamp forces the 4-color ramp regardless of endpoint order; BC2 and
// BC3 color halves decode that way.
func decodeBC1Block(src []byte, opaqueRamp bool, out []byte) {
	c0 := binary.LittleEndian.Uint16(src[0:2])
	c1 := binary.LittleEndian.Uint16(src[2:4])

	var pal [4][4]uint8
	bc1Palette(c0, c1, opaqueRamp, &pal)

	bits := binary.LittleEndian.Uint32(src[4:8])
	for t := 0; t < blockTexels; t++ {
		p := pal[(bits>>(2*uint(t)))&3]
		out[t*4+0] = p[0]
		out[t*4+1] = p[1]
		out[t*4+2] = p[2]
		out[t*4+3] = p[3]
	}
}

// encodeBC1Block compresses 16 RGBA8 texels into one 8-byte BC1 block,
// selecting color-key mode when any source texel is transparent.
func encodeBC1Block(texels []byte, refine int, dst []byte) {
	transparent := false
	for t := 0; t < blockTexels; t++ {
		if texels[t*4+3] < bc1AlphaThreshold {
			transparent = true
			break
		}
	}
	if transparent {
		encodeBC1KeyBlock(texels, refine, dst)
		return
	}
	c0, c1, idx := fitBC1Color(texels, allTexels, refine)

	// The opaque ramp requires c0 > c1. Equal endpoints would flip the
	// block into color-key mode, so collapse indices onto endpoint 0.
	if c0 < c1 {
		c0, c1 = c1, c0
		for i := range idx {
			idx[i] ^= 1
		}
	} else if c0 == c1 {
		for i := range idx {
			idx[i] = 0
		}
	}
	storeBC1(dst, c0, c1, &idx)
}

// encodeBC1OpaqueBlock is the BC2/BC3 color half: the ramp is always
// 4-color, so endpoint order carries no mode bit.
func encodeBC1OpaqueBlock(texels []byte, refine int, dst []byte) {
	c0, c1, idx := fitBC1Color(texels, allTexels, refine)
	if c0 < c1 {
		c0, c1 = c1, c0
		for i := range idx {
			idx[i] ^= 1
		}
	}
	storeBC1(dst, c0, c1, &idx)
}

func encodeBC1KeyBlock(texels []byte, refine int, dst []byte) {
	members := make([]int, 0, blockTexels)
	for t := 0; t < blockTexels; t++ {
		if texels[t*4+3] >= bc1AlphaThreshold {
			members = append(members, t)
		}
	}

	var idx [blockTexels]uint8
	if len(members) == 0 {
		// Fully transparent block.
		for i := range idx {
			idx[i] = 3
		}
		storeBC1(dst, 0, 0, &idx)
		return
	}

	c0, c1, fit := fitBC1KeyColor(texels, members, refine)
	// Color-key mode requires c0 <= c1.
	if c0 > c1 {
		c0, c1 = c1, c0
		for i := range fit {
			if fit[i] < 2 {
				fit[i] ^= 1
			}
		}
	}
	for i := range idx {
		idx[i] = 3
	}
	for i, t := range members {
		idx[t] = fit[i]
	}
	storeBC1(dst, c0, c1, &idx)
}

func storeBC1(dst []byte, c0, c1 uint16, idx *[blockTexels]uint8) {
	w := newBlockWriter(8)
	w.writeBits(uint32(c0), 16)
	w.writeBits(uint32(c1), 16)
	for t := 0; t < blockTexels; t++ {
		w.writeBits(uint32(idx[t]), 2)
	}
	w.store(dst)
}

// fitBC1Color searches an endpoint pair for the 4-color ramp over the
// member texels and returns the quantized endpoints with per-texel indices
// (member order; non-members get index 0).
func fitBC1Color(texels []byte, members []int, refine int) (uint16, uint16, [blockTexels]uint8) {
	var px [blockTexels * 4]float32
	for t := 0; t < blockTexels; t++ {
		px[t*4+0] = float32(texels[t*4+0])
		px[t*4+1] = float32(texels[t*4+1])
		px[t*4+2] = float32(texels[t*4+2])
	}

	mean, axis := computeMeanAxis(px[:], members, 3)
	e0, e1 := projectEndpoints(px[:], members, mean, axis, 3)

	bestC0, bestC1 := quantize565Pair(e0, e1)
	var bestIdx [blockTexels]uint8
	bestErr := assignBC1Indices(texels, members, bestC0, bestC1, &bestIdx)

	idxScratch := make([]uint8, len(members))
	var cur [blockTexels]uint8
	for pass := 0; pass < refine; pass++ {
		for i, t := range members {
			idxScratch[i] = bestIdx[t]
		}
		if !lsRefineEndpoints(px[:], members, idxScratch, bc1LSWeights[:], 3, &e0, &e1) {
			break
		}
		c0, c1 := quantize565Pair(e0, e1)
		err := assignBC1Indices(texels, members, c0, c1, &cur)
		if err >= bestErr {
			break
		}
		bestErr, bestC0, bestC1, bestIdx = err, c0, c1, cur
	}
	return bestC0, bestC1, bestIdx
}

// fitBC1KeyColor is the 3-color variant used in color-key mode. Returned
// indices are in member order and never use value 3.
func fitBC1KeyColor(texels []byte, members []int, refine int) (uint16, uint16, []uint8) {
	var px [blockTexels * 4]float32
	for t := 0; t < blockTexels; t++ {
		px[t*4+0] = float32(texels[t*4+0])
		px[t*4+1] = float32(texels[t*4+1])
		px[t*4+2] = float32(texels[t*4+2])
	}

	mean, axis := computeMeanAxis(px[:], members, 3)
	e0, e1 := projectEndpoints(px[:], members, mean, axis, 3)

	bestC0, bestC1 := quantize565Pair(e0, e1)
	bestIdx := make([]uint8, len(members))
	bestErr := assignBC1KeyIndices(texels, members, bestC0, bestC1, bestIdx)

	cur := make([]uint8, len(members))
	for pass := 0; pass < refine; pass++ {
		if !lsRefineEndpoints(px[:], members, bestIdx, bc1KeyLSWeights[:], 3, &e0, &e1) {
			break
		}
		c0, c1 := quantize565Pair(e0, e1)
		err := assignBC1KeyIndices(texels, members, c0, c1, cur)
		if err >= bestErr {
			break
		}
		bestErr, bestC0, bestC1 = err, c0, c1
		copy(bestIdx, cur)
	}
	return bestC0, bestC1, bestIdx
}

// quantize565Pair quantizes a float endpoint pair, ordering ties by raw
// encoding so output is reproducible.
func quantize565Pair(e0, e1 vec4) (uint16, uint16) {
	c0 := pack565(
		uint8(clampF(e0[0], 0, 255)+0.5),
		uint8(clampF(e0[1], 0, 255)+0.5),
		uint8(clampF(e0[2], 0, 255)+0.5),
	)
	c1 := pack565(
		uint8(clampF(e1[0], 0, 255)+0.5),
		uint8(clampF(e1[1], 0, 255)+0.5),
		uint8(clampF(e1[2], 0, 255)+0.5),
	)
	return c0, c1
}

func assignBC1Indices(texels []byte, members []int, c0, c1 uint16, idx *[blockTexels]uint8) uint32 {
	var pal [4][4]uint8
	bc1Palette(c0, c1, true, &pal)

	var total uint32
	for _, t := range members {
		best := uint32(1 << 31)
		bestI := uint8(0)
		for i := 0; i < 4; i++ {
			e := sqDiff(texels[t*4+0], pal[i][0]) +
				sqDiff(texels[t*4+1], pal[i][1]) +
				sqDiff(texels[t*4+2], pal[i][2])
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

func assignBC1KeyIndices(texels []byte, members []int, c0, c1 uint16, idx []uint8) uint32 {
	var pal [4][4]uint8
	bc1Palette(c0, c1, false, &pal)
	if c0 > c1 {
		// Caller has not normalized order yet; interpolate as 3-color anyway.
		r0, g0, b0 := unpack565(c0)
		r1, g1, b1 := unpack565(c1)
		pal[2] = [4]uint8{half(r0, r1), half(g0, g1), half(b0, b1), 255}
	}

	var total uint32
	for i, t := range members {
		best := uint32(1 << 31)
		bestI := uint8(0)
		for p := 0; p < 3; p++ {
			e := sqDiff(texels[t*4+0], pal[p][0]) +
				sqDiff(texels[t*4+1], pal[p][1]) +
				sqDiff(texels[t*4+2], pal[p][2])
			if e < best {
				best = e
				bestI = uint8(p)
			}
		}
		idx[i] = bestI
		total += best
	}
	return total
}
