package bcn

// BC5: two independent BC4 scalar blocks, red then green. Decoded blue is
// fixed at 0 and alpha at 255 (callers reconstructing normals derive Z).

func decodeBC5Block(src []byte, out []byte) {
	var r, g [blockTexels]uint8
	decodeBC4Block(src[0:8], &r)
	decodeBC4Block(src[8:16], &g)
	for t := 0; t < blockTexels; t++ {
		out[t*4+0] = r[t]
		out[t*4+1] = g[t]
		out[t*4+2] = 0
		out[t*4+3] = 255
	}
}

func encodeBC5Block(texels []byte, dst []byte) {
	var r, g [blockTexels]uint8
	for t := 0; t < blockTexels; t++ {
		r[t] = texels[t*4+0]
		g[t] = texels[t*4+1]
	}
	encodeBC4Block(&r, dst[0:8])
	encodeBC4Block(&g, dst[8:16])
}

// decodeBC4RGBA expands a BC4 block into RGBA8 with the scalar replicated
// into red and 0/255 elsewhere, matching the single-channel texture view.
func decodeBC4RGBA(src []byte, out []byte) {
	var r [blockTexels]uint8
	decodeBC4Block(src[0:8], &r)
	for t := 0; t < blockTexels; t++ {
		out[t*4+0] = r[t]
		out[t*4+1] = 0
		out[t*4+2] = 0
		out[t*4+3] = 255
	}
}

func encodeBC4FromRGBA(texels []byte, dst []byte) {
	var r [blockTexels]uint8
	for t := 0; t < blockTexels; t++ {
		r[t] = texels[t*4+0]
	}
	encodeBC4Block(&r, dst[0:8])
}
