package bcn

// BC3: an interpolated-alpha block (BC4 scheme) followed by a BC1-layout
// color block that always decodes with the 4-color ramp.

func decodeBC3Block(src []byte, out []byte) {
	decodeBC1Block(src[8:16], true, out)

	var alpha [blockTexels]uint8
	decodeBC4Block(src[0:8], &alpha)
	for t := 0; t < blockTexels; t++ {
		out[t*4+3] = alpha[t]
	}
}

func encodeBC3Block(texels []byte, refine int, dst []byte) {
	var alpha [blockTexels]uint8
	for t := 0; t < blockTexels; t++ {
		alpha[t] = texels[t*4+3]
	}
	encodeBC4Block(&alpha, dst[0:8])
	encodeBC1OpaqueBlock(texels, refine, dst[8:16])
}
