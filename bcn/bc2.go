package bcn

// BC2: an explicit 4-bit alpha block followed by a BC1-layout color block
// that always decodes with the 4-color ramp.

func decodeBC2Block(src []byte, out []byte) {
	decodeBC1Block(src[8:16], true, out)
	for t := 0; t < blockTexels; t++ {
		a4 := (src[t/2] >> (4 * uint(t&1))) & 0xF
		out[t*4+3] = a4 * 17
	}
}

func encodeBC2Block(texels []byte, refine int, dst []byte) {
	for i := 0; i < 8; i++ {
		lo := quantizeUN8(texels[(2*i+0)*4+3], 4)
		hi := quantizeUN8(texels[(2*i+1)*4+3], 4)
		dst[i] = uint8(lo | hi<<4)
	}
	encodeBC1OpaqueBlock(texels, refine, dst[8:16])
}
