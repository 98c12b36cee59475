package bcn

// Format selects one of the BC1-BC7 block compression codecs.
//
// BCn streams do not store the format; it is a usage convention carried by
// the container (e.g. the DDS fourCC) or by the caller.
type Format uint8

const (
	// FormatBC1 is RGB with optional 1-bit alpha, 8 bytes per block (DXT1).
	FormatBC1 Format = iota + 1
	// FormatBC2 is RGB plus explicit 4-bit alpha, 16 bytes per block (DXT3).
	FormatBC2
	// FormatBC3 is RGB plus interpolated alpha, 16 bytes per block (DXT5).
	FormatBC3
	// FormatBC4 is a single interpolated scalar channel, 8 bytes per block.
	FormatBC4
	// FormatBC5 is two independent scalar channels, 16 bytes per block.
	FormatBC5
	// FormatBC6H is HDR RGB over half floats, 16 bytes per block.
	FormatBC6H
	// FormatBC7 is LDR RGBA with 8 layout modes, 16 bytes per block.
	FormatBC7
)

// BlockWidth and BlockHeight are the fixed texel footprint of every BCn block.
const (
	BlockWidth  = 4
	BlockHeight = 4
)

// blockTexels is the number of texels covered by one block.
const blockTexels = BlockWidth * BlockHeight

func (f Format) String() string {
	switch f {
	case FormatBC1:
		return "BC1"
	case FormatBC2:
		return "BC2"
	case FormatBC3:
		return "BC3"
	case FormatBC4:
		return "BC4"
	case FormatBC5:
		return "BC5"
	case FormatBC6H:
		return "BC6H"
	case FormatBC7:
		return "BC7"
	default:
		return "unknown"
	}
}

// BlockBytes returns the fixed encoded size of one 4x4 block, or 0 for an
// invalid format.
func (f Format) BlockBytes() int {
	switch f {
	case FormatBC1, FormatBC4:
		return 8
	case FormatBC2, FormatBC3, FormatBC5, FormatBC6H, FormatBC7:
		return 16
	default:
		return 0
	}
}

// HDR reports whether the format operates on half-float texels.
func (f Format) HDR() bool {
	return f == FormatBC6H
}

func validateFormat(f Format) error {
	if f.BlockBytes() == 0 {
		return newError(ErrBadFormat, "bcn: invalid format")
	}
	return nil
}

// EncodedSize returns the byte length of the encoded stream for an image:
// ceil(width/4) * ceil(height/4) * BlockBytes.
func EncodedSize(f Format, width, height int) (int, error) {
	if err := validateFormat(f); err != nil {
		return 0, err
	}
	if width <= 0 || height <= 0 {
		return 0, newError(ErrBadParam, "bcn: invalid image dimensions")
	}
	bx := (width + BlockWidth - 1) / BlockWidth
	by := (height + BlockHeight - 1) / BlockHeight
	return bx * by * f.BlockBytes(), nil
}
