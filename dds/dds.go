// Package dds reads and writes DDS texture containers holding
// block-compressed (BC1-BC7) payloads, including the Enfusion EDDS
// variant with LZ4-compressed mip blocks.
package dds

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/GabrielMajeri/block-compression-go/bcn"
)

const (
	// HeaderSize is the byte size of the DDS header, excluding the magic.
	HeaderSize = 124
	// PixelFormatSize is the byte size of the pixel format sub-struct.
	PixelFormatSize = 32

	magic = "DDS "
)

// Header flag bits.
const (
	FlagCaps        = 0x1
	FlagHeight      = 0x2
	FlagWidth       = 0x4
	FlagPitch       = 0x8
	FlagPixelFormat = 0x1000
	FlagMipmapCount = 0x20000
	FlagLinearSize  = 0x80000
)

// Caps bits.
const (
	CapsComplex = 0x8
	CapsTexture = 0x1000
	CapsMipmap  = 0x400000
)

// PixelFormat flag bits.
const (
	PFAlphaPixels = 0x1
	PFFourCC      = 0x4
	PFRGB         = 0x40
	PFLuminance   = 0x20000
)

// DXGI format codes accepted in DX10 extension headers.
const (
	dxgiBC1UNorm     = 71
	dxgiBC1UNormSRGB = 72
	dxgiBC2UNorm     = 74
	dxgiBC2UNormSRGB = 75
	dxgiBC3UNorm     = 77
	dxgiBC3UNormSRGB = 78
	dxgiBC4UNorm     = 80
	dxgiBC4SNorm     = 81
	dxgiBC5UNorm     = 83
	dxgiBC5SNorm     = 84
	dxgiBC6HUF16     = 95
	dxgiBC6HSF16     = 96
	dxgiBC7UNorm     = 98
	dxgiBC7UNormSRGB = 99

	resourceDimensionTexture2D = 3
)

// PixelFormat mirrors DDS_PIXELFORMAT.
type PixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      uint32
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

// Header mirrors DDS_HEADER. Binary layout is fixed little-endian.
type Header struct {
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       PixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

// HeaderDX10 mirrors DDS_HEADER_DXT10.
type HeaderDX10 struct {
	DXGIFormat        uint32
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

// Texture is a parsed block-compressed DDS payload: the format plus the
// raw block data of each mip level, largest first.
type Texture struct {
	Format bcn.Format
	// Signed marks the signed BC6H profile; false for every other format.
	Signed bool

	Width  int
	Height int

	MipMaps [][]byte
}

// MipCount returns the number of mip levels.
func (t *Texture) MipCount() int { return len(t.MipMaps) }

// mipDimension returns a mip level's extent along one axis.
func mipDimension(base, level int) int {
	d := base >> uint(level)
	if d < 1 {
		return 1
	}
	return d
}

// maxMipCount returns the length of a complete mip chain down to 1x1.
func maxMipCount(width, height int) int {
	d := width
	if height > d {
		d = height
	}
	n := 1
	for d > 1 {
		d >>= 1
		n++
	}
	return n
}

// headerMipCount extracts the declared mip count, bounding it by the
// longest chain the dimensions allow so a hostile header cannot drive
// allocation.
func headerMipCount(h *Header) (int, error) {
	mipCount := 1
	if h.Caps&CapsMipmap != 0 && h.MipMapCount > 0 {
		mipCount = int(h.MipMapCount)
	}
	if limit := maxMipCount(int(h.Width), int(h.Height)); mipCount > limit {
		return 0, fmt.Errorf("%w: %d mip levels for %dx%d", ErrBadHeader, mipCount, h.Width, h.Height)
	}
	return mipCount, nil
}

// ReadHeader reads and validates the magic plus the 124-byte header.
func ReadHeader(r io.Reader) (*Header, error) {
	var m [4]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeaderRead, err)
	}
	if string(m[:]) != magic {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, m[:])
	}

	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeaderRead, err)
	}
	if h.Size != HeaderSize || h.PixelFormat.Size != PixelFormatSize {
		return nil, fmt.Errorf("%w: size fields %d/%d", ErrBadHeader, h.Size, h.PixelFormat.Size)
	}
	if h.Width == 0 || h.Height == 0 {
		return nil, fmt.Errorf("%w: zero dimensions", ErrBadHeader)
	}
	return &h, nil
}

// ReadHeaderDX10 reads the DX10 extension header when the pixel format
// calls for one, returning nil otherwise.
func ReadHeaderDX10(r io.Reader, h *Header) (*HeaderDX10, error) {
	if h.PixelFormat.Flags&PFFourCC == 0 || h.PixelFormat.FourCC != makeFourCC('D', 'X', '1', '0') {
		return nil, nil
	}
	var dx10 HeaderDX10
	if err := binary.Read(r, binary.LittleEndian, &dx10); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDX10Read, err)
	}
	return &dx10, nil
}

// WriteHeader writes the magic, the header and, when the format needs one,
// the DX10 extension header.
func WriteHeader(w io.Writer, h *Header, dx10 *HeaderDX10) error {
	if _, err := io.WriteString(w, magic); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if dx10 != nil {
		if err := binary.Write(w, binary.LittleEndian, dx10); err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
	}
	return nil
}

func makeFourCC(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

func fourCCString(v uint32) string {
	return string([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

// detectFormat resolves the block format from the header pair.
func detectFormat(h *Header, dx10 *HeaderDX10) (bcn.Format, bool, error) {
	if dx10 != nil {
		switch dx10.DXGIFormat {
		case dxgiBC1UNorm, dxgiBC1UNormSRGB:
			return bcn.FormatBC1, false, nil
		case dxgiBC2UNorm, dxgiBC2UNormSRGB:
			return bcn.FormatBC2, false, nil
		case dxgiBC3UNorm, dxgiBC3UNormSRGB:
			return bcn.FormatBC3, false, nil
		case dxgiBC4UNorm, dxgiBC4SNorm:
			return bcn.FormatBC4, false, nil
		case dxgiBC5UNorm, dxgiBC5SNorm:
			return bcn.FormatBC5, false, nil
		case dxgiBC6HUF16:
			return bcn.FormatBC6H, false, nil
		case dxgiBC6HSF16:
			return bcn.FormatBC6H, true, nil
		case dxgiBC7UNorm, dxgiBC7UNormSRGB:
			return bcn.FormatBC7, false, nil
		default:
			return 0, false, fmt.Errorf("%w: DXGI %d", ErrUnknownFormat, dx10.DXGIFormat)
		}
	}

	if h.PixelFormat.Flags&PFFourCC == 0 {
		return 0, false, fmt.Errorf("%w: no fourCC", ErrUnknownFormat)
	}
	fourCC := fourCCString(h.PixelFormat.FourCC)
	switch fourCC {
	case "DXT1":
		return bcn.FormatBC1, false, nil
	case "DXT2", "DXT3":
		return bcn.FormatBC2, false, nil
	case "DXT4", "DXT5":
		return bcn.FormatBC3, false, nil
	case "ATI1", "BC4U":
		return bcn.FormatBC4, false, nil
	case "ATI2", "BC5U":
		return bcn.FormatBC5, false, nil
	default:
		return 0, false, fmt.Errorf("%w: fourCC %q", ErrUnknownFormat, fourCC)
	}
}

// buildHeaders constructs the header pair for a texture. BC6H and BC7 have
// no legacy fourCC, so they always get a DX10 extension header.
func buildHeaders(t *Texture) (*Header, *HeaderDX10, error) {
	h := &Header{
		Size:        HeaderSize,
		Flags:       FlagCaps | FlagHeight | FlagWidth | FlagPixelFormat | FlagLinearSize,
		Height:      uint32(t.Height),
		Width:       uint32(t.Width),
		Depth:       1,
		MipMapCount: uint32(len(t.MipMaps)),
		Caps:        CapsTexture,
	}
	if len(t.MipMaps) > 1 {
		h.Flags |= FlagMipmapCount
		h.Caps |= CapsComplex | CapsMipmap
	}
	h.PixelFormat.Size = PixelFormatSize

	topSize, err := bcn.EncodedSize(t.Format, t.Width, t.Height)
	if err != nil {
		return nil, nil, err
	}
	h.PitchOrLinearSize = uint32(topSize)

	var dx10 *HeaderDX10
	setFourCC := func(a, b, c, d byte) {
		h.PixelFormat.Flags = PFFourCC
		h.PixelFormat.FourCC = makeFourCC(a, b, c, d)
	}

	switch t.Format {
	case bcn.FormatBC1:
		setFourCC('D', 'X', 'T', '1')
	case bcn.FormatBC2:
		setFourCC('D', 'X', 'T', '3')
	case bcn.FormatBC3:
		setFourCC('D', 'X', 'T', '5')
	case bcn.FormatBC4:
		setFourCC('A', 'T', 'I', '1')
	case bcn.FormatBC5:
		setFourCC('A', 'T', 'I', '2')
	case bcn.FormatBC6H:
		setFourCC('D', 'X', '1', '0')
		code := uint32(dxgiBC6HUF16)
		if t.Signed {
			code = dxgiBC6HSF16
		}
		dx10 = &HeaderDX10{
			DXGIFormat:        code,
			ResourceDimension: resourceDimensionTexture2D,
			ArraySize:         1,
		}
	case bcn.FormatBC7:
		setFourCC('D', 'X', '1', '0')
		dx10 = &HeaderDX10{
			DXGIFormat:        dxgiBC7UNorm,
			ResourceDimension: resourceDimensionTexture2D,
			ArraySize:         1,
		}
	default:
		return nil, nil, fmt.Errorf("%w: %v", ErrUnknownFormat, t.Format)
	}

	return h, dx10, nil
}

// Decode parses a plain DDS stream into a Texture. Every mip level must be
// present at exactly its computed block size.
func Decode(r io.Reader) (*Texture, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	dx10, err := ReadHeaderDX10(r, h)
	if err != nil {
		return nil, err
	}
	format, signed, err := detectFormat(h, dx10)
	if err != nil {
		return nil, err
	}

	mipCount, err := headerMipCount(h)
	if err != nil {
		return nil, err
	}

	t := &Texture{
		Format:  format,
		Signed:  signed,
		Width:   int(h.Width),
		Height:  int(h.Height),
		MipMaps: make([][]byte, 0, mipCount),
	}

	for level := 0; level < mipCount; level++ {
		mw := mipDimension(t.Width, level)
		mh := mipDimension(t.Height, level)
		size, err := bcn.EncodedSize(format, mw, mh)
		if err != nil {
			return nil, err
		}
		data := make([]byte, size)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("%w: mip %d: %v", ErrDataTruncated, level, err)
		}
		t.MipMaps = append(t.MipMaps, data)
	}
	return t, nil
}

// Encode writes a Texture as a plain DDS stream.
func Encode(w io.Writer, t *Texture) error {
	if err := validateTexture(t); err != nil {
		return err
	}
	h, dx10, err := buildHeaders(t)
	if err != nil {
		return err
	}
	if err := WriteHeader(w, h, dx10); err != nil {
		return err
	}
	for _, mip := range t.MipMaps {
		if _, err := w.Write(mip); err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
	}
	return nil
}

func validateTexture(t *Texture) error {
	if t == nil || len(t.MipMaps) == 0 {
		return ErrEmptyTexture
	}
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadHeader, t.Width, t.Height)
	}
	for level, mip := range t.MipMaps {
		mw := mipDimension(t.Width, level)
		mh := mipDimension(t.Height, level)
		size, err := bcn.EncodedSize(t.Format, mw, mh)
		if err != nil {
			return err
		}
		if len(mip) != size {
			return fmt.Errorf("%w: mip %d: expected %d, got %d", ErrMipSizeMismatch, level, size, len(mip))
		}
	}
	return nil
}
