package bcn

import (
	"runtime"
	"sync"
)

// EncodeRGBA8 compresses a row-major RGBA8 pixel buffer with medium
// quality. The result is a tight row-major array of blocks,
// EncodedSize(format, width, height) bytes long.
func EncodeRGBA8(pix []byte, width, height int, format Format) ([]byte, error) {
	return EncodeRGBA8WithQuality(pix, width, height, format, QualityMedium)
}

// EncodeRGBA8WithQuality compresses a row-major RGBA8 pixel buffer.
// BC6H is an HDR format and rejects U8 input; use EncodeRGBAF16.
func EncodeRGBA8WithQuality(pix []byte, width, height int, format Format, quality float32) ([]byte, error) {
	if format == FormatBC6H {
		return nil, newError(ErrBadFormat, "bcn: BC6H input must be F16 or F32")
	}
	img := &Image{DimX: width, DimY: height, DataType: TypeU8, DataU8: pix}
	return encodeImage(img, format, quality, false)
}

// DecodeRGBA8 decodes a block array produced by an LDR format into a
// row-major RGBA8 pixel buffer. data must be exactly
// EncodedSize(format, width, height) bytes.
func DecodeRGBA8(data []byte, width, height int, format Format) ([]byte, error) {
	if format == FormatBC6H {
		return nil, newError(ErrBadFormat, "bcn: BC6H output must be F16 or F32")
	}
	if width <= 0 || height <= 0 {
		return nil, newError(ErrBadParam, "bcn: invalid image dimensions")
	}
	pix := make([]byte, width*height*4)
	img := &Image{DimX: width, DimY: height, DataType: TypeU8, DataU8: pix}
	if err := decodeImage(data, img, format, false); err != nil {
		return nil, err
	}
	return pix, nil
}

// EncodeRGBAF16 compresses a row-major RGBA half-float buffer with BC6H.
func EncodeRGBAF16(pix []uint16, width, height int, signed bool, quality float32) ([]byte, error) {
	img := &Image{DimX: width, DimY: height, DataType: TypeF16, DataF16: pix}
	return encodeImage(img, FormatBC6H, quality, signed)
}

// DecodeRGBAF16 decodes a BC6H block array into RGBA half-float pixels.
func DecodeRGBAF16(data []byte, width, height int, signed bool) ([]uint16, error) {
	if width <= 0 || height <= 0 {
		return nil, newError(ErrBadParam, "bcn: invalid image dimensions")
	}
	pix := make([]uint16, width*height*4)
	img := &Image{DimX: width, DimY: height, DataType: TypeF16, DataF16: pix}
	if err := decodeImage(data, img, FormatBC6H, signed); err != nil {
		return nil, err
	}
	return pix, nil
}

// EncodeRGBAF32 compresses a row-major RGBA float32 buffer with BC6H.
func EncodeRGBAF32(pix []float32, width, height int, signed bool, quality float32) ([]byte, error) {
	img := &Image{DimX: width, DimY: height, DataType: TypeF32, DataF32: pix}
	return encodeImage(img, FormatBC6H, quality, signed)
}

// DecodeRGBAF32 decodes a BC6H block array into RGBA float32 pixels.
func DecodeRGBAF32(data []byte, width, height int, signed bool) ([]float32, error) {
	if width <= 0 || height <= 0 {
		return nil, newError(ErrBadParam, "bcn: invalid image dimensions")
	}
	pix := make([]float32, width*height*4)
	img := &Image{DimX: width, DimY: height, DataType: TypeF32, DataF32: pix}
	if err := decodeImage(data, img, FormatBC6H, signed); err != nil {
		return nil, err
	}
	return pix, nil
}

func encodeImage(img *Image, format Format, quality float32, signed bool) ([]byte, error) {
	cfg, err := ConfigInit(format, quality, 0)
	if err != nil {
		return nil, err
	}
	cfg.Signed = signed

	size, err := EncodedSize(format, img.DimX, img.DimY)
	if err != nil {
		return nil, err
	}
	out := make([]byte, size)

	threads := workerCount(img.DimX, img.DimY)
	ctx, err := ContextAlloc(&cfg, threads)
	if err != nil {
		return nil, err
	}
	defer ctx.Close()

	if threads == 1 {
		if err := ctx.CompressImage(img, out, 0); err != nil {
			return nil, err
		}
		return out, nil
	}

	errs := make([]error, threads)
	var wg sync.WaitGroup
	wg.Add(threads)
	for w := 0; w < threads; w++ {
		go func(ti int) {
			defer wg.Done()
			errs[ti] = ctx.CompressImage(img, out, ti)
		}(w)
	}
	wg.Wait()
	for _, e := range errs {
		if e != nil {
			return nil, e
		}
	}
	return out, nil
}

func decodeImage(data []byte, img *Image, format Format, signed bool) error {
	cfg, err := ConfigInit(format, QualityMedium, FlagDecompressOnly)
	if err != nil {
		return err
	}
	cfg.Signed = signed

	threads := workerCount(img.DimX, img.DimY)
	ctx, err := ContextAlloc(&cfg, threads)
	if err != nil {
		return err
	}
	defer ctx.Close()

	if threads == 1 {
		return ctx.DecompressImage(data, img, 0)
	}

	errs := make([]error, threads)
	var wg sync.WaitGroup
	wg.Add(threads)
	for w := 0; w < threads; w++ {
		go func(ti int) {
			defer wg.Done()
			errs[ti] = ctx.DecompressImage(data, img, ti)
		}(w)
	}
	wg.Wait()
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// workerCount picks the goroutine count for the convenience wrappers.
// Small images run sequentially; the scheduling overhead dominates below
// a few dozen blocks.
func workerCount(width, height int) int {
	blocks := ((width + BlockWidth - 1) / BlockWidth) * ((height + BlockHeight - 1) / BlockHeight)
	procs := runtime.GOMAXPROCS(0)
	if procs < 1 {
		procs = 1
	}
	if procs > blocks {
		procs = blocks
	}
	if blocks < 32 {
		return 1
	}
	return procs
}
