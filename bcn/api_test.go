package bcn_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/GabrielMajeri/block-compression-go/bcn"
)

func gradientRGBA8(width, height int) []byte {
	pix := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := (y*width + x) * 4
			pix[off+0] = uint8(x * 30)
			pix[off+1] = 100
			pix[off+2] = 50
			pix[off+3] = 255
		}
	}
	return pix
}

func TestEncodedSize(t *testing.T) {
	cases := []struct {
		format bcn.Format
		w, h   int
		want   int
	}{
		{bcn.FormatBC1, 6, 6, 2 * 2 * 8},
		{bcn.FormatBC4, 4, 4, 8},
		{bcn.FormatBC3, 16, 16, 4 * 4 * 16},
		{bcn.FormatBC7, 5, 1, 2 * 1 * 16},
		{bcn.FormatBC6H, 1, 1, 16},
	}
	for _, c := range cases {
		got, err := bcn.EncodedSize(c.format, c.w, c.h)
		if err != nil {
			t.Fatalf("EncodedSize(%v, %d, %d): %v", c.format, c.w, c.h, err)
		}
		if got != c.want {
			t.Fatalf("EncodedSize(%v, %d, %d) = %d, want %d", c.format, c.w, c.h, got, c.want)
		}
	}

	if _, err := bcn.EncodedSize(bcn.Format(0), 4, 4); err == nil {
		t.Fatalf("invalid format accepted")
	}
	if _, err := bcn.EncodedSize(bcn.FormatBC1, 0, 4); err == nil {
		t.Fatalf("zero width accepted")
	}
}

func TestConfigInitValidation(t *testing.T) {
	if _, err := bcn.ConfigInit(bcn.Format(99), bcn.QualityMedium, 0); bcn.ErrorCodeOf(err) != bcn.ErrBadFormat {
		t.Fatalf("bad format: %v", err)
	}
	if _, err := bcn.ConfigInit(bcn.FormatBC1, -1, 0); bcn.ErrorCodeOf(err) != bcn.ErrBadQuality {
		t.Fatalf("negative quality: %v", err)
	}
	if _, err := bcn.ConfigInit(bcn.FormatBC1, 101, 0); bcn.ErrorCodeOf(err) != bcn.ErrBadQuality {
		t.Fatalf("quality over 100: %v", err)
	}
	if _, err := bcn.ConfigInit(bcn.FormatBC1, bcn.QualityMedium, bcn.Flags(1<<30)); bcn.ErrorCodeOf(err) != bcn.ErrBadFlags {
		t.Fatalf("bad flags: %v", err)
	}
}

func TestConfigInitPresets(t *testing.T) {
	cfg, err := bcn.ConfigInit(bcn.FormatBC7, bcn.QualityMedium, 0)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if cfg.TuneRefinementLimit != 2 || cfg.TunePartitionIndexLimit != 32 || cfg.TunePartitionCandidateLimit != 4 {
		t.Fatalf("medium preset: %+v", cfg)
	}

	// In-between qualities interpolate between preset rows.
	mid, err := bcn.ConfigInit(bcn.FormatBC7, 62.5, 0)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if mid.TunePartitionIndexLimit <= cfg.TunePartitionIndexLimit {
		t.Fatalf("interpolated partition limit %d not above medium %d",
			mid.TunePartitionIndexLimit, cfg.TunePartitionIndexLimit)
	}
	if mid.TunePartitionCandidateLimit != 6 {
		t.Fatalf("interpolated candidate limit %d, want 6", mid.TunePartitionCandidateLimit)
	}
}

func TestEncodeDecodeRoundTripBC1(t *testing.T) {
	const w, h = 6, 6
	pix := gradientRGBA8(w, h)

	data, err := bcn.EncodeRGBA8(pix, w, h, bcn.FormatBC1)
	if err != nil {
		t.Fatalf("%v", err)
	}
	want, _ := bcn.EncodedSize(bcn.FormatBC1, w, h)
	if len(data) != want {
		t.Fatalf("encoded %d bytes, want %d", len(data), want)
	}

	out, err := bcn.DecodeRGBA8(data, w, h, bcn.FormatBC1)
	if err != nil {
		t.Fatalf("%v", err)
	}
	for i := 0; i < w*h; i++ {
		for c := 0; c < 3; c++ {
			d := int(out[i*4+c]) - int(pix[i*4+c])
			if d < 0 {
				d = -d
			}
			if d > 16 {
				t.Fatalf("pixel %d channel %d: got %d, want near %d", i, c, out[i*4+c], pix[i*4+c])
			}
		}
		if out[i*4+3] != 255 {
			t.Fatalf("pixel %d: alpha %d", i, out[i*4+3])
		}
	}
}

func TestLDRFormatsRoundTrip(t *testing.T) {
	const w, h = 8, 8
	pix := gradientRGBA8(w, h)

	for _, format := range []bcn.Format{
		bcn.FormatBC1, bcn.FormatBC2, bcn.FormatBC3,
		bcn.FormatBC4, bcn.FormatBC5, bcn.FormatBC7,
	} {
		data, err := bcn.EncodeRGBA8(pix, w, h, format)
		if err != nil {
			t.Fatalf("%v encode: %v", format, err)
		}
		out, err := bcn.DecodeRGBA8(data, w, h, format)
		if err != nil {
			t.Fatalf("%v decode: %v", format, err)
		}
		// Red survives every format.
		for i := 0; i < w*h; i++ {
			d := int(out[i*4]) - int(pix[i*4])
			if d < 0 {
				d = -d
			}
			if d > 20 {
				t.Fatalf("%v pixel %d: red %d, want near %d", format, i, out[i*4], pix[i*4])
			}
		}
	}
}

func TestBC6HRoundTripF32(t *testing.T) {
	// All channels stay inside the [2,4) exponent band, where half floats
	// are evenly spaced and the palette error maps to a uniform tolerance.
	const w, h = 8, 8
	pix := make([]float32, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := (y*w + x) * 4
			pix[off+0] = 2.0 + float32(x)*0.25
			pix[off+1] = 3.0
			pix[off+2] = 2.0 + float32(y)*0.125
			pix[off+3] = 1.0
		}
	}

	data, err := bcn.EncodeRGBAF32(pix, w, h, false, bcn.QualityMedium)
	if err != nil {
		t.Fatalf("%v", err)
	}
	out, err := bcn.DecodeRGBAF32(data, w, h, false)
	if err != nil {
		t.Fatalf("%v", err)
	}
	for i := 0; i < w*h; i++ {
		for c := 0; c < 3; c++ {
			d := out[i*4+c] - pix[i*4+c]
			if d < 0 {
				d = -d
			}
			if d > 0.5 {
				t.Fatalf("pixel %d channel %d: got %f, want near %f", i, c, out[i*4+c], pix[i*4+c])
			}
		}
		if out[i*4+3] != 1.0 {
			t.Fatalf("pixel %d: alpha %f", i, out[i*4+3])
		}
	}
}

func TestHDRFormatRejectsU8(t *testing.T) {
	pix := gradientRGBA8(4, 4)
	if _, err := bcn.EncodeRGBA8(pix, 4, 4, bcn.FormatBC6H); bcn.ErrorCodeOf(err) != bcn.ErrBadFormat {
		t.Fatalf("BC6H accepted U8 encode: %v", err)
	}
	if _, err := bcn.DecodeRGBA8(make([]byte, 16), 4, 4, bcn.FormatBC6H); bcn.ErrorCodeOf(err) != bcn.ErrBadFormat {
		t.Fatalf("BC6H accepted U8 decode: %v", err)
	}
}

func TestDecompressImageSizeMismatch(t *testing.T) {
	cfg, err := bcn.ConfigInit(bcn.FormatBC1, bcn.QualityMedium, bcn.FlagDecompressOnly)
	if err != nil {
		t.Fatalf("%v", err)
	}
	ctx, err := bcn.ContextAlloc(&cfg, 1)
	if err != nil {
		t.Fatalf("%v", err)
	}
	defer ctx.Close()

	img := &bcn.Image{
		DimX:     8,
		DimY:     8,
		DataType: bcn.TypeU8,
		DataU8:   make([]byte, 8*8*4),
	}
	err = ctx.DecompressImage(make([]byte, 31), img, 0)
	if bcn.ErrorCodeOf(err) != bcn.ErrSizeMismatch {
		t.Fatalf("truncated data: %v", err)
	}
	if err := ctx.DecompressImage(make([]byte, 32), img, 0); err != nil {
		t.Fatalf("exact data: %v", err)
	}
}

func TestCompressImageMultiThreadMatchesSingle(t *testing.T) {
	const w, h, threads = 16, 16, 4
	pix := gradientRGBA8(w, h)
	img := &bcn.Image{DimX: w, DimY: h, DataType: bcn.TypeU8, DataU8: pix}

	cfg, err := bcn.ConfigInit(bcn.FormatBC7, bcn.QualityFast, 0)
	if err != nil {
		t.Fatalf("%v", err)
	}

	size, _ := bcn.EncodedSize(bcn.FormatBC7, w, h)
	single := make([]byte, size)
	ctx1, err := bcn.ContextAlloc(&cfg, 1)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if err := ctx1.CompressImage(img, single, 0); err != nil {
		t.Fatalf("%v", err)
	}

	multi := make([]byte, size)
	ctxN, err := bcn.ContextAlloc(&cfg, threads)
	if err != nil {
		t.Fatalf("%v", err)
	}
	var wg sync.WaitGroup
	errs := make([]error, threads)
	wg.Add(threads)
	for ti := 0; ti < threads; ti++ {
		go func(ti int) {
			defer wg.Done()
			errs[ti] = ctxN.CompressImage(img, multi, ti)
		}(ti)
	}
	wg.Wait()
	for ti, e := range errs {
		if e != nil {
			t.Fatalf("worker %d: %v", ti, e)
		}
	}

	if !bytes.Equal(single, multi) {
		t.Fatalf("multi-threaded output differs from single-threaded")
	}
}

func TestContextRequiresResetAfterMultiThreadUse(t *testing.T) {
	const w, h, threads = 8, 8, 2
	img := &bcn.Image{DimX: w, DimY: h, DataType: bcn.TypeU8, DataU8: gradientRGBA8(w, h)}

	cfg, err := bcn.ConfigInit(bcn.FormatBC1, bcn.QualityFastest, 0)
	if err != nil {
		t.Fatalf("%v", err)
	}
	ctx, err := bcn.ContextAlloc(&cfg, threads)
	if err != nil {
		t.Fatalf("%v", err)
	}

	size, _ := bcn.EncodedSize(bcn.FormatBC1, w, h)
	out := make([]byte, size)
	compressAll := func() []error {
		var wg sync.WaitGroup
		errs := make([]error, threads)
		wg.Add(threads)
		for ti := 0; ti < threads; ti++ {
			go func(ti int) {
				defer wg.Done()
				errs[ti] = ctx.CompressImage(img, out, ti)
			}(ti)
		}
		wg.Wait()
		return errs
	}

	for ti, e := range compressAll() {
		if e != nil {
			t.Fatalf("first compress, worker %d: %v", ti, e)
		}
	}

	// Multi-thread contexts demand an explicit reset between images.
	if err := ctx.CompressImage(img, out, 0); bcn.ErrorCodeOf(err) != bcn.ErrBadContext {
		t.Fatalf("compress without reset: %v", err)
	}
	if err := ctx.CompressReset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	for ti, e := range compressAll() {
		if e != nil {
			t.Fatalf("compress after reset, worker %d: %v", ti, e)
		}
	}
}

func TestCompressImageRepeatedParallel(t *testing.T) {
	// A worker that finishes every block before a sibling has even joined
	// must not retire the operation; the late sibling still belongs to it.
	// Repeat to give the schedule room to produce such interleavings.
	const w, h, threads = 16, 16, 4
	img := &bcn.Image{DimX: w, DimY: h, DataType: bcn.TypeU8, DataU8: gradientRGBA8(w, h)}

	cfg, err := bcn.ConfigInit(bcn.FormatBC1, bcn.QualityFastest, 0)
	if err != nil {
		t.Fatalf("%v", err)
	}
	size, _ := bcn.EncodedSize(bcn.FormatBC1, w, h)

	for iter := 0; iter < 100; iter++ {
		ctx, err := bcn.ContextAlloc(&cfg, threads)
		if err != nil {
			t.Fatalf("iteration %d: %v", iter, err)
		}
		out := make([]byte, size)
		var wg sync.WaitGroup
		errs := make([]error, threads)
		wg.Add(threads)
		for ti := 0; ti < threads; ti++ {
			go func(ti int) {
				defer wg.Done()
				errs[ti] = ctx.CompressImage(img, out, ti)
			}(ti)
		}
		wg.Wait()
		for ti, e := range errs {
			if e != nil {
				t.Fatalf("iteration %d, worker %d: %v", iter, ti, e)
			}
		}
	}
}

func TestOpaqueHintForcesAlpha(t *testing.T) {
	const w, h = 4, 4
	pix := gradientRGBA8(w, h)
	for i := 0; i < w*h; i++ {
		pix[i*4+3] = 0
	}
	img := &bcn.Image{DimX: w, DimY: h, DataType: bcn.TypeU8, DataU8: pix}

	cfg, err := bcn.ConfigInit(bcn.FormatBC1, bcn.QualityMedium, bcn.FlagOpaqueHint)
	if err != nil {
		t.Fatalf("%v", err)
	}
	ctx, err := bcn.ContextAlloc(&cfg, 1)
	if err != nil {
		t.Fatalf("%v", err)
	}
	out := make([]byte, 8)
	if err := ctx.CompressImage(img, out, 0); err != nil {
		t.Fatalf("%v", err)
	}

	decoded, err := bcn.DecodeRGBA8(out, w, h, bcn.FormatBC1)
	if err != nil {
		t.Fatalf("%v", err)
	}
	for i := 0; i < w*h; i++ {
		if decoded[i*4+3] != 255 {
			t.Fatalf("pixel %d: alpha %d with opaque hint", i, decoded[i*4+3])
		}
	}
}

func TestCompressOnDecompressOnlyContext(t *testing.T) {
	cfg, err := bcn.ConfigInit(bcn.FormatBC1, bcn.QualityMedium, bcn.FlagDecompressOnly)
	if err != nil {
		t.Fatalf("%v", err)
	}
	ctx, err := bcn.ContextAlloc(&cfg, 1)
	if err != nil {
		t.Fatalf("%v", err)
	}
	img := &bcn.Image{DimX: 4, DimY: 4, DataType: bcn.TypeU8, DataU8: make([]byte, 64)}
	if err := ctx.CompressImage(img, make([]byte, 8), 0); bcn.ErrorCodeOf(err) != bcn.ErrBadContext {
		t.Fatalf("decompress-only context compressed: %v", err)
	}
}

func TestFormatProperties(t *testing.T) {
	if bcn.FormatBC1.BlockBytes() != 8 || bcn.FormatBC7.BlockBytes() != 16 {
		t.Fatalf("block sizes: %d, %d", bcn.FormatBC1.BlockBytes(), bcn.FormatBC7.BlockBytes())
	}
	if !bcn.FormatBC6H.HDR() || bcn.FormatBC3.HDR() {
		t.Fatalf("HDR flags wrong")
	}
	if bcn.FormatBC6H.String() != "BC6H" {
		t.Fatalf("String: %s", bcn.FormatBC6H.String())
	}
}
