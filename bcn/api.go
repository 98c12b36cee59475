package bcn

import (
	"math"
	"runtime"
)

// presetConfig is one row of the quality preset table. ConfigInit
// interpolates between neighboring rows for in-between quality values.
type presetConfig struct {
	quality                     float32
	tuneRefinementLimit         uint32
	tunePartitionIndexLimit     uint32
	tunePartitionCandidateLimit uint32
}

var presetConfigs = []presetConfig{
	{QualityFastest, 0, 4, 1},
	{QualityFast, 1, 16, 2},
	{QualityMedium, 2, 32, 4},
	{QualityThorough, 3, 64, 8},
	{QualityExhaustive, 4, 64, 16},
}

// ConfigInit populates a Config for a format at a given quality in 0..100.
func ConfigInit(format Format, quality float32, flags Flags) (Config, error) {
	if err := validateFormat(format); err != nil {
		return Config{}, err
	}
	if quality < 0 || quality > 100 || quality != quality {
		return Config{}, newError(ErrBadQuality, "bcn: invalid quality")
	}
	if flags&^FlagAll != 0 {
		return Config{}, newError(ErrBadFlags, "bcn: invalid flags")
	}

	cfg := Config{
		Format: format,
		Flags:  flags,
	}

	end := 0
	for end < len(presetConfigs) && presetConfigs[end].quality < quality {
		end++
	}
	start := 0
	if end > 0 {
		start = end - 1
	}
	if end >= len(presetConfigs) {
		end = len(presetConfigs) - 1
		start = end
	}

	if start == end {
		p := presetConfigs[start]
		cfg.TuneRefinementLimit = p.tuneRefinementLimit
		cfg.TunePartitionIndexLimit = p.tunePartitionIndexLimit
		cfg.TunePartitionCandidateLimit = p.tunePartitionCandidateLimit
		return cfg, nil
	}

	a := presetConfigs[start]
	b := presetConfigs[end]
	wtB := (quality - a.quality) / (b.quality - a.quality)
	wtA := 1 - wtB
	lerpi := func(av, bv uint32) uint32 {
		v := float32(av)*wtA + float32(bv)*wtB
		return uint32(int(v + 0.5))
	}
	cfg.TuneRefinementLimit = lerpi(a.tuneRefinementLimit, b.tuneRefinementLimit)
	cfg.TunePartitionIndexLimit = lerpi(a.tunePartitionIndexLimit, b.tunePartitionIndexLimit)
	cfg.TunePartitionCandidateLimit = lerpi(a.tunePartitionCandidateLimit, b.tunePartitionCandidateLimit)
	return cfg, nil
}

// ContextAlloc creates a reusable codec context from a config.
func ContextAlloc(cfg *Config, threadCount int) (*Context, error) {
	if cfg == nil {
		return nil, newError(ErrBadParam, "bcn: nil config")
	}
	if threadCount <= 0 {
		return nil, newError(ErrBadParam, "bcn: invalid thread count")
	}
	if err := validateFormat(cfg.Format); err != nil {
		return nil, err
	}
	if cfg.Flags&^FlagAll != 0 {
		return nil, newError(ErrBadFlags, "bcn: invalid flags")
	}

	cfgi := *cfg
	if cfgi.TunePartitionIndexLimit == 0 {
		cfgi.TunePartitionIndexLimit = 1
	}
	if cfgi.TunePartitionIndexLimit > 64 {
		cfgi.TunePartitionIndexLimit = 64
	}
	if cfgi.TunePartitionCandidateLimit == 0 {
		cfgi.TunePartitionCandidateLimit = 1
	}
	if cfgi.TuneRefinementLimit > 8 {
		cfgi.TuneRefinementLimit = 8
	}

	ctx := &Context{
		cfg:         cfgi,
		threadCount: threadCount,
	}
	ctx.state.Store(uint32(ctxIdle))
	return ctx, nil
}

func (c *Context) Close() error {
	// No external resources; kept for API symmetry.
	return nil
}

// CompressImage encodes img into out, which must hold at least
// EncodedSize(format, img.DimX, img.DimY) bytes. For multi-threaded
// operation every worker goroutine calls CompressImage with the same
// arguments and a unique threadIndex in [0, threadCount); blocks are
// handed out dynamically and the call returns when no work remains.
func (c *Context) CompressImage(img *Image, out []byte, threadIndex int) error {
	if c == nil {
		return newError(ErrBadContext, "bcn: nil context")
	}
	if img == nil {
		return newError(ErrBadParam, "bcn: nil image")
	}
	if c.cfg.Flags&FlagDecompressOnly != 0 {
		return newError(ErrBadContext, "bcn: context is decompress-only")
	}
	if threadIndex < 0 || threadIndex >= c.threadCount {
		return newError(ErrBadParam, "bcn: invalid thread index")
	}

	// Single-threaded contexts implicitly reset between images.
	if c.threadCount == 1 {
		_ = c.CompressReset()
	}

	inType, err := validateImageIn(img, c.cfg.Format)
	if err != nil {
		return err
	}

	blocksX := (img.DimX + BlockWidth - 1) / BlockWidth
	blocksY := (img.DimY + BlockHeight - 1) / BlockHeight
	totalBlocks := blocksX * blocksY
	blockBytes := c.cfg.Format.BlockBytes()
	if len(out) < totalBlocks*blockBytes {
		return newError(ErrBadParam, "bcn: output buffer too small")
	}

	if err := c.beginCompress(uint32(totalBlocks)); err != nil {
		return err
	}
	defer c.endCompress()

	tune7 := bc7Tuning{
		partitionLimit:      int(c.cfg.TunePartitionIndexLimit),
		partitionCandidates: int(c.cfg.TunePartitionCandidateLimit),
		refine:              int(c.cfg.TuneRefinementLimit),
		fastSkip:            c.cfg.TuneRefinementLimit < 4,
	}
	tune6 := bc6hTuning{
		partitionLimit: int(c.cfg.TunePartitionIndexLimit),
		refine:         int(c.cfg.TuneRefinementLimit),
	}
	refine := int(c.cfg.TuneRefinementLimit)

	var u8Texels [blockTexels * 4]byte
	var f16Texels [blockTexels * 4]uint16

	total := int(c.compress.totalBlocks.Load())
	for {
		if c.compress.cancel.Load() != 0 {
			break
		}
		i := int(c.compress.nextBlock.Add(1) - 1)
		if i < 0 || i >= total {
			break
		}

		bx := i % blocksX
		by := i / blocksX
		x0 := bx * BlockWidth
		y0 := by * BlockHeight
		dst := out[i*blockBytes : (i+1)*blockBytes]

		if c.cfg.Format == FormatBC6H {
			extractBlockRGBAF16(img, inType, x0, y0, f16Texels[:])
			encodeBC6HBlock(f16Texels[:], c.cfg.Signed, &tune6, dst)
		} else {
			extractBlockRGBA8(img.DataU8, img.DimX, img.DimY, x0, y0, u8Texels[:])
			if c.cfg.Flags&FlagOpaqueHint != 0 {
				for t := 0; t < blockTexels; t++ {
					u8Texels[t*4+3] = 255
				}
			}
			switch c.cfg.Format {
			case FormatBC1:
				encodeBC1Block(u8Texels[:], refine, dst)
			case FormatBC2:
				encodeBC2Block(u8Texels[:], refine, dst)
			case FormatBC3:
				encodeBC3Block(u8Texels[:], refine, dst)
			case FormatBC4:
				encodeBC4FromRGBA(u8Texels[:], dst)
			case FormatBC5:
				encodeBC5Block(u8Texels[:], dst)
			case FormatBC7:
				encodeBC7Block(u8Texels[:], &tune7, dst)
			}
		}

		done := c.compress.doneBlocks.Add(1)
		c.maybeReportProgress(done, uint32(total), c.cfg.ProgressCallback)
	}

	return nil
}

func (c *Context) CompressReset() error {
	if c == nil {
		return newError(ErrBadContext, "bcn: nil context")
	}
	if c.compress.workers.Load() != 0 {
		return newError(ErrBadContext, "bcn: compress reset while compress active")
	}
	c.compress.needsReset.Store(0)
	c.compress.cancel.Store(0)
	c.compress.initState.Store(0)
	return nil
}

func (c *Context) CompressCancel() error {
	if c == nil {
		return newError(ErrBadContext, "bcn: nil context")
	}
	c.compress.cancel.Store(1)
	return nil
}

// DecompressImage decodes data into imgOut, whose DimX/DimY select the
// image size. data must be exactly EncodedSize(format, DimX, DimY) bytes;
// a length mismatch is the only data-dependent error, since every block
// bit pattern decodes to something.
func (c *Context) DecompressImage(data []byte, imgOut *Image, threadIndex int) error {
	if c == nil {
		return newError(ErrBadContext, "bcn: nil context")
	}
	if imgOut == nil {
		return newError(ErrBadParam, "bcn: nil output image")
	}
	if threadIndex < 0 || threadIndex >= c.threadCount {
		return newError(ErrBadParam, "bcn: invalid thread index")
	}

	if c.threadCount == 1 {
		_ = c.DecompressReset()
	}

	outType, err := validateImageOut(imgOut, c.cfg.Format)
	if err != nil {
		return err
	}

	blocksX := (imgOut.DimX + BlockWidth - 1) / BlockWidth
	blocksY := (imgOut.DimY + BlockHeight - 1) / BlockHeight
	totalBlocks := blocksX * blocksY
	blockBytes := c.cfg.Format.BlockBytes()
	if len(data) != totalBlocks*blockBytes {
		return newError(ErrSizeMismatch, "bcn: compressed data length does not match image size")
	}

	if err := c.beginDecompress(uint32(totalBlocks)); err != nil {
		return err
	}
	defer c.endDecompress()

	var u8Texels [blockTexels * 4]byte
	var f16Texels [blockTexels * 4]uint16

	total := int(c.decompress.totalBlocks.Load())
	for {
		i := int(c.decompress.nextBlock.Add(1) - 1)
		if i < 0 || i >= total {
			break
		}

		bx := i % blocksX
		by := i / blocksX
		x0 := bx * BlockWidth
		y0 := by * BlockHeight
		src := data[i*blockBytes : (i+1)*blockBytes]

		if c.cfg.Format == FormatBC6H {
			decodeBC6HBlock(src, c.cfg.Signed, f16Texels[:])
			storeBlockRGBAF16(imgOut, outType, x0, y0, f16Texels[:])
			continue
		}

		switch c.cfg.Format {
		case FormatBC1:
			decodeBC1Block(src, false, u8Texels[:])
		case FormatBC2:
			decodeBC2Block(src, u8Texels[:])
		case FormatBC3:
			decodeBC3Block(src, u8Texels[:])
		case FormatBC4:
			decodeBC4RGBA(src, u8Texels[:])
		case FormatBC5:
			decodeBC5Block(src, u8Texels[:])
		case FormatBC7:
			decodeBC7Block(src, u8Texels[:])
		}
		storeBlockRGBA8(imgOut.DataU8, imgOut.DimX, imgOut.DimY, x0, y0, u8Texels[:])
	}

	return nil
}

func (c *Context) DecompressReset() error {
	if c == nil {
		return newError(ErrBadContext, "bcn: nil context")
	}
	if c.decompress.workers.Load() != 0 {
		return newError(ErrBadContext, "bcn: decompress reset while decompress active")
	}
	c.decompress.needsReset.Store(0)
	c.decompress.initState.Store(0)
	return nil
}

// -----------------------------------------------------------------------------
// Job scheduling
// -----------------------------------------------------------------------------

func (c *Context) maybeReportProgress(done, total uint32, cb func(float32)) {
	if cb == nil || total == 0 {
		return
	}

	// Ensure the progress bar hits 100%.
	if done >= total {
		c.compress.progressMu.Lock()
		last := math.Float32frombits(c.compress.progressLastValueBits.Load())
		if last != 100.0 {
			cb(100.0)
			c.compress.progressLastValueBits.Store(math.Float32bits(100.0))
		}
		c.compress.progressMu.Unlock()
		return
	}

	minDiff := math.Float32frombits(c.compress.progressMinDiffBits.Load())
	last := math.Float32frombits(c.compress.progressLastValueBits.Load())
	thisValue := (float32(done) / float32(total)) * 100.0

	// Initial lockless test - have we progressed enough to emit?
	if (thisValue - last) <= minDiff {
		return
	}

	// Recheck under lock, because another thread might report first.
	c.compress.progressMu.Lock()
	last = math.Float32frombits(c.compress.progressLastValueBits.Load())
	if (thisValue - last) > minDiff {
		cb(thisValue)
		c.compress.progressLastValueBits.Store(math.Float32bits(thisValue))
	}
	c.compress.progressMu.Unlock()
}

func (c *Context) beginCompress(totalBlocks uint32) error {
	if c.compress.needsReset.Load() != 0 {
		return newError(ErrBadContext, "bcn: compress requires reset")
	}

	for {
		switch contextState(c.state.Load()) {
		case ctxIdle:
			if c.state.CompareAndSwap(uint32(ctxIdle), uint32(ctxCompressActive)) {
				// Acquired.
			} else {
				continue
			}
		case ctxCompressActive:
			// Join.
		default:
			return newError(ErrBadContext, "bcn: context busy")
		}
		break
	}

	for {
		st := c.compress.initState.Load()
		if st == 2 {
			break
		}
		if st == 0 && c.compress.initState.CompareAndSwap(0, 1) {
			c.compress.totalBlocks.Store(totalBlocks)
			c.compress.nextBlock.Store(0)
			c.compress.doneBlocks.Store(0)
			c.compress.joined.Store(0)
			c.compress.cancel.Store(0)

			// Report every 1% or 4096 blocks, whichever is larger.
			minDiff := float32(1.0)
			if totalBlocks != 0 {
				d := (4096.0 / float32(totalBlocks)) * 100.0
				if d > minDiff {
					minDiff = d
				}
			}
			c.compress.progressMinDiffBits.Store(math.Float32bits(minDiff))
			c.compress.progressLastValueBits.Store(math.Float32bits(0.0))

			c.compress.initState.Store(2)
			break
		}
		runtime.Gosched()
	}

	c.compress.joined.Add(1)
	c.compress.workers.Add(1)
	return nil
}

func (c *Context) endCompress() {
	if c.compress.workers.Add(-1) != 0 {
		return
	}

	// The worker count can drain to zero while sibling goroutines are
	// still on their way in; only the last of the threadCount workers
	// retires the operation.
	if c.compress.joined.Load() < uint32(c.threadCount) {
		return
	}

	if c.threadCount > 1 {
		c.compress.needsReset.Store(1)
	}

	c.compress.initState.Store(0)
	c.state.Store(uint32(ctxIdle))
}

func (c *Context) beginDecompress(totalBlocks uint32) error {
	if c.decompress.needsReset.Load() != 0 {
		return newError(ErrBadContext, "bcn: decompress requires reset")
	}

	for {
		switch contextState(c.state.Load()) {
		case ctxIdle:
			if c.state.CompareAndSwap(uint32(ctxIdle), uint32(ctxDecompressActive)) {
				// Acquired.
			} else {
				continue
			}
		case ctxDecompressActive:
			// Join.
		default:
			return newError(ErrBadContext, "bcn: context busy")
		}
		break
	}

	for {
		st := c.decompress.initState.Load()
		if st == 2 {
			break
		}
		if st == 0 && c.decompress.initState.CompareAndSwap(0, 1) {
			c.decompress.totalBlocks.Store(totalBlocks)
			c.decompress.nextBlock.Store(0)
			c.decompress.doneBlocks.Store(0)
			c.decompress.joined.Store(0)
			c.decompress.initState.Store(2)
			break
		}
		runtime.Gosched()
	}

	c.decompress.joined.Add(1)
	c.decompress.workers.Add(1)
	return nil
}

func (c *Context) endDecompress() {
	if c.decompress.workers.Add(-1) != 0 {
		return
	}

	if c.decompress.joined.Load() < uint32(c.threadCount) {
		return
	}

	if c.threadCount > 1 {
		c.decompress.needsReset.Store(1)
	}

	c.decompress.initState.Store(0)
	c.state.Store(uint32(ctxIdle))
}

// -----------------------------------------------------------------------------
// Image validation and block transfer
// -----------------------------------------------------------------------------

func validateImageIn(img *Image, format Format) (DataType, error) {
	if img.DimX <= 0 || img.DimY <= 0 {
		return 0, newError(ErrBadParam, "bcn: invalid image dimensions")
	}
	texels := img.DimX * img.DimY

	if format == FormatBC6H {
		switch img.DataType {
		case TypeF16:
			if len(img.DataF16) != texels*4 {
				return 0, newError(ErrBadParam, "bcn: invalid RGBA F16 buffer length")
			}
		case TypeF32:
			if len(img.DataF32) != texels*4 {
				return 0, newError(ErrBadParam, "bcn: invalid RGBA F32 buffer length")
			}
		default:
			return 0, newError(ErrBadParam, "bcn: BC6H input must be F16 or F32")
		}
		return img.DataType, nil
	}

	if img.DataType != TypeU8 {
		return 0, newError(ErrBadParam, "bcn: LDR input must be U8")
	}
	if len(img.DataU8) != texels*4 {
		return 0, newError(ErrBadParam, "bcn: invalid RGBA8 buffer length")
	}
	return TypeU8, nil
}

func validateImageOut(img *Image, format Format) (DataType, error) {
	if img.DimX <= 0 || img.DimY <= 0 {
		return 0, newError(ErrBadParam, "bcn: invalid image dimensions")
	}
	texels := img.DimX * img.DimY

	if format == FormatBC6H {
		switch img.DataType {
		case TypeF16:
			if len(img.DataF16) != texels*4 {
				return 0, newError(ErrBadParam, "bcn: invalid RGBA F16 buffer length")
			}
		case TypeF32:
			if len(img.DataF32) != texels*4 {
				return 0, newError(ErrBadParam, "bcn: invalid RGBA F32 buffer length")
			}
		default:
			return 0, newError(ErrBadParam, "bcn: BC6H output must be F16 or F32")
		}
		return img.DataType, nil
	}

	if img.DataType != TypeU8 {
		return 0, newError(ErrBadParam, "bcn: LDR output must be U8")
	}
	if len(img.DataU8) != texels*4 {
		return 0, newError(ErrBadParam, "bcn: invalid RGBA8 buffer length")
	}
	return TypeU8, nil
}

// extractBlockRGBA8 copies a 4x4 tile starting at (x0, y0) out of a
// row-major RGBA8 image, replicating edge texels for partial tiles so the
// padding never drags endpoints away from real content.
func extractBlockRGBA8(pix []byte, width, height, x0, y0 int, dst []byte) {
	for ty := 0; ty < BlockHeight; ty++ {
		sy := y0 + ty
		if sy >= height {
			sy = height - 1
		}
		for tx := 0; tx < BlockWidth; tx++ {
			sx := x0 + tx
			if sx >= width {
				sx = width - 1
			}
			src := (sy*width + sx) * 4
			d := (ty*BlockWidth + tx) * 4
			dst[d+0] = pix[src+0]
			dst[d+1] = pix[src+1]
			dst[d+2] = pix[src+2]
			dst[d+3] = pix[src+3]
		}
	}
}

// storeBlockRGBA8 writes a decoded 4x4 tile back, clipping texels that fall
// outside the image.
func storeBlockRGBA8(pix []byte, width, height, x0, y0 int, block []byte) {
	for ty := 0; ty < BlockHeight; ty++ {
		dy := y0 + ty
		if dy >= height {
			break
		}
		for tx := 0; tx < BlockWidth; tx++ {
			dx := x0 + tx
			if dx >= width {
				break
			}
			src := (ty*BlockWidth + tx) * 4
			d := (dy*width + dx) * 4
			pix[d+0] = block[src+0]
			pix[d+1] = block[src+1]
			pix[d+2] = block[src+2]
			pix[d+3] = block[src+3]
		}
	}
}

func extractBlockRGBAF16(img *Image, inType DataType, x0, y0 int, dst []uint16) {
	for ty := 0; ty < BlockHeight; ty++ {
		sy := y0 + ty
		if sy >= img.DimY {
			sy = img.DimY - 1
		}
		for tx := 0; tx < BlockWidth; tx++ {
			sx := x0 + tx
			if sx >= img.DimX {
				sx = img.DimX - 1
			}
			src := (sy*img.DimX + sx) * 4
			d := (ty*BlockWidth + tx) * 4
			if inType == TypeF16 {
				copy(dst[d:d+4], img.DataF16[src:src+4])
			} else {
				for ch := 0; ch < 4; ch++ {
					dst[d+ch] = float32ToHalf(img.DataF32[src+ch])
				}
			}
		}
	}
}

func storeBlockRGBAF16(img *Image, outType DataType, x0, y0 int, block []uint16) {
	for ty := 0; ty < BlockHeight; ty++ {
		dy := y0 + ty
		if dy >= img.DimY {
			break
		}
		for tx := 0; tx < BlockWidth; tx++ {
			dx := x0 + tx
			if dx >= img.DimX {
				break
			}
			src := (ty*BlockWidth + tx) * 4
			d := (dy*img.DimX + dx) * 4
			if outType == TypeF16 {
				copy(img.DataF16[d:d+4], block[src:src+4])
			} else {
				for ch := 0; ch < 4; ch++ {
					img.DataF32[d+ch] = halfToFloat32(block[src+ch])
				}
			}
		}
	}
}
