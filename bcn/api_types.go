package bcn

import (
	"sync"
	"sync/atomic"
)

// Flags is a bitset of encoder/decoder options.
type Flags uint32

const (
	// FlagOpaqueHint promises every input texel is fully opaque, letting
	// BC1 skip its transparency scan and BC7 prune alpha-capable modes.
	FlagOpaqueHint Flags = 1 << 0

	// FlagDecompressOnly marks a context that will never compress.
	FlagDecompressOnly Flags = 1 << 1

	FlagAll Flags = (1 << 2) - 1
)

// DataType is a component storage type for Image buffers.
type DataType uint8

const (
	TypeU8 DataType = iota
	TypeF16
	TypeF32
)

// Named quality levels for ConfigInit. Any value in 0..100 is accepted;
// tuning parameters interpolate between the preset rows.
const (
	QualityFastest    float32 = 0
	QualityFast       float32 = 25
	QualityMedium     float32 = 50
	QualityThorough   float32 = 75
	QualityExhaustive float32 = 100
)

// Config carries the validated parameters of a codec context.
type Config struct {
	Format Format
	Flags  Flags

	// Signed selects the signed BC6H profile; ignored for other formats.
	Signed bool

	TuneRefinementLimit         uint32
	TunePartitionIndexLimit     uint32
	TunePartitionCandidateLimit uint32

	ProgressCallback func(progress float32)
}

// Image is a tightly-packed 2D RGBA image. Exactly one data slice is used,
// selected by DataType: DataU8 holds RGBA8, DataF16 holds RGBA half bits,
// DataF32 holds RGBA floats.
type Image struct {
	DimX     int
	DimY     int
	DataType DataType

	DataU8  []byte
	DataF16 []uint16
	DataF32 []float32
}

type contextState uint32

const (
	ctxIdle contextState = iota
	ctxCompressActive
	ctxDecompressActive
)

// Context is a reusable codec context.
//
// It runs one compress or decompress operation at a time. For
// multi-threaded use, callers create N goroutines and call
// CompressImage/DecompressImage once per worker with a unique thread
// index; the workers share one dynamically scheduled block queue.
type Context struct {
	cfg         Config
	threadCount int

	state atomic.Uint32

	compress   opState
	decompress opState
}

type opState struct {
	needsReset atomic.Uint32

	// 0 idle, 1 initializing, 2 active
	initState atomic.Uint32
	workers   atomic.Int32

	// Workers that have joined this operation so far. The operation only
	// tears down once all threadCount workers have been through, so a
	// worker that finishes before a sibling has joined cannot retire the
	// operation under it.
	joined atomic.Uint32

	cancel atomic.Uint32

	// Task scheduling.
	totalBlocks atomic.Uint32
	nextBlock   atomic.Uint32
	doneBlocks  atomic.Uint32

	// Progress callback throttling.
	progressMu            sync.Mutex
	progressMinDiffBits   atomic.Uint32 // float32 bits
	progressLastValueBits atomic.Uint32 // float32 bits
}
