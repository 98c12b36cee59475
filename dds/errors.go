package dds

import "errors"

var (
	// ErrBadMagic indicates the stream does not start with "DDS ".
	ErrBadMagic = errors.New("bad DDS magic")
	// ErrBadHeader indicates a malformed DDS header.
	ErrBadHeader = errors.New("bad DDS header")
	// ErrHeaderRead indicates the DDS header could not be read.
	ErrHeaderRead = errors.New("reading DDS header failed")
	// ErrDX10Read indicates the DX10 extension header could not be read.
	ErrDX10Read = errors.New("reading DX10 header failed")
	// ErrUnknownFormat indicates an unsupported pixel format.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrDataTruncated indicates the payload is shorter than the header promises.
	ErrDataTruncated = errors.New("texture data truncated")
	// ErrMipSizeMismatch indicates a mip level with the wrong byte length.
	ErrMipSizeMismatch = errors.New("mip level size mismatch")
	// ErrEmptyTexture indicates a texture with no mip data.
	ErrEmptyTexture = errors.New("empty texture")
	// ErrWrite indicates a write to the output stream failed.
	ErrWrite = errors.New("write failed")

	// ErrBlockMagic indicates an unknown EDDS block magic.
	ErrBlockMagic = errors.New("unknown block magic")
	// ErrBlockTable indicates a malformed EDDS block table.
	ErrBlockTable = errors.New("bad block table")
	// ErrBlockRead indicates an EDDS block body could not be read.
	ErrBlockRead = errors.New("reading block body failed")
	// ErrChunkStream indicates a malformed LZ4 chunk stream.
	ErrChunkStream = errors.New("bad LZ4 chunk stream")
	// ErrLZ4Compress indicates LZ4 compression failed.
	ErrLZ4Compress = errors.New("LZ4 compression failed")
	// ErrLZ4Decode indicates LZ4 decompression failed.
	ErrLZ4Decode = errors.New("LZ4 decode failed")
	// ErrDecodedSize indicates a block decoded to the wrong length.
	ErrDecodedSize = errors.New("LZ4 decoded size mismatch")
)
