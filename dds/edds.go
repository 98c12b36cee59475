package dds

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/GabrielMajeri/block-compression-go/bcn"
)

// EDDS is the Enfusion engine's DDS variant: a normal DDS header followed
// by a block table (one magic+size entry per mip) and the block bodies,
// smallest mip first. Bodies are either raw ("COPY") or an LZ4 chunk
// stream ("LZ4 ") prefixed with the uncompressed size.

const (
	blockMagicCopy = "COPY"
	blockMagicLZ4  = "LZ4 "

	// chunkSize is the fixed chunk granularity of EDDS LZ4 streams.
	chunkSize = 64 * 1024

	// copyThreshold skips compression for tiny mips where the chunk
	// framing costs more than it saves.
	copyThreshold = 1024
)

type eddsBlock struct {
	magic            string
	size             int32
	uncompressedSize int32
	data             []byte
}

// DecodeEDDS parses an EDDS stream into a Texture.
func DecodeEDDS(r io.Reader) (*Texture, error) {
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

	table, err := readBlockTable(r, mipCount)
	if err != nil {
		return nil, err
	}

	t := &Texture{
		Format:  format,
		Signed:  signed,
		Width:   int(h.Width),
		Height:  int(h.Height),
		MipMaps: make([][]byte, mipCount),
	}

	// Bodies are stored smallest mip first; table entry i holds mip
	// level mipCount-1-i.
	for i := 0; i < mipCount; i++ {
		level := mipCount - 1 - i
		body := make([]byte, table[i].size)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, fmt.Errorf("%w: mip %d: %v", ErrBlockRead, level, err)
		}

		mw := mipDimension(t.Width, level)
		mh := mipDimension(t.Height, level)
		want, err := bcn.EncodedSize(format, mw, mh)
		if err != nil {
			return nil, err
		}

		block := eddsBlock{magic: table[i].magic, size: table[i].size, data: body}
		raw, err := decompressBlock(&block, want)
		if err != nil {
			return nil, fmt.Errorf("mip %d: %w", level, err)
		}
		t.MipMaps[level] = raw
	}

	return t, nil
}

// EncodeEDDS writes a Texture as an EDDS stream, LZ4-compressing each mip
// that benefits from it.
func EncodeEDDS(w io.Writer, t *Texture) error {
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

	blocks := make([]*eddsBlock, 0, len(t.MipMaps))
	for i := len(t.MipMaps) - 1; i >= 0; i-- {
		b, err := compressBlock(t.MipMaps[i])
		if err != nil {
			return err
		}
		blocks = append(blocks, b)
	}

	for _, b := range blocks {
		if _, err := io.WriteString(w, b.magic); err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
		if err := binary.Write(w, binary.LittleEndian, b.size); err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
	}
	for _, b := range blocks {
		if b.magic == blockMagicLZ4 {
			if err := binary.Write(w, binary.LittleEndian, b.uncompressedSize); err != nil {
				return fmt.Errorf("%w: %v", ErrWrite, err)
			}
		}
		if _, err := w.Write(b.data); err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
	}
	return nil
}

type blockTableEntry struct {
	magic string
	size  int32
}

func readBlockTable(r io.Reader, mipCount int) ([]blockTableEntry, error) {
	table := make([]blockTableEntry, 0, mipCount)
	for i := 0; i < mipCount; i++ {
		var m [4]byte
		if _, err := io.ReadFull(r, m[:]); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrBlockTable, i, err)
		}
		magic := string(m[:])
		if magic != blockMagicCopy && magic != blockMagicLZ4 {
			return nil, fmt.Errorf("%w: entry %d: %q", ErrBlockMagic, i, magic)
		}

		var size int32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrBlockTable, i, err)
		}
		if size < 0 {
			return nil, fmt.Errorf("%w: entry %d: size %d", ErrBlockTable, i, size)
		}
		table = append(table, blockTableEntry{magic: magic, size: size})
	}
	return table, nil
}

// compressBlock turns one mip's raw data into a COPY or LZ4 block,
// falling back to COPY whenever compression does not pay.
func compressBlock(data []byte) (*eddsBlock, error) {
	copyBlock := &eddsBlock{magic: blockMagicCopy, size: int32(len(data)), data: data}
	if len(data) < copyThreshold {
		return copyBlock, nil
	}

	var stream bytes.Buffer
	buf := make([]byte, lz4.CompressBlockBound(chunkSize))

	for off := 0; off < len(data); off += chunkSize {
		end := off + chunkSize
		if end > len(data) {
			end = len(data)
		}
		src := data[off:end]
		last := end == len(data)

		n, err := lz4.CompressBlockHC(src, buf, 0, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLZ4Compress, err)
		}
		// Incompressible chunk: store the whole mip raw rather than
		// framing expansion.
		if n == 0 || n >= len(src) {
			return copyBlock, nil
		}

		stream.WriteByte(byte(n))
		stream.WriteByte(byte(n >> 8))
		stream.WriteByte(byte(n >> 16))
		if last {
			stream.WriteByte(0x80)
		} else {
			stream.WriteByte(0x00)
		}
		stream.Write(buf[:n])
	}

	payload := stream.Bytes()
	// Block size counts the 4-byte uncompressed-size prefix.
	if 4+len(payload) >= len(data) {
		return copyBlock, nil
	}
	return &eddsBlock{
		magic:            blockMagicLZ4,
		size:             int32(4 + len(payload)),
		uncompressedSize: int32(len(data)),
		data:             payload,
	}, nil
}

// decompressBlock inflates a block body back into raw mip data.
func decompressBlock(block *eddsBlock, want int) ([]byte, error) {
	if block.magic == blockMagicCopy {
		if len(block.data) != want {
			return nil, fmt.Errorf("%w: expected %d, got %d", ErrDecodedSize, want, len(block.data))
		}
		out := make([]byte, want)
		copy(out, block.data)
		return out, nil
	}
	if block.magic != blockMagicLZ4 {
		return nil, fmt.Errorf("%w: %q", ErrBlockMagic, block.magic)
	}

	data := block.data
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: %d byte body", ErrChunkStream, len(data))
	}
	target := int(binary.LittleEndian.Uint32(data[:4]))
	data = data[4:]
	if target != want {
		return nil, fmt.Errorf("%w: header says %d, mip needs %d", ErrDecodedSize, target, want)
	}

	out := make([]byte, target)
	outIdx := 0
	r := bytes.NewReader(data)

	// Chunks share a sliding dictionary across the stream.
	dict := make([]byte, 0, chunkSize)

	for {
		var hdr [4]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, fmt.Errorf("%w: chunk header: %v", ErrChunkStream, err)
		}
		cSize := int(hdr[0]) | int(hdr[1])<<8 | int(hdr[2])<<16
		flags := hdr[3]
		if flags&^0x80 != 0 {
			return nil, fmt.Errorf("%w: flags 0x%02x", ErrChunkStream, flags)
		}
		if cSize <= 0 || cSize > r.Len() {
			return nil, fmt.Errorf("%w: chunk size %d, remaining %d", ErrChunkStream, cSize, r.Len())
		}

		compressed := make([]byte, cSize)
		if _, err := io.ReadFull(r, compressed); err != nil {
			return nil, fmt.Errorf("%w: chunk data: %v", ErrChunkStream, err)
		}

		remaining := target - outIdx
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: chunk past end of mip", ErrChunkStream)
		}
		wantChunk := chunkSize
		if wantChunk > remaining {
			wantChunk = remaining
		}

		n, err := lz4.UncompressBlockWithDict(compressed, out[outIdx:outIdx+wantChunk], dict)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLZ4Decode, err)
		}
		outIdx += n

		decoded := out[outIdx-n : outIdx]
		if len(decoded) >= chunkSize {
			dict = append(dict[:0], decoded[len(decoded)-chunkSize:]...)
		} else {
			keep := chunkSize - len(decoded)
			if len(dict) > keep {
				dict = append(dict[:0], dict[len(dict)-keep:]...)
			}
			dict = append(dict, decoded...)
		}

		if flags&0x80 != 0 {
			break
		}
	}

	if outIdx != target {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDecodedSize, target, outIdx)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrChunkStream, r.Len())
	}
	return out, nil
}
