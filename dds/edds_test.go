package dds_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/GabrielMajeri/block-compression-go/bcn"
	"github.com/GabrielMajeri/block-compression-go/dds"
)

// compressibleTexture fills mips with runs of repeating bytes so the LZ4
// path actually engages on the larger levels.
func compressibleTexture(format bcn.Format, width, height, mips int) *dds.Texture {
	t := &dds.Texture{Format: format, Width: width, Height: height}
	for level := 0; level < mips; level++ {
		mw := width >> uint(level)
		if mw < 1 {
			mw = 1
		}
		mh := height >> uint(level)
		if mh < 1 {
			mh = 1
		}
		size, err := bcn.EncodedSize(format, mw, mh)
		if err != nil {
			panic(err)
		}
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(i / 64)
		}
		t.MipMaps = append(t.MipMaps, data)
	}
	return t
}

func TestEDDSRoundTrip(t *testing.T) {
	tex := compressibleTexture(bcn.FormatBC1, 64, 64, 3)

	var buf bytes.Buffer
	if err := dds.EncodeEDDS(&buf, tex); err != nil {
		t.Fatalf("%v", err)
	}

	got, err := dds.DecodeEDDS(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if got.Format != tex.Format || got.Width != tex.Width || got.Height != tex.Height {
		t.Fatalf("header mismatch: %v %dx%d", got.Format, got.Width, got.Height)
	}
	if got.MipCount() != tex.MipCount() {
		t.Fatalf("mip count %d, want %d", got.MipCount(), tex.MipCount())
	}
	for level := range tex.MipMaps {
		if !bytes.Equal(got.MipMaps[level], tex.MipMaps[level]) {
			t.Fatalf("mip %d data differs", level)
		}
	}

	// Repetitive data must actually have been compressed.
	rawSize := 0
	for _, mip := range tex.MipMaps {
		rawSize += len(mip)
	}
	if buf.Len() >= 128+rawSize {
		t.Fatalf("stream %d bytes for %d raw, nothing compressed", buf.Len(), rawSize)
	}
}

func TestEDDSSmallMipUsesCopy(t *testing.T) {
	tex := compressibleTexture(bcn.FormatBC1, 4, 4, 1)

	var buf bytes.Buffer
	if err := dds.EncodeEDDS(&buf, tex); err != nil {
		t.Fatalf("%v", err)
	}

	// Block table begins right after the 128-byte magic+header.
	raw := buf.Bytes()
	if string(raw[128:132]) != "COPY" {
		t.Fatalf("tiny mip block magic %q", raw[128:132])
	}

	got, err := dds.DecodeEDDS(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !bytes.Equal(got.MipMaps[0], tex.MipMaps[0]) {
		t.Fatalf("mip data differs")
	}
}

func TestEDDSIncompressibleData(t *testing.T) {
	tex := &dds.Texture{Format: bcn.FormatBC3, Width: 32, Height: 32}
	size, _ := bcn.EncodedSize(bcn.FormatBC3, 32, 32)
	data := make([]byte, size)
	// Cheap PRNG fill; LZ4 finds nothing and the encoder must fall back
	// to a raw copy without corrupting the stream.
	state := uint32(0x12345678)
	for i := range data {
		state = state*1664525 + 1013904223
		data[i] = byte(state >> 24)
	}
	tex.MipMaps = [][]byte{data}

	var buf bytes.Buffer
	if err := dds.EncodeEDDS(&buf, tex); err != nil {
		t.Fatalf("%v", err)
	}
	got, err := dds.DecodeEDDS(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !bytes.Equal(got.MipMaps[0], data) {
		t.Fatalf("mip data differs")
	}
}

func TestEDDSLargeMipMultiChunk(t *testing.T) {
	// 512x512 BC1 is 128 KiB raw, spanning multiple 64 KiB LZ4 chunks
	// that share a sliding dictionary.
	tex := compressibleTexture(bcn.FormatBC1, 512, 512, 1)

	var buf bytes.Buffer
	if err := dds.EncodeEDDS(&buf, tex); err != nil {
		t.Fatalf("%v", err)
	}
	got, err := dds.DecodeEDDS(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !bytes.Equal(got.MipMaps[0], tex.MipMaps[0]) {
		t.Fatalf("mip data differs")
	}
}

func TestEDDSRejectsBadBlockMagic(t *testing.T) {
	tex := compressibleTexture(bcn.FormatBC1, 4, 4, 1)

	var buf bytes.Buffer
	if err := dds.EncodeEDDS(&buf, tex); err != nil {
		t.Fatalf("%v", err)
	}
	raw := buf.Bytes()
	copy(raw[128:132], "XXXX")

	_, err := dds.DecodeEDDS(bytes.NewReader(raw))
	if !errors.Is(err, dds.ErrBlockMagic) {
		t.Fatalf("got %v", err)
	}
}

func TestEDDSBC6HSignedRoundTrip(t *testing.T) {
	tex := compressibleTexture(bcn.FormatBC6H, 16, 16, 1)
	tex.Signed = true

	var buf bytes.Buffer
	if err := dds.EncodeEDDS(&buf, tex); err != nil {
		t.Fatalf("%v", err)
	}
	got, err := dds.DecodeEDDS(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if got.Format != bcn.FormatBC6H || !got.Signed {
		t.Fatalf("decoded %v signed=%v", got.Format, got.Signed)
	}
	if !bytes.Equal(got.MipMaps[0], tex.MipMaps[0]) {
		t.Fatalf("mip data differs")
	}
}
