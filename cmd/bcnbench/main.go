// Command bcnbench measures block compression and decompression
// throughput on synthetic images.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/GabrielMajeri/block-compression-go/bcn"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "encode":
		encodeCmd(os.Args[2:])
	case "decode":
		decodeCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  bcnbench encode -w W -h H -format bc1|bc2|bc3|bc4|bc5|bc6h|bc7 [-quality fastest|fast|medium|thorough|exhaustive] [-iters N] [-checksum fnv|none]")
	fmt.Fprintln(os.Stderr, "  bcnbench decode -w W -h H -format bc1|bc2|bc3|bc4|bc5|bc6h|bc7 [-iters N] [-checksum fnv|none]")
}

func encodeCmd(args []string) {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	var (
		width       int
		height      int
		format      string
		quality     string
		signed      bool
		iters       int
		checksumOpt string
		cpuprofile  string
	)
	fs.IntVar(&width, "w", 256, "width")
	fs.IntVar(&height, "h", 256, "height")
	fs.StringVar(&format, "format", "bc1", "block format")
	fs.StringVar(&quality, "quality", "medium", "quality preset")
	fs.BoolVar(&signed, "signed", false, "signed BC6H profile")
	fs.IntVar(&iters, "iters", 20, "iterations")
	fs.StringVar(&checksumOpt, "checksum", "fnv", "checksum: fnv|none")
	fs.StringVar(&cpuprofile, "cpuprofile", "", "optional CPU profile output path")
	_ = fs.Parse(args)

	f, q := parseCommon(width, height, format, quality, iters)
	stopProfile := maybeStartProfile(cpuprofile)
	defer stopProfile()

	doChecksum := strings.ToLower(strings.TrimSpace(checksumOpt)) != "none"
	var checksum uint64

	start := time.Now()
	if f == bcn.FormatBC6H {
		pix := fillPatternRGBAF32(width, height)
		for i := 0; i < iters; i++ {
			out, err := bcn.EncodeRGBAF32(pix, width, height, signed, q)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			if doChecksum {
				checksum = fnv1a64(checksum, out)
			}
		}
	} else {
		pix := fillPatternRGBA8(width, height)
		for i := 0; i < iters; i++ {
			out, err := bcn.EncodeRGBA8WithQuality(pix, width, height, f, q)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			if doChecksum {
				checksum = fnv1a64(checksum, out)
			}
		}
	}
	report("encode", format, quality, width, height, iters, time.Since(start), checksum, doChecksum)
}

func decodeCmd(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	var (
		width       int
		height      int
		format      string
		signed      bool
		iters       int
		checksumOpt string
		cpuprofile  string
	)
	fs.IntVar(&width, "w", 256, "width")
	fs.IntVar(&height, "h", 256, "height")
	fs.StringVar(&format, "format", "bc1", "block format")
	fs.BoolVar(&signed, "signed", false, "signed BC6H profile")
	fs.IntVar(&iters, "iters", 200, "iterations")
	fs.StringVar(&checksumOpt, "checksum", "fnv", "checksum: fnv|none")
	fs.StringVar(&cpuprofile, "cpuprofile", "", "optional CPU profile output path")
	_ = fs.Parse(args)

	f, _ := parseCommon(width, height, format, "medium", iters)

	// Build a representative compressed stream first.
	var data []byte
	var err error
	if f == bcn.FormatBC6H {
		data, err = bcn.EncodeRGBAF32(fillPatternRGBAF32(width, height), width, height, signed, bcn.QualityFast)
	} else {
		data, err = bcn.EncodeRGBA8WithQuality(fillPatternRGBA8(width, height), width, height, f, bcn.QualityFast)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	stopProfile := maybeStartProfile(cpuprofile)
	defer stopProfile()

	doChecksum := strings.ToLower(strings.TrimSpace(checksumOpt)) != "none"
	var checksum uint64

	start := time.Now()
	for i := 0; i < iters; i++ {
		if f == bcn.FormatBC6H {
			pix, err := bcn.DecodeRGBAF16(data, width, height, signed)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			if doChecksum {
				checksum = fnv1a64U16(checksum, pix)
			}
		} else {
			pix, err := bcn.DecodeRGBA8(data, width, height, f)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			if doChecksum {
				checksum = fnv1a64(checksum, pix)
			}
		}
	}
	report("decode", format, "-", width, height, iters, time.Since(start), checksum, doChecksum)
}

func parseCommon(width, height int, format, quality string, iters int) (bcn.Format, float32) {
	if width <= 0 || height <= 0 {
		fmt.Fprintln(os.Stderr, "invalid dimensions")
		os.Exit(2)
	}
	if iters <= 0 {
		fmt.Fprintln(os.Stderr, "iters must be > 0")
		os.Exit(2)
	}
	f, err := parseFormat(format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	q, err := parseQuality(quality)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return f, q
}

func maybeStartProfile(path string) func() {
	if path == "" {
		return func() {}
	}
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return func() {
		pprof.StopCPUProfile()
		_ = f.Close()
	}
}

func report(mode, format, quality string, width, height, iters int, dur time.Duration, checksum uint64, doChecksum bool) {
	texels := float64(width*height) * float64(iters)
	mpixPerS := texels / dur.Seconds() / 1e6

	checksumStr := fmtChecksum(checksum)
	if !doChecksum {
		checksumStr = "none"
	}
	fmt.Printf("RESULT mode=%s format=%s quality=%s size=%dx%d iters=%d seconds=%.6f mpix/s=%.3f checksum=%s\n",
		mode, format, quality, width, height, iters, dur.Seconds(), mpixPerS, checksumStr)
}

func parseFormat(s string) (bcn.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bc1":
		return bcn.FormatBC1, nil
	case "bc2":
		return bcn.FormatBC2, nil
	case "bc3":
		return bcn.FormatBC3, nil
	case "bc4":
		return bcn.FormatBC4, nil
	case "bc5":
		return bcn.FormatBC5, nil
	case "bc6h", "bc6":
		return bcn.FormatBC6H, nil
	case "bc7":
		return bcn.FormatBC7, nil
	default:
		return 0, fmt.Errorf("invalid -format %q", s)
	}
}

func parseQuality(s string) (float32, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fastest":
		return bcn.QualityFastest, nil
	case "fast":
		return bcn.QualityFast, nil
	case "medium":
		return bcn.QualityMedium, nil
	case "thorough":
		return bcn.QualityThorough, nil
	case "exhaustive":
		return bcn.QualityExhaustive, nil
	default:
		return 0, fmt.Errorf("invalid -quality %q", s)
	}
}

func fillPatternRGBA8(width, height int) []byte {
	pix := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := (y*width + x) * 4
			pix[off+0] = uint8(x*3 + y*5)
			pix[off+1] = uint8(x*11 + y*13)
			pix[off+2] = uint8(x ^ y)
			pix[off+3] = 255 - uint8((x*5+y*7)&0xFF)
		}
	}
	return pix
}

func fillPatternRGBAF32(width, height int) []float32 {
	pix := make([]float32, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := (y*width + x) * 4
			pix[off+0] = float32(x%64) / 8
			pix[off+1] = float32(y%64) / 16
			pix[off+2] = float32((x+y)%128) / 32
			pix[off+3] = 1
		}
	}
	return pix
}

func fnv1a64(seed uint64, data []byte) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	h := seed
	if h == 0 {
		h = offset64
	}
	for _, b := range data {
		h ^= uint64(b)
		h *= prime64
	}
	return h
}

func fnv1a64U16(seed uint64, data []uint16) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	h := seed
	if h == 0 {
		h = offset64
	}
	for _, v := range data {
		h ^= uint64(byte(v))
		h *= prime64
		h ^= uint64(byte(v >> 8))
		h *= prime64
	}
	return h
}

func fmtChecksum(v uint64) string {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[7-i] = byte(v >> uint(i*8))
	}
	return hex.EncodeToString(b[:])
}
