// Command bcnpack converts between regular images and block-compressed
// DDS/EDDS textures.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"strings"

	"github.com/GabrielMajeri/block-compression-go/bcn"
	"github.com/GabrielMajeri/block-compression-go/dds"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

func main() {
	var (
		inPath   string
		outPath  string
		format   string
		quality  string
		signed   bool
		edds     bool
		encode   bool
		decode   bool
		dumpInfo bool
	)
	flag.StringVar(&inPath, "in", "", "input file")
	flag.StringVar(&outPath, "out", "", "output file")
	flag.StringVar(&format, "format", "bc1", "block format: bc1|bc2|bc3|bc4|bc5|bc6h|bc7")
	flag.StringVar(&quality, "quality", "medium", "encode quality preset: fastest|fast|medium|thorough|exhaustive")
	flag.BoolVar(&signed, "signed", false, "use the signed BC6H profile")
	flag.BoolVar(&edds, "edds", false, "read/write the EDDS container instead of plain DDS")
	flag.BoolVar(&encode, "encode", false, "encode input image -> .dds")
	flag.BoolVar(&decode, "decode", false, "decode input .dds -> .png")
	flag.BoolVar(&dumpInfo, "info", false, "print texture info and exit")
	flag.Parse()

	if inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: bcnpack -in <input> [-out <output>] [-encode|-decode] [-format bc1]")
		os.Exit(2)
	}

	inData, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if dumpInfo {
		tex, err := decodeContainer(inData, edds)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		profile := ""
		if tex.Format == bcn.FormatBC6H {
			if tex.Signed {
				profile = " (signed)"
			} else {
				profile = " (unsigned)"
			}
		}
		fmt.Printf("%s%s %dx%d, %d mip level(s)\n", tex.Format, profile, tex.Width, tex.Height, tex.MipCount())
		return
	}

	if encode == decode {
		fmt.Fprintln(os.Stderr, "specify exactly one of -encode or -decode")
		os.Exit(2)
	}
	if outPath == "" {
		fmt.Fprintln(os.Stderr, "missing -out")
		os.Exit(2)
	}

	formatVal, err := parseFormat(format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	qualityVal, err := parseQuality(quality)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if encode {
		img, _, err := image.Decode(bytes.NewReader(inData))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		rgba := image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
		w := rgba.Rect.Dx()
		h := rgba.Rect.Dy()

		var blocks []byte
		if formatVal == bcn.FormatBC6H {
			// LDR input into an HDR format: treat 0..255 as 0..1.
			pix := make([]float32, w*h*4)
			for i := range rgba.Pix {
				pix[i] = float32(rgba.Pix[i]) / 255
			}
			blocks, err = bcn.EncodeRGBAF32(pix, w, h, signed, qualityVal)
		} else {
			blocks, err = bcn.EncodeRGBA8WithQuality(rgba.Pix, w, h, formatVal, qualityVal)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		tex := &dds.Texture{
			Format:  formatVal,
			Signed:  signed && formatVal == bcn.FormatBC6H,
			Width:   w,
			Height:  h,
			MipMaps: [][]byte{blocks},
		}

		var out bytes.Buffer
		if edds {
			err = dds.EncodeEDDS(&out, tex)
		} else {
			err = dds.Encode(&out, tex)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := os.WriteFile(outPath, out.Bytes(), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	// decode
	tex, err := decodeContainer(inData, edds)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var pix []byte
	if tex.Format == bcn.FormatBC6H {
		fpix, err := bcn.DecodeRGBAF32(tex.MipMaps[0], tex.Width, tex.Height, tex.Signed)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		pix = make([]byte, tex.Width*tex.Height*4)
		for i, v := range fpix {
			if !(v >= 0) {
				v = 0
			} else if v > 1 {
				v = 1
			}
			pix[i] = uint8(v*255 + 0.5)
		}
	} else {
		pix, err = bcn.DecodeRGBA8(tex.MipMaps[0], tex.Width, tex.Height, tex.Format)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	img := &image.RGBA{
		Pix:    pix,
		Stride: tex.Width * 4,
		Rect:   image.Rect(0, 0, tex.Width, tex.Height),
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func decodeContainer(data []byte, edds bool) (*dds.Texture, error) {
	if edds {
		return dds.DecodeEDDS(bytes.NewReader(data))
	}
	return dds.Decode(bytes.NewReader(data))
}

func parseFormat(s string) (bcn.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bc1", "dxt1":
		return bcn.FormatBC1, nil
	case "bc2", "dxt3":
		return bcn.FormatBC2, nil
	case "bc3", "dxt5":
		return bcn.FormatBC3, nil
	case "bc4", "ati1":
		return bcn.FormatBC4, nil
	case "bc5", "ati2":
		return bcn.FormatBC5, nil
	case "bc6h", "bc6":
		return bcn.FormatBC6H, nil
	case "bc7":
		return bcn.FormatBC7, nil
	default:
		return 0, fmt.Errorf("invalid -format %q (want bc1|bc2|bc3|bc4|bc5|bc6h|bc7)", s)
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
		return 0, fmt.Errorf("invalid -quality %q (want fastest|fast|medium|thorough|exhaustive)", s)
	}
}
