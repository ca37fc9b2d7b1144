package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/kettek/apng"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var _ = fmt.Print

// Format is an image file format
type Format int

const (
	UNKNOWN Format = iota
	JPEG
	PNG
	GIF
	TIFF
	WEBP
	BMP
)

var format_exts = map[string]Format{
	"jpg":  JPEG,
	"jpeg": JPEG,
	"png":  PNG,
	"gif":  GIF,
	"tif":  TIFF,
	"tiff": TIFF,
	"webp": WEBP,
	"bmp":  BMP,
}

// names the image package reports for registered decoders, apng
// registers itself for PNG signatures
var decoder_names = map[string]Format{
	"jpeg": JPEG,
	"png":  PNG,
	"apng": PNG,
	"gif":  GIF,
	"tiff": TIFF,
	"webp": WEBP,
	"bmp":  BMP,
}

var format_names = map[Format]string{
	JPEG: "JPEG",
	PNG:  "PNG",
	GIF:  "GIF",
	TIFF: "TIFF",
	WEBP: "WEBP",
	BMP:  "BMP",
}

func (f Format) String() string {
	if n, ok := format_names[f]; ok {
		return n
	}
	return "UNKNOWN"
}

var ErrUnsupportedFormat = errors.New("unsupported image format")

func format_from_filename(filename string) (Format, error) {
	if f, ok := format_exts[strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))]; ok {
		return f, nil
	}
	return UNKNOWN, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
}

// Image is a decoded file. Still images have a single default frame,
// animated PNGs keep all their frames with timing and disposal.
type Image struct {
	Format    Format
	Frames    []apng.Frame
	LoopCount uint
}

func (i *Image) IsAnimated() bool { return len(i.Frames) > 1 }

func decode(data []byte) (*Image, error) {
	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	f, ok := decoder_names[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	ans := &Image{Format: f}
	if ans.Format == PNG {
		a, err := apng.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		ans.Frames, ans.LoopCount = a.Frames, a.LoopCount
		return ans, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	ans.Frames = []apng.Frame{{Image: img, IsDefault: true}}
	return ans, nil
}

func as_nrgba(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	ans := image.NewNRGBA(b)
	draw.Draw(ans, b, img, b.Min, draw.Src)
	return ans
}

// encode writes the first frame of img in format, or every frame when
// img is animated and format is PNG
func encode(w io.Writer, img *Image, format Format, jpeg_quality int) error {
	if len(img.Frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}
	first := img.Frames[0].Image
	switch format {
	case JPEG:
		return jpeg.Encode(w, first, &jpeg.Options{Quality: jpeg_quality})
	case PNG:
		if img.IsAnimated() {
			// all frames share the colour type of the PNG header
			frames := make([]apng.Frame, len(img.Frames))
			for i, f := range img.Frames {
				frames[i] = f
				frames[i].Image = as_nrgba(f.Image)
			}
			return apng.Encode(w, apng.APNG{Frames: frames, LoopCount: img.LoopCount})
		}
		return png.Encode(w, first)
	case GIF:
		return gif.Encode(w, first, &gif.Options{NumColors: 256})
	case TIFF:
		return tiff.Encode(w, first, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case BMP:
		return bmp.Encode(w, first)
	}
	return fmt.Errorf("%w: cannot write %s", ErrUnsupportedFormat, format)
}
