// Package convert applies colour transforms to image.Image values
package convert

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/kovidgoyal/go-parallel"
	"github.com/kovidgoyal/qcms"
	"github.com/kovidgoyal/qcms/icc"
)

var _ = fmt.Print

type packer func(dst []byte, c color.Color)

func nrgba(c color.Color) color.NRGBA { return color.NRGBAModel.Convert(c).(color.NRGBA) }

func gray_of(n color.NRGBA) uint8 {
	return color.GrayModel.Convert(color.NRGBA{n.R, n.G, n.B, 0xff}).(color.Gray).Y
}

var packers = [...]packer{
	qcms.RGB8: func(dst []byte, c color.Color) {
		n := nrgba(c)
		dst[0], dst[1], dst[2] = n.R, n.G, n.B
	},
	qcms.RGBA8: func(dst []byte, c color.Color) {
		n := nrgba(c)
		dst[0], dst[1], dst[2], dst[3] = n.R, n.G, n.B, n.A
	},
	qcms.BGRA8: func(dst []byte, c color.Color) {
		n := nrgba(c)
		dst[0], dst[1], dst[2], dst[3] = n.B, n.G, n.R, n.A
	},
	qcms.Gray8: func(dst []byte, c color.Color) {
		dst[0] = gray_of(nrgba(c))
	},
	qcms.GrayA8: func(dst []byte, c color.Color) {
		n := nrgba(c)
		dst[0], dst[1] = gray_of(n), n.A
	},
	qcms.CMYK8: func(dst []byte, c color.Color) {
		k := color.CMYKModel.Convert(c).(color.CMYK)
		dst[0], dst[1], dst[2], dst[3] = k.C, k.M, k.Y, k.K
	},
}

// row_reader returns row y, counted from the top of the bounds, packed in
// the input format of a transform. buf is used when the pixels cannot be
// referenced in place.
type row_reader func(y int, buf []byte) []byte

func pix_row(pix []uint8, stride, bpp, y, width int) []byte {
	start := stride * y
	return pix[start : start+bpp*width : start+bpp*width]
}

func reader_for(img image.Image, d qcms.DataType) row_reader {
	b := img.Bounds()
	width := b.Dx()
	switch d {
	case qcms.RGB8:
		if i, ok := img.(*NRGB); ok {
			return func(y int, _ []byte) []byte { return pix_row(i.Pix, i.Stride, 3, y, width) }
		}
	case qcms.RGBA8:
		if i, ok := img.(*image.NRGBA); ok {
			return func(y int, _ []byte) []byte { return pix_row(i.Pix, i.Stride, 4, y, width) }
		}
	case qcms.Gray8:
		if i, ok := img.(*image.Gray); ok {
			return func(y int, _ []byte) []byte { return pix_row(i.Pix, i.Stride, 1, y, width) }
		}
	case qcms.CMYK8:
		if i, ok := img.(*image.CMYK); ok {
			return func(y int, _ []byte) []byte { return pix_row(i.Pix, i.Stride, 4, y, width) }
		}
	}
	pack, bpp := packers[d], d.BytesPerPixel()
	return func(y int, buf []byte) []byte {
		y += b.Min.Y
		for x := b.Min.X; x < b.Max.X; x++ {
			pack(buf[bpp*(x-b.Min.X):], img.At(x, y))
		}
		return buf
	}
}

type output struct {
	img image.Image
	// row is where a transform writes row y, finish, when not nil, copies
	// it into img
	row    func(y int, buf []byte) []byte
	finish func(y int, buf []byte)
}

func output_for(d qcms.DataType, r image.Rectangle) (ans output) {
	width := r.Dx()
	in_buf := func(_ int, buf []byte) []byte { return buf }
	switch d {
	case qcms.RGB8:
		i := NewNRGB(r)
		ans.img, ans.row = i, func(y int, _ []byte) []byte { return pix_row(i.Pix, i.Stride, 3, y, width) }
	case qcms.RGBA8:
		i := image.NewNRGBA(r)
		ans.img, ans.row = i, func(y int, _ []byte) []byte { return pix_row(i.Pix, i.Stride, 4, y, width) }
	case qcms.Gray8:
		i := image.NewGray(r)
		ans.img, ans.row = i, func(y int, _ []byte) []byte { return pix_row(i.Pix, i.Stride, 1, y, width) }
	case qcms.CMYK8:
		i := image.NewCMYK(r)
		ans.img, ans.row = i, func(y int, _ []byte) []byte { return pix_row(i.Pix, i.Stride, 4, y, width) }
	case qcms.BGRA8:
		i := image.NewNRGBA(r)
		ans.img, ans.row = i, in_buf
		ans.finish = func(y int, buf []byte) {
			row := pix_row(i.Pix, i.Stride, 4, y, width)
			for x := 0; x < len(buf); x += 4 {
				row[x], row[x+1], row[x+2], row[x+3] = buf[x+2], buf[x+1], buf[x], buf[x+3]
			}
		}
	case qcms.GrayA8:
		i := image.NewNRGBA(r)
		ans.img, ans.row = i, in_buf
		ans.finish = func(y int, buf []byte) {
			row := pix_row(i.Pix, i.Stride, 4, y, width)
			for x := 0; x < width; x++ {
				g := buf[2*x]
				row[4*x], row[4*x+1], row[4*x+2], row[4*x+3] = g, g, g, buf[2*x+1]
			}
		}
	}
	return
}

// Image converts every pixel of img with t into a new image, img is not
// modified. The type of the result depends on the output format of t:
// *NRGB for RGB8, *image.Gray for Gray8, *image.CMYK for CMYK8 and
// *image.NRGBA for the formats with alpha. Rows are converted in parallel.
func Image(t *qcms.Transform, img image.Image) (ans image.Image, err error) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	out := output_for(t.OutputType(), image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return out.img, nil
	}
	read := reader_for(img, t.InputType())
	in_bpp, out_bpp := t.InputType().BytesPerPixel(), t.OutputType().BytesPerPixel()
	var mutex sync.Mutex
	var apply_err error
	f := func(start, limit int) {
		src_buf, dst_buf := make([]byte, in_bpp*width), make([]byte, out_bpp*width)
		for y := start; y < limit; y++ {
			dst := out.row(y, dst_buf)
			if err := t.Apply(read(y, src_buf), dst, width); err != nil {
				mutex.Lock()
				apply_err = err
				mutex.Unlock()
				return
			}
			if out.finish != nil {
				out.finish(y, dst)
			}
		}
	}
	if err = parallel.Run_in_parallel_over_range(0, f, 0, height); err == nil {
		err = apply_err
	}
	if err != nil {
		return nil, err
	}
	return out.img, nil
}

func has_alpha(img image.Image) bool {
	switch img.(type) {
	case *NRGB, *image.Gray, *image.Gray16, *image.CMYK, *image.YCbCr:
		return false
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}

func data_type(space icc.Signature, alpha bool) (qcms.DataType, error) {
	switch space {
	case icc.RGBColorSpace:
		return icc.IfElse(alpha, qcms.RGBA8, qcms.RGB8), nil
	case icc.GrayColorSpace:
		return icc.IfElse(alpha, qcms.GrayA8, qcms.Gray8), nil
	case icc.CMYKColorSpace:
		return qcms.CMYK8, nil
	}
	return qcms.RGB8, fmt.Errorf("%w: no pixel format for the %s colour space", qcms.ErrIncompatiblePixelFormat, space)
}

// TransformFor builds a transform from in to out whose pixel formats suit
// img. Alpha is kept when img has any non-opaque pixel and the output
// colour space is not CMYK.
func TransformFor(img image.Image, in, out *qcms.Profile, intent qcms.RenderingIntent, opts ...qcms.Option) (*qcms.Transform, error) {
	if in == nil || out == nil {
		return nil, fmt.Errorf("%w: nil profile", qcms.ErrInvalidProfile)
	}
	alpha := has_alpha(img)
	in_type, err := data_type(in.ColorSpace(), alpha && in.ColorSpace() != icc.CMYKColorSpace)
	if err != nil {
		return nil, err
	}
	out_type, err := data_type(out.ColorSpace(), alpha && in_type.HasAlpha())
	if err != nil {
		return nil, err
	}
	return qcms.NewTransform(in, in_type, out, out_type, intent, opts...)
}

// ToSRGB converts img, whose pixels are described by p, to sRGB using the
// rendering intent in the header of p. img is returned as is when p is
// sRGB.
func ToSRGB(p *qcms.Profile, img image.Image, opts ...qcms.Option) (image.Image, error) {
	if p == nil || (p.IsSRGB() && p.ColorSpace() == icc.RGBColorSpace) {
		return img, nil
	}
	t, err := TransformFor(img, p, qcms.NewSRGBProfile(), p.RenderingIntent(), opts...)
	if err != nil {
		return nil, err
	}
	return Image(t, img)
}
