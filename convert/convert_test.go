package convert

import (
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kovidgoyal/qcms"
	"github.com/kovidgoyal/qcms/colorconv"
	"github.com/kovidgoyal/qcms/icc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ = fmt.Print

func random_nrgba(r image.Rectangle, seed uint64) *image.NRGBA {
	rng := rand.New(rand.NewPCG(seed, seed))
	img := image.NewNRGBA(r)
	for i := range img.Pix {
		img.Pix[i] = byte(rng.Uint32())
	}
	return img
}

func gray_profile(t *testing.T) *qcms.Profile {
	t.Helper()
	p, err := qcms.NewGrayProfileWithGamma(2.2)
	require.NoError(t, err)
	return p
}

func TestNRGB(t *testing.T) {
	img := NewNRGB(image.Rect(2, 3, 6, 8))
	assert.Equal(t, 12, img.Stride)
	assert.True(t, img.Opaque())
	img.Set(3, 4, color.NRGBA{1, 2, 3, 255})
	assert.Equal(t, NRGBColor{1, 2, 3}, img.NRGBAt(3, 4))
	assert.Equal(t, NRGBColor{}, img.NRGBAt(0, 0))
	img.Set(100, 100, color.White)
	// premultiplied colours are un-premultiplied
	img.Set(2, 3, color.RGBA{64, 0, 0, 128})
	assert.Equal(t, NRGBColor{127, 0, 0}, img.NRGBAt(2, 3))
	assert.Equal(t, "#010203", NRGBColor{1, 2, 3}.AsSharp())
	r, _, _, a := NRGBColor{0xff, 0, 0}.RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)

	sub := img.SubImage(image.Rect(3, 4, 5, 5)).(*NRGB)
	assert.Equal(t, NRGBColor{1, 2, 3}, sub.NRGBAt(3, 4))
	sub.Set(4, 4, color.White)
	assert.Equal(t, NRGBColor{255, 255, 255}, img.NRGBAt(4, 4))
	assert.Equal(t, &NRGB{}, img.SubImage(image.Rect(50, 50, 60, 60)))
}

func TestImage(t *testing.T) {
	srgb := qcms.NewSRGBProfile()
	t.Run("sub image", func(t *testing.T) {
		full := random_nrgba(image.Rect(0, 0, 20, 20), 1)
		src := full.SubImage(image.Rect(3, 5, 17, 11)).(*image.NRGBA)
		before := append([]byte(nil), full.Pix...)
		x, err := qcms.NewTransform(srgb, qcms.RGBA8, srgb, qcms.RGBA8, qcms.Perceptual)
		require.NoError(t, err)
		ans, err := Image(x, src)
		require.NoError(t, err)
		out := ans.(*image.NRGBA)
		assert.Equal(t, image.Rect(0, 0, 14, 6), out.Bounds())
		for y := range 6 {
			for x := range 14 {
				require.Equal(t, src.NRGBAAt(x+3, y+5), out.NRGBAAt(x, y))
			}
		}
		assert.Equal(t, before, full.Pix)
	})
	t.Run("gray to sRGB", func(t *testing.T) {
		src := image.NewGray(image.Rect(0, 0, 3, 1))
		src.Pix = []byte{0, 100, 255}
		x, err := TransformFor(src, gray_profile(t), srgb, qcms.Perceptual)
		require.NoError(t, err)
		assert.Equal(t, qcms.Gray8, x.InputType())
		assert.Equal(t, qcms.RGB8, x.OutputType())
		ans, err := Image(x, src)
		require.NoError(t, err)
		out := ans.(*NRGB)
		assert.Equal(t, NRGBColor{0, 0, 0}, out.NRGBAt(0, 0))
		assert.Equal(t, NRGBColor{255, 255, 255}, out.NRGBAt(2, 0))
		mid := out.NRGBAt(1, 0)
		assert.Equal(t, mid.R, mid.G)
		assert.Equal(t, mid.R, mid.B)
	})
	t.Run("premultiplied input", func(t *testing.T) {
		src := image.NewRGBA(image.Rect(0, 0, 2, 1))
		src.SetRGBA(0, 0, color.RGBA{128, 0, 0, 128})
		x, err := TransformFor(src, srgb, srgb, qcms.Perceptual)
		require.NoError(t, err)
		assert.Equal(t, qcms.RGBA8, x.OutputType())
		ans, err := Image(x, src)
		require.NoError(t, err)
		out := ans.(*image.NRGBA)
		assert.Equal(t, color.NRGBA{255, 0, 0, 128}, out.NRGBAAt(0, 0))
		assert.Equal(t, color.NRGBA{0, 0, 0, 0}, out.NRGBAAt(1, 0))
	})
	t.Run("outputs needing a copy", func(t *testing.T) {
		src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
		src.SetNRGBA(0, 0, color.NRGBA{10, 20, 30, 40})
		src.SetNRGBA(1, 0, color.NRGBA{255, 255, 255, 7})
		x, err := qcms.NewTransform(srgb, qcms.RGBA8, srgb, qcms.BGRA8, qcms.Perceptual)
		require.NoError(t, err)
		ans, err := Image(x, src)
		require.NoError(t, err)
		if diff := cmp.Diff(src.Pix, ans.(*image.NRGBA).Pix); diff != "" {
			t.Fatalf("BGRA output was not reordered:\n%s", diff)
		}
		x, err = TransformFor(src, srgb, gray_profile(t), qcms.Perceptual)
		require.NoError(t, err)
		assert.Equal(t, qcms.GrayA8, x.OutputType())
		ans, err = Image(x, src)
		require.NoError(t, err)
		assert.Equal(t, color.NRGBA{255, 255, 255, 7}, ans.(*image.NRGBA).NRGBAAt(1, 0))
	})
	t.Run("rows in parallel", func(t *testing.T) {
		p, err := qcms.NewRGBProfileWithGamma(colorconv.D65, colorconv.AdobeRGBPrimaries, 1.8)
		require.NoError(t, err)
		src := NewNRGB(image.Rect(0, 0, 61, 97))
		copy(src.Pix, random_nrgba(image.Rect(0, 0, 61, 97), 2).Pix)
		x, err := TransformFor(src, p, srgb, qcms.RelativeColorimetric)
		require.NoError(t, err)
		ans, err := Image(x, src)
		require.NoError(t, err)
		expected := make([]byte, len(src.Pix))
		require.NoError(t, x.Apply(src.Pix, expected, 61*97))
		if diff := cmp.Diff(expected, ans.(*NRGB).Pix); diff != "" {
			t.Fatalf("parallel conversion differs from a single Apply:\n%s", diff)
		}
	})
	t.Run("empty", func(t *testing.T) {
		x, err := qcms.NewTransform(srgb, qcms.RGB8, srgb, qcms.RGB8, qcms.Perceptual)
		require.NoError(t, err)
		ans, err := Image(x, image.NewNRGBA(image.Rectangle{}))
		require.NoError(t, err)
		assert.True(t, ans.Bounds().Empty())
	})
}

func TestTransformFor(t *testing.T) {
	srgb := qcms.NewSRGBProfile()
	opaque := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range opaque.Pix {
		opaque.Pix[i] = 0xff
	}
	x, err := TransformFor(opaque, srgb, srgb, qcms.Perceptual)
	require.NoError(t, err)
	assert.Equal(t, qcms.RGB8, x.InputType())
	opaque.Pix[3] = 0
	x, err = TransformFor(opaque, srgb, srgb, qcms.Perceptual)
	require.NoError(t, err)
	assert.Equal(t, qcms.RGBA8, x.InputType())

	_, err = TransformFor(opaque, nil, srgb, qcms.Perceptual)
	assert.ErrorIs(t, err, qcms.ErrInvalidProfile)
	_, err = data_type(icc.SignatureFromString("Lab"), false)
	assert.ErrorIs(t, err, qcms.ErrIncompatiblePixelFormat)

	buf := make([]byte, 4)
	packers[qcms.CMYK8](buf, color.CMYK{1, 2, 3, 4})
	assert.Equal(t, []byte{1, 2, 3, 4}, buf)
	packers[qcms.BGRA8](buf, color.NRGBA{1, 2, 3, 4})
	assert.Equal(t, []byte{3, 2, 1, 4}, buf)
}

func TestToSRGB(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 4))
	ans, err := ToSRGB(qcms.NewSRGBProfile(), src)
	require.NoError(t, err)
	assert.Same(t, src, ans)
	ans, err = ToSRGB(gray_profile(t), src)
	require.NoError(t, err)
	assert.IsType(t, (*NRGB)(nil), ans)
}
