package icc

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func in_delta(t *testing.T, expected, actual, delta float64, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, expected, actual, delta, msgAndArgs...)
}

func TestReader(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07})
	v16, err := r.Uint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0102), v16)
	v32, err := r.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x03040506), v32)
	assert.Equal(t, 6, r.Pos())
	assert.Equal(t, 1, r.Remaining())

	t.Run("failed reads leave the cursor alone", func(t *testing.T) {
		_, err := r.Uint16()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrOutOfBounds))
		var be *BoundsError
		require.True(t, errors.As(err, &be))
		assert.Equal(t, BoundsError{Offset: 6, Width: 2, Len: 7}, *be)
		assert.Equal(t, 6, r.Pos())
		v8, err := r.Uint8()
		require.NoError(t, err)
		assert.Equal(t, uint8(7), v8)
		_, err = r.Uint8()
		assert.ErrorIs(t, err, ErrOutOfBounds)
	})
	t.Run("seek", func(t *testing.T) {
		require.NoError(t, r.Seek(7))
		assert.ErrorIs(t, r.Seek(8), ErrOutOfBounds)
		assert.ErrorIs(t, r.Seek(-1), ErrOutOfBounds)
		require.NoError(t, r.Seek(0))
		assert.ErrorIs(t, r.Skip(-1), ErrOutOfBounds)
		assert.ErrorIs(t, r.Skip(8), ErrOutOfBounds)
	})
	t.Run("slices", func(t *testing.T) {
		require.NoError(t, r.Seek(1))
		b, err := r.Bytes(3)
		require.NoError(t, err)
		assert.Equal(t, []byte{2, 3, 4}, b)
		assert.Equal(t, 3, cap(b))
		_, err = r.Uint16s(2)
		assert.ErrorIs(t, err, ErrOutOfBounds)
		_, err = r.Uint16s(math.MaxInt32)
		assert.ErrorIs(t, err, ErrOutOfBounds)
		u, err := r.Uint16s(1)
		require.NoError(t, err)
		assert.Equal(t, []uint16{0x0506}, u)
	})
}

func TestWriterRoundTrip(t *testing.T) {
	w := NewWriter()
	w.Signature(SignatureFromString("abc"))
	w.S15Fixed16(-1.5)
	w.U8Fixed8(2.2)
	w.XYZ(D50)
	w.Uint16s([]uint16{1, 65535})
	w.Uint8(9)
	w.Align()
	require.Equal(t, 0, w.Len()%4)

	r := NewReader(w.Bytes())
	sig, _ := r.Signature()
	assert.Equal(t, "'abc '", sig.String())
	f, _ := r.S15Fixed16()
	assert.Equal(t, -1.5, f)
	g, _ := r.U8Fixed8()
	in_delta(t, 2.2, g, 1.0/256)
	xyz, err := r.XYZ()
	require.NoError(t, err)
	assert.Equal(t, D50.Quantized(), xyz)
	u, _ := r.Uint16s(2)
	assert.Equal(t, []uint16{1, 65535}, u)
	b, _ := r.Uint8()
	assert.Equal(t, uint8(9), b)
	w.PutUint32At(0, uint32(XYZTypeSignature))
	sig, _ = NewReader(w.Bytes()).Signature()
	assert.Equal(t, XYZTypeSignature, sig)
}

func TestFixedPoint(t *testing.T) {
	for _, tc := range []struct {
		name     string
		in       float64
		expected int32
	}{
		{"one", 1, 0x10000},
		{"negative fraction", -1.5, -0x18000},
		{"zero", 0, 0},
		{"rounds", 0.5 / 65536, 1},
		{"saturates high", 1e6, math.MaxInt32},
		{"saturates low", -1e6, math.MinInt32},
		{"nan", math.NaN(), 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FloatToS15Fixed16(tc.in))
		})
	}
	assert.Equal(t, -1.5, S15Fixed16ToFloat(FloatToS15Fixed16(-1.5)))
	assert.Equal(t, uint16(563), FloatToU8Fixed8(2.2))
	assert.Equal(t, uint16(math.MaxUint16), FloatToU8Fixed8(300))
	assert.Equal(t, uint16(0), FloatToU8Fixed8(-1))
	assert.Equal(t, 2.19921875, U8Fixed8ToFloat(563))
	in_delta(t, 0.9642, QuantizeS15Fixed16(0.9642), 1.0/65536)
}

func TestSignature(t *testing.T) {
	assert.Equal(t, RGBColorSpace, SignatureFromString("RGB"))
	assert.Equal(t, "'mft2'", Lut16TypeSignature.String())
	assert.Equal(t, "'    '", UnknownSignature.String())
	assert.Equal(t, 4, CMYKColorSpace.NumChannels())
	assert.Equal(t, 1, GrayColorSpace.NumChannels())
	assert.Equal(t, 0, LinkDeviceClass.NumChannels())
}

func TestRenderingIntent(t *testing.T) {
	assert.Equal(t, PerceptualRenderingIntent, RenderingIntent(17).Normalized())
	assert.False(t, RenderingIntent(4).Valid())
	assert.Equal(t, 0, PerceptualRenderingIntent.lut_tag_index())
	assert.Equal(t, 1, RelativeColorimetricRenderingIntent.lut_tag_index())
	assert.Equal(t, 1, AbsoluteColorimetricRenderingIntent.lut_tag_index())
	assert.Equal(t, 2, SaturationRenderingIntent.lut_tag_index())
	for _, s := range []string{"relative", "Relative-Colorimetric", "r", "1"} {
		ri, err := ParseRenderingIntent(s)
		require.NoError(t, err)
		assert.Equal(t, RelativeColorimetricRenderingIntent, ri)
	}
	_, err := ParseRenderingIntent("vivid")
	assert.Error(t, err)
	assert.Equal(t, "RenderingIntent(9)", RenderingIntent(9).String())
}
