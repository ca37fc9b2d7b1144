package icc

import (
	"bytes"
	"fmt"
	"testing"
	"unicode/utf16"

	"github.com/google/go-cmp/cmp"
	"github.com/kovidgoyal/qcms/colorconv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ = fmt.Print

type raw_tag struct {
	sig  Signature
	data []byte
}

// build_profile lays out tags without any validation so that malformed
// profiles can be constructed
func build_profile(space, pcs Signature, tags ...raw_tag) []byte {
	h := new_builtin_header(space)
	h.PCS = pcs
	pos := tag_table_offset + len(tags)*tag_entry_size
	body := NewWriter()
	w := NewWriter()
	h.Size = uint32(pos)
	for _, t := range tags {
		h.Size += uint32(len(t.data))
	}
	h.encode(w)
	w.Uint32(uint32(len(tags)))
	for _, t := range tags {
		w.Signature(t.sig)
		w.Uint32(uint32(pos + body.Len()))
		w.Uint32(uint32(len(t.data)))
		body.Write(t.data)
	}
	w.Write(body.Bytes())
	return w.Bytes()
}

func gray_profile_bytes() []byte {
	return build_profile(GrayColorSpace, XYZColorSpace, raw_tag{GrayTRCTagSignature, curv_bytes(1, 563)})
}

func TestParseHeader(t *testing.T) {
	p, err := Parse(gray_profile_bytes())
	require.NoError(t, err)
	h := p.Header()
	assert.Equal(t, GrayColorSpace, h.ColorSpace)
	assert.Equal(t, XYZColorSpace, h.PCS)
	assert.Equal(t, DisplayDeviceClass, h.DeviceClass)
	assert.Equal(t, "4.3.0", h.VersionString())
	assert.Equal(t, creator_signature, h.Creator)
	assert.Equal(t, PerceptualRenderingIntent, p.RenderingIntent())
	assert.Equal(t, 1, p.NumChannels())
	assert.True(t, p.HasMatrix())
	assert.False(t, p.UsesCLUT())
	assert.Equal(t, []Signature{GrayTRCTagSignature}, p.TagSignatures())
	assert.Equal(t, CurveTypeSignature, p.TagType(GrayTRCTagSignature))
	assert.Equal(t, UnknownSignature, p.TagType(DescSignature))
}

func TestParseRejectsMalformed(t *testing.T) {
	valid := gray_profile_bytes()
	patch := func(offset int, val uint32) []byte {
		ans := bytes.Clone(valid)
		w := &Writer{data: ans}
		w.PutUint32At(offset, val)
		return ans
	}
	xyz := tag_bytes(func(w *Writer) { xyzEncoder(w, D50) })
	trc := curv_bytes(0)
	for _, tc := range []struct {
		name     string
		data     []byte
		expected error
	}{
		{"empty", nil, ErrInvalidProfile},
		{"too small", valid[:131], ErrInvalidProfile},
		{"bad magic", patch(36, 0x12345678), ErrInvalidProfile},
		{"declared size too large", patch(0, uint32(len(valid)+1)), ErrInvalidProfile},
		{"declared size too small", patch(0, 100), ErrInvalidProfile},
		{"declared size huge", patch(0, 0xffffffff), ErrInvalidProfile},
		{"truncated", valid[:len(valid)-1], ErrInvalidProfile},
		{"too many tags", patch(128, MaxTagCount+1), ErrInvalidProfile},
		{"tag table past the end", patch(128, 100), ErrOutOfBounds},
		{"tag inside the tag table", patch(136, 100), ErrInvalidProfile},
		{"tag past the end", patch(140, uint32(len(valid))), ErrInvalidProfile},
		{"tag offset overflow", patch(136, 0xfffffff0), ErrInvalidProfile},
		{"tag size overflow", patch(140, 0xfffffff0), ErrInvalidProfile},
		{"Lab PCS", build_profile(GrayColorSpace, LabColorSpace, raw_tag{GrayTRCTagSignature, trc}), ErrUnsupported},
		{"unknown PCS", build_profile(GrayColorSpace, SignatureFromString("abcd"), raw_tag{GrayTRCTagSignature, trc}), ErrInvalidProfile},
		{"unsupported space", build_profile(SignatureFromString("YCbr"), XYZColorSpace), ErrUnsupported},
		{"gray without kTRC", build_profile(GrayColorSpace, XYZColorSpace), ErrInvalidProfile},
		{"RGB without matrix or lut", build_profile(RGBColorSpace, XYZColorSpace, raw_tag{RedTRCTagSignature, trc}), ErrInvalidProfile},
		{"RGB with incomplete matrix", build_profile(RGBColorSpace, XYZColorSpace,
			raw_tag{RedColorantTagSignature, xyz}, raw_tag{GreenColorantTagSignature, xyz}, raw_tag{BlueColorantTagSignature, xyz},
			raw_tag{RedTRCTagSignature, trc}, raw_tag{GreenTRCTagSignature, trc}), ErrInvalidProfile},
		{"CMYK without lut", build_profile(CMYKColorSpace, XYZColorSpace), ErrInvalidProfile},
		{"kTRC of the wrong type", build_profile(GrayColorSpace, XYZColorSpace, raw_tag{GrayTRCTagSignature, xyz}), ErrUnsupported},
		{"truncated kTRC", build_profile(GrayColorSpace, XYZColorSpace, raw_tag{GrayTRCTagSignature, curv_bytes(4, 1, 2)}), ErrInvalidProfile},
		{"singular chad", build_profile(GrayColorSpace, XYZColorSpace, raw_tag{GrayTRCTagSignature, trc},
			raw_tag{ChromaticAdaptationTagSignature, tag_bytes(func(w *Writer) { chadEncoder(w, colorconv.Mat3{}) })}), ErrInvalidProfile},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Parse(tc.data)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestParseTagTable(t *testing.T) {
	t.Run("first occurrence wins", func(t *testing.T) {
		data := build_profile(GrayColorSpace, XYZColorSpace,
			raw_tag{GrayTRCTagSignature, curv_bytes(1, 563)}, raw_tag{GrayTRCTagSignature, curv_bytes(0)})
		p, err := Parse(data)
		require.NoError(t, err)
		assert.IsType(t, (*GammaCurve)(nil), p.GrayTRC())
		assert.Equal(t, 1, len(p.TagSignatures()))
	})
	t.Run("shared tag data", func(t *testing.T) {
		data := gray_profile_bytes()
		w := &Writer{data: data}
		w.PutUint32At(128, 2)
		// a second entry pointing at the same bytes, the tag data moves up by 12
		entry := bytes.Clone(data[132:144])
		data = append(append(append([]byte{}, data[:144]...), entry...), data[144:]...)
		w = &Writer{data: data}
		w.PutUint32At(0, uint32(len(data)))
		w.PutUint32At(136, 156)
		w.PutUint32At(144, uint32(MediaWhitePointTagSignature))
		w.PutUint32At(148, 156)
		_, err := Parse(data)
		// the curve is not an XYZType
		assert.ErrorIs(t, err, ErrUnsupported)
		w.PutUint32At(144, uint32(CopyrightTagSignature))
		p, err := Parse(data)
		require.NoError(t, err)
		assert.Equal(t, []Signature{GrayTRCTagSignature, CopyrightTagSignature}, p.TagSignatures())
	})
	t.Run("trailing data is ignored", func(t *testing.T) {
		data := append(gray_profile_bytes(), 1, 2, 3, 4)
		_, err := Parse(data)
		require.NoError(t, err)
	})
	t.Run("input is not retained", func(t *testing.T) {
		data := gray_profile_bytes()
		p, err := Parse(data)
		require.NoError(t, err)
		clear(data)
		assert.Equal(t, CurveTypeSignature, p.TagType(GrayTRCTagSignature))
	})
}

func TestParseNeverPanics(t *testing.T) {
	data, err := NewSRGBProfile().Encode()
	require.NoError(t, err)
	for i := range len(data) {
		_, err := Parse(data[:i])
		require.Error(t, err, "truncated to %d", i)
	}
	for i := range len(data) {
		for _, v := range []byte{0, 0x80, 0xff} {
			corrupt := bytes.Clone(data)
			corrupt[i] = v
			assert.NotPanics(t, func() { _, _ = Parse(corrupt) }, "byte %d set to %d", i, v)
		}
	}
}

func TestBuiltinProfiles(t *testing.T) {
	t.Run("sRGB", func(t *testing.T) {
		p := NewSRGBProfile()
		assert.Same(t, p, NewSRGBProfile())
		assert.True(t, p.IsSRGB())
		assert.False(t, p.UsesCLUT())
		assert.Equal(t, "sRGB built-in", p.Description())
		assert.Equal(t, []Signature{
			DescSignature, MediaWhitePointTagSignature, ChromaticAdaptationTagSignature,
			RedColorantTagSignature, GreenColorantTagSignature, BlueColorantTagSignature,
			RedTRCTagSignature, GreenTRCTagSignature, BlueTRCTagSignature,
		}, p.TagSignatures())
		colorants, ok := p.Colorants()
		require.True(t, ok)
		in_delta(t, 0.4361, colorants[0].X, 0.001)
		in_delta(t, 0.2225, colorants[0].Y, 0.001)
		in_delta(t, 0.7141, colorants[2].Z, 0.001)
		// white maps to D50
		w := p.RGBToXYZ().MulVec(colorconv.Vec3{1, 1, 1})
		for i := range 3 {
			in_delta(t, colorconv.WhiteD50[i], w[i], 0.001)
		}
		chad, ok := p.ChromaticAdaptation()
		require.True(t, ok)
		assert.True(t, chad.Equals(colorconv.AdaptationMatrix(colorconv.WhiteD65, colorconv.WhiteD50), 0.001))
		assert.True(t, p.AdaptationToD50().Equals(chad, 0))
		mw, ok := p.MediaWhitePoint()
		require.True(t, ok)
		assert.Equal(t, D50.Quantized(), mw)
		inv, err := p.XYZToRGB()
		require.NoError(t, err)
		assert.True(t, inv.Mul(p.RGBToXYZ()).Equals(colorconv.Identity, 1e-9))
	})
	t.Run("gamma RGB", func(t *testing.T) {
		p, err := NewRGBProfileWithGamma(colorconv.D65, colorconv.SRGBPrimaries, 2.2)
		require.NoError(t, err)
		assert.False(t, p.IsSRGB())
		assert.Equal(t, "RGB with gamma 2.20", p.Description())
		trcs, ok := p.TRCs()
		require.True(t, ok)
		assert.IsType(t, (*GammaCurve)(nil), trcs[1])
		_, err = NewRGBProfileWithGamma(colorconv.D65, colorconv.SRGBPrimaries, 0)
		assert.ErrorIs(t, err, ErrInvalidProfile)
		_, err = NewRGBProfileWithGamma(colorconv.D65, colorconv.Primaries{}, 2.2)
		assert.ErrorIs(t, err, ErrInvalidColorPrimaries)
	})
	t.Run("sampled sRGB is sRGB", func(t *testing.T) {
		p, err := NewRGBProfileWithTable(colorconv.D65, colorconv.SRGBPrimaries, SampleCurve(srgb_curve(), 1024))
		require.NoError(t, err)
		assert.True(t, p.IsSRGB())
		assert.Equal(t, "RGB with 1024 point TRC", p.Description())
	})
	t.Run("other primaries are not sRGB", func(t *testing.T) {
		c := srgb_curve()
		p, err := NewRGBProfile(colorconv.D65, colorconv.DisplayP3Primaries, [3]Curve{c, c, c}, "P3")
		require.NoError(t, err)
		assert.False(t, p.IsSRGB())
		_, err = NewRGBProfile(colorconv.D65, colorconv.SRGBPrimaries, [3]Curve{c, c, nil}, "broken")
		assert.ErrorIs(t, err, ErrInvalidProfile)
	})
	t.Run("gray", func(t *testing.T) {
		p, err := NewGrayProfileWithGamma(2.2)
		require.NoError(t, err)
		assert.Equal(t, GrayColorSpace, p.ColorSpace())
		assert.False(t, p.IsSRGB())
		assert.Equal(t, "Gray with gamma 2.20", p.Description())
		assert.True(t, p.AdaptationToD50().Equals(colorconv.Identity, 1e-4))
		_, err = NewGrayProfile(nil, "")
		assert.ErrorIs(t, err, ErrInvalidProfile)
	})
}

func TestEncodeRoundTrip(t *testing.T) {
	g, err := NewGrayProfileWithGamma(1.8)
	require.NoError(t, err)
	for _, p := range []*Profile{NewSRGBProfile(), g} {
		data, err := p.Encode()
		require.NoError(t, err)
		assert.Equal(t, 0, len(data)%4)
		q, err := Parse(data)
		require.NoError(t, err)
		again, err := q.Encode()
		require.NoError(t, err)
		if diff := cmp.Diff(data, again); diff != "" {
			t.Fatalf("re-encoding a parsed profile changed it:\n%s", diff)
		}
	}
	// identical TRCs share storage
	data, _ := NewSRGBProfile().Encode()
	p, _ := Parse(data)
	off := func(sig Signature) uint32 { return p.tags.entries[sig].offset }
	assert.Equal(t, off(RedTRCTagSignature), off(BlueTRCTagSignature))
	assert.NotEqual(t, off(RedColorantTagSignature), off(BlueColorantTagSignature))
}

func TestPrecache(t *testing.T) {
	p, err := NewRGBProfileWithGamma(colorconv.D65, colorconv.SRGBPrimaries, 2.2)
	require.NoError(t, err)
	assert.False(t, p.IsPrecached())
	fresh := p.OutputTables()
	require.NotNil(t, fresh)
	require.Len(t, fresh.Channels, 3)
	assert.False(t, p.IsPrecached())
	p.PrecacheOutputTransform()
	assert.True(t, p.IsPrecached())
	cached := p.OutputTables()
	assert.Same(t, cached, p.OutputTables())
	p.PrecacheOutputTransform()
	assert.Same(t, cached, p.OutputTables())
	if diff := cmp.Diff(fresh, cached); diff != "" {
		t.Fatalf("precached tables differ from computed ones:\n%s", diff)
	}
	gray, err := NewGrayProfileWithGamma(2.2)
	require.NoError(t, err)
	require.Len(t, gray.OutputTables().Channels, 1)
}

func TestDescriptions(t *testing.T) {
	t.Run("desc", func(t *testing.T) {
		raw := tag_bytes(func(w *Writer) { descriptionEncoder(w, "Display") })
		s, err := descriptionDecoder(raw)
		require.NoError(t, err)
		assert.Equal(t, "Display", s)
	})
	t.Run("text", func(t *testing.T) {
		raw := tag_bytes(func(w *Writer) {
			w.Signature(TextTypeSignature)
			w.Zeros(4)
			w.Write([]byte("Copyright\x00\x00"))
		})
		s, err := descriptionDecoder(raw)
		require.NoError(t, err)
		assert.Equal(t, "Copyright", s)
	})
	mluc := func(lengths_ok bool, records ...string) []byte {
		return tag_bytes(func(w *Writer) {
			w.Signature(MultiLocalisedUnicodeSignature)
			w.Zeros(4)
			w.Uint32(uint32(len(records) / 2))
			w.Uint32(12)
			offset := 16 + 6*len(records)
			for i := 0; i < len(records); i += 2 {
				w.Write([]byte(records[i]))
				length := 2 * len(utf16.Encode([]rune(records[i+1])))
				w.Uint32(uint32(length + IfElse(lengths_ok, 0, 1000)))
				w.Uint32(uint32(offset))
				offset += length
			}
			for i := 1; i < len(records); i += 2 {
				w.Uint16s(utf16.Encode([]rune(records[i])))
			}
		})
	}
	t.Run("mluc", func(t *testing.T) {
		s, err := descriptionDecoder(mluc(true, "frFR", "Écran", "enUS", "Screen"))
		require.NoError(t, err)
		assert.Equal(t, "Screen", s)
		s, err = descriptionDecoder(mluc(true, "frFR", "Écran", "deDE", "Bildschirm"))
		require.NoError(t, err)
		assert.Equal(t, "Écran", s)
		_, err = descriptionDecoder(mluc(false, "enUS", "Screen"))
		assert.ErrorIs(t, err, ErrInvalidProfile)
		_, err = descriptionDecoder(mluc(true, "enUS", "Screen")[:20])
		assert.ErrorIs(t, err, ErrInvalidProfile)
	})
	t.Run("description in a profile", func(t *testing.T) {
		data := build_profile(GrayColorSpace, XYZColorSpace, raw_tag{GrayTRCTagSignature, curv_bytes(0)},
			raw_tag{DescSignature, mluc(true, "enUS", "Mono")})
		p, err := Parse(data)
		require.NoError(t, err)
		assert.Equal(t, "Mono", p.Description())
	})
}
