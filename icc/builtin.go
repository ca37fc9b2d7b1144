package icc

import (
	"fmt"
	"sync"

	"github.com/kovidgoyal/qcms/colorconv"
)

const builtin_version = 0x04300000

var creator_signature = SignatureFromString("qcms")

var srgb_curve = sync.OnceValue(func() *ParametricCurve {
	c, err := NewParametricCurve(SplitFunction, 2.4, 1/1.055, 0.055/1.055, 1/12.92, 0.04045)
	if err != nil {
		panic(err)
	}
	return c
})

func colorants_from_matrix(m colorconv.Mat3) (ans [3]XYZType) {
	for col := range 3 {
		ans[col] = XYZType{m[0][col], m[1][col], m[2][col]}.Quantized()
	}
	return
}

var srgb_colorants = sync.OnceValue(func() [3]XYZType {
	m, err := colorconv.BuildRGBToXYZ(colorconv.D65, colorconv.SRGBPrimaries)
	if err != nil {
		panic(err)
	}
	return colorants_from_matrix(m)
})

func new_builtin_header(space Signature) Header {
	return Header{
		Version: builtin_version, DeviceClass: DisplayDeviceClass, ColorSpace: space, PCS: XYZColorSpace,
		RenderingIntent: PerceptualRenderingIntent, Illuminant: D50.Quantized(), Creator: creator_signature,
	}
}

// round_trip encodes p and parses the result so that created profiles are
// exactly what a reader of the encoded form would see
func round_trip(p *Profile) (*Profile, error) {
	data, err := p.Encode()
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func adaptation_tags(p *Profile, white colorconv.XYY) error {
	w, err := colorconv.XYYToXYZ(white)
	if err != nil {
		return err
	}
	chad := colorconv.AdaptationMatrix(w, colorconv.WhiteD50)
	for i := range 3 {
		for j := range 3 {
			chad[i][j] = QuantizeS15Fixed16(chad[i][j])
		}
	}
	p.chad = &chad
	mw := D50.Quantized()
	p.media_white = &mw
	return nil
}

// NewRGBProfile creates a matrix/TRC profile from a white point, primaries
// and one curve per channel. Colorants are adapted to D50 with the
// Bradford transform, which is also stored as the chad tag.
func NewRGBProfile(white colorconv.XYY, primaries colorconv.Primaries, curves [3]Curve, description string) (*Profile, error) {
	m, err := colorconv.BuildRGBToXYZ(white, primaries)
	if err != nil {
		return nil, err
	}
	for i, c := range curves {
		if c == nil {
			return nil, fmt.Errorf("%w: curve %d is missing", ErrInvalidProfile, i)
		}
	}
	p := &Profile{header: new_builtin_header(RGBColorSpace), colorants: colorants_from_matrix(m), trcs: curves, has_matrix: true, description: description}
	if err = adaptation_tags(p, white); err != nil {
		return nil, err
	}
	return round_trip(p)
}

func NewRGBProfileWithGamma(white colorconv.XYY, primaries colorconv.Primaries, gamma float64) (*Profile, error) {
	c, err := NewGammaCurve(gamma)
	if err != nil {
		return nil, err
	}
	return NewRGBProfile(white, primaries, [3]Curve{c, c, c}, fmt.Sprintf("RGB with gamma %.2f", c.gamma))
}

// NewRGBProfileWithTable creates a profile whose TRCs are the same sampled curve
func NewRGBProfileWithTable(white colorconv.XYY, primaries colorconv.Primaries, table []uint16) (*Profile, error) {
	c, err := NewPointsCurve(table)
	if err != nil {
		return nil, err
	}
	return NewRGBProfile(white, primaries, [3]Curve{c, c, c}, fmt.Sprintf("RGB with %d point TRC", len(table)))
}

// NewSRGBProfile returns the built-in sRGB profile. The same immutable
// profile is returned on every call.
func NewSRGBProfile() *Profile { return srgb_profile() }

var srgb_profile = sync.OnceValue(func() *Profile {
	c := srgb_curve()
	p, err := NewRGBProfile(colorconv.D65, colorconv.SRGBPrimaries, [3]Curve{c, c, c}, "sRGB built-in")
	if err != nil {
		panic(err)
	}
	return p
})

func NewGrayProfile(c Curve, description string) (*Profile, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: gray curve is missing", ErrInvalidProfile)
	}
	p := &Profile{header: new_builtin_header(GrayColorSpace), gray_trc: c, description: description}
	mw := D50.Quantized()
	p.media_white = &mw
	return round_trip(p)
}

func NewGrayProfileWithGamma(gamma float64) (*Profile, error) {
	c, err := NewGammaCurve(gamma)
	if err != nil {
		return nil, err
	}
	return NewGrayProfile(c, fmt.Sprintf("Gray with gamma %.2f", c.gamma))
}

// NewLUTProfile creates a profile whose A2B0 and B2A0 tags are the given
// lut16 transforms, either of which may be nil. The B2A matrix, if any, is
// applied to PCS XYZ input.
func NewLUTProfile(space Signature, a2b, b2a *MFT, description string) (*Profile, error) {
	p := &Profile{header: new_builtin_header(space), description: description}
	switch space {
	case RGBColorSpace, CMYKColorSpace:
	default:
		return nil, unsupported("LUT based %s profiles", space)
	}
	if a2b != nil {
		p.a2b[0] = a2b
	}
	if b2a != nil {
		p.b2a[0] = b2a
	}
	if space == CMYKColorSpace {
		p.header.DeviceClass = OutputDeviceClass
	}
	return round_trip(p)
}
