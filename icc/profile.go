package icc

import (
	"bytes"
	"fmt"
	"math"
	"slices"
	"sync/atomic"

	"github.com/kovidgoyal/qcms/colorconv"
)

var _ = fmt.Println

// Profile is a parsed and validated ICC profile. It is immutable apart from
// the output precache, which may be filled once by PrecacheOutputTransform
// and is safe for concurrent use.
type Profile struct {
	header      Header
	tags        TagTable
	description string

	colorants   [3]XYZType
	trcs        [3]Curve
	gray_trc    Curve
	chad        *colorconv.Mat3
	media_white *XYZType
	a2b, b2a    [3]ChannelTransformer

	has_matrix bool
	uses_clut  bool
	is_srgb    bool
	rgb_to_xyz colorconv.Mat3

	precache atomic.Pointer[OutputTables]
}

var rgb_matrix_tags = [6]Signature{
	RedColorantTagSignature, GreenColorantTagSignature, BlueColorantTagSignature,
	RedTRCTagSignature, GreenTRCTagSignature, BlueTRCTagSignature,
}

var a2b_tags = [3]Signature{AToB0TagSignature, AToB1TagSignature, AToB2TagSignature}
var b2a_tags = [3]Signature{BToA0TagSignature, BToA1TagSignature, BToA2TagSignature}

// Parse validates and decodes an ICC profile. The profile does not retain
// a reference to data. Either a fully valid Profile or an error is returned.
func Parse(data []byte) (*Profile, error) {
	if len(data) < tag_table_offset {
		return nil, invalid("profile too small: %d bytes", len(data))
	}
	if len(data) > MaxProfileSize {
		data = data[:MaxProfileSize]
	}
	data = bytes.Clone(data)
	r := NewReader(data)
	h, err := parse_header(r)
	if err != nil {
		return nil, err
	}
	switch {
	case uint64(h.Size) > uint64(len(data)):
		return nil, invalid("declared size %d exceeds data size %d", h.Size, len(data))
	case h.Size > MaxProfileSize:
		return nil, invalid("declared size %d exceeds the maximum of %d", h.Size, MaxProfileSize)
	case h.Size < tag_table_offset:
		return nil, invalid("declared size %d is too small", h.Size)
	}
	data = data[:h.Size:h.Size]
	r = NewReader(data)
	if err = check_spaces(h); err != nil {
		return nil, err
	}
	p := &Profile{header: h}
	if p.tags, err = parse_tag_table(r); err != nil {
		return nil, err
	}
	if err = p.decode_tags(); err != nil {
		return nil, err
	}
	if err = p.finalize(); err != nil {
		return nil, err
	}
	return p, nil
}

func check_spaces(h Header) error {
	switch h.ColorSpace {
	case RGBColorSpace, GrayColorSpace, CMYKColorSpace:
	default:
		return unsupported("color space %s", h.ColorSpace)
	}
	switch h.PCS {
	case XYZColorSpace:
	case LabColorSpace:
		return unsupported("Lab profile connection space")
	default:
		return invalid("unknown profile connection space: %s", h.PCS)
	}
	return nil
}

func (p *Profile) decode_curve_tag(sig Signature) (Curve, error) {
	raw, err := p.tags.get_required(sig)
	if err != nil {
		return nil, err
	}
	c, _, err := decode_curve(raw)
	if err != nil {
		return nil, fmt.Errorf("%s tag: %w", sig, err)
	}
	return c, nil
}

func (p *Profile) decode_xyz_tag(sig Signature) (XYZType, error) {
	raw, err := p.tags.get_required(sig)
	if err != nil {
		return XYZType{}, err
	}
	ans, err := xyzDecoder(raw)
	if err != nil {
		return ans, fmt.Errorf("%s tag: %w", sig, err)
	}
	return ans, nil
}

func decode_lut(raw []byte, is_b2a bool) (ChannelTransformer, error) {
	sig, err := NewReader(raw).Signature()
	if err != nil {
		return nil, invalid("lut tag too short")
	}
	switch sig {
	case Lut8TypeSignature, Lut16TypeSignature:
		m, err := mftDecoder(raw)
		if err != nil {
			return nil, err
		}
		m.apply_matrix = is_b2a
		return m, nil
	case LutAtoBTypeSignature, LutBtoATypeSignature:
		if (sig == LutBtoATypeSignature) != is_b2a {
			return nil, invalid("%s tag used in the wrong direction", sig)
		}
		return modularDecoder(raw)
	}
	return nil, unsupported("lut tag type %s", sig)
}

func (p *Profile) decode_luts() (err error) {
	channels := p.header.ColorSpace.NumChannels()
	for i, sig := range a2b_tags {
		if raw, ok := p.tags.Get(sig); ok {
			if p.a2b[i], err = decode_lut(raw, false); err != nil {
				return fmt.Errorf("%s tag: %w", sig, err)
			}
			if p.a2b[i].NumInputs() != channels || p.a2b[i].NumOutputs() != 3 {
				return invalid("%s tag maps %d channels to %d, expected %d to 3", sig, p.a2b[i].NumInputs(), p.a2b[i].NumOutputs(), channels)
			}
		}
	}
	for i, sig := range b2a_tags {
		if raw, ok := p.tags.Get(sig); ok {
			if p.b2a[i], err = decode_lut(raw, true); err != nil {
				return fmt.Errorf("%s tag: %w", sig, err)
			}
			if p.b2a[i].NumInputs() != 3 || p.b2a[i].NumOutputs() != channels {
				return invalid("%s tag maps %d channels to %d, expected 3 to %d", sig, p.b2a[i].NumInputs(), p.b2a[i].NumOutputs(), channels)
			}
		}
	}
	return nil
}

func (p *Profile) decode_tags() (err error) {
	t := &p.tags
	switch p.header.ColorSpace {
	case RGBColorSpace:
		if t.Has(RedColorantTagSignature) {
			for i := range 3 {
				if p.colorants[i], err = p.decode_xyz_tag(rgb_matrix_tags[i]); err != nil {
					return
				}
				if p.trcs[i], err = p.decode_curve_tag(rgb_matrix_tags[i+3]); err != nil {
					return
				}
			}
			p.has_matrix = true
		}
	case GrayColorSpace:
		if p.gray_trc, err = p.decode_curve_tag(GrayTRCTagSignature); err != nil {
			return
		}
	}
	if err = p.decode_luts(); err != nil {
		return
	}
	if raw, ok := t.Get(MediaWhitePointTagSignature); ok {
		w, err := xyzDecoder(raw)
		if err != nil {
			return fmt.Errorf("%s tag: %w", MediaWhitePointTagSignature, err)
		}
		p.media_white = &w
	}
	if raw, ok := t.Get(ChromaticAdaptationTagSignature); ok {
		m, err := chadDecoder(raw)
		if err != nil {
			return fmt.Errorf("%s tag: %w", ChromaticAdaptationTagSignature, err)
		}
		p.chad = &m
	}
	if raw, ok := t.Get(DescSignature); ok {
		if p.description, err = descriptionDecoder(raw); err != nil {
			return fmt.Errorf("%s tag: %w", DescSignature, err)
		}
	}
	return nil
}

func (p *Profile) has_lut() bool {
	return p.a2b[0] != nil || p.b2a[0] != nil
}

// finalize checks that the tags needed for the colour space are present
// and computes derived values
func (p *Profile) finalize() error {
	switch p.header.ColorSpace {
	case RGBColorSpace:
		if !p.has_matrix && !p.has_lut() {
			return invalid("RGB profile needs either colorant and TRC tags or an A2B0 or B2A0 tag")
		}
	case GrayColorSpace:
		if p.gray_trc == nil {
			return invalid("gray profile has no kTRC tag")
		}
	case CMYKColorSpace:
		if !p.has_lut() {
			return invalid("CMYK profile needs an A2B0 or B2A0 tag")
		}
	}
	p.uses_clut = p.has_lut() && (p.header.ColorSpace == CMYKColorSpace || (p.header.ColorSpace == RGBColorSpace && !p.has_matrix))
	if p.has_matrix {
		for col, c := range p.colorants {
			p.rgb_to_xyz[0][col], p.rgb_to_xyz[1][col], p.rgb_to_xyz[2][col] = c.X, c.Y, c.Z
		}
		p.is_srgb = matches_srgb(p)
	}
	return nil
}

func (p *Profile) Header() Header                   { return p.header }
func (p *Profile) ColorSpace() Signature            { return p.header.ColorSpace }
func (p *Profile) PCS() Signature                   { return p.header.PCS }
func (p *Profile) DeviceClass() Signature           { return p.header.DeviceClass }
func (p *Profile) RenderingIntent() RenderingIntent { return p.header.RenderingIntent }
func (p *Profile) Description() string              { return p.description }
func (p *Profile) NumChannels() int                 { return p.header.ColorSpace.NumChannels() }

// UsesCLUT reports whether transforms use the A2B/B2A lookup tables rather
// than the colorant matrix and TRCs
func (p *Profile) UsesCLUT() bool { return p.uses_clut }

// IsSRGB reports whether the profile is colorimetrically equivalent to sRGB
func (p *Profile) IsSRGB() bool { return p.is_srgb }

// HasMatrix reports whether the profile has colorant and TRC tags (RGB) or a
// kTRC tag (Gray)
func (p *Profile) HasMatrix() bool { return p.has_matrix || p.gray_trc != nil }

// Colorants returns the red, green and blue colorant tags of an RGB matrix profile
func (p *Profile) Colorants() (ans [3]XYZType, ok bool) { return p.colorants, p.has_matrix }
func (p *Profile) TRCs() (ans [3]Curve, ok bool)        { return p.trcs, p.has_matrix }
func (p *Profile) GrayTRC() Curve                       { return p.gray_trc }

// RGBToXYZ is the matrix whose columns are the colorants
func (p *Profile) RGBToXYZ() colorconv.Mat3 { return p.rgb_to_xyz }

func (p *Profile) ChromaticAdaptation() (colorconv.Mat3, bool) {
	if p.chad == nil {
		return colorconv.Identity, false
	}
	return *p.chad, true
}

func (p *Profile) MediaWhitePoint() (XYZType, bool) {
	if p.media_white == nil {
		return D50, false
	}
	return *p.media_white, true
}

// AdaptationToD50 maps XYZ relative to the media white point to XYZ
// relative to D50. It is the chad tag if present, otherwise a Bradford
// adaptation from the wtpt tag, otherwise identity.
func (p *Profile) AdaptationToD50() colorconv.Mat3 {
	if p.chad != nil {
		return *p.chad
	}
	if p.media_white != nil && p.media_white.Y > 0 {
		return colorconv.AdaptationMatrix(p.media_white.Vec3(), colorconv.WhiteD50)
	}
	return colorconv.Identity
}

// TagSignatures lists the tags of the profile in the order they appear
func (p *Profile) TagSignatures() []Signature { return p.tags.Signatures() }

// TagType returns the type signature of a tag, or UnknownSignature
func (p *Profile) TagType(sig Signature) Signature { return p.tags.TypeOf(sig) }

// LUT returns the A2Bx (to_pcs) or B2Ax tag with index idx or nil
func (p *Profile) LUT(to_pcs bool, idx int) ChannelTransformer {
	if idx < 0 || idx > 2 {
		return nil
	}
	return IfElse(to_pcs, p.a2b[idx], p.b2a[idx])
}

func (p *Profile) lut_for_intent(to_pcs bool, intent RenderingIntent) ChannelTransformer {
	if ans := p.LUT(to_pcs, intent.lut_tag_index()); ans != nil {
		return ans
	}
	return p.LUT(to_pcs, 0)
}

func (p *Profile) String() string {
	return fmt.Sprintf("Profile{%s desc: %q clut: %v srgb: %v}", p.header, p.description, p.uses_clut, p.is_srgb)
}

// Scale factors between LUT PCS XYZ encoding (1.0 is 0x8000) and XYZ
const (
	lut_to_xyz = 65535.0 / 32768.0
	xyz_to_lut = 32768.0 / 65535.0
)

// TransformToPCS returns the pipeline mapping normalized device values to
// PCS XYZ relative to D50
func (p *Profile) TransformToPCS(intent RenderingIntent) (ChannelTransformer, error) {
	ans := &Pipeline{}
	switch {
	case p.uses_clut:
		lut := p.lut_for_intent(true, intent)
		if lut == nil {
			return nil, unsupported("profile has no A2B tag and its B2A tag cannot be inverted")
		}
		ans.Append(lut, &ScaleTransformer{n: 3, scale: lut_to_xyz})
	case p.header.ColorSpace == GrayColorSpace:
		ans.Append(NewCurveTransformer(p.gray_trc), GrayToXYZ(0))
	default:
		ans.Append(NewCurveTransformer(p.trcs[:]...), NewMatrixTransformer(p.rgb_to_xyz))
	}
	return ans, nil
}

// TransformFromPCS returns the pipeline mapping PCS XYZ relative to D50 to
// normalized device values
func (p *Profile) TransformFromPCS(intent RenderingIntent) (ChannelTransformer, error) {
	ans := &Pipeline{}
	switch {
	case p.uses_clut:
		lut := p.lut_for_intent(false, intent)
		if lut == nil {
			return nil, unsupported("profile has no B2A tag and its A2B tag cannot be inverted")
		}
		ans.Append(&ScaleTransformer{n: 3, scale: xyz_to_lut}, lut)
	case p.header.ColorSpace == GrayColorSpace:
		ans.Append(XYZToGray(0), NewInverseCurveTransformer(p.gray_trc))
	default:
		inv, err := p.XYZToRGB()
		if err != nil {
			return nil, err
		}
		ans.Append(NewMatrixTransformer(inv), NewInverseCurveTransformer(p.trcs[:]...))
	}
	return ans, nil
}

// XYZToRGB is the inverse of the colorant matrix
func (p *Profile) XYZToRGB() (colorconv.Mat3, error) {
	inv, err := p.rgb_to_xyz.Inverse()
	if err != nil {
		return inv, fmt.Errorf("%w: colorant matrix is singular", ErrInvalidColorPrimaries)
	}
	return inv, nil
}

var srgb_tolerance = struct{ colorant, curve float64 }{0.001, 0.002}

func matches_srgb(p *Profile) bool {
	if p.header.ColorSpace != RGBColorSpace {
		return false
	}
	expected := srgb_colorants()
	for i, c := range p.colorants {
		e := expected[i]
		if math.Abs(c.X-e.X) > srgb_tolerance.colorant || math.Abs(c.Y-e.Y) > srgb_tolerance.colorant || math.Abs(c.Z-e.Z) > srgb_tolerance.colorant {
			return false
		}
	}
	for _, c := range p.trcs {
		if !is_srgb_curve(c) {
			return false
		}
	}
	return true
}

func is_srgb_curve(c Curve) bool {
	if q, ok := c.(*ParametricCurve); ok && q.function == SplitFunction && slices.Equal(q.Parameters(), srgb_curve().Parameters()) {
		return true
	}
	for i := range 65 {
		x := float64(i) / 64
		if math.Abs(c.Transform(x)-colorconv.SRGBToLinear(x)) > srgb_tolerance.curve {
			return false
		}
	}
	return true
}
