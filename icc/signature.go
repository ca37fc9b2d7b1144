package icc

type Signature uint32

const (
	UnknownSignature     Signature = 0
	ProfileFileSignature Signature = 0x61637370 // 'acsp'

	// Colour spaces
	RGBColorSpace  Signature = 0x52474220 // 'RGB '
	GrayColorSpace Signature = 0x47524159 // 'GRAY'
	CMYKColorSpace Signature = 0x434D594B // 'CMYK'
	XYZColorSpace  Signature = 0x58595A20 // 'XYZ '
	LabColorSpace  Signature = 0x4C616220 // 'Lab '

	// Device classes
	InputDeviceClass      Signature = 0x73636E72 // 'scnr'
	DisplayDeviceClass    Signature = 0x6D6E7472 // 'mntr'
	OutputDeviceClass     Signature = 0x70727472 // 'prtr'
	LinkDeviceClass       Signature = 0x6C696E6B // 'link'
	AbstractDeviceClass   Signature = 0x61627374 // 'abst'
	ColorSpaceDeviceClass Signature = 0x73706163 // 'spac'
	NamedColorDeviceClass Signature = 0x6E6D636C // 'nmcl'

	// Tags
	RedColorantTagSignature         Signature = 0x7258595A // 'rXYZ'
	GreenColorantTagSignature       Signature = 0x6758595A // 'gXYZ'
	BlueColorantTagSignature        Signature = 0x6258595A // 'bXYZ'
	RedTRCTagSignature              Signature = 0x72545243 // 'rTRC'
	GreenTRCTagSignature            Signature = 0x67545243 // 'gTRC'
	BlueTRCTagSignature             Signature = 0x62545243 // 'bTRC'
	GrayTRCTagSignature             Signature = 0x6B545243 // 'kTRC'
	MediaWhitePointTagSignature     Signature = 0x77747074 // 'wtpt'
	ChromaticAdaptationTagSignature Signature = 0x63686164 // 'chad'
	AToB0TagSignature               Signature = 0x41324230 // 'A2B0'
	AToB1TagSignature               Signature = 0x41324231 // 'A2B1'
	AToB2TagSignature               Signature = 0x41324232 // 'A2B2'
	BToA0TagSignature               Signature = 0x42324130 // 'B2A0'
	BToA1TagSignature               Signature = 0x42324131 // 'B2A1'
	BToA2TagSignature               Signature = 0x42324132 // 'B2A2'
	DescSignature                   Signature = 0x64657363 // 'desc'
	CopyrightTagSignature           Signature = 0x63707274 // 'cprt'

	// Tag types
	XYZTypeSignature               Signature = 0x58595A20 // 'XYZ '
	CurveTypeSignature             Signature = 0x63757276 // 'curv'
	ParametricCurveTypeSignature   Signature = 0x70617261 // 'para'
	S15Fixed16ArrayTypeSignature   Signature = 0x73663332 // 'sf32'
	Lut8TypeSignature              Signature = 0x6D667431 // 'mft1'
	Lut16TypeSignature             Signature = 0x6D667432 // 'mft2'
	LutAtoBTypeSignature           Signature = 0x6D414220 // 'mAB '
	LutBtoATypeSignature           Signature = 0x6D424120 // 'mBA '
	TextTypeSignature              Signature = 0x74657874 // 'text'
	MultiLocalisedUnicodeSignature Signature = 0x6D6C7563 // 'mluc'
	TextDescriptionTypeSignature   Signature = 0x64657363 // 'desc'
)

func maskNull(b byte) byte {
	switch b {
	case 0:
		return ' '
	default:
		return b
	}
}

func (s Signature) String() string {
	v := []byte{
		(maskNull(byte((s >> 24) & 0xff))),
		(maskNull(byte((s >> 16) & 0xff))),
		(maskNull(byte((s >> 8) & 0xff))),
		(maskNull(byte(s & 0xff))),
	}
	return "'" + string(v) + "'"
}

// NumChannels is the number of device channels of a colour space signature,
// or zero for unsupported colour spaces.
func (s Signature) NumChannels() int {
	switch s {
	case RGBColorSpace, XYZColorSpace, LabColorSpace:
		return 3
	case GrayColorSpace:
		return 1
	case CMYKColorSpace:
		return 4
	}
	return 0
}

func SignatureFromString(x string) Signature {
	var b [4]byte
	copy(b[:], "    ")
	copy(b[:], x)
	return Signature(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
}
