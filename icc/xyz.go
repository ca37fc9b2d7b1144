package icc

import (
	"fmt"

	"github.com/kovidgoyal/qcms/colorconv"
)

type XYZType struct{ X, Y, Z float64 }

// D50 is the Profile Connection Space illuminant
var D50 = XYZType{colorconv.WhiteD50[0], colorconv.WhiteD50[1], colorconv.WhiteD50[2]}

func (x XYZType) String() string       { return fmt.Sprintf("XYZ{%.4f %.4f %.4f}", x.X, x.Y, x.Z) }
func (x XYZType) Vec3() colorconv.Vec3 { return colorconv.Vec3{x.X, x.Y, x.Z} }

// Quantized returns x as it would be after a round trip through an XYZType tag
func (x XYZType) Quantized() XYZType {
	return XYZType{QuantizeS15Fixed16(x.X), QuantizeS15Fixed16(x.Y), QuantizeS15Fixed16(x.Z)}
}

func xyz_from_vec(v colorconv.Vec3) XYZType { return XYZType{v[0], v[1], v[2]} }

func xyzDecoder(raw []byte) (ans XYZType, err error) {
	r := NewReader(raw)
	if err = expect_type(r, XYZTypeSignature); err != nil {
		return
	}
	if ans, err = r.XYZ(); err != nil {
		return ans, invalid("XYZ tag too short")
	}
	return
}

func xyzEncoder(w *Writer, x XYZType) {
	w.Signature(XYZTypeSignature)
	w.Zeros(4)
	w.XYZ(x)
}

// expect_type consumes the type signature and reserved bytes of a tag
func expect_type(r *Reader, allowed ...Signature) error {
	sig, err := r.Signature()
	if err != nil {
		return invalid("tag too short")
	}
	found := false
	for _, q := range allowed {
		if q == sig {
			found = true
			break
		}
	}
	if !found {
		return unsupported("tag type %s not supported, expected one of %v", sig, allowed)
	}
	if err = r.Skip(4); err != nil {
		return invalid("tag too short")
	}
	return nil
}
