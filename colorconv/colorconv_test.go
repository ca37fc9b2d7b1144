package colorconv

import (
	"errors"
	"math"
	"testing"
)

func nearlyEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestBuildRGBToXYZ_SRGB(t *testing.T) {
	m, err := BuildRGBToXYZ(D65, SRGBPrimaries)
	if err != nil {
		t.Fatal(err)
	}
	// Bradford adapted sRGB to XYZ(D50) matrix
	expected := Mat3{
		{0.4360747, 0.3850649, 0.1430804},
		{0.2225045, 0.7168786, 0.0606169},
		{0.0139322, 0.0971045, 0.7141733},
	}
	if !m.Equals(expected, 0.001) {
		t.Fatalf("unexpected sRGB matrix: %v", m)
	}
	// white maps to the D50 illuminant
	w := m.MulVec(Vec3{1, 1, 1})
	for i := range 3 {
		if !nearlyEqual(w[i], WhiteD50[i], 0.0005) {
			t.Fatalf("white does not map to D50: %v", w)
		}
	}
}

func TestBuildRGBToXYZ_Errors(t *testing.T) {
	cases := []struct {
		name  string
		white XYY
		p     Primaries
	}{
		{"collinear primaries", D65, Primaries{XYY{0.2, 0.2, 1}, XYY{0.3, 0.3, 1}, XYY{0.4, 0.4, 1}}},
		{"identical primaries", D65, Primaries{XYY{0.3, 0.3, 1}, XYY{0.3, 0.3, 1}, XYY{0.3, 0.3, 1}}},
		{"zero y primary", D65, Primaries{XYY{0.64, 0, 1}, XYY{0.3, 0.6, 1}, XYY{0.15, 0.06, 1}}},
		{"zero y white", XYY{0.3127, 0, 1}, SRGBPrimaries},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := BuildRGBToXYZ(tc.white, tc.p); !errors.Is(err, ErrInvalidColorPrimaries) {
				t.Fatalf("expected ErrInvalidColorPrimaries got: %v", err)
			}
		})
	}
}

func TestAdaptationMatrix(t *testing.T) {
	if m := AdaptationMatrix(WhiteD50, WhiteD50); !m.Equals(Identity, 1e-9) {
		t.Fatalf("adapting a white to itself is not identity: %v", m)
	}
	m := AdaptationMatrix(WhiteD65, WhiteD50)
	got := m.MulVec(WhiteD65)
	for i := range 3 {
		if !nearlyEqual(got[i], WhiteD50[i], 1e-9) {
			t.Fatalf("D65 does not adapt to D50: %v", got)
		}
	}
	// well known Bradford D65 -> D50 matrix
	expected := Mat3{
		{1.0478112, 0.0228866, -0.0501270},
		{0.0295424, 0.9904844, -0.0170491},
		{-0.0092345, 0.0150436, 0.7521316},
	}
	if !m.Equals(expected, 0.001) {
		t.Fatalf("unexpected adaptation matrix: %v", m)
	}
}

func TestInverse(t *testing.T) {
	m := Mat3{{2, 0, 1}, {1, 3, 0}, {0, 1, 4}}
	inv, err := m.Inverse()
	if err != nil {
		t.Fatal(err)
	}
	if p := m.Mul(inv); !p.Equals(Identity, 1e-12) {
		t.Fatalf("m * inv(m) != I: %v", p)
	}
	if _, err := (Mat3{}).Inverse(); err == nil {
		t.Fatal("inverting the zero matrix did not fail")
	}
}

func TestXYYToXYZ(t *testing.T) {
	v, err := XYYToXYZ(D65)
	if err != nil {
		t.Fatal(err)
	}
	if !nearlyEqual(v[0], 0.95047, 0.001) || v[1] != 1 || !nearlyEqual(v[2], 1.08883, 0.001) {
		t.Fatalf("unexpected D65 XYZ: %v", v)
	}
}

func TestSRGBCompanding(t *testing.T) {
	for i := range 256 {
		x := float64(i) / 255
		if y := LinearToSRGB(SRGBToLinear(x)); !nearlyEqual(x, y, 1e-9) {
			t.Fatalf("round trip failed for %v: %v", x, y)
		}
	}
}
