package colorconv

import (
	"errors"
	"fmt"
	"math"
)

// This package holds the colorimetry used to build profile matrices: CIE xyY
// to XYZ conversion, construction of RGB to XYZ matrices from a white point
// and three primaries, and Bradford chromatic adaptation to the D50 Profile
// Connection Space illuminant.
//
// Matrices are row major and multiply column vectors, so the columns of an
// RGB to XYZ matrix are the XYZ values of the red, green and blue primaries.

type Vec3 [3]float64
type Mat3 [3][3]float64

// Determinants with a magnitude lower than this are assumed zero when inverting
const MATRIX_DET_TOLERANCE = 0.0001

var ErrInvalidColorPrimaries = errors.New("invalid color primaries")

// Reference whites (CIE XYZ) normalized so Y = 1.0. WhiteD50 is the
// ICC Profile Connection Space illuminant, as stored in profile headers.
var (
	WhiteD50 = Vec3{0.9642, 1.0, 0.8249}
	WhiteD65 = Vec3{0.95047, 1.00000, 1.08883}
)

var Identity = Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// Bradford cone response matrix
var bradford = Mat3{
	{0.8951, 0.2664, -0.1614},
	{-0.7502, 1.7135, 0.0367},
	{0.0389, -0.0685, 1.0296},
}

type XYY struct {
	X, Y, LuminanceY float64
}

// Chromaticities of the three primaries of an RGB colour space
type Primaries struct {
	Red, Green, Blue XYY
}

var (
	// D65 white in xyY
	D65 = XYY{0.3127, 0.3290, 1}
	// D50 white in xyY
	D50 = XYY{0.3457, 0.3585, 1}

	SRGBPrimaries = Primaries{
		Red:   XYY{0.64, 0.33, 1},
		Green: XYY{0.30, 0.60, 1},
		Blue:  XYY{0.15, 0.06, 1},
	}
	DisplayP3Primaries = Primaries{
		Red:   XYY{0.680, 0.320, 1},
		Green: XYY{0.265, 0.690, 1},
		Blue:  XYY{0.150, 0.060, 1},
	}
	AdobeRGBPrimaries = Primaries{
		Red:   XYY{0.64, 0.33, 1},
		Green: XYY{0.21, 0.71, 1},
		Blue:  XYY{0.15, 0.06, 1},
	}

	// Rec. 709 shares its primaries with sRGB
	Rec709Primaries = SRGBPrimaries
)

func (c XYY) String() string {
	return fmt.Sprintf("xyY{%.4f %.4f %.4f}", c.X, c.Y, c.LuminanceY)
}

// XYYToXYZ converts a chromaticity with luminance to tristimulus values.
// A zero y is a degenerate chromaticity and is rejected.
func XYYToXYZ(c XYY) (Vec3, error) {
	if c.Y == 0 {
		return Vec3{}, fmt.Errorf("%w: chromaticity %s has zero y", ErrInvalidColorPrimaries, c)
	}
	return Vec3{
		c.X * c.LuminanceY / c.Y,
		c.LuminanceY,
		(1 - c.X - c.Y) * c.LuminanceY / c.Y,
	}, nil
}

// BuildRGBToXYZ returns the matrix mapping linear RGB in the colour space
// defined by white and p to XYZ relative to the D50 illuminant.
// Singular or degenerate primaries return ErrInvalidColorPrimaries.
func BuildRGBToXYZ(white XYY, p Primaries) (ans Mat3, err error) {
	for _, c := range []XYY{p.Red, p.Green, p.Blue} {
		if c.Y == 0 {
			return ans, fmt.Errorf("%w: primary %s has zero y", ErrInvalidColorPrimaries, c)
		}
	}
	wp, err := XYYToXYZ(XYY{white.X, white.Y, 1})
	if err != nil {
		return ans, err
	}
	primaries := Mat3{
		{p.Red.X, p.Green.X, p.Blue.X},
		{p.Red.Y, p.Green.Y, p.Blue.Y},
		{1 - p.Red.X - p.Red.Y, 1 - p.Green.X - p.Green.Y, 1 - p.Blue.X - p.Blue.Y},
	}
	inv, err := primaries.Inverse()
	if err != nil {
		return ans, fmt.Errorf("%w: %w", ErrInvalidColorPrimaries, err)
	}
	coefs := inv.MulVec(wp)
	for i := range 3 {
		for j := range 3 {
			ans[i][j] = primaries[i][j] * coefs[j]
		}
	}
	return AdaptToD50(ans, wp), nil
}

// AdaptationMatrix constructs a 3x3 matrix that adapts XYZ values
// from sourceWhite to targetWhite using the Bradford method.
func AdaptationMatrix(sourceWhite, targetWhite Vec3) Mat3 {
	src := bradford.MulVec(sourceWhite)
	tgt := bradford.MulVec(targetWhite)
	diag := Mat3{
		{tgt[0] / src[0], 0, 0},
		{0, tgt[1] / src[1], 0},
		{0, 0, tgt[2] / src[2]},
	}
	inv, _ := bradford.Inverse()
	return inv.Mul(diag.Mul(bradford))
}

// AdaptToD50 re-expresses a matrix producing XYZ relative to white as one
// producing XYZ relative to D50.
func AdaptToD50(m Mat3, white Vec3) Mat3 {
	return AdaptationMatrix(white, WhiteD50).Mul(m)
}

func (a Mat3) Mul(b Mat3) Mat3 {
	var out Mat3
	for i := range 3 {
		for j := range 3 {
			sum := 0.0
			for k := range 3 {
				sum += a[i][k] * b[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

func (m Mat3) Determinant() float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

func (mat Mat3) Inverse() (ans Mat3, err error) {
	det := mat.Determinant()
	if math.Abs(det) < MATRIX_DET_TOLERANCE {
		return ans, fmt.Errorf("matrix is singular and cannot be inverted")
	}
	invDet := 1 / det
	adj := Mat3{
		{
			(mat[1][1]*mat[2][2] - mat[1][2]*mat[2][1]),
			(mat[0][2]*mat[2][1] - mat[0][1]*mat[2][2]),
			(mat[0][1]*mat[1][2] - mat[0][2]*mat[1][1]),
		},
		{
			(mat[1][2]*mat[2][0] - mat[1][0]*mat[2][2]),
			(mat[0][0]*mat[2][2] - mat[0][2]*mat[2][0]),
			(mat[0][2]*mat[1][0] - mat[0][0]*mat[1][2]),
		},
		{
			(mat[1][0]*mat[2][1] - mat[1][1]*mat[2][0]),
			(mat[0][1]*mat[2][0] - mat[0][0]*mat[2][1]),
			(mat[0][0]*mat[1][1] - mat[0][1]*mat[1][0]),
		},
	}
	for i := range 3 {
		for j := range 3 {
			ans[i][j] = invDet * adj[i][j]
		}
	}
	return
}

func (m Mat3) Transpose() (ans Mat3) {
	for i := range 3 {
		for j := range 3 {
			ans[i][j] = m[j][i]
		}
	}
	return
}

func (m Mat3) IsIdentity() bool { return m == Identity }

// Equals reports whether every element of a and b differs by at most tolerance
func (a Mat3) Equals(b Mat3, tolerance float64) bool {
	for i := range 3 {
		for j := range 3 {
			if math.Abs(a[i][j]-b[i][j]) > tolerance {
				return false
			}
		}
	}
	return true
}

// clamp01 clamps value to [0,1]
func clamp01(x float64) float64 {
	return max(0, min(x, 1))
}

// SRGBToLinear applies the inverse sRGB companding function
func SRGBToLinear(c float64) float64 {
	c = clamp01(c)
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// LinearToSRGB applies the sRGB (gamma) companding function to a linear component.
func LinearToSRGB(c float64) float64 {
	// clip small negative rounding noise at this stage for stability
	if c <= 0 {
		return 0.0
	}
	if c <= 0.0031308 {
		return 12.92 * c
	}
	return clamp01(1.055*math.Pow(c, 1.0/2.4) - 0.055)
}
