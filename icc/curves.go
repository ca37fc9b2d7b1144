package icc

import (
	"fmt"
	"math"
	"slices"
)

// Largest number of entries accepted in a sampled curve
const MaxCurveEntries = 40000

// Curve is a tone reproduction curve mapping [0,1] to [0,1]
type Curve interface {
	Transform(x float64) float64
	InverseTransform(y float64) float64
	String() string
}

type IdentityCurve int

// GammaCurve is a curv tag with a single u8Fixed8Number exponent
type GammaCurve struct {
	gamma, inv_gamma float64
}

// PointsCurve is a curv tag sampled at evenly spaced inputs
type PointsCurve struct {
	points []uint16
}

type ParametricCurveFunction uint16

const (
	SimpleGammaFunction     ParametricCurveFunction = 0 // Y = X^g
	ConditionalZeroFunction ParametricCurveFunction = 1 // Y = (aX+b)^g for X >= -b/a, else 0
	ConditionalCFunction    ParametricCurveFunction = 2 // Y = (aX+b)^g + c for X >= -b/a, else c
	SplitFunction           ParametricCurveFunction = 3 // Y = (aX+b)^g for X >= d, else cX
	ComplexFunction         ParametricCurveFunction = 4 // Y = (aX+b)^g + e for X >= d, else cX + f
)

// NumParameters is the number of s15Fixed16Number parameters of a function
// type or zero for unknown types.
func (f ParametricCurveFunction) NumParameters() int {
	switch f {
	case SimpleGammaFunction:
		return 1
	case ConditionalZeroFunction:
		return 3
	case ConditionalCFunction:
		return 4
	case SplitFunction:
		return 5
	case ComplexFunction:
		return 7
	}
	return 0
}

// ParametricCurve is a para tag. Parameters are in the ICC order g, a, b, c, d, e, f.
type ParametricCurve struct {
	function            ParametricCurveFunction
	params              [7]float64
	g, a, b, c, d, e, f float64
	inv_g, threshold    float64
}

var _ Curve = (*IdentityCurve)(nil)
var _ Curve = (*GammaCurve)(nil)
var _ Curve = (*PointsCurve)(nil)
var _ Curve = (*ParametricCurve)(nil)

func NewGammaCurve(gamma float64) (*GammaCurve, error) {
	c := &GammaCurve{gamma: U8Fixed8ToFloat(FloatToU8Fixed8(gamma))}
	// a zero exponent is the constant curve x^0 = 1, whose inverse maps
	// everything below 1 to 0
	c.inv_gamma = IfElse(c.gamma == 0, math.Inf(1), 1/c.gamma)
	return c, nil
}

func NewPointsCurve(points []uint16) (*PointsCurve, error) {
	if len(points) < 2 {
		return nil, invalid("sampled curve needs at least two points, not: %d", len(points))
	}
	if len(points) > MaxCurveEntries {
		return nil, fmt.Errorf("%w: sampled curve with %d entries", ErrAllocationFailure, len(points))
	}
	return &PointsCurve{points: slices.Clone(points)}, nil
}

// NewParametricCurve creates a curve with parameters quantized to what a para tag can store
func NewParametricCurve(function ParametricCurveFunction, params ...float64) (*ParametricCurve, error) {
	n := function.NumParameters()
	if n == 0 {
		return nil, unsupported("unknown parametric function type: %d", function)
	}
	if len(params) != n {
		return nil, invalid("parametric function type %d needs %d parameters not %d", function, n, len(params))
	}
	c := &ParametricCurve{function: function}
	for i, p := range params {
		c.params[i] = QuantizeS15Fixed16(p)
	}
	if err := c.prepare(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c IdentityCurve) Transform(x float64) float64        { return x }
func (c IdentityCurve) InverseTransform(x float64) float64 { return x }
func (c IdentityCurve) String() string                     { return "IdentityCurve{}" }

func (c GammaCurve) Gamma() float64 { return c.gamma }

func (c GammaCurve) Transform(x float64) float64 {
	if c.gamma == 0 {
		return 1
	}
	if x <= 0 {
		return 0
	}
	return math.Pow(x, c.gamma)
}

func (c GammaCurve) InverseTransform(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Pow(x, c.inv_gamma)
}

func (c GammaCurve) String() string { return fmt.Sprintf("GammaCurve{%f}", c.gamma) }

func (c PointsCurve) Points() []uint16 { return c.points }

func (c PointsCurve) Transform(x float64) float64 {
	return lut_interp_linear(clamp01(x), c.points)
}

func (c PointsCurve) InverseTransform(y float64) float64 {
	v := uint16(math.Floor(clamp01(y)*65535 + 0.5))
	return float64(LutInverseInterp16(v, c.points)) / 65535
}

func (c PointsCurve) String() string { return fmt.Sprintf("PointsCurve{%d}", len(c.points)) }

// prepare maps every function type onto the general form
// Y = (aX+b)^g + e for X >= d, else cX + f
func (c *ParametricCurve) prepare() error {
	p := c.params
	c.g, c.a, c.b, c.c, c.d, c.e, c.f = p[0], p[1], p[2], p[3], p[4], p[5], p[6]
	if c.g == 0 {
		return invalid("parametric curve has zero gamma value")
	}
	if c.function != SimpleGammaFunction && c.a == 0 {
		return invalid("parametric curve type %d has zero a parameter", c.function)
	}
	c.inv_g = 1 / c.g
	switch c.function {
	case SimpleGammaFunction:
		c.a, c.b, c.c, c.d, c.e, c.f = 1, 0, 0, math.Inf(-1), 0, 0
	case ConditionalZeroFunction:
		c.c, c.d, c.e, c.f = 0, -c.b/c.a, 0, 0
	case ConditionalCFunction:
		c.d, c.e, c.f = -c.b/c.a, c.c, c.c
		c.c = 0
	case SplitFunction:
		c.e, c.f = 0, 0
	}
	if math.IsInf(c.d, -1) {
		c.threshold = math.Inf(-1)
	} else {
		// Y at the break point
		c.threshold = c.eval_power(c.d)
	}
	return nil
}

func (c *ParametricCurve) Function() ParametricCurveFunction { return c.function }

// Parameters returns the parameters as stored in the tag
func (c *ParametricCurve) Parameters() []float64 {
	return slices.Clone(c.params[:c.function.NumParameters()])
}

func (c *ParametricCurve) eval_power(x float64) float64 {
	if e := c.a*x + c.b; e > 0 {
		return math.Pow(e, c.g) + c.e
	}
	return c.e
}

func (c *ParametricCurve) Transform(x float64) float64 {
	if x >= c.d {
		return c.eval_power(x)
	}
	return c.c*x + c.f
}

func (c *ParametricCurve) InverseTransform(y float64) float64 {
	if y < c.threshold {
		// linear segment
		if c.c == 0 {
			return max(0, c.d)
		}
		return (y - c.f) / c.c
	}
	e := y - c.e
	if e <= 0 {
		return max(0, c.d)
	}
	return (math.Pow(e, c.inv_g) - c.b) / c.a
}

func (c *ParametricCurve) String() string {
	return fmt.Sprintf("ParametricCurve{type: %d params: %v}", c.function, c.Parameters())
}

func clamp01(v float64) float64 {
	return max(0, min(v, 1))
}

// curv tag, section 10.6 of ICC.1-2022-05.pdf
func curveDecoder(raw []byte) (Curve, error) {
	r := NewReader(raw)
	if err := expect_type(r, CurveTypeSignature); err != nil {
		return nil, err
	}
	count, err := r.Uint32()
	if err != nil {
		return nil, invalid("curv tag too short")
	}
	switch count {
	case 0:
		c := IdentityCurve(0)
		return &c, nil
	case 1:
		val, err := r.Uint16()
		if err != nil {
			return nil, invalid("curv tag missing gamma value")
		}
		if val == 256 {
			c := IdentityCurve(0)
			return &c, nil
		}
		return NewGammaCurve(U8Fixed8ToFloat(val))
	default:
		if count > MaxCurveEntries {
			return nil, invalid("curv tag has too many entries: %d", count)
		}
		points, err := r.Uint16s(int(count))
		if err != nil {
			return nil, invalid("curv tag truncated")
		}
		return &PointsCurve{points: points}, nil
	}
}

// para tag, section 10.18 of ICC.1-2022-05.pdf
func parametricCurveDecoder(raw []byte) (Curve, error) {
	r := NewReader(raw)
	if err := expect_type(r, ParametricCurveTypeSignature); err != nil {
		return nil, err
	}
	ft, err := r.Uint16()
	if err != nil {
		return nil, invalid("para tag too short")
	}
	function := ParametricCurveFunction(ft)
	n := function.NumParameters()
	if n == 0 {
		return nil, unsupported("unknown parametric function type: %d", ft)
	}
	if err = r.Skip(2); err != nil {
		return nil, invalid("para tag too short")
	}
	c := &ParametricCurve{function: function}
	for i := range n {
		if c.params[i], err = r.S15Fixed16(); err != nil {
			return nil, invalid("para tag too short")
		}
	}
	if err = c.prepare(); err != nil {
		return nil, err
	}
	return c, nil
}

// decode_curve handles either curve tag type, returning the number of
// bytes consumed rounded up to a multiple of four.
func decode_curve(raw []byte) (c Curve, consumed int, err error) {
	r := NewReader(raw)
	sig, err := r.Signature()
	if err != nil {
		return nil, 0, invalid("curve too short")
	}
	switch sig {
	case CurveTypeSignature:
		if c, err = curveDecoder(raw); err != nil {
			return
		}
		consumed = 12
		switch q := c.(type) {
		case *GammaCurve:
			consumed += 2
		case *PointsCurve:
			consumed += 2 * len(q.points)
		case *IdentityCurve:
			if len(raw) >= 12 && raw[11] == 1 {
				consumed += 2
			}
		}
	case ParametricCurveTypeSignature:
		if c, err = parametricCurveDecoder(raw); err != nil {
			return
		}
		consumed = 12 + 4*c.(*ParametricCurve).function.NumParameters()
	default:
		return nil, 0, unsupported("unknown curve type: %s", sig)
	}
	return c, align_to_4(consumed), nil
}

func encode_curve(w *Writer, c Curve) {
	switch q := c.(type) {
	case *ParametricCurve:
		w.Signature(ParametricCurveTypeSignature)
		w.Zeros(4)
		w.Uint16(uint16(q.function))
		w.Zeros(2)
		for _, p := range q.Parameters() {
			w.S15Fixed16(p)
		}
	case *GammaCurve:
		w.Signature(CurveTypeSignature)
		w.Zeros(4)
		w.Uint32(1)
		w.U8Fixed8(q.gamma)
	case *PointsCurve:
		w.Signature(CurveTypeSignature)
		w.Zeros(4)
		w.Uint32(uint32(len(q.points)))
		w.Uint16s(q.points)
	default:
		w.Signature(CurveTypeSignature)
		w.Zeros(4)
		w.Uint32(0)
	}
	w.Align()
}

// SampleCurve evaluates c at n evenly spaced points as 16-bit values
func SampleCurve(c Curve, n int) []uint16 {
	ans := make([]uint16, n)
	for i := range ans {
		ans[i] = uint16(clamp01(c.Transform(float64(i)/float64(n-1))) * 65535)
	}
	return ans
}
