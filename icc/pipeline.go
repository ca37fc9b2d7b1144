package icc

import (
	"fmt"
	"strings"

	"github.com/kovidgoyal/qcms/colorconv"
)

// Largest number of channels any stage handles
const MaxChannels = 4

// ChannelTransformer is one floating point stage of a colour pipeline.
// Transform reads NumInputs() values from in and writes NumOutputs() values
// to out. in and out must not overlap.
type ChannelTransformer interface {
	Transform(out, in []float64)
	NumInputs() int
	NumOutputs() int
	String() string
}

// MatrixTransformer multiplies by a 3x3 matrix and adds an offset
type MatrixTransformer struct {
	m      colorconv.Mat3
	offset colorconv.Vec3
}

func NewMatrixTransformer(m colorconv.Mat3) *MatrixTransformer {
	return &MatrixTransformer{m: m}
}

func (c *MatrixTransformer) NumInputs() int  { return 3 }
func (c *MatrixTransformer) NumOutputs() int { return 3 }
func (c *MatrixTransformer) String() string  { return fmt.Sprintf("Matrix{%v + %v}", c.m, c.offset) }

func (c *MatrixTransformer) Matrix() colorconv.Mat3 { return c.m }

func (c *MatrixTransformer) Transform(out, in []float64) {
	m := &c.m
	r, g, b := in[0], in[1], in[2]
	out[0] = m[0][0]*r + m[0][1]*g + m[0][2]*b + c.offset[0]
	out[1] = m[1][0]*r + m[1][1]*g + m[1][2]*b + c.offset[1]
	out[2] = m[2][0]*r + m[2][1]*g + m[2][2]*b + c.offset[2]
}

// CurveTransformer applies one curve per channel
type CurveTransformer struct {
	curves  []Curve
	inverse bool
}

func NewCurveTransformer(curves ...Curve) *CurveTransformer {
	return &CurveTransformer{curves: curves}
}

func NewInverseCurveTransformer(curves ...Curve) *CurveTransformer {
	return &CurveTransformer{curves: curves, inverse: true}
}

func (c *CurveTransformer) NumInputs() int  { return len(c.curves) }
func (c *CurveTransformer) NumOutputs() int { return len(c.curves) }
func (c *CurveTransformer) String() string {
	items := make([]string, len(c.curves))
	for i, x := range c.curves {
		items[i] = x.String()
	}
	return fmt.Sprintf("%s{%s}", IfElse(c.inverse, "InverseCurves", "Curves"), strings.Join(items, ", "))
}

func (c *CurveTransformer) Transform(out, in []float64) {
	if c.inverse {
		for i, x := range c.curves {
			out[i] = x.InverseTransform(clamp01(in[i]))
		}
	} else {
		for i, x := range c.curves {
			out[i] = x.Transform(clamp01(in[i]))
		}
	}
}

// ScaleTransformer multiplies every channel by a constant. Used to move
// between the 1.15 fixed point PCS XYZ encoding of LUT tags and XYZ.
type ScaleTransformer struct {
	n     int
	scale float64
}

func (c *ScaleTransformer) NumInputs() int  { return c.n }
func (c *ScaleTransformer) NumOutputs() int { return c.n }
func (c *ScaleTransformer) String() string  { return fmt.Sprintf("Scale{%v}", c.scale) }
func (c *ScaleTransformer) Transform(out, in []float64) {
	for i := range c.n {
		out[i] = in[i] * c.scale
	}
}

// GrayToXYZ maps luminance onto the D50 neutral axis
type GrayToXYZ int

func (c GrayToXYZ) NumInputs() int  { return 1 }
func (c GrayToXYZ) NumOutputs() int { return 3 }
func (c GrayToXYZ) String() string  { return "GrayToXYZ" }
func (c GrayToXYZ) Transform(out, in []float64) {
	out[0], out[1], out[2] = D50.X*in[0], D50.Y*in[0], D50.Z*in[0]
}

// XYZToGray extracts relative luminance
type XYZToGray int

func (c XYZToGray) NumInputs() int  { return 3 }
func (c XYZToGray) NumOutputs() int { return 1 }
func (c XYZToGray) String() string  { return "XYZToGray" }
func (c XYZToGray) Transform(out, in []float64) {
	out[0] = in[1] / D50.Y
}

// ClampTransformer clamps every channel to [0,1]
type ClampTransformer int

func (c ClampTransformer) NumInputs() int  { return int(c) }
func (c ClampTransformer) NumOutputs() int { return int(c) }
func (c ClampTransformer) String() string  { return "Clamp" }
func (c ClampTransformer) Transform(out, in []float64) {
	for i := range int(c) {
		out[i] = clamp01(in[i])
	}
}

// Pipeline chains transformers, merging adjacent matrices
type Pipeline struct {
	transformers []ChannelTransformer
}

var _ ChannelTransformer = (*Pipeline)(nil)

func (p *Pipeline) Append(c ...ChannelTransformer) {
	for _, x := range c {
		if x == nil {
			continue
		}
		if q, ok := x.(*Pipeline); ok {
			p.Append(q.transformers...)
			continue
		}
		if cm, ok := x.(*MatrixTransformer); ok {
			if cm.m.IsIdentity() && cm.offset == (colorconv.Vec3{}) {
				continue
			}
			if len(p.transformers) > 0 {
				if prev, ok := p.transformers[len(p.transformers)-1].(*MatrixTransformer); ok && prev.offset == (colorconv.Vec3{}) && cm.offset == (colorconv.Vec3{}) {
					p.transformers[len(p.transformers)-1] = &MatrixTransformer{m: cm.m.Mul(prev.m)}
					continue
				}
			}
		}
		p.transformers = append(p.transformers, x)
	}
}

func (p *Pipeline) Len() int { return len(p.transformers) }

func (p *Pipeline) NumInputs() int {
	if len(p.transformers) == 0 {
		return 0
	}
	return p.transformers[0].NumInputs()
}

func (p *Pipeline) NumOutputs() int {
	if len(p.transformers) == 0 {
		return 0
	}
	return p.transformers[len(p.transformers)-1].NumOutputs()
}

// Validate checks that the output of every stage feeds the next
func (p *Pipeline) Validate() error {
	for i, t := range p.transformers {
		if t.NumInputs() > MaxChannels || t.NumOutputs() > MaxChannels {
			return unsupported("pipeline stage %s has too many channels", t)
		}
		if i > 0 {
			if prev := p.transformers[i-1]; prev.NumOutputs() != t.NumInputs() {
				return invalid("pipeline stage %s produces %d channels but %s needs %d", prev, prev.NumOutputs(), t, t.NumInputs())
			}
		}
	}
	return nil
}

func (p *Pipeline) Transform(out, in []float64) {
	var a, b [MaxChannels]float64
	src := a[:]
	copy(src, in[:p.NumInputs()])
	dest := b[:]
	for _, t := range p.transformers {
		t.Transform(dest, src)
		src, dest = dest, src
	}
	copy(out[:p.NumOutputs()], src)
}

func (p *Pipeline) String() string {
	items := make([]string, len(p.transformers))
	for i, t := range p.transformers {
		items[i] = t.String()
	}
	return strings.Join(items, " → ")
}

func IfElse[T any](condition bool, if_val T, else_val T) T {
	if condition {
		return if_val
	}
	return else_val
}
