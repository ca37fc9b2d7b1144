package icc

import (
	"fmt"
	"strings"
)

const modular_header_size = 32

// ModularTag represents a modular tag section 10.12 and 10.13 of ICC.1-2022-05.pdf
type ModularTag struct {
	num_input_channels, num_output_channels int
	a_curves, m_curves, b_curves            []Curve
	clut                                    *CLUT
	matrix                                  *MatrixTransformer
	is_a_to_b                               bool
	pipeline                                Pipeline
}

var _ ChannelTransformer = (*ModularTag)(nil)

func (m *ModularTag) NumInputs() int              { return m.num_input_channels }
func (m *ModularTag) NumOutputs() int             { return m.num_output_channels }
func (m *ModularTag) IsAToB() bool                { return m.is_a_to_b }
func (m *ModularTag) Transform(out, in []float64) { m.pipeline.Transform(out, in) }

func (m *ModularTag) String() string {
	return fmt.Sprintf("%s{ %s }", IfElse(m.is_a_to_b, "mAB", "mBA"), m.pipeline.String())
}

func has_non_identity_curve(c []Curve) bool {
	for _, x := range c {
		if _, ok := x.(*IdentityCurve); !ok {
			return true
		}
	}
	return false
}

func curves_stage(c []Curve) ChannelTransformer {
	if has_non_identity_curve(c) {
		return NewCurveTransformer(c...)
	}
	return nil
}

// build the processing order: A, CLUT, M, matrix, B for mAB and the reverse for mBA
func (m *ModularTag) build_pipeline() error {
	var clut ChannelTransformer
	if m.clut != nil {
		clut = m.clut
	}
	var matrix ChannelTransformer
	if m.matrix != nil {
		matrix = m.matrix
	}
	stages := []ChannelTransformer{curves_stage(m.a_curves), clut, curves_stage(m.m_curves), matrix, curves_stage(m.b_curves)}
	if !m.is_a_to_b {
		stages = []ChannelTransformer{curves_stage(m.b_curves), matrix, curves_stage(m.m_curves), clut, curves_stage(m.a_curves)}
	}
	m.pipeline = Pipeline{}
	m.pipeline.Append(stages...)
	if m.pipeline.Len() == 0 {
		// all identity, keep a stage so the channel count is known
		m.pipeline.Append(ClampTransformer(m.num_input_channels))
	}
	if err := m.pipeline.Validate(); err != nil {
		return err
	}
	if m.pipeline.NumInputs() != m.num_input_channels || m.pipeline.NumOutputs() != m.num_output_channels {
		return invalid("modular tag stages do not match its %d input and %d output channels", m.num_input_channels, m.num_output_channels)
	}
	return nil
}

func read_modular_curves(raw []byte, offset uint32, n int) (ans []Curve, err error) {
	if offset == 0 {
		return nil, nil
	}
	if uint64(offset) >= uint64(len(raw)) {
		return nil, invalid("modular tag curve offset %d out of bounds", offset)
	}
	block := raw[offset:]
	ans = make([]Curve, n)
	for i := range n {
		var consumed int
		if ans[i], consumed, err = decode_curve(block); err != nil {
			return nil, err
		}
		if consumed >= len(block) {
			block = nil
		} else {
			block = block[consumed:]
		}
	}
	return
}

// embedded_clut_decoder reads the CLUT of a modular tag, which has its own grid point count per channel
func embedded_clut_decoder(raw []byte, offset uint32, num_inputs, num_outputs int) (*CLUT, error) {
	if uint64(offset) >= uint64(len(raw)) {
		return nil, invalid("modular tag CLUT offset %d out of bounds", offset)
	}
	r := NewReader(raw[offset:])
	if r.Len() < 20 {
		return nil, invalid("modular tag CLUT too short")
	}
	grid_points := make([]int, num_inputs)
	for i := range grid_points {
		g, _ := r.Uint8()
		grid_points[i] = int(g)
	}
	_ = r.Seek(16)
	precision, _ := r.Uint8()
	_ = r.Skip(3)
	c, err := new_clut(num_inputs, num_outputs, grid_points)
	if err != nil {
		return nil, err
	}
	if c.samples, err = decode_clut_table(r, int(precision), len(c.samples)); err != nil {
		return nil, err
	}
	return c, nil
}

func modularDecoder(raw []byte) (*ModularTag, error) {
	r := NewReader(raw)
	if err := expect_type(r, LutAtoBTypeSignature, LutBtoATypeSignature); err != nil {
		return nil, err
	}
	if r.Len() < modular_header_size {
		return nil, invalid("modular (mAB/mBA) tag too short")
	}
	sig, _ := NewReader(raw).Signature()
	in_channels, _ := r.Uint8()
	out_channels, _ := r.Uint8()
	_ = r.Skip(2)
	var offsets [5]uint32
	for i := range offsets {
		offsets[i], _ = r.Uint32()
	}
	if in_channels == 0 || out_channels == 0 {
		return nil, invalid("modular tag with zero channels")
	}
	if in_channels > MaxChannels || out_channels > MaxChannels {
		return nil, unsupported("modular tag with %d input and %d output channels", in_channels, out_channels)
	}
	b, matrix, m, clut, a := offsets[0], offsets[1], offsets[2], offsets[3], offsets[4]
	mt := &ModularTag{num_input_channels: int(in_channels), num_output_channels: int(out_channels), is_a_to_b: sig == LutAtoBTypeSignature}
	if b == 0 {
		return nil, invalid("modular tag is missing its B curves")
	}
	// channel counts of each stage, for mBA the tag is read in reverse
	a_side, b_side := int(in_channels), int(out_channels)
	if !mt.is_a_to_b {
		a_side, b_side = b_side, a_side
	}
	var err error
	if mt.b_curves, err = read_modular_curves(raw, b, b_side); err != nil {
		return nil, err
	}
	if mt.a_curves, err = read_modular_curves(raw, a, a_side); err != nil {
		return nil, err
	}
	if mt.m_curves, err = read_modular_curves(raw, m, b_side); err != nil {
		return nil, err
	}
	if (a == 0) != (clut == 0) {
		return nil, invalid("modular tag must have both or neither of A curves and CLUT")
	}
	if clut > 0 {
		if mt.clut, err = embedded_clut_decoder(raw, clut, int(in_channels), int(out_channels)); err != nil {
			return nil, err
		}
	}
	if matrix > 0 {
		if b_side != 3 {
			return nil, invalid("modular tag has a matrix with %d channels", b_side)
		}
		if uint64(matrix) >= uint64(len(raw)) {
			return nil, invalid("modular tag matrix offset %d out of bounds", matrix)
		}
		if mt.matrix, err = embedded_matrix_decoder(raw[matrix:]); err != nil {
			return nil, err
		}
	}
	if err = mt.build_pipeline(); err != nil {
		return nil, err
	}
	return mt, nil
}

// Stages lists the elements present in the tag in storage order
func (m *ModularTag) Stages() string {
	var parts []string
	add := func(name string, present bool) {
		if present {
			parts = append(parts, name)
		}
	}
	add("A", m.a_curves != nil)
	add("CLUT", m.clut != nil)
	add("M", m.m_curves != nil)
	add("Matrix", m.matrix != nil)
	add("B", m.b_curves != nil)
	return strings.Join(parts, "+")
}
