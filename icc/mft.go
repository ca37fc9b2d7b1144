package icc

import (
	"fmt"
	"slices"

	"github.com/kovidgoyal/qcms/colorconv"
)

var _ = fmt.Print

const (
	mft_header_size    = 48
	mft_min_table_size = 2
	mft_max_table_size = 4096
	mft1_table_size    = 256
)

// MFT is a lut8 (mft1) or lut16 (mft2) tag: an optional matrix, per
// channel input tables, a CLUT and per channel output tables.
type MFT struct {
	in_channels, out_channels   int
	input_tables, output_tables [][]float64
	clut                        *CLUT
	matrix                      colorconv.Mat3
	is8bit                      bool
	// the matrix is only meaningful when the input is PCS XYZ
	apply_matrix bool
}

var _ ChannelTransformer = (*MFT)(nil)

// NewMFT creates a lut16 style transform. Every table must have between 2
// and 4096 entries and all input tables and all output tables must have
// the same length.
func NewMFT(input_tables [][]float64, clut *CLUT, output_tables [][]float64) (*MFT, error) {
	if clut == nil {
		return nil, invalid("lut tag requires a CLUT")
	}
	if len(input_tables) != clut.num_inputs || len(output_tables) != clut.num_outputs {
		return nil, invalid("lut tag table counts %d, %d do not match CLUT channels %d, %d", len(input_tables), len(output_tables), clut.num_inputs, clut.num_outputs)
	}
	for _, tables := range [][][]float64{input_tables, output_tables} {
		for _, t := range tables {
			if len(t) < mft_min_table_size || len(t) > mft_max_table_size || len(t) != len(tables[0]) {
				return nil, invalid("lut tag has invalid table size: %d", len(t))
			}
		}
	}
	if slices.Min(clut.grid_points) != slices.Max(clut.grid_points) {
		return nil, unsupported("lut tag requires the same number of grid points for every channel")
	}
	return &MFT{
		in_channels: clut.num_inputs, out_channels: clut.num_outputs, clut: clut,
		input_tables: input_tables, output_tables: output_tables, matrix: colorconv.Identity,
	}, nil
}

func (m *MFT) NumInputs() int  { return m.in_channels }
func (m *MFT) NumOutputs() int { return m.out_channels }
func (m *MFT) Is8Bit() bool    { return m.is8bit }
func (m *MFT) CLUT() *CLUT     { return m.clut }

func (m *MFT) Matrix() colorconv.Mat3 { return m.matrix }

// SetMatrix sets the matrix applied to PCS XYZ input
func (m *MFT) SetMatrix(x colorconv.Mat3) { m.matrix = x }

func (m *MFT) String() string {
	return fmt.Sprintf("%s{ in:%d out:%d matrix:%v %s }", IfElse(m.is8bit, "mft1", "mft2"), m.in_channels, m.out_channels, IfElse(m.apply_matrix, m.matrix, colorconv.Identity), m.clut)
}

// interp_table linearly interpolates a table of evenly spaced samples
func interp_table(x float64, table []float64) float64 {
	pos := clamp01(x) * float64(len(table)-1)
	lo := int(pos)
	if lo >= len(table)-1 {
		return table[len(table)-1]
	}
	frac := pos - float64(lo)
	return table[lo] + frac*(table[lo+1]-table[lo])
}

func (m *MFT) Transform(out, in []float64) {
	var a, b [MaxChannels]float64
	mapped := a[:m.in_channels]
	copy(mapped, in)
	if m.apply_matrix && m.in_channels == 3 && !m.matrix.IsIdentity() {
		x := m.matrix.MulVec(colorconv.Vec3{clamp01(in[0]), clamp01(in[1]), clamp01(in[2])})
		copy(mapped, x[:])
	}
	for i, t := range m.input_tables {
		mapped[i] = interp_table(mapped[i], t)
	}
	clut_out := b[:m.out_channels]
	m.clut.Transform(clut_out, mapped)
	for i, t := range m.output_tables {
		out[i] = interp_table(clut_out[i], t)
	}
}

// mft1 and mft2 tags, sections 10.10 and 10.11 of ICC.1-2022-05.pdf
func mftDecoder(raw []byte) (*MFT, error) {
	r := NewReader(raw)
	if err := expect_type(r, Lut8TypeSignature, Lut16TypeSignature); err != nil {
		return nil, err
	}
	if r.Len() < mft_header_size {
		return nil, invalid("lut tag too short")
	}
	sig, _ := NewReader(raw).Signature()
	is8bit := sig == Lut8TypeSignature
	in_channels, _ := r.Uint8()
	out_channels, _ := r.Uint8()
	grid, _ := r.Uint8()
	_ = r.Skip(1)
	if in_channels == 0 || out_channels == 0 {
		return nil, invalid("lut tag with zero channels")
	}
	if in_channels > MaxChannels || out_channels > MaxChannels {
		return nil, unsupported("lut tag with %d input and %d output channels", in_channels, out_channels)
	}
	if grid < 2 {
		return nil, invalid("lut tag has invalid number of CLUT grid points: %d", grid)
	}
	matrix, _ := read_matrix(r)
	in_entries, out_entries, bytes_per_value := mft1_table_size, mft1_table_size, 1
	if !is8bit {
		a, err := r.Uint16()
		if err != nil {
			return nil, invalid("lut tag too short")
		}
		b, err := r.Uint16()
		if err != nil {
			return nil, invalid("lut tag too short")
		}
		in_entries, out_entries, bytes_per_value = int(a), int(b), 2
		if in_entries < mft_min_table_size || in_entries > mft_max_table_size || out_entries < mft_min_table_size || out_entries > mft_max_table_size {
			return nil, invalid("lut tag has invalid table sizes: %d %d", in_entries, out_entries)
		}
	}
	grid_points := make([]int, in_channels)
	for i := range grid_points {
		grid_points[i] = int(grid)
	}
	clut, err := new_clut(int(in_channels), int(out_channels), grid_points)
	if err != nil {
		return nil, err
	}
	m := &MFT{in_channels: int(in_channels), out_channels: int(out_channels), clut: clut, matrix: matrix, is8bit: is8bit}
	m.input_tables = make([][]float64, in_channels)
	for i := range m.input_tables {
		if m.input_tables[i], err = decode_clut_table(r, bytes_per_value, in_entries); err != nil {
			return nil, err
		}
	}
	if clut.samples, err = decode_clut_table(r, bytes_per_value, len(clut.samples)); err != nil {
		return nil, err
	}
	m.output_tables = make([][]float64, out_channels)
	for i := range m.output_tables {
		if m.output_tables[i], err = decode_clut_table(r, bytes_per_value, out_entries); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// encode_mft2 writes m as a lut16 tag
func encode_mft2(w *Writer, m *MFT) {
	w.Signature(Lut16TypeSignature)
	w.Zeros(4)
	w.Uint8(uint8(m.in_channels))
	w.Uint8(uint8(m.out_channels))
	w.Uint8(uint8(m.clut.grid_points[0]))
	w.Zeros(1)
	write_matrix(w, m.matrix)
	w.Uint16(uint16(len(m.input_tables[0])))
	w.Uint16(uint16(len(m.output_tables[0])))
	for _, t := range m.input_tables {
		encode_table16(w, t)
	}
	encode_table16(w, m.clut.samples)
	for _, t := range m.output_tables {
		encode_table16(w, t)
	}
	w.Align()
}
