package icc

import (
	"fmt"
)

// Largest number of values (grid points ^ inputs * outputs) accepted in a CLUT
const MaxCLUTEntries = 500000

// CLUT is a multidimensional colour lookup table with values in [0,1]
type CLUT struct {
	num_inputs, num_outputs int
	grid_points             []int
	samples                 []float64
}

var _ ChannelTransformer = (*CLUT)(nil)

func (c *CLUT) NumInputs() int     { return c.num_inputs }
func (c *CLUT) NumOutputs() int    { return c.num_outputs }
func (c *CLUT) GridPoints() []int  { return c.grid_points }
func (c *CLUT) Samples() []float64 { return c.samples }

func (c *CLUT) Transform(out, in []float64) {
	for i := range c.num_outputs {
		out[i] = 0
	}
	trilinear_interpolate(in, c.samples, out, c.num_inputs, c.num_outputs, c.grid_points)
}

func (c *CLUT) String() string {
	return fmt.Sprintf("CLUT{ inp:%v outp:%v grid:%v values[:9]:%v }", c.num_inputs, c.num_outputs, c.grid_points, c.samples[:min(9, len(c.samples))])
}

func expectedValues(grid_points []int, output_channels int) (int, error) {
	expected := output_channels
	for _, g := range grid_points {
		if g < 2 {
			return 0, invalid("CLUT has invalid number of grid points: %d", g)
		}
		expected *= g
		if expected > MaxCLUTEntries {
			return 0, invalid("CLUT too large")
		}
	}
	return expected, nil
}

func new_clut(num_inputs, num_outputs int, grid_points []int) (*CLUT, error) {
	if num_inputs < 1 || num_inputs > MaxChannels || num_outputs < 1 || num_outputs > MaxChannels {
		return nil, unsupported("CLUT with %d inputs and %d outputs", num_inputs, num_outputs)
	}
	n, err := expectedValues(grid_points, num_outputs)
	if err != nil {
		return nil, err
	}
	return &CLUT{num_inputs: num_inputs, num_outputs: num_outputs, grid_points: grid_points, samples: make([]float64, n)}, nil
}

// Sample fills a new CLUT by evaluating f at every grid node. Inputs
// vary fastest in the last channel as ICC CLUTs are laid out.
func Sample(f ChannelTransformer, grid_points int) (*CLUT, error) {
	gp := make([]int, f.NumInputs())
	for i := range gp {
		gp[i] = grid_points
	}
	if grid_points < 2 {
		return nil, invalid("CLUT has invalid number of grid points: %d", grid_points)
	}
	total := f.NumOutputs()
	for range gp {
		if total *= grid_points; total > MaxCLUTEntries {
			return nil, fmt.Errorf("%w: CLUT with %d grid points and %d inputs", ErrAllocationFailure, grid_points, f.NumInputs())
		}
	}
	c, err := new_clut(f.NumInputs(), f.NumOutputs(), gp)
	if err != nil {
		return nil, err
	}
	var idx [MaxChannels]int
	var in [MaxChannels]float64
	scale := 1 / float64(grid_points-1)
	for pos := 0; pos < len(c.samples); pos += c.num_outputs {
		for i := range c.num_inputs {
			in[i] = float64(idx[i]) * scale
		}
		f.Transform(c.samples[pos:pos+c.num_outputs], in[:c.num_inputs])
		// increment the grid index, last channel fastest
		for i := c.num_inputs - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < grid_points {
				break
			}
			idx[i] = 0
		}
	}
	return c, nil
}

// trilinear_interpolate performs an n-linear interpolation on the CLUT values for the given input
// using an iterative method. Input values are clamped to [0,1]. Output MUST be zero initialized.
func trilinear_interpolate(input, values, output []float64, input_channels, output_channels int, grid_points []int) {
	var buf [MaxChannels]int
	var wbuf [MaxChannels]float64
	indices := buf[:input_channels]
	weights := wbuf[:input_channels]
	input = input[:input_channels]
	output = output[:output_channels]

	// Calculate the base indices and interpolation weights for each dimension.
	for i, val := range input {
		gp := grid_points[i]
		val = clamp01(val)
		pos := val * float64(gp-1)
		idx := int(pos)
		weight := pos - float64(idx)
		// Clamp index to be at most the second to last grid point.
		if idx >= gp-1 {
			idx = gp - 2
			weight = 1
		}
		indices[i] = idx
		weights[i] = weight
	}
	// Iterate through all 2^InputChannels corners of the n-dimensional hypercube
	for i := range 1 << input_channels {
		cornerWeight := 1.0
		tableIndex := 0
		multiplier := 1
		for j := input_channels - 1; j >= 0; j-- {
			// the j-th bit of i selects the lower or upper bound for this dimension
			if (i>>(input_channels-1-j))&1 == 1 {
				cornerWeight *= weights[j]
				tableIndex += (indices[j] + 1) * multiplier
			} else {
				cornerWeight *= (1.0 - weights[j])
				tableIndex += indices[j] * multiplier
			}
			multiplier *= grid_points[j]
		}
		if cornerWeight == 0 {
			continue
		}
		offset := tableIndex * output_channels
		for k, v := range values[offset : offset+output_channels] {
			output[k] += v * cornerWeight
		}
	}
}

// decode_clut_table reads a table of 8 or 16 bit values normalized to [0,1]
func decode_clut_table(r *Reader, bytes_per_value, n int) (ans []float64, err error) {
	if n < 0 || n > MaxCLUTEntries {
		return nil, invalid("CLUT too large")
	}
	if r.Remaining() < bytes_per_value*n {
		return nil, invalid("CLUT table too short %d < %d", r.Remaining(), bytes_per_value*n)
	}
	ans = make([]float64, n)
	switch bytes_per_value {
	case 1:
		for i := range ans {
			v, _ := r.Uint8()
			ans[i] = float64(v) / 255
		}
	case 2:
		for i := range ans {
			v, _ := r.Uint16()
			ans[i] = float64(v) / 65535
		}
	default:
		return nil, invalid("CLUT has invalid precision: %d", bytes_per_value)
	}
	return
}

func encode_table16(w *Writer, values []float64) {
	for _, v := range values {
		w.Uint16(quantize16(v))
	}
}

func quantize16(v float64) uint16 {
	return uint16(clamp01(v)*65535 + 0.5)
}
