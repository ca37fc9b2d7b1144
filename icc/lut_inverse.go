package icc

import (
	"math"
)

const (
	// Number of entries in the 8-bit output cache built for an output TRC
	PrecacheOutputSize = 8192
	PrecacheOutputMax  = PrecacheOutputSize - 1
	// Number of entries in input linearisation tables
	InputTableSize = 256
	// Number of entries in inverse tables built for gamma and identity curves
	OutputLUTSize = 4096
)

// lut_interp_linear evaluates a table of 16-bit samples at x in [0,1],
// returning a value in [0,1]
func lut_interp_linear(x float64, table []uint16) float64 {
	x *= float64(len(table) - 1)
	upper := int(math.Ceil(x))
	lower := int(math.Floor(x))
	upper, lower = min(max(upper, 0), len(table)-1), min(max(lower, 0), len(table)-1)
	value := float64(table[upper])*(1-(float64(upper)-x)) + float64(table[lower])*(float64(upper)-x)
	return value / 65535
}

// lut_interp_linear16 evaluates a table at a 16-bit input using integer
// arithmetic. len(table) must not exceed MaxCurveEntries so that no
// intermediate overflows 32 bits.
func lut_interp_linear16(input uint16, table []uint16) uint16 {
	value := uint32(input) * uint32(len(table)-1)
	upper := (value + 65534) / 65535 // ceil(value/65535)
	lower := value / 65535           // floor(value/65535)
	// distance from lower to value scaled to 0..65535
	interp := value % 65535
	value = (uint32(table[upper])*interp + uint32(table[lower])*(65535-interp)) / 65535
	return uint16(value)
}

// LutInverseInterp16 finds the 16-bit input that a table of samples
// maps to value. The table is expected to be monotonically non-decreasing.
// Degenerate runs of zeros at the start and 0xFFFF at the end are excluded
// from the search. For tables that are not monotonic the result is the
// value the binary search converges to, which is deterministic but not
// meaningful. It never indexes outside the table and always terminates.
func LutInverseInterp16(value uint16, table []uint16) uint16 {
	length := len(table)
	if length < 2 {
		return value
	}
	l, r := 1, 0x10000
	num_zeroes := 0
	for num_zeroes < length-1 && table[num_zeroes] == 0 {
		num_zeroes++
	}
	// No zeros at the beginning and we are trying to find a zero, so
	// return anything. Zero is the least destructive choice.
	if num_zeroes == 0 && value == 0 {
		return 0
	}
	num_poles := 0
	for num_poles < length-1 && table[length-1-num_poles] == 0xffff {
		num_poles++
	}
	// restrict the search to the non degenerate zone
	if num_zeroes > 1 || num_poles > 1 {
		if value == 0 {
			return 0
		}
		if num_zeroes > 1 {
			a := ((num_zeroes - 1) * 0xffff) / (length - 1)
			l = a - 1
		}
		if num_poles > 1 {
			b := ((length - 1 - num_poles) * 0xffff) / (length - 1)
			r = b + 1
		}
	}
	if r <= l {
		// not invertible
		return 0
	}
	x := 0
	target := int(value)
	for r > l {
		x = (l + r) / 2
		res := int(lut_interp_linear16(uint16(x-1), table))
		if res == target {
			return uint16(x - 1)
		}
		if res > target {
			r = x - 1
		} else {
			l = x + 1
		}
	}
	if x < 1 {
		return 0
	}
	// Not found, interpolate between the surrounding nodes
	val2 := float64(length-1) * (float64(x-1) / 65535)
	cell0 := min(int(math.Floor(val2)), length-1)
	cell1 := min(int(math.Ceil(val2)), length-1)
	if cell0 == cell1 {
		return uint16(x)
	}
	y0, y1 := float64(table[cell0]), float64(table[cell1])
	x0 := (65535 * float64(cell0)) / float64(length-1)
	x1 := (65535 * float64(cell1)) / float64(length-1)
	a := (y1 - y0) / (x1 - x0)
	b := y0 - a*x0
	if math.Abs(a) < 0.01 {
		return uint16(x)
	}
	f := (float64(value) - b) / a
	if f < 0 {
		return 0
	}
	if f >= 65535 {
		return 0xffff
	}
	return uint16(math.Floor(f + 0.5))
}

// invert_lut builds a table of out_length entries that inverts table
func invert_lut(table []uint16, out_length int) []uint16 {
	output := make([]uint16, out_length)
	for i := range output {
		x := (float64(i) * 65535) / float64(out_length-1)
		output[i] = LutInverseInterp16(uint16(math.Floor(x+0.5)), table)
	}
	return output
}

func build_linear_table(length int) []uint16 {
	output := make([]uint16, length)
	for i := range output {
		x := (float64(i) * 65535) / float64(length-1)
		output[i] = uint16(math.Floor(x + 0.5))
	}
	return output
}

func build_pow_table(gamma float64, length int) []uint16 {
	output := make([]uint16, length)
	for i := range output {
		x := math.Pow(float64(i)/float64(length-1), gamma)
		output[i] = uint16(math.Floor(x*65535 + 0.5))
	}
	return output
}

// BuildInputTable linearises 8-bit device values through c
func BuildInputTable(c Curve) []float64 {
	ans := make([]float64, InputTableSize)
	for i := range ans {
		ans[i] = clamp01(c.Transform(float64(i) / (InputTableSize - 1)))
	}
	return ans
}

// BuildOutputLUT returns a 16-bit table mapping linear values back to
// device values for c. Sampled curves are inverted numerically, gamma and
// identity curves analytically.
func BuildOutputLUT(c Curve) []uint16 {
	switch q := c.(type) {
	case *IdentityCurve:
		return build_linear_table(OutputLUTSize)
	case *GammaCurve:
		return build_pow_table(q.inv_gamma, OutputLUTSize)
	case *PointsCurve:
		return invert_lut(q.points, max(len(q.points), 256))
	default:
		return invert_lut(SampleCurve(c, 256), 256)
	}
}

func lut_interp_linear_precache_output(input uint32, table []uint16) uint8 {
	// scale input to the length of the table: PrecacheOutputMax*(length-1)
	value := input * uint32(len(table)-1)
	upper := (value + PrecacheOutputMax - 1) / PrecacheOutputMax
	lower := value / PrecacheOutputMax
	interp := value % PrecacheOutputMax
	// table values range over 0..65535 so this is 0..65535*PrecacheOutputMax
	value = uint32(table[upper])*interp + uint32(table[lower])*(PrecacheOutputMax-interp)
	// round and scale to 0..255
	const scale = PrecacheOutputMax * 65535 / 255
	value += scale / 2
	value /= scale
	return uint8(value)
}

// ComputePrecache builds the PrecacheOutputSize entry table mapping a
// quantized linear value to an 8-bit device value for an output curve
func ComputePrecache(c Curve) []uint8 {
	output := make([]uint8, PrecacheOutputSize)
	switch q := c.(type) {
	case *IdentityCurve:
		for v := range output {
			output[v] = uint8(math.Floor(float64(v)*255/PrecacheOutputMax + 0.5))
		}
	case *GammaCurve:
		for v := range output {
			output[v] = uint8(math.Floor(255*math.Pow(float64(v)/PrecacheOutputMax, q.inv_gamma) + 0.5))
		}
	default:
		table := BuildOutputLUT(c)
		for v := range output {
			output[v] = lut_interp_linear_precache_output(uint32(v), table)
		}
	}
	return output
}

// PrecacheIndex quantizes a linear value in [0,1] to an index into a precache table
func PrecacheIndex(x float64) int {
	return int(clamp01(x)*PrecacheOutputMax + 0.5)
}
