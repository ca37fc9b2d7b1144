package icc

import (
	"math"
)

// S15Fixed16ToFloat converts a signed 16.16 fixed point number
func S15Fixed16ToFloat(raw int32) float64 {
	return float64(raw) / 65536
}

// FloatToS15Fixed16 returns the nearest representable s15Fixed16Number,
// saturating at the ends of the range.
func FloatToS15Fixed16(x float64) int32 {
	v := math.Round(x * 65536)
	switch {
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	case math.IsNaN(v):
		return 0
	}
	return int32(v)
}

func U8Fixed8ToFloat(raw uint16) float64 {
	return float64(raw) / 256
}

func FloatToU8Fixed8(x float64) uint16 {
	v := math.Round(x * 256)
	switch {
	case v >= math.MaxUint16:
		return math.MaxUint16
	case v <= 0 || math.IsNaN(v):
		return 0
	}
	return uint16(v)
}

// QuantizeS15Fixed16 rounds x to the nearest value an ICC profile can store
func QuantizeS15Fixed16(x float64) float64 {
	return S15Fixed16ToFloat(FloatToS15Fixed16(x))
}
