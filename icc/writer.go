package icc

import (
	"encoding/binary"
)

// Writer is the encoding counterpart of Reader, appending big-endian values
// to a growing buffer.
type Writer struct {
	data []byte
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Bytes() []byte { return w.data }
func (w *Writer) Len() int      { return len(w.data) }

func (w *Writer) Uint8(x uint8)   { w.data = append(w.data, x) }
func (w *Writer) Uint16(x uint16) { w.data = binary.BigEndian.AppendUint16(w.data, x) }
func (w *Writer) Uint32(x uint32) { w.data = binary.BigEndian.AppendUint32(w.data, x) }

func (w *Writer) Signature(s Signature) { w.Uint32(uint32(s)) }
func (w *Writer) S15Fixed16(x float64)  { w.Uint32(uint32(FloatToS15Fixed16(x))) }
func (w *Writer) U8Fixed8(x float64)    { w.Uint16(FloatToU8Fixed8(x)) }
func (w *Writer) Write(b []byte)        { w.data = append(w.data, b...) }

func (w *Writer) Zeros(n int) {
	for range n {
		w.data = append(w.data, 0)
	}
}

func (w *Writer) XYZ(x XYZType) {
	w.S15Fixed16(x.X)
	w.S15Fixed16(x.Y)
	w.S15Fixed16(x.Z)
}

func (w *Writer) Uint16s(x []uint16) {
	for _, v := range x {
		w.Uint16(v)
	}
}

// Align pads with zero bytes to a multiple of four
func (w *Writer) Align() {
	w.Zeros(align_to_4(len(w.data)) - len(w.data))
}

// PutUint32At overwrites a previously written value
func (w *Writer) PutUint32At(offset int, x uint32) {
	binary.BigEndian.PutUint32(w.data[offset:offset+4], x)
}

func align_to_4(x int) int {
	if extra := x % 4; extra > 0 {
		x += 4 - extra
	}
	return x
}
