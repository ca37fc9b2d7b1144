package icc

import (
	"encoding/binary"
)

// Reader performs bounds checked big-endian reads over a byte slice. Every
// read either succeeds completely and advances the cursor or fails with a
// *BoundsError leaving the cursor unchanged.
type Reader struct {
	data []byte
	pos  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) Pos() int       { return r.pos }
func (r *Reader) Len() int       { return len(r.data) }
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

func (r *Reader) check(width int) error {
	if width < 0 || r.pos < 0 || width > len(r.data)-r.pos {
		return &BoundsError{Offset: r.pos, Width: width, Len: len(r.data)}
	}
	return nil
}

// Seek moves the cursor to an absolute position, which may equal Len()
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return &BoundsError{Offset: pos, Len: len(r.data)}
	}
	r.pos = pos
	return nil
}

func (r *Reader) Skip(n int) error {
	if err := r.check(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

func (r *Reader) Uint8() (uint8, error) {
	if err := r.check(1); err != nil {
		return 0, err
	}
	ans := r.data[r.pos]
	r.pos++
	return ans, nil
}

func (r *Reader) Uint16() (uint16, error) {
	if err := r.check(2); err != nil {
		return 0, err
	}
	ans := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return ans, nil
}

func (r *Reader) Uint32() (uint32, error) {
	if err := r.check(4); err != nil {
		return 0, err
	}
	ans := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return ans, nil
}

func (r *Reader) Signature() (Signature, error) {
	ans, err := r.Uint32()
	return Signature(ans), err
}

func (r *Reader) S15Fixed16() (float64, error) {
	ans, err := r.Uint32()
	return S15Fixed16ToFloat(int32(ans)), err
}

func (r *Reader) U8Fixed8() (float64, error) {
	ans, err := r.Uint16()
	return U8Fixed8ToFloat(ans), err
}

func (r *Reader) XYZ() (ans XYZType, err error) {
	if err = r.check(12); err != nil {
		return
	}
	ans.X, _ = r.S15Fixed16()
	ans.Y, _ = r.S15Fixed16()
	ans.Z, _ = r.S15Fixed16()
	return
}

// Bytes returns a sub-slice of the next n bytes. The result aliases the
// underlying data.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.check(n); err != nil {
		return nil, err
	}
	ans := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return ans, nil
}

func (r *Reader) Uint16s(n int) ([]uint16, error) {
	if n < 0 || n > len(r.data) {
		return nil, &BoundsError{Offset: r.pos, Width: n, Len: len(r.data)}
	}
	if err := r.check(2 * n); err != nil {
		return nil, err
	}
	ans := make([]uint16, n)
	for i := range ans {
		ans[i] = binary.BigEndian.Uint16(r.data[r.pos:])
		r.pos += 2
	}
	return ans, nil
}
