package icc

import (
	"github.com/kovidgoyal/qcms/colorconv"
)

func read_matrix(r *Reader) (m colorconv.Mat3, err error) {
	if err = r.check(36); err != nil {
		return
	}
	for i := range 9 {
		m[i/3][i%3], _ = r.S15Fixed16()
	}
	return
}

func write_matrix(w *Writer, m colorconv.Mat3) {
	for i := range 9 {
		w.S15Fixed16(m[i/3][i%3])
	}
}

// chad tag, an sf32 array of nine values, annex G of ICC.1-2022-05.pdf
func chadDecoder(raw []byte) (m colorconv.Mat3, err error) {
	r := NewReader(raw)
	if err = expect_type(r, S15Fixed16ArrayTypeSignature); err != nil {
		return
	}
	if m, err = read_matrix(r); err != nil {
		return m, invalid("chad tag too short")
	}
	if m.Determinant() == 0 {
		return m, invalid("chad tag has a singular matrix")
	}
	return
}

func chadEncoder(w *Writer, m colorconv.Mat3) {
	w.Signature(S15Fixed16ArrayTypeSignature)
	w.Zeros(4)
	write_matrix(w, m)
}

// embedded_matrix_decoder reads the twelve value matrix with offsets used by mAB and mBA tags
func embedded_matrix_decoder(raw []byte) (*MatrixTransformer, error) {
	r := NewReader(raw)
	m, err := read_matrix(r)
	if err != nil {
		return nil, invalid("embedded matrix too short")
	}
	ans := &MatrixTransformer{m: m}
	for i := range 3 {
		if ans.offset[i], err = r.S15Fixed16(); err != nil {
			return nil, invalid("embedded matrix offsets too short")
		}
	}
	return ans, nil
}
