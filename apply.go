package qcms

import (
	"fmt"

	"github.com/kovidgoyal/qcms/icc"
)

// Apply converts n pixels from src to dst. dst may be the same slice as src
// when both pixel formats have the same stride, otherwise they must not
// overlap. Buffers too short for n pixels are an error and nothing is
// written.
func (t *Transform) Apply(src, dst []byte, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative pixel count %d", ErrBufferTooSmall, n)
	}
	il, ol := t.in_type.BytesPerPixel(), t.out_type.BytesPerPixel()
	// compare by division so that huge n cannot overflow the byte counts
	if n > len(src)/il {
		return fmt.Errorf("%w: source has %d bytes, too few for %d pixels of %s", ErrBufferTooSmall, len(src), n, t.in_type)
	}
	if n > len(dst)/ol {
		return fmt.Errorf("%w: destination has %d bytes, too few for %d pixels of %s", ErrBufferTooSmall, len(dst), n, t.out_type)
	}
	in_size, out_size := n*il, n*ol
	if n == 0 {
		return nil
	}
	src, dst = src[:in_size:in_size], dst[:out_size:out_size]
	switch t.kind {
	case IdentityTransform:
		t.apply_identity(src, dst, n)
	case MatrixTransform:
		if t.kernel == UnrolledKernel {
			done := t.apply_matrix_unrolled(src, dst, n)
			t.apply_matrix(src[done*il:], dst[done*ol:], n-done)
		} else {
			t.apply_matrix(src, dst, n)
		}
	case GrayTransform:
		t.apply_gray(src, dst, n)
	case LUTTransform:
		t.apply_lut(src, dst, n)
	}
	return nil
}

func (t *Transform) apply_identity(src, dst []byte, n int) {
	il, ol := &layouts[t.in_type], &layouts[t.out_type]
	for i := range n {
		s := src[i*il.bytes : (i+1)*il.bytes]
		d := dst[i*ol.bytes : (i+1)*ol.bytes]
		var tmp [4]byte
		for c, off := range il.color_offsets {
			tmp[c] = s[off]
		}
		a := byte(255)
		if il.alpha > -1 {
			a = s[il.alpha]
		}
		for c, off := range ol.color_offsets {
			d[off] = tmp[c]
		}
		if ol.alpha > -1 {
			d[ol.alpha] = a
		}
	}
}

func (t *Transform) apply_matrix(src, dst []byte, n int) {
	il, ol := &layouts[t.in_type], &layouts[t.out_type]
	ir, ig, ib := il.color_offsets[0], il.color_offsets[1], il.color_offsets[2]
	tr, tg, tb := t.input_tables[0], t.input_tables[1], t.input_tables[2]
	_, _, _ = tr[255], tg[255], tb[255]
	m := &t.matrix
	if len(t.output_tables) == 1 {
		og := ol.color_offsets[0]
		out := t.output_tables[0]
		for i := range n {
			s := src[i*il.bytes : (i+1)*il.bytes]
			d := dst[i*ol.bytes : (i+1)*ol.bytes]
			r, g, b := tr[s[ir]], tg[s[ig]], tb[s[ib]]
			a := byte(255)
			if il.alpha > -1 {
				a = s[il.alpha]
			}
			d[og] = out[icc.PrecacheIndex(dot(m[0][0], m[0][1], m[0][2], r, g, b))]
			if ol.alpha > -1 {
				d[ol.alpha] = a
			}
		}
		return
	}
	or, og, ob := ol.color_offsets[0], ol.color_offsets[1], ol.color_offsets[2]
	outr, outg, outb := t.output_tables[0], t.output_tables[1], t.output_tables[2]
	for i := range n {
		s := src[i*il.bytes : (i+1)*il.bytes]
		d := dst[i*ol.bytes : (i+1)*ol.bytes]
		r, g, b := tr[s[ir]], tg[s[ig]], tb[s[ib]]
		a := byte(255)
		if il.alpha > -1 {
			a = s[il.alpha]
		}
		x := dot(m[0][0], m[0][1], m[0][2], r, g, b)
		y := dot(m[1][0], m[1][1], m[1][2], r, g, b)
		z := dot(m[2][0], m[2][1], m[2][2], r, g, b)
		d[or] = outr[icc.PrecacheIndex(x)]
		d[og] = outg[icc.PrecacheIndex(y)]
		d[ob] = outb[icc.PrecacheIndex(z)]
		if ol.alpha > -1 {
			d[ol.alpha] = a
		}
	}
}

const unroll = 4

// dot is shared by all matrix kernels so that they round identically
func dot(m0, m1, m2, r, g, b float64) float64 {
	return float64(m0*r) + float64(m1*g) + float64(m2*b)
}

// apply_matrix_unrolled converts whole blocks of four RGB pixels and returns
// the number of pixels converted. The arithmetic is the same as
// apply_matrix so results are identical.
func (t *Transform) apply_matrix_unrolled(src, dst []byte, n int) int {
	il, ol := &layouts[t.in_type], &layouts[t.out_type]
	if len(t.output_tables) != 3 {
		return 0
	}
	ir, ig, ib := il.color_offsets[0], il.color_offsets[1], il.color_offsets[2]
	or, og, ob := ol.color_offsets[0], ol.color_offsets[1], ol.color_offsets[2]
	tr, tg, tb := t.input_tables[0], t.input_tables[1], t.input_tables[2]
	outr, outg, outb := t.output_tables[0], t.output_tables[1], t.output_tables[2]
	m00, m01, m02 := t.matrix[0][0], t.matrix[0][1], t.matrix[0][2]
	m10, m11, m12 := t.matrix[1][0], t.matrix[1][1], t.matrix[1][2]
	m20, m21, m22 := t.matrix[2][0], t.matrix[2][1], t.matrix[2][2]
	blocks := n / unroll
	var r, g, b [unroll]float64
	var a [unroll]byte
	for blk := range blocks {
		s := src[blk*unroll*il.bytes : (blk+1)*unroll*il.bytes]
		d := dst[blk*unroll*ol.bytes : (blk+1)*unroll*ol.bytes]
		for k := range unroll {
			p := s[k*il.bytes:]
			r[k], g[k], b[k] = tr[p[ir]], tg[p[ig]], tb[p[ib]]
			a[k] = 255
			if il.alpha > -1 {
				a[k] = p[il.alpha]
			}
		}
		for k := range unroll {
			x := dot(m00, m01, m02, r[k], g[k], b[k])
			y := dot(m10, m11, m12, r[k], g[k], b[k])
			z := dot(m20, m21, m22, r[k], g[k], b[k])
			p := d[k*ol.bytes:]
			p[or] = outr[icc.PrecacheIndex(x)]
			p[og] = outg[icc.PrecacheIndex(y)]
			p[ob] = outb[icc.PrecacheIndex(z)]
			if ol.alpha > -1 {
				p[ol.alpha] = a[k]
			}
		}
	}
	return blocks * unroll
}

func (t *Transform) apply_gray(src, dst []byte, n int) {
	il, ol := &layouts[t.in_type], &layouts[t.out_type]
	ig := il.color_offsets[0]
	table := t.input_tables[0]
	for i := range n {
		s := src[i*il.bytes : (i+1)*il.bytes]
		d := dst[i*ol.bytes : (i+1)*ol.bytes]
		idx := icc.PrecacheIndex(table[s[ig]])
		a := byte(255)
		if il.alpha > -1 {
			a = s[il.alpha]
		}
		for c, off := range ol.color_offsets {
			d[off] = t.output_tables[c][idx]
		}
		if ol.alpha > -1 {
			d[ol.alpha] = a
		}
	}
}

func quantize8(v float64) uint8 {
	return uint8(max(0, min(v, 1))*255 + 0.5)
}

func (t *Transform) apply_lut(src, dst []byte, n int) {
	il, ol := &layouts[t.in_type], &layouts[t.out_type]
	var in, out [icc.MaxChannels]float64
	nin := len(il.color_offsets)
	for i := range n {
		s := src[i*il.bytes : (i+1)*il.bytes]
		d := dst[i*ol.bytes : (i+1)*ol.bytes]
		for c, off := range il.color_offsets {
			in[c] = float64(s[off]) / 255
		}
		a := byte(255)
		if il.alpha > -1 {
			a = s[il.alpha]
		}
		t.clut.Transform(out[:], in[:nin])
		for c, off := range ol.color_offsets {
			d[off] = quantize8(out[c])
		}
		if ol.alpha > -1 {
			d[ol.alpha] = a
		}
	}
}
