package icc

import (
	"bytes"
)

type encoded_tag struct {
	sig  Signature
	data []byte
}

func encode_tag(sig Signature, enc func(w *Writer)) encoded_tag {
	w := NewWriter()
	enc(w)
	w.Align()
	return encoded_tag{sig, w.Bytes()}
}

func (p *Profile) encoded_tags() (ans []encoded_tag, err error) {
	add := func(sig Signature, enc func(w *Writer)) { ans = append(ans, encode_tag(sig, enc)) }
	if p.description != "" {
		add(DescSignature, func(w *Writer) { descriptionEncoder(w, p.description) })
	}
	if p.media_white != nil {
		add(MediaWhitePointTagSignature, func(w *Writer) { xyzEncoder(w, *p.media_white) })
	}
	if p.chad != nil {
		add(ChromaticAdaptationTagSignature, func(w *Writer) { chadEncoder(w, *p.chad) })
	}
	if p.has_matrix {
		for i := range 3 {
			add(rgb_matrix_tags[i], func(w *Writer) { xyzEncoder(w, p.colorants[i]) })
		}
		for i := range 3 {
			add(rgb_matrix_tags[i+3], func(w *Writer) { encode_curve(w, p.trcs[i]) })
		}
	}
	if p.gray_trc != nil {
		add(GrayTRCTagSignature, func(w *Writer) { encode_curve(w, p.gray_trc) })
	}
	for _, q := range []struct {
		luts [3]ChannelTransformer
		sigs [3]Signature
	}{{p.a2b, a2b_tags}, {p.b2a, b2a_tags}} {
		for i, lut := range q.luts {
			if lut == nil {
				continue
			}
			m, ok := lut.(*MFT)
			if !ok {
				return nil, unsupported("encoding of %s tags", lut.String())
			}
			add(q.sigs[i], func(w *Writer) { encode_mft2(w, m) })
		}
	}
	return
}

// Encode serializes the header and the tags held by the profile model. Tags
// with identical contents share storage. Modular (mAB/mBA) LUTs cannot be
// encoded.
func (p *Profile) Encode() ([]byte, error) {
	tags, err := p.encoded_tags()
	if err != nil {
		return nil, err
	}
	offsets := make([]uint32, len(tags))
	pos := tag_table_offset + len(tags)*tag_entry_size
	var body bytes.Buffer
	for i, t := range tags {
		found := false
		for j := range i {
			if bytes.Equal(tags[j].data, t.data) {
				offsets[i], found = offsets[j], true
				break
			}
		}
		if !found {
			offsets[i] = uint32(pos + body.Len())
			body.Write(t.data)
		}
	}
	h := p.header
	h.Size = uint32(pos + body.Len())
	if h.Size > MaxProfileSize {
		return nil, invalid("encoded profile is too large: %d bytes", h.Size)
	}
	w := NewWriter()
	h.encode(w)
	w.Uint32(uint32(len(tags)))
	for i, t := range tags {
		w.Signature(t.sig)
		w.Uint32(offsets[i])
		w.Uint32(uint32(len(t.data)))
	}
	w.Write(body.Bytes())
	return w.Bytes(), nil
}
