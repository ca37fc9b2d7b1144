package icc

import (
	"bytes"
	"unicode/utf16"
)

// desc tag of version 2 profiles, the ASCII part only
func textDescriptionDecoder(r *Reader) (string, error) {
	count, err := r.Uint32()
	if err != nil {
		return "", invalid("desc tag too short")
	}
	data, err := r.Bytes(int(min(count, uint32(r.Remaining()))))
	if err != nil {
		return "", invalid("desc tag too short")
	}
	return string(bytes.TrimRight(data, "\x00")), nil
}

// mluc tag, section 10.15 of ICC.1-2022-05.pdf. Returns the en_US string
// if present, otherwise the first record.
func mlucDecoder(raw []byte, r *Reader) (string, error) {
	count, err := r.Uint32()
	if err != nil {
		return "", invalid("mluc tag too short")
	}
	record_size, err := r.Uint32()
	if err != nil || record_size < 12 {
		return "", invalid("mluc tag has invalid record size")
	}
	ans, found := "", false
	for i := range count {
		if err = r.Seek(16 + int(i)*int(record_size)); err != nil {
			return "", invalid("mluc tag too short")
		}
		lang, err := r.Bytes(4)
		if err != nil {
			return "", invalid("mluc tag too short")
		}
		length, _ := r.Uint32()
		offset, err := r.Uint32()
		if err != nil {
			return "", invalid("mluc tag too short")
		}
		if uint64(offset)+uint64(length) > uint64(len(raw)) {
			return "", invalid("mluc record exceeds tag data length")
		}
		sr := NewReader(raw[offset : offset+length])
		units, _ := sr.Uint16s(int(length / 2))
		s := string(utf16.Decode(units))
		if string(lang) == "enUS" {
			return s, nil
		}
		if !found {
			ans, found = s, true
		}
	}
	return ans, nil
}

func descriptionDecoder(raw []byte) (string, error) {
	r := NewReader(raw)
	if err := expect_type(r, TextDescriptionTypeSignature, MultiLocalisedUnicodeSignature, TextTypeSignature); err != nil {
		return "", err
	}
	sig, _ := NewReader(raw).Signature()
	switch sig {
	case MultiLocalisedUnicodeSignature:
		return mlucDecoder(raw, r)
	case TextTypeSignature:
		data, _ := r.Bytes(r.Remaining())
		return string(bytes.TrimRight(data, "\x00")), nil
	default:
		return textDescriptionDecoder(r)
	}
}

// descriptionEncoder writes a version 2 desc tag with empty Unicode and ScriptCode parts
func descriptionEncoder(w *Writer, text string) {
	w.Signature(TextDescriptionTypeSignature)
	w.Zeros(4)
	w.Uint32(uint32(len(text) + 1))
	w.Write([]byte(text))
	w.Zeros(1)
	// unicode language code and count
	w.Zeros(8)
	// scriptcode code, count and the fixed 67 byte buffer
	w.Zeros(2 + 1 + 67)
	w.Align()
}
