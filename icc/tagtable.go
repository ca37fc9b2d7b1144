package icc

import (
	"fmt"
	"slices"
)

type tag_entry struct {
	sig          Signature
	offset, size uint32
}

// TagTable holds the validated byte range of every tag in a profile. All
// ranges lie within the profile data and after the tag table itself.
type TagTable struct {
	data    []byte
	entries map[Signature]tag_entry
	order   []Signature
}

func parse_tag_table(r *Reader) (t TagTable, err error) {
	t.data = r.data
	t.entries = make(map[Signature]tag_entry)
	if err = r.Seek(header_size); err != nil {
		return
	}
	count, err := r.Uint32()
	if err != nil {
		return
	}
	if count > MaxTagCount {
		return t, invalid("too many tags: %d", count)
	}
	table_end := uint64(tag_table_offset) + uint64(count)*tag_entry_size
	if table_end > uint64(r.Len()) {
		return t, fmt.Errorf("%w: tag table with %d entries exceeds profile size", ErrOutOfBounds, count)
	}
	for range count {
		var e tag_entry
		if e.sig, err = r.Signature(); err != nil {
			return
		}
		if e.offset, err = r.Uint32(); err != nil {
			return
		}
		if e.size, err = r.Uint32(); err != nil {
			return
		}
		if uint64(e.offset) < table_end {
			return t, invalid("tag %s at offset %d overlaps the tag table", e.sig, e.offset)
		}
		if uint64(e.offset)+uint64(e.size) > uint64(r.Len()) {
			return t, invalid("tag %s at offset %d with size %d is out of bounds", e.sig, e.offset, e.size)
		}
		// first occurrence wins
		if _, found := t.entries[e.sig]; !found {
			t.entries[e.sig] = e
			t.order = append(t.order, e.sig)
		}
	}
	return
}

func (t *TagTable) Has(sig Signature) bool {
	_, ok := t.entries[sig]
	return ok
}

// Get returns the raw bytes of a tag
func (t *TagTable) Get(sig Signature) ([]byte, bool) {
	e, ok := t.entries[sig]
	if !ok {
		return nil, false
	}
	return t.data[e.offset : e.offset+e.size : e.offset+e.size], true
}

func (t *TagTable) Len() int { return len(t.order) }

// Signatures returns tag signatures in the order they appear in the profile
func (t *TagTable) Signatures() []Signature { return slices.Clone(t.order) }

// TypeOf returns the type signature of a tag or UnknownSignature
func (t *TagTable) TypeOf(sig Signature) Signature {
	data, ok := t.Get(sig)
	if !ok {
		return UnknownSignature
	}
	s, err := NewReader(data).Signature()
	if err != nil {
		return UnknownSignature
	}
	return s
}

func (t *TagTable) get_required(sig Signature) ([]byte, error) {
	if data, ok := t.Get(sig); ok {
		return data, nil
	}
	return nil, invalid("required tag %s missing", sig)
}
