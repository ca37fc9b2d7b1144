package icc

// OutputTables maps a quantized linear value (see PrecacheIndex) to an
// 8-bit device value, one table per output channel
type OutputTables struct {
	Channels [][]uint8
}

func (p *Profile) output_curves() []Curve {
	switch {
	case p.uses_clut:
		return nil
	case p.header.ColorSpace == GrayColorSpace:
		return []Curve{p.gray_trc}
	case p.has_matrix:
		return p.trcs[:]
	}
	return nil
}

func (p *Profile) compute_output_tables() *OutputTables {
	curves := p.output_curves()
	if curves == nil {
		return nil
	}
	ans := &OutputTables{Channels: make([][]uint8, len(curves))}
	for i, c := range curves {
		// channels sharing a curve share a table
		for j := range i {
			if curves[j] == c {
				ans.Channels[i] = ans.Channels[j]
				break
			}
		}
		if ans.Channels[i] == nil {
			ans.Channels[i] = ComputePrecache(c)
		}
	}
	return ans
}

// PrecacheOutputTransform computes the tables used when this profile is the
// output of a transform and keeps them for all later transforms. Calling it
// more than once has no further effect and it never changes transform
// results. Profiles that use a CLUT have nothing to precache.
func (p *Profile) PrecacheOutputTransform() {
	if p.precache.Load() != nil {
		return
	}
	if t := p.compute_output_tables(); t != nil {
		p.precache.CompareAndSwap(nil, t)
	}
}

// IsPrecached reports whether PrecacheOutputTransform has stored output tables
func (p *Profile) IsPrecached() bool { return p.precache.Load() != nil }

// OutputTables returns the precached output tables or computes new ones.
// The returned tables must not be modified. nil is returned for profiles
// that use a CLUT.
func (p *Profile) OutputTables() *OutputTables {
	if t := p.precache.Load(); t != nil {
		return t
	}
	return p.compute_output_tables()
}
