package icc

import (
	"fmt"
)

const (
	header_size      = 128
	tag_table_offset = header_size + 4
	tag_entry_size   = 12

	// Largest profile accepted, guarding against hostile size claims
	MaxProfileSize = 4 * 1024 * 1024
	MaxTagCount    = 1024
)

type Header struct {
	// Declared size of the profile in bytes
	Size            uint32
	PreferredCMM    Signature
	Version         uint32
	DeviceClass     Signature
	ColorSpace      Signature
	PCS             Signature
	Platform        Signature
	Flags           uint32
	Manufacturer    Signature
	Model           Signature
	RenderingIntent RenderingIntent
	Illuminant      XYZType
	Creator         Signature
}

func (h Header) String() string {
	return fmt.Sprintf("Header{class: %s space: %s pcs: %s intent: %s version: %s}", h.DeviceClass, h.ColorSpace, h.PCS, h.RenderingIntent, h.VersionString())
}

func (h Header) VersionString() string {
	return fmt.Sprintf("%d.%d.%d", h.Version>>24, (h.Version>>20)&0xf, (h.Version>>16)&0xf)
}

func parse_header(r *Reader) (h Header, err error) {
	if r.Len() < tag_table_offset {
		return h, invalid("profile too small: %d bytes", r.Len())
	}
	h.Size, _ = r.Uint32()
	h.PreferredCMM, _ = r.Signature()
	h.Version, _ = r.Uint32()
	h.DeviceClass, _ = r.Signature()
	h.ColorSpace, _ = r.Signature()
	h.PCS, _ = r.Signature()
	_ = r.Skip(12) // creation date
	if magic, _ := r.Signature(); magic != ProfileFileSignature {
		return h, invalid("missing profile file signature, found: %s", magic)
	}
	h.Platform, _ = r.Signature()
	h.Flags, _ = r.Uint32()
	h.Manufacturer, _ = r.Signature()
	h.Model, _ = r.Signature()
	_ = r.Skip(8) // device attributes
	intent, _ := r.Uint32()
	h.RenderingIntent = RenderingIntent(intent).Normalized()
	if h.Illuminant, err = r.XYZ(); err != nil {
		return
	}
	h.Creator, err = r.Signature()
	return
}

func (h Header) encode(w *Writer) {
	w.Uint32(h.Size)
	w.Signature(h.PreferredCMM)
	w.Uint32(h.Version)
	w.Signature(h.DeviceClass)
	w.Signature(h.ColorSpace)
	w.Signature(h.PCS)
	w.Zeros(12)
	w.Signature(ProfileFileSignature)
	w.Signature(h.Platform)
	w.Uint32(h.Flags)
	w.Signature(h.Manufacturer)
	w.Signature(h.Model)
	w.Zeros(8)
	w.Uint32(uint32(h.RenderingIntent))
	w.XYZ(h.Illuminant)
	w.Signature(h.Creator)
	w.Zeros(header_size - w.Len())
}
