package qcms

import (
	"fmt"
	"io"
	"os"

	"github.com/kovidgoyal/qcms/colorconv"
	"github.com/kovidgoyal/qcms/icc"
)

var _ = fmt.Print

type Profile = icc.Profile
type RenderingIntent = icc.RenderingIntent

const (
	Perceptual           = icc.PerceptualRenderingIntent
	RelativeColorimetric = icc.RelativeColorimetricRenderingIntent
	Saturation           = icc.SaturationRenderingIntent
	AbsoluteColorimetric = icc.AbsoluteColorimetricRenderingIntent
)

// NewProfileFromBytes parses an ICC profile. data is not retained.
func NewProfileFromBytes(data []byte) (*Profile, error) {
	return icc.Parse(data)
}

// NewProfileFromReader reads and parses a profile, refusing to read more
// than icc.MaxProfileSize bytes
func NewProfileFromReader(r io.Reader) (*Profile, error) {
	data, err := io.ReadAll(io.LimitReader(r, icc.MaxProfileSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > icc.MaxProfileSize {
		return nil, fmt.Errorf("%w: profile is larger than %d bytes", ErrInvalidProfile, icc.MaxProfileSize)
	}
	return icc.Parse(data)
}

func NewProfileFromFile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewProfileFromReader(f)
}

// NewSRGBProfile returns the shared built-in sRGB profile
func NewSRGBProfile() *Profile { return icc.NewSRGBProfile() }

// NewRGBProfileWithGamma creates a matrix/TRC profile with a gamma TRC
func NewRGBProfileWithGamma(white colorconv.XYY, primaries colorconv.Primaries, gamma float64) (*Profile, error) {
	return icc.NewRGBProfileWithGamma(white, primaries, gamma)
}

// NewRGBProfileWithTable creates a matrix/TRC profile whose TRCs are the
// sampled curve table
func NewRGBProfileWithTable(white colorconv.XYY, primaries colorconv.Primaries, table []uint16) (*Profile, error) {
	return icc.NewRGBProfileWithTable(white, primaries, table)
}

// NewRGBProfileWithCurves creates a matrix/TRC profile with arbitrary TRCs
func NewRGBProfileWithCurves(white colorconv.XYY, primaries colorconv.Primaries, curves [3]icc.Curve, description string) (*Profile, error) {
	return icc.NewRGBProfile(white, primaries, curves, description)
}

func NewGrayProfileWithGamma(gamma float64) (*Profile, error) {
	return icc.NewGrayProfileWithGamma(gamma)
}

// PrecacheOutputTransform eagerly computes the output tables of p. It is
// idempotent and only affects performance.
func PrecacheOutputTransform(p *Profile) { p.PrecacheOutputTransform() }
