/*
Package qcms provides colour management: it converts 8-bit pixel buffers between colour spaces described by ICC profiles.

Profiles are parsed from untrusted bytes with NewProfileFromBytes, or created with NewSRGBProfile, NewRGBProfileWithGamma and
friends. A Transform is built once from an input profile and pixel layout, an output profile and pixel layout and a rendering
intent, and can then be applied to any number of buffers, from any number of goroutines.

	in, err := qcms.NewProfileFromBytes(data)
	t, err := qcms.NewTransform(in, qcms.RGB8, qcms.NewSRGBProfile(), qcms.RGBA8, qcms.Perceptual)
	err = t.Apply(src, dst, num_pixels)

The ICC parsing and the colour pipelines live in the icc package, the colorimetry in colorconv. The convert package
applies a Transform to image.Image values.
*/
package qcms

import "fmt"

type QCMSVersion struct {
	Major, Minor, Patch uint
}

func (v QCMSVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

var Version = QCMSVersion{0, 1, 0}
