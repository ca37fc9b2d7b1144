package qcms

import (
	"fmt"

	"github.com/kovidgoyal/qcms/icc"
)

// DataType is the layout of the 8-bit pixels passed to a Transform
type DataType int

const (
	RGB8   DataType = iota // R, G, B
	RGBA8                  // R, G, B, A
	BGRA8                  // B, G, R, A
	Gray8                  // Gray
	GrayA8                 // Gray, A
	CMYK8                  // C, M, Y, K
)

type layout struct {
	name          string
	bytes         int
	color_offsets []int
	alpha         int // -1 when there is no alpha channel
	space         icc.Signature
}

var layouts = [...]layout{
	RGB8:   {"RGB8", 3, []int{0, 1, 2}, -1, icc.RGBColorSpace},
	RGBA8:  {"RGBA8", 4, []int{0, 1, 2}, 3, icc.RGBColorSpace},
	BGRA8:  {"BGRA8", 4, []int{2, 1, 0}, 3, icc.RGBColorSpace},
	Gray8:  {"Gray8", 1, []int{0}, -1, icc.GrayColorSpace},
	GrayA8: {"GrayA8", 2, []int{0}, 1, icc.GrayColorSpace},
	CMYK8:  {"CMYK8", 4, []int{0, 1, 2, 3}, -1, icc.CMYKColorSpace},
}

func (d DataType) valid() bool { return d >= 0 && int(d) < len(layouts) }

func (d DataType) String() string {
	if d.valid() {
		return layouts[d].name
	}
	return fmt.Sprintf("DataType(%d)", int(d))
}

// BytesPerPixel is the stride of one pixel in bytes
func (d DataType) BytesPerPixel() int { return layouts[d].bytes }

func (d DataType) HasAlpha() bool { return layouts[d].alpha > -1 }

// NumColorChannels is the number of colour managed channels, excluding alpha
func (d DataType) NumColorChannels() int { return len(layouts[d].color_offsets) }

// ColorSpace is the profile colour space this layout can be used with
func (d DataType) ColorSpace() icc.Signature { return layouts[d].space }

func ParseDataType(x string) (DataType, error) {
	for i, l := range layouts {
		if l.name == x {
			return DataType(i), nil
		}
	}
	return RGB8, fmt.Errorf("unknown pixel format: %s", x)
}
