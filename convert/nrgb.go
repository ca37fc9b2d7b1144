package convert

import (
	"fmt"
	"image"
	"image/color"
)

var _ = fmt.Print

// NRGBColor is an opaque 24-bit colour
type NRGBColor struct {
	R, G, B uint8
}

func (c NRGBColor) AsSharp() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c NRGBColor) String() string {
	return fmt.Sprintf("NRGBColor{%02X %02X %02X}", c.R, c.G, c.B)
}

func (c NRGBColor) RGBA() (r, g, b, a uint32) {
	r, g, b = uint32(c.R), uint32(c.G), uint32(c.B)
	return r | r<<8, g | g<<8, b | b<<8, 0xffff
}

func nrgbModel(c color.Color) color.Color {
	if _, ok := c.(NRGBColor); ok {
		return c
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return NRGBColor{n.R, n.G, n.B}
}

// NRGBModel drops alpha after un-premultiplying
var NRGBModel color.Model = color.ModelFunc(nrgbModel)

// NRGB is an in-memory image of packed R, G, B bytes. It is what RGB8
// transforms produce.
type NRGB struct {
	// The pixel at (x, y) starts at Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)*3]
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

func NewNRGB(r image.Rectangle) *NRGB {
	return &NRGB{Pix: make([]uint8, 3*r.Dx()*r.Dy()), Stride: 3 * r.Dx(), Rect: r}
}

func (p *NRGB) ColorModel() color.Model { return NRGBModel }
func (p *NRGB) Bounds() image.Rectangle { return p.Rect }
func (p *NRGB) Opaque() bool            { return true }
func (p *NRGB) At(x, y int) color.Color { return p.NRGBAt(x, y) }

func (p *NRGB) NRGBAt(x, y int) NRGBColor {
	if !(image.Point{x, y}.In(p.Rect)) {
		return NRGBColor{}
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+3 : i+3]
	return NRGBColor{s[0], s[1], s[2]}
}

// PixOffset is the index of the first byte of the pixel at (x, y)
func (p *NRGB) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
}

func (p *NRGB) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}
	c1 := NRGBModel.Convert(c).(NRGBColor)
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+3 : i+3]
	s[0], s[1], s[2] = c1.R, c1.G, c1.B
}

// SubImage shares pixels with p
func (p *NRGB) SubImage(r image.Rectangle) image.Image {
	r = r.Intersect(p.Rect)
	if r.Empty() {
		return &NRGB{}
	}
	i := p.PixOffset(r.Min.X, r.Min.Y)
	return &NRGB{Pix: p.Pix[i:], Stride: p.Stride, Rect: r}
}
