package icc

import (
	"fmt"
	"strings"
)

type RenderingIntent uint32

// Values fixed by the ICC specification
const (
	PerceptualRenderingIntent           RenderingIntent = 0
	RelativeColorimetricRenderingIntent RenderingIntent = 1
	SaturationRenderingIntent           RenderingIntent = 2
	AbsoluteColorimetricRenderingIntent RenderingIntent = 3
)

func (ri RenderingIntent) String() string {
	switch ri {
	case PerceptualRenderingIntent:
		return "Perceptual"
	case RelativeColorimetricRenderingIntent:
		return "RelativeColorimetric"
	case SaturationRenderingIntent:
		return "Saturation"
	case AbsoluteColorimetricRenderingIntent:
		return "AbsoluteColorimetric"
	default:
		return fmt.Sprintf("RenderingIntent(%d)", uint32(ri))
	}
}

// Valid reports whether ri is one of the four ICC intents
func (ri RenderingIntent) Valid() bool { return ri <= AbsoluteColorimetricRenderingIntent }

// Normalized maps unknown intents to Perceptual
func (ri RenderingIntent) Normalized() RenderingIntent {
	if ri.Valid() {
		return ri
	}
	return PerceptualRenderingIntent
}

// lut_tag_index is the suffix of the A2Bx/B2Ax tag used for an intent
func (ri RenderingIntent) lut_tag_index() int {
	switch ri.Normalized() {
	case RelativeColorimetricRenderingIntent, AbsoluteColorimetricRenderingIntent:
		return 1
	case SaturationRenderingIntent:
		return 2
	}
	return 0
}

func ParseRenderingIntent(x string) (RenderingIntent, error) {
	switch strings.ToLower(strings.ReplaceAll(x, "-", "")) {
	case "perceptual", "p", "0":
		return PerceptualRenderingIntent, nil
	case "relative", "relativecolorimetric", "r", "1":
		return RelativeColorimetricRenderingIntent, nil
	case "saturation", "s", "2":
		return SaturationRenderingIntent, nil
	case "absolute", "absolutecolorimetric", "a", "3":
		return AbsoluteColorimetricRenderingIntent, nil
	}
	return PerceptualRenderingIntent, fmt.Errorf("unknown rendering intent: %s", x)
}
