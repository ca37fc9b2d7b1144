package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kovidgoyal/qcms"
	"github.com/kovidgoyal/qcms/colorconv"
	"github.com/kovidgoyal/qcms/icc"
)

var _ = fmt.Print

var builtin_profiles = map[string]func() (*qcms.Profile, error){
	"srgb": func() (*qcms.Profile, error) { return qcms.NewSRGBProfile(), nil },
	"gray": func() (*qcms.Profile, error) { return qcms.NewGrayProfileWithGamma(2.2) },
	"display-p3": func() (*qcms.Profile, error) {
		trcs, _ := qcms.NewSRGBProfile().TRCs()
		return icc.NewRGBProfile(colorconv.D65, colorconv.DisplayP3Primaries, trcs, "Display P3")
	},
	"adobe-rgb": func() (*qcms.Profile, error) {
		g, err := icc.NewGammaCurve(563.0 / 256)
		if err != nil {
			return nil, err
		}
		return icc.NewRGBProfile(colorconv.D65, colorconv.AdobeRGBPrimaries, [3]icc.Curve{g, g, g}, "Adobe RGB (1998)")
	},
}

func builtin_names() string {
	names := make([]string, 0, len(builtin_profiles))
	for k := range builtin_profiles {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// load_profile accepts either the name of a built-in profile or the path
// to an ICC file
func load_profile(spec string) (*qcms.Profile, error) {
	if f := builtin_profiles[strings.ToLower(spec)]; f != nil {
		return f()
	}
	p, err := qcms.NewProfileFromFile(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile from %s: %w", spec, err)
	}
	return p, nil
}
