package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kovidgoyal/qcms"
	"github.com/kovidgoyal/qcms/icc"
	"github.com/spf13/cobra"
)

var _ = fmt.Print

type tag_info struct {
	Signature string `json:"signature"`
	Type      string `json:"type"`
}

type profile_info struct {
	Source          string     `json:"source"`
	Description     string     `json:"description"`
	Size            uint32     `json:"size"`
	Version         string     `json:"version"`
	DeviceClass     string     `json:"device_class"`
	ColorSpace      string     `json:"color_space"`
	PCS             string     `json:"pcs"`
	RenderingIntent string     `json:"rendering_intent"`
	Illuminant      string     `json:"illuminant"`
	IsSRGB          bool       `json:"is_srgb"`
	UsesCLUT        bool       `json:"uses_clut"`
	MediaWhitePoint string     `json:"media_white_point,omitempty"`
	Colorants       []string   `json:"colorants,omitempty"`
	Curves          []string   `json:"curves,omitempty"`
	Transforms      []string   `json:"transforms,omitempty"`
	Tags            []tag_info `json:"tags"`
}

func trim_quotes(s icc.Signature) string { return strings.TrimSpace(strings.Trim(s.String(), "'")) }

func describe(source string, p *qcms.Profile) (ans profile_info) {
	h := p.Header()
	ans = profile_info{
		Source: source, Description: p.Description(), Size: h.Size, Version: h.VersionString(),
		DeviceClass: trim_quotes(h.DeviceClass), ColorSpace: trim_quotes(h.ColorSpace), PCS: trim_quotes(h.PCS),
		RenderingIntent: h.RenderingIntent.String(), Illuminant: h.Illuminant.String(),
		IsSRGB: p.IsSRGB(), UsesCLUT: p.UsesCLUT(), Tags: []tag_info{},
	}
	if w, ok := p.MediaWhitePoint(); ok {
		ans.MediaWhitePoint = w.String()
	}
	if c, ok := p.Colorants(); ok {
		for _, x := range c {
			ans.Colorants = append(ans.Colorants, x.String())
		}
	}
	if trcs, ok := p.TRCs(); ok {
		for _, c := range trcs {
			ans.Curves = append(ans.Curves, c.String())
		}
	} else if g := p.GrayTRC(); g != nil {
		ans.Curves = append(ans.Curves, g.String())
	}
	if p.UsesCLUT() {
		for _, to_pcs := range []bool{true, false} {
			for i := range 3 {
				if lut := p.LUT(to_pcs, i); lut != nil {
					ans.Transforms = append(ans.Transforms, fmt.Sprintf("%s%d: %s", icc.IfElse(to_pcs, "A2B", "B2A"), i, lut))
				}
			}
		}
	}
	for _, sig := range p.TagSignatures() {
		ans.Tags = append(ans.Tags, tag_info{trim_quotes(sig), trim_quotes(p.TagType(sig))})
	}
	return
}

func (i profile_info) write_to(w io.Writer) {
	p := func(k string, v any) { fmt.Fprintf(w, "  %-18s %v\n", k+":", v) }
	fmt.Fprintln(w, i.Source)
	p("Description", i.Description)
	p("Size", i.Size)
	p("Version", i.Version)
	p("Device class", i.DeviceClass)
	p("Colour space", i.ColorSpace)
	p("PCS", i.PCS)
	p("Rendering intent", i.RenderingIntent)
	p("Illuminant", i.Illuminant)
	p("sRGB", i.IsSRGB)
	if i.MediaWhitePoint != "" {
		p("Media white", i.MediaWhitePoint)
	}
	for n, c := range i.Colorants {
		p(fmt.Sprintf("Colorant %d", n), c)
	}
	for n, c := range i.Curves {
		p(fmt.Sprintf("Curve %d", n), c)
	}
	for _, t := range i.Transforms {
		p("Transform", t)
	}
	fmt.Fprintf(w, "  %d tags:\n", len(i.Tags))
	for _, t := range i.Tags {
		fmt.Fprintf(w, "    %-4s %s\n", t.Signature, t.Type)
	}
}

func info_command() *cobra.Command {
	as_json := false
	cmd := &cobra.Command{
		Use:   "info profile...",
		Short: "Print the contents of ICC profiles",
		Long:  "Print the header, tags and decoded curves of ICC profiles. A profile is either the path to an ICC file or the name of a built-in profile: " + builtin_names(),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := make([]profile_info, 0, len(args))
			for _, arg := range args {
				p, err := load_profile(arg)
				if err != nil {
					return err
				}
				logger.Debug("loaded profile", "source", arg, "profile", p.String())
				infos = append(infos, describe(arg, p))
			}
			out := cmd.OutOrStdout()
			if as_json {
				b, err := json.MarshalIndent(infos, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(b))
				return err
			}
			for _, i := range infos {
				i.write_to(out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&as_json, "json", false, "Output the profile information as JSON")
	return cmd
}
