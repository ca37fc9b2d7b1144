package main

import (
	"fmt"
	"os"

	"github.com/kovidgoyal/qcms"
	"github.com/kovidgoyal/qcms/convert"
	"github.com/kovidgoyal/qcms/icc"
	"github.com/spf13/cobra"
)

var _ = fmt.Print

type convert_options struct {
	from, to, intent string
	grid_points      int
	no_simd          bool
	jpeg_quality     int
}

func (o *convert_options) transform_options() []qcms.Option {
	ans := []qcms.Option{qcms.WithLogger(logger), qcms.WithGridPoints(o.grid_points)}
	if o.no_simd {
		ans = append(ans, qcms.WithoutSIMD())
	}
	return ans
}

// convert_frames converts every frame of img in place
func convert_frames(img *Image, in, out *qcms.Profile, intent qcms.RenderingIntent, opts ...qcms.Option) error {
	for i := range img.Frames {
		f := &img.Frames[i]
		t, err := convert.TransformFor(f.Image, in, out, intent, opts...)
		if err != nil {
			return err
		}
		logger.Debug("converting frame", "number", i, "size", f.Image.Bounds().Size(), "transform", t.String())
		if f.Image, err = convert.Image(t, f.Image); err != nil {
			return err
		}
	}
	return nil
}

func run_convert(o *convert_options, input, output string) (err error) {
	in, err := load_profile(o.from)
	if err != nil {
		return err
	}
	out, err := load_profile(o.to)
	if err != nil {
		return err
	}
	intent, err := icc.ParseRenderingIntent(o.intent)
	if err != nil {
		return err
	}
	format, err := format_from_filename(output)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	img, err := decode(data)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", input, err)
	}
	logger.Debug("decoded image", "path", input, "format", img.Format.String(), "frames", len(img.Frames))
	qcms.PrecacheOutputTransform(out)
	if err = convert_frames(img, in, out, intent, o.transform_options()...); err != nil {
		return err
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err = encode(f, img, format, o.jpeg_quality); err != nil {
		return err
	}
	logger.Info("converted", "input", input, "output", output, "from", in.Description(), "to", out.Description(), "intent", intent.String())
	return nil
}

func convert_command() *cobra.Command {
	o := convert_options{}
	cmd := &cobra.Command{
		Use:   "convert input output",
		Short: "Colour convert an image from one profile to another",
		Long:  "Colour convert every frame of an image. The output format is chosen by the extension of the output file. Profiles are paths to ICC files or the names of built-in profiles: " + builtin_names(),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run_convert(&o, args[0], args[1])
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&o.from, "from", "f", "srgb", "Profile describing the pixels of the input image")
	fl.StringVarP(&o.to, "to", "t", "srgb", "Profile to convert the image to")
	fl.StringVarP(&o.intent, "intent", "i", "perceptual", "Rendering intent: perceptual, relative, saturation or absolute")
	fl.IntVar(&o.grid_points, "grid-points", 0, "Grid points per channel when a transform is baked into a lookup table, 0 for the default")
	fl.BoolVar(&o.no_simd, "no-simd", false, "Use the generic pixel kernel")
	fl.IntVar(&o.jpeg_quality, "quality", 95, "Quality of JPEG output")
	return cmd
}
