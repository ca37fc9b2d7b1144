package qcms

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kovidgoyal/qcms/colorconv"
	"github.com/kovidgoyal/qcms/icc"
)

var _ = fmt.Print

// TransformKind is the pipeline compiled into a Transform
type TransformKind int

const (
	// Channels are copied and reordered, no colour management
	IdentityTransform TransformKind = iota
	// Input TRC, 3x3 matrix, output TRC. Also RGB to Gray.
	MatrixTransform
	// Gray TRC to gray or to every channel of an RGB output TRC
	GrayTransform
	// A pipeline through the PCS baked into a CLUT
	LUTTransform
)

func (k TransformKind) String() string {
	switch k {
	case IdentityTransform:
		return "identity"
	case MatrixTransform:
		return "matrix"
	case GrayTransform:
		return "gray"
	case LUTTransform:
		return "lut"
	}
	return fmt.Sprintf("TransformKind(%d)", int(k))
}

// Transform converts pixels from one profile and layout to another. It is
// immutable once built, does not reference the profiles it was built from
// and can be used from any number of goroutines concurrently.
type Transform struct {
	kind              TransformKind
	kernel            Kernel
	in_type, out_type DataType
	intent            RenderingIntent

	// matrix and gray transforms
	input_tables  [3][]float64
	matrix        colorconv.Mat3
	output_tables [][]uint8

	// lut transforms
	clut *icc.CLUT
}

func (t *Transform) Kind() TransformKind              { return t.kind }
func (t *Transform) Kernel() Kernel                   { return t.kernel }
func (t *Transform) InputType() DataType              { return t.in_type }
func (t *Transform) OutputType() DataType             { return t.out_type }
func (t *Transform) RenderingIntent() RenderingIntent { return t.intent }

func (t *Transform) String() string {
	return fmt.Sprintf("Transform{%s %s → %s intent: %s kernel: %s}", t.kind, t.in_type, t.out_type, t.intent, t.kernel)
}

func check_compatible(p *Profile, d DataType, which string) error {
	if p == nil {
		return fmt.Errorf("%w: %s profile is nil", ErrInvalidProfile, which)
	}
	if !d.valid() {
		return fmt.Errorf("%w: unknown %s pixel format %d", ErrIncompatiblePixelFormat, which, int(d))
	}
	if d.ColorSpace() != p.ColorSpace() {
		return fmt.Errorf("%w: %s pixel format %s cannot be used with a %s profile", ErrIncompatiblePixelFormat, which, d, p.ColorSpace())
	}
	return nil
}

// is_identity reports whether converting between the profiles is a no-op
func is_identity(in, out *Profile) bool {
	if in.ColorSpace() != out.ColorSpace() || in.UsesCLUT() || out.UsesCLUT() {
		return false
	}
	return in == out || (in.IsSRGB() && out.IsSRGB())
}

// NewTransform builds a transform converting pixels of in_type described by
// the in profile to pixels of out_type described by the out profile. The
// pipeline is chosen once here and all tables it needs are computed.
func NewTransform(in *Profile, in_type DataType, out *Profile, out_type DataType, intent RenderingIntent, opts ...Option) (*Transform, error) {
	cfg := default_config()
	for _, o := range opts {
		o(&cfg)
	}
	if err := check_compatible(in, in_type, "input"); err != nil {
		return nil, err
	}
	if err := check_compatible(out, out_type, "output"); err != nil {
		return nil, err
	}
	t := &Transform{in_type: in_type, out_type: out_type, intent: intent.Normalized(), kernel: select_kernel(cfg.allow_simd)}
	var err error
	switch {
	case is_identity(in, out):
		t.kind = IdentityTransform
	case in.UsesCLUT() || out.UsesCLUT() || in.ColorSpace() == icc.CMYKColorSpace || out.ColorSpace() == icc.CMYKColorSpace:
		t.kind = LUTTransform
		err = t.build_lut(in, out, cfg)
	case in.ColorSpace() == icc.GrayColorSpace:
		t.kind = GrayTransform
		err = t.build_gray(in, out)
	default:
		t.kind = MatrixTransform
		err = t.build_matrix(in, out)
	}
	if err != nil {
		return nil, err
	}
	cfg.logger.LogAttrs(context.Background(), slog.LevelDebug, "built transform",
		slog.String("kind", t.kind.String()), slog.String("kernel", t.kernel.String()),
		slog.String("input", t.in_type.String()), slog.String("output", t.out_type.String()),
		slog.String("intent", t.intent.String()))
	return t, nil
}

// absolute_adaptation maps XYZ relative to the input media white to XYZ
// relative to the output media white, the identity for other intents
func absolute_adaptation(in, out *Profile, intent RenderingIntent) (colorconv.Mat3, error) {
	if intent != AbsoluteColorimetric {
		return colorconv.Identity, nil
	}
	inv, err := in.AdaptationToD50().Inverse()
	if err != nil {
		return inv, fmt.Errorf("%w: chromatic adaptation of the input profile is singular", ErrInvalidProfile)
	}
	return out.AdaptationToD50().Mul(inv), nil
}

func output_tables(out *Profile) ([][]uint8, error) {
	tables := out.OutputTables()
	if tables == nil {
		return nil, fmt.Errorf("%w: output profile has no TRC", ErrUnsupported)
	}
	return tables.Channels, nil
}

func (t *Transform) build_matrix(in, out *Profile) (err error) {
	trcs, _ := in.TRCs()
	for i, c := range trcs {
		t.input_tables[i] = icc.BuildInputTable(c)
	}
	adapt, err := absolute_adaptation(in, out, t.intent)
	if err != nil {
		return err
	}
	to_pcs := adapt.Mul(in.RGBToXYZ())
	if out.ColorSpace() == icc.GrayColorSpace {
		// only the luminance row is used
		t.matrix[0] = to_pcs[1]
	} else {
		from_pcs, err := out.XYZToRGB()
		if err != nil {
			return err
		}
		t.matrix = from_pcs.Mul(to_pcs)
	}
	t.output_tables, err = output_tables(out)
	return
}

func (t *Transform) build_gray(in, out *Profile) (err error) {
	t.input_tables[0] = icc.BuildInputTable(in.GrayTRC())
	t.output_tables, err = output_tables(out)
	return
}

func default_grid_points(num_inputs int) int {
	switch num_inputs {
	case 1:
		return 256
	case 3:
		return 33
	default:
		return 17
	}
}

func (t *Transform) build_lut(in, out *Profile, cfg config) error {
	to_pcs, err := in.TransformToPCS(t.intent)
	if err != nil {
		return err
	}
	from_pcs, err := out.TransformFromPCS(t.intent)
	if err != nil {
		return err
	}
	adapt, err := absolute_adaptation(in, out, t.intent)
	if err != nil {
		return err
	}
	p := &icc.Pipeline{}
	p.Append(to_pcs, icc.NewMatrixTransformer(adapt), from_pcs)
	if err = p.Validate(); err != nil {
		return err
	}
	if p.NumInputs() != t.in_type.NumColorChannels() || p.NumOutputs() != t.out_type.NumColorChannels() {
		return fmt.Errorf("%w: pipeline maps %d channels to %d", ErrIncompatiblePixelFormat, p.NumInputs(), p.NumOutputs())
	}
	grid := cfg.grid_points
	if grid == 0 {
		grid = default_grid_points(p.NumInputs())
	}
	t.clut, err = icc.Sample(p, grid)
	return err
}
