// Package geometry converts lane-line labels between raw pixel coordinates
// and the normalized targets the network regresses.
//
// A raw label is two lines y = m*x + b on the uncropped image. Encoding first
// moves the lines into the cropped and resized frame, then normalizes them:
//
//	full:    (atan(m1)/pi, atan(m2)/pi, d(b1), d(b2))
//	reduced: (w1, q1, q2) where x = w*(y - D) + q, rescaled by calibration
//
// Decoding is the exact inverse. The frame used to encode a label must be the
// frame used to decode it.
package geometry

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/menta2k/lanefit/pkg/types"
)

// DefaultMaxSlope bounds decoded slopes. Beyond it a line is treated as
// vertical.
const DefaultMaxSlope = 1e4

// CodecConfig holds the constants the codec depends on.
type CodecConfig struct {
	DesiredSize int
	Calibration Calibration
	MaxSlope    float64
}

// DefaultCodecConfig returns the 224px configuration.
func DefaultCodecConfig() CodecConfig {
	return CodecConfig{
		DesiredSize: 224,
		Calibration: DefaultCalibration(),
		MaxSlope:    DefaultMaxSlope,
	}
}

// Codec encodes and decodes labels. It holds only constants and is safe for
// concurrent use.
type Codec struct {
	size     float64
	dmin     float64
	dmax     float64
	cal      Calibration
	maxSlope float64
}

// NewCodec validates cfg and builds a codec.
func NewCodec(cfg CodecConfig) (*Codec, error) {
	if cfg.DesiredSize <= 0 {
		return nil, errors.Wrapf(types.ErrConfiguration, "desired size must be positive, got %d", cfg.DesiredSize)
	}
	if err := cfg.Calibration.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxSlope <= 0 {
		cfg.MaxSlope = DefaultMaxSlope
	}

	d := float64(cfg.DesiredSize)
	// Steepest slope on a square frame is taken as d, so the intercept of a
	// line through the frame lies in [-d*d, d + d*d].
	return &Codec{
		size:     d,
		dmin:     -d * d,
		dmax:     d + d*d,
		cal:      cfg.Calibration,
		maxSlope: cfg.MaxSlope,
	}, nil
}

// DesiredSize returns the side of the frame targets are expressed in.
func (c *Codec) DesiredSize() int {
	return int(c.size)
}

// MaxSlope returns the largest slope magnitude the codec accepts.
func (c *Codec) MaxSlope() float64 {
	return c.maxSlope
}

// DistanceBounds returns the intercept range mapped onto [-1, 1].
func (c *Codec) DistanceBounds() (dmin, dmax float64) {
	return c.dmin, c.dmax
}

// Scale moves a raw label into the cropped and resized frame. Slopes are
// unchanged because the crop is a translation and the resize is uniform.
func Scale(raw types.FullLabel, f types.Frame) types.FullLabel {
	rf := f.ResizeFactor()
	shift := func(m, b float64) float64 {
		w := float64(f.RawSize)
		return rf * (b + m*f.CropFactorX*w - (1-f.CropFactorY())*w)
	}
	return types.FullLabel{
		M1: raw.M1,
		M2: raw.M2,
		B1: shift(raw.M1, raw.B1),
		B2: shift(raw.M2, raw.B2),
	}
}

// Unscale is the inverse of Scale.
func Unscale(scaled types.FullLabel, f types.Frame) types.FullLabel {
	rf := f.ResizeFactor()
	unshift := func(m, b float64) float64 {
		w := float64(f.RawSize)
		return b/rf - m*f.CropFactorX*w + (1-f.CropFactorY())*w
	}
	return types.FullLabel{
		M1: scaled.M1,
		M2: scaled.M2,
		B1: unshift(scaled.M1, scaled.B1),
		B2: unshift(scaled.M2, scaled.B2),
	}
}

// Encode scales raw into frame f and normalizes it as variant v.
func (c *Codec) Encode(raw types.FullLabel, f types.Frame, v types.Variant) (types.Target, error) {
	if !raw.Finite() {
		return nil, errors.Wrapf(types.ErrGeometryDegenerate, "label %+v is not finite", raw)
	}
	if f.CroppedSize <= 0 || f.RawSize <= 0 {
		return nil, errors.Wrapf(types.ErrConfiguration, "invalid frame %+v", f)
	}
	return c.Normalize(Scale(raw, f), v)
}

// Normalize turns a label already in the desired-size frame into a target.
func (c *Codec) Normalize(l types.FullLabel, v types.Variant) (types.Target, error) {
	if !l.Finite() {
		return nil, errors.Wrapf(types.ErrGeometryDegenerate, "label %+v is not finite", l)
	}
	switch v {
	case types.VariantFull:
		return types.AzimuthLabel{
			Azimuth1: math.Atan(l.M1) / math.Pi,
			Azimuth2: math.Atan(l.M2) / math.Pi,
			D1:       c.normalizeDistance(l.B1),
			D2:       c.normalizeDistance(l.B2),
		}, nil
	case types.VariantReduced:
		return c.reduce(l)
	default:
		return nil, fmt.Errorf("unknown label variant %d", v)
	}
}

// Decode returns the lines of t in the desired-size pixel frame.
func (c *Codec) Decode(t types.Target) (types.FullLabel, error) {
	var l types.FullLabel
	switch t := t.(type) {
	case types.AzimuthLabel:
		// tan is the exact inverse of the azimuth encoding; it diverges as
		// the azimuth approaches +-0.5.
		l = types.FullLabel{
			M1: math.Tan(math.Pi * t.Azimuth1),
			M2: math.Tan(math.Pi * t.Azimuth2),
			B1: c.denormalizeDistance(t.D1),
			B2: c.denormalizeDistance(t.D2),
		}
	case types.ReducedLabel:
		var err error
		if l, err = c.expand(t); err != nil {
			return types.FullLabel{}, err
		}
	case nil:
		return types.FullLabel{}, errors.New("nil target")
	default:
		return types.FullLabel{}, fmt.Errorf("unsupported target type %T", t)
	}

	if err := c.checkSlopes(l); err != nil {
		return types.FullLabel{}, err
	}
	return l, nil
}

// DecodeRaw decodes t and maps it back to the raw frame f.
func (c *Codec) DecodeRaw(t types.Target, f types.Frame) (types.FullLabel, error) {
	l, err := c.Decode(t)
	if err != nil {
		return types.FullLabel{}, err
	}
	return Unscale(l, f), nil
}

func (c *Codec) checkSlopes(l types.FullLabel) error {
	if !l.Finite() || math.Abs(l.M1) > c.maxSlope || math.Abs(l.M2) > c.maxSlope {
		return errors.Wrapf(types.ErrGeometryDegenerate, "decoded slopes (%g, %g) exceed %g", l.M1, l.M2, c.maxSlope)
	}
	return nil
}

func (c *Codec) normalizeDistance(b float64) float64 {
	return 2*((b-c.dmin)/(c.dmax-c.dmin)) - 1
}

func (c *Codec) denormalizeDistance(d float64) float64 {
	return (c.dmax-c.dmin)*((d+1)/2) + c.dmin
}
