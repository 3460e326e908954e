package cropper

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/menta2k/lanefit/pkg/types"
)

// Mode selects how the raw frame is reduced to the desired size.
type Mode int

const (
	// ModeROI crops the region of interest, then resizes it.
	ModeROI Mode = iota
	// ModeResize resizes the whole frame without cropping.
	ModeResize
)

// ParseMode maps a config string onto a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "roi", "":
		return ModeROI, nil
	case "resize":
		return ModeResize, nil
	default:
		return ModeROI, fmt.Errorf("unknown crop mode: %s", s)
	}
}

// ParseFilter maps a config string onto an imaging resample filter.
func ParseFilter(s string) (imaging.ResampleFilter, error) {
	switch s {
	case "linear", "":
		return imaging.Linear, nil
	case "nearest":
		return imaging.NearestNeighbor, nil
	case "lanczos":
		return imaging.Lanczos, nil
	default:
		return imaging.Linear, fmt.Errorf("unknown resample filter: %s", s)
	}
}

// Options holds configuration for the crop and resize pipeline
type Options struct {
	CropFactorX float64
	DesiredSize int
	Mode        Mode
	Channel     Channel
	Filter      imaging.ResampleFilter
}

// DefaultOptions returns the 0.17 crop to 224px used for the lidar captures.
func DefaultOptions() Options {
	return Options{
		CropFactorX: 0.17,
		DesiredSize: 224,
		Mode:        ModeROI,
		Channel:     ChannelLuma,
		Filter:      imaging.Linear,
	}
}

// Pipeline crops and resizes raw frames. It keeps no per-image state; the
// geometry of every processed image is returned alongside it.
type Pipeline struct {
	opts Options
}

// New creates a Pipeline with default options
func New() *Pipeline {
	return &Pipeline{opts: DefaultOptions()}
}

// NewWithOptions creates a Pipeline with custom options
func NewWithOptions(opts Options) (*Pipeline, error) {
	if opts.DesiredSize <= 0 {
		return nil, errors.Wrapf(types.ErrConfiguration, "desired size must be positive, got %d", opts.DesiredSize)
	}
	if opts.CropFactorX < 0 || opts.CropFactorX >= 0.5 {
		return nil, errors.Wrapf(types.ErrConfiguration, "crop factor %g outside [0, 0.5)", opts.CropFactorX)
	}
	return &Pipeline{opts: opts}, nil
}

// Options returns the pipeline configuration.
func (p *Pipeline) Options() Options {
	return p.opts
}

// FrameFor computes the frame and the crop rectangle, relative to the image
// origin, for a raw image of the given size.
func (p *Pipeline) FrameFor(width, height int) (types.Frame, image.Rectangle, error) {
	if width <= 0 || width != height {
		return types.Frame{}, image.Rectangle{}, errors.Wrapf(types.ErrConfiguration,
			"raw image must be square, got %dx%d", width, height)
	}

	if p.opts.Mode == ModeResize {
		f := types.Frame{RawSize: width, CroppedSize: width, DesiredSize: p.opts.DesiredSize}
		return f, image.Rect(0, 0, width, height), nil
	}

	cx := int(math.Floor(float64(width) * p.opts.CropFactorX))
	cy := width - 2*cx
	if cy <= 0 {
		return types.Frame{}, image.Rectangle{}, errors.Wrapf(types.ErrConfiguration,
			"raw size %d too small for crop factor %g", width, p.opts.CropFactorX)
	}

	f := types.Frame{
		RawSize:     width,
		CropX:       cx,
		CroppedSize: cy,
		CropFactorX: p.opts.CropFactorX,
		DesiredSize: p.opts.DesiredSize,
	}
	// Both horizontal margins go, and only the bottom cy rows are kept.
	return f, image.Rect(cx, height-cy, width-cx, height), nil
}

// Process crops and resizes img to a DesiredSize square grayscale image.
func (p *Pipeline) Process(img image.Image) (*image.Gray, types.Frame, error) {
	if img == nil {
		return nil, types.Frame{}, errors.New("image is nil")
	}
	bounds := img.Bounds()
	f, rect, err := p.FrameFor(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, types.Frame{}, err
	}

	gray := ExtractChannel(img, p.opts.Channel)
	roi := imaging.Crop(gray, rect.Add(gray.Bounds().Min))
	resized := imaging.Resize(roi, f.DesiredSize, f.DesiredSize, p.opts.Filter)

	return toGray(resized), f, nil
}
