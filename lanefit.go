// Package lanefit prepares lidar lane-line captures for CNN training.
//
// A capture is cropped to its region of interest and resized, and its two
// lane lines are remapped into normalized regression targets. Samples can be
// rotated about the image centre or the sensor axis with labels refitted to
// match, and targets can be decoded back into pixel lines for inspection.
//
// Basic usage:
//
//	package main
//
//	import (
//		"fmt"
//		"log"
//
//		"github.com/menta2k/lanefit"
//	)
//
//	func main() {
//		lf, err := lanefit.New()
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		ds, err := lf.OpenDataset()
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		train, err := lf.Expand(ds)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		s, err := train.Get(0)
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(s.Labels.Values(), s.Angle)
//	}
//
// The package is a thin layer over its components:
//
//  1. Cropper (pkg/cropper): crop and resize with frame bookkeeping
//  2. Geometry (pkg/geometry): label encoding and decoding
//  3. Augment (pkg/augment): joint image and label rotation
//  4. Dataset (pkg/dataset): label tables, samples and augmented views
//  5. Vision (pkg/vision): label support against the lidar returns
package lanefit

import (
	"fmt"
	"image"
	"math/rand/v2"

	"github.com/menta2k/lanefit/internal/config"
	"github.com/menta2k/lanefit/internal/utils"
	"github.com/menta2k/lanefit/pkg/analyzer"
	"github.com/menta2k/lanefit/pkg/augment"
	"github.com/menta2k/lanefit/pkg/cropper"
	"github.com/menta2k/lanefit/pkg/dataset"
	"github.com/menta2k/lanefit/pkg/geometry"
	"github.com/menta2k/lanefit/pkg/processing"
	"github.com/menta2k/lanefit/pkg/types"
	"github.com/menta2k/lanefit/pkg/vision"
)

// Version of the lanefit library
const Version = "1.0.0"

// Lanefit wires the crop pipeline, codec and augmentor from one configuration
type Lanefit struct {
	cfg       *config.Config
	variant   types.Variant
	loader    *analyzer.Loader
	pipeline  *cropper.Pipeline
	codec     *geometry.Codec
	augmentor *augment.Augmentor
	processor *processing.Processor
	detector  *vision.ReturnDetector
}

// New creates a Lanefit with the default configuration
func New() (*Lanefit, error) {
	return NewFromConfig(config.Default())
}

// NewFromConfig validates cfg and builds every component from it
func NewFromConfig(cfg *config.Config) (*Lanefit, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pipeline, err := newPipeline(cfg.Geometry)
	if err != nil {
		return nil, err
	}
	// Fail on startup rather than on the first sample.
	if _, _, err := pipeline.FrameFor(cfg.Geometry.RawSize, cfg.Geometry.RawSize); err != nil {
		return nil, err
	}

	codec, err := geometry.NewCodec(geometry.CodecConfig{
		DesiredSize: cfg.Geometry.DesiredSize,
		Calibration: calibration(cfg.Calibration),
		MaxSlope:    cfg.Geometry.MaxSlope,
	})
	if err != nil {
		return nil, err
	}

	interp, err := augment.ParseInterpolation(cfg.Augment.Interpolation)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}
	seed := cfg.Augment.Seed
	augmentor, err := augment.New(codec, augment.Config{
		AngleMin:      cfg.Augment.AngleMin,
		AngleMax:      cfg.Augment.AngleMax,
		AngleStep:     cfg.Augment.AngleStep,
		Interpolation: interp,
		MaxAttempts:   cfg.Augment.MaxAttempts,
	}, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
	if err != nil {
		return nil, err
	}

	variant, _ := types.ParseVariant(cfg.Dataset.Variant)
	return &Lanefit{
		cfg:       cfg,
		variant:   variant,
		loader:    analyzer.New(),
		pipeline:  pipeline,
		codec:     codec,
		augmentor: augmentor,
		processor: processing.NewProcessor(),
		detector: vision.NewWithConfig(vision.DetectionConfig{
			Threshold: uint8(cfg.Vision.Threshold),
			Bright:    cfg.Vision.Bright,
			Band:      cfg.Vision.Band,
		}),
	}, nil
}

func newPipeline(g config.GeometryConfig) (*cropper.Pipeline, error) {
	mode, err := cropper.ParseMode(g.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}
	channel, err := cropper.ParseChannel(g.Channel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}
	filter, err := cropper.ParseFilter(g.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}
	return cropper.NewWithOptions(cropper.Options{
		CropFactorX: g.CropFactorX,
		DesiredSize: g.DesiredSize,
		Mode:        mode,
		Channel:     channel,
		Filter:      filter,
	})
}

func calibration(c config.CalibrationConfig) geometry.Calibration {
	w := geometry.Interval{Min: c.W.Min, Max: c.W.Max}
	return geometry.Calibration{
		W1: w,
		W2: w,
		Q1: geometry.Interval{Min: c.Q1.Min, Max: c.Q1.Max},
		Q2: geometry.Interval{Min: c.Q2.Min, Max: c.Q2.Max},
	}
}

// Config returns the configuration the instance was built from
func (lf *Lanefit) Config() *config.Config { return lf.cfg }

// Pipeline returns the crop and resize pipeline
func (lf *Lanefit) Pipeline() *cropper.Pipeline { return lf.pipeline }

// Codec returns the label codec
func (lf *Lanefit) Codec() *geometry.Codec { return lf.codec }

// Augmentor returns the rotation augmentor
func (lf *Lanefit) Augmentor() *augment.Augmentor { return lf.augmentor }

// OpenDataset loads the configured label table and image directory
func (lf *Lanefit) OpenDataset() (*dataset.LidarDataset, error) {
	table, err := dataset.LoadTable(lf.cfg.Dataset.CSVPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load labels: %w", err)
	}
	return dataset.New(table, dataset.Options{
		ImageDir: lf.cfg.Dataset.ImageDir,
		Pipeline: lf.pipeline,
		Codec:    lf.codec,
		Variant:  lf.variant,
		FlipY:    lf.cfg.Dataset.FlipY,
		Loader:   lf.loader,
	})
}

// Expand appends rotated copies of a random fraction of src
func (lf *Lanefit) Expand(src dataset.Source) (*dataset.Concat, error) {
	return dataset.Expand(src, lf.augmentor, lf.cfg.Augment.Fraction)
}

// ProcessImage crops img and encodes its raw label
func (lf *Lanefit) ProcessImage(img image.Image, raw types.FullLabel) (types.Sample, types.Frame, error) {
	if err := lf.loader.ValidateImage(img); err != nil {
		return types.Sample{}, types.Frame{}, fmt.Errorf("image validation failed: %w", err)
	}
	gray, frame, err := lf.pipeline.Process(img)
	if err != nil {
		return types.Sample{}, types.Frame{}, err
	}
	target, err := lf.codec.Encode(raw, frame, lf.variant)
	if err != nil {
		return types.Sample{}, types.Frame{}, err
	}
	return types.Sample{Image: gray, Labels: target}, frame, nil
}

// Overlay decodes the labels of s and draws them on its image. Rotated
// samples also get both rotation centres marked.
func (lf *Lanefit) Overlay(s types.Sample) (*image.NRGBA, error) {
	lines, err := lf.codec.Decode(s.Labels)
	if err != nil {
		return nil, fmt.Errorf("failed to decode labels: %w", err)
	}
	var centers []types.Point
	if s.Angle != 0 {
		size := lf.codec.DesiredSize()
		centers = append(centers, augment.Middle.Center(size), augment.Axis.Center(size))
	}
	return lf.processor.CreateLabelOverlay(s.Image, lines, centers...), nil
}

// Support scores the decoded labels of s against the lidar returns in its
// image
func (lf *Lanefit) Support(s types.Sample) (vision.Support, error) {
	lines, err := lf.codec.Decode(s.Labels)
	if err != nil {
		return vision.Support{}, fmt.Errorf("failed to decode labels: %w", err)
	}
	return lf.detector.Support(s.Image, lines), nil
}

// ExportOverlay writes the overlay of s to the output directory and returns
// the file path
func (lf *Lanefit) ExportOverlay(s types.Sample, id int) (string, error) {
	overlay, err := lf.Overlay(s)
	if err != nil {
		return "", err
	}
	out := lf.cfg.Output
	if err := utils.EnsureDir(out.Dir); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := utils.GenerateOutputFilename(out.Dir, "overlay_", id, s.Angle, out.Format)
	if err := lf.processor.SaveImage(overlay, path, out.Format, out.Quality, out.Format == "webp"); err != nil {
		return "", fmt.Errorf("failed to save overlay: %w", err)
	}
	return path, nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
