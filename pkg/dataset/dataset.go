// Package dataset maps sample indices onto cropped images and encoded lane
// targets, and composes datasets into augmented training sets.
package dataset

import (
	"github.com/pkg/errors"

	"github.com/menta2k/lanefit/internal/utils"
	"github.com/menta2k/lanefit/pkg/analyzer"
	"github.com/menta2k/lanefit/pkg/cropper"
	"github.com/menta2k/lanefit/pkg/geometry"
	"github.com/menta2k/lanefit/pkg/types"
)

// Source is anything that yields samples by index.
type Source interface {
	Len() int
	Get(i int) (types.Sample, error)
}

// Options configures a LidarDataset.
type Options struct {
	ImageDir string
	Pipeline *cropper.Pipeline
	Codec    *geometry.Codec
	Variant  types.Variant
	// FlipY converts labels annotated with the origin at the bottom-left.
	FlipY bool
	// Loader reads image files. Defaults to analyzer.New().
	Loader *analyzer.Loader
}

// LidarDataset reads image<id>.png captures and their label rows. Get keeps
// no state between calls and may be called from several goroutines.
type LidarDataset struct {
	table *Table
	opts  Options
}

// New creates a dataset over table.
func New(table *Table, opts Options) (*LidarDataset, error) {
	if table == nil {
		return nil, errors.New("dataset needs a label table")
	}
	if opts.Pipeline == nil || opts.Codec == nil {
		return nil, errors.Wrap(types.ErrConfiguration, "dataset needs a pipeline and a codec")
	}
	if got, want := opts.Pipeline.Options().DesiredSize, opts.Codec.DesiredSize(); got != want {
		return nil, errors.Wrapf(types.ErrConfiguration, "pipeline size %d does not match codec size %d", got, want)
	}
	if opts.Loader == nil {
		opts.Loader = analyzer.New()
	}
	return &LidarDataset{table: table, opts: opts}, nil
}

// Len returns the number of samples.
func (d *LidarDataset) Len() int {
	return d.table.Len()
}

// ImagePath returns the file backing sample i.
func (d *LidarDataset) ImagePath(i int) (string, error) {
	if i < 0 || i >= d.Len() {
		return "", errors.Wrapf(types.ErrIndexOutOfRange, "index %d, length %d", i, d.Len())
	}
	return utils.SampleImagePath(d.opts.ImageDir, d.table.Records[i].ID), nil
}

// Get returns sample i with its image cropped and its labels encoded.
func (d *LidarDataset) Get(i int) (types.Sample, error) {
	s, _, err := d.Load(i)
	return s, err
}

// Load is Get that also returns the frame the labels were encoded with, so
// callers can map decoded lines back onto the raw capture.
func (d *LidarDataset) Load(i int) (types.Sample, types.Frame, error) {
	path, err := d.ImagePath(i)
	if err != nil {
		return types.Sample{}, types.Frame{}, err
	}
	rec := d.table.Records[i]

	img, err := d.opts.Loader.LoadImage(path)
	if err != nil {
		return types.Sample{}, types.Frame{}, errors.WithMessagef(err, "sample %d", rec.ID)
	}
	gray, frame, err := d.opts.Pipeline.Process(img)
	if err != nil {
		return types.Sample{}, types.Frame{}, errors.WithMessagef(err, "sample %d", rec.ID)
	}

	raw, err := d.RawLabel(rec, frame.RawSize)
	if err != nil {
		return types.Sample{}, types.Frame{}, errors.WithMessagef(err, "sample %d", rec.ID)
	}
	target, err := d.opts.Codec.Encode(raw, frame, d.opts.Variant)
	if err != nil {
		return types.Sample{}, types.Frame{}, errors.WithMessagef(err, "sample %d", rec.ID)
	}

	return types.Sample{Image: gray, Labels: target}, frame, nil
}

// RawLabel turns a record into lines in the raw frame of the given side.
func (d *LidarDataset) RawLabel(rec Record, rawSize int) (types.FullLabel, error) {
	var l types.FullLabel
	switch v := rec.Values; len(v) {
	case 4:
		l = types.FullLabel{M1: v[0], M2: v[1], B1: v[2], B2: v[3]}
	case 3:
		var err error
		if l, err = geometry.ReducedFromRaw(v[0], v[1], v[2], float64(rawSize)); err != nil {
			return types.FullLabel{}, err
		}
	default:
		return types.FullLabel{}, errors.Errorf("record %d has %d values", rec.ID, len(v))
	}

	if d.opts.FlipY {
		h := float64(rawSize)
		l = types.FullLabel{M1: -l.M1, M2: -l.M2, B1: h - l.B1, B2: h - l.B2}
	}
	return l, nil
}
