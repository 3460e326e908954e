package lanefit

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/lanefit/internal/config"
	"github.com/menta2k/lanefit/internal/monitoring"
	"github.com/menta2k/lanefit/internal/utils"
	"github.com/menta2k/lanefit/pkg/augment"
	"github.com/menta2k/lanefit/pkg/types"
)

// createTestImage creates a square capture with a gray background
func createTestImage(size int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{200, 200, 200, 255})
		}
	}
	return img
}

func TestNew(t *testing.T) {
	lf, err := New()
	require.NoError(t, err)
	assert.NotNil(t, lf.Pipeline())
	assert.NotNil(t, lf.Codec())
	assert.NotNil(t, lf.Augmentor())
	assert.Equal(t, 224, lf.Codec().DesiredSize())
	assert.Len(t, lf.Augmentor().Angles(), 19)
}

func TestNewFromConfigRejectsBadValues(t *testing.T) {
	cases := map[string]func(c *config.Config){
		"mode":          func(c *config.Config) { c.Geometry.Mode = "zoom" },
		"channel":       func(c *config.Config) { c.Geometry.Channel = "blue" },
		"filter":        func(c *config.Config) { c.Geometry.Filter = "cubic-ish" },
		"interpolation": func(c *config.Config) { c.Augment.Interpolation = "cubic" },
		"crop":          func(c *config.Config) { c.Geometry.CropFactorX = 0.7 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(cfg)
			_, err := NewFromConfig(cfg)
			assert.ErrorIs(t, err, types.ErrConfiguration)
		})
	}
}

func TestProcessImage(t *testing.T) {
	lf, err := New()
	require.NoError(t, err)

	raw := types.FullLabel{M1: 0.1, M2: -0.1, B1: 300, B2: 250}
	s, frame, err := lf.ProcessImage(createTestImage(540), raw)
	require.NoError(t, err)
	assert.Equal(t, 358, frame.CroppedSize)

	az := s.Labels.(types.AzimuthLabel)
	assert.InDelta(t, math.Atan(0.1)/math.Pi, az.Azimuth1, 1e-12)

	back, err := lf.Codec().DecodeRaw(s.Labels, frame)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, back.M1, 1e-3)
	assert.InDelta(t, -0.1, back.M2, 1e-3)

	_, _, err = lf.ProcessImage(createTestImage(4), raw)
	assert.Error(t, err)
}

func TestExportOverlay(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Dir = filepath.Join(t.TempDir(), "out")
	lf, err := NewFromConfig(cfg)
	require.NoError(t, err)

	s, _, err := lf.ProcessImage(createTestImage(540), types.FullLabel{M1: 0.1, M2: -0.1, B1: 300, B2: 250})
	require.NoError(t, err)
	rotated, err := lf.Augmentor().Rotate(s, 6, augment.Middle)
	require.NoError(t, err)

	path, err := lf.ExportOverlay(rotated, 3)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Output.Dir, "overlay_image3_r6.png"), path)
	assert.True(t, utils.FileExists(path))
}

func TestOpenDatasetAndExpand(t *testing.T) {
	orig := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = orig })

	dir := t.TempDir()
	csv := "id,m1,m2,b1,b2\n"
	for id := 0; id < 10; id++ {
		f, err := os.Create(utils.SampleImagePath(dir, id))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, createTestImage(540)))
		require.NoError(t, f.Close())
		csv += string(rune('0'+id)) + ",0.1,-0.1,300,250\n"
	}
	csvPath := filepath.Join(dir, "labels.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(csv), 0o644))

	cfg := config.Default()
	cfg.Dataset.CSVPath = csvPath
	cfg.Dataset.ImageDir = dir
	lf, err := NewFromConfig(cfg)
	require.NoError(t, err)

	ds, err := lf.OpenDataset()
	require.NoError(t, err)
	assert.Equal(t, 10, ds.Len())

	train, err := lf.Expand(ds)
	require.NoError(t, err)
	assert.Equal(t, 14, train.Len())

	s, err := train.Get(13)
	require.NoError(t, err)
	assert.NotZero(t, s.Angle)
}

func TestSupport(t *testing.T) {
	lf, err := New()
	require.NoError(t, err)

	// The synthetic capture has no returns below the threshold.
	s, _, err := lf.ProcessImage(createTestImage(540), types.FullLabel{M1: 0.1, M2: -0.1, B1: 300, B2: 250})
	require.NoError(t, err)
	sup, err := lf.Support(s)
	require.NoError(t, err)
	assert.Zero(t, sup.Returns)

	for x := 0; x < 224; x++ {
		s.Image.SetGray(x, 100, color.Gray{Y: 0})
	}
	sup, err = lf.Support(s)
	require.NoError(t, err)
	assert.Equal(t, 224, sup.Returns)
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
}
