package cropper

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/lanefit/pkg/types"
)

// createTestImage creates a raw capture whose region of interest is white and
// whose cropped-away margins are black.
func createTestImage(size int, cropFactor float64) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cx := int(float64(size) * cropFactor)
	top := size - (size - 2*cx)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if x >= cx && x < size-cx && y >= top {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{0, 0, 0, 255})
			}
		}
	}

	return img
}

func TestNew(t *testing.T) {
	p := New()
	require.NotNil(t, p)
	assert.Equal(t, 0.17, p.Options().CropFactorX)
	assert.Equal(t, 224, p.Options().DesiredSize)
	assert.Equal(t, ModeROI, p.Options().Mode)
}

func TestNewWithOptionsRejectsBadCrop(t *testing.T) {
	opts := DefaultOptions()
	opts.CropFactorX = 0.5
	_, err := NewWithOptions(opts)
	assert.ErrorIs(t, err, types.ErrConfiguration)

	opts = DefaultOptions()
	opts.DesiredSize = 0
	_, err = NewWithOptions(opts)
	assert.ErrorIs(t, err, types.ErrConfiguration)
}

func TestFrameFor540(t *testing.T) {
	f, rect, err := New().FrameFor(540, 540)
	require.NoError(t, err)

	assert.Equal(t, 91, f.CropX)
	assert.Equal(t, 358, f.CroppedSize)
	assert.Equal(t, 540, f.RawSize)
	assert.InDelta(t, 224.0/358.0, f.ResizeFactor(), 1e-12)
	assert.Equal(t, image.Rect(91, 182, 449, 540), rect)
	assert.Equal(t, rect.Dx(), rect.Dy(), "crop must be square")
}

func TestResizeFactorConsistency(t *testing.T) {
	p := New()
	for size := 4; size <= 2048; size++ {
		f, _, err := p.FrameFor(size, size)
		require.NoError(t, err)
		assert.InDelta(t, float64(f.DesiredSize), f.ResizeFactor()*float64(f.CroppedSize), 1e-9, "size %d", size)
	}
}

func TestFrameForRejectsNonSquare(t *testing.T) {
	_, _, err := New().FrameFor(640, 480)
	assert.ErrorIs(t, err, types.ErrConfiguration)
}

func TestProcessKeepsRegionOfInterest(t *testing.T) {
	img := createTestImage(540, 0.17)

	out, f, err := New().Process(img)
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, image.Rect(0, 0, 224, 224), out.Bounds())
	assert.Equal(t, 358, f.CroppedSize)
	for i, v := range out.Pix {
		if v != 255 {
			t.Fatalf("pixel %d = %d, cropped margin leaked into output", i, v)
		}
	}
}

func TestProcessResizeMode(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = ModeResize
	p, err := NewWithOptions(opts)
	require.NoError(t, err)

	out, f, err := p.Process(createTestImage(300, 0.17))
	require.NoError(t, err)
	assert.Equal(t, 224, out.Bounds().Dx())
	assert.Equal(t, 300, f.CroppedSize)
	assert.Equal(t, 0, f.CropX)
	assert.Equal(t, 1.0, f.CropFactorY())
}

func TestProcessNilImage(t *testing.T) {
	_, _, err := New().Process(nil)
	assert.Error(t, err)
}

func TestExtractGreenChannel(t *testing.T) {
	img := image.NewNRGBA(image.Rect(5, 5, 15, 15))
	for y := 5; y < 15; y++ {
		for x := 5; x < 15; x++ {
			img.Set(x, y, color.NRGBA{10, 200, 30, 255})
		}
	}

	gray := ExtractChannel(img, ChannelGreen)
	assert.Equal(t, image.Rect(0, 0, 10, 10), gray.Bounds())
	assert.Equal(t, uint8(200), gray.GrayAt(3, 7).Y)

	luma := ExtractChannel(img, ChannelLuma)
	assert.NotEqual(t, uint8(200), luma.GrayAt(3, 7).Y)
}

func TestParseOptions(t *testing.T) {
	m, err := ParseMode("resize")
	require.NoError(t, err)
	assert.Equal(t, ModeResize, m)
	_, err = ParseMode("zoom")
	assert.Error(t, err)

	ch, err := ParseChannel("green")
	require.NoError(t, err)
	assert.Equal(t, ChannelGreen, ch)

	f, err := ParseFilter("nearest")
	require.NoError(t, err)
	assert.Equal(t, imaging.NearestNeighbor.Support, f.Support)
	_, err = ParseFilter("cubic-ish")
	assert.Error(t, err)
}

func BenchmarkProcess(b *testing.B) {
	p := New()
	img := createTestImage(540, 0.17)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Process(img)
	}
}
