package analyzer

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/lanefit/pkg/types"
)

// Loader reads lidar captures from disk and checks they can feed the crop
// pipeline.
type Loader struct {
	config Config
}

// Config holds configuration for the loader
type Config struct {
	SupportedFormats []string
	MinImageSize     int
	// RequireSquare rejects captures whose width and height differ.
	RequireSquare bool
}

// DefaultConfig returns the loader defaults.
func DefaultConfig() Config {
	return Config{
		SupportedFormats: []string{"png", "jpeg", "jpg", "webp"},
		MinImageSize:     8,
		RequireSquare:    true,
	}
}

// New creates a new Loader with default configuration
func New() *Loader {
	return &Loader{config: DefaultConfig()}
}

// NewWithConfig creates a new Loader with custom configuration
func NewWithConfig(config Config) *Loader {
	return &Loader{config: config}
}

// LoadImage loads an image from a file path with WebP support. A missing
// file is reported as types.ErrMissingResource.
func (l *Loader) LoadImage(path string) (image.Image, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(types.ErrMissingResource, "image %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}

	if !l.isFormatSupported(extension(path)) {
		return nil, fmt.Errorf("unsupported image format: %s", path)
	}

	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}
	return l.decode(data, path)
}

// LoadImageFromReader loads an image from an io.Reader
func (l *Loader) LoadImageFromReader(reader io.Reader) (image.Image, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return l.decode(data, "reader")
}

func (l *Loader) decode(data []byte, name string) (image.Image, error) {
	if img, format, err := image.Decode(bytes.NewReader(data)); err == nil {
		if !l.isFormatSupported(format) {
			return nil, fmt.Errorf("unsupported image format: %s", format)
		}
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("failed to decode image %s: unknown format", name)
}

// GetImageInfo returns basic information about an image
func (l *Loader) GetImageInfo(img image.Image) ImageInfo {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	return ImageInfo{
		Width:       width,
		Height:      height,
		AspectRatio: float64(width) / float64(height),
		Area:        width * height,
		Square:      width == height,
	}
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int
	Height      int
	AspectRatio float64
	Area        int
	Square      bool
}

func (l *Loader) isFormatSupported(format string) bool {
	for _, supported := range l.config.SupportedFormats {
		if strings.EqualFold(format, supported) {
			return true
		}
	}
	return false
}

// ValidateImage checks if an image meets minimum requirements
func (l *Loader) ValidateImage(img image.Image) error {
	bounds := img.Bounds()
	if bounds.Dx() < l.config.MinImageSize || bounds.Dy() < l.config.MinImageSize {
		return errors.Wrapf(types.ErrConfiguration, "image too small: %dx%d (minimum: %d)",
			bounds.Dx(), bounds.Dy(), l.config.MinImageSize)
	}
	if l.config.RequireSquare && bounds.Dx() != bounds.Dy() {
		return errors.Wrapf(types.ErrConfiguration, "image is not square: %dx%d", bounds.Dx(), bounds.Dy())
	}
	return nil
}

func extension(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(path[i+1:])
}
