package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// SampleImagePath returns the path of the capture for a sample id.
func SampleImagePath(dir string, id int) string {
	return filepath.Join(dir, fmt.Sprintf("image%d.png", id))
}

// SampleIDFromPath extracts the id from an image<id>.<ext> file name.
func SampleIDFromPath(path string) (int, bool) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if !strings.HasPrefix(name, "image") {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimPrefix(name, "image"))
	if err != nil {
		return 0, false
	}
	return id, true
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// GetFileExtension returns the file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// GenerateOutputFilename names an exported sample. Rotated samples get the
// signed angle as a suffix, e.g. overlay_image7_r-6.png.
func GenerateOutputFilename(outputDir, prefix string, id int, angle float64, format string) string {
	if format == "" {
		format = "png"
	}
	suffix := ""
	if angle != 0 {
		suffix = "_r" + strconv.FormatFloat(angle, 'f', -1, 64)
	}
	return filepath.Join(outputDir, fmt.Sprintf("%simage%d%s.%s", prefix, id, suffix, format))
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
