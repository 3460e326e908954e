package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleImagePath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "images", "image12.png"), SampleImagePath(filepath.Join("data", "images"), 12))

	id, ok := SampleIDFromPath(SampleImagePath("x", 12))
	assert.True(t, ok)
	assert.Equal(t, 12, id)

	_, ok = SampleIDFromPath("frame12.png")
	assert.False(t, ok)
	_, ok = SampleIDFromPath("imageX.png")
	assert.False(t, ok)
}

func TestGenerateOutputFilename(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "overlay_image3.png"), GenerateOutputFilename("out", "overlay_", 3, 0, ""))
	assert.Equal(t, filepath.Join("out", "image3_r-6.webp"), GenerateOutputFilename("out", "", 3, -6, "webp"))
}

func TestEnsureDirAndFileExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))

	path := filepath.Join(dir, "f.txt")
	assert.False(t, FileExists(path))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	assert.True(t, FileExists(path))
	assert.False(t, FileExists(dir))

	assert.Equal(t, "png", GetFileExtension("A/B.PNG"))
	assert.Equal(t, "", GetFileExtension("noext"))
}
