package processed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_MarkAndContains(t *testing.T) {
	dir := t.TempDir()
	s := New(4, dir)

	assert.False(t, s.Contains("clip1.mp4"))
	s.Mark("clip1.mp4")
	assert.True(t, s.Contains("clip1.mp4"))
	assert.True(t, s.Contains("/input/clip1.mp4"))
}

func TestSet_EvictsOldestWhenFull(t *testing.T) {
	dir := t.TempDir()
	s := New(2, dir)

	s.Mark("a.mp4")
	s.Mark("b.mp4")
	s.Mark("c.mp4")

	assert.False(t, s.Contains("a.mp4"))
	assert.True(t, s.Contains("b.mp4"))
	assert.True(t, s.Contains("c.mp4"))
	assert.Equal(t, 2, s.Len())
}

func TestSet_FilesystemFallback(t *testing.T) {
	dir := t.TempDir()
	s := New(2, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip_h264.ts"), []byte("x"), 0o644))

	assert.True(t, s.Contains("clip.mp4"))
}

func TestSet_OutputPath(t *testing.T) {
	s := New(2, "/out")
	assert.Equal(t, "/out/clip_h264.ts", s.OutputPath("/in/clip.mp4"))
}
