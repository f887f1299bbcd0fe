package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brightcue/nvtranscode/internal/processed"
	"github.com/brightcue/nvtranscode/internal/queue"
	"github.com/brightcue/nvtranscode/internal/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_EnqueuesNewFiles(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "a.ts"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "b.ts"), []byte("x"), 0o644))

	q := queue.New(10)
	rt := router.New(q, inDir)
	proc := processed.New(10, outDir)

	s := New(inDir, proc, rt)
	res, err := s.Scan()
	require.NoError(t, err)

	assert.Equal(t, 2, res.Enqueued)
	assert.Equal(t, 2, q.Depth())
}

func TestScan_SkipsAlreadyProcessed(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "a.ts"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "a_h264.ts"), []byte("y"), 0o644))

	q := queue.New(10)
	rt := router.New(q, inDir)
	proc := processed.New(10, outDir)

	s := New(inDir, proc, rt)
	res, err := s.Scan()
	require.NoError(t, err)

	assert.Equal(t, 0, res.Enqueued)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, q.Depth())
}

func TestScan_StopsEarlyWhenQueueFull(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	for _, n := range []string{"a.ts", "b.ts", "c.ts"} {
		require.NoError(t, os.WriteFile(filepath.Join(inDir, n), []byte("x"), 0o644))
	}

	q := queue.New(1)
	rt := router.New(q, inDir)
	proc := processed.New(10, outDir)

	s := New(inDir, proc, rt)
	res, err := s.Scan()
	require.NoError(t, err)

	assert.Equal(t, 1, res.Enqueued)
}
