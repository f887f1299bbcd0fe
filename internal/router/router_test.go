package router

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brightcue/nvtranscode/internal/model"
	"github.com/brightcue/nvtranscode/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_EnqueueQueuedAndNormalizesPath(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(inputPath, []byte("x"), 0o644))

	q := queue.New(4)
	r := New(q, dir)

	outcome, job, err := r.Enqueue(model.Job{InputPath: "a.ts"})
	require.NoError(t, err)
	assert.Equal(t, Queued, outcome)
	assert.Equal(t, inputPath, job.InputPath)
	assert.Equal(t, 1, q.Depth())
}

func TestRouter_EnqueueNotFound(t *testing.T) {
	q := queue.New(4)
	r := New(q, t.TempDir())

	outcome, _, err := r.Enqueue(model.Job{InputPath: "/no/such/file.ts"})
	require.NoError(t, err)
	assert.Equal(t, NotFound, outcome)
}

func TestRouter_EnqueueQueueFullAtSoftCap(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(inputPath, []byte("x"), 0o644))

	q := queue.New(4)
	r := New(q, dir)

	// Qmax=4: depth()==3 (floor(0.95*4)) still accepts; depth()==4
	// (ceil(0.95*4)) rejects, matching the 4-jobs-then-a-5th property.
	for i := 0; i < 4; i++ {
		outcome, _, err := r.Enqueue(model.Job{InputPath: inputPath})
		require.NoError(t, err)
		require.Equal(t, Queued, outcome)
	}

	outcome, _, err := r.Enqueue(model.Job{InputPath: inputPath})
	require.NoError(t, err)
	assert.Equal(t, QueueFull, outcome)
	assert.Equal(t, 4, q.Depth())
}

func TestRouter_AbsolutePathPassedThroughUnchanged(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "b.ts")
	require.NoError(t, os.WriteFile(inputPath, []byte("x"), 0o644))

	q := queue.New(4)
	r := New(q, "/some/other/dir")

	outcome, job, err := r.Enqueue(model.Job{InputPath: inputPath})
	require.NoError(t, err)
	assert.Equal(t, Queued, outcome)
	assert.Equal(t, inputPath, job.InputPath)
}
