//go:build linux

package worker

import (
	"context"
	"testing"
	"time"

	"github.com/brightcue/nvtranscode/internal/pipeline/hardware"
	"github.com/brightcue/nvtranscode/internal/processed"
	"github.com/brightcue/nvtranscode/internal/queue"
	"github.com/brightcue/nvtranscode/internal/stats"
	"github.com/stretchr/testify/assert"
)

func TestGpuForWorker_EvenSplit(t *testing.T) {
	// 14 workers across 2 GPUs: 7 workers per GPU.
	assert.Equal(t, 0, gpuForWorker(0, 14, 2))
	assert.Equal(t, 0, gpuForWorker(6, 14, 2))
	assert.Equal(t, 1, gpuForWorker(7, 14, 2))
	assert.Equal(t, 1, gpuForWorker(13, 14, 2))
}

func TestGpuForWorker_SingleGPU(t *testing.T) {
	for id := 0; id < 5; id++ {
		assert.Equal(t, 0, gpuForWorker(id, 5, 1))
	}
}

func TestGpuForWorker_ZeroGPUsNeverDivides(t *testing.T) {
	assert.Equal(t, 0, gpuForWorker(3, 10, 0))
}

func TestGpuForWorker_MoreWorkersThanGPUSlotsStillBounded(t *testing.T) {
	// Uneven split (7 workers, 2 GPUs): 6*2/7 = 1, so the last worker
	// still lands on gpuCount-1 and never on a GPU index that does not exist.
	assert.Equal(t, 1, gpuForWorker(6, 7, 2))
}

func TestRunWorker_NeverStartsOnGPUThatFailedPreflight(t *testing.T) {
	hardware.Reset()
	hardware.SetPreflightResult(0, false)

	q := queue.New(1)
	defer q.Close()

	p := &Pool{deps: Deps{
		Queue:     q,
		Processed: processed.New(8, t.TempDir()),
		Stats:     stats.New(1, q.Depth),
	}}

	done := make(chan struct{})
	go func() {
		p.runWorker(context.Background(), 0, 0)
		close(done)
	}()

	select {
	case <-done:
		// runWorker returned without ever popping from the queue or
		// constructing a GPU pipeline, because gpu 0 never passed preflight.
	case <-time.After(time.Second):
		t.Fatal("runWorker did not return for an unready gpu")
	}
}
