//go:build linux

// Package worker implements the worker pool (C4): a fixed set of workers,
// each owning exactly one persistent GPU pipeline pinned to a
// deterministically assigned GPU, staggered at startup to avoid
// thundering-herd contention on the driver during session creation.
package worker

import (
	"context"
	"time"

	"github.com/brightcue/nvtranscode/internal/admission"
	"github.com/brightcue/nvtranscode/internal/log"
	"github.com/brightcue/nvtranscode/internal/model"
	"github.com/brightcue/nvtranscode/internal/notifier"
	"github.com/brightcue/nvtranscode/internal/pipeline/gpu"
	"github.com/brightcue/nvtranscode/internal/pipeline/hardware"
	"github.com/brightcue/nvtranscode/internal/processed"
	"github.com/brightcue/nvtranscode/internal/queue"
	"github.com/brightcue/nvtranscode/internal/stats"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Deps bundles the shared collaborators every worker needs. The pool owns
// none of these; they are constructed once by the lifecycle controller.
type Deps struct {
	Queue      *queue.Queue
	Processed  *processed.Set
	Stats      *stats.Registry
	Notifier   *notifier.Notifier
	Admission  *admission.Monitor
	OutputDir  string
	NoGPU      bool
}

// Pool is the fixed-size set of worker goroutines. Workers never return an
// error the pool needs to react to (a failed file is handled entirely
// inside the worker loop), but errgroup's WaitGroup-plus-context gives
// every worker a shared cancellation signal without each one needing its
// own context/cancel pair.
type Pool struct {
	deps     Deps
	count    int
	gpuCount int
	stagger  time.Duration

	group *errgroup.Group
}

// New returns a Pool of count workers spread deterministically across
// gpuCount GPUs, spawned stagger apart.
func New(deps Deps, count, gpuCount int, stagger time.Duration) *Pool {
	return &Pool{deps: deps, count: count, gpuCount: gpuCount, stagger: stagger}
}

// gpuForWorker implements gpu_id = worker_id * G / W, which equals
// worker_id / (W/G) when W is a multiple of G and always stays in [0, G).
func gpuForWorker(workerID, workers, gpuCount int) int {
	if gpuCount <= 0 || workers <= 0 {
		return 0
	}
	return workerID * gpuCount / workers
}

// Start spawns all workers, staggering construction so concurrent GPU
// session creation does not contend on the driver.
func (p *Pool) Start(ctx context.Context) {
	group, groupCtx := errgroup.WithContext(ctx)
	p.group = group

	logger := log.WithComponent("worker_pool")
	for id := 0; id < p.count; id++ {
		gpuID := gpuForWorker(id, p.count, p.gpuCount)
		workerID := id
		group.Go(func() error {
			p.runWorker(groupCtx, workerID, gpuID)
			return nil
		})
		logger.Debug().Int("worker_id", id).Int("gpu_id", gpuID).Msg("worker spawned")
		if p.stagger > 0 && id < p.count-1 {
			time.Sleep(p.stagger)
		}
	}
}

// Wait blocks until every worker has exited (the queue is closed and
// drained).
func (p *Pool) Wait() {
	if p.group == nil {
		return
	}
	_ = p.group.Wait()
}

func (p *Pool) runWorker(ctx context.Context, workerID, gpuID int) {
	logger := log.WithComponent("worker").With().
		Int("worker_id", workerID).
		Int("gpu_id", gpuID).
		Logger()

	var pipeline *gpu.Pipeline
	if !p.deps.NoGPU {
		if !hardware.IsGPUReady(gpuID) {
			logger.Error().Msg("assigned gpu did not pass preflight, worker never starting")
			return
		}

		var err error
		pipeline, err = gpu.New(gpuID)
		if err != nil {
			logger.Error().Err(err).Msg("pipeline construction failed, worker exiting")
			return
		}
		defer pipeline.Close()
	}

	logger.Info().Msg("worker ready")

	for {
		job, ok := p.deps.Queue.Pop()
		if !ok {
			logger.Info().Msg("queue closed, worker exiting")
			return
		}

		if p.deps.Admission != nil {
			p.deps.Admission.TrackSessionStart(gpuID)
		}

		result := p.processJob(ctx, pipeline, job, workerID, gpuID, logger)

		if p.deps.Admission != nil {
			p.deps.Admission.TrackSessionEnd(gpuID)
		}

		if result.Success {
			p.deps.Stats.RecordSuccess()
			p.deps.Processed.Mark(job.InputPath)
		} else {
			p.deps.Stats.RecordFailure()
		}

		p.deps.Notifier.Notify(ctx, job.CallbackURL, job.InputPath, result.OutputPath,
			result.Success, result.FrameCount, result.ProcessingMs, job.Metadata)
	}
}

func (p *Pool) processJob(ctx context.Context, pipeline *gpu.Pipeline, job model.Job, workerID, gpuID int, logger zerolog.Logger) model.Result {
	outputPath := p.deps.Processed.OutputPath(job.InputPath)

	if p.deps.NoGPU {
		logger.Info().Str("input_path", job.InputPath).Msg("no-gpu diagnostic mode: acknowledging job without transcoding")
		return model.Result{Job: job, Success: true, OutputPath: outputPath, FrameCount: 0, ProcessingMs: 0}
	}

	fr := pipeline.ProcessFile(job.InputPath, outputPath)
	if fr.Err != nil {
		return model.Result{Job: job, Success: false, Err: fr.Err}
	}

	return model.Result{
		Job:          job,
		Success:      true,
		OutputPath:   fr.OutputPath,
		FrameCount:   int(fr.FrameCount),
		ProcessingMs: fr.ProcessingMs,
	}
}
