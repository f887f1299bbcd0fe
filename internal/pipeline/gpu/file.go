//go:build linux

package gpu

import (
	"fmt"
	"time"

	"github.com/brightcue/nvtranscode/internal/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nvtranscode",
		Subsystem: "pipeline",
		Name:      "files_total",
		Help:      "Files processed by outcome.",
	}, []string{"result"})

	processingSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "nvtranscode",
		Subsystem: "pipeline",
		Name:      "file_processing_seconds",
		Help:      "Per-file decode+scale+encode+mux wall time.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})
)

// FileResult is the outcome of processing one file through the pipeline.
type FileResult struct {
	OutputPath   string
	FrameCount   int64
	ProcessingMs int64
	State        FileState
	Err          error
}

// ProcessFile runs one input segment through the persistent pipeline:
// opens input/output, rebuilds the scaler graph, drives the dataflow loop
// through the three-stage flush, writes the trailer, and restores the
// codec sessions to a clean state for the next file. A failure at any
// stage marks the file Failed and leaves the pipeline intact for the next
// job; it never tears down p.
func (p *Pipeline) ProcessFile(inputPath, outputPath string) FileResult {
	logger := log.WithComponent("pipeline").With().
		Int("gpu_id", p.GPUID).
		Str("input_path", inputPath).
		Str("output_path", outputPath).
		Logger()

	start := time.Now()
	state := Opening

	if err := p.resetScalerGraph(); err != nil {
		filesTotal.WithLabelValues("failed").Inc()
		logger.Error().Err(err).Str("state", state.String()).Msg("per-file scaler reset failed")
		return FileResult{State: Failed, Err: err}
	}

	p.mu.Lock()
	fh, err := openFile(p.handle, inputPath, outputPath)
	if err != nil {
		p.mu.Unlock()
		filesTotal.WithLabelValues("failed").Inc()
		logger.Error().Err(err).Str("state", state.String()).Msg("failed to open input/output")
		return FileResult{State: Failed, Err: fmt.Errorf("open: %w", err)}
	}

	state = Running
	frameCount, procErr := fh.process(p.handle)
	fh.close()
	p.mu.Unlock()

	elapsed := time.Since(start)
	processingSeconds.Observe(elapsed.Seconds())

	if procErr != nil {
		filesTotal.WithLabelValues("failed").Inc()
		logger.Error().Err(procErr).Str("state", state.String()).Msg("dataflow or flush failed, output invalidated")
		// The codec sessions may be left mid-state after a failed file;
		// flushing restores them without tearing down the pipeline.
		p.flushCodecs()
		return FileResult{State: Failed, Err: procErr}
	}

	// Successful completion still flushes the codec sessions so the next
	// file's Opening state starts from a clean decoder/encoder.
	p.flushCodecs()

	filesTotal.WithLabelValues("success").Inc()
	logger.Info().
		Int64("frame_count", frameCount).
		Dur("elapsed", elapsed).
		Msg("file processed")

	return FileResult{
		OutputPath:   outputPath,
		FrameCount:   frameCount,
		ProcessingMs: elapsed.Milliseconds(),
		State:        Idle,
	}
}
