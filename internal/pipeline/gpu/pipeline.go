//go:build linux

package gpu

import (
	"fmt"
	"sync"

	"github.com/brightcue/nvtranscode/internal/log"
	"github.com/brightcue/nvtranscode/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	constructTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nvtranscode",
		Subsystem: "pipeline",
		Name:      "construct_total",
		Help:      "Pipeline construction attempts by outcome.",
	}, []string{"result"})

	scalerRebuildTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nvtranscode",
		Subsystem: "pipeline",
		Name:      "scaler_rebuild_total",
		Help:      "Total number of scaler graph rebuilds.",
	})
)

// Pipeline is the persistent, per-worker GPU transcode pipeline: one CUDA
// device, one NVDEC decoder session, one NVENC encoder session, and a
// scaler filter graph rebuilt between files. It is constructed once when a
// worker starts and torn down once when the worker exits; no software
// fallback exists, so construction failure is always fatal for the owning
// worker.
type Pipeline struct {
	GPUID int

	mu      sync.Mutex
	handle  *pipelineHandle
	encOpts model.EncoderOptions
	decOpts model.DecoderOptions
	scOpts  model.ScalerOptions
	closed  bool
}

// New constructs the persistent pipeline for gpuID. Failure is always
// fatal: callers must not retry, and the owning worker should exit.
func New(gpuID int) (*Pipeline, error) {
	decOpts := model.DefaultDecoderOptions(gpuID)
	encOpts := model.DefaultEncoderOptions(gpuID)
	scOpts := model.DefaultScalerOptions(gpuID)

	handle, err := createPipeline(gpuID, decOpts, encOpts, scOpts)
	if err != nil {
		constructTotal.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("gpu %d: pipeline construction failed: %w", gpuID, err)
	}

	constructTotal.WithLabelValues("success").Inc()
	log.WithComponent("pipeline").Info().Int("gpu_id", gpuID).Msg("gpu pipeline constructed")

	return &Pipeline{
		GPUID:   gpuID,
		handle:  handle,
		encOpts: encOpts,
		decOpts: decOpts,
		scOpts:  scOpts,
	}, nil
}

// resetScalerGraph destroys and rebuilds the scaler filter graph. It must
// run before every file: the graph ends in EOF state after each file's
// flush, but the decoder and encoder sessions are reused untouched.
func (p *Pipeline) resetScalerGraph() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.handle.rebuildScaler(p.scOpts); err != nil {
		return fmt.Errorf("gpu %d: scaler graph rebuild failed: %w", p.GPUID, err)
	}
	scalerRebuildTotal.Inc()
	return nil
}

// flushCodecs clears decoder/encoder internal state between files without
// recreating the sessions.
func (p *Pipeline) flushCodecs() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handle.flushCodecs()
}

// Close tears down the scaler graph, encoder, decoder and CUDA device, in
// that order. Safe to call once at worker shutdown; idempotent.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.handle.destroy()
	p.closed = true
	log.WithComponent("pipeline").Info().Int("gpu_id", p.GPUID).Msg("gpu pipeline torn down")
}
