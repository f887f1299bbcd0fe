// Package stats is the C7 stats registry: monotonic processed/failed
// counters and an instantaneous queue-depth gauge, guarded by a single
// mutex, plus a reporter goroutine that logs a one-line summary with a
// rolling files/sec rate every interval.
package stats

import (
	"sync"
	"time"

	"github.com/brightcue/nvtranscode/internal/log"
	"github.com/brightcue/nvtranscode/internal/metrics"
)

// DepthFunc reports the current queue depth; supplied by the caller so
// this package never imports the queue package directly.
type DepthFunc func() int

// Registry holds the counters and gauges read by /health and /metrics.
type Registry struct {
	mu        sync.Mutex
	processed int64
	failed    int64
	startTime time.Time
	workers   int
	depthFn   DepthFunc
}

// New returns a Registry. workers is the fixed worker-pool size reported
// on /health and as the transcoder_workers gauge.
func New(workers int, depthFn DepthFunc) *Registry {
	metrics.Workers.Set(float64(workers))
	return &Registry{
		startTime: time.Now(),
		workers:   workers,
		depthFn:   depthFn,
	}
}

// RecordSuccess increments the processed counter.
func (r *Registry) RecordSuccess() {
	r.mu.Lock()
	r.processed++
	r.mu.Unlock()
	metrics.ProcessedTotal.Inc()
}

// RecordFailure increments the failed counter.
func (r *Registry) RecordFailure() {
	r.mu.Lock()
	r.failed++
	r.mu.Unlock()
	metrics.FailedTotal.Inc()
}

// Snapshot is a consistent read of all counters/gauges at one instant.
type Snapshot struct {
	Processed     int64
	Failed        int64
	QueueDepth    int
	Workers       int
	UptimeSeconds int64
}

// Snapshot returns a point-in-time read of the registry.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	processed, failed := r.processed, r.failed
	r.mu.Unlock()

	depth := 0
	if r.depthFn != nil {
		depth = r.depthFn()
	}

	return Snapshot{
		Processed:     processed,
		Failed:        failed,
		QueueDepth:    depth,
		Workers:       r.workers,
		UptimeSeconds: int64(time.Since(r.startTime).Seconds()),
	}
}

// StartReporter launches a goroutine that logs a one-line summary every
// interval, with a rolling files/sec rate computed from the delta between
// consecutive samples. It stops when stop is closed.
func (r *Registry) StartReporter(interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	logger := log.WithComponent("stats")

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var lastProcessed int64
		lastAt := time.Now()

		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				snap := r.Snapshot()
				metrics.QueueDepth.Set(float64(snap.QueueDepth))
				metrics.UptimeSeconds.Set(float64(snap.UptimeSeconds))

				elapsed := now.Sub(lastAt).Seconds()
				rate := 0.0
				if elapsed > 0 {
					rate = float64(snap.Processed-lastProcessed) / elapsed
				}
				lastProcessed = snap.Processed
				lastAt = now

				logger.Info().
					Int64("processed", snap.Processed).
					Int64("failed", snap.Failed).
					Int("queue_depth", snap.QueueDepth).
					Float64("files_per_sec", rate).
					Int64("uptime_seconds", snap.UptimeSeconds).
					Msg("stats")
			}
		}
	}()
}
