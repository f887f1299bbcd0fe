// Package metrics exposes the Prometheus counters and gauges named in the
// HTTP control plane's /metrics contract, alongside the richer per-stage
// metrics the pipeline and queue packages register under the
// "nvtranscode" namespace.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProcessedTotal is transcoder_processed_total.
	ProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transcoder_processed_total",
		Help: "Total segments transcoded successfully.",
	})

	// FailedTotal is transcoder_failed_total.
	FailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transcoder_failed_total",
		Help: "Total segments that failed to transcode.",
	})

	// UptimeSeconds is transcoder_uptime_seconds.
	UptimeSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "transcoder_uptime_seconds",
		Help: "Seconds since the daemon started.",
	})

	// QueueDepth is transcoder_queue_depth.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "transcoder_queue_depth",
		Help: "Current number of jobs waiting in the queue.",
	})

	// Workers is transcoder_workers.
	Workers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "transcoder_workers",
		Help: "Configured worker-pool size.",
	})
)
