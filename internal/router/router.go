// Package router implements the job router (C5): the single contract used
// by both HTTP ingestion and the directory scanner to admit a job onto the
// queue. It validates the input path, enforces the queue's 95% soft cap,
// and normalizes every job to an absolute input path before it reaches the
// queue, regardless of ingestion source.
package router

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/brightcue/nvtranscode/internal/model"
	"github.com/brightcue/nvtranscode/internal/queue"
)

// Outcome is the result of an Enqueue call.
type Outcome int

const (
	// Queued means the job was accepted and pushed onto the queue.
	Queued Outcome = iota
	// NotFound means nothing exists at input_path (os.Stat failed).
	NotFound
	// QueueFull means the queue is at or above its 95% soft cap.
	QueueFull
)

func (o Outcome) String() string {
	switch o {
	case Queued:
		return "queued"
	case NotFound:
		return "not_found"
	case QueueFull:
		return "queue_full"
	default:
		return "unknown"
	}
}

// softCapFraction is the router's soft cap, expressed as a fraction of
// queue capacity, above which new jobs are rejected to preserve headroom
// for in-flight work already reserved by workers.
const softCapFraction = 0.95

// Router validates and admits jobs onto a single shared queue.
type Router struct {
	queue    *queue.Queue
	inputDir string
}

// New returns a Router that admits jobs onto q. inputDir is joined onto any
// job whose input path is not already absolute (the scanner passes bare
// filenames; HTTP ingestion is expected to already send absolute paths).
func New(q *queue.Queue, inputDir string) *Router {
	return &Router{queue: q, inputDir: inputDir}
}

// Enqueue normalizes job.InputPath to an absolute path, verifies the file
// exists, checks the queue's soft cap, then pushes. The three checks run in
// this fixed order so a missing file is reported before a full queue would
// be, matching the contract's (a)-then-(b)-then-(c) ordering.
func (r *Router) Enqueue(job model.Job) (Outcome, model.Job, error) {
	job.InputPath = r.normalize(job.InputPath)

	if _, err := os.Stat(job.InputPath); err != nil {
		return NotFound, job, nil
	}

	if r.queue.NearFull(softCapFraction) {
		return QueueFull, job, nil
	}

	if !r.queue.TryPush(job) {
		// The queue filled between the soft-cap check and the push; report
		// the same outcome a caller would expect from the soft cap.
		return QueueFull, job, nil
	}

	return Queued, job, nil
}

// normalize resolves job paths to an absolute form regardless of ingestion
// source, per the router's single normalization point.
func (r *Router) normalize(inputPath string) string {
	if filepath.IsAbs(inputPath) {
		return inputPath
	}
	joined := filepath.Join(r.inputDir, inputPath)
	if abs, err := filepath.Abs(joined); err == nil {
		return abs
	}
	return joined
}

// Depth exposes the current queue depth for callers that need to report it
// (e.g. the enqueue HTTP response body).
func (r *Router) Depth() int {
	return r.queue.Depth()
}

// Capacity exposes the queue's fixed capacity.
func (r *Router) Capacity() int {
	return r.queue.Capacity()
}

// Err is a sentinel-wrapping helper kept for callers that want a Go error
// in addition to the Outcome enum (the HTTP handler uses the enum directly
// to pick a status code; batch-mode callers that just want to log prefer an
// error).
func Err(o Outcome, inputPath string) error {
	switch o {
	case NotFound:
		return fmt.Errorf("input not found: %s", inputPath)
	case QueueFull:
		return fmt.Errorf("queue full, rejecting: %s", inputPath)
	default:
		return nil
	}
}
