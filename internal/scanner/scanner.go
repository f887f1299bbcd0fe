// Package scanner implements the batch-mode ingestion adapter: a one-shot
// directory scan that enqueues every not-yet-processed segment then exits,
// letting the worker pool drain the queue and the process shut down once
// work is done.
package scanner

import (
	"os"
	"sort"

	"github.com/brightcue/nvtranscode/internal/log"
	"github.com/brightcue/nvtranscode/internal/model"
	"github.com/brightcue/nvtranscode/internal/processed"
	"github.com/brightcue/nvtranscode/internal/router"
)

// Scanner enumerates inputDir once and enqueues new segments.
type Scanner struct {
	inputDir  string
	processed *processed.Set
	router    *router.Router
}

// New returns a Scanner reading from inputDir.
func New(inputDir string, proc *processed.Set, rt *router.Router) *Scanner {
	return &Scanner{inputDir: inputDir, processed: proc, router: rt}
}

// Result summarizes one scan pass.
type Result struct {
	Enqueued int
	Skipped  int
	Failed   int
}

// Scan walks inputDir once (non-recursive: segments land flat in the input
// directory), consulting the processed-set before enqueueing each candidate
// so a restart never re-transcodes a file whose output already exists.
func (s *Scanner) Scan() (Result, error) {
	logger := log.WithComponent("scanner")

	entries, err := os.ReadDir(s.inputDir)
	if err != nil {
		return Result{}, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var res Result
	for _, name := range names {
		if s.processed.Contains(name) {
			res.Skipped++
			continue
		}

		outcome, job, err := s.router.Enqueue(model.Job{InputPath: name})
		if err != nil {
			logger.Error().Err(err).Str("input_path", job.InputPath).Msg("enqueue error")
			res.Failed++
			continue
		}

		switch outcome {
		case router.Queued:
			res.Enqueued++
		case router.QueueFull:
			logger.Warn().Str("input_path", job.InputPath).Msg("queue full during scan, stopping early")
			return res, nil
		case router.NotFound:
			// Raced with a concurrent delete between ReadDir and enqueue.
			res.Skipped++
		}
	}

	logger.Info().
		Int("enqueued", res.Enqueued).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("scan complete")

	return res, nil
}
