// Package model holds the immutable data types shared across the transcoder
// daemon's components: jobs, pipeline options, and results.
package model

import "time"

// Job is an immutable unit of work: one input segment to transcode.
type Job struct {
	// InputPath is an absolute path to the source segment. Always populated
	// by the router regardless of ingestion source (HTTP already sends an
	// absolute path; the scanner joins the bare filename it discovers to
	// the configured input directory before enqueueing).
	InputPath string

	// CallbackURL is optional; empty means no completion notification is sent.
	CallbackURL string

	// Metadata is an opaque JSON value (kept in string form) echoed back
	// verbatim in the completion callback.
	Metadata string
}

// Result describes the outcome of processing one Job.
type Result struct {
	Job          Job
	Success      bool
	OutputPath   string
	FrameCount   int
	ProcessingMs int64
	Err          error
}

// Duration returns the processing time as a time.Duration.
func (r Result) Duration() time.Duration {
	return time.Duration(r.ProcessingMs) * time.Millisecond
}
