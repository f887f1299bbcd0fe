// Package notifier implements the completion notifier (C6): a best-effort
// POST to the job's callback URL once a file finishes, success or failure.
// A failed callback never fails the underlying transcode.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/brightcue/nvtranscode/internal/log"
)

// Payload is the JSON body posted to callback_url.
type Payload struct {
	Status           string          `json:"status"`
	InputFile        string          `json:"inputFile"`
	OutputFile       string          `json:"outputFile"`
	FrameCount       int             `json:"frameCount"`
	ProcessingTimeMs int64           `json:"processingTimeMs"`
	Metadata         json.RawMessage `json:"metadata,omitempty"`
}

// Notifier posts completion callbacks with a bounded timeout. It always
// reports the caller-supplied outputPath and frameCount verbatim: diagnostic
// (--no-gpu) mode already resolves an honest, zero-frame placeholder before
// calling Notify, so there is no mode-specific branching here. See
// DESIGN.md for why this system does not reproduce the original's
// input-as-output quirk in that mode.
type Notifier struct {
	Client  *http.Client
	Timeout time.Duration
}

// New returns a Notifier with the given per-request timeout.
func New(timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		Client:  &http.Client{Timeout: timeout},
		Timeout: timeout,
	}
}

// Notify posts the completion payload to callbackURL. It is best-effort:
// errors are logged, never returned to the caller, and never retried.
//
// metadata is the job's opaque metadata already in JSON-encoded string form
// (model.Job.Metadata); it is embedded as a raw JSON value rather than
// re-encoded, so the callback reproduces the original structure the caller
// enqueued instead of a JSON string containing escaped JSON.
func (n *Notifier) Notify(ctx context.Context, callbackURL, inputPath, outputPath string, success bool, frameCount int, processingMs int64, metadata string) {
	if callbackURL == "" {
		return
	}

	logger := log.WithComponent("notifier")

	status := "completed"
	if !success {
		status = "failed"
	}

	body := Payload{
		Status:           status,
		InputFile:        inputPath,
		OutputFile:       outputPath,
		FrameCount:       frameCount,
		ProcessingTimeMs: processingMs,
	}
	if metadata != "" {
		body.Metadata = json.RawMessage(metadata)
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		logger.Error().Err(err).Str("callback_url", callbackURL).Msg("failed to encode callback payload")
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, n.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, callbackURL, bytes.NewReader(encoded))
	if err != nil {
		logger.Error().Err(err).Str("callback_url", callbackURL).Msg("failed to build callback request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		logger.Warn().Err(err).Str("callback_url", callbackURL).Msg("completion callback failed")
		return
	}
	defer resp.Body.Close()
}
