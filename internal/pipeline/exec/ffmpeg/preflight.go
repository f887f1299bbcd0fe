// Package ffmpeg runs the one-shot hardware preflight check: a synthetic
// one-frame CUDA upload / scale_cuda / NVENC encode on each GPU, using the
// ffmpeg CLI rather than the in-process cgo pipeline so the check can run
// (and fail safely) before any codec session is opened in-process. The
// check does not exercise NVDEC decoding.
package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/brightcue/nvtranscode/internal/log"
	"github.com/brightcue/nvtranscode/internal/pipeline/hardware"
)

// Preflighter runs the hardware readiness check for a set of GPUs.
type Preflighter struct {
	BinPath string
	Timeout time.Duration
}

// NewPreflighter returns a Preflighter invoking binPath (defaulting to
// "ffmpeg") with a per-GPU timeout.
func NewPreflighter(binPath string, timeout time.Duration) *Preflighter {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Preflighter{BinPath: binPath, Timeout: timeout}
}

// buildArgs constructs the safe, shell-free argument list for a synthetic
// one-frame CUDA upload/scale/encode on gpuID: a test pattern generated by
// lavfi as raw frames is uploaded with hwupload_cuda, handed to the
// scale_cuda filter, and encoded with h264_nvenc. No H.264 input is decoded.
// No network or filesystem input is needed, so a failure here isolates
// GPU/driver/codec problems from source-file problems.
func buildArgs(gpuID int) []string {
	return []string{
		"-nostdin", "-hide_banner", "-loglevel", "error", "-nostats",
		"-init_hw_device", fmt.Sprintf("cuda=gpu%d:%d", gpuID, gpuID),
		"-hwaccel", "cuda", "-hwaccel_output_format", "cuda", "-hwaccel_device", fmt.Sprintf("%d", gpuID),
		"-f", "lavfi", "-i", "testsrc2=size=1920x1080:rate=25:duration=0.04",
		"-vf", "format=nv12,hwupload_cuda,scale_cuda=1280:720",
		"-c:v", "h264_nvenc", "-gpu", fmt.Sprintf("%d", gpuID),
		"-preset", "p1", "-rc", "vbr", "-cq", "30", "-frames:v", "1",
		"-f", "null", "-",
	}
}

// Check runs the preflight for gpuID and records the outcome in the
// hardware package via SetPreflightResult, fail-closed on any error.
func (p *Preflighter) Check(ctx context.Context, gpuID int) {
	logger := log.WithComponent("preflight")

	if !hardware.HasNVIDIA(gpuID) {
		logger.Warn().Int("gpu_id", gpuID).Msg("nvidia device node not present, skipping preflight")
		hardware.SetPreflightResult(gpuID, false)
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	ring := NewLineRing(64)
	cmd := exec.CommandContext(runCtx, p.BinPath, buildArgs(gpuID)...) // #nosec G204 -- fixed, non-shell argv

	stderr, err := cmd.StderrPipe()
	if err != nil {
		logger.Error().Err(err).Int("gpu_id", gpuID).Msg("failed to capture preflight stderr")
		hardware.SetPreflightResult(gpuID, false)
		return
	}

	if err := cmd.Start(); err != nil {
		logger.Error().Err(err).Int("gpu_id", gpuID).Msg("failed to start preflight process")
		hardware.SetPreflightResult(gpuID, false)
		return
	}

	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		_, _ = ring.Write(scanner.Bytes())
		_, _ = ring.Write([]byte("\n"))
	}

	waitErr := cmd.Wait()
	if waitErr != nil {
		logger.Warn().
			Int("gpu_id", gpuID).
			Err(waitErr).
			Strs("stderr", ring.LastN(20)).
			Msg("gpu preflight failed")
		hardware.SetPreflightResult(gpuID, false)
		return
	}

	logger.Info().Int("gpu_id", gpuID).Msg("gpu preflight passed")
	hardware.SetPreflightResult(gpuID, true)
}

// CheckAll runs Check for GPU indices 0..count-1.
func (p *Preflighter) CheckAll(ctx context.Context, count int) {
	for i := 0; i < count; i++ {
		p.Check(ctx, i)
	}
}
