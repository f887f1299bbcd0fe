// Package hardware provides GPU detection and per-GPU readiness state for
// the NVDEC/NVENC transcode pipeline.
//
// Two-tier check, one instance per GPU index:
//
//  1. HasNVIDIA() — device file stat (/dev/nvidia<N>). Cheap, but only
//     proves the device node exists, not that CUDA encode/decode works.
//
//  2. IsGPUReady(gpuID) — fail-closed: returns true only after the ffmpeg
//     preflight runner has executed a real one-frame CUDA upload / scale_cuda
//     / NVENC encode on that GPU and called SetPreflightResult(gpuID, true).
//     That preflight does not exercise NVDEC decoding.
//     The worker pool refuses to route jobs to a GPU that hasn't passed.
package hardware

import (
	"fmt"
	"os"
	"sync"
)

var (
	mu       sync.RWMutex
	checked  = make(map[int]bool)
	passed   = make(map[int]bool)
)

// HasNVIDIA checks whether the Nth NVIDIA device node exists.
func HasNVIDIA(gpuID int) bool {
	path := fmt.Sprintf("/dev/nvidia%d", gpuID)
	_, err := os.Stat(path)
	return err == nil
}

// SetPreflightResult records the result of the real NVENC preflight for
// gpuID. Called once at startup by the ffmpeg preflight runner after running
// an actual one-frame scale/encode on the GPU, not just a device stat.
func SetPreflightResult(gpuID int, passed_ bool) {
	mu.Lock()
	defer mu.Unlock()
	checked[gpuID] = true
	passed[gpuID] = passed_
}

// IsGPUReady returns true only if the real preflight has been run for gpuID
// AND passed. It does not stat the device node itself; the preflight runner
// records a failure when the node is missing. Fail-closed: returns false if
// the preflight hasn't run yet, even if the device node exists.
func IsGPUReady(gpuID int) bool {
	mu.RLock()
	defer mu.RUnlock()
	return checked[gpuID] && passed[gpuID]
}

// ReadyGPUCount returns how many of the first n GPU indices (0..n-1) have
// passed preflight. Used to log a startup summary.
func ReadyGPUCount(n int) int {
	mu.RLock()
	defer mu.RUnlock()
	count := 0
	for i := 0; i < n; i++ {
		if checked[i] && passed[i] {
			count++
		}
	}
	return count
}

// Reset clears all recorded state. Exposed for tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	checked = make(map[int]bool)
	passed = make(map[int]bool)
}
