// Package admission tracks per-GPU worker occupancy and ambient CPU
// pressure. GPU assignment itself is deterministic (worker_id * G / W) and
// is never gated or overridden by this package; it is purely observational:
// ActiveOnGPU/TotalActive report how busy each GPU's share of workers is and
// CPUAverage gives a CPU-pressure signal independent of the (fixed) worker
// count. Neither the stats registry nor /metrics reads these values.
package admission

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Monitor tracks, per GPU index, how many workers are currently processing
// a file, plus a rolling CPU-load average fed by a background sampler.
type Monitor struct {
	mu      sync.RWMutex
	active  map[int]int
	gpuCount int

	cpuMu      sync.Mutex
	cpuSamples []cpuSample
	cpuWindow  time.Duration

	logger zerolog.Logger
	clock  func() time.Time
}

type cpuSample struct {
	at   time.Time
	load float64
}

// NewMonitor returns a Monitor for a pool spanning gpuCount GPUs.
func NewMonitor(gpuCount int) *Monitor {
	return &Monitor{
		active:    make(map[int]int, gpuCount),
		gpuCount:  gpuCount,
		cpuWindow: 30 * time.Second,
		logger:    zerolog.Nop(),
		clock:     time.Now,
	}
}

// SetLogger injects a logger for operational visibility.
func (m *Monitor) SetLogger(l zerolog.Logger) {
	m.logger = l
}

// TrackSessionStart records that gpuID has acquired one more active worker.
func (m *Monitor) TrackSessionStart(gpuID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[gpuID]++
}

// TrackSessionEnd records that gpuID has released one active worker.
func (m *Monitor) TrackSessionEnd(gpuID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active[gpuID] > 0 {
		m.active[gpuID]--
	}
}

// ActiveOnGPU returns how many workers on gpuID are currently processing a file.
func (m *Monitor) ActiveOnGPU(gpuID int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active[gpuID]
}

// TotalActive returns the sum of active workers across all GPUs.
func (m *Monitor) TotalActive() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, n := range m.active {
		total += n
	}
	return total
}

// ObserveCPULoad records a CPU load sample (e.g. 1-minute loadavg) for the
// informational rolling-window average. This never gates admission.
func (m *Monitor) ObserveCPULoad(load float64) {
	m.observeCPULoadAt(load, m.clock())
}

func (m *Monitor) observeCPULoadAt(load float64, at time.Time) {
	if math.IsNaN(load) || math.IsInf(load, 0) || load < 0 {
		return
	}
	m.cpuMu.Lock()
	defer m.cpuMu.Unlock()
	m.cpuSamples = append(m.cpuSamples, cpuSample{at: at, load: load})
	m.pruneCPUSamplesLocked(at)
}

// CPUAverage returns the rolling-window average CPU load, or false if no
// samples are currently in the window.
func (m *Monitor) CPUAverage() (float64, bool) {
	m.cpuMu.Lock()
	defer m.cpuMu.Unlock()
	now := m.clock()
	m.pruneCPUSamplesLocked(now)
	if len(m.cpuSamples) == 0 {
		return 0, false
	}
	var sum float64
	for _, s := range m.cpuSamples {
		sum += s.load
	}
	return sum / float64(len(m.cpuSamples)), true
}

func (m *Monitor) pruneCPUSamplesLocked(now time.Time) {
	cutoff := now.Add(-m.cpuWindow)
	keep := m.cpuSamples[:0]
	for _, s := range m.cpuSamples {
		if !s.at.Before(cutoff) {
			keep = append(keep, s)
		}
	}
	m.cpuSamples = keep
}
