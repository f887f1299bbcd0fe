// Package processed implements the idempotence guard that keeps a file
// already transcoded from being processed twice: an in-memory ring buffer
// of recently seen basenames backed by a filesystem existence check for
// anything old enough to have rolled off the ring, mirroring the
// processed_files circular buffer of the original transcoder's C.
package processed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Set tracks which input basenames have already been transcoded.
type Set struct {
	mu        sync.Mutex
	ring      []string
	index     map[string]struct{}
	next      int
	size      int
	outputDir string
}

// New returns a Set with a ring buffer of the given capacity, backed by
// outputDir for the filesystem fallback check.
func New(capacity int, outputDir string) *Set {
	if capacity <= 0 {
		capacity = 1
	}
	return &Set{
		ring:      make([]string, capacity),
		index:     make(map[string]struct{}, capacity),
		outputDir: outputDir,
	}
}

// outputName derives the expected transcoded output filename for an input
// basename, per spec.md's "<basename>_h264.ts" convention.
func outputName(inputBasename string) string {
	ext := filepath.Ext(inputBasename)
	base := strings.TrimSuffix(inputBasename, ext)
	return base + "_h264.ts"
}

// Contains reports whether name has already been processed, either because
// it is still in the in-memory ring or because its expected output file
// already exists on disk.
func (s *Set) Contains(name string) bool {
	base := filepath.Base(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, inRing := s.index[base]; inRing {
		return true
	}

	outPath := filepath.Join(s.outputDir, outputName(base))
	if _, err := os.Stat(outPath); err == nil {
		return true
	}
	return false
}

// Mark records name as processed, evicting the oldest ring entry if the
// buffer is full.
func (s *Set) Mark(name string) {
	base := filepath.Base(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[base]; ok {
		return
	}

	if s.size == len(s.ring) {
		evicted := s.ring[s.next]
		delete(s.index, evicted)
	} else {
		s.size++
	}

	s.ring[s.next] = base
	s.index[base] = struct{}{}
	s.next = (s.next + 1) % len(s.ring)
}

// Len returns the number of basenames currently held in the ring.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// OutputPath returns the expected output path for an input path, for use by
// the worker pipeline once a file has been successfully transcoded.
func (s *Set) OutputPath(inputPath string) string {
	return filepath.Join(s.outputDir, outputName(filepath.Base(inputPath)))
}

// String is useful for debug logging of set sizing.
func (s *Set) String() string {
	return fmt.Sprintf("processed.Set{size=%d/%d}", s.Len(), len(s.ring))
}
