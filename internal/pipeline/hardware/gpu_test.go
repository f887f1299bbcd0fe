package hardware

import "testing"

func TestIsGPUReady_DefaultFalse(t *testing.T) {
	Reset()
	if IsGPUReady(0) {
		t.Fatal("IsGPUReady must be false before preflight runs (fail-closed)")
	}
}

func TestIsGPUReady_AfterPassedPreflight(t *testing.T) {
	Reset()
	SetPreflightResult(0, true)

	if !IsGPUReady(0) {
		t.Fatal("IsGPUReady must be true after preflight passed")
	}
	if IsGPUReady(1) {
		t.Fatal("IsGPUReady for a different GPU must stay false")
	}
}

func TestIsGPUReady_AfterFailedPreflight(t *testing.T) {
	Reset()
	SetPreflightResult(0, false)

	if IsGPUReady(0) {
		t.Fatal("IsGPUReady must be false after preflight failed")
	}
}

func TestReadyGPUCount(t *testing.T) {
	Reset()
	SetPreflightResult(0, true)
	SetPreflightResult(1, false)

	if got := ReadyGPUCount(2); got != 1 {
		t.Fatalf("ReadyGPUCount(2) = %d, want 1", got)
	}
}
