//go:build linux

package gpu

import "testing"

func TestFileState_String(t *testing.T) {
	cases := map[FileState]string{
		Idle:            "idle",
		Opening:         "opening",
		Running:         "running",
		FlushingDecoder: "flushing_decoder",
		FlushingScaler:  "flushing_scaler",
		FlushingEncoder: "flushing_encoder",
		Closing:         "closing",
		Failed:          "failed",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("FileState(%d).String() = %q, want %q", state, got, want)
		}
	}
}
