package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_PostsCompletedPayload(t *testing.T) {
	received := make(chan Payload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p Payload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		received <- p
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(2 * time.Second)
	n.Notify(context.Background(), srv.URL, "/in/a.ts", "/out/a_h264.ts", true, 125, 450, `{"k":"v"}`)

	select {
	case p := <-received:
		assert.Equal(t, "completed", p.Status)
		assert.Equal(t, "/in/a.ts", p.InputFile)
		assert.Equal(t, "/out/a_h264.ts", p.OutputFile)
		assert.Equal(t, 125, p.FrameCount)
		assert.JSONEq(t, `{"k":"v"}`, string(p.Metadata))
	case <-time.After(time.Second):
		t.Fatal("callback not received")
	}
}

func TestNotifier_DiagnosticModeReportsHonestZeroFrames(t *testing.T) {
	// In --no-gpu mode the worker never substitutes the input path for the
	// output path; it passes the real expected output path with
	// frameCount=0 since no frames were actually produced.
	received := make(chan Payload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p Payload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		received <- p
	}))
	defer srv.Close()

	n := New(2 * time.Second)
	n.Notify(context.Background(), srv.URL, "/in/a.ts", "/out/a_h264.ts", true, 0, 5, "")

	select {
	case p := <-received:
		assert.Equal(t, "/out/a_h264.ts", p.OutputFile)
		assert.Equal(t, 0, p.FrameCount)
	case <-time.After(time.Second):
		t.Fatal("callback not received")
	}
}

func TestNotifier_EmptyCallbackURLNoOp(t *testing.T) {
	n := New(time.Second)
	n.Notify(context.Background(), "", "/in/a.ts", "/out/a_h264.ts", true, 1, 1, "")
}

func TestNotifier_FailedStatusOnFailure(t *testing.T) {
	received := make(chan Payload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p Payload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		received <- p
	}))
	defer srv.Close()

	n := New(time.Second)
	n.Notify(context.Background(), srv.URL, "/in/a.ts", "", false, 0, 10, "")

	select {
	case p := <-received:
		assert.Equal(t, "failed", p.Status)
	case <-time.After(time.Second):
		t.Fatal("callback not received")
	}
}

// TestNotifier_MetadataEmbeddedAsRawJSONNotDoubleEncoded guards against
// re-marshaling an already-JSON-encoded metadata string: the wire body must
// contain the original JSON structure, not an escaped JSON string.
func TestNotifier_MetadataEmbeddedAsRawJSONNotDoubleEncoded(t *testing.T) {
	bodies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 4096)
		n, _ := r.Body.Read(buf)
		bodies <- string(buf[:n])
	}))
	defer srv.Close()

	n := New(2 * time.Second)
	n.Notify(context.Background(), srv.URL, "/in/a.ts", "/out/a_h264.ts", true, 10, 100, `{"scene":"intro","take":2}`)

	select {
	case raw := <-bodies:
		assert.Contains(t, raw, `"metadata":{"scene":"intro","take":2}`)
		assert.NotContains(t, raw, `\"scene\"`)
	case <-time.After(time.Second):
		t.Fatal("callback not received")
	}
}
