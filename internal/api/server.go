// Package api is the HTTP control plane (C5 ingestion adapter + read-only
// operator surface): POST /enqueue, GET /health, GET /metrics, and a 404
// handler listing the available routes. It never blocks a request on GPU
// work; /enqueue only validates and pushes onto the queue.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/brightcue/nvtranscode/internal/api/middleware"
	"github.com/brightcue/nvtranscode/internal/log"
	"github.com/brightcue/nvtranscode/internal/model"
	"github.com/brightcue/nvtranscode/internal/router"
	"github.com/brightcue/nvtranscode/internal/stats"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var availableEndpoints = []string{"/enqueue", "/health", "/metrics"}

// Server wires the router, stats registry and mux together.
type Server struct {
	router *router.Router
	stats  *stats.Registry
	mux    http.Handler
}

// New builds the HTTP handler tree.
func New(rt *router.Router, st *stats.Registry) *Server {
	s := &Server{router: rt, stats: st}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(log.Middleware())
	r.Use(middleware.CORS())

	r.Post("/enqueue", s.handleEnqueue)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.NotFound(s.handleNotFound)

	s.mux = r
	return s
}

// ServeHTTP satisfies http.Handler so Server can be passed straight to
// http.Server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type enqueueRequest struct {
	InputPath   string      `json:"inputPath"`
	CallbackURL string      `json:"callbackUrl"`
	Metadata    interface{} `json:"metadata"`
}

func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}

	if req.InputPath == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing inputPath"})
		return
	}

	metadata := ""
	if req.Metadata != nil {
		if encoded, err := json.Marshal(req.Metadata); err == nil {
			metadata = string(encoded)
		}
	}

	job := model.Job{
		InputPath:   req.InputPath,
		CallbackURL: req.CallbackURL,
		Metadata:    metadata,
	}

	outcome, queuedJob, err := s.router.Enqueue(job)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	switch outcome {
	case router.Queued:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":      "queued",
			"inputPath":   queuedJob.InputPath,
			"queue_depth": s.router.Depth(),
		})
	case router.NotFound:
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"error":     "File not found",
			"inputPath": queuedJob.InputPath,
		})
	case router.QueueFull:
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"error":           "Queue almost full",
			"queue_depth":     s.router.Depth(),
			"queue_capacity":  s.router.Capacity(),
			"retry_after":     "60",
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.stats.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"processed":      snap.Processed,
		"failed":         snap.Failed,
		"queue_depth":    snap.QueueDepth,
		"workers":        snap.Workers,
		"uptime_seconds": snap.UptimeSeconds,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":               "Not found",
		"available_endpoints": availableEndpoints,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
