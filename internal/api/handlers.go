package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maltedev/amazon-search-scraper/internal/config"
	"github.com/maltedev/amazon-search-scraper/internal/jobs"
	"github.com/maltedev/amazon-search-scraper/internal/metrics"
)

type Handlers struct {
	manager *jobs.Manager
	metrics *metrics.Metrics
	logger  *slog.Logger

	// baseCtx bounds submitted jobs to the server lifecycle instead of
	// the submitting request's connection.
	baseCtx context.Context
}

func NewHandlers(baseCtx context.Context, manager *jobs.Manager, m *metrics.Metrics, logger *slog.Logger) *Handlers {
	return &Handlers{
		manager: manager,
		metrics: m,
		logger:  logger,
		baseCtx: baseCtx,
	}
}

// Routes mounts all API endpoints on the router.
func (h *Handlers) Routes(r chi.Router) {
	r.Post("/api/v1/jobs", h.SubmitJob)
	r.Get("/api/v1/jobs/{jobID}", h.GetJob)
	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(h.metrics.Registry, promhttp.HandlerOpts{}))
}

// SubmitJobResponse acknowledges an accepted crawl job.
type SubmitJobResponse struct {
	JobID string `json:"job_id"`
}

// SubmitJob accepts a crawl request: keywords plus shared options.
func (h *Handlers) SubmitJob(w http.ResponseWriter, r *http.Request) {
	var in config.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in.ApplyDefaults()
	if err := in.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := h.manager.Submit(h.baseCtx, &in)
	h.respondJSON(w, http.StatusAccepted, SubmitJobResponse{JobID: job.ID})
}

// GetJob reports a job's status and per-keyword summaries.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, ok := h.manager.Get(jobID)
	if !ok {
		h.respondError(w, http.StatusNotFound, "job not found")
		return
	}

	h.respondJSON(w, http.StatusOK, job)
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
