package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"shiprisk/internal/config"
	"shiprisk/internal/errors"
	"shiprisk/internal/operations"
	"shiprisk/internal/store"
	"shiprisk/pkg/contracts"
	"shiprisk/pkg/contracts/domain"
)

// ReportHandler serves persisted pipeline artifacts
type ReportHandler struct {
	store  store.Store
	logger *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(st store.Store, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		store:  st,
		logger: logger.With(slog.String("handler", "report")),
	}
}

// ModelResponse describes the fitted model without its covariance matrix
type ModelResponse struct {
	RunID      string                  `json:"run_id"`
	FitScope   string                  `json:"fit_scope"`
	Exclude    []string                `json:"exclude,omitempty"`
	Summary    domain.ModelSummary     `json:"summary"`
	Vocabulary map[string][]string     `json:"vocabulary"`
	Warnings   []domain.WarningSummary `json:"warnings,omitempty"`
}

// GetReport handles GET /api/v1/report
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	var report domain.Report
	if err := h.store.Load(r.Context(), store.KeyReport, &report); err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// GetModel handles GET /api/v1/model
func (h *ReportHandler) GetModel(w http.ResponseWriter, r *http.Request) {
	var fm operations.FittedModel
	if err := h.store.Load(r.Context(), store.KeyModel, &fm); err != nil {
		h.fail(w, r, err)
		return
	}
	if fm.Model == nil || fm.Encoder == nil {
		h.fail(w, r, errors.NewStorageError("stored model is incomplete", nil))
		return
	}
	render.JSON(w, r, ModelResponse{
		RunID:      fm.RunID,
		FitScope:   fm.FitScope,
		Exclude:    fm.Exclude,
		Summary:    fm.Model.Summary(),
		Vocabulary: fm.Encoder.Vocabulary,
		Warnings:   fm.Warnings,
	})
}

func (h *ReportHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := errors.FromAppError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	render.Render(w, r, errors.NewErrorResponse(apiErr))
}

// HealthHandler reports liveness and store reachability
type HealthHandler struct {
	store store.Store
	start time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(st store.Store) *HealthHandler {
	return &HealthHandler{store: st, start: time.Now()}
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status    string                `json:"status"`
	Version   string                `json:"version"`
	Build     contracts.VersionInfo `json:"build"`
	Uptime    string                `json:"uptime"`
	Artifacts int                   `json:"artifacts"`
	Error     string                `json:"error,omitempty"`
}

// HealthCheck handles GET /healthz
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: config.AppVersion,
		Build:   contracts.GetVersionInfo(),
		Uptime:  time.Since(h.start).Truncate(time.Second).String(),
	}
	keys, err := h.store.Keys(r.Context())
	if err != nil {
		resp.Status = "degraded"
		resp.Error = err.Error()
		render.Status(r, http.StatusServiceUnavailable)
	}
	resp.Artifacts = len(keys)
	render.JSON(w, r, resp)
}
