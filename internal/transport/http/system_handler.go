package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"carmarket/pkg/contracts"
)

// SystemHandler serves health, status, quality and reload endpoints.
type SystemHandler struct {
	service MarketService
	logger  *slog.Logger
	started time.Time
}

// NewSystemHandler creates a system handler.
func NewSystemHandler(service MarketService, logger *slog.Logger) *SystemHandler {
	return &SystemHandler{
		service: service,
		logger:  logger.With(slog.String("component", "system_handler")),
		started: time.Now(),
	}
}

// Health handles GET /api/health.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status": "healthy",
		"uptime": time.Since(h.started).String(),
	})
}

// Version handles GET /api/version.
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, contracts.GetVersionInfo())
}

// Status handles GET /api/status and reports the current snapshot.
func (h *SystemHandler) Status(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Snapshot()
	if err != nil {
		renderAppError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"status": "success",
		"data":   snapshot.Info(),
	})
}

// GetQualityReports handles GET /api/quality.
func (h *SystemHandler) GetQualityReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.QualityReports(r.Context())
	if err != nil {
		renderAppError(w, r, err)
		return
	}
	renderList(w, r, reports)
}

// GetValidationReport handles GET /api/validation.
func (h *SystemHandler) GetValidationReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.ValidationReport(r.Context())
	if err != nil {
		renderAppError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"status": "success",
		"data":   report,
	})
}

// GetInsights handles GET /api/insights.
func (h *SystemHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.service.Insights(r.Context())
	if err != nil {
		renderAppError(w, r, err)
		return
	}
	renderList(w, r, insights)
}

// Reload handles POST /api/reload: rebuilds the snapshot and swaps it
// in atomically. In-flight queries finish on the old snapshot.
func (h *SystemHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "reload requested")

	info, err := h.service.Reload(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "reload failed", slog.String("error", err.Error()))
		renderAppError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "reload complete",
		slog.Uint64("version", info.Version))
	render.JSON(w, r, map[string]any{
		"status": "success",
		"data":   info,
	})
}
