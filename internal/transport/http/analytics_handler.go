package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"carmarket/internal/analytics"
	"carmarket/pkg/contracts/domain"
)

// AnalyticsHandler serves the statistical query endpoints.
type AnalyticsHandler struct {
	service MarketService
	logger  *slog.Logger
}

// NewAnalyticsHandler creates an analytics handler.
func NewAnalyticsHandler(service MarketService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With(slog.String("component", "analytics_handler")),
	}
}

// Routes returns the analytics routes.
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/outliers", h.GetOutliers)
	r.Get("/clusters", h.GetClusters)
	r.Get("/correlation", h.GetCorrelation)
	r.Get("/correlation/top", h.GetTopCorrelations)
	r.Get("/ttest", h.GetTTest)
	r.Get("/anova", h.GetANOVA)
	r.Get("/normality", h.GetNormality)
	r.Get("/regression", h.GetRegression)

	return r
}

// GetOutliers handles GET /api/analytics/outliers?method=iqr|zscore.
func (h *AnalyticsHandler) GetOutliers(w http.ResponseWriter, r *http.Request) {
	sets, err := h.service.Outliers(r.Context(), parseOutlierMethod(r))
	if err != nil {
		h.renderError(w, r, err, "outliers")
		return
	}
	renderList(w, r, sets)
}

// GetClusters handles GET /api/analytics/clusters.
func (h *AnalyticsHandler) GetClusters(w http.ResponseWriter, r *http.Request) {
	clusters, err := h.service.Clusters(r.Context())
	if err != nil {
		h.renderError(w, r, err, "clusters")
		return
	}
	renderList(w, r, clusters)
}

// GetCorrelation handles GET /api/analytics/correlation?method=pearson|spearman.
func (h *AnalyticsHandler) GetCorrelation(w http.ResponseWriter, r *http.Request) {
	matrix, err := h.service.Correlation(r.Context(), parseCorrelationMethod(r))
	if err != nil {
		h.renderError(w, r, err, "correlation")
		return
	}
	render.JSON(w, r, map[string]any{
		"status": "success",
		"data":   matrix,
	})
}

// GetTopCorrelations handles GET /api/analytics/correlation/top.
func (h *AnalyticsHandler) GetTopCorrelations(w http.ResponseWriter, r *http.Request) {
	pairs, err := h.service.TopCorrelations(r.Context())
	if err != nil {
		h.renderError(w, r, err, "top correlations")
		return
	}
	renderList(w, r, pairs)
}

// GetTTest handles GET /api/analytics/ttest?group_a=Budget&group_b=Luxury.
func (h *AnalyticsHandler) GetTTest(w http.ResponseWriter, r *http.Request) {
	groupA := domain.PriceTier(r.URL.Query().Get("group_a"))
	groupB := domain.PriceTier(r.URL.Query().Get("group_b"))
	if groupA == "" {
		groupA = domain.TierBudget
	}
	if groupB == "" {
		groupB = domain.TierLuxury
	}

	result, err := h.service.TTest(r.Context(), groupA, groupB)
	if err != nil {
		h.renderError(w, r, err, "t-test")
		return
	}
	render.JSON(w, r, map[string]any{
		"status": "success",
		"data":   result,
	})
}

// GetANOVA handles GET /api/analytics/anova.
func (h *AnalyticsHandler) GetANOVA(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ANOVA(r.Context())
	if err != nil {
		h.renderError(w, r, err, "anova")
		return
	}
	render.JSON(w, r, map[string]any{
		"status": "success",
		"data":   result,
	})
}

// GetNormality handles GET /api/analytics/normality?metric=total_sales.
func (h *AnalyticsHandler) GetNormality(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = analytics.FeatureTotalSales
	}

	result, err := h.service.Normality(r.Context(), metric)
	if err != nil {
		h.renderError(w, r, err, "normality")
		return
	}
	render.JSON(w, r, map[string]any{
		"status": "success",
		"data":   result,
	})
}

// GetRegression handles GET /api/analytics/regression.
func (h *AnalyticsHandler) GetRegression(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Regression(r.Context())
	if err != nil {
		h.renderError(w, r, err, "regression")
		return
	}
	render.JSON(w, r, map[string]any{
		"status": "success",
		"data":   result,
	})
}

func (h *AnalyticsHandler) renderError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	h.logger.ErrorContext(r.Context(), "analytics query failed",
		slog.String("operation", operation),
		slog.String("error", err.Error()))
	renderAppError(w, r, err)
}
