package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "carmarket/internal/errors"
	"carmarket/pkg/contracts/domain"
)

// MarketHandler serves the reconciled summary tables and the market
// structure queries. Handlers stay thin: parse, delegate, render.
type MarketHandler struct {
	service MarketService
	logger  *slog.Logger
}

// NewMarketHandler creates a market handler.
func NewMarketHandler(service MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		service: service,
		logger:  logger.With(slog.String("component", "market_handler")),
	}
}

// Routes returns the market query routes.
func (h *MarketHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/automakers", h.GetAutomakers)
	r.Get("/prices", h.GetPriceSummaries)
	r.Get("/sales", h.GetSalesSummaries)
	r.Get("/trims", h.GetTrimSummaries)
	r.Get("/share", h.GetMarketShare)
	r.Get("/concentration", h.GetConcentration)
	r.Get("/tiers", h.GetPriceTiers)
	r.Get("/segments", h.GetSegmentSales)
	r.Get("/elasticity", h.GetElasticity)

	return r
}

// GetAutomakers handles GET /api/market/automakers.
func (h *MarketHandler) GetAutomakers(w http.ResponseWriter, r *http.Request) {
	automakers, err := h.service.Automakers(r.Context())
	if err != nil {
		h.renderError(w, r, err, "automakers")
		return
	}
	renderList(w, r, automakers)
}

// GetPriceSummaries handles GET /api/market/prices.
func (h *MarketHandler) GetPriceSummaries(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.PriceSummaries(r.Context())
	if err != nil {
		h.renderError(w, r, err, "price summaries")
		return
	}
	renderList(w, r, rows)
}

// GetSalesSummaries handles GET /api/market/sales.
func (h *MarketHandler) GetSalesSummaries(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.SalesSummaries(r.Context())
	if err != nil {
		h.renderError(w, r, err, "sales summaries")
		return
	}
	renderList(w, r, rows)
}

// GetTrimSummaries handles GET /api/market/trims.
func (h *MarketHandler) GetTrimSummaries(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.TrimSummaries(r.Context())
	if err != nil {
		h.renderError(w, r, err, "trim summaries")
		return
	}
	renderList(w, r, rows)
}

// GetMarketShare handles GET /api/market/share.
func (h *MarketHandler) GetMarketShare(w http.ResponseWriter, r *http.Request) {
	shares, err := h.service.MarketShare(r.Context())
	if err != nil {
		h.renderError(w, r, err, "market share")
		return
	}
	renderList(w, r, shares)
}

// GetConcentration handles GET /api/market/concentration.
func (h *MarketHandler) GetConcentration(w http.ResponseWriter, r *http.Request) {
	concentration, err := h.service.Concentration(r.Context())
	if err != nil {
		h.renderError(w, r, err, "concentration")
		return
	}
	render.JSON(w, r, map[string]any{
		"status": "success",
		"data":   concentration,
	})
}

// GetPriceTiers handles GET /api/market/tiers.
func (h *MarketHandler) GetPriceTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.service.PriceTiers(r.Context())
	if err != nil {
		h.renderError(w, r, err, "price tiers")
		return
	}
	renderList(w, r, tiers)
}

// GetSegmentSales handles GET /api/market/segments.
func (h *MarketHandler) GetSegmentSales(w http.ResponseWriter, r *http.Request) {
	segments, err := h.service.SalesBySegment(r.Context())
	if err != nil {
		h.renderError(w, r, err, "segment sales")
		return
	}
	renderList(w, r, segments)
}

// GetElasticity handles GET /api/market/elasticity.
func (h *MarketHandler) GetElasticity(w http.ResponseWriter, r *http.Request) {
	points, err := h.service.Elasticity(r.Context())
	if err != nil {
		h.renderError(w, r, err, "elasticity")
		return
	}
	renderList(w, r, points)
}

func (h *MarketHandler) renderError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	h.logger.ErrorContext(r.Context(), "query failed",
		slog.String("operation", operation),
		slog.String("error", err.Error()))
	renderAppError(w, r, err)
}

// renderList writes a success envelope; a nil slice becomes an empty
// JSON array, not null.
func renderList[T any](w http.ResponseWriter, r *http.Request, items []T) {
	if items == nil {
		items = []T{}
	}
	render.JSON(w, r, map[string]any{
		"status": "success",
		"data":   items,
		"count":  len(items),
	})
}

// renderAppError maps pipeline errors onto the API error renderers.
func renderAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apierrors.AppError
	if errors.As(err, &appErr) {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.FromAppError(appErr)))
		return
	}
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		render.Render(w, r, apierrors.NewErrorResponse(apiErr))
		return
	}
	render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
}

// parseOutlierMethod reads the method query parameter with a default.
func parseOutlierMethod(r *http.Request) domain.OutlierMethod {
	if method := r.URL.Query().Get("method"); method != "" {
		return domain.OutlierMethod(method)
	}
	return domain.OutlierIQR
}

// parseCorrelationMethod reads the method query parameter with a
// default.
func parseCorrelationMethod(r *http.Request) domain.CorrelationMethod {
	if method := r.URL.Query().Get("method"); method != "" {
		return domain.CorrelationMethod(method)
	}
	return domain.CorrelationPearson
}
