package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"figaroflows/internal/flows"
	"figaroflows/internal/model"
	"figaroflows/internal/providers"
	"figaroflows/internal/sankey"
)

type Handler struct {
	provider providers.Provider
	logger   *slog.Logger
}

type yearsResponse struct {
	Provider string `json:"provider"`
	Years    []int  `json:"years"`
}

type flowsResponse struct {
	Year    int                `json:"year"`
	Count   int                `json:"count"`
	Records []model.FlowRecord `json:"records"`
}

func NewHandler(provider providers.Provider, logger *slog.Logger) *Handler {
	return &Handler{
		provider: provider,
		logger:   logger.With(slog.String("component", "web")),
	}
}

// Router serves the JSON API. Every request runs the pipeline against the
// dataset files again.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/years", h.Years)
		r.Get("/flows/{year}", h.Flows)
		r.Get("/sankey/{year}", h.Sankey)
	})
	return r
}

// Health handles GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"status":   "ok",
		"provider": h.provider.Name(),
	})
}

// Years handles GET /api/years
func (h *Handler) Years(w http.ResponseWriter, r *http.Request) {
	years, err := h.provider.AvailableYears(r.Context())
	if err != nil {
		h.fail(w, r, flowError(err), err)
		return
	}
	render.JSON(w, r, yearsResponse{Provider: h.provider.Name(), Years: years})
}

// Flows handles GET /api/flows/{year}?min_value=
func (h *Handler) Flows(w http.ResponseWriter, r *http.Request) {
	year, opts, apiErr := parseFlowRequest(r)
	if apiErr != nil {
		h.fail(w, r, apiErr, nil)
		return
	}
	records, err := h.provider.FetchFlows(r.Context(), year, opts)
	if err != nil {
		h.fail(w, r, flowError(err), err)
		return
	}
	render.JSON(w, r, flowsResponse{Year: year, Count: len(records), Records: records})
}

// Sankey handles GET /api/sankey/{year}
func (h *Handler) Sankey(w http.ResponseWriter, r *http.Request) {
	year, opts, apiErr := parseFlowRequest(r)
	if apiErr != nil {
		h.fail(w, r, apiErr, nil)
		return
	}
	records, err := h.provider.FetchFlows(r.Context(), year, opts)
	if err != nil {
		h.fail(w, r, flowError(err), err)
		return
	}
	render.JSON(w, r, sankey.Build(year, records))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, apiErr *APIError, cause error) {
	apiErr.RequestID = middleware.GetReqID(r.Context())
	attrs := []any{
		slog.String("path", r.URL.Path),
		slog.Int("status", apiErr.StatusCode),
		slog.String("request_id", apiErr.RequestID),
	}
	if cause != nil {
		attrs = append(attrs, slog.String("error", cause.Error()))
	}
	if apiErr.StatusCode >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", attrs...)
	} else {
		h.logger.WarnContext(r.Context(), "request rejected", attrs...)
	}
	_ = render.Render(w, r, apiErr)
}

func parseFlowRequest(r *http.Request) (int, flows.Options, *APIError) {
	var opts flows.Options

	year, err := strconv.Atoi(strings.TrimSpace(chi.URLParam(r, "year")))
	if err != nil {
		return 0, opts, invalidParameter("year", "Year must be an integer")
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("min_value")); raw != "" {
		minValue, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, opts, invalidParameter("min_value", "min_value must be a number")
		}
		opts.MinValue = &minValue
	}
	return year, opts, nil
}
