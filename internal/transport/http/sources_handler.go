package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/junyeongccom/railway-dsdgen/internal/errors"
	"github.com/junyeongccom/railway-dsdgen/internal/services"
	api "github.com/junyeongccom/railway-dsdgen/pkg/contracts/api/v1"
)

// SourcesHandler serves persisted source rows
type SourcesHandler struct {
	service      SourceServiceInterface
	binder       RequestBinder
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewSourcesHandler creates a new sources handler
func NewSourcesHandler(service SourceServiceInterface, binder RequestBinder, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SourcesHandler {
	return &SourcesHandler{
		service:      service,
		binder:       binder,
		logger:       logger.With(slog.String("component", "sources_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the routes mounted under /dsdgen
func (h *SourcesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/sources", h.ListSources)
	r.Get("/dsd-source", h.ListDsdSources)
	return r
}

// ListSources handles GET /dsdgen/sources?corp_code=&year=
func (h *SourcesHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	var req api.SourceQueryRequest
	if err := h.binder.BindQuery(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows, err := h.service.List(r.Context(), req.CorpCode, req.Year)
	if err != nil {
		h.handleReadError(w, r, err)
		return
	}

	render.JSON(w, r, api.SourceListResponse{
		Success: true,
		Message: fmt.Sprintf("%d개 항목이 조회되었습니다.", len(rows)),
		Data:    rows,
		Count:   len(rows),
	})
}

// ListDsdSources handles GET /dsdgen/dsd-source?corp_code=
func (h *SourcesHandler) ListDsdSources(w http.ResponseWriter, r *http.Request) {
	var req api.DsdSourceRequest
	if err := h.binder.BindQuery(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows, err := h.service.ListInOrder(r.Context(), req.CorpCode)
	if err != nil {
		h.handleReadError(w, r, err)
		return
	}

	render.JSON(w, r, api.DsdSourceListResponse{Success: true, Data: rows})
}

func (h *SourcesHandler) handleReadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrStoreDisabled):
		h.errorHandler.HandleError(w, r, apierrors.ErrStoreUnavailable)
	case errors.Is(err, services.ErrInvalidInput):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("corp_code", "corp_code is required"))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
