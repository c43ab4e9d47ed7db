package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/junyeongccom/railway-dsdgen/internal/errors"
	"github.com/junyeongccom/railway-dsdgen/internal/exporter"
	api "github.com/junyeongccom/railway-dsdgen/pkg/contracts/api/v1"
	"github.com/junyeongccom/railway-dsdgen/pkg/contracts/domain"
)

const (
	msgNoData    = "데이터를 찾을 수 없습니다."
	msgExtracted = "XBRL 데이터 %d개 항목이 추출되었습니다."
)

// XBRLHandler exposes the extraction pipeline
type XBRLHandler struct {
	service      XBRLServiceInterface
	binder       RequestBinder
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewXBRLHandler creates a new extraction handler
func NewXBRLHandler(service XBRLServiceInterface, binder RequestBinder, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *XBRLHandler {
	return &XBRLHandler{
		service:      service,
		binder:       binder,
		logger:       logger.With(slog.String("component", "xbrl_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the routes mounted under /xbrl-parser
func (h *XBRLHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/xbrl-to-dataframe", h.ExtractToDataFrame)
	r.Get("/export", h.Export)
	return r
}

// ExtractToDataFrame handles GET /xbrl-parser/xbrl-to-dataframe. Finding
// nothing is not an error: the envelope reports success=false with no data.
func (h *XBRLHandler) ExtractToDataFrame(w http.ResponseWriter, r *http.Request) {
	var req api.ExtractRequest
	if err := h.binder.BindQuery(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	outcome := h.service.ExtractAndStore(r.Context(), req.CorpCode)
	// a finished upsert is reported even past the deadline, the rows are committed
	if err := r.Context().Err(); err != nil && outcome.Upsert == nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp := api.ExtractResponse{
		Success: len(outcome.Records) > 0,
		Message: msgNoData,
		Data:    outcome.Records,
		Upsert:  outcome.Upsert,
	}
	if resp.Data == nil {
		resp.Data = []domain.CanonicalRecord{}
	}
	if resp.Success {
		resp.Message = fmt.Sprintf(msgExtracted, len(resp.Data))
	}

	h.logger.InfoContext(r.Context(), "extraction served",
		slog.String("corp_code", req.CorpCode),
		slog.Int("records", len(resp.Data)),
		slog.Bool("stored", outcome.Upsert != nil && outcome.Upsert.Success))

	render.JSON(w, r, resp)
}

// Export handles GET /xbrl-parser/export and returns the records as a
// CSV or XLSX attachment. Without records it answers 404.
func (h *XBRLHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req api.ExportRequest
	if err := h.binder.BindQuery(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if req.Format == "" {
		req.Format = string(exporter.FormatCSV)
	}
	format, err := exporter.ParseFormat(req.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrUnsupportedFormat(req.Format))
		return
	}

	records := h.service.Extract(r.Context(), req.CorpCode)
	if err := r.Context().Err(); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if len(records) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.ErrNoRecords(req.CorpCode))
		return
	}

	var buf bytes.Buffer
	if err := exporter.Encode(&buf, format, records); err != nil {
		h.logger.ErrorContext(r.Context(), "export encoding failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName(req.CorpCode)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
