package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/google/uuid"

	"github.com/insightpilot/insightpilot/pkg/errs"
	"github.com/insightpilot/insightpilot/pkg/service"
	"github.com/insightpilot/insightpilot/pkg/service/core/transport"
)

type HistoryHandler struct {
	historyService service.HistoryService
}

func NewHistoryHandler(service service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: service}
}

func (h *HistoryHandler) GetHistory(ctx context.Context, r *http.Request, _ any) ([]*service.HistoryEntry, error) {
	return h.historyService.GetHistory(ctx, r.URL.Query().Get("connection"), queryLimit(r))
}

func (h *HistoryHandler) SearchHistory(ctx context.Context, r *http.Request, _ any) ([]*service.HistoryEntry, error) {
	return h.historyService.SearchHistory(ctx, r.URL.Query().Get("q"), queryLimit(r))
}

func (h *HistoryHandler) GetFavorites(ctx context.Context, _ *http.Request, _ any) ([]*service.HistoryEntry, error) {
	return h.historyService.GetFavorites(ctx)
}

func (h *HistoryHandler) ToggleFavorite(ctx context.Context, r *http.Request, _ any) (*service.HistoryEntry, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, errs.E(errs.InvalidRequest, errs.Parameter("id"), err)
	}

	return h.historyService.ToggleFavorite(ctx, id)
}

func (h *HistoryHandler) GetStatistics(ctx context.Context, _ *http.Request, _ any) (*service.HistoryStatistics, error) {
	return h.historyService.GetStatistics(ctx)
}

func (h *HistoryHandler) ExportHistory(ctx context.Context, r *http.Request, _ any) (*transport.ByteWriter, error) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	out, err := h.historyService.ExportHistory(ctx, format, queryLimit(r))
	if err != nil {
		return nil, err
	}

	contentType := "application/json"
	if format == "csv" {
		contentType = "text/csv"
	}

	return transport.NewByteWriter(contentType, out), nil
}

func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}

	return limit
}
