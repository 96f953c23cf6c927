package handlers

import (
	"context"
	"net/http"

	"github.com/insightpilot/insightpilot/pkg/service"
)

type QueryHandler struct {
	queryService service.QueryService
}

func NewQueryHandler(service service.QueryService) *QueryHandler {
	return &QueryHandler{queryService: service}
}

func (h *QueryHandler) Ask(ctx context.Context, _ *http.Request, in service.QueryRequest) (*service.QueryResponse, error) {
	return h.queryService.Ask(ctx, in)
}

type RunQueryRequest struct {
	ConnectionName string `json:"connectionName"`
	Query          string `json:"query"`
}

func (h *QueryHandler) Run(ctx context.Context, _ *http.Request, in RunQueryRequest) (*service.QueryResponse, error) {
	return h.queryService.Run(ctx, in.ConnectionName, in.Query)
}
