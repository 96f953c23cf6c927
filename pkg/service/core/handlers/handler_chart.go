package handlers

import (
	"context"
	"net/http"

	"github.com/insightpilot/insightpilot/pkg/service"
	"github.com/insightpilot/insightpilot/pkg/service/core/transport"
)

type ChartHandler struct {
	chartService service.ChartService
}

func NewChartHandler(service service.ChartService) *ChartHandler {
	return &ChartHandler{chartService: service}
}

type SuggestChartRequest struct {
	Result   *service.QueryResult `json:"result"`
	Question string               `json:"question,omitempty"`
	Hint     string               `json:"hint,omitempty"`
}

func (h *ChartHandler) SuggestChart(ctx context.Context, _ *http.Request, in SuggestChartRequest) (*service.ChartSpec, error) {
	return h.chartService.Suggest(ctx, in.Result, in.Question, in.Hint)
}

type RenderChartRequest struct {
	Result *service.QueryResult `json:"result"`
	Spec   *service.ChartSpec   `json:"spec"`
}

func (h *ChartHandler) RenderChart(_ context.Context, _ *http.Request, in RenderChartRequest) (*transport.ByteWriter, error) {
	png, err := h.chartService.Render(in.Result, in.Spec)
	if err != nil {
		return nil, err
	}

	return transport.NewByteWriter("image/png", png), nil
}
