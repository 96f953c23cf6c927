package handlers

import (
	"context"
	"net/http"

	"github.com/insightpilot/insightpilot/pkg/service"
)

type LLMHandler struct {
	llmService service.LLMService
}

func NewLLMHandler(service service.LLMService) *LLMHandler {
	return &LLMHandler{llmService: service}
}

func (h *LLMHandler) GetProviders(ctx context.Context, _ *http.Request, _ any) ([]*service.LLMProviderStatus, error) {
	return h.llmService.GetProviders(ctx)
}

type ExplainRequest struct {
	Query    string `json:"query"`
	Provider string `json:"provider,omitempty"`
}

type ExplainResponse struct {
	Explanation string `json:"explanation"`
}

func (h *LLMHandler) ExplainQuery(ctx context.Context, _ *http.Request, in ExplainRequest) (*ExplainResponse, error) {
	explanation, err := h.llmService.ExplainQuery(ctx, in.Query, in.Provider)
	if err != nil {
		return nil, err
	}

	return &ExplainResponse{Explanation: explanation}, nil
}
