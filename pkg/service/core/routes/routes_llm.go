package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"

	"github.com/insightpilot/insightpilot/pkg/service/core/handlers"
	"github.com/insightpilot/insightpilot/pkg/service/core/transport"
)

type LLMEndpoints struct {
	GetProviders http.HandlerFunc
	ExplainQuery http.HandlerFunc
}

func NewLLMEndpoints(log zerolog.Logger, h *handlers.LLMHandler) *LLMEndpoints {
	return &LLMEndpoints{
		GetProviders: transport.For(h.GetProviders).Build(log),
		ExplainQuery: transport.For(h.ExplainQuery).RequestFromJSON().Build(log),
	}
}

func NewLLMRoutes(endpoints *LLMEndpoints, auth func(http.Handler) http.Handler) AddRoutesFn {
	return func(router chi.Router) {
		router.Route("/api/llm", func(r chi.Router) {
			r.Use(auth)
			r.Get("/providers", endpoints.GetProviders)
			r.Post("/explain", endpoints.ExplainQuery)
		})
	}
}
