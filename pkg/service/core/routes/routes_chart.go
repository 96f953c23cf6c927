package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"

	"github.com/insightpilot/insightpilot/pkg/service/core/handlers"
	"github.com/insightpilot/insightpilot/pkg/service/core/transport"
)

type ChartEndpoints struct {
	SuggestChart http.HandlerFunc
	RenderChart  http.HandlerFunc
}

func NewChartEndpoints(log zerolog.Logger, h *handlers.ChartHandler) *ChartEndpoints {
	return &ChartEndpoints{
		SuggestChart: transport.For(h.SuggestChart).RequestFromJSON().Build(log),
		RenderChart:  transport.For(h.RenderChart).RequestFromJSON().Build(log),
	}
}

func NewChartRoutes(endpoints *ChartEndpoints, auth func(http.Handler) http.Handler) AddRoutesFn {
	return func(router chi.Router) {
		router.Route("/api/chart", func(r chi.Router) {
			r.Use(auth)
			r.Post("/suggest", endpoints.SuggestChart)
			r.Post("/render", endpoints.RenderChart)
		})
	}
}
