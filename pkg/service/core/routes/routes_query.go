package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"

	"github.com/insightpilot/insightpilot/pkg/service/core/handlers"
	"github.com/insightpilot/insightpilot/pkg/service/core/transport"
)

type QueryEndpoints struct {
	Ask http.HandlerFunc
	Run http.HandlerFunc
}

func NewQueryEndpoints(log zerolog.Logger, h *handlers.QueryHandler) *QueryEndpoints {
	return &QueryEndpoints{
		Ask: transport.For(h.Ask).RequestFromJSON().Build(log),
		Run: transport.For(h.Run).RequestFromJSON().Build(log),
	}
}

func NewQueryRoutes(endpoints *QueryEndpoints, auth func(http.Handler) http.Handler) AddRoutesFn {
	return func(router chi.Router) {
		router.Route("/api/query", func(r chi.Router) {
			r.Use(auth)
			r.Post("/ask", endpoints.Ask)
			r.Post("/run", endpoints.Run)
		})
	}
}
