package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"

	"github.com/insightpilot/insightpilot/pkg/service/core/handlers"
	"github.com/insightpilot/insightpilot/pkg/service/core/transport"
)

type SchemaEndpoints struct {
	GetSchema      http.HandlerFunc
	DescribeSchema http.HandlerFunc
}

func NewSchemaEndpoints(log zerolog.Logger, h *handlers.SchemaHandler) *SchemaEndpoints {
	return &SchemaEndpoints{
		GetSchema:      transport.For(h.GetSchema).Build(log),
		DescribeSchema: transport.For(h.DescribeSchema).Build(log),
	}
}

func NewSchemaRoutes(endpoints *SchemaEndpoints, auth func(http.Handler) http.Handler) AddRoutesFn {
	return func(router chi.Router) {
		router.Route("/api/schema", func(r chi.Router) {
			r.Use(auth)
			r.Get("/{connection}", endpoints.GetSchema)
			r.Get("/{connection}/describe", endpoints.DescribeSchema)
		})
	}
}
