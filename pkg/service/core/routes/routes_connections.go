package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"

	"github.com/insightpilot/insightpilot/pkg/service/core/handlers"
	"github.com/insightpilot/insightpilot/pkg/service/core/transport"
)

type ConnectionEndpoints struct {
	CreateConnection     http.HandlerFunc
	UpdateConnection     http.HandlerFunc
	DeleteConnection     http.HandlerFunc
	GetConnection        http.HandlerFunc
	GetConnections       http.HandlerFunc
	SetDefaultConnection http.HandlerFunc
	TestConnection       http.HandlerFunc
}

func NewConnectionEndpoints(log zerolog.Logger, h *handlers.ConnectionsHandler) *ConnectionEndpoints {
	return &ConnectionEndpoints{
		CreateConnection:     transport.For(h.CreateConnection).RequestFromJSON().Build(log),
		UpdateConnection:     transport.For(h.UpdateConnection).RequestFromJSON().Build(log),
		DeleteConnection:     transport.For(h.DeleteConnection).Build(log),
		GetConnection:        transport.For(h.GetConnection).Build(log),
		GetConnections:       transport.For(h.GetConnections).Build(log),
		SetDefaultConnection: transport.For(h.SetDefaultConnection).Build(log),
		TestConnection:       transport.For(h.TestConnection).Build(log),
	}
}

func NewConnectionRoutes(endpoints *ConnectionEndpoints, auth func(http.Handler) http.Handler) AddRoutesFn {
	return func(router chi.Router) {
		router.Route("/api/connections", func(r chi.Router) {
			r.Use(auth)
			r.Get("/", endpoints.GetConnections)
			r.Post("/", endpoints.CreateConnection)
			r.Get("/{id}", endpoints.GetConnection)
			r.Put("/{id}", endpoints.UpdateConnection)
			r.Delete("/{id}", endpoints.DeleteConnection)
			r.Post("/{id}/default", endpoints.SetDefaultConnection)
			r.Post("/{id}/test", endpoints.TestConnection)
		})
	}
}
