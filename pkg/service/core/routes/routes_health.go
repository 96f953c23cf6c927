package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthEndpoints struct {
	IsAlive http.HandlerFunc
	IsReady http.HandlerFunc
}

func NewHealthEndpoints(metastore Pinger) *HealthEndpoints {
	return &HealthEndpoints{
		IsAlive: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
		IsReady: func(w http.ResponseWriter, r *http.Request) {
			if err := metastore.Ping(r.Context()); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}

			w.WriteHeader(http.StatusOK)
		},
	}
}

func NewHealthRoutes(endpoints *HealthEndpoints) AddRoutesFn {
	return func(router chi.Router) {
		router.Get("/internal/isalive", endpoints.IsAlive)
		router.Get("/internal/isready", endpoints.IsReady)
	}
}
