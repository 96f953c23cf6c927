package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"

	"github.com/insightpilot/insightpilot/pkg/service/core/handlers"
	"github.com/insightpilot/insightpilot/pkg/service/core/transport"
)

type HistoryEndpoints struct {
	GetHistory     http.HandlerFunc
	SearchHistory  http.HandlerFunc
	GetFavorites   http.HandlerFunc
	ToggleFavorite http.HandlerFunc
	GetStatistics  http.HandlerFunc
	ExportHistory  http.HandlerFunc
}

func NewHistoryEndpoints(log zerolog.Logger, h *handlers.HistoryHandler) *HistoryEndpoints {
	return &HistoryEndpoints{
		GetHistory:     transport.For(h.GetHistory).Build(log),
		SearchHistory:  transport.For(h.SearchHistory).Build(log),
		GetFavorites:   transport.For(h.GetFavorites).Build(log),
		ToggleFavorite: transport.For(h.ToggleFavorite).Build(log),
		GetStatistics:  transport.For(h.GetStatistics).Build(log),
		ExportHistory:  transport.For(h.ExportHistory).Build(log),
	}
}

func NewHistoryRoutes(endpoints *HistoryEndpoints, auth func(http.Handler) http.Handler) AddRoutesFn {
	return func(router chi.Router) {
		router.Route("/api/history", func(r chi.Router) {
			r.Use(auth)
			r.Get("/", endpoints.GetHistory)
			r.Get("/search", endpoints.SearchHistory)
			r.Get("/favorites", endpoints.GetFavorites)
			r.Post("/{id}/favorite", endpoints.ToggleFavorite)
			r.Get("/statistics", endpoints.GetStatistics)
			r.Get("/export", endpoints.ExportHistory)
		})
	}
}
