package handlers

import (
	"github.com/insightpilot/insightpilot/pkg/service/core"
)

type Handlers struct {
	ConnectionsHandler *ConnectionsHandler
	QueryHandler       *QueryHandler
	SchemaHandler      *SchemaHandler
	HistoryHandler     *HistoryHandler
	LLMHandler         *LLMHandler
	ChartHandler       *ChartHandler
}

func NewHandlers(s *core.Services) *Handlers {
	return &Handlers{
		ConnectionsHandler: NewConnectionsHandler(s.ConnectionService),
		QueryHandler:       NewQueryHandler(s.QueryService),
		SchemaHandler:      NewSchemaHandler(s.SchemaService),
		HistoryHandler:     NewHistoryHandler(s.HistoryService),
		LLMHandler:         NewLLMHandler(s.LLMService),
		ChartHandler:       NewChartHandler(s.ChartService),
	}
}
