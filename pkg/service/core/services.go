package core

import "github.com/insightpilot/insightpilot/pkg/service"

type Services struct {
	ConnectionService service.ConnectionService
	SchemaService     service.SchemaService
	LLMService        service.LLMService
	QueryService      service.QueryService
	HistoryService    service.HistoryService
	ChartService      service.ChartService
}

func NewServices(
	connectionService service.ConnectionService,
	schemaService service.SchemaService,
	llmService service.LLMService,
	queryService service.QueryService,
	historyService service.HistoryService,
	chartService service.ChartService,
) *Services {
	return &Services{
		ConnectionService: connectionService,
		SchemaService:     schemaService,
		LLMService:        llmService,
		QueryService:      queryService,
		HistoryService:    historyService,
		ChartService:      chartService,
	}
}
