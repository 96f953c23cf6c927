package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/insightpilot/insightpilot/pkg/adapters"
	"github.com/insightpilot/insightpilot/pkg/errs"
	"github.com/insightpilot/insightpilot/pkg/service"
)

var _ service.QueryService = &queryService{}

// explanationUnavailable is returned when every provider fails to
// explain a generated query.
const explanationUnavailable = "Query explanation not available"

type queryService struct {
	connectionStorage service.ConnectionStorage
	schemaService     service.SchemaService
	llmService        service.LLMService
	historyService    service.HistoryService
	chartService      service.ChartService

	queryTimeout time.Duration
	maxRows      int
	log          zerolog.Logger

	// exec dials the target database. Tests swap it out to avoid
	// driver connections.
	exec func(ctx context.Context, conn *service.Connection, query string) (*service.QueryResult, error)
}

func NewQueryService(
	connectionStorage service.ConnectionStorage,
	schemaService service.SchemaService,
	llmService service.LLMService,
	historyService service.HistoryService,
	chartService service.ChartService,
	queryTimeout time.Duration,
	maxRows int,
	log zerolog.Logger,
) *queryService {
	if queryTimeout <= 0 {
		queryTimeout = 30 * time.Second
	}

	s := &queryService{
		connectionStorage: connectionStorage,
		schemaService:     schemaService,
		llmService:        llmService,
		historyService:    historyService,
		chartService:      chartService,
		queryTimeout:      queryTimeout,
		maxRows:           maxRows,
		log:               log,
	}
	s.exec = s.execute

	return s
}

// Ask runs the full question to answer pipeline: schema lookup, query
// generation, execution, chart suggestion and history recording.
func (s *queryService) Ask(ctx context.Context, in service.QueryRequest) (*service.QueryResponse, error) {
	const op errs.Op = "queryService.Ask"

	start := time.Now()

	conn, err := s.connectionStorage.GetConnectionByName(ctx, in.ConnectionName)
	if err != nil {
		return nil, errs.E(op, err)
	}

	schema, err := s.schemaService.GetSchema(ctx, in.ConnectionName)
	if err != nil {
		return nil, errs.E(op, err)
	}

	generated, err := s.llmService.GenerateQuery(ctx, conn.Engine(), s.schemaService.Describe(schema), in.Question, in.Provider)
	if err != nil {
		return nil, errs.E(op, err)
	}

	result, err := s.exec(ctx, conn, generated.Query)
	s.record(ctx, in, generated.Query, result, err)
	if err != nil {
		return nil, errs.E(op, err)
	}

	resp := &service.QueryResponse{
		Query:    generated.Query,
		Result:   result,
		Provider: generated.Provider,
	}

	if explanation, err := s.llmService.ExplainQuery(ctx, generated.Query, in.Provider); err == nil {
		resp.Explanation = explanation
	} else {
		s.log.Warn().Err(err).Msg("query explanation failed")
		resp.Explanation = explanationUnavailable
	}

	if chart, err := s.chartService.Suggest(ctx, result, in.Question, in.ChartHint); err == nil {
		resp.Chart = chart
	} else {
		s.log.Warn().Err(err).Msg("chart suggestion failed")
	}

	resp.Duration = time.Since(start)

	return resp, nil
}

// Run executes an already generated query, typically a replay from
// history.
func (s *queryService) Run(ctx context.Context, connectionName, query string) (*service.QueryResponse, error) {
	const op errs.Op = "queryService.Run"

	start := time.Now()

	conn, err := s.connectionStorage.GetConnectionByName(ctx, connectionName)
	if err != nil {
		return nil, errs.E(op, err)
	}

	result, err := s.exec(ctx, conn, query)
	s.record(ctx, service.QueryRequest{ConnectionName: connectionName}, query, result, err)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return &service.QueryResponse{
		Query:    query,
		Result:   result,
		Duration: time.Since(start),
	}, nil
}

func (s *queryService) execute(ctx context.Context, conn *service.Connection, query string) (*service.QueryResult, error) {
	adapter, err := adapters.New(conn, adapters.Options{MaxRows: s.maxRows, Log: s.log})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := adapter.Connect(ctx); err != nil {
		QueryExecutions.WithLabelValues(conn.Engine(), "error").Inc()
		return nil, err
	}
	defer adapter.Close()

	result, err := adapter.Query(ctx, query)
	if err != nil {
		QueryExecutions.WithLabelValues(conn.Engine(), "error").Inc()
		return nil, err
	}

	QueryExecutions.WithLabelValues(conn.Engine(), "success").Inc()

	return result, nil
}

// record stores the run in history. A history failure never fails the
// query itself.
func (s *queryService) record(ctx context.Context, in service.QueryRequest, query string, result *service.QueryResult, execErr error) {
	entry := service.NewHistoryEntry{
		ConnectionName: in.ConnectionName,
		Question:       in.Question,
		GeneratedQuery: query,
		Success:        execErr == nil,
	}

	if result != nil {
		entry.ExecutionMS = result.Duration.Milliseconds()
		entry.RowCount = result.RowCount
	}
	if execErr != nil {
		entry.ErrorMessage = execErr.Error()
	}

	if _, err := s.historyService.RecordQuery(ctx, entry); err != nil {
		s.log.Warn().Err(err).Msg("recording query history failed")
	}
}
