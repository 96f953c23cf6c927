package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightpilot/insightpilot/pkg/chart"
	"github.com/insightpilot/insightpilot/pkg/service"
)

type fakeQueryLLM struct {
	generated   *service.GeneratedQuery
	generateErr error
	explanation string
	explainErr  error
}

var _ service.LLMService = &fakeQueryLLM{}

func (f *fakeQueryLLM) GenerateQuery(_ context.Context, _, _, _, _ string) (*service.GeneratedQuery, error) {
	return f.generated, f.generateErr
}

func (f *fakeQueryLLM) ExplainQuery(_ context.Context, _, _ string) (string, error) {
	return f.explanation, f.explainErr
}

func (f *fakeQueryLLM) RecommendChart(_ context.Context, _ *service.QueryResult, _, _, _ string) (string, error) {
	return "", nil
}

func (f *fakeQueryLLM) GetProviders(_ context.Context) ([]*service.LLMProviderStatus, error) {
	return nil, nil
}

type fakeSchemaService struct{}

var _ service.SchemaService = &fakeSchemaService{}

func (f *fakeSchemaService) GetSchema(_ context.Context, _ string) ([]*service.TableSchema, error) {
	return []*service.TableSchema{{Name: "users"}}, nil
}

func (f *fakeSchemaService) Describe(_ []*service.TableSchema) string {
	return "Table: users"
}

type recordingHistoryService struct {
	entries []service.NewHistoryEntry
}

var _ service.HistoryService = &recordingHistoryService{}

func (f *recordingHistoryService) RecordQuery(_ context.Context, in service.NewHistoryEntry) (*service.HistoryEntry, error) {
	f.entries = append(f.entries, in)
	return &service.HistoryEntry{ID: uuid.New()}, nil
}

func (f *recordingHistoryService) GetHistory(_ context.Context, _ string, _ int) ([]*service.HistoryEntry, error) {
	return nil, nil
}

func (f *recordingHistoryService) SearchHistory(_ context.Context, _ string, _ int) ([]*service.HistoryEntry, error) {
	return nil, nil
}

func (f *recordingHistoryService) GetFavorites(_ context.Context) ([]*service.HistoryEntry, error) {
	return nil, nil
}

func (f *recordingHistoryService) ToggleFavorite(_ context.Context, _ uuid.UUID) (*service.HistoryEntry, error) {
	return nil, errors.New("not implemented")
}

func (f *recordingHistoryService) CleanupHistory(_ context.Context, _ int) (int64, error) {
	return 0, nil
}

func (f *recordingHistoryService) GetStatistics(_ context.Context) (*service.HistoryStatistics, error) {
	return nil, nil
}

func (f *recordingHistoryService) ExportHistory(_ context.Context, _ string, _ int) ([]byte, error) {
	return nil, nil
}

func newTestQueryService(t *testing.T, llm service.LLMService, history service.HistoryService) *queryService {
	t.Helper()

	storage := newFakeConnectionStorage()
	_, err := storage.CreateConnection(context.Background(), service.NewConnection{
		Name:    "sales",
		Type:    service.ConnectionTypeDatabase,
		Subtype: service.EnginePostgres,
		Host:    "localhost",
		Port:    5432,
	})
	require.NoError(t, err)

	s := NewQueryService(
		storage,
		&fakeSchemaService{},
		llm,
		history,
		NewChartService(nil, chart.NewRenderer(0, 0, 0), zerolog.Nop()),
		time.Second,
		100,
		zerolog.Nop(),
	)
	s.exec = func(_ context.Context, _ *service.Connection, _ string) (*service.QueryResult, error) {
		return &service.QueryResult{
			Columns:  []string{"region", "revenue"},
			Rows:     [][]interface{}{{"north", 100.0}},
			RowCount: 1,
			Duration: 5 * time.Millisecond,
		}, nil
	}

	return s
}

func TestAsk(t *testing.T) {
	history := &recordingHistoryService{}
	llm := &fakeQueryLLM{
		generated:   &service.GeneratedQuery{Query: "SELECT region, revenue FROM sales", Provider: "ollama"},
		explanation: "Sums revenue per region.",
	}

	s := newTestQueryService(t, llm, history)

	resp, err := s.Ask(context.Background(), service.QueryRequest{
		ConnectionName: "sales",
		Question:       "revenue by region",
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT region, revenue FROM sales", resp.Query)
	assert.Equal(t, "ollama", resp.Provider)
	assert.Equal(t, "Sums revenue per region.", resp.Explanation)
	assert.Equal(t, 1, resp.Result.RowCount)

	require.Len(t, history.entries, 1)
	assert.True(t, history.entries[0].Success)
	assert.Equal(t, "revenue by region", history.entries[0].Question)
}

func TestAskExplanationFailureDegrades(t *testing.T) {
	llm := &fakeQueryLLM{
		generated:  &service.GeneratedQuery{Query: "SELECT 1", Provider: "ollama"},
		explainErr: errors.New("all providers down"),
	}

	s := newTestQueryService(t, llm, &recordingHistoryService{})

	resp, err := s.Ask(context.Background(), service.QueryRequest{
		ConnectionName: "sales",
		Question:       "anything",
	})
	require.NoError(t, err)

	assert.Equal(t, "Query explanation not available", resp.Explanation)
}

func TestAskUnknownConnection(t *testing.T) {
	s := newTestQueryService(t, &fakeQueryLLM{}, &recordingHistoryService{})

	_, err := s.Ask(context.Background(), service.QueryRequest{
		ConnectionName: "missing",
		Question:       "anything",
	})
	require.Error(t, err)
}

func TestRunRecordsFailures(t *testing.T) {
	history := &recordingHistoryService{}

	s := newTestQueryService(t, &fakeQueryLLM{}, history)
	s.exec = func(_ context.Context, _ *service.Connection, _ string) (*service.QueryResult, error) {
		return nil, errors.New("relation does not exist")
	}

	_, err := s.Run(context.Background(), "sales", "SELECT * FROM nope")
	require.Error(t, err)

	require.Len(t, history.entries, 1)
	assert.False(t, history.entries[0].Success)
	assert.Contains(t, history.entries[0].ErrorMessage, "relation does not exist")
}
