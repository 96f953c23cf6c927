package core

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightpilot/insightpilot/pkg/chart"
	"github.com/insightpilot/insightpilot/pkg/service"
)

type stubLLMService struct {
	recommendation string
	recommendErr   error
}

var _ service.LLMService = &stubLLMService{}

func (s *stubLLMService) GenerateQuery(_ context.Context, _, _, _, _ string) (*service.GeneratedQuery, error) {
	return nil, errors.New("not implemented")
}

func (s *stubLLMService) ExplainQuery(_ context.Context, _, _ string) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubLLMService) RecommendChart(_ context.Context, _ *service.QueryResult, _, _, _ string) (string, error) {
	return s.recommendation, s.recommendErr
}

func (s *stubLLMService) GetProviders(_ context.Context) ([]*service.LLMProviderStatus, error) {
	return nil, nil
}

func categoricalResult() *service.QueryResult {
	return &service.QueryResult{
		Columns: []string{"region", "revenue"},
		Rows: [][]interface{}{
			{"north", 100.0},
			{"south", 250.0},
		},
		RowCount: 2,
	}
}

func TestSuggestHintWins(t *testing.T) {
	s := NewChartService(&stubLLMService{recommendation: "line"}, chart.NewRenderer(0, 0, 0), zerolog.Nop())

	spec, err := s.Suggest(context.Background(), categoricalResult(), "revenue by region", "bar")
	require.NoError(t, err)

	assert.Equal(t, service.ChartTypeBar, spec.Type)
	assert.Equal(t, "region", spec.XColumn)
	assert.Equal(t, "revenue", spec.YColumn)
}

func TestSuggestLLMOverridesInference(t *testing.T) {
	s := NewChartService(&stubLLMService{recommendation: "line"}, chart.NewRenderer(0, 0, 0), zerolog.Nop())

	spec, err := s.Suggest(context.Background(), categoricalResult(), "revenue by region", "")
	require.NoError(t, err)

	assert.Equal(t, service.ChartTypeLine, spec.Type)
}

func TestSuggestLLMFailureFallsBackToInference(t *testing.T) {
	s := NewChartService(&stubLLMService{recommendErr: errors.New("provider down")}, chart.NewRenderer(0, 0, 0), zerolog.Nop())

	spec, err := s.Suggest(context.Background(), categoricalResult(), "revenue by region", "")
	require.NoError(t, err)

	// Two categorical rows with numeric values infer as pie.
	assert.Equal(t, service.ChartTypePie, spec.Type)
}

func TestSuggestWithoutLLM(t *testing.T) {
	s := NewChartService(nil, chart.NewRenderer(0, 0, 0), zerolog.Nop())

	spec, err := s.Suggest(context.Background(), categoricalResult(), "", "")
	require.NoError(t, err)
	assert.Equal(t, service.ChartTypePie, spec.Type)
}

func TestSuggestInvalidHintIgnored(t *testing.T) {
	s := NewChartService(nil, chart.NewRenderer(0, 0, 0), zerolog.Nop())

	spec, err := s.Suggest(context.Background(), categoricalResult(), "", "heatmap")
	require.NoError(t, err)
	assert.Equal(t, service.ChartTypePie, spec.Type)
}

func TestSuggestNilResult(t *testing.T) {
	s := NewChartService(nil, chart.NewRenderer(0, 0, 0), zerolog.Nop())

	_, err := s.Suggest(context.Background(), nil, "", "")
	require.Error(t, err)
}
