package core

import (
	"context"
	"strings"

	"github.com/insightpilot/insightpilot/pkg/errs"
	"github.com/insightpilot/insightpilot/pkg/llm"
	"github.com/insightpilot/insightpilot/pkg/service"
)

var _ service.LLMService = &llmService{}

type llmService struct {
	client            *llm.Client
	connectionStorage service.ConnectionStorage
	prompts           *llm.PromptBuilder
}

func NewLLMService(client *llm.Client, connectionStorage service.ConnectionStorage) *llmService {
	return &llmService{
		client:            client,
		connectionStorage: connectionStorage,
		prompts:           llm.NewPromptBuilder(),
	}
}

// GenerateQuery renders the engine specific prompt and runs it with
// provider fallback. The answer is stripped of markdown fences.
func (s *llmService) GenerateQuery(ctx context.Context, engine, schemaInfo, question, provider string) (*service.GeneratedQuery, error) {
	const op errs.Op = "llmService.GenerateQuery"

	var prompt string
	if engine == service.EngineMongoDB {
		prompt = s.prompts.MongoDBPrompt(schemaInfo, question)
	} else {
		prompt = s.prompts.SQLPrompt(schemaInfo, question)
	}

	resp, err := s.client.GenerateWithFallback(ctx, provider, prompt, nil)
	if err != nil {
		return nil, errs.E(op, err)
	}

	query := llm.CleanQuery(resp.Content)
	if query == "" {
		return nil, errs.E(op, errs.Internal, errs.Str("provider returned an empty query"))
	}

	return &service.GeneratedQuery{
		Query:      query,
		Provider:   resp.Provider,
		Model:      resp.Model,
		TokensUsed: resp.TokensUsed,
		Duration:   resp.Duration,
	}, nil
}

func (s *llmService) ExplainQuery(ctx context.Context, query, provider string) (string, error) {
	const op errs.Op = "llmService.ExplainQuery"

	resp, err := s.client.GenerateWithFallback(ctx, provider, s.prompts.ExplainPrompt(query), nil)
	if err != nil {
		return "", errs.E(op, err)
	}

	return strings.TrimSpace(resp.Content), nil
}

// RecommendChart asks for a chart type. Unusable answers come back as
// an empty string so the caller can fall back to shape inference.
func (s *llmService) RecommendChart(ctx context.Context, result *service.QueryResult, question, hint, provider string) (string, error) {
	const op errs.Op = "llmService.RecommendChart"

	if result == nil || len(result.Rows) == 0 {
		return "", nil
	}

	prompt := s.prompts.ChartRecommendationPrompt(result.Columns, result.Rows, question, hint)

	resp, err := s.client.GenerateWithFallback(ctx, provider, prompt, nil)
	if err != nil {
		return "", errs.E(op, err)
	}

	answer := strings.ToLower(strings.TrimSpace(resp.Content))
	switch answer {
	case service.ChartTypeBar, service.ChartTypeLine, service.ChartTypePie,
		service.ChartTypeScatter, service.ChartTypeHistogram, service.ChartTypeTable:
		return answer, nil
	}

	return "", nil
}

// GetProviders reports every registered llm connection together with a
// health probe.
func (s *llmService) GetProviders(ctx context.Context) ([]*service.LLMProviderStatus, error) {
	const op errs.Op = "llmService.GetProviders"

	conns, err := s.connectionStorage.GetConnections(ctx, service.ConnectionTypeLLM)
	if err != nil {
		return nil, errs.E(op, err)
	}

	health := s.client.HealthCheckAll(ctx)
	current := s.client.Current()

	statuses := make([]*service.LLMProviderStatus, 0, len(conns))
	for _, conn := range conns {
		statuses = append(statuses, &service.LLMProviderStatus{
			Name:     conn.Name,
			Provider: conn.Subtype,
			Model:    conn.Model,
			Healthy:  health[conn.Name],
			Current:  conn.Name == current,
		})
	}

	return statuses, nil
}
