package service

import (
	"context"
	"time"
)

type LLMService interface {
	// GenerateQuery turns a question into a query for the given engine
	// family, with provider fallback.
	GenerateQuery(ctx context.Context, engine, schemaInfo, question, provider string) (*GeneratedQuery, error)
	// ExplainQuery asks the llm for a prose explanation of a query.
	ExplainQuery(ctx context.Context, query, provider string) (string, error)
	// RecommendChart asks the llm for a chart type; the answer is one
	// of the ChartType constants or empty when unusable.
	RecommendChart(ctx context.Context, result *QueryResult, question, hint, provider string) (string, error)
	// GetProviders reports all registered llm connections with a
	// health probe per provider.
	GetProviders(ctx context.Context) ([]*LLMProviderStatus, error)
}

type GeneratedQuery struct {
	Query      string        `json:"query"`
	Provider   string        `json:"provider"`
	Model      string        `json:"model,omitempty"`
	TokensUsed int           `json:"tokensUsed,omitempty"`
	Duration   time.Duration `json:"duration"`
}

type LLMProviderStatus struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	Healthy  bool   `json:"healthy"`
	Current  bool   `json:"current"`
}
