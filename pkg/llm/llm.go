// Package llm contains the provider abstraction used to turn natural
// language questions into database queries, plus the concrete
// integrations for Ollama, OpenAI and GitHub Models.
package llm

import (
	"context"
	"strings"
	"time"
)

type Provider interface {
	// Name returns the provider type, such as ollama or openai.
	Name() string
	// HealthCheck reports whether the backing service is reachable
	// with the configured credentials.
	HealthCheck(ctx context.Context) error
	// Generate runs a single prompt completion.
	Generate(ctx context.Context, prompt string, opts *GenerateOptions) (*Response, error)
	// ListModels returns the model identifiers the provider exposes.
	ListModels(ctx context.Context) ([]string, error)
}

// Config carries the per-connection settings a provider is built from.
type Config struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.Temperature == 0 {
		c.Temperature = 0.1
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1000
	}
	if c.Timeout == 0 {
		c.Timeout = 180 * time.Second
	}

	return c
}

// GenerateOptions override the connection defaults for one request.
type GenerateOptions struct {
	Model       string
	Temperature *float32
	MaxTokens   *int
}

type Response struct {
	Content    string
	Model      string
	TokensUsed int
	Duration   time.Duration
	Provider   string
}

// CleanQuery strips the markdown noise models like to wrap generated
// queries in: code fences, a leading language tag and surrounding
// whitespace.
func CleanQuery(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// A language tag, if any, occupies the rest of the first line.
		if idx := strings.Index(s, "\n"); idx >= 0 {
			first := strings.TrimSpace(s[:idx])
			if first == "" || isLanguageTag(first) {
				s = s[idx+1:]
			}
		}

		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}

	return strings.TrimSpace(s)
}

func isLanguageTag(s string) bool {
	switch strings.ToLower(s) {
	case "sql", "mysql", "postgresql", "plsql", "json", "javascript", "mongodb":
		return true
	}

	return false
}
