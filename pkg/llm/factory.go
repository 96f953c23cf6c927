package llm

import (
	"time"

	"github.com/insightpilot/insightpilot/pkg/errs"
	"github.com/insightpilot/insightpilot/pkg/service"
)

// NewProviderForConnection builds the provider backing a saved llm
// connection. The connection password field carries the API key.
func NewProviderForConnection(conn *service.Connection, timeout time.Duration) (Provider, error) {
	const op errs.Op = "llm.NewProviderForConnection"

	cfg := Config{
		Model:   conn.Model,
		APIKey:  conn.Password,
		BaseURL: conn.BaseURL,
		Timeout: timeout,
	}

	switch conn.Subtype {
	case service.ProviderOllama:
		return NewOllamaProvider(cfg), nil
	case service.ProviderOpenAI:
		p, err := NewOpenAIProvider(cfg)
		if err != nil {
			return nil, errs.E(op, err)
		}

		return p, nil
	case service.ProviderGithubModels:
		p, err := NewGithubModelsProvider(cfg)
		if err != nil {
			return nil, errs.E(op, err)
		}

		return p, nil
	}

	return nil, errs.E(op, errs.InvalidRequest, errs.Parameter("subtype"), errs.Str("unsupported llm provider: "+conn.Subtype))
}
