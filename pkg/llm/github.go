package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/insightpilot/insightpilot/pkg/errs"
)

// GitHub Models serves an OpenAI compatible completion API, so the
// provider reuses the openai client under a different base URL. Health
// checking goes against api.github.com because the inference endpoint
// rejects plain GETs.
const (
	defaultGithubModelsURL = "https://models.inference.ai.azure.com"
	githubAPIURL           = "https://api.github.com"
)

var githubSupportedModels = []string{
	"gpt-4o",
	"gpt-4o-mini",
	"o1-preview",
	"o1-mini",
}

type GithubModelsProvider struct {
	inner  *OpenAIProvider
	github *resty.Client
}

func NewGithubModelsProvider(cfg Config) (*GithubModelsProvider, error) {
	const op errs.Op = "llm.NewGithubModelsProvider"

	if cfg.APIKey == "" {
		return nil, errs.E(op, errs.InvalidRequest, errs.Str("github personal access token is required"))
	}

	cfg = cfg.withDefaults()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGithubModelsURL
	}

	inner, err := NewOpenAIProvider(cfg)
	if err != nil {
		return nil, errs.E(op, err)
	}
	inner.name = "github"

	github := resty.New().
		SetBaseURL(githubAPIURL).
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("X-GitHub-Api-Version", "2022-11-28").
		SetAuthScheme("token").
		SetAuthToken(cfg.APIKey)

	return &GithubModelsProvider{
		inner:  inner,
		github: github,
	}, nil
}

func (p *GithubModelsProvider) Name() string {
	return "github"
}

func (p *GithubModelsProvider) SetModel(model string) {
	p.inner.SetModel(model)
}

// HealthCheck validates the token against the GitHub user endpoint.
func (p *GithubModelsProvider) HealthCheck(ctx context.Context) error {
	const op errs.Op = "github.HealthCheck"

	resp, err := p.github.R().
		SetContext(ctx).
		Get("/user")
	if err != nil {
		return errs.E(op, errs.Unavailable, err)
	}

	if resp.IsError() {
		return errs.E(op, errs.Unauthenticated, fmt.Errorf("github token validation failed with status %d", resp.StatusCode()))
	}

	return nil
}

func (p *GithubModelsProvider) ListModels(ctx context.Context) ([]string, error) {
	models, err := p.inner.ListModels(ctx)
	if err != nil {
		// The inference endpoint does not always expose a model
		// listing, fall back to the known set.
		return append([]string(nil), githubSupportedModels...), nil
	}

	return models, nil
}

func (p *GithubModelsProvider) Generate(ctx context.Context, prompt string, opts *GenerateOptions) (*Response, error) {
	const op errs.Op = "github.Generate"

	resp, err := p.inner.Generate(ctx, prompt, opts)
	if err != nil {
		return nil, errs.E(op, err)
	}

	resp.Provider = p.Name()

	return resp, nil
}
