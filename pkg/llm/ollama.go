package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/insightpilot/insightpilot/pkg/errs"
)

const defaultOllamaURL = "http://localhost:11434"

type ollamaGenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

type OllamaProvider struct {
	cfg    Config
	client *resty.Client
}

func NewOllamaProvider(cfg Config) *OllamaProvider {
	cfg = cfg.withDefaults()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOllamaURL
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)

	return &OllamaProvider{
		cfg:    cfg,
		client: client,
	}
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

func (p *OllamaProvider) SetModel(model string) {
	p.cfg.Model = model
}

func (p *OllamaProvider) HealthCheck(ctx context.Context) error {
	const op errs.Op = "ollama.HealthCheck"

	resp, err := p.client.R().
		SetContext(ctx).
		Get("/api/tags")
	if err != nil {
		return errs.E(op, errs.Unavailable, err)
	}

	if resp.IsError() {
		return errs.E(op, errs.Unavailable, fmt.Errorf("ollama returned status %d", resp.StatusCode()))
	}

	return nil
}

func (p *OllamaProvider) ListModels(ctx context.Context) ([]string, error) {
	const op errs.Op = "ollama.ListModels"

	var tags ollamaTagsResponse

	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&tags).
		Get("/api/tags")
	if err != nil {
		return nil, errs.E(op, errs.Unavailable, err)
	}

	if resp.IsError() {
		return nil, errs.E(op, errs.Unavailable, fmt.Errorf("ollama returned status %d", resp.StatusCode()))
	}

	models := make([]string, len(tags.Models))
	for i, m := range tags.Models {
		models[i] = m.Name
	}

	return models, nil
}

// Pull downloads a model from the Ollama registry. This can take a
// while, the caller controls the deadline through ctx.
func (p *OllamaProvider) Pull(ctx context.Context, model string) error {
	const op errs.Op = "ollama.Pull"

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"name": model}).
		Post("/api/pull")
	if err != nil {
		return errs.E(op, errs.Unavailable, err)
	}

	if resp.IsError() {
		return errs.E(op, errs.Unavailable, fmt.Errorf("pulling %s: status %d", model, resp.StatusCode()))
	}

	return nil
}

func (p *OllamaProvider) Generate(ctx context.Context, prompt string, opts *GenerateOptions) (*Response, error) {
	const op errs.Op = "ollama.Generate"

	model := p.cfg.Model
	temperature := p.cfg.Temperature
	maxTokens := p.cfg.MaxTokens

	if opts != nil {
		if opts.Model != "" {
			model = opts.Model
		}
		if opts.Temperature != nil {
			temperature = *opts.Temperature
		}
		if opts.MaxTokens != nil {
			maxTokens = *opts.MaxTokens
		}
	}

	body := ollamaGenerateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]interface{}{
			"temperature": temperature,
			"top_p":       0.9,
			"num_predict": maxTokens,
		},
	}

	var out ollamaGenerateResponse

	start := time.Now()

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post("/api/generate")
	if err != nil {
		return nil, errs.E(op, errs.Unavailable, err)
	}

	if resp.IsError() {
		return nil, errs.E(op, errs.Unavailable, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode(), resp.String()))
	}

	return &Response{
		Content:    out.Response,
		Model:      out.Model,
		TokensUsed: out.PromptEvalCount + out.EvalCount,
		Duration:   time.Since(start),
		Provider:   p.Name(),
	}, nil
}
