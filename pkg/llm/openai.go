package llm

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/insightpilot/insightpilot/pkg/errs"
)

const sqlSystemPrompt = "You are an expert SQL analyst and database query assistant. Provide clear, accurate, and efficient SQL queries."

type OpenAIProvider struct {
	cfg    Config
	name   string
	client *openai.Client
}

func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	const op errs.Op = "llm.NewOpenAIProvider"

	if cfg.APIKey == "" {
		return nil, errs.E(op, errs.InvalidRequest, errs.Str("openai api key is required"))
	}

	cfg = cfg.withDefaults()

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIProvider{
		cfg:    cfg,
		name:   "openai",
		client: openai.NewClientWithConfig(clientCfg),
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return p.name
}

func (p *OpenAIProvider) SetModel(model string) {
	p.cfg.Model = model
}

func (p *OpenAIProvider) HealthCheck(ctx context.Context) error {
	const op errs.Op = "openai.HealthCheck"

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := p.client.ListModels(ctx)
	if err != nil {
		return errs.E(op, errs.Unavailable, err)
	}

	return nil
}

func (p *OpenAIProvider) ListModels(ctx context.Context) ([]string, error) {
	const op errs.Op = "openai.ListModels"

	list, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, errs.E(op, errs.Unavailable, err)
	}

	models := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		models = append(models, m.ID)
	}

	return models, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, opts *GenerateOptions) (*Response, error) {
	const op errs.Op = "openai.Generate"

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

	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: sqlSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	start := time.Now()

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, errs.E(op, errs.Unavailable, err)
	}

	if len(resp.Choices) == 0 {
		return nil, errs.E(op, errs.Unavailable, errs.Str("no choices in completion response"))
	}

	return &Response{
		Content:    resp.Choices[0].Message.Content,
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
		Duration:   time.Since(start),
		Provider:   p.name,
	}, nil
}
