package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name    string
	content string
	err     error
	calls   int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) HealthCheck(_ context.Context) error { return p.err }

func (p *stubProvider) ListModels(_ context.Context) ([]string, error) { return nil, nil }

func (p *stubProvider) Generate(_ context.Context, _ string, _ *GenerateOptions) (*Response, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}

	return &Response{Content: p.content, Provider: p.name}, nil
}

func TestClientFirstProviderBecomesCurrent(t *testing.T) {
	c := NewClient(zerolog.Nop())
	c.AddProvider("local", &stubProvider{name: "ollama"})
	c.AddProvider("cloud", &stubProvider{name: "openai"})

	assert.Equal(t, "local", c.Current())

	require.NoError(t, c.SetCurrent("cloud"))
	assert.Equal(t, "cloud", c.Current())

	assert.Error(t, c.SetCurrent("missing"))
}

func TestClientRemoveProviderReassignsCurrent(t *testing.T) {
	c := NewClient(zerolog.Nop())
	c.AddProvider("b", &stubProvider{name: "ollama"})
	c.AddProvider("a", &stubProvider{name: "openai"})

	c.RemoveProvider("b")

	assert.Equal(t, "a", c.Current())
	assert.Equal(t, []string{"a"}, c.ListProviders())
}

func TestGenerateWithFallback(t *testing.T) {
	failing := &stubProvider{name: "ollama", err: errors.New("connection refused")}
	working := &stubProvider{name: "openai", content: "SELECT 1"}

	c := NewClient(zerolog.Nop())
	c.AddProvider("local", failing)
	c.AddProvider("cloud", working)

	resp, err := c.GenerateWithFallback(context.Background(), "", "prompt", nil)
	require.NoError(t, err)

	assert.Equal(t, "SELECT 1", resp.Content)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, working.calls)
}

func TestGenerateWithFallbackRequestedFirst(t *testing.T) {
	first := &stubProvider{name: "ollama", content: "from local"}
	second := &stubProvider{name: "openai", content: "from cloud"}

	c := NewClient(zerolog.Nop())
	c.AddProvider("local", first)
	c.AddProvider("cloud", second)

	resp, err := c.GenerateWithFallback(context.Background(), "cloud", "prompt", nil)
	require.NoError(t, err)

	assert.Equal(t, "from cloud", resp.Content)
	assert.Equal(t, 0, first.calls)
}

func TestGenerateWithFallbackAllFail(t *testing.T) {
	c := NewClient(zerolog.Nop())
	c.AddProvider("local", &stubProvider{name: "ollama", err: errors.New("down")})
	c.AddProvider("cloud", &stubProvider{name: "openai", err: errors.New("quota exceeded")})

	_, err := c.GenerateWithFallback(context.Background(), "", "prompt", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGenerateWithFallbackNoProviders(t *testing.T) {
	c := NewClient(zerolog.Nop())

	_, err := c.GenerateWithFallback(context.Background(), "", "prompt", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no llm providers registered")
}

func TestGenerateWithFallbackCancelledContext(t *testing.T) {
	failing := &stubProvider{name: "ollama", err: errors.New("down")}
	never := &stubProvider{name: "openai", content: "unused"}

	c := NewClient(zerolog.Nop())
	c.AddProvider("local", failing)
	c.AddProvider("cloud", never)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GenerateWithFallback(ctx, "local", "prompt", nil)
	require.Error(t, err)
	assert.Equal(t, 0, never.calls)
}

func TestStats(t *testing.T) {
	failing := &stubProvider{name: "ollama", err: errors.New("down")}
	working := &stubProvider{name: "openai", content: "SELECT 1"}

	c := NewClient(zerolog.Nop())
	c.AddProvider("local", failing)
	c.AddProvider("cloud", working)

	_, err := c.GenerateWithFallback(context.Background(), "", "prompt", nil)
	require.NoError(t, err)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats["local"].Failures)
	assert.Equal(t, int64(1), stats["cloud"].Successes)
	assert.Equal(t, int64(1), stats["cloud"].Attempts)
}

type modelStub struct {
	stubProvider
	model string
}

func (p *modelStub) SetModel(model string) { p.model = model }

func TestUpdateModel(t *testing.T) {
	updatable := &modelStub{stubProvider: stubProvider{name: "ollama"}}

	c := NewClient(zerolog.Nop())
	c.AddProvider("local", updatable)
	c.AddProvider("fixed", &stubProvider{name: "openai"})

	require.NoError(t, c.UpdateModel("local", "llama3:70b"))
	assert.Equal(t, "llama3:70b", updatable.model)

	assert.Error(t, c.UpdateModel("fixed", "gpt-4o"))
	assert.Error(t, c.UpdateModel("missing", "gpt-4o"))
}

func TestHealthCheckAll(t *testing.T) {
	c := NewClient(zerolog.Nop())
	c.AddProvider("up", &stubProvider{name: "ollama"})
	c.AddProvider("down", &stubProvider{name: "openai", err: errors.New("unreachable")})

	health := c.HealthCheckAll(context.Background())

	assert.True(t, health["up"])
	assert.False(t, health["down"])
}
