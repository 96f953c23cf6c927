package llm

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/insightpilot/insightpilot/pkg/errs"
)

// Client dispatches generation requests across named providers with a
// single level of fallback: the requested (or current) provider is
// tried first, then the remaining ones in name order until one
// succeeds or the list is exhausted.
type Client struct {
	lock      sync.RWMutex
	providers map[string]Provider
	current   string
	stats     map[string]*ProviderStats

	log zerolog.Logger
}

// ModelUpdater is implemented by providers whose default model can be
// switched at runtime.
type ModelUpdater interface {
	SetModel(model string)
}

type ProviderStats struct {
	Attempts  int64 `json:"attempts"`
	Successes int64 `json:"successes"`
	Failures  int64 `json:"failures"`
}

type ProviderStatus struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	Healthy  bool   `json:"healthy"`
	Current  bool   `json:"current"`
}

func NewClient(log zerolog.Logger) *Client {
	return &Client{
		providers: map[string]Provider{},
		stats:     map[string]*ProviderStats{},
		log:       log,
	}
}

// AddProvider registers p under name. The first registered provider
// becomes the current one.
func (c *Client) AddProvider(name string, p Provider) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.providers[name] = p
	if c.current == "" {
		c.current = name
	}
}

func (c *Client) RemoveProvider(name string) {
	c.lock.Lock()
	defer c.lock.Unlock()

	delete(c.providers, name)
	if c.current == name {
		c.current = ""
		for _, n := range c.names() {
			c.current = n
			break
		}
	}
}

func (c *Client) SetCurrent(name string) error {
	const op errs.Op = "llm.SetCurrent"

	c.lock.Lock()
	defer c.lock.Unlock()

	if _, ok := c.providers[name]; !ok {
		return errs.E(op, errs.NotExist, errs.Parameter("provider"), errs.Str("provider not registered: "+name))
	}

	c.current = name

	return nil
}

func (c *Client) Current() string {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.current
}

func (c *Client) Provider(name string) (Provider, error) {
	const op errs.Op = "llm.Provider"

	c.lock.RLock()
	defer c.lock.RUnlock()

	if name == "" {
		name = c.current
	}

	p, ok := c.providers[name]
	if !ok {
		return nil, errs.E(op, errs.NotExist, errs.Parameter("provider"), errs.Str("provider not registered: "+name))
	}

	return p, nil
}

// names must be called with at least a read lock held.
func (c *Client) names() []string {
	names := make([]string, 0, len(c.providers))
	for name := range c.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (c *Client) ListProviders() []string {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.names()
}

// Generate runs a completion on the named provider, or the current one
// when name is empty. No fallback happens here.
func (c *Client) Generate(ctx context.Context, name, prompt string, opts *GenerateOptions) (*Response, error) {
	const op errs.Op = "llm.Generate"

	p, err := c.Provider(name)
	if err != nil {
		return nil, errs.E(op, err)
	}

	resp, err := p.Generate(ctx, prompt, opts)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return resp, nil
}

// GenerateWithFallback tries the named (or current) provider first and
// walks the remaining providers in order until one answers.
func (c *Client) GenerateWithFallback(ctx context.Context, name, prompt string, opts *GenerateOptions) (*Response, error) {
	const op errs.Op = "llm.GenerateWithFallback"

	c.lock.RLock()
	first := name
	if first == "" {
		first = c.current
	}

	order := make([]string, 0, len(c.providers))
	if _, ok := c.providers[first]; ok {
		order = append(order, first)
	}
	for _, n := range c.names() {
		if n != first {
			order = append(order, n)
		}
	}
	c.lock.RUnlock()

	if len(order) == 0 {
		return nil, errs.E(op, errs.NotExist, errs.Str("no llm providers registered"))
	}

	var lastErr error

	for i, n := range order {
		if i > 0 {
			c.log.Info().Str("provider", n).Msg("trying fallback provider")
		}

		resp, err := c.Generate(ctx, n, prompt, opts)
		if err == nil {
			GenerationAttempts.WithLabelValues(n, "success").Inc()
			c.recordAttempt(n, true)
			return resp, nil
		}

		GenerationAttempts.WithLabelValues(n, "error").Inc()
		c.recordAttempt(n, false)

		if ctx.Err() != nil {
			return nil, errs.E(op, ctx.Err())
		}

		c.log.Warn().Err(err).Str("provider", n).Msg("provider failed, falling back")
		lastErr = err
	}

	return nil, errs.E(op, errs.Unavailable, lastErr)
}

func (c *Client) recordAttempt(name string, success bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	s, ok := c.stats[name]
	if !ok {
		s = &ProviderStats{}
		c.stats[name] = s
	}

	s.Attempts++
	if success {
		s.Successes++
	} else {
		s.Failures++
	}
}

// Stats returns a copy of the per-provider attempt counters.
func (c *Client) Stats() map[string]ProviderStats {
	c.lock.RLock()
	defer c.lock.RUnlock()

	out := make(map[string]ProviderStats, len(c.stats))
	for n, s := range c.stats {
		out[n] = *s
	}

	return out
}

// UpdateModel switches the default model of a registered provider.
func (c *Client) UpdateModel(name, model string) error {
	const op errs.Op = "llm.UpdateModel"

	p, err := c.Provider(name)
	if err != nil {
		return errs.E(op, err)
	}

	u, ok := p.(ModelUpdater)
	if !ok {
		return errs.E(op, errs.InvalidRequest, errs.Parameter("provider"), errs.Str("provider does not support model updates"))
	}

	u.SetModel(model)

	return nil
}

// HealthCheckAll probes every provider. The result maps provider name
// to reachability.
func (c *Client) HealthCheckAll(ctx context.Context) map[string]bool {
	c.lock.RLock()
	providers := make(map[string]Provider, len(c.providers))
	for n, p := range c.providers {
		providers[n] = p
	}
	c.lock.RUnlock()

	out := make(map[string]bool, len(providers))
	for n, p := range providers {
		out[n] = p.HealthCheck(ctx) == nil
	}

	return out
}
