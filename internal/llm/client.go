package llm

import (
	"context"
	"log/slog"
	"time"
)

// Observer receives the outcome of each completion
type Observer func(task string, elapsed time.Duration, err error)

// Client decorates a Provider with logging and an optional observer.
// It satisfies Provider itself, so stages never know whether they hold one.
type Client struct {
	provider Provider
	logger   *slog.Logger
	observe  Observer
}

// NewClient wraps provider; logger and observe may be nil
func NewClient(provider Provider, logger *slog.Logger, observe Observer) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		provider: provider,
		logger:   logger,
		observe:  observe,
	}
}

// Name returns the wrapped provider's name
func (c *Client) Name() string {
	return c.provider.Name()
}

// IsAvailable delegates to the wrapped provider
func (c *Client) IsAvailable(ctx context.Context) bool {
	return c.provider.IsAvailable(ctx)
}

// Complete forwards the request and records its outcome
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()
	resp, err := c.provider.Complete(ctx, req)
	elapsed := time.Since(start)

	if c.observe != nil {
		c.observe(req.Task, elapsed, err)
	}

	if err != nil {
		c.logger.Warn("llm completion failed",
			"provider", c.provider.Name(),
			"task", req.Task,
			"elapsed", elapsed,
			"error", err)
		return nil, err
	}

	c.logger.Debug("llm completion",
		"provider", c.provider.Name(),
		"task", req.Task,
		"model", resp.Model,
		"tokens", resp.TokensUsed,
		"elapsed", elapsed)
	return resp, nil
}
