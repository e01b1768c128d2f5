package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrExhausted is returned when every provider in a fallback chain failed.
// For the implementation stage this is terminal; the strategy document
// already produced is still surfaced to the caller.
var ErrExhausted = errors.New("all providers in fallback chain failed")

// Chain consults a priority-ordered list of providers. The first provider
// that returns a usable response wins; no later provider is attempted.
//
// Per attempt: an independent timeout, and one immediate retry when the
// failure is classified retryable (timeout, 5xx, rate limit). Terminal
// failures (auth, malformed request) fall straight through to the next
// provider.
type Chain struct {
	providers []Client
	timeout   time.Duration
	log       *slog.Logger
}

// NewChain builds a fallback chain over the given providers in priority
// order. A zero timeout means attempts are bounded only by the caller's
// context.
func NewChain(timeout time.Duration, providers ...Client) *Chain {
	return &Chain{
		providers: providers,
		timeout:   timeout,
		log:       slog.Default(),
	}
}

// WithLogger replaces the chain's logger.
func (c *Chain) WithLogger(log *slog.Logger) *Chain {
	c.log = log
	return c
}

// Name identifies the chain in logs.
func (c *Chain) Name() string { return "fallback-chain" }

// Providers returns the chain's providers in priority order.
func (c *Chain) Providers() []Client { return c.providers }

// Complete runs the chain. The returned error wraps ErrExhausted along with
// every provider's failure when no provider succeeds.
func (c *Chain) Complete(ctx context.Context, system, user string) (string, error) {
	if len(c.providers) == 0 {
		return "", fmt.Errorf("%w: no providers configured", ErrExhausted)
	}

	var failures []error
	for _, p := range c.providers {
		name := providerName(p)

		out, err := c.attempt(ctx, p, system, user)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			// Caller abandoned the request; don't burn the rest of the chain.
			return "", ctx.Err()
		}

		if Retryable(err) {
			c.log.Warn("provider failed, retrying once", "provider", name, "error", err)
			out, err = c.attempt(ctx, p, system, user)
			if err == nil {
				return out, nil
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
		}

		c.log.Warn("provider failed, falling through", "provider", name, "error", err)
		failures = append(failures, fmt.Errorf("%s: %w", name, err))
	}

	return "", fmt.Errorf("%w: %w", ErrExhausted, errors.Join(failures...))
}

func (c *Chain) attempt(ctx context.Context, p Client, system, user string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return p.Complete(ctx, system, user)
}

func providerName(p Client) string {
	if n, ok := p.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}

// CodingChainFromKeys assembles the coding-class fallback chain from whatever
// provider keys are configured: Cerebras, then Mistral, then OpenRouter, then
// OpenAI as the guaranteed-available default. Returns nil when no coding
// provider is configured at all.
func CodingChainFromKeys(timeout time.Duration, cerebrasKey, cerebrasModel, mistralKey, mistralModel, openrouterKey, openrouterModel, openaiKey, openaiModel string) *Chain {
	var providers []Client
	if cerebrasKey != "" {
		providers = append(providers, NewCerebrasClient(cerebrasKey, cerebrasModel))
	}
	if mistralKey != "" {
		providers = append(providers, NewMistralClient(mistralKey, mistralModel))
	}
	if openrouterKey != "" {
		providers = append(providers, NewOpenRouterClient(openrouterKey, openrouterModel))
	}
	if openaiKey != "" {
		providers = append(providers, NewOpenAIClient(openaiKey, openaiModel))
	}
	if len(providers) == 0 {
		return nil
	}
	return NewChain(timeout, providers...)
}
