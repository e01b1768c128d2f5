// Package llm provides clients for the hosted model providers and the
// priority-ordered fallback chain used by the coding agent.
//
// Two classes of provider exist: the "strategy" class (one client, picked at
// startup from whichever key is available) and the "coding" class (several
// clients consulted in fallback order). All of them satisfy Client.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Client is the minimal interface for making LLM calls. Components don't care
// about the provider -- they need a function that takes a system prompt plus
// a user prompt and returns text.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Named is implemented by providers that can identify themselves, used for
// fallback-chain logging and attribution.
type Named interface {
	Name() string
}

// FailureKind classifies a provider failure for the fallback chain.
type FailureKind int

const (
	// FailureRetryable covers timeouts, 5xx responses, and rate limits.
	// One immediate retry against the same provider is permitted.
	FailureRetryable FailureKind = iota
	// FailureTerminal covers auth failures and malformed requests. The
	// chain moves to the next provider without retrying.
	FailureTerminal
)

// ProviderError is a classified failure from a single provider attempt.
type ProviderError struct {
	Provider string
	Kind     FailureKind
	Status   int // HTTP status if applicable, 0 otherwise
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Retryable reports whether err is a provider failure that permits an
// immediate retry. Timeouts that never reached a provider (context errors)
// count as retryable too.
func Retryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind == FailureRetryable
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// classifyStatus maps an HTTP status to a failure kind. Rate limits and
// server errors are worth one more try; everything else in the 4xx range is
// a terminal misconfiguration for that provider.
func classifyStatus(status int) FailureKind {
	switch {
	case status == 429, status >= 500:
		return FailureRetryable
	default:
		return FailureTerminal
	}
}
