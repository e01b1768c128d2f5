package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implements Client using the official Anthropic SDK.
type AnthropicClient struct {
	inner anthropic.Client
	model anthropic.Model
}

// NewAnthropicClient creates a client for the Anthropic Messages API.
// Model defaults to Claude Sonnet if empty.
func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	m := anthropic.Model(model)
	if model == "" {
		m = anthropic.ModelClaudeSonnet4_20250514
	}
	return &AnthropicClient{
		inner: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model: m,
	}
}

// Name identifies the provider in fallback-chain logs.
func (c *AnthropicClient) Name() string { return "anthropic" }

func (c *AnthropicClient) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &ProviderError{
				Provider: "anthropic",
				Kind:     classifyStatus(apiErr.StatusCode),
				Status:   apiErr.StatusCode,
				Err:      err,
			}
		}
		return "", &ProviderError{Provider: "anthropic", Kind: FailureRetryable, Err: err}
	}

	var text string
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text += variant.Text
		}
	}
	if text == "" {
		return "", &ProviderError{Provider: "anthropic", Kind: FailureTerminal, Err: fmt.Errorf("no text content in response")}
	}
	return text, nil
}

// NewStrategyClientFromEnv creates the strategy-class Client from environment
// variables. Prefers Anthropic if ANTHROPIC_API_KEY is set, falls back to
// OpenAI. The strategy model is a required collaborator, so an error here is
// terminal for the process.
func NewStrategyClientFromEnv() (Client, error) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return NewAnthropicClient(key, os.Getenv("REVAMP_STRATEGY_MODEL")), nil
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return NewOpenAIClient(key, os.Getenv("REVAMP_STRATEGY_MODEL")), nil
	}
	return nil, fmt.Errorf("no strategy model key found (set ANTHROPIC_API_KEY or OPENAI_API_KEY)")
}
