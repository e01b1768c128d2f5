package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ChatClient implements Client against any OpenAI-compatible chat-completions
// endpoint. OpenAI, Cerebras, Mistral, and OpenRouter all speak this shape.
type ChatClient struct {
	name    string
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenAIClient creates a client for the OpenAI API.
// Model defaults to "gpt-4o" if empty.
func NewOpenAIClient(apiKey, model string) *ChatClient {
	if model == "" {
		model = "gpt-4o"
	}
	return newChatClient("openai", "https://api.openai.com/v1", apiKey, model)
}

// NewCerebrasClient creates a client for the Cerebras inference API.
func NewCerebrasClient(apiKey, model string) *ChatClient {
	if model == "" {
		model = "llama-4-scout-17b-16e-instruct"
	}
	return newChatClient("cerebras", "https://api.cerebras.ai/v1", apiKey, model)
}

// NewMistralClient creates a client for the Mistral API.
func NewMistralClient(apiKey, model string) *ChatClient {
	if model == "" {
		model = "mistral-large-latest"
	}
	return newChatClient("mistral", "https://api.mistral.ai/v1", apiKey, model)
}

// NewOpenRouterClient creates a client for the OpenRouter API.
func NewOpenRouterClient(apiKey, model string) *ChatClient {
	if model == "" {
		model = "anthropic/claude-3.5-sonnet"
	}
	return newChatClient("openrouter", "https://openrouter.ai/api/v1", apiKey, model)
}

// NewMorphClient creates a client for the Morph fast-apply API, which is
// OpenAI-compatible but specialized for merging an edit into existing code.
func NewMorphClient(apiKey, model string) *ChatClient {
	if model == "" {
		model = "morph-v3-large"
	}
	return newChatClient("morph", "https://api.morphllm.com/v1", apiKey, model)
}

func newChatClient(name, baseURL, apiKey, model string) *ChatClient {
	return &ChatClient{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  http.DefaultClient,
	}
}

// WithBaseURL overrides the endpoint, used in tests and for self-hosted
// compatible gateways.
func (c *ChatClient) WithBaseURL(baseURL string) *ChatClient {
	c.baseURL = baseURL
	return c
}

// Name identifies the provider in fallback-chain logs.
func (c *ChatClient) Name() string { return c.name }

func (c *ChatClient) Complete(ctx context.Context, system, user string) (string, error) {
	body := map[string]any{
		"model":      c.model,
		"max_tokens": 4096,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", &ProviderError{Provider: c.name, Kind: FailureRetryable, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Provider: c.name, Kind: FailureRetryable, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{
			Provider: c.name,
			Kind:     classifyStatus(resp.StatusCode),
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("API error (%d): %s", resp.StatusCode, truncate(string(respBody), 300)),
		}
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &ProviderError{Provider: c.name, Kind: FailureTerminal, Err: fmt.Errorf("parsing response: %w", err)}
	}

	if len(result.Choices) == 0 {
		return "", &ProviderError{Provider: c.name, Kind: FailureTerminal, Err: fmt.Errorf("no choices in response")}
	}
	return result.Choices[0].Message.Content, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
