// Package prompts fetches versioned prompt templates from the prompt
// management service, with an in-process cache and static fallbacks for when
// the service is unreachable. Prompt text is never embedded at call sites.
package prompts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Prompt identifiers managed by the service.
const (
	IDStrategy   = "hackathon_revamp_agent"
	IDCoding     = "coding_agent"
	IDAnalyzer   = "project_analyzer"
	IDResearcher = "hackathon_researcher"
)

const defaultBaseURL = "https://app.langwatch.ai/api/prompts"

// cacheSize is generous: there are only a handful of prompt ids, the cache
// exists to avoid one lookup per call within a process lifetime.
const cacheSize = 32

// Registry resolves prompt templates by id.
type Registry struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cache   *lru.Cache[string, string]
	log     *slog.Logger
}

// NewRegistry creates a prompt registry. With an empty apiKey every Get
// resolves to the local fallback template.
func NewRegistry(apiKey string) *Registry {
	cache, _ := lru.New[string, string](cacheSize)
	return &Registry{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  http.DefaultClient,
		cache:   cache,
		log:     slog.Default(),
	}
}

// WithBaseURL overrides the service endpoint, used in tests.
func (r *Registry) WithBaseURL(baseURL string) *Registry {
	r.baseURL = baseURL
	return r
}

// Get returns the current template for a prompt id. Lookup order: in-process
// cache, then the service, then the static fallback. Service failures are
// logged and degrade silently -- prompt management is an optional
// collaborator.
func (r *Registry) Get(ctx context.Context, id string) string {
	if text, ok := r.cache.Get(id); ok {
		return text
	}

	if r.apiKey != "" {
		text, err := r.fetch(ctx, id)
		if err == nil && text != "" {
			r.cache.Add(id, text)
			return text
		}
		if err != nil {
			r.log.Warn("prompt service unavailable, using fallback", "prompt", id, "error", err)
		}
	}

	return fallback(id)
}

func (r *Registry) fetch(ctx context.Context, id string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", r.baseURL+"/"+id, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Auth-Token", r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("prompt service error (%d): %s", resp.StatusCode, body)
	}

	var result struct {
		Prompt string `json:"prompt"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parsing prompt response: %w", err)
	}
	return result.Prompt, nil
}

// fallback returns the static template for a prompt id.
func fallback(id string) string {
	switch id {
	case IDStrategy:
		return fallbackStrategy
	case IDCoding:
		return fallbackCoding
	case IDAnalyzer:
		return fallbackAnalyzer
	case IDResearcher:
		return fallbackResearcher
	default:
		return ""
	}
}
