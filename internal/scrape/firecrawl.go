// Package scrape wraps the Firecrawl API for page extraction and web search.
// Both operations are optional collaborators: callers degrade when the
// service is unconfigured or unreachable.
package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultBaseURL = "https://api.firecrawl.dev/v1"

// Result is one ranked search result.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"description"`
}

// Client calls the Firecrawl scrape and search endpoints.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a Firecrawl client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  http.DefaultClient,
	}
}

// WithBaseURL overrides the endpoint, used in tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// Scrape fetches a page and returns its extracted markdown content.
func (c *Client) Scrape(ctx context.Context, pageURL string) (string, error) {
	body := map[string]any{
		"url":     pageURL,
		"formats": []string{"markdown"},
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			Markdown string `json:"markdown"`
		} `json:"data"`
	}
	if err := c.post(ctx, "/scrape", body, &result); err != nil {
		return "", err
	}
	if !result.Success {
		return "", fmt.Errorf("scrape rejected for %s", pageURL)
	}
	return result.Data.Markdown, nil
}

// Search runs a web search and returns ranked results.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 5
	}
	body := map[string]any{
		"query": query,
		"limit": limit,
	}

	var result struct {
		Success bool     `json:"success"`
		Data    []Result `json:"data"`
	}
	if err := c.post(ctx, "/search", body, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, fmt.Errorf("search rejected for %q", query)
	}
	return result.Data, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("firecrawl error (%d): %s", resp.StatusCode, truncate(string(respBody), 200))
	}
	return json.Unmarshal(respBody, out)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
