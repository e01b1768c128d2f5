// Package config provides configuration management for the revamp agent.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the revamp agent. It is constructed once
// at process start and read-only afterwards; components receive it (or the
// fields they need) at construction time.
type Config struct {
	// ServerAddr is the address the HTTP server listens on (e.g., ":7080").
	ServerAddr string

	// DataDir is the directory for persistent data (SQLite DB, etc.).
	DataDir string

	// DatabasePath is the full path to the SQLite database file.
	DatabasePath string

	// GitHubToken is the personal access token for GitHub API operations.
	GitHubToken string

	// Strategy-class model keys. Anthropic is preferred when present.
	AnthropicAPIKey string
	OpenAIAPIKey    string

	// Coding-class provider keys, consulted in fallback order
	// Cerebras -> Mistral -> OpenRouter -> OpenAI.
	CerebrasAPIKey   string
	MistralAPIKey    string
	OpenRouterAPIKey string

	// FirecrawlAPIKey enables web scraping and search-based discovery.
	FirecrawlAPIKey string

	// LangWatchAPIKey enables fetching managed prompt templates.
	LangWatchAPIKey string

	// MorphAPIKey enables the precise code-edit service.
	MorphAPIKey string

	// Model identifiers per provider.
	PrimaryModel    string
	CerebrasModel   string
	MistralModel    string
	OpenRouterModel string

	// DefaultBranch is the branch name used for implementation commits.
	DefaultBranch string

	// AttemptTimeout bounds each individual coding-provider attempt.
	AttemptTimeout time.Duration

	// Slack notifier (optional).
	SlackBotToken string
	SlackChannel  string

	// Telegram notifier (optional).
	TelegramBotToken string
	TelegramChatID   int64
}

// Load creates a Config from environment variables with sensible defaults.
// A .env file in the working directory is honored if present.
func Load() (*Config, error) {
	// Best effort; a missing .env is not an error.
	_ = godotenv.Load()

	dataDir := envOr("REVAMP_DATA_DIR", defaultDataDir())
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	cfg := &Config{
		ServerAddr:   envOr("REVAMP_ADDR", ":7080"),
		DataDir:      dataDir,
		DatabasePath: filepath.Join(dataDir, "revamp.db"),

		GitHubToken: os.Getenv("GITHUB_ACCESS_TOKEN"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),

		CerebrasAPIKey:   os.Getenv("CEREBRAS_API_KEY"),
		MistralAPIKey:    os.Getenv("MISTRAL_API_KEY"),
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),

		FirecrawlAPIKey: os.Getenv("FIRECRAWL_API_KEY"),
		LangWatchAPIKey: os.Getenv("LANGWATCH_API_KEY"),
		MorphAPIKey:     os.Getenv("MORPH_API_KEY"),

		PrimaryModel:    envOr("REVAMP_PRIMARY_MODEL", "gpt-4o"),
		CerebrasModel:   envOr("REVAMP_CEREBRAS_MODEL", "llama-4-scout-17b-16e-instruct"),
		MistralModel:    envOr("REVAMP_MISTRAL_MODEL", "mistral-large-latest"),
		OpenRouterModel: envOr("REVAMP_OPENROUTER_MODEL", "anthropic/claude-3.5-sonnet"),

		DefaultBranch:  envOr("REVAMP_BRANCH", "hackathon-revamp"),
		AttemptTimeout: envOrDuration("REVAMP_ATTEMPT_TIMEOUT", 2*time.Minute),

		SlackBotToken: os.Getenv("SLACK_BOT_TOKEN"),
		SlackChannel:  os.Getenv("SLACK_CHANNEL"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   envOrInt64("TELEGRAM_CHAT_ID", 0),
	}

	return cfg, nil
}

// Validate checks that required configuration is present. The strategy model
// is the only hard requirement; everything else is an optional integration
// that degrades gracefully.
func (c *Config) Validate() error {
	if c.AnthropicAPIKey == "" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("at least one of ANTHROPIC_API_KEY or OPENAI_API_KEY is required")
	}
	return nil
}

// ValidateForImplementation checks the extra requirements of the
// implementation path.
func (c *Config) ValidateForImplementation() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.GitHubToken == "" {
		return fmt.Errorf("GITHUB_ACCESS_TOKEN is required to apply changes")
	}
	return nil
}

// ScrapeEnabled returns true if the scraping/search collaborator is configured.
func (c *Config) ScrapeEnabled() bool { return c.FirecrawlAPIKey != "" }

// PromptsEnabled returns true if the managed prompt service is configured.
func (c *Config) PromptsEnabled() bool { return c.LangWatchAPIKey != "" }

// MorphEnabled returns true if the precise code-edit service is configured.
func (c *Config) MorphEnabled() bool { return c.MorphAPIKey != "" }

// SlackEnabled returns true if the Slack notifier is configured.
func (c *Config) SlackEnabled() bool { return c.SlackBotToken != "" && c.SlackChannel != "" }

// TelegramEnabled returns true if the Telegram notifier is configured.
func (c *Config) TelegramEnabled() bool { return c.TelegramBotToken != "" && c.TelegramChatID != 0 }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		var n int64
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}

func envOrDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".revamp"
	}
	return filepath.Join(home, ".revamp")
}
