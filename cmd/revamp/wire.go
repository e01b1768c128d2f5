package main

import (
	"fmt"

	"github.com/hackrevamp/revamp/internal/analyzer"
	"github.com/hackrevamp/revamp/internal/coder"
	"github.com/hackrevamp/revamp/internal/config"
	"github.com/hackrevamp/revamp/internal/discovery"
	"github.com/hackrevamp/revamp/internal/github"
	"github.com/hackrevamp/revamp/internal/llm"
	"github.com/hackrevamp/revamp/internal/prompts"
	"github.com/hackrevamp/revamp/internal/research"
	"github.com/hackrevamp/revamp/internal/scrape"
	"github.com/hackrevamp/revamp/internal/strategy"
	"github.com/hackrevamp/revamp/internal/workflow"
)

// buildPipeline assembles the full pipeline from configuration. Optional
// integrations (scraping, coding chain, precise edits) are wired only when
// their keys are present; the pipeline degrades around the gaps.
func buildPipeline(cfg *config.Config) (*workflow.Pipeline, error) {
	stratLLM, err := llm.NewStrategyClientFromEnv()
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}

	registry := prompts.NewRegistry(cfg.LangWatchAPIKey)
	gh := github.NewClient(cfg.GitHubToken)

	var scraper research.Scraper
	var searcher discovery.Searcher
	if cfg.ScrapeEnabled() {
		fc := scrape.NewClient(cfg.FirecrawlAPIKey)
		scraper, searcher = fc, fc
	}

	var implementer workflow.Implementer
	chain := llm.CodingChainFromKeys(cfg.AttemptTimeout,
		cfg.CerebrasAPIKey, cfg.CerebrasModel,
		cfg.MistralAPIKey, cfg.MistralModel,
		cfg.OpenRouterAPIKey, cfg.OpenRouterModel,
		cfg.OpenAIAPIKey, cfg.PrimaryModel)
	if chain != nil {
		var morph *coder.MorphEditor
		if cfg.MorphEnabled() {
			morph = coder.NewMorphEditor(cfg.MorphAPIKey)
		}
		implementer = coder.New(gh, chain, morph, registry)
	}

	return workflow.New(
		analyzer.New(gh, stratLLM, registry),
		research.New(scraper, stratLLM, registry),
		strategy.New(stratLLM, registry),
		implementer,
		discovery.NewFinder(searcher),
		gh,
	), nil
}
