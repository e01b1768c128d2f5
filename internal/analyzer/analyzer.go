// Package analyzer produces a structured summary of a repository from its
// GitHub metadata and one model call.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hackrevamp/revamp/internal/github"
	"github.com/hackrevamp/revamp/internal/llm"
	"github.com/hackrevamp/revamp/internal/prompts"
	"github.com/hackrevamp/revamp/internal/report"
)

// Summary is the structured result of project analysis. Immutable after
// creation; owned by the orchestrator for the duration of one request.
type Summary struct {
	Repo      string
	Stack     string
	Structure string
	Features  string
	Topic     string // short phrase usable as a discovery query
}

// Indexer is the slice of the GitHub client the analyzer needs.
type Indexer interface {
	Index(ctx context.Context, repo string) (*github.RepoContext, error)
}

// Analyzer summarizes repositories.
type Analyzer struct {
	index   Indexer
	llm     llm.Client
	prompts *prompts.Registry
	log     *slog.Logger
}

// New creates an Analyzer.
func New(index Indexer, client llm.Client, registry *prompts.Registry) *Analyzer {
	return &Analyzer{
		index:   index,
		llm:     client,
		prompts: registry,
		log:     slog.Default(),
	}
}

// Analyze fetches the repository context and distills it into a Summary.
// A well-formed but thin model response yields a Summary with empty fields
// rather than an error; the strategy stage degrades from there.
func (a *Analyzer) Analyze(ctx context.Context, repo string) (*Summary, error) {
	rc, err := a.index.Index(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", repo, err)
	}

	system := a.prompts.Get(ctx, prompts.IDAnalyzer)
	response, err := a.llm.Complete(ctx, system, rc.Prompt())
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", repo, err)
	}

	sections := report.Sections(response)
	s := &Summary{
		Repo:      repo,
		Stack:     report.Pick(sections, "", "Stack", "Tech Stack"),
		Structure: report.Pick(sections, "", "Structure", "Architecture"),
		Features:  report.Pick(sections, "", "Features", "Functionality"),
		Topic:     report.Pick(sections, "", "Topic"),
	}
	if s.Stack == "" && s.Features == "" {
		a.log.Warn("analyzer returned a thin summary", "repo", repo)
	}
	return s, nil
}

// Prompt renders the summary for inclusion in downstream model calls.
func (s *Summary) Prompt() string {
	return fmt.Sprintf("## Project: %s\n\n### Stack\n%s\n\n### Structure\n%s\n\n### Features\n%s\n",
		s.Repo, orNone(s.Stack), orNone(s.Structure), orNone(s.Features))
}

func orNone(v string) string {
	if v == "" {
		return "Not specified."
	}
	return v
}
