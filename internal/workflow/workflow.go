// Package workflow sequences the revamp pipeline: resolve the project and
// hackathon, summarize both, produce the strategy document, and optionally
// implement it as commits.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hackrevamp/revamp/internal/analyzer"
	"github.com/hackrevamp/revamp/internal/coder"
	"github.com/hackrevamp/revamp/internal/discovery"
	"github.com/hackrevamp/revamp/internal/github"
	"github.com/hackrevamp/revamp/internal/research"
	"github.com/hackrevamp/revamp/internal/strategy"
	"github.com/hackrevamp/revamp/internal/validate"
)

// Order selects which discovery direction runs first when neither a
// repository nor a hackathon was supplied.
type Order string

const (
	OrderProjectsFirst   Order = "projects-first"
	OrderHackathonsFirst Order = "hackathons-first"
)

// Request describes one pipeline run. RepoURL and HackathonURL are both
// optional; when both are empty, Topic drives discovery.
type Request struct {
	RepoURL      string
	HackathonURL string
	Context      string // extra free-text context for the strategist
	Topic        string // discovery query when references are missing
	Order        Order
	Implement    bool
	Fork         bool
	Branch       string
}

// Result is everything a run produced. Strategy is always set on success;
// the other fields depend on what could be resolved.
type Result struct {
	Repo           string // resolved "owner/repo", empty when none found
	HackathonURL   string // resolved hackathon page, empty when none found
	RepoSummary    *analyzer.Summary
	HackSummary    *research.Summary
	Strategy       *strategy.Document
	Implementation *coder.Result
	ImplementErr   string // set when implementation was requested but failed
}

// Collaborator interfaces, sliced for testability.

type RepoAnalyzer interface {
	Analyze(ctx context.Context, repo string) (*analyzer.Summary, error)
}

type HackResearcher interface {
	Research(ctx context.Context, hackathonURL, extraContext string) (*research.Summary, error)
}

type StrategyMaker interface {
	Create(ctx context.Context, repo *analyzer.Summary, hack *research.Summary, extra string) (*strategy.Document, error)
}

type Implementer interface {
	Implement(ctx context.Context, req coder.Request) (*coder.Result, error)
}

type Discoverer interface {
	FindHackathons(ctx context.Context, topic string) ([]discovery.Hackathon, error)
	FindProjects(ctx context.Context, topic string) ([]discovery.Project, error)
}

type Indexer interface {
	Index(ctx context.Context, repo string) (*github.RepoContext, error)
}

// Pipeline wires the stages together. Only the strategist is mandatory;
// every other collaborator may be nil and its stage degrades.
type Pipeline struct {
	analyzer   RepoAnalyzer
	researcher HackResearcher
	strategist StrategyMaker
	implement  Implementer
	discover   Discoverer
	index      Indexer
	log        *slog.Logger
}

// New creates a Pipeline.
func New(an RepoAnalyzer, re HackResearcher, st StrategyMaker, im Implementer, di Discoverer, ix Indexer) *Pipeline {
	return &Pipeline{
		analyzer:   an,
		researcher: re,
		strategist: st,
		implement:  im,
		discover:   di,
		index:      ix,
		log:        slog.Default(),
	}
}

// Run executes the pipeline. Input validation happens before any
// collaborator is touched. Summarization failures degrade the strategy
// rather than aborting; implementation failures are recorded on the result.
// Only invalid input, caller cancellation, and strategy-model exhaustion
// fail the run.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	repo, hackURL, topic, err := normalize(req)
	if err != nil {
		return nil, err
	}

	res := &Result{Repo: repo, HackathonURL: hackURL}

	// Resolve missing references through discovery, in the requested order.
	if res.Repo == "" && res.HackathonURL == "" {
		if req.Order == OrderHackathonsFirst {
			p.resolveHackathon(ctx, res, topic)
			p.resolveRepo(ctx, res, topic)
		} else {
			p.resolveRepo(ctx, res, topic)
			p.resolveHackathon(ctx, res, topic)
		}
	}

	// Summarize what we have. The two stages are independent, so they run
	// concurrently when both references resolved.
	var wg sync.WaitGroup
	if res.Repo != "" && p.analyzer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			summary, err := p.analyzer.Analyze(ctx, res.Repo)
			if err != nil {
				p.log.Warn("analysis failed, continuing without project summary", "repo", res.Repo, "error", err)
				return
			}
			res.RepoSummary = summary
		}()
	}
	if res.HackathonURL != "" && p.researcher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			summary, err := p.researcher.Research(ctx, res.HackathonURL, req.Context)
			if err != nil {
				p.log.Warn("research failed, continuing without hackathon summary", "url", res.HackathonURL, "error", err)
				return
			}
			res.HackSummary = summary
		}()
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// A reference supplied directly but not summarized is still worth
	// resolving the other side from, via the summary topic.
	if res.Repo != "" && res.HackathonURL == "" {
		p.resolveHackathon(ctx, res, p.topicFor(res, topic))
		if res.HackathonURL != "" && p.researcher != nil {
			summary, err := p.researcher.Research(ctx, res.HackathonURL, req.Context)
			if err == nil {
				res.HackSummary = summary
			}
		}
	}
	if res.HackathonURL != "" && res.Repo == "" {
		p.resolveRepo(ctx, res, p.topicFor(res, topic))
		if res.Repo != "" && p.analyzer != nil {
			summary, err := p.analyzer.Analyze(ctx, res.Repo)
			if err == nil {
				res.RepoSummary = summary
			}
		}
	}

	// The hackathon summary already carries the caller context when research
	// ran; pass it directly otherwise so it is never dropped.
	extra := req.Context
	if res.HackSummary != nil && res.HackSummary.Context != "" {
		extra = ""
	}
	res.Strategy, err = p.strategist.Create(ctx, res.RepoSummary, res.HackSummary, extra)
	if err != nil {
		return nil, fmt.Errorf("running pipeline: %w", err)
	}

	if req.Implement {
		p.runImplementation(ctx, res, req)
	}
	return res, nil
}

// normalize validates the request and returns the canonical repo name,
// hackathon URL, and discovery topic.
func normalize(req Request) (repo, hackURL, topic string, err error) {
	if req.RepoURL != "" {
		repo, err = validate.Repo(req.RepoURL)
		if err != nil {
			return "", "", "", err
		}
	}
	if req.HackathonURL != "" {
		hackURL, err = validate.HackathonURL(req.HackathonURL)
		if err != nil {
			return "", "", "", err
		}
	}
	if req.Topic != "" {
		topic, err = validate.Topic(req.Topic)
		if err != nil {
			return "", "", "", err
		}
	}
	if repo == "" && hackURL == "" && topic == "" {
		return "", "", "", fmt.Errorf("%w: need a repository, a hackathon URL, or a topic", validate.ErrInvalidInput)
	}
	if req.Implement && req.Branch == "" {
		return "", "", "", fmt.Errorf("%w: implementation requires a branch name", validate.ErrInvalidInput)
	}
	return repo, hackURL, topic, nil
}

// topicFor prefers the analyzer's topic line over the caller's, falling back
// to whatever summary text exists.
func (p *Pipeline) topicFor(res *Result, fallback string) string {
	if res.RepoSummary != nil && res.RepoSummary.Topic != "" {
		return res.RepoSummary.Topic
	}
	if res.HackSummary != nil && res.HackSummary.Themes != "" {
		return res.HackSummary.Themes
	}
	return fallback
}

func (p *Pipeline) resolveRepo(ctx context.Context, res *Result, topic string) {
	if p.discover == nil || topic == "" {
		return
	}
	projects, err := p.discover.FindProjects(ctx, topic)
	if err != nil {
		p.log.Warn("project discovery failed", "topic", topic, "error", err)
		return
	}
	if best, ok := discovery.Best(projects); ok {
		res.Repo = best.Repo
	}
}

func (p *Pipeline) resolveHackathon(ctx context.Context, res *Result, topic string) {
	if p.discover == nil || topic == "" {
		return
	}
	hackathons, err := p.discover.FindHackathons(ctx, topic)
	if err != nil {
		p.log.Warn("hackathon discovery failed", "topic", topic, "error", err)
		return
	}
	if best, ok := discovery.Best(hackathons); ok {
		res.HackathonURL = best.URL
	}
}

// runImplementation attempts the coding stage. Its failure never discards
// the strategy already produced.
func (p *Pipeline) runImplementation(ctx context.Context, res *Result, req Request) {
	if p.implement == nil {
		res.ImplementErr = "implementation is not configured"
		return
	}
	if res.Repo == "" {
		res.ImplementErr = "no repository resolved to implement against"
		return
	}

	var rc *github.RepoContext
	if p.index != nil {
		var err error
		rc, err = p.index.Index(ctx, res.Repo)
		if err != nil {
			p.log.Warn("indexing failed, planning without file tree", "repo", res.Repo, "error", err)
		}
	}

	impl, err := p.implement.Implement(ctx, coder.Request{
		Repo:     res.Repo,
		Strategy: res.Strategy.Markdown(),
		Context:  rc,
		Fork:     req.Fork,
		Branch:   req.Branch,
	})
	if err != nil {
		p.log.Warn("implementation failed, strategy is still available", "repo", res.Repo, "error", err)
		res.ImplementErr = err.Error()
		return
	}
	res.Implementation = impl
}
