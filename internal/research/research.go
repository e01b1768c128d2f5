// Package research produces a structured summary of a hackathon page from
// one scrape and one model call.
package research

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hackrevamp/revamp/internal/llm"
	"github.com/hackrevamp/revamp/internal/prompts"
	"github.com/hackrevamp/revamp/internal/report"
)

// Summary is the structured result of hackathon research. Same lifecycle as
// the repository summary: created once per request, immutable after.
type Summary struct {
	URL             string
	Themes          string
	JudgingCriteria string
	Deadlines       string
	Prizes          string
	Context         string // extra free-text context supplied by the caller
}

// Scraper is the slice of the scrape client the researcher needs.
type Scraper interface {
	Scrape(ctx context.Context, pageURL string) (string, error)
}

// Researcher summarizes hackathon pages.
type Researcher struct {
	scraper Scraper
	llm     llm.Client
	prompts *prompts.Registry
	log     *slog.Logger
}

// New creates a Researcher. A nil scraper means pages cannot be fetched and
// every summary degrades to URL-plus-context.
func New(scraper Scraper, client llm.Client, registry *prompts.Registry) *Researcher {
	return &Researcher{
		scraper: scraper,
		llm:     client,
		prompts: registry,
		log:     slog.Default(),
	}
}

// Research scrapes the hackathon page and distills it into a Summary.
// Scrape failures degrade to a summary carrying only the URL and caller
// context -- the scraping collaborator is optional.
func (r *Researcher) Research(ctx context.Context, hackathonURL, extraContext string) (*Summary, error) {
	s := &Summary{URL: hackathonURL, Context: extraContext}

	var page string
	if r.scraper != nil {
		var err error
		page, err = r.scraper.Scrape(ctx, hackathonURL)
		if err != nil {
			r.log.Warn("scrape failed, continuing without page content", "url", hackathonURL, "error", err)
		}
	}
	if page == "" {
		return s, nil
	}

	system := r.prompts.Get(ctx, prompts.IDResearcher)
	user := fmt.Sprintf("Hackathon page: %s\n\n%s", hackathonURL, page)
	response, err := r.llm.Complete(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("researching %s: %w", hackathonURL, err)
	}

	sections := report.Sections(response)
	s.Themes = report.Pick(sections, "", "Themes", "Focus Areas")
	s.JudgingCriteria = report.Pick(sections, "", "Judging Criteria", "Criteria")
	s.Deadlines = report.Pick(sections, "", "Deadlines", "Dates")
	s.Prizes = report.Pick(sections, "", "Prizes")
	return s, nil
}

// Prompt renders the summary for inclusion in downstream model calls.
func (s *Summary) Prompt() string {
	out := fmt.Sprintf("## Hackathon: %s\n\n### Themes\n%s\n\n### Judging Criteria\n%s\n\n### Deadlines\n%s\n\n### Prizes\n%s\n",
		s.URL, orNone(s.Themes), orNone(s.JudgingCriteria), orNone(s.Deadlines), orNone(s.Prizes))
	if s.Context != "" {
		out += "\n### Additional Context\n" + s.Context + "\n"
	}
	return out
}

func orNone(v string) string {
	if v == "" {
		return "Not specified."
	}
	return v
}
