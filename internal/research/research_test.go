package research

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hackrevamp/revamp/internal/prompts"
)

type fakeScraper struct {
	page string
	err  error
}

func (f *fakeScraper) Scrape(ctx context.Context, pageURL string) (string, error) {
	return f.page, f.err
}

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls++
	return f.response, f.err
}

func TestResearch(t *testing.T) {
	model := &fakeLLM{response: `## Themes
AI agents for social good

## Judging Criteria
Novelty 40%, execution 30%, demo 30%

## Deadlines
June 1, 2025

## Prizes
$10k grand prize`}

	r := New(&fakeScraper{page: "# Big Hack"}, model, prompts.NewRegistry(""))
	got, err := r.Research(context.Background(), "https://devpost.com/h", "team of two")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Themes == "" || got.JudgingCriteria == "" || got.Deadlines == "" || got.Prizes == "" {
		t.Fatalf("missing fields: %+v", got)
	}
	if !strings.Contains(got.Prompt(), "team of two") {
		t.Error("caller context should be carried into the prompt")
	}
}

func TestResearchScrapeFailureDegrades(t *testing.T) {
	model := &fakeLLM{}
	r := New(&fakeScraper{err: errors.New("blocked")}, model, prompts.NewRegistry(""))

	got, err := r.Research(context.Background(), "https://devpost.com/h", "")
	if err != nil {
		t.Fatalf("scrape failure must degrade, not error: %v", err)
	}
	if got.URL != "https://devpost.com/h" || got.Themes != "" {
		t.Fatalf("expected URL-only summary, got %+v", got)
	}
	if model.calls != 0 {
		t.Fatal("no model call should be made without page content")
	}
}

func TestResearchNilScraper(t *testing.T) {
	model := &fakeLLM{}
	r := New(nil, model, prompts.NewRegistry(""))
	got, err := r.Research(context.Background(), "https://devpost.com/h", "ctx")
	if err != nil || got.Context != "ctx" {
		t.Fatalf("got %+v, %v", got, err)
	}
	if model.calls != 0 {
		t.Fatal("no model call expected")
	}
}
