package discovery

import (
	"context"
	"strings"
	"testing"

	"github.com/hackrevamp/revamp/internal/scrape"
)

type fakeSearcher struct {
	queries []string
	results map[string][]scrape.Result
}

func (f *fakeSearcher) Search(ctx context.Context, query string, limit int) ([]scrape.Result, error) {
	f.queries = append(f.queries, query)
	for prefix, res := range f.results {
		if strings.Contains(query, prefix) {
			return res, nil
		}
	}
	return nil, nil
}

func TestFindHackathonsFiltersAndDedupes(t *testing.T) {
	s := &fakeSearcher{results: map[string][]scrape.Result{
		"site:devpost.com": {
			{Title: "AI Agents Hackathon", URL: "https://devpost.com/a", Snippet: "Submissions close June 1, 2025"},
			{Title: "Dup", URL: "https://devpost.com/a", Snippet: ""},
			{Title: "Blog Post", URL: "https://example.com/blog", Snippet: "not a hackathon host"},
			{Title: "MLH Spring", URL: "https://spring.mlh.io", Snippet: "deadline May 12"},
		},
	}}

	f := NewFinder(s)
	got, err := f.FindHackathons(context.Background(), "ai agents")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d hackathons, want 2: %+v", len(got), got)
	}
	if got[0].URL != "https://devpost.com/a" {
		t.Fatalf("first-ranked candidate should win, got %+v", got[0])
	}
	if got[0].Deadline == "" {
		t.Error("expected a sniffed deadline for first result")
	}
}

func TestFindHackathonsBroaderFallback(t *testing.T) {
	s := &fakeSearcher{results: map[string][]scrape.Result{
		"open registration": {
			{Title: "Hack the North", URL: "https://hackthenorth.com", Snippet: ""},
		},
	}}

	f := NewFinder(s)
	got, err := f.FindHackathons(context.Background(), "fintech")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].URL != "https://hackthenorth.com" {
		t.Fatalf("expected broader-search candidate, got %+v", got)
	}
	if len(s.queries) != 2 {
		t.Fatalf("expected pinned then broader query, got %v", s.queries)
	}
}

func TestFindProjects(t *testing.T) {
	s := &fakeSearcher{results: map[string][]scrape.Result{
		"site:github.com": {
			{Title: "cool repo", URL: "https://github.com/octo/cool-tool", Snippet: "a tool"},
			{Title: "tree link", URL: "https://github.com/octo/cool-tool/tree/main", Snippet: "dup"},
			{Title: "not github", URL: "https://gitlab.com/x/y", Snippet: ""},
		},
	}}

	f := NewFinder(s)
	got, err := f.FindProjects(context.Background(), "climate tooling")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Repo != "octo/cool-tool" {
		t.Fatalf("unexpected projects: %+v", got)
	}
}

func TestNilSearcherYieldsEmpty(t *testing.T) {
	f := NewFinder(nil)
	h, err := f.FindHackathons(context.Background(), "x")
	if err != nil || h != nil {
		t.Fatalf("got %v, %v", h, err)
	}
	p, err := f.FindProjects(context.Background(), "x")
	if err != nil || p != nil {
		t.Fatalf("got %v, %v", p, err)
	}
}

func TestBest(t *testing.T) {
	if _, ok := Best([]Hackathon{}); ok {
		t.Fatal("empty slice should report no candidate")
	}
	first, ok := Best([]Project{{Repo: "a/b"}, {Repo: "c/d"}})
	if !ok || first.Repo != "a/b" {
		t.Fatalf("got %+v, %v", first, ok)
	}
}
