// Package discovery finds candidate repositories and hackathon pages from a
// free-text topic when the caller did not supply explicit references.
//
// Results come from the web-search collaborator, filtered to the hosts we can
// actually do something with. An empty result set is not an error: the
// pipeline degrades to a generic strategy instead.
package discovery

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hackrevamp/revamp/internal/scrape"
	"github.com/hackrevamp/revamp/internal/validate"
)

// Searcher is the slice of the scrape client that discovery needs.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]scrape.Result, error)
}

// Hackathon is a discovered hackathon candidate.
type Hackathon struct {
	Name        string
	URL         string
	Description string
	Deadline    string // free-text date sniffed from the snippet, may be empty
}

// Project is a discovered repository candidate.
type Project struct {
	Repo        string // "owner/repo"
	URL         string
	Description string
}

// DefaultLimit is the number of candidates requested per discovery call.
const DefaultLimit = 5

var hackathonHosts = []string{"devpost", "hackathon", "mlh.io", "hack"}

// deadlineRe sniffs submission dates out of result snippets.
var deadlineRe = regexp.MustCompile(`(?i)(\w+\s+\d{1,2},?\s+\d{4})|((deadline|ends|closes)\D{0,20}\w+\s+\d{1,2})`)

var repoURLRe = regexp.MustCompile(`github\.com/([^/\s]+/[^/\s?#]+)`)

// Finder runs discovery queries against the search collaborator.
type Finder struct {
	search Searcher
	limit  int
}

// NewFinder creates a Finder. A nil searcher is allowed and makes every
// discovery call return empty candidates, keeping the degraded path uniform.
func NewFinder(search Searcher) *Finder {
	return &Finder{search: search, limit: DefaultLimit}
}

// FindHackathons searches for ongoing hackathons matching a topic. The first
// query is pinned to known hackathon platforms; if it comes back thin, one
// broader query tops up the list.
func (f *Finder) FindHackathons(ctx context.Context, topic string) ([]Hackathon, error) {
	if f.search == nil {
		return nil, nil
	}

	query := strings.TrimSpace(topic + " hackathon")
	pinned := query + " site:devpost.com OR site:hackathon.com OR site:mlh.io"

	results, err := f.search.Search(ctx, pinned, f.limit*2)
	if err != nil {
		return nil, fmt.Errorf("hackathon discovery: %w", err)
	}

	hackathons, seen := collectHackathons(results, nil, f.limit)

	if len(hackathons) < f.limit {
		broader, err := f.search.Search(ctx, query+" open registration", f.limit)
		if err == nil {
			more, _ := collectHackathons(broader, seen, f.limit-len(hackathons))
			hackathons = append(hackathons, more...)
		}
	}

	return hackathons, nil
}

// FindProjects searches for repositories matching a topic.
func (f *Finder) FindProjects(ctx context.Context, topic string) ([]Project, error) {
	if f.search == nil {
		return nil, nil
	}

	results, err := f.search.Search(ctx, topic+" site:github.com", f.limit*2)
	if err != nil {
		return nil, fmt.Errorf("project discovery: %w", err)
	}

	var projects []Project
	seen := map[string]bool{}
	for _, r := range results {
		m := repoURLRe.FindStringSubmatch(r.URL)
		if m == nil {
			continue
		}
		repo, err := validate.Repo(m[1])
		if err != nil || seen[repo] {
			continue
		}
		seen[repo] = true
		projects = append(projects, Project{
			Repo:        repo,
			URL:         "https://github.com/" + repo,
			Description: snippet(r),
		})
		if len(projects) >= f.limit {
			break
		}
	}
	return projects, nil
}

// Best returns the first-ranked candidate. Tie-breaking among equally
// plausible candidates is deliberately "first result wins" -- the search
// collaborator's own ranking is the policy, and callers can re-rank before
// calling Best if they want a different one.
func Best[T any](candidates []T) (T, bool) {
	var zero T
	if len(candidates) == 0 {
		return zero, false
	}
	return candidates[0], true
}

func collectHackathons(results []scrape.Result, seen map[string]bool, max int) ([]Hackathon, map[string]bool) {
	if seen == nil {
		seen = map[string]bool{}
	}
	var out []Hackathon
	for _, r := range results {
		if r.URL == "" || seen[r.URL] || !hackathonish(r.URL) {
			continue
		}
		seen[r.URL] = true
		out = append(out, Hackathon{
			Name:        r.Title,
			URL:         r.URL,
			Description: snippet(r),
			Deadline:    deadlineRe.FindString(r.Snippet),
		})
		if len(out) >= max {
			break
		}
	}
	return out, seen
}

func hackathonish(u string) bool {
	lower := strings.ToLower(u)
	for _, h := range hackathonHosts {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

func snippet(r scrape.Result) string {
	s := r.Snippet
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
