package github

import (
	"context"
	"fmt"
	"sort"
	"strings"

	gogh "github.com/google/go-github/v68/github"

	"github.com/hackrevamp/revamp/internal/validate"
)

// keyFiles are config / entry-point files whose content is worth showing to
// the analyzer model (truncated) so it understands the project setup.
var keyFiles = map[string]bool{
	"README.md":          true,
	"go.mod":             true,
	"package.json":       true,
	"pyproject.toml":     true,
	"requirements.txt":   true,
	"Cargo.toml":         true,
	"Makefile":           true,
	"Dockerfile":         true,
	"docker-compose.yml": true,
}

const (
	// treeDepth limits the indented listing to the top directory levels.
	treeDepth = 3
	// keyFileLines caps how many lines of each key file are included.
	keyFileLines = 80
)

// RepoContext is the structural summary of a repository handed to the
// project analyzer.
type RepoContext struct {
	Repo        string
	Description string
	Languages   map[string]int // language name -> percentage
	Tree        string         // indented file/directory listing
	KeyFiles    map[string]string
}

// Prompt formats the context as a single block of text for an LLM call.
func (rc *RepoContext) Prompt() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Repository: %s\n\n", rc.Repo)
	if rc.Description != "" {
		fmt.Fprintf(&b, "### Description\n%s\n\n", rc.Description)
	}

	if len(rc.Languages) > 0 {
		b.WriteString("### Languages\n")
		type langPct struct {
			name string
			pct  int
		}
		var langs []langPct
		for name, pct := range rc.Languages {
			langs = append(langs, langPct{name, pct})
		}
		sort.Slice(langs, func(i, j int) bool { return langs[i].pct > langs[j].pct })
		for _, l := range langs {
			fmt.Fprintf(&b, "- %s: %d%%\n", l.name, l.pct)
		}
		b.WriteString("\n")
	}

	if rc.Tree != "" {
		fmt.Fprintf(&b, "### File Tree (top %d levels)\n```\n%s\n```\n\n", treeDepth, rc.Tree)
	}

	if len(rc.KeyFiles) > 0 {
		b.WriteString("### Key Files\n")
		names := make([]string, 0, len(rc.KeyFiles))
		for name := range rc.KeyFiles {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "\n**%s**\n```\n%s\n```\n", name, rc.KeyFiles[name])
		}
	}

	return b.String()
}

// Index fetches repository metadata, the file tree, and key config files so
// the analyzer model sees real codebase context instead of just a repo name.
func (c *Client) Index(ctx context.Context, repo string) (*RepoContext, error) {
	owner, name, err := validate.SplitRepo(repo)
	if err != nil {
		return nil, err
	}

	rc := &RepoContext{
		Repo:      repo,
		Languages: make(map[string]int),
		KeyFiles:  make(map[string]string),
	}

	info, _, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("fetching repo info (%s): %w", Classify(err), err)
	}
	rc.Description = info.GetDescription()
	defaultBranch := info.GetDefaultBranch()
	if defaultBranch == "" {
		defaultBranch = "main"
	}

	if languages, _, err := c.gh.Repositories.ListLanguages(ctx, owner, name); err == nil {
		var total int
		for _, bytes := range languages {
			total += bytes
		}
		if total > 0 {
			for lang, bytes := range languages {
				rc.Languages[lang] = (bytes * 100) / total
			}
		}
	}

	tree, _, err := c.gh.Git.GetTree(ctx, owner, name, defaultBranch, true)
	if err != nil {
		return nil, fmt.Errorf("fetching file tree (%s): %w", Classify(err), err)
	}
	rc.Tree = renderTree(tree.Entries)

	for _, entry := range tree.Entries {
		path := entry.GetPath()
		// Only top-level key files.
		if strings.Contains(path, "/") || !keyFiles[path] {
			continue
		}
		if content, _, err := c.GetFile(ctx, repo, path, defaultBranch); err == nil && content != "" {
			rc.KeyFiles[path] = firstLines(content, keyFileLines)
		}
	}

	return rc, nil
}

// renderTree formats tree entries as an indented listing limited to
// treeDepth levels.
func renderTree(entries []*gogh.TreeEntry) string {
	var lines []string
	for _, e := range entries {
		path := e.GetPath()
		depth := strings.Count(path, "/")
		if depth >= treeDepth {
			continue
		}

		name := path
		if idx := strings.LastIndex(path, "/"); idx >= 0 {
			name = path[idx+1:]
		}
		indent := strings.Repeat("  ", depth)
		if e.GetType() == "tree" {
			name += "/"
		}
		lines = append(lines, indent+name)
	}
	return strings.Join(lines, "\n")
}

func firstLines(s string, n int) string {
	lines := strings.SplitN(s, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
		lines = append(lines, "... (truncated)")
	}
	return strings.Join(lines, "\n")
}
