// Package coder turns a revamp strategy into commits: it plans file edits
// with the coding model chain and applies them through the GitHub contents
// API, one commit per file.
package coder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hackrevamp/revamp/internal/github"
	"github.com/hackrevamp/revamp/internal/llm"
	"github.com/hackrevamp/revamp/internal/prompts"
)

// Edit is one planned file change. Action is "create", "update", or
// "delete". Group names the commit group the edit belongs to; edits sharing
// a group land consecutively under the same commit-message prefix.
type Edit struct {
	Path        string `json:"path"`
	Action      string `json:"action"`
	Instruction string `json:"instruction"`
	Content     string `json:"content"`
	Group       string `json:"group"`
}

// GitHost is the slice of the GitHub client the coder needs.
type GitHost interface {
	GetDefaultBranch(ctx context.Context, repo string) (string, error)
	CreateFork(ctx context.Context, repo string) (string, error)
	CreateBranch(ctx context.Context, repo, branch, from string) error
	GetFile(ctx context.Context, repo, path, ref string) (content, sha string, err error)
	PutFile(ctx context.Context, repo, path, branch, message, content, sha string) (string, error)
	DeleteFile(ctx context.Context, repo, path, branch, message, sha string) (string, error)
}

// Request describes one implementation run.
type Request struct {
	Repo     string // "owner/repo" to implement against
	Strategy string // strategy document markdown
	Context  *github.RepoContext
	Fork     bool   // fork before committing
	Branch   string // branch to create and commit to
}

// Result records what the implementation run produced.
type Result struct {
	Repo    string   // repository the commits landed in (fork when forked)
	Branch  string   // branch carrying the commits
	Fork    string   // fork name, empty when committing in place
	Commits int      // commits created
	Files   []string // paths touched, in commit order
}

// planAttempts bounds how many times the model chain is asked for a
// well-formed edit plan before the run fails.
const planAttempts = 2

// Coder plans and applies repository edits.
type Coder struct {
	git     GitHost
	llm     llm.Client
	morph   *MorphEditor
	prompts *prompts.Registry
	log     *slog.Logger
}

// New creates a Coder. morph may be nil; updates then use the plan's full
// replacement content instead of instructed merges.
func New(git GitHost, client llm.Client, morph *MorphEditor, registry *prompts.Registry) *Coder {
	return &Coder{
		git:     git,
		llm:     client,
		morph:   morph,
		prompts: registry,
		log:     slog.Default(),
	}
}

// Plan asks the coding chain for a file-edit plan implementing the strategy.
// A response that is not a well-formed plan is retried once before failing.
func (c *Coder) Plan(ctx context.Context, strategy string, rc *github.RepoContext) ([]Edit, error) {
	system := c.prompts.Get(ctx, prompts.IDCoding)

	var b strings.Builder
	b.WriteString("Implement this revamp strategy with concrete file edits.\n\n")
	b.WriteString(strategy)
	if rc != nil {
		b.WriteString("\n\n")
		b.WriteString(rc.Prompt())
	}

	var lastErr error
	for attempt := 1; attempt <= planAttempts; attempt++ {
		response, err := c.llm.Complete(ctx, system, b.String())
		if err != nil {
			return nil, fmt.Errorf("planning edits: %w", err)
		}

		edits, err := parsePlan(response)
		if err == nil {
			return edits, nil
		}
		lastErr = err
		c.log.Warn("discarding malformed edit plan", "attempt", attempt, "error", err)
	}
	return nil, fmt.Errorf("planning edits: %w", lastErr)
}

// Implement plans edits for the strategy and commits them. Fork happens
// before branching, branching before any commit. Individual edit failures
// are logged and skipped; the run fails only when nothing could be applied.
func (c *Coder) Implement(ctx context.Context, req Request) (*Result, error) {
	edits, err := c.Plan(ctx, req.Strategy, req.Context)
	if err != nil {
		return nil, err
	}
	if len(edits) == 0 {
		return nil, fmt.Errorf("implementing %s: empty edit plan", req.Repo)
	}

	res := &Result{Repo: req.Repo, Branch: req.Branch}
	if req.Fork {
		fork, err := c.git.CreateFork(ctx, req.Repo)
		if err != nil {
			return nil, fmt.Errorf("implementing %s: %w", req.Repo, err)
		}
		res.Repo, res.Fork = fork, fork
	}

	base, err := c.git.GetDefaultBranch(ctx, res.Repo)
	if err != nil {
		return nil, fmt.Errorf("implementing %s: %w", req.Repo, err)
	}
	if err := c.git.CreateBranch(ctx, res.Repo, req.Branch, base); err != nil {
		return nil, fmt.Errorf("implementing %s: %w", req.Repo, err)
	}

	for _, e := range edits {
		if err := c.apply(ctx, res, e); err != nil {
			c.log.Warn("skipping edit", "path", e.Path, "action", e.Action, "error", err)
			continue
		}
		res.Commits++
		res.Files = append(res.Files, e.Path)
	}
	if res.Commits == 0 {
		return nil, fmt.Errorf("implementing %s: no edits could be applied", req.Repo)
	}
	return res, nil
}

// apply lands one edit as one commit on the result branch.
func (c *Coder) apply(ctx context.Context, res *Result, e Edit) error {
	message := commitMessage(e)

	switch e.Action {
	case "create":
		_, err := c.git.PutFile(ctx, res.Repo, e.Path, res.Branch, message, e.Content, "")
		return err

	case "update":
		current, sha, err := c.git.GetFile(ctx, res.Repo, e.Path, res.Branch)
		if err != nil {
			return err
		}
		content := e.Content
		if c.morph != nil && e.Instruction != "" {
			merged, err := c.morph.Apply(ctx, current, e.Instruction, e.Content)
			if err != nil {
				c.log.Warn("precise edit failed, using replacement content", "path", e.Path, "error", err)
			} else {
				content = merged
			}
		}
		_, err = c.git.PutFile(ctx, res.Repo, e.Path, res.Branch, message, content, sha)
		return err

	case "delete":
		_, sha, err := c.git.GetFile(ctx, res.Repo, e.Path, res.Branch)
		if err != nil {
			return err
		}
		_, err = c.git.DeleteFile(ctx, res.Repo, e.Path, res.Branch, message, sha)
		return err

	default:
		return fmt.Errorf("unknown action %q", e.Action)
	}
}

func commitMessage(e Edit) string {
	group := e.Group
	if group == "" {
		group = "revamp"
	}
	instruction := e.Instruction
	if instruction == "" {
		instruction = e.Action + " " + e.Path
	}
	return fmt.Sprintf("%s: %s", group, instruction)
}

// parsePlan extracts and validates the JSON edit plan from a model response.
func parsePlan(response string) ([]Edit, error) {
	raw := extractJSON(response)
	if raw == "" {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var edits []Edit
	if err := json.Unmarshal([]byte(raw), &edits); err != nil {
		return nil, fmt.Errorf("decoding edit plan: %w", err)
	}
	for i, e := range edits {
		if e.Path == "" || strings.HasPrefix(e.Path, "/") || strings.Contains(e.Path, "..") {
			return nil, fmt.Errorf("edit %d: bad path %q", i, e.Path)
		}
		switch e.Action {
		case "create", "update", "delete":
		default:
			return nil, fmt.Errorf("edit %d: bad action %q", i, e.Action)
		}
	}
	return edits, nil
}

// extractJSON pulls the outermost JSON array out of a model response,
// stripping a surrounding markdown code fence if present.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
