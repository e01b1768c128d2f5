package coder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/hackrevamp/revamp/internal/prompts"
)

type fakeLLM struct {
	responses []string
	calls     int
}

func (f *fakeLLM) Complete(ctx context.Context, system, user string) (string, error) {
	if f.calls >= len(f.responses) {
		return "", errors.New("no more responses")
	}
	r := f.responses[f.calls]
	f.calls++
	return r, nil
}

type gitCall struct {
	op   string
	path string
}

type fakeGit struct {
	calls     []gitCall
	files     map[string]string // path -> content on the branch
	forkErr   error
	branchErr error
	putErr    map[string]error
}

func newFakeGit() *fakeGit {
	return &fakeGit{files: map[string]string{}, putErr: map[string]error{}}
}

func (g *fakeGit) record(op, path string) { g.calls = append(g.calls, gitCall{op, path}) }

func (g *fakeGit) GetDefaultBranch(ctx context.Context, repo string) (string, error) {
	g.record("default-branch", "")
	return "main", nil
}

func (g *fakeGit) CreateFork(ctx context.Context, repo string) (string, error) {
	g.record("fork", "")
	if g.forkErr != nil {
		return "", g.forkErr
	}
	_, name, _ := strings.Cut(repo, "/")
	return "me/" + name, nil
}

func (g *fakeGit) CreateBranch(ctx context.Context, repo, branch, from string) error {
	g.record("branch", branch)
	return g.branchErr
}

func (g *fakeGit) GetFile(ctx context.Context, repo, path, ref string) (string, string, error) {
	g.record("get", path)
	content, ok := g.files[path]
	if !ok {
		return "", "", fmt.Errorf("not found: %s", path)
	}
	return content, "sha-" + path, nil
}

func (g *fakeGit) PutFile(ctx context.Context, repo, path, branch, message, content, sha string) (string, error) {
	g.record("put", path)
	if err := g.putErr[path]; err != nil {
		return "", err
	}
	g.files[path] = content
	return "commit-" + path, nil
}

func (g *fakeGit) DeleteFile(ctx context.Context, repo, path, branch, message, sha string) (string, error) {
	g.record("delete", path)
	delete(g.files, path)
	return "commit-" + path, nil
}

const plan = `[
  {"path": "README.md", "action": "update", "instruction": "rewrite the pitch", "content": "# New", "group": "docs"},
  {"path": "cmd/demo/main.go", "action": "create", "instruction": "add demo entry point", "content": "package main", "group": "demo"},
  {"path": "old.txt", "action": "delete", "instruction": "drop stale notes", "group": "docs"}
]`

func TestImplement(t *testing.T) {
	git := newFakeGit()
	git.files["README.md"] = "# Old"
	git.files["old.txt"] = "stale"

	c := New(git, &fakeLLM{responses: []string{plan}}, nil, prompts.NewRegistry(""))
	res, err := c.Implement(context.Background(), Request{
		Repo:     "octo/tool",
		Strategy: "## Positioning\nGo for it.",
		Branch:   "hackathon-revamp",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Repo != "octo/tool" || res.Fork != "" {
		t.Errorf("expected in-place commits, got %+v", res)
	}
	if res.Commits != 3 || len(res.Files) != 3 {
		t.Fatalf("expected 3 commits, got %+v", res)
	}
	if git.files["cmd/demo/main.go"] != "package main" {
		t.Error("created file content not committed")
	}
	if _, ok := git.files["old.txt"]; ok {
		t.Error("deleted file still present")
	}

	// Branch setup must precede every commit.
	branchAt := -1
	for i, call := range git.calls {
		if call.op == "branch" {
			branchAt = i
		}
		if (call.op == "put" || call.op == "delete") && branchAt == -1 {
			t.Fatal("commit before branch creation")
		}
	}
}

func TestImplementForkBeforeBranch(t *testing.T) {
	git := newFakeGit()
	git.files["README.md"] = "# Old"
	git.files["old.txt"] = "stale"

	c := New(git, &fakeLLM{responses: []string{plan}}, nil, prompts.NewRegistry(""))
	res, err := c.Implement(context.Background(), Request{
		Repo: "octo/tool", Strategy: "s", Fork: true, Branch: "hackathon-revamp",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Fork != "me/tool" || res.Repo != "me/tool" {
		t.Fatalf("commits must target the fork: %+v", res)
	}
	if git.calls[0].op != "fork" {
		t.Fatalf("fork must come first, got %v", git.calls)
	}
}

func TestImplementSkipsFailingEdit(t *testing.T) {
	git := newFakeGit()
	git.files["README.md"] = "# Old"
	git.files["old.txt"] = "stale"
	git.putErr["README.md"] = errors.New("conflict")

	c := New(git, &fakeLLM{responses: []string{plan}}, nil, prompts.NewRegistry(""))
	res, err := c.Implement(context.Background(), Request{Repo: "octo/tool", Strategy: "s", Branch: "b"})
	if err != nil {
		t.Fatalf("one failing edit must not fail the run: %v", err)
	}
	if res.Commits != 2 {
		t.Fatalf("expected 2 commits, got %d", res.Commits)
	}
}

func TestPlanRetriesMalformedResponse(t *testing.T) {
	model := &fakeLLM{responses: []string{"not json at all", "```json\n" + plan + "\n```"}}
	c := New(newFakeGit(), model, nil, prompts.NewRegistry(""))

	edits, err := c.Plan(context.Background(), "s", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model.calls != 2 || len(edits) != 3 {
		t.Fatalf("calls=%d edits=%d", model.calls, len(edits))
	}
}

func TestPlanRejectsBadPaths(t *testing.T) {
	for _, bad := range []string{
		`[{"path": "../escape", "action": "create"}]`,
		`[{"path": "/abs", "action": "create"}]`,
		`[{"path": "ok.go", "action": "rename"}]`,
	} {
		if _, err := parsePlan(bad); err == nil {
			t.Errorf("plan %q should be rejected", bad)
		}
	}
}

func TestMorphEditorApply(t *testing.T) {
	model := &fakeLLM{responses: []string{"```go\npackage main\n\nfunc main() {}\n```"}}
	m := NewMorphEditorFrom(model)

	got, err := m.Apply(context.Background(), "package main", "add main func", "func main() {}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "package main\n\nfunc main() {}\n" {
		t.Fatalf("fences not stripped: %q", got)
	}
}

func TestExtractJSON(t *testing.T) {
	raw := "Here is the plan:\n```json\n[{\"path\":\"a\"}]\n```\nDone."
	got := extractJSON(raw)
	if !strings.HasPrefix(got, "[") || !strings.HasSuffix(got, "]") {
		t.Fatalf("failed to extract json array: %q", got)
	}
}
