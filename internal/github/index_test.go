package github

import (
	"strings"
	"testing"

	gogh "github.com/google/go-github/v68/github"
)

func TestRenderTreeDepthLimit(t *testing.T) {
	entries := []*gogh.TreeEntry{
		{Path: gogh.Ptr("cmd"), Type: gogh.Ptr("tree")},
		{Path: gogh.Ptr("cmd/app"), Type: gogh.Ptr("tree")},
		{Path: gogh.Ptr("cmd/app/main.go"), Type: gogh.Ptr("blob")},
		{Path: gogh.Ptr("cmd/app/sub/deep.go"), Type: gogh.Ptr("blob")},
		{Path: gogh.Ptr("README.md"), Type: gogh.Ptr("blob")},
	}

	tree := renderTree(entries)
	if !strings.Contains(tree, "cmd/") {
		t.Errorf("missing directory marker:\n%s", tree)
	}
	if !strings.Contains(tree, "    main.go") {
		t.Errorf("missing indented file:\n%s", tree)
	}
	if strings.Contains(tree, "deep.go") {
		t.Errorf("entries beyond depth limit should be dropped:\n%s", tree)
	}
}

func TestFirstLines(t *testing.T) {
	content := "a\nb\nc\nd"
	got := firstLines(content, 2)
	if !strings.HasPrefix(got, "a\nb") || !strings.Contains(got, "truncated") {
		t.Fatalf("got %q", got)
	}
	if firstLines("short", 10) != "short" {
		t.Fatal("short content should be untouched")
	}
}

func TestRepoContextPrompt(t *testing.T) {
	rc := &RepoContext{
		Repo:        "octo/tool",
		Description: "a fine tool",
		Languages:   map[string]int{"Go": 90, "Shell": 10},
		Tree:        "main.go",
		KeyFiles:    map[string]string{"go.mod": "module tool"},
	}

	prompt := rc.Prompt()
	for _, want := range []string{"octo/tool", "a fine tool", "Go: 90%", "main.go", "module tool"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	// Highest-percentage language is listed first.
	if strings.Index(prompt, "Go: 90%") > strings.Index(prompt, "Shell: 10%") {
		t.Error("languages should be sorted by percentage descending")
	}
}
