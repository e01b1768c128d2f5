package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hackrevamp/revamp/internal/github"
	"github.com/hackrevamp/revamp/internal/prompts"
)

type fakeIndexer struct {
	rc  *github.RepoContext
	err error
}

func (f *fakeIndexer) Index(ctx context.Context, repo string) (*github.RepoContext, error) {
	return f.rc, f.err
}

type fakeLLM struct {
	response string
	err      error
	lastUser string
}

func (f *fakeLLM) Complete(ctx context.Context, system, user string) (string, error) {
	f.lastUser = user
	return f.response, f.err
}

func TestAnalyze(t *testing.T) {
	idx := &fakeIndexer{rc: &github.RepoContext{Repo: "octo/tool", Description: "desc"}}
	model := &fakeLLM{response: `## Stack
Go 1.25, SQLite

## Structure
cmd/ and internal/

## Features
Turns tasks into PRs

## Topic
background coding agent`}

	a := New(idx, model, prompts.NewRegistry(""))
	got, err := a.Analyze(context.Background(), "octo/tool")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Stack != "Go 1.25, SQLite" || got.Topic != "background coding agent" {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if !strings.Contains(model.lastUser, "octo/tool") {
		t.Error("repo context should be injected into the model call")
	}
}

func TestAnalyzeThinResponseIsNotAnError(t *testing.T) {
	idx := &fakeIndexer{rc: &github.RepoContext{Repo: "octo/tool"}}
	a := New(idx, &fakeLLM{response: "nothing useful"}, prompts.NewRegistry(""))

	got, err := a.Analyze(context.Background(), "octo/tool")
	if err != nil {
		t.Fatalf("thin responses must not error: %v", err)
	}
	if got.Stack != "" || got.Features != "" {
		t.Fatalf("expected empty fields, got %+v", got)
	}
	if !strings.Contains(got.Prompt(), "Not specified.") {
		t.Error("prompt rendering should mark missing fields")
	}
}

func TestAnalyzeIndexFailure(t *testing.T) {
	idx := &fakeIndexer{err: errors.New("boom")}
	a := New(idx, &fakeLLM{}, prompts.NewRegistry(""))
	if _, err := a.Analyze(context.Background(), "octo/tool"); err == nil {
		t.Fatal("expected error when indexing fails")
	}
}
