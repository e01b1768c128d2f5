package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeProvider counts attempts and returns scripted results.
type fakeProvider struct {
	name     string
	response string
	err      error
	calls    int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func terminalErr(name string) error {
	return &ProviderError{Provider: name, Kind: FailureTerminal, Status: 401, Err: errors.New("bad key")}
}

func retryableErr(name string) error {
	return &ProviderError{Provider: name, Kind: FailureRetryable, Status: 429, Err: errors.New("rate limited")}
}

func TestChainFirstSuccessWins(t *testing.T) {
	p1 := &fakeProvider{name: "one", err: terminalErr("one")}
	p2 := &fakeProvider{name: "two", err: terminalErr("two")}
	p3 := &fakeProvider{name: "three", response: "plan from three"}
	p4 := &fakeProvider{name: "four", response: "should never run"}

	chain := NewChain(0, p1, p2, p3, p4)
	got, err := chain.Complete(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "plan from three" {
		t.Fatalf("got %q, want response from provider three", got)
	}
	if p4.calls != 0 {
		t.Fatalf("provider four attempted %d times, want 0", p4.calls)
	}
}

func TestChainRetriesRetryableOnce(t *testing.T) {
	p1 := &fakeProvider{name: "one", err: retryableErr("one")}
	p2 := &fakeProvider{name: "two", response: "ok"}

	chain := NewChain(0, p1, p2)
	got, err := chain.Complete(context.Background(), "sys", "user")
	if err != nil || got != "ok" {
		t.Fatalf("got %q, %v", got, err)
	}
	if p1.calls != 2 {
		t.Fatalf("retryable provider attempted %d times, want 2", p1.calls)
	}
}

func TestChainNoRetryOnTerminal(t *testing.T) {
	p1 := &fakeProvider{name: "one", err: terminalErr("one")}
	p2 := &fakeProvider{name: "two", response: "ok"}

	chain := NewChain(0, p1, p2)
	if _, err := chain.Complete(context.Background(), "sys", "user"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p1.calls != 1 {
		t.Fatalf("terminal provider attempted %d times, want 1", p1.calls)
	}
}

func TestChainExhausted(t *testing.T) {
	p1 := &fakeProvider{name: "one", err: terminalErr("one")}
	p2 := &fakeProvider{name: "two", err: terminalErr("two")}

	chain := NewChain(0, p1, p2)
	_, err := chain.Complete(context.Background(), "sys", "user")
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
}

func TestChainEmptyIsExhausted(t *testing.T) {
	chain := NewChain(0)
	if _, err := chain.Complete(context.Background(), "s", "u"); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
}

func TestChainStopsOnCallerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p1 := &fakeProvider{name: "one", err: retryableErr("one")}
	p2 := &fakeProvider{name: "two", response: "never"}

	// Cancel before the chain runs; the first failed attempt must not cascade.
	cancel()
	chain := NewChain(time.Second, p1, p2)
	_, err := chain.Complete(ctx, "sys", "user")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if p2.calls != 0 {
		t.Fatalf("provider two attempted %d times after cancel, want 0", p2.calls)
	}
}

func TestCodingChainFromKeysOrder(t *testing.T) {
	chain := CodingChainFromKeys(0, "ck", "", "mk", "", "ork", "", "oak", "")
	if chain == nil {
		t.Fatal("expected a chain")
	}
	var names []string
	for _, p := range chain.Providers() {
		names = append(names, providerName(p))
	}
	want := []string{"cerebras", "mistral", "openrouter", "openai"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}

	if CodingChainFromKeys(0, "", "", "", "", "", "", "", "") != nil {
		t.Fatal("expected nil chain with no keys")
	}
}

func TestRetryableClassification(t *testing.T) {
	if !Retryable(retryableErr("x")) {
		t.Fatal("429 should be retryable")
	}
	if Retryable(terminalErr("x")) {
		t.Fatal("401 should be terminal")
	}
	if Retryable(errors.New("plain")) {
		t.Fatal("unclassified errors are not retryable")
	}
}
