package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hackrevamp/revamp/internal/config"
	"github.com/hackrevamp/revamp/internal/session"
	"github.com/hackrevamp/revamp/internal/strategy"
	"github.com/hackrevamp/revamp/internal/workflow"
)

type stubRunner struct {
	result *workflow.Result
	err    error
	done   chan workflow.Request
}

func (r *stubRunner) Run(ctx context.Context, req workflow.Request) (*workflow.Result, error) {
	if r.done != nil {
		defer func() { r.done <- req }()
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

func testServer(t *testing.T, runner Runner) *Server {
	t.Helper()
	store, err := session.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.Config{ServerAddr: ":0", DefaultBranch: "hackathon-revamp"}
	return New(cfg, store, runner, nil)
}

func okResult() *workflow.Result {
	return &workflow.Result{
		Repo:         "octo/tool",
		HackathonURL: "https://devpost.com/big",
		Strategy:     &strategy.Document{Positioning: "p", Features: "f", Improvements: "i", DemoPlan: "d"},
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer(t, &stubRunner{result: okResult()})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "ok" {
		t.Fatalf("expected 'ok', got %q", w.Body.String())
	}
}

func TestCreateRunMissingInput(t *testing.T) {
	s := testServer(t, &stubRunner{result: okResult()})

	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(`{"context":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreateRunAndGet(t *testing.T) {
	runner := &stubRunner{result: okResult(), done: make(chan workflow.Request, 1)}
	s := testServer(t, runner)

	body := `{"repo":"octo/tool","hackathon":"https://devpost.com/big"}`
	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp createRunResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.ID) != 8 {
		t.Fatalf("expected short run id, got %q", resp.ID)
	}

	// The default branch flows into the pipeline request.
	select {
	case got := <-runner.done:
		if got.Branch != "hackathon-revamp" {
			t.Fatalf("branch = %q", got.Branch)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pipeline never ran")
	}

	// The background run completes and persists the strategy.
	deadline := time.Now().Add(2 * time.Second)
	for {
		w = httptest.NewRecorder()
		s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs/"+resp.ID, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var run session.Run
		json.NewDecoder(w.Body).Decode(&run)
		if run.Status == session.StatusComplete {
			if !strings.Contains(run.Strategy, "## Positioning") {
				t.Fatalf("strategy not persisted: %q", run.Strategy)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("run never completed: %+v", run)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := testServer(t, &stubRunner{result: okResult()})

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestListRunsEmpty(t *testing.T) {
	s := testServer(t, &stubRunner{result: okResult()})

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %q", w.Body.String())
	}
}

func TestRunEventsReplaysHistory(t *testing.T) {
	runner := &stubRunner{result: okResult(), done: make(chan workflow.Request, 1)}
	s := testServer(t, runner)

	body := `{"topic":"coding agents"}`
	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	var resp createRunResponse
	json.NewDecoder(w.Body).Decode(&resp)

	<-runner.done
	// Give the background goroutine a moment to write the done event.
	deadline := time.Now().Add(2 * time.Second)
	for {
		events, _ := s.store.GetEvents(resp.ID, 0)
		if len(events) > 0 && events[len(events)-1].Type == "done" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("done event never recorded")
		}
		time.Sleep(10 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sseReq := httptest.NewRequest(http.MethodGet, "/api/runs/"+resp.ID+"/events", nil).WithContext(ctx)
	sseW := httptest.NewRecorder()
	s.Router().ServeHTTP(sseW, sseReq)

	out := sseW.Body.String()
	if !strings.Contains(out, "event: status") || !strings.Contains(out, "event: done") {
		t.Fatalf("historical events not replayed: %q", out)
	}
}

func TestRunFailureRecorded(t *testing.T) {
	runner := &stubRunner{err: context.DeadlineExceeded, done: make(chan workflow.Request, 1)}
	s := testServer(t, runner)

	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(`{"topic":"x"}`))
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	var resp createRunResponse
	json.NewDecoder(w.Body).Decode(&resp)

	<-runner.done
	deadline := time.Now().Add(2 * time.Second)
	for {
		run, err := s.store.GetRun(resp.ID)
		if err != nil {
			t.Fatalf("get run: %v", err)
		}
		if run.Status == session.StatusError {
			if run.Error == "" {
				t.Fatal("error message not recorded")
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("run never failed: %+v", run)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
