// Package server provides the revamp HTTP API server.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/hackrevamp/revamp/internal/config"
	"github.com/hackrevamp/revamp/internal/notify"
	"github.com/hackrevamp/revamp/internal/session"
	"github.com/hackrevamp/revamp/internal/workflow"
)

// Runner is the pipeline entry point the server drives.
type Runner interface {
	Run(ctx context.Context, req workflow.Request) (*workflow.Result, error)
}

// Server is the revamp HTTP API server.
type Server struct {
	config    *config.Config
	store     *session.Store
	bus       *session.EventBus
	runner    Runner
	notifiers []notify.Notifier
	router    chi.Router
	log       *slog.Logger
}

// New creates a new Server. notifiers may be empty.
func New(cfg *config.Config, store *session.Store, runner Runner, notifiers []notify.Notifier) *Server {
	s := &Server{
		config:    cfg,
		store:     store,
		bus:       session.NewEventBus(),
		runner:    runner,
		notifiers: notifiers,
		log:       slog.Default(),
	}
	s.router = s.buildRouter()
	return s
}

// Router exposes the HTTP handler, used in tests.
func (s *Server) Router() http.Handler { return s.router }

// Start runs the HTTP server until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.config.ServerAddr,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("revamp server listening", "addr", s.config.ServerAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return s.store.Close()
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Route("/api", func(r chi.Router) {
		r.Post("/runs", s.handleCreateRun)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/events", s.handleRunEvents)
	})

	// Health check.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	return r
}

// --- Request/Response types ---

type createRunRequest struct {
	Repo      string `json:"repo"`
	Hackathon string `json:"hackathon"`
	Topic     string `json:"topic"`
	Context   string `json:"context"`
	Order     string `json:"order"`
	Implement bool   `json:"implement"`
	Fork      bool   `json:"fork"`
	Branch    string `json:"branch"`
}

type createRunResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// --- Handlers ---

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Repo == "" && req.Hackathon == "" && req.Topic == "" {
		writeError(w, http.StatusBadRequest, "one of repo, hackathon, or topic is required")
		return
	}

	run, err := s.createAndStartRun(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create run")
		s.log.Error("creating run", "error", err)
		return
	}

	writeJSON(w, http.StatusCreated, createRunResponse{ID: run.ID})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		s.log.Error("listing runs", "error", err)
		return
	}
	if runs == nil {
		runs = []*session.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.store.GetRun(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleRunEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Verify run exists.
	if _, err := s.store.GetRun(id); err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	// Set SSE headers.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	// Send historical events first.
	events, _ := s.store.GetEvents(id, 0)
	for _, e := range events {
		writeSSE(w, e)
	}
	flusher.Flush()

	// Subscribe to real-time events.
	ch := s.bus.Subscribe(id)
	defer s.bus.Unsubscribe(id, ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			writeSSE(w, event)
			flusher.Flush()
		}
	}
}

// --- Run execution ---

// createAndStartRun persists a new run and executes the pipeline in the
// background.
func (s *Server) createAndStartRun(req createRunRequest) (*session.Run, error) {
	id := uuid.New().String()[:8]
	branch := req.Branch
	if branch == "" {
		branch = s.config.DefaultBranch
	}
	now := time.Now().UTC()

	run := &session.Run{
		ID:        id,
		Repo:      req.Repo,
		Hackathon: req.Hackathon,
		Topic:     req.Topic,
		Status:    session.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateRun(run); err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}

	go s.executeRun(run, workflow.Request{
		RepoURL:      req.Repo,
		HackathonURL: req.Hackathon,
		Topic:        req.Topic,
		Context:      req.Context,
		Order:        workflow.Order(req.Order),
		Implement:    req.Implement,
		Fork:         req.Fork,
		Branch:       branch,
	})
	return run, nil
}

func (s *Server) executeRun(run *session.Run, req workflow.Request) {
	ctx := context.Background()

	run.Status = session.StatusRunning
	s.store.UpdateRun(run)
	s.emitEvent(run.ID, "status", "Starting pipeline...")

	res, err := s.runner.Run(ctx, req)
	if err != nil {
		s.failRun(run, err.Error())
		return
	}

	run.Repo = res.Repo
	run.Hackathon = res.HackathonURL
	run.Strategy = res.Strategy.Markdown()
	run.ImplementErr = res.ImplementErr
	if res.Implementation != nil {
		run.Branch = res.Implementation.Branch
		run.Fork = res.Implementation.Fork
		run.Commits = res.Implementation.Commits
	}
	run.Status = session.StatusComplete
	s.store.UpdateRun(run)

	s.emitEvent(run.ID, "output", run.Strategy)
	if res.Implementation != nil {
		s.emitEvent(run.ID, "status",
			fmt.Sprintf("Pushed %d commits to %s on branch %s", run.Commits, run.Repo, run.Branch))
	}
	if run.ImplementErr != "" {
		s.emitEvent(run.ID, "error", "implementation failed: "+run.ImplementErr)
	}
	s.emitEvent(run.ID, "done", run.ID)

	s.notifyAll(ctx, completionMessage(run))
}

func (s *Server) failRun(run *session.Run, errMsg string) {
	s.log.Error("run failed", "run", run.ID, "error", errMsg)
	run.Status = session.StatusError
	run.Error = errMsg
	s.store.UpdateRun(run)
	s.emitEvent(run.ID, "error", errMsg)
	s.notifyAll(context.Background(), fmt.Sprintf("Revamp run `%s` failed: %s", run.ID, errMsg))
}

func (s *Server) emitEvent(runID, eventType, data string) {
	event := &session.Event{
		RunID:     runID,
		Type:      eventType,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.AddEvent(event); err != nil {
		s.log.Error("storing event", "run", runID, "error", err)
	}
	s.bus.Publish(runID, event)
}

func (s *Server) notifyAll(ctx context.Context, text string) {
	for _, n := range s.notifiers {
		if err := n.Notify(ctx, text); err != nil {
			s.log.Warn("notification failed", "channel", n.Name(), "error", err)
		}
	}
}

func completionMessage(run *session.Run) string {
	msg := fmt.Sprintf("Revamp run `%s` complete.", run.ID)
	if run.Repo != "" {
		msg += " Project: " + run.Repo + "."
	}
	if run.Hackathon != "" {
		msg += " Hackathon: " + run.Hackathon + "."
	}
	if run.Commits > 0 {
		msg += fmt.Sprintf(" %d commits on branch %s.", run.Commits, run.Branch)
	}
	return msg
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeSSE(w http.ResponseWriter, event *session.Event) {
	data, _ := json.Marshal(event)
	fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", event.ID, event.Type, string(data))
}
