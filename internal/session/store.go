// Package session provides run and event persistence using SQLite.
package session

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Status represents the current state of a run.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// Run represents a single pipeline execution.
type Run struct {
	ID           string    `json:"id"`
	Repo         string    `json:"repo"`
	Hackathon    string    `json:"hackathon"`
	Topic        string    `json:"topic,omitempty"`
	Status       Status    `json:"status"`
	Strategy     string    `json:"strategy,omitempty"` // strategy document markdown
	Branch       string    `json:"branch,omitempty"`
	Fork         string    `json:"fork,omitempty"`
	Commits      int       `json:"commits,omitempty"`
	Error        string    `json:"error,omitempty"`
	ImplementErr string    `json:"implement_error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Event represents a single event in a run's lifecycle.
type Event struct {
	ID        int64     `json:"id"`
	RunID     string    `json:"run_id"`
	Type      string    `json:"type"` // "status", "output", "error", "done"
	Data      string    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages run and event persistence in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) a SQLite database at the given path.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id             TEXT PRIMARY KEY,
			repo           TEXT NOT NULL DEFAULT '',
			hackathon      TEXT NOT NULL DEFAULT '',
			topic          TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL DEFAULT 'pending',
			strategy       TEXT NOT NULL DEFAULT '',
			branch         TEXT NOT NULL DEFAULT '',
			fork           TEXT NOT NULL DEFAULT '',
			commits        INTEGER NOT NULL DEFAULT 0,
			error          TEXT NOT NULL DEFAULT '',
			implement_err  TEXT NOT NULL DEFAULT '',
			created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
			updated_at     DATETIME NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS run_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL,
			type       TEXT NOT NULL,
			data       TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (run_id) REFERENCES runs(id)
		);

		CREATE INDEX IF NOT EXISTS idx_events_run_id
			ON run_events(run_id);
	`)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateRun inserts a new run.
func (s *Store) CreateRun(run *Run) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, repo, hackathon, topic, status, branch, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Repo, run.Hackathon, run.Topic, run.Status, run.Branch,
		run.CreatedAt, run.UpdatedAt,
	)
	return err
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, repo, hackathon, topic, status, strategy, branch, fork,
		        commits, error, implement_err, created_at, updated_at
		 FROM runs WHERE id = ?`, id,
	)
	return scanRun(row)
}

// ListRuns returns all runs ordered by creation time (newest first).
func (s *Store) ListRuns() ([]*Run, error) {
	rows, err := s.db.Query(
		`SELECT id, repo, hackathon, topic, status, strategy, branch, fork,
		        commits, error, implement_err, created_at, updated_at
		 FROM runs ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// UpdateRun updates mutable fields of a run.
func (s *Store) UpdateRun(run *Run) error {
	run.UpdatedAt = time.Now().UTC()
	_, err := s.db.Exec(
		`UPDATE runs SET
			repo = ?, hackathon = ?, status = ?, strategy = ?, branch = ?,
			fork = ?, commits = ?, error = ?, implement_err = ?, updated_at = ?
		 WHERE id = ?`,
		run.Repo, run.Hackathon, run.Status, run.Strategy, run.Branch,
		run.Fork, run.Commits, run.Error, run.ImplementErr, run.UpdatedAt, run.ID,
	)
	return err
}

// AddEvent inserts a new event and returns its ID.
func (s *Store) AddEvent(event *Event) error {
	result, err := s.db.Exec(
		`INSERT INTO run_events (run_id, type, data, created_at)
		 VALUES (?, ?, ?, ?)`,
		event.RunID, event.Type, event.Data, event.CreatedAt,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	event.ID = id
	return nil
}

// GetEvents returns events for a run, optionally after a given event ID.
func (s *Store) GetEvents(runID string, afterID int64) ([]*Event, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, type, data, created_at
		 FROM run_events
		 WHERE run_id = ? AND id > ?
		 ORDER BY id ASC`,
		runID, afterID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.RunID, &e.Type, &e.Data, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// --- Scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*Run, error) {
	run := &Run{}
	err := row.Scan(
		&run.ID, &run.Repo, &run.Hackathon, &run.Topic, &run.Status,
		&run.Strategy, &run.Branch, &run.Fork, &run.Commits,
		&run.Error, &run.ImplementErr, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// --- In-memory event bus for real-time streaming ---

// EventBus provides pub/sub for run events.
type EventBus struct {
	mu   sync.RWMutex
	subs map[string][]chan *Event
}

// NewEventBus creates a new EventBus.
func NewEventBus() *EventBus {
	return &EventBus{
		subs: make(map[string][]chan *Event),
	}
}

// Subscribe creates a channel that receives events for a run.
func (b *EventBus) Subscribe(runID string) chan *Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan *Event, 64)
	b.subs[runID] = append(b.subs[runID], ch)
	return ch
}

// Unsubscribe removes a channel from the run's subscribers.
func (b *EventBus) Unsubscribe(runID string, ch chan *Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[runID]
	for i, s := range subs {
		if s == ch {
			b.subs[runID] = append(subs[:i], subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Publish sends an event to all subscribers for a run.
func (b *EventBus) Publish(runID string, event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[runID] {
		select {
		case ch <- event:
		default:
			// Drop event if subscriber is too slow.
		}
	}
}
