// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session persists insight sessions so follow-up questions can be
// answered against what the user was actually shown.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/concierge-engine/pkg/types"
)

const dbFile = "sessions.db"

// ErrNotFound is returned by Get when no session with the given ID exists.
var ErrNotFound = errors.New("session not found")

// Store manages the insight session SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the session database at dataDir/sessions.db.
// The schema is created if it does not exist.
func NewStore(cfg types.SessionConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			customer_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_customer ON sessions(customer_id, created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save upserts one session. The full session is stored as a JSON payload;
// the indexed columns exist only for lookup.
func (s *Store) Save(ctx context.Context, session types.InsightSession) error {
	if session.SessionID == "" {
		return fmt.Errorf("session has no session_id")
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", session.SessionID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, customer_id, created_at, payload)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
			customer_id=excluded.customer_id, created_at=excluded.created_at,
			payload=excluded.payload`,
		session.SessionID, session.CustomerID,
		session.CreatedAt.UTC().Format(time.RFC3339Nano), string(payload),
	)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", session.SessionID, err)
	}
	return nil
}

// Get loads one session by ID.
func (s *Store) Get(ctx context.Context, sessionID string) (types.InsightSession, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM sessions WHERE session_id = ?`, sessionID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return types.InsightSession{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return types.InsightSession{}, fmt.Errorf("loading session %s: %w", sessionID, err)
	}

	var session types.InsightSession
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return types.InsightSession{}, fmt.Errorf("decoding session %s: %w", sessionID, err)
	}
	return session, nil
}

// Latest returns the most recently created session for a customer, or
// ErrNotFound when the customer has none.
func (s *Store) Latest(ctx context.Context, customerID string) (types.InsightSession, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM sessions WHERE customer_id = ?
		 ORDER BY created_at DESC LIMIT 1`, customerID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return types.InsightSession{}, fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
	}
	if err != nil {
		return types.InsightSession{}, fmt.Errorf("loading latest session for %s: %w", customerID, err)
	}

	var session types.InsightSession
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return types.InsightSession{}, fmt.Errorf("decoding session for %s: %w", customerID, err)
	}
	return session, nil
}

// RecentHeadlines returns headlines from sessions the customer saw within
// the lookback window, newest first. Used to avoid repeating an insight a
// user was just shown.
func (s *Store) RecentHeadlines(ctx context.Context, customerID string, since time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM sessions
		 WHERE customer_id = ? AND created_at >= ?
		 ORDER BY created_at DESC`,
		customerID, since.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("loading recent sessions for %s: %w", customerID, err)
	}
	defer rows.Close()

	var headlines []string
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		var session types.InsightSession
		if err := json.Unmarshal([]byte(payload), &session); err != nil {
			continue
		}
		for _, ins := range session.Insights {
			if ins.Headline != "" {
				headlines = append(headlines, ins.Headline)
			}
		}
	}
	return headlines, rows.Err()
}
