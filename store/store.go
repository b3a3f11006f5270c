// Package store persists the three session records — world state,
// chat history, event log — as independent JSON blobs in a SQLite
// file. Loads fall back silently to defaults on missing or malformed
// data; save failures are logged and never surfaced to the caller.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nathoo/dmcore/engine/state"
	"github.com/nathoo/dmcore/types"
)

// Blob keys. Each record is saved and loaded independently.
const (
	KeyState    = "state"
	KeyHistory  = "history"
	KeyEventLog = "eventlog"
)

// ErrNotFound reports a missing blob key.
var ErrNotFound = errors.New("store: key not found")

const schema = `
CREATE TABLE IF NOT EXISTS blobs (
	key        TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at TEXT NOT NULL
);`

// Store is a SQLite-backed blob store.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: initializing schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: slog.Default().With("component", "store"),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put marshals v and upserts it under key.
func (s *Store) Put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encoding %s: %w", key, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO blobs (key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store: writing %s: %w", key, err)
	}
	return nil
}

// Get unmarshals the blob under key into v.
func (s *Store) Get(key string, v any) error {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM blobs WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: reading %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("store: decoding %s: %w", key, err)
	}
	return nil
}

// LoadState returns the persisted world state, or fallback when the
// record is missing or malformed.
func (s *Store) LoadState(fallback *types.WorldState) *types.WorldState {
	var ws types.WorldState
	if err := s.Get(KeyState, &ws); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("falling back to default state", "err", err)
		}
		return fallback
	}
	state.Normalize(&ws)
	return &ws
}

// LoadHistory returns the persisted transcript, or an empty one.
func (s *Store) LoadHistory() []types.Message {
	var history []types.Message
	if err := s.Get(KeyHistory, &history); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("falling back to empty history", "err", err)
		}
		return []types.Message{}
	}
	if history == nil {
		history = []types.Message{}
	}
	return history
}

// LoadEventLog returns the persisted event log, or an empty one.
func (s *Store) LoadEventLog() []types.LogEntry {
	var eventLog []types.LogEntry
	if err := s.Get(KeyEventLog, &eventLog); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("falling back to empty event log", "err", err)
		}
		return []types.LogEntry{}
	}
	if eventLog == nil {
		eventLog = []types.LogEntry{}
	}
	return eventLog
}

// SaveState implements engine.Saver. Failures are logged, not
// propagated; persistence never blocks a turn.
func (s *Store) SaveState(ws *types.WorldState) {
	if err := s.Put(KeyState, ws); err != nil {
		s.logger.Warn("saving state failed", "err", err)
	}
}

// SaveHistory implements engine.Saver.
func (s *Store) SaveHistory(history []types.Message) {
	if err := s.Put(KeyHistory, history); err != nil {
		s.logger.Warn("saving history failed", "err", err)
	}
}

// SaveEventLog implements engine.Saver.
func (s *Store) SaveEventLog(eventLog []types.LogEntry) {
	if err := s.Put(KeyEventLog, eventLog); err != nil {
		s.logger.Warn("saving event log failed", "err", err)
	}
}
