// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/splits/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

const defaultWatchInterval = 500 * time.Millisecond

// Store wraps SQLite access for timer state and archived attempts.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// The TUI and CLI commands share the file, so writers wait on the lock.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			version INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY,
			started_at_ms INTEGER NOT NULL,
			saved_at_ms INTEGER NOT NULL,
			total_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempt_splits (
			attempt_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			segment_id TEXT NOT NULL,
			name TEXT NOT NULL,
			split_ms INTEGER NOT NULL,
			PRIMARY KEY (attempt_id, position)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Load returns the value stored under key. ok is false when the key has never
// been written.
func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Save replaces the value under key and bumps its version. The last write
// wins.
func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	return saveEntry(ctx, s.db, key, value)
}

// SaveWithAttempt archives attempt and replaces the value under key in one
// transaction, so either both writes land or neither does.
func (s *Store) SaveWithAttempt(ctx context.Context, key string, value []byte, attempt model.Attempt) (id int64, err error) {
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if id, err = insertAttempt(ctx, tx, attempt); err != nil {
			return err
		}
		return saveEntry(ctx, tx, key, value)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveEntry(ctx context.Context, ex execer, key string, value []byte) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO entries (key, value, version, updated_at) VALUES (?, ?, 1, ?)
		 ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			version = entries.version + 1,
			updated_at = excluded.updated_at`,
		key, string(value), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Version returns the write counter for key, zero when unwritten.
func (s *Store) Version(ctx context.Context, key string) (int64, error) {
	var version int64
	err := s.db.QueryRowContext(ctx, `SELECT version FROM entries WHERE key = ?`, key).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("version %s: %w", key, err)
	}
	return version, nil
}

// Watch polls key and delivers its value whenever the version changes after
// the call, including writes made by other processes. The channel is closed
// when ctx ends. Poll errors are skipped and retried on the next tick.
func (s *Store) Watch(ctx context.Context, key string, interval time.Duration) <-chan []byte {
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	out := make(chan []byte, 1)
	seen, _ := s.Version(ctx, key)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			version, err := s.Version(ctx, key)
			if err != nil || version == seen {
				continue
			}
			value, ok, err := s.Load(ctx, key)
			if err != nil || !ok {
				continue
			}
			seen = version
			select {
			case out <- value:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func insertAttempt(ctx context.Context, tx *sql.Tx, attempt model.Attempt) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO attempts (started_at_ms, saved_at_ms, total_ms) VALUES (?, ?, ?)`,
		attempt.StartedAt.UnixMilli(),
		attempt.SavedAt.UnixMilli(),
		attempt.TotalMs,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if len(attempt.Splits) == 0 {
		return id, nil
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO attempt_splits (attempt_id, position, segment_id, name, split_ms)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i, split := range attempt.Splits {
		if _, err := stmt.ExecContext(ctx, id, i, split.SegmentID, split.Name, split.SplitMs); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// ListAttempts returns the most recent attempts in the order they were
// saved. last <= 0 lists every attempt.
func (s *Store) ListAttempts(ctx context.Context, last int) ([]model.Attempt, error) {
	limit := last
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at_ms, saved_at_ms, total_ms FROM (
			SELECT id, started_at_ms, saved_at_ms, total_ms FROM attempts
			ORDER BY id DESC
			LIMIT ?
		) ORDER BY id ASC`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var attempts []model.Attempt
	index := map[int64]int{}
	for rows.Next() {
		var a model.Attempt
		var startedAt, savedAt int64
		if err := rows.Scan(&a.ID, &startedAt, &savedAt, &a.TotalMs); err != nil {
			return nil, err
		}
		a.StartedAt = time.UnixMilli(startedAt)
		a.SavedAt = time.UnixMilli(savedAt)
		index[a.ID] = len(attempts)
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(attempts) == 0 {
		return nil, nil
	}

	if err := s.attachSplits(ctx, attempts, index); err != nil {
		return nil, err
	}
	return attempts, nil
}

func (s *Store) attachSplits(ctx context.Context, attempts []model.Attempt, index map[int64]int) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT attempt_id, segment_id, name, split_ms FROM attempt_splits
		 WHERE attempt_id >= ? AND attempt_id <= ?
		 ORDER BY attempt_id, position`,
		minID(attempts), maxID(attempts))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	for rows.Next() {
		var attemptID int64
		var split model.AttemptSplit
		if err := rows.Scan(&attemptID, &split.SegmentID, &split.Name, &split.SplitMs); err != nil {
			return err
		}
		i, ok := index[attemptID]
		if !ok {
			continue
		}
		attempts[i].Splits = append(attempts[i].Splits, split)
	}
	return rows.Err()
}

func minID(attempts []model.Attempt) int64 {
	out := attempts[0].ID
	for _, a := range attempts[1:] {
		out = min(out, a.ID)
	}
	return out
}

func maxID(attempts []model.Attempt) int64 {
	out := attempts[0].ID
	for _, a := range attempts[1:] {
		out = max(out, a.ID)
	}
	return out
}
