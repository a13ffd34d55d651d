// Package sqlitestore keeps session slots in a local SQLite file.
package sqlitestore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jrsteele09/trekker-client/session"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// Store is a session.Store backed by SQLite.
type Store struct {
	db        *sql.DB
	writeLock sync.Mutex // go-sqlite does not support concurrent writes
	nowTime   func() time.Time
}

var _ session.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and prepares the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Wrap(err, "[sqlitestore.Open] mkdir")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "[sqlitestore.Open] sql.Open")
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[sqlitestore.Open] ping")
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[sqlitestore.Open] busy_timeout")
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS session_slots (
			slot       TEXT    PRIMARY KEY,
			value      TEXT    NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[sqlitestore.Open] create schema")
	}

	return &Store{db: db, nowTime: time.Now}, nil
}

func (s *Store) Get(ctx context.Context, slot session.Slot) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM session_slots WHERE slot = ?", string(slot)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "[sqlitestore.Get] query")
	}
	return value, true, nil
}

// Set upserts every slot inside one transaction.
func (s *Store) Set(ctx context.Context, values map[session.Slot]string) (err error) {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "[sqlitestore.Set] begin")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := s.nowTime().Unix()
	for slot, value := range values {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO session_slots (slot, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(slot) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, string(slot), value, now); err != nil {
			return errors.Wrapf(err, "[sqlitestore.Set] upsert %s", slot)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "[sqlitestore.Set] commit")
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, slots ...session.Slot) (err error) {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "[sqlitestore.Clear] begin")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, slot := range slots {
		if _, err = tx.ExecContext(ctx, "DELETE FROM session_slots WHERE slot = ?", string(slot)); err != nil {
			return errors.Wrapf(err, "[sqlitestore.Clear] delete %s", slot)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "[sqlitestore.Clear] commit")
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
