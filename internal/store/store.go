// Package store is Roadmap's single source of persisted truth: claim
// and edge rows, the append-only proof log, and the active pointer, all
// behind a small transactional API. See spec.md §4.1.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/proofcarrying/roadmap/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// currentSchemaVersion tracks migrations applied via PRAGMA user_version.
//
//	0 - pre-migration shape (persisted `status` column, `test_cmd` name)
//	1 - derived-status era: `prove_cmd` replaces `test_cmd`, `status` dropped,
//	    `scope_json` and `active_pointer` introduced.
const currentSchemaVersion = 1

// Store provides durable, transactional storage for claims, edges,
// proofs and the active pointer.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open creates or opens the SQLite database at path, applying pragmas
// and idempotent schema migration. Safe to call repeatedly.
func Open(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, model.WrapError(model.ErrStoreBusy, "open database", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, model.WrapError(model.ErrStoreBusy, "connect to database", err)
	}

	// SQLite has exactly one writer; Roadmap is a short-lived CLI
	// process, so a single connection is strictly correct, not just a
	// defensive cap.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, model.WrapError(model.ErrStoreBusy, "apply pragmas", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, model.WrapError(model.ErrStoreCorrupt, "apply schema", err)
	}

	return &Store{db: db, log: log}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("exec %q: %w", p, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return runMigrations(db)
}

// withTx runs fn inside a single transaction, rolling back on any error
// and on panic. Every multi-step write in this package goes through
// this helper so partial states are never observable (spec.md §4.1).
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.WrapError(model.ErrStoreBusy, "begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return model.WrapError(model.ErrStoreBusy, "commit transaction", err)
	}
	return nil
}
