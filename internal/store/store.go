// Package store provides SQLite store handles and schema management for the
// meal record core.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	apperrors "github.com/chanikarn/mealrecord/internal/errors"
)

// File names of the three logical databases. Each store keeps its own handle
// and lifecycle; no connection is shared across files.
const (
	LedgerFile    = "MealRecord.sqlite"
	UserFile      = "UserData.sqlite"
	NutritionFile = "NutritionDB.sqlite"
)

// Open opens a single SQLite database file with WAL journaling.
// WAL tolerates one writer with concurrent readers, which is the
// concurrency model the core assumes.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// OpenMemory opens an ephemeral in-memory database. Used by tests.
func OpenMemory() (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

// Context owns one handle per logical database file. It replaces hidden
// process-wide store state: components receive their handle at construction.
type Context struct {
	Ledger    *sql.DB
	Users     *sql.DB
	Nutrition *sql.DB
}

// OpenContext opens all three logical databases under dataDir.
func OpenContext(dataDir string) (*Context, error) {
	ledger, err := Open(filepath.Join(dataDir, LedgerFile))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to open meal ledger store", err)
	}

	users, err := Open(filepath.Join(dataDir, UserFile))
	if err != nil {
		ledger.Close()
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to open user store", err)
	}

	nutrition, err := Open(filepath.Join(dataDir, NutritionFile))
	if err != nil {
		ledger.Close()
		users.Close()
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to open nutrition store", err)
	}

	return &Context{
		Ledger:    ledger,
		Users:     users,
		Nutrition: nutrition,
	}, nil
}

// Close closes all handles. During normal operation handles live for the
// whole process; Close exists for tests and orderly shutdown.
func (c *Context) Close() error {
	var firstErr error
	for _, db := range []*sql.DB{c.Ledger, c.Users, c.Nutrition} {
		if db == nil {
			continue
		}
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
