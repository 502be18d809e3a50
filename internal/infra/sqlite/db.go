// Package sqlite provides persistence for the mutuelle ledger.
// Single-file store driven through database/sql; every mutating core
// operation runs inside one transaction obtained from WithTx.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mutuelle-network/mutuelle/internal/domain"

	_ "modernc.org/sqlite"
)

// DB wraps the sqlite handle.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the mutuelle database inside dir.
func Open(dir string) (*DB, error) {
	// _txlock=immediate makes every transaction take the write lock up
	// front (BEGIN IMMEDIATE), so contention surfaces as SQLITE_BUSY at
	// begin time instead of mid-transaction.
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		filepath.Join(dir, "mutuelle.db"))
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// sqlite allows a single writer; one connection serializes all
	// transactions and keeps the re-check-under-lock semantics honest.
	sqlDB.SetMaxOpenConns(1)

	db := &DB{db: sqlDB}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the underlying handle.
func (db *DB) Close() error { return db.db.Close() }

func (db *DB) migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("%w: %s", err, stmt)
		}
	}
	return nil
}

// ─── Transactions ───────────────────────────────────────────────────────────

const txAttempts = 3

// WithTx runs fn inside one immediate write transaction, retrying a bounded
// number of times on transient lock contention. When attempts are exhausted the caller gets
// ErrConflictRetryable.
func (db *DB) WithTx(ctx context.Context, fn func(*Store) error) error {
	var lastErr error
	for attempt := 0; attempt < txAttempts; attempt++ {
		tx, err := db.db.BeginTx(ctx, nil)
		if err != nil {
			if isBusy(err) {
				lastErr = err
				time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
				continue
			}
			return err
		}

		if err := fn(&Store{q: tx}); err != nil {
			tx.Rollback()
			if isBusy(err) {
				lastErr = err
				time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
				continue
			}
			return err
		}

		if err := tx.Commit(); err != nil {
			if isBusy(err) {
				lastErr = err
				time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("%w: %v", domain.ErrConflictRetryable, lastErr)
}

// Read returns a store bound to the bare handle for lock-free reads.
func (db *DB) Read() *Store { return &Store{q: db.db} }

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// ─── Store ──────────────────────────────────────────────────────────────────

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store exposes row-level operations over a DB or an open transaction.
type Store struct {
	q querier
}

// ─── Value helpers ──────────────────────────────────────────────────────────
// Money is stored as 2-scale decimal TEXT and re-summed in Go so arithmetic
// stays exact; timestamps are RFC3339 TEXT, dates are "2006-01-02" TEXT.

func decStr(d decimal.Decimal) string { return d.StringFixed(2) }

func parseDec(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func timeStr(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func dateStr(t time.Time) string { return t.Format("2006-01-02") }

func parseDate(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}
