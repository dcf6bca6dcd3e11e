package store

import (
	"context"
	"database/sql"
	"errors"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Store functions take a Querier so the lending service can compose several
// of them inside a single transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Failure taxonomy surfaced to callers. Store and lending functions wrap
// these with fmt.Errorf("...: %w", ...) so callers can match with errors.Is.
var (
	// ErrNotFound means the referenced book, transaction, or user does not
	// exist (or is not in the required state).
	ErrNotFound = errors.New("not found")

	// ErrConflict means a double-borrow or a lost race on a guarded update.
	ErrConflict = errors.New("conflict")

	// ErrUnavailable means the book has no copies left to borrow.
	ErrUnavailable = errors.New("no copies available")

	// ErrForbidden means the caller does not own the transaction.
	ErrForbidden = errors.New("forbidden")

	// ErrInvariantViolation means the availability counter would leave
	// [0, total]. This indicates a bug or external tampering; the operation
	// is rejected rather than clamped.
	ErrInvariantViolation = errors.New("availability invariant violation")
)
