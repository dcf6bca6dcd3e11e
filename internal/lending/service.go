package lending

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkovacic/biblio/internal/store"
)

// LoanPeriodDays is the default loan period.
const LoanPeriodDays = 14

// Service orchestrates borrows and returns atomically across the catalog,
// the ledger, and the notifier.
type Service struct {
	db *sql.DB
}

// NewService creates a lending service on the given database handle.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Borrow lends a copy of the book to the user and returns the new
// transaction ID. The availability check, the double-borrow check, the
// ledger insert, the counter decrement, and the notifier evaluation all run
// in one database transaction; on any failure nothing is persisted.
//
// Fails with store.ErrNotFound (unknown book), store.ErrUnavailable (no
// copies), or store.ErrConflict (already borrowed, or a lost race).
func (s *Service) Borrow(ctx context.Context, userID, bookID int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning borrow transaction: %w", err)
	}
	defer tx.Rollback()

	title, total, available, err := store.GetAvailability(ctx, tx, bookID)
	if err != nil {
		return 0, err
	}
	if available <= 0 {
		return 0, fmt.Errorf("book %d: %w", bookID, store.ErrUnavailable)
	}

	active, err := store.HasActiveBorrow(ctx, tx, userID, bookID)
	if err != nil {
		return 0, err
	}
	if active {
		return 0, fmt.Errorf("user %d already borrowed book %d: %w", userID, bookID, store.ErrConflict)
	}

	due := time.Now().UTC().AddDate(0, 0, LoanPeriodDays)
	transactionID, err := store.OpenBorrow(ctx, tx, userID, bookID, due)
	if err != nil {
		return 0, err
	}

	newAvailable, err := store.AdjustAvailable(ctx, tx, bookID, available, -1, total)
	if err != nil {
		return 0, err
	}

	if err := recordTransition(ctx, tx, bookID, title, available, newAvailable); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing borrow: %w", err)
	}

	slog.Info("book borrowed", "user", userID, "book", bookID, "transaction", transactionID, "available", newAvailable)
	return transactionID, nil
}

// Return closes the user's loan and releases the copy back to the catalog.
// Closing the ledger entry, the counter increment, and the notifier
// evaluation commit together or not at all.
//
// Fails with store.ErrNotFound (unknown or already-returned transaction),
// store.ErrForbidden (loan belongs to another user), or
// store.ErrInvariantViolation (increment would exceed total copies, which
// means the counter was tampered with; the return is rejected, not clamped).
func (s *Service) Return(ctx context.Context, transactionID, userID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning return transaction: %w", err)
	}
	defer tx.Rollback()

	bookID, err := store.CloseBorrow(ctx, tx, transactionID, userID, time.Now().UTC())
	if err != nil {
		return err
	}

	title, total, available, err := store.GetAvailability(ctx, tx, bookID)
	if err != nil {
		return err
	}

	newAvailable, err := store.AdjustAvailable(ctx, tx, bookID, available, +1, total)
	if err != nil {
		return err
	}

	if err := recordTransition(ctx, tx, bookID, title, available, newAvailable); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing return: %w", err)
	}

	slog.Info("book returned", "user", userID, "book", bookID, "transaction", transactionID, "available", newAvailable)
	return nil
}

// SetTotalCopies changes a book's total copy count, shifting the available
// count by the same delta clamped to [0, newTotal]. The resulting
// availability transition feeds the notifier like any other.
func (s *Service) SetTotalCopies(ctx context.Context, bookID int64, newTotal int) error {
	if newTotal < 0 {
		return fmt.Errorf("total copies must not be negative: %w", store.ErrInvariantViolation)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning copies transaction: %w", err)
	}
	defer tx.Rollback()

	title, total, available, err := store.GetAvailability(ctx, tx, bookID)
	if err != nil {
		return err
	}

	newAvailable := available + (newTotal - total)
	if newAvailable < 0 {
		newAvailable = 0
	}
	if newAvailable > newTotal {
		newAvailable = newTotal
	}

	if err := store.SetCopies(ctx, tx, bookID, available, newTotal, newAvailable); err != nil {
		return err
	}

	if err := recordTransition(ctx, tx, bookID, title, available, newAvailable); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing copy counts: %w", err)
	}

	slog.Info("copy counts changed", "book", bookID, "total", newTotal, "available", newAvailable)
	return nil
}
