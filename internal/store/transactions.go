package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkovacic/biblio/internal/model"
)

// HasActiveBorrow reports whether the user currently has the book on loan.
func HasActiveBorrow(ctx context.Context, q Querier, userID, bookID int64) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = ? AND book_id = ? AND status = 'active'`,
		userID, bookID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking active borrow: %w", err)
	}
	return count > 0, nil
}

// OpenBorrow creates an active loan entry. The partial unique index on
// (user_id, book_id) WHERE status = 'active' rejects a second active loan
// for the same pair inside the same atomic unit as the insert.
func OpenBorrow(ctx context.Context, q Querier, userID, bookID int64, due time.Time) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO transactions (user_id, book_id, status, due_date) VALUES (?, ?, 'active', ?)`,
		userID, bookID, due,
	)
	if err != nil {
		return 0, fmt.Errorf("opening borrow: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting transaction id: %w", err)
	}
	return id, nil
}

// CloseBorrow marks an active loan as returned and reports which book it was
// for. Fails ErrNotFound if the transaction does not exist or is no longer
// active, and ErrForbidden if it belongs to another user.
func CloseBorrow(ctx context.Context, q Querier, transactionID, userID int64, returnedAt time.Time) (int64, error) {
	var ownerID, bookID int64
	var status string
	err := q.QueryRowContext(ctx,
		`SELECT user_id, book_id, status FROM transactions WHERE id = ?`, transactionID,
	).Scan(&ownerID, &bookID, &status)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("transaction %d: %w", transactionID, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("getting transaction: %w", err)
	}

	if ownerID != userID {
		return 0, fmt.Errorf("transaction %d: %w", transactionID, ErrForbidden)
	}
	if status != model.TransactionActive {
		return 0, fmt.Errorf("transaction %d already closed: %w", transactionID, ErrNotFound)
	}

	result, err := q.ExecContext(ctx,
		`UPDATE transactions SET status = 'returned', return_date = ?
		 WHERE id = ? AND status = 'active'`,
		returnedAt, transactionID,
	)
	if err != nil {
		return 0, fmt.Errorf("closing borrow: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("transaction %d: %w", transactionID, ErrNotFound)
	}
	return bookID, nil
}

// GetTransaction returns a transaction by ID with its derived status.
func GetTransaction(ctx context.Context, q Querier, id int64) (*model.Transaction, error) {
	rows, err := q.QueryContext(ctx, transactionQuery+` WHERE t.id = ? GROUP BY t.id`, id)
	if err != nil {
		return nil, fmt.Errorf("getting transaction: %w", err)
	}
	defer rows.Close()

	transactions, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, nil
	}
	return &transactions[0], nil
}

// ListTransactionsByUser returns a user's loan history, newest first, with
// the overdue status derived at read time.
func ListTransactionsByUser(ctx context.Context, q Querier, userID int64) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx,
		transactionQuery+` WHERE t.user_id = ? GROUP BY t.id ORDER BY t.created_at DESC, t.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing user transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListAllTransactions returns every loan, newest first. Admin view.
func ListAllTransactions(ctx context.Context, q Querier) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx,
		transactionQuery+` GROUP BY t.id ORDER BY t.created_at DESC, t.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetStatistics returns the admin dashboard counters.
func GetStatistics(ctx context.Context, q Querier) (*model.Statistics, error) {
	s := &model.Statistics{}

	counts := []struct {
		query string
		args  []any
		dst   *int
	}{
		{`SELECT COUNT(*) FROM books`, nil, &s.TotalBooks},
		{`SELECT COUNT(*) FROM users WHERE role = 'user'`, nil, &s.TotalUsers},
		{`SELECT COUNT(*) FROM transactions WHERE status = 'active'`, nil, &s.ActiveBorrows},
		{`SELECT COUNT(*) FROM transactions WHERE status = 'active' AND due_date < ?`,
			[]any{time.Now().UTC()}, &s.OverdueBooks},
	}
	for _, c := range counts {
		if err := q.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("counting statistics: %w", err)
		}
	}
	return s, nil
}

const transactionQuery = `SELECT t.id, t.user_id, t.book_id, t.status, t.due_date, t.return_date,
	        t.fine_amount, t.notes, t.created_at,
	        b.title, COALESCE(b.isbn, ''), u.username,
	        COALESCE(GROUP_CONCAT(DISTINCT a.first_name || ' ' || a.last_name), '') AS authors
	 FROM transactions t
	 JOIN books b ON b.id = t.book_id
	 JOIN users u ON u.id = t.user_id
	 LEFT JOIN book_authors ba ON ba.book_id = b.id
	 LEFT JOIN authors a ON a.id = ba.author_id`

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	now := time.Now().UTC()

	var transactions []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var notes sql.NullString
		var returnDate sql.NullTime
		if err := rows.Scan(&t.ID, &t.UserID, &t.BookID, &t.Status, &t.DueDate, &returnDate,
			&t.FineAmount, &notes, &t.CreatedAt,
			&t.Title, &t.ISBN, &t.Username, &t.Authors); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		t.Notes = notes.String
		if returnDate.Valid {
			rd := returnDate.Time
			t.ReturnDate = &rd
		}

		// Overdue is derived, never stored.
		if t.Status == model.TransactionActive && t.DueDate.Before(now) {
			t.Status = model.TransactionOverdue
			t.DaysOverdue = int(now.Sub(t.DueDate).Hours() / 24)
		}

		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}
