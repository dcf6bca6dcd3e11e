package model

import "time"

// Transaction represents a single borrow of a book by a user. Only 'active'
// and 'returned' are persisted; 'overdue' is derived at read time from the
// due date and never written to the database.
type Transaction struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	BookID     int64      `json:"book_id"`
	Status     string     `json:"status"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	FineAmount float64    `json:"fine_amount"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`

	// Joined fields (not always populated).
	Title       string `json:"title,omitempty"`
	ISBN        string `json:"isbn,omitempty"`
	Authors     string `json:"authors,omitempty"`
	Username    string `json:"username,omitempty"`
	DaysOverdue int    `json:"days_overdue,omitempty"`
}

// Transaction statuses.
const (
	TransactionActive   = "active"
	TransactionReturned = "returned"
	TransactionOverdue  = "overdue" // derived, never stored
)

// Statistics is the admin dashboard summary.
type Statistics struct {
	TotalBooks    int `json:"total_books"`
	TotalUsers    int `json:"total_users"`
	ActiveBorrows int `json:"active_borrows"`
	OverdueBooks  int `json:"overdue_books"`
}
