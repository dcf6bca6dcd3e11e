package model

import "time"

// Notification records a stock-level transition on a book. Rows are created
// only as a side effect of an availability change and are immutable except
// for the read flag.
type Notification struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"book_id"`
	Title     string    `json:"title"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification kinds.
const (
	NotificationEmpty     = "empty"
	NotificationLowStock  = "low_stock"
	NotificationRestocked = "restocked"
)
