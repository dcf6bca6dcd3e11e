package model

import "time"

// Author represents a book author. Books link to authors through the
// book_authors join table with an explicit ordering.
type Author struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Biography string    `json:"biography,omitempty"`
	Order     int       `json:"author_order,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Category represents a catalog genre/category.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
