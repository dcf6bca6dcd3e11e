package model

import "time"

// Book represents a catalog entry with a copy count. AvailableCopies tracks
// the copies not currently on loan and always stays within [0, TotalCopies].
type Book struct {
	ID              int64  `json:"id"`
	ISBN            string `json:"isbn,omitempty"`
	Title           string `json:"title"`
	Publisher       string `json:"publisher,omitempty"`
	PublicationYear int    `json:"publication_year,omitempty"`
	Genre           string `json:"genre,omitempty"`
	Description     string `json:"description,omitempty"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
	Location        string `json:"location,omitempty"`
	CoverMime       string `json:"cover_mime,omitempty"`

	// Aggregated display fields (populated by list/get queries).
	Authors            string   `json:"authors,omitempty"`
	Categories         string   `json:"categories,omitempty"`
	AuthorList         []Author `json:"author_list,omitempty"`
	AvailabilityStatus string   `json:"availability_status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Availability display statuses.
const (
	StatusAvailable    = "Available"
	StatusNotAvailable = "Not Available"
)
