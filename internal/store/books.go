package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkovacic/biblio/internal/model"
)

// AuthorRef names an author to link to a book, with its display order.
type AuthorRef struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Order     int    `json:"author_order"`
}

// NewBook carries the fields for creating or updating a catalog entry.
type NewBook struct {
	ISBN            string
	Title           string
	Publisher       string
	PublicationYear int
	Genre           string
	Description     string
	Location        string
	TotalCopies     int
	Authors         []AuthorRef
	CategoryIDs     []int64
}

// BookFilter narrows a catalog listing.
type BookFilter struct {
	Search        string // matches title, ISBN, or author name
	Author        string
	Genre         string
	AvailableOnly bool
}

const bookColumns = `b.id, b.isbn, b.title, b.publisher, b.publication_year, b.genre,
	       b.description, b.total_copies, b.available_copies, b.location, b.cover_mime,
	       b.created_at, b.updated_at,
	       COALESCE(GROUP_CONCAT(DISTINCT a.first_name || ' ' || a.last_name), '') AS authors,
	       COALESCE(GROUP_CONCAT(DISTINCT c.name), '') AS categories`

const bookJoins = `FROM books b
	 LEFT JOIN book_authors ba ON ba.book_id = b.id
	 LEFT JOIN authors a ON a.id = ba.author_id
	 LEFT JOIN book_categories bc ON bc.book_id = b.id
	 LEFT JOIN categories c ON c.id = bc.category_id`

// CreateBook creates a book together with its author and category links in a
// single transaction. Available copies start equal to total copies.
func CreateBook(ctx context.Context, db *sql.DB, nb NewBook) (*model.Book, error) {
	if nb.Title == "" {
		return nil, fmt.Errorf("title required")
	}
	if nb.TotalCopies < 0 {
		return nil, fmt.Errorf("total copies must not be negative")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO books (isbn, title, publisher, publication_year, genre, description,
		                    total_copies, available_copies, location)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullable(nb.ISBN), nb.Title, nullable(nb.Publisher), nullableInt(nb.PublicationYear),
		nullable(nb.Genre), nullable(nb.Description), nb.TotalCopies, nb.TotalCopies, nullable(nb.Location),
	)
	if err != nil {
		return nil, fmt.Errorf("creating book: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting book id: %w", err)
	}

	if err := linkAuthors(ctx, tx, id, nb.Authors); err != nil {
		return nil, err
	}
	if err := SetBookCategories(ctx, tx, id, nb.CategoryIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing book: %w", err)
	}

	return GetBook(ctx, db, id)
}

// GetBook returns a book with aggregated author/category names and the
// ordered author detail. Returns (nil, nil) if no such book.
func GetBook(ctx context.Context, q Querier, id int64) (*model.Book, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+bookColumns+` `+bookJoins+` WHERE b.id = ? GROUP BY b.id`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("getting book: %w", err)
	}
	defer rows.Close()

	books, err := scanBooks(rows)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, nil
	}

	book := &books[0]
	authors, err := GetBookAuthors(ctx, q, id)
	if err != nil {
		return nil, err
	}
	book.AuthorList = authors
	return book, nil
}

// ListBooks returns catalog entries matching the filter, ordered by title.
func ListBooks(ctx context.Context, q Querier, filter BookFilter) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + ` ` + bookJoins + ` WHERE 1=1`
	var args []any

	if filter.Search != "" {
		query += ` AND (b.title LIKE ? OR b.isbn LIKE ? OR a.first_name || ' ' || a.last_name LIKE ?)`
		term := "%" + filter.Search + "%"
		args = append(args, term, term, term)
	}
	if filter.Author != "" {
		query += ` AND a.first_name || ' ' || a.last_name LIKE ?`
		args = append(args, "%"+filter.Author+"%")
	}
	if filter.Genre != "" {
		query += ` AND b.genre LIKE ?`
		args = append(args, "%"+filter.Genre+"%")
	}
	if filter.AvailableOnly {
		query += ` AND b.available_copies > 0`
	}

	query += ` GROUP BY b.id ORDER BY b.title`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows)
}

// UpdateBook updates a book's metadata and relinks authors and categories.
// Copy counts are deliberately untouched; use SetCopies for those.
func UpdateBook(ctx context.Context, db *sql.DB, id int64, nb NewBook) error {
	if nb.Title == "" {
		return fmt.Errorf("title required")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE books SET isbn = ?, title = ?, publisher = ?, publication_year = ?,
		        genre = ?, description = ?, location = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		nullable(nb.ISBN), nb.Title, nullable(nb.Publisher), nullableInt(nb.PublicationYear),
		nullable(nb.Genre), nullable(nb.Description), nullable(nb.Location), id,
	)
	if err != nil {
		return fmt.Errorf("updating book: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("updating book %d: %w", id, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM book_authors WHERE book_id = ?`, id); err != nil {
		return fmt.Errorf("clearing book authors: %w", err)
	}
	if err := linkAuthors(ctx, tx, id, nb.Authors); err != nil {
		return err
	}
	if err := SetBookCategories(ctx, tx, id, nb.CategoryIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing book update: %w", err)
	}
	return nil
}

// DeleteBook removes a book. Transactions, notifications, and author/category
// links cascade away with it.
func DeleteBook(ctx context.Context, q Querier, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("deleting book %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetAvailability returns a book's title and copy counts.
func GetAvailability(ctx context.Context, q Querier, bookID int64) (title string, total, available int, err error) {
	err = q.QueryRowContext(ctx,
		`SELECT title, total_copies, available_copies FROM books WHERE id = ?`, bookID,
	).Scan(&title, &total, &available)
	if err == sql.ErrNoRows {
		return "", 0, 0, fmt.Errorf("book %d: %w", bookID, ErrNotFound)
	}
	if err != nil {
		return "", 0, 0, fmt.Errorf("getting availability: %w", err)
	}
	return title, total, available, nil
}

// AdjustAvailable applies delta to a book's available-copy count. The update
// is guarded on the caller-observed value, so a concurrent adjustment on the
// same book surfaces as ErrConflict instead of silently double-counting.
// Returns the post-adjustment value.
func AdjustAvailable(ctx context.Context, q Querier, bookID int64, observed, delta, total int) (int, error) {
	next := observed + delta
	if next < 0 || next > total {
		return 0, fmt.Errorf("available copies %d%+d outside [0, %d] for book %d: %w",
			observed, delta, total, bookID, ErrInvariantViolation)
	}

	result, err := q.ExecContext(ctx,
		`UPDATE books SET available_copies = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND available_copies = ?`,
		next, bookID, observed,
	)
	if err != nil {
		return 0, fmt.Errorf("adjusting available copies: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("adjusting available copies for book %d: %w", bookID, ErrConflict)
	}
	return next, nil
}

// SetCopies updates both copy counts, guarded on the observed available
// value like AdjustAvailable.
func SetCopies(ctx context.Context, q Querier, bookID int64, observedAvailable, newTotal, newAvailable int) error {
	if newAvailable < 0 || newAvailable > newTotal {
		return fmt.Errorf("available copies %d outside [0, %d] for book %d: %w",
			newAvailable, newTotal, bookID, ErrInvariantViolation)
	}

	result, err := q.ExecContext(ctx,
		`UPDATE books SET total_copies = ?, available_copies = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND available_copies = ?`,
		newTotal, newAvailable, bookID, observedAvailable,
	)
	if err != nil {
		return fmt.Errorf("setting copy counts: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("setting copy counts for book %d: %w", bookID, ErrConflict)
	}
	return nil
}

// SetBookCover sets a book's cover image data.
func SetBookCover(ctx context.Context, q Querier, id int64, cover []byte, mime string) error {
	result, err := q.ExecContext(ctx,
		`UPDATE books SET cover = ?, cover_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		cover, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting book cover: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("setting cover for book %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetBookCover returns a book's cover image data and MIME type.
func GetBookCover(ctx context.Context, q Querier, id int64) ([]byte, string, error) {
	var cover []byte
	var mime sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT cover, cover_mime FROM books WHERE id = ?`, id,
	).Scan(&cover, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting book cover: %w", err)
	}
	return cover, mime.String, nil
}

func linkAuthors(ctx context.Context, q Querier, bookID int64, authors []AuthorRef) error {
	for i, ref := range authors {
		authorID, err := FindOrCreateAuthor(ctx, q, ref.FirstName, ref.LastName)
		if err != nil {
			return err
		}
		order := ref.Order
		if order == 0 {
			order = i + 1
		}
		if _, err := q.ExecContext(ctx,
			`INSERT OR IGNORE INTO book_authors (book_id, author_id, author_order) VALUES (?, ?, ?)`,
			bookID, authorID, order,
		); err != nil {
			return fmt.Errorf("linking author: %w", err)
		}
	}
	return nil
}

func scanBooks(rows *sql.Rows) ([]model.Book, error) {
	var books []model.Book
	for rows.Next() {
		var b model.Book
		var isbn, publisher, genre, description, location, coverMime sql.NullString
		var year sql.NullInt64
		if err := rows.Scan(&b.ID, &isbn, &b.Title, &publisher, &year, &genre,
			&description, &b.TotalCopies, &b.AvailableCopies, &location, &coverMime,
			&b.CreatedAt, &b.UpdatedAt, &b.Authors, &b.Categories); err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		b.ISBN = isbn.String
		b.Publisher = publisher.String
		b.PublicationYear = int(year.Int64)
		b.Genre = genre.String
		b.Description = description.String
		b.Location = location.String
		b.CoverMime = coverMime.String
		if b.AvailableCopies > 0 {
			b.AvailabilityStatus = model.StatusAvailable
		} else {
			b.AvailabilityStatus = model.StatusNotAvailable
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(i int) any {
	if i == 0 {
		return nil
	}
	return i
}
