package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkovacic/biblio/internal/model"
)

// CreateAuthor creates a new author.
func CreateAuthor(ctx context.Context, q Querier, firstName, lastName, biography string) (*model.Author, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO authors (first_name, last_name, biography) VALUES (?, ?, ?)`,
		firstName, lastName, biography,
	)
	if err != nil {
		return nil, fmt.Errorf("creating author: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting author id: %w", err)
	}

	return GetAuthor(ctx, q, id)
}

// GetAuthor returns an author by ID.
func GetAuthor(ctx context.Context, q Querier, id int64) (*model.Author, error) {
	a := &model.Author{}
	var biography sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, biography, created_at FROM authors WHERE id = ?`, id,
	).Scan(&a.ID, &a.FirstName, &a.LastName, &biography, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting author: %w", err)
	}
	a.Biography = biography.String
	return a, nil
}

// ListAuthors returns all authors ordered by name.
func ListAuthors(ctx context.Context, q Querier) ([]model.Author, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, first_name, last_name, biography, created_at
		 FROM authors ORDER BY last_name, first_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing authors: %w", err)
	}
	defer rows.Close()

	var authors []model.Author
	for rows.Next() {
		var a model.Author
		var biography sql.NullString
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName, &biography, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning author: %w", err)
		}
		a.Biography = biography.String
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// FindOrCreateAuthor returns the ID of an existing author with the same name,
// creating one if needed. Used when linking authors to a book.
func FindOrCreateAuthor(ctx context.Context, q Querier, firstName, lastName string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		`SELECT id FROM authors WHERE first_name = ? AND last_name = ?`,
		firstName, lastName,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("finding author: %w", err)
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO authors (first_name, last_name) VALUES (?, ?)`,
		firstName, lastName,
	)
	if err != nil {
		return 0, fmt.Errorf("creating author: %w", err)
	}
	return result.LastInsertId()
}

// GetBookAuthors returns a book's authors in their defined order.
func GetBookAuthors(ctx context.Context, q Querier, bookID int64) ([]model.Author, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT a.id, a.first_name, a.last_name, ba.author_order
		 FROM book_authors ba
		 JOIN authors a ON a.id = ba.author_id
		 WHERE ba.book_id = ?
		 ORDER BY ba.author_order`, bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting book authors: %w", err)
	}
	defer rows.Close()

	var authors []model.Author
	for rows.Next() {
		var a model.Author
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Order); err != nil {
			return nil, fmt.Errorf("scanning book author: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}
