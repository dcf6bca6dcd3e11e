package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkovacic/biblio/internal/model"
)

// CreateCategory inserts a category if it does not already exist.
func CreateCategory(ctx context.Context, q Querier, name, description string) error {
	_, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO categories (name, description) VALUES (?, ?)`,
		name, description,
	)
	if err != nil {
		return fmt.Errorf("creating category: %w", err)
	}
	return nil
}

// ListCategories returns all categories ordered by name.
func ListCategories(ctx context.Context, q Querier) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, name, description FROM categories ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		var description sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &description); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		c.Description = description.String
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// SetBookCategories replaces a book's category links.
func SetBookCategories(ctx context.Context, q Querier, bookID int64, categoryIDs []int64) error {
	if _, err := q.ExecContext(ctx,
		`DELETE FROM book_categories WHERE book_id = ?`, bookID,
	); err != nil {
		return fmt.Errorf("clearing book categories: %w", err)
	}

	for _, cid := range categoryIDs {
		if _, err := q.ExecContext(ctx,
			`INSERT OR IGNORE INTO book_categories (book_id, category_id) VALUES (?, ?)`,
			bookID, cid,
		); err != nil {
			return fmt.Errorf("linking category %d: %w", cid, err)
		}
	}
	return nil
}
