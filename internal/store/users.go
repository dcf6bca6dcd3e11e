package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkovacic/biblio/internal/model"
)

// NewUser carries the fields for user registration.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	Address      string
	Role         string
}

// CreateUser creates a new user. Fails if the username or email is taken.
func CreateUser(ctx context.Context, q Querier, nu NewUser) (*model.User, error) {
	if nu.Role == "" {
		nu.Role = model.RoleUser
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, first_name, last_name, phone, address, role)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		nu.Username, nu.Email, nu.PasswordHash, nu.FirstName, nu.LastName, nu.Phone, nu.Address, nu.Role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, q, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, q Querier, id int64) (*model.User, error) {
	u := &model.User{}
	var phone, address sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, first_name, last_name, phone, address, role, created_at
		 FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &phone, &address, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	u.Phone = phone.String
	u.Address = address.String
	return u, nil
}

// GetUserByLogin returns a user matched by username or email.
func GetUserByLogin(ctx context.Context, q Querier, login string) (*model.User, error) {
	u := &model.User{}
	var phone, address sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, first_name, last_name, phone, address, role, created_at
		 FROM users WHERE username = ? OR email = ?`, login, login,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &phone, &address, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by login: %w", err)
	}
	u.Phone = phone.String
	u.Address = address.String
	return u, nil
}

// UserExists reports whether a user with the given username or email exists.
func UserExists(ctx context.Context, q Querier, username, email string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`, username, email,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking user existence: %w", err)
	}
	return count > 0, nil
}

// ListUsers returns all users, newest first.
func ListUsers(ctx context.Context, q Querier) ([]model.User, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, username, email, password_hash, first_name, last_name, phone, address, role, created_at
		 FROM users ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var phone, address sql.NullString
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &phone, &address, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		u.Phone = phone.String
		u.Address = address.String
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, q Querier, id int64, passwordHash string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}
