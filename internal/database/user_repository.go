package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/thenoetrevino/tandem/internal/models"
)

// UserRepo handles all user-related database operations.
type UserRepo struct {
	db querier
}

const userColumns = `id, email, name, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser inserts a user; a duplicate email yields ErrConflict
func (r *UserRepo) CreateUser(ctx context.Context, email, name, passwordHash string) (*models.User, error) {
	email = strings.TrimSpace(email)
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, name, password_hash) VALUES (?, ?, ?)`,
		email, name, passwordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %q: %w", email, models.ErrConflict)
		}
		return nil, storageErr("insert user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, storageErr("insert user", err)
	}
	return r.GetUserByID(ctx, int(id))
}

// GetUserByID retrieves a user by its ID
func (r *UserRepo) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, storageErr(fmt.Sprintf("get user %d", id), err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email, case-insensitively
func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, strings.TrimSpace(email)))
	if err != nil {
		return nil, storageErr(fmt.Sprintf("get user %q", email), err)
	}
	return u, nil
}

// ListUsers returns every user ordered by ID
func (r *UserRepo) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, storageErr("list users", err)
	}
	defer closeRows(rows)

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, storageErr("scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list users", err)
	}
	return users, nil
}
