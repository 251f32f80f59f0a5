package database

import (
	"context"
	"database/sql"
)

// Repository provides a unified interface to all data operations.
// It composes domain-specific repositories using struct embedding.
type Repository struct {
	*UserRepo
	*ProjectRepo
	*TaskRepo

	db *sql.DB
}

// NewRepository creates a new Repository instance wrapping the given database connection.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		UserRepo:    &UserRepo{db: db},
		ProjectRepo: &ProjectRepo{db: db},
		TaskRepo:    &TaskRepo{db: db},
		db:          db,
	}
}

// WithTx binds a TaskRepo to a single transaction for the duration of fn.
// The transaction commits when fn returns nil and rolls back otherwise.
func (r *Repository) WithTx(ctx context.Context, fn func(TaskStore) error) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&TaskRepo{db: tx})
	})
}

// DB exposes the underlying handle for lifecycle management
func (r *Repository) DB() *sql.DB {
	return r.db
}

var _ DataStore = (*Repository)(nil)
