package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/thenoetrevino/tandem/internal/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx, so a repo can run
// unchanged inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx executes a function within a database transaction.
// It automatically handles begin, rollback on error, and commit on success.
// A cancelled ctx makes database/sql roll the transaction back.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin transaction", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}

	return nil
}

// storageErr classifies a driver error into the shared taxonomy.
// sql.ErrNoRows becomes ErrNotFound; context errors pass through untouched.
func storageErr(op string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	}
	return &models.StorageError{Op: op, Err: err}
}

// isUniqueViolation checks for a SQLite UNIQUE or PRIMARY KEY constraint failure
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}

// checkAffected turns a zero-row write into ErrNotFound
func checkAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// nullInt64ToPtr converts sql.NullInt64 to *int.
// Returns nil if the value is not valid.
func nullInt64ToPtr(nv sql.NullInt64) *int {
	if nv.Valid {
		val := int(nv.Int64)
		return &val
	}
	return nil
}

// intPtrToNull converts *int to sql.NullInt64 for nullable foreign keys
func intPtrToNull(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// NullStringToString converts sql.NullString to string.
// Returns empty string if the value is not valid.
func NullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		slog.Error("failed to close rows", "error", err)
	}
}
