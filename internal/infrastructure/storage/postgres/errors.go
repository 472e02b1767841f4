package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"datacatalog/internal/core/apperror"
)

// MapError converts pgx/pgconn errors to application errors.
// Application errors and context errors pass through unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return apperror.NewDuplicate(pgErr.TableName, pgErr.ConstraintName, "").WithCause(err)
		case "23503": // foreign_key_violation
			return apperror.NewConflict("referenced row is missing or still in use").
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		case "23514", "22001": // check_violation, string_data_right_truncation
			return apperror.NewValidation(pgErr.Message).WithCause(err)
		}
	}

	return apperror.NewDatabase(err)
}

// IsNoRows reports whether err is pgx.ErrNoRows.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
