// Package auth_repo provides PostgreSQL implementations for auth repositories.
package auth_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/id"
	"datacatalog/internal/domain/auth"
	"datacatalog/internal/infrastructure/storage/postgres"
)

var _ auth.UserRepository = (*UserRepo)(nil)

var userColumns = postgres.ExtractDBColumns[auth.User]()

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txManager *postgres.TxManager
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{txManager: txManager}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create creates a new user. A taken email yields a Duplicate error.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	sql, args, err := builder().
		Insert("users").
		Columns(userColumns...).
		Values(user.ID, user.Name, user.Email, user.PasswordHash, string(user.Role), user.CreatedAt, user.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		mapped := postgres.MapError(fmt.Errorf("insert user: %w", err))
		if apperror.IsDuplicate(mapped) {
			return apperror.NewDuplicate("User", "email", user.Email).WithCause(err)
		}
		return mapped
	}
	return nil
}

// GetByID retrieves user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": userID}, userID.String())
}

// GetByEmail retrieves user by email, case-insensitive.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, squirrel.Expr("lower(email) = ?", email), email)
}

func (r *UserRepo) getOne(ctx context.Context, pred squirrel.Sqlizer, key string) (*auth.User, error) {
	sql, args, err := builder().
		Select(userColumns...).
		From("users").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var user auth.User
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &user, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("User", key)
		}
		return nil, postgres.MapError(fmt.Errorf("get user: %w", err))
	}
	return &user, nil
}

// Update updates name, password hash and role.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	user.UpdatedAt = time.Now().UTC()

	sql, args, err := builder().
		Update("users").
		Set("name", user.Name).
		Set("password_hash", user.PasswordHash).
		Set("role", string(user.Role)).
		Set("updated_at", user.UpdatedAt).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update user: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("User", user.ID.String())
	}
	return nil
}

// Delete removes a user. Users who created products cannot be removed.
func (r *UserRepo) Delete(ctx context.Context, userID id.ID) error {
	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		mapped := postgres.MapError(fmt.Errorf("delete user: %w", err))
		if appErr, ok := apperror.AsAppError(mapped); ok && appErr.Code == apperror.CodeConflict {
			return apperror.NewConflict("user still owns products").
				WithDetail("id", userID.String()).
				WithCause(err)
		}
		return mapped
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("User", userID.String())
	}
	return nil
}

// List returns all users, newest first, with their product counts.
func (r *UserRepo) List(ctx context.Context) ([]auth.UserSummary, error) {
	cols := make([]string, 0, len(userColumns)+1)
	for _, c := range userColumns {
		cols = append(cols, "u."+c)
	}
	cols = append(cols, "COUNT(p.id) AS product_count")

	sql, args, err := builder().
		Select(cols...).
		From("users u").
		LeftJoin("products p ON p.created_by_id = u.id").
		GroupBy("u.id").
		OrderBy("u.created_at DESC", "u.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	users := []auth.UserSummary{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &users, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("list users: %w", err))
	}
	return users, nil
}

// Count returns the number of users.
func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, postgres.MapError(fmt.Errorf("count users: %w", err))
	}
	return n, nil
}
