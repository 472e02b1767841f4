package auth_repo

import (
	"context"
	"fmt"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/id"
	"datacatalog/internal/domain/auth"
	"datacatalog/internal/infrastructure/storage/postgres"
)

var _ auth.TokenRepository = (*TokenRepo)(nil)

// TokenRepo implements auth.TokenRepository.
type TokenRepo struct {
	txManager *postgres.TxManager
}

// NewTokenRepo creates a new token repository.
func NewTokenRepo(txManager *postgres.TxManager) *TokenRepo {
	return &TokenRepo{txManager: txManager}
}

// SaveRefreshToken saves a refresh token.
func (r *TokenRepo) SaveRefreshToken(ctx context.Context, token *auth.RefreshToken) error {
	q := r.txManager.GetQuerier(ctx)

	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := q.Exec(ctx, query,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return postgres.MapError(fmt.Errorf("save refresh token: %w", err))
	}
	return nil
}

// GetRefreshToken retrieves refresh token by hash.
func (r *TokenRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	q := r.txManager.GetQuerier(ctx)

	query := `
		SELECT id, user_id, token_hash, expires_at, created_at, revoked_at, revoked_reason
		FROM refresh_tokens WHERE token_hash = $1
	`

	var token auth.RefreshToken
	err := q.QueryRow(ctx, query, tokenHash).Scan(
		&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt,
		&token.CreatedAt, &token.RevokedAt, &token.RevokedReason,
	)
	if postgres.IsNoRows(err) {
		return nil, apperror.NewNotFound("RefreshToken", "")
	}
	if err != nil {
		return nil, postgres.MapError(fmt.Errorf("query token: %w", err))
	}
	return &token, nil
}

// RevokeRefreshToken revokes a refresh token.
func (r *TokenRepo) RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error {
	query := `UPDATE refresh_tokens SET revoked_at = now(), revoked_reason = $2 WHERE id = $1 AND revoked_at IS NULL`
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, query, tokenID, reason); err != nil {
		return postgres.MapError(fmt.Errorf("revoke token: %w", err))
	}
	return nil
}

// RevokeAllUserTokens revokes all tokens for a user.
func (r *TokenRepo) RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error {
	query := `UPDATE refresh_tokens SET revoked_at = now(), revoked_reason = $2 WHERE user_id = $1 AND revoked_at IS NULL`
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, query, userID, reason); err != nil {
		return postgres.MapError(fmt.Errorf("revoke all tokens: %w", err))
	}
	return nil
}

// CleanupExpiredTokens removes expired tokens and ones revoked over a week ago.
func (r *TokenRepo) CleanupExpiredTokens(ctx context.Context) (int, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < now() OR revoked_at < now() - INTERVAL '7 days'`
	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, query)
	if err != nil {
		return 0, postgres.MapError(fmt.Errorf("cleanup tokens: %w", err))
	}
	return int(result.RowsAffected()), nil
}
