package auth

import (
	"context"

	"datacatalog/internal/core/id"
)

// UserRepository defines user storage operations.
type UserRepository interface {
	// Create creates a new user. A taken email yields a Duplicate error.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves user by ID.
	GetByID(ctx context.Context, userID id.ID) (*User, error)

	// GetByEmail retrieves user by email, case-insensitive.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update updates name, password hash and role.
	Update(ctx context.Context, user *User) error

	// Delete removes a user.
	Delete(ctx context.Context, userID id.ID) error

	// List returns all users, newest first, with their product counts.
	List(ctx context.Context) ([]UserSummary, error)

	// Count returns the number of users.
	Count(ctx context.Context) (int64, error)
}

// TokenRepository defines token storage operations.
type TokenRepository interface {
	// SaveRefreshToken saves a refresh token.
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error

	// GetRefreshToken retrieves refresh token by hash.
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)

	// RevokeRefreshToken revokes a refresh token.
	RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error

	// RevokeAllUserTokens revokes all tokens for a user.
	RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error

	// CleanupExpiredTokens removes expired tokens.
	CleanupExpiredTokens(ctx context.Context) (int, error)
}
