// Package auth provides authentication: credential and federated login,
// JWT issuance and refresh-token rotation.
package auth

import (
	"strings"
	"time"

	"datacatalog/internal/core/id"
	"datacatalog/internal/core/security"
)

// User represents a catalog user.
type User struct {
	ID           id.ID         `db:"id" json:"id"`
	Name         *string       `db:"name" json:"name"`
	Email        string        `db:"email" json:"email"`
	PasswordHash *string       `db:"password_hash" json:"-"`
	Role         security.Role `db:"role" json:"role"`
	CreatedAt    time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updatedAt"`
}

// NewUser creates a user with a fresh ID. passwordHash is empty for
// federated accounts.
func NewUser(email, name, passwordHash string, role security.Role) *User {
	now := time.Now().UTC()
	u := &User{
		ID:        id.New(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if name == "" {
		name = LocalPart(u.Email)
	}
	u.Name = &name
	if passwordHash != "" {
		u.PasswordHash = &passwordHash
	}
	return u
}

// DisplayName returns the name, falling back to the email.
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}

// Actor converts the user into a policy actor.
func (u *User) Actor() *security.Actor {
	return security.NewActor(u.ID, u.Role)
}

// UserSummary is a user row as listed to administrators.
type UserSummary struct {
	User
	ProductCount int64 `db:"product_count" json:"productCount"`
}

// LocalPart returns the part of an email address before the '@'.
func LocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

// RefreshToken represents a refresh token for JWT refresh.
type RefreshToken struct {
	ID            id.ID      `db:"id"`
	UserID        id.ID      `db:"user_id"`
	TokenHash     string     `db:"token_hash"`
	ExpiresAt     time.Time  `db:"expires_at"`
	CreatedAt     time.Time  `db:"created_at"`
	RevokedAt     *time.Time `db:"revoked_at"`
	RevokedReason *string    `db:"revoked_reason"`
}

// IsValid checks if refresh token is valid.
func (t *RefreshToken) IsValid() bool {
	if t.RevokedAt != nil {
		return false
	}
	return time.Now().Before(t.ExpiresAt)
}

// TokenPair contains access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	TokenType    string    `json:"tokenType"`
}

// Credentials for login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// FederatedIdentity is a verified identity from an external provider.
type FederatedIdentity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}
