package dto

import (
	"time"

	"datacatalog/internal/core/security"
	"datacatalog/internal/domain/auth"
)

// --- Request DTOs ---

// LoginRequest for credential login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{
		Email:    r.Email,
		Password: r.Password,
	}
}

// RefreshTokenRequest for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// --- Response DTOs ---

// TokenResponse represents token pair response.
type TokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	TokenType    string    `json:"tokenType"`
}

// FromTokenPair creates response from domain token pair.
func FromTokenPair(tp *auth.TokenPair) *TokenResponse {
	return &TokenResponse{
		AccessToken:  tp.AccessToken,
		RefreshToken: tp.RefreshToken,
		ExpiresAt:    tp.ExpiresAt,
		TokenType:    tp.TokenType,
	}
}

// UserResponse is the public view of a user. The password hash never leaves
// the domain layer.
type UserResponse struct {
	ID           string    `json:"id"`
	Name         *string   `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	ProductCount *int64    `json:"productCount,omitempty"`
}

// FromUser creates response from domain user.
func FromUser(u *auth.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// FromUserSummary adds the product count of a listed user.
func FromUserSummary(u *auth.UserSummary) UserResponse {
	resp := FromUser(&u.User)
	count := u.ProductCount
	resp.ProductCount = &count
	return *resp
}

// LoginResponse includes tokens and user info.
type LoginResponse struct {
	Tokens *TokenResponse `json:"tokens"`
	User   *UserResponse  `json:"user"`
}

// MeResponse describes the caller and what the policy lets them do.
type MeResponse struct {
	UserResponse
	Capabilities security.Capabilities `json:"capabilities"`
}
