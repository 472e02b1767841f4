package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/id"
	"datacatalog/internal/core/security"
	"datacatalog/internal/core/tx"
	"datacatalog/internal/domain/audit"
	"datacatalog/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	RefreshTokenExpiry time.Duration
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	}
}

// Service provides authentication logic. Every successful login appends a
// LOGIN audit entry in the same transaction that stores the refresh token.
type Service struct {
	userRepo   UserRepository
	tokenRepo  TokenRepository
	recorder   *audit.Recorder
	txManager  tx.Manager
	jwtService *JWTService
	config     ServiceConfig
}

// NewService creates a new auth service.
func NewService(
	userRepo UserRepository,
	tokenRepo TokenRepository,
	recorder *audit.Recorder,
	txManager tx.Manager,
	jwtService *JWTService,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		recorder:   recorder,
		txManager:  txManager,
		jwtService: jwtService,
		config:     config,
	}
}

// Login authenticates user by email and password and returns tokens.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenPair, *User, error) {
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return nil, nil, apperror.NewFieldValidation(map[string]string{
			"email":    "is required",
			"password": "is required",
		})
	}

	user, err := s.userRepo.GetByEmail(ctx, creds.Email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}
	// Federated accounts have no password.
	if user.PasswordHash == nil {
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	tokens, err := s.completeLogin(ctx, user, "credentials")
	if err != nil {
		return nil, nil, err
	}
	return tokens, user, nil
}

// LoginFederated signs in a user verified by an external provider. Unknown
// emails are provisioned with the USER role.
func (s *Service) LoginFederated(ctx context.Context, ident FederatedIdentity) (*TokenPair, *User, error) {
	email := strings.ToLower(strings.TrimSpace(ident.Email))
	if email == "" {
		return nil, nil, apperror.NewUnauthorized("identity provider returned no email")
	}

	var user *User
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.userRepo.GetByEmail(ctx, email)
		switch {
		case err == nil:
			user = existing
			return nil
		case !apperror.IsNotFound(err):
			return fmt.Errorf("find user: %w", err)
		}

		user = NewUser(email, strings.TrimSpace(ident.Name), "", security.RoleUser)
		if err := s.userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("provision user: %w", err)
		}
		logger.Info(ctx, "user provisioned", "user_id", user.ID, "provider", ident.Provider)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	tokens, err := s.completeLogin(ctx, user, ident.Provider)
	if err != nil {
		return nil, nil, err
	}
	return tokens, user, nil
}

// completeLogin issues tokens and records the LOGIN entry atomically.
func (s *Service) completeLogin(ctx context.Context, user *User, method string) (*TokenPair, error) {
	var tokens *TokenPair
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		tokens, err = s.generateTokenPair(ctx, user)
		if err != nil {
			return err
		}
		_, err = s.recorder.Record(ctx, audit.Record{
			Entity:   audit.EntityUser,
			EntityID: user.ID.String(),
			Action:   audit.ActionLogin,
			UserID:   user.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user logged in",
		"user_id", user.ID,
		"method", method)

	return tokens, nil
}

// RefreshToken rotates a refresh token and issues a new pair.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	tokenHash := hashToken(refreshToken)

	token, err := s.tokenRepo.GetRefreshToken(ctx, tokenHash)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid refresh token")
	}
	if !token.IsValid() {
		return nil, apperror.NewUnauthorized("refresh token expired or revoked")
	}

	user, err := s.userRepo.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, apperror.NewUnauthorized("user not found")
	}

	var pair *TokenPair
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.tokenRepo.RevokeRefreshToken(ctx, token.ID, "refreshed"); err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}
		pair, err = s.generateTokenPair(ctx, user)
		return err
	})
	return pair, err
}

// Logout revokes all user's refresh tokens.
func (s *Service) Logout(ctx context.Context, userID id.ID) error {
	return s.tokenRepo.RevokeAllUserTokens(ctx, userID, "logout")
}

// GetUser returns the current state of a user.
func (s *Service) GetUser(ctx context.Context, userID id.ID) (*User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("User", userID.String())
		}
		return nil, err
	}
	return user, nil
}

// generateTokenPair creates access and refresh tokens.
func (s *Service) generateTokenPair(ctx context.Context, user *User) (*TokenPair, error) {
	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshTokenRaw, err := generateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	now := time.Now().UTC()
	refreshToken := &RefreshToken{
		ID:        id.New(),
		UserID:    user.ID,
		TokenHash: hashToken(refreshTokenRaw),
		ExpiresAt: now.Add(s.config.RefreshTokenExpiry),
		CreatedAt: now,
	}

	if err := s.tokenRepo.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenRaw,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

// HashPassword hashes a password with bcrypt at the given cost.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// hashToken creates SHA256 hash of token.
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// generateRandomToken generates a random token string.
func generateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
