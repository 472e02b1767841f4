package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/id"
	"datacatalog/internal/domain/auth"
)

// UserRepo implements auth.UserRepository.
type UserRepo struct{ s *Store }

// Create implements auth.UserRepository.
func (r *UserRepo) Create(_ context.Context, u *auth.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.data.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return apperror.NewDuplicate("User", "email", u.Email)
		}
	}
	c := *u
	r.s.data.users[u.ID] = &c
	return nil
}

// GetByID implements auth.UserRepository.
func (r *UserRepo) GetByID(_ context.Context, userID id.ID) (*auth.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.data.users[userID]
	if !ok {
		return nil, apperror.NewNotFound("User", userID.String())
	}
	c := *u
	return &c, nil
}

// GetByEmail implements auth.UserRepository.
func (r *UserRepo) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			c := *u
			return &c, nil
		}
	}
	return nil, apperror.NewNotFound("User", email)
}

// Update implements auth.UserRepository.
func (r *UserRepo) Update(_ context.Context, u *auth.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.data.users[u.ID]
	if !ok {
		return apperror.NewNotFound("User", u.ID.String())
	}
	existing.Name = u.Name
	existing.PasswordHash = u.PasswordHash
	existing.Role = u.Role
	existing.UpdatedAt = time.Now().UTC()
	u.UpdatedAt = existing.UpdatedAt
	return nil
}

// Delete implements auth.UserRepository. Products created by the user
// block deletion, as the foreign key does in PostgreSQL.
func (r *UserRepo) Delete(_ context.Context, userID id.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.users[userID]; !ok {
		return apperror.NewNotFound("User", userID.String())
	}
	for _, p := range r.s.data.products {
		if p.CreatedByID == userID {
			return apperror.NewConflict("user still owns products").WithDetail("id", userID.String())
		}
	}
	delete(r.s.data.users, userID)
	for hash, t := range r.s.data.tokens {
		if t.UserID == userID {
			delete(r.s.data.tokens, hash)
		}
	}
	return nil
}

// List implements auth.UserRepository.
func (r *UserRepo) List(_ context.Context) ([]auth.UserSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[id.ID]int64)
	for _, p := range r.s.data.products {
		counts[p.CreatedByID]++
	}

	out := make([]auth.UserSummary, 0, len(r.s.data.users))
	for _, u := range r.s.data.users {
		out = append(out, auth.UserSummary{User: *u, ProductCount: counts[u.ID]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Count implements auth.UserRepository.
func (r *UserRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.data.users)), nil
}

// TokenRepo implements auth.TokenRepository.
type TokenRepo struct{ s *Store }

// SaveRefreshToken implements auth.TokenRepository.
func (r *TokenRepo) SaveRefreshToken(_ context.Context, t *auth.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *t
	r.s.data.tokens[t.TokenHash] = &c
	return nil
}

// GetRefreshToken implements auth.TokenRepository.
func (r *TokenRepo) GetRefreshToken(_ context.Context, tokenHash string) (*auth.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.data.tokens[tokenHash]
	if !ok {
		return nil, apperror.NewNotFound("RefreshToken", "")
	}
	c := *t
	return &c, nil
}

// RevokeRefreshToken implements auth.TokenRepository.
func (r *TokenRepo) RevokeRefreshToken(_ context.Context, tokenID id.ID, reason string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.data.tokens {
		if t.ID == tokenID && t.RevokedAt == nil {
			revoke(t, reason)
		}
	}
	return nil
}

// RevokeAllUserTokens implements auth.TokenRepository.
func (r *TokenRepo) RevokeAllUserTokens(_ context.Context, userID id.ID, reason string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.data.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			revoke(t, reason)
		}
	}
	return nil
}

// CleanupExpiredTokens implements auth.TokenRepository.
func (r *TokenRepo) CleanupExpiredTokens(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	now := time.Now()
	for hash, t := range r.s.data.tokens {
		if now.After(t.ExpiresAt) {
			delete(r.s.data.tokens, hash)
			n++
		}
	}
	return n, nil
}

func revoke(t *auth.RefreshToken, reason string) {
	now := time.Now().UTC()
	t.RevokedAt = &now
	t.RevokedReason = &reason
}
