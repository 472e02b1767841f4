package auth

import (
	"context"
	"fmt"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/id"
	"datacatalog/internal/core/security"
)

// RoleCache holds recently resolved roles. Implementations must be safe for
// concurrent use.
type RoleCache interface {
	Get(userID id.ID) (security.Role, bool)
	Add(userID id.ID, role security.Role)
	Remove(userID id.ID)
}

// RoleResolver returns the current role of a user so that role changes and
// deletions apply to already-issued tokens.
type RoleResolver struct {
	users UserRepository
	cache RoleCache
}

// NewRoleResolver creates a resolver. cache may be nil.
func NewRoleResolver(users UserRepository, cache RoleCache) *RoleResolver {
	return &RoleResolver{users: users, cache: cache}
}

// CurrentRole returns the user's role. A deleted user yields Unauthorized.
func (r *RoleResolver) CurrentRole(ctx context.Context, userID id.ID) (security.Role, error) {
	if r.cache != nil {
		if role, ok := r.cache.Get(userID); ok {
			return role, nil
		}
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return "", apperror.NewUnauthorized("user no longer exists")
		}
		return "", fmt.Errorf("resolve role: %w", err)
	}

	if r.cache != nil {
		r.cache.Add(userID, user.Role)
	}
	return user.Role, nil
}

// Forget drops a cached role after it changed.
func (r *RoleResolver) Forget(userID id.ID) {
	if r.cache != nil {
		r.cache.Remove(userID)
	}
}
