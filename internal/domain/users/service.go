// Package users implements account administration.
package users

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/id"
	"datacatalog/internal/core/security"
	"datacatalog/internal/domain/auth"
	"datacatalog/pkg/logger"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// CreateInput is the payload for a new account.
type CreateInput struct {
	Email    string
	Password string
	Name     string
	Role     security.Role
}

// UpdateInput changes a user's role, password, or both.
type UpdateInput struct {
	Role     *security.Role
	Password *string
}

// RoleInvalidator drops cached roles.
type RoleInvalidator interface {
	Forget(userID id.ID)
}

// Service manages user accounts. While no user exists, List and Create are
// open so the first administrator can be created.
type Service struct {
	repo       auth.UserRepository
	roles      RoleInvalidator
	bcryptCost int
}

// NewService creates the user service. roles may be nil.
func NewService(repo auth.UserRepository, roles RoleInvalidator, bcryptCost int) *Service {
	return &Service{repo: repo, roles: roles, bcryptCost: bcryptCost}
}

// List returns all users, newest first.
func (s *Service) List(ctx context.Context, actor *security.Actor) ([]auth.UserSummary, error) {
	if err := s.authorize(ctx, actor, true); err != nil {
		return nil, err
	}
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Create adds an account.
func (s *Service) Create(ctx context.Context, actor *security.Actor, in CreateInput) (*auth.User, error) {
	if err := s.authorize(ctx, actor, true); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	fields := map[string]string{}
	if email == "" {
		fields["email"] = "is required"
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		fields["email"] = "must be a valid email address"
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		fields["password"] = fmt.Sprintf("must be at least %d characters", MinPasswordLength)
	}
	if !in.Role.IsValid() {
		fields["role"] = "must be one of USER, CAMI_YAKU, ADMIN"
	}
	if len(fields) > 0 {
		return nil, apperror.NewFieldValidation(fields)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	user := auth.NewUser(email, strings.TrimSpace(in.Name), hash, in.Role)
	if err := s.repo.Create(ctx, user); err != nil {
		if apperror.IsDuplicate(err) {
			return nil, apperror.NewDuplicate("User", "email", email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info(ctx, "user created", "user_id", user.ID, "role", user.Role, "actor_id", actorID(actor))
	return user, nil
}

// Update changes role and/or password.
func (s *Service) Update(ctx context.Context, actor *security.Actor, userID id.ID, in UpdateInput) (*auth.User, error) {
	if err := security.RequireUserManagement(actor); err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if in.Role == nil && in.Password == nil {
		fields["role"] = "role or password is required"
	}
	if in.Role != nil && !in.Role.IsValid() {
		fields["role"] = "must be one of USER, CAMI_YAKU, ADMIN"
	}
	if in.Password != nil && utf8.RuneCountInString(*in.Password) < MinPasswordLength {
		fields["password"] = fmt.Sprintf("must be at least %d characters", MinPasswordLength)
	}
	if len(fields) > 0 {
		return nil, apperror.NewFieldValidation(fields)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, normalizeGetErr(err, userID)
	}

	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, apperror.NewInternal(err)
		}
		user.PasswordHash = &hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.forget(userID)

	logger.Info(ctx, "user updated", "user_id", userID, "role", user.Role, "actor_id", actor.ID)
	return user, nil
}

// Delete removes an account. Administrators cannot delete themselves.
func (s *Service) Delete(ctx context.Context, actor *security.Actor, userID id.ID) error {
	if err := security.RequireUserManagement(actor); err != nil {
		return err
	}
	if actor.ID == userID {
		return apperror.NewSelfDelete(userID.String())
	}

	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return normalizeGetErr(err, userID)
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.forget(userID)

	logger.Info(ctx, "user deleted", "user_id", userID, "actor_id", actor.ID)
	return nil
}

// authorize applies the user-management guard, waived while the store is empty.
func (s *Service) authorize(ctx context.Context, actor *security.Actor, allowBootstrap bool) error {
	if actor != nil && security.CanManageUsers(actor.Role) {
		return nil
	}
	if allowBootstrap {
		n, err := s.repo.Count(ctx)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		if n == 0 {
			logger.Warn(ctx, "user store is empty, allowing bootstrap access")
			return nil
		}
	}
	return security.RequireUserManagement(actor)
}

func (s *Service) forget(userID id.ID) {
	if s.roles != nil {
		s.roles.Forget(userID)
	}
}

func normalizeGetErr(err error, userID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound("User", userID.String())
	}
	return fmt.Errorf("get user: %w", err)
}

func actorID(a *security.Actor) string {
	if a == nil {
		return ""
	}
	return a.ID.String()
}
