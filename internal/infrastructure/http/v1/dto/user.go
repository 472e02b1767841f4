package dto

import (
	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/security"
	"datacatalog/internal/domain/users"
)

// CreateUserRequest creates an account. Role defaults to USER.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// ToInput converts to the domain input.
func (r *CreateUserRequest) ToInput() (users.CreateInput, error) {
	role := security.RoleUser
	if r.Role != "" {
		parsed, err := security.ParseRole(r.Role)
		if err != nil {
			return users.CreateInput{}, apperror.NewFieldValidation(map[string]string{"role": "must be one of USER, CAMI_YAKU, ADMIN"})
		}
		role = parsed
	}
	return users.CreateInput{
		Email:    r.Email,
		Password: r.Password,
		Name:     r.Name,
		Role:     role,
	}, nil
}

// UpdateUserRequest changes a role, a password, or both.
type UpdateUserRequest struct {
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

// ToInput converts to the domain input.
func (r *UpdateUserRequest) ToInput() (users.UpdateInput, error) {
	in := users.UpdateInput{Password: r.Password}
	if r.Role != nil {
		role, err := security.ParseRole(*r.Role)
		if err != nil {
			return users.UpdateInput{}, apperror.NewFieldValidation(map[string]string{"role": "must be one of USER, CAMI_YAKU, ADMIN"})
		}
		in.Role = &role
	}
	return in, nil
}
