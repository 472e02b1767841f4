// Package security provides authorization and access control for the catalog.
//
// Every decision is a pure function over an explicit *Actor. A nil actor is an
// anonymous caller.
package security

import (
	"fmt"
	"strings"

	"datacatalog/internal/core/id"
)

// Role is the privilege tier of a user.
type Role string

const (
	RoleUser     Role = "USER"
	RoleCamiYaku Role = "CAMI_YAKU"
	RoleAdmin    Role = "ADMIN"
)

// Roles lists every known role, lowest privilege first.
var Roles = []Role{RoleUser, RoleCamiYaku, RoleAdmin}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleCamiYaku, RoleAdmin:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (r Role) String() string { return string(r) }

// ParseRole accepts canonical role names and the operator-friendly aliases
// used by the CLI (user, admin, cami, cami_yaku, camiyaku), case-insensitive.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	case "cami", "cami_yaku", "camiyaku", "cami-yaku":
		return RoleCamiYaku, nil
	}
	return "", fmt.Errorf("unknown role %q (expected one of user, cami_yaku, admin)", s)
}

// Actor is the resolved identity attempting an operation.
type Actor struct {
	ID   id.ID
	Role Role
}

// NewActor builds an actor. It exists so callers outside the package read
// naturally: security.NewActor(userID, role).
func NewActor(userID id.ID, role Role) *Actor {
	return &Actor{ID: userID, Role: role}
}

// IsPrivileged reports whether the actor holds a trusted role.
func (a *Actor) IsPrivileged() bool {
	return a != nil && isPrivileged(a.Role)
}

func isPrivileged(r Role) bool {
	switch r {
	case RoleAdmin, RoleCamiYaku:
		return true
	case RoleUser:
		return false
	}
	return false
}
