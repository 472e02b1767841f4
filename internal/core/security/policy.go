package security

import (
	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/id"
)

// CanEdit reports whether an actor with role may modify a resource owned by ownerID.
func CanEdit(role Role, ownerID, actorID id.ID) bool {
	if isPrivileged(role) {
		return true
	}
	return role.IsValid() && !id.IsNil(actorID) && ownerID == actorID
}

// CanDelete reports whether role may delete a resource. Ownership does not
// grant deletion.
func CanDelete(role Role, _, _ id.ID) bool {
	return isPrivileged(role)
}

// CanViewAudit reports whether role may read the audit trail.
func CanViewAudit(role Role) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleCamiYaku, RoleUser:
		return false
	}
	return false
}

// CanManageUsers reports whether role may list, create, update and delete users.
func CanManageUsers(role Role) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleCamiYaku, RoleUser:
		return false
	}
	return false
}

// CanChangeStatus reports whether role may move a product between lifecycle
// statuses. Exposed to clients through Capabilities.
func CanChangeStatus(role Role) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleCamiYaku, RoleUser:
		return false
	}
	return false
}

// Capabilities is the role-only part of the policy, rendered for clients.
type Capabilities struct {
	CanViewAudit    bool `json:"canViewAudit"`
	CanManageUsers  bool `json:"canManageUsers"`
	CanChangeStatus bool `json:"canChangeStatus"`
	CanDeleteAny    bool `json:"canDeleteAny"`
	CanEditAny      bool `json:"canEditAny"`
}

// CapabilitiesFor evaluates the policy for an actor. Anonymous callers get none.
func CapabilitiesFor(a *Actor) Capabilities {
	if a == nil {
		return Capabilities{}
	}
	return Capabilities{
		CanViewAudit:    CanViewAudit(a.Role),
		CanManageUsers:  CanManageUsers(a.Role),
		CanChangeStatus: CanChangeStatus(a.Role),
		CanDeleteAny:    CanDelete(a.Role, id.Nil(), a.ID),
		CanEditAny:      isPrivileged(a.Role),
	}
}

// --- Guards returning AppError ---

// RequireActor fails with Unauthorized for anonymous callers.
func RequireActor(a *Actor) error {
	if a == nil {
		return apperror.NewUnauthorized("authentication required")
	}
	return nil
}

// RequireAuditAccess guards the audit read side.
func RequireAuditAccess(a *Actor) error {
	if err := RequireActor(a); err != nil {
		return err
	}
	if !CanViewAudit(a.Role) {
		return apperror.NewForbidden("audit log is restricted to administrators").
			WithDetail("role", a.Role)
	}
	return nil
}

// RequireUserManagement guards user administration.
func RequireUserManagement(a *Actor) error {
	if err := RequireActor(a); err != nil {
		return err
	}
	if !CanManageUsers(a.Role) {
		return apperror.NewForbidden("user management is restricted to administrators").
			WithDetail("role", a.Role)
	}
	return nil
}
