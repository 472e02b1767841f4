package middleware

import (
	"context"

	appctx "datacatalog/internal/core/context"
	"datacatalog/internal/core/id"
	"datacatalog/internal/core/security"
)

// ActorFromContext converts the authenticated user into a policy actor.
// It returns nil for anonymous requests and for users whose stored role is
// not one the policy knows.
func ActorFromContext(ctx context.Context) *security.Actor {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil
	}
	userID, err := id.Parse(user.UserID)
	if err != nil {
		return nil
	}
	role := security.Role(user.Role)
	if !role.IsValid() {
		return nil
	}
	return security.NewActor(userID, role)
}
