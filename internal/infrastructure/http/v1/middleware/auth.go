package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"datacatalog/internal/core/apperror"
	appctx "datacatalog/internal/core/context"
	"datacatalog/internal/core/id"
	"datacatalog/internal/core/security"
)

// JWTValidator interface for token validation.
type JWTValidator interface {
	ValidateToken(tokenString string) (*appctx.UserContext, error)
}

// RoleSource returns the current role of a user.
type RoleSource interface {
	CurrentRole(ctx context.Context, userID id.ID) (security.Role, error)
}

// Auth middleware requires a valid bearer token and populates user context.
// The role carried by the token is replaced by the current stored role.
func Auth(validator JWTValidator, roles RoleSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "missing or malformed authorization header")
			return
		}

		user, err := validator.ValidateToken(tokenString)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		if err := refreshRole(c.Request.Context(), user, roles); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth populates user context when a valid token is present. Missing,
// invalid or expired tokens leave the request anonymous.
func OptionalAuth(validator JWTValidator, roles RoleSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		user, err := validator.ValidateToken(tokenString)
		if err != nil || user == nil {
			c.Next()
			return
		}

		if err := refreshRole(c.Request.Context(), user, roles); err != nil {
			// A deleted account browses anonymously; storage failures still surface.
			if apperror.IsUnauthorized(err) {
				c.Next()
				return
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// RequireUser aborts anonymous requests. Used on groups that mix optional
// and required authentication.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if appctx.GetUser(c.Request.Context()) == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func refreshRole(ctx context.Context, user *appctx.UserContext, roles RoleSource) error {
	if roles == nil {
		return nil
	}
	userID, err := id.Parse(user.UserID)
	if err != nil {
		return apperror.NewUnauthorized("invalid token subject")
	}
	role, err := roles.CurrentRole(ctx, userID)
	if err != nil {
		return err
	}
	user.Role = string(role)
	return nil
}

func setUser(c *gin.Context, user *appctx.UserContext) {
	ctx := appctx.WithUser(c.Request.Context(), user)
	c.Request = c.Request.WithContext(ctx)
	c.Set("user_id", user.UserID)
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
