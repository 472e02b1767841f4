package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/security"
	"datacatalog/internal/domain/auth"
	"datacatalog/internal/infrastructure/http/v1/dto"
	"datacatalog/pkg/logger"
)

// FederatedProvider runs an external sign-in flow.
type FederatedProvider interface {
	// Begin stores flow state in cookies and returns the provider URL.
	Begin(w http.ResponseWriter) (string, error)
	// Complete validates the callback and returns the verified identity.
	Complete(w http.ResponseWriter, r *http.Request) (auth.FederatedIdentity, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
	google  FederatedProvider
}

// NewAuthHandler creates a new auth handler. google may be nil.
func NewAuthHandler(base *BaseHandler, service *auth.Service, google FederatedProvider) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
		google:      google,
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, user, err := h.service.Login(c.Request.Context(), req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Tokens: dto.FromTokenPair(tokens),
		User:   dto.FromUser(user),
	})
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTokenPair(tokens))
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	actor := h.Actor(c)
	if err := security.RequireActor(actor); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Logout(c.Request.Context(), actor.ID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Me handles GET /me
func (h *AuthHandler) Me(c *gin.Context) {
	actor := h.Actor(c)
	if err := security.RequireActor(actor); err != nil {
		h.Error(c, err)
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), actor.ID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MeResponse{
		UserResponse: *dto.FromUser(user),
		Capabilities: security.CapabilitiesFor(user.Actor()),
	})
}

// GoogleLogin handles GET /auth/google/login
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	url, err := h.google.Begin(c.Writer)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	c.Redirect(http.StatusFound, url)
}

// GoogleCallback handles GET /auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	ctx := c.Request.Context()

	ident, err := h.google.Complete(c.Writer, c.Request)
	if err != nil {
		logger.Warn(ctx, "google sign-in rejected", "error", err)
		h.Error(c, apperror.NewUnauthorized("sign-in with Google failed"))
		return
	}

	tokens, user, err := h.service.LoginFederated(ctx, ident)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Tokens: dto.FromTokenPair(tokens),
		User:   dto.FromUser(user),
	})
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/auth/login", h.Login)
	public.POST("/auth/refresh", h.Refresh)
	if h.google != nil {
		public.GET("/auth/google/login", h.GoogleLogin)
		public.GET("/auth/google/callback", h.GoogleCallback)
	}

	protected.POST("/auth/logout", h.Logout)
	protected.GET("/me", h.Me)
}
