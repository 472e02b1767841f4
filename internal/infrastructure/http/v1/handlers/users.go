package handlers

import (
	"github.com/gin-gonic/gin"

	"datacatalog/internal/domain/users"
	"datacatalog/internal/infrastructure/http/v1/dto"
)

// UserHandler serves account administration.
type UserHandler struct {
	*BaseHandler
	service *users.Service
}

// NewUserHandler creates a new user handler.
func NewUserHandler(base *BaseHandler, service *users.Service) *UserHandler {
	return &UserHandler{BaseHandler: base, service: service}
}

// List handles GET /users
func (h *UserHandler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), h.Actor(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	data := make([]dto.UserResponse, len(list))
	for i := range list {
		data[i] = dto.FromUserSummary(&list[i])
	}
	h.OK(c, dto.DataResponse[dto.UserResponse]{Data: data})
}

// Create handles POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	user, err := h.service.Create(c.Request.Context(), h.Actor(c), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromUser(user))
}

// Update handles PATCH /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	userID, ok := h.PathID(c, "User", "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	user, err := h.service.Update(c.Request.Context(), h.Actor(c), userID, in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUser(user))
}

// Delete handles DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	userID, ok := h.PathID(c, "User", "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), h.Actor(c), userID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "user deleted")
}

// RegisterRoutes registers user routes. List and create stay reachable
// without a token so the first administrator can be bootstrapped; the
// service enforces the guard.
func (h *UserHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/users", h.List)
	public.POST("/users", h.Create)

	protected.PATCH("/users/:id", h.Update)
	protected.DELETE("/users/:id", h.Delete)
}
