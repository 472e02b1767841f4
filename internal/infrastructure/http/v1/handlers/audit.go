package handlers

import (
	"github.com/gin-gonic/gin"

	"datacatalog/internal/domain/audit"
	"datacatalog/internal/infrastructure/http/v1/dto"
)

// AuditHandler serves the audit trail to administrators.
type AuditHandler struct {
	*BaseHandler
	service *audit.Service
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, service *audit.Service) *AuditHandler {
	return &AuditHandler{BaseHandler: base, service: service}
}

// List handles GET /audit
func (h *AuditHandler) List(c *gin.Context) {
	var q dto.AuditListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), h.Actor(c), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, dto.FromAuditEntry))
}
