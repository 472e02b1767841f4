package handlers

import (
	"github.com/gin-gonic/gin"

	"datacatalog/internal/domain/product"
	"datacatalog/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves the product catalog.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service}
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var q dto.ProductListQuery
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

	h.OK(c, dto.NewListResponse(result, dto.FromProduct))
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.PathID(c, "Product", "id")
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), h.Actor(c), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p))
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Create(c.Request.Context(), h.Actor(c), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromProduct(p))
}

// Update handles PUT and PATCH /products/:id. Both replace the full record.
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := h.PathID(c, "Product", "id")
	if !ok {
		return
	}

	var req dto.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Update(c.Request.Context(), h.Actor(c), productID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p))
}

// Delete handles DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, ok := h.PathID(c, "Product", "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), h.Actor(c), productID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "product deleted")
}

// ListTags handles GET /tags
func (h *ProductHandler) ListTags(c *gin.Context) {
	tags, err := h.service.ListTags(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	data := make([]dto.TagResponse, len(tags))
	for i := range tags {
		data[i] = dto.FromTag(&tags[i])
	}
	h.OK(c, dto.DataResponse[dto.TagResponse]{Data: data})
}

// RegisterRoutes registers product and tag routes. Reads are public and
// scoped by visibility; writes run behind required.
func (h *ProductHandler) RegisterRoutes(public *gin.RouterGroup, required ...gin.HandlerFunc) {
	guarded := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, required...), handler)
	}

	products := public.Group("/products")
	products.GET("", h.List)
	products.GET("/:id", h.Get)
	products.POST("", guarded(h.Create)...)
	products.PUT("/:id", guarded(h.Update)...)
	products.PATCH("/:id", guarded(h.Update)...)
	products.DELETE("/:id", guarded(h.Delete)...)

	public.GET("/tags", h.ListTags)
}
