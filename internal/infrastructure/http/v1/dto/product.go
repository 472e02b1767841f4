package dto

import (
	"strings"
	"time"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/security"
	"datacatalog/internal/domain/product"
)

// ProductRequest is the full record sent on create and update.
type ProductRequest struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Owner       string   `json:"owner"`
	Status      string   `json:"status"`
	Visibility  string   `json:"visibility"`
	EPS         string   `json:"eps"`
	Region      string   `json:"region"`
	District    string   `json:"district"`
	Topic       string   `json:"topic"`
	Period      string   `json:"period"`
	Source      string   `json:"source"`
	Tags        []string `json:"tags"`
}

// ToInput converts to the domain input. Enum values are validated by the domain.
func (r *ProductRequest) ToInput() product.Input {
	return product.Input{
		Name:        r.Name,
		Type:        product.Type(strings.ToUpper(strings.TrimSpace(r.Type))),
		Description: r.Description,
		URL:         r.URL,
		Owner:       r.Owner,
		Status:      product.Status(strings.ToUpper(strings.TrimSpace(r.Status))),
		Visibility:  security.Visibility(strings.ToUpper(strings.TrimSpace(r.Visibility))),
		EPS:         r.EPS,
		Region:      r.Region,
		District:    r.District,
		Topic:       r.Topic,
		Period:      r.Period,
		Source:      r.Source,
		Tags:        r.Tags,
	}
}

// ProductListQuery holds the listing query string.
type ProductListQuery struct {
	Q          string   `form:"q"`
	Type       string   `form:"type"`
	Status     string   `form:"status"`
	Visibility string   `form:"visibility"`
	EPS        string   `form:"eps"`
	Region     string   `form:"region"`
	District   string   `form:"district"`
	Topic      string   `form:"topic"`
	Period     string   `form:"period"`
	Owner      string   `form:"owner"`
	Tags       []string `form:"tags"`
	SortBy     string   `form:"sortBy"`
	SortOrder  string   `form:"sortOrder"`
	PaginationRequest
}

// ToFilter converts to the domain filter. Tags may be repeated or comma-separated.
// Enum and range checks beyond pagination are left to the domain.
func (q *ProductListQuery) ToFilter() (product.ListFilter, error) {
	fields := map[string]string{}
	f := product.ListFilter{
		Q:          q.Q,
		EPS:        q.EPS,
		Region:     strings.TrimSpace(q.Region),
		District:   strings.TrimSpace(q.District),
		Topic:      strings.TrimSpace(q.Topic),
		Period:     strings.TrimSpace(q.Period),
		Owner:      strings.TrimSpace(q.Owner),
		SortBy:     product.SortField(q.SortBy),
		SortOrder:  product.SortOrder(strings.ToLower(q.SortOrder)),
		Pagination: q.PaginationRequest.ToDomain(fields),
	}
	if len(fields) > 0 {
		return product.ListFilter{}, apperror.NewFieldValidation(fields)
	}
	if v := strings.ToUpper(strings.TrimSpace(q.Type)); v != "" {
		t := product.Type(v)
		f.Type = &t
	}
	if v := strings.ToUpper(strings.TrimSpace(q.Status)); v != "" {
		s := product.Status(v)
		f.Status = &s
	}
	if v := strings.ToUpper(strings.TrimSpace(q.Visibility)); v != "" {
		vis := security.Visibility(v)
		f.Visibility = &vis
	}
	for _, raw := range q.Tags {
		f.Tags = append(f.Tags, strings.Split(raw, ",")...)
	}
	return f, nil
}

// TagResponse is a tag as rendered to clients.
type TagResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FromTag converts a domain tag.
func FromTag(t *product.Tag) TagResponse {
	return TagResponse{ID: t.ID.String(), Name: t.Name}
}

// CreatorResponse identifies who created a product.
type CreatorResponse struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Email string  `json:"email"`
}

// ProductResponse is a product as rendered to clients.
type ProductResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Description *string          `json:"description"`
	URL         *string          `json:"url"`
	Owner       *string          `json:"owner"`
	Status      string           `json:"status"`
	Visibility  string           `json:"visibility"`
	EPS         *string          `json:"eps"`
	Region      *string          `json:"region"`
	District    *string          `json:"district"`
	Topic       *string          `json:"topic"`
	Period      *string          `json:"period"`
	Source      *string          `json:"source"`
	Tags        []TagResponse    `json:"tags"`
	CreatedByID string           `json:"createdById"`
	CreatedBy   *CreatorResponse `json:"createdBy,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// FromProduct converts a domain product.
func FromProduct(p *product.Product) ProductResponse {
	tags := make([]TagResponse, len(p.Tags))
	for i := range p.Tags {
		tags[i] = FromTag(&p.Tags[i])
	}
	resp := ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Type:        string(p.Type),
		Description: p.Description,
		URL:         p.URL,
		Owner:       p.Owner,
		Status:      string(p.Status),
		Visibility:  string(p.Visibility),
		EPS:         p.EPS,
		Region:      p.Region,
		District:    p.District,
		Topic:       p.Topic,
		Period:      p.Period,
		Source:      p.Source,
		Tags:        tags,
		CreatedByID: p.CreatedByID.String(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.CreatedBy != nil {
		resp.CreatedBy = &CreatorResponse{
			ID:    p.CreatedBy.ID.String(),
			Name:  p.CreatedBy.Name,
			Email: p.CreatedBy.Email,
		}
	}
	return resp
}
