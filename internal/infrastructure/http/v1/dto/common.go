// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"datacatalog/internal/domain"
)

// --- Pagination ---

// PaginationRequest contains pagination parameters. Absent values take the
// domain defaults; values that are present must be positive.
type PaginationRequest struct {
	Page     *int `form:"page"`
	PageSize *int `form:"pageSize"`
}

// ToDomain converts to the domain pagination and collects field errors
// for explicit out-of-range values.
func (p PaginationRequest) ToDomain(fields map[string]string) domain.Pagination {
	var out domain.Pagination
	if p.Page != nil {
		out.Page = *p.Page
		if out.Page < 1 {
			fields["page"] = "must be at least 1"
		}
	}
	if p.PageSize != nil {
		out.PageSize = *p.PageSize
		if out.PageSize < 1 || out.PageSize > domain.MaxPageSize {
			fields["pageSize"] = "must be between 1 and 100"
		}
	}
	return out
}

// PaginationResponse contains pagination metadata.
type PaginationResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse[T any] struct {
	Data       []T                `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
}

// NewListResponse maps one page of domain results.
func NewListResponse[S, T any](r domain.ListResult[S], convert func(*S) T) ListResponse[T] {
	data := make([]T, len(r.Items))
	for i := range r.Items {
		data[i] = convert(&r.Items[i])
	}
	return ListResponse[T]{
		Data: data,
		Pagination: PaginationResponse{
			Page:       r.Page,
			PageSize:   r.PageSize,
			TotalItems: r.Total,
			TotalPages: r.TotalPages(),
		},
	}
}

// DataResponse wraps a non-paginated collection.
type DataResponse[T any] struct {
	Data []T `json:"data"`
}

// --- Success Response ---

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
