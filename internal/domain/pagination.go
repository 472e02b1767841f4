// Package domain holds types shared by the catalog's domain packages.
package domain

import (
	"math"

	"datacatalog/internal/core/apperror"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination is a 1-based page request. Zero values mean "use the default";
// the HTTP layer rejects explicit non-positive values before they get here.
type Pagination struct {
	Page     int
	PageSize int
}

// Normalize fills defaults.
func (p *Pagination) Normalize() {
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.PageSize == 0 {
		p.PageSize = DefaultPageSize
	}
}

// FieldErrors returns bound violations keyed by parameter name.
func (p Pagination) FieldErrors() map[string]string {
	fields := map[string]string{}
	if p.Page < 1 {
		fields["page"] = "must be at least 1"
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		fields["pageSize"] = "must be between 1 and 100"
	}
	return fields
}

// Validate checks bounds after Normalize.
func (p Pagination) Validate() error {
	if fields := p.FieldErrors(); len(fields) > 0 {
		return apperror.NewFieldValidation(fields)
	}
	return nil
}

// Offset returns the number of rows to skip. It saturates at math.MaxInt,
// so a page far past the end is empty rather than wrapping around.
func (p Pagination) Offset() int {
	if p.Page <= 1 || p.PageSize <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

// ListResult contains one page of results and the total matching count.
type ListResult[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}

// TotalPages returns ceil(Total / PageSize).
func (r ListResult[T]) TotalPages() int {
	if r.PageSize <= 0 {
		return 0
	}
	return int((r.Total + int64(r.PageSize) - 1) / int64(r.PageSize))
}

// NewListResult builds a page, never returning a nil Items slice.
func NewListResult[T any](items []T, total int64, p Pagination) ListResult[T] {
	if items == nil {
		items = []T{}
	}
	return ListResult[T]{Items: items, Total: total, Page: p.Page, PageSize: p.PageSize}
}
