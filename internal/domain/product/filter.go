package product

import (
	"strings"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/security"
	"datacatalog/internal/domain"
)

// SortField is a sortable product column.
type SortField string

const (
	SortUpdatedAt SortField = "updatedAt"
	SortName      SortField = "name"
	SortStatus    SortField = "status"
	SortCreatedAt SortField = "createdAt"
)

// SortOrder is the sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListFilter is the validated set of listing parameters.
type ListFilter struct {
	Q          string
	Type       *Type
	Status     *Status
	Visibility *security.Visibility
	EPS        string
	Region     string
	District   string
	Topic      string
	Period     string
	Owner      string
	Tags       []string
	SortBy     SortField
	SortOrder  SortOrder

	domain.Pagination
}

// Normalize applies defaults and the case conventions of stored values.
func (f *ListFilter) Normalize() {
	f.Pagination.Normalize()
	if f.SortBy == "" {
		f.SortBy = SortUpdatedAt
	}
	if f.SortOrder == "" {
		f.SortOrder = SortDesc
	}
	f.Q = strings.TrimSpace(f.Q)
	f.EPS = strings.ToUpper(strings.TrimSpace(f.EPS))

	tags := f.Tags[:0:0]
	for _, t := range f.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	f.Tags = tags
}

// Validate checks enum fields and pagination bounds. Call after Normalize.
func (f ListFilter) Validate() error {
	fields := f.Pagination.FieldErrors()
	if f.Type != nil && !f.Type.IsValid() {
		fields["type"] = "unknown product type"
	}
	if f.Status != nil && !f.Status.IsValid() {
		fields["status"] = "unknown status"
	}
	if f.Visibility != nil && !f.Visibility.IsValid() {
		fields["visibility"] = "unknown visibility"
	}
	switch f.SortBy {
	case SortUpdatedAt, SortName, SortStatus, SortCreatedAt:
	default:
		fields["sortBy"] = "must be one of updatedAt, name, status, createdAt"
	}
	switch f.SortOrder {
	case SortAsc, SortDesc:
	default:
		fields["sortOrder"] = "must be asc or desc"
	}
	if len(fields) > 0 {
		return apperror.NewFieldValidation(fields)
	}
	return nil
}
