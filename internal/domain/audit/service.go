package audit

import (
	"context"
	"fmt"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/security"
	"datacatalog/internal/domain"
)

// Service is the privileged read side of the audit trail.
type Service struct {
	repo Repository
}

// NewService creates the audit query service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns one page of entries, newest first.
func (s *Service) List(ctx context.Context, actor *security.Actor, f Filter) (domain.ListResult[Entry], error) {
	if err := security.RequireAuditAccess(actor); err != nil {
		return domain.ListResult[Entry]{}, err
	}

	f.Normalize()
	fields := f.FieldErrors()
	if f.Action != nil && !f.Action.IsValid() {
		fields["action"] = "must be one of CREATE, UPDATE, DELETE, LOGIN"
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		fields["endDate"] = "must not be before startDate"
	}
	if len(fields) > 0 {
		return domain.ListResult[Entry]{}, apperror.NewFieldValidation(fields)
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return domain.ListResult[Entry]{}, fmt.Errorf("list audit: %w", err)
	}
	return domain.NewListResult(items, total, f.Pagination), nil
}
