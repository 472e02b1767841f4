package audit

import (
	"context"
	"time"

	"datacatalog/internal/core/id"
	"datacatalog/internal/domain"
)

// Filter narrows an audit listing. Date bounds are inclusive.
type Filter struct {
	Action    *Action
	UserID    *id.ID
	Entity    string
	StartDate *time.Time
	EndDate   *time.Time

	domain.Pagination
}

// Repository persists audit entries. There is no update or delete.
type Repository interface {
	// Append writes e using the transaction carried by ctx, if any.
	Append(ctx context.Context, e *Entry) error

	// List returns entries matching f, newest first, with the total count.
	List(ctx context.Context, f Filter) ([]Entry, int64, error)
}
