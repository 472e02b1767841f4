package dto

import (
	"encoding/json"
	"strings"
	"time"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/id"
	"datacatalog/internal/domain/audit"
)

const dateLayout = "2006-01-02"

// AuditListQuery holds the audit listing query string. Dates accept RFC 3339
// or YYYY-MM-DD; a bare endDate covers the whole day.
type AuditListQuery struct {
	Action    string `form:"action"`
	UserID    string `form:"userId"`
	Entity    string `form:"entity"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	PaginationRequest
}

// ToFilter parses the query into a domain filter.
func (q *AuditListQuery) ToFilter() (audit.Filter, error) {
	fields := map[string]string{}
	f := audit.Filter{
		Entity:     strings.TrimSpace(q.Entity),
		Pagination: q.PaginationRequest.ToDomain(fields),
	}

	if v := strings.ToUpper(strings.TrimSpace(q.Action)); v != "" {
		a := audit.Action(v)
		f.Action = &a
	}
	userID, err := id.ParseOptional(q.UserID)
	if err != nil {
		fields["userId"] = "must be a valid id"
	}
	f.UserID = userID

	if q.StartDate != "" {
		t, _, err := parseTime(q.StartDate)
		if err != nil {
			fields["startDate"] = "must be RFC 3339 or YYYY-MM-DD"
		} else {
			f.StartDate = &t
		}
	}
	if q.EndDate != "" {
		t, dateOnly, err := parseTime(q.EndDate)
		if err != nil {
			fields["endDate"] = "must be RFC 3339 or YYYY-MM-DD"
		} else {
			if dateOnly {
				t = t.Add(24*time.Hour - time.Nanosecond)
			}
			f.EndDate = &t
		}
	}

	if len(fields) > 0 {
		return audit.Filter{}, apperror.NewFieldValidation(fields)
	}
	return f, nil
}

func parseTime(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(dateLayout, s)
	return t, true, err
}

// AuditUserResponse identifies the acting user.
type AuditUserResponse struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Email string  `json:"email"`
}

// AuditProductResponse identifies the product, while it exists.
type AuditProductResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AuditEntryResponse is an audit entry as rendered to administrators.
type AuditEntryResponse struct {
	ID        string                `json:"id"`
	Entity    string                `json:"entity"`
	EntityID  string                `json:"entityId"`
	Action    string                `json:"action"`
	UserID    string                `json:"userId"`
	ProductID *string               `json:"productId"`
	Diff      json.RawMessage       `json:"diff"`
	Timestamp time.Time             `json:"timestamp"`
	User      *AuditUserResponse    `json:"user,omitempty"`
	Product   *AuditProductResponse `json:"product,omitempty"`
}

// FromAuditEntry converts a domain entry.
func FromAuditEntry(e *audit.Entry) AuditEntryResponse {
	resp := AuditEntryResponse{
		ID:        e.ID.String(),
		Entity:    e.Entity,
		EntityID:  e.EntityID,
		Action:    string(e.Action),
		UserID:    e.UserID.String(),
		Diff:      e.Diff,
		Timestamp: e.Timestamp,
	}
	if len(resp.Diff) == 0 {
		resp.Diff = json.RawMessage("null")
	}
	if e.ProductID != nil {
		pid := e.ProductID.String()
		resp.ProductID = &pid
	}
	if e.User != nil {
		resp.User = &AuditUserResponse{ID: e.User.ID.String(), Name: e.User.Name, Email: e.User.Email}
	}
	if e.Product != nil {
		resp.Product = &AuditProductResponse{ID: e.Product.ID.String(), Name: e.Product.Name}
	}
	return resp
}
