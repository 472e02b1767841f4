package product

import (
	"errors"
	"strings"

	"datacatalog/internal/core/security"
)

// Field names a substring-filterable column.
type Field string

const (
	FieldEPS      Field = "eps"
	FieldRegion   Field = "region"
	FieldDistrict Field = "district"
	FieldTopic    Field = "topic"
	FieldPeriod   Field = "period"
	FieldOwner    Field = "owner"
)

// ContainsFields lists substring filters in a stable order.
var ContainsFields = []Field{FieldEPS, FieldRegion, FieldDistrict, FieldTopic, FieldPeriod, FieldOwner}

// ErrScopeRequired is returned when a query is built without a visibility scope.
var ErrScopeRequired = errors.New("product query requires a visibility scope")

// Query is a storage-agnostic description of a product listing.
// All terms are ANDed; Text is ORed across name, description and tag names.
type Query struct {
	// Visibility is mandatory. An empty slice matches no rows.
	Visibility []security.Visibility
	Text       string
	Type       *Type
	Status     *Status
	Contains   map[Field]string
	// Tags matches products carrying at least one of the names.
	Tags      []string
	SortBy    SortField
	SortOrder SortOrder
	Offset    int
	Limit     int
}

// BuildQuery turns a normalized filter and a visibility scope into a Query.
// The filter's own Visibility is ignored; callers fold it into scope through
// security.VisibilityScope so it can only narrow.
func BuildQuery(f ListFilter, scope []security.Visibility) (Query, error) {
	if scope == nil {
		return Query{}, ErrScopeRequired
	}

	q := Query{
		Visibility: append([]security.Visibility{}, scope...),
		Text:       f.Q,
		Type:       f.Type,
		Status:     f.Status,
		Contains:   make(map[Field]string),
		SortBy:     f.SortBy,
		SortOrder:  f.SortOrder,
		Offset:     f.Offset(),
		Limit:      f.PageSize,
	}
	if len(f.Tags) > 0 {
		q.Tags = append([]string{}, f.Tags...)
	}

	for field, v := range map[Field]string{
		FieldEPS:      f.EPS,
		FieldRegion:   f.Region,
		FieldDistrict: f.District,
		FieldTopic:    f.Topic,
		FieldPeriod:   f.Period,
		FieldOwner:    f.Owner,
	} {
		if v != "" {
			q.Contains[field] = v
		}
	}
	return q, nil
}

// MatchesNothing reports whether the scope excludes every row.
func (q Query) MatchesNothing() bool {
	return len(q.Visibility) == 0
}

// Matches evaluates the predicate against an in-memory product. Pagination
// and sorting are not part of the predicate.
func (q Query) Matches(p *Product) bool {
	if !containsVisibility(q.Visibility, p.Visibility) {
		return false
	}
	if q.Type != nil && p.Type != *q.Type {
		return false
	}
	if q.Status != nil && p.Status != *q.Status {
		return false
	}
	for field, needle := range q.Contains {
		if !strings.Contains(deref(fieldValue(p, field)), needle) {
			return false
		}
	}
	if len(q.Tags) > 0 && !hasAnyTag(p, q.Tags) {
		return false
	}
	if q.Text != "" && !matchesText(p, q.Text) {
		return false
	}
	return true
}

func matchesText(p *Product, text string) bool {
	if strings.Contains(p.Name, text) || strings.Contains(deref(p.Description), text) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(t.Name, text) {
			return true
		}
	}
	return false
}

func hasAnyTag(p *Product, names []string) bool {
	for _, t := range p.Tags {
		for _, n := range names {
			if t.Name == n {
				return true
			}
		}
	}
	return false
}

func containsVisibility(set []security.Visibility, v security.Visibility) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func fieldValue(p *Product, f Field) *string {
	switch f {
	case FieldEPS:
		return p.EPS
	case FieldRegion:
		return p.Region
	case FieldDistrict:
		return p.District
	case FieldTopic:
		return p.Topic
	case FieldPeriod:
		return p.Period
	case FieldOwner:
		return p.Owner
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
