package memory

import (
	"context"
	"sort"

	"datacatalog/internal/domain/audit"
)

// AuditRepo implements audit.Repository.
type AuditRepo struct{ s *Store }

// Append implements audit.Repository.
func (r *AuditRepo) Append(_ context.Context, e *audit.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *e
	stored.Diff = append([]byte(nil), e.Diff...)
	stored.User = nil
	stored.Product = nil
	r.s.data.audit = append(r.s.data.audit, stored)
	return nil
}

// List implements audit.Repository.
func (r *AuditRepo) List(_ context.Context, f audit.Filter) ([]audit.Entry, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []audit.Entry
	for _, e := range r.s.data.audit {
		if f.Action != nil && e.Action != *f.Action {
			continue
		}
		if f.UserID != nil && e.UserID != *f.UserID {
			continue
		}
		if f.Entity != "" && e.Entity != f.Entity {
			continue
		}
		if f.StartDate != nil && e.Timestamp.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && e.Timestamp.After(*f.EndDate) {
			continue
		}
		matched = append(matched, e)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	total := int64(len(matched))
	start := min(max(f.Offset(), 0), len(matched))
	end := min(start+f.PageSize, len(matched))

	out := make([]audit.Entry, 0, end-start)
	for _, e := range matched[start:end] {
		if u, ok := r.s.data.users[e.UserID]; ok {
			e.User = &audit.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
		}
		if e.ProductID != nil {
			if p, ok := r.s.data.products[*e.ProductID]; ok {
				e.Product = &audit.ProductRef{ID: p.ID, Name: p.Name}
			}
		}
		out = append(out, e)
	}
	return out, total, nil
}

// Entries returns every stored entry in append order.
func (r *AuditRepo) Entries() []audit.Entry {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]audit.Entry(nil), r.s.data.audit...)
}
