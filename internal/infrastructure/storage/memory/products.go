package memory

import (
	"context"
	"sort"
	"strings"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/id"
	"datacatalog/internal/domain/product"
)

// ProductRepo implements product.Repository.
type ProductRepo struct{ s *Store }

// Create implements product.Repository.
func (r *ProductRepo) Create(_ context.Context, p *product.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.products[p.ID]; ok {
		return apperror.NewDuplicate("Product", "id", p.ID.String())
	}
	if _, ok := r.s.data.users[p.CreatedByID]; !ok {
		return apperror.NewConflict("referenced user does not exist").WithDetail("createdById", p.CreatedByID.String())
	}
	stored := p.Clone()
	stored.Tags = nil
	stored.CreatedBy = nil
	r.s.data.products[p.ID] = stored
	return nil
}

// GetByID implements product.Repository.
func (r *ProductRepo) GetByID(_ context.Context, productID id.ID) (*product.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.data.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("Product", productID.String())
	}
	return r.s.data.hydrate(p), nil
}

// Update implements product.Repository.
func (r *ProductRepo) Update(_ context.Context, p *product.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.data.products[p.ID]
	if !ok {
		return apperror.NewNotFound("Product", p.ID.String())
	}
	stored := p.Clone()
	stored.CreatedByID = existing.CreatedByID
	stored.CreatedAt = existing.CreatedAt
	stored.Tags = nil
	stored.CreatedBy = nil
	r.s.data.products[p.ID] = stored
	return nil
}

// Delete implements product.Repository.
func (r *ProductRepo) Delete(_ context.Context, productID id.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.products[productID]; !ok {
		return apperror.NewNotFound("Product", productID.String())
	}
	delete(r.s.data.products, productID)
	delete(r.s.data.links, productID)
	return nil
}

// LinkTags implements product.Repository.
func (r *ProductRepo) LinkTags(_ context.Context, productID id.ID, tagIDs []id.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.products[productID]; !ok {
		return apperror.NewNotFound("Product", productID.String())
	}
	set := r.s.data.links[productID]
	if set == nil {
		set = make(map[id.ID]bool)
		r.s.data.links[productID] = set
	}
	for _, t := range tagIDs {
		if _, ok := r.s.data.tags[t]; !ok {
			return apperror.NewConflict("referenced tag does not exist").WithDetail("tagId", t.String())
		}
		set[t] = true
	}
	return nil
}

// UnlinkTags implements product.Repository.
func (r *ProductRepo) UnlinkTags(_ context.Context, productID id.ID, tagIDs []id.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range tagIDs {
		delete(r.s.data.links[productID], t)
	}
	return nil
}

// List implements product.Repository.
func (r *ProductRepo) List(_ context.Context, q product.Query) ([]product.Product, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*product.Product
	for _, p := range r.s.data.products {
		h := r.s.data.hydrate(p)
		if q.Matches(h) {
			matched = append(matched, h)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		c := compareProducts(matched[i], matched[j], q.SortBy)
		if c == 0 {
			c = strings.Compare(matched[i].ID.String(), matched[j].ID.String())
		}
		if q.SortOrder == product.SortAsc {
			return c < 0
		}
		return c > 0
	})

	total := int64(len(matched))
	start := min(max(q.Offset, 0), len(matched))
	end := min(start+q.Limit, len(matched))

	items := make([]product.Product, 0, end-start)
	for _, p := range matched[start:end] {
		items = append(items, *p)
	}
	return items, total, nil
}

func compareProducts(a, b *product.Product, by product.SortField) int {
	switch by {
	case product.SortName:
		return strings.Compare(a.Name, b.Name)
	case product.SortStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	case product.SortCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
}

// hydrate returns a copy of p with tags and creator attached. Caller holds mu.
func (d *state) hydrate(p *product.Product) *product.Product {
	out := p.Clone()
	out.Tags = []product.Tag{}
	for t := range d.links[p.ID] {
		out.Tags = append(out.Tags, d.tags[t])
	}
	sort.Slice(out.Tags, func(i, j int) bool { return out.Tags[i].Name < out.Tags[j].Name })

	if u, ok := d.users[p.CreatedByID]; ok {
		out.CreatedBy = &product.Creator{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return out
}

// TagRepo implements product.TagRepository.
type TagRepo struct{ s *Store }

// Upsert implements product.TagRepository.
func (r *TagRepo) Upsert(_ context.Context, names []string) ([]product.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]product.Tag, 0, len(names))
	for _, name := range names {
		tagID, ok := r.s.data.tagNames[name]
		if !ok {
			tagID = id.New()
			r.s.data.tagNames[name] = tagID
			r.s.data.tags[tagID] = product.Tag{ID: tagID, Name: name}
		}
		out = append(out, r.s.data.tags[tagID])
	}
	return out, nil
}

// List implements product.TagRepository.
func (r *TagRepo) List(_ context.Context) ([]product.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]product.Tag, 0, len(r.s.data.tags))
	for _, t := range r.s.data.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
