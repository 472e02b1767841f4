package product

import (
	"context"

	"datacatalog/internal/core/id"
)

// Repository persists products. Writes use the transaction carried by ctx.
type Repository interface {
	// Create inserts the scalar row.
	Create(ctx context.Context, p *Product) error

	// GetByID loads a product with its tags and creator, or a NotFound error.
	GetByID(ctx context.Context, productID id.ID) (*Product, error)

	// Update overwrites every scalar column except id, created_by_id and created_at.
	Update(ctx context.Context, p *Product) error

	// Delete removes the row; tag links cascade.
	Delete(ctx context.Context, productID id.ID) error

	// LinkTags and UnlinkTags edit the product_tags join.
	LinkTags(ctx context.Context, productID id.ID, tagIDs []id.ID) error
	UnlinkTags(ctx context.Context, productID id.ID, tagIDs []id.ID) error

	// List returns one page matching q and the total count of the same predicate.
	List(ctx context.Context, q Query) ([]Product, int64, error)
}

// TagRepository persists tags. Tags are never deleted.
type TagRepository interface {
	// Upsert returns a tag for every name, creating missing ones. Order follows names.
	Upsert(ctx context.Context, names []string) ([]Tag, error)

	// List returns all tags ordered by name.
	List(ctx context.Context) ([]Tag, error)
}

// TagCache caches the tag list. Every Invalidate starts a new generation.
// A miss reports the generation it observed, and Set stores the list only
// while that generation is still current, so a list read from storage
// before a write cannot be cached after the write's invalidation.
type TagCache interface {
	Get(ctx context.Context) (tags []Tag, gen int64, ok bool)
	Set(ctx context.Context, gen int64, tags []Tag)
	Invalidate(ctx context.Context)
}

// DiffTags compares the current and desired tag sets by ID.
func DiffTags(current, desired []Tag) (add, remove []id.ID) {
	have := make(map[id.ID]bool, len(current))
	for _, t := range current {
		have[t.ID] = true
	}
	want := make(map[id.ID]bool, len(desired))
	for _, t := range desired {
		want[t.ID] = true
		if !have[t.ID] {
			add = append(add, t.ID)
		}
	}
	for _, t := range current {
		if !want[t.ID] {
			remove = append(remove, t.ID)
		}
	}
	return add, remove
}
