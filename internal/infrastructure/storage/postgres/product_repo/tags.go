package product_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"datacatalog/internal/core/id"
	"datacatalog/internal/domain/product"
	"datacatalog/internal/infrastructure/storage/postgres"
)

var _ product.TagRepository = (*TagRepo)(nil)

// TagRepo implements product.TagRepository.
type TagRepo struct {
	txManager *postgres.TxManager
}

// NewTagRepo creates a new tag repository.
func NewTagRepo(txManager *postgres.TxManager) *TagRepo {
	return &TagRepo{txManager: txManager}
}

// Upsert returns a tag per name in input order. The no-op DO UPDATE makes
// RETURNING yield existing rows too, and it serializes concurrent inserts of
// the same name on the unique index.
func (r *TagRepo) Upsert(ctx context.Context, names []string) ([]product.Tag, error) {
	if len(names) == 0 {
		return []product.Tag{}, nil
	}

	q := builder().Insert("tags").Columns("id", "name")
	for _, n := range names {
		q = q.Values(id.New(), n)
	}
	sql, args, err := q.
		Suffix("ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id, name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build upsert: %w", err)
	}

	var rows []product.Tag
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("upsert tags: %w", err))
	}

	byName := make(map[string]product.Tag, len(rows))
	for _, t := range rows {
		byName[t.Name] = t
	}
	out := make([]product.Tag, 0, len(names))
	for _, n := range names {
		t, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("upsert tags: no row returned for %q", n)
		}
		out = append(out, t)
	}
	return out, nil
}

// List returns all tags ordered by name.
func (r *TagRepo) List(ctx context.Context) ([]product.Tag, error) {
	sql, args, err := builder().
		Select("id", "name").
		From("tags").
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	tags := []product.Tag{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &tags, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("list tags: %w", err))
	}
	return tags, nil
}
