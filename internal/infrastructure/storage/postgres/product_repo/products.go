// Package product_repo provides PostgreSQL implementations for product and tag repositories.
package product_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/id"
	"datacatalog/internal/domain/product"
	"datacatalog/internal/infrastructure/storage/postgres"
)

var _ product.Repository = (*ProductRepo)(nil)

var productColumns = postgres.Qualify("p", postgres.ExtractDBColumns[product.Product]())

// productRow is a product joined with its creator.
type productRow struct {
	product.Product
	CreatorName  *string `db:"creator_name"`
	CreatorEmail *string `db:"creator_email"`
}

func (r productRow) toDomain() product.Product {
	p := r.Product
	p.Tags = []product.Tag{}
	if r.CreatorEmail != nil {
		p.CreatedBy = &product.Creator{ID: p.CreatedByID, Name: r.CreatorName, Email: *r.CreatorEmail}
	}
	return p
}

// ProductRepo implements product.Repository.
type ProductRepo struct {
	txManager *postgres.TxManager
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{txManager: txManager}
}

func (r *ProductRepo) baseSelect() squirrel.SelectBuilder {
	cols := append(append([]string{}, productColumns...), "u.name AS creator_name", "u.email AS creator_email")
	return builder().
		Select(cols...).
		From("products p").
		LeftJoin("users u ON u.id = p.created_by_id")
}

// Create inserts the scalar row.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	values := scalarMap(p)
	values["id"] = p.ID
	values["created_by_id"] = p.CreatedByID
	values["created_at"] = p.CreatedAt

	sql, args, err := builder().
		Insert("products").
		SetMap(values).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert product: %w", err))
	}
	return nil
}

// GetByID loads a product with its tags and creator.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"p.id": productID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row productRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("Product", productID.String())
		}
		return nil, postgres.MapError(fmt.Errorf("get product: %w", err))
	}

	p := row.toDomain()
	tags, err := r.loadTags(ctx, []id.ID{p.ID})
	if err != nil {
		return nil, err
	}
	if t, ok := tags[p.ID]; ok {
		p.Tags = t
	}
	return &p, nil
}

// Update overwrites every mutable column.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	sql, args, err := builder().
		Update("products").
		SetMap(scalarMap(p)).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update product: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("Product", p.ID.String())
	}
	return nil
}

// Delete removes the row. product_tags rows cascade.
func (r *ProductRepo) Delete(ctx context.Context, productID id.ID) error {
	sql, args, err := builder().
		Delete("products").
		Where(squirrel.Eq{"id": productID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("delete product: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("Product", productID.String())
	}
	return nil
}

// LinkTags attaches tags; existing links are left alone.
func (r *ProductRepo) LinkTags(ctx context.Context, productID id.ID, tagIDs []id.ID) error {
	if len(tagIDs) == 0 {
		return nil
	}
	q := builder().Insert("product_tags").Columns("product_id", "tag_id")
	for _, t := range tagIDs {
		q = q.Values(productID, t)
	}
	sql, args, err := q.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build link: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("link tags: %w", err))
	}
	return nil
}

// UnlinkTags detaches tags.
func (r *ProductRepo) UnlinkTags(ctx context.Context, productID id.ID, tagIDs []id.ID) error {
	if len(tagIDs) == 0 {
		return nil
	}
	sql, args, err := builder().
		Delete("product_tags").
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Eq{"tag_id": tagIDs}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build unlink: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("unlink tags: %w", err))
	}
	return nil
}

// List returns one page and the total count of the same predicate.
func (r *ProductRepo) List(ctx context.Context, q product.Query) ([]product.Product, int64, error) {
	if q.MatchesNothing() {
		return []product.Product{}, 0, nil
	}

	pageQ, countQ, err := buildListQueries(r.baseSelect(), q)
	if err != nil {
		return nil, 0, err
	}

	querier := r.txManager.GetQuerier(ctx)

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int64
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, postgres.MapError(fmt.Errorf("count products: %w", err))
	}

	sql, args, err := pageQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}
	var rows []productRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, 0, postgres.MapError(fmt.Errorf("list products: %w", err))
	}

	items := make([]product.Product, 0, len(rows))
	ids := make([]id.ID, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
		ids = append(ids, row.ID)
	}

	tags, err := r.loadTags(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		if t, ok := tags[items[i].ID]; ok {
			items[i].Tags = t
		}
	}
	return items, total, nil
}

// buildListQueries returns the page query and a count over the same predicate.
func buildListQueries(base squirrel.SelectBuilder, q product.Query) (page, count squirrel.SelectBuilder, err error) {
	filtered := applyPredicate(base, q)

	count = builder().
		Select("COUNT(*)").
		From("products p")
	count = applyPredicate(count, q)

	order, err := orderBy(q)
	if err != nil {
		return page, count, apperror.NewValidation(err.Error())
	}
	page = filtered.OrderBy(order)
	if q.Limit > 0 {
		page = page.Limit(uint64(q.Limit))
	}
	if q.Offset > 0 {
		page = page.Offset(uint64(q.Offset))
	}
	return page, count, nil
}

type tagLink struct {
	ProductID id.ID  `db:"product_id"`
	ID        id.ID  `db:"id"`
	Name      string `db:"name"`
}

// loadTags returns the tags of each product, ordered by name.
func (r *ProductRepo) loadTags(ctx context.Context, productIDs []id.ID) (map[id.ID][]product.Tag, error) {
	out := make(map[id.ID][]product.Tag, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	sql, args, err := builder().
		Select("pt.product_id", "t.id", "t.name").
		From("product_tags pt").
		Join("tags t ON t.id = pt.tag_id").
		Where(squirrel.Eq{"pt.product_id": productIDs}).
		OrderBy("t.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build tag query: %w", err)
	}

	var links []tagLink
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &links, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("load product tags: %w", err))
	}
	for _, l := range links {
		out[l.ProductID] = append(out[l.ProductID], product.Tag{ID: l.ID, Name: l.Name})
	}
	return out, nil
}

// scalarMap returns the mutable columns of p.
func scalarMap(p *product.Product) map[string]any {
	values := postgres.StructToMap(p, "id", "created_by_id", "created_at")
	if p.UpdatedAt.IsZero() {
		values["updated_at"] = time.Now().UTC()
	}
	return values
}
