// Package audit_repo provides the PostgreSQL audit log.
package audit_repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"datacatalog/internal/core/id"
	"datacatalog/internal/domain/audit"
	"datacatalog/internal/infrastructure/storage/postgres"
)

var _ audit.Repository = (*AuditRepo)(nil)

// entryRow is a row of audit_logs joined with the acting user and product.
type entryRow struct {
	ID                id.ID           `db:"id"`
	Entity            string          `db:"entity"`
	EntityID          string          `db:"entity_id"`
	Action            audit.Action    `db:"action"`
	UserID            id.ID           `db:"user_id"`
	ProductID         *id.ID          `db:"product_id"`
	Changes           json.RawMessage `db:"changes"`
	ChangesCompressed []byte          `db:"changes_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	Timestamp         time.Time       `db:"timestamp"`
	UserName          *string         `db:"user_name"`
	UserEmail         *string         `db:"user_email"`
	ProductName       *string         `db:"product_name"`
}

// AuditRepo implements audit.Repository. There is no update or delete path.
type AuditRepo struct {
	txManager *postgres.TxManager
	codec     *codec
}

// NewAuditRepo creates the repository. threshold <= 0 selects the default.
func NewAuditRepo(txManager *postgres.TxManager, threshold int) (*AuditRepo, error) {
	if threshold <= 0 {
		threshold = DefaultCompressThreshold
	}
	c, err := newCodec(threshold)
	if err != nil {
		return nil, err
	}
	return &AuditRepo{txManager: txManager, codec: c}, nil
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Append writes e in the transaction carried by ctx.
func (r *AuditRepo) Append(ctx context.Context, e *audit.Entry) error {
	if id.IsNil(e.ID) {
		e.ID = id.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	changes, compressed, algo := r.codec.encode(e.Diff)

	sql, args, err := builder().
		Insert("audit_logs").
		Columns("id", "entity", "entity_id", "action", "user_id", "product_id",
			"changes", "changes_compressed", "compression_algo", "timestamp").
		Values(e.ID, e.Entity, e.EntityID, string(e.Action), e.UserID, e.ProductID,
			nullableJSON(changes), compressed, string(algo), e.Timestamp).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("append audit entry: %w", err))
	}
	return nil
}

// List returns entries newest first with the total count of the same filter.
func (r *AuditRepo) List(ctx context.Context, f audit.Filter) ([]audit.Entry, int64, error) {
	countQ := applyFilter(builder().Select("COUNT(*)").From("audit_logs a"), f)
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	var total int64
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, postgres.MapError(fmt.Errorf("count audit entries: %w", err))
	}

	sql, args, err := pageQuery(f).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var rows []entryRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, 0, postgres.MapError(fmt.Errorf("list audit entries: %w", err))
	}

	out := make([]audit.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := r.toDomain(row)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, nil
}

func pageQuery(f audit.Filter) squirrel.SelectBuilder {
	q := builder().
		Select("a.id", "a.entity", "a.entity_id", "a.action", "a.user_id", "a.product_id",
			"a.changes", "a.changes_compressed", "a.compression_algo", "a.timestamp",
			"u.name AS user_name", "u.email AS user_email", "p.name AS product_name").
		From("audit_logs a").
		LeftJoin("users u ON u.id = a.user_id").
		LeftJoin("products p ON p.id = a.product_id")

	q = applyFilter(q, f).OrderBy("a.timestamp DESC", "a.id DESC")
	if f.PageSize > 0 {
		q = q.Limit(uint64(f.PageSize))
	}
	if off := f.Offset(); off > 0 {
		q = q.Offset(uint64(off))
	}
	return q
}

func applyFilter(q squirrel.SelectBuilder, f audit.Filter) squirrel.SelectBuilder {
	if f.Action != nil {
		q = q.Where(squirrel.Eq{"a.action": string(*f.Action)})
	}
	if f.UserID != nil {
		q = q.Where(squirrel.Eq{"a.user_id": *f.UserID})
	}
	if f.Entity != "" {
		q = q.Where(squirrel.Eq{"a.entity": f.Entity})
	}
	if f.StartDate != nil {
		q = q.Where(squirrel.GtOrEq{"a.timestamp": *f.StartDate})
	}
	if f.EndDate != nil {
		q = q.Where(squirrel.LtOrEq{"a.timestamp": *f.EndDate})
	}
	return q
}

func (r *AuditRepo) toDomain(row entryRow) (audit.Entry, error) {
	diff, err := r.codec.decode(row.Changes, row.ChangesCompressed, row.CompressionAlgo)
	if err != nil {
		return audit.Entry{}, fmt.Errorf("audit entry %s: %w", row.ID, err)
	}

	e := audit.Entry{
		ID:        row.ID,
		Entity:    row.Entity,
		EntityID:  row.EntityID,
		Action:    row.Action,
		UserID:    row.UserID,
		ProductID: row.ProductID,
		Diff:      diff,
		Timestamp: row.Timestamp,
	}
	if row.UserEmail != nil {
		e.User = &audit.UserRef{ID: row.UserID, Name: row.UserName, Email: *row.UserEmail}
	}
	if row.ProductID != nil && row.ProductName != nil {
		e.Product = &audit.ProductRef{ID: *row.ProductID, Name: *row.ProductName}
	}
	return e, nil
}

// nullableJSON keeps empty diffs as SQL NULL.
func nullableJSON(b json.RawMessage) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
