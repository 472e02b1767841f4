package product_repo

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"datacatalog/internal/domain/product"
)

// sortColumns whitelists ORDER BY targets.
var sortColumns = map[product.SortField]string{
	product.SortUpdatedAt: "p.updated_at",
	product.SortName:      "p.name",
	product.SortStatus:    "p.status",
	product.SortCreatedAt: "p.created_at",
}

// containsColumns maps substring filters to columns.
var containsColumns = map[product.Field]string{
	product.FieldEPS:      "p.eps",
	product.FieldRegion:   "p.region",
	product.FieldDistrict: "p.district",
	product.FieldTopic:    "p.topic",
	product.FieldPeriod:   "p.period",
	product.FieldOwner:    "p.owner",
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// applyPredicate adds the WHERE terms of q. It is shared by the page query
// and the count query so both see the same rows.
func applyPredicate(sb squirrel.SelectBuilder, q product.Query) squirrel.SelectBuilder {
	visibility := make([]string, 0, len(q.Visibility))
	for _, v := range q.Visibility {
		visibility = append(visibility, string(v))
	}
	sb = sb.Where(squirrel.Eq{"p.visibility": visibility})

	if q.Type != nil {
		sb = sb.Where(squirrel.Eq{"p.type": string(*q.Type)})
	}
	if q.Status != nil {
		sb = sb.Where(squirrel.Eq{"p.status": string(*q.Status)})
	}

	for _, field := range product.ContainsFields {
		v, ok := q.Contains[field]
		if !ok {
			continue
		}
		sb = sb.Where(squirrel.Like{containsColumns[field]: likePattern(v)})
	}

	if len(q.Tags) > 0 {
		sb = sb.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM product_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.product_id = p.id AND t.name = ANY(?))",
			q.Tags,
		))
	}

	if q.Text != "" {
		pattern := likePattern(q.Text)
		sb = sb.Where(squirrel.Or{
			squirrel.Like{"p.name": pattern},
			squirrel.Like{"p.description": pattern},
			squirrel.Expr(
				"EXISTS (SELECT 1 FROM product_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.product_id = p.id AND t.name LIKE ?)",
				pattern,
			),
		})
	}

	return sb
}

// orderBy returns the ORDER BY clause with an id tie-break for stable pages.
func orderBy(q product.Query) (string, error) {
	col, ok := sortColumns[q.SortBy]
	if !ok {
		if q.SortBy != "" {
			return "", fmt.Errorf("invalid sort field: %s", q.SortBy)
		}
		col = sortColumns[product.SortUpdatedAt]
	}
	dir := "DESC"
	if q.SortOrder == product.SortAsc {
		dir = "ASC"
	}
	return fmt.Sprintf("%s %s, p.id %s", col, dir, dir), nil
}

// likePattern escapes LIKE metacharacters and wraps s for substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
