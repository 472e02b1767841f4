package product_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/security"
	"datacatalog/internal/domain"
	"datacatalog/internal/domain/product"
)

func publicQuery() product.Query {
	return product.Query{
		Visibility: []security.Visibility{security.VisibilityPublic},
		Contains:   map[product.Field]string{},
		SortBy:     product.SortUpdatedAt,
		SortOrder:  product.SortDesc,
		Limit:      20,
	}
}

func TestBuildListQueries_CountSharesPredicate(t *testing.T) {
	q := publicQuery()
	typ := product.TypeReport
	q.Type = &typ
	q.Contains[product.FieldEPS] = "EPS1"

	page, count, err := buildListQueries(builder().Select("p.id").From("products p"), q)
	require.NoError(t, err)

	countSQL, countArgs, err := count.ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT COUNT(*) FROM products p WHERE p.visibility IN ($1) AND p.type = $2 AND p.eps LIKE $3",
		countSQL)
	assert.Equal(t, []any{"PUBLIC", "REPORT", "%EPS1%"}, countArgs)

	pageSQL, pageArgs, err := page.ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT p.id FROM products p WHERE p.visibility IN ($1) AND p.type = $2 AND p.eps LIKE $3 ORDER BY p.updated_at DESC, p.id DESC LIMIT 20",
		pageSQL)
	assert.Equal(t, countArgs, pageArgs)
}

func TestApplyPredicate_ScopeIsAndedWithText(t *testing.T) {
	q := publicQuery()
	q.Visibility = []security.Visibility{security.VisibilityPublic, security.VisibilityExternal}
	q.Text = "agua"

	sql, args, err := applyPredicate(builder().Select("p.id").From("products p"), q).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE p.visibility IN ($1,$2) AND (p.name LIKE $3 OR p.description LIKE $4 OR EXISTS (")
	assert.Contains(t, sql, "t.name LIKE $5)")
	assert.Equal(t, []any{"PUBLIC", "EXTERNAL", "%agua%", "%agua%", "%agua%"}, args)
}

func TestApplyPredicate_Tags(t *testing.T) {
	q := publicQuery()
	q.Tags = []string{"Tarifas", "Calidad"}

	sql, args, err := applyPredicate(builder().Select("p.id").From("products p"), q).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "t.name = ANY($2)")
	require.Len(t, args, 2)
	assert.Equal(t, []string{"Tarifas", "Calidad"}, args[1])
}

func TestApplyPredicate_ContainsFieldsInStableOrder(t *testing.T) {
	q := publicQuery()
	q.Contains[product.FieldOwner] = "ops"
	q.Contains[product.FieldRegion] = "Cusco"

	sql, args, err := applyPredicate(builder().Select("p.id").From("products p"), q).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "p.region LIKE $2 AND p.owner LIKE $3")
	assert.Equal(t, []any{"PUBLIC", "%Cusco%", "%ops%"}, args)
}

func TestBuildListQueries_Pagination(t *testing.T) {
	q := publicQuery()
	q.SortBy = product.SortName
	q.SortOrder = product.SortAsc
	q.Offset = 20

	page, _, err := buildListQueries(builder().Select("p.id").From("products p"), q)
	require.NoError(t, err)
	sql, _, err := page.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "ORDER BY p.name ASC, p.id ASC LIMIT 20 OFFSET 20")
}

func TestBuildListQueries_FarPageKeepsOffset(t *testing.T) {
	q := publicQuery()
	q.Offset = domain.Pagination{Page: 1<<62 + 1, PageSize: 20}.Offset()

	page, _, err := buildListQueries(builder().Select("p.id").From("products p"), q)
	require.NoError(t, err)
	sql, _, err := page.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "OFFSET 9223372036854775807")
}

func TestBuildListQueries_RejectsUnknownSort(t *testing.T) {
	q := publicQuery()
	q.SortBy = "password_hash"

	_, _, err := buildListQueries(builder().Select("p.id").From("products p"), q)
	assert.True(t, apperror.IsValidation(err))
}

func TestLikePattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, `%50\%%`, likePattern("50%"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
	assert.Equal(t, `%c:\\d%`, likePattern(`c:\d`))
}
