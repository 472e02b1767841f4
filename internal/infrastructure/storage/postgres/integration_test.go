package postgres_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/id"
	"datacatalog/internal/core/security"
	"datacatalog/internal/domain"
	"datacatalog/internal/domain/audit"
	"datacatalog/internal/domain/auth"
	"datacatalog/internal/domain/product"
	"datacatalog/internal/infrastructure/storage/postgres"
	"datacatalog/internal/infrastructure/storage/postgres/audit_repo"
	"datacatalog/internal/infrastructure/storage/postgres/auth_repo"
	"datacatalog/internal/infrastructure/storage/postgres/product_repo"
	"datacatalog/internal/infrastructure/storage/postgres/testhelper"
)

type env struct {
	txm      *postgres.TxManager
	users    *auth_repo.UserRepo
	products *product_repo.ProductRepo
	tags     *product_repo.TagRepo
	audit    *audit_repo.AuditRepo
	svc      *product.Service
}

func setup(t *testing.T) *env {
	t.Helper()
	_, txm := testhelper.SetupTestDB(t)

	auditRepo, err := audit_repo.NewAuditRepo(txm, 0)
	require.NoError(t, err)

	e := &env{
		txm:      txm,
		users:    auth_repo.NewUserRepo(txm),
		products: product_repo.NewProductRepo(txm),
		tags:     product_repo.NewTagRepo(txm),
		audit:    auditRepo,
	}
	e.svc = product.NewService(product.ServiceConfig{
		Repo:      e.products,
		Tags:      e.tags,
		Recorder:  audit.NewRecorder(auditRepo),
		TxManager: txm,
	})
	return e
}

func (e *env) user(t *testing.T, email string, role security.Role) *auth.User {
	t.Helper()
	u := auth.NewUser(email, "", "", role)
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func TestProductLifecycle(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	owner := e.user(t, "owner@example.com", security.RoleUser)

	created, err := e.svc.Create(ctx, owner.Actor(), product.Input{
		Name:       "Tablero de cobranza",
		Type:       "DASHBOARD",
		Status:     "ACTIVE",
		Visibility: "PUBLIC",
		EPS:        "SEDAPAL",
		Tags:       []string{"Tarifas", "Comercial"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Comercial", "Tarifas"}, created.TagNames())
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, "owner@example.com", created.CreatedBy.Email)

	updated, err := e.svc.Update(ctx, owner.Actor(), created.ID, product.Input{
		Name:       "Tablero de cobranza",
		Type:       "DASHBOARD",
		Status:     "ACTIVE",
		Visibility: "PUBLIC",
		Tags:       []string{"Tarifas", "Calidad"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Calidad", "Tarifas"}, updated.TagNames())
	assert.Nil(t, updated.EPS)

	tags, err := e.tags.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 3, "tags are never deleted")

	admin := e.user(t, "admin@example.com", security.RoleAdmin)
	require.NoError(t, e.svc.Delete(ctx, admin.Actor(), created.ID))

	_, err = e.products.GetByID(ctx, created.ID)
	assert.True(t, apperror.IsNotFound(err))

	entries, total, err := e.audit.List(ctx, audit.Filter{Pagination: domain.Pagination{Page: 1, PageSize: 20}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, audit.ActionDelete, entries[0].Action)
	assert.Nil(t, entries[0].ProductID)
	assert.Equal(t, "admin@example.com", entries[0].User.Email)
}

func TestAuditFailureRollsBack(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	owner := e.user(t, "owner@example.com", security.RoleUser)

	failing := product.NewService(product.ServiceConfig{
		Repo:      e.products,
		Tags:      e.tags,
		Recorder:  audit.NewRecorder(failingAudit{}),
		TxManager: e.txm,
	})
	_, err := failing.Create(ctx, owner.Actor(), product.Input{
		Name: "Nunca", Type: "TOOL", Status: "ACTIVE", Visibility: "PUBLIC", Tags: []string{"Nueva"},
	})
	require.Error(t, err)

	items, total, err := e.products.List(ctx, product.Query{
		Visibility: security.AllVisibilities, Limit: 20, SortBy: product.SortUpdatedAt,
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)

	tags, err := e.tags.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags, "tag upsert rolled back with the product")
}

func TestDeleteAuditFailureKeepsProduct(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	admin := e.user(t, "admin@example.com", security.RoleAdmin)

	created, err := e.svc.Create(ctx, admin.Actor(), product.Input{
		Name: "Permanece", Type: "REPORT", Status: "ACTIVE", Visibility: "PUBLIC", Tags: []string{"Calidad"},
	})
	require.NoError(t, err)

	failing := product.NewService(product.ServiceConfig{
		Repo:      e.products,
		Tags:      e.tags,
		Recorder:  audit.NewRecorder(failingAudit{}),
		TxManager: e.txm,
	})
	require.Error(t, failing.Delete(ctx, admin.Actor(), created.ID))

	got, err := e.svc.Get(ctx, admin.Actor(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Permanece", got.Name)
	assert.Equal(t, []string{"Calidad"}, got.TagNames())

	_, total, err := e.audit.List(ctx, audit.Filter{Pagination: domain.Pagination{Page: 1, PageSize: 20}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

type failingAudit struct{}

func (failingAudit) Append(context.Context, *audit.Entry) error { return errors.New("audit down") }
func (failingAudit) List(context.Context, audit.Filter) ([]audit.Entry, int64, error) {
	return nil, 0, nil
}

func TestListScopesAndPaginates(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	admin := e.user(t, "admin@example.com", security.RoleAdmin)

	for i := 0; i < 25; i++ {
		vis := security.VisibilityPublic
		if i%5 == 0 {
			vis = security.VisibilityCamiYaku
		}
		_, err := e.svc.Create(ctx, admin.Actor(), product.Input{
			Name: "Producto", Type: "REPORT", Status: "ACTIVE", Visibility: vis,
		})
		require.NoError(t, err)
	}

	page, err := e.svc.List(ctx, admin.Actor(), product.ListFilter{Pagination: domain.Pagination{Page: 2, PageSize: 20}})
	require.NoError(t, err)
	assert.EqualValues(t, 25, page.Total)
	assert.Len(t, page.Items, 5)

	user := e.user(t, "user@example.com", security.RoleUser)
	page, err = e.svc.List(ctx, user.Actor(), product.ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 20, page.Total)
	for _, p := range page.Items {
		assert.NotEqual(t, security.VisibilityCamiYaku, p.Visibility)
	}
}

func TestTagUpsertIsIdempotent(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	first, err := e.tags.Upsert(ctx, []string{"Agua Potable", "Saneamiento"})
	require.NoError(t, err)
	second, err := e.tags.Upsert(ctx, []string{"Saneamiento", "Agua Potable"})
	require.NoError(t, err)

	assert.Equal(t, first[0].ID, second[1].ID)
	assert.Equal(t, first[1].ID, second[0].ID)
}

func TestAuditCompressionRoundTrip(t *testing.T) {
	_, txm := testhelper.SetupTestDB(t)
	repo, err := audit_repo.NewAuditRepo(txm, 32)
	require.NoError(t, err)
	ctx := context.Background()

	diff := `{"description":"` + strings.Repeat("x", 2048) + `"}`
	entry := &audit.Entry{
		Entity: audit.EntityProduct, EntityID: id.New().String(),
		Action: audit.ActionUpdate, UserID: id.New(), Diff: []byte(diff),
	}
	require.NoError(t, repo.Append(ctx, entry))

	entries, _, err := repo.List(ctx, audit.Filter{Pagination: domain.Pagination{Page: 1, PageSize: 10}})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.JSONEq(t, diff, string(entries[0].Diff))
}

func TestUserRepo(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	u := e.user(t, "Mixed@Example.com", security.RoleCamiYaku)

	got, err := e.users.GetByEmail(ctx, "MIXED@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	err = e.users.Create(ctx, auth.NewUser("mixed@example.com", "", "", security.RoleUser))
	assert.True(t, apperror.IsDuplicate(err))

	_, err = e.svc.Create(ctx, u.Actor(), product.Input{Name: "P", Type: "FORM", Status: "DRAFT", Visibility: "PUBLIC"})
	require.NoError(t, err)

	list, err := e.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.EqualValues(t, 1, list[0].ProductCount)

	err = e.users.Delete(ctx, u.ID)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestIdempotencyStore(t *testing.T) {
	_, txm := testhelper.SetupTestDB(t)
	store := postgres.NewIdempotencyStore(txm, time.Hour)
	ctx := context.Background()

	replay, err := store.AcquireKey(ctx, "k1", "u1", "POST /api/v1/products", "h1")
	require.NoError(t, err)
	assert.Nil(t, replay)

	_, err = store.AcquireKey(ctx, "k1", "u1", "POST /api/v1/products", "h1")
	assert.Equal(t, apperror.CodeIdempotency, mustCode(t, err))

	_, err = store.AcquireKey(ctx, "k1", "u1", "POST /api/v1/products", "other")
	assert.Error(t, err)

	require.NoError(t, store.CompleteKey(ctx, "k1", 201, "application/json", []byte(`{"id":"x"}`)))
	replay, err = store.AcquireKey(ctx, "k1", "u1", "POST /api/v1/products", "h1")
	require.NoError(t, err)
	require.NotNil(t, replay)
	assert.Equal(t, 201, replay.StatusCode)
	assert.JSONEq(t, `{"id":"x"}`, string(replay.Body))
}

func mustCode(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return appErr.Code
}
