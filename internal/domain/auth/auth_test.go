package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/id"
	"datacatalog/internal/core/security"
	"datacatalog/internal/domain/audit"
	"datacatalog/internal/domain/auth"
	"datacatalog/internal/infrastructure/storage/memory"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fixture struct {
	store *memory.Store
	jwt   *auth.JWTService
	svc   *auth.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	jwtSvc := auth.NewJWTService(auth.DefaultJWTConfig(testSecret))
	svc := auth.NewService(store.Users(), store.Tokens(), audit.NewRecorder(store.Audit()), store, jwtSvc, auth.DefaultServiceConfig())
	return &fixture{store: store, jwt: jwtSvc, svc: svc}
}

func (f *fixture) addUser(t *testing.T, email, password string, role security.Role) *auth.User {
	t.Helper()
	hash, err := auth.HashPassword(password, 4)
	require.NoError(t, err)
	u := auth.NewUser(email, "", hash, role)
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u
}

func TestJWT_RoundTrip(t *testing.T) {
	svc := auth.NewJWTService(auth.DefaultJWTConfig(testSecret))
	u := auth.NewUser("Ana@Example.com", "Ana", "", security.RoleCamiYaku)

	token, exp, err := svc.GenerateAccessToken(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, time.Minute)

	uc, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), uc.UserID)
	assert.Equal(t, "ana@example.com", uc.Email)
	assert.Equal(t, "Ana", uc.Name)
	assert.Equal(t, "CAMI_YAKU", uc.Role)
}

func TestJWT_RejectsForeignSecret(t *testing.T) {
	a := auth.NewJWTService(auth.DefaultJWTConfig(testSecret))
	b := auth.NewJWTService(auth.DefaultJWTConfig("ffffffffffffffffffffffffffffffff"))

	token, _, err := a.GenerateAccessToken(auth.NewUser("x@example.com", "", "", security.RoleUser))
	require.NoError(t, err)
	_, err = b.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWT_RejectsExpired(t *testing.T) {
	cfg := auth.DefaultJWTConfig(testSecret)
	cfg.AccessTokenTTL = -time.Minute
	svc := auth.NewJWTService(cfg)

	token, _, err := svc.GenerateAccessToken(auth.NewUser("x@example.com", "", "", security.RoleUser))
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestNewUser_DefaultsName(t *testing.T) {
	u := auth.NewUser("maria.lopez@example.com", "", "", security.RoleUser)
	require.NotNil(t, u.Name)
	assert.Equal(t, "maria.lopez", *u.Name)
	assert.Nil(t, u.PasswordHash)
}

func TestLogin_RecordsAudit(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "admin@example.com", "Password123!", security.RoleAdmin)

	tokens, got, err := f.svc.Login(context.Background(), auth.Credentials{Email: "ADMIN@example.com", Password: "Password123!"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)

	entries := f.store.Audit().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionLogin, entries[0].Action)
	assert.Equal(t, audit.EntityUser, entries[0].Entity)
	assert.Equal(t, u.ID.String(), entries[0].EntityID)
	assert.Equal(t, u.ID, entries[0].UserID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "user@example.com", "Password123!", security.RoleUser)
	ctx := context.Background()

	_, _, err := f.svc.Login(ctx, auth.Credentials{Email: "user@example.com", Password: "wrong-password"})
	assert.True(t, apperror.IsUnauthorized(err))

	_, _, err = f.svc.Login(ctx, auth.Credentials{Email: "nobody@example.com", Password: "Password123!"})
	assert.True(t, apperror.IsUnauthorized(err))

	_, _, err = f.svc.Login(ctx, auth.Credentials{})
	assert.True(t, apperror.IsValidation(err))

	assert.Empty(t, f.store.Audit().Entries())
}

func TestLogin_FederatedAccountHasNoPassword(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Users().Create(context.Background(), auth.NewUser("g@example.com", "", "", security.RoleUser)))

	_, _, err := f.svc.Login(context.Background(), auth.Credentials{Email: "g@example.com", Password: "anything"})
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestLoginFederated_ProvisionsUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, u, err := f.svc.LoginFederated(ctx, auth.FederatedIdentity{Provider: "google", Email: "New.Person@gmail.com"})
	require.NoError(t, err)
	assert.Equal(t, security.RoleUser, u.Role)
	assert.Equal(t, "new.person@gmail.com", u.Email)
	assert.Equal(t, "new.person", *u.Name)

	_, again, err := f.svc.LoginFederated(ctx, auth.FederatedIdentity{Provider: "google", Email: "new.person@gmail.com", Name: "Other"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	n, err := f.store.Users().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Len(t, f.store.Audit().Entries(), 2)
}

func TestLoginFederated_RequiresEmail(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.LoginFederated(context.Background(), auth.FederatedIdentity{Provider: "google"})
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestRefreshToken_Rotates(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "user@example.com", "Password123!", security.RoleUser)
	ctx := context.Background()

	first, _, err := f.svc.Login(ctx, auth.Credentials{Email: "user@example.com", Password: "Password123!"})
	require.NoError(t, err)

	second, err := f.svc.RefreshToken(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = f.svc.RefreshToken(ctx, first.RefreshToken)
	assert.True(t, apperror.IsUnauthorized(err), "used token is revoked")

	_, err = f.svc.RefreshToken(ctx, "garbage")
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestLogout_RevokesTokens(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "user@example.com", "Password123!", security.RoleUser)
	ctx := context.Background()

	tokens, _, err := f.svc.Login(ctx, auth.Credentials{Email: "user@example.com", Password: "Password123!"})
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, u.ID))

	_, err = f.svc.RefreshToken(ctx, tokens.RefreshToken)
	assert.True(t, apperror.IsUnauthorized(err))
}

type mapCache map[id.ID]security.Role

func (m mapCache) Get(k id.ID) (security.Role, bool) { r, ok := m[k]; return r, ok }
func (m mapCache) Add(k id.ID, r security.Role)      { m[k] = r }
func (m mapCache) Remove(k id.ID)                    { delete(m, k) }

func TestRoleResolver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.addUser(t, "user@example.com", "Password123!", security.RoleUser)
	cache := mapCache{}
	resolver := auth.NewRoleResolver(f.store.Users(), cache)

	role, err := resolver.CurrentRole(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, security.RoleUser, role)
	assert.Equal(t, security.RoleUser, cache[u.ID])

	u.Role = security.RoleAdmin
	require.NoError(t, f.store.Users().Update(ctx, u))

	role, _ = resolver.CurrentRole(ctx, u.ID)
	assert.Equal(t, security.RoleUser, role, "served from cache until forgotten")

	resolver.Forget(u.ID)
	role, err = resolver.CurrentRole(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, security.RoleAdmin, role)

	_, err = resolver.CurrentRole(ctx, id.New())
	assert.True(t, apperror.IsUnauthorized(err))
}

type failingUsers struct{ auth.UserRepository }

func (failingUsers) GetByID(context.Context, id.ID) (*auth.User, error) {
	return nil, errors.New("db down")
}

func TestRoleResolver_StorageError(t *testing.T) {
	_, err := auth.NewRoleResolver(failingUsers{}, nil).CurrentRole(context.Background(), id.New())
	require.Error(t, err)
	assert.False(t, apperror.IsUnauthorized(err))
}
