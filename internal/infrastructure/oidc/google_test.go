package oidc

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zitadel/oidc/v3/pkg/oidc"
)

func TestIdentityFromClaims(t *testing.T) {
	claims := &oidc.IDTokenClaims{}
	claims.Subject = "10987"
	claims.Email = " ada@example.com "
	claims.EmailVerified = true
	claims.Name = "Ada"

	ident, err := identityFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, ProviderGoogle, ident.Provider)
	assert.Equal(t, "10987", ident.Subject)
	assert.Equal(t, "ada@example.com", ident.Email)
	assert.Equal(t, "Ada", ident.Name)
}

func TestIdentityFromClaims_Rejects(t *testing.T) {
	_, err := identityFromClaims(nil)
	assert.Error(t, err)

	noEmail := &oidc.IDTokenClaims{}
	noEmail.EmailVerified = true
	_, err = identityFromClaims(noEmail)
	assert.Error(t, err)

	unverified := &oidc.IDTokenClaims{}
	unverified.Email = "ada@example.com"
	_, err = identityFromClaims(unverified)
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestVerifyState(t *testing.T) {
	state, err := newState()
	require.NoError(t, err)
	assert.NotEmpty(t, state)

	other, err := newState()
	require.NoError(t, err)
	assert.NotEqual(t, state, other)

	r := httptest.NewRequest(http.MethodGet, "/auth/google/callback", nil)
	assert.Error(t, verifyState(r, state), "missing cookie")

	r.AddCookie(&http.Cookie{Name: stateCookie, Value: state})
	assert.NoError(t, verifyState(r, state))
	assert.Error(t, verifyState(r, other))
	assert.Error(t, verifyState(r, ""))
}
