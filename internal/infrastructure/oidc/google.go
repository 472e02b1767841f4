// Package oidc signs users in through Google using the OpenID Connect
// authorization code flow with PKCE.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	httphelper "github.com/zitadel/oidc/v3/pkg/http"
	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"datacatalog/internal/domain/auth"
)

// GoogleIssuer is Google's OpenID issuer.
const GoogleIssuer = "https://accounts.google.com"

// ProviderGoogle names the provider in logs and audit context.
const ProviderGoogle = "google"

const (
	stateCookie = "datacatalog.oidc_state"
	// pkceCookie is the name the relying party stores the code verifier under.
	pkceCookie = "pkce"
)

// ErrEmailNotVerified is returned when the identity provider does not vouch for the email.
var ErrEmailNotVerified = errors.New("identity provider email is not verified")

// Config configures the relying party.
type Config struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	// CookieKey signs and encrypts the PKCE cookie; 32 bytes. Random when empty,
	// which breaks logins spanning a restart or several instances.
	CookieKey    []byte
	SecureCookie bool
}

// Provider wraps the zitadel relying party.
type Provider struct {
	rp           rp.RelyingParty
	secureCookie bool
}

// NewGoogleProvider discovers the issuer and builds the relying party.
func NewGoogleProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Issuer == "" {
		cfg.Issuer = GoogleIssuer
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{oidc.ScopeOpenID, oidc.ScopeProfile, oidc.ScopeEmail}
	}

	key := cfg.CookieKey
	if len(key) == 0 {
		var err error
		if key, err = randomBytes(32); err != nil {
			return nil, fmt.Errorf("failed to generate cookie key: %w", err)
		}
	}

	var cookieOpts []httphelper.CookieHandlerOpt
	if !cfg.SecureCookie {
		cookieOpts = append(cookieOpts, httphelper.WithUnsecure())
	}
	cookieHandler := httphelper.NewCookieHandler(key, key, cookieOpts...)

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx, cfg.Issuer, cfg.ClientID, cfg.ClientSecret, cfg.RedirectURL,
		cfg.Scopes,
		rp.WithCookieHandler(cookieHandler),
		rp.WithPKCE(cookieHandler),
		rp.WithVerifierOpts(rp.WithIssuedAtMaxAge(10*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC relying party: %w", err)
	}

	return &Provider{rp: relyingParty, secureCookie: cfg.SecureCookie}, nil
}

// Begin stores a fresh state in a cookie and returns the authorization URL.
func (p *Provider) Begin(w http.ResponseWriter) (string, error) {
	state, err := newState()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Secure:   p.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	challenge, err := rp.GenerateAndStoreCodeChallenge(w, p.rp)
	if err != nil {
		return "", fmt.Errorf("store code challenge: %w", err)
	}
	return rp.AuthURL(state, p.rp, rp.WithCodeChallenge(challenge)), nil
}

// Complete verifies the state, exchanges the code and returns the identity.
func (p *Provider) Complete(w http.ResponseWriter, r *http.Request) (auth.FederatedIdentity, error) {
	if err := verifyState(r, r.URL.Query().Get("state")); err != nil {
		return auth.FederatedIdentity{}, err
	}
	http.SetCookie(w, &http.Cookie{
		Name: stateCookie, Value: "", Path: "/", Expires: time.Unix(0, 0),
		HttpOnly: true, Secure: p.secureCookie, SameSite: http.SameSiteLaxMode,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		return auth.FederatedIdentity{}, errors.New("missing authorization code")
	}

	tokens, err := rp.CodeExchange[*oidc.IDTokenClaims](r.Context(), code, p.rp, rp.WithCodeVerifier(codeVerifier(r, p.rp)))
	if err != nil {
		return auth.FederatedIdentity{}, fmt.Errorf("code exchange: %w", err)
	}
	return identityFromClaims(tokens.IDTokenClaims)
}

// codeVerifier reads the PKCE verifier stored by Begin.
func codeVerifier(r *http.Request, relyingParty rp.RelyingParty) string {
	v, err := relyingParty.CookieHandler().CheckCookie(r, pkceCookie)
	if err != nil {
		return ""
	}
	return v
}

func identityFromClaims(claims *oidc.IDTokenClaims) (auth.FederatedIdentity, error) {
	if claims == nil {
		return auth.FederatedIdentity{}, errors.New("no id_token claims")
	}
	email := strings.TrimSpace(claims.Email)
	if email == "" {
		return auth.FederatedIdentity{}, errors.New("id_token carries no email")
	}
	if !bool(claims.EmailVerified) {
		return auth.FederatedIdentity{}, ErrEmailNotVerified
	}
	return auth.FederatedIdentity{
		Provider: ProviderGoogle,
		Subject:  claims.Subject,
		Email:    email,
		Name:     claims.Name,
	}, nil
}

func verifyState(r *http.Request, state string) error {
	cookie, err := r.Cookie(stateCookie)
	if err != nil {
		return errors.New("state cookie not found")
	}
	if state == "" || cookie.Value != state {
		return errors.New("invalid state")
	}
	return nil
}

func newState() (string, error) {
	b, err := randomBytes(32)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func randomBytes(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
