package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idTokenFor(t *testing.T, issuer, audience, subject string) string {
	t.Helper()
	claims := &idTokenClaims{
		Name:  "Recepción",
		Email: "front@gym.test",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer + "/",
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("provider-key"))
	require.NoError(t, err)
	return signed
}

func TestAuthURLCarriesPKCEAndAudience(t *testing.T) {
	p := NewProvider(ProviderConfig{Domain: "gym.eu.auth0.com", ClientID: "cid", CallbackURL: "http://localhost:8080/auth/callback"})

	raw, verifier, err := p.AuthURL("state-1")
	require.NoError(t, err)
	require.NotEmpty(t, verifier)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "gym.eu.auth0.com", u.Host)
	assert.Equal(t, "/authorize", u.Path)

	q := u.Query()
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "openid profile email", q.Get("scope"))
	assert.Equal(t, "https://gym.eu.auth0.com/api/v2/", q.Get("audience"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, challengeFor(verifier), q.Get("code_challenge"))
}

func TestExchangeAndProfile(t *testing.T) {
	var issuer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "code-1", r.PostForm.Get("code"))
		assert.Equal(t, "verifier-1", r.PostForm.Get("code_verifier"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-1",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     idTokenFor(t, issuer, "cid", "auth0|42"),
		})
	}))
	defer srv.Close()
	issuer = srv.URL

	p := NewProvider(ProviderConfig{Domain: srv.URL, ClientID: "cid", ClientSecret: "secret"})
	tokens, err := p.Exchange(context.Background(), "code-1", "verifier-1")
	require.NoError(t, err)
	assert.Equal(t, "access-1", tokens.AccessToken)
	assert.False(t, tokens.Expiry.IsZero())

	profile, err := p.Profile(tokens.IDToken)
	require.NoError(t, err)
	assert.Equal(t, "auth0|42", profile.Subject)
	assert.Equal(t, "Recepción", profile.Name)
	assert.Equal(t, "front@gym.test", profile.Email)
}

func TestProfileRejectsForeignAudience(t *testing.T) {
	p := NewProvider(ProviderConfig{Domain: "gym.auth0.com", ClientID: "cid"})

	_, err := p.Profile(idTokenFor(t, "https://gym.auth0.com", "other-app", "auth0|1"))
	assert.ErrorIs(t, err, ErrInvalidIDToken)

	_, err = p.Profile(idTokenFor(t, "https://evil.example", "cid", "auth0|1"))
	assert.ErrorIs(t, err, ErrInvalidIDToken)

	_, err = p.Profile("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidIDToken)
}

func TestLogoutURL(t *testing.T) {
	p := NewProvider(ProviderConfig{Domain: "gym.auth0.com", ClientID: "cid"})
	assert.Equal(t,
		"https://gym.auth0.com/v2/logout?client_id=cid&returnTo=http%3A%2F%2Flocalhost%3A8080",
		p.LogoutURL("http://localhost:8080"))
}

func TestSessionCookieRoundTrip(t *testing.T) {
	signer := NewCookieSigner("0123456789abcdef0123456789abcdef")

	value, err := signer.SignSession("sid-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	sid, err := signer.ParseSession(value)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", sid)

	_, err = NewCookieSigner("another-secret-another-secret-xx").ParseSession(value)
	assert.ErrorIs(t, err, ErrInvalidCookie)

	_, err = signer.ParseSession("")
	assert.ErrorIs(t, err, ErrInvalidCookie)
}

func TestExpiredSessionCookie(t *testing.T) {
	signer := NewCookieSigner("0123456789abcdef0123456789abcdef")
	signer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	value, err := signer.SignSession("sid-1", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = signer.ParseSession(value)
	assert.ErrorIs(t, err, ErrInvalidCookie)
}

func TestFlowCookie(t *testing.T) {
	signer := NewCookieSigner("0123456789abcdef0123456789abcdef")

	value, err := signer.SignFlow(Flow{State: "s", CodeVerifier: "v", ReturnTo: "/pagos"})
	require.NoError(t, err)

	flow, err := signer.ParseFlow(value)
	require.NoError(t, err)
	assert.Equal(t, Flow{State: "s", CodeVerifier: "v", ReturnTo: "/pagos"}, flow)

	// A session cookie is not a flow cookie.
	session, err := signer.SignSession("sid", time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = signer.ParseFlow(session)
	assert.ErrorIs(t, err, ErrInvalidCookie)
}

func TestSealer(t *testing.T) {
	sealer := NewSealer("0123456789abcdef0123456789abcdef")

	sealed, err := sealer.Seal([]byte("access-token"))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "access-token")

	opened, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "access-token", string(opened))

	sealed[len(sealed)-1] ^= 0xff
	_, err = sealer.Open(sealed)
	assert.ErrorIs(t, err, ErrUnsealFailed)

	_, err = NewSealer("other").Open([]byte("short"))
	assert.ErrorIs(t, err, ErrUnsealFailed)
}
