package googleauth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-signin-gate/googleauth"
	apperrors "github.com/jrsteele09/go-signin-gate/internal/errors"
	"github.com/stretchr/testify/require"
)

const (
	testClientID = "client-123"
	testKeyID    = "test-key"
)

// fakeIssuer is a minimal OpenID provider: discovery, JWKS and token endpoints.
type fakeIssuer struct {
	srv          *httptest.Server
	key          *rsa.PrivateKey
	idTokenNonce string
	gotVerifier  string
}

func newFakeIssuer(t *testing.T) *fakeIssuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	f := &fakeIssuer{key: key}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"issuer":                                f.srv.URL,
			"authorization_endpoint":                f.srv.URL + "/auth",
			"token_endpoint":                        f.srv.URL + "/token",
			"jwks_uri":                              f.srv.URL + "/jwks",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("GET /jwks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"keys": []map[string]string{{
			"kty": "RSA",
			"kid": testKeyID,
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}}})
	})
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		f.gotVerifier = r.PostForm.Get("code_verifier")
		if r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			writeJSON(w, map[string]string{"error": "invalid_grant"})
			return
		}
		writeJSON(w, map[string]any{
			"access_token": "access",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     f.signIDToken(t),
		})
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeIssuer) signIDToken(t *testing.T) string {
	now := time.Now()
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, jwtlib.MapClaims{
		"iss":            f.srv.URL,
		"aud":            testClientID,
		"sub":            "google-sub-1",
		"iat":            now.Unix(),
		"exp":            now.Add(time.Hour).Unix(),
		"nonce":          f.idTokenNonce,
		"email":          "jane@example.com",
		"email_verified": true,
		"name":           "Jane Doe",
		"picture":        "https://img.example.com/jane.png",
	})
	token.Header["kid"] = testKeyID
	signed, err := token.SignedString(f.key)
	require.NoError(t, err)
	return signed
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newProvider(f *fakeIssuer) *googleauth.Provider {
	return googleauth.New(googleauth.Config{
		Issuer:       f.srv.URL,
		ClientID:     testClientID,
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/api/auth/callback/google",
	})
}

func TestProvider_AuthCodeURL(t *testing.T) {
	f := newFakeIssuer(t)
	p := newProvider(f)

	raw, err := p.AuthCodeURL(context.Background(), "state-1", "nonce-1", "verifier-with-enough-entropy-0123456789")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, f.srv.URL+"/auth", u.Scheme+"://"+u.Host+u.Path)

	q := u.Query()
	require.Equal(t, "state-1", q.Get("state"))
	require.Equal(t, "nonce-1", q.Get("nonce"))
	require.Equal(t, "S256", q.Get("code_challenge_method"))
	require.NotEmpty(t, q.Get("code_challenge"))
	require.Equal(t, testClientID, q.Get("client_id"))
	require.Contains(t, q.Get("scope"), "openid")
}

func TestProvider_Exchange(t *testing.T) {
	f := newFakeIssuer(t)
	p := newProvider(f)
	ctx := context.Background()

	t.Run("verified profile", func(t *testing.T) {
		f.idTokenNonce = "nonce-1"
		profile, err := p.Exchange(ctx, "good-code", "the-verifier", "nonce-1")
		require.NoError(t, err)
		require.Equal(t, "google-sub-1", profile.Subject)
		require.Equal(t, "jane@example.com", profile.Email)
		require.True(t, profile.EmailVerified)
		require.Equal(t, "Jane Doe", profile.Name)
		require.Equal(t, "the-verifier", f.gotVerifier)
	})

	t.Run("nonce mismatch", func(t *testing.T) {
		f.idTokenNonce = "someone-elses-nonce"
		_, err := p.Exchange(ctx, "good-code", "the-verifier", "nonce-1")
		require.ErrorIs(t, err, apperrors.ErrInvalidNonce)
	})

	t.Run("bad code", func(t *testing.T) {
		_, err := p.Exchange(ctx, "bad-code", "the-verifier", "nonce-1")
		require.Error(t, err)
	})
}

func TestProvider_DiscoveryFailure(t *testing.T) {
	p := googleauth.New(googleauth.Config{Issuer: "http://127.0.0.1:1", ClientID: testClientID})
	_, err := p.AuthCodeURL(context.Background(), "s", "n", "v")
	require.Error(t, err)
}
