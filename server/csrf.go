package server

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-signin-gate/gate"
	apperrors "github.com/jrsteele09/go-signin-gate/internal/errors"
)

const (
	csrfFormField = "csrfToken"
	csrfHeader    = "X-CSRF-Token"
)

// csrfIssuer signs double-submit CSRF tokens. The same token is stored in a cookie and
// must be echoed back in the form or header of the state-changing request.
type csrfIssuer struct {
	secret []byte
	expiry time.Duration
}

func newCSRFIssuer(secret string, expiry time.Duration) (*csrfIssuer, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate csrf secret: %w", err)
		}
	}
	return &csrfIssuer{secret: key, expiry: expiry}, nil
}

func (c *csrfIssuer) Issue(now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        generateRandomString(16),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.expiry)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign csrf token: %w", err)
	}
	return signed, nil
}

func (c *csrfIssuer) Verify(token string, now time.Time) error {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !parsed.Valid {
		return apperrors.ErrInvalidCSRFToken
	}
	return nil
}

// checkCSRF verifies the submitted token matches the cookie and carries a valid signature.
func (s *Server) checkCSRF(r *http.Request) error {
	cookie, err := r.Cookie(gate.CSRFCookieNameFor(s.production))
	if err != nil || cookie.Value == "" {
		return apperrors.ErrInvalidCSRFToken
	}
	submitted := r.Header.Get(csrfHeader)
	if submitted == "" {
		submitted = r.FormValue(csrfFormField)
	}
	if submitted == "" || submitted != cookie.Value {
		return apperrors.ErrInvalidCSRFToken
	}
	return s.csrf.Verify(submitted, s.now())
}

// csrfToken returns the token already held by the client, issuing and setting a new one
// when it is missing or no longer valid.
func (s *Server) csrfToken(w http.ResponseWriter, r *http.Request) (string, error) {
	name := gate.CSRFCookieNameFor(s.production)
	if c, err := r.Cookie(name); err == nil && c.Value != "" {
		if s.csrf.Verify(c.Value, s.now()) == nil {
			return c.Value, nil
		}
	}
	token, err := s.csrf.Issue(s.now())
	if err != nil {
		return "", err
	}
	s.setCookie(w, name, token, s.config.GetCSRFTokenExpiry())
	return token, nil
}
