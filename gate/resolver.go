package gate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-signin-gate/internal/errors"
)

// SessionValidator checks the session carried by a request's cookies.
type SessionValidator interface {
	ValidateSession(ctx context.Context, r *http.Request) ValidationResult
}

// HTTPSessionValidator asks the session introspection endpoint about the request's
// session, forwarding the original Cookie header.
type HTTPSessionValidator struct {
	client   *http.Client
	endpoint string
}

var _ SessionValidator = (*HTTPSessionValidator)(nil)

// NewHTTPSessionValidator creates a validator for the absolute session endpoint URL.
// The endpoint is fixed at construction and never derived from request headers.
func NewHTTPSessionValidator(client *http.Client, endpoint string) *HTTPSessionValidator {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSessionValidator{client: client, endpoint: endpoint}
}

func (v *HTTPSessionValidator) ValidateSession(ctx context.Context, r *http.Request) ValidationResult {
	if v.endpoint == "" {
		return invalid(fmt.Errorf("session endpoint is not configured"))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint, nil)
	if err != nil {
		return invalid(fmt.Errorf("build session request: %w", err))
	}
	req.Header.Set("Cookie", r.Header.Get("Cookie"))
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return invalid(fmt.Errorf("fetch session: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return invalid(fmt.Errorf("HTTP %d: failed to fetch session", resp.StatusCode))
	}

	var body struct {
		User    *SessionUser `json:"user"`
		Expires time.Time    `json:"expires"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return invalid(fmt.Errorf("decode session: %w", err))
	}
	if body.User == nil || body.User.ID == "" {
		return invalid(apperrors.ErrInvalidSession)
	}

	return ValidationResult{
		Valid: true,
		Session: &Session{
			User:    *body.User,
			Expires: body.Expires,
		},
	}
}

func invalid(err error) ValidationResult {
	return ValidationResult{Valid: false, Err: err}
}

// Origin returns scheme://host of the request as seen by the client.
func Origin(r *http.Request) string {
	return Scheme(r) + "://" + r.Host
}

// Scheme returns "https" for TLS or proxied-TLS requests, "http" otherwise.
func Scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return strings.ToLower(strings.TrimSpace(strings.Split(scheme, ",")[0]))
	}
	return "http"
}

// RequestURL rebuilds the absolute URL the client requested.
func RequestURL(r *http.Request) string {
	return Origin(r) + r.URL.RequestURI()
}
