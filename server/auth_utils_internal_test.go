package server

import (
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-signin-gate/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestSafeCallbackPath(t *testing.T) {
	r := httptest.NewRequest("GET", "http://app.example.com/login", nil)

	tests := []struct {
		target string
		want   string
	}{
		{target: "", want: "/"},
		{target: "/secure", want: "/secure"},
		{target: "/secure?tab=1", want: "/secure?tab=1"},
		{target: "http://app.example.com/secure", want: "/secure"},
		{target: "https://app.example.com/secure", want: "/"},
		{target: "http://evil.example.com/secure", want: "/"},
		{target: "//evil.example.com/secure", want: "/"},
		{target: "/\\evil.example.com", want: "/"},
		{target: "secure", want: "/"},
		{target: "javascript:alert(1)", want: "/"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			require.Equal(t, tt.want, safeCallbackPath(r, tt.target, "/"))
		})
	}
}

func TestCSRFIssuer(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer, err := newCSRFIssuer("secret", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue(now)
	require.NoError(t, err)
	require.NoError(t, issuer.Verify(token, now.Add(30*time.Minute)))

	err = issuer.Verify(token, now.Add(2*time.Hour))
	require.ErrorIs(t, err, apperrors.ErrInvalidCSRFToken)

	other, err := newCSRFIssuer("another-secret", time.Hour)
	require.NoError(t, err)
	require.ErrorIs(t, other.Verify(token, now), apperrors.ErrInvalidCSRFToken)

	require.ErrorIs(t, issuer.Verify("not-a-token", now), apperrors.ErrInvalidCSRFToken)
}

func TestCSRFIssuer_RandomSecretWhenUnset(t *testing.T) {
	a, err := newCSRFIssuer("", time.Hour)
	require.NoError(t, err)
	b, err := newCSRFIssuer("", time.Hour)
	require.NoError(t, err)

	token, err := a.Issue(time.Now())
	require.NoError(t, err)
	require.NoError(t, a.Verify(token, time.Now()))
	require.Error(t, b.Verify(token, time.Now()))
}

func TestHumanDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 30 * time.Second, want: "less than a minute"},
		{in: time.Minute, want: "1 minute"},
		{in: 45 * time.Minute, want: "45 minutes"},
		{in: 2 * time.Hour, want: "2 hours"},
		{in: time.Hour + 5*time.Minute, want: "1 hour 5 minutes"},
		{in: 24 * time.Hour, want: "1 day"},
		{in: 30*24*time.Hour - time.Hour, want: "29 days 23 hours"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, humanDuration(tt.in), tt.in.String())
	}
}
