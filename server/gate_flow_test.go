package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-signin-gate/gate"
	"github.com/jrsteele09/go-signin-gate/sessions"
	"github.com/stretchr/testify/require"
)

func TestGate_NoTokenOnProtectedPathRedirectsToLogin(t *testing.T) {
	h := newHarness(t, testConfig{})

	resp := h.get(t, "/secure")

	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, gate.LoginURL(h.ts.URL+"/secure"), resp.Header.Get("Location"))
	require.Empty(t, resp.Cookies())
}

func TestGate_LoginIsPublic(t *testing.T) {
	h := newHarness(t, testConfig{})

	resp := h.get(t, "/login")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestGate_StaleTokenClearsCookies(t *testing.T) {
	h := newHarness(t, testConfig{})

	resp := h.get(t, "/secure", sessionCookie("no-such-session"))

	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, gate.LoginURL(h.ts.URL+"/secure"), resp.Header.Get("Location"))
	for _, name := range gate.AuthCookieNames {
		c := findCookie(resp, name)
		require.NotNil(t, c, name)
		require.Empty(t, c.Value)
		require.Less(t, c.MaxAge, 0)
	}
}

func TestGate_StaleTokenOnPublicPathClearsCookies(t *testing.T) {
	h := newHarness(t, testConfig{})

	resp := h.get(t, "/login", sessionCookie("no-such-session"))

	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.NotNil(t, findCookie(resp, gate.SessionCookieName))
}

func TestGate_ExpiredSessionIsInvalid(t *testing.T) {
	h := newHarness(t, testConfig{})
	u, _ := h.addUser(t, true)
	require.NoError(t, h.sessions.Create(t.Context(), &sessions.Session{
		Token:   "expired",
		UserID:  u.ID,
		Expires: time.Now().Add(-time.Second),
	}))

	resp := h.get(t, "/secure", sessionCookie("expired"))

	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.NotNil(t, findCookie(resp, gate.SessionCookieName))
}

func TestGate_PasswordNotSet(t *testing.T) {
	h := newHarness(t, testConfig{})
	_, token := h.addUser(t, false)

	tests := []struct {
		path     string
		status   int
		location string
	}{
		{path: "/", status: http.StatusFound, location: "/set-password"},
		{path: "/secure", status: http.StatusFound, location: "/set-password"},
		{path: "/set-password", status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := h.get(t, tt.path, sessionCookie(token))
			require.Equal(t, tt.status, resp.StatusCode)
			require.Equal(t, tt.location, resp.Header.Get("Location"))
		})
	}
}

func TestGate_PasswordSet(t *testing.T) {
	h := newHarness(t, testConfig{})
	_, token := h.addUser(t, true)

	tests := []struct {
		path     string
		status   int
		location string
	}{
		{path: "/", status: http.StatusOK},
		{path: "/secure", status: http.StatusOK},
		{path: "/login", status: http.StatusOK},
		{path: "/set-password", status: http.StatusFound, location: "/"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := h.get(t, tt.path, sessionCookie(token))
			require.Equal(t, tt.status, resp.StatusCode)
			require.Equal(t, tt.location, resp.Header.Get("Location"))
		})
	}
}

func TestGate_SecureCookieNameIsAccepted(t *testing.T) {
	h := newHarness(t, testConfig{})
	_, token := h.addUser(t, true)

	resp := h.get(t, "/secure", &http.Cookie{Name: gate.SecureSessionCookieName, Value: token})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGate_SecureOnlyMatcherLeavesOtherPagesUngated(t *testing.T) {
	h := newHarness(t, testConfig{matcher: gate.MatcherSecure})

	resp := h.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.get(t, "/secure")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, gate.LoginURL(h.ts.URL+"/secure"), resp.Header.Get("Location"))
}

func TestGate_APIPathsAreNotGated(t *testing.T) {
	h := newHarness(t, testConfig{})

	resp := h.get(t, "/api/auth/session", sessionCookie("no-such-session"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Nil(t, findCookie(resp, gate.SessionCookieName))
}

func TestGate_SpoofedHostCannotSupplySession(t *testing.T) {
	h := newHarness(t, testConfig{})

	hostileHits := 0
	hostile := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hostileHits++
		_, _ = w.Write([]byte(`{"user":{"id":"victim","email":"victim@example.com","hasSetPassword":true}}`))
	}))
	defer hostile.Close()

	req, err := http.NewRequest(http.MethodGet, h.ts.URL+"/secure", nil)
	require.NoError(t, err)
	req.Host = hostile.Listener.Addr().String()
	req.AddCookie(sessionCookie("forged"))
	resp, err := h.client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/login?"))
	require.NotContains(t, readBody(t, resp), "victim")
	require.Zero(t, hostileHits)
}
