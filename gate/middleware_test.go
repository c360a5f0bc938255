package gate_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jrsteele09/go-signin-gate/gate"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// stubValidator answers every lookup with a fixed result and counts calls.
type stubValidator struct {
	result gate.ValidationResult
	calls  int
	panics bool
}

func (s *stubValidator) ValidateSession(_ context.Context, _ *http.Request) gate.ValidationResult {
	s.calls++
	if s.panics {
		panic("boom")
	}
	return s.result
}

// recordingClearer records whether cookies were cleared.
type recordingClearer struct {
	cleared int
}

func (c *recordingClearer) ClearCookies(w http.ResponseWriter) {
	c.cleared++
	http.SetCookie(w, &http.Cookie{Name: gate.SessionCookieName, Value: "", MaxAge: -1})
}

func validSession(hasSetPassword bool) gate.ValidationResult {
	return gate.ValidationResult{
		Valid:   true,
		Session: &gate.Session{User: gate.SessionUser{ID: "1", HasSetPassword: hasSetPassword}},
	}
}

type fixture struct {
	validator *stubValidator
	clearer   *recordingClearer
	handler   http.Handler
	reached   *bool
	seen      **gate.Session
}

func newFixture(t *testing.T, matcher gate.Matcher, result gate.ValidationResult) *fixture {
	t.Helper()
	reached := false
	var seen *gate.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		seen, _ = gate.SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	v := &stubValidator{result: result}
	c := &recordingClearer{}
	mw := gate.NewMiddleware(matcher, v, c, zerolog.New(io.Discard))
	return &fixture{validator: v, clearer: c, handler: mw.Wrap(next), reached: &reached, seen: &seen}
}

func (f *fixture) do(target, token string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		r.AddCookie(&http.Cookie{Name: gate.SessionCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, r)
	return rec
}

func TestMiddleware_SecureWithoutCookie(t *testing.T) {
	f := newFixture(t, gate.AllExceptAssets(), gate.ValidationResult{})

	rec := f.do("http://example.com/secure", "")

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login?callbackUrl="+url.QueryEscape("http://example.com/secure"), rec.Header().Get("Location"))
	require.False(t, *f.reached)
	require.Zero(t, f.validator.calls)
}

func TestMiddleware_HomeWithoutPassword(t *testing.T) {
	f := newFixture(t, gate.AllExceptAssets(), validSession(false))

	rec := f.do("http://example.com/", "tok")

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/set-password", rec.Header().Get("Location"))
	require.Equal(t, 1, f.validator.calls)
}

func TestMiddleware_SetPasswordWithPassword(t *testing.T) {
	f := newFixture(t, gate.AllExceptAssets(), validSession(true))

	rec := f.do("http://example.com/set-password", "tok")

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestMiddleware_StaleTokenClearsCookies(t *testing.T) {
	f := newFixture(t, gate.AllExceptAssets(), gate.ValidationResult{Valid: false})

	rec := f.do("http://example.com/secure", "stale")

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login?callbackUrl="+url.QueryEscape("http://example.com/secure"), rec.Header().Get("Location"))
	require.Equal(t, 1, f.clearer.cleared)
	require.NotEmpty(t, rec.Result().Cookies())
}

func TestMiddleware_AllowInjectsSession(t *testing.T) {
	f := newFixture(t, gate.AllExceptAssets(), validSession(true))

	rec := f.do("http://example.com/secure", "tok")

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, *f.reached)
	require.NotNil(t, *f.seen)
	require.Equal(t, "1", (*f.seen).User.ID)
}

func TestMiddleware_UnmatchedPathsPassThrough(t *testing.T) {
	f := newFixture(t, gate.AllExceptAssets(), gate.ValidationResult{})

	rec := f.do("http://example.com/api/auth/session", "stale")

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, *f.reached)
	require.Zero(t, f.validator.calls)
	require.Zero(t, f.clearer.cleared)
}

func TestMiddleware_SecureOnlyMatcher(t *testing.T) {
	f := newFixture(t, gate.SecureOnly(), gate.ValidationResult{})

	rec := f.do("http://example.com/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do("http://example.com/secure/inner", "")
	require.Equal(t, http.StatusFound, rec.Code)
}

func TestMiddleware_PanicRedirectsToLogin(t *testing.T) {
	f := newFixture(t, gate.AllExceptAssets(), gate.ValidationResult{})
	f.validator.panics = true

	rec := f.do("http://example.com/secure", "tok")

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
	require.False(t, *f.reached)
}

func TestMiddleware_Idempotent(t *testing.T) {
	f := newFixture(t, gate.AllExceptAssets(), validSession(false))

	first := f.do("http://example.com/", "tok")
	second := f.do("http://example.com/", "tok")

	require.Equal(t, first.Code, second.Code)
	require.Equal(t, first.Header().Get("Location"), second.Header().Get("Location"))
}
