package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-signin-gate/gate"
	apperrors "github.com/jrsteele09/go-signin-gate/internal/errors"
	"github.com/jrsteele09/go-signin-gate/sessions"
	"github.com/jrsteele09/go-signin-gate/users"
)

// sessionTokenBytes is the entropy of a session cookie value.
const sessionTokenBytes = 32

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func (s *Server) setCookie(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.production,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge > 0 {
		c.MaxAge = int(maxAge.Seconds())
		c.Expires = s.now().Add(maxAge)
	} else {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
	}
	http.SetCookie(w, c)
}

func (s *Server) SetSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	s.setCookie(w, gate.SessionCookieNameFor(s.production), token, expires.Sub(s.now()))
}

func (s *Server) ClearSessionCookie(w http.ResponseWriter) {
	for _, name := range gate.SessionCookieNames {
		s.setCookie(w, name, "", 0)
	}
}

// currentSession resolves the session cookie against the session store. Expired
// records are deleted on sight.
func (s *Server) currentSession(ctx context.Context, r *http.Request) (*sessions.Session, *users.User, error) {
	token := gate.SessionToken(r)
	if token == "" {
		return nil, nil, apperrors.ErrSessionNotFound
	}

	session, err := s.repos.Sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if session.Expired(s.now()) {
		if err := s.repos.Sessions.Delete(ctx, token); err != nil {
			s.log.Warn().Err(err).Str("session_id", session.ID).Msg("Failed to delete expired session")
		}
		return nil, nil, apperrors.ErrSessionExpired
	}

	user, err := s.repos.Users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// isNoSession reports whether err only means the caller is not signed in.
func isNoSession(err error) bool {
	return apperrors.Is(err, apperrors.ErrSessionNotFound) ||
		apperrors.Is(err, apperrors.ErrSessionExpired) ||
		apperrors.Is(err, apperrors.ErrUserNotFound)
}

// safeCallbackPath returns target when it points back at this site, "/" otherwise.
// Absolute URLs on the same origin are reduced to their path and query.
func safeCallbackPath(r *http.Request, target, fallback string) string {
	if target == "" {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil {
		return fallback
	}
	if u.IsAbs() {
		if u.Scheme+"://"+u.Host != gate.Origin(r) {
			return fallback
		}
		u.Scheme, u.Host = "", ""
	} else if u.Host != "" {
		return fallback
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") || strings.Contains(u.Path, "\\") {
		return fallback
	}
	return u.RequestURI()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	fullPath := path + "?error=" + url.QueryEscape(errorMsg)

	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", fullPath)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, fullPath, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
