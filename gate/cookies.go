package gate

import (
	"net/http"
	"time"
)

// Auth cookie names. The __Secure- and __Host- variants are the ones browsers accept
// only over HTTPS; production issues those.
const (
	SessionCookieName           = "signin.session-token"
	SecureSessionCookieName     = "__Secure-signin.session-token"
	CSRFCookieName              = "signin.csrf-token"
	HostCSRFCookieName          = "__Host-signin.csrf-token"
	CallbackURLCookieName       = "signin.callback-url"
	SecureCallbackURLCookieName = "__Secure-signin.callback-url"
)

// SessionCookieNames is the lookup order for the session token.
var SessionCookieNames = []string{SessionCookieName, SecureSessionCookieName}

// AuthCookieNames are the cookies scrubbed when a stale session is detected.
var AuthCookieNames = []string{
	SessionCookieName,
	SecureSessionCookieName,
	CSRFCookieName,
	HostCSRFCookieName,
	CallbackURLCookieName,
	SecureCallbackURLCookieName,
}

// SessionCookieNameFor returns the session cookie name issued in the given environment.
func SessionCookieNameFor(production bool) string {
	if production {
		return SecureSessionCookieName
	}
	return SessionCookieName
}

func CSRFCookieNameFor(production bool) string {
	if production {
		return HostCSRFCookieName
	}
	return CSRFCookieName
}

func CallbackURLCookieNameFor(production bool) string {
	if production {
		return SecureCallbackURLCookieName
	}
	return CallbackURLCookieName
}

// SessionToken returns the first non-empty session cookie value, in SessionCookieNames order.
func SessionToken(r *http.Request) string {
	for _, name := range SessionCookieNames {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			return c.Value
		}
	}
	return ""
}

// CookieClearer removes the auth cookies from the client.
type CookieClearer interface {
	ClearCookies(w http.ResponseWriter)
}

// ExpiringCookieClearer overwrites each named cookie with an empty, already expired one.
type ExpiringCookieClearer struct {
	Names  []string
	Secure bool
}

var _ CookieClearer = (*ExpiringCookieClearer)(nil)

// NewCookieClearer clears AuthCookieNames; secure sets the Secure attribute (production).
func NewCookieClearer(secure bool) *ExpiringCookieClearer {
	return &ExpiringCookieClearer{Names: AuthCookieNames, Secure: secure}
}

func (c *ExpiringCookieClearer) ClearCookies(w http.ResponseWriter) {
	for _, name := range c.Names {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   c.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
