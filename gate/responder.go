package gate

import (
	"net/http"
	"net/url"
)

// CallbackURLParam carries the originally requested URL to the login page.
const CallbackURLParam = "callbackUrl"

// Responder turns a Result into an HTTP response.
type Responder struct {
	clearer CookieClearer
}

func NewResponder(clearer CookieClearer) *Responder {
	return &Responder{clearer: clearer}
}

// Respond writes the redirect for result, or hands the request to next on Allow.
func (rs *Responder) Respond(w http.ResponseWriter, r *http.Request, result Result, next http.Handler) {
	switch result {
	case Allow:
		next.ServeHTTP(w, r)
	case RedirectLogin:
		http.Redirect(w, r, LoginURL(RequestURL(r)), http.StatusFound)
	case ClearCookiesAndRedirectLogin:
		rs.clearer.ClearCookies(w)
		http.Redirect(w, r, LoginURL(RequestURL(r)), http.StatusFound)
	case RedirectHome:
		http.Redirect(w, r, RouteHome, http.StatusFound)
	case RedirectSetPassword:
		http.Redirect(w, r, RouteSetPassword, http.StatusFound)
	default:
		http.Redirect(w, r, RouteLogin, http.StatusFound)
	}
}

// LoginURL returns the login path with callbackURL attached.
func LoginURL(callbackURL string) string {
	if callbackURL == "" {
		return RouteLogin
	}
	q := url.Values{}
	q.Set(CallbackURLParam, callbackURL)
	return RouteLogin + "?" + q.Encode()
}
