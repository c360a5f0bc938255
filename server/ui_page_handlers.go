package server

import (
	"html/template"
	"net/http"
	"time"

	"github.com/jrsteele09/go-signin-gate/gate"
)

const contentTypeHTML = "text/html; charset=utf-8"

// PageData is the template model shared by the HTML pages.
type PageData struct {
	AppName     string
	User        *gate.SessionUser
	ExpiresIn   time.Duration
	CSRFToken   string
	CallbackURL string
	SignInURL   string
	Error       string
}

// loginErrors maps ?error= codes to the message shown on the login page.
var loginErrors = map[string]string{
	errCodeOAuthSignin:   "Could not start sign in with Google. Please try again.",
	errCodeOAuthCallback: "Sign in with Google did not complete. Please try again.",
	errCodeAccessDenied:  "Access was denied.",
}

func expiresIn(now, expires time.Time) time.Duration {
	if d := expires.Sub(now); d > 0 {
		return d.Round(time.Minute)
	}
	return 0
}

func mustParseTemplate(name string) *template.Template {
	tmpl, err := ParseTemplate(name)
	if err != nil {
		panic("Failed to parse " + name + " template: " + err.Error())
	}
	return tmpl
}

func (s *Server) renderPage(w http.ResponseWriter, tmpl *template.Template, data PageData) {
	w.Header().Set("Content-Type", contentTypeHTML)
	if err := tmpl.Execute(w, data); err != nil {
		s.log.Error().Err(err).Str("template", tmpl.Name()).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// pageSession returns the session the gate attached to the request, falling back to a
// store lookup for pages the configured matcher does not gate.
func (s *Server) pageSession(r *http.Request) *gate.Session {
	if session, ok := gate.SessionFromContext(r.Context()); ok {
		return session
	}
	session, user, err := s.currentSession(r.Context(), r)
	if err != nil {
		if !isNoSession(err) {
			s.log.Warn().Err(err).Msg("Page session lookup failed")
		}
		return nil
	}
	return &gate.Session{
		User: gate.SessionUser{
			ID:             user.ID,
			Email:          user.Email,
			Name:           user.Name,
			Image:          user.Image,
			HasSetPassword: user.HasSetPassword,
		},
		Expires: session.Expires,
	}
}

func (s *Server) pageData(w http.ResponseWriter, r *http.Request) PageData {
	data := PageData{AppName: s.config.GetAppName()}
	if session := s.pageSession(r); session != nil {
		user := session.User
		data.User = &user
		data.ExpiresIn = expiresIn(s.now(), session.Expires)

		token, err := s.csrfToken(w, r)
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to issue csrf token")
		}
		data.CSRFToken = token
	}
	return data
}

// HomePageHandler renders the home page (GET /).
func (s *Server) HomePageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, tmpl, s.pageData(w, r))
	}
}

// LoginPageHandler renders the sign-in page (GET /login).
func (s *Server) LoginPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("login.html")
	return func(w http.ResponseWriter, r *http.Request) {
		callbackURL := safeCallbackPath(r, r.URL.Query().Get(gate.CallbackURLParam), RouteHome)

		data := PageData{
			AppName:     s.config.GetAppName(),
			CallbackURL: callbackURL,
			SignInURL:   RouteAPISignInGoogle + "?" + gate.CallbackURLParam + "=" + template.URLQueryEscaper(callbackURL),
		}
		if code := r.URL.Query().Get("error"); code != "" {
			data.Error = loginErrors[code]
			if data.Error == "" {
				data.Error = "Sign in failed. Please try again."
			}
		}
		s.renderPage(w, tmpl, data)
	}
}

// SecurePageHandler renders the protected example page (GET /secure).
func (s *Server) SecurePageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("secure.html")
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.pageData(w, r)
		if data.User == nil {
			http.Redirect(w, r, gate.LoginURL(gate.RequestURL(r)), http.StatusFound)
			return
		}
		s.renderPage(w, tmpl, data)
	}
}

// SetPasswordPageHandler renders the one-time password setup page (GET /set-password).
func (s *Server) SetPasswordPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("set_password.html")
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.pageData(w, r)
		if data.User == nil {
			http.Redirect(w, r, gate.LoginURL(gate.RequestURL(r)), http.StatusFound)
			return
		}
		s.renderPage(w, tmpl, data)
	}
}
