package server

import (
	"net/http"
	"strings"
)

func (s *Server) initRoutes() {
	// Pages
	s.RegisterRouteHandler("GET "+RouteHome+"{$}", ChainMiddleware(s.HomePageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteSecure, ChainMiddleware(s.SecurePageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteSetPassword, ChainMiddleware(s.SetPasswordPageHandler(), s.HTMLMiddleWare()...))

	// Auth API
	s.RegisterRouteHandler("GET "+RouteAPISession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPICSRF, ChainMiddleware(s.CSRFHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPISignInGoogle, ChainMiddleware(s.SignInHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPICallbackGoogle, ChainMiddleware(s.OAuthCallbackHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPISignOut, ChainMiddleware(s.SignOutHandler(), s.APIMiddleware()...))

	// Password API
	s.RegisterRouteHandler("POST "+RouteAPISetPassword, ChainMiddleware(s.SetPasswordHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPICheckPasswordStatus, ChainMiddleware(s.CheckPasswordStatusHandler(), s.APIMiddleware()...))

	// Static assets
	s.RegisterRouteHandler("GET "+RouteStatic, ChainMiddleware(s.serveFileHandler("/static/"), s.StaticMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteRobotsTxt, ChainMiddleware(s.serveFileHandler("/"), s.StaticMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteSitemap, ChainMiddleware(s.serveFileHandler("/"), s.StaticMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteFavicon, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) serveFileHandler(prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, prefix)
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		if err := StreamFile(w, r, filePath); err != nil {
			s.log.Warn().Err(err).Str("path", r.URL.Path).Msg("Static file not served")
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}
