package server

import "github.com/jrsteele09/go-signin-gate/gate"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Pages
	RouteHome        = gate.RouteHome
	RouteLogin       = gate.RouteLogin
	RouteSecure      = gate.RouteSecure
	RouteSetPassword = gate.RouteSetPassword

	// Auth API
	RouteAPISession        = gate.RouteAPISession
	RouteAPICSRF           = "/api/auth/csrf"
	RouteAPISignInGoogle   = "/api/auth/signin/google"
	RouteAPICallbackGoogle = "/api/auth/callback/google"
	RouteAPISignOut        = "/api/auth/signout"

	// Password API
	RouteAPISetPassword         = "/api/set-password"
	RouteAPICheckPasswordStatus = "/api/check-password-status"

	// Static assets
	RouteStatic    = "/static/{file}"
	RouteFavicon   = "/favicon.ico"
	RouteRobotsTxt = "/robots.txt"
	RouteSitemap   = "/sitemap.xml"
)
