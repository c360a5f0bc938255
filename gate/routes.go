package gate

import "strings"

// Route path constants shared by the gate and the HTTP server.
const (
	RouteHome        = "/"
	RouteLogin       = "/login"
	RouteSetPassword = "/set-password"
	RouteSecure      = "/secure"
	RouteAPISession  = "/api/auth/session"
)

// RouteClass is the access category of a request path.
type RouteClass int

const (
	RouteProtected RouteClass = iota
	RoutePublic
	RoutePasswordSetup
)

func (c RouteClass) String() string {
	switch c {
	case RoutePublic:
		return "public"
	case RoutePasswordSetup:
		return "password_setup"
	default:
		return "protected"
	}
}

var publicRoutes = map[string]struct{}{
	RouteLogin: {},
}

// Classify maps a request path to its access category. Unknown paths are protected.
func Classify(pathname string) RouteClass {
	if _, ok := publicRoutes[pathname]; ok {
		return RoutePublic
	}
	if pathname == RouteSetPassword {
		return RoutePasswordSetup
	}
	return RouteProtected
}

// IsPublicRoute reports whether pathname is reachable without a session.
func IsPublicRoute(pathname string) bool {
	return Classify(pathname) == RoutePublic
}

// IsPasswordSetupRoute reports whether pathname is the one-time password setup page.
func IsPasswordSetupRoute(pathname string) bool {
	return Classify(pathname) == RoutePasswordSetup
}

// Matcher selects which requests the gate inspects at all.
type Matcher interface {
	Match(pathname string) bool
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(pathname string) bool

func (f MatcherFunc) Match(pathname string) bool { return f(pathname) }

const (
	MatcherAll    = "all"
	MatcherSecure = "secure"
)

var (
	excludedPrefixes = []string{"/api/", "/static/"}
	excludedPaths    = map[string]struct{}{
		"/api":         {},
		"/favicon.ico": {},
		"/robots.txt":  {},
		"/sitemap.xml": {},
	}
)

// AllExceptAssets gates every path except API routes, static assets, favicon.ico,
// robots.txt and sitemap.xml.
func AllExceptAssets() Matcher {
	return MatcherFunc(func(pathname string) bool {
		if _, ok := excludedPaths[pathname]; ok {
			return false
		}
		for _, prefix := range excludedPrefixes {
			if strings.HasPrefix(pathname, prefix) {
				return false
			}
		}
		return true
	})
}

// SecureOnly gates /secure and everything below it.
func SecureOnly() Matcher {
	return MatcherFunc(func(pathname string) bool {
		return pathname == RouteSecure || strings.HasPrefix(pathname, RouteSecure+"/")
	})
}

// MatcherFor returns the matcher registered under name, defaulting to AllExceptAssets.
func MatcherFor(name string) Matcher {
	if strings.EqualFold(name, MatcherSecure) {
		return SecureOnly()
	}
	return AllExceptAssets()
}
