package gate

// Result is the single outcome of the gate for one request.
type Result int

const (
	Allow Result = iota
	RedirectLogin
	ClearCookiesAndRedirectLogin
	RedirectHome
	RedirectSetPassword
)

func (r Result) String() string {
	switch r {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case ClearCookiesAndRedirectLogin:
		return "clear_cookies_and_redirect_login"
	case RedirectHome:
		return "redirect_home"
	case RedirectSetPassword:
		return "redirect_set_password"
	}
	return "unknown"
}

// Decide maps a request context to its outcome. The cases are evaluated strictly in
// order; several later cases are partly shadowed by earlier ones and must stay that way.
func Decide(c Context) Result {
	hasToken := c.SessionToken != ""

	switch {
	case hasToken && c.Session == nil:
		return ClearCookiesAndRedirectLogin
	case IsPublicRoute(c.Pathname):
		return Allow
	case !hasToken:
		return RedirectLogin
	case c.Session == nil:
		return RedirectLogin
	}

	hasPassword := c.Session.User.HasSetPassword
	isHome := c.Pathname == RouteHome
	isSetup := IsPasswordSetupRoute(c.Pathname)

	switch {
	case isHome && !hasPassword:
		return RedirectSetPassword
	case isHome && hasPassword:
		return Allow
	case isSetup && !hasPassword:
		return Allow
	case !hasPassword:
		return RedirectSetPassword
	case isSetup && hasPassword:
		return RedirectHome
	}
	return Allow
}
