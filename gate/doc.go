// Package gate decides, for every gated request, whether it may continue, must sign in,
// must set a password first, or carries a stale session cookie that has to be scrubbed.
//
// The decision itself (Decide) is a pure function of the request path, the presence of
// a session token and the session returned by the introspection endpoint. Everything
// with side effects (the outbound session lookup, cookie clearing, redirects) lives
// behind SessionValidator, CookieClearer and Responder.
package gate
