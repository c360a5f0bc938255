package gate

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// Middleware runs the gate in front of an http.Handler.
type Middleware struct {
	matcher   Matcher
	validator SessionValidator
	responder *Responder
	log       zerolog.Logger
}

func NewMiddleware(matcher Matcher, validator SessionValidator, clearer CookieClearer, log zerolog.Logger) *Middleware {
	return &Middleware{
		matcher:   matcher,
		validator: validator,
		responder: NewResponder(clearer),
		log:       log.With().Str("component", "gate").Logger(),
	}
}

// Wrap returns next guarded by the gate. Paths the matcher rejects pass straight through.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.matcher.Match(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		c, result, err := m.safeEvaluate(r)
		if err != nil {
			m.log.Error().Err(err).Str("pathname", r.URL.Path).Msg("Gate failed, redirecting to login")
			http.Redirect(w, r, RouteLogin, http.StatusFound)
			return
		}

		if result == Allow && c.Session != nil {
			r = r.WithContext(WithSession(r.Context(), c.Session))
		}
		m.responder.Respond(w, r, result, next)
	})
}

// Evaluate builds the request context, validates the session when a token is present
// and returns the decision.
func (m *Middleware) Evaluate(r *http.Request) (Context, Result) {
	c := Context{
		Pathname:     r.URL.Path,
		SessionToken: SessionToken(r),
		UserAgent:    r.UserAgent(),
	}

	if c.SessionToken != "" {
		res := m.validator.ValidateSession(r.Context(), r)
		if res.Valid {
			c.Session = res.Session
		} else {
			m.log.Warn().Err(res.Err).
				Str("pathname", c.Pathname).
				Str("user_agent", c.UserAgent).
				Msg("Session validation failed")
		}
	}

	result := Decide(c)
	m.logDecision(c, result)
	return c, result
}

func (m *Middleware) safeEvaluate(r *http.Request) (c Context, result Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in gate: %v", rec)
		}
	}()
	c, result = m.Evaluate(r)
	return c, result, nil
}

func (m *Middleware) logDecision(c Context, result Result) {
	level := zerolog.InfoLevel
	if result == Allow {
		level = zerolog.DebugLevel
	}
	ev := m.log.WithLevel(level).
		Str("pathname", c.Pathname).
		Str("route_class", Classify(c.Pathname).String()).
		Bool("has_token", c.SessionToken != "").
		Str("outcome", result.String())
	if c.Session != nil {
		ev = ev.Str("user_id", c.Session.User.ID)
	}
	if c.UserAgent != "" {
		ev = ev.Str("user_agent", c.UserAgent)
	}
	ev.Msg("Gate decision")
}
