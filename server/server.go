package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-signin-gate/gate"
	"github.com/jrsteele09/go-signin-gate/googleauth"
	"github.com/jrsteele09/go-signin-gate/internal/config"
	"github.com/jrsteele09/go-signin-gate/server/authflowrepo"
	"github.com/jrsteele09/go-signin-gate/sessions"
	"github.com/jrsteele09/go-signin-gate/users"
	"github.com/rs/zerolog"
)

// IdentityProvider runs the external sign-in handshake.
type IdentityProvider interface {
	AuthCodeURL(ctx context.Context, state, nonce, verifier string) (string, error)
	Exchange(ctx context.Context, code, verifier, nonce string) (*googleauth.Profile, error)
}

// Repos groups the persistent stores the server depends on.
type Repos struct {
	Users    users.UserRepo
	Sessions sessions.Repo
}

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	production bool
	mux        *http.ServeMux
	handler    http.Handler
	routes     []string
	config     config.Config
	repos      Repos
	identity   IdentityProvider
	authState  authflowrepo.Repo
	csrf       *csrfIssuer
	validate   *validator.Validate
	validator  gate.SessionValidator
	log        zerolog.Logger
	now        func() time.Time
}

// Option customises a Server at construction.
type Option func(*Server)

// WithSessionValidator replaces the HTTP session introspection used by the gate.
func WithSessionValidator(v gate.SessionValidator) Option {
	return func(s *Server) { s.validator = v }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(cfg config.Config, repos Repos, identity IdentityProvider, authStateRepo authflowrepo.Repo, log zerolog.Logger, opts ...Option) (*Server, error) {
	if repos.Users == nil || repos.Sessions == nil {
		return nil, fmt.Errorf("[Server New] user and session repositories are required")
	}

	csrf, err := newCSRFIssuer(cfg.GetAuthSecret(), cfg.GetCSRFTokenExpiry())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create csrf issuer: %w", err)
	}
	if cfg.GetAuthSecret() == "" {
		log.Warn().Msg("AUTH_SECRET is not set, using a random per-process secret")
	}

	s := &Server{
		env:        cfg.GetEnv(),
		production: cfg.IsProduction(),
		mux:        http.NewServeMux(),
		config:     cfg,
		repos:      repos,
		identity:   identity,
		authState:  authStateRepo,
		csrf:       csrf,
		validate:   validator.New(),
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.validator == nil {
		client := &http.Client{Timeout: cfg.GetSessionLookupTimeout()}
		s.validator = gate.NewHTTPSessionValidator(client, sessionEndpoint(cfg))
	}

	s.initRoutes()
	s.logRoutes()

	gateMiddleware := gate.NewMiddleware(
		gate.MatcherFor(cfg.GetGateMatcher()),
		s.validator,
		gate.NewCookieClearer(s.production),
		log,
	)
	s.handler = gateMiddleware.Wrap(s.mux)

	return s, nil
}

// sessionEndpoint is the configured introspection URL, or the session API under BASE_URL.
func sessionEndpoint(cfg config.Config) string {
	if endpoint := cfg.GetSessionEndpointURL(); endpoint != "" {
		return endpoint
	}
	return cfg.GetBaseURL() + RouteAPISession
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// PurgeExpired removes expired sessions and abandoned sign-in attempts.
func (s *Server) PurgeExpired(ctx context.Context) error {
	now := s.now()
	n, err := s.repos.Sessions.DeleteExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("[Server PurgeExpired] %w", err)
	}
	flows := s.authState.DeleteExpired(now.Add(-s.config.GetAuthFlowTimeout()))
	s.log.Debug().Int64("sessions", n).Int("auth_flows", flows).Msg("Purged expired records")
	return nil
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("Route")
		} else {
			s.log.Debug().Str("path", parts[0]).Msg("Route")
		}
	}
}
