package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-signin-gate/gate"
	"github.com/jrsteele09/go-signin-gate/googleauth"
	apperrors "github.com/jrsteele09/go-signin-gate/internal/errors"
	"github.com/jrsteele09/go-signin-gate/server/authflowrepo"
	"github.com/jrsteele09/go-signin-gate/sessions"
	"github.com/jrsteele09/go-signin-gate/users"
	"golang.org/x/oauth2"
)

// Error codes passed to the login page as ?error=
const (
	errCodeOAuthSignin   = "OAuthSignin"
	errCodeOAuthCallback = "OAuthCallback"
	errCodeAccessDenied  = "AccessDenied"
)

// SessionHandler serves the session introspection endpoint the gate calls
// (GET /api/auth/session). No session is an empty object, not an error.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, user, err := s.currentSession(r.Context(), r)
		if err != nil {
			if isNoSession(err) {
				writeJSON(w, http.StatusOK, struct{}{})
				return
			}
			s.log.Error().Err(err).Msg("Session lookup failed")
			writeJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		writeJSON(w, http.StatusOK, gate.Session{
			User: gate.SessionUser{
				ID:             user.ID,
				Email:          user.Email,
				Name:           user.Name,
				Image:          user.Image,
				HasSetPassword: user.HasSetPassword,
			},
			Expires: session.Expires.UTC(),
		})
	}
}

// CSRFHandler returns the CSRF token forms must echo back (GET /api/auth/csrf).
func (s *Server) CSRFHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := s.csrfToken(w, r)
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to issue csrf token")
			writeJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"csrfToken": token})
	}
}

// SignInHandler starts the Google authorization code flow (GET /api/auth/signin/google).
func (s *Server) SignInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := generateRandomString(32)
		nonce := generateRandomString(32)
		verifier := oauth2.GenerateVerifier()

		if err := s.authState.Upsert(state, &authflowrepo.AuthFlowState{
			CodeVerifier: verifier,
			Nonce:        nonce,
			CreatedAt:    s.now(),
		}); err != nil {
			s.log.Error().Err(err).Msg("Failed to store auth flow state")
			redirectWithError(w, r, RouteLogin, errCodeOAuthSignin)
			return
		}

		authURL, err := s.identity.AuthCodeURL(r.Context(), state, nonce, verifier)
		if err != nil {
			_ = s.authState.Delete(state)
			s.log.Error().Err(err).Msg("Failed to build authorization URL")
			redirectWithError(w, r, RouteLogin, errCodeOAuthSignin)
			return
		}

		callbackURL := safeCallbackPath(r, r.URL.Query().Get(gate.CallbackURLParam), RouteHome)
		s.setCookie(w, gate.CallbackURLCookieNameFor(s.production), callbackURL, s.config.GetAuthFlowTimeout())

		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// OAuthCallbackHandler completes the Google flow (GET /api/auth/callback/google): it
// exchanges the code, links the Google account to a user, and starts a session.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := r.FormValue("state")
		code := r.FormValue("code")

		if errorParam := r.FormValue("error"); errorParam != "" {
			s.log.Info().Str("error", errorParam).Str("error_description", r.FormValue("error_description")).Msg("Authorization declined")
			redirectWithError(w, r, RouteLogin, errCodeAccessDenied)
			return
		}

		if code == "" || state == "" {
			http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
			return
		}

		authState, err := s.takeAuthState(state)
		if err != nil {
			s.log.Warn().Err(err).Msg("Callback with unknown or expired state")
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		profile, err := s.identity.Exchange(r.Context(), code, authState.CodeVerifier, authState.Nonce)
		if err != nil {
			s.log.Warn().Err(err).Msg("Authorization code exchange failed")
			redirectWithError(w, r, RouteLogin, errCodeOAuthCallback)
			return
		}

		user, err := s.linkGoogleAccount(r.Context(), profile)
		if err != nil {
			s.log.Error().Err(err).Str("email", profile.Email).Msg("Failed to link account")
			redirectWithError(w, r, RouteLogin, errCodeOAuthCallback)
			return
		}

		session := &sessions.Session{
			Token:   generateRandomString(sessionTokenBytes),
			UserID:  user.ID,
			Expires: s.now().Add(s.config.GetMaxSessionAge()),
		}
		if err := s.repos.Sessions.Create(r.Context(), session); err != nil {
			s.log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to create session")
			redirectWithError(w, r, RouteLogin, errCodeOAuthCallback)
			return
		}
		s.SetSessionCookie(w, session.Token, session.Expires)

		returnURL := RouteHome
		callbackCookie := gate.CallbackURLCookieNameFor(s.production)
		if c, err := r.Cookie(callbackCookie); err == nil {
			returnURL = safeCallbackPath(r, c.Value, RouteHome)
		}
		s.setCookie(w, callbackCookie, "", 0)

		s.log.Info().Str("user_id", user.ID).Msg("User signed in")
		http.Redirect(w, r, returnURL, http.StatusFound)
	}
}

// takeAuthState fetches and removes a flow state; each state is usable once.
func (s *Server) takeAuthState(state string) (*authflowrepo.AuthFlowState, error) {
	authState, err := s.authState.Get(state)
	if err != nil || authState == nil {
		return nil, apperrors.ErrInvalidState
	}
	if err := s.authState.Delete(state); err != nil {
		return nil, fmt.Errorf("failed to delete auth state: %w", err)
	}
	if s.now().Sub(authState.CreatedAt) > s.config.GetAuthFlowTimeout() {
		return nil, apperrors.ErrInvalidState
	}
	return authState, nil
}

// linkGoogleAccount returns the user owning the Google identity, creating or linking
// one when this is the first sign-in. An existing user is matched by email only when
// Google has verified that email.
func (s *Server) linkGoogleAccount(ctx context.Context, profile *googleauth.Profile) (*users.User, error) {
	user, err := s.repos.Users.GetByAccount(ctx, users.ProviderGoogle, profile.Subject)
	if err == nil {
		if user.Name != profile.Name || user.Image != profile.Picture {
			if err := s.repos.Users.UpdateProfile(ctx, user.ID, profile.Name, profile.Picture); err != nil {
				return nil, err
			}
			user.Name, user.Image = profile.Name, profile.Picture
		}
		return user, nil
	}
	if !apperrors.Is(err, apperrors.ErrUserNotFound) && !apperrors.Is(err, apperrors.ErrAccountNotFound) {
		return nil, err
	}

	if profile.Email == "" {
		return nil, apperrors.Wrapf(apperrors.ErrEmailNotVerified, "google account %s has no email", profile.Subject)
	}

	user, err = s.repos.Users.GetByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		if !profile.EmailVerified {
			return nil, apperrors.Wrapf(apperrors.ErrEmailNotVerified, "cannot link %s", profile.Email)
		}
	case apperrors.Is(err, apperrors.ErrUserNotFound):
		user = &users.User{
			Email: profile.Email,
			Name:  profile.Name,
			Image: profile.Picture,
		}
		if profile.EmailVerified {
			verified := s.now().UTC()
			user.EmailVerified = &verified
		}
		if err := s.repos.Users.Create(ctx, user); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.repos.Users.LinkAccount(ctx, &users.Account{
		UserID:            user.ID,
		Provider:          users.ProviderGoogle,
		ProviderAccountID: profile.Subject,
	}); err != nil {
		return nil, err
	}
	return user, nil
}

// SignOutHandler ends the session (POST /api/auth/signout). The request must carry the
// CSRF token from /api/auth/csrf.
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.checkCSRF(r); err != nil {
			http.Error(w, "Invalid CSRF token", http.StatusForbidden)
			return
		}

		if token := gate.SessionToken(r); token != "" {
			if err := s.repos.Sessions.Delete(r.Context(), token); err != nil {
				s.log.Error().Err(err).Msg("Failed to delete session")
			}
		}
		s.ClearSessionCookie(w)

		redirectSuccess(w, r, safeCallbackPath(r, r.FormValue(gate.CallbackURLParam), RouteLogin))
	}
}
