package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	apperrors "github.com/jrsteele09/go-signin-gate/internal/errors"
	"github.com/jrsteele09/go-signin-gate/users"
	"golang.org/x/crypto/bcrypt"
)

const maxPasswordRequestBytes = 4 << 10

type setPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

// SetPasswordHandler stores the first password of a signed-in user (POST /api/set-password).
// Only JSON bodies are accepted so a cross-site form post cannot reach it.
func (s *Server) SetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, user, err := s.currentSession(r.Context(), r)
		if err != nil {
			if isNoSession(err) {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			s.log.Error().Err(err).Msg("Session lookup failed")
			writeJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mediaType != "application/json" {
			writeJSONError(w, http.StatusUnsupportedMediaType, "content type must be application/json")
			return
		}

		var req setPasswordRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxPasswordRequestBytes)).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.validate.Struct(req); err != nil {
			writeJSONError(w, http.StatusBadRequest, apperrors.ErrPasswordTooShort.Error())
			return
		}
		if err := users.ValidatePassword(req.Password); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		hash, err := users.HashPassword(req.Password, s.config.GetPasswordHashCost())
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			writeJSONError(w, http.StatusBadRequest, "password must be at most 72 bytes")
			return
		}
		if err != nil {
			s.log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to hash password")
			writeJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if err := s.repos.Users.SetPassword(r.Context(), user.ID, hash); err != nil {
			s.log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to store password")
			writeJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		s.log.Info().Str("user_id", user.ID).Msg("Password set")
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// CheckPasswordStatusHandler reports whether the signed-in user has set a password
// (GET /api/check-password-status).
func (s *Server) CheckPasswordStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, user, err := s.currentSession(r.Context(), r)
		if err != nil {
			if isNoSession(err) {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			s.log.Error().Err(err).Msg("Session lookup failed")
			writeJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"hasPassword": user.HasSetPassword})
	}
}
