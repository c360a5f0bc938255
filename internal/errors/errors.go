package errors

import (
	"errors"
	"fmt"
)

// Common error types for the sign-in application
var (
	// User errors
	ErrUserNotFound    = errors.New("user not found")
	ErrAccountNotFound = errors.New("account not found")

	// Password errors
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidSession  = errors.New("invalid or expired session")

	// Sign-in flow errors
	ErrInvalidState     = errors.New("invalid state")
	ErrInvalidNonce     = errors.New("invalid nonce")
	ErrMissingIDToken   = errors.New("no id_token in token response")
	ErrEmailNotVerified = errors.New("email not verified by provider")
	ErrInvalidCSRFToken = errors.New("invalid csrf token")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}
