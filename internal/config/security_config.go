package config

import "time"

type SecurityConfig interface {
	GetMaxSessionAge() time.Duration
	GetAuthFlowTimeout() time.Duration
	GetCSRFTokenExpiry() time.Duration
	GetPasswordHashCost() int
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetMaxSessionAge() time.Duration {
	return GetDurationEnv("SESSION_MAX_AGE", 30*24*time.Hour)
}

// GetAuthFlowTimeout bounds the time between starting a Google sign-in and its callback.
func (Security) GetAuthFlowTimeout() time.Duration {
	return 10 * time.Minute
}

func (Security) GetCSRFTokenExpiry() time.Duration {
	return 12 * time.Hour
}

func (Security) GetPasswordHashCost() int {
	return 12
}
