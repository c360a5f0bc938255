package config

import "time"

type Database struct{}

var _ DatabaseConfig = Database{}

func (Database) GetDatabaseURL() string {
	return GetEnv("DATABASE_URL", "signin.sqlite")
}

type Gate struct{}

var _ GateConfig = Gate{}

// GetGateMatcher selects which paths the gate inspects: "all" (everything but API and assets) or "secure".
func (Gate) GetGateMatcher() string {
	return GetEnv("GATE_MATCHER", "all")
}

// GetSessionEndpointURL overrides the session introspection URL; empty means BASE_URL + /api/auth/session.
func (Gate) GetSessionEndpointURL() string {
	return GetEnv("SESSION_ENDPOINT_URL", "")
}

// GetSessionLookupTimeout is the HTTP client timeout for session introspection. Zero disables it.
func (Gate) GetSessionLookupTimeout() time.Duration {
	return GetDurationEnv("SESSION_LOOKUP_TIMEOUT", 5*time.Second)
}
