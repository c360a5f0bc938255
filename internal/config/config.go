package config

import (
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	AuthConfig
	SecurityConfig
	DatabaseConfig
	GateConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
	IsProduction() bool
	GetLogLevel() string
	GetLogFormat() string
}

type DatabaseConfig interface {
	GetDatabaseURL() string
}

type GateConfig interface {
	GetGateMatcher() string
	GetSessionEndpointURL() string
	GetSessionLookupTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	Auth
	Security
	Database
	Gate
}

// New loads .env files (missing files are ignored) and returns the environment backed config.
func New() Config {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
	return mainConfig{}
}
