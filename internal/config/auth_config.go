package config

type AuthConfig interface {
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGoogleIssuer() string
	GetAuthSecret() string
}

type Auth struct{}

var _ AuthConfig = Auth{}

func (Auth) GetGoogleClientID() string {
	return GetEnv("GOOGLE_CLIENT_ID", "")
}

func (Auth) GetGoogleClientSecret() string {
	return GetEnv("GOOGLE_CLIENT_SECRET", "")
}

func (Auth) GetGoogleIssuer() string {
	return GetEnv("GOOGLE_ISSUER", "https://accounts.google.com")
}

// GetAuthSecret is the HMAC key for CSRF tokens.
func (Auth) GetAuthSecret() string {
	return GetEnv("AUTH_SECRET", "")
}
