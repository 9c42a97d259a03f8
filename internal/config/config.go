// Package config holds the externally supplied configuration surface:
// OAuth client, callback and frontend URLs, session settings, and the
// names of the AWS resources backing sessions and locks.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config is the application configuration, loaded from the environment.
type Config struct {
	Server  ServerConfig
	Google  GoogleConfig
	Session SessionConfig
	Locks   LocksConfig
}

type ServerConfig struct {
	Port        string
	FrontendURL string // allowed browser origin and redirect target
	DevMode     bool
}

type GoogleConfig struct {
	ClientID          string
	ClientSecretParam string // SSM parameter holding the client secret
	RedirectURL       string
}

type SessionConfig struct {
	SecretParam      string // SSM parameter holding the cookie-signing secret
	TableName        string
	KMSKeyID         string
	AdminEmailSuffix string
}

type LocksConfig struct {
	TableName string
}

// Load reads configuration from environment variables, with .env support
// for local development. Secrets are not resolved here; only the parameter
// names are carried (see the secret package).
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:        getenv("PORT", "8080"),
			FrontendURL: getenv("FRONTEND_URL", "http://localhost:3000"),
			DevMode:     os.Getenv("DEV_MODE") == "true",
		},
		Google: GoogleConfig{
			ClientID:          os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecretParam: getenv("GOOGLE_CLIENT_SECRET_PARAM", "/letterdrive/google-client-secret"),
			RedirectURL:       getenv("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback"),
		},
		Session: SessionConfig{
			SecretParam:      getenv("SESSION_SECRET_PARAM", "/letterdrive/session-secret"),
			TableName:        getenv("SESSIONS_TABLE", "Sessions"),
			KMSKeyID:         getenv("KMS_KEY_ID", "alias/letterdrive-token-key"),
			AdminEmailSuffix: getenv("ADMIN_EMAIL_SUFFIX", "@admin.com"),
		},
		Locks: LocksConfig{
			TableName: getenv("PROVISION_LOCKS_TABLE", "ProvisionLocks"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
