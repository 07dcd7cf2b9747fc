package config

import "time"

// SessionConfig holds JWT session cookie settings
type SessionConfig struct {
	JwtSecret      string        `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	CookieName     string        `env:"SESSION_COOKIE_NAME" env-default:"access_token"`
	CookieHttpOnly bool          `env:"COOKIE_HTTP_ONLY" env-default:"true"`
	CookieSecure   bool          `env:"COOKIE_SECURE" env-default:"false"`
	TokenExpiry    time.Duration `env:"SESSION_TOKEN_EXPIRY" env-default:"15m"`
}

// HasherConfig holds credential hashing settings
type HasherConfig struct {
	// Pepper is the server-side salt mixed into every digest
	Pepper     string `env:"CREDENTIAL_PEPPER" env-default:"change-me"`
	Iterations int    `env:"CREDENTIAL_HASH_ITERATIONS" env-default:"4096"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	// BaseURL is used to build verification and reset links in emails
	BaseURL string `env:"BASE_URL" env-default:"http://localhost:4000"`
}
