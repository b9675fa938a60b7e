package config

import (
	"os"
	"strconv"
)

const (
	AuthModeNone    = "none"
	AuthModeGateway = "gateway"
	AuthModeJWT     = "jwt"
)

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// Persistence (optional - stored scores are kept in memory without it)
	DatabaseURL string

	// Observability
	SentryDSN string // Sentry DSN for error tracking

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from an upstream gateway
	// - "jwt": Validate HS256 bearer tokens signed with JWTSecret
	AuthMode  string
	JWTSecret string

	// Rendering
	SampleRate    uint32 // default sample rate for rendered click tracks
	RenderProfile string // optional YAML render profile, overrides SampleRate
	MaxScoreBytes int    // largest score source accepted by the API
	// Repeats multiply, so the expanded score is bounded separately
	MaxScoreBeats    int
	MaxRenderSeconds int
}

func Load() *Config {
	return &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		SentryDSN:     getEnv("SENTRY_DSN", ""),
		AuthMode:      getEnv("AUTH_MODE", AuthModeNone), // Default to no auth for self-hosted
		JWTSecret:     getEnv("JWT_SECRET", ""),
		SampleRate:    uint32(getEnvInt("SAMPLE_RATE", 44100)),
		RenderProfile: getEnv("RENDER_PROFILE", ""),
		MaxScoreBytes: getEnvInt("MAX_SCORE_BYTES", 64*1024),

		MaxScoreBeats:    getEnvInt("MAX_SCORE_BEATS", 100000),
		MaxRenderSeconds: getEnvInt("MAX_RENDER_SECONDS", 1800),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// IsGatewayMode returns true if running behind an authenticating gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == AuthModeGateway
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// PersistenceEnabled reports whether a database is configured
func (c *Config) PersistenceEnabled() bool {
	return c.DatabaseURL != ""
}
