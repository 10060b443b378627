package app

import (
	"os"
	"strconv"
	"time"
)

// InsecureDevSecret is the fallback signing secret used when none is
// configured. Running with it is an operational risk; New logs a warning.
const InsecureDevSecret = "dev-secret"

type Config struct {
	JWTSecret     string        // Access token signing secret (default: dev-secret, insecure)
	Issuer        string        // Issuer claim for access tokens (default: chefpilot-api)
	AccessTTL     time.Duration // Access token validity window (default: 15m)
	RefreshTTL    time.Duration // Refresh token validity window (default: 720h / 30 days)
	TenantContext string        // Placeholder tenant context echoed on login (default: dev-tenant)

	DatabaseFile        string        // Path to SQLite database file (default: ./chefpilot.db)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads configuration from the environment once at startup. The
// resulting struct is injected into services; nothing reads the environment
// after this.
func LoadConfig() Config {
	return Config{
		JWTSecret:           getEnvOrDefault("JWT_SECRET", InsecureDevSecret),
		Issuer:              getEnvOrDefault("JWT_ISSUER", "chefpilot-api"),
		AccessTTL:           getEnvDurationOrDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL:          getEnvDurationOrDefault("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		TenantContext:       getEnvOrDefault("TENANT_CONTEXT", "dev-tenant"),
		DatabaseFile:        getEnvOrDefault("DATABASE_FILE", "chefpilot.db"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
