package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/archsystems/authgate/pkg/jwtx"
)

// ErrNoSigningSecret is returned when AUTH_SIGNING_SECRET is unset. The
// service refuses to start rather than invent a secret, because a generated
// secret would silently invalidate every outstanding token on restart and a
// guessable fallback would let anyone mint tokens.
var ErrNoSigningSecret = errors.New("app: AUTH_SIGNING_SECRET is required")

type Config struct {
	SigningSecret []byte // Required: HS256 signing secret, shared with nothing

	Issuer            string        // Issuer claim for tokens (default: host name)
	TokenValidity     time.Duration // Lifetime of issued tokens (default: 24h)
	ClockSkewGrace    time.Duration // Delay before a fresh token becomes valid (default: 10s)
	AllowRegistration bool          // Whether POST /v1/auth/register is open (default: false)
	AllowedOrigin     string        // CORS Access-Control-Allow-Origin; empty disables CORS

	DatabaseFile         string        // Path to SQLite database file (default: ./authgate.db)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() (Config, error) {
	secret := os.Getenv("AUTH_SIGNING_SECRET")
	if secret == "" {
		return Config{}, ErrNoSigningSecret
	}

	cfg := Config{
		SigningSecret:        []byte(secret),
		Issuer:               os.Getenv("AUTH_ISSUER"),
		TokenValidity:        getEnvDurationOrDefault("AUTH_TOKEN_VALIDITY", jwtx.DefaultValidity),
		ClockSkewGrace:       getEnvDurationOrDefault("AUTH_CLOCK_SKEW_GRACE", jwtx.DefaultSkewGrace),
		AllowRegistration:    getEnvBoolOrDefault("AUTH_ALLOW_REGISTRATION", false),
		AllowedOrigin:        os.Getenv("AUTH_ALLOWED_ORIGIN"),
		DatabaseFile:         getEnvOrDefault("AUTH_DATABASE_FILE", "authgate.db"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if cfg.Issuer == "" {
		// The issuer claim only has to be stable and unique to this
		// deployment; the host name is both.
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "authgate"
		}
		cfg.Issuer = host
	}

	return cfg, nil
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
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

	// Plain integers are read as seconds so deployments can keep using the
	// numeric values they had before.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
