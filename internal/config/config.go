// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types, and validates that required
// values are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load built-in defaults, then environment overrides.
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (e.g. observability).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads `.env` into the process env before anything
	// below reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the LISTINGS_ prefix. A double underscore marks
	nesting, so LISTINGS_SERVER__PORT -> server.port -> Config.Server.Port.

	The two variables the service has always been deployed with, PORT and
	MONGODB_CONN_STRING, are still honoured and map onto server.port and
	database.uri. Prefixed variables win when both are set.
*/

const (
	// EnvPrefix is the prefix shared by every namespaced variable.
	EnvPrefix = "LISTINGS_"

	// ServiceName is reported in logs and New Relic.
	ServiceName = "listings-api"
)

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis"`
	Pagination    PaginationConfig     `koanf:"pagination" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=local development staging production"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are whole seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required,numeric"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	ShutdownTimeout    int      `koanf:"shutdown_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required,min=1"`

	// RateLimit is the sustained requests-per-second allowed per client IP.
	// Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"min=0"`
}

// DatabaseConfig describes the MongoDB deployment holding listings.
//
// URI is the full connection string. Name may be left empty, in which case
// the database named in the URI path is used.
type DatabaseConfig struct {
	URI            string        `koanf:"uri" validate:"required"`
	Name           string        `koanf:"name"`
	Collection     string        `koanf:"collection" validate:"required"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"min=1s"`
}

// RedisConfig contains Redis connection details for the listing cache.
// An empty Address disables caching.
type RedisConfig struct {
	Address  string        `koanf:"address"`
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"min=0"`
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// PaginationConfig controls the listing window defaults.
//
// MaxPerPage of zero means perPage is never clamped.
type PaginationConfig struct {
	DefaultPage    int `koanf:"default_page" validate:"required,min=1"`
	DefaultPerPage int `koanf:"default_per_page" validate:"required,min=1"`
	MaxPerPage     int `koanf:"max_per_page" validate:"min=0"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"primary.env": "development",

		"server.port":                 "8080",
		"server.read_timeout":         30,
		"server.write_timeout":        30,
		"server.idle_timeout":         60,
		"server.shutdown_timeout":     30,
		"server.cors_allowed_origins": []string{"*"},
		"server.rate_limit":           20.0,

		"database.collection":      "listingsAndReviews",
		"database.connect_timeout": "10s",

		"redis.cache_ttl": "1m",

		"pagination.default_page":     1,
		"pagination.default_per_page": 10,
		"pagination.max_per_page":     0,
	}
}

// envKey turns LISTINGS_SERVER__PORT into server.port.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// legacyValue maps the unprefixed deployment variables. Anything else, and
// empty values, are skipped by returning an empty key.
func legacyValue(key, value string) (string, interface{}) {
	if value == "" {
		return "", nil
	}
	switch key {
	case "PORT":
		return "server.port", value
	case "MONGODB_CONN_STRING":
		return "database.uri", value
	}
	return "", nil
}

// LoadConfig loads configuration from defaults and environment variables,
// unmarshals it into Config, applies observability defaults and validates
// the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("could not load default config: %w", err)
	}

	if err := k.Load(env.ProviderWithValue("", ".", legacyValue), nil); err != nil {
		return nil, fmt.Errorf("could not load legacy env variables: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	// Observability is seeded with defaults so partial overrides such as
	// LISTINGS_OBSERVABILITY__LOGGING__LEVEL only replace what they name.
	mainConfig := &Config{Observability: DefaultObservabilityConfig()}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Service name and environment always follow the primary config so logs
	// and traces stay consistent.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
