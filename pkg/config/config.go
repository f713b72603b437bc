package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Registry source kinds
const (
	RegistrySourceFile     = "file"
	RegistrySourcePostgres = "postgres"
)

// Geocoder provider kinds
const (
	GeocoderNominatim = "nominatim"
	GeocoderGoogle    = "google"
	GeocoderStatic    = "static"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Registry    RegistryConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Geocoder    GeocoderConfig
	Search      SearchConfig
	Recommender RecommenderConfig
	OTEL        OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	Env            string
	AllowedOrigins []string
	WriteTimeout   time.Duration
}

// RegistryConfig selects where the provider registry is read from
type RegistryConfig struct {
	Source string
	Path   string
	Table  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// GeocoderConfig holds geocoding provider configuration
type GeocoderConfig struct {
	Provider    string
	BaseURL     string
	APIKey      string
	UserAgent   string
	MinInterval time.Duration
	Timeout     time.Duration
	CacheSize   int
	CacheTTL    time.Duration
}

// SearchConfig holds result limit defaults
type SearchConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// RecommenderConfig holds the specialty recommendation service configuration
type RecommenderConfig struct {
	APIKey string
	Model  string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
			Env:  getEnv("APP_ENV", "development"),

			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 3*time.Minute),
		},
		Registry: RegistryConfig{
			Source: strings.ToLower(getEnv("REGISTRY_SOURCE", RegistrySourceFile)),
			Path:   getEnv("REGISTRY_PATH", "data/providers.csv"),
			Table:  getEnv("REGISTRY_TABLE", "providers"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "provider_registry"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Geocoder: GeocoderConfig{
			Provider:    strings.ToLower(getEnv("GEOCODER_PROVIDER", GeocoderNominatim)),
			BaseURL:     getEnv("GEOCODER_BASE_URL", ""),
			APIKey:      getEnv("GEOCODER_API_KEY", ""),
			UserAgent:   getEnv("GEOCODER_USER_AGENT", "providermatch/1.0"),
			MinInterval: getEnvAsDuration("GEOCODER_MIN_INTERVAL", 1100*time.Millisecond),
			Timeout:     getEnvAsDuration("GEOCODER_TIMEOUT", 5*time.Second),
			CacheSize:   getEnvAsInt("GEOCODER_CACHE_SIZE", 10000),
			CacheTTL:    getEnvAsDuration("GEOCODER_CACHE_TTL", 30*24*time.Hour),
		},
		Search: SearchConfig{
			DefaultLimit: getEnvAsInt("SEARCH_DEFAULT_LIMIT", 20),
			MaxLimit:     getEnvAsInt("SEARCH_MAX_LIMIT", 100),
		},
		Recommender: RecommenderConfig{
			APIKey: getEnv("ANTHROPIC_API_KEY", ""),
			Model:  getEnv("ANTHROPIC_MODEL", "claude-haiku-4-5-20251001"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "providermatch"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the services cannot run with
func (c *Config) Validate() error {
	switch c.Registry.Source {
	case RegistrySourceFile:
		if strings.TrimSpace(c.Registry.Path) == "" {
			return fmt.Errorf("REGISTRY_PATH is required for file registry source")
		}
	case RegistrySourcePostgres:
		if strings.TrimSpace(c.Registry.Table) == "" {
			return fmt.Errorf("REGISTRY_TABLE is required for postgres registry source")
		}
	default:
		return fmt.Errorf("unknown REGISTRY_SOURCE %q", c.Registry.Source)
	}

	switch c.Geocoder.Provider {
	case GeocoderNominatim, GeocoderStatic:
	case GeocoderGoogle:
		if c.Geocoder.APIKey == "" {
			return fmt.Errorf("GEOCODER_API_KEY is required for google geocoder")
		}
	default:
		return fmt.Errorf("unknown GEOCODER_PROVIDER %q", c.Geocoder.Provider)
	}

	if c.Geocoder.MinInterval < 0 || c.Geocoder.Timeout <= 0 {
		return fmt.Errorf("geocoder interval and timeout must be positive")
	}
	if c.Geocoder.CacheSize <= 0 {
		return fmt.Errorf("GEOCODER_CACHE_SIZE must be positive")
	}
	if c.Search.DefaultLimit <= 0 || c.Search.MaxLimit < c.Search.DefaultLimit {
		return fmt.Errorf("search limits must satisfy 0 < default <= max")
	}
	if c.Server.WriteTimeout > 0 && c.Server.WriteTimeout <= c.WorstCaseSearchDuration() {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT %s must exceed the worst-case search time %s (SEARCH_MAX_LIMIT x GEOCODER_MIN_INTERVAL + GEOCODER_TIMEOUT)",
			c.Server.WriteTimeout, c.WorstCaseSearchDuration())
	}
	return nil
}

// WorstCaseSearchDuration bounds a cold search: every result needs its own
// rate-limited geocode, and the last call may run to its timeout.
func (c *Config) WorstCaseSearchDuration() time.Duration {
	if c.Geocoder.Provider == GeocoderStatic {
		return 0
	}
	return time.Duration(c.Search.MaxLimit)*c.Geocoder.MinInterval + c.Geocoder.Timeout
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
