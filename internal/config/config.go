package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds the settings of all three processes. Each binary reads the
// subset it needs.
type Config struct {
	AppEnv    string
	LogFormat string
	LogLevel  string

	MetricsNamespace string
	MetricsBuckets   string

	PricingGRPCAddr    string
	PricingMetricsAddr string
	CatalogGRPCAddr    string
	CatalogMetricsAddr string
	GatewayHTTPAddr    string

	PricingServiceTarget string
	CatalogServiceTarget string
	UpstreamTimeout      time.Duration

	MySQLDSN          string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	RedisURL        string
	CatalogCacheTTL time.Duration

	ConnectMaxAttempts int
	ConnectDelay       time.Duration
	ConnectExponential bool

	CORSAllowedOrigins []string

	TracingEnabled       bool
	OTLPEndpoint         string
	TracingSamplingRatio float64
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:    valueOrDefault(k.String("APP_ENV"), "development"),
		LogFormat: valueOrDefault(k.String("LOG_FORMAT"), "json"),
		LogLevel:  valueOrDefault(k.String("LOG_LEVEL"), "info"),

		MetricsNamespace: valueOrDefault(k.String("METRICS_NAMESPACE"), "carbuild"),
		MetricsBuckets:   k.String("METRICS_BUCKETS"),

		PricingGRPCAddr:    valueOrDefault(k.String("PRICING_GRPC_ADDR"), ":50052"),
		PricingMetricsAddr: valueOrDefault(k.String("PRICING_METRICS_ADDR"), ":9102"),
		CatalogGRPCAddr:    valueOrDefault(k.String("CATALOG_GRPC_ADDR"), ":50051"),
		CatalogMetricsAddr: valueOrDefault(k.String("CATALOG_METRICS_ADDR"), ":9101"),
		GatewayHTTPAddr:    valueOrDefault(k.String("GATEWAY_HTTP_ADDR"), ":8000"),

		PricingServiceTarget: valueOrDefault(k.String("PRICING_SERVICE_TARGET"), "localhost:50052"),
		CatalogServiceTarget: valueOrDefault(k.String("CATALOG_SERVICE_TARGET"), "localhost:50051"),
		UpstreamTimeout:      parseDuration(k.String("UPSTREAM_TIMEOUT"), "5s"),

		MySQLDSN:          valueOrDefault(k.String("MYSQL_DSN"), "root:root@tcp(localhost:3306)/car_build?parseTime=true"),
		DBMaxOpenConns:    parseInt(k.String("DB_MAX_OPEN_CONNS"), 20),
		DBMaxIdleConns:    parseInt(k.String("DB_MAX_IDLE_CONNS"), 10),
		DBConnMaxLifetime: parseDuration(k.String("DB_CONN_MAX_LIFETIME"), "5m"),

		RedisURL:        valueOrDefault(k.String("REDIS_URL"), "redis://localhost:6379/0"),
		CatalogCacheTTL: parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),

		ConnectMaxAttempts: parseInt(k.String("CONNECT_MAX_ATTEMPTS"), 10),
		ConnectDelay:       parseDuration(k.String("CONNECT_DELAY"), "2s"),
		ConnectExponential: strings.EqualFold(strings.TrimSpace(k.String("CONNECT_BACKOFF")), "exponential"),

		CORSAllowedOrigins: splitAndTrim(valueOrDefault(k.String("CORS_ALLOWED_ORIGINS"), "*")),

		TracingEnabled:       parseBool(k.String("OBS_ENABLE_TRACING")),
		OTLPEndpoint:         strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
		TracingSamplingRatio: parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),
	}

	if cfg.ConnectMaxAttempts < 1 {
		return nil, errors.New("CONNECT_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.UpstreamTimeout <= 0 {
		return nil, errors.New("UPSTREAM_TIMEOUT must be positive")
	}
	if cfg.CatalogCacheTTL < 0 {
		return nil, errors.New("CATALOG_CACHE_TTL must not be negative")
	}

	return cfg, nil
}

// CacheEnabled reports whether the catalog server should front MySQL with Redis.
func (c *Config) CacheEnabled() bool {
	return c.CatalogCacheTTL > 0
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	if base == "0" {
		return 0
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// MustLoad behaves like Load but panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests overrides environment variables for the duration of a Load call.
// An empty value unsets the variable.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
