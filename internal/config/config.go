package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	apperrors "github.com/resumeingestor/ingestor/internal/errors"
)

type Config struct {
	Env            string
	ServiceName    string
	ServiceVersion string
	LogLevel       string

	DatabaseURL     string
	DatabaseTracing bool

	JWTSecret string
	JWTIssuer string

	CORSOrigins []string

	OtelExporterOTLPEndpoint string
	OtelExporterOTLPHeaders  string
	SentryDSN                string

	Port string

	Cache CacheConfig
}

// CacheConfig is the construction-time cache surface. Durations are whole seconds.
type CacheConfig struct {
	DefaultTTLSeconds      int  `yaml:"default_ttl_seconds"`
	MaxSize                int  `yaml:"max_size"`
	CleanupIntervalSeconds int  `yaml:"cleanup_interval_seconds"`
	SingleFlight           bool `yaml:"single_flight"`
}

func (c CacheConfig) DefaultTTL() time.Duration {
	return time.Duration(c.DefaultTTLSeconds) * time.Second
}

func (c CacheConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalSeconds) * time.Second
}

func Load() (*Config, error) {
	return LoadFrom("config.yaml")
}

// LoadFrom is Load with an explicit YAML path. Precedence is env, then YAML, then defaults.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := &Config{
		Env:                      os.Getenv("ENV"),
		ServiceName:              os.Getenv("SERVICE_NAME"),
		ServiceVersion:           os.Getenv("SERVICE_VERSION"),
		LogLevel:                 os.Getenv("LOG_LEVEL"),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		JWTSecret:                os.Getenv("JWT_SECRET"),
		JWTIssuer:                os.Getenv("JWT_ISSUER"),
		OtelExporterOTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelExporterOTLPHeaders:  os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
		SentryDSN:                os.Getenv("SENTRY_DSN"),
		Port:                     os.Getenv("PORT"),
		CORSOrigins:              splitList(os.Getenv("CORS_ORIGINS")),
	}

	if err := cfg.LoadFromYAML(yamlPath); err != nil {
		return nil, apperrors.NewConfigError("failed to load YAML config", "CONFIG_YAML_INVALID", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "resume-ingestor"
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "1.0.0"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
		if cfg.Env == "production" {
			cfg.LogLevel = "info"
		}
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	cfg.SetCacheDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func (c *Config) LoadFromYAML(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File not found is not an error
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlConfig struct {
		Cache CacheConfig `yaml:"cache"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlConfig.Cache.DefaultTTLSeconds != 0 {
		c.Cache.DefaultTTLSeconds = yamlConfig.Cache.DefaultTTLSeconds
	}
	if yamlConfig.Cache.MaxSize != 0 {
		c.Cache.MaxSize = yamlConfig.Cache.MaxSize
	}
	if yamlConfig.Cache.CleanupIntervalSeconds != 0 {
		c.Cache.CleanupIntervalSeconds = yamlConfig.Cache.CleanupIntervalSeconds
	}
	if yamlConfig.Cache.SingleFlight {
		c.Cache.SingleFlight = true
	}

	return nil
}

func (c *Config) applyEnvOverrides() error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"CACHE_DEFAULT_TTL_SECONDS", &c.Cache.DefaultTTLSeconds},
		{"CACHE_MAX_SIZE", &c.Cache.MaxSize},
		{"CACHE_CLEANUP_INTERVAL_SECONDS", &c.Cache.CleanupIntervalSeconds},
	}
	for _, v := range ints {
		raw := os.Getenv(v.name)
		if raw == "" {
			continue
		}
		n, err := cast.ToIntE(raw)
		if err != nil {
			return apperrors.NewConfigError(v.name+" must be an integer", "CONFIG_INVALID_INT", err)
		}
		*v.dst = n
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"CACHE_SINGLE_FLIGHT", &c.Cache.SingleFlight},
		{"DATABASE_TRACING", &c.DatabaseTracing},
	}
	for _, v := range bools {
		raw := os.Getenv(v.name)
		if raw == "" {
			continue
		}
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return apperrors.NewConfigError(v.name+" must be a boolean", "CONFIG_INVALID_BOOL", err)
		}
		*v.dst = b
	}

	return nil
}

// SetCacheDefaults fills unset cache fields: 5 minute TTL, 1000 entries, 60 second sweep.
func (c *Config) SetCacheDefaults() {
	if c.Cache.DefaultTTLSeconds == 0 {
		c.Cache.DefaultTTLSeconds = 300
	}
	if c.Cache.MaxSize == 0 {
		c.Cache.MaxSize = 1000
	}
	if c.Cache.CleanupIntervalSeconds == 0 {
		c.Cache.CleanupIntervalSeconds = 60
	}
}

// OTLPHeaders parses OTEL_EXPORTER_OTLP_HEADERS ("k1=v1,k2=v2").
func (c *Config) OTLPHeaders() map[string]string {
	headers := make(map[string]string)
	for _, pair := range splitList(c.OtelExporterOTLPHeaders) {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			continue
		}
		headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return headers
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return apperrors.NewConfigError("DATABASE_URL is required", "CONFIG_MISSING_DATABASE_URL", nil)
	}
	if c.JWTSecret == "" {
		return apperrors.NewConfigError("JWT_SECRET is required", "CONFIG_MISSING_JWT_SECRET", nil)
	}
	if c.Cache.DefaultTTLSeconds < 0 || c.Cache.MaxSize < 0 || c.Cache.CleanupIntervalSeconds < 0 {
		return apperrors.NewConfigError("cache settings must be positive", "CONFIG_INVALID_CACHE", nil)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
