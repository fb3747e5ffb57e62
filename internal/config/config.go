package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// model artifact
	ModelPath     string `toml:"model_path"`
	ModelMetaPath string `toml:"model_meta_path"`

	// storage: memory | redis | postgres
	Storage                     string `toml:"storage"`
	CredentialsCacheSizeMB      int    `toml:"credentials_cache_size_mb"`
	RedisHost                   string `toml:"redis_host"`
	RedisPort                   string `toml:"redis_port"`
	PostgresHost                string `toml:"postgres_host"`
	PostgresPort                string `toml:"postgres_port"`
	PostgresDBName              string `toml:"postgres_db_name"`
	PostgresUser                string `toml:"postgres_user"`
	RequireRegisteredUser       bool   `toml:"require_registered_user"`
	LoginRateLimitAllowedPerMin int    `toml:"login_rate_limit_allowed_per_min"`

	// http
	AllowedOrigins []string `toml:"allowed_origins"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("env [%s] not present in config", env)
	}
	return cfg, nil
}

// Load reads the TOML config file and returns the section for the given env,
// with defaults applied and validated.
func Load(env, configPath string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(configPath, &t); err != nil {
		return nil, fmt.Errorf("decode config [%s]: %w", configPath, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Port == 0 {
		c.Port = 5000
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Storage == "" {
		c.Storage = StorageMemory
	}
	if c.ModelPath == "" {
		c.ModelPath = "xgb_model.json"
	}
	if c.ModelMetaPath == "" {
		c.ModelMetaPath = "model_meta.json"
	}
	if c.CredentialsCacheSizeMB == 0 {
		c.CredentialsCacheSizeMB = 10
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.PostgresPort == "" {
		c.PostgresPort = "5432"
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
	if c.LoginRateLimitAllowedPerMin == 0 {
		c.LoginRateLimitAllowedPerMin = 30
	}
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory:
	case StorageRedis:
		if c.RedisHost == "" {
			return errors.New("redis storage selected, but redis_host not set")
		}
	case StoragePostgres:
		if c.PostgresHost == "" || c.PostgresDBName == "" {
			return errors.New("postgres storage selected, but postgres_host or postgres_db_name not set")
		}
	default:
		return fmt.Errorf("unknown storage: %s", c.Storage)
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	return nil
}
